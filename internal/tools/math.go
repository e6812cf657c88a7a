package tools

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"
)

const (
	mathNoExpression = "Sorry, I couldn't find a valid math expression in your message."
	mathApology      = "Sorry, I couldn't solve that math problem. Please provide a valid expression like '5 * 10' or '100 / 4'."
)

// mathAllowed is the character set an arithmetic expression may use. Anything
// else in the input is stripped before evaluation, so "What is 12 * (3+4)?"
// reduces to "12 * (3+4)".
const mathAllowed = "0123456789.+-*/() "

// SolveMath extracts the arithmetic subsequence of the input and evaluates it
// to a decimal result. Free text with no arithmetic characters yields an
// apology, not an error; so does anything the evaluator rejects.
func SolveMath(input string) (result string) {
	// govaluate panics on some malformed expressions; a tool must not.
	defer func() {
		if recover() != nil {
			result = mathApology
		}
	}()

	expr := strings.TrimSpace(filterMath(input))
	if expr == "" {
		return mathNoExpression
	}

	ev, err := govaluate.NewEvaluableExpression(expr)
	if err != nil {
		return mathApology
	}
	val, err := ev.Evaluate(nil)
	if err != nil {
		return mathApology
	}
	f, ok := val.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return mathApology
	}
	return fmt.Sprintf("The answer to '%s' is: %s", expr, formatDecimal(f))
}

// filterMath keeps only characters valid in an arithmetic expression.
func filterMath(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(mathAllowed, r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// formatDecimal renders whole numbers with one decimal place (84 -> "84.0")
// and everything else at full precision.
func formatDecimal(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
