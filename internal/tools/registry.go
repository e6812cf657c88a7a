package tools

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Canonical tool names; the callable contract the model relies on.
const (
	NameWeather  = "getWeather"
	NameMath     = "solveMath"
	NameNews     = "getLatestNews"
	NameResearch = "deepResearch"
)

// Tool binds one adapter to the declaration the model sees. Every tool takes
// a single natural-language string argument and returns text.
type Tool struct {
	Name        string
	Description string
	// Param is the declared argument name (e.g. "city").
	Param string
	// ParamDescription documents the argument for the model.
	ParamDescription string
	// Run executes the adapter. It must be total: text out, never an error.
	Run func(ctx context.Context, arg string) string
}

// Registry is the fixed, typed set of tools the orchestrator dispatches on.
// Dispatch is interpreted here, not delegated to the provider: the model only
// ever names a tool, and the registry resolves and executes it.
type Registry struct {
	tools  []Tool
	byName map[string]Tool
}

// NewRegistry builds a registry from the given tools. Later duplicates of a
// name win; in practice names are unique constants.
func NewRegistry(ts ...Tool) *Registry {
	r := &Registry{byName: make(map[string]Tool, len(ts))}
	for _, t := range ts {
		r.tools = append(r.tools, t)
		r.byName[t.Name] = t
	}
	return r
}

// DefaultTools wires the four production adapters.
func DefaultTools(w *Weather, n *News, res *Research) []Tool {
	return []Tool{
		{
			Name:             NameWeather,
			Description:      "Gets the current weather for a given city.",
			Param:            "city",
			ParamDescription: "Name of the city to fetch current weather for",
			Run:              w.Current,
		},
		{
			Name:             NameMath,
			Description:      "Calculates the result of a mathematical expression and returns a precise decimal answer. Use this tool for ANY math calculation.",
			Param:            "expression",
			ParamDescription: "The text containing the arithmetic expression to evaluate",
			Run: func(_ context.Context, arg string) string {
				return SolveMath(arg)
			},
		},
		{
			Name:             NameNews,
			Description:      "Fetches the top latest news headlines from India for a topic.",
			Param:            "topic",
			ParamDescription: "News topic, or a generic word like 'news' for top headlines",
			Run:              n.Headlines,
		},
		{
			Name:             NameResearch,
			Description:      "Searches the web for a given topic and returns the top result summaries. Use this tool to find information about any real-world topic, event, or place.",
			Param:            "topic",
			ParamDescription: "The topic to research",
			Run:              res.Search,
		},
	}
}

// Declarations returns the function declarations advertised to the model.
func (r *Registry) Declarations() []*genai.Tool {
	decls := make([]*genai.FunctionDeclaration, 0, len(r.tools))
	for _, t := range r.tools {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					t.Param: {
						Type:        genai.TypeString,
						Description: t.ParamDescription,
					},
				},
				Required: []string{t.Param},
			},
		})
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

// Dispatch resolves name and runs the tool with the string argument found in
// args. Unknown names and missing arguments produce descriptive text, never
// an error: from the model's perspective every call returns output.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) string {
	t, ok := r.byName[name]
	if !ok {
		return fmt.Sprintf("Error: unknown tool %q.", name)
	}
	arg, _ := args[t.Param].(string)
	if arg == "" {
		// Be forgiving about the argument key; some models rename it.
		for _, v := range args {
			if s, ok := v.(string); ok && s != "" {
				arg = s
				break
			}
		}
	}
	return t.Run(ctx, arg)
}

// Names lists the registered tool names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.tools))
	for i, t := range r.tools {
		out[i] = t.Name
	}
	return out
}
