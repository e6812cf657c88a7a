package tools

import (
	"context"
	"strings"
	"testing"
)

func testRegistry() *Registry {
	return NewRegistry(
		Tool{
			Name:             "echo",
			Description:      "Echoes the argument.",
			Param:            "text",
			ParamDescription: "Text to echo",
			Run: func(_ context.Context, arg string) string {
				return "echo:" + arg
			},
		},
		Tool{
			Name:  "shout",
			Param: "text",
			Run: func(_ context.Context, arg string) string {
				return strings.ToUpper(arg)
			},
		},
	)
}

func TestRegistry_Dispatch(t *testing.T) {
	r := testRegistry()
	got := r.Dispatch(context.Background(), "echo", map[string]any{"text": "hi"})
	if got != "echo:hi" {
		t.Fatalf("Dispatch = %q", got)
	}
}

func TestRegistry_Dispatch_UnknownTool(t *testing.T) {
	r := testRegistry()
	got := r.Dispatch(context.Background(), "nosuch", map[string]any{"text": "hi"})
	if !strings.Contains(got, `unknown tool "nosuch"`) {
		t.Fatalf("Dispatch = %q", got)
	}
}

func TestRegistry_Dispatch_ForgivingArgKey(t *testing.T) {
	// Models sometimes rename the declared parameter; any non-empty string
	// argument still reaches the tool.
	r := testRegistry()
	got := r.Dispatch(context.Background(), "echo", map[string]any{"input": "hello"})
	if got != "echo:hello" {
		t.Fatalf("Dispatch = %q", got)
	}
}

func TestRegistry_Dispatch_MissingArg(t *testing.T) {
	r := testRegistry()
	if got := r.Dispatch(context.Background(), "echo", nil); got != "echo:" {
		t.Fatalf("Dispatch = %q", got)
	}
}

func TestRegistry_Declarations(t *testing.T) {
	r := testRegistry()
	decls := r.Declarations()
	if len(decls) != 1 {
		t.Fatalf("Declarations groups = %d, want 1", len(decls))
	}
	fns := decls[0].FunctionDeclarations
	if len(fns) != 2 {
		t.Fatalf("declarations = %d, want 2", len(fns))
	}
	if fns[0].Name != "echo" || fns[1].Name != "shout" {
		t.Fatalf("unexpected names: %q, %q", fns[0].Name, fns[1].Name)
	}
	params := fns[0].Parameters
	if params == nil || params.Properties["text"] == nil {
		t.Fatalf("missing parameter schema: %+v", params)
	}
	if len(params.Required) != 1 || params.Required[0] != "text" {
		t.Fatalf("required = %v", params.Required)
	}
}

func TestDefaultTools_NamesAndOrder(t *testing.T) {
	r := NewRegistry(DefaultTools(NewWeather(""), NewNews(""), NewResearch(""))...)
	want := []string{NameWeather, NameMath, NameNews, NameResearch}
	got := r.Names()
	if len(got) != len(want) {
		t.Fatalf("Names = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Names[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDefaultTools_MathRuns(t *testing.T) {
	r := NewRegistry(DefaultTools(NewWeather(""), NewNews(""), NewResearch(""))...)
	got := r.Dispatch(context.Background(), NameMath, map[string]any{"expression": "2+2"})
	if !strings.Contains(got, "4.0") {
		t.Fatalf("math dispatch = %q", got)
	}
}

func TestDefaultTools_UnconfiguredAdaptersStillAnswer(t *testing.T) {
	r := NewRegistry(DefaultTools(NewWeather(""), NewNews(""), NewResearch(""))...)
	if got := r.Dispatch(context.Background(), NameWeather, map[string]any{"city": "Delhi"}); got != weatherNotConfigured {
		t.Fatalf("weather = %q", got)
	}
	if got := r.Dispatch(context.Background(), NameNews, map[string]any{"topic": "news"}); got != newsNotConfigured {
		t.Fatalf("news = %q", got)
	}
	if got := r.Dispatch(context.Background(), NameResearch, map[string]any{"topic": "x"}); got != researchNotConfigured {
		t.Fatalf("research = %q", got)
	}
}
