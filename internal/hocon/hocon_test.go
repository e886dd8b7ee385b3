package hocon

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	text := `
llm_config {
  model_name = "gpt-4o"
  temperature = 0.5
}
retries = 3
enabled = true
tools = [
  { name = "frontman", tools = ["search"] }
  { name = "search" }
]
`
	tree, err := Parse(text)
	require.NoError(t, err)

	llm, ok := tree["llm_config"].(map[string]any)
	require.True(t, ok, "llm_config should be an object, got %T", tree["llm_config"])
	require.Equal(t, "gpt-4o", llm["model_name"])
	require.InDelta(t, 0.5, llm["temperature"], 1e-9)
	require.Equal(t, 3, tree["retries"])
	require.Equal(t, true, tree["enabled"])

	tools, ok := tree["tools"].([]any)
	require.True(t, ok)
	require.Len(t, tools, 2)
	first := tools[0].(map[string]any)
	require.Equal(t, "frontman", first["name"])
	require.Equal(t, []any{"search"}, first["tools"])
}

func TestParseJSON(t *testing.T) {
	tree, err := Parse(`{"city": "Seattle", "count": 2}`)
	require.NoError(t, err)
	require.Equal(t, "Seattle", tree["city"])
	require.Equal(t, 2, tree["count"])
}

func TestParseEmpty(t *testing.T) {
	tree, err := Parse("   \n")
	require.NoError(t, err)
	require.Empty(t, tree)
}

func TestParseMalformed(t *testing.T) {
	_, err := ParseNamed("broken.hocon", "a = {\n  b = ")
	require.Error(t, err)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr), "expected *ParseError, got %T", err)
	require.Equal(t, "broken.hocon", parseErr.Source)
	require.Contains(t, err.Error(), "broken.hocon")
}

func TestSerialize(t *testing.T) {
	tree := map[string]any{
		"tools": []any{
			map[string]any{"name": "frontman", "tools": []string{"search"}},
		},
		"llm_config": map[string]any{
			"model_name":  "gpt-4o",
			"temperature": 1.0,
		},
		"db.host": "localhost",
		"text":    "I live in ${city}",
		"empty":   map[string]any{},
		"none":    []any{},
	}

	want := `"db.host" = "localhost"
empty {}
llm_config {
  model_name = "gpt-4o"
  temperature = 1.0
}
none = []
text = "I live in ${city}"
tools = [
  {
    name = "frontman"
    tools = [
      "search"
    ]
  }
]
`
	require.Equal(t, want, Serialize(tree))
}

func TestSerializeEscapes(t *testing.T) {
	out := Serialize(map[string]any{"msg": "line one\nsaid \"hi\" <b>"})
	require.Equal(t, "msg = \"line one\\nsaid \\\"hi\\\" <b>\"\n", out)
}

func TestSerializeRoundTrip(t *testing.T) {
	tree := map[string]any{
		"name":         "agent",
		"instructions": "Use ${city} when asked",
		"temperature":  0.25,
		"count":        4,
		"tags":         []any{"a", "b"},
		"nested":       map[string]any{"flag": false},
		"escaped":      "say \"hi\"\nline2\ttab \\ back",
	}

	parsed, err := Parse(Serialize(tree))
	require.NoError(t, err)
	require.Equal(t, "agent", parsed["name"])
	require.Equal(t, "Use ${city} when asked", parsed["instructions"])
	require.InDelta(t, 0.25, parsed["temperature"], 1e-9)
	require.Equal(t, 4, parsed["count"])
	require.Equal(t, []any{"a", "b"}, parsed["tags"])
	require.Equal(t, map[string]any{"flag": false}, parsed["nested"])
	require.Equal(t, tree["escaped"], parsed["escaped"])

	// A second cycle must not double the escapes.
	again, err := Parse(Serialize(parsed))
	require.NoError(t, err)
	require.Equal(t, tree["escaped"], again["escaped"])
}

func TestParseDecodesEscapes(t *testing.T) {
	tree, err := Parse(`a = "line1\nline2", b = "C:\\tmp", c = "\"quoted\"", d = plain`)
	require.NoError(t, err)
	require.Equal(t, "line1\nline2", tree["a"])
	require.Equal(t, `C:\tmp`, tree["b"])
	require.Equal(t, `"quoted"`, tree["c"])
	require.Equal(t, "plain", tree["d"])
}

func TestEncode(t *testing.T) {
	tree := map[string]any{"city": "Seattle", "list": []string{"a"}}

	data, err := Encode(tree, FormatJSON)
	require.NoError(t, err)
	require.JSONEq(t, `{"city":"Seattle","list":["a"]}`, string(data))

	data, err = Encode(tree, FormatYAML)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), "city: Seattle"), "yaml output: %s", data)

	data, err = Encode(tree, FormatHOCON)
	require.NoError(t, err)
	require.Contains(t, string(data), `city = "Seattle"`)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"", FormatHOCON, false},
		{"HOCON", FormatHOCON, false},
		{"conf", FormatHOCON, false},
		{"json", FormatJSON, false},
		{"yml", FormatYAML, false},
		{"toml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
