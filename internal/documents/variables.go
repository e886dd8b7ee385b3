package documents

import (
	"github.com/opencode-ai/netforge/internal/hocon"
	"github.com/opencode-ai/netforge/internal/state"
)

// ExportVariables returns the effective substitution map as a document.
func ExportVariables(st *state.AppState) map[string]any {
	m := st.EffectiveMap()
	tree := make(map[string]any, m.Len())
	for _, b := range m.Bindings() {
		tree[b.Name] = b.Value
	}
	return tree
}

// ImportVariables appends one binding per entry of a variables document,
// after the existing bindings. Nested objects are flattened into dotted
// names. Nothing changes when the document cannot be parsed. It returns the
// number of bindings added.
func ImportVariables(st *state.AppState, source, text string) (int, error) {
	tree, err := hocon.ParseNamed(source, text)
	if err != nil {
		return 0, err
	}

	flat := make(map[string]any)
	flatten("", tree, flat)
	for _, name := range sortedKeys(flat) {
		st.AddBinding(name, stringify(flat[name]))
	}
	return len(flat), nil
}

func flatten(prefix string, obj map[string]any, out map[string]any) {
	for key, value := range obj {
		name := key
		if prefix != "" {
			name = prefix + "." + key
		}
		switch v := value.(type) {
		case map[string]any:
			flatten(name, v, out)
		case nil:
			out[name] = ""
		default:
			out[name] = v
		}
	}
}
