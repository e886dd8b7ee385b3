package documents

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/opencode-ai/netforge/internal/hocon"
	"github.com/opencode-ai/netforge/internal/models"
	"github.com/opencode-ai/netforge/internal/state"
	"github.com/opencode-ai/netforge/internal/subst"
)

// ExportNetwork builds the network document for st. Literal values of the
// effective substitution map are collapsed back into placeholders and empty
// fields are dropped. A network with violations is refused with
// *InvalidNetworkError.
func ExportNetwork(st *state.AppState) (map[string]any, error) {
	if violations := st.Validate(); len(violations) > 0 {
		return nil, &InvalidNetworkError{Violations: violations}
	}

	m := st.EffectiveMap()
	tools := make([]any, 0, len(st.Nodes))
	for i := range st.Nodes {
		node := &st.Nodes[i]
		if node.Name == "" {
			continue
		}
		tools = append(tools, nodeTree(st, node, m))
	}

	tree := map[string]any{
		"llm_config": llmTree(st.LLM),
		"tools":      tools,
	}
	tree = subst.ApplyDeep(tree, m, subst.DirectionCollapse).(map[string]any)
	return RemoveEmpty(tree).(map[string]any), nil
}

func llmTree(llm models.LLMConfig) map[string]any {
	return map[string]any{
		"model_name":  models.ModelID(llm.ModelName),
		"temperature": llm.Temperature,
	}
}

func nodeTree(st *state.AppState, node *models.Node, m *subst.Map) map[string]any {
	tools := make([]any, 0, len(node.Tools))
	for _, tool := range node.Tools {
		tools = append(tools, tool)
	}

	out := map[string]any{
		"name":         node.Name,
		"instructions": node.Instructions,
		"command":      node.Command,
		"tools":        tools,
		"llm_config":   llmTree(node.LLM),
		"class":        node.Class,
	}
	if fn := st.FunctionByName(node.Function); fn != nil {
		out["function"] = functionTree(fn, m, subst.DirectionCollapse)
		if path := fn.ClassPath(); path != "" {
			out["class"] = path
		}
	}
	return out
}

// ImportNetwork parses a network document and returns a new state built from
// it. Placeholders are expanded with the effective map of current, whose
// bindings carry over to the new state. current is never modified.
//
// Functions embedded in nodes are de-duplicated: every distinct function
// object becomes one editor function named func_<n>, shared by the nodes
// that embed it.
func ImportNetwork(current *state.AppState, source, text string) (*state.AppState, error) {
	tree, err := hocon.ParseNamed(source, text)
	if err != nil {
		return nil, err
	}

	m := current.EffectiveMap()
	tree = subst.ApplyDeep(tree, m, subst.DirectionExpand).(map[string]any)

	defaults := current.LLM
	if llm := getObject(tree, "llm_config"); llm != nil {
		defaults = readLLM(llm, defaults)
	}

	next := state.New(defaults)
	next.Bindings = slices.Clone(current.Bindings)
	next.Hierarchical = current.Hierarchical

	entries, _ := tree["tools"].([]any)
	var seen []map[string]any
	for i, item := range entries {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("network tools[%d]: expected an object", i)
		}

		if i > 0 {
			next.AddNode()
		}
		node := &next.Nodes[len(next.Nodes)-1]

		node.Name = getString(entry, "name")
		node.Instructions = getString(entry, "instructions")
		node.Command = getString(entry, "command")
		node.Tools = getStrings(entry, "tools")
		node.LLM = defaults
		if llm := getObject(entry, "llm_config"); llm != nil {
			node.LLM = readLLM(llm, defaults)
		}

		classPath := getString(entry, "class")
		spec := getObject(entry, "function")
		if len(spec) == 0 {
			node.Class = classPath
			continue
		}

		idx := slices.IndexFunc(seen, func(prev map[string]any) bool {
			return reflect.DeepEqual(prev, spec)
		})
		if idx >= 0 {
			// seen[n] was imported as next.Functions[n].
			node.Function = next.Functions[idx].Name
			continue
		}

		name := nextFunctionName(next)
		if err := addFunction(next, name, spec, classPath, m); err != nil {
			return nil, fmt.Errorf("network tools[%d] function: %w", i, err)
		}
		seen = append(seen, spec)
		node.Function = name
	}

	return next, nil
}

func readLLM(obj map[string]any, defaults models.LLMConfig) models.LLMConfig {
	llm := defaults
	if name := getString(obj, "model_name"); name != "" {
		llm.ModelName = models.ResolveModelName(name)
	}
	llm.Temperature = getFloat(obj, "temperature", defaults.Temperature)
	return llm
}

func nextFunctionName(st *state.AppState) string {
	for n := len(st.Functions); ; n++ {
		name := fmt.Sprintf("func_%d", n)
		if st.FunctionByName(name) == nil {
			return name
		}
	}
}
