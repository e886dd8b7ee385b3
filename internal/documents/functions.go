package documents

import (
	"fmt"

	"github.com/opencode-ai/netforge/internal/hocon"
	"github.com/opencode-ai/netforge/internal/models"
	"github.com/opencode-ai/netforge/internal/state"
	"github.com/opencode-ai/netforge/internal/subst"
)

// functionTree renders the "function" record of a function specification.
// Parameter names become object keys, so they are rewritten here; every
// other string is left to the caller's ApplyDeep pass.
func functionTree(fn *models.Function, m *subst.Map, dir subst.Direction) map[string]any {
	properties := make(map[string]any, len(fn.Parameters))
	for _, param := range fn.Parameters {
		if param.Name == "" {
			continue
		}
		properties[subst.Apply(param.Name, m, dir)] = map[string]any{
			"type":        string(param.Type),
			"description": param.Description,
		}
	}

	required := make([]any, 0, len(fn.Required))
	for _, name := range fn.Required {
		required = append(required, name)
	}

	return map[string]any{
		"description": fn.Description,
		"parameters": map[string]any{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}

// ExportFunctions returns the function specification document, keyed by the
// editor function name. Unnamed functions are skipped.
func ExportFunctions(st *state.AppState) map[string]any {
	tree := make(map[string]any, len(st.Functions))
	for i := range st.Functions {
		fn := &st.Functions[i]
		if fn.Name == "" {
			continue
		}
		tree[fn.Name] = map[string]any{
			"function": functionTree(fn, nil, subst.DirectionExpand),
			"class":    fn.ClassPath(),
		}
	}
	return tree
}

// ImportFunctions appends the functions of a function specification
// document. The import is all or nothing: a parse error or a name collision
// leaves st unchanged. It returns the number of functions added.
func ImportFunctions(st *state.AppState, source, text string) (int, error) {
	tree, err := hocon.ParseNamed(source, text)
	if err != nil {
		return 0, err
	}

	next := st.Clone()
	for _, name := range sortedKeys(tree) {
		entry, ok := tree[name].(map[string]any)
		if !ok {
			return 0, fmt.Errorf("function %q: expected an object", name)
		}
		if err := addFunction(next, name, getObject(entry, "function"), getString(entry, "class"), nil); err != nil {
			return 0, fmt.Errorf("function %q: %w", name, err)
		}
	}

	*st = *next
	return len(tree), nil
}

// addFunction creates a function from its document form. Parameter names
// are expanded with keys, since ApplyDeep leaves object keys alone.
//
// Module, class and parameter types are stored as written; clashing
// module/class pairs and unknown types surface as violations instead of
// failing the import.
func addFunction(st *state.AppState, name string, spec map[string]any, classPath string, keys *subst.Map) error {
	if _, err := st.AddFunction(name); err != nil {
		return err
	}
	// AddFunction appends.
	fn := &st.Functions[len(st.Functions)-1]
	fn.Description = getString(spec, "description")
	fn.Module, fn.Class = splitClassPath(classPath)

	params := getObject(spec, "parameters")
	properties := getObject(params, "properties")
	for _, pname := range sortedKeys(properties) {
		prop, _ := properties[pname].(map[string]any)
		param, err := st.AddParameter(fn.ID)
		if err != nil {
			return err
		}
		paramName := pname
		if keys != nil {
			paramName = subst.Expand(pname, keys)
		}
		paramDesc := getString(prop, "description")
		if err := st.UpdateParameter(fn.ID, param.ID, state.ParameterPatch{
			Name:        &paramName,
			Description: &paramDesc,
		}); err != nil {
			return err
		}
		fn.Parameters[len(fn.Parameters)-1].Type = models.ParamType(getString(prop, "type"))
	}

	return st.SetRequired(fn.ID, getStrings(params, "required"))
}
