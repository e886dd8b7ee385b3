package state

import (
	"fmt"

	"github.com/opencode-ai/netforge/internal/models"
)

// Validate checks the network's set-membership invariants and returns every
// violation found. An empty result means the network can be exported.
func (s *AppState) Validate() []models.Violation {
	var violations []models.Violation
	add := func(kind models.ViolationKind, subject, format string, args ...any) {
		violations = append(violations, models.Violation{
			Kind:    kind,
			Subject: subject,
			Message: fmt.Sprintf(format, args...),
		})
	}

	if frontman := s.Frontman(); frontman == nil || frontman.Name == "" {
		add(models.ViolationMissingFrontman, "", "the frontman node needs a name")
	}

	names := make(map[string]int, len(s.Nodes))
	for _, node := range s.Nodes {
		if node.Name == "" {
			continue
		}
		names[node.Name]++
		if names[node.Name] == 2 {
			add(models.ViolationDuplicateName, node.Name, "node name %q is used more than once", node.Name)
		}
	}

	functions := make(map[string]struct{}, len(s.Functions))
	for _, fn := range s.Functions {
		if fn.Name != "" {
			functions[fn.Name] = struct{}{}
		}
	}

	for _, node := range s.Nodes {
		if node.Name == "" {
			continue
		}
		for _, tool := range node.Tools {
			switch {
			case tool == node.Name:
				add(models.ViolationSelfReference, node.Name, "node %q points to itself", node.Name)
			case names[tool] == 0:
				add(models.ViolationUnknownTool, node.Name, "node %q points to unknown node %q", node.Name, tool)
			}
		}
		if node.Function != "" {
			if _, ok := functions[node.Function]; !ok {
				add(models.ViolationUnknownFunction, node.Name, "node %q uses unknown function %q", node.Name, node.Function)
			}
		}
	}

	pairs := make(map[string]int, len(s.Functions))
	for _, fn := range s.Functions {
		if path := fn.ClassPath(); path != "" {
			pairs[path]++
			if pairs[path] == 2 {
				add(models.ViolationDuplicateModuleClass, path, "module and class %q are used more than once", path)
			}
		}

		params := make(map[string]struct{}, len(fn.Parameters))
		for _, param := range fn.Parameters {
			if !param.Type.Valid() {
				add(models.ViolationInvalidParamType, fn.Name, "parameter %q of function %q has invalid type %q", param.Name, fn.Name, param.Type)
			}
			if param.Name != "" {
				params[param.Name] = struct{}{}
			}
		}
		for _, req := range fn.Required {
			if _, ok := params[req]; !ok {
				add(models.ViolationUnknownRequired, fn.Name, "function %q requires unknown parameter %q", fn.Name, req)
			}
		}
	}

	return violations
}
