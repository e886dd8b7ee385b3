package state

import (
	"fmt"
	"slices"

	"github.com/opencode-ai/netforge/internal/models"
)

// FunctionPatch lists function fields to change; nil fields are left alone.
type FunctionPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// ParameterPatch lists parameter fields to change; nil fields are left alone.
type ParameterPatch struct {
	Name        *string           `json:"name,omitempty"`
	Type        *models.ParamType `json:"type,omitempty"`
	Description *string           `json:"description,omitempty"`
}

// AddFunction appends a function specification. A non-empty name already
// used by another function is rejected.
func (s *AppState) AddFunction(name string) (models.Function, error) {
	if s.functionByName(name) >= 0 {
		return models.Function{}, &NameCollisionError{Kind: "function name", Name: name}
	}
	fn := models.Function{
		ID:         newID(),
		Name:       name,
		Parameters: []models.Parameter{},
		Required:   []string{},
	}
	s.Functions = append(s.Functions, fn)
	return fn, nil
}

// Function returns a copy of the function with id.
func (s *AppState) Function(id string) (models.Function, error) {
	i := s.functionIndex(id)
	if i < 0 {
		return models.Function{}, fmt.Errorf("function %s: %w", id, ErrNotFound)
	}
	return s.Functions[i], nil
}

// FunctionByName returns a pointer to the function called name, or nil.
func (s *AppState) FunctionByName(name string) *models.Function {
	i := s.functionByName(name)
	if i < 0 {
		return nil
	}
	return &s.Functions[i]
}

// UpdateFunction applies patch. Renaming a function updates the nodes that
// reference it.
func (s *AppState) UpdateFunction(id string, patch FunctionPatch) error {
	i := s.functionIndex(id)
	if i < 0 {
		return fmt.Errorf("function %s: %w", id, ErrNotFound)
	}
	if patch.Name != nil && *patch.Name != s.Functions[i].Name {
		name := *patch.Name
		if j := s.functionByName(name); j >= 0 && j != i {
			return &NameCollisionError{Kind: "function name", Name: name}
		}
		old := s.Functions[i].Name
		s.Functions[i].Name = name
		for k := range s.Nodes {
			if old != "" && s.Nodes[k].Function == old {
				s.Nodes[k].Function = name
			}
		}
	}
	if patch.Description != nil {
		s.Functions[i].Description = *patch.Description
	}
	return nil
}

// SetModuleClass sets the implementing module and class. A non-empty
// (module, class) pair already used by another function is rejected.
func (s *AppState) SetModuleClass(id, module, class string) error {
	i := s.functionIndex(id)
	if i < 0 {
		return fmt.Errorf("function %s: %w", id, ErrNotFound)
	}
	if module != "" || class != "" {
		for j, fn := range s.Functions {
			if j != i && fn.Module == module && fn.Class == class {
				return &NameCollisionError{Kind: "module and class", Name: module + "." + class}
			}
		}
	}
	s.Functions[i].Module = module
	s.Functions[i].Class = class
	return nil
}

// RemoveFunction deletes a function and detaches it from every node.
func (s *AppState) RemoveFunction(id string) error {
	i := s.functionIndex(id)
	if i < 0 {
		return fmt.Errorf("function %s: %w", id, ErrNotFound)
	}
	name := s.Functions[i].Name
	s.Functions = slices.Delete(s.Functions, i, i+1)
	for k := range s.Nodes {
		if name != "" && s.Nodes[k].Function == name {
			s.Nodes[k].Function = ""
		}
	}
	return nil
}

// AddParameter appends an empty parameter to a function.
func (s *AppState) AddParameter(functionID string) (models.Parameter, error) {
	i := s.functionIndex(functionID)
	if i < 0 {
		return models.Parameter{}, fmt.Errorf("function %s: %w", functionID, ErrNotFound)
	}
	param := models.Parameter{ID: newID()}
	s.Functions[i].Parameters = append(s.Functions[i].Parameters, param)
	return param, nil
}

// UpdateParameter applies patch to a parameter. A rename carries over to the
// function's required list.
func (s *AppState) UpdateParameter(functionID, paramID string, patch ParameterPatch) error {
	i, p, err := s.parameterIndex(functionID, paramID)
	if err != nil {
		return err
	}
	fn := &s.Functions[i]
	if patch.Type != nil {
		if !patch.Type.Valid() {
			return fmt.Errorf("%w %q", ErrInvalidParamType, *patch.Type)
		}
		fn.Parameters[p].Type = *patch.Type
	}
	if patch.Description != nil {
		fn.Parameters[p].Description = *patch.Description
	}
	if patch.Name != nil {
		old := fn.Parameters[p].Name
		fn.Parameters[p].Name = *patch.Name
		required := make([]string, 0, len(fn.Required))
		for _, req := range fn.Required {
			if req == old {
				req = *patch.Name
			}
			if req == "" || slices.Contains(required, req) {
				continue
			}
			required = append(required, req)
		}
		fn.Required = required
	}
	return nil
}

// RemoveParameter deletes a parameter and drops it from the required list.
func (s *AppState) RemoveParameter(functionID, paramID string) error {
	i, p, err := s.parameterIndex(functionID, paramID)
	if err != nil {
		return err
	}
	fn := &s.Functions[i]
	name := fn.Parameters[p].Name
	fn.Parameters = slices.Delete(fn.Parameters, p, p+1)
	if name != "" && !slices.ContainsFunc(fn.Parameters, func(param models.Parameter) bool { return param.Name == name }) {
		fn.Required = slices.DeleteFunc(fn.Required, func(req string) bool { return req == name })
	}
	return nil
}

// SetRequired replaces the required parameter list, keeping only names of
// existing named parameters.
func (s *AppState) SetRequired(functionID string, names []string) error {
	i := s.functionIndex(functionID)
	if i < 0 {
		return fmt.Errorf("function %s: %w", functionID, ErrNotFound)
	}
	fn := &s.Functions[i]
	required := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" || slices.Contains(required, name) {
			continue
		}
		if !slices.ContainsFunc(fn.Parameters, func(param models.Parameter) bool { return param.Name == name }) {
			continue
		}
		required = append(required, name)
	}
	fn.Required = required
	return nil
}

func (s *AppState) functionIndex(id string) int {
	return slices.IndexFunc(s.Functions, func(fn models.Function) bool { return fn.ID == id })
}

func (s *AppState) functionByName(name string) int {
	if name == "" {
		return -1
	}
	return slices.IndexFunc(s.Functions, func(fn models.Function) bool { return fn.Name == name })
}

func (s *AppState) parameterIndex(functionID, paramID string) (int, int, error) {
	i := s.functionIndex(functionID)
	if i < 0 {
		return -1, -1, fmt.Errorf("function %s: %w", functionID, ErrNotFound)
	}
	p := slices.IndexFunc(s.Functions[i].Parameters, func(param models.Parameter) bool { return param.ID == paramID })
	if p < 0 {
		return -1, -1, fmt.Errorf("parameter %s: %w", paramID, ErrNotFound)
	}
	return i, p, nil
}
