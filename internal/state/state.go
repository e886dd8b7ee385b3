// Package state holds the editable agent network: variable bindings, nodes
// and function specifications, plus the mutations the editor applies to them.
//
// An AppState is not safe for concurrent use. Hosts that share one across
// goroutines must guard it with a single-writer lock or swap in Clone()d
// copies.
package state

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/opencode-ai/netforge/internal/models"
	"github.com/opencode-ai/netforge/internal/subst"
)

var (
	// ErrNotFound is returned when an id does not match any record.
	ErrNotFound = errors.New("not found")
	// ErrFrontmanRequired is returned when removing the first node.
	ErrFrontmanRequired = errors.New("the frontman node cannot be removed")
	// ErrInvalidParamType is returned for a parameter type outside
	// models.ParamTypes.
	ErrInvalidParamType = errors.New("invalid parameter type")
)

// NameCollisionError is returned when a new name duplicates an existing one.
type NameCollisionError struct {
	Kind string
	Name string
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("%s %q is already in use, choose a different one", e.Kind, e.Name)
}

// AppState is the complete editor state for one agent network.
type AppState struct {
	Bindings     []models.Binding  `json:"bindings"`
	Nodes        []models.Node     `json:"nodes"`
	Functions    []models.Function `json:"functions"`
	LLM          models.LLMConfig  `json:"llm_config"`
	Hierarchical bool              `json:"hierarchical"`
}

// New creates a fresh network with an unnamed frontman node using llm.
func New(llm models.LLMConfig) *AppState {
	if llm.ModelName == "" {
		llm.ModelName = models.DefaultLLMConfig().ModelName
	}
	s := &AppState{
		Bindings:  []models.Binding{},
		Functions: []models.Function{},
		LLM:       llm,
	}
	s.Nodes = []models.Node{s.newNode()}
	return s
}

// Clone returns a deep copy of s.
func (s *AppState) Clone() *AppState {
	out := &AppState{
		Bindings:     slices.Clone(s.Bindings),
		Nodes:        make([]models.Node, len(s.Nodes)),
		Functions:    make([]models.Function, len(s.Functions)),
		LLM:          s.LLM,
		Hierarchical: s.Hierarchical,
	}
	if out.Bindings == nil {
		out.Bindings = []models.Binding{}
	}
	for i, node := range s.Nodes {
		node.Tools = slices.Clone(node.Tools)
		out.Nodes[i] = node
	}
	for i, fn := range s.Functions {
		fn.Parameters = slices.Clone(fn.Parameters)
		fn.Required = slices.Clone(fn.Required)
		out.Functions[i] = fn
	}
	return out
}

func newID() string {
	return uuid.NewString()
}

// AddBinding appends a binding. Duplicate names are allowed; the last one
// wins in the effective map.
func (s *AppState) AddBinding(name, value string) models.Binding {
	b := models.Binding{ID: newID(), Name: name, Value: value}
	s.Bindings = append(s.Bindings, b)
	return b
}

// UpdateBinding changes a binding in place.
func (s *AppState) UpdateBinding(id, name, value string) error {
	i := s.bindingIndex(id)
	if i < 0 {
		return fmt.Errorf("binding %s: %w", id, ErrNotFound)
	}
	s.Bindings[i].Name = name
	s.Bindings[i].Value = value
	return nil
}

// RemoveBinding deletes a binding.
func (s *AppState) RemoveBinding(id string) error {
	i := s.bindingIndex(id)
	if i < 0 {
		return fmt.Errorf("binding %s: %w", id, ErrNotFound)
	}
	s.Bindings = slices.Delete(s.Bindings, i, i+1)
	return nil
}

// EffectiveMap folds the bindings into the substitution map.
func (s *AppState) EffectiveMap() *subst.Map {
	bindings := make([]subst.Binding, 0, len(s.Bindings))
	for _, b := range s.Bindings {
		bindings = append(bindings, subst.Binding{Name: b.Name, Value: b.Value})
	}
	return subst.BuildMap(bindings)
}

func (s *AppState) bindingIndex(id string) int {
	return slices.IndexFunc(s.Bindings, func(b models.Binding) bool { return b.ID == id })
}
