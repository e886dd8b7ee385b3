// Package starters provides starter networks: parameterized network
// documents that "netforge new --starter" instantiates.
package starters

import (
	"errors"
	"fmt"
	"strings"

	"github.com/opencode-ai/netforge/internal/documents"
	"github.com/opencode-ai/netforge/internal/state"
)

// ErrMissingVariable is returned when a required starter variable has no
// value and no default.
var ErrMissingVariable = errors.New("missing required variable")

// Starter is a network document with the variables it expects.
type Starter struct {
	Name        string       `yaml:"name" json:"name"`
	Description string       `yaml:"description" json:"description"`
	Network     string       `yaml:"network" json:"network"`
	Variables   []StarterVar `yaml:"variables,omitempty" json:"variables,omitempty"`
	Tags        []string     `yaml:"tags,omitempty" json:"tags,omitempty"`
	Source      string       `yaml:"-" json:"source"` // file path or "builtin"
}

// StarterVar describes a variable used in a starter network.
type StarterVar struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Default     string `yaml:"default,omitempty" json:"default,omitempty"`
	Required    bool   `yaml:"required" json:"required"`
}

// Instantiate builds a network from s. Each declared variable becomes a
// binding, taking its value from values or its default; placeholders in the
// network text are then expanded with those bindings. Values for names the
// starter does not declare are bound too, after the declared ones.
func Instantiate(s *Starter, base *state.AppState, values map[string]string) (*state.AppState, error) {
	if s == nil {
		return nil, fmt.Errorf("starter is required")
	}

	vars := base.Clone()
	declared := make(map[string]struct{}, len(s.Variables))
	for _, v := range s.Variables {
		declared[v.Name] = struct{}{}
		value, ok := values[v.Name]
		if !ok || strings.TrimSpace(value) == "" {
			value = v.Default
		}
		if strings.TrimSpace(value) == "" {
			if v.Required {
				return nil, fmt.Errorf("starter %q: %w %q", s.Name, ErrMissingVariable, v.Name)
			}
			continue
		}
		vars.AddBinding(v.Name, value)
	}
	for _, name := range sortedNames(values) {
		if _, ok := declared[name]; ok {
			continue
		}
		vars.AddBinding(name, values[name])
	}

	source := s.Source
	if source == "" || source == "builtin" {
		source = "starter " + s.Name
	}
	return documents.ImportNetwork(vars, source, s.Network)
}
