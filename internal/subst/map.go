// Package subst implements the variable substitution engine used to template
// text fields of agent network documents.
package subst

import (
	"bytes"
	"encoding/json"
)

// Binding is a single name/value pair used for substitution.
type Binding struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Map is an ordered name to value lookup. Iteration order is the order in
// which each name was first set; overwriting a name keeps its slot.
type Map struct {
	keys   []string
	values map[string]string
}

// NewMap creates an empty Map.
func NewMap() *Map {
	return &Map{values: make(map[string]string)}
}

// MapOf builds a Map from alternating name, value arguments. A trailing
// name without a value is ignored.
func MapOf(pairs ...string) *Map {
	m := NewMap()
	for i := 0; i+1 < len(pairs); i += 2 {
		m.Set(pairs[i], pairs[i+1])
	}
	return m
}

// BuildMap folds bindings left to right into the effective substitution map.
// Later bindings overwrite earlier ones with the same name. Bindings with an
// empty name or an empty value are skipped.
func BuildMap(bindings []Binding) *Map {
	m := NewMap()
	for _, b := range bindings {
		if b.Name == "" || b.Value == "" {
			continue
		}
		m.Set(b.Name, b.Value)
	}
	return m
}

// Set stores value under name.
func (m *Map) Set(name, value string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, exists := m.values[name]; !exists {
		m.keys = append(m.keys, name)
	}
	m.values[name] = value
}

// Get returns the value stored under name.
func (m *Map) Get(name string) (string, bool) {
	if m == nil {
		return "", false
	}
	value, ok := m.values[name]
	return value, ok
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the names in iteration order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// Bindings returns the entries in iteration order.
func (m *Map) Bindings() []Binding {
	if m == nil {
		return nil
	}
	out := make([]Binding, 0, len(m.keys))
	for _, key := range m.keys {
		out = append(out, Binding{Name: key, Value: m.values[key]})
	}
	return out
}

// ToMap returns an unordered copy of the entries.
func (m *Map) ToMap() map[string]string {
	out := make(map[string]string, m.Len())
	if m == nil {
		return out
	}
	for _, key := range m.keys {
		out[key] = m.values[key]
	}
	return out
}

// MarshalJSON encodes the map as a JSON object in iteration order.
func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, b := range m.Bindings() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(b.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(b.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
