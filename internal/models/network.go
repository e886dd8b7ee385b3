// Package models defines the records edited by netforge.
package models

// Binding is a user-defined substitution variable.
type Binding struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// LLMConfig holds language model parameters for a node or the network.
type LLMConfig struct {
	ModelName   string  `json:"model_name"`
	Temperature float64 `json:"temperature"`
}

// Node is an agent or tool in the network.
type Node struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Class        string    `json:"class,omitempty"` // used when no function is attached
	Instructions string    `json:"instructions"`
	Command      string    `json:"command"`
	Tools        []string  `json:"tools"`
	Function     string    `json:"function,omitempty"` // editor function name
	LLM          LLMConfig `json:"llm_config"`
}

// ParamType is a JSON-Schema primitive type.
type ParamType string

const (
	ParamTypeString  ParamType = "string"
	ParamTypeNumber  ParamType = "number"
	ParamTypeInteger ParamType = "integer"
	ParamTypeObject  ParamType = "object"
	ParamTypeArray   ParamType = "array"
	ParamTypeBoolean ParamType = "boolean"
	ParamTypeNull    ParamType = "null"
)

// ParamTypes lists the accepted parameter types in display order.
var ParamTypes = []ParamType{
	ParamTypeString,
	ParamTypeNumber,
	ParamTypeInteger,
	ParamTypeObject,
	ParamTypeArray,
	ParamTypeBoolean,
	ParamTypeNull,
}

// Valid reports whether t is a known parameter type. The empty type is
// allowed and simply omitted on export.
func (t ParamType) Valid() bool {
	if t == "" {
		return true
	}
	for _, known := range ParamTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Parameter is one property of a function's parameter schema.
type Parameter struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Type        ParamType `json:"type"`
	Description string    `json:"description"`
}

// Function is a function specification that nodes can expose.
type Function struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []Parameter `json:"parameters"`
	Required    []string    `json:"required"`
	Module      string      `json:"module"`
	Class       string      `json:"class"`
}

// ClassPath returns "module.class", or "" when both parts are empty.
func (f *Function) ClassPath() string {
	if f.Module == "" && f.Class == "" {
		return ""
	}
	return f.Module + "." + f.Class
}
