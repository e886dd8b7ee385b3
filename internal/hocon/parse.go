// Package hocon reads and writes configuration documents as plain Go trees
// of map[string]any, []any, string, int, float64, bool and nil.
package hocon

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	gohocon "github.com/gurkankaymak/hocon"
)

// ErrNotObject is returned when a document root is not an object.
var ErrNotObject = errors.New("document root must be an object")

// ParseError reports a malformed input document.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("parse document: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse parses HOCON (or JSON) text into a tree.
func Parse(text string) (map[string]any, error) {
	return ParseNamed("", text)
}

// ParseNamed parses text and labels errors with source.
func ParseNamed(source, text string) (tree map[string]any, err error) {
	if strings.TrimSpace(text) == "" {
		return map[string]any{}, nil
	}

	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			tree = nil
			err = &ParseError{Source: source, Err: fmt.Errorf("%v", r)}
		}
	}()

	conf, err := gohocon.ParseString(text)
	if err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}

	root := conf.GetRoot()
	if root == nil {
		return map[string]any{}, nil
	}
	obj, ok := root.(gohocon.Object)
	if !ok {
		return nil, &ParseError{Source: source, Err: ErrNotObject}
	}
	return convertObject(obj), nil
}

func convertObject(obj gohocon.Object) map[string]any {
	out := make(map[string]any, len(obj))
	for key, value := range obj {
		out[unescape(key)] = convertValue(value)
	}
	return out
}

func convertValue(value gohocon.Value) any {
	if value == nil {
		return nil
	}

	switch v := value.(type) {
	case gohocon.Object:
		return convertObject(v)
	case gohocon.Array:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = convertValue(item)
		}
		return out
	case gohocon.String:
		return unescape(string(v))
	case gohocon.Int:
		return int(v)
	case gohocon.Float64:
		return float64(v)
	case gohocon.Boolean:
		return bool(v)
	case gohocon.Null:
		return nil
	default:
		return scalarFromText(v.String())
	}
}

// unescape decodes the JSON-style escapes the parser leaves in quoted
// strings. Text that does not decode is returned as is.
func unescape(text string) string {
	if !strings.Contains(text, `\`) {
		return text
	}
	var out string
	if err := json.Unmarshal([]byte(`"`+text+`"`), &out); err != nil {
		return text
	}
	return out
}

// scalarFromText recovers a typed scalar from value kinds the parser does not
// export, such as concatenations and narrower float types.
func scalarFromText(text string) any {
	if n, err := strconv.Atoi(text); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return f
	}
	switch text {
	case "true":
		return true
	case "false":
		return false
	}
	return text
}
