// Package documents converts editor state to and from the three document
// kinds netforge reads and writes: variables, function specs and networks.
package documents

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/opencode-ai/netforge/internal/hocon"
	"github.com/opencode-ai/netforge/internal/models"
	"github.com/opencode-ai/netforge/internal/subst"
)

// InvalidNetworkError is returned when a network cannot be exported because
// it breaks one or more invariants.
type InvalidNetworkError struct {
	Violations []models.Violation
}

func (e *InvalidNetworkError) Error() string {
	switch len(e.Violations) {
	case 0:
		return "invalid network"
	case 1:
		return fmt.Sprintf("invalid network: %s", e.Violations[0].Message)
	default:
		return fmt.Sprintf("invalid network: %s (and %d more)", e.Violations[0].Message, len(e.Violations)-1)
	}
}

// Render encodes a document tree.
func Render(tree map[string]any, format hocon.Format) ([]byte, error) {
	return hocon.Encode(tree, format)
}

// Transform parses text and rewrites every string leaf in the given
// direction with m.
func Transform(source, text string, m *subst.Map, dir subst.Direction) (map[string]any, error) {
	tree, err := hocon.ParseNamed(source, text)
	if err != nil {
		return nil, err
	}
	return subst.ApplyDeep(tree, m, dir).(map[string]any), nil
}

// RemoveEmpty drops "", empty lists and empty objects from nested objects,
// deepest first. List elements are kept so positions stay stable.
func RemoveEmpty(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			cleaned := RemoveEmpty(item)
			if isEmpty(cleaned) {
				continue
			}
			out[key] = cleaned
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = RemoveEmpty(item)
		}
		return out
	default:
		return value
	}
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}

func getString(obj map[string]any, key string) string {
	value, ok := obj[key]
	if !ok || value == nil {
		return ""
	}
	return stringify(value)
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

func getObject(obj map[string]any, key string) map[string]any {
	if nested, ok := obj[key].(map[string]any); ok {
		return nested
	}
	return nil
}

func getStrings(obj map[string]any, key string) []string {
	switch v := obj[key].(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			out = append(out, stringify(item))
		}
		return out
	case []string:
		return append([]string(nil), v...)
	default:
		return []string{}
	}
}

func getFloat(obj map[string]any, key string, fallback float64) float64 {
	switch v := obj[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return fallback
}

func sortedKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for key := range obj {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// splitClassPath splits "pkg.module.Class" at the last dot.
func splitClassPath(path string) (module, class string) {
	i := strings.LastIndex(path, ".")
	if i < 0 {
		return "", ""
	}
	return path[:i], path[i+1:]
}
