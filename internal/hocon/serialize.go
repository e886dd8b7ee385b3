package hocon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is an output encoding for documents.
type Format string

const (
	FormatHOCON Format = "hocon"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

const indentUnit = "  "

// ParseFormat normalizes a format name. An empty name means HOCON.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "hocon", "conf":
		return FormatHOCON, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown format %q (expected hocon, json or yaml)", name)
	}
}

// Encode renders tree in the requested format.
func Encode(tree map[string]any, format Format) ([]byte, error) {
	switch format {
	case FormatHOCON, "":
		return []byte(Serialize(tree)), nil
	case FormatJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", indentUnit)
		if err := enc.Encode(normalize(tree)); err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return buf.Bytes(), nil
	case FormatYAML:
		data, err := yaml.Marshal(normalize(tree))
		if err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// Serialize renders tree as HOCON text. Keys are sorted and every string is
// quoted, so "${name}" inside a value is written as literal text rather than
// as a HOCON substitution.
func Serialize(tree map[string]any) string {
	var b strings.Builder
	writeFields(&b, tree, 0)
	return b.String()
}

func writeFields(b *strings.Builder, obj map[string]any, depth int) {
	keys := make([]string, 0, len(obj))
	for key := range obj {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	indent := strings.Repeat(indentUnit, depth)
	for _, key := range keys {
		value := normalize(obj[key])
		b.WriteString(indent)
		b.WriteString(quoteKey(key))
		if nested, ok := value.(map[string]any); ok {
			b.WriteString(" ")
			writeValue(b, nested, depth)
		} else {
			b.WriteString(" = ")
			writeValue(b, value, depth)
		}
		b.WriteString("\n")
	}
}

func writeValue(b *strings.Builder, value any, depth int) {
	indent := strings.Repeat(indentUnit, depth)

	switch v := value.(type) {
	case nil:
		b.WriteString("null")
	case map[string]any:
		if len(v) == 0 {
			b.WriteString("{}")
			return
		}
		b.WriteString("{\n")
		writeFields(b, v, depth+1)
		b.WriteString(indent)
		b.WriteString("}")
	case []any:
		if len(v) == 0 {
			b.WriteString("[]")
			return
		}
		b.WriteString("[\n")
		for i, item := range v {
			b.WriteString(indent + indentUnit)
			writeValue(b, normalize(item), depth+1)
			if i < len(v)-1 {
				b.WriteString(",")
			}
			b.WriteString("\n")
		}
		b.WriteString(indent)
		b.WriteString("]")
	case string:
		b.WriteString(quoteString(v))
	case bool:
		b.WriteString(strconv.FormatBool(v))
	case int:
		b.WriteString(strconv.Itoa(v))
	case int64:
		b.WriteString(strconv.FormatInt(v, 10))
	case float64:
		b.WriteString(formatFloat(v))
	default:
		b.WriteString(quoteString(fmt.Sprint(v)))
	}
}

// normalize converts typed maps and slices into map[string]any and []any so
// the writers only deal with the generic tree shape.
func normalize(value any) any {
	switch v := value.(type) {
	case nil, string, bool, int, int64, float64, map[string]any, []any:
		return v
	case float32:
		return float64(v)
	case int32:
		return int(v)
	case map[string]string:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = item
		}
		return out
	case []string:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = normalize(iter.Value().Interface())
		}
		return out
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = normalize(rv.Index(i).Interface())
		}
		return out
	}
	return value
}

func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return quoteString(strconv.FormatFloat(f, 'g', -1, 64))
	}
	text := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(text, ".eE") {
		text += ".0"
	}
	return text
}

func quoteString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return strconv.Quote(s)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func quoteKey(key string) string {
	if key == "" {
		return `""`
	}
	for _, r := range key {
		if !(r == '_' || r == '-' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return quoteString(key)
		}
	}
	return key
}
