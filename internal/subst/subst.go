package subst

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Direction selects which way ApplyDeep rewrites string leaves.
type Direction string

const (
	// DirectionExpand replaces placeholders with their literal values.
	DirectionExpand Direction = "expand"
	// DirectionCollapse replaces literal values with placeholders.
	DirectionCollapse Direction = "collapse"
)

// placeholderPattern matches "$$", "${name}" and the bare "$name" form.
// Braced names may contain anything but whitespace, braces and "$" so that
// every placeholder Collapse writes can be expanded again.
var placeholderPattern = regexp.MustCompile(`\$(?:(\$)|\{([^{}$\s]+)\}|([_A-Za-z][_A-Za-z0-9]*))`)

// Placeholder returns the braced placeholder for name.
func Placeholder(name string) string {
	return "${" + name + "}"
}

// Expand replaces every "${name}" and "$name" in text with the mapped value.
// Placeholders whose name is not in m are left verbatim, as is any "$" that
// does not start a placeholder. "$$" is an escaped "$". Substituted values
// are never scanned again.
func Expand(text string, m *Map) string {
	if !strings.Contains(text, "$") {
		return text
	}

	matches := placeholderPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var out strings.Builder
	out.Grow(len(text))
	last := 0
	for _, loc := range matches {
		out.WriteString(text[last:loc[0]])
		last = loc[1]

		switch {
		case loc[2] >= 0:
			out.WriteByte('$')
		case loc[4] >= 0:
			writeResolved(&out, text[loc[0]:loc[1]], text[loc[4]:loc[5]], m)
		case loc[6] >= 0:
			writeResolved(&out, text[loc[0]:loc[1]], text[loc[6]:loc[7]], m)
		}
	}
	out.WriteString(text[last:])
	return out.String()
}

func writeResolved(out *strings.Builder, raw, name string, m *Map) {
	if value, ok := m.Get(name); ok {
		out.WriteString(value)
		return
	}
	out.WriteString(raw)
}

// segment is a run of text; locked segments were produced by an earlier
// replacement and are never matched again.
type segment struct {
	text   string
	locked bool
}

// Collapse replaces every whole-word occurrence of each mapped value in text
// with the placeholder for its name. Entries are applied in map order and
// values are matched literally. A match is whole-word when it is not
// directly preceded or followed by a word character on a side where the
// value itself starts or ends with one.
func Collapse(text string, m *Map) string {
	if text == "" || m.Len() == 0 {
		return text
	}

	segments := []segment{{text: text}}
	for _, b := range m.Bindings() {
		if b.Value == "" {
			continue
		}
		next := make([]segment, 0, len(segments))
		for _, seg := range segments {
			if seg.locked {
				next = append(next, seg)
				continue
			}
			next = append(next, collapseSegment(seg.text, b.Name, b.Value)...)
		}
		segments = next
	}

	var out strings.Builder
	out.Grow(len(text))
	for _, seg := range segments {
		out.WriteString(seg.text)
	}
	return out.String()
}

func collapseSegment(text, name, value string) []segment {
	var (
		out    []segment
		start  int
		offset int
	)
	checkBefore := isWordRune(firstRune(value))
	checkAfter := isWordRune(lastRune(value))

	for offset <= len(text)-len(value) {
		idx := strings.Index(text[offset:], value)
		if idx < 0 {
			break
		}
		begin := offset + idx
		end := begin + len(value)

		if (checkBefore && isWordRune(lastRune(text[:begin]))) ||
			(checkAfter && isWordRune(firstRune(text[end:]))) {
			_, size := utf8.DecodeRuneInString(text[begin:])
			offset = begin + size
			continue
		}

		if begin > start {
			out = append(out, segment{text: text[start:begin]})
		}
		out = append(out, segment{text: Placeholder(name), locked: true})
		start = end
		offset = end
	}

	if start == 0 && len(out) == 0 {
		return []segment{{text: text}}
	}
	if start < len(text) {
		out = append(out, segment{text: text[start:]})
	}
	return out
}

func firstRune(s string) rune {
	if s == "" {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

func lastRune(s string) rune {
	if s == "" {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeLastRuneInString(s)
	return r
}

func isWordRune(r rune) bool {
	if r == utf8.RuneError {
		return false
	}
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Apply rewrites a single string in the given direction.
func Apply(text string, m *Map, dir Direction) string {
	switch dir {
	case DirectionCollapse:
		return Collapse(text, m)
	default:
		return Expand(text, m)
	}
}

// ApplyDeep returns a copy of tree with Apply run over every string leaf of
// nested maps and slices. Map keys, numbers, booleans and nil are returned
// unchanged.
func ApplyDeep(tree any, m *Map, dir Direction) any {
	switch v := tree.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, value := range v {
			out[key] = ApplyDeep(value, m, dir)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, value := range v {
			out[i] = ApplyDeep(value, m, dir)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(v))
		for key, value := range v {
			out[key] = Apply(value, m, dir)
		}
		return out
	case []string:
		out := make([]string, len(v))
		for i, value := range v {
			out[i] = Apply(value, m, dir)
		}
		return out
	case string:
		return Apply(v, m, dir)
	default:
		return tree
	}
}
