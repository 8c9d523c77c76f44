// Package jsonx is a shape-directed reader over JSON text. It is not a
// validating parser: it relies on the well-known, stable shapes returned by
// the Jira, Confluence, and Bitbucket REST APIs, and every operation is
// total - malformed or missing input yields a default/empty value rather
// than an error.
package jsonx

import (
	"strconv"
	"strings"
)

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// findValueStart locates the literal "key" followed by optional whitespace
// and a colon, and returns the index of the first non-space byte of its
// value. ok is false if the key is not found anywhere in json.
func findValueStart(json, key string) (pos int, ok bool) {
	needle := `"` + key + `"`
	from := 0
	for {
		idx := strings.Index(json[from:], needle)
		if idx == -1 {
			return 0, false
		}
		abs := from + idx
		p := abs + len(needle)
		for p < len(json) && isSpace(json[p]) {
			p++
		}
		if p < len(json) && json[p] == ':' {
			p++
			for p < len(json) && isSpace(json[p]) {
				p++
			}
			return p, true
		}
		from = abs + 1
	}
}

// parseStringLiteral parses a JSON string starting at json[start] == '"'.
// Returns the unescaped value, the index just past the closing quote, and
// whether a closing quote was found.
func parseStringLiteral(json string, start int) (value string, end int, ok bool) {
	if start >= len(json) || json[start] != '"' {
		return "", start, false
	}
	var sb strings.Builder
	i := start + 1
	for i < len(json) {
		c := json[i]
		if c == '\\' {
			if i+1 >= len(json) {
				break
			}
			next := json[i+1]
			switch next {
			case '"':
				sb.WriteByte('"')
				i += 2
			case '\\':
				sb.WriteByte('\\')
				i += 2
			case '/':
				sb.WriteByte('/')
				i += 2
			case 'n':
				sb.WriteByte('\n')
				i += 2
			case 't':
				sb.WriteByte('\t')
				i += 2
			case 'r':
				sb.WriteByte('\r')
				i += 2
			case 'b':
				sb.WriteByte('\b')
				i += 2
			case 'f':
				sb.WriteByte('\f')
				i += 2
			case 'u':
				if i+6 <= len(json) {
					if r, perr := strconv.ParseUint(json[i+2:i+6], 16, 32); perr == nil {
						sb.WriteRune(rune(r))
					}
					i += 6
				} else {
					i += 2
				}
			default:
				sb.WriteByte(next)
				i += 2
			}
			continue
		}
		if c == '"' {
			return sb.String(), i + 1, true
		}
		sb.WriteByte(c)
		i++
	}
	return sb.String(), i, false
}

// extractBalanced returns the raw substring of a bracketed value starting at
// json[start], matching brackets while skipping bracket characters that
// appear inside string literals. If the input is unterminated, it returns
// everything from start to the end of the text.
func extractBalanced(json string, start int) string {
	if start >= len(json) {
		return ""
	}
	open := json[start]
	var closeCh byte
	switch open {
	case '{':
		closeCh = '}'
	case '[':
		closeCh = ']'
	default:
		return ""
	}

	depth := 0
	inStr := false
	i := start
	for i < len(json) {
		c := json[i]
		if inStr {
			if c == '\\' {
				i += 2
				continue
			}
			if c == '"' {
				inStr = false
			}
			i++
			continue
		}
		switch c {
		case '"':
			inStr = true
		case open:
			depth++
		case closeCh:
			depth--
			if depth == 0 {
				return json[start : i+1]
			}
		}
		i++
	}
	return json[start:]
}

// StringAt returns the first string value associated with "key": in json.
func StringAt(json, key string) (string, bool) {
	pos, ok := findValueStart(json, key)
	if !ok || pos >= len(json) || json[pos] != '"' {
		return "", false
	}
	value, _, ok := parseStringLiteral(json, pos)
	return value, ok
}

// StringOrDefault returns StringAt's value, or dflt when absent.
func StringOrDefault(json, key, dflt string) string {
	if v, ok := StringAt(json, key); ok {
		return v
	}
	return dflt
}

// IntAt parses the numeric token following "key": and returns dflt on
// absence or parse failure.
func IntAt(json, key string, dflt int) int {
	pos, ok := findValueStart(json, key)
	if !ok {
		return dflt
	}
	end := pos
	if end < len(json) && (json[end] == '-' || json[end] == '+') {
		end++
	}
	for end < len(json) && (isDigit(json[end]) || json[end] == '.' || json[end] == 'e' || json[end] == 'E' || json[end] == '+' || json[end] == '-') {
		end++
	}
	token := json[pos:end]
	if token == "" {
		return dflt
	}
	f, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return dflt
	}
	return int(f)
}

// BoolAt accepts the literal tokens true/false following "key":.
func BoolAt(json, key string, dflt bool) bool {
	pos, ok := findValueStart(json, key)
	if !ok {
		return dflt
	}
	if strings.HasPrefix(json[pos:], "true") {
		return true
	}
	if strings.HasPrefix(json[pos:], "false") {
		return false
	}
	return dflt
}

// Block returns the raw object or array substring associated with "key":,
// with matched brackets, or "" if the key is absent or its value isn't
// bracketed.
func Block(json, key string) string {
	pos, ok := findValueStart(json, key)
	if !ok || pos >= len(json) {
		return ""
	}
	c := json[pos]
	if c != '{' && c != '[' {
		return ""
	}
	return extractBalanced(json, pos)
}

// splitTopLevel splits the interior of a JSON array/object body (without the
// surrounding brackets) into its top-level comma-separated element texts,
// each trimmed of surrounding whitespace.
func splitTopLevel(inner string) []string {
	var out []string
	depth := 0
	inStr := false
	start := 0
	i := 0
	for i < len(inner) {
		c := inner[i]
		if inStr {
			if c == '\\' {
				i += 2
				continue
			}
			if c == '"' {
				inStr = false
			}
			i++
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
		case ',':
			if depth == 0 {
				elem := strings.TrimSpace(inner[start:i])
				if elem != "" {
					out = append(out, elem)
				}
				start = i + 1
			}
		}
		i++
	}
	if start <= len(inner) {
		elem := strings.TrimSpace(inner[start:])
		if elem != "" {
			out = append(out, elem)
		}
	}
	return out
}

// ArrayBlocks returns the ordered sequence of raw object/array element texts
// inside the array named by key. Non object/array elements are skipped.
func ArrayBlocks(json, key string) []string {
	b := Block(json, key)
	if len(b) < 2 || b[0] != '[' {
		return []string{}
	}
	elems := splitTopLevel(b[1 : len(b)-1])
	out := make([]string, 0, len(elems))
	for _, e := range elems {
		if e != "" && (e[0] == '{' || e[0] == '[') {
			out = append(out, e)
		}
	}
	return out
}

// StringList returns the ordered sequence of strings inside the array named
// by key.
func StringList(json, key string) []string {
	b := Block(json, key)
	if len(b) < 2 || b[0] != '[' {
		return []string{}
	}
	elems := splitTopLevel(b[1 : len(b)-1])
	out := make([]string, 0, len(elems))
	for _, e := range elems {
		if e != "" && e[0] == '"' {
			if v, _, ok := parseStringLiteral(e, 0); ok {
				out = append(out, v)
			}
		}
	}
	return out
}

// Navigate walks N-1 nested blocks identified by keys[0..N-2], then returns
// the final key's string value inside the last block.
func Navigate(json string, keys ...string) string {
	if len(keys) == 0 {
		return ""
	}
	current := json
	for _, k := range keys[:len(keys)-1] {
		current = Block(current, k)
		if current == "" {
			return ""
		}
	}
	v, _ := StringAt(current, keys[len(keys)-1])
	return v
}

// ExtractAdfText returns all "text" leaves of an Atlassian Document Format
// JSON tree, joined by single spaces and trimmed.
func ExtractAdfText(json string) string {
	const needle = `"text"`
	var parts []string
	offset := 0
	for {
		idx := strings.Index(json[offset:], needle)
		if idx == -1 {
			break
		}
		abs := offset + idx
		p := abs + len(needle)
		for p < len(json) && isSpace(json[p]) {
			p++
		}
		if p < len(json) && json[p] == ':' {
			p++
			for p < len(json) && isSpace(json[p]) {
				p++
			}
			if p < len(json) && json[p] == '"' {
				v, end, ok := parseStringLiteral(json, p)
				if ok {
					parts = append(parts, v)
				}
				offset = end
				continue
			}
		}
		offset = abs + len(needle)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// RawToken returns the raw JSON token text for "key": - a quoted string
// (including its quotes), a bracketed block, or a bare literal (number,
// true, false, null) - without interpreting it. Used to copy JSON-RPC ids
// verbatim regardless of their shape.
func RawToken(json, key string) string {
	pos, ok := findValueStart(json, key)
	if !ok || pos >= len(json) {
		return ""
	}
	switch json[pos] {
	case '"':
		_, end, _ := parseStringLiteral(json, pos)
		return json[pos:end]
	case '{', '[':
		return extractBalanced(json, pos)
	default:
		end := pos
		for end < len(json) && json[end] != ',' && json[end] != '}' && json[end] != ']' && !isSpace(json[end]) {
			end++
		}
		return strings.TrimSpace(json[pos:end])
	}
}

// ArgumentMap is an insertion-ordered mapping of argument name to its
// canonical string form, as produced by ExtractArgumentMap.
type ArgumentMap struct {
	keys   []string
	values map[string]string
}

// Get returns the canonical string value for name, and whether it was present.
func (m *ArgumentMap) Get(name string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.values[name]
	return v, ok
}

// GetOrDefault returns Get's value, or dflt when absent.
func (m *ArgumentMap) GetOrDefault(name, dflt string) string {
	if v, ok := m.Get(name); ok {
		return v
	}
	return dflt
}

// GetInt parses the named argument as an integer, returning dflt on absence
// or parse failure.
func (m *ArgumentMap) GetInt(name string, dflt int) int {
	v, ok := m.Get(name)
	if !ok {
		return dflt
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return dflt
	}
	return n
}

// Keys returns argument names in insertion order.
func (m *ArgumentMap) Keys() []string {
	if m == nil {
		return nil
	}
	return m.keys
}

// ExtractArgumentMap parses a flat JSON object's top-level key/value pairs
// into an insertion-ordered ArgumentMap. String values are unquoted; numbers
// and booleans keep their literal text; nested objects/arrays keep their raw
// text; null becomes the empty string.
func ExtractArgumentMap(jsonObject string) *ArgumentMap {
	m := &ArgumentMap{values: map[string]string{}}

	s := strings.TrimSpace(jsonObject)
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		s = s[1 : len(s)-1]
	}

	i := 0
	n := len(s)
	for i < n {
		for i < n && (isSpace(s[i]) || s[i] == ',') {
			i++
		}
		if i >= n || s[i] != '"' {
			break
		}
		key, after, ok := parseStringLiteral(s, i)
		if !ok {
			break
		}
		i = after
		for i < n && isSpace(s[i]) {
			i++
		}
		if i >= n || s[i] != ':' {
			break
		}
		i++
		for i < n && isSpace(s[i]) {
			i++
		}
		if i >= n {
			break
		}

		var value string
		switch {
		case s[i] == '"':
			v, end, _ := parseStringLiteral(s, i)
			value = v
			i = end
		case s[i] == '{' || s[i] == '[':
			block := extractBalanced(s, i)
			value = block
			i += len(block)
		case strings.HasPrefix(s[i:], "true"):
			value = "true"
			i += 4
		case strings.HasPrefix(s[i:], "false"):
			value = "false"
			i += 5
		case strings.HasPrefix(s[i:], "null"):
			value = ""
			i += 4
		default:
			end := i
			for end < n && s[end] != ',' && s[end] != '}' {
				end++
			}
			value = strings.TrimSpace(s[i:end])
			i = end
		}

		m.keys = append(m.keys, key)
		m.values[key] = value
	}

	return m
}

// EscapeString escapes s for embedding as a JSON string literal body
// (without surrounding quotes).
func EscapeString(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if r < 0x20 {
				sb.WriteString("\\u")
				hex := strconv.FormatInt(int64(r), 16)
				for len(hex) < 4 {
					hex = "0" + hex
				}
				sb.WriteString(hex)
			} else {
				sb.WriteRune(r)
			}
		}
	}
	return sb.String()
}
