package cookie

import "strings"

// Attribute is one "key[=value]" pair following the name/value pair.
type Attribute struct {
	Key      string // trimmed and lower-cased
	Value    string // trimmed
	HasValue bool   // false for flags such as "Secure"
}

// Attributes maps lower-cased attribute keys to their last value.
type Attributes map[string]Attribute

// Has reports whether key was present, with or without a value.
func (a Attributes) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// Get returns the value of key and whether it was present.
func (a Attributes) Get(key string) (string, bool) {
	attr, ok := a[key]
	return attr.Value, ok
}

// Tokens is the syntactic breakdown of a Set-Cookie header.
type Tokens struct {
	Name       string
	Value      string
	Attributes []Attribute // in header order, duplicates kept
}

// AttributeMap collapses the attribute list into a map. When a key repeats,
// the last occurrence wins.
func (t Tokens) AttributeMap() Attributes {
	m := make(Attributes, len(t.Attributes))
	for _, attr := range t.Attributes {
		m[attr.Key] = attr
	}
	return m
}

// Tokenize splits a Set-Cookie header into its name/value pair and
// attributes. Empty segments produced by leading, trailing or repeated
// semicolons are dropped. The first remaining segment is the name/value
// pair; a segment without '=' is a value with an empty name, which is
// reported as EmptyCookieName.
func Tokenize(header string) Tokens {
	var toks Tokens
	first := true

	for start := 0; start <= len(header); {
		end := strings.IndexByte(header[start:], ';')
		if end < 0 {
			end = len(header)
		} else {
			end += start
		}
		segment := strings.TrimSpace(header[start:end])
		start = end + 1

		if segment == "" {
			continue
		}
		if first {
			toks.Name, toks.Value = splitNameValue(segment)
			first = false
			continue
		}
		toks.Attributes = append(toks.Attributes, splitAttribute(segment))
	}

	if first {
		toks.Name = EmptyCookieName
	}
	return toks
}

func splitNameValue(segment string) (string, string) {
	idx := indexUnescaped(segment, '=')
	if idx < 0 {
		return EmptyCookieName, segment
	}
	name := strings.TrimSpace(segment[:idx])
	if name == "" {
		name = EmptyCookieName
	}
	return name, strings.TrimSpace(segment[idx+1:])
}

func splitAttribute(segment string) Attribute {
	idx := strings.IndexByte(segment, '=')
	if idx < 0 {
		return Attribute{Key: strings.ToLower(segment)}
	}
	return Attribute{
		Key:      strings.ToLower(strings.TrimSpace(segment[:idx])),
		Value:    strings.TrimSpace(segment[idx+1:]),
		HasValue: true,
	}
}

// indexUnescaped returns the index of the first c in s not preceded by a
// backslash, or -1.
func indexUnescaped(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case c:
			return i
		}
	}
	return -1
}
