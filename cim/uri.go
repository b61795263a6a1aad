package cim

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

// Errors
var (
	ErrURISyntax = errors.New("invalid WBEM URI")
)

// formatInstanceName renders the canonical WBEM URI form of an instance
// path:
//
//	//host/namespace:ClassName.key1="v1",key2=42
//
// Keybindings are sorted by name, ascending and case-insensitive, for
// canonicalization. Value quoting per CIM type: strings and char16 in
// double quotes with backslash escaping, integers, booleans and reals
// bare, datetimes in double quotes, references as nested instance paths
// in single quotes.
func formatInstanceName(n *InstanceName) string {
	var b strings.Builder
	if n.Host != "" {
		b.WriteString("//")
		b.WriteString(n.Host)
		b.WriteByte('/')
	}
	if n.Namespace != "" {
		b.WriteString(n.Namespace)
		b.WriteByte(':')
	}
	b.WriteString(n.ClassName)

	names := n.keybindings.keys()
	slices.SortStableFunc(names, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	for i, name := range names {
		if i == 0 {
			b.WriteByte('.')
		} else {
			b.WriteByte(',')
		}
		b.WriteString(name)
		b.WriteByte('=')
		value, _ := n.keybindings.get(name)
		writeKeybindingValue(&b, value)
	}
	return b.String()
}

func writeKeybindingValue(b *strings.Builder, v Value) {
	switch v.Type() {
	case TypeString, TypeChar16, TypeDateTime:
		text, _ := v.WireText()
		b.WriteByte('"')
		b.WriteString(escapeURIString(text, '"'))
		b.WriteByte('"')
	case TypeReference:
		ref := v.ReferenceValue()
		b.WriteByte('\'')
		b.WriteString(escapeURIString(formatInstanceName(ref), '\''))
		b.WriteByte('\'')
	default:
		text, _ := v.WireText()
		b.WriteString(text)
	}
}

func escapeURIString(s string, quote byte) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' || s[i] == quote {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// ParseInstanceName parses the WBEM URI subset emitted by the renderer.
// Bare numbers parse as uint64 (sint64 when negative, real64 when they
// carry a fraction or exponent); double-quoted values parse as strings.
// Type widths narrower than 64 bits are not representable in the grammar.
func ParseInstanceName(s string) (*InstanceName, error) {
	name := &InstanceName{}
	rest := s

	if strings.HasPrefix(rest, "//") {
		rest = rest[2:]
		slash := strings.IndexByte(rest, '/')
		if slash < 0 {
			return nil, fmt.Errorf("%w: missing '/' after host", ErrURISyntax)
		}
		name.Host = rest[:slash]
		rest = rest[slash+1:]
	}

	if colon := strings.IndexByte(rest, ':'); colon >= 0 {
		// a ':' before the first '.' separates namespace from class name
		dot := strings.IndexByte(rest, '.')
		if dot < 0 || colon < dot {
			name.Namespace = rest[:colon]
			rest = rest[colon+1:]
		}
	}

	dot := strings.IndexByte(rest, '.')
	if dot < 0 {
		if rest == "" {
			return nil, fmt.Errorf("%w: empty class name", ErrURISyntax)
		}
		name.ClassName = rest
		return name, nil
	}
	name.ClassName = rest[:dot]
	if name.ClassName == "" {
		return nil, fmt.Errorf("%w: empty class name", ErrURISyntax)
	}
	rest = rest[dot+1:]

	for rest != "" {
		eq := strings.IndexByte(rest, '=')
		if eq <= 0 {
			return nil, fmt.Errorf("%w: expected key=value in %q", ErrURISyntax, rest)
		}
		key := rest[:eq]
		rest = rest[eq+1:]

		value, remaining, err := parseKeybindingValue(rest)
		if err != nil {
			return nil, err
		}
		if err := name.SetKeybinding(key, value); err != nil {
			return nil, err
		}
		rest = remaining
		if rest != "" {
			if rest[0] != ',' {
				return nil, fmt.Errorf("%w: expected ',' at %q", ErrURISyntax, rest)
			}
			rest = rest[1:]
		}
	}
	return name, nil
}

func parseKeybindingValue(s string) (Value, string, error) {
	if s == "" {
		return Value{}, "", fmt.Errorf("%w: empty keybinding value", ErrURISyntax)
	}
	switch s[0] {
	case '"':
		text, rest, err := parseQuoted(s, '"')
		if err != nil {
			return Value{}, "", err
		}
		return String(text), rest, nil
	case '\'':
		text, rest, err := parseQuoted(s, '\'')
		if err != nil {
			return Value{}, "", err
		}
		ref, err := ParseInstanceName(text)
		if err != nil {
			return Value{}, "", err
		}
		return Reference(ref), rest, nil
	}

	end := strings.IndexByte(s, ',')
	var token, rest string
	if end < 0 {
		token, rest = s, ""
	} else {
		token, rest = s[:end], s[end:]
	}
	switch {
	case token == "TRUE":
		return Bool(true), rest, nil
	case token == "FALSE":
		return Bool(false), rest, nil
	case strings.ContainsAny(token, ".eE"):
		f, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return Value{}, "", fmt.Errorf("%w: bad real %q", ErrURISyntax, token)
		}
		return Real64(f), rest, nil
	case strings.HasPrefix(token, "-"):
		i, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			return Value{}, "", fmt.Errorf("%w: bad integer %q", ErrURISyntax, token)
		}
		return Sint64(i), rest, nil
	default:
		u, err := strconv.ParseUint(token, 10, 64)
		if err != nil {
			return Value{}, "", fmt.Errorf("%w: bad integer %q", ErrURISyntax, token)
		}
		return Uint64(u), rest, nil
	}
}

// parseQuoted consumes a quoted token with backslash escaping, returning
// the unescaped text and the remainder after the closing quote.
func parseQuoted(s string, quote byte) (string, string, error) {
	var b strings.Builder
	i := 1
	for i < len(s) {
		switch s[i] {
		case '\\':
			if i+1 >= len(s) {
				return "", "", fmt.Errorf("%w: trailing backslash", ErrURISyntax)
			}
			b.WriteByte(s[i+1])
			i += 2
		case quote:
			return b.String(), s[i+1:], nil
		default:
			b.WriteByte(s[i])
			i++
		}
	}
	return "", "", fmt.Errorf("%w: unterminated quoted value", ErrURISyntax)
}
