// Released under an MIT license. See LICENSE.

// Package form provides the cell types for parsed lode forms.
//
// A form is either an atom or a list. Atoms carry their token text verbatim;
// deciding whether "3/4" is a number or a symbol is the evaluator's job, not
// ours. String literals are a distinct type so that the string "foo" and the
// bare symbol foo cannot be confused after parsing. Dotted tails and #(...)
// vectors are approximated as ordinary lists.
package form

import "strings"

// I is the interface satisfied by every form.
type I interface {
	// Equal returns true if c is structurally equal to this form.
	Equal(c I) bool

	// String returns text that reparses to an equal form.
	String() string
}

// Atom is a leaf token: a symbol, number, boolean, or character literal.
type Atom string

// Str is the decoded content of a string literal, without the quotes.
type Str string

// List is an ordered sequence of forms.
type List []I

// Equal returns true if c is an atom with the same text.
func (a Atom) Equal(c I) bool {
	b, ok := c.(Atom)

	return ok && a == b
}

// String returns the atom's text, quoted if it would not rescan as one token.
func (a Atom) String() string {
	s := string(a)

	// Character literals like #\( and #\space scan as a unit.
	if strings.HasPrefix(s, `#\`) {
		return s
	}

	if s == "" || strings.ContainsAny(s, "\t\n\r \"();") {
		return escape(s)
	}

	return s
}

// Equal returns true if c is a string with the same content.
func (s Str) Equal(c I) bool {
	t, ok := c.(Str)

	return ok && s == t
}

// String returns the quoted, escaped string literal.
func (s Str) String() string {
	return escape(string(s))
}

// Equal returns true if c is a list with equal elements.
func (l List) Equal(c I) bool {
	m, ok := c.(List)
	if !ok || len(l) != len(m) {
		return false
	}

	for i, e := range l {
		if !e.Equal(m[i]) {
			return false
		}
	}

	return true
}

// String returns the list as parenthesized, space-joined elements.
func (l List) String() string {
	e := make([]string, len(l))
	for i, c := range l {
		e[i] = c.String()
	}

	return "(" + strings.Join(e, " ") + ")"
}

func escape(s string) string {
	b := strings.Builder{}

	b.WriteByte('"')

	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}

	b.WriteByte('"')

	return b.String()
}
