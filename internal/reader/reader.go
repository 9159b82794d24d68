// Released under an MIT license. See LICENSE.

// Package reader provides a recursive descent parser for the lode dialect.
//
// The whole file is parsed in one pass. Any syntax error is fatal: Parse
// returns no forms, because a missing delimiter early in a file makes
// everything after it suspect. Recovery happens per-form at evaluation
// time, not here.
package reader

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/lodelisp/lode/internal/form"
)

// T holds the state of the parser.
type T struct {
	label string // File name or other identifier, for errors.
	text  string // Buffer being parsed.
	index int    // Index of the current byte.
	line  int    // Current line, 1-based.
	char  int    // Rune position on the current line, 1-based.
}

// Parse parses text as a sequence of top-level forms.
// Label can be a file name or other identifier.
func Parse(label, text string) (forms []form.I, err error) {
	p := &T{label: label, text: text, line: 1, char: 1}

	defer func() {
		r := recover()
		if r == nil {
			return
		}

		s, ok := r.(string)
		if !ok {
			panic(r)
		}

		forms = nil
		err = errors.New(s)
	}()

	for p.skip() {
		forms = append(forms, p.form())
	}

	return forms, nil
}

const eof = rune(-1)

const delimiters = "\t\n\r \"'(),;`"

func (p *T) fail(msg string) {
	panic(p.label + ":" + strconv.Itoa(p.line) + ":" + strconv.Itoa(p.char) + ": " + msg)
}

func (p *T) next() rune {
	r, w := p.peek()
	if r == eof {
		return r
	}

	if r == '\n' {
		p.line++
		p.char = 1
	} else {
		p.char++
	}

	p.index += w

	return r
}

func (p *T) peek() (rune, int) {
	if p.index >= len(p.text) {
		return eof, 0
	}

	return utf8.DecodeRuneInString(p.text[p.index:])
}

// skip moves past whitespace and comments.
// It returns false when nothing is left to parse.
func (p *T) skip() bool {
	for {
		r, _ := p.peek()

		switch r {
		case eof:
			return false
		case '\t', '\n', '\r', ' ':
			p.next()
		case ';':
			for r, _ = p.peek(); r != eof && r != '\n'; r, _ = p.peek() {
				p.next()
			}
		default:
			return true
		}
	}
}

func (p *T) form() form.I {
	r, _ := p.peek()

	switch r {
	case '(':
		p.next()

		return p.list()
	case ')':
		p.fail("unexpected ')'")
	case '"':
		return p.string()
	case '\'':
		p.next()

		return p.sugar("quote")
	case '`':
		p.next()

		return p.sugar("quasiquote")
	case ',':
		p.next()

		if r, _ := p.peek(); r == '@' {
			p.next()

			return p.sugar("unquote-splicing")
		}

		return p.sugar("unquote")
	case '#':
		return p.hash()
	}

	return p.atom()
}

func (p *T) atom() form.I {
	start := p.index

	for {
		r, _ := p.peek()
		if r == eof || strings.ContainsRune(delimiters, r) {
			break
		}

		p.next()
	}

	if p.index == start {
		p.fail("unexpected end of input")
	}

	return form.Atom(p.text[start:p.index])
}

// hash handles #t, #f, #\<token> and #( ... ).
// Vectors are read as ordinary lists.
func (p *T) hash() form.I {
	start := p.index

	p.next() // '#'

	r, _ := p.peek()

	switch r {
	case '(':
		p.next()

		return p.list()
	case '\\':
		p.next()

		// The character itself may be a delimiter: #\( and #\space
		// are both single literals.
		if p.next() == eof {
			p.fail("unexpected end of input in character literal")
		}
	}

	for {
		r, _ := p.peek()
		if r == eof || strings.ContainsRune(delimiters, r) {
			break
		}

		p.next()
	}

	return form.Atom(p.text[start:p.index])
}

// list parses elements up to the matching ')'. A bare '.' is dropped so
// that a dotted tail reads as one more element.
func (p *T) list() form.I {
	l := form.List{}

	for {
		if !p.skip() {
			p.fail("unterminated list")
		}

		if r, _ := p.peek(); r == ')' {
			p.next()

			return l
		}

		c := p.form()
		if a, ok := c.(form.Atom); ok && a == "." {
			continue
		}

		l = append(l, c)
	}
}

func (p *T) string() form.I {
	p.next() // '"'

	b := strings.Builder{}

	for {
		r := p.next()

		switch r {
		case eof:
			p.fail("unterminated string")
		case '"':
			return form.Str(b.String())
		case '\\':
			e := p.next()

			switch e {
			case eof:
				p.fail("unterminated string")
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			default:
				// Unknown escapes keep the escaped rune.
				b.WriteRune(e)
			}
		default:
			b.WriteRune(r)
		}
	}
}

func (p *T) sugar(name string) form.I {
	if !p.skip() {
		p.fail("unexpected end of input after " + name)
	}

	return form.List{form.Atom(name), p.form()}
}
