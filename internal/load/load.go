// Released under an MIT license. See LICENSE.

// Package load drives the parse, normalize, print, evaluate pipeline for
// one script file at a time.
//
// The contract is best-effort loading: a fatal parse error abandons the
// whole file, but once parsing succeeds every top-level form is attempted,
// in source order, no matter how many of its predecessors failed. Forms
// commit their effects to the shared environment before the next form runs,
// so later forms can rely on earlier successful ones.
package load

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/lodelisp/lode/internal/form"
	"github.com/lodelisp/lode/internal/normalize"
	"github.com/lodelisp/lode/internal/reader"
)

// Evaluator executes one complete form, given as text, against the shared
// environment.
type Evaluator interface {
	Evaluate(text string) (string, error)
}

// Includer resolves file-inclusion forms. Load loads the named file now;
// Defer only registers it for a later explicit load.
type Includer interface {
	Load(name string) error
	Defer(name string) error
}

// Inclusion operators. Their arguments are filenames, not code, so the
// pipeline routes them to the Includer instead of the evaluator.
const (
	opLoad     = "load"
	opAutoload = "autoload"
)

const previewLength = 80

// Diagnostic records one failed form.
type Diagnostic struct {
	File     string
	Preview  string
	Operator string
	Message  string
}

// Report summarizes one file load.
type Report struct {
	Total       int
	Failed      int
	Operators   []string // Distinct failing operators, in first-failure order.
	Diagnostics []Diagnostic
}

// T loads files.
type T struct {
	eval    Evaluator
	include Includer
	out     io.Writer
}

// New creates a loader. Diagnostics and the end-of-load summary are written
// to out; individual successes are silent.
func New(eval Evaluator, include Includer, out io.Writer) *T {
	return &T{eval: eval, include: include, out: out}
}

// Load parses text as the contents of file and evaluates its top-level
// forms one at a time. The returned error is non-nil only for a fatal parse
// error; per-form failures are reported through the Report instead.
func (l *T) Load(file, text string) (*Report, error) {
	r, _, err := l.run(file, text)

	l.summary(file, r)

	return r, err
}

// Text is Load without the end-of-load summary, for interactive use.
// It also returns the printed value of the last successful evaluation.
func (l *T) Text(label, text string) (string, *Report, error) {
	r, value, err := l.run(label, text)

	return value, r, err
}

func (l *T) run(file, text string) (*Report, string, error) {
	r := &Report{}

	forms, err := reader.Parse(file, text)
	if err != nil {
		l.add(r, Diagnostic{File: file, Message: err.Error()})

		return r, "", err
	}

	r.Total = len(forms)

	value := ""

	for _, c := range forms {
		if v, ok := l.form(file, r, c); ok {
			value = v
		}
	}

	return r, value, nil
}

// form runs one top-level form, recording any failure in r. It returns the
// printed value and true when the form was evaluated successfully.
func (l *T) form(file string, r *Report, c form.I) (string, bool) {
	op := operator(c)

	// Inclusion forms are never handed to the evaluator, even when their
	// filename argument is unusable.
	if op == opLoad || op == opAutoload {
		var err error

		name, ok := inclusion(c)
		if !ok {
			err = errors.New("missing or malformed filename")
		} else if op == opLoad {
			err = l.include.Load(name)
		} else {
			err = l.include.Defer(name)
		}

		if err != nil {
			l.add(r, Diagnostic{
				File:     file,
				Preview:  preview(c),
				Operator: op,
				Message:  message(err),
			})

			return "", false
		}

		return "", true
	}

	v, err := l.eval.Evaluate(normalize.Form(c).String())
	if err != nil {
		l.add(r, Diagnostic{
			File:     file,
			Preview:  preview(c),
			Operator: op,
			Message:  message(err),
		})

		return "", false
	}

	return v, true
}

func (l *T) add(r *Report, d Diagnostic) {
	r.Failed++
	r.Diagnostics = append(r.Diagnostics, d)

	if d.Operator != "" {
		seen := false

		for _, o := range r.Operators {
			if o == d.Operator {
				seen = true

				break
			}
		}

		if !seen {
			r.Operators = append(r.Operators, d.Operator)
		}
	}

	if l.out == nil {
		return
	}

	if d.Preview == "" {
		fmt.Fprintf(l.out, "%s: %s\n", d.File, d.Message)
	} else {
		fmt.Fprintf(l.out, "%s: %s: %s\n", d.File, d.Preview, d.Message)
	}
}

func (l *T) summary(file string, r *Report) {
	if r.Failed == 0 || l.out == nil {
		return
	}

	fmt.Fprintf(l.out, "%s: %d of %d forms failed", file, r.Failed, r.Total)

	if len(r.Operators) > 0 {
		fmt.Fprintf(l.out, " (%s)", strings.Join(r.Operators, " "))
	}

	fmt.Fprintln(l.out)
}

// inclusion reports whether c is a file-inclusion form and, if so, returns
// its filename argument with any quoting stripped.
func inclusion(c form.I) (string, bool) {
	op := operator(c)
	if op != opLoad && op != opAutoload {
		return "", false
	}

	l := c.(form.List)
	if len(l) < 2 {
		return "", false
	}

	return filename(l[1])
}

func filename(c form.I) (string, bool) {
	switch c := c.(type) {
	case form.Str:
		return string(c), true
	case form.Atom:
		return string(c), true
	case form.List:
		if len(c) == 2 {
			if op, ok := c[0].(form.Atom); ok && op == "quote" {
				return filename(c[1])
			}
		}
	}

	return "", false
}

func operator(c form.I) string {
	l, ok := c.(form.List)
	if !ok || len(l) == 0 {
		return ""
	}

	op, ok := l[0].(form.Atom)
	if !ok {
		return ""
	}

	return string(op)
}

func preview(c form.I) string {
	s := c.String()
	if len(s) <= previewLength {
		return s
	}

	n := previewLength
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}

	return s[:n] + "..."
}

// detailed is implemented by failures that carry structured detail beyond
// their message.
type detailed interface {
	Detail() string
}

// message digs for the most specific description of err. Wrapped failures
// from the foreign evaluator tend to bury the useful part.
func message(err error) string {
	m := err.Error()

	for e := errors.Unwrap(err); e != nil; e = errors.Unwrap(e) {
		if s := e.Error(); s != "" {
			m = s
		}
	}

	var d detailed
	if errors.As(err, &d) {
		m += " (" + d.Detail() + ")"
	}

	return m
}
