// Released under an MIT license. See LICENSE.

// Package normalize rewrites procedure and let bodies so that internal
// definitions no longer appear after plain expressions.
//
// Older scripts interleave (define ...) forms with expressions inside a
// body. The target evaluator insists that all internal definitions come
// first. Rather than reorder the body, which would change evaluation order,
// a non-compliant body is rewritten into a single letrec: every definition
// becomes a binding and the remaining expressions, in their original order,
// become the letrec body. Letrec scoping keeps mutually recursive helpers
// working no matter where they were defined.
package normalize

import (
	"github.com/lodelisp/lode/internal/form"
)

// definition is one internal define, either function-shaped or value-shaped.
type definition struct {
	name   form.Atom
	params form.List // Parameter list, function-shaped only.
	shaped bool      // True for (define (name . params) body...).
	value  []form.I  // Body forms or value forms.
}

// Form normalizes every body nested anywhere inside c, bottom-up.
// Forms without bodies are returned unchanged in structure.
func Form(c form.I) form.I {
	l, ok := c.(form.List)
	if !ok || len(l) == 0 {
		return c
	}

	op, _ := l[0].(form.Atom)

	switch op {
	case "quote", "quasiquote":
		// Data, not code.
		return c
	case "lambda":
		if len(l) >= 2 {
			return spliced(l[:2], Body(l[2:]))
		}
	case "define":
		if d, ok := classify(l); ok && d.shaped {
			return spliced(l[:2], Body(l[2:]))
		}
	case "let", "let*", "letrec":
		header := 2

		// A named let carries the loop name before its bindings.
		if len(l) > 1 {
			if _, named := l[1].(form.Atom); named {
				header = 3
			}
		}

		if len(l) >= header {
			return spliced(l[:header], Body(l[header:]))
		}
	}

	out := make(form.List, len(l))
	for i, e := range l {
		out[i] = Form(e)
	}

	return out
}

// Body returns an equivalent body in which no definition follows a plain
// expression. Nested bodies are normalized first, whether or not this body
// itself needs rewriting.
func Body(body []form.I) []form.I {
	out := make([]form.I, len(body))
	for i, c := range body {
		out[i] = Form(c)
	}

	if compliant(out) {
		return out
	}

	return rewrite(out)
}

// classify recognizes (define (name . params) body...) and
// (define name value...). Anything else, including a define that fits
// neither shape, is treated as a plain expression.
func classify(c form.I) (definition, bool) {
	l, ok := c.(form.List)
	if !ok || len(l) < 3 {
		return definition{}, false
	}

	if op, ok := l[0].(form.Atom); !ok || op != "define" {
		return definition{}, false
	}

	switch h := l[1].(type) {
	case form.Atom:
		return definition{name: h, value: l[2:]}, true
	case form.List:
		if len(h) == 0 {
			break
		}

		name, ok := h[0].(form.Atom)
		if !ok {
			break
		}

		return definition{name: name, params: h[1:], shaped: true, value: l[2:]}, true
	}

	return definition{}, false
}

// compliant reports whether no definition is preceded by an earlier plain
// expression.
func compliant(body []form.I) bool {
	expression := false

	for _, c := range body {
		if _, ok := classify(c); !ok {
			expression = true
		} else if expression {
			return false
		}
	}

	return true
}

// rewrite turns body into a single letrec. Definitions become bindings in
// original order; everything else becomes the letrec body in original order.
// Body forms are assumed to be normalized already.
func rewrite(body []form.I) []form.I {
	bindings := form.List{}
	exprs := []form.I{}

	for _, c := range body {
		d, ok := classify(c)
		if !ok {
			exprs = append(exprs, c)

			continue
		}

		bindings = append(bindings, form.List{d.name, d.binding()})
	}

	if len(exprs) == 0 {
		// A letrec needs a body.
		exprs = []form.I{form.Atom("#t")}
	}

	letrec := form.List{form.Atom("letrec"), bindings}
	letrec = append(letrec, exprs...)

	return []form.I{letrec}
}

// binding returns the value expression for this definition's letrec binding.
func (d definition) binding() form.I {
	if d.shaped {
		l := form.List{form.Atom("lambda"), d.params}

		return append(l, d.value...)
	}

	if len(d.value) == 1 {
		return d.value[0]
	}

	l := form.List{form.Atom("begin")}

	return append(l, d.value...)
}

// spliced joins a form's header with its normalized body.
func spliced(header form.List, body []form.I) form.I {
	out := make(form.List, 0, len(header)+len(body))

	for _, c := range header {
		out = append(out, Form(c))
	}

	return append(out, body...)
}
