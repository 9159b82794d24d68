// Released under an MIT license. See LICENSE.

// Package engine is the boundary between the load pipeline and the GoLisp
// runtime that actually executes forms.
//
// T is the shared environment store. One T lives from process start to
// shutdown and is passed explicitly to every collaborator; there is no
// hidden global environment on our side. Bindings accumulate across files
// and forms, last write wins. GoLisp signals failure with both errors and
// panics; both are converted to errors here, and nothing past this point
// depends on exceptions.
package engine

import (
	"fmt"

	"github.com/steelseries/golisp"
)

// T (engine) is a facade in front of the GoLisp runtime.
type T struct {
	env *golisp.SymbolTableFrame
}

// New creates a new T with a fresh environment below GoLisp's global frame.
func New(name string) *T {
	return &T{env: golisp.NewSymbolTableFrameBelow(golisp.Global, name)}
}

// Evaluate executes one complete form, given as text, against the store.
// The printed result is returned for display; most callers ignore it.
func (e *T) Evaluate(text string) (value string, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		switch r := r.(type) {
		case error:
			err = fmt.Errorf("evaluator panic: %w", r)
		default:
			err = fmt.Errorf("evaluator panic: %v", r)
		}
	}()

	d, err := golisp.ParseAndEvalInEnvironment(text, e.env)
	if err != nil {
		return "", err
	}

	return golisp.String(d), nil
}

// Define binds name to value in the store.
func (e *T) Define(name string, value *golisp.Data) {
	_, _ = e.env.BindTo(golisp.Intern(name), value)
}

// DefineString binds name to the string value.
func (e *T) DefineString(name, value string) {
	e.Define(name, golisp.StringWithValue(value))
}

// DefineStrings binds name to a list of strings.
func (e *T) DefineStrings(name string, values []string) {
	data := make([]*golisp.Data, len(values))
	for i, s := range values {
		data[i] = golisp.StringWithValue(s)
	}

	e.Define(name, golisp.ArrayToList(data))
}

// Primitive exposes a host function to scripts. Arity uses GoLisp's
// primitive arity syntax: "1", "2|3", ">=1", "*".
func (e *T) Primitive(name, arity string, impl func(*golisp.Data, *golisp.SymbolTableFrame) (*golisp.Data, error)) {
	golisp.MakePrimitiveFunction(name, arity, impl)
}
