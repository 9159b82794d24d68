/*
Lode loads S-expression game scripts written against an older dialect
convention and runs them on an embedded GoLisp evaluator. Bodies that
interleave internal definitions with expressions are rewritten into a single
letrec the evaluator accepts, and a form that fails never stops the forms
around it from loading:

    lode scripts/boot.lsp
    lode -c '(load "scripts/boot.lsp")'
    lode -p scripts/boot.lsp
    lode

For more detail, see: https://github.com/lodelisp/lode

Lode is released under an MIT-style license.
*/
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/lodelisp/lode/internal/engine"
	"github.com/lodelisp/lode/internal/load"
	"github.com/lodelisp/lode/internal/normalize"
	"github.com/lodelisp/lode/internal/reader"
	"github.com/lodelisp/lode/internal/system/options"
	"github.com/lodelisp/lode/internal/system/script"
	"github.com/lodelisp/lode/internal/ui"
)

func main() {
	options.Parse()

	if options.Dump() {
		os.Exit(dump())
	}

	eng := engine.New("lode")
	eng.DefineStrings("*args*", options.Args())

	include := script.New()
	loader := load.New(eng, include, os.Stderr)

	include.Attach(loader)

	switch {
	case options.Script() != "":
		os.Exit(run(loader, include))
	case options.Command() != "":
		r, _ := loader.Load("(command)", options.Command())
		os.Exit(status(r.Failed + include.Failed()))
	case options.Interactive():
		ui.Run(loader)
	default:
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}

		r, _ := loader.Load("(stdin)", string(b))
		os.Exit(status(r.Failed + include.Failed()))
	}
}

// dump prints parsed and normalized forms instead of evaluating them.
func dump() int {
	text := options.Command()
	label := "(command)"

	if path := options.Script(); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)

			return 2
		}

		text = string(b)
		label = path
	}

	forms, err := reader.Parse(label, text)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)

		return 2
	}

	for _, c := range forms {
		fmt.Println(c.String())

		n := normalize.Form(c)
		if !n.Equal(c) {
			fmt.Println("=>", n.String())
		}

		spew.Fdump(os.Stdout, n)
	}

	return 0
}

func run(loader *load.T, include *script.T) int {
	path := options.Script()

	b, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)

		return 2
	}

	r, _ := loader.Load(path, string(b))

	if err := include.Drain(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		return 1
	}

	return status(r.Failed + include.Failed())
}

func status(failed int) int {
	if failed > 0 {
		return 1
	}

	return 0
}
