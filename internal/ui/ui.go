// Released under an MIT license. See LICENSE.

// Package ui provides an interactive session for the lode dialect.
package ui

import (
	"os"
	"strings"

	"github.com/lodelisp/lode/internal/load"
	"github.com/peterh/liner"
)

// Loader is the interface for things that can run script text.
type Loader interface {
	Text(label, text string) (string, *load.Report, error)
}

// Run reads forms, possibly spanning lines, and hands them to l.
// The printed value of the last form is echoed on success.
func Run(l Loader) {
	cli := liner.NewLiner()
	defer cli.Close()

	cli.SetCtrlCAborts(true)

	pending := ""

	for {
		prompt := "> "
		if pending != "" {
			prompt = "  "
		}

		line, err := cli.Prompt(prompt)

		switch err {
		case nil:
		case liner.ErrPromptAborted:
			pending = ""

			continue
		default:
			os.Stdout.WriteString("\n")

			return
		}

		pending += line + "\n"

		if open(pending) {
			continue
		}

		text := pending
		pending = ""

		if strings.TrimSpace(text) == "" {
			continue
		}

		cli.AppendHistory(strings.ReplaceAll(strings.TrimSpace(text), "\n", " "))

		v, r, _ := l.Text("(interactive)", text)
		if r.Failed == 0 && v != "" {
			os.Stdout.WriteString(v + "\n")
		}
	}
}

// open reports whether text ends with an unclosed list or string, meaning
// more lines are needed before it can be parsed.
func open(text string) bool {
	depth := 0
	str := false
	esc := false
	comment := false
	hash := false
	char := false

	for _, r := range text {
		switch {
		case char:
			// The rune named by #\ is taken verbatim, even if it is a
			// delimiter like #\( or #\".
			char = false
		case esc:
			esc = false
		case comment:
			if r == '\n' {
				comment = false
			}
		case str:
			switch r {
			case '\\':
				esc = true
			case '"':
				str = false
			}
		default:
			if hash && r == '\\' {
				hash = false
				char = true

				continue
			}

			hash = r == '#'

			switch r {
			case '"':
				str = true
			case ';':
				comment = true
			case '(':
				depth++
			case ')':
				if depth > 0 {
					depth--
				}
			}
		}
	}

	return depth > 0 || str
}
