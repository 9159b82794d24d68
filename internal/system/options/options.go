package options

import (
	"os"

	"github.com/docopt/docopt-go"
	"github.com/mattn/go-isatty"
)

//nolint:gochecknoglobals
var (
	args        []string
	command     string
	dump        bool
	interactive bool
	script      string
	usage       = `lode

Usage:
  lode [-p] SCRIPT [ARGUMENTS...]
  lode [-p] -c COMMAND
  lode [-i]
  lode -h

Arguments:
  ARGUMENTS  Positional parameters, bound as *args* for the script.
  SCRIPT     Path to a lode script.

Options:
  -c, --command=COMMAND  Load the specified form(s) and exit.
  -i, --interactive      Invert interactive mode.
  -p, --parse            Dump parsed and normalized forms without evaluating.
  -h, --help             Display this help.

If lode's stdin is a TTY and no script or command was given, an interactive
session is started.
`
)

func Args() []string {
	return args
}

func Command() string {
	return command
}

func Dump() bool {
	return dump
}

func Interactive() bool {
	return interactive
}

func Parse() {
	opts, err := docopt.ParseDoc(usage)
	if err != nil {
		// Error in the usage doc. This should never happen.
		panic(err.Error())
	}

	command, _ = opts.String("--command")
	dump, _ = opts.Bool("--parse")
	script, _ = opts.String("SCRIPT")

	if script == "" && command == "" && isatty.IsTerminal(os.Stdin.Fd()) {
		interactive = true
	}

	invert, _ := opts.Bool("--interactive")
	interactive = interactive != invert

	args, _ = opts["ARGUMENTS"].([]string)
}

func Script() string {
	return script
}
