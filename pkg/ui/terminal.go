package ui

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Output streams. Results go to Stdout, problems to Stderr.
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

// Color functions for terminal output
var (
	Cyan   = colorize("\033[36m%s\033[0m")
	Yellow = colorize("\033[33m%s\033[0m")
	Red    = colorize("\033[31m%s\033[0m")
	Green  = colorize("\033[32m%s\033[0m")
)

// colorize returns a function that wraps text with ANSI color codes,
// or leaves it alone when w is not a terminal
func colorize(colorString string) func(w io.Writer, text string) string {
	return func(w io.Writer, text string) string {
		if !IsTerminal(w) {
			return text
		}
		return fmt.Sprintf(colorString, text)
	}
}

// IsTerminal reports whether w is a file attached to a terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// PrintError prints an error message in red to Stderr
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = msg + ": " + fmt.Sprintf("%v", args[0])
	}
	fmt.Fprintln(Stderr, Red(Stderr, msg))
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	fmt.Fprintln(Stdout, Green(Stdout, msg))
}

// PrintInfo prints a label/value pair
func PrintInfo(label string, value string) {
	fmt.Fprintf(Stdout, "%s: %s\n", Cyan(Stdout, label), Yellow(Stdout, value))
}

// PrintWarning prints a warning message in yellow to Stderr
func PrintWarning(msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = msg + ": " + fmt.Sprintf("%v", args[0])
	}
	fmt.Fprintln(Stderr, Yellow(Stderr, msg))
}
