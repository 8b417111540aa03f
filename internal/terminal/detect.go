// Package terminal reports whether bridle is attached to a terminal.
package terminal

import (
	"os"

	"golang.org/x/term"
)

var isTerminalFn = term.IsTerminal

// IsInteractive reports whether stdin and stdout are both terminals.
// Confirmation prompts are only shown when this is true.
func IsInteractive() bool {
	return IsTerminal(os.Stdin) && IsTerminal(os.Stdout)
}

// IsTerminal reports whether f is a terminal. A nil file is not.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isTerminalFn(int(f.Fd()))
}
