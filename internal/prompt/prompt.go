// Package prompt asks yes/no questions on an interactive terminal.
package prompt

import (
	"errors"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/bridle-dev/bridle/internal/messages"
	"github.com/bridle-dev/bridle/internal/terminal"
)

// ErrNotInteractive is returned when a question is asked without a terminal.
var ErrNotInteractive = errors.New(messages.PromptRequiresTerminal)

// Confirmer asks a yes/no question.
type Confirmer interface {
	Confirm(title string, defaultYes bool) (bool, error)
}

// HuhUI implements Confirmer using charmbracelet/huh.
type HuhUI struct {
	isTerminal func() bool
}

var runFormFunc = func(form *huh.Form) error { return form.Run() }

// NewHuhUI returns a HuhUI that checks terminal.IsInteractive before every prompt.
func NewHuhUI() *HuhUI {
	return &HuhUI{isTerminal: terminal.IsInteractive}
}

func (ui *HuhUI) ensureInteractive() error {
	checker := ui.isTerminal
	if checker == nil {
		checker = terminal.IsInteractive
	}
	if checker() {
		return nil
	}
	return ErrNotInteractive
}

// Confirm renders a yes/no prompt on stderr. Aborting the form (esc, ctrl+c) answers no.
func (ui *HuhUI) Confirm(title string, defaultYes bool) (bool, error) {
	if err := ui.ensureInteractive(); err != nil {
		return false, err
	}
	value := defaultYes
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(&value),
		),
	).WithOutput(os.Stderr)

	err := runFormFunc(form)
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return value, nil
}
