package prompt

import (
	"errors"
	"testing"

	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubRunForm(t *testing.T, fn func(form *huh.Form) error) {
	t.Helper()
	orig := runFormFunc
	runFormFunc = fn
	t.Cleanup(func() { runFormFunc = orig })
}

func TestConfirmRequiresTerminal(t *testing.T) {
	ui := &HuhUI{isTerminal: func() bool { return false }}
	stubRunForm(t, func(*huh.Form) error {
		t.Fatal("form must not run without a terminal")
		return nil
	})

	ok, err := ui.Confirm("Delete?", false)
	require.ErrorIs(t, err, ErrNotInteractive)
	assert.False(t, ok)
}

func TestConfirmReturnsDefaultWhenFormAccepts(t *testing.T) {
	ui := &HuhUI{isTerminal: func() bool { return true }}
	called := false
	stubRunForm(t, func(form *huh.Form) error {
		assert.NotNil(t, form)
		called = true
		return nil
	})

	ok, err := ui.Confirm("Delete?", true)
	require.NoError(t, err)
	assert.True(t, called)
	assert.True(t, ok)
}

func TestConfirmTreatsAbortAsNo(t *testing.T) {
	ui := &HuhUI{isTerminal: func() bool { return true }}
	stubRunForm(t, func(*huh.Form) error { return huh.ErrUserAborted })

	ok, err := ui.Confirm("Delete?", true)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConfirmPropagatesFormErrors(t *testing.T) {
	ui := &HuhUI{isTerminal: func() bool { return true }}
	boom := errors.New("boom")
	stubRunForm(t, func(*huh.Form) error { return boom })

	_, err := ui.Confirm("Delete?", false)
	assert.ErrorIs(t, err, boom)
}
