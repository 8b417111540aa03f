package profile

import (
	"errors"
	"fmt"

	"github.com/bridle-dev/bridle/internal/messages"
)

var (
	// ErrProfileNotFound is returned when a profile directory does not exist.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrProfileExists is returned by create when the profile directory is already present.
	ErrProfileExists = errors.New("profile already exists")
	// ErrNoConfigFound is returned when there is no live config to snapshot.
	ErrNoConfigFound = errors.New("no config found")
	// ErrNoActiveProfile is returned by operations that need an active profile.
	ErrNoActiveProfile = errors.New("no active profile")
)

// RestoreError is returned when a switch failed and restoring the backup failed too.
// The backup at BackupPath is left on disk for manual recovery.
type RestoreError struct {
	SwitchErr  error
	RestoreErr error
	BackupPath string
}

func (e *RestoreError) Error() string {
	return fmt.Sprintf(messages.SwapRestoreFmt, e.SwitchErr, e.RestoreErr, e.BackupPath)
}

// Unwrap exposes both underlying failures to errors.Is and errors.As.
func (e *RestoreError) Unwrap() []error {
	return []error{e.SwitchErr, e.RestoreErr}
}
