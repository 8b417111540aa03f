package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bridle-dev/bridle/internal/messages"
)

// MarkerPrefix starts the name of the zero-byte file naming the active profile.
const MarkerPrefix = "BRIDLE_PROFILE_"

// Markers maintains the observational marker file in a live directory.
type Markers struct {
	sys System
}

// Update removes every marker file in dir and, when enabled, writes one for name.
// Removing stale markers is best-effort. A missing dir is a no-op.
func (m Markers) Update(dir string, name Name, enabled bool) error {
	entries, err := m.sys.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf(messages.ProfileMarkerFmt, dir, err)
	}
	for _, entry := range entries {
		if entry.Type().IsRegular() && strings.HasPrefix(entry.Name(), MarkerPrefix) {
			_ = m.sys.Remove(filepath.Join(dir, entry.Name()))
		}
	}
	if !enabled || name == "" {
		return nil
	}
	path := filepath.Join(dir, MarkerPrefix+name.String())
	if err := m.sys.WriteFile(path, nil, 0o644); err != nil {
		return fmt.Errorf(messages.ProfileMarkerFmt, dir, err)
	}
	return nil
}

// Strip removes marker files from dir so they are never captured into a profile.
func (m Markers) Strip(dir string) error {
	return m.Update(dir, "", false)
}
