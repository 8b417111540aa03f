// Package config reads and writes bridle's own config.toml, which persists the
// active profile per harness alongside user preferences.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bridle-dev/bridle/internal/messages"
)

// ErrUnknownSetting is returned by Get and Set for keys bridle does not know.
var ErrUnknownSetting = errors.New("unknown setting")

// ViewPreference selects the TUI layout.
type ViewPreference string

const (
	ViewDashboard ViewPreference = "dashboard"
	ViewLegacy    ViewPreference = "legacy"
)

// TUIConfig holds TUI-specific settings.
type TUIConfig struct {
	View ViewPreference `toml:"view,omitempty"`
}

// Config is the parsed config.toml.
// Active maps harness id to the profile currently materialized in that harness's live directory.
type Config struct {
	Active         map[string]string `toml:"active"`
	ProfileMarker  bool              `toml:"profile_marker"`
	Editor         string            `toml:"editor,omitempty"`
	DefaultHarness string            `toml:"default_harness,omitempty"`
	TUI            TUIConfig         `toml:"tui"`

	// LegacyActiveProfile is read from older files and dropped on save.
	LegacyActiveProfile string `toml:"active_profile,omitempty"`
}

// Default returns an empty config with marker files disabled.
func Default() *Config {
	return &Config{Active: map[string]string{}}
}

// ActiveProfileFor returns the active profile for harnessID.
func (c *Config) ActiveProfileFor(harnessID string) (string, bool) {
	if c == nil || c.Active == nil {
		return "", false
	}
	name, ok := c.Active[harnessID]
	if !ok || strings.TrimSpace(name) == "" {
		return "", false
	}
	return name, true
}

// SetActiveProfile records profile as active for harnessID.
func (c *Config) SetActiveProfile(harnessID string, profile string) {
	if c.Active == nil {
		c.Active = map[string]string{}
	}
	c.Active[harnessID] = profile
}

// ClearActiveProfile forgets the active profile for harnessID.
func (c *Config) ClearActiveProfile(harnessID string) {
	delete(c.Active, harnessID)
}

// ActiveHarnesses returns harness ids that have an active profile, sorted.
func (c *Config) ActiveHarnesses() []string {
	out := make([]string, 0, len(c.Active))
	for id := range c.Active {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Active = make(map[string]string, len(c.Active))
	for k, v := range c.Active {
		out.Active[k] = v
	}
	return &out
}

// EditorCommand returns the program and arguments used to edit profiles.
// The configured editor wins, then $EDITOR, then vi. "code --wait" splits on whitespace.
func (c *Config) EditorCommand() (string, []string) {
	editor := strings.TrimSpace(c.Editor)
	if editor == "" {
		editor = strings.TrimSpace(os.Getenv("EDITOR"))
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return "vi", nil
	}
	return parts[0], parts[1:]
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	switch c.TUI.View {
	case "", ViewDashboard, ViewLegacy:
	default:
		return fmt.Errorf(messages.ConfigInvalidViewFmt, c.TUI.View)
	}
	return nil
}
