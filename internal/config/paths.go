package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/bridle-dev/bridle/internal/messages"
)

// EnvConfigDir overrides the bridle config root. Tests point it at a temp dir.
const EnvConfigDir = "BRIDLE_CONFIG_DIR"

// Paths holds resolved paths for bridle's own files and directories.
type Paths struct {
	Root        string
	ConfigPath  string
	ProfilesDir string
}

// DefaultPaths returns the config paths rooted at root.
func DefaultPaths(root string) Paths {
	return Paths{
		Root:        root,
		ConfigPath:  filepath.Join(root, "config.toml"),
		ProfilesDir: filepath.Join(root, "profiles"),
	}
}

// ResolveRoot returns $BRIDLE_CONFIG_DIR when set, otherwise the XDG config home joined with "bridle".
// lookupEnv is usually os.LookupEnv.
func ResolveRoot(lookupEnv func(string) (string, bool)) (string, error) {
	if lookupEnv != nil {
		if dir, ok := lookupEnv(EnvConfigDir); ok && strings.TrimSpace(dir) != "" {
			return filepath.Clean(dir), nil
		}
	}
	if strings.TrimSpace(xdg.ConfigHome) == "" {
		return "", fmt.Errorf(messages.ConfigResolveDirFmt, fmt.Errorf("XDG config home is empty"))
	}
	return filepath.Join(xdg.ConfigHome, "bridle"), nil
}
