package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/bridle-dev/bridle/internal/fsutil"
	"github.com/bridle-dev/bridle/internal/messages"
)

// Load reads config.toml at path. A missing file yields Default().
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf(messages.ConfigReadFmt, path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses and validates config TOML data.
// source is used in error messages.
func ParseConfig(data []byte, source string) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf(messages.ConfigInvalidFmt, source, err)
	}
	if cfg.Active == nil {
		cfg.Active = map[string]string{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf(messages.ConfigInvalidFmt, source, err)
	}
	return cfg, nil
}

// Save writes cfg to path atomically, creating the parent directory if needed.
func Save(path string, cfg *Config) error {
	out := cfg.Clone()
	out.LegacyActiveProfile = ""
	data, err := toml.Marshal(out)
	if err != nil {
		return fmt.Errorf(messages.ConfigMarshalFmt, err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf(messages.ConfigCreateDirFmt, dir, err)
	}
	if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf(messages.ConfigWriteFmt, path, err)
	}
	return nil
}

// FileStore persists the registry in a single config.toml.
type FileStore struct {
	Path string
}

// Load reads the config file.
func (s FileStore) Load() (*Config, error) {
	return Load(s.Path)
}

// Save writes the config file.
func (s FileStore) Save(cfg *Config) error {
	return Save(s.Path, cfg)
}
