package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bridle-dev/bridle/internal/messages"
)

// Setting keys accepted by Get and Set.
const (
	KeyEditor         = "editor"
	KeyMarkerFiles    = "marker_files"
	KeyDefaultHarness = "default_harness"
)

// Get returns the string form of a setting. ok is false when the setting is unset.
func Get(cfg *Config, key string) (value string, ok bool, err error) {
	switch strings.TrimSpace(key) {
	case KeyEditor:
		return cfg.Editor, cfg.Editor != "", nil
	case KeyMarkerFiles:
		return strconv.FormatBool(cfg.ProfileMarker), true, nil
	case KeyDefaultHarness:
		return cfg.DefaultHarness, cfg.DefaultHarness != "", nil
	default:
		return "", false, fmt.Errorf(messages.ConfigUnknownSettingFmt, ErrUnknownSetting, key)
	}
}

// Set changes a setting from its string form. An empty value unsets string settings.
func Set(cfg *Config, key string, value string) error {
	value = strings.TrimSpace(value)
	switch strings.TrimSpace(key) {
	case KeyEditor:
		cfg.Editor = value
	case KeyMarkerFiles:
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf(messages.ConfigInvalidBoolFmt, value, key)
		}
		cfg.ProfileMarker = enabled
	case KeyDefaultHarness:
		cfg.DefaultHarness = value
	default:
		return fmt.Errorf(messages.ConfigUnknownSettingFmt, ErrUnknownSetting, key)
	}
	return nil
}
