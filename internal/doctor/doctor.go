// Package doctor runs read-only health checks over bridle's registry, profiles
// and the harnesses they belong to.
package doctor

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/bridle-dev/bridle/internal/config"
	"github.com/bridle-dev/bridle/internal/harness"
	"github.com/bridle-dev/bridle/internal/messages"
	"github.com/bridle-dev/bridle/internal/profile"
)

// Status is the outcome of a single check.
type Status string

const (
	StatusOK   Status = "OK"
	StatusWarn Status = "WARN"
	StatusFail Status = "FAIL"
)

// Result is one line of doctor output.
type Result struct {
	CheckName      string
	Status         Status
	Message        string
	Recommendation string
}

// Loader reads the active profile registry.
type Loader interface {
	Load() (*config.Config, error)
}

// HasFailure reports whether any result failed.
func HasFailure(results []Result) bool {
	for _, r := range results {
		if r.Status == StatusFail {
			return true
		}
	}
	return false
}

// CheckConfig loads config.toml. The config is nil when loading failed.
func CheckConfig(store Loader) ([]Result, *config.Config) {
	cfg, err := store.Load()
	if err != nil {
		return []Result{{
			CheckName:      messages.DoctorCheckNameConfig,
			Status:         StatusFail,
			Message:        fmt.Sprintf(messages.DoctorConfigLoadFailedFmt, err),
			Recommendation: messages.DoctorConfigLoadRecommend,
		}}, nil
	}
	return []Result{{
		CheckName: messages.DoctorCheckNameConfig,
		Status:    StatusOK,
		Message:   messages.DoctorConfigLoaded,
	}}, cfg
}

// CheckHarnesses reports the installation status of every harness that is at
// least partly present. Harnesses that are not installed at all are left out.
func CheckHarnesses(harnesses []harness.Harness) []Result {
	var results []Result
	for _, h := range harnesses {
		status, err := h.InstallationStatus()
		if err != nil {
			results = append(results, Result{
				CheckName: messages.DoctorCheckNameHarness,
				Status:    StatusFail,
				Message:   fmt.Sprintf(messages.DoctorHarnessStatusFailedFmt, h.ID(), err),
			})
			continue
		}
		switch status {
		case harness.FullyInstalled:
			results = append(results, Result{
				CheckName: messages.DoctorCheckNameHarness,
				Status:    StatusOK,
				Message:   fmt.Sprintf(messages.DoctorHarnessInstalledFmt, h.ID()),
			})
		case harness.BinaryOnly, harness.ConfigOnly:
			results = append(results, Result{
				CheckName:      messages.DoctorCheckNameHarness,
				Status:         StatusWarn,
				Message:        fmt.Sprintf(messages.DoctorHarnessPartialFmt, h.ID(), status),
				Recommendation: messages.DoctorHarnessPartialRecommend,
			})
		}
	}
	return results
}

// CheckActiveProfiles verifies that every registry entry names a known harness
// and a profile directory that still exists.
func CheckActiveProfiles(cfg *config.Config, layout profile.Layout, registry *harness.Registry) []Result {
	var results []Result
	for _, id := range cfg.ActiveHarnesses() {
		active, _ := cfg.ActiveProfileFor(id)
		if _, ok := registry.Get(id); !ok {
			results = append(results, Result{
				CheckName:      messages.DoctorCheckNameActive,
				Status:         StatusWarn,
				Message:        fmt.Sprintf(messages.DoctorActiveUnknownHarnessFmt, id, active),
				Recommendation: messages.DoctorActiveUnknownHarnessRecommend,
			})
			continue
		}
		name, err := profile.NewName(active)
		if err != nil || name.String() != active {
			results = append(results, Result{
				CheckName:      messages.DoctorCheckNameActive,
				Status:         StatusFail,
				Message:        fmt.Sprintf(messages.DoctorActiveInvalidNameFmt, id, active),
				Recommendation: fmt.Sprintf(messages.DoctorActiveRecommendFmt, id),
			})
			continue
		}
		info, err := os.Stat(layout.ProfilePath(id, name))
		if err != nil || !info.IsDir() {
			results = append(results, Result{
				CheckName:      messages.DoctorCheckNameActive,
				Status:         StatusFail,
				Message:        fmt.Sprintf(messages.DoctorActiveMissingFmt, id, active),
				Recommendation: fmt.Sprintf(messages.DoctorActiveRecommendFmt, id),
			})
			continue
		}
		results = append(results, Result{
			CheckName: messages.DoctorCheckNameActive,
			Status:    StatusOK,
			Message:   fmt.Sprintf(messages.DoctorActiveOKFmt, id, active),
		})
	}
	return results
}

// CheckProfileDirs warns about entries under a harness's profiles directory that
// list and switch ignore because they are not valid profile directories.
func CheckProfileDirs(layout profile.Layout, harnesses []harness.Harness) []Result {
	var results []Result
	for _, h := range harnesses {
		dir := layout.HarnessDir(h.ID())
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			results = append(results, Result{
				CheckName: messages.DoctorCheckNameProfiles,
				Status:    StatusFail,
				Message:   fmt.Sprintf(messages.DoctorProfilesReadFailedFmt, dir, err),
			})
			continue
		}
		var ignored []string
		for _, entry := range entries {
			name, err := profile.NewName(entry.Name())
			if entry.IsDir() && err == nil && name.String() == entry.Name() {
				continue
			}
			ignored = append(ignored, entry.Name())
		}
		sort.Strings(ignored)
		for _, entry := range ignored {
			results = append(results, Result{
				CheckName:      messages.DoctorCheckNameProfiles,
				Status:         StatusWarn,
				Message:        fmt.Sprintf(messages.DoctorProfileIgnoredFmt, h.ID(), entry),
				Recommendation: messages.DoctorProfileIgnoredRecommend,
			})
		}
	}
	return results
}
