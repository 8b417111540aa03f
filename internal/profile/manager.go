// Package profile snapshots harness configuration directories into named profiles
// and swaps them in and out of the live directory without losing data.
package profile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bridle-dev/bridle/internal/config"
	"github.com/bridle-dev/bridle/internal/harness"
	"github.com/bridle-dev/bridle/internal/messages"
)

// RegistryStore loads and persists the active-profile registry.
type RegistryStore interface {
	Load() (*config.Config, error)
	Save(cfg *config.Config) error
}

// Options configures a Manager.
type Options struct {
	// ProfilesRoot is <config root>/profiles. Backups live in its sibling "backups".
	ProfilesRoot string
	Registry     RegistryStore
	// System defaults to RealSystem.
	System System
	// Policy defaults to DefaultPolicy().
	Policy *Policy
	Logger zerolog.Logger
	// Now and PID name backup directories; they default to time.Now and os.Getpid().
	Now func() time.Time
	PID int
	// NewOpID tags the log events of one operation; defaults to a random UUID.
	NewOpID func() string
}

// Manager is the only component that mutates a harness's live configuration directory.
// It assumes a single process operates on a given harness at a time.
type Manager struct {
	layout   Layout
	registry RegistryStore
	sys      System
	policy   Policy
	markers  Markers
	log      zerolog.Logger
	now      func() time.Time
	pid      int
	newOpID  func() string
}

// NewManager validates opts and returns a Manager.
func NewManager(opts Options) (*Manager, error) {
	if strings.TrimSpace(opts.ProfilesRoot) == "" {
		return nil, errors.New(messages.ProfileRootRequired)
	}
	if opts.Registry == nil {
		return nil, errors.New(messages.ProfileRegistryRequired)
	}
	sys := opts.System
	if sys == nil {
		sys = RealSystem{}
	}
	policy := DefaultPolicy()
	if opts.Policy != nil {
		policy = *opts.Policy
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	pid := opts.PID
	if pid == 0 {
		pid = os.Getpid()
	}
	newOpID := opts.NewOpID
	if newOpID == nil {
		newOpID = uuid.NewString
	}
	return &Manager{
		layout:   Layout{ProfilesRoot: filepath.Clean(opts.ProfilesRoot)},
		registry: opts.Registry,
		sys:      sys,
		policy:   policy,
		markers:  Markers{sys: sys},
		log:      opts.Logger,
		now:      now,
		pid:      pid,
		newOpID:  newOpID,
	}, nil
}

// Layout returns the path layout the manager writes to.
func (m *Manager) Layout() Layout {
	return m.layout
}

// op carries the collaborators of one operation, all logging with the same op id.
type op struct {
	m         *Manager
	log       zerolog.Logger
	mirror    *Mirror
	backups   *Backups
	resources *ResourceMirror
}

func (m *Manager) begin(h harness.Harness) *op {
	log := m.log.With().Str("op", m.newOpID()).Str("harness", h.ID()).Logger()
	mirror := NewMirror(m.sys, m.policy, log)
	return &op{
		m:         m,
		log:       log,
		mirror:    mirror,
		backups:   NewBackups(mirror, m.now, m.pid, log),
		resources: NewResourceMirror(mirror, log),
	}
}

// SwitchResult describes a completed or attempted switch.
type SwitchResult struct {
	Harness string
	Profile Name
	// Previous is the profile that was captured before the swap, if any.
	Previous Name
	// NoOp is set when Profile was already active and nothing was touched.
	NoOp bool
	// Archived is the no-profile snapshot taken on a first switch, if any.
	Archived string
	Swap     SwapResult
}

// SwitchProfile materializes profile name into the live directory of h.
//
// The currently active profile, if any, is captured first so live edits stick to it.
// On a first switch a non-empty live directory is archived to the no-profile slot.
// The registry is loaded once up front and saved once after the swap succeeds.
// Cancellation is honored only before the live directory is touched.
func (m *Manager) SwitchProfile(ctx context.Context, h harness.Harness, name Name) (SwitchResult, error) {
	result := SwitchResult{Harness: h.ID(), Profile: name}
	if err := ctx.Err(); err != nil {
		return result, err
	}
	o := m.begin(h)

	cfg, err := m.registry.Load()
	if err != nil {
		return result, fmt.Errorf(messages.ProfileLoadRegistryFmt, err)
	}
	target := m.layout.ProfilePath(h.ID(), name)
	exists, err := o.dirExists(target)
	if err != nil {
		return result, err
	}
	if !exists {
		return result, fmt.Errorf(messages.ProfileNotFoundFmt, ErrProfileNotFound, name)
	}
	liveDir, err := configDir(h)
	if err != nil {
		return result, err
	}

	prev, hasPrev := cfg.ActiveProfileFor(h.ID())
	if hasPrev && prev == name.String() {
		result.NoOp = true
		o.log.Debug().Str("profile", name.String()).Msg(messages.LogSwitchNoop)
		return result, nil
	}
	o.log.Debug().Str("from", prev).Str("to", name.String()).Msg(messages.LogSwitchStart)

	prevPath, err := o.previousProfile(h, prev, hasPrev)
	if err != nil {
		return result, err
	}
	if prevPath != "" {
		result.Previous = Name(prev)
		if err := o.saveToProfile(h, prevPath, liveDir); err != nil {
			return result, fmt.Errorf(messages.ProfileSaveFmt, h.ID(), prev, err)
		}
	} else {
		archived, err := o.archiveUnmanaged(h, liveDir)
		if err != nil {
			return result, err
		}
		result.Archived = archived
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	if err := m.sys.MkdirAll(liveDir, dirPerm); err != nil {
		return result, fmt.Errorf(messages.ProfileCreateDirFmt, liveDir, err)
	}
	skip, err := o.resources.profileSkips(h, target)
	if err != nil {
		return result, err
	}
	swapResult, err := switchConfigDir(o.backups, target, liveDir, m.layout.HarnessBackupsDir(h.ID()), skip)
	result.Swap = swapResult
	if err != nil {
		return result, err
	}

	// The live directory now holds the target profile, so it is recorded as
	// active even if materializing MCP or resources below fails.
	var errs []error
	if err := o.restoreMCP(h, target, liveDir); err != nil {
		errs = append(errs, err)
	}
	if err := o.resources.ToHarness(h, target); err != nil {
		errs = append(errs, fmt.Errorf(messages.ProfileMirrorResourcesFmt, name, h.ID(), err))
	}
	cfg.SetActiveProfile(h.ID(), name.String())
	if err := m.registry.Save(cfg); err != nil {
		errs = append(errs, fmt.Errorf(messages.ProfileSaveRegistryFmt, err))
	}
	if err := m.markers.Update(liveDir, name, cfg.ProfileMarker); err != nil {
		o.log.Warn().Err(err).Msg(messages.LogMarkerFailed)
	}
	if len(errs) > 0 {
		return result, errors.Join(errs...)
	}
	o.log.Debug().Str("profile", name.String()).Msg(messages.LogSwitchDone)
	return result, nil
}

// previousProfile returns the directory of the active profile, or "" when the
// registry names none or names one whose directory is gone.
func (o *op) previousProfile(h harness.Harness, prev string, hasPrev bool) (string, error) {
	if !hasPrev {
		return "", nil
	}
	prevName, err := NewName(prev)
	if err != nil || prevName.String() != prev {
		return "", nil
	}
	path := o.m.layout.ProfilePath(h.ID(), prevName)
	exists, err := o.dirExists(path)
	if err != nil || !exists {
		return "", err
	}
	return path, nil
}

// archiveUnmanaged snapshots live config that no profile owns into the no-profile slot.
func (o *op) archiveUnmanaged(h harness.Harness, liveDir string) (string, error) {
	hasConfig, err := o.mirror.hasEntries(liveDir, o.m.policy.Skips)
	if err != nil || !hasConfig {
		return "", err
	}
	dir := o.m.layout.NoProfileBackupDir(h.ID())
	if err := o.m.sys.RemoveAll(dir); err != nil {
		return "", fmt.Errorf(messages.ProfileArchiveFmt, h.ID(), dir, fmt.Errorf(messages.ProfileRemoveFmt, dir, err))
	}
	if err := o.capture(h, liveDir, dir); err != nil {
		return "", fmt.Errorf(messages.ProfileArchiveFmt, h.ID(), dir, err)
	}
	o.log.Info().Str("path", dir).Msg(messages.LogArchivedUnmanaged)
	return dir, nil
}

// SaveToProfile captures the live directory of h into profile name.
// It is a no-op when the profile does not exist or there is no live config to capture.
func (m *Manager) SaveToProfile(h harness.Harness, name Name) error {
	o := m.begin(h)
	liveDir, err := configDir(h)
	if err != nil {
		return err
	}
	path := m.layout.ProfilePath(h.ID(), name)
	exists, err := o.dirExists(path)
	if err != nil || !exists {
		return err
	}
	if err := o.saveToProfile(h, path, liveDir); err != nil {
		return fmt.Errorf(messages.ProfileSaveFmt, h.ID(), name, err)
	}
	return nil
}

func (o *op) saveToProfile(h harness.Harness, profilePath string, liveDir string) error {
	hasLive, err := o.mirror.hasEntries(liveDir, o.m.policy.Skips)
	if err != nil {
		return err
	}
	hasMCP, err := o.hasExternalMCP(h, liveDir)
	if err != nil {
		return err
	}
	if !hasLive && !hasMCP {
		return nil
	}

	// Capture next to the profile and swap it in, so a failed capture leaves
	// the previous snapshot whole. Dotted names are never listed as profiles.
	sys := o.m.sys
	parent, base := filepath.Split(profilePath)
	staged := filepath.Join(parent, "."+base+".saving")
	retired := filepath.Join(parent, "."+base+".old")
	for _, dir := range []string{staged, retired} {
		if err := sys.RemoveAll(dir); err != nil {
			return fmt.Errorf(messages.ProfileRemoveFmt, dir, err)
		}
	}
	if err := o.capture(h, liveDir, staged); err != nil {
		o.discard(staged)
		return err
	}
	if err := sys.Rename(profilePath, retired); err != nil {
		o.discard(staged)
		return fmt.Errorf(messages.ProfileRenameFmt, profilePath, retired, err)
	}
	if err := sys.Rename(staged, profilePath); err != nil {
		if restoreErr := sys.Rename(retired, profilePath); restoreErr != nil {
			o.log.Warn().Err(restoreErr).Str("path", retired).Msg(messages.LogProfileRestoreFailed)
		}
		o.discard(staged)
		return fmt.Errorf(messages.ProfileRenameFmt, staged, profilePath, err)
	}
	o.discard(retired)
	return nil
}

// discard removes a scratch directory, logging instead of failing.
func (o *op) discard(dir string) {
	if err := o.m.sys.RemoveAll(dir); err != nil {
		o.log.Warn().Err(err).Str("path", dir).Msg(messages.LogScratchCleanup)
	}
}

// capture copies live config, the external MCP file and resource directories into dst.
func (o *op) capture(h harness.Harness, liveDir string, dst string) error {
	if err := o.m.sys.MkdirAll(dst, dirPerm); err != nil {
		return fmt.Errorf(messages.ProfileCreateDirFmt, dst, err)
	}
	skip, err := o.resources.liveSkips(h)
	if err != nil {
		return err
	}
	if err := o.mirror.copyAllExcept(liveDir, dst, skip); err != nil {
		return err
	}
	if err := o.captureMCP(h, liveDir, dst); err != nil {
		return err
	}
	if err := o.resources.ToProfile(h, dst); err != nil {
		return err
	}
	return o.m.markers.Strip(dst)
}

// externalMCP returns the harness MCP file when it lives outside liveDir.
// An MCP file inside liveDir travels with the directory copy.
func externalMCP(h harness.Harness, liveDir string) (string, bool) {
	path, ok := h.MCPConfigPath()
	if !ok || strings.TrimSpace(path) == "" {
		return "", false
	}
	rel, err := filepath.Rel(liveDir, path)
	if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return path, true
}

func (o *op) hasExternalMCP(h harness.Harness, liveDir string) (bool, error) {
	path, ok := externalMCP(h, liveDir)
	if !ok {
		return false, nil
	}
	return o.fileExists(path)
}

func (o *op) captureMCP(h harness.Harness, liveDir string, dst string) error {
	path, ok := externalMCP(h, liveDir)
	if !ok {
		return nil
	}
	info, err := o.m.sys.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf(messages.ProfileStatFmt, path, err)
	}
	if !info.Mode().IsRegular() {
		return nil
	}
	return o.mirror.copyFile(path, filepath.Join(dst, filepath.Base(path)), info.Mode().Perm())
}

// restoreMCP writes the profile's copy of the external MCP file back to its harness
// location and drops the stray copy the directory swap placed in liveDir.
func (o *op) restoreMCP(h harness.Harness, profilePath string, liveDir string) error {
	path, ok := externalMCP(h, liveDir)
	if !ok {
		return nil
	}
	src := filepath.Join(profilePath, filepath.Base(path))
	info, err := o.m.sys.Stat(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf(messages.ProfileRestoreMCPFmt, path, err)
	}
	if err := o.m.sys.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf(messages.ProfileRestoreMCPFmt, path, err)
	}
	if err := o.m.sys.CopyFile(src, path, info.Mode().Perm()); err != nil {
		return fmt.Errorf(messages.ProfileRestoreMCPFmt, path, err)
	}
	stray := filepath.Join(liveDir, filepath.Base(path))
	if err := o.m.sys.Remove(stray); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf(messages.ProfileRestoreMCPFmt, path, fmt.Errorf(messages.ProfileRemoveFmt, stray, err))
	}
	return nil
}

// BackupCurrent snapshots the live directory of h, plus an external MCP file, into a
// new timestamped directory and archives its session data separately.
func (m *Manager) BackupCurrent(h harness.Harness) (string, error) {
	o := m.begin(h)
	liveDir, err := configDir(h)
	if err != nil {
		return "", err
	}
	hasLive, err := o.dirExists(liveDir)
	if err != nil {
		return "", err
	}
	hasMCP, err := o.hasExternalMCP(h, liveDir)
	if err != nil {
		return "", err
	}
	if !hasLive && !hasMCP {
		return "", fmt.Errorf(messages.ProfileNoConfigFmt, ErrNoConfigFound, h.ID())
	}

	dir, err := o.backups.create(m.layout.HarnessBackupsDir(h.ID()))
	if err != nil {
		return "", err
	}
	if err := o.mirror.CopyAll(liveDir, dir); err != nil {
		return dir, err
	}
	if err := o.captureMCP(h, liveDir, dir); err != nil {
		return dir, err
	}
	if _, err := o.backups.BackupSessionData(liveDir, m.layout.ExtraBackupsDir(h.ID())); err != nil {
		o.log.Warn().Err(err).Msg(messages.LogSessionBackup)
	}
	return dir, nil
}

// ListProfiles returns the profiles of h, sorted. Directories that are not valid
// profile names are skipped.
func (m *Manager) ListProfiles(h harness.Harness) ([]Name, error) {
	dir := m.layout.HarnessDir(h.ID())
	entries, err := m.sys.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Name{}, nil
		}
		return nil, fmt.Errorf(messages.ProfileReadDirFmt, dir, err)
	}
	out := make([]Name, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name, err := NewName(entry.Name())
		if err != nil || name.String() != entry.Name() {
			continue
		}
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// CreateProfile creates an empty profile.
func (m *Manager) CreateProfile(h harness.Harness, name Name) error {
	_, err := m.createProfileDir(h, name)
	return err
}

func (m *Manager) createProfileDir(h harness.Harness, name Name) (string, error) {
	parent := m.layout.HarnessDir(h.ID())
	if err := m.sys.MkdirAll(parent, dirPerm); err != nil {
		return "", fmt.Errorf(messages.ProfileCreateDirFmt, parent, err)
	}
	path := m.layout.ProfilePath(h.ID(), name)
	if err := m.sys.Mkdir(path, dirPerm); err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf(messages.ProfileExistsFmt, ErrProfileExists, name)
		}
		return "", fmt.Errorf(messages.ProfileCreateDirFmt, path, err)
	}
	return path, nil
}

// CreateFromCurrent creates profile name from the live config of h and records it
// as active, since the live directory already matches it.
func (m *Manager) CreateFromCurrent(h harness.Harness, name Name) error {
	o := m.begin(h)
	cfg, err := m.registry.Load()
	if err != nil {
		return fmt.Errorf(messages.ProfileLoadRegistryFmt, err)
	}
	liveDir, err := configDir(h)
	if err != nil {
		return err
	}
	path, err := m.createProfileDir(h, name)
	if err != nil {
		return err
	}

	hasLive, err := o.dirExists(liveDir)
	if err == nil && !hasLive {
		hasLive, err = o.hasExternalMCP(h, liveDir)
	}
	if err == nil && !hasLive {
		err = fmt.Errorf(messages.ProfileNoConfigFmt, ErrNoConfigFound, h.ID())
	}
	if err == nil {
		err = o.capture(h, liveDir, path)
	}
	if err != nil {
		_ = m.sys.RemoveAll(path)
		return err
	}

	cfg.SetActiveProfile(h.ID(), name.String())
	if err := m.registry.Save(cfg); err != nil {
		return fmt.Errorf(messages.ProfileSaveRegistryFmt, err)
	}
	if err := m.markers.Update(liveDir, name, cfg.ProfileMarker); err != nil {
		o.log.Warn().Err(err).Msg(messages.LogMarkerFailed)
	}
	return nil
}

// EnsureDefaultProfile creates the default profile from the live config when h is
// fully installed and has no default profile yet. It reports whether it created one.
func (m *Manager) EnsureDefaultProfile(h harness.Harness) (bool, error) {
	status, err := h.InstallationStatus()
	if err != nil {
		return false, fmt.Errorf(messages.ProfileInstallStatusFmt, h.ID(), err)
	}
	if status != harness.FullyInstalled {
		return false, nil
	}
	o := m.begin(h)
	exists, err := o.dirExists(m.layout.ProfilePath(h.ID(), DefaultName))
	if err != nil || exists {
		return false, err
	}
	if err := m.CreateFromCurrent(h, DefaultName); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteProfile removes profile name. Deleting the active profile clears the
// registry entry; the live directory is left as it is.
func (m *Manager) DeleteProfile(h harness.Harness, name Name) error {
	o := m.begin(h)
	cfg, err := m.registry.Load()
	if err != nil {
		return fmt.Errorf(messages.ProfileLoadRegistryFmt, err)
	}
	path := m.layout.ProfilePath(h.ID(), name)
	exists, err := o.dirExists(path)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf(messages.ProfileNotFoundFmt, ErrProfileNotFound, name)
	}
	if err := m.sys.RemoveAll(path); err != nil {
		return fmt.Errorf(messages.ProfileRemoveFmt, path, err)
	}
	if active, ok := cfg.ActiveProfileFor(h.ID()); ok && active == name.String() {
		cfg.ClearActiveProfile(h.ID())
		if err := m.registry.Save(cfg); err != nil {
			return fmt.Errorf(messages.ProfileSaveRegistryFmt, err)
		}
	}
	return nil
}

func configDir(h harness.Harness) (string, error) {
	dir, err := h.ConfigDir()
	if err != nil {
		return "", fmt.Errorf(messages.ProfileConfigDirFmt, h.ID(), err)
	}
	return filepath.Clean(dir), nil
}

func (o *op) dirExists(path string) (bool, error) {
	return o.mirror.isDir(path)
}

func (o *op) fileExists(path string) (bool, error) {
	info, err := o.m.sys.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf(messages.ProfileStatFmt, path, err)
	}
	return info.Mode().IsRegular(), nil
}
