package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/rs/zerolog"

	"github.com/bridle-dev/bridle/internal/messages"
)

const dirPerm os.FileMode = 0o755

// Policy holds the entry names that are never captured into a profile.
type Policy struct {
	// AlwaysExcluded are VCS and OS metadata entries.
	AlwaysExcluded []string
	// SessionData are transient runtime entries. They survive a switch in place
	// and are archived separately instead of being captured.
	SessionData []string
}

// DefaultPolicy returns the built-in deny-lists.
func DefaultPolicy() Policy {
	return Policy{
		AlwaysExcluded: []string{".git", ".DS_Store", "Thumbs.db", "__pycache__", "node_modules"},
		SessionData:    []string{"transcripts", "debug", "statsig", "projects", "todos", "shell-snapshots", "history.jsonl"},
	}
}

// IsExcluded reports whether name is VCS or OS metadata.
func (p Policy) IsExcluded(name string) bool {
	return slices.Contains(p.AlwaysExcluded, name)
}

// IsSessionData reports whether name is transient session data.
func (p Policy) IsSessionData(name string) bool {
	return slices.Contains(p.SessionData, name)
}

// Skips reports whether name is left out of profile snapshots.
func (p Policy) Skips(name string) bool {
	return p.IsExcluded(name) || p.IsSessionData(name)
}

// Mirror copies directory trees through a System.
type Mirror struct {
	sys    System
	policy Policy
	log    zerolog.Logger
}

// NewMirror returns a Mirror applying policy.
func NewMirror(sys System, policy Policy, log zerolog.Logger) *Mirror {
	return &Mirror{sys: sys, policy: policy, log: log}
}

type copyMode struct {
	// skip applies at every depth.
	skip func(name string) bool
	// topSkip applies to the entries directly under the source root only.
	topSkip func(name string) bool
	// tolerant logs and continues past per-entry failures.
	tolerant bool
	// skipPaths holds cleaned source paths left out wherever they occur.
	skipPaths map[string]bool
}

// CopyAll copies src into dst, leaving out policy entries at every depth.
// A missing src is a no-op. The first failure aborts the copy.
func (m *Mirror) CopyAll(src string, dst string) error {
	return m.copyRoot(src, dst, copyMode{skip: m.policy.Skips})
}

// copyAllExcept is CopyAll with the source paths in paths left out.
func (m *Mirror) copyAllExcept(src string, dst string, paths []string) error {
	mode := copyMode{skip: m.policy.Skips}
	if len(paths) > 0 {
		mode.skipPaths = make(map[string]bool, len(paths))
		for _, p := range paths {
			mode.skipPaths[filepath.Clean(p)] = true
		}
	}
	return m.copyRoot(src, dst, mode)
}

// CopyFiltered is CopyAll that logs a warning and moves on when an entry cannot be copied.
// It fails only when dst cannot be created or src cannot be listed.
func (m *Mirror) CopyFiltered(src string, dst string) error {
	return m.copyRoot(src, dst, copyMode{skip: m.policy.Skips, tolerant: true})
}

// CopyTree copies everything under src into dst, strictly and unfiltered.
func (m *Mirror) CopyTree(src string, dst string) error {
	return m.copyRoot(src, dst, copyMode{})
}

// copyTreeExcept is CopyTree with top-level entries matching skip left out.
func (m *Mirror) copyTreeExcept(src string, dst string, skip func(name string) bool) error {
	return m.copyRoot(src, dst, copyMode{topSkip: skip})
}

func (m *Mirror) copyRoot(src string, dst string, mode copyMode) error {
	ok, err := m.isDir(src)
	if err != nil || !ok {
		return err
	}
	return m.copyDir(src, dst, mode)
}

// isDir follows symlinks so a live directory that is itself a link is copied through.
func (m *Mirror) isDir(path string) (bool, error) {
	info, err := m.sys.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf(messages.ProfileStatFmt, path, err)
	}
	return info.IsDir(), nil
}

func (m *Mirror) copyDir(src string, dst string, mode copyMode) error {
	if err := m.sys.MkdirAll(dst, dirPerm); err != nil {
		return fmt.Errorf(messages.ProfileCreateDirFmt, dst, err)
	}
	entries, err := m.sys.ReadDir(src)
	if err != nil {
		return fmt.Errorf(messages.ProfileReadDirFmt, src, err)
	}
	child := copyMode{skip: mode.skip, tolerant: mode.tolerant, skipPaths: mode.skipPaths}
	for _, entry := range entries {
		name := entry.Name()
		if (mode.skip != nil && mode.skip(name)) || (mode.topSkip != nil && mode.topSkip(name)) {
			continue
		}
		srcPath := filepath.Join(src, name)
		if mode.skipPaths[srcPath] {
			continue
		}
		err := m.copyEntry(srcPath, filepath.Join(dst, name), child)
		if err == nil {
			continue
		}
		if !mode.tolerant {
			return err
		}
		m.log.Warn().Err(err).Str("path", srcPath).Msg(messages.LogCopySkipped)
	}
	return nil
}

func (m *Mirror) copyEntry(src string, dst string, mode copyMode) error {
	info, err := m.sys.Lstat(src)
	if err != nil {
		return fmt.Errorf(messages.ProfileStatFmt, src, err)
	}
	switch {
	case info.Mode()&os.ModeSymlink != 0:
		return m.copySymlink(src, dst)
	case info.IsDir():
		return m.copyDir(src, dst, mode)
	case info.Mode().IsRegular():
		return m.copyFile(src, dst, info.Mode().Perm())
	default:
		// Sockets, pipes and devices are runtime artifacts, not configuration.
		m.log.Debug().Str("path", src).Msg(messages.LogCopySkipped)
		return nil
	}
}

func (m *Mirror) copyFile(src string, dst string, perm os.FileMode) error {
	// Never write through a symlink already sitting at dst.
	if info, err := m.sys.Lstat(dst); err == nil && info.Mode()&os.ModeSymlink != 0 {
		if err := m.sys.Remove(dst); err != nil {
			return fmt.Errorf(messages.ProfileRemoveFmt, dst, err)
		}
	}
	if err := m.sys.CopyFile(src, dst, perm); err != nil {
		return fmt.Errorf(messages.ProfileCopyFileFmt, src, dst, err)
	}
	return nil
}

// copySymlink recreates the link verbatim instead of following it.
func (m *Mirror) copySymlink(src string, dst string) error {
	target, err := m.sys.Readlink(src)
	if err != nil {
		return fmt.Errorf(messages.ProfileCopyLinkFmt, src, dst, err)
	}
	if _, err := m.sys.Lstat(dst); err == nil {
		if err := m.sys.RemoveAll(dst); err != nil {
			return fmt.Errorf(messages.ProfileRemoveFmt, dst, err)
		}
	}
	if err := m.sys.Symlink(target, dst); err != nil {
		return fmt.Errorf(messages.ProfileCopyLinkFmt, src, dst, err)
	}
	return nil
}

// clearDir removes every entry of dir except those matching keep. A missing dir is a no-op.
func (m *Mirror) clearDir(dir string, keep func(name string) bool) error {
	entries, err := m.sys.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf(messages.ProfileReadDirFmt, dir, err)
	}
	for _, entry := range entries {
		if keep != nil && keep(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := m.sys.RemoveAll(path); err != nil {
			return fmt.Errorf(messages.ProfileRemoveFmt, path, err)
		}
	}
	return nil
}

// hasEntries reports whether dir exists and is non-empty, optionally ignoring entries matching ignore.
func (m *Mirror) hasEntries(dir string, ignore func(name string) bool) (bool, error) {
	entries, err := m.sys.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf(messages.ProfileReadDirFmt, dir, err)
	}
	for _, entry := range entries {
		if ignore == nil || !ignore(entry.Name()) {
			return true, nil
		}
	}
	return false, nil
}
