package profile

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aymanbagabas/go-udiff"

	"github.com/bridle-dev/bridle/internal/harness"
	"github.com/bridle-dev/bridle/internal/messages"
)

// DefaultDiffMaxLines is the default maximum number of diff lines shown per file.
const DefaultDiffMaxLines = 40

// DiffStatus classifies a file that differs between a profile and the live directory.
type DiffStatus string

const (
	// DiffAdded files exist only in the live directory.
	DiffAdded DiffStatus = "added"
	// DiffRemoved files exist only in the profile.
	DiffRemoved DiffStatus = "removed"
	DiffModified DiffStatus = "modified"
)

// FileDiff is a per-file unified diff from the profile snapshot to the live directory.
type FileDiff struct {
	Path        string
	Status      DiffStatus
	UnifiedDiff string
	Truncated   bool
}

// DiffProfile compares the snapshot of profile name with the live directory of h.
// For the active profile this shows the edits a switch would capture.
// Skipped entries and marker files are ignored.
func (m *Manager) DiffProfile(h harness.Harness, name Name, maxLines int) ([]FileDiff, error) {
	o := m.begin(h)
	profilePath := m.layout.ProfilePath(h.ID(), name)
	exists, err := o.dirExists(profilePath)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf(messages.ProfileNotFoundFmt, ErrProfileNotFound, name)
	}
	liveDir, err := configDir(h)
	if err != nil {
		return nil, err
	}

	saved, err := m.collectFiles(profilePath)
	if err != nil {
		return nil, err
	}
	live, err := m.collectFiles(liveDir)
	if err != nil {
		return nil, err
	}
	pairs, err := o.resources.pairs(h, profilePath)
	if err != nil {
		return nil, err
	}
	live = canonicalResourcePaths(live, pairs)

	paths := make([]string, 0, len(saved)+len(live))
	for rel := range saved {
		paths = append(paths, rel)
	}
	for rel := range live {
		if _, ok := saved[rel]; !ok {
			paths = append(paths, rel)
		}
	}
	sort.Strings(paths)

	out := []FileDiff{}
	for _, rel := range paths {
		from, inSaved := saved[rel]
		to, inLive := live[rel]
		if inSaved && inLive && from == to {
			continue
		}
		status := DiffModified
		switch {
		case !inSaved:
			status = DiffAdded
		case !inLive:
			status = DiffRemoved
		}
		rendered, truncated := renderTruncatedUnifiedDiff("profile/"+rel, "live/"+rel, from, to, maxLines)
		out = append(out, FileDiff{Path: rel, Status: status, UnifiedDiff: rendered, Truncated: truncated})
	}
	return out, nil
}

// canonicalResourcePaths renames live files under resource dirs kept inside the
// live directory to the canonical paths a capture stores them at. Live files
// already at those canonical paths are dropped, as a capture replaces them.
func canonicalResourcePaths(live map[string]string, pairs []resourcePair) map[string]string {
	moves := map[string]string{}
	for _, p := range pairs {
		if p.live != "" {
			moves[filepath.ToSlash(p.live)+"/"] = string(p.kind) + "/"
		}
	}
	if len(moves) == 0 {
		return live
	}
	out := make(map[string]string, len(live))
	for rel, content := range live {
		canonical := false
		for _, to := range moves {
			if strings.HasPrefix(rel, to) {
				canonical = true
				break
			}
		}
		if !canonical {
			out[rel] = content
		}
	}
	for rel, content := range live {
		for from, to := range moves {
			if strings.HasPrefix(rel, from) {
				delete(out, rel)
				out[to+strings.TrimPrefix(rel, from)] = content
				break
			}
		}
	}
	return out
}

// collectFiles maps slash-separated relative paths to comparable content.
// Symlinks compare by target.
func (m *Manager) collectFiles(root string) (map[string]string, error) {
	out := map[string]string{}
	var walk func(dir string, rel string) error
	walk = func(dir string, rel string) error {
		entries, err := m.sys.ReadDir(dir)
		if err != nil {
			if rel == "" && errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return fmt.Errorf(messages.ProfileReadDirFmt, dir, err)
		}
		for _, entry := range entries {
			name := entry.Name()
			if m.policy.Skips(name) || (rel == "" && strings.HasPrefix(name, MarkerPrefix)) {
				continue
			}
			full := filepath.Join(dir, name)
			childRel := path.Join(rel, name)
			info, err := m.sys.Lstat(full)
			if err != nil {
				return fmt.Errorf(messages.ProfileStatFmt, full, err)
			}
			switch {
			case info.Mode()&os.ModeSymlink != 0:
				target, err := m.sys.Readlink(full)
				if err != nil {
					return fmt.Errorf(messages.ProfileReadFileFmt, full, err)
				}
				out[childRel] = "symlink -> " + target + "\n"
			case info.IsDir():
				if err := walk(full, childRel); err != nil {
					return err
				}
			case info.Mode().IsRegular():
				data, err := m.sys.ReadFile(full)
				if err != nil {
					return fmt.Errorf(messages.ProfileReadFileFmt, full, err)
				}
				out[childRel] = string(data)
			}
		}
		return nil
	}
	return out, walk(root, "")
}

func normalizeDiffMaxLines(value int) int {
	if value <= 0 {
		return DefaultDiffMaxLines
	}
	return value
}

func renderTruncatedUnifiedDiff(fromName string, toName string, fromContent string, toContent string, maxLines int) (string, bool) {
	limit := normalizeDiffMaxLines(maxLines)
	diff := udiff.Unified(fromName, toName, fromContent, toContent)
	lines := splitDiffLines(diff)
	if len(lines) <= limit {
		return ensureTrailingNewline(strings.Join(lines, "\n")), false
	}
	truncated := append(lines[:limit:limit], fmt.Sprintf(messages.ProfileDiffTruncatedFmt, limit))
	return ensureTrailingNewline(strings.Join(truncated, "\n")), true
}

func splitDiffLines(content string) []string {
	trimmed := strings.TrimRight(content, "\n")
	if trimmed == "" {
		return []string{}
	}
	return strings.Split(trimmed, "\n")
}

func ensureTrailingNewline(content string) string {
	if content == "" || strings.HasSuffix(content, "\n") {
		return content
	}
	return content + "\n"
}
