package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bridle-dev/bridle/internal/harness"
	"github.com/bridle-dev/bridle/internal/messages"
)

// ResourceMirror moves resource directories between a harness's own locations
// and the canonical directories inside a profile (commands, agents, skills, plugins).
type ResourceMirror struct {
	mirror *Mirror
	log    zerolog.Logger
}

// NewResourceMirror returns a ResourceMirror copying through mirror.
func NewResourceMirror(mirror *Mirror, log zerolog.Logger) *ResourceMirror {
	return &ResourceMirror{mirror: mirror, log: log}
}

type resourcePair struct {
	kind      harness.Kind
	dir       harness.ResourceDir
	canonical string
	// live is the harness path relative to the live directory, empty when
	// the path lies outside it.
	live string
}

// pairs lists the harness resource dirs that are not already carried by the
// live-directory copy, i.e. whose path is not <live>/<canonical>.
func (r *ResourceMirror) pairs(h harness.Harness, profileDir string) ([]resourcePair, error) {
	liveDir, err := h.ConfigDir()
	if err != nil {
		return nil, fmt.Errorf(messages.ProfileConfigDirFmt, h.ID(), err)
	}
	var out []resourcePair
	for _, kind := range harness.Kinds() {
		dir, ok := h.Resource(kind)
		if !ok || strings.TrimSpace(dir.Path) == "" {
			continue
		}
		if filepath.Clean(dir.Path) == filepath.Join(liveDir, string(kind)) {
			continue
		}
		p := resourcePair{kind: kind, dir: dir, canonical: filepath.Join(profileDir, string(kind))}
		if rel, err := filepath.Rel(liveDir, dir.Path); err == nil && rel != "." && rel != ".." &&
			!strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			p.live = rel
		}
		out = append(out, p)
	}
	return out, nil
}

// liveSkips returns the harness resource paths inside the live directory. The
// live-directory copy leaves them out so they only reach a profile under
// their canonical names.
func (r *ResourceMirror) liveSkips(h harness.Harness) ([]string, error) {
	pairs, err := r.pairs(h, "")
	if err != nil {
		return nil, err
	}
	var out []string
	for _, p := range pairs {
		if p.live != "" {
			out = append(out, filepath.Clean(p.dir.Path))
		}
	}
	return out, nil
}

// profileSkips returns the canonical directories of profileDir whose harness
// location is inside the live directory. ToHarness places them, so the
// profile-to-live copy leaves them out.
func (r *ResourceMirror) profileSkips(h harness.Harness, profileDir string) ([]string, error) {
	pairs, err := r.pairs(h, profileDir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, p := range pairs {
		if p.live != "" {
			out = append(out, p.canonical)
		}
	}
	return out, nil
}

// ToProfile replaces each canonical directory in profileDir with a copy of the
// harness's resource directory. A canonical directory is removed when the
// harness has nothing at that location.
func (r *ResourceMirror) ToProfile(h harness.Harness, profileDir string) error {
	pairs, err := r.pairs(h, profileDir)
	if err != nil {
		return err
	}
	for _, p := range pairs {
		if err := r.mirror.sys.RemoveAll(p.canonical); err != nil {
			return fmt.Errorf(messages.ProfileRemoveFmt, p.canonical, err)
		}
		if err := r.mirror.CopyFiltered(p.dir.Path, p.canonical); err != nil {
			return err
		}
	}
	return nil
}

// ToHarness replaces each harness resource directory with the profile's canonical
// directory, removing it when the profile has none. Nested items are renamed
// through the harness's NameTransform on the way out.
func (r *ResourceMirror) ToHarness(h harness.Harness, profileDir string) error {
	pairs, err := r.pairs(h, profileDir)
	if err != nil {
		return err
	}
	for _, p := range pairs {
		if err := r.mirror.sys.RemoveAll(p.dir.Path); err != nil {
			return fmt.Errorf(messages.ProfileRemoveFmt, p.dir.Path, err)
		}
		nested, isNested := p.dir.Structure.(harness.Nested)
		if isNested && p.dir.Transform != nil {
			err = r.copyTransformed(p.canonical, p.dir.Path, nested, p.dir.Transform)
		} else {
			err = r.mirror.CopyFiltered(p.canonical, p.dir.Path)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *ResourceMirror) copyTransformed(src string, dst string, nested harness.Nested, transform harness.NameTransform) error {
	m := r.mirror
	ok, err := m.isDir(src)
	if err != nil || !ok {
		return err
	}
	if err := m.sys.MkdirAll(dst, dirPerm); err != nil {
		return fmt.Errorf(messages.ProfileCreateDirFmt, dst, err)
	}
	entries, err := m.sys.ReadDir(src)
	if err != nil {
		return fmt.Errorf(messages.ProfileReadDirFmt, src, err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if m.policy.Skips(name) {
			continue
		}
		srcPath := filepath.Join(src, name)
		if !entry.IsDir() {
			if err := m.copyEntry(srcPath, filepath.Join(dst, name), copyMode{skip: m.policy.Skips}); err != nil {
				r.log.Warn().Err(err).Str("path", srcPath).Msg(messages.LogCopySkipped)
			}
			continue
		}
		item := transform(name)
		itemDst := filepath.Join(dst, item)
		if err := m.CopyFiltered(srcPath, itemDst); err != nil {
			r.log.Warn().Err(err).Str("path", srcPath).Msg(messages.LogCopySkipped)
			continue
		}
		if nested.FileName == "" {
			continue
		}
		if err := r.renameItem(filepath.Join(itemDst, nested.FileName), item); err != nil {
			r.log.Warn().Err(err).Str("path", itemDst).Msg(messages.LogCopySkipped)
		}
	}
	return nil
}

// renameItem rewrites the frontmatter name of an item's marker file.
func (r *ResourceMirror) renameItem(path string, name string) error {
	sys := r.mirror.sys
	info, err := sys.Lstat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf(messages.ProfileStatFmt, path, err)
	}
	if !info.Mode().IsRegular() {
		return nil
	}
	data, err := sys.ReadFile(path)
	if err != nil {
		return fmt.Errorf(messages.HarnessReadSkillFmt, path, err)
	}
	out, err := harness.RewriteFrontmatterName(data, name)
	if err != nil {
		return fmt.Errorf(messages.HarnessRewriteSkillFmt, path, err)
	}
	if err := sys.WriteFile(path, out, info.Mode().Perm()); err != nil {
		return fmt.Errorf(messages.ProfileWriteFileFmt, path, err)
	}
	return nil
}

// ResourceSummary lists the items of one resource kind.
type ResourceSummary struct {
	Kind            harness.Kind
	Items           []string
	DirectoryExists bool
}

// MatchesPattern reports whether name matches a resource pattern:
// "*", "*.ext", "*suffix", "prefix*" or an exact name.
func MatchesPattern(name string, pattern string) bool {
	switch {
	case pattern == "*":
		return true
	case strings.HasPrefix(pattern, "*"):
		return strings.HasSuffix(name, pattern[1:])
	case strings.HasSuffix(pattern, "*"):
		return strings.HasPrefix(name, pattern[:len(pattern)-1])
	default:
		return name == pattern
	}
}

// summarize lists resource items in dir according to structure.
// Flat items are reported by file stem, nested items by directory name.
func (r *ResourceMirror) summarize(kind harness.Kind, dir string, structure harness.Structure) (ResourceSummary, error) {
	sys := r.mirror.sys
	summary := ResourceSummary{Kind: kind, Items: []string{}}
	entries, err := sys.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return summary, nil
		}
		return summary, fmt.Errorf(messages.ProfileReadDirFmt, dir, err)
	}
	summary.DirectoryExists = true
	for _, entry := range entries {
		name := entry.Name()
		switch s := structure.(type) {
		case harness.Flat:
			if entry.Type().IsRegular() && MatchesPattern(name, s.FilePattern) {
				summary.Items = append(summary.Items, strings.TrimSuffix(name, filepath.Ext(name)))
			}
		case harness.Nested:
			if !entry.IsDir() || !MatchesPattern(name, s.SubdirPattern) {
				continue
			}
			if _, err := sys.Stat(filepath.Join(dir, name, s.FileName)); err == nil {
				summary.Items = append(summary.Items, name)
			}
		}
	}
	sort.Strings(summary.Items)
	return summary, nil
}
