package profile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/bridle-dev/bridle/internal/config"
	"github.com/bridle-dev/bridle/internal/harness"
	"github.com/bridle-dev/bridle/internal/testutil"
)

const testPID = 4242

var errInjected = errors.New("injected failure")

// faultSystem is a test helper that allows deterministic error injection for the
// profile System interface without chmod-based permission tricks.
type faultSystem struct {
	base System
	// copyErrs fail CopyFile for an exact source path.
	copyErrs map[string]error
	// copyPrefixErrs fail CopyFile for any source path under the key.
	copyPrefixErrs map[string]error
	// removeErrs fail RemoveAll once for an exact path.
	removeErrs  map[string]error
	readDirErrs map[string]error
	mkdirErrs   map[string]error
	writeErrs   map[string]error
	// renameErrs fail Rename for an exact old path.
	renameErrs map[string]error
}

func newFaultSystem(base System) *faultSystem {
	return &faultSystem{
		base:           base,
		copyErrs:       map[string]error{},
		copyPrefixErrs: map[string]error{},
		removeErrs:     map[string]error{},
		readDirErrs:    map[string]error{},
		mkdirErrs:      map[string]error{},
		writeErrs:      map[string]error{},
		renameErrs:     map[string]error{},
	}
}

func normalizePath(path string) string {
	return filepath.Clean(path)
}

func (f *faultSystem) ReadDir(name string) ([]os.DirEntry, error) {
	if err, ok := f.readDirErrs[normalizePath(name)]; ok {
		return nil, err
	}
	return f.base.ReadDir(name)
}

func (f *faultSystem) Lstat(name string) (os.FileInfo, error) { return f.base.Lstat(name) }

func (f *faultSystem) Stat(name string) (os.FileInfo, error) { return f.base.Stat(name) }

func (f *faultSystem) Mkdir(name string, perm os.FileMode) error {
	if err, ok := f.mkdirErrs[normalizePath(name)]; ok {
		return err
	}
	return f.base.Mkdir(name, perm)
}

func (f *faultSystem) MkdirAll(path string, perm os.FileMode) error {
	if err, ok := f.mkdirErrs[normalizePath(path)]; ok {
		return err
	}
	return f.base.MkdirAll(path, perm)
}

func (f *faultSystem) Remove(name string) error { return f.base.Remove(name) }

func (f *faultSystem) RemoveAll(path string) error {
	key := normalizePath(path)
	if err, ok := f.removeErrs[key]; ok {
		delete(f.removeErrs, key)
		return err
	}
	return f.base.RemoveAll(path)
}

func (f *faultSystem) Rename(oldpath string, newpath string) error {
	if err, ok := f.renameErrs[normalizePath(oldpath)]; ok {
		return err
	}
	return f.base.Rename(oldpath, newpath)
}

func (f *faultSystem) Readlink(name string) (string, error) { return f.base.Readlink(name) }

func (f *faultSystem) Symlink(oldname string, newname string) error {
	return f.base.Symlink(oldname, newname)
}

func (f *faultSystem) CopyFile(src string, dst string, perm os.FileMode) error {
	key := normalizePath(src)
	if err, ok := f.copyErrs[key]; ok {
		return err
	}
	for prefix, err := range f.copyPrefixErrs {
		if strings.HasPrefix(key, normalizePath(prefix)+string(filepath.Separator)) {
			return err
		}
	}
	return f.base.CopyFile(src, dst, perm)
}

func (f *faultSystem) ReadFile(name string) ([]byte, error) { return f.base.ReadFile(name) }

func (f *faultSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	if err, ok := f.writeErrs[normalizePath(name)]; ok {
		return err
	}
	return f.base.WriteFile(name, data, perm)
}

// failingStore is a RegistryStore whose Load always fails.
type failingStore struct{}

func (failingStore) Load() (*config.Config, error) { return nil, errInjected }

func (failingStore) Save(*config.Config) error { return errInjected }

// listingHarness reports the directory it was asked to read as its only MCP server.
type listingHarness struct {
	*testutil.MockHarness
}

func (listingHarness) MCPServers(dir string) ([]harness.MCPServer, error) {
	return []harness.MCPServer{{Name: dir, Enabled: true}}, nil
}

type testEnv struct {
	root     string
	home     string
	live     string
	shared   string
	profiles string
	store    config.FileStore
	h        *testutil.MockHarness
	sys      *faultSystem
	mgr      *Manager
	now      time.Time
}

// newTestEnv builds a mock harness whose skills live inside its config dir and whose
// commands and MCP file live outside it.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	home := filepath.Join(root, "home")
	live := filepath.Join(home, ".tool")
	shared := filepath.Join(home, "shared")
	env := &testEnv{
		root:     root,
		home:     home,
		live:     live,
		shared:   shared,
		profiles: filepath.Join(root, "bridle", "profiles"),
		store:    config.FileStore{Path: filepath.Join(root, "bridle", "config.toml")},
		h: &testutil.MockHarness{
			HarnessID: "mock",
			Dir:       live,
			MCPPath:   filepath.Join(home, ".tool.json"),
			Resources: map[harness.Kind]harness.ResourceDir{
				harness.KindSkills: {
					Path:      filepath.Join(live, "skills"),
					Structure: harness.Nested{SubdirPattern: "*", FileName: "SKILL.md"},
				},
				harness.KindCommands: {
					Path:      filepath.Join(shared, "commands"),
					Structure: harness.Flat{FilePattern: "*.md"},
				},
			},
			Status: harness.FullyInstalled,
		},
		sys: newFaultSystem(RealSystem{}),
		now: time.Date(2026, 3, 14, 15, 9, 26, 535_000_000, time.UTC),
	}
	env.mgr = env.newManager(t, env.store)
	return env
}

func (e *testEnv) newManager(t *testing.T, store RegistryStore) *Manager {
	t.Helper()
	mgr, err := NewManager(Options{
		ProfilesRoot: e.profiles,
		Registry:     store,
		System:       e.sys,
		Logger:       zerolog.Nop(),
		Now:          func() time.Time { return e.now },
		PID:          testPID,
		NewOpID:      func() string { return "test-op" },
	})
	require.NoError(t, err)
	return mgr
}

func (e *testEnv) profileDir(name string) string {
	return filepath.Join(e.profiles, "mock", name)
}

func (e *testEnv) backupsDir() string {
	return filepath.Join(e.root, "bridle", "backups", "mock")
}

func (e *testEnv) writeProfile(t *testing.T, name string, files map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(e.profileDir(name), 0o755))
	testutil.WriteTree(t, e.profileDir(name), files)
}

func (e *testEnv) active(t *testing.T) (string, bool) {
	t.Helper()
	cfg, err := e.store.Load()
	require.NoError(t, err)
	return cfg.ActiveProfileFor("mock")
}

func (e *testEnv) mirror() *Mirror {
	return NewMirror(e.sys, DefaultPolicy(), zerolog.Nop())
}

func (e *testEnv) backups() *Backups {
	return NewBackups(e.mirror(), func() time.Time { return e.now }, testPID, zerolog.Nop())
}

func exists(t *testing.T, path string) bool {
	t.Helper()
	_, err := os.Lstat(path)
	if err == nil {
		return true
	}
	require.True(t, os.IsNotExist(err), "lstat %s: %v", path, err)
	return false
}
