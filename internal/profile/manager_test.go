package profile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridle-dev/bridle/internal/config"
	"github.com/bridle-dev/bridle/internal/harness"
	"github.com/bridle-dev/bridle/internal/testutil"
)

func switchTo(t *testing.T, env *testEnv, name Name) SwitchResult {
	t.Helper()
	result, err := env.mgr.SwitchProfile(context.Background(), env.h, name)
	require.NoError(t, err)
	return result
}

func TestNewManagerValidatesOptions(t *testing.T) {
	_, err := NewManager(Options{Registry: config.FileStore{Path: "x"}})
	require.Error(t, err)

	_, err = NewManager(Options{ProfilesRoot: "/tmp/profiles"})
	require.Error(t, err)

	mgr, err := NewManager(Options{ProfilesRoot: "/tmp/bridle/profiles/", Registry: config.FileStore{Path: "x"}})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/bridle/profiles", mgr.Layout().ProfilesRoot)
}

func TestSwitchProfileWorkPersonalScenario(t *testing.T) {
	env := newTestEnv(t)
	env.writeProfile(t, "work", map[string]string{
		"config.json":       `{"theme":"dark"}`,
		"skills/a/SKILL.md": "# a",
	})
	env.writeProfile(t, "personal", map[string]string{
		"config.json": `{"theme":"light"}`,
	})

	switchTo(t, env, "work")
	assert.Equal(t, map[string]string{
		"config.json":       `{"theme":"dark"}`,
		"skills/a/SKILL.md": "# a",
	}, testutil.ReadTree(t, env.live))

	result := switchTo(t, env, "personal")
	assert.Equal(t, Name("work"), result.Previous)
	assert.Equal(t, map[string]string{
		"config.json": `{"theme":"light"}`,
	}, testutil.ReadTree(t, env.live))

	switchTo(t, env, "work")
	assert.Equal(t, map[string]string{
		"config.json":       `{"theme":"dark"}`,
		"skills/a/SKILL.md": "# a",
	}, testutil.ReadTree(t, env.live))

	active, ok := env.active(t)
	require.True(t, ok)
	assert.Equal(t, "work", active)
}

func TestSwitchProfilePersistsLiveEdits(t *testing.T) {
	env := newTestEnv(t)
	deep := map[string]string{}
	for i := range 5 {
		deep[fmt.Sprintf("a/b/c/d/e/f/g/h/file%d.json", i)] = fmt.Sprintf(`{"n":%d}`, i)
	}
	for i := range 120 {
		deep[fmt.Sprintf("wide/item-%03d.md", i)] = fmt.Sprintf("# %d", i)
	}
	deep["link-to-wide"] = testutil.SymlinkPrefix + "wide"
	env.writeProfile(t, "a", deep)
	env.writeProfile(t, "b", map[string]string{"settings.json": "{}"})

	switchTo(t, env, "a")
	edits := map[string]string{
		"a/b/c/d/e/f/g/h/file0.json": `{"n":"edited"}`,
		"wide/item-999.md":           "# new",
		"new-dir/new.txt":            "fresh",
	}
	testutil.WriteTree(t, env.live, edits)
	require.NoError(t, os.Remove(filepath.Join(env.live, "wide", "item-000.md")))
	want := testutil.ReadTree(t, env.live)

	switchTo(t, env, "b")
	assert.Equal(t, want, testutil.ReadTree(t, env.profileDir("a")))

	switchTo(t, env, "a")
	assert.Equal(t, want, testutil.ReadTree(t, env.live))
}

func TestSwitchProfileIsolatesResources(t *testing.T) {
	env := newTestEnv(t)
	env.writeProfile(t, "a", map[string]string{
		"settings.json":       "{}",
		"skills/foo/SKILL.md": "# foo",
		"commands/deploy.md":  "# deploy",
	})
	env.writeProfile(t, "b", map[string]string{"settings.json": "{}"})
	commands := filepath.Join(env.shared, "commands")

	switchTo(t, env, "a")
	assert.FileExists(t, filepath.Join(env.live, "skills", "foo", "SKILL.md"))
	assert.FileExists(t, filepath.Join(commands, "deploy.md"))

	switchTo(t, env, "b")
	assert.NoDirExists(t, filepath.Join(env.live, "skills"))
	assert.NoDirExists(t, commands)

	switchTo(t, env, "a")
	switchTo(t, env, "b")
	assert.Equal(t, map[string]string{"settings.json": "{}"}, testutil.ReadTree(t, env.profileDir("b")))
	assert.Equal(t, map[string]string{
		"settings.json":       "{}",
		"skills/foo/SKILL.md": "# foo",
		"commands/deploy.md":  "# deploy",
	}, testutil.ReadTree(t, env.profileDir("a")))
}

func TestSwitchProfileRelocatesResourceDirInsideLive(t *testing.T) {
	env := newTestEnv(t)
	env.h.Resources[harness.KindSkills] = harness.ResourceDir{
		Path:      filepath.Join(env.live, "skill"),
		Structure: harness.Nested{SubdirPattern: "*", FileName: "SKILL.md"},
	}
	env.writeProfile(t, "a", map[string]string{
		"settings.json":       `{"a":1}`,
		"skills/foo/SKILL.md": "# foo",
	})
	env.writeProfile(t, "b", map[string]string{"settings.json": `{"b":1}`})
	liveA := map[string]string{
		"settings.json":      `{"a":1}`,
		"skill/foo/SKILL.md": "# foo",
	}

	switchTo(t, env, "a")
	assert.Equal(t, liveA, testutil.ReadTree(t, env.live))

	testutil.WriteTree(t, env.live, map[string]string{"skill/bar/SKILL.md": "# bar"})
	switchTo(t, env, "b")
	assert.Equal(t, map[string]string{"settings.json": `{"b":1}`}, testutil.ReadTree(t, env.live))
	assert.Equal(t, map[string]string{
		"settings.json":       `{"a":1}`,
		"skills/foo/SKILL.md": "# foo",
		"skills/bar/SKILL.md": "# bar",
	}, testutil.ReadTree(t, env.profileDir("a")))

	switchTo(t, env, "a")
	liveA["skill/bar/SKILL.md"] = "# bar"
	assert.Equal(t, liveA, testutil.ReadTree(t, env.live))
	assert.Equal(t, map[string]string{"settings.json": `{"b":1}`}, testutil.ReadTree(t, env.profileDir("b")))
}

func TestSwitchProfileOpenCodeKeepsSingularResourceDirs(t *testing.T) {
	env := newTestEnv(t)
	oc := harness.OpenCode(harness.Env{Home: env.home, ConfigHome: filepath.Join(env.home, ".config")})
	live, err := oc.ConfigDir()
	require.NoError(t, err)
	skill := "---\nname: foo\n---\n# foo\n"
	profileA := map[string]string{
		"opencode.jsonc":      `{"mcp":{}}`,
		"skills/foo/SKILL.md": skill,
		"commands/deploy.md":  "# deploy",
	}
	testutil.WriteTree(t, filepath.Join(env.profiles, "opencode", "a"), profileA)
	testutil.WriteTree(t, filepath.Join(env.profiles, "opencode", "b"), map[string]string{"opencode.jsonc": "{}"})
	liveA := map[string]string{
		"opencode.jsonc":     `{"mcp":{}}`,
		"skill/foo/SKILL.md": skill,
		"command/deploy.md":  "# deploy",
	}
	ctx := context.Background()

	_, err = env.mgr.SwitchProfile(ctx, oc, "a")
	require.NoError(t, err)
	assert.Equal(t, liveA, testutil.ReadTree(t, live))

	_, err = env.mgr.SwitchProfile(ctx, oc, "b")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"opencode.jsonc": "{}"}, testutil.ReadTree(t, live))
	assert.Equal(t, profileA, testutil.ReadTree(t, filepath.Join(env.profiles, "opencode", "a")))

	_, err = env.mgr.SwitchProfile(ctx, oc, "a")
	require.NoError(t, err)
	assert.Equal(t, liveA, testutil.ReadTree(t, live))
}

func TestSwitchProfileToActiveIsNoop(t *testing.T) {
	env := newTestEnv(t)
	env.writeProfile(t, "a", map[string]string{
		"settings.json": "{}",
		"agents/r.md":   "# r",
	})
	switchTo(t, env, "a")

	require.NoError(t, os.WriteFile(filepath.Join(env.live, "settings.json"), []byte(`{"edited":true}`), 0o644))
	before := testutil.ReadTree(t, env.live)
	mtimes := map[string]time.Time{}
	for _, rel := range []string{"settings.json", "agents/r.md", "agents"} {
		info, err := os.Stat(filepath.Join(env.live, rel))
		require.NoError(t, err)
		mtimes[rel] = info.ModTime()
	}
	profileBefore := testutil.ReadTree(t, env.profileDir("a"))

	result := switchTo(t, env, "a")
	assert.True(t, result.NoOp)

	assert.Equal(t, before, testutil.ReadTree(t, env.live))
	assert.Equal(t, profileBefore, testutil.ReadTree(t, env.profileDir("a")))
	for rel, want := range mtimes {
		info, err := os.Stat(filepath.Join(env.live, rel))
		require.NoError(t, err)
		assert.True(t, want.Equal(info.ModTime()), "mtime of %s changed", rel)
	}
}

func TestSwitchProfileRemovesPerSwitchBackup(t *testing.T) {
	env := newTestEnv(t)
	env.writeProfile(t, "a", map[string]string{"settings.json": `{"a":1}`})
	env.writeProfile(t, "b", map[string]string{"settings.json": `{"b":1}`})
	switchTo(t, env, "a")

	result := switchTo(t, env, "b")
	require.NotEmpty(t, result.Swap.BackupPath)
	assert.Equal(t, SwapSuccess, result.Swap.State)
	assert.False(t, exists(t, result.Swap.BackupPath))

	entries, err := os.ReadDir(env.backupsDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSwitchProfileArchivesUnmanagedConfig(t *testing.T) {
	env := newTestEnv(t)
	testutil.WriteTree(t, env.live, map[string]string{
		"settings.json": `{"mine":true}`,
		"history.jsonl": "{}",
	})
	env.writeProfile(t, "a", map[string]string{"settings.json": `{"a":1}`})

	result := switchTo(t, env, "a")
	archive := filepath.Join(env.backupsDir(), "no-profile")
	assert.Equal(t, archive, result.Archived)
	assert.Empty(t, result.Previous)
	assert.Equal(t, map[string]string{"settings.json": `{"mine":true}`}, testutil.ReadTree(t, archive))
	assert.Equal(t, map[string]string{
		"settings.json": `{"a":1}`,
		"history.jsonl": "{}",
	}, testutil.ReadTree(t, env.live))
}

func TestSwitchProfileTreatsDeletedActiveProfileAsUnmanaged(t *testing.T) {
	env := newTestEnv(t)
	testutil.WriteTree(t, env.live, map[string]string{"settings.json": "{}"})
	env.writeProfile(t, "a", map[string]string{"settings.json": `{"a":1}`})
	cfg := config.Default()
	cfg.SetActiveProfile("mock", "gone")
	require.NoError(t, env.store.Save(cfg))

	result := switchTo(t, env, "a")
	assert.Empty(t, result.Previous)
	assert.NotEmpty(t, result.Archived)
	assert.NoDirExists(t, env.profileDir("gone"))
}

func TestSwitchProfileMissingTarget(t *testing.T) {
	env := newTestEnv(t)
	testutil.WriteTree(t, env.live, map[string]string{"settings.json": "{}"})

	_, err := env.mgr.SwitchProfile(context.Background(), env.h, "ghost")
	require.ErrorIs(t, err, ErrProfileNotFound)
	assert.Equal(t, map[string]string{"settings.json": "{}"}, testutil.ReadTree(t, env.live))
	_, ok := env.active(t)
	assert.False(t, ok)
}

func TestSwitchProfileRegistryErrorTouchesNothing(t *testing.T) {
	env := newTestEnv(t)
	testutil.WriteTree(t, env.live, map[string]string{"settings.json": "{}"})
	env.writeProfile(t, "a", map[string]string{"settings.json": `{"a":1}`})
	before := testutil.ReadTree(t, env.root)

	mgr := env.newManager(t, failingStore{})
	_, err := mgr.SwitchProfile(context.Background(), env.h, "a")
	require.ErrorIs(t, err, errInjected)
	assert.Equal(t, before, testutil.ReadTree(t, env.root))
}

func TestSwitchProfileHonorsCanceledContext(t *testing.T) {
	env := newTestEnv(t)
	env.writeProfile(t, "a", map[string]string{"settings.json": `{"a":1}`})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := env.mgr.SwitchProfile(ctx, env.h, "a")
	require.ErrorIs(t, err, context.Canceled)
	assert.NoDirExists(t, env.live)
}

func TestSwitchProfileRollbackKeepsPreviousActive(t *testing.T) {
	env := newTestEnv(t)
	env.writeProfile(t, "a", map[string]string{"settings.json": `{"a":1}`})
	env.writeProfile(t, "b", map[string]string{"settings.json": `{"b":1}`, "x/y.txt": "y"})
	switchTo(t, env, "a")
	env.sys.copyErrs[filepath.Join(env.profileDir("b"), "x", "y.txt")] = errInjected

	result, err := env.mgr.SwitchProfile(context.Background(), env.h, "b")
	require.ErrorIs(t, err, errInjected)
	assert.Equal(t, SwapRestored, result.Swap.State)
	assert.Equal(t, map[string]string{"settings.json": `{"a":1}`}, testutil.ReadTree(t, env.live))
	active, _ := env.active(t)
	assert.Equal(t, "a", active)
}

func TestSwitchProfileMovesExternalMCPConfig(t *testing.T) {
	env := newTestEnv(t)
	mcpPath := filepath.Join(env.home, ".tool.json")
	env.writeProfile(t, "a", map[string]string{
		"settings.json": "{}",
		".tool.json":    `{"mcpServers":{"a":{}}}`,
	})
	env.writeProfile(t, "b", map[string]string{"settings.json": "{}"})

	switchTo(t, env, "a")
	data, err := os.ReadFile(mcpPath)
	require.NoError(t, err)
	assert.Equal(t, `{"mcpServers":{"a":{}}}`, string(data))
	assert.NoFileExists(t, filepath.Join(env.live, ".tool.json"))

	require.NoError(t, os.WriteFile(mcpPath, []byte(`{"mcpServers":{"edited":{}}}`), 0o644))
	switchTo(t, env, "b")
	saved, err := os.ReadFile(filepath.Join(env.profileDir("a"), ".tool.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"mcpServers":{"edited":{}}}`, string(saved))
}

func TestSwitchProfileWritesMarkerWhenEnabled(t *testing.T) {
	env := newTestEnv(t)
	cfg := config.Default()
	cfg.ProfileMarker = true
	require.NoError(t, env.store.Save(cfg))
	env.writeProfile(t, "work", map[string]string{"settings.json": "{}"})
	env.writeProfile(t, "personal", map[string]string{"settings.json": "{}"})

	switchTo(t, env, "work")
	assert.FileExists(t, filepath.Join(env.live, MarkerPrefix+"work"))

	switchTo(t, env, "personal")
	assert.FileExists(t, filepath.Join(env.live, MarkerPrefix+"personal"))
	assert.NoFileExists(t, filepath.Join(env.live, MarkerPrefix+"work"))
	assert.Equal(t, map[string]string{"settings.json": "{}"}, testutil.ReadTree(t, env.profileDir("work")))
}

func TestSaveToProfile(t *testing.T) {
	env := newTestEnv(t)
	env.writeProfile(t, "a", map[string]string{"old.json": "{}"})
	testutil.WriteTree(t, env.live, map[string]string{
		"settings.json": `{"now":1}`,
		"history.jsonl": "{}",
	})

	require.NoError(t, env.mgr.SaveToProfile(env.h, "a"))
	assert.Equal(t, map[string]string{"settings.json": `{"now":1}`}, testutil.ReadTree(t, env.profileDir("a")))

	require.NoError(t, env.mgr.SaveToProfile(env.h, "missing"))
	assert.NoDirExists(t, env.profileDir("missing"))
}

func TestSaveToProfileKeepsProfileWhenLiveIsEmpty(t *testing.T) {
	env := newTestEnv(t)
	env.writeProfile(t, "a", map[string]string{"settings.json": "{}"})
	testutil.WriteTree(t, env.live, map[string]string{"history.jsonl": "{}"})

	require.NoError(t, env.mgr.SaveToProfile(env.h, "a"))
	assert.Equal(t, map[string]string{"settings.json": "{}"}, testutil.ReadTree(t, env.profileDir("a")))
}

func TestSaveToProfileKeepsSnapshotWhenCaptureFails(t *testing.T) {
	env := newTestEnv(t)
	before := map[string]string{"settings.json": `{"old":1}`, "skills/foo/SKILL.md": "# foo"}
	env.writeProfile(t, "a", before)
	testutil.WriteTree(t, env.live, map[string]string{
		"settings.json": `{"new":1}`,
		"broken.json":   "{}",
	})
	env.sys.copyErrs[filepath.Join(env.live, "broken.json")] = errInjected

	err := env.mgr.SaveToProfile(env.h, "a")
	require.ErrorIs(t, err, errInjected)
	assert.Equal(t, before, testutil.ReadTree(t, env.profileDir("a")))
	entries, err := os.ReadDir(filepath.Join(env.profiles, "mock"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].Name())
}

func TestSaveToProfileKeepsSnapshotWhenSwapInFails(t *testing.T) {
	env := newTestEnv(t)
	before := map[string]string{"settings.json": `{"old":1}`}
	env.writeProfile(t, "a", before)
	testutil.WriteTree(t, env.live, map[string]string{"settings.json": `{"new":1}`})
	env.sys.renameErrs[filepath.Join(env.profiles, "mock", ".a.saving")] = errInjected

	err := env.mgr.SaveToProfile(env.h, "a")
	require.ErrorIs(t, err, errInjected)
	assert.Equal(t, before, testutil.ReadTree(t, env.profileDir("a")))
	assert.NoDirExists(t, filepath.Join(env.profiles, "mock", ".a.saving"))
	assert.NoDirExists(t, filepath.Join(env.profiles, "mock", ".a.old"))
}

func TestCreateProfile(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.mgr.CreateProfile(env.h, "work"))
	assert.DirExists(t, env.profileDir("work"))

	err := env.mgr.CreateProfile(env.h, "work")
	assert.ErrorIs(t, err, ErrProfileExists)
}

func TestCreateFromCurrent(t *testing.T) {
	env := newTestEnv(t)
	testutil.WriteTree(t, env.live, map[string]string{
		"settings.json": "{}",
		"todos/t.json":  "[]",
		".git/HEAD":     "ref",
	})
	testutil.WriteTree(t, env.shared, map[string]string{"commands/deploy.md": "# d"})

	require.NoError(t, env.mgr.CreateFromCurrent(env.h, "work"))
	assert.Equal(t, map[string]string{
		"settings.json":      "{}",
		"commands/deploy.md": "# d",
	}, testutil.ReadTree(t, env.profileDir("work")))
	active, ok := env.active(t)
	require.True(t, ok)
	assert.Equal(t, "work", active)

	err := env.mgr.CreateFromCurrent(env.h, "work")
	assert.ErrorIs(t, err, ErrProfileExists)
}

func TestCreateFromCurrentWithoutConfig(t *testing.T) {
	env := newTestEnv(t)

	err := env.mgr.CreateFromCurrent(env.h, "work")
	require.ErrorIs(t, err, ErrNoConfigFound)
	assert.NoDirExists(t, env.profileDir("work"))
	_, ok := env.active(t)
	assert.False(t, ok)
}

func TestEnsureDefaultProfile(t *testing.T) {
	env := newTestEnv(t)
	testutil.WriteTree(t, env.live, map[string]string{"settings.json": "{}"})

	env.h.Status = harness.BinaryOnly
	created, err := env.mgr.EnsureDefaultProfile(env.h)
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoDirExists(t, env.profileDir("default"))

	env.h.Status = harness.FullyInstalled
	created, err = env.mgr.EnsureDefaultProfile(env.h)
	require.NoError(t, err)
	assert.True(t, created)
	assert.DirExists(t, env.profileDir("default"))

	created, err = env.mgr.EnsureDefaultProfile(env.h)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestDeleteProfile(t *testing.T) {
	env := newTestEnv(t)
	env.writeProfile(t, "a", map[string]string{"settings.json": "{}"})
	env.writeProfile(t, "b", map[string]string{"settings.json": "{}"})
	switchTo(t, env, "a")

	require.NoError(t, env.mgr.DeleteProfile(env.h, "b"))
	assert.NoDirExists(t, env.profileDir("b"))
	active, _ := env.active(t)
	assert.Equal(t, "a", active)

	require.NoError(t, env.mgr.DeleteProfile(env.h, "a"))
	_, ok := env.active(t)
	assert.False(t, ok)
	assert.FileExists(t, filepath.Join(env.live, "settings.json"))

	assert.ErrorIs(t, env.mgr.DeleteProfile(env.h, "a"), ErrProfileNotFound)
}

func TestListProfiles(t *testing.T) {
	env := newTestEnv(t)
	names, err := env.mgr.ListProfiles(env.h)
	require.NoError(t, err)
	assert.Empty(t, names)

	testutil.WriteTree(t, filepath.Join(env.profiles, "mock"), map[string]string{
		"work/":           "",
		"personal/":       "",
		"Upper/":          "",
		"not valid/":      "",
		"stray-file.json": "{}",
	})
	names, err = env.mgr.ListProfiles(env.h)
	require.NoError(t, err)
	assert.Equal(t, []Name{"personal", "work"}, names)
}

func TestBackupCurrent(t *testing.T) {
	env := newTestEnv(t)
	testutil.WriteTree(t, env.live, map[string]string{
		"settings.json": "{}",
		"history.jsonl": "{}",
		"todos/t.json":  "[]",
	})
	testutil.WriteTree(t, env.home, map[string]string{".tool.json": `{"mcpServers":{}}`})

	dir, err := env.mgr.BackupCurrent(env.h)
	require.NoError(t, err)

	name := NewBackupName(env.now, testPID)
	assert.Equal(t, filepath.Join(env.backupsDir(), name), dir)
	assert.Equal(t, map[string]string{
		"settings.json": "{}",
		".tool.json":    `{"mcpServers":{}}`,
	}, testutil.ReadTree(t, dir))
	assert.Equal(t, map[string]string{
		"history.jsonl": "{}",
		"todos/t.json":  "[]",
	}, testutil.ReadTree(t, filepath.Join(env.backupsDir(), "extra", name)))
}

func TestBackupCurrentWithoutConfig(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.mgr.BackupCurrent(env.h)
	require.ErrorIs(t, err, ErrNoConfigFound)
}

func TestConfigDirErrorIsWrapped(t *testing.T) {
	env := newTestEnv(t)
	env.h.DirErr = errors.New("no home")
	env.writeProfile(t, "a", map[string]string{})

	_, err := env.mgr.SwitchProfile(context.Background(), env.h, "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve config directory for mock")
}
