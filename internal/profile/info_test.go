package profile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridle-dev/bridle/internal/harness"
	"github.com/bridle-dev/bridle/internal/testutil"
)

func TestShowProfileInactiveReadsSnapshot(t *testing.T) {
	env := newTestEnv(t)
	h := listingHarness{env.h}
	env.writeProfile(t, "work", map[string]string{
		"skills/a/SKILL.md":  "# a",
		"skills/b/notes.md":  "not a skill",
		"commands/deploy.md": "# d",
	})

	info, err := env.mgr.ShowProfile(h, "work")
	require.NoError(t, err)

	assert.False(t, info.Active)
	assert.Equal(t, env.profileDir("work"), info.Source)
	require.Len(t, info.MCPServers, 1)
	assert.Equal(t, env.profileDir("work"), info.MCPServers[0].Name)
	require.Len(t, info.Resources, 2)
	assert.Equal(t, harness.KindCommands, info.Resources[0].Kind)
	assert.Equal(t, []string{"deploy"}, info.Resources[0].Items)
	assert.Equal(t, harness.KindSkills, info.Resources[1].Kind)
	assert.Equal(t, []string{"a"}, info.Resources[1].Items)
	assert.Empty(t, info.Errors)
}

func TestShowProfileActiveReadsLiveLocations(t *testing.T) {
	env := newTestEnv(t)
	h := listingHarness{env.h}
	env.writeProfile(t, "work", map[string]string{
		"skills/a/SKILL.md":  "# a",
		"commands/deploy.md": "# d",
	})
	_, err := env.mgr.SwitchProfile(context.Background(), h, "work")
	require.NoError(t, err)
	testutil.WriteTree(t, env.live, map[string]string{"skills/new/SKILL.md": "# new"})

	info, err := env.mgr.ShowProfile(h, "work")
	require.NoError(t, err)

	assert.True(t, info.Active)
	assert.Equal(t, env.live, info.Source)
	assert.Equal(t, env.home, info.MCPServers[0].Name)
	assert.Equal(t, []string{"deploy"}, info.Resources[0].Items)
	assert.Equal(t, []string{"a", "new"}, info.Resources[1].Items)
}

func TestShowProfileRecordsRegistryError(t *testing.T) {
	env := newTestEnv(t)
	env.writeProfile(t, "work", map[string]string{})

	info, err := env.newManager(t, failingStore{}).ShowProfile(env.h, "work")
	require.NoError(t, err)
	require.Len(t, info.Errors, 1)
	assert.Contains(t, info.Errors[0], "load active profile registry")
	assert.Nil(t, info.MCPServers)
}

func TestShowProfileMissing(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.mgr.ShowProfile(env.h, "ghost")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestStatus(t *testing.T) {
	env := newTestEnv(t)
	st, err := env.mgr.Status(env.h)
	require.NoError(t, err)
	assert.False(t, st.HasActive)
	assert.Zero(t, st.Profiles)

	env.writeProfile(t, "work", map[string]string{"settings.json": "{}"})
	env.writeProfile(t, "home", map[string]string{"settings.json": "{}"})
	switchTo(t, env, "work")

	st, err = env.mgr.Status(env.h)
	require.NoError(t, err)
	assert.Equal(t, Status{
		Harness:   "mock",
		Install:   harness.FullyInstalled,
		Active:    "work",
		HasActive: true,
		Profiles:  2,
	}, st)
}

func TestDiffProfileReportsLiveChanges(t *testing.T) {
	env := newTestEnv(t)
	env.writeProfile(t, "work", map[string]string{
		"config.json":       "{\"x\":1}\n",
		"skills/a/SKILL.md": "# a\n",
		"same.txt":          "same\n",
	})
	switchTo(t, env, "work")
	testutil.WriteTree(t, env.live, map[string]string{
		"config.json":         "{\"x\":2}\n",
		"new.txt":             "new\n",
		"history.jsonl":       "{}\n",
		MarkerPrefix + "work": "",
	})
	require.NoError(t, os.Remove(filepath.Join(env.live, "skills", "a", "SKILL.md")))

	diffs, err := env.mgr.DiffProfile(env.h, "work", 0)
	require.NoError(t, err)
	require.Len(t, diffs, 3)

	assert.Equal(t, "config.json", diffs[0].Path)
	assert.Equal(t, DiffModified, diffs[0].Status)
	assert.Contains(t, diffs[0].UnifiedDiff, "--- profile/config.json")
	assert.Contains(t, diffs[0].UnifiedDiff, "+++ live/config.json")
	assert.Contains(t, diffs[0].UnifiedDiff, "-{\"x\":1}")
	assert.Contains(t, diffs[0].UnifiedDiff, "+{\"x\":2}")
	assert.False(t, diffs[0].Truncated)

	assert.Equal(t, "new.txt", diffs[1].Path)
	assert.Equal(t, DiffAdded, diffs[1].Status)
	assert.Equal(t, "skills/a/SKILL.md", diffs[2].Path)
	assert.Equal(t, DiffRemoved, diffs[2].Status)
}

func TestDiffProfileIdentical(t *testing.T) {
	env := newTestEnv(t)
	env.writeProfile(t, "work", map[string]string{"config.json": "{}\n"})
	switchTo(t, env, "work")

	diffs, err := env.mgr.DiffProfile(env.h, "work", 0)
	require.NoError(t, err)
	assert.Empty(t, diffs)

	_, err = env.mgr.DiffProfile(env.h, "ghost", 0)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestDiffProfileMapsResourceDirsInsideLive(t *testing.T) {
	env := newTestEnv(t)
	env.h.Resources[harness.KindSkills] = harness.ResourceDir{
		Path:      filepath.Join(env.live, "skill"),
		Structure: harness.Nested{SubdirPattern: "*", FileName: "SKILL.md"},
	}
	env.writeProfile(t, "work", map[string]string{
		"config.json":       "{}\n",
		"skills/a/SKILL.md": "# a\n",
	})
	switchTo(t, env, "work")

	diffs, err := env.mgr.DiffProfile(env.h, "work", 0)
	require.NoError(t, err)
	assert.Empty(t, diffs)

	testutil.WriteTree(t, env.live, map[string]string{"skill/a/SKILL.md": "# a edited\n"})
	diffs, err = env.mgr.DiffProfile(env.h, "work", 0)
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.Equal(t, "skills/a/SKILL.md", diffs[0].Path)
	assert.Equal(t, DiffModified, diffs[0].Status)
}

func TestRenderTruncatedUnifiedDiff(t *testing.T) {
	var from, to strings.Builder
	for range 50 {
		from.WriteString("old line\n")
		to.WriteString("new line\n")
	}

	rendered, truncated := renderTruncatedUnifiedDiff("a", "b", from.String(), to.String(), 3)
	assert.True(t, truncated)
	lines := strings.Split(strings.TrimSuffix(rendered, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "--- a", lines[0])
	assert.Contains(t, lines[3], "truncated to 3 lines")

	rendered, truncated = renderTruncatedUnifiedDiff("a", "b", "x\n", "y\n", 0)
	assert.False(t, truncated)
	assert.True(t, strings.HasSuffix(rendered, "\n"))

	rendered, _ = renderTruncatedUnifiedDiff("a", "b", "same\n", "same\n", 0)
	assert.Empty(t, rendered)
}
