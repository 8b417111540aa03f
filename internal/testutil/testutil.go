package testutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bridle-dev/bridle/internal/harness"
)

// SymlinkPrefix marks a WriteTree value as a symlink target instead of file content.
const SymlinkPrefix = "-> "

// WriteStub writes an executable shell stub that exits successfully.
// t is the active test; dir is the output directory; name is the executable file name.
func WriteStub(t *testing.T, dir string, name string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
}

// WriteTree creates files under root. Keys are slash-separated relative paths.
// A key ending in "/" creates an empty directory; a value starting with SymlinkPrefix
// creates a symlink to the rest of the value.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			if err := os.MkdirAll(path, 0o755); err != nil {
				t.Fatalf("mkdir %s: %v", rel, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir parent of %s: %v", rel, err)
		}
		if target, ok := strings.CutPrefix(content, SymlinkPrefix); ok {
			if err := os.Symlink(target, path); err != nil {
				t.Fatalf("symlink %s: %v", rel, err)
			}
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
}

// ReadTree is the inverse of WriteTree. Only empty directories get a "/" key.
// A missing root yields an empty map.
func ReadTree(t *testing.T, root string) map[string]string {
	t.Helper()
	out := map[string]string{}
	if _, err := os.Lstat(root); os.IsNotExist(err) {
		return out
	}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		switch {
		case d.Type()&fs.ModeSymlink != 0:
			target, err := os.Readlink(path)
			if err != nil {
				return err
			}
			out[rel] = SymlinkPrefix + target
		case d.IsDir():
			entries, err := os.ReadDir(path)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				out[rel+"/"] = ""
			}
		default:
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			out[rel] = string(data)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("read tree %s: %v", root, err)
	}
	return out
}

// MockHarness is a configurable harness.Harness for tests.
type MockHarness struct {
	HarnessID string
	Dir       string
	MCPPath   string
	Resources map[harness.Kind]harness.ResourceDir
	Status    harness.InstallStatus
	DirErr    error
}

// ID returns HarnessID.
func (h *MockHarness) ID() string { return h.HarnessID }

// ConfigDir returns Dir, or DirErr when set.
func (h *MockHarness) ConfigDir() (string, error) {
	if h.DirErr != nil {
		return "", h.DirErr
	}
	return h.Dir, nil
}

// InstallationStatus returns Status.
func (h *MockHarness) InstallationStatus() (harness.InstallStatus, error) {
	return h.Status, nil
}

// MCPConfigPath returns MCPPath when set.
func (h *MockHarness) MCPConfigPath() (string, bool) {
	return h.MCPPath, h.MCPPath != ""
}

// Resource returns the configured resource dir for kind.
func (h *MockHarness) Resource(kind harness.Kind) (harness.ResourceDir, bool) {
	dir, ok := h.Resources[kind]
	return dir, ok
}

// String is used in failure messages.
func (h *MockHarness) String() string {
	return fmt.Sprintf("mock harness %s at %s", h.HarnessID, h.Dir)
}
