// Package harness describes the external agent CLIs whose configuration bridle manages.
// The profile engine depends only on the Harness interface; per-tool layout knowledge
// lives in the built-in implementations.
package harness

import "errors"

// ErrUnknownHarness is returned when an id or alias does not name a registered harness.
var ErrUnknownHarness = errors.New("unknown harness")

// Kind is a canonical resource category stored inside every profile.
type Kind string

const (
	KindCommands Kind = "commands"
	KindAgents   Kind = "agents"
	KindSkills   Kind = "skills"
	KindPlugins  Kind = "plugins"
)

// Kinds returns the canonical resource kinds in display order.
func Kinds() []Kind {
	return []Kind{KindCommands, KindAgents, KindSkills, KindPlugins}
}

// Structure describes how resource items are laid out inside a resource directory.
// It is either Flat or Nested.
type Structure interface {
	structure()
}

// Flat resources are individual files whose names match FilePattern.
type Flat struct {
	FilePattern string
}

// Nested resources are subdirectories matching SubdirPattern, each holding FileName.
type Nested struct {
	SubdirPattern string
	FileName      string
}

func (Flat) structure()   {}
func (Nested) structure() {}

// NameTransform rewrites a nested item name when it is materialized into a harness.
type NameTransform func(name string) string

// ResourceDir locates one resource kind for a harness.
type ResourceDir struct {
	Path      string
	Structure Structure
	// Transform is optional and only applies to Nested structures.
	Transform NameTransform
}

// InstallStatus reports whether a harness binary and config directory are present.
type InstallStatus int

const (
	NotInstalled InstallStatus = iota
	BinaryOnly
	ConfigOnly
	FullyInstalled
)

func (s InstallStatus) String() string {
	switch s {
	case FullyInstalled:
		return "installed"
	case BinaryOnly:
		return "binary only"
	case ConfigOnly:
		return "config only"
	default:
		return "not installed"
	}
}

// Harness is the capability the profile engine consumes.
type Harness interface {
	ID() string
	ConfigDir() (string, error)
	InstallationStatus() (InstallStatus, error)
	// MCPConfigPath returns the file holding MCP server definitions, if the harness has one.
	MCPConfigPath() (string, bool)
	Resource(kind Kind) (ResourceDir, bool)
}

// MCPServer is one MCP server entry read from a harness config file.
type MCPServer struct {
	Name    string
	Enabled bool
	Type    string
}

// MCPLister is implemented by harnesses that can read their MCP server definitions.
// dir is a directory holding a copy of the harness's MCP file under its usual name.
type MCPLister interface {
	MCPServers(dir string) ([]MCPServer, error)
}
