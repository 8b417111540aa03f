package harness

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/mitchellh/go-homedir"

	"github.com/bridle-dev/bridle/internal/messages"
)

// Built-in harness ids.
const (
	ClaudeCodeID = "claude-code"
	OpenCodeID   = "opencode"
	GooseID      = "goose"
	AmpCodeID    = "amp-code"
	CopilotCLIID = "copilot-cli"
)

// Env holds the host locations built-in harnesses resolve their paths against.
type Env struct {
	Home       string
	ConfigHome string
	LookPath   func(file string) (string, error)
}

// DefaultEnv resolves the current user's home and XDG config directories.
func DefaultEnv() (Env, error) {
	home, err := homedir.Dir()
	if err != nil {
		return Env{}, fmt.Errorf(messages.HarnessHomeDirFmt, err)
	}
	return Env{Home: home, ConfigHome: xdg.ConfigHome, LookPath: exec.LookPath}, nil
}

// Builtin is a harness whose layout is known to bridle.
type Builtin struct {
	id        string
	aliases   []string
	binary    string
	configDir string
	mcpPath   string
	mcp       mcpFormat
	resources map[Kind]ResourceDir
	lookPath  func(file string) (string, error)
}

// ID returns the stable harness id used in paths and the registry.
func (b *Builtin) ID() string { return b.id }

// Aliases returns the short names accepted on the command line.
func (b *Builtin) Aliases() []string {
	out := make([]string, len(b.aliases))
	copy(out, b.aliases)
	return out
}

// ConfigDir returns the live configuration directory.
func (b *Builtin) ConfigDir() (string, error) { return b.configDir, nil }

// MCPConfigPath returns the MCP definitions file, if the harness has one.
func (b *Builtin) MCPConfigPath() (string, bool) {
	return b.mcpPath, b.mcpPath != ""
}

// Resource returns the harness location for kind.
func (b *Builtin) Resource(kind Kind) (ResourceDir, bool) {
	dir, ok := b.resources[kind]
	return dir, ok
}

// InstallationStatus checks for the binary on PATH and the config directory on disk.
func (b *Builtin) InstallationStatus() (InstallStatus, error) {
	hasBinary := false
	if b.lookPath != nil && b.binary != "" {
		if _, err := b.lookPath(b.binary); err == nil {
			hasBinary = true
		}
	}
	hasConfig := false
	info, err := os.Stat(b.configDir)
	switch {
	case err == nil:
		hasConfig = info.IsDir()
	case !errors.Is(err, os.ErrNotExist):
		return NotInstalled, fmt.Errorf(messages.HarnessStatConfigFmt, b.configDir, err)
	}
	switch {
	case hasBinary && hasConfig:
		return FullyInstalled, nil
	case hasBinary:
		return BinaryOnly, nil
	case hasConfig:
		return ConfigOnly, nil
	default:
		return NotInstalled, nil
	}
}

// MCPServers lists the MCP servers defined in dir.
func (b *Builtin) MCPServers(dir string) ([]MCPServer, error) {
	return b.mcp.list(dir)
}

func markdown() Flat { return Flat{FilePattern: "*.md"} }

func skillDirs() Nested { return Nested{SubdirPattern: "*", FileName: "SKILL.md"} }

// ClaudeCode keeps everything under ~/.claude except MCP servers, which live in ~/.claude.json.
func ClaudeCode(env Env) *Builtin {
	dir := filepath.Join(env.Home, ".claude")
	mcpPath := filepath.Join(env.Home, ".claude.json")
	return &Builtin{
		id:        ClaudeCodeID,
		aliases:   []string{"claude", "cc"},
		binary:    "claude",
		configDir: dir,
		mcpPath:   mcpPath,
		mcp: mcpFormat{
			files:       []string{filepath.Base(mcpPath), ".mcp.json"},
			keys:        []string{"mcpServers"},
			defaultType: "stdio",
		},
		resources: map[Kind]ResourceDir{
			KindCommands: {Path: filepath.Join(dir, "commands"), Structure: markdown()},
			KindAgents:   {Path: filepath.Join(dir, "agents"), Structure: markdown()},
			KindSkills:   {Path: filepath.Join(dir, "skills"), Structure: skillDirs()},
			KindPlugins:  {Path: filepath.Join(dir, "plugins"), Structure: Flat{FilePattern: "*.json"}},
		},
		lookPath: env.LookPath,
	}
}

// OpenCode uses singular resource directory names and stricter skill names.
func OpenCode(env Env) *Builtin {
	dir := filepath.Join(env.ConfigHome, "opencode")
	return &Builtin{
		id:        OpenCodeID,
		aliases:   []string{"oc"},
		binary:    "opencode",
		configDir: dir,
		mcpPath:   filepath.Join(dir, "opencode.jsonc"),
		mcp: mcpFormat{
			files:  []string{"opencode.jsonc", "opencode.json"},
			syntax: syntaxJSONC,
			keys:   []string{"mcp"},
		},
		resources: map[Kind]ResourceDir{
			KindCommands: {Path: filepath.Join(dir, "command"), Structure: markdown()},
			KindAgents:   {Path: filepath.Join(dir, "agent"), Structure: markdown()},
			KindSkills: {
				Path:      filepath.Join(dir, "skill"),
				Structure: skillDirs(),
				Transform: SanitizeSkillName,
			},
			KindPlugins: {Path: filepath.Join(dir, "plugin"), Structure: Flat{FilePattern: "*"}},
		},
		lookPath: env.LookPath,
	}
}

// Goose keeps MCP servers as typed extensions in config.yaml.
func Goose(env Env) *Builtin {
	dir := filepath.Join(env.ConfigHome, "goose")
	return &Builtin{
		id:        GooseID,
		binary:    "goose",
		configDir: dir,
		mcpPath:   filepath.Join(dir, "config.yaml"),
		mcp: mcpFormat{
			files:  []string{"config.yaml"},
			syntax: syntaxGooseYAML,
		},
		resources: map[Kind]ResourceDir{},
		lookPath:  env.LookPath,
	}
}

// AmpCode reads skills from the shared agents directory outside its own config dir.
func AmpCode(env Env) *Builtin {
	dir := filepath.Join(env.ConfigHome, "amp")
	return &Builtin{
		id:        AmpCodeID,
		aliases:   []string{"amp", "ampcode"},
		binary:    "amp",
		configDir: dir,
		mcpPath:   filepath.Join(dir, "settings.json"),
		mcp: mcpFormat{
			files:       []string{"settings.json"},
			keys:        []string{"amp.mcpServers"},
			nested:      []string{"amp", "mcpServers"},
			defaultType: "stdio",
		},
		resources: map[Kind]ResourceDir{
			KindCommands: {Path: filepath.Join(dir, "commands"), Structure: markdown()},
			KindSkills:   {Path: filepath.Join(env.ConfigHome, "agents", "skills"), Structure: skillDirs()},
		},
		lookPath: env.LookPath,
	}
}

// CopilotCLI keeps its config and MCP file under ~/.copilot.
func CopilotCLI(env Env) *Builtin {
	dir := filepath.Join(env.Home, ".copilot")
	return &Builtin{
		id:        CopilotCLIID,
		aliases:   []string{"copilot"},
		binary:    "copilot",
		configDir: dir,
		mcpPath:   filepath.Join(dir, "mcp-config.json"),
		mcp: mcpFormat{
			files:       []string{"mcp-config.json"},
			keys:        []string{"mcpServers"},
			defaultType: "stdio",
		},
		resources: map[Kind]ResourceDir{
			KindAgents: {Path: filepath.Join(dir, "agents"), Structure: markdown()},
		},
		lookPath: env.LookPath,
	}
}
