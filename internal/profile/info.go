package profile

import (
	"fmt"
	"path/filepath"

	"github.com/bridle-dev/bridle/internal/harness"
	"github.com/bridle-dev/bridle/internal/messages"
)

// Info describes a profile for display.
type Info struct {
	Name    Name
	Harness string
	Active  bool
	// Path is the profile snapshot directory.
	Path string
	// Source is the directory the details were read from: the live directory
	// for the active profile, Path otherwise.
	Source     string
	MCPServers []harness.MCPServer
	Resources  []ResourceSummary
	// Errors collects extraction failures that did not prevent showing the rest.
	Errors []string
}

// ShowProfile reads the MCP servers and resource items of profile name.
func (m *Manager) ShowProfile(h harness.Harness, name Name) (Info, error) {
	o := m.begin(h)
	path := m.layout.ProfilePath(h.ID(), name)
	exists, err := o.dirExists(path)
	if err != nil {
		return Info{}, err
	}
	if !exists {
		return Info{}, fmt.Errorf(messages.ProfileNotFoundFmt, ErrProfileNotFound, name)
	}
	info := Info{Name: name, Harness: h.ID(), Path: path, Source: path, Resources: []ResourceSummary{}}

	if cfg, err := m.registry.Load(); err != nil {
		info.Errors = append(info.Errors, fmt.Errorf(messages.ProfileLoadRegistryFmt, err).Error())
	} else if active, ok := cfg.ActiveProfileFor(h.ID()); ok && active == name.String() {
		info.Active = true
	}
	liveDir, err := configDir(h)
	if err != nil {
		info.Errors = append(info.Errors, err.Error())
		info.Active = false
	}
	if info.Active {
		info.Source = liveDir
	}

	if lister, ok := h.(harness.MCPLister); ok {
		mcpDir := info.Source
		if ext, ok := externalMCP(h, liveDir); ok && info.Active {
			mcpDir = filepath.Dir(ext)
		}
		servers, err := lister.MCPServers(mcpDir)
		if err != nil {
			info.Errors = append(info.Errors, err.Error())
		}
		info.MCPServers = servers
	}

	for _, kind := range harness.Kinds() {
		dir, ok := h.Resource(kind)
		if !ok {
			continue
		}
		location := filepath.Join(path, string(kind))
		if info.Active {
			location = dir.Path
		}
		summary, err := o.resources.summarize(kind, location, dir.Structure)
		if err != nil {
			info.Errors = append(info.Errors, err.Error())
		}
		info.Resources = append(info.Resources, summary)
	}
	return info, nil
}

// Status is a per-harness overview.
type Status struct {
	Harness       string
	Install       harness.InstallStatus
	Active        Name
	HasActive     bool
	MarkerEnabled bool
	Profiles      int
}

// Status reports the active profile and profile count of h.
func (m *Manager) Status(h harness.Harness) (Status, error) {
	cfg, err := m.registry.Load()
	if err != nil {
		return Status{}, fmt.Errorf(messages.ProfileLoadRegistryFmt, err)
	}
	install, err := h.InstallationStatus()
	if err != nil {
		return Status{}, fmt.Errorf(messages.ProfileInstallStatusFmt, h.ID(), err)
	}
	names, err := m.ListProfiles(h)
	if err != nil {
		return Status{}, err
	}
	st := Status{
		Harness:       h.ID(),
		Install:       install,
		MarkerEnabled: cfg.ProfileMarker,
		Profiles:      len(names),
	}
	if active, ok := cfg.ActiveProfileFor(h.ID()); ok {
		st.Active = Name(active)
		st.HasActive = true
	}
	return st, nil
}
