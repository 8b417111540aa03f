package messages

// CLI messages for user-facing commands and prompts.
const (
	// RootUse is the CLI command name.
	RootUse = "bridle"
	// RootShort is the short description for the root command.
	RootShort       = "Manage swappable configuration profiles for AI coding harnesses"
	RootVerboseFlag = "Enable debug logging on stderr"

	// VersionCommitFmt formats the commit hash for version display.
	VersionCommitFmt = "commit %s"
	VersionBuildFmt  = "built %s"
	VersionFullFmt   = "%s (%s)"
	VersionTemplate  = "{{.Version}}\n"

	HarnessArgRequired = "harness is required (or set default_harness with bridle config set)"

	// ProfileUse is the profile command group name.
	ProfileUse   = "profile"
	ProfileShort = "Create, switch, inspect and delete harness profiles"

	ProfileListUse       = "list [harness]"
	ProfileListShort     = "List profiles for a harness"
	ProfileListEmptyFmt  = "No profiles found for %s\n"
	ProfileListTitleFmt  = "Profiles for %s:\n"
	ProfileListItemFmt   = "  %s\n"
	ProfileListActiveFmt = "  %s (active)\n"

	ProfileCreateUse             = "create <harness> <name>"
	ProfileCreateShort           = "Create a profile, empty or from the harness's current config"
	ProfileCreateFlagFromCurrent = "Snapshot the harness's live configuration into the new profile"
	ProfileCreatedFmt            = "Created profile %s for %s at %s\n"

	ProfileDeleteUse       = "delete <harness> <name>"
	ProfileDeleteShort     = "Delete a profile and all of its contents"
	ProfileDeleteFlagYes   = "Delete without asking for confirmation"
	ProfileDeletePromptFmt = "Delete profile %s for %s? This cannot be undone."
	ProfileDeleteAborted   = "Aborted; nothing was deleted."
	ProfileDeletedFmt      = "Deleted profile %s for %s\n"

	ProfileSwitchUse        = "switch <harness> <name>"
	ProfileSwitchShort      = "Switch the harness's live configuration to a profile"
	ProfileSwitchedFmt      = "Switched %s to profile %s\n"
	ProfileAlreadyActiveFmt = "Profile %s is already active for %s; nothing to do\n"
	ProfileArchivedFmt      = "Existing unmanaged config archived to %s\n"

	ProfileShowUse          = "show <harness> <name>"
	ProfileShowShort        = "Show what a profile contains"
	ProfileShowNameFmt      = "Profile: %s\n"
	ProfileShowHarnessFmt   = "Harness: %s\n"
	ProfileShowActiveFmt    = "Active: %s\n"
	ProfileShowPathFmt      = "Path: %s\n"
	ProfileShowMCPNone      = "MCP servers: (none)"
	ProfileShowMCPTitle     = "MCP servers:"
	ProfileShowMCPItemFmt   = "  - %s%s\n"
	ProfileShowMCPDisabled  = " (disabled)"
	ProfileShowResourceFmt  = "%s: %s\n"
	ProfileShowResourceNone = "(none)"
	ProfileShowErrorsTitle  = "Extraction errors:"
	ProfileShowErrorItemFmt = "  - %s\n"

	ProfileEditUse   = "edit <harness> <name>"
	ProfileEditShort = "Open a profile directory in the configured editor"
	ProfileEditFmt   = "run editor %s: %w"

	ProfileDiffUse          = "diff <harness> [name]"
	ProfileDiffShort        = "Show how the live configuration differs from a profile (default: the active one)"
	ProfileDiffFlagLines    = "Maximum diff lines shown per file"
	ProfileDiffNoChangesFmt = "No differences between profile %s and the live config\n"
	ProfileDiffFileFmt      = "%s (%s)\n"

	StatusUse         = "status"
	StatusShort       = "Show the active profile for every known harness"
	StatusLineFmt     = "%-12s %-14s %-14s %s\n"
	StatusNoProfile   = "(none)"
	StatusProfilesFmt = "%d profile(s)"
	StatusMarkerOnFmt = "Marker files: on\n"

	BackupUse     = "backup <harness>"
	BackupShort   = "Snapshot the harness's live configuration into the backups directory"
	BackupDoneFmt = "Backed up %s to %s\n"

	InitUse        = "init"
	InitShort      = "Create a default profile for every fully installed harness"
	InitCreatedFmt = "Created default profile for %s\n"
	InitSkippedFmt = "Skipped %s (already has a default profile or is not fully installed)\n"

	ConfigUse        = "config"
	ConfigShort      = "Read or change bridle settings"
	ConfigGetUse     = "get <key>"
	ConfigGetShort   = "Print a setting"
	ConfigSetUse     = "set <key> <value>"
	ConfigSetShort   = "Change a setting"
	ConfigUnsetValue = "(unset)"
	ConfigSetDoneFmt = "Set %s = %s\n"

	SwitchRestoreFailed = "The live config could not be restored. Recover it manually from the backup above."
	SwitchRestored      = "The switch was rolled back; the live config is unchanged."

	// PromptRequiresTerminal is returned when a confirmation is needed without a terminal.
	PromptRequiresTerminal = "confirmation requires an interactive terminal; re-run with --yes"
)
