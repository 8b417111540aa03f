package messages

// Profile engine messages.
const (
	ProfileNameInvalidFmt     = "invalid profile name %q: %w"
	ProfileNotFoundFmt        = "%w: %s"
	ProfileExistsFmt          = "%w: %s"
	ProfileNoConfigFmt        = "%w for %s"
	ProfileNoActiveFmt        = "%w for %s"
	ProfileRootRequired       = "profiles root is required"
	ProfileRegistryRequired   = "registry store is required"
	ProfileLoadRegistryFmt    = "load active profile registry: %w"
	ProfileSaveRegistryFmt    = "save active profile registry: %w"
	ProfileConfigDirFmt       = "resolve config directory for %s: %w"
	ProfileCreateDirFmt       = "create directory %s: %w"
	ProfileReadDirFmt         = "read directory %s: %w"
	ProfileRemoveFmt          = "remove %s: %w"
	ProfileStatFmt            = "stat %s: %w"
	ProfileCopyFileFmt        = "copy %s to %s: %w"
	ProfileCopyLinkFmt        = "copy symlink %s to %s: %w"
	ProfileSaveFmt            = "save live config of %s into profile %s: %w"
	ProfileArchiveFmt         = "archive unmanaged config of %s into %s: %w"
	ProfileRestoreMCPFmt      = "restore MCP config %s: %w"
	ProfileMirrorResourcesFmt = "materialize %s resources for %s: %w"
	ProfileMarkerFmt          = "update profile marker in %s: %w"
	ProfileInstallStatusFmt   = "installation status of %s: %w"
	ProfileReadFileFmt        = "read %s: %w"
	ProfileWriteFileFmt       = "write %s: %w"
	ProfileRenameFmt          = "rename %s to %s: %w"
	ProfileDiffTruncatedFmt   = "... (truncated to %d lines; rerun with --lines <n> to see more)"

	SwapBackupFmt  = "back up %s to %s: %w"
	SwapWipeFmt    = "clear %s: %w"
	SwapCopyFmt    = "copy profile %s into %s: %w"
	SwapRestoreFmt = "profile switch failed (%v), restore also failed (%v); backup preserved at: %s"
)

// Log event messages.
const (
	LogCopySkipped       = "skipping entry that could not be copied"
	LogSwapTransition    = "profile swap state change"
	LogRollbackStarted   = "profile switch failed, restoring from backup"
	LogRollbackDone      = "restored live config from backup"
	LogBackupCleanup     = "could not remove spent backup"
	LogPruneFailed       = "could not prune old backups"
	LogSessionBackup     = "could not archive session data"
	LogMarkerFailed      = "could not update profile marker"
	LogSwitchNoop        = "profile already active; switch is a no-op"
	LogSwitchStart       = "switching profile"
	LogSwitchDone        = "switched profile"
	LogArchivedUnmanaged = "archived unmanaged config before first switch"

	LogScratchCleanup       = "could not remove scratch directory"
	LogProfileRestoreFailed = "could not move previous profile snapshot back; it is kept at path"
)
