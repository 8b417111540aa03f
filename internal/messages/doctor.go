package messages

// Doctor messages for the doctor command.
const (
	// DoctorUse is the doctor command name.
	DoctorUse   = "doctor"
	DoctorShort = "Check the registry, profile directories and installed harnesses for problems"

	DoctorHealthCheckFmt = "Checking bridle health in %s...\n"

	DoctorCheckNameConfig   = "Config"
	DoctorCheckNameHarness  = "Harness"
	DoctorCheckNameActive   = "Active"
	DoctorCheckNameProfiles = "Profiles"

	DoctorConfigLoadFailedFmt = "Failed to load configuration: %v"
	DoctorConfigLoadRecommend = "Fix or remove config.toml; bridle recreates it on the next switch."
	DoctorConfigLoaded        = "Configuration loaded successfully"

	DoctorHarnessStatusFailedFmt  = "Could not check %s: %v"
	DoctorHarnessInstalledFmt     = "Harness installed: %s"
	DoctorHarnessPartialFmt       = "Harness %s is partly installed (%s)"
	DoctorHarnessPartialRecommend = "Profiles can still be managed, but init skips harnesses that are not fully installed."

	DoctorActiveOKFmt                   = "%s: active profile %s exists"
	DoctorActiveMissingFmt              = "%s: active profile %s no longer exists"
	DoctorActiveInvalidNameFmt          = "%s: active profile %q is not a valid profile name"
	DoctorActiveRecommendFmt            = "Run `bridle profile switch %s <name>` to record a valid profile."
	DoctorActiveUnknownHarnessFmt       = "Registry names profile %[2]s for unknown harness %[1]s"
	DoctorActiveUnknownHarnessRecommend = "Remove the entry from the [active] table in config.toml."

	DoctorProfilesReadFailedFmt   = "Could not read %s: %v"
	DoctorProfileIgnoredFmt       = "%s: %s is not a valid profile directory and is ignored"
	DoctorProfileIgnoredRecommend = "Rename it to a lowercase profile name or move it out of the profiles directory."

	DoctorFailureSummary = "Some checks failed. Please address the items above."
	DoctorSuccessSummary = "All checks passed."

	DoctorStatusOKLabel        = "[OK]  "
	DoctorStatusWarnLabel      = "[WARN]"
	DoctorStatusFailLabel      = "[FAIL]"
	DoctorResultLineFmt        = "%s %-10s %s\n"
	DoctorRecommendationPrefix = "       -> "
)
