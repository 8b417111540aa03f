package messages

// Configuration and registry messages.
const (
	ConfigResolveDirFmt     = "resolve bridle config directory: %w"
	ConfigReadFmt           = "read config %s: %w"
	ConfigInvalidFmt        = "invalid config %s: %w"
	ConfigMarshalFmt        = "encode config: %w"
	ConfigWriteFmt          = "write config %s: %w"
	ConfigCreateDirFmt      = "create config directory %s: %w"
	ConfigUnknownSettingFmt = "%w: %s (valid options: editor, marker_files, default_harness)"
	ConfigInvalidBoolFmt    = "invalid value %q for %s: expected true or false"
	ConfigInvalidViewFmt    = "invalid tui view %q: expected dashboard or legacy"
	ConfigUnknownHarnessFmt = "default_harness: %w"
)
