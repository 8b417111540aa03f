package messages

// Harness messages.
const (
	HarnessUnknownFmt      = "%w: %s (valid options: %s)"
	HarnessHomeDirFmt      = "resolve home directory: %w"
	HarnessStatConfigFmt   = "check config directory %s: %w"
	HarnessReadMCPFmt      = "read MCP config %s: %w"
	HarnessParseMCPFmt     = "parse MCP config %s: %w"
	HarnessMCPNotObjectFmt = "MCP section %q in %s is not an object"
	HarnessReadSkillFmt    = "read skill file %s: %w"
	HarnessRewriteSkillFmt = "rewrite skill frontmatter in %s: %w"
)
