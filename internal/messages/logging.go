package messages

// Logger setup messages.
const (
	LogInvalidLevel  = "unknown log level; using default"
	LogInvalidFormat = "unknown log format; using auto"
)
