package logging

// Style selects the zap encoder used by NewLogger.
// Hand-written replacement for the oapi-codegen-generated type the teacher
// derived from openapi.yaml (not present in the retrieved pack); values
// reconstructed from the switch in NewLogger.
type Style string

const (
	// StyleTerminal is human-readable, colorized development output.
	StyleTerminal Style = "terminal"

	// StyleJson is structured production logging.
	StyleJson Style = "json"

	// StyleLogfmt is the token-efficient ts=... lvl=... encoding.
	StyleLogfmt Style = "logfmt"

	// StyleNoop discards all log output.
	StyleNoop Style = "noop"
)

// Level is the minimum severity a logger emits, as a string so it loads
// cleanly from YAML/env config ("debug", "info", "warn", "error").
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Config selects a logger's style and minimum level.
type Config struct {
	Style Style `yaml:"style" json:"style"`
	Level Level `yaml:"level" json:"level"`
}
