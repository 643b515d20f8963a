// Package config defines the global CLI configuration shared by every
// subcommand, in the teacher's GlobalConfig style
// (cmd/radx/internal/cli/cli.go embeds a like-named struct parsed by kong).
package config

// GlobalConfig holds flags that apply regardless of which pipeline stage is
// running.
type GlobalConfig struct {
	Debug    bool   `help:"Enable debug-level logging and caller reporting." env:"DCMAUTO_DEBUG"`
	LogLevel string `help:"Minimum log level (trace, debug, info, warn, error, fatal)." default:"info" enum:"trace,debug,info,warn,error,fatal" env:"DCMAUTO_LOG_LEVEL"`
	Pretty   bool   `help:"Use human-readable log output instead of JSON." default:"true" negatable:""`
}
