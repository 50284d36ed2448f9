// Package config loads relay configuration from combined command-line
// flags and environment variables, using a single tagged struct.
package config

import (
	"github.com/alexflint/go-arg"
)

// C holds the relay's runtime configuration, loaded from CLI flags or
// their equivalent STRTR_-prefixed environment variables.
//
// Host claims the short flag -h, which go-arg would otherwise assign
// to --help. go-arg resolves this by dropping only the short form of
// --help when a field already owns -h; --help itself still works.
// This is deliberate: the host flag's short form is part of this
// relay's documented CLI surface.
type C struct {
	Host     string `arg:"-h,--host,env:STRTR_HOST" default:"127.0.0.1" help:"address to listen on"`
	Port     int    `arg:"-p,--port,env:STRTR_PORT" default:"5454" help:"port to listen on"`
	LogLevel string `arg:"--log-level,env:STRTR_LOG_LEVEL" default:"info" help:"trace, debug, info, warn, or error"`
	MaxLimit int    `arg:"--max-limit,env:STRTR_MAX_LIMIT" default:"500" help:"hard cap on events returned per filter"`
}

// Version is reported by --version; set at build time via -ldflags.
var Version = "dev"

// Version implements go-arg's Versioned interface, so --version prints
// the package-level Version.
func (*C) Version() string {
	return "strtr " + Version
}

// Load parses CLI arguments and environment variables into a C,
// applying defaults for anything unset. It calls os.Exit via go-arg
// on --help or --version, matching the CLI surface this relay
// documents.
func Load() *C {
	c := &C{}
	arg.MustParse(c)
	return c
}
