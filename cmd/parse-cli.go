package cmd

import (
	"flag"
	"time"

	"github.com/cblogserver/backend/internal/config"
)

type Flags struct {
	ConfigFile      string
	Seed            bool
	LogLevel        string
	LogFormat       string
	ProbeAttempts   int
	ProbeBackoff    time.Duration
	ShutdownTimeout time.Duration
}

// ParseCLI parses args on top of the environment defaults in opts.
func ParseCLI(args []string, opts config.Options) Flags {
	fs := flag.NewFlagSet("cblogserver", flag.ExitOnError)

	// Define and parse flags.
	configFile := fs.String(
		"config",
		opts.ConfigFile,
		"Path to the JSON configuration file.",
	)

	seed := fs.Bool(
		"seed",
		false,
		"Recreate the sqlite database named by db.database with the sample blog. Ignored for mysql.",
	)

	logLevel := fs.String(
		"log-level",
		opts.LogLevel,
		"Log level. Use 'debug', 'info', 'warn' or 'error'.",
	)

	logFormat := fs.String(
		"log-format",
		opts.LogFormat,
		"Log format. Use 'text' or 'json'.",
	)

	probeAttempts := fs.Int(
		"probe-attempts",
		opts.ProbeAttempts,
		"Connection test attempts before giving up, a value between 1 and 10.",
	)

	shutdownTimeout := fs.Duration(
		"shutdown-timeout",
		opts.ShutdownTimeout,
		"Time allowed for in-flight requests to finish on shutdown.",
	)

	_ = fs.Parse(args) // -h and --help is implicitly defined.

	// Validate the log settings.
	switch *logLevel {
	case "debug", "info", "warn", "error":
	default:
		*logLevel = "info"
	}
	if *logFormat != "text" && *logFormat != "json" {
		*logFormat = "text"
	}

	// Validate the number of probe attempts.
	if *probeAttempts < 1 || *probeAttempts > 10 {
		*probeAttempts = 3
	}

	if *shutdownTimeout <= 0 {
		*shutdownTimeout = 10 * time.Second
	}

	if *configFile == "" {
		*configFile = config.DefaultFile
	}

	return Flags{
		ConfigFile:      *configFile,
		Seed:            *seed,
		LogLevel:        *logLevel,
		LogFormat:       *logFormat,
		ProbeAttempts:   *probeAttempts,
		ProbeBackoff:    opts.ProbeBackoff,
		ShutdownTimeout: *shutdownTimeout,
	}
}
