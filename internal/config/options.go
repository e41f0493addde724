package config

import (
	"strconv"
	"time"

	"go.akpain.net/cfger"
)

// Options are process-level settings read from the environment. They say
// how to run the server, never what database to talk to.
type Options struct {
	ConfigFile      string
	LogLevel        string
	LogFormat       string
	ProbeAttempts   int
	ProbeBackoff    time.Duration
	ShutdownTimeout time.Duration
}

const (
	defaultProbeAttempts   = 3
	defaultProbeBackoff    = 500 * time.Millisecond
	defaultShutdownTimeout = 10 * time.Second
)

// LoadOptions reads the BLOG_* environment variables.
func LoadOptions() Options {
	cl := cfger.New()
	return Options{
		ConfigFile:      cl.GetEnv("BLOG_CONFIG_FILE").WithDefault(DefaultFile).AsString(),
		LogLevel:        cl.GetEnv("BLOG_LOG_LEVEL").WithDefault("info").AsString(),
		LogFormat:       cl.GetEnv("BLOG_LOG_FORMAT").WithDefault("text").AsString(),
		ProbeAttempts:   atoi(cl.GetEnv("BLOG_PROBE_ATTEMPTS").WithDefault("").AsString(), defaultProbeAttempts),
		ProbeBackoff:    duration(cl.GetEnv("BLOG_PROBE_BACKOFF").WithDefault("").AsString(), defaultProbeBackoff),
		ShutdownTimeout: duration(cl.GetEnv("BLOG_SHUTDOWN_TIMEOUT").WithDefault("").AsString(), defaultShutdownTimeout),
	}
}

func atoi(value string, fallback int) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func duration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
