// Package config loads and validates the blog server configuration.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"
)

const (
	DefaultFile         = "blog.config.json"
	DefaultPort         = 8888
	DefaultQueryTimeout = 5 * time.Second

	// ExplicitSource names a configuration handed over in code rather than read from a file.
	ExplicitSource = "an explicit configuration object"

	// PasswordMask replaces db.pass wherever a configuration is displayed.
	PasswordMask = "<<HIDDEN>>"

	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Raw mirrors the configuration file before validation.
// Zero values are treated as absent keys.
type Raw struct {
	Server RawServer `json:"server"`
	DB     RawDB     `json:"db"`

	source string
}

type RawServer struct {
	Address string `json:"address"`
	Port    int    `json:"port"`
}

type RawDB struct {
	Driver       string `json:"driver"`
	Hostname     string `json:"hostname"`
	User         string `json:"user"`
	Pass         string `json:"pass"`
	Database     string `json:"database"`
	QueryTimeout string `json:"queryTimeout"`
}

// Source returns where the raw configuration came from.
func (r *Raw) Source() string {
	if r.source == "" {
		return ExplicitSource
	}
	return r.source
}

// Configuration is the validated, read-only configuration shared by every component.
type Configuration struct {
	Server Server
	DB     Database
	Source string
}

type Server struct {
	Address string
	Port    int
}

// Addr returns the listen address in host:port form.
func (s Server) Addr() string {
	return net.JoinHostPort(s.Address, strconv.Itoa(s.Port))
}

type Database struct {
	Driver       string
	Hostname     string
	User         string
	Pass         string
	Database     string
	QueryTimeout time.Duration
}

// Masked returns a copy of the configuration with the password hidden.
func (c Configuration) Masked() Configuration {
	c.DB.Pass = PasswordMask
	return c
}

func (c Configuration) String() string {
	m := c.Masked()
	return fmt.Sprintf(
		"server.address=%q server.port=%d db.driver=%s db.hostname=%s db.user=%s db.pass=%s db.database=%s db.queryTimeout=%s",
		m.Server.Address, m.Server.Port, m.DB.Driver, m.DB.Hostname, m.DB.User, m.DB.Pass, m.DB.Database, m.DB.QueryTimeout,
	)
}

// LogValue keeps the password out of structured logs.
func (c Configuration) LogValue() slog.Value {
	m := c.Masked()
	return slog.GroupValue(
		slog.String("source", m.Source),
		slog.Group("server",
			slog.String("address", m.Server.Address),
			slog.Int("port", m.Server.Port),
		),
		slog.Group("db",
			slog.String("driver", m.DB.Driver),
			slog.String("hostname", m.DB.Hostname),
			slog.String("user", m.DB.User),
			slog.String("pass", m.DB.Pass),
			slog.String("database", m.DB.Database),
			slog.Duration("queryTimeout", m.DB.QueryTimeout),
		),
	)
}

// Load returns explicit unchanged when it is set. Otherwise it reads and
// parses the JSON file at path, falling back to DefaultFile.
func Load(explicit *Raw, path string) (*Raw, error) {
	if explicit != nil {
		raw := *explicit
		if raw.source == "" {
			raw.source = ExplicitSource
		}
		return &raw, nil
	}

	if path == "" {
		path = DefaultFile
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &SourceError{Path: path, Err: err}
	}
	if !utf8.Valid(content) {
		return nil, &SourceError{Path: path, Err: errors.New("content is not valid UTF-8")}
	}

	var raw Raw
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, &SourceError{Path: path, Err: err}
	}
	raw.source = path
	return &raw, nil
}

// Prober confirms that a validated configuration points at a reachable database.
type Prober interface {
	Probe(ctx context.Context, cfg *Configuration) error
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context, cfg *Configuration) error

func (f ProberFunc) Probe(ctx context.Context, cfg *Configuration) error { return f(ctx, cfg) }

// Validate checks raw field by field and stops at the first problem.
// The order is fixed: port, user, password, database name, hostname.
// Once the fields pass, prober decides the outcome; a nil prober skips
// the connectivity check.
func Validate(ctx context.Context, raw *Raw, prober Prober) (*Configuration, error) {
	if raw == nil {
		raw = &Raw{}
	}
	source := raw.Source()

	cfg := &Configuration{
		Server: Server{Address: strings.TrimSpace(raw.Server.Address), Port: raw.Server.Port},
		Source: source,
	}

	if cfg.Server.Port == 0 {
		slog.Warn("No server port defined, using the default", "port", DefaultPort, "source", source)
		cfg.Server.Port = DefaultPort
	} else if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return nil, reject(ErrInvalidServerPort, source,
			fmt.Sprintf("The server port %d passed to the application configuration is out of range", cfg.Server.Port))
	}

	if raw.DB.User == "" {
		return nil, reject(ErrMissingDatabaseUser, source, "No database user was passed to the application configuration")
	}
	if raw.DB.Pass == "" {
		return nil, reject(ErrMissingDatabasePassword, source, "No database password was passed to the application configuration")
	}
	if raw.DB.Database == "" {
		return nil, reject(ErrMissingDatabaseName, source, "No database name was passed to the application configuration")
	}
	if raw.DB.Hostname == "" {
		return nil, reject(ErrMissingDatabaseHostname, source, "No database hostname was passed to the application configuration")
	}

	cfg.DB = Database{
		Driver:       strings.ToLower(strings.TrimSpace(raw.DB.Driver)),
		Hostname:     raw.DB.Hostname,
		User:         raw.DB.User,
		Pass:         raw.DB.Pass,
		Database:     raw.DB.Database,
		QueryTimeout: DefaultQueryTimeout,
	}

	switch cfg.DB.Driver {
	case "":
		cfg.DB.Driver = DriverMySQL
	case DriverMySQL, DriverSQLite:
	default:
		return nil, reject(ErrInvalidDatabaseDriver, source,
			fmt.Sprintf("The database driver %q is not supported, use %q or %q", cfg.DB.Driver, DriverMySQL, DriverSQLite))
	}

	if raw.DB.QueryTimeout != "" {
		timeout, err := time.ParseDuration(raw.DB.QueryTimeout)
		if err != nil || timeout <= 0 {
			return nil, reject(ErrInvalidQueryTimeout, source,
				fmt.Sprintf("The query timeout %q is not a positive duration", raw.DB.QueryTimeout))
		}
		cfg.DB.QueryTimeout = timeout
	}

	if prober == nil {
		return cfg, nil
	}
	if err := prober.Probe(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
