package cmd

// Standard library on top, application and third-party packages below.
import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cblogserver/backend/internal/config"
	"github.com/cblogserver/backend/internal/db"
	"github.com/cblogserver/backend/internal/platform/logging"
	"github.com/cblogserver/backend/internal/platform/retry"
)

// Run is called by main.go and is effectively the entrypoint of the application.
func Run() error {
	return RunWith(nil)
}

// RunWith starts the server from explicit when it is set, otherwise from
// the configuration file.
func RunWith(explicit *config.Raw) error {
	flags := ParseCLI(os.Args[1:], config.LoadOptions())

	logger := logging.New(os.Stdout, flags.LogLevel, flags.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pipeline := &Pipeline{
		Explicit:   explicit,
		ConfigFile: flags.ConfigFile,
		Seed:       flags.Seed,
		Prober: db.NewProber(retry.Policy{
			MaxAttempts:    flags.ProbeAttempts,
			InitialBackoff: flags.ProbeBackoff,
			MaxBackoff:     8 * flags.ProbeBackoff,
		}, logger),
		OpenPool: db.Open,
		Logger:   logger,
	}

	s, err := pipeline.Start(ctx)
	if err != nil {
		return err
	}

	ln, err := s.Listen()
	if err != nil {
		_ = s.Database.Close()
		return err
	}
	return s.Serve(ctx, ln, flags.ShutdownTimeout)
}

// Pipeline is the startup sequence: load, validate, probe, open the pool.
// Each stage runs only after the previous one succeeded.
type Pipeline struct {
	Explicit   *config.Raw
	ConfigFile string
	Seed       bool
	Prober     config.Prober
	OpenPool   func(*config.Configuration) (db.Pool, error)
	Logger     *slog.Logger
}

// Start returns a server bound to a live pool, ready to listen.
func (p *Pipeline) Start(ctx context.Context) (*Server, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	raw, err := config.Load(p.Explicit, p.ConfigFile)
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		return nil, err
	}
	logger.Debug("Loaded configuration", "source", raw.Source())

	if p.Seed {
		if err := seedDatabase(raw, logger); err != nil {
			return nil, err
		}
	}

	cfg, err := config.Validate(ctx, raw, p.Prober)
	if err != nil {
		var cfgErr *config.Error
		if errors.As(err, &cfgErr) {
			logger.Error(cfgErr.Message, "name", cfgErr.Name, "code", int(cfgErr.Code), "level", string(cfgErr.Level))
			logger.Error(cfgErr.UserMessage)
		} else {
			logger.Error("Configuration rejected", "error", err)
		}
		return nil, err
	}

	pool, err := p.OpenPool(cfg)
	if err != nil {
		logger.Error("Failed to open connection pool", "error", err)
		return nil, err
	}
	logger.Info("Startup checks passed", "elapsed", time.Since(start))

	return NewServer(cfg, pool, logger), nil
}
