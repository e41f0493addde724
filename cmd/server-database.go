package cmd

// Standard library on top, application and third-party packages below.
import (
	"fmt"
	"log/slog"
	"os"

	"github.com/cblogserver/backend/internal/config"
	"github.com/cblogserver/backend/internal/db"
)

// seedDatabase recreates the sqlite database named by raw with the sample
// blog. MySQL databases are left alone.
func seedDatabase(raw *config.Raw, logger *slog.Logger) error {
	if raw.DB.Driver != config.DriverSQLite {
		logger.Warn("Seeding is only supported for sqlite, skipping", "driver", raw.DB.Driver)
		return nil
	}
	path := raw.DB.Database
	if path == "" {
		return fmt.Errorf("seed database: %w", config.ErrMissingDatabaseName)
	}

	// Handle existing database files.
	for _, name := range []string{path, path + "-shm", path + "-wal"} {
		if err := removeDatabaseFileIfExists(name, logger); err != nil {
			return err
		}
	}

	if err := db.CreateSchema(path, true); err != nil {
		return fmt.Errorf("seed database: %w", err)
	}
	logger.Info("Created sample blog database", "path", path)
	return nil
}

func removeDatabaseFileIfExists(filename string, logger *slog.Logger) error {
	if _, err := os.Stat(filename); err == nil {
		logger.Info("Found existing database file, removing", "path", filename)
		if err := os.Remove(filename); err != nil {
			return fmt.Errorf("remove existing database file %s: %w", filename, err)
		}
	}
	return nil
}
