package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/astdoc/internal/foundation/errors"
	"git.home.luguber.info/inful/astdoc/internal/logfields"
)

// LoadEnvFiles loads the configured env files into the process environment.
// Variables already set are never overridden. Missing files are skipped.
func (c *Config) LoadEnvFiles(logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	for _, path := range c.EnvFiles {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			logger.Debug("Env file not found", logfields.Path(path))
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "failed to load env file").
				WithContext("path", path).
				Build()
		}
		logger.Debug("Loaded env file", logfields.Path(path))
	}
	return nil
}
