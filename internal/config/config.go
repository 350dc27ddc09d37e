package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

type Config struct {
	Backend  string
	FilePath string
	DSN      string
}

// Load reads an optional .env file and then the environment.
// Variables already set in the environment win over the .env file.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env file: %w", err)
	}

	cfg := &Config{
		Backend:  strings.ToLower(strings.TrimSpace(os.Getenv("TASKS_BACKEND"))),
		FilePath: os.Getenv("TASKS_FILE"),
		DSN:      os.Getenv("TASKS_DSN"),
	}
	if cfg.Backend == "" {
		cfg.Backend = BackendFile
	}
	if cfg.FilePath == "" {
		cfg.FilePath = DefaultFilePath()
	}
	return cfg, nil
}

// DefaultFilePath is ~/.task-tracker/tasks.json, or tasks.json in the
// working directory when there is no home directory.
func DefaultFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "tasks.json"
	}
	return filepath.Join(home, ".task-tracker", "tasks.json")
}

func defaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "tasks.db"
	}
	return filepath.Join(home, ".task-tracker", "tasks.db")
}

func postgresDSN() string {
	user := os.Getenv("POSTGRES_USER")
	password := os.Getenv("POSTGRES_PASSWORD")
	dbname := os.Getenv("POSTGRES_DB")
	port := os.Getenv("POSTGRES_PORT")
	host := os.Getenv("POSTGRES_HOST")

	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		host, user, password, dbname, port)
}

// Validate reports the first setting that prevents opening the backend.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMemory:
		return nil
	case BackendFile:
		if c.FilePath == "" {
			return errors.New("TASKS_FILE must be set for the file backend")
		}
		return nil
	case BackendSQLite:
		return nil
	case BackendPostgres:
		if c.DSN != "" {
			return nil
		}
		requiredEnvVars := []string{
			"POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB",
			"POSTGRES_HOST", "POSTGRES_PORT",
		}
		for _, env := range requiredEnvVars {
			if os.Getenv(env) == "" {
				return fmt.Errorf("environment variable %s must be set (or TASKS_DSN)", env)
			}
		}
		return nil
	}
	return fmt.Errorf("unknown backend %q (expected %s, %s, %s or %s)",
		c.Backend, BackendMemory, BackendFile, BackendSQLite, BackendPostgres)
}

// ResolveDSN returns TASKS_DSN, or the default for the backend: a file next
// to the default task file for sqlite, the POSTGRES_* variables for postgres.
func (c *Config) ResolveDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	switch c.Backend {
	case BackendSQLite:
		return defaultSQLitePath()
	case BackendPostgres:
		return postgresDSN()
	}
	return ""
}
