package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{
		"TASKS_BACKEND", "TASKS_FILE", "TASKS_DSN",
		"POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB", "POSTGRES_HOST", "POSTGRES_PORT",
	} {
		t.Setenv(env, "")
		os.Unsetenv(env)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend != BackendFile {
		t.Errorf("Expected backend %q, got %q", BackendFile, cfg.Backend)
	}
	if cfg.FilePath != DefaultFilePath() {
		t.Errorf("Expected default file path, got %q", cfg.FilePath)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	content := "TASKS_BACKEND=SQLite\nTASKS_DSN=/tmp/tasks.db\nTASKS_FILE=/tmp/ignored.json\n"
	if err := os.WriteFile(envFile, []byte(content), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg, err := Load(envFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend != BackendSQLite || cfg.DSN != "/tmp/tasks.db" || cfg.FilePath != "/tmp/ignored.json" {
		t.Errorf("Unexpected config: %+v", cfg)
	}
	if cfg.ResolveDSN() != "/tmp/tasks.db" {
		t.Errorf("Expected explicit DSN, got %q", cfg.ResolveDSN())
	}
}

func TestLoad_EnvironmentWinsOverFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("TASKS_BACKEND", "memory")
	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, []byte("TASKS_BACKEND=postgres\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg, err := Load(envFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend != BackendMemory {
		t.Errorf("Expected environment to win, got %q", cfg.Backend)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		env     map[string]string
		wantErr string
	}{
		{name: "memory", cfg: Config{Backend: BackendMemory}},
		{name: "file", cfg: Config{Backend: BackendFile, FilePath: "tasks.json"}},
		{name: "file without path", cfg: Config{Backend: BackendFile}, wantErr: "TASKS_FILE"},
		{name: "sqlite default path", cfg: Config{Backend: BackendSQLite}},
		{name: "postgres with dsn", cfg: Config{Backend: BackendPostgres, DSN: "postgres://x"}},
		{name: "postgres missing vars", cfg: Config{Backend: BackendPostgres},
			env: map[string]string{"POSTGRES_USER": "u"}, wantErr: "POSTGRES_PASSWORD"},
		{name: "postgres from vars", cfg: Config{Backend: BackendPostgres},
			env: map[string]string{
				"POSTGRES_USER": "u", "POSTGRES_PASSWORD": "p", "POSTGRES_DB": "d",
				"POSTGRES_HOST": "h", "POSTGRES_PORT": "5432",
			}},
		{name: "unknown", cfg: Config{Backend: "redis"}, wantErr: "unknown backend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfig_ResolveDSN_Postgres(t *testing.T) {
	clearEnv(t)
	t.Setenv("POSTGRES_USER", "tracker")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "tasks")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_PORT", "5432")

	cfg := &Config{Backend: BackendPostgres}
	expected := "host=db user=tracker password=secret dbname=tasks port=5432 sslmode=disable"
	if got := cfg.ResolveDSN(); got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}
