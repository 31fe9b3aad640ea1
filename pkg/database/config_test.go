package database_test

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/folio/pkg/database"
)

func TestFinalizeDefaults(t *testing.T) {
	cfg := database.Config{Name: "folio", User: "folio"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	tests := []struct {
		name     string
		got      any
		expected any
	}{
		{"host", cfg.Host, "localhost"},
		{"port", cfg.Port, 5432},
		{"ssl_mode", cfg.SSLMode, "disable"},
		{"max_open_conns", cfg.MaxOpenConns, 25},
		{"max_idle_conns", cfg.MaxIdleConns, 5},
		{"conn_max_lifetime", cfg.ConnMaxLifetimeDuration(), 15 * time.Minute},
		{"conn_timeout", cfg.ConnTimeoutDuration(), 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %v, want %v", tt.got, tt.expected)
			}
		})
	}
}

func TestFinalizeEnvOverrides(t *testing.T) {
	t.Setenv("TEST_DB_HOST", "db.internal")
	t.Setenv("TEST_DB_PORT", "5433")
	t.Setenv("TEST_DB_NAME", "envdb")
	t.Setenv("TEST_DB_USER", "envuser")
	t.Setenv("TEST_DB_MAX_OPEN", "50")

	env := &database.Env{
		Host:         "TEST_DB_HOST",
		Port:         "TEST_DB_PORT",
		Name:         "TEST_DB_NAME",
		User:         "TEST_DB_USER",
		MaxOpenConns: "TEST_DB_MAX_OPEN",
	}

	cfg := database.Config{}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.Host != "db.internal" || cfg.Port != 5433 || cfg.MaxOpenConns != 50 {
		t.Errorf("got host=%s port=%d max_open=%d", cfg.Host, cfg.Port, cfg.MaxOpenConns)
	}
	want := "host=db.internal port=5433 dbname=envdb user=envuser password= sslmode=disable"
	if got := cfg.Dsn(); got != want {
		t.Errorf("dsn:\n got %s\nwant %s", got, want)
	}
}

func TestURLOverridesFields(t *testing.T) {
	t.Setenv("TEST_DB_URL", "postgres://folio:secret@db:5432/folio?sslmode=disable")

	cfg := database.Config{}
	if err := cfg.Finalize(&database.Env{URL: "TEST_DB_URL"}); err != nil {
		t.Fatalf("finalize with url should not require name/user: %v", err)
	}
	if got := cfg.Dsn(); got != "postgres://folio:secret@db:5432/folio?sslmode=disable" {
		t.Errorf("dsn: got %s", got)
	}
}

func TestFinalizeValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     database.Config
		wantErr string
	}{
		{"missing name", database.Config{User: "u"}, "name required"},
		{"missing user", database.Config{Name: "n"}, "user required"},
		{"bad lifetime", database.Config{Name: "n", User: "u", ConnMaxLifetime: "soon"}, "invalid conn_max_lifetime"},
		{"bad timeout", database.Config{URL: "postgres://x", ConnTimeout: "never"}, "invalid conn_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestNewDoesNotConnect(t *testing.T) {
	cfg := database.Config{Name: "folio", User: "folio", Port: 1}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	sys, err := database.New(&cfg, slog.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if sys.Ready() {
		t.Error("Ready() before Start should be false")
	}
	_ = sys.Connection().Close()
}
