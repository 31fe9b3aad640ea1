package infrastructure_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/JaimeStill/folio/internal/config"
	"github.com/JaimeStill/folio/internal/infrastructure"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

func TestNew(t *testing.T) {
	t.Setenv("FOLIO_DB_URL", "postgres://folio@localhost:5432/folio?sslmode=disable")
	t.Setenv("FOLIO_STORAGE_AZURE_CONNECTION_STRING", azuriteConnString)
	t.Setenv("FOLIO_WORKERS", "2")

	cfg, err := config.LoadFrom(t.TempDir())
	if err != nil {
		t.Fatalf("config: %v", err)
	}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer infra.Database.Connection().Close()

	if infra.Lifecycle == nil || infra.Logger == nil {
		t.Fatal("lifecycle or logger missing")
	}
	if infra.Database == nil || infra.Storage == nil || infra.Render == nil || infra.Workers == nil {
		t.Fatal("subsystem missing")
	}
	if infra.Lifecycle.Ready() {
		t.Error("ready before Start")
	}
}

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := infrastructure.NewLogger(tt.level)
			ctx := context.Background()

			if !logger.Enabled(ctx, tt.want) {
				t.Errorf("level %s not enabled", tt.want)
			}
			if tt.want > slog.LevelDebug && logger.Enabled(ctx, tt.want-4) {
				t.Errorf("level below %s enabled", tt.want)
			}
		})
	}
}
