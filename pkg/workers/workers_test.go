package workers_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/folio/pkg/lifecycle"
	"github.com/JaimeStill/folio/pkg/workers"
)

func newPool(t *testing.T, n int) (workers.System, *lifecycle.Coordinator) {
	t.Helper()

	cfg := &workers.Config{Workers: n}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	lc := lifecycle.New()
	p := workers.New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := p.Start(lc); err != nil {
		t.Fatalf("start: %v", err)
	}
	return p, lc
}

func TestDoReturnsJobError(t *testing.T) {
	p, lc := newPool(t, 2)
	defer lc.Shutdown(time.Second)

	want := errors.New("boom")
	if err := p.Do(context.Background(), func() error { return want }); !errors.Is(err, want) {
		t.Errorf("Do() = %v, want %v", err, want)
	}
	if err := p.Do(context.Background(), func() error { return nil }); err != nil {
		t.Errorf("Do() = %v, want nil", err)
	}
}

func TestDoBoundsConcurrency(t *testing.T) {
	p, lc := newPool(t, 2)
	defer lc.Shutdown(time.Second)

	var active, peak atomic.Int32
	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			p.Do(context.Background(), func() error {
				n := active.Add(1)
				for {
					old := peak.Load()
					if n <= old || peak.CompareAndSwap(old, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				active.Add(-1)
				return nil
			})
		})
	}
	wg.Wait()

	if got := peak.Load(); got > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", got)
	}
}

func TestDoRecoversPanic(t *testing.T) {
	p, lc := newPool(t, 1)
	defer lc.Shutdown(time.Second)

	err := p.Do(context.Background(), func() error { panic("bad input") })
	if !errors.Is(err, workers.ErrPanic) {
		t.Fatalf("Do() = %v, want ErrPanic", err)
	}

	if err := p.Do(context.Background(), func() error { return nil }); err != nil {
		t.Errorf("pool unusable after panic: %v", err)
	}
}

func TestDoAfterShutdown(t *testing.T) {
	p, lc := newPool(t, 1)

	if err := lc.Shutdown(time.Second); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	if err := p.Do(context.Background(), func() error { return nil }); !errors.Is(err, workers.ErrClosed) {
		t.Errorf("Do() after shutdown = %v, want ErrClosed", err)
	}
}

func TestDoNotStarted(t *testing.T) {
	cfg := &workers.Config{}
	cfg.Finalize(nil)
	p := workers.New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))

	if err := p.Do(context.Background(), func() error { return nil }); !errors.Is(err, workers.ErrClosed) {
		t.Errorf("Do() before start = %v, want ErrClosed", err)
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := &workers.Config{Workers: 3}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if cfg.QueueSize != 12 {
		t.Errorf("queue_size = %d, want 12", cfg.QueueSize)
	}
}

func TestConfigEnv(t *testing.T) {
	t.Setenv("TEST_WORKERS", "7")

	cfg := &workers.Config{}
	if err := cfg.Finalize(&workers.Env{Workers: "TEST_WORKERS"}); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if cfg.Workers != 7 {
		t.Errorf("workers = %d, want 7", cfg.Workers)
	}
}

func TestConfigQueueSizeFollowsEnvWorkers(t *testing.T) {
	tests := []struct {
		name  string
		cfg   workers.Config
		queue string
		want  int
	}{
		{"derived from env workers", workers.Config{}, "", 28},
		{"derived over file workers", workers.Config{Workers: 2}, "", 28},
		{"explicit queue kept", workers.Config{QueueSize: 5}, "", 5},
		{"env queue wins", workers.Config{}, "9", 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_WORKERS", "7")
			t.Setenv("TEST_QUEUE", tt.queue)

			cfg := tt.cfg
			env := &workers.Env{Workers: "TEST_WORKERS", QueueSize: "TEST_QUEUE"}
			if err := cfg.Finalize(env); err != nil {
				t.Fatalf("finalize: %v", err)
			}
			if cfg.Workers != 7 {
				t.Errorf("workers = %d, want 7", cfg.Workers)
			}
			if cfg.QueueSize != tt.want {
				t.Errorf("queue_size = %d, want %d", cfg.QueueSize, tt.want)
			}
		})
	}
}
