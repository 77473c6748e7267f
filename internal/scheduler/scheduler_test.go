package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"ratesync/internal/pipeline"
)

type countingRunner struct {
	calls  atomic.Int32
	forced atomic.Int32
	err    error
}

func (r *countingRunner) RunOnce(ctx context.Context, force bool) (pipeline.RunStatus, error) {
	r.calls.Add(1)
	if force {
		r.forced.Add(1)
	}
	return pipeline.RunStatus{OK: r.err == nil}, r.err
}

func TestNew_InvalidSpec(t *testing.T) {
	if _, err := New(context.Background(), "not a cron", &countingRunner{}, nil); err == nil {
		t.Error("New() expected error for invalid spec, got nil")
	}
}

func TestTick_NeverForces(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"success", nil},
		{"failure", errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &countingRunner{err: tt.err}
			s, err := New(context.Background(), "*/5 * * * *", r, nil)
			if err != nil {
				t.Fatalf("New() returned unexpected error: %v", err)
			}

			s.Tick(context.Background())

			if r.calls.Load() != 1 || r.forced.Load() != 0 {
				t.Errorf("calls/forced = %d/%d, want 1/0", r.calls.Load(), r.forced.Load())
			}
		})
	}
}

func TestStartStop(t *testing.T) {
	s, err := New(context.Background(), "@every 1h", &countingRunner{}, nil)
	if err != nil {
		t.Fatalf("New() returned unexpected error: %v", err)
	}
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)

	if ctx.Err() != nil {
		t.Error("Stop() did not return before the deadline")
	}
}
