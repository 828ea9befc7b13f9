package scheduler

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestStartRunsImmediately(t *testing.T) {
	ran := make(chan struct{}, 1)

	s, err := New(func(ctx context.Context) error {
		ran <- struct{}{}
		return nil
	}, 6, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("expected an immediate cycle on start")
	}
}

func TestNewRejectsNonPositiveInterval(t *testing.T) {
	if _, err := New(func(context.Context) error { return nil }, 0, zap.NewNop()); err == nil {
		t.Fatal("expected error for zero interval")
	}
	if _, err := New(func(context.Context) error { return nil }, -3, zap.NewNop()); err == nil {
		t.Fatal("expected error for negative interval")
	}
}

func TestCycleSkippedAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	s, err := New(func(context.Context) error {
		ran = true
		return nil
	}, 1, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.runCycle(ctx)
	if ran {
		t.Fatal("expected cycle to be skipped for canceled context")
	}
}
