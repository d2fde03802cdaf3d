package collections

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// countingService records RefreshCounts calls; other methods are unused.
type countingService struct {
	CollectionService
	calls atomic.Int32
	err   error
}

func (s *countingService) RefreshCounts(context.Context) (*RefreshStats, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return &RefreshStats{}, nil
}

func TestRefreshWorker_Disabled(t *testing.T) {
	svc := &countingService{}
	NewRefreshWorker(svc, 0).Run(context.Background())
	if svc.calls.Load() != 0 {
		t.Errorf("disabled worker refreshed %d times", svc.calls.Load())
	}
}

func TestRefreshWorker_RunsUntilCanceled(t *testing.T) {
	svc := &countingService{err: errors.New("db unavailable")}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		NewRefreshWorker(svc, 5*time.Millisecond).Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for svc.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("worker ran %d times before deadline", svc.calls.Load())
		case <-time.After(time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
