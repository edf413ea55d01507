package recompute

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRecomputer struct {
	mu       sync.Mutex
	calls    []uuid.UUID
	failFor  int
	done     chan struct{}
	doneOnce sync.Once
}

func newStubRecomputer(failFor int) *stubRecomputer {
	return &stubRecomputer{failFor: failFor, done: make(chan struct{})}
}

func (s *stubRecomputer) RecomputePrize(ctx context.Context, prizeID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, prizeID)
	if len(s.calls) <= s.failFor {
		return errors.New("transient pricing failure")
	}
	s.doneOnce.Do(func() { close(s.done) })
	return nil
}

func (s *stubRecomputer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestWorkerProcessesTriggeredJob(t *testing.T) {
	stub := newStubRecomputer(0)
	worker := NewWorker(stub, 8, 2, testLogger())
	worker.backoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	worker.Start(ctx)

	prizeID := uuid.New()
	worker.TriggerRecompute(prizeID)

	select {
	case <-stub.done:
	case <-time.After(2 * time.Second):
		t.Fatal("recompute job was never processed")
	}

	cancel()
	worker.Wait()

	require.Equal(t, 1, stub.callCount())
	assert.Equal(t, prizeID, stub.calls[0])
}

func TestWorkerRetriesFailedJob(t *testing.T) {
	stub := newStubRecomputer(2)
	worker := NewWorker(stub, 8, 3, testLogger())
	worker.backoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	worker.Start(ctx)

	worker.TriggerRecompute(uuid.New())

	select {
	case <-stub.done:
	case <-time.After(2 * time.Second):
		t.Fatal("recompute job did not succeed within the retry budget")
	}

	cancel()
	worker.Wait()

	assert.Equal(t, 3, stub.callCount(), "two failures then one success")
}

func TestTriggerNeverBlocksWhenQueueFull(t *testing.T) {
	stub := newStubRecomputer(0)
	worker := NewWorker(stub, 1, 0, testLogger())
	// Worker not started: the queue fills and further triggers must drop.

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			worker.TriggerRecompute(uuid.New())
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("TriggerRecompute blocked on a full queue")
	}

	assert.Len(t, worker.jobs, 1, "only one job fits the queue, the rest are dropped")
}
