package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerAnimatesUntilStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	var w syncBuffer
	s := newSpinnerTo(context.Background(), &w, "Sharing...")
	s.Start()
	s.Start()
	time.Sleep(3 * spinnerInterval)
	s.Stop()
	s.Stop()

	if !strings.Contains(w.String(), "Sharing...") {
		t.Errorf("spinner output = %q, want message", w.String())
	}
}

func TestSpinnerStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	var w syncBuffer
	s := newSpinnerTo(ctx, &w, "Waiting...")
	s.Start()
	cancel()

	select {
	case <-s.stopped:
	case <-time.After(time.Second):
		t.Fatal("spinner did not stop after cancellation")
	}
	s.Stop()
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	defer goleak.VerifyNone(t)

	var w syncBuffer
	s := newSpinnerTo(context.Background(), &w, "Idle")
	s.Stop()
	s.Start()
}
