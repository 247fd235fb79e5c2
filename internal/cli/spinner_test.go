package cli

import (
	"context"
	"testing"
	"time"
)

func TestSpinnerStopIsNotCancellation(t *testing.T) {
	s := newSpinner(context.Background(), "Glitching...")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	if s.Cancelled() {
		t.Error("Stop alone should not report cancellation")
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinner(ctx, "Glitching...")
	s.Start()
	cancel()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner(context.Background(), "Glitching...")
	s.Start()
	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithMessages(t *testing.T) {
	ok := newSpinner(context.Background(), "Glitching...")
	ok.Start()
	time.Sleep(50 * time.Millisecond)
	ok.StopWithSuccess("Prepared %d wallpapers", 3)

	failed := newSpinner(context.Background(), "Glitching...")
	failed.Start()
	time.Sleep(50 * time.Millisecond)
	failed.StopWithError("Frame generation failed")
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	s := newSpinner(context.Background(), "Never shown")
	s.SetMessage("Still never shown")
	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked on a spinner that was never started")
	}
}

func TestSpinnerSetMessage(t *testing.T) {
	s := newSpinner(context.Background(), "A long initial message")
	s.Start()
	s.SetMessage("short")
	s.SetMessage("a message longer than every previous one")
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	if s.width != len("a message longer than every previous one") {
		t.Errorf("width = %d", s.width)
	}
}
