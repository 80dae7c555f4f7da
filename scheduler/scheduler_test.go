package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"agrimarket/logger"
)

func TestAddRejectsBadSpec(t *testing.T) {
	s := New(logger.Discard())
	if err := s.Add("refresh", "every morning", time.Second, func(ctx context.Context) error { return nil }); err == nil {
		t.Fatalf("expected error for invalid spec")
	}
}

func TestNextReportsEarliestEntry(t *testing.T) {
	s := New(logger.Discard())
	if !s.Next().IsZero() {
		t.Fatalf("no entries should give zero time")
	}
	if err := s.Add("refresh", "30 6 * * *", time.Minute, func(ctx context.Context) error { return nil }); err != nil {
		t.Fatalf("add: %v", err)
	}
	s.Start()
	defer s.Stop(context.Background())

	deadline := time.Now().Add(time.Second)
	for s.Next().IsZero() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	next := s.Next()
	if next.IsZero() || next.Hour() != 6 || next.Minute() != 30 {
		t.Fatalf("next = %v", next)
	}
}

func TestRunAppliesTimeout(t *testing.T) {
	s := New(logger.Discard())
	var sawDeadline bool
	s.run("refresh", 50*time.Millisecond, func(ctx context.Context) error {
		_, sawDeadline = ctx.Deadline()
		return errors.New("board unavailable")
	})
	if !sawDeadline {
		t.Fatalf("job context has no deadline")
	}
}

func TestStopCancelsJobs(t *testing.T) {
	s := New(logger.Discard())
	done := make(chan error, 1)
	go s.run("refresh", 0, func(ctx context.Context) error {
		<-ctx.Done()
		done <- ctx.Err()
		return ctx.Err()
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("job was not cancelled")
	}
}
