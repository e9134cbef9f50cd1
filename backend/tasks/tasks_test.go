package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestSchedulerRunsUntilStopped(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler(nil, Job{
		Name:     "count",
		Interval: 5 * time.Millisecond,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	})
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := s.Start(context.Background()); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for runs.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	s.Stop()
	after := runs.Load()
	if after < 3 {
		t.Fatalf("job ran %d times", after)
	}
	time.Sleep(20 * time.Millisecond)
	if runs.Load() != after {
		t.Error("job kept running after Stop")
	}
}

func TestSchedulerSkipsDisabledJobs(t *testing.T) {
	s := NewScheduler(nil, Job{Name: "off", Run: func(context.Context) error {
		t.Error("disabled job ran")
		return nil
	}})
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	s.Stop()
}
