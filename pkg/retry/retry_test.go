package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastOptions() Options {
	return Options{
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		MaxElapsed:   200 * time.Millisecond,
	}
}

func TestDoSucceedsAfterFailures(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), fastOptions(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected nil err got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestDoGivesUpAfterBudget(t *testing.T) {
	wanted := errors.New("permanent")
	err := Do(context.Background(), fastOptions(), func() error {
		return wanted
	})
	if !errors.Is(err, wanted) {
		t.Fatalf("expected last error returned, got %v", err)
	}
}

func TestDoStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := Do(ctx, Options{InitialDelay: 10 * time.Millisecond, MaxDelay: time.Second, MaxElapsed: time.Hour}, func() error {
		attempts++
		cancel()
		return errors.New("failing")
	})
	if err == nil {
		t.Fatalf("expected error after cancellation")
	}
	if attempts != 1 {
		t.Fatalf("expected no retries after cancel, got %d attempts", attempts)
	}
}
