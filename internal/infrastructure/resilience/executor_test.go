package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
)

func TestExecuteRetriesRetryableFailure(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts: 3,
		RetryBaseBackoff: 1 * time.Millisecond,
		RetryBackoffCap:  2 * time.Millisecond,
		BreakerEnabled:   false,
	})

	attempts := 0
	errLimited := errors.New("rate limited")
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errLimited
		}
		return nil
	}, func(err error) ErrorClassification {
		return ErrorClassification{
			Retryable:     errors.Is(err, errLimited),
			RecordFailure: true,
		}
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestExecuteDoesNotRetryFatalFailure(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts: 3,
		RetryBaseBackoff: 1 * time.Millisecond,
		RetryBackoffCap:  2 * time.Millisecond,
		BreakerEnabled:   false,
	})

	attempts := 0
	errFatal := errors.New("bad request")
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		return errFatal
	}, func(error) ErrorClassification {
		return ErrorClassification{
			Retryable:     false,
			RecordFailure: false,
		}
	})
	if !errors.Is(err, errFatal) {
		t.Fatalf("expected fatal error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestExecuteBackoffGrowsLinearlyUnderCap(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts: 3,
		RetryBaseBackoff: 10 * time.Millisecond,
		RetryBackoffCap:  15 * time.Millisecond,
		BreakerEnabled:   false,
	})

	errLimited := errors.New("rate limited")
	start := time.Now()
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		return errLimited
	}, func(error) ErrorClassification {
		return ErrorClassification{Retryable: true, RecordFailure: true}
	})
	elapsed := time.Since(start)

	if !errors.Is(err, errLimited) {
		t.Fatalf("expected exhausted retries to return last error, got %v", err)
	}
	// attempt 1 waits 10ms, attempt 2 waits min(20, 15) = 15ms, attempt 3
	// returns without waiting.
	if elapsed < 25*time.Millisecond {
		t.Fatalf("expected at least 25ms of backoff, got %v", elapsed)
	}
}

func TestExecuteStopsWaitingWhenContextCancelled(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts: 3,
		RetryBaseBackoff: 10 * time.Second,
		RetryBackoffCap:  10 * time.Second,
		BreakerEnabled:   false,
	})

	ctx, cancel := context.WithCancel(context.Background())
	errLimited := errors.New("rate limited")
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := exec.Execute(ctx, "op", func(context.Context) error {
		return errLimited
	}, func(error) ErrorClassification {
		return ErrorClassification{Retryable: true, RecordFailure: true}
	})
	if !errors.Is(err, errLimited) {
		t.Fatalf("expected last operation error, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("cancellation must interrupt the backoff sleep")
	}
}

func TestExecuteOpensCircuitAfterFailures(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts:        1,
		RetryBaseBackoff:        1 * time.Millisecond,
		RetryBackoffCap:         1 * time.Millisecond,
		BreakerEnabled:          true,
		BreakerMinRequests:      2,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      50 * time.Millisecond,
		BreakerHalfOpenMaxCalls: 1,
	})

	errUpstream := errors.New("upstream down")
	classifier := func(error) ErrorClassification {
		return ErrorClassification{
			Retryable:     false,
			RecordFailure: true,
		}
	}

	for i := 0; i < 2; i++ {
		err := exec.Execute(context.Background(), "op", func(context.Context) error {
			return errUpstream
		}, classifier)
		if !errors.Is(err, errUpstream) {
			t.Fatalf("expected upstream error on iteration %d, got %v", i, err)
		}
	}

	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		t.Fatalf("circuit should be open and must not call operation")
		return nil
	}, classifier)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open state error, got %v", err)
	}
	if !IsCircuitOpen(err) {
		t.Fatalf("IsCircuitOpen must recognize the breaker error")
	}
}

func TestBreakersAreIsolatedPerOperation(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts:        1,
		RetryBaseBackoff:        1 * time.Millisecond,
		RetryBackoffCap:         1 * time.Millisecond,
		BreakerEnabled:          true,
		BreakerMinRequests:      2,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      time.Minute,
		BreakerHalfOpenMaxCalls: 1,
	})

	errUpstream := errors.New("upstream down")
	classifier := func(error) ErrorClassification {
		return ErrorClassification{Retryable: false, RecordFailure: true}
	}

	for i := 0; i < 2; i++ {
		_ = exec.Execute(context.Background(), "failing", func(context.Context) error {
			return errUpstream
		}, classifier)
	}

	err := exec.Execute(context.Background(), "healthy", func(context.Context) error {
		return nil
	}, classifier)
	if err != nil {
		t.Fatalf("one operation's open breaker must not affect another, got %v", err)
	}
}
