package retry_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Elahizes/spin-wheel/internal/platform/retry"
)

var fastPolicy = retry.Policy{
	MaxAttempts:    3,
	InitialBackoff: 1 * time.Millisecond,
}

func TestDo_SuccessAfterRetries(t *testing.T) {
	calls := 0
	val, err := retry.Do(context.Background(), fastPolicy, alwaysRetry, func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if val != 42 || calls != 3 {
		t.Fatalf("expected 42 after 3 calls, got %d after %d", val, calls)
	}
}

func TestDo_PermanentErrorStopsImmediately(t *testing.T) {
	permanent := errors.New("permanent")
	calls := 0
	_, err := retry.Do(context.Background(), fastPolicy, alwaysStop, func(context.Context) (struct{}, error) {
		calls++
		return struct{}{}, permanent
	})
	var permErr *retry.PermanentError
	if !errors.As(err, &permErr) {
		t.Fatalf("expected PermanentError, got %T: %v", err, err)
	}
	if !errors.Is(err, permanent) {
		t.Fatalf("expected wrapped permanent error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestDo_ExhaustedRetries(t *testing.T) {
	underlying := errors.New("transient")
	calls := 0
	_, err := retry.Do(context.Background(), fastPolicy, alwaysRetry, func(context.Context) (struct{}, error) {
		calls++
		return struct{}{}, underlying
	})
	if !errors.Is(err, underlying) {
		t.Fatalf("expected wrapped underlying error, got %v", err)
	}
	if calls != fastPolicy.MaxAttempts {
		t.Fatalf("expected %d calls, got %d", fastPolicy.MaxAttempts, calls)
	}
}

func TestDo_BackoffIsCapped(t *testing.T) {
	var observed []time.Duration
	p := retry.Policy{
		MaxAttempts:    4,
		InitialBackoff: 1 * time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		OnRetry: func(_ int, _ error, backoff time.Duration) {
			observed = append(observed, backoff)
		},
	}

	_, _ = retry.Do(context.Background(), p, alwaysRetry, func(context.Context) (struct{}, error) {
		return struct{}{}, errors.New("fail")
	})

	expected := []time.Duration{1 * time.Millisecond, 2 * time.Millisecond, 2 * time.Millisecond}
	if len(observed) != len(expected) {
		t.Fatalf("expected %d OnRetry calls, got %d", len(expected), len(observed))
	}
	for i, v := range expected {
		if observed[i] != v {
			t.Fatalf("OnRetry call %d: expected backoff %v, got %v", i, v, observed[i])
		}
	}
}

func TestDo_ContextCancellationDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := retry.Policy{MaxAttempts: 3, InitialBackoff: 10 * time.Second}

	calls := 0
	_, err := retry.Do(ctx, p, alwaysRetry, func(context.Context) (struct{}, error) {
		calls++
		cancel()
		return struct{}{}, errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call before cancel, got %d", calls)
	}
}

func TestDo_InvalidPolicy(t *testing.T) {
	_, err := retry.Do(context.Background(), retry.Policy{}, alwaysRetry, func(context.Context) (int, error) {
		return 1, nil
	})
	if err == nil {
		t.Fatal("expected error for zero MaxAttempts")
	}
}

func TestTransient(t *testing.T) {
	if retry.Transient(errors.New("dial tcp: refused")) != retry.Retry {
		t.Fatal("expected network error to be retried")
	}
	if retry.Transient(context.DeadlineExceeded) != retry.Stop {
		t.Fatal("expected deadline to stop")
	}
}

func TestTransient_PermanentMarker(t *testing.T) {
	err := fmt.Errorf("ping: %w", retry.Permanent(errors.New("WRONGPASS invalid password")))
	if retry.Transient(err) != retry.Stop {
		t.Fatal("expected wrapped permanent error to stop")
	}
	if retry.Permanent(nil) != nil {
		t.Fatal("expected Permanent(nil) to be nil")
	}
}

func TestDo_PermanentMarkerStopsWithoutDoubleWrap(t *testing.T) {
	rejected := errors.New("password authentication failed")
	calls := 0
	err := retry.DoVoid(context.Background(), fastPolicy, retry.Transient, func(context.Context) error {
		calls++
		return retry.Permanent(rejected)
	})
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
	pe, ok := errors.AsType[*retry.PermanentError](err)
	if !ok {
		t.Fatalf("expected PermanentError, got %v", err)
	}
	if pe.Err != rejected {
		t.Fatalf("expected the original error directly inside, got %v", pe.Err)
	}
}

func TestDoVoid_PropagatesError(t *testing.T) {
	underlying := errors.New("fail")
	err := retry.DoVoid(context.Background(), fastPolicy, alwaysStop, func(context.Context) error {
		return underlying
	})
	if !errors.Is(err, underlying) {
		t.Fatalf("expected wrapped underlying error, got %v", err)
	}
}

func alwaysRetry(error) retry.Action { return retry.Retry }
func alwaysStop(error) retry.Action  { return retry.Stop }
