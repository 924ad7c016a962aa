package resilience

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/kbukum/liquidkit/errors"
)

func fastConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	calls := 0
	result, err := Retry(context.Background(), DefaultRetryConfig(), func() (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil || result != "ok" || calls != 1 {
		t.Fatalf("got %q, %v after %d calls", result, err, calls)
	}
}

func TestRetry_RetriesStorageErrors(t *testing.T) {
	calls := 0
	var retried []int
	cfg := fastConfig()
	cfg.OnRetry = func(attempt int, _ error, _ time.Duration) { retried = append(retried, attempt) }

	result, err := Retry(context.Background(), cfg, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.Storage("download", "oligos.csv", stderrors.New("timeout"))
		}
		return 42, nil
	})
	if err != nil || result != 42 {
		t.Fatalf("got %d, %v", result, err)
	}
	if calls != 3 || len(retried) != 2 {
		t.Errorf("expected 3 calls and 2 retries, got %d and %v", calls, retried)
	}
}

func TestRetry_DoesNotRetryPermanentErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"not found", errors.NotFound("object", "missing.csv")},
		{"schema", errors.Schema("Volume", 3, "not a number")},
		{"plain error", stderrors.New("boom")},
		{"canceled", context.Canceled},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			calls := 0
			err := RetryFunc(context.Background(), fastConfig(), func() error {
				calls++
				return tc.err
			})
			if !stderrors.Is(err, tc.err) {
				t.Fatalf("expected original error back, got %v", err)
			}
			if calls != 1 {
				t.Errorf("expected 1 call, got %d", calls)
			}
		})
	}
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := RetryFunc(context.Background(), fastConfig(), func() error {
		calls++
		return errors.Storage("download", "a.csv", stderrors.New("reset"))
	})
	if !errors.Is(err, errors.ErrCodeStorage) {
		t.Fatalf("expected last storage error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := RetryFunc(ctx, fastConfig(), func() error {
		calls++
		return nil
	})
	if !stderrors.Is(err, context.Canceled) || calls != 0 {
		t.Fatalf("expected canceled before first call, got %v after %d calls", err, calls)
	}
}

func TestCalculateBackoff(t *testing.T) {
	cfg := RetryConfig{InitialBackoff: 100 * time.Millisecond, MaxBackoff: 300 * time.Millisecond, BackoffFactor: 2}
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 300 * time.Millisecond},
		{6, 300 * time.Millisecond},
	}
	for _, tc := range tests {
		if got := calculateBackoff(tc.attempt, cfg); got != tc.want {
			t.Errorf("attempt %d: got %s, want %s", tc.attempt, got, tc.want)
		}
	}
}

func TestRetryConfigValidate(t *testing.T) {
	cfg := RetryConfig{Jitter: 2}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil {
		t.Error("expected jitter error")
	}
	cfg = RetryConfig{InitialBackoff: time.Second, MaxBackoff: time.Millisecond}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil {
		t.Error("expected backoff ordering error")
	}
}
