package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	errs "redscraper/pkg/errors"
	"redscraper/pkg/logger"
)

func fastConfig(maxAttempts int) *Config {
	return &Config{
		MaxAttempts: maxAttempts,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
		Logger:      logger.NewTestLogger(),
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		return nil
	}, fastConfig(3))

	if err != nil {
		t.Errorf("Do() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		if calls < 3 {
			return errs.New(errs.ErrorTypeNetwork, 0, "flaky")
		}
		return nil
	}, fastConfig(5))

	if err != nil {
		t.Errorf("Do() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	failure := errs.New(errs.ErrorTypeServerError, 500, "down")
	err := Do(func() error {
		calls++
		return failure
	}, fastConfig(3))

	if err == nil {
		t.Fatal("Do() should fail after exhausting attempts")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	// The last error is surfaced to the caller
	if !errors.Is(err, failure) {
		t.Errorf("error does not wrap the last failure: %v", err)
	}
}

func TestDoDoesNotRetryNonRetryable(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		return errs.New(errs.ErrorTypeAuth, 401, "bad credentials")
	}, fastConfig(5))

	if err == nil {
		t.Fatal("Do() should return the error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDefaultRetryIfFallsBackToStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unknown type with 5xx code", errs.New(errs.ErrorTypeUnknown, 502, "bad gateway"), true},
		{"unknown type with 4xx code", errs.New(errs.ErrorTypeUnknown, 400, "bad request"), false},
		{"unknown type without code", errs.New(errs.ErrorTypeUnknown, 0, "opaque"), false},
		{"typed check wins over code", errs.New(errs.ErrorTypeAuth, 503, "auth behind proxy"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultRetryIf(tt.err); got != tt.want {
				t.Errorf("DefaultRetryIf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDoWithResult(t *testing.T) {
	calls := 0
	result, err := DoWithResult(func() ([]string, error) {
		calls++
		if calls < 2 {
			return nil, errs.New(errs.ErrorTypeNetwork, 0, "flaky")
		}
		return []string{"a", "b"}, nil
	}, fastConfig(3))

	if err != nil {
		t.Fatalf("DoWithResult() error = %v", err)
	}
	if len(result) != 2 {
		t.Errorf("result = %v", result)
	}
}

func TestDoRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := fastConfig(3)
	cfg.Context = ctx
	cfg.Backoff = &ConstantBackoff{Delay: time.Second}

	err := Do(func() error {
		return errs.New(errs.ErrorTypeNetwork, 0, "flaky")
	}, cfg)

	if err == nil || !errors.Is(err, context.Canceled) {
		t.Errorf("Do() error = %v, want context.Canceled", err)
	}
}

func TestLinearBackoffIsAttemptIndexed(t *testing.T) {
	lb := &LinearBackoff{BaseDelay: 5 * time.Second}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 0},
		{1, 5 * time.Second},
		{2, 10 * time.Second},
		{3, 15 * time.Second},
	}
	for _, tt := range tests {
		if got := lb.NextDelay(tt.attempt); got != tt.want {
			t.Errorf("NextDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestLinearBackoffCap(t *testing.T) {
	lb := &LinearBackoff{BaseDelay: 5 * time.Second, MaxDelay: 12 * time.Second}
	if got := lb.NextDelay(10); got != 12*time.Second {
		t.Errorf("NextDelay(10) = %v, want 12s", got)
	}
}

func TestExponentialBackoffGrows(t *testing.T) {
	eb := &ExponentialBackoff{
		BaseDelay:  time.Second,
		MaxDelay:   time.Minute,
		Multiplier: 2.0,
	}

	d1 := eb.NextDelay(1)
	d3 := eb.NextDelay(3)
	if d1 != time.Second {
		t.Errorf("NextDelay(1) = %v, want 1s", d1)
	}
	if d3 != 4*time.Second {
		t.Errorf("NextDelay(3) = %v, want 4s", d3)
	}
}

func TestTransportConfigSwitchesBackoffOnRateLimit(t *testing.T) {
	cfg := TransportConfig(3, time.Millisecond, logger.NewTestLogger())

	if _, ok := cfg.Backoff.(*LinearBackoff); !ok {
		t.Fatalf("initial backoff = %T, want *LinearBackoff", cfg.Backoff)
	}

	cfg.OnRetry(1, errs.New(errs.ErrorTypeRateLimit, 429, "slow down"), 0)

	if _, ok := cfg.Backoff.(*ExponentialBackoff); !ok {
		t.Errorf("backoff after rate limit = %T, want *ExponentialBackoff", cfg.Backoff)
	}
}
