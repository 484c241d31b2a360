package retry

import (
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/shaiso/Arbor/internal/domain"
)

func failedTask(policy domain.RetryPolicy, attemptCount int) *domain.Task {
	return &domain.Task{
		Status:       domain.TaskStatusFailed,
		RetryPolicy:  policy,
		AttemptCount: attemptCount,
	}
}

func TestDecide_NoRetryByDefault(t *testing.T) {
	c := New(nil, nil)

	// Политика по умолчанию: max_attempts = 0, retry запрещён.
	d := c.Decide(failedTask(domain.RetryPolicy{}, 0), "infra", time.Time{})
	if d.Retry {
		t.Fatal("default policy must not retry")
	}
	if d.Reason == "" {
		t.Error("terminal decision should carry a reason")
	}
}

func TestDecide_AttemptsExhausted(t *testing.T) {
	c := New(nil, nil)
	policy := domain.RetryPolicy{MaxAttempts: 2, Backoff: domain.BackoffFixed, DelaySec: 1}

	// После двух израсходованных retry третьего не будет.
	if d := c.Decide(failedTask(policy, 0), "infra", time.Time{}); !d.Retry {
		t.Fatalf("first retry should be allowed: %s", d.Reason)
	}
	if d := c.Decide(failedTask(policy, 1), "infra", time.Time{}); !d.Retry {
		t.Fatalf("second retry should be allowed: %s", d.Reason)
	}
	if d := c.Decide(failedTask(policy, 2), "infra", time.Time{}); d.Retry {
		t.Fatal("third retry must be denied, attempts exhausted")
	}
}

func TestDecide_FixedBackoff(t *testing.T) {
	c := New(nil, nil)
	policy := domain.RetryPolicy{MaxAttempts: 3, Backoff: domain.BackoffFixed, DelaySec: 5}

	d := c.Decide(failedTask(policy, 1), "infra", time.Time{})
	if !d.Retry {
		t.Fatalf("retry should be allowed: %s", d.Reason)
	}
	if d.Delay != 5*time.Second {
		t.Errorf("fixed backoff should give 5s, got %s", d.Delay)
	}
}

func TestDecide_ExponentialBackoff(t *testing.T) {
	c := New(nil, nil)
	policy := domain.RetryPolicy{
		MaxAttempts: 10,
		Backoff:     domain.BackoffExponential,
		DelaySec:    1,
		Multiplier:  2,
		MaxDelaySec: 10,
	}

	want := []time.Duration{
		1 * time.Second,  // retry 1
		2 * time.Second,  // retry 2
		4 * time.Second,  // retry 3
		8 * time.Second,  // retry 4
		10 * time.Second, // retry 5: упёрлись в потолок
		10 * time.Second, // retry 6
	}
	for attempt, expected := range want {
		d := c.Decide(failedTask(policy, attempt), "infra", time.Time{})
		if !d.Retry {
			t.Fatalf("retry %d should be allowed: %s", attempt+1, d.Reason)
		}
		if d.Delay != expected {
			t.Errorf("retry %d: expected delay %s, got %s", attempt+1, expected, d.Delay)
		}
	}
}

func TestDecide_NonRetryableKind(t *testing.T) {
	c := New(nil, nil)
	policy := domain.RetryPolicy{
		MaxAttempts:    3,
		Backoff:        domain.BackoffNone,
		RetryableKinds: []string{"timeout", "infra"},
	}

	if d := c.Decide(failedTask(policy, 0), "timeout", time.Time{}); !d.Retry {
		t.Fatalf("timeout should be retryable: %s", d.Reason)
	}
	if d := c.Decide(failedTask(policy, 0), "http_error", time.Time{}); d.Retry {
		t.Fatal("http_error is not in retryable kinds")
	}
}

func TestDecide_RetryBudgetExceeded(t *testing.T) {
	mock := clock.NewMock()
	c := New(nil, mock)
	policy := domain.RetryPolicy{
		MaxAttempts:        10,
		Backoff:            domain.BackoffNone,
		MaxRetryTimeoutSec: 60,
	}

	firstStarted := mock.Now()

	if d := c.Decide(failedTask(policy, 0), "infra", firstStarted); !d.Retry {
		t.Fatalf("retry within budget should be allowed: %s", d.Reason)
	}

	mock.Add(2 * time.Minute)

	d := c.Decide(failedTask(policy, 1), "infra", firstStarted)
	if d.Retry {
		t.Fatal("retry past the time budget must be denied")
	}
	if !strings.Contains(d.Reason, "budget") {
		t.Errorf("reason should mention the budget, got %q", d.Reason)
	}
}

func TestDecide_CustomStrategy(t *testing.T) {
	reg := NewRegistry()
	reg.Register("linear", StrategyFunc(func(attemptCount int, params map[string]any) time.Duration {
		step := time.Second
		if v, ok := params["step_sec"].(float64); ok {
			step = time.Duration(v) * time.Second
		}
		return time.Duration(attemptCount+1) * step
	}))

	c := New(reg, nil)
	policy := domain.RetryPolicy{
		MaxAttempts:    5,
		Backoff:        domain.BackoffCustom,
		StrategyID:     "linear",
		StrategyParams: map[string]any{"step_sec": float64(3)},
	}

	d := c.Decide(failedTask(policy, 1), "infra", time.Time{})
	if !d.Retry {
		t.Fatalf("retry should be allowed: %s", d.Reason)
	}
	if d.Delay != 6*time.Second {
		t.Errorf("linear strategy should give 6s for second retry, got %s", d.Delay)
	}
}

func TestDecide_UnknownCustomStrategy(t *testing.T) {
	c := New(NewRegistry(), nil)
	policy := domain.RetryPolicy{
		MaxAttempts: 5,
		Backoff:     domain.BackoffCustom,
		StrategyID:  "no_such",
	}

	d := c.Decide(failedTask(policy, 0), "infra", time.Time{})
	if d.Retry {
		t.Fatal("unregistered strategy must not allow retry")
	}
	if !strings.Contains(d.Reason, "no_such") {
		t.Errorf("reason should name the missing strategy, got %q", d.Reason)
	}
}

func TestNextAttemptAt(t *testing.T) {
	mock := clock.NewMock()
	c := New(nil, mock)

	d := Decision{Retry: true, Delay: 30 * time.Second}
	want := mock.Now().Add(30 * time.Second)
	if got := c.NextAttemptAt(d); !got.Equal(want) {
		t.Errorf("expected %s, got %s", want, got)
	}
}
