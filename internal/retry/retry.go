package retry

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/cenkalti/backoff/v4"

	"github.com/shaiso/Arbor/internal/domain"
)

// Пауза по умолчанию для EXPONENTIAL без заданной базы.
const defaultExponentialBase = time.Second

// Decision — решение контроллера по упавшей попытке.
type Decision struct {
	// Retry — true, если задачу нужно вернуть в pipeline.
	Retry bool

	// Delay — пауза перед следующей попыткой.
	Delay time.Duration

	// Reason — почему retry не состоится. Пустой при Retry=true.
	Reason string
}

// Controller применяет RetryPolicy задачи к исходу попытки.
//
// Контроллер не меняет состояние сам: оркестратор исполняет решение
// (перевод FAILED → PENDING с next_attempt_at) и владеет транзакцией.
type Controller struct {
	strategies *Registry
	clock      clock.Clock
}

// New создаёт Controller. strategies может быть nil, если CUSTOM
// backoff не используется; clk == nil означает системные часы.
func New(strategies *Registry, clk clock.Clock) *Controller {
	if clk == nil {
		clk = clock.New()
	}
	return &Controller{
		strategies: strategies,
		clock:      clk,
	}
}

// Decide решает судьбу задачи после неудачной попытки.
//
// Retry разрешён, когда одновременно:
//   - лимит повторов не исчерпан (attempt_count < max_attempts);
//   - класс ошибки входит в retryable_kinds политики;
//   - не исчерпан временной бюджет от старта первой попытки.
//
// firstStarted — время начала первой попытки (нулевое значение
// означает «бюджет не проверяем»).
func (c *Controller) Decide(task *domain.Task, errorKind string, firstStarted time.Time) Decision {
	policy := task.RetryPolicy

	if !policy.AllowsRetry(task.AttemptCount) {
		return Decision{Reason: fmt.Sprintf("attempts exhausted: %d of %d retries used",
			task.AttemptCount, policy.MaxAttempts)}
	}
	if !policy.IsKindRetryable(errorKind) {
		return Decision{Reason: fmt.Sprintf("error kind %q is not retryable", errorKind)}
	}
	if !firstStarted.IsZero() && !policy.WithinTimeout(firstStarted, c.clock.Now()) {
		return Decision{Reason: fmt.Sprintf("retry budget of %ds exceeded", policy.MaxRetryTimeoutSec)}
	}

	delay, err := c.delayFor(policy, task.AttemptCount)
	if err != nil {
		return Decision{Reason: err.Error()}
	}
	return Decision{Retry: true, Delay: delay}
}

// NextAttemptAt возвращает момент, раньше которого retry не должен
// становиться READY.
func (c *Controller) NextAttemptAt(d Decision) time.Time {
	return c.clock.Now().Add(d.Delay)
}

// delayFor вычисляет паузу перед повтором номер attemptCount+1.
func (c *Controller) delayFor(policy domain.RetryPolicy, attemptCount int) (time.Duration, error) {
	switch policy.Backoff {
	case domain.BackoffNone, "":
		return 0, nil

	case domain.BackoffFixed:
		if policy.DelaySec <= 0 {
			return 0, nil
		}
		return time.Duration(policy.DelaySec) * time.Second, nil

	case domain.BackoffExponential:
		return c.exponentialDelay(policy, attemptCount), nil

	case domain.BackoffCustom:
		if c.strategies == nil {
			return 0, fmt.Errorf("backoff strategy %q: no strategy registry configured", policy.StrategyID)
		}
		strategy, ok := c.strategies.Get(policy.StrategyID)
		if !ok {
			return 0, fmt.Errorf("backoff strategy %q is not registered", policy.StrategyID)
		}
		return strategy.Delay(attemptCount, policy.StrategyParams), nil

	default:
		return 0, fmt.Errorf("unknown backoff kind %q", policy.Backoff)
	}
}

// exponentialDelay считает паузу через ExponentialBackOff с выключенной
// рандомизацией: политика должна давать воспроизводимые паузы.
func (c *Controller) exponentialDelay(policy domain.RetryPolicy, attemptCount int) time.Duration {
	base := time.Duration(policy.DelaySec) * time.Second
	if base <= 0 {
		base = defaultExponentialBase
	}
	multiplier := policy.Multiplier
	if multiplier <= 1 {
		multiplier = backoff.DefaultMultiplier
	}
	maxInterval := time.Duration(policy.MaxDelaySec) * time.Second
	if maxInterval <= 0 {
		// Без потолка: практический максимум, чтобы не переполнить Duration.
		maxInterval = 24 * time.Hour
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = base
	b.Multiplier = multiplier
	b.MaxInterval = maxInterval
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()

	delay := base
	for i := 0; i <= attemptCount; i++ {
		delay = b.NextBackOff()
	}
	return delay
}
