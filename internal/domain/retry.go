package domain

import "time"

// BackoffKind — вид паузы между попытками.
type BackoffKind string

const (
	// BackoffNone — без паузы, retry сразу.
	BackoffNone BackoffKind = "NONE"

	// BackoffFixed — фиксированная пауза DelaySec между попытками.
	BackoffFixed BackoffKind = "FIXED"

	// BackoffExponential — экспоненциальная пауза: DelaySec * Multiplier^n,
	// но не больше MaxDelaySec.
	BackoffExponential BackoffKind = "EXPONENTIAL"

	// BackoffCustom — стратегия, зарегистрированная по StrategyID.
	// Политика остаётся сериализуемой: хранится только идентификатор
	// и параметры, не код.
	BackoffCustom BackoffKind = "CUSTOM"
)

// RetryPolicy — политика повторов задачи.
//
// MaxAttempts считает именно retry: задача с MaxAttempts=2 выполнится
// максимум 3 раза (первая попытка + 2 повтора).
type RetryPolicy struct {
	// MaxAttempts — максимум повторов. 0 — без retry (по умолчанию).
	MaxAttempts int `json:"max_attempts,omitempty"`

	// Backoff — вид паузы между попытками.
	Backoff BackoffKind `json:"backoff,omitempty"`

	// DelaySec — базовая пауза в секундах (FIXED и EXPONENTIAL).
	DelaySec int `json:"delay_sec,omitempty"`

	// Multiplier — множитель для EXPONENTIAL. По умолчанию 2.0.
	Multiplier float64 `json:"multiplier,omitempty"`

	// MaxDelaySec — потолок паузы для EXPONENTIAL.
	MaxDelaySec int `json:"max_delay_sec,omitempty"`

	// StrategyID — идентификатор стратегии для CUSTOM.
	StrategyID string `json:"strategy_id,omitempty"`

	// StrategyParams — параметры стратегии для CUSTOM.
	StrategyParams map[string]any `json:"strategy_params,omitempty"`

	// RetryableKinds — какие классы ошибок дают право на retry.
	// Пустой список — любая ошибка retryable.
	RetryableKinds []string `json:"retryable_kinds,omitempty"`

	// MaxRetryTimeoutSec — бюджет времени от старта первой попытки.
	// 0 — без ограничения.
	MaxRetryTimeoutSec int `json:"max_retry_timeout_sec,omitempty"`
}

// AllowsRetry возвращает true, если после attemptCount retry разрешён ещё один.
func (p RetryPolicy) AllowsRetry(attemptCount int) bool {
	return attemptCount < p.MaxAttempts
}

// IsKindRetryable проверяет, входит ли класс ошибки в retryable.
func (p RetryPolicy) IsKindRetryable(kind string) bool {
	if len(p.RetryableKinds) == 0 {
		return true
	}
	for _, k := range p.RetryableKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// WithinTimeout проверяет, не исчерпан ли бюджет времени на retry.
func (p RetryPolicy) WithinTimeout(firstStarted time.Time, now time.Time) bool {
	if p.MaxRetryTimeoutSec <= 0 {
		return true
	}
	return now.Sub(firstStarted) < time.Duration(p.MaxRetryTimeoutSec)*time.Second
}
