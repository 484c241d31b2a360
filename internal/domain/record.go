package domain

import (
	"time"

	"github.com/google/uuid"
)

// ExecutionRecord — запись об одной попытке выполнения task.
//
// Append-only: после записи не изменяется. По записям Retry Controller
// считает elapsed-бюджет (от старта первой попытки), а API отдаёт
// историю попыток.
type ExecutionRecord struct {
	// ID — уникальный идентификатор записи.
	ID uuid.UUID `json:"id"`

	// TaskID — задача, к которой относится попытка.
	TaskID uuid.UUID `json:"task_id"`

	// Attempt — номер попытки (начиная с 1).
	Attempt int `json:"attempt"`

	// NodeID — узел, выполнявший попытку.
	NodeID uuid.UUID `json:"node_id"`

	// Outcome — исход попытки.
	Outcome RecordOutcome `json:"outcome"`

	// ErrorKind — класс ошибки для retryable-классификации: "timeout",
	// "http_error", "infra". Пустой при успехе.
	ErrorKind string `json:"error_kind,omitempty"`

	// ErrorSummary — краткий текст ошибки.
	ErrorSummary string `json:"error_summary,omitempty"`

	// StartedAt — время начала попытки.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt — время завершения попытки.
	FinishedAt time.Time `json:"finished_at"`
}

// Duration возвращает продолжительность попытки.
func (r *ExecutionRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
