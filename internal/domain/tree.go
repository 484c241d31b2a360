package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskTree — дерево задач с одним корнем.
//
// Дерево идентифицируется ID корневой задачи. Создаётся при submit
// (после прохождения валидации) или Copy Engine'ом при частичном
// перезапуске. Историю выполнения не переписываем: copy всегда создаёт
// новое дерево, исходное остаётся нетронутым.
type TaskTree struct {
	// ID — идентификатор дерева, равен ID корневой задачи.
	ID uuid.UUID `json:"id"`

	// UserID — владелец дерева.
	UserID string `json:"user_id"`

	// Name — имя дерева для удобства.
	Name string `json:"name,omitempty"`

	// Status — ACTIVE пока есть незавершённые задачи, затем CLOSED.
	Status TreeStatus `json:"status"`

	// OriginalTreeID — дерево-источник. Заполняется только у деревьев,
	// созданных Copy Engine'ом.
	OriginalTreeID *uuid.UUID `json:"original_tree_id,omitempty"`

	// IdempotencyKey — ключ идемпотентности для scheduled submit.
	// Например: "{schedule_id}_{next_due_at}"
	IdempotencyKey string `json:"idempotency_key,omitempty"`

	// CreatedAt — время создания дерева.
	CreatedAt time.Time `json:"created_at"`

	// ClosedAt — время, когда все задачи дерева стали финальными.
	ClosedAt *time.Time `json:"closed_at,omitempty"`
}

// IsCopy возвращает true, если дерево создано Copy Engine'ом.
func (t *TaskTree) IsCopy() bool {
	return t.OriginalTreeID != nil
}

// Close переводит дерево в статус CLOSED.
func (t *TaskTree) Close() {
	now := time.Now()
	t.Status = TreeStatusClosed
	t.ClosedAt = &now
}
