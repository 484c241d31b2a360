package domain

import (
	"time"

	"github.com/google/uuid"
)

// Task — узел дерева задач.
//
// Task создаётся:
// - при submit дерева (все задачи сразу, в статусе PENDING)
// - Copy Engine'ом при частичном перезапуске (копии с original_task_id)
//
// Два отношения между задачами хранятся раздельно:
// - структурное дерево (ParentID) — организация, у каждой задачи кроме корня
//   ровно один родитель;
// - граф зависимостей (DependencyIDs) — порядок выполнения, ациклический,
//   может связывать задачи из разных ветвей дерева.
type Task struct {
	// ID — уникальный идентификатор task.
	ID uuid.UUID `json:"id"`

	// TreeID — идентификатор дерева (равен ID корневой задачи).
	TreeID uuid.UUID `json:"tree_id"`

	// ParentID — родитель в структурном дереве. Nil только у корня.
	ParentID *uuid.UUID `json:"parent_id,omitempty"`

	// UserID — владелец задачи (scope для concurrency limits).
	UserID string `json:"user_id"`

	// ExecutorType — ключ executor'а в registry: "http", "delay", "noop".
	ExecutorType string `json:"executor_type"`

	// DependencyIDs — задачи, которые должны завершиться SUCCEEDED
	// до того, как эта станет READY. Только задачи того же дерева.
	DependencyIDs []uuid.UUID `json:"dependency_ids,omitempty"`

	// Priority — приоритет: больше — раньше. Внутри одного приоритета
	// порядок FIFO по CreatedAt.
	Priority int `json:"priority"`

	// Status — текущий статус task.
	Status TaskStatus `json:"status"`

	// CancelReason — причина отмены. Заполняется только при CANCELLED.
	CancelReason CancelReason `json:"cancel_reason,omitempty"`

	// RetryPolicy — политика повторов при неудаче.
	RetryPolicy RetryPolicy `json:"retry_policy"`

	// AttemptCount — сколько retry уже израсходовано (0 у свежей задачи).
	// Номер текущей попытки = AttemptCount + 1.
	AttemptCount int `json:"attempt_count"`

	// NextAttemptAt — раньше этого времени retry не переводится в READY.
	NextAttemptAt *time.Time `json:"next_attempt_at,omitempty"`

	// OriginalTaskID — ссылка на задачу-источник. Заполняется только у копий.
	OriginalTaskID *uuid.UUID `json:"original_task_id,omitempty"`

	// Placeholder — true у предков в скопированном дереве, которые не
	// перевыполняются: создаются сразу в статусе SUCCEEDED.
	Placeholder bool `json:"placeholder,omitempty"`

	// OwnerNodeID — узел, владеющий выполнением. Заполнен только пока
	// узел держит lease; эксклюзивность гарантируется CAS в хранилище.
	OwnerNodeID *uuid.UUID `json:"owner_node_id,omitempty"`

	// LeaseExpiresAt — срок действия ownership lease. Просроченный lease
	// означает, что владелец мёртв и задачу можно забрать.
	LeaseExpiresAt *time.Time `json:"lease_expires_at,omitempty"`

	// Payload — входные данные для executor'а.
	Payload map[string]any `json:"payload,omitempty"`

	// Outputs — результаты выполнения. Заполняется при SUCCEEDED.
	Outputs map[string]any `json:"outputs,omitempty"`

	// Error — текст последней ошибки.
	Error string `json:"error,omitempty"`

	// StartedAt — время начала первой попытки.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// FinishedAt — время перехода в финальный статус.
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// CreatedAt — время создания task.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt — время последнего изменения.
	UpdatedAt time.Time `json:"updated_at"`
}

// IsRoot возвращает true, если задача — корень дерева.
func (t *Task) IsRoot() bool {
	return t.ParentID == nil
}

// IsFinished возвращает true, если task в финальном статусе.
func (t *Task) IsFinished() bool {
	return t.Status.IsTerminal()
}

// Duration возвращает продолжительность от первой попытки до завершения.
func (t *Task) Duration() time.Duration {
	if t.StartedAt == nil || t.FinishedAt == nil {
		return 0
	}
	return t.FinishedAt.Sub(*t.StartedAt)
}

// Attempt возвращает номер текущей попытки (начиная с 1).
func (t *Task) Attempt() int {
	return t.AttemptCount + 1
}

// MarkReady переводит task в статус READY.
func (t *Task) MarkReady() {
	t.Status = TaskStatusReady
	t.UpdatedAt = time.Now()
}

// MarkQueued переводит task в статус QUEUED.
func (t *Task) MarkQueued() {
	t.Status = TaskStatusQueued
	t.UpdatedAt = time.Now()
}

// MarkRunning переводит task в статус RUNNING под владением узла.
func (t *Task) MarkRunning(nodeID uuid.UUID, leaseUntil time.Time) {
	now := time.Now()
	t.Status = TaskStatusRunning
	t.OwnerNodeID = &nodeID
	t.LeaseExpiresAt = &leaseUntil
	if t.StartedAt == nil {
		t.StartedAt = &now
	}
	t.UpdatedAt = now
}

// MarkSucceeded переводит task в статус SUCCEEDED с результатами.
// Ownership снимается: задача больше не принадлежит узлу.
func (t *Task) MarkSucceeded(outputs map[string]any) {
	now := time.Now()
	t.Status = TaskStatusSucceeded
	t.Outputs = outputs
	t.Error = ""
	t.OwnerNodeID = nil
	t.LeaseExpiresAt = nil
	t.FinishedAt = &now
	t.UpdatedAt = now
}

// MarkFailed переводит task в статус FAILED с ошибкой.
func (t *Task) MarkFailed(errText string) {
	now := time.Now()
	t.Status = TaskStatusFailed
	t.Error = errText
	t.OwnerNodeID = nil
	t.LeaseExpiresAt = nil
	t.FinishedAt = &now
	t.UpdatedAt = now
}

// MarkCancelled переводит task в статус CANCELLED с причиной.
func (t *Task) MarkCancelled(reason CancelReason) {
	now := time.Now()
	t.Status = TaskStatusCancelled
	t.CancelReason = reason
	t.OwnerNodeID = nil
	t.LeaseExpiresAt = nil
	t.FinishedAt = &now
	t.UpdatedAt = now
}

// ResetForRetry подготавливает task к повторной попытке: статус PENDING,
// счётчик retry увеличен, следующая попытка не раньше nextAttempt.
func (t *Task) ResetForRetry(nextAttempt time.Time) {
	t.Status = TaskStatusPending
	t.AttemptCount++
	t.NextAttemptAt = &nextAttempt
	t.Error = ""
	t.FinishedAt = nil
	t.UpdatedAt = time.Now()
}

// ReleaseOwnership снимает владение и возвращает task в READY.
// Используется координатором при takeover просроченного lease.
func (t *Task) ReleaseOwnership() {
	t.Status = TaskStatusReady
	t.OwnerNodeID = nil
	t.LeaseExpiresAt = nil
	t.UpdatedAt = time.Now()
}

// IsRetryDue возвращает true, если backoff-пауза уже прошла.
func (t *Task) IsRetryDue(now time.Time) bool {
	if t.NextAttemptAt == nil {
		return true
	}
	return !now.Before(*t.NextAttemptAt)
}
