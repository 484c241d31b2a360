package domain

// TaskStatus — статус выполнения task.
//
// Жизненный цикл:
//
//	PENDING → READY → QUEUED → RUNNING → SUCCEEDED
//	                                   ↘ FAILED (retry → обратно в PENDING)
//	          (или) → CANCELLED (из любого нефинального статуса)
//
// PENDING  — ждёт зависимости (или backoff после неудачной попытки).
// READY    — все зависимости SUCCEEDED, можно ставить в очередь.
// QUEUED   — принят в приоритетную очередь, ждёт permit и узел.
// RUNNING  — узел захватил ownership и выполняет.
//
// Особые переходы: RUNNING → READY при takeover (lease владельца истёк),
// FAILED → PENDING при retry.
type TaskStatus string

const (
	// TaskStatusPending — task создан, зависимости ещё не удовлетворены.
	TaskStatusPending TaskStatus = "PENDING"

	// TaskStatusReady — все зависимости выполнены, task готов к очереди.
	TaskStatusReady TaskStatus = "READY"

	// TaskStatusQueued — task в приоритетной очереди, ожидает диспетчеризации.
	TaskStatusQueued TaskStatus = "QUEUED"

	// TaskStatusRunning — task выполняется узлом-владельцем.
	TaskStatusRunning TaskStatus = "RUNNING"

	// TaskStatusSucceeded — task успешно завершён.
	TaskStatusSucceeded TaskStatus = "SUCCEEDED"

	// TaskStatusFailed — task завершился с ошибкой (после всех retry).
	TaskStatusFailed TaskStatus = "FAILED"

	// TaskStatusCancelled — task отменён (пользователем или каскадом от зависимости).
	TaskStatusCancelled TaskStatus = "CANCELLED"
)

// IsTerminal возвращает true, если статус финальный.
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskStatusSucceeded, TaskStatusFailed, TaskStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo проверяет допустимость перехода между статусами.
// Состояние меняется только между смежными статусами: это контракт
// для CAS-переходов в хранилище.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	if next == TaskStatusCancelled {
		return !s.IsTerminal()
	}
	switch s {
	case TaskStatusPending:
		return next == TaskStatusReady
	case TaskStatusReady:
		return next == TaskStatusQueued
	case TaskStatusQueued:
		return next == TaskStatusRunning
	case TaskStatusRunning:
		// READY — возврат в очередь при takeover.
		return next == TaskStatusSucceeded || next == TaskStatusFailed || next == TaskStatusReady
	case TaskStatusFailed:
		// PENDING — повторная попытка по retry policy.
		return next == TaskStatusPending
	default:
		return false
	}
}

// CancelReason — причина отмены task.
type CancelReason string

const (
	// CancelReasonUserRequested — отмена по явному запросу пользователя.
	CancelReasonUserRequested CancelReason = "USER_REQUESTED"

	// CancelReasonUpstreamFailed — зависимость завершилась FAILED без retry.
	CancelReasonUpstreamFailed CancelReason = "UPSTREAM_FAILED"

	// CancelReasonUpstreamCancelled — зависимость была отменена, каскад продолжился.
	CancelReasonUpstreamCancelled CancelReason = "UPSTREAM_CANCELLED"
)

// TreeStatus — статус дерева задач.
//
// Жизненный цикл:
//
//	ACTIVE → CLOSED (корень и все потомки в финальных статусах)
type TreeStatus string

const (
	// TreeStatusActive — дерево выполняется или ждёт выполнения.
	TreeStatusActive TreeStatus = "ACTIVE"

	// TreeStatusClosed — все задачи дерева в финальных статусах.
	TreeStatusClosed TreeStatus = "CLOSED"
)

// NodeStatus — статус узла в кластере.
//
// Жизненный цикл:
//
//	ACTIVE ⇄ IDLE ⇄ OVERLOADED
//	       ↘ FAILED (heartbeat timeout; узел может перерегистрироваться)
type NodeStatus string

const (
	// NodeStatusActive — узел работает и принимает задачи.
	NodeStatusActive NodeStatus = "ACTIVE"

	// NodeStatusIdle — узел работает, задач нет.
	NodeStatusIdle NodeStatus = "IDLE"

	// NodeStatusOverloaded — узел перегружен, новые задачи не назначаются.
	NodeStatusOverloaded NodeStatus = "OVERLOADED"

	// NodeStatusFailed — узел признан мёртвым по heartbeat timeout.
	NodeStatusFailed NodeStatus = "FAILED"
)

// IsSchedulable возвращает true, если узлу можно назначать задачи.
func (s NodeStatus) IsSchedulable() bool {
	return s == NodeStatusActive || s == NodeStatusIdle
}

// NodeRole — роль узла в кластере.
type NodeRole string

const (
	// NodeRoleCoordinator — узел только координирует (takeover, распределение).
	NodeRoleCoordinator NodeRole = "COORDINATOR"

	// NodeRoleWorker — узел только выполняет задачи.
	NodeRoleWorker NodeRole = "WORKER"

	// NodeRoleHybrid — узел выполняет задачи и может стать координатором.
	NodeRoleHybrid NodeRole = "HYBRID"
)

// ParseNodeRole парсит строку в NodeRole.
func ParseNodeRole(s string) NodeRole {
	switch s {
	case "COORDINATOR":
		return NodeRoleCoordinator
	case "WORKER":
		return NodeRoleWorker
	case "HYBRID":
		return NodeRoleHybrid
	default:
		return NodeRoleWorker
	}
}

// RecordOutcome — исход одной попытки выполнения.
type RecordOutcome string

const (
	// RecordOutcomeSucceeded — попытка завершилась успехом.
	RecordOutcomeSucceeded RecordOutcome = "SUCCEEDED"

	// RecordOutcomeFailed — попытка завершилась ошибкой.
	RecordOutcomeFailed RecordOutcome = "FAILED"
)
