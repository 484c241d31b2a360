package domain

import (
	"time"

	"github.com/google/uuid"
)

// NodeRecord — узел кластера в registry.
//
// Создаётся при регистрации, обновляется heartbeat'ами. Координатор
// помечает узел FAILED по heartbeat timeout. Записи никогда не
// удаляются физически: история нужна для аудита и takeover.
// Перезапущенный процесс регистрируется как новая инкарнация
// (новый NodeID).
type NodeRecord struct {
	// ID — уникальный идентификатор узла (инкарнации).
	ID uuid.UUID `json:"id"`

	// Name — человекочитаемое имя узла (hostname и т.п.).
	Name string `json:"name,omitempty"`

	// Role — роль узла в кластере.
	Role NodeRole `json:"role"`

	// Status — текущий статус узла.
	Status NodeStatus `json:"status"`

	// Capabilities — заявленные возможности узла: какие executor'ы
	// зарегистрированы ("http", "delay", ...).
	Capabilities []string `json:"capabilities,omitempty"`

	// RunningTasks — количество задач в RUNNING у узла на момент
	// последнего heartbeat. Используется least_loaded стратегией.
	RunningTasks int `json:"running_tasks"`

	// LastHeartbeatAt — время последнего heartbeat.
	LastHeartbeatAt time.Time `json:"last_heartbeat_at"`

	// RegisteredAt — время регистрации инкарнации.
	RegisteredAt time.Time `json:"registered_at"`

	// UpdatedAt — время последнего изменения.
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAlive возвращает true, если heartbeat не старше timeout.
func (n *NodeRecord) IsAlive(now time.Time, timeout time.Duration) bool {
	return now.Sub(n.LastHeartbeatAt) <= timeout
}

// CanExecute проверяет, заявлен ли executor среди capabilities узла.
// Пустой список capabilities означает «выполняю всё».
func (n *NodeRecord) CanExecute(executorType string) bool {
	if len(n.Capabilities) == 0 {
		return true
	}
	for _, c := range n.Capabilities {
		if c == executorType {
			return true
		}
	}
	return false
}
