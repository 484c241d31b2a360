package retry

import (
	"sync"
	"time"
)

// Strategy — пользовательская стратегия backoff для BackoffCustom.
//
// attemptCount — сколько retry уже израсходовано; params — параметры
// из политики задачи (сериализуемый blob, не код).
type Strategy interface {
	Delay(attemptCount int, params map[string]any) time.Duration
}

// StrategyFunc — адаптер функции к интерфейсу Strategy.
type StrategyFunc func(attemptCount int, params map[string]any) time.Duration

// Delay реализует Strategy.
func (f StrategyFunc) Delay(attemptCount int, params map[string]any) time.Duration {
	return f(attemptCount, params)
}

// Registry — реестр backoff-стратегий.
//
// Создаётся при старте процесса и передаётся контроллеру явно, не
// через глобальное состояние: изолированные экземпляры schedulers
// в тестах не должны делить реестр.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{
		strategies: make(map[string]Strategy),
	}
}

// Register добавляет стратегию. Повторная регистрация ID перезаписывает.
func (r *Registry) Register(id string, s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[id] = s
}

// Get возвращает стратегию по ID.
func (r *Registry) Get(id string) (Strategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strategies[id]
	return s, ok
}

// IDs возвращает список зарегистрированных стратегий.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.strategies))
	for id := range r.strategies {
		ids = append(ids, id)
	}
	return ids
}
