// Package limiter — ограничение числа одновременно выполняющихся задач.
//
// Три независимых лимита: на пользователя, на дерево и глобальный.
// Permit берётся во всех применимых scope сразу (всё-или-ничего),
// освобождается ровно один раз при достижении задачей финального
// статуса.
package limiter

import (
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// Config — лимиты одновременного выполнения. Значение <= 0 означает
// «без ограничения» (по умолчанию все три лимита выключены).
type Config struct {
	// PerUser — максимум RUNNING задач одного пользователя.
	PerUser int

	// PerTree — максимум RUNNING задач одного дерева.
	PerTree int

	// Global — максимум RUNNING задач всего процесса.
	Global int
}

// Limiter — счётные семафоры по трём scope.
//
// Семафоры пользователей и деревьев создаются лениво при первом
// обращении. Семафор дерева можно освободить через ForgetTree после
// закрытия дерева.
type Limiter struct {
	cfg Config

	global *semaphore.Weighted

	mu    sync.Mutex
	users map[string]*semaphore.Weighted
	trees map[uuid.UUID]*semaphore.Weighted
}

// New создаёт Limiter. Нулевая конфигурация даёт no-op limiter:
// TryAcquire всегда успешен.
func New(cfg Config) *Limiter {
	l := &Limiter{
		cfg:   cfg,
		users: make(map[string]*semaphore.Weighted),
		trees: make(map[uuid.UUID]*semaphore.Weighted),
	}
	if cfg.Global > 0 {
		l.global = semaphore.NewWeighted(int64(cfg.Global))
	}
	return l
}

// TryAcquire пытается взять по одному permit в каждом применимом scope.
//
// Всё-или-ничего: либо взяты все три, либо ни одного — частичный захват
// откатывается сразу, чтобы застрявшая в очереди задача не держала
// чужие permits (иначе возможен deadlock допуска).
//
// Возвращает release-функцию, безопасную для однократного вызова
// (повторные вызовы — no-op), и признак успеха. При неудаче release
// не возвращается: держать нечего.
func (l *Limiter) TryAcquire(userID string, treeID uuid.UUID) (func(), bool) {
	scopes := l.scopesFor(userID, treeID)

	acquired := make([]*semaphore.Weighted, 0, len(scopes))
	for _, s := range scopes {
		if !s.TryAcquire(1) {
			for _, a := range acquired {
				a.Release(1)
			}
			return nil, false
		}
		acquired = append(acquired, s)
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			for _, s := range acquired {
				s.Release(1)
			}
		})
	}
	return release, true
}

// scopesFor собирает применимые семафоры для пары (user, tree).
func (l *Limiter) scopesFor(userID string, treeID uuid.UUID) []*semaphore.Weighted {
	scopes := make([]*semaphore.Weighted, 0, 3)

	if l.global != nil {
		scopes = append(scopes, l.global)
	}

	if l.cfg.PerUser > 0 && userID != "" {
		l.mu.Lock()
		s, ok := l.users[userID]
		if !ok {
			s = semaphore.NewWeighted(int64(l.cfg.PerUser))
			l.users[userID] = s
		}
		l.mu.Unlock()
		scopes = append(scopes, s)
	}

	if l.cfg.PerTree > 0 && treeID != uuid.Nil {
		l.mu.Lock()
		s, ok := l.trees[treeID]
		if !ok {
			s = semaphore.NewWeighted(int64(l.cfg.PerTree))
			l.trees[treeID] = s
		}
		l.mu.Unlock()
		scopes = append(scopes, s)
	}

	return scopes
}

// ForgetTree удаляет семафор закрытого дерева. Вызывать только когда
// все задачи дерева финальны: живые permits при этом не возвращаются.
func (l *Limiter) ForgetTree(treeID uuid.UUID) {
	l.mu.Lock()
	delete(l.trees, treeID)
	l.mu.Unlock()
}
