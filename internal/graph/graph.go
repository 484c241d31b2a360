package graph

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/shaiso/Arbor/internal/domain"
)

// Graph — арена задач одного дерева с двумя раздельными отношениями:
// структурное дерево (parent → children) и граф зависимостей
// (forward + reverse adjacency). Отношения никогда не смешиваются в
// одном списке рёбер: обход дерева и обход зависимостей — разные обходы.
type Graph struct {
	// tasks — все задачи дерева по ID.
	tasks map[uuid.UUID]*domain.Task

	// order — ID задач в порядке добавления. Даёт детерминированные
	// обходы поверх map.
	order []uuid.UUID

	// root — корневая задача (ParentID == nil). Заполняется в New,
	// подтверждается валидацией.
	root *domain.Task

	// children — структурное отношение: parent ID → дети.
	children map[uuid.UUID][]uuid.UUID

	// dependents — обратные рёбра зависимостей: задача → кто от неё зависит.
	dependents map[uuid.UUID][]uuid.UUID

	// topo — топологический порядок графа зависимостей.
	// Заполняется после успешной валидации.
	topo []uuid.UUID

	validated bool
}

// New строит арену из набора задач одного дерева.
//
// Здесь только индексация: полная проверка инвариантов (единственный
// корень, ацикличность, достижимость) выполняется отдельным Validate.
func New(tasks []*domain.Task) (*Graph, error) {
	if len(tasks) == 0 {
		return nil, ErrEmptyTree
	}

	g := &Graph{
		tasks:      make(map[uuid.UUID]*domain.Task, len(tasks)),
		order:      make([]uuid.UUID, 0, len(tasks)),
		children:   make(map[uuid.UUID][]uuid.UUID),
		dependents: make(map[uuid.UUID][]uuid.UUID),
	}

	for _, t := range tasks {
		if _, exists := g.tasks[t.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTaskID, t.ID)
		}
		g.tasks[t.ID] = t
		g.order = append(g.order, t.ID)

		if t.ParentID == nil {
			if g.root == nil {
				g.root = t
			}
			// Второй корень фиксируется валидацией как MultipleRoots.
		}
	}

	// Структурное отношение и обратные рёбра зависимостей.
	for _, id := range g.order {
		t := g.tasks[id]

		if t.ParentID != nil {
			g.children[*t.ParentID] = append(g.children[*t.ParentID], t.ID)
		}

		for _, depID := range t.DependencyIDs {
			if _, exists := g.tasks[depID]; exists {
				g.dependents[depID] = append(g.dependents[depID], t.ID)
			}
			// Ссылки за пределы дерева фиксируются валидацией
			// как CrossTreeDependency.
		}
	}

	return g, nil
}

// Root возвращает корневую задачу (nil, если корней не нашлось).
func (g *Graph) Root() *domain.Task {
	return g.root
}

// Task возвращает задачу по ID.
func (g *Graph) Task(id uuid.UUID) (*domain.Task, bool) {
	t, ok := g.tasks[id]
	return t, ok
}

// Tasks возвращает задачи в порядке добавления.
func (g *Graph) Tasks() []*domain.Task {
	out := make([]*domain.Task, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.tasks[id])
	}
	return out
}

// Size возвращает количество задач в дереве.
func (g *Graph) Size() int {
	return len(g.tasks)
}

// Children возвращает детей задачи в структурном дереве.
func (g *Graph) Children(id uuid.UUID) []uuid.UUID {
	return g.children[id]
}

// Dependencies возвращает прямые зависимости задачи.
func (g *Graph) Dependencies(id uuid.UUID) []uuid.UUID {
	t, ok := g.tasks[id]
	if !ok {
		return nil
	}
	return t.DependencyIDs
}

// DirectDependents возвращает задачи, зависящие от данной напрямую.
func (g *Graph) DirectDependents(id uuid.UUID) []uuid.UUID {
	return g.dependents[id]
}

// TopologicalOrder возвращает ID задач в топологическом порядке графа
// зависимостей. Пустой результат до успешного Validate.
func (g *Graph) TopologicalOrder() []uuid.UUID {
	return g.topo
}

// Validated возвращает true после успешного Validate.
func (g *Graph) Validated() bool {
	return g.validated
}

// IsLeaf возвращает true, если у задачи нет детей в структурном дереве.
func (g *Graph) IsLeaf(id uuid.UUID) bool {
	return len(g.children[id]) == 0
}

// ancestors возвращает цепочку предков задачи (от родителя до корня).
// На циклах останавливается: валидация их уже отвергла бы.
func (g *Graph) ancestors(id uuid.UUID) []uuid.UUID {
	var chain []uuid.UUID
	seen := map[uuid.UUID]bool{id: true}

	t, ok := g.tasks[id]
	if !ok {
		return nil
	}
	for t.ParentID != nil {
		pid := *t.ParentID
		if seen[pid] {
			break
		}
		parent, ok := g.tasks[pid]
		if !ok {
			break
		}
		chain = append(chain, pid)
		seen[pid] = true
		t = parent
	}
	return chain
}
