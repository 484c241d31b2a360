package graph

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Arbor/internal/domain"
)

// testTree — конструктор деревьев для тестов: буквенные имена вместо UUID.
type testTree struct {
	ids   map[string]uuid.UUID
	tasks []*domain.Task
}

func newTestTree() *testTree {
	return &testTree{ids: make(map[string]uuid.UUID)}
}

func (tt *testTree) id(name string) uuid.UUID {
	if id, ok := tt.ids[name]; ok {
		return id
	}
	id := uuid.New()
	tt.ids[name] = id
	return id
}

// add добавляет задачу. parent == "" означает корень.
func (tt *testTree) add(name, parent string, deps ...string) *domain.Task {
	task := &domain.Task{
		ID:           tt.id(name),
		UserID:       "tester",
		ExecutorType: "noop",
		Status:       domain.TaskStatusPending,
		CreatedAt:    time.Now().Add(time.Duration(len(tt.tasks)) * time.Millisecond),
	}
	if parent != "" {
		pid := tt.id(parent)
		task.ParentID = &pid
	}
	for _, d := range deps {
		task.DependencyIDs = append(task.DependencyIDs, tt.id(d))
	}
	tt.tasks = append(tt.tasks, task)
	return task
}

func (tt *testTree) build(t *testing.T) *Graph {
	t.Helper()
	g, err := New(tt.tasks)
	if err != nil {
		t.Fatalf("unexpected error building graph: %v", err)
	}
	return g
}

func (tt *testTree) buildValid(t *testing.T) *Graph {
	t.Helper()
	g := tt.build(t)
	if err := g.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	return g
}

func TestValidate_SimpleChain(t *testing.T) {
	tt := newTestTree()
	tt.add("R", "")
	tt.add("A", "R")
	tt.add("B", "R", "A")
	tt.add("C", "R", "B")

	g := tt.buildValid(t)

	if g.Size() != 4 {
		t.Errorf("expected 4 tasks, got %d", g.Size())
	}
	if g.Root().ID != tt.id("R") {
		t.Errorf("expected root R, got %s", g.Root().ID)
	}
	if !g.Validated() {
		t.Error("graph should be marked validated")
	}
}

func TestValidate_Diamond(t *testing.T) {
	// Ромб зависимостей: B и C зависят от A, D — от обоих.
	tt := newTestTree()
	tt.add("R", "")
	tt.add("A", "R")
	tt.add("B", "R", "A")
	tt.add("C", "R", "A")
	tt.add("D", "R", "B", "C")

	g := tt.buildValid(t)

	deps := g.DirectDependents(tt.id("A"))
	if len(deps) != 2 {
		t.Errorf("A should have 2 direct dependents, got %d", len(deps))
	}
}

func TestValidate_MultipleRoots(t *testing.T) {
	tt := newTestTree()
	tt.add("R1", "")
	tt.add("R2", "")
	tt.add("A", "R1")

	g := tt.build(t)
	err := g.Validate()
	if !errors.Is(err, ErrMultipleRoots) {
		t.Fatalf("expected ErrMultipleRoots, got %v", err)
	}

	ge, ok := AsGraphError(err)
	if !ok {
		t.Fatal("expected *GraphError")
	}
	if ge.Kind != KindMultipleRoots {
		t.Errorf("expected kind MULTIPLE_ROOTS, got %s", ge.Kind)
	}
}

func TestValidate_StructuralCycle(t *testing.T) {
	// A и B — родители друг друга, при живом корне R в стороне.
	tt := newTestTree()
	tt.add("R", "")
	tt.add("A", "B")
	tt.add("B", "A")

	g := tt.build(t)
	err := g.Validate()
	if !errors.Is(err, ErrStructuralCycle) {
		t.Fatalf("expected ErrStructuralCycle, got %v", err)
	}
}

func TestValidate_DependencyCycle(t *testing.T) {
	// A → B → C → A по зависимостям. Структурно все — дети корня.
	tt := newTestTree()
	tt.add("R", "")
	tt.add("A", "R", "C")
	tt.add("B", "R", "A")
	tt.add("C", "R", "B")

	g := tt.build(t)
	err := g.Validate()
	if !errors.Is(err, ErrDependencyCycle) {
		t.Fatalf("expected ErrDependencyCycle, got %v", err)
	}

	// Ошибка указывает ребро, замкнувшее цикл.
	ge, ok := AsGraphError(err)
	if !ok {
		t.Fatal("expected *GraphError")
	}
	if ge.EdgeFrom == uuid.Nil || ge.EdgeTo == uuid.Nil {
		t.Error("cycle error should report the closing edge")
	}
	cycle := map[uuid.UUID]bool{tt.id("A"): true, tt.id("B"): true, tt.id("C"): true}
	if !cycle[ge.EdgeFrom] || !cycle[ge.EdgeTo] {
		t.Errorf("closing edge %s -> %s is outside the cycle", ge.EdgeFrom, ge.EdgeTo)
	}
}

func TestValidate_SelfDependency(t *testing.T) {
	tt := newTestTree()
	tt.add("R", "")
	tt.add("A", "R", "A")

	g := tt.build(t)
	err := g.Validate()
	if !errors.Is(err, ErrDependencyCycle) {
		t.Fatalf("expected ErrDependencyCycle for self-dependency, got %v", err)
	}
}

func TestValidate_CrossTreeDependency(t *testing.T) {
	tt := newTestTree()
	tt.add("R", "")
	outside := uuid.New()
	a := tt.add("A", "R")
	a.DependencyIDs = append(a.DependencyIDs, outside)

	g := tt.build(t)
	err := g.Validate()
	if !errors.Is(err, ErrCrossTreeDependency) {
		t.Fatalf("expected ErrCrossTreeDependency, got %v", err)
	}

	ge, _ := AsGraphError(err)
	if ge.EdgeTo != outside {
		t.Errorf("expected offending dependency %s, got %s", outside, ge.EdgeTo)
	}
}

func TestValidate_OrphanTask(t *testing.T) {
	// Родитель задачи не существует в дереве.
	tt := newTestTree()
	tt.add("R", "")
	missing := uuid.New()
	orphan := tt.add("A", "R")
	orphan.ParentID = &missing

	g := tt.build(t)
	err := g.Validate()
	if !errors.Is(err, ErrOrphanTask) {
		t.Fatalf("expected ErrOrphanTask, got %v", err)
	}
}

func TestValidate_TopologicalOrder(t *testing.T) {
	tt := newTestTree()
	tt.add("R", "")
	tt.add("A", "R")
	tt.add("B", "R", "A")
	tt.add("C", "R", "A", "B")

	g := tt.buildValid(t)

	pos := make(map[uuid.UUID]int)
	for i, id := range g.TopologicalOrder() {
		pos[id] = i
	}
	if len(pos) != 4 {
		t.Fatalf("expected 4 tasks in topological order, got %d", len(pos))
	}
	for _, task := range g.Tasks() {
		for _, dep := range task.DependencyIDs {
			if pos[dep] > pos[task.ID] {
				t.Errorf("dependency %s ordered after dependent %s", dep, task.ID)
			}
		}
	}
}

func TestNew_EmptyTree(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrEmptyTree) {
		t.Fatalf("expected ErrEmptyTree, got %v", err)
	}
}

func TestNew_DuplicateTaskID(t *testing.T) {
	tt := newTestTree()
	tt.add("R", "")
	dup := tt.add("A", "R")
	tt.tasks = append(tt.tasks, dup)

	if _, err := New(tt.tasks); !errors.Is(err, ErrDuplicateTaskID) {
		t.Fatalf("expected ErrDuplicateTaskID, got %v", err)
	}
}
