package graph

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/shaiso/Arbor/internal/domain"
)

// copyFixture — дерево для тестов копирования:
//
//	R
//	├── A ── A1 (dep: A)
//	├── C               (успешный кузен, цель отбрасываемого ребра)
//	└── B
//	    ├── B1 (deps: A1, C) — FAILED
//	    └── B2 (dep: B1)     — CANCELLED
func copyFixture(t *testing.T) (*testTree, *Graph) {
	t.Helper()
	tt := newTestTree()
	tt.add("R", "")
	tt.add("A", "R")
	tt.add("A1", "A", "A")
	tt.add("C", "R")
	tt.add("B", "R")
	tt.add("B1", "B", "A1", "C")
	tt.add("B2", "B", "B1")

	for _, task := range tt.tasks {
		task.Status = domain.TaskStatusSucceeded
	}
	tt.tasks[5].Status = domain.TaskStatusFailed    // B1
	tt.tasks[6].Status = domain.TaskStatusCancelled // B2

	return tt, tt.buildValid(t)
}

func TestCopySubtree_ClosedUnderDependents(t *testing.T) {
	tt, g := copyFixture(t)

	res, err := g.CopySubtree([]uuid.UUID{tt.id("A1")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A1 выбрана → B1 и B2 (транзитивные зависимые) обязаны войти в копию.
	for _, name := range []string{"A1", "B1", "B2"} {
		if _, ok := res.IDMap[tt.id(name)]; !ok {
			t.Errorf("copy should include %s", name)
		}
	}

	// Свойство замкнутости: для каждой скопированной задачи все её
	// зависимые из исходного дерева тоже скопированы.
	for orig := range res.IDMap {
		deps, err := g.DependentsOf(orig)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, d := range deps {
			if _, ok := res.IDMap[d]; !ok {
				t.Errorf("dependent %s of copied task %s missing from copy", d, orig)
			}
		}
	}
}

func TestCopySubtree_PlaceholderAncestors(t *testing.T) {
	tt, g := copyFixture(t)

	res, err := g.CopySubtree([]uuid.UUID{tt.id("A1")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byOrig := make(map[uuid.UUID]*domain.Task)
	for _, task := range res.Tasks {
		byOrig[*task.OriginalTaskID] = task
	}

	// Предки R, A, B не перевыполняются: placeholder в статусе SUCCEEDED.
	for _, name := range []string{"R", "A", "B"} {
		task := byOrig[tt.id(name)]
		if task == nil {
			t.Fatalf("ancestor %s missing from copy", name)
		}
		if !task.Placeholder {
			t.Errorf("%s should be a placeholder", name)
		}
		if task.Status != domain.TaskStatusSucceeded {
			t.Errorf("%s placeholder should be SUCCEEDED, got %s", name, task.Status)
		}
	}

	// Перевыполняемые задачи сброшены в PENDING с нулевым счётчиком retry.
	for _, name := range []string{"A1", "B1", "B2"} {
		task := byOrig[tt.id(name)]
		if task == nil {
			t.Fatalf("task %s missing from copy", name)
		}
		if task.Placeholder {
			t.Errorf("%s should not be a placeholder", name)
		}
		if task.Status != domain.TaskStatusPending {
			t.Errorf("%s should be PENDING, got %s", name, task.Status)
		}
		if task.AttemptCount != 0 {
			t.Errorf("%s attempt count should reset to 0, got %d", name, task.AttemptCount)
		}
	}

	// Кузен C в копию не входит.
	if _, ok := res.IDMap[tt.id("C")]; ok {
		t.Error("C has no path to the selection and should not be copied")
	}
}

func TestCopySubtree_DropsSatisfiedOutsideDeps(t *testing.T) {
	tt, g := copyFixture(t)

	res, err := g.CopySubtree([]uuid.UUID{tt.id("B1")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var b1 *domain.Task
	for _, task := range res.Tasks {
		if *task.OriginalTaskID == tt.id("B1") {
			b1 = task
		}
	}
	if b1 == nil {
		t.Fatal("B1 missing from copy")
	}

	// Зависимость B1 → C отброшена (C вне нового дерева), B1 → A1 тоже:
	// при выборке {B1} задача A1 не копируется и не является предком.
	if len(b1.DependencyIDs) != 0 {
		t.Errorf("deps outside the copy should be dropped, got %d edges", len(b1.DependencyIDs))
	}
}

func TestCopySubtree_RewritesInTreeDeps(t *testing.T) {
	tt, g := copyFixture(t)

	res, err := g.CopySubtree([]uuid.UUID{tt.id("A1")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byOrig := make(map[uuid.UUID]*domain.Task)
	for _, task := range res.Tasks {
		byOrig[*task.OriginalTaskID] = task
	}

	// B2 зависит от B1: ребро переписано на новый ID.
	b2 := byOrig[tt.id("B2")]
	if len(b2.DependencyIDs) != 1 || b2.DependencyIDs[0] != res.IDMap[tt.id("B1")] {
		t.Errorf("B2 dependency should point at the new B1, got %v", b2.DependencyIDs)
	}

	// A1 зависит от A (placeholder): ребро сохранено и переписано.
	a1 := byOrig[tt.id("A1")]
	if len(a1.DependencyIDs) != 1 || a1.DependencyIDs[0] != res.IDMap[tt.id("A")] {
		t.Errorf("A1 dependency should point at the placeholder A, got %v", a1.DependencyIDs)
	}
}

func TestCopySubtree_FailedLeafIncludedVerbatim(t *testing.T) {
	// Упавший лист без зависимых всё равно копируется: его перезапуск
	// и есть цель вызова.
	tt := newTestTree()
	tt.add("R", "")
	leaf := tt.add("L", "R")
	leaf.Status = domain.TaskStatusFailed
	tt.tasks[0].Status = domain.TaskStatusSucceeded

	g := tt.buildValid(t)

	res, err := g.CopySubtree([]uuid.UUID{tt.id("L")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Tasks) != 2 {
		t.Fatalf("expected copy of L plus placeholder root, got %d tasks", len(res.Tasks))
	}

	byOrig := make(map[uuid.UUID]*domain.Task)
	for _, task := range res.Tasks {
		byOrig[*task.OriginalTaskID] = task
	}
	if byOrig[tt.id("L")].Status != domain.TaskStatusPending {
		t.Error("failed leaf should be reset to PENDING in the copy")
	}
	if !byOrig[tt.id("R")].Placeholder {
		t.Error("root should become a placeholder")
	}
}

func TestCopySubtree_CopyValidates(t *testing.T) {
	tt, g := copyFixture(t)

	res, err := g.CopySubtree([]uuid.UUID{tt.id("A1"), tt.id("B1")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	check, err := New(res.Tasks)
	if err != nil {
		t.Fatalf("copied tree failed to build: %v", err)
	}
	if err := check.Validate(); err != nil {
		t.Fatalf("copied tree failed validation: %v", err)
	}
	if check.Root().ID != res.RootID {
		t.Errorf("copy root mismatch: %s vs %s", check.Root().ID, res.RootID)
	}
}

func TestCopySubtree_OriginalUntouched(t *testing.T) {
	tt, g := copyFixture(t)

	before := make(map[uuid.UUID]domain.TaskStatus)
	for _, task := range tt.tasks {
		before[task.ID] = task.Status
	}

	if _, err := g.CopySubtree([]uuid.UUID{tt.id("A1")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, task := range tt.tasks {
		if task.Status != before[task.ID] {
			t.Errorf("original task %s changed status: %s -> %s", task.ID, before[task.ID], task.Status)
		}
		if task.OriginalTaskID != nil {
			t.Errorf("original task %s must not gain a back-reference", task.ID)
		}
	}
}

func TestCopySubtree_TreeAndBackrefs(t *testing.T) {
	tt, g := copyFixture(t)

	res, err := g.CopySubtree([]uuid.UUID{tt.id("B2")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, task := range res.Tasks {
		if task.TreeID != res.RootID {
			t.Errorf("task %s has tree %s, want %s", task.ID, task.TreeID, res.RootID)
		}
		if task.OriginalTaskID == nil {
			t.Errorf("task %s missing original back-reference", task.ID)
			continue
		}
		if *task.OriginalTaskID == task.ID {
			t.Errorf("task %s references itself as original", task.ID)
		}
		if _, ok := g.Task(*task.OriginalTaskID); !ok {
			t.Errorf("task %s references original outside the source tree", task.ID)
		}
	}
}

func TestCopySubtree_EmptySelection(t *testing.T) {
	_, g := copyFixture(t)

	if _, err := g.CopySubtree(nil); !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("expected ErrEmptySelection, got %v", err)
	}
}

func TestCopySubtree_SelectionOutsideTree(t *testing.T) {
	_, g := copyFixture(t)

	_, err := g.CopySubtree([]uuid.UUID{uuid.New()})
	if !errors.Is(err, ErrSelectionSpansMultipleTrees) {
		t.Fatalf("expected ErrSelectionSpansMultipleTrees, got %v", err)
	}
}
