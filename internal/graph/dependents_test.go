package graph

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestDependentsOf_Transitive(t *testing.T) {
	// A ← B ← C (цепочка) и A ← D (ветка): всё это зависимые A.
	tt := newTestTree()
	tt.add("R", "")
	tt.add("A", "R")
	tt.add("B", "R", "A")
	tt.add("C", "R", "B")
	tt.add("D", "R", "A")

	g := tt.buildValid(t)

	deps, err := g.DependentsOf(tt.id("A"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := make(map[uuid.UUID]bool)
	for _, id := range deps {
		got[id] = true
	}
	for _, name := range []string{"B", "C", "D"} {
		if !got[tt.id(name)] {
			t.Errorf("dependents of A should include %s", name)
		}
	}
	if len(deps) != 3 {
		t.Errorf("expected 3 dependents, got %d", len(deps))
	}
}

func TestDependentsOf_ExcludesSelf(t *testing.T) {
	tt := newTestTree()
	tt.add("R", "")
	tt.add("A", "R")
	tt.add("B", "R", "A")

	g := tt.buildValid(t)

	deps, err := g.DependentsOf(tt.id("A"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, id := range deps {
		if id == tt.id("A") {
			t.Error("dependents must not include the task itself")
		}
	}
}

func TestDependentsOf_Idempotent(t *testing.T) {
	tt := newTestTree()
	tt.add("R", "")
	tt.add("A", "R")
	tt.add("B", "R", "A")
	tt.add("C", "R", "B", "A")

	g := tt.buildValid(t)

	first, err := g.DependentsOf(tt.id("A"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := g.DependentsOf(tt.id("A"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("repeated calls differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("order changed between calls at %d: %s vs %s", i, first[i], second[i])
		}
	}
}

func TestDependentsOf_NoDependents(t *testing.T) {
	tt := newTestTree()
	tt.add("R", "")
	tt.add("A", "R")

	g := tt.buildValid(t)

	deps, err := g.DependentsOf(tt.id("A"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deps) != 0 {
		t.Errorf("leaf without dependents should return empty closure, got %d", len(deps))
	}
}

func TestDependentsOf_UnknownTask(t *testing.T) {
	tt := newTestTree()
	tt.add("R", "")

	g := tt.buildValid(t)

	if _, err := g.DependentsOf(uuid.New()); !errors.Is(err, ErrUnknownTask) {
		t.Fatalf("expected ErrUnknownTask, got %v", err)
	}
}

func TestDependentsOf_DiamondNoDuplicates(t *testing.T) {
	// D достижима от A двумя путями — в замыкании должна быть один раз.
	tt := newTestTree()
	tt.add("R", "")
	tt.add("A", "R")
	tt.add("B", "R", "A")
	tt.add("C", "R", "A")
	tt.add("D", "R", "B", "C")

	g := tt.buildValid(t)

	deps, err := g.DependentsOf(tt.id("A"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := make(map[uuid.UUID]int)
	for _, id := range deps {
		seen[id]++
	}
	if seen[tt.id("D")] != 1 {
		t.Errorf("D should appear exactly once, got %d", seen[tt.id("D")])
	}
	if len(deps) != 3 {
		t.Errorf("expected 3 dependents of A, got %d", len(deps))
	}
}
