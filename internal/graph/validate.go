package graph

import (
	"fmt"

	"github.com/google/uuid"
)

// Цвета для обхода графа зависимостей.
type color uint8

const (
	colorWhite color = iota // не посещена
	colorGray               // в текущем пути обхода
	colorBlack              // полностью обработана
)

// Validate проверяет инварианты дерева:
//
//  1. ровно один корень, parent-цепочка каждой задачи заканчивается
//     на нём без повторных посещений (StructuralCycle / MultipleRoots);
//  2. зависимости ссылаются только внутрь дерева (CrossTreeDependency)
//     и образуют ациклический граф (DependencyCycle, с указанием
//     ребра, замкнувшего цикл);
//  3. каждая задача достижима от корня по структурному дереву
//     (OrphanTask).
//
// Валидация ничего не изменяет: вызывающий либо принимает дерево
// целиком, либо отвергает мутацию — частично проверенное дерево
// не сохраняется.
func (g *Graph) Validate() error {
	if err := g.validateStructure(); err != nil {
		return err
	}
	if err := g.validateDependencies(); err != nil {
		return err
	}
	if err := g.validateReachability(); err != nil {
		return err
	}

	// Топологический порядок зависимостей (алгоритм Кана).
	// Циклы уже исключены, сортировка обязана пройти.
	topo, err := g.topologicalSort()
	if err != nil {
		return err
	}
	g.topo = topo
	g.validated = true
	return nil
}

// validateStructure проверяет единственность корня и отсутствие циклов
// в parent-цепочках.
func (g *Graph) validateStructure() error {
	var roots []uuid.UUID
	for _, id := range g.order {
		if g.tasks[id].ParentID == nil {
			roots = append(roots, id)
		}
	}
	if len(roots) > 1 {
		return &GraphError{
			Kind:    KindMultipleRoots,
			TaskID:  roots[0],
			EdgeTo:  roots[1],
			Message: fmt.Sprintf("tasks %s and %s both have no parent", roots[0], roots[1]),
			Err:     ErrMultipleRoots,
		}
	}

	// Подъём от каждой задачи к корню. verified — мемоизация: задачи,
	// чья цепочка уже подтверждена.
	verified := make(map[uuid.UUID]bool, len(g.order))
	for _, start := range g.order {
		if verified[start] {
			continue
		}

		walk := []uuid.UUID{}
		onPath := make(map[uuid.UUID]bool)
		cur := start
		for {
			if onPath[cur] {
				return newGraphError(KindStructuralCycle, cur,
					fmt.Sprintf("parent chain of %s revisits %s", start, cur), ErrStructuralCycle)
			}
			if verified[cur] {
				break
			}
			onPath[cur] = true
			walk = append(walk, cur)

			t := g.tasks[cur]
			if t.ParentID == nil {
				// Дошли до корня.
				break
			}
			parent, ok := g.tasks[*t.ParentID]
			if !ok {
				return newGraphError(KindOrphanTask, cur,
					fmt.Sprintf("task %s references missing parent %s", cur, *t.ParentID), ErrOrphanTask)
			}
			cur = parent.ID
		}

		for _, id := range walk {
			verified[id] = true
		}
	}

	if g.root == nil {
		// Без корня все цепочки зациклены — сюда не доходим, но
		// инвариант оставляем явным.
		return newGraphError(KindStructuralCycle, uuid.Nil, "tree has no root", ErrStructuralCycle)
	}
	return nil
}

// validateDependencies проверяет ссылки зависимостей и ищет циклы
// трёхцветным DFS по forward-рёбрам.
func (g *Graph) validateDependencies() error {
	for _, id := range g.order {
		for _, depID := range g.tasks[id].DependencyIDs {
			if _, ok := g.tasks[depID]; !ok {
				return &GraphError{
					Kind:     KindCrossTreeDependency,
					TaskID:   id,
					EdgeFrom: id,
					EdgeTo:   depID,
					Message:  fmt.Sprintf("task %s depends on %s outside the tree", id, depID),
					Err:      ErrCrossTreeDependency,
				}
			}
		}
	}

	colors := make(map[uuid.UUID]color, len(g.order))
	for _, id := range g.order {
		if colors[id] != colorWhite {
			continue
		}
		if err := g.visitDependency(id, colors); err != nil {
			return err
		}
	}
	return nil
}

// visitDependency — шаг трёхцветного DFS. Серая вершина в соседях
// означает back-edge: ребро cur→dep замкнуло цикл.
func (g *Graph) visitDependency(cur uuid.UUID, colors map[uuid.UUID]color) error {
	colors[cur] = colorGray
	for _, depID := range g.tasks[cur].DependencyIDs {
		switch colors[depID] {
		case colorGray:
			return &GraphError{
				Kind:     KindDependencyCycle,
				TaskID:   cur,
				EdgeFrom: cur,
				EdgeTo:   depID,
				Message:  fmt.Sprintf("edge %s -> %s closes a dependency cycle", cur, depID),
				Err:      ErrDependencyCycle,
			}
		case colorWhite:
			if err := g.visitDependency(depID, colors); err != nil {
				return err
			}
		}
	}
	colors[cur] = colorBlack
	return nil
}

// validateReachability обходит структурное дерево от корня и проверяет,
// что посещены все задачи.
func (g *Graph) validateReachability() error {
	visited := make(map[uuid.UUID]bool, len(g.order))
	queue := []uuid.UUID{g.root.ID}
	visited[g.root.ID] = true

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, childID := range g.children[cur] {
			if !visited[childID] {
				visited[childID] = true
				queue = append(queue, childID)
			}
		}
	}

	for _, id := range g.order {
		if !visited[id] {
			return newGraphError(KindOrphanTask, id,
				fmt.Sprintf("task %s is not reachable from root %s", id, g.root.ID), ErrOrphanTask)
		}
	}
	return nil
}

// topologicalSort строит топологический порядок графа зависимостей
// (алгоритм Кана). Зависимость выполняется раньше зависимого.
func (g *Graph) topologicalSort() ([]uuid.UUID, error) {
	inDegree := make(map[uuid.UUID]int, len(g.order))
	for _, id := range g.order {
		inDegree[id] = len(g.tasks[id].DependencyIDs)
	}

	queue := make([]uuid.UUID, 0, len(g.order))
	for _, id := range g.order {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	topo := make([]uuid.UUID, 0, len(g.order))
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		topo = append(topo, cur)

		for _, depID := range g.dependents[cur] {
			inDegree[depID]--
			if inDegree[depID] == 0 {
				queue = append(queue, depID)
			}
		}
	}

	if len(topo) != len(g.order) {
		return nil, newGraphError(KindDependencyCycle, uuid.Nil, "dependency cycle detected", ErrDependencyCycle)
	}
	return topo, nil
}
