package graph

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Arbor/internal/domain"
)

// CopyResult — результат копирования поддерева.
type CopyResult struct {
	// RootID — ID корня нового дерева (он же ID нового TaskTree).
	RootID uuid.UUID

	// Tasks — задачи нового дерева в порядке исходного дерева.
	Tasks []*domain.Task

	// IDMap — соответствие исходных ID новым.
	IDMap map[uuid.UUID]uuid.UUID
}

// CopySubtree строит новое дерево для перевыполнения выборки задач.
//
// Выборка разворачивается вниз по графу зависимостей: вместе с каждой
// выбранной задачей копируются все её транзитивные зависимые — иначе
// зависимые остались бы привязанными к ещё-не-перевыполненному
// предшественнику. Выбранные задачи входят в копию всегда, включая
// упавшие листья без зависимых: их перезапуск и есть цель вызова.
//
// Предки, которые сами не перевыполняются, материализуются как
// placeholder-задачи в статусе SUCCEEDED — дерево остаётся связным от
// корня до листьев, но предки не выполняются повторно. Рёбра
// зависимостей, ведущие к задачам вне нового дерева, отбрасываются:
// такая зависимость уже выполнилась в исходном дереве, иначе выбранная
// задача не могла бы запуститься.
//
// Исходное дерево не изменяется. Новое дерево перед возвратом проходит
// полную валидацию; её провал — нарушение внутреннего инварианта.
func (g *Graph) CopySubtree(selection []uuid.UUID) (*CopyResult, error) {
	if len(selection) == 0 {
		return nil, ErrEmptySelection
	}
	for _, id := range selection {
		if _, ok := g.tasks[id]; !ok {
			return nil, fmt.Errorf("%w: task %s is not part of tree %s",
				ErrSelectionSpansMultipleTrees, id, g.root.ID)
		}
	}
	if !g.validated {
		if err := g.Validate(); err != nil {
			return nil, err
		}
	}

	// Шаг 1: выборка + все транзитивные зависимые.
	expanded, err := g.DependentsOfSet(selection)
	if err != nil {
		return nil, err
	}
	for _, id := range selection {
		expanded[id] = true
	}

	// Шаг 2: предки для связности. Не попавшие в expanded становятся
	// placeholder'ами.
	placeholders := make(map[uuid.UUID]bool)
	for id := range expanded {
		for _, anc := range g.ancestors(id) {
			if !expanded[anc] {
				placeholders[anc] = true
			}
		}
	}

	// Шаг 3: новые ID для всего состава нового дерева.
	idMap := make(map[uuid.UUID]uuid.UUID, len(expanded)+len(placeholders))
	for id := range expanded {
		idMap[id] = uuid.New()
	}
	for id := range placeholders {
		idMap[id] = uuid.New()
	}

	newRootID, ok := idMap[g.root.ID]
	if !ok {
		// Корень — предок любой задачи, сюда попадать не должны.
		return nil, fmt.Errorf("%w: root %s missing from copy", ErrCopyValidation, g.root.ID)
	}

	// Шаг 4: сборка задач в порядке исходного дерева.
	now := time.Now()
	tasks := make([]*domain.Task, 0, len(idMap))
	for _, origID := range g.order {
		newID, ok := idMap[origID]
		if !ok {
			continue
		}
		orig := g.tasks[origID]
		origRef := origID

		copied := &domain.Task{
			ID:             newID,
			TreeID:         newRootID,
			UserID:         orig.UserID,
			ExecutorType:   orig.ExecutorType,
			Priority:       orig.Priority,
			RetryPolicy:    orig.RetryPolicy,
			OriginalTaskID: &origRef,
			Payload:        cloneMap(orig.Payload),
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		if orig.ParentID != nil {
			if newParent, ok := idMap[*orig.ParentID]; ok {
				copied.ParentID = &newParent
			}
		}

		for _, depID := range orig.DependencyIDs {
			if newDep, ok := idMap[depID]; ok {
				copied.DependencyIDs = append(copied.DependencyIDs, newDep)
			}
		}

		if placeholders[origID] {
			copied.Placeholder = true
			copied.Status = domain.TaskStatusSucceeded
			copied.Outputs = cloneMap(orig.Outputs)
			finished := now
			copied.FinishedAt = &finished
		} else {
			copied.Status = domain.TaskStatusPending
		}

		tasks = append(tasks, copied)
	}

	// Шаг 5: новое дерево обязано пройти ту же валидацию, что и submit.
	check, err := New(tasks)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCopyValidation, err)
	}
	if err := check.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCopyValidation, err)
	}

	return &CopyResult{
		RootID: newRootID,
		Tasks:  tasks,
		IDMap:  idMap,
	}, nil
}

// cloneMap делает поверхностную копию payload-карты.
func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
