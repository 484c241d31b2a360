package graph

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Ошибки построения и валидации графа.
var (
	// ErrEmptyTree — дерево не содержит задач.
	ErrEmptyTree = errors.New("tree has no tasks")

	// ErrDuplicateTaskID — несколько задач с одинаковым ID.
	ErrDuplicateTaskID = errors.New("duplicate task ID")

	// ErrStructuralCycle — цикл в цепочке parent-ссылок.
	ErrStructuralCycle = errors.New("structural cycle in parent chain")

	// ErrMultipleRoots — больше одной задачи без родителя.
	ErrMultipleRoots = errors.New("tree has multiple roots")

	// ErrDependencyCycle — цикл в графе зависимостей.
	ErrDependencyCycle = errors.New("dependency cycle detected")

	// ErrOrphanTask — задача недостижима от корня по parent-цепочке.
	ErrOrphanTask = errors.New("task unreachable from root")

	// ErrCrossTreeDependency — зависимость указывает за пределы дерева.
	ErrCrossTreeDependency = errors.New("dependency references task outside tree")

	// ErrUnknownTask — задачи с таким ID нет в графе.
	ErrUnknownTask = errors.New("task not found in graph")
)

// Ошибки выборки для копирования.
var (
	// ErrEmptySelection — пустая выборка задач.
	ErrEmptySelection = errors.New("selection is empty")

	// ErrSelectionSpansMultipleTrees — выборка затрагивает несколько деревьев.
	ErrSelectionSpansMultipleTrees = errors.New("selection spans multiple trees")

	// ErrCopyValidation — скопированное дерево не прошло собственную
	// валидацию. Это нарушение внутреннего инварианта (баг в алгоритме
	// разворачивания выборки), а не ошибка входных данных.
	ErrCopyValidation = errors.New("copied tree failed validation")
)

// Kind — класс ошибки графа для транспортного слоя.
type Kind string

const (
	KindStructuralCycle     Kind = "STRUCTURAL_CYCLE"
	KindMultipleRoots       Kind = "MULTIPLE_ROOTS"
	KindDependencyCycle     Kind = "DEPENDENCY_CYCLE"
	KindOrphanTask          Kind = "ORPHAN_TASK"
	KindCrossTreeDependency Kind = "CROSS_TREE_DEPENDENCY"
)

// GraphError — ошибка валидации графа с контекстом.
//
// TaskID — задача, на которой обнаружена проблема. Для циклов
// зависимостей EdgeFrom/EdgeTo — ребро, замкнувшее цикл.
type GraphError struct {
	Kind     Kind
	TaskID   uuid.UUID
	EdgeFrom uuid.UUID
	EdgeTo   uuid.UUID
	Message  string
	Err      error
}

// Error реализует интерфейс error.
func (e *GraphError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return string(e.Kind)
}

// Unwrap возвращает базовую ошибку.
func (e *GraphError) Unwrap() error {
	return e.Err
}

// newGraphError создаёт GraphError с заполненным контекстом.
func newGraphError(kind Kind, taskID uuid.UUID, message string, err error) *GraphError {
	return &GraphError{
		Kind:    kind,
		TaskID:  taskID,
		Message: message,
		Err:     err,
	}
}

// AsGraphError достаёт *GraphError из цепочки ошибок.
func AsGraphError(err error) (*GraphError, bool) {
	var ge *GraphError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}
