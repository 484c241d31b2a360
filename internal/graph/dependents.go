package graph

import "github.com/google/uuid"

// DependentsOf возвращает транзитивное замыкание обратных рёбер
// зависимостей: все задачи, которые прямо или косвенно зависят от
// данной. Сама задача в результат не входит.
//
// Обход — BFS по reverse adjacency; завершается всегда, потому что
// forward-граф ацикличен. Результат детерминирован (рёбра хранятся
// в порядке добавления задач) и стабилен между вызовами, пока дерево
// не мутирует.
func (g *Graph) DependentsOf(id uuid.UUID) ([]uuid.UUID, error) {
	if _, ok := g.tasks[id]; !ok {
		return nil, ErrUnknownTask
	}

	visited := map[uuid.UUID]bool{id: true}
	queue := []uuid.UUID{id}
	var closure []uuid.UUID

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, depID := range g.dependents[cur] {
			if visited[depID] {
				continue
			}
			visited[depID] = true
			closure = append(closure, depID)
			queue = append(queue, depID)
		}
	}

	return closure, nil
}

// DependentsOfSet объединяет DependentsOf по всем задачам выборки.
// Используется Copy Engine'ом для разворачивания выборки вниз.
func (g *Graph) DependentsOfSet(ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	closure := make(map[uuid.UUID]bool)
	for _, id := range ids {
		deps, err := g.DependentsOf(id)
		if err != nil {
			return nil, err
		}
		for _, d := range deps {
			closure[d] = true
		}
	}
	return closure, nil
}
