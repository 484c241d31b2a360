// Package graph — модель и алгоритмы дерева задач.
//
// Арена (Graph) держит два раздельных отношения между задачами:
// структурное дерево по parent-ссылкам и DAG зависимостей. Поверх
// арены работают:
//   - Validate — единственный корень, отсутствие циклов в обоих
//     отношениях, достижимость всех задач от корня;
//   - DependentsOf — транзитивное замыкание «кто зависит от T»;
//   - CopySubtree — минимальное новое дерево для перевыполнения
//     выборки задач (выборка + зависимые + предки-placeholder'ы).
//
// Пакет не обращается к хранилищу и не знает про scheduler: чистые
// алгоритмы над срезом задач. Персистентность и события — забота
// вызывающего.
package graph
