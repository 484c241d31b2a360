// Package retry — решения о повторном выполнении упавших задач.
//
// Controller сопоставляет RetryPolicy задачи с исходом попытки и
// возвращает Decision: повторять ли и с какой паузой. Паузы считаются
// детерминированно (рандомизация выключена), CUSTOM-стратегии
// разрешаются через Registry по идентификатору — политика остаётся
// сериализуемой и воспроизводимой после рестарта процесса.
package retry
