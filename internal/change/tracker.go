// Package change реализует отслеживание изменений для данных, которые
// уходят в рендерер: мутаторы вызывают Mark, потребитель — Take.
package change

// Tracker счётчик версий с отметкой последней прочитанной версии.
// Нулевое значение считается изменённым, чтобы первое чтение всегда
// забирало данные.
type Tracker struct {
	version uint64
	seen    uint64
	started bool
}

// Mark отмечает изменение
func (t *Tracker) Mark() {
	t.version++
}

// Version текущая версия
func (t *Tracker) Version() uint64 {
	return t.version
}

// Changed есть ли изменения после последнего Take
func (t *Tracker) Changed() bool {
	return !t.started || t.version != t.seen
}

// Take возвращает Changed и помечает текущую версию прочитанной
func (t *Tracker) Take() bool {
	changed := t.Changed()
	t.seen = t.version
	t.started = true
	return changed
}

// Observer следит за внешним счётчиком версий (например, World4D.Version)
type Observer struct {
	seen    uint64
	started bool
}

// Take сообщает, изменилась ли версия с прошлого вызова
func (o *Observer) Take(version uint64) bool {
	changed := !o.started || version != o.seen
	o.seen = version
	o.started = true
	return changed
}
