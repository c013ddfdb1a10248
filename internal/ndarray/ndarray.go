// Package ndarray содержит плотный N-мерный массив с явными shape и strides.
// Все проверки границ сосредоточены здесь; мир и окно физики работают
// только через этот тип.
package ndarray

import "fmt"

// Array плотный массив в порядке row-major (последняя ось меняется быстрее всего)
type Array[T any] struct {
	shape   []int
	strides []int
	data    []T
}

// New создаёт массив заданной формы, заполненный значением fill
func New[T any](shape []int, fill T) *Array[T] {
	if len(shape) == 0 {
		panic("ndarray: empty shape")
	}
	strides := make([]int, len(shape))
	total := 1
	for i := len(shape) - 1; i >= 0; i-- {
		if shape[i] < 0 {
			panic(fmt.Sprintf("ndarray: negative extent %d on axis %d", shape[i], i))
		}
		strides[i] = total
		total *= shape[i]
	}
	data := make([]T, total)
	for i := range data {
		data[i] = fill
	}
	return &Array[T]{
		shape:   append([]int(nil), shape...),
		strides: strides,
		data:    data,
	}
}

// Cube создаёт массив с одинаковой длиной dims осей
func Cube[T any](dims, side int, fill T) *Array[T] {
	shape := make([]int, dims)
	for i := range shape {
		shape[i] = side
	}
	return New(shape, fill)
}

// Shape возвращает копию формы
func (a *Array[T]) Shape() []int {
	return append([]int(nil), a.shape...)
}

// Strides возвращает копию шагов
func (a *Array[T]) Strides() []int {
	return append([]int(nil), a.strides...)
}

// Dims количество осей
func (a *Array[T]) Dims() int {
	return len(a.shape)
}

// Len общее число элементов
func (a *Array[T]) Len() int {
	return len(a.data)
}

// Offset переводит координату в плоский индекс.
// Второе значение false, если координата вне массива.
func (a *Array[T]) Offset(coord ...int) (int, bool) {
	if len(coord) != len(a.shape) {
		return 0, false
	}
	off := 0
	for i, c := range coord {
		if c < 0 || c >= a.shape[i] {
			return 0, false
		}
		off += c * a.strides[i]
	}
	return off, true
}

// Get возвращает элемент и признак попадания в границы
func (a *Array[T]) Get(coord ...int) (T, bool) {
	off, ok := a.Offset(coord...)
	if !ok {
		var zero T
		return zero, false
	}
	return a.data[off], true
}

// At возвращает элемент; при выходе за границы паникует
func (a *Array[T]) At(coord ...int) T {
	off, ok := a.Offset(coord...)
	if !ok {
		panic(fmt.Sprintf("ndarray: index %v out of shape %v", coord, a.shape))
	}
	return a.data[off]
}

// Put записывает элемент, возвращает false вне границ
func (a *Array[T]) Put(v T, coord ...int) bool {
	off, ok := a.Offset(coord...)
	if !ok {
		return false
	}
	a.data[off] = v
	return true
}

// Fill заполняет весь массив значением v
func (a *Array[T]) Fill(v T) {
	for i := range a.data {
		a.data[i] = v
	}
}

// FillBox заполняет полуоткрытый бокс [lo, hi) значением v.
// Границы бокса обрезаются по форме массива.
func (a *Array[T]) FillBox(lo, hi []int, v T) {
	if len(lo) != len(a.shape) || len(hi) != len(a.shape) {
		panic("ndarray: box rank mismatch")
	}
	from := make([]int, len(lo))
	to := make([]int, len(hi))
	for i := range lo {
		from[i] = max(lo[i], 0)
		to[i] = min(hi[i], a.shape[i])
		if from[i] >= to[i] {
			return
		}
	}
	coord := append([]int(nil), from...)
	for {
		off, _ := a.Offset(coord...)
		a.data[off] = v
		if !next(coord, from, to) {
			return
		}
	}
}

// Each обходит все элементы в порядке хранения.
// Срез coord переиспользуется между вызовами.
func (a *Array[T]) Each(fn func(coord []int, v T)) {
	if len(a.data) == 0 {
		return
	}
	from := make([]int, len(a.shape))
	coord := make([]int, len(a.shape))
	for i := range a.data {
		fn(coord, a.data[i])
		next(coord, from, a.shape)
	}
}

// Data возвращает внутренний буфер без копирования
func (a *Array[T]) Data() []T {
	return a.data
}

// Clone возвращает глубокую копию
func (a *Array[T]) Clone() *Array[T] {
	return &Array[T]{
		shape:   append([]int(nil), a.shape...),
		strides: append([]int(nil), a.strides...),
		data:    append([]T(nil), a.data...),
	}
}

// next увеличивает координату как счётчик с переносом; false, если обход закончен
func next(coord, from, to []int) bool {
	for i := len(coord) - 1; i >= 0; i-- {
		coord[i]++
		if coord[i] < to[i] {
			return true
		}
		coord[i] = from[i]
	}
	return false
}
