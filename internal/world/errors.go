package world

import (
	"errors"
	"fmt"
)

var (
	// ErrCapacityExceeded палитра уже содержит PaletteCapacity типов
	ErrCapacityExceeded = errors.New("voxel palette capacity exceeded")
	// ErrOutOfBounds координата вне адресуемого мира (паддинг или за массивом)
	ErrOutOfBounds = errors.New("voxel coordinate out of bounds")
	// ErrReservedID попытка записать служебный id границы через публичный API
	ErrReservedID = errors.New("voxel id is reserved")
	// ErrUnknownID id отсутствует в палитре
	ErrUnknownID = errors.New("voxel id is not in palette")
)

// BoundsError описывает обращение к ячейке вне мира
type BoundsError struct {
	Coord []int
	Size  int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("%v: %v (world size %d)", ErrOutOfBounds, e.Coord, e.Size)
}

func (e *BoundsError) Unwrap() error {
	return ErrOutOfBounds
}

// must превращает нарушение контракта в панику.
// Ошибки вместимости и границ считаются ошибками программиста, состояние не портим.
func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
