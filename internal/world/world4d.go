package world

import (
	"github.com/annel0/voxel4d/internal/ndarray"
	"github.com/annel0/voxel4d/internal/vec"
)

// World4D гиперкубическая сетка со стороной size+2: по слою паддинга
// на каждой грани заполнен BoundaryID. Соседние запросы у края читают
// границу вместо отдельной проверки.
type World4D struct {
	size    int
	voxels  *ndarray.Array[VoxelID]
	palette *Palette
	version uint64
}

// NewWorld4D создаёт мир size^4 из воздуха, окружённый границей
func NewWorld4D(size int) *World4D {
	padded := size + 2
	voxels := ndarray.Cube(4, padded, BoundaryID)
	voxels.FillBox(
		[]int{1, 1, 1, 1},
		[]int{padded - 1, padded - 1, padded - 1, padded - 1},
		AirID,
	)
	return &World4D{
		size:    size,
		voxels:  voxels,
		palette: NewPalette(VoxelType{}, VoxelType{}),
		version: 1,
	}
}

// InsertType добавляет материал; при переполнении палитры паникует
func (w *World4D) InsertType(t VoxelType) VoxelID {
	id := must(w.palette.Insert(t))
	w.version++
	return id
}

// TryInsertType добавляет материал или возвращает ErrCapacityExceeded
func (w *World4D) TryInsertType(t VoxelType) (VoxelID, error) {
	id, err := w.palette.Insert(t)
	if err != nil {
		return 0, err
	}
	w.version++
	return id, nil
}

// Palette возвращает палитру мира
func (w *World4D) Palette() *Palette {
	return w.palette
}

// Size логическая длина стороны (без паддинга)
func (w *World4D) Size() int {
	return w.size
}

// PaddedSize длина стороны хранимого массива
func (w *World4D) PaddedSize() int {
	return w.size + 2
}

// Lookup возвращает id ячейки; для паддинга и всего за ним ErrOutOfBounds
func (w *World4D) Lookup(c vec.Vec4) (VoxelID, error) {
	if !c.InBox(w.size) {
		return 0, &BoundsError{Coord: c.Slice(), Size: w.size}
	}
	return w.voxels.At(c.X+1, c.Y+1, c.Z+1, c.W+1), nil
}

// TrySet записывает id или возвращает ошибку.
// BoundaryID через публичный API не записывается.
func (w *World4D) TrySet(c vec.Vec4, id VoxelID) error {
	if id == BoundaryID {
		return ErrReservedID
	}
	if int(id) >= w.palette.Len() {
		return ErrUnknownID
	}
	if !c.InBox(w.size) {
		return &BoundsError{Coord: c.Slice(), Size: w.size}
	}
	w.voxels.Put(id, c.X+1, c.Y+1, c.Z+1, c.W+1)
	w.version++
	return nil
}

// Get возвращает id ячейки, вне мира паникует
func (w *World4D) Get(c vec.Vec4) VoxelID {
	return must(w.Lookup(c))
}

// Set записывает id, вне мира паникует
func (w *World4D) Set(c vec.Vec4, id VoxelID) {
	must(struct{}{}, w.TrySet(c, id))
}

// Sample читает ячейку как её видит проход среза: всё вне мира — граница.
// В отличие от Get не паникует.
func (w *World4D) Sample(c vec.Vec4) VoxelID {
	id, ok := w.voxels.Get(c.X+1, c.Y+1, c.Z+1, c.W+1)
	if !ok {
		return BoundaryID
	}
	return id
}

// Bytes row-major копия массива вместе с паддингом
func (w *World4D) Bytes() []byte {
	return voxelBytes(w.voxels)
}

// Version растёт при каждом изменении сетки или палитры
func (w *World4D) Version() uint64 {
	return w.version
}
