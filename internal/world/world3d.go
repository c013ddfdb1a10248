package world

import (
	"github.com/annel0/voxel4d/internal/ndarray"
	"github.com/annel0/voxel4d/internal/vec"
)

// World3D плотная кубическая сетка вокселей без паддинга
type World3D struct {
	voxels  *ndarray.Array[VoxelID]
	palette *Palette
	version uint64
}

// NewWorld3D создаёт мир size^3, заполненный воздухом
func NewWorld3D(size int) *World3D {
	return &World3D{
		voxels:  ndarray.Cube(3, size, AirID),
		palette: NewPalette(VoxelType{}),
		version: 1,
	}
}

// InsertType добавляет материал; при переполнении палитры паникует
func (w *World3D) InsertType(t VoxelType) VoxelID {
	id := must(w.palette.Insert(t))
	w.version++
	return id
}

// Palette возвращает палитру мира
func (w *World3D) Palette() *Palette {
	return w.palette
}

// Size длина стороны мира
func (w *World3D) Size() int {
	return w.voxels.Shape()[0]
}

// Lookup возвращает id ячейки или ErrOutOfBounds
func (w *World3D) Lookup(c vec.Vec3) (VoxelID, error) {
	id, ok := w.voxels.Get(c.X, c.Y, c.Z)
	if !ok {
		return 0, &BoundsError{Coord: c.Slice(), Size: w.Size()}
	}
	return id, nil
}

// TrySet записывает id или возвращает ошибку
func (w *World3D) TrySet(c vec.Vec3, id VoxelID) error {
	if int(id) >= w.palette.Len() {
		return ErrUnknownID
	}
	if !w.voxels.Put(id, c.X, c.Y, c.Z) {
		return &BoundsError{Coord: c.Slice(), Size: w.Size()}
	}
	w.version++
	return nil
}

// Get возвращает id ячейки, вне мира паникует
func (w *World3D) Get(c vec.Vec3) VoxelID {
	return must(w.Lookup(c))
}

// Set записывает id, вне мира паникует
func (w *World3D) Set(c vec.Vec3, id VoxelID) {
	must(struct{}{}, w.TrySet(c, id))
}

// Bytes row-major копия сетки для загрузки
func (w *World3D) Bytes() []byte {
	return voxelBytes(w.voxels)
}

// Version растёт при каждом изменении сетки или палитры
func (w *World3D) Version() uint64 {
	return w.version
}

func voxelBytes(a *ndarray.Array[VoxelID]) []byte {
	data := a.Data()
	out := make([]byte, len(data))
	for i, id := range data {
		out[i] = byte(id)
	}
	return out
}
