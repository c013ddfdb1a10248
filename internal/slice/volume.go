// Package slice строит трёхмерный срез 4D мира под текущим поворотом
// камеры. Срез служит источником окна физики.
package slice

import (
	"github.com/annel0/voxel4d/internal/camera"
	"github.com/annel0/voxel4d/internal/change"
	"github.com/annel0/voxel4d/internal/ndarray"
	"github.com/annel0/voxel4d/internal/vec"
	"github.com/annel0/voxel4d/internal/world"
)

// Volume куб вокселей со стороной size, оси x, y, z (z самая быстрая)
type Volume struct {
	voxels  *ndarray.Array[world.VoxelID]
	size    int
	changes change.Tracker

	worldSeen      change.Observer
	projection     camera.Projection4D
	projectionSeen bool
}

// NewVolume создаёт срез, заполненный воздухом
func NewVolume(size int) *Volume {
	return &Volume{
		voxels: ndarray.Cube(3, size, world.AirID),
		size:   size,
	}
}

// Size длина стороны среза
func (v *Volume) Size() int {
	return v.size
}

// Get id ячейки; вне среза BoundaryID
func (v *Volume) Get(c vec.Vec3) world.VoxelID {
	id, ok := v.voxels.Get(c.X, c.Y, c.Z)
	if !ok {
		return world.BoundaryID
	}
	return id
}

// Bytes копия вокселей среза
func (v *Volume) Bytes() []byte {
	data := v.voxels.Data()
	out := make([]byte, len(data))
	for i, id := range data {
		out[i] = byte(id)
	}
	return out
}

// Version растёт при каждом пересчёте среза
func (v *Volume) Version() uint64 {
	return v.changes.Version()
}

// TakeChanged изменился ли срез с прошлого чтения
func (v *Volume) TakeChanged() bool {
	return v.changes.Take()
}

// CopyRegion копирует куб со стороной size от origin в dst.
// Строка (последняя ось) занимает rowPitch байт, слой — rowPitch*rowsPerImage.
// Ячейки вне среза копируются как BoundaryID.
func (v *Volume) CopyRegion(origin vec.Vec3, size int, dst []byte, rowPitch, rowsPerImage int) {
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			row := dst[(x*rowsPerImage+y)*rowPitch:]
			for z := 0; z < size; z++ {
				row[z] = byte(v.Get(origin.Add(vec.Vec3{X: x, Y: y, Z: z})))
			}
		}
	}
}
