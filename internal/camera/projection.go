package camera

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/annel0/voxel4d/internal/vec"
)

// Projection4D переводит ячейку локального (видового) 4D пространства
// в ячейку мира: world = R⁻¹·(p − c) + c, где c — центр мира.
// Зависит только от поворота и размера мира.
type Projection4D struct {
	InvRotation mgl64.Mat4
	Offset      mgl64.Vec4
	WorldSize   int
}

// NewProjection4D строит проекцию для ортонормального поворота rotation
func NewProjection4D(rotation mgl64.Mat4, worldSize int) Projection4D {
	inv := rotation.Transpose()
	half := float64(worldSize) / 2
	center := mgl64.Vec4{half, half, half, half}
	return Projection4D{
		InvRotation: inv,
		Offset:      center.Sub(inv.Mul4x1(center)),
		WorldSize:   worldSize,
	}
}

// Point переводит точку локального пространства в мировое
func (p Projection4D) Point(local mgl64.Vec4) mgl64.Vec4 {
	return p.InvRotation.Mul4x1(local).Add(p.Offset)
}

// Cell возвращает мировую ячейку, в которую попадает центр локальной ячейки
func (p Projection4D) Cell(local vec.Vec4) vec.Vec4 {
	center := local.Float().Add(mgl64.Vec4{0.5, 0.5, 0.5, 0.5})
	return vec.FloorVec4(p.Point(center))
}

// Camera4DInternal снимок 4D камеры для загрузки в рендерер
type Camera4DInternal struct {
	InvRotation [16]float32 `json:"inv_rotation"` // column-major
	Offset      [4]float32  `json:"offset"`
	WorldSize   uint32      `json:"world_size"`
}

// Internal упаковывает проекцию
func (p Projection4D) Internal() Camera4DInternal {
	var out Camera4DInternal
	for i, v := range p.InvRotation {
		out.InvRotation[i] = float32(v)
	}
	for i, v := range p.Offset {
		out.Offset[i] = float32(v)
	}
	out.WorldSize = uint32(p.WorldSize)
	return out
}
