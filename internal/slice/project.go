package slice

import (
	"github.com/annel0/voxel4d/internal/camera"
	"github.com/annel0/voxel4d/internal/logging"
	"github.com/annel0/voxel4d/internal/vec"
	"github.com/annel0/voxel4d/internal/world"
)

// Origin смещение среза внутри мира: срез центрирован по x, y, z,
// а по w проходит через середину мира.
func Origin(worldSize, viewSize int) vec.Vec4 {
	off := (worldSize - viewSize) / 2
	return vec.Vec4{X: off, Y: off, Z: off, W: worldSize / 2}
}

// Project заполняет срез ячейками мира под проекцией p.
// Ячейка среза (x, y, z) — это локальная 4D ячейка Origin + (x, y, z, 0),
// переведённая в мировые координаты через обратный поворот.
func Project(w *world.World4D, p camera.Projection4D, v *Volume) {
	origin := Origin(w.Size(), v.size)
	for x := 0; x < v.size; x++ {
		for y := 0; y < v.size; y++ {
			for z := 0; z < v.size; z++ {
				local := origin.Add(vec.Vec4{X: x, Y: y, Z: z})
				v.voxels.Put(w.Sample(p.Cell(local)), x, y, z)
			}
		}
	}
	v.projection = p
	v.projectionSeen = true
	v.changes.Mark()
}

// Update пересчитывает срез, только если изменился мир или проекция.
// Возвращает true, если пересчёт был.
func (v *Volume) Update(w *world.World4D, p camera.Projection4D) bool {
	worldChanged := v.worldSeen.Take(w.Version())
	if !worldChanged && v.projectionSeen && v.projection == p {
		return false
	}
	Project(w, p, v)
	logging.Trace("🧊 Срез %d³ пересчитан (мир v%d)", v.size, w.Version())
	return true
}
