package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/annel0/voxel4d/internal/ndarray"
	"github.com/annel0/voxel4d/internal/readback"
	"github.com/annel0/voxel4d/internal/vec"
	"github.com/annel0/voxel4d/internal/world"
)

// View кэшированное окно среза вокруг агента. До первой доставки
// окно целиком из воздуха. Меняется только через Deliver.
type View struct {
	size   int
	start  vec.Vec3
	voxels *ndarray.Array[world.VoxelID]
	frames uint64
}

// NewView создаёт окно со стороной size
func NewView(size int) *View {
	return &View{
		size:   size,
		voxels: ndarray.Cube(3, size, world.AirID),
	}
}

// Size сторона окна
func (v *View) Size() int { return v.size }

// Start угол окна в координатах среза
func (v *View) Start() vec.Vec3 { return v.start }

// Deliveries сколько окон доставлено
func (v *View) Deliveries() uint64 { return v.frames }

// Get id ячейки по координате среза; вне окна воздух
func (v *View) Get(c vec.Vec3) world.VoxelID {
	l := c.Sub(v.start)
	id, ok := v.voxels.Get(l.X, l.Y, l.Z)
	if !ok {
		return world.AirID
	}
	return id
}

// Bytes копия содержимого окна
func (v *View) Bytes() []byte {
	data := v.voxels.Data()
	out := make([]byte, len(data))
	for i, id := range data {
		out[i] = byte(id)
	}
	return out
}

// Deliver принимает результат копирования, отбрасывая выравнивание строк
func (v *View) Deliver(res readback.Result) {
	if res.Request.Size != v.size {
		v.size = res.Request.Size
		v.voxels = ndarray.Cube(3, v.size, world.AirID)
	}
	for x := 0; x < v.size; x++ {
		for y := 0; y < v.size; y++ {
			for z := 0; z < v.size; z++ {
				v.voxels.Put(world.VoxelID(res.At(x, y, z)), x, y, z)
			}
		}
	}
	v.start = res.Request.Origin
	v.frames++
}

// NextOrigin угол следующего окна, центрированного на позиции агента.
// У края среза окно выходит за него: копия заполняет эти ячейки
// BoundaryID, и граница мира держит агента как стена.
func NextOrigin(pos mgl64.Vec3, windowSize int) vec.Vec3 {
	half := float64(windowSize) / 2
	return vec.RoundVec3(pos.Sub(mgl64.Vec3{half, half, half}))
}

// cellRange диапазон ячеек окна, которые может задеть отрезок [lo, hi]
func (v *View) cellRange(lo, hi float64, start int) (int, int) {
	from := max(int(math.Floor(lo))-start, 0)
	to := min(int(math.Ceil(hi))-start, v.size)
	return from, to
}
