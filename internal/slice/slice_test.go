package slice

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel4d/internal/camera"
	"github.com/annel0/voxel4d/internal/vec"
	"github.com/annel0/voxel4d/internal/world"
)

func newTestWorld(t *testing.T) (*world.World4D, world.VoxelID) {
	t.Helper()
	w := world.NewWorld4D(4)
	stone := w.InsertType(world.VoxelType{Color: world.NewColor(0.5, 0.5, 0.5, 1)})
	return w, stone
}

func TestProject_Identity(t *testing.T) {
	w, stone := newTestWorld(t)
	w.Set(vec.Vec4{X: 1, Y: 2, Z: 3, W: 2}, stone)
	w.Set(vec.Vec4{X: 0, Y: 0, Z: 0, W: 0}, stone) // другой w не виден

	v := NewVolume(4)
	Project(w, camera.NewProjection4D(mgl64.Ident4(), 4), v)

	assert.Equal(t, stone, v.Get(vec.Vec3{X: 1, Y: 2, Z: 3}))
	assert.Equal(t, world.AirID, v.Get(vec.Vec3{}))
	assert.Equal(t, world.BoundaryID, v.Get(vec.Vec3{X: -1}))
	assert.Equal(t, world.BoundaryID, v.Get(vec.Vec3{Z: 4}))
}

func TestProject_RotatedThroughW(t *testing.T) {
	w, stone := newTestWorld(t)
	// При повороте XW локальный x смотрит вдоль мировой −w
	w.Set(vec.Vec4{X: 2, Y: 1, Z: 1, W: 0}, stone)

	v := NewVolume(4)
	rot := camera.RotateCommand{Generator: camera.GeneratorXW}.At(1)
	Project(w, camera.NewProjection4D(rot, 4), v)

	assert.Equal(t, stone, v.Get(vec.Vec3{X: 3, Y: 1, Z: 1}))
	count := 0
	for _, b := range v.Bytes() {
		if world.VoxelID(b) == stone {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestProject_SmallerViewIsCentered(t *testing.T) {
	w := world.NewWorld4D(6)
	stone := w.InsertType(world.VoxelType{})
	w.Set(vec.Vec4{X: 1, Y: 1, Z: 1, W: 3}, stone)

	assert.Equal(t, vec.Vec4{X: 1, Y: 1, Z: 1, W: 3}, Origin(6, 4))

	v := NewVolume(4)
	Project(w, camera.NewProjection4D(mgl64.Ident4(), 6), v)
	assert.Equal(t, stone, v.Get(vec.Vec3{}))
}

func TestVolume_UpdateOnlyOnChange(t *testing.T) {
	w, stone := newTestWorld(t)
	p := camera.NewProjection4D(mgl64.Ident4(), 4)
	v := NewVolume(4)

	require.True(t, v.Update(w, p))
	assert.True(t, v.TakeChanged())
	assert.False(t, v.Update(w, p))
	assert.False(t, v.TakeChanged())

	w.Set(vec.Vec4{X: 0, Y: 0, Z: 0, W: 2}, stone)
	require.True(t, v.Update(w, p))
	assert.Equal(t, stone, v.Get(vec.Vec3{}))

	rotated := camera.NewProjection4D(camera.RotateCommand{Generator: camera.GeneratorYW}.At(1), 4)
	assert.True(t, v.Update(w, rotated))
	assert.False(t, v.Update(w, rotated))
}

func TestVolume_CopyRegion(t *testing.T) {
	w, stone := newTestWorld(t)
	w.Set(vec.Vec4{X: 3, Y: 3, Z: 3, W: 2}, stone)
	v := NewVolume(4)
	Project(w, camera.NewProjection4D(mgl64.Ident4(), 4), v)

	const pitch, rows = 8, 4
	dst := make([]byte, 2*rows*pitch)
	v.CopyRegion(vec.Vec3{X: 3, Y: 3, Z: 3}, 2, dst, pitch, rows)

	assert.Equal(t, byte(stone), dst[0])
	assert.Equal(t, byte(world.BoundaryID), dst[1], "за краем среза граница")
	assert.Equal(t, byte(world.BoundaryID), dst[pitch])
	assert.Equal(t, byte(0), dst[2], "паддинг строки не трогается")
}
