package world

import (
	"errors"
	"testing"

	"github.com/annel0/voxel4d/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorld3D_RoundTripAndBytes(t *testing.T) {
	w := NewWorld3D(5)
	assert.Equal(t, 5, w.Size())
	assert.Equal(t, 1, w.Palette().Len())

	id := w.InsertType(VoxelType{Color: NewColor(0.212, 0.247, 0.278, 1.0)})
	w.Set(vec.Vec3{X: 1, Y: 1, Z: 1}, id)

	assert.Equal(t, id, w.Get(vec.Vec3{X: 1, Y: 1, Z: 1}))
	assert.Equal(t, AirID, w.Get(vec.Vec3{X: 1, Y: 1, Z: 2}))

	data := w.Bytes()
	require.Len(t, data, 125)
	assert.Equal(t, byte(id), data[25+5+1])
}

func TestWorld3D_OutOfBounds(t *testing.T) {
	w := NewWorld3D(2)
	_, err := w.Lookup(vec.Vec3{X: 2})
	assert.True(t, errors.Is(err, ErrOutOfBounds))
	assert.Panics(t, func() { w.Set(vec.Vec3{Z: -1}, AirID) })
}
