package readback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel4d/internal/vec"
)

// fakeSource пишет в каждую ячейку сумму координат
type fakeSource struct {
	calls int
	base  byte
}

func (s *fakeSource) CopyRegion(origin vec.Vec3, size int, dst []byte, rowPitch, rowsPerImage int) {
	s.calls++
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			for z := 0; z < size; z++ {
				dst[(x*rowsPerImage+y)*rowPitch+z] = s.base + byte(origin.X+x+origin.Y+y+origin.Z+z)
			}
		}
	}
}

func TestRowPitch(t *testing.T) {
	assert.Equal(t, 256, RowPitch(1))
	assert.Equal(t, 256, RowPitch(256))
	assert.Equal(t, 512, RowPitch(257))
}

func TestVolumeReadback_DeliversNextFrame(t *testing.T) {
	src := &fakeSource{}
	rb := NewVolumeReadback(src)

	_, ok := rb.Poll()
	assert.False(t, ok, "без запроса нечего отдавать")

	req := Request{Origin: vec.Vec3{X: 1, Y: 2, Z: 3}, Size: 4}
	require.NoError(t, rb.Submit(req))
	assert.True(t, rb.Pending())
	assert.ErrorIs(t, rb.Submit(req), ErrRequestPending)
	assert.Equal(t, 1, src.calls)

	res, ok := rb.Poll()
	require.True(t, ok)
	assert.Equal(t, req, res.Request)
	assert.Equal(t, 256, res.RowPitch)
	assert.Equal(t, byte(6), res.At(0, 0, 0))
	assert.Equal(t, byte(6+3+3+3), res.At(3, 3, 3))
	assert.False(t, rb.Pending())

	_, ok = rb.Poll()
	assert.False(t, ok, "результат забирается один раз")
}

func TestVolumeReadback_Latency(t *testing.T) {
	rb := NewVolumeReadback(&fakeSource{})
	rb.SetLatency(3)
	require.NoError(t, rb.Submit(Request{Size: 2}))

	for i := 0; i < 2; i++ {
		_, ok := rb.Poll()
		assert.False(t, ok, "кадр %d: копия ещё не готова", i)
	}
	_, ok := rb.Poll()
	assert.True(t, ok)

	rb.SetLatency(0)
	require.NoError(t, rb.Submit(Request{Size: 2}))
	_, ok = rb.Poll()
	assert.True(t, ok, "задержка не бывает меньше кадра")
}

func TestVolumeReadback_SnapshotAtSubmit(t *testing.T) {
	src := &fakeSource{}
	rb := NewVolumeReadback(src)
	require.NoError(t, rb.Submit(Request{Size: 2}))
	src.base = 100

	res, ok := rb.Poll()
	require.True(t, ok)
	assert.Equal(t, byte(0), res.At(0, 0, 0), "копия снимается в момент запроса")
}

func TestVolumeReadback_InvalidSize(t *testing.T) {
	rb := NewVolumeReadback(&fakeSource{})
	assert.ErrorIs(t, rb.Submit(Request{}), ErrInvalidSize)
	assert.False(t, rb.Pending())
}
