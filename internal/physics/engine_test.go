package physics

import (
	"bytes"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel4d/internal/camera"
	"github.com/annel0/voxel4d/internal/logging"
	"github.com/annel0/voxel4d/internal/readback"
	"github.com/annel0/voxel4d/internal/slice"
	"github.com/annel0/voxel4d/internal/vec"
	"github.com/annel0/voxel4d/internal/world"
)

type engineFixture struct {
	world    *world.World4D
	volume   *slice.Volume
	rb       *readback.VolumeReadback
	engine   *Engine
	player   *Player
	material world.VoxelID
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	w := world.NewWorld4D(8)
	stone := w.InsertType(world.VoxelType{Color: world.NewColor(0.4, 0.4, 0.4, 1)})
	w.Set(vec.Vec4{X: 6, Y: 6, Z: 6, W: 4}, stone)

	volume := slice.NewVolume(8)
	volume.Update(w, camera.NewProjection4D(mgl64.Ident4(), 8))

	rb := readback.NewVolumeReadback(volume)
	return &engineFixture{
		world:    w,
		volume:   volume,
		rb:       rb,
		engine:   NewEngine(4, rb),
		player:   NewPlayer(mgl64.Vec3{4.5, 4.5, 4.5}, still(mgl64.Vec3{0.25, 0.25, 0.25})),
		material: stone,
	}
}

func TestEngine_WindowStartsAsAir(t *testing.T) {
	f := newEngineFixture(t)
	for _, b := range f.engine.View().Bytes() {
		require.Equal(t, byte(world.AirID), b)
	}

	res, err := f.engine.Update(f.player, 0.1)
	require.NoError(t, err)
	assert.False(t, res.Delivered)
	assert.True(t, res.Requested)
	assert.False(t, res.Stalled)
}

func TestEngine_WindowLagsOneFrame(t *testing.T) {
	f := newEngineFixture(t)

	_, err := f.engine.Update(f.player, 0.1)
	require.NoError(t, err)
	assert.Equal(t, world.AirID, f.engine.View().Get(vec.Vec3{X: 6, Y: 6, Z: 6}))

	res, err := f.engine.Update(f.player, 0.1)
	require.NoError(t, err)
	require.True(t, res.Delivered)
	assert.Equal(t, vec.Vec3{X: 3, Y: 3, Z: 3}, f.engine.View().Start())
	assert.Equal(t, f.material, f.engine.View().Get(vec.Vec3{X: 6, Y: 6, Z: 6}))
	assert.Equal(t, uint64(1), f.engine.View().Deliveries())
}

func TestEngine_StalledRefreshKeepsPreviousWindow(t *testing.T) {
	f := newEngineFixture(t)

	_, err := f.engine.Update(f.player, 0.1)
	require.NoError(t, err)
	f.rb.SetLatency(3)
	_, err = f.engine.Update(f.player, 0.1)
	require.NoError(t, err)
	before := f.engine.View().Bytes()

	// Мир меняется, а копирование зависло
	f.world.Set(vec.Vec4{X: 6, Y: 6, Z: 6, W: 4}, world.AirID)
	f.volume.Update(f.world, camera.NewProjection4D(mgl64.Ident4(), 8))

	for frame := 0; frame < 2; frame++ {
		res, err := f.engine.Update(f.player, 0.1)
		require.NoError(t, err)
		assert.False(t, res.Delivered)
		assert.True(t, res.Stalled)
		assert.False(t, res.Requested)
		assert.Equal(t, before, f.engine.View().Bytes(), "кадр %d", frame)
	}

	res, err := f.engine.Update(f.player, 0.1)
	require.NoError(t, err)
	assert.True(t, res.Delivered)
	assert.True(t, res.Requested)
}

func TestEngine_ReportsDeath(t *testing.T) {
	f := newEngineFixture(t)
	f.player = NewPlayer(mgl64.Vec3{6.5, 6.5, 6.5}, still(mgl64.Vec3{0.5, 0.5, 0.5}))
	var out bytes.Buffer
	f.engine.SetLogger(logging.NewWriterLogger("physics", &out, nil))

	_, err := f.engine.Update(f.player, 0.1)
	require.NoError(t, err)
	res, err := f.engine.Update(f.player, 0.1)
	require.NoError(t, err)

	assert.True(t, res.Died)
	assert.True(t, res.Collision.Crushed())
	assert.True(t, f.player.Dead())
	assert.Contains(t, out.String(), "[WARN] [physics] 💀 Агент")

	res, err = f.engine.Update(f.player, 0.1)
	require.NoError(t, err)
	assert.False(t, res.Died, "смерть сообщается один раз")
}

func TestEngine_WorldBoundaryStopsAgent(t *testing.T) {
	tests := []struct {
		name string
		axis int
		dir  float64
		want float64
	}{
		{"+x", 0, 1, 7.75},
		{"-x", 0, -1, 0.25},
		{"+y", 1, 1, 7.75},
		{"-y", 1, -1, 0.25},
		{"+z", 2, 1, 7.75},
		{"-z", 2, -1, 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Пустой мир: остановить агента может только граница
			w := world.NewWorld4D(8)
			volume := slice.NewVolume(8)
			volume.Update(w, camera.NewProjection4D(mgl64.Ident4(), 8))
			e := NewEngine(4, readback.NewVolumeReadback(volume))

			p := NewPlayer(mgl64.Vec3{4.5, 4.5, 4.5}, still(mgl64.Vec3{0.25, 0.25, 0.25}))
			p.velocity[tt.axis] = 4 * tt.dir

			for frame := 0; frame < 20; frame++ {
				_, err := e.Update(p, 0.125)
				require.NoError(t, err)
			}

			require.False(t, p.Dead())
			pos := p.Position()
			assert.InDelta(t, tt.want, pos[tt.axis], 1e-12)
			assert.Equal(t, 0.0, p.Velocity()[tt.axis])
			for axis := 0; axis < 3; axis++ {
				if axis != tt.axis {
					assert.Equal(t, 4.5, pos[axis])
				}
			}
		})
	}
}
