package camera

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCamera3D_Defaults(t *testing.T) {
	cam := NewCamera3D(mgl64.Vec3{1, 2, 3}, 0.5)

	assert.Equal(t, mgl64.Vec3{1, 2, 3}, cam.Position())
	assert.Equal(t, 0.5, cam.Yaw())
	assert.InDelta(t, math.Pi/2, cam.Pitch(), 1e-12)
	assert.False(t, cam.Active())
}

func TestCamera3D_InactiveIgnoresInput(t *testing.T) {
	cam := NewCamera3D(mgl64.Vec3{}, 0)
	cam.TakeInternal(mgl64.Vec2{800, 600})

	cam.ApplyLookDelta(10, 10, 0.1)
	cam.ApplyMoveInput(MoveInput{Forward: true}, 0.1)

	assert.Equal(t, 0.0, cam.Yaw())
	assert.Equal(t, mgl64.Vec3{}, cam.Position())
	_, changed := cam.TakeInternal(mgl64.Vec2{800, 600})
	assert.False(t, changed)
}

func TestCamera3D_LookDelta(t *testing.T) {
	cam := NewCamera3D(mgl64.Vec3{}, 0)
	cam.SetActive(true)
	cam.Sensitivity = 2
	pitch := cam.Pitch()

	cam.ApplyLookDelta(0.5, 0.25, 0.1)
	assert.InDelta(t, -0.1, cam.Yaw(), 1e-12)
	assert.InDelta(t, pitch+0.05, cam.Pitch(), 1e-12)
}

func TestCamera3D_PitchStaysInsideInterval(t *testing.T) {
	cam := NewCamera3D(mgl64.Vec3{}, 0)
	cam.SetActive(true)
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 10000; i++ {
		dy := (rng.Float64()*2 - 1) * 1e4
		cam.ApplyLookDelta(rng.Float64()-0.5, dy, rng.Float64())
		require.Greater(t, cam.Pitch(), 0.0)
		require.Less(t, cam.Pitch(), math.Pi)
		require.GreaterOrEqual(t, cam.Pitch(), cam.PitchMin)
		require.LessOrEqual(t, cam.Pitch(), cam.PitchMax)
	}

	cam.ApplyLookDelta(0, math.Inf(1), 1)
	assert.Equal(t, cam.PitchMax, cam.Pitch())
	cam.ApplyLookDelta(0, math.Inf(-1), 1)
	assert.Equal(t, cam.PitchMin, cam.Pitch())
}

func TestCamera3D_NoKeysNoMovement(t *testing.T) {
	cam := NewCamera3D(mgl64.Vec3{4, 5, 6}, 1.3)
	cam.SetActive(true)

	for _, dt := range []float64{0.016, 1, 100} {
		cam.ApplyMoveInput(MoveInput{}, dt)
		assert.Equal(t, mgl64.Vec3{4, 5, 6}, cam.Position())
	}
	cam.ApplyMoveInput(MoveInput{Forward: true, Back: true}, 1)
	assert.Equal(t, mgl64.Vec3{4, 5, 6}, cam.Position(), "противоположные клавиши гасят друг друга")
}

func TestCamera3D_MoveFollowsYaw(t *testing.T) {
	tests := []struct {
		name string
		yaw  float64
		in   MoveInput
		want mgl64.Vec3
	}{
		{"forward at yaw 0", 0, MoveInput{Forward: true}, mgl64.Vec3{2, 0, 0}},
		{"left at yaw 0", 0, MoveInput{Left: true}, mgl64.Vec3{0, 2, 0}},
		{"forward at yaw 90", math.Pi / 2, MoveInput{Forward: true}, mgl64.Vec3{0, 2, 0}},
		{"right at yaw 90", math.Pi / 2, MoveInput{Right: true}, mgl64.Vec3{2, 0, 0}},
		{"up ignores yaw", 1.1, MoveInput{Up: true}, mgl64.Vec3{0, 0, 2}},
		{"diagonal is normalized", 0, MoveInput{Forward: true, Left: true}, mgl64.Vec3{math.Sqrt2, math.Sqrt2, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := NewCamera3D(mgl64.Vec3{}, tt.yaw)
			cam.SetActive(true)
			cam.Speed = 4
			cam.ApplyMoveInput(tt.in, 0.5)
			got := cam.Position()
			assert.InDeltaSlice(t, tt.want[:], got[:], 1e-9)
		})
	}
}

func TestCamera3D_RotationLooksForward(t *testing.T) {
	cam := NewCamera3D(mgl64.Vec3{}, 0)
	r := cam.Rotation()

	// Камера смотрит вдоль −Z в своих осях
	look := r.Mul3x1(mgl64.Vec3{0, 0, -1})
	assert.InDeltaSlice(t, []float64{1, 0, 0}, look[:], 1e-9)
	up := r.Mul3x1(mgl64.Vec3{0, 1, 0})
	assert.InDeltaSlice(t, Up[:], up[:], 1e-9)

	cam.SetActive(true)
	cam.ApplyLookDelta(-math.Pi/2, 0, 1)
	look = cam.Rotation().Mul3x1(mgl64.Vec3{0, 0, -1})
	assert.InDeltaSlice(t, []float64{0, 1, 0}, look[:], 1e-9)
}

func TestCamera3D_RotationIsOrthonormalNearPoles(t *testing.T) {
	cam := NewCamera3D(mgl64.Vec3{}, 0.3)
	cam.SetActive(true)
	for _, dy := range []float64{-1e9, 1e9} {
		cam.ApplyLookDelta(0, dy, 1)
		r := cam.Rotation()
		id, gram := mgl64.Ident3(), r.Transpose().Mul3(r)
		assert.InDeltaSlice(t, id[:], gram[:], 1e-6)
		for _, v := range r {
			assert.False(t, math.IsNaN(v))
		}
	}
}

func TestCamera3D_TakeInternal(t *testing.T) {
	cam := NewCamera3D(mgl64.Vec3{1, 2, 3}, 0)
	viewport := mgl64.Vec2{1000, 500}

	internal, changed := cam.TakeInternal(viewport)
	require.True(t, changed)
	assert.Equal(t, [3]float32{1, 2, 3}, internal.Position)
	assert.Equal(t, float32(2), internal.AspectRatio)
	assert.InDelta(t, math.Tan(DefaultFOV/2), internal.TanHalfFOV, 1e-6)
	assert.Equal(t, float32(0), internal.InvRotation[3], "выравнивание столбца нулевое")

	_, changed = cam.TakeInternal(viewport)
	assert.False(t, changed)

	cam.SetPosition(mgl64.Vec3{1, 2, 3})
	_, changed = cam.TakeInternal(viewport)
	assert.False(t, changed, "та же позиция не считается изменением")

	cam.SetPosition(mgl64.Vec3{1, 2, 4})
	_, changed = cam.TakeInternal(viewport)
	assert.True(t, changed)

	_, changed = cam.TakeInternal(mgl64.Vec2{640, 480})
	assert.True(t, changed, "смена окна пересчитывает снимок")
}
