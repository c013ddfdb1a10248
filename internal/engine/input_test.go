package engine

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel4d/internal/camera"
)

func TestInputQueue_Aggregates(t *testing.T) {
	q := NewInputQueue()
	first := camera.RotateCommand{Generator: camera.GeneratorXW}
	second := camera.RotateCommand{Generator: camera.GeneratorYW}

	require.NoError(t, q.Push(Event{Kind: EventMouse, DX: 1, DY: 2}))
	require.NoError(t, q.Push(Event{Kind: EventMouse, DX: 0.5, DY: -1}))
	require.NoError(t, q.Push(Event{Kind: EventRotate, Rotate: &first}))
	require.NoError(t, q.Push(Event{Kind: EventRotate, Rotate: &second}))
	require.NoError(t, q.Push(Event{Kind: EventKeys, Keys: &camera.MoveInput{Left: true}}))
	require.NoError(t, q.Push(Event{Kind: EventViewport, Width: 800, Height: 600}))
	require.NoError(t, q.Push(Event{Kind: EventGrab}))

	in := q.Drain()
	assert.Equal(t, 1.5, in.LookDX)
	assert.Equal(t, 1.0, in.LookDY)
	require.NotNil(t, in.Rotate)
	assert.Equal(t, first, *in.Rotate)
	assert.True(t, in.Keys.Left)
	assert.Equal(t, &mgl64.Vec2{800, 600}, in.Viewport)
	assert.True(t, in.Grab)

	in = q.Drain()
	assert.Equal(t, Input{Keys: camera.MoveInput{Left: true}}, in, "клавиши остаются зажатыми")
}

func TestInputQueue_GrabEscapeLastWins(t *testing.T) {
	q := NewInputQueue()
	require.NoError(t, q.Push(Event{Kind: EventGrab}))
	require.NoError(t, q.Push(Event{Kind: EventEscape}))
	in := q.Drain()
	assert.False(t, in.Grab)
	assert.True(t, in.Escape)
}

func TestEvent_Validate(t *testing.T) {
	q := NewInputQueue()
	assert.Error(t, q.Push(Event{Kind: "teleport"}))
	assert.Error(t, q.Push(Event{Kind: EventKeys}))
	assert.Error(t, q.Push(Event{Kind: EventRotate}))
	assert.Error(t, q.Push(Event{Kind: EventViewport, Width: 10}))
	assert.Equal(t, Input{}, q.Drain())
}
