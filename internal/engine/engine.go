// Package engine связывает компоненты в явный кадровый конвейер:
// ввод → камеры → срез → физика → синхронизация камеры → снимок.
package engine

import (
	"context"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/annel0/voxel4d/internal/camera"
	"github.com/annel0/voxel4d/internal/change"
	"github.com/annel0/voxel4d/internal/config"
	"github.com/annel0/voxel4d/internal/diagnostics"
	"github.com/annel0/voxel4d/internal/eventbus"
	"github.com/annel0/voxel4d/internal/logging"
	"github.com/annel0/voxel4d/internal/observability"
	"github.com/annel0/voxel4d/internal/physics"
	"github.com/annel0/voxel4d/internal/readback"
	"github.com/annel0/voxel4d/internal/slice"
	"github.com/annel0/voxel4d/internal/world"
)

// eventSource источник событий шины
const eventSource = "engine"

// DefaultViewport размер окна до первого события viewport
var DefaultViewport = mgl64.Vec2{1280, 720}

// Engine владеет миром, камерами, срезом и физикой
type Engine struct {
	world    *world.World4D
	cam3     *camera.Camera3D
	cam4     *camera.Camera4D
	volume   *slice.Volume
	readback *readback.VolumeReadback
	physics  *physics.Engine
	player   *physics.Player

	stats  physics.PlayerStats
	spawn  mgl64.Vec3
	follow bool

	input    *InputQueue
	metrics  *diagnostics.FrameMetrics
	viewport mgl64.Vec2
	frame    uint64

	worldSeen   change.Observer
	paletteSeen change.Observer
	lastMeta    Meta
	metaValid   bool
}

// New собирает конвейер по конфигурации. metrics может быть nil.
func New(cfg *config.Config, w *world.World4D, metrics *diagnostics.FrameMetrics) *Engine {
	pc := cfg.Physics
	stats := physics.PlayerStats{
		AirFriction:          pc.AirFriction,
		MovementAcceleration: pc.MovementAcceleration,
		JumpVelocity:         pc.JumpVelocity,
		Gravity:              pc.Gravity,
		Size:                 mgl64.Vec3(pc.Size),
	}
	spawn := mgl64.Vec3(pc.Spawn)

	cam3 := camera.NewCamera3D(spawn, 0)
	cam3.FOV = cfg.Camera3D.FOV
	cam3.Sensitivity = cfg.Camera3D.Sensitivity
	cam3.Speed = cfg.Camera3D.Speed
	cam3.SetPitchMargin(cfg.Camera3D.PitchMargin)

	volume := slice.NewVolume(cfg.View.Size)
	rb := readback.NewVolumeReadback(volume)
	rb.SetLatency(pc.ReadbackLatency)

	e := &Engine{
		world:    w,
		cam3:     cam3,
		cam4:     camera.NewCamera4D(time.Duration(cfg.Camera4D.RotateMillis) * time.Millisecond),
		volume:   volume,
		readback: rb,
		physics:  physics.NewEngine(cfg.View.WindowSize, rb),
		stats:    stats,
		spawn:    spawn,
		follow:   pc.Enabled,
		input:    NewInputQueue(),
		metrics:  metrics,
		viewport: DefaultViewport,
	}
	if e.follow {
		e.Respawn(context.Background())
	}
	return e
}

// Input очередь ввода
func (e *Engine) Input() *InputQueue { return e.input }

// World мир
func (e *Engine) World() *world.World4D { return e.world }

// Camera3D камера от первого лица
func (e *Engine) Camera3D() *camera.Camera3D { return e.cam3 }

// Camera4D 4D камера
func (e *Engine) Camera4D() *camera.Camera4D { return e.cam4 }

// Volume 3D срез
func (e *Engine) Volume() *slice.Volume { return e.volume }

// Physics движок физики
func (e *Engine) Physics() *physics.Engine { return e.physics }

// Readback канал обновления окна физики
func (e *Engine) Readback() *readback.VolumeReadback { return e.readback }

// Player текущий агент; nil в режиме свободного полёта
func (e *Engine) Player() *physics.Player { return e.player }

// Respawn создаёт нового агента в точке появления. Мёртвый агент
// не оживает: появляется новый с новым ID.
func (e *Engine) Respawn(ctx context.Context) *physics.Player {
	e.player = physics.NewPlayer(e.spawn, e.stats)
	e.follow = true
	e.cam3.SetPosition(e.spawn)
	if e.metrics != nil {
		e.metrics.AgentSpawned()
	}
	logging.Info("🧍 Агент %s появился в (%.1f, %.1f, %.1f)", e.player.ID, e.spawn[0], e.spawn[1], e.spawn[2])
	e.emit(ctx, eventbus.TypeAgentSpawned, 1, eventbus.AgentEvent{
		AgentID:  e.player.ID.String(),
		Position: e.spawn,
	})
	return e.player
}

// Update выполняет один кадр. now — настенное время (для 4D поворота),
// dt — шаг в секундах для ввода и физики.
func (e *Engine) Update(ctx context.Context, now time.Time, dt float64) (Snapshot, error) {
	started := time.Now()
	e.frame++

	ctx, span := observability.Tracer().Start(ctx, "engine.Update",
		trace.WithAttributes(attribute.Int64("frame", int64(e.frame))))
	defer span.End()

	in := e.input.Drain()
	e.applyInput(ctx, in, now, dt)

	if e.cam4.IsRotating() {
		rot, _ := e.cam4.Rotating()
		e.cam4.Tick(now)
		if !e.cam4.IsRotating() {
			e.emit(ctx, eventbus.TypeRotationFinished, 1, eventbus.RotationEvent{
				Generator: rot.Command.Generator.String(),
				Inverse:   rot.Command.Inverse,
			})
		}
	}

	e.applyMovement(in.Keys, dt)

	if e.volume.Update(e.world, e.cam4.Projection(e.world.Size())) && e.metrics != nil {
		e.metrics.SliceRecomputed()
	}

	if err := e.stepPhysics(ctx, span, dt); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Snapshot{}, err
	}

	if e.follow && e.player != nil && !e.player.Dead() {
		e.cam3.SetPosition(e.player.Position())
	}

	snap := e.snapshot(now)
	span.SetAttributes(attribute.Bool("snapshot.changed", snap.AnyChanged()))
	if e.metrics != nil {
		e.metrics.ObserveFrame(time.Since(started))
	}
	return snap, nil
}

func (e *Engine) applyInput(ctx context.Context, in Input, now time.Time, dt float64) {
	if in.Grab {
		e.cam3.SetActive(true)
	}
	if in.Escape {
		e.cam3.SetActive(false)
	}
	if in.Viewport != nil {
		e.viewport = *in.Viewport
	}
	e.cam3.ApplyLookDelta(in.LookDX, in.LookDY, dt)

	if in.Rotate != nil && e.cam4.Rotate(*in.Rotate, now) {
		if e.metrics != nil {
			e.metrics.RotationStarted(in.Rotate.Generator.String())
		}
		e.emit(ctx, eventbus.TypeRotationStarted, 1, eventbus.RotationEvent{
			Generator: in.Rotate.Generator.String(),
			Inverse:   in.Rotate.Inverse,
		})
	}

	if in.Respawn {
		e.Respawn(ctx)
	}
}

// applyMovement: без агента клавиши двигают камеру, с агентом
// разгоняют его по горизонтали, а Space прыгает
func (e *Engine) applyMovement(keys camera.MoveInput, dt float64) {
	if !e.follow || e.player == nil {
		e.cam3.ApplyMoveInput(keys, dt)
		return
	}
	if !e.cam3.Active() || e.player.Dead() {
		return
	}

	flat := keys
	flat.Up, flat.Down = false, false
	if dir := e.cam3.WishDirection(flat); dir.Len() > 0 {
		e.player.Accelerate(dir, dt)
	}
	if keys.Up {
		e.player.Jump()
	}
}

func (e *Engine) stepPhysics(ctx context.Context, span trace.Span, dt float64) error {
	if !e.follow || e.player == nil {
		return nil
	}

	res, err := e.physics.Update(e.player, dt)
	if err != nil {
		return err
	}
	span.SetAttributes(
		attribute.Bool("physics.delivered", res.Delivered),
		attribute.Bool("physics.stalled", res.Stalled),
		attribute.Bool("physics.collided", res.Collision.Collided),
	)

	if e.metrics != nil {
		if res.Delivered {
			e.metrics.WindowRefreshed()
		}
		if res.Stalled {
			e.metrics.WindowStalled()
		}
		if res.Collision.Collided {
			e.metrics.Collided()
		}
	}

	if res.Died {
		if e.metrics != nil {
			e.metrics.AgentDied()
		}
		e.emit(ctx, eventbus.TypeAgentDied, 5, eventbus.AgentEvent{
			AgentID:  e.player.ID.String(),
			Position: e.player.Position(),
			Crushed:  res.Collision.Crushed(),
		})
	}
	return nil
}

func (e *Engine) snapshot(now time.Time) Snapshot {
	snap := Snapshot{Frame: e.frame}

	snap.Camera3D.Value, snap.Camera3D.Changed = e.cam3.TakeInternal(e.viewport)
	snap.Camera4D.Value, snap.Camera4D.Changed = e.cam4.TakeInternal(e.world.Size())

	if e.worldSeen.Take(e.world.Version()) {
		snap.Voxels = Tracked[[]byte]{Value: e.world.Bytes(), Changed: true}
	}
	if e.paletteSeen.Take(uint64(e.world.Palette().Len())) {
		snap.Palette = Tracked[[world.PaletteCapacity]world.InternalType]{Value: e.world.Palette().Internal(), Changed: true}
	}
	if e.volume.TakeChanged() {
		snap.View = Tracked[[]byte]{Value: e.volume.Bytes(), Changed: true}
	}

	meta := e.meta(now)
	snap.Meta = Tracked[Meta]{Value: meta, Changed: !e.metaValid || meta != e.lastMeta}
	e.lastMeta, e.metaValid = meta, true
	return snap
}

func (e *Engine) meta(now time.Time) Meta {
	start := e.physics.View().Start()
	m := Meta{
		WorldSize:        e.world.Size(),
		PaddedSize:       e.world.PaddedSize(),
		ViewSize:         e.volume.Size(),
		WindowSize:       e.physics.View().Size(),
		WindowOrigin:     [3]int{start.X, start.Y, start.Z},
		PointerLocked:    e.cam3.Active(),
		Rotating:         e.cam4.IsRotating(),
		RotationProgress: e.cam4.Progress(now),
		Follow:           e.follow,
	}
	if e.player != nil {
		m.AgentID = e.player.ID.String()
		m.AgentDead = e.player.Dead()
	}
	return m
}

func (e *Engine) emit(ctx context.Context, eventType string, priority int, payload any) {
	if err := eventbus.Emit(ctx, eventSource, eventType, priority, payload); err != nil {
		logging.Warn("Не удалось опубликовать %s: %v", eventType, err)
	}
}
