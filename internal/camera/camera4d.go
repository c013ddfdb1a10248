package camera

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/annel0/voxel4d/internal/change"
	"github.com/annel0/voxel4d/internal/logging"
)

// DefaultRotateTime длительность перехода по умолчанию
const DefaultRotateTime = 500 * time.Millisecond

// Rotating активный переход между двумя поворотами
type Rotating struct {
	Base    mgl64.Mat4    // поворот в момент старта
	Command RotateCommand // генератор и направление
	Start   time.Time
}

// Target поворот, в который переход придёт при t = 1
func (r Rotating) Target() mgl64.Mat4 {
	return snapPermutation(r.Command.At(1).Mul4(r.Base))
}

// Camera4D камера с дискретными поворотами через четвёртую ось.
// Состояния: покой (rotating == nil) и поворот. Переход нельзя
// прервать или поставить в очередь.
type Camera4D struct {
	RotateTime time.Duration

	rotation mgl64.Mat4
	rotating *Rotating
	changes  change.Tracker

	projection        Projection4D
	projectionVersion uint64
	projectionValid   bool
}

// NewCamera4D создаёт камеру в единичном повороте
func NewCamera4D(rotateTime time.Duration) *Camera4D {
	if rotateTime <= 0 {
		rotateTime = DefaultRotateTime
	}
	return &Camera4D{
		RotateTime: rotateTime,
		rotation:   mgl64.Ident4(),
	}
}

// Rotation текущий поворот
func (c *Camera4D) Rotation() mgl64.Mat4 {
	return c.rotation
}

// Rotating возвращает активный переход
func (c *Camera4D) Rotating() (Rotating, bool) {
	if c.rotating == nil {
		return Rotating{}, false
	}
	return *c.rotating, true
}

// IsRotating есть ли активный переход
func (c *Camera4D) IsRotating() bool {
	return c.rotating != nil
}

// Rotate начинает переход. Во время поворота команда молча
// отбрасывается и возвращается false.
func (c *Camera4D) Rotate(cmd RotateCommand, now time.Time) bool {
	if c.rotating != nil {
		return false
	}
	c.rotating = &Rotating{
		Base:    c.rotation,
		Command: cmd,
		Start:   now,
	}
	logging.Debug("🔄 Поворот %s начат", cmd)
	return true
}

// Tick продвигает переход по настенным часам. При прогрессе 1
// поворот приравнивается точной целевой матрице, переход снимается.
// Возвращает true, если поворот изменился.
func (c *Camera4D) Tick(now time.Time) bool {
	if c.rotating == nil {
		return false
	}
	r := c.rotating
	t := 1.0
	if c.RotateTime > 0 {
		t = float64(now.Sub(r.Start)) / float64(c.RotateTime)
	}
	t = min(max(t, 0), 1)

	if t == 1 {
		c.rotation = r.Target()
		c.rotating = nil
		logging.Debug("✅ Поворот %s завершён", r.Command)
	} else {
		c.rotation = r.Command.At(t).Mul4(r.Base)
	}
	c.changes.Mark()
	return true
}

// Progress прогресс активного перехода в [0, 1]; 0 в покое
func (c *Camera4D) Progress(now time.Time) float64 {
	if c.rotating == nil {
		return 0
	}
	if c.RotateTime <= 0 {
		return 1
	}
	t := float64(now.Sub(c.rotating.Start)) / float64(c.RotateTime)
	return min(max(t, 0), 1)
}

// Projection проекция для размера мира; пересчитывается только при
// изменении поворота или размера.
func (c *Camera4D) Projection(worldSize int) Projection4D {
	if !c.projectionValid || c.projectionVersion != c.changes.Version() || c.projection.WorldSize != worldSize {
		c.projection = NewProjection4D(c.rotation, worldSize)
		c.projectionVersion = c.changes.Version()
		c.projectionValid = true
	}
	return c.projection
}

// Changed изменился ли поворот с последнего TakeInternal
func (c *Camera4D) Changed() bool {
	return c.changes.Changed()
}

// TakeInternal снимок для рендерера и флаг «изменено с прошлого чтения»
func (c *Camera4D) TakeInternal(worldSize int) (Camera4DInternal, bool) {
	changed := c.changes.Take()
	return c.Projection(worldSize).Internal(), changed
}
