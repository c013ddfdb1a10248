package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/annel0/voxel4d/internal/change"
)

// Параметры 3D камеры по умолчанию
const (
	DefaultFOV         = 1.8
	DefaultSensitivity = 1.0
	DefaultSpeed       = 1.0
	// DefaultPitchMargin отступ наклона от полюсов 0 и π
	DefaultPitchMargin = 0.01
)

// Up вертикальная ось мира
var Up = mgl64.Vec3{0, 0, 1}

// MoveInput зажатые клавиши движения.
// Раскладка: W/S — вперёд/назад (+X/−X в локальных осях камеры),
// A/D — влево/вправо (+Y/−Y), Space/Shift — вверх/вниз (+Z/−Z).
type MoveInput struct {
	Forward bool `json:"forward"`
	Back    bool `json:"back"`
	Left    bool `json:"left"`
	Right   bool `json:"right"`
	Up      bool `json:"up"`
	Down    bool `json:"down"`
}

// Direction сумма единичных направлений в локальных осях камеры
func (m MoveInput) Direction() mgl64.Vec3 {
	var d mgl64.Vec3
	if m.Forward {
		d[0]++
	}
	if m.Back {
		d[0]--
	}
	if m.Left {
		d[1]++
	}
	if m.Right {
		d[1]--
	}
	if m.Up {
		d[2]++
	}
	if m.Down {
		d[2]--
	}
	return d
}

// Any зажата ли хотя бы одна клавиша
func (m MoveInput) Any() bool {
	return m.Forward || m.Back || m.Left || m.Right || m.Up || m.Down
}

// Camera3D камера от первого лица: рыскание без ограничений,
// наклон (от оси Up) ограничен интервалом внутри (0, π).
type Camera3D struct {
	FOV         float64
	Sensitivity float64
	Speed       float64
	PitchMin    float64
	PitchMax    float64

	position mgl64.Vec3
	yaw      float64
	pitch    float64
	active   bool
	changes  change.Tracker

	cached         Camera3DInternal
	cachedViewport mgl64.Vec2
	cacheValid     bool
}

// NewCamera3D создаёт камеру; наклон в середине допустимого интервала
func NewCamera3D(position mgl64.Vec3, yaw float64) *Camera3D {
	c := &Camera3D{
		FOV:         DefaultFOV,
		Sensitivity: DefaultSensitivity,
		Speed:       DefaultSpeed,
		PitchMin:    DefaultPitchMargin,
		PitchMax:    math.Pi - DefaultPitchMargin,
		position:    position,
		yaw:         yaw,
	}
	c.pitch = (c.PitchMin + c.PitchMax) / 2
	return c
}

// SetPitchMargin задаёт отступ наклона от полюсов
func (c *Camera3D) SetPitchMargin(margin float64) {
	margin = min(max(margin, 1e-6), math.Pi/2-1e-6)
	c.PitchMin = margin
	c.PitchMax = math.Pi - margin
	c.pitch = c.clampPitch(c.pitch)
	c.changes.Mark()
}

// Position позиция камеры
func (c *Camera3D) Position() mgl64.Vec3 { return c.position }

// Yaw угол рыскания
func (c *Camera3D) Yaw() float64 { return c.yaw }

// Pitch угол наклона
func (c *Camera3D) Pitch() float64 { return c.pitch }

// Active принимает ли камера ввод
func (c *Camera3D) Active() bool { return c.active }

// SetActive включает/выключает приём ввода (захватом указателя занимается окно)
func (c *Camera3D) SetActive(active bool) {
	if c.active == active {
		return
	}
	c.active = active
	c.changes.Mark()
}

// SetPosition перемещает камеру; изменение отмечается только при реальном сдвиге
func (c *Camera3D) SetPosition(p mgl64.Vec3) {
	if p == c.position {
		return
	}
	c.position = p
	c.changes.Mark()
}

// ApplyLookDelta поворачивает камеру на смещение мыши
func (c *Camera3D) ApplyLookDelta(dx, dy, dt float64) {
	if !c.active {
		return
	}
	if dx == 0 && dy == 0 {
		return
	}
	c.yaw -= dx * c.Sensitivity * dt
	c.pitch = c.clampPitch(c.pitch + dy*c.Sensitivity*dt)
	c.changes.Mark()
}

func (c *Camera3D) clampPitch(p float64) float64 {
	if math.IsNaN(p) {
		return (c.PitchMin + c.PitchMax) / 2
	}
	return min(max(p, c.PitchMin), c.PitchMax)
}

// WishDirection нормализованное направление движения в мировых осях.
// Нулевой вектор, если клавиши гасят друг друга или не нажаты.
func (c *Camera3D) WishDirection(in MoveInput) mgl64.Vec3 {
	d := in.Direction()
	if d.Len() == 0 {
		return mgl64.Vec3{}
	}
	return mgl64.QuatRotate(c.yaw, Up).Rotate(d.Normalize())
}

// ApplyMoveInput сдвигает камеру на speed·dt вдоль направления ввода
func (c *Camera3D) ApplyMoveInput(in MoveInput, dt float64) {
	if !c.active {
		return
	}
	dir := c.WishDirection(in)
	if dir.Len() == 0 || dt == 0 {
		return
	}
	c.position = c.position.Add(dir.Mul(c.Speed * dt))
	c.changes.Mark()
}

// Forward направление взгляда в мировых осях
func (c *Camera3D) Forward() mgl64.Vec3 {
	sp, cp := math.Sincos(c.pitch)
	sy, cy := math.Sincos(c.yaw)
	return mgl64.Vec3{sp * cy, sp * sy, cp}
}

// Rotation поворот камера→мир, построенный через look-at.
// Вырождается при взгляде вдоль Up, поэтому наклон не доходит до полюсов.
func (c *Camera3D) Rotation() mgl64.Mat3 {
	view := mgl64.LookAtV(mgl64.Vec3{}, c.Forward(), Up)
	return view.Mat3().Transpose()
}

// Camera3DInternal снимок камеры для загрузки в рендерер
type Camera3DInternal struct {
	Position    [3]float32  `json:"position"`
	InvRotation [12]float32 `json:"inv_rotation"` // mat3x3 по столбцам, столбец выровнен до 4
	WindowSize  [2]float32  `json:"window_size"`
	AspectRatio float32     `json:"aspect_ratio"`
	TanHalfFOV  float32     `json:"tan_half_fov"`
}

// ToInternal упаковывает камеру для окна viewport (ширина, высота)
func (c *Camera3D) ToInternal(viewport mgl64.Vec2) Camera3DInternal {
	r := c.Rotation()
	out := Camera3DInternal{
		WindowSize: [2]float32{float32(viewport[0]), float32(viewport[1])},
		TanHalfFOV: float32(math.Tan(c.FOV / 2)),
	}
	for i := 0; i < 3; i++ {
		out.Position[i] = float32(c.position[i])
	}
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			out.InvRotation[col*4+row] = float32(r.At(row, col))
		}
	}
	if viewport[1] != 0 {
		out.AspectRatio = float32(viewport[0] / viewport[1])
	}
	return out
}

// TakeInternal возвращает снимок и флаг изменения с прошлого чтения.
// Снимок пересчитывается только при изменении камеры или окна.
func (c *Camera3D) TakeInternal(viewport mgl64.Vec2) (Camera3DInternal, bool) {
	changed := c.changes.Take() || !c.cacheValid || viewport != c.cachedViewport
	if changed {
		c.cached = c.ToInternal(viewport)
		c.cachedViewport = viewport
		c.cacheValid = true
	}
	return c.cached, changed
}
