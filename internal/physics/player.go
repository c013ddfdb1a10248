package physics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// PlayerStats параметры агента
type PlayerStats struct {
	AirFriction          float64    `yaml:"air_friction"`
	MovementAcceleration float64    `yaml:"movement_acceleration"`
	JumpVelocity         float64    `yaml:"jump_velocity"`
	Gravity              float64    `yaml:"gravity"`
	Size                 mgl64.Vec3 `yaml:"size"` // половина размера коробки
}

// DefaultPlayerStats параметры по умолчанию
func DefaultPlayerStats() PlayerStats {
	return PlayerStats{
		AirFriction:          0.5,
		MovementAcceleration: 20,
		JumpVelocity:         6,
		Gravity:              9.8,
		Size:                 mgl64.Vec3{0.3, 0.3, 0.9},
	}
}

// Player агент физики. Смерть терминальна: мёртвый агент не
// интегрируется, для продолжения нужен новый агент.
type Player struct {
	ID uuid.UUID

	position mgl64.Vec3
	velocity mgl64.Vec3
	stats    PlayerStats
	dead     bool
	grounded bool
}

// NewPlayer создаёт живого агента с нулевой скоростью
func NewPlayer(position mgl64.Vec3, stats PlayerStats) *Player {
	return &Player{
		ID:       uuid.New(),
		position: position,
		stats:    stats,
	}
}

// Position позиция центра коробки
func (p *Player) Position() mgl64.Vec3 { return p.position }

// Velocity скорость
func (p *Player) Velocity() mgl64.Vec3 { return p.velocity }

// Stats параметры
func (p *Player) Stats() PlayerStats { return p.stats }

// Dead погиб ли агент
func (p *Player) Dead() bool { return p.dead }

// Grounded стоял ли агент на опоре после последнего шага
func (p *Player) Grounded() bool { return p.grounded }

// Box границы коробки [position − size, position + size]
func (p *Player) Box() (mgl64.Vec3, mgl64.Vec3) {
	return p.position.Sub(p.stats.Size), p.position.Add(p.stats.Size)
}

// Accelerate добавляет dir·MovementAcceleration·dt к скорости.
// Для мёртвого агента ничего не делает.
func (p *Player) Accelerate(dir mgl64.Vec3, dt float64) {
	if p.dead {
		return
	}
	p.velocity = p.velocity.Add(dir.Mul(p.stats.MovementAcceleration * dt))
}

// Jump задаёт вертикальную скорость прыжка, если агент стоит на опоре
func (p *Player) Jump() bool {
	if p.dead || !p.grounded {
		return false
	}
	p.velocity[2] = p.stats.JumpVelocity
	p.grounded = false
	return true
}

// integrate: v += (−g·ẑ − f·v)·dt; x += v·dt
func (p *Player) integrate(dt float64) {
	accel := mgl64.Vec3{0, 0, -p.stats.Gravity}.Sub(p.velocity.Mul(p.stats.AirFriction))
	p.velocity = p.velocity.Add(accel.Mul(dt))
	p.position = p.position.Add(p.velocity.Mul(dt))
}
