package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/annel0/voxel4d/internal/world"
)

// ContactEpsilon перекрытие меньше этого значения считается касанием
const ContactEpsilon = 1e-9

// CollisionResult итог проверки коробки против окна
type CollisionResult struct {
	Shift      mgl64.Vec3 // сдвиг, выталкивающий коробку
	Collided   bool
	Conflicted [3]bool // ось зажата с обеих сторон
}

// Crushed все оси зажаты, выхода нет
func (r CollisionResult) Crushed() bool {
	return r.Conflicted[0] && r.Conflicted[1] && r.Conflicted[2]
}

// Collide проверяет коробку [boxMin, boxMax] против всех твёрдых ячеек окна.
//
// Для каждой ячейки, пересекающей коробку строго по всем трём осям,
// на каждой оси берётся меньший из двух выталкивающих сдвигов
// (в + или в −). В агрегат попадает только ось с наименьшим сдвигом
// этой ячейки. Так пол под агентом толкает вверх, а не вбок.
// Равные сдвиги в обе стороны учитываются оба.
//
// По каждой оси копятся минимальный отрицательный и максимальный
// положительный сдвиг; ось с обоими ненулевыми — зажата.
func (v *View) Collide(boxMin, boxMax mgl64.Vec3) CollisionResult {
	var minShift, maxShift mgl64.Vec3

	x0, x1 := v.cellRange(boxMin[0], boxMax[0], v.start.X)
	y0, y1 := v.cellRange(boxMin[1], boxMax[1], v.start.Y)
	z0, z1 := v.cellRange(boxMin[2], boxMax[2], v.start.Z)

	for x := x0; x < x1; x++ {
		for y := y0; y < y1; y++ {
			for z := z0; z < z1; z++ {
				if v.voxels.At(x, y, z) == world.AirID {
					continue
				}
				cell := mgl64.Vec3{
					float64(x + v.start.X),
					float64(y + v.start.Y),
					float64(z + v.start.Z),
				}
				neg, pos, ok := cellPush(cell, boxMin, boxMax)
				if !ok {
					continue
				}
				for axis := 0; axis < 3; axis++ {
					minShift[axis] = math.Min(minShift[axis], neg[axis])
					maxShift[axis] = math.Max(maxShift[axis], pos[axis])
				}
			}
		}
	}

	var res CollisionResult
	for axis := 0; axis < 3; axis++ {
		if minShift[axis] != 0 || maxShift[axis] != 0 {
			res.Collided = true
		}
		res.Conflicted[axis] = minShift[axis] != 0 && maxShift[axis] != 0
		switch {
		case res.Conflicted[axis]:
		case minShift[axis] == 0:
			res.Shift[axis] = maxShift[axis]
		default:
			res.Shift[axis] = minShift[axis]
		}
	}
	return res
}

// cellPush выталкивающие сдвиги коробки из единичной ячейки cell.
// neg — отрицательные, pos — положительные; ненулевыми остаются только
// оси с наименьшим по модулю сдвигом. ok = false, если пересечения нет.
func cellPush(cell, boxMin, boxMax mgl64.Vec3) (neg, pos mgl64.Vec3, ok bool) {
	var best [3]float64
	var dir [3]int // -1, +1 или 0 при равенстве
	for axis := 0; axis < 3; axis++ {
		up := cell[axis] + 1 - boxMin[axis]
		down := cell[axis] - boxMax[axis]
		if up <= ContactEpsilon || down >= -ContactEpsilon {
			return neg, pos, false
		}
		switch {
		case up < -down:
			best[axis], dir[axis] = up, 1
		case -down < up:
			best[axis], dir[axis] = -down, -1
		default:
			best[axis], dir[axis] = up, 0
		}
	}

	least := math.Min(best[0], math.Min(best[1], best[2]))
	for axis := 0; axis < 3; axis++ {
		if best[axis] != least {
			continue
		}
		if dir[axis] >= 0 {
			pos[axis] = best[axis]
		}
		if dir[axis] <= 0 {
			neg[axis] = -best[axis]
		}
	}
	return neg, pos, true
}

// Step продвигает живого агента на dt против окна view и разрешает
// столкновение одним сдвигом. Если сдвиг не помог или все оси
// зажаты, агент погибает. Возвращает результат первой проверки.
func Step(view *View, p *Player, dt float64) CollisionResult {
	if p.dead {
		return CollisionResult{}
	}

	p.integrate(dt)

	collision := view.Collide(p.Box())
	p.grounded = false
	if !collision.Collided {
		return collision
	}
	if collision.Crushed() {
		p.dead = true
		return collision
	}

	p.position = p.position.Add(collision.Shift)
	for axis := 0; axis < 3; axis++ {
		if collision.Shift[axis] != 0 {
			p.velocity[axis] = 0
		}
	}
	p.grounded = collision.Shift[2] > 0

	if view.Collide(p.Box()).Collided {
		p.dead = true
	}
	return collision
}
