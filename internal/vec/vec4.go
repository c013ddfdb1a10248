package vec

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec4 представляет координату ячейки 4D мира (x, y, z, w)
type Vec4 struct {
	X, Y, Z, W int
}

// Splat4 возвращает вектор с одинаковыми компонентами
func Splat4(v int) Vec4 {
	return Vec4{X: v, Y: v, Z: v, W: v}
}

// Add складывает два вектора
func (v Vec4) Add(other Vec4) Vec4 {
	return Vec4{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z, W: v.W + other.W}
}

// Slice возвращает координаты в порядке x, y, z, w
func (v Vec4) Slice() []int {
	return []int{v.X, v.Y, v.Z, v.W}
}

// InBox проверяет 0 <= c < size по всем осям
func (v Vec4) InBox(size int) bool {
	return v.X >= 0 && v.X < size &&
		v.Y >= 0 && v.Y < size &&
		v.Z >= 0 && v.Z < size &&
		v.W >= 0 && v.W < size
}

// Float переводит индекс в вещественный вектор
func (v Vec4) Float() mgl64.Vec4 {
	return mgl64.Vec4{float64(v.X), float64(v.Y), float64(v.Z), float64(v.W)}
}

// FloorVec4 возвращает ячейку, содержащую точку
func FloorVec4(f mgl64.Vec4) Vec4 {
	return Vec4{
		X: int(math.Floor(f[0])),
		Y: int(math.Floor(f[1])),
		Z: int(math.Floor(f[2])),
		W: int(math.Floor(f[3])),
	}
}

func round(f float64) int {
	return int(math.Round(f))
}
