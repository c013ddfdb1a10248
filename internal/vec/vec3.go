package vec

import "github.com/go-gl/mathgl/mgl64"

// Vec3 представляет трехмерный вектор с целочисленными координатами.
// Используется для индексов вокселей в 3D-срезе и окне физики.
type Vec3 struct {
	X int
	Y int
	Z int
}

// Splat3 возвращает вектор с одинаковыми компонентами
func Splat3(v int) Vec3 {
	return Vec3{X: v, Y: v, Z: v}
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// Sub вычитает вектор
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{
		X: v.X - other.X,
		Y: v.Y - other.Y,
		Z: v.Z - other.Z,
	}
}

// Equals проверяет равенство векторов
func (v Vec3) Equals(other Vec3) bool {
	return v.X == other.X && v.Y == other.Y && v.Z == other.Z
}

// Slice возвращает координаты в порядке x, y, z
func (v Vec3) Slice() []int {
	return []int{v.X, v.Y, v.Z}
}

// Float переводит индекс в вещественные координаты угла ячейки
func (v Vec3) Float() mgl64.Vec3 {
	return mgl64.Vec3{float64(v.X), float64(v.Y), float64(v.Z)}
}

// RoundVec3 округляет вещественный вектор до ближайших целых
func RoundVec3(f mgl64.Vec3) Vec3 {
	return Vec3{X: round(f[0]), Y: round(f[1]), Z: round(f[2])}
}
