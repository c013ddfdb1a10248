package camera

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Generator фиксированный поворот на 90° в одной координатной плоскости 4D
type Generator uint8

const (
	// GeneratorXW поворачивает ось X в ось W
	GeneratorXW Generator = iota + 1
	// GeneratorYW поворачивает ось Y в ось W
	GeneratorYW
)

func (g Generator) String() string {
	switch g {
	case GeneratorXW:
		return "XW"
	case GeneratorYW:
		return "YW"
	default:
		return fmt.Sprintf("Generator(%d)", uint8(g))
	}
}

// ParseGenerator разбирает имя генератора ("XW", "YW")
func ParseGenerator(name string) (Generator, error) {
	switch name {
	case "XW", "xw":
		return GeneratorXW, nil
	case "YW", "yw":
		return GeneratorYW, nil
	default:
		return 0, fmt.Errorf("camera: unknown generator %q", name)
	}
}

// MarshalText кодирует генератор именем плоскости
func (g Generator) MarshalText() ([]byte, error) {
	if g != GeneratorXW && g != GeneratorYW {
		return nil, fmt.Errorf("camera: unknown generator %d", uint8(g))
	}
	return []byte(g.String()), nil
}

// UnmarshalText разбирает имя плоскости
func (g *Generator) UnmarshalText(text []byte) error {
	parsed, err := ParseGenerator(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// plane возвращает пару осей плоскости вращения
func (g Generator) plane() (int, int) {
	switch g {
	case GeneratorXW:
		return 0, 3
	case GeneratorYW:
		return 1, 3
	default:
		panic(fmt.Sprintf("camera: unknown generator %d", uint8(g)))
	}
}

// At возвращает поворот на угол t·90° в плоскости генератора.
// При t = ±1 матрица строится в замкнутой форме, без тригонометрии.
func (g Generator) At(t float64) mgl64.Mat4 {
	i, j := g.plane()
	c, s := quarterTurn(t)
	m := mgl64.Ident4()
	m.Set(i, i, c)
	m.Set(i, j, -s)
	m.Set(j, i, s)
	m.Set(j, j, c)
	return m
}

func quarterTurn(t float64) (c, s float64) {
	switch t {
	case 0:
		return 1, 0
	case 1:
		return 0, 1
	case -1:
		return 0, -1
	}
	a := t * math.Pi / 2
	return math.Cos(a), math.Sin(a)
}

// RotateCommand выбор генератора и направления (модификатор «обратно»)
type RotateCommand struct {
	Generator Generator `json:"generator"`
	Inverse   bool      `json:"inverse"`
}

// At интерполяция команды: обратный поворот есть тот же генератор при -t
func (c RotateCommand) At(t float64) mgl64.Mat4 {
	if c.Inverse {
		t = -t
	}
	return c.Generator.At(t)
}

func (c RotateCommand) String() string {
	if c.Inverse {
		return c.Generator.String() + "⁻¹"
	}
	return c.Generator.String()
}

// snapPermutation округляет элементы до -1, 0, 1.
// Применяется только в конечной точке перехода, где поворот —
// знаковая перестановка осей.
func snapPermutation(m mgl64.Mat4) mgl64.Mat4 {
	for i := range m {
		m[i] = math.Round(m[i])
	}
	return m
}

// IsSignedPermutation проверяет, что в каждой строке и столбце ровно один ±1
func IsSignedPermutation(m mgl64.Mat4) bool {
	for r := 0; r < 4; r++ {
		rowCount, colCount := 0, 0
		for c := 0; c < 4; c++ {
			switch v := m.At(r, c); v {
			case 1, -1:
				rowCount++
			case 0:
			default:
				return false
			}
			if v := m.At(c, r); v == 1 || v == -1 {
				colCount++
			}
		}
		if rowCount != 1 || colCount != 1 {
			return false
		}
	}
	return true
}
