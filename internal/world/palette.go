package world

import (
	"fmt"
	"math"
	"strconv"
)

// PaletteCapacity максимальное число типов вокселей (VoxelID занимает один байт)
const PaletteCapacity = 256

// VoxelID идентификатор типа вокселя, индекс в палитре
type VoxelID uint8

const (
	// AirID пустое пространство, зарезервирован в любой палитре
	AirID VoxelID = 0
	// BoundaryID твёрдая граница 4D мира, заполняет паддинг
	BoundaryID VoxelID = 1
)

// Color цвет в sRGB, компоненты 0..1
type Color struct {
	R, G, B, A float32
}

// NewColor создаёт цвет из sRGB компонент
func NewColor(r, g, b, a float32) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// ParseHexColor разбирает цвет вида #rrggbb или #rrggbbaa
func ParseHexColor(hex string) (Color, error) {
	if len(hex) == 0 || hex[0] != '#' {
		return Color{}, fmt.Errorf("invalid hex color: %q", hex)
	}
	h := hex[1:]
	if len(h) != 6 && len(h) != 8 {
		return Color{}, fmt.Errorf("invalid hex color length: %q", hex)
	}
	var parts [4]float32
	parts[3] = 1
	for i := 0; i < len(h)/2; i++ {
		v, err := strconv.ParseUint(h[i*2:i*2+2], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
		}
		parts[i] = float32(v) / 255
	}
	return Color{R: parts[0], G: parts[1], B: parts[2], A: parts[3]}, nil
}

// Linear переводит цвет в линейное пространство (альфа не меняется)
func (c Color) Linear() [4]float32 {
	return [4]float32{srgbToLinear(c.R), srgbToLinear(c.G), srgbToLinear(c.B), c.A}
}

func srgbToLinear(v float32) float32 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return float32(math.Pow((float64(v)+0.055)/1.055, 2.4))
}

// VoxelType материал вокселя
type VoxelType struct {
	Color Color
}

// InternalType материал в формате для загрузки в рендерер
type InternalType struct {
	Color [4]float32 `json:"color"` // линейный RGBA
}

// ToInternal конвертирует материал для рендерера
func (t VoxelType) ToInternal() InternalType {
	return InternalType{Color: t.Color.Linear()}
}

// Palette упорядоченная таблица типов, только добавление.
// Выданные id остаются валидными всё время жизни палитры.
type Palette struct {
	types    []VoxelType
	internal []InternalType
}

// NewPalette создаёт палитру с предзаполненными служебными типами
func NewPalette(reserved ...VoxelType) *Palette {
	p := &Palette{
		types:    make([]VoxelType, 0, PaletteCapacity),
		internal: make([]InternalType, 0, PaletteCapacity),
	}
	for _, t := range reserved {
		must(p.Insert(t))
	}
	return p
}

// Insert добавляет тип и возвращает его id.
// Полная палитра не меняется, возвращается ErrCapacityExceeded.
func (p *Palette) Insert(t VoxelType) (VoxelID, error) {
	if len(p.types) >= PaletteCapacity {
		return 0, fmt.Errorf("insert voxel type #%d: %w", len(p.types)+1, ErrCapacityExceeded)
	}
	id := VoxelID(len(p.types))
	p.types = append(p.types, t)
	p.internal = append(p.internal, t.ToInternal())
	return id, nil
}

// Type возвращает тип по id
func (p *Palette) Type(id VoxelID) (VoxelType, bool) {
	if int(id) >= len(p.types) {
		return VoxelType{}, false
	}
	return p.types[id], true
}

// Len количество типов в палитре
func (p *Palette) Len() int {
	return len(p.types)
}

// Internal возвращает массив из 256 материалов; свободные слоты нулевые
func (p *Palette) Internal() [PaletteCapacity]InternalType {
	var out [PaletteCapacity]InternalType
	copy(out[:], p.internal)
	return out
}
