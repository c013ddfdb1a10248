package world

import (
	"github.com/aquilax/go-perlin"

	"github.com/annel0/voxel4d/internal/vec"
)

// Константы генерации
const (
	defaultAlpha   = 2.0 // Сглаживание шума
	defaultBeta    = 2.0 // Частота шума
	defaultOctaves = 3   // Количество октав
)

// Materials материалы, которыми генератор заполняет мир
type Materials struct {
	Stone VoxelType
	Grass VoxelType
}

// DefaultMaterials цвета по умолчанию
func DefaultMaterials() Materials {
	return Materials{
		Stone: VoxelType{Color: NewColor(0.212, 0.247, 0.278, 1.0)},
		Grass: VoxelType{Color: NewColor(0.298, 0.545, 0.243, 1.0)},
	}
}

// Generator заполняет 4D мир рельефом. Высота зависит от (x, y, w), ось z вверх.
// Поля можно менять между вызовами; не безопасен для одновременного использования.
type Generator struct {
	Seed        int64   // Сид для генерации шума
	NoiseScale  float64 // Масштаб шума высоты
	HeightScale float64 // Доля высоты мира, занятая рельефом (0..1)
	Materials   Materials

	noise     *perlin.Perlin
	noiseSeed int64
}

// NewGenerator создаёт генератор с настройками по умолчанию
func NewGenerator(seed int64) *Generator {
	return &Generator{
		Seed:        seed,
		NoiseScale:  0.08,
		HeightScale: 0.5,
		Materials:   DefaultMaterials(),
	}
}

// perlin шум для текущего Seed; пересобирается, когда Seed поменяли
func (g *Generator) perlin() *perlin.Perlin {
	if g.noise == nil || g.noiseSeed != g.Seed {
		g.noise = perlin.NewPerlin(defaultAlpha, defaultBeta, defaultOctaves, g.Seed)
		g.noiseSeed = g.Seed
	}
	return g.noise
}

// Height возвращает высоту столба (число твёрдых ячеек) в точке (x, y, w)
func (g *Generator) Height(x, y, w, size int) int {
	n := g.perlin().Noise3D(float64(x)*g.NoiseScale, float64(y)*g.NoiseScale, float64(w)*g.NoiseScale)
	// Шум в диапазоне примерно [-1, 1] → [0, 1]
	h := (n + 1) / 2
	height := 1 + int(h*g.HeightScale*float64(size))
	return min(max(height, 1), size)
}

// Generate заполняет мир и возвращает id вставленных материалов
func (g *Generator) Generate(w *World4D) (stone, grass VoxelID) {
	stone = w.InsertType(g.Materials.Stone)
	grass = w.InsertType(g.Materials.Grass)

	size := w.Size()
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			for ww := 0; ww < size; ww++ {
				height := g.Height(x, y, ww, size)
				for z := 0; z < height; z++ {
					id := stone
					if z == height-1 {
						id = grass
					}
					w.Set(vec.Vec4{X: x, Y: y, Z: z, W: ww}, id)
				}
			}
		}
	}
	return stone, grass
}

// Single минимальный мир: один воксель материала t в координате c
func Single(w *World4D, c vec.Vec4, t VoxelType) VoxelID {
	id := w.InsertType(t)
	w.Set(c, id)
	return id
}
