package engine

import (
	"github.com/annel0/voxel4d/internal/camera"
	"github.com/annel0/voxel4d/internal/world"
)

// Tracked значение с флагом «изменилось с прошлого снимка».
// Рендерер перезагружает данные только при Changed.
type Tracked[T any] struct {
	Value   T
	Changed bool
}

// Meta размеры и состояние, нужные рендереру
type Meta struct {
	WorldSize        int     `json:"world_size"`
	PaddedSize       int     `json:"padded_size"`
	ViewSize         int     `json:"view_size"`
	WindowSize       int     `json:"window_size"`
	WindowOrigin     [3]int  `json:"window_origin"`
	PointerLocked    bool    `json:"pointer_locked"`
	Rotating         bool    `json:"rotating"`
	RotationProgress float64 `json:"rotation_progress"`
	Follow           bool    `json:"follow"`
	AgentID          string  `json:"agent_id,omitempty"`
	AgentDead        bool    `json:"agent_dead"`
}

// Snapshot состояние после кадра. Буферы вокселей заполняются только
// при Changed, остальное — всегда.
type Snapshot struct {
	Frame    uint64
	Camera3D Tracked[camera.Camera3DInternal]
	Camera4D Tracked[camera.Camera4DInternal]
	Voxels   Tracked[[]byte]                                    // 4D мир с паддингом
	Palette  Tracked[[world.PaletteCapacity]world.InternalType] // 256 записей
	View     Tracked[[]byte]                                    // 3D срез
	Meta     Tracked[Meta]
}

// AnyChanged изменилось ли хоть что-то
func (s Snapshot) AnyChanged() bool {
	return s.Camera3D.Changed || s.Camera4D.Changed || s.Voxels.Changed ||
		s.Palette.Changed || s.View.Changed || s.Meta.Changed
}
