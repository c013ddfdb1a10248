package engine

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/annel0/voxel4d/internal/camera"
)

// EventKind тип входного события
type EventKind string

const (
	EventGrab     EventKind = "grab"     // захват указателя (нажатие кнопки)
	EventEscape   EventKind = "escape"   // отпустить указатель
	EventMouse    EventKind = "mouse"    // смещение мыши
	EventKeys     EventKind = "keys"     // текущее состояние клавиш движения
	EventRotate   EventKind = "rotate"   // поворот 4D камеры
	EventRespawn  EventKind = "respawn"  // новый агент
	EventViewport EventKind = "viewport" // размер окна рендерера
)

// Event входное событие от окна или рендерера
type Event struct {
	Kind   EventKind             `json:"type"`
	DX     float64               `json:"dx,omitempty"`
	DY     float64               `json:"dy,omitempty"`
	Keys   *camera.MoveInput     `json:"keys,omitempty"`
	Rotate *camera.RotateCommand `json:"rotate,omitempty"`
	Width  float64               `json:"width,omitempty"`
	Height float64               `json:"height,omitempty"`
}

// Validate проверяет, что у события есть нужные поля
func (ev Event) Validate() error {
	switch ev.Kind {
	case EventGrab, EventEscape, EventMouse, EventRespawn:
		return nil
	case EventKeys:
		if ev.Keys == nil {
			return fmt.Errorf("событие %s без поля keys", ev.Kind)
		}
	case EventRotate:
		if ev.Rotate == nil {
			return fmt.Errorf("событие %s без поля rotate", ev.Kind)
		}
	case EventViewport:
		if ev.Width <= 0 || ev.Height <= 0 {
			return fmt.Errorf("некорректный размер окна %.0fx%.0f", ev.Width, ev.Height)
		}
	default:
		return fmt.Errorf("неизвестный тип события %q", ev.Kind)
	}
	return nil
}

// Input ввод за один кадр
type Input struct {
	Grab     bool
	Escape   bool
	LookDX   float64
	LookDY   float64
	Keys     camera.MoveInput // зажатые клавиши; сохраняются между кадрами
	Rotate   *camera.RotateCommand
	Respawn  bool
	Viewport *mgl64.Vec2
}

// InputQueue копит события между кадрами. Push безопасен из любых горутин,
// Drain вызывается кадровым циклом.
type InputQueue struct {
	mu      sync.Mutex
	pending Input
}

// NewInputQueue создаёт пустую очередь
func NewInputQueue() *InputQueue {
	return &InputQueue{}
}

// Push добавляет событие. Смещения мыши суммируются, из нескольких
// поворотов за кадр остаётся первый: остальные камера всё равно отбросит.
func (q *InputQueue) Push(ev Event) error {
	if err := ev.Validate(); err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	p := &q.pending
	switch ev.Kind {
	case EventGrab:
		p.Grab = true
		p.Escape = false
	case EventEscape:
		p.Escape = true
		p.Grab = false
	case EventMouse:
		p.LookDX += ev.DX
		p.LookDY += ev.DY
	case EventKeys:
		p.Keys = *ev.Keys
	case EventRotate:
		if p.Rotate == nil {
			cmd := *ev.Rotate
			p.Rotate = &cmd
		}
	case EventRespawn:
		p.Respawn = true
	case EventViewport:
		p.Viewport = &mgl64.Vec2{ev.Width, ev.Height}
	}
	return nil
}

// Drain забирает ввод кадра; зажатые клавиши остаются
func (q *InputQueue) Drain() Input {
	q.mu.Lock()
	defer q.mu.Unlock()

	in := q.pending
	q.pending = Input{Keys: in.Keys}
	return in
}
