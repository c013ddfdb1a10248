package physics

import (
	"errors"

	"github.com/annel0/voxel4d/internal/logging"
	"github.com/annel0/voxel4d/internal/readback"
)

// DefaultWindowSize сторона окна физики по умолчанию
const DefaultWindowSize = 16

// UpdateResult что произошло за кадр физики
type UpdateResult struct {
	Delivered bool // окно обновлено результатом прошлого запроса
	Requested bool // отправлен запрос следующего окна
	Stalled   bool // прошлый запрос ещё не готов
	Collision CollisionResult
	Died      bool // агент погиб в этом кадре
}

// Engine владеет окном физики и каналом его обновления.
// Кадр: забрать готовое окно, шагнуть агента, запросить следующее окно.
// Столкновения в кадре N считаются по окну, запрошенному в конце кадра N−1.
type Engine struct {
	view     *View
	readback readback.Readback
	log      *logging.Logger
}

// NewEngine создаёт движок с окном физики стороной windowSize
func NewEngine(windowSize int, rb readback.Readback) *Engine {
	return &Engine{
		view:     NewView(windowSize),
		readback: rb,
	}
}

// SetLogger задаёт логгер компонента; без него пишет глобальный
func (e *Engine) SetLogger(l *logging.Logger) {
	e.log = l
}

func (e *Engine) logger() *logging.Logger {
	if e.log != nil {
		return e.log
	}
	return logging.Default()
}

// View текущее окно
func (e *Engine) View() *View {
	return e.view
}

// Sync забирает доставленное окно, если оно готово
func (e *Engine) Sync() bool {
	res, ok := e.readback.Poll()
	if !ok {
		return false
	}
	e.view.Deliver(res)
	return true
}

// Request запрашивает окно вокруг агента. Пока прошлый запрос не забран,
// новый не отправляется — это не ошибка, окно просто отстаёт на кадр.
func (e *Engine) Request(p *Player) (bool, error) {
	origin := NextOrigin(p.Position(), e.view.Size())
	err := e.readback.Submit(readback.Request{Origin: origin, Size: e.view.Size()})
	if errors.Is(err, readback.ErrRequestPending) {
		e.logger().Trace("⏳ Окно физики ещё не доставлено, запрос пропущен")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Update выполняет кадр физики для агента p
func (e *Engine) Update(p *Player, dt float64) (UpdateResult, error) {
	var res UpdateResult
	res.Delivered = e.Sync()
	res.Stalled = !res.Delivered && e.readback.Pending()

	if !p.Dead() {
		res.Collision = Step(e.view, p, dt)
		if p.Dead() {
			res.Died = true
			pos := p.Position()
			e.logger().Warn("💀 Агент %s погиб в (%.2f, %.2f, %.2f)", p.ID, pos[0], pos[1], pos[2])
		}
	}

	requested, err := e.Request(p)
	if err != nil {
		return res, err
	}
	res.Requested = requested
	return res, nil
}
