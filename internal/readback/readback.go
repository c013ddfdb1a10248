// Package readback моделирует асинхронное копирование окна из среза
// во внешний буфер: запрос отправляется в одном кадре, результат
// становится доступен не раньше следующего.
package readback

import (
	"errors"
	"sync"

	"github.com/annel0/voxel4d/internal/vec"
)

var (
	// ErrRequestPending предыдущий запрос ещё не забран
	ErrRequestPending = errors.New("readback: request already pending")
	// ErrInvalidSize сторона окна должна быть положительной
	ErrInvalidSize = errors.New("readback: invalid window size")
)

// RowAlignment выравнивание строки промежуточного буфера
const RowAlignment = 256

// RowPitch длина строки с выравниванием
func RowPitch(size int) int {
	return ((size + RowAlignment - 1) / RowAlignment) * RowAlignment
}

// Request запрос окна: угол и длина стороны
type Request struct {
	Origin vec.Vec3
	Size   int
}

// Result доставленное окно. Data выровнено: строка — RowPitch байт,
// слой — RowPitch*RowsPerImage байт.
type Result struct {
	Request      Request
	Data         []byte
	RowPitch     int
	RowsPerImage int
}

// At id ячейки окна по локальной координате
func (r Result) At(x, y, z int) byte {
	return r.Data[(x*r.RowsPerImage+y)*r.RowPitch+z]
}

// Source откуда копируется окно
type Source interface {
	CopyRegion(origin vec.Vec3, size int, dst []byte, rowPitch, rowsPerImage int)
}

// Readback асинхронный канал копирования окна.
// Не более одного незабранного запроса.
type Readback interface {
	Submit(req Request) error
	Poll() (Result, bool)
	Pending() bool
}

// VolumeReadback копирует окно из Source в момент Submit и отдаёт его
// через Latency вызовов Poll (Poll вызывается раз в кадр).
type VolumeReadback struct {
	mu        sync.Mutex
	source    Source
	latency   int
	pending   *Result
	remaining int
	staging   []byte
}

// NewVolumeReadback создаёт канал с задержкой в один кадр
func NewVolumeReadback(source Source) *VolumeReadback {
	return &VolumeReadback{source: source, latency: 1}
}

// SetLatency задаёт задержку в кадрах (минимум 1). Большие значения
// моделируют зависание внешнего копирования.
func (r *VolumeReadback) SetLatency(frames int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latency = max(frames, 1)
}

// Submit копирует окно в промежуточный буфер
func (r *VolumeReadback) Submit(req Request) error {
	if req.Size <= 0 {
		return ErrInvalidSize
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pending != nil {
		return ErrRequestPending
	}

	pitch := RowPitch(req.Size)
	need := req.Size * pitch * pitch
	if cap(r.staging) < need {
		r.staging = make([]byte, need)
	}
	r.staging = r.staging[:need]
	r.source.CopyRegion(req.Origin, req.Size, r.staging, pitch, pitch)

	r.pending = &Result{Request: req, Data: r.staging, RowPitch: pitch, RowsPerImage: pitch}
	r.remaining = r.latency
	return nil
}

// Poll отсчитывает кадр и, если копия готова, отдаёт её один раз.
// Data действителен до следующего Submit.
func (r *VolumeReadback) Poll() (Result, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pending == nil {
		return Result{}, false
	}
	r.remaining--
	if r.remaining > 0 {
		return Result{}, false
	}
	res := *r.pending
	r.pending = nil
	return res, true
}

// Pending есть ли незабранный запрос
func (r *VolumeReadback) Pending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending != nil
}
