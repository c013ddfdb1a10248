package diagnostics

import (
	"time"

	"github.com/annel0/voxel4d/internal/logging"
)

// Reporter считает кадры и раз в Interval пишет сводку в лог
type Reporter struct {
	Interval time.Duration

	stats     *ProcessStats
	last      time.Time
	frames    int
	frameTime time.Duration
}

// Report сводка за интервал
type Report struct {
	FPS        float64
	AvgFrame   time.Duration
	CPUPercent float64
	RSSMB      float64
	HeapMB     float64
	Uptime     string
}

// NewReporter создаёт репортёр с интервалом в секунду
func NewReporter(stats *ProcessStats, now time.Time) *Reporter {
	return &Reporter{Interval: time.Second, stats: stats, last: now}
}

// Frame учитывает кадр. Когда интервал истёк, возвращает сводку
// и пишет её в лог.
func (r *Reporter) Frame(now time.Time, frameTime time.Duration) (Report, bool) {
	r.frames++
	r.frameTime += frameTime

	elapsed := now.Sub(r.last)
	if elapsed < r.Interval {
		return Report{}, false
	}

	rep := Report{
		FPS:      float64(r.frames) / elapsed.Seconds(),
		AvgFrame: r.frameTime / time.Duration(r.frames),
		Uptime:   r.stats.Uptime(),
		HeapMB:   r.stats.HeapMB(),
	}
	if cpu, err := r.stats.CPUPercent(); err == nil {
		rep.CPUPercent = cpu
	}
	if rss, err := r.stats.RSSMB(); err == nil {
		rep.RSSMB = rss
	}

	logging.Info("📊 FPS %.1f, кадр %v, CPU %.1f%%, RSS %.1fMB, heap %.1fMB, аптайм %s",
		rep.FPS, rep.AvgFrame, rep.CPUPercent, rep.RSSMB, rep.HeapMB, rep.Uptime)

	r.last = now
	r.frames = 0
	r.frameTime = 0
	return rep, true
}
