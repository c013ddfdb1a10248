// Package diagnostics собирает метрики кадра и процесса: Prometheus
// для внешнего сбора и строку в логе раз в секунду.
package diagnostics

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"
)

// ProcessStats метрики процесса просмотрщика
type ProcessStats struct {
	StartTime time.Time
	proc      *process.Process
}

// NewProcessStats создает новый экземпляр метрик
func NewProcessStats() *ProcessStats {
	ps := &ProcessStats{StartTime: time.Now()}
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		ps.proc = proc
	}
	return ps
}

// Uptime возвращает время работы
func (ps *ProcessStats) Uptime() string {
	return formatUptime(time.Since(ps.StartTime))
}

func formatUptime(uptime time.Duration) string {
	days := int(uptime.Hours()) / 24
	hours := int(uptime.Hours()) % 24
	minutes := int(uptime.Minutes()) % 60
	seconds := int(uptime.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dд %dч %dм %dс", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dч %dм %dс", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dм %dс", minutes, seconds)
	default:
		return fmt.Sprintf("%dс", seconds)
	}
}

// HeapMB размер кучи Go в MB
func (ps *ProcessStats) HeapMB() float64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return float64(m.Alloc) / 1024 / 1024
}

// RSSMB резидентная память процесса в MB
func (ps *ProcessStats) RSSMB() (float64, error) {
	if ps.proc == nil {
		return 0, fmt.Errorf("процесс недоступен")
	}
	info, err := ps.proc.MemoryInfo()
	if err != nil {
		return 0, err
	}
	return float64(info.RSS) / 1024 / 1024, nil
}

// CPUPercent возвращает использование CPU процессом в процентах
func (ps *ProcessStats) CPUPercent() (float64, error) {
	if ps.proc != nil {
		if percent, err := ps.proc.CPUPercent(); err == nil {
			return percent, nil
		}
	}

	// Если не удалось получить метрику процесса, берём системную
	percents, err := cpu.Percent(0, false)
	if err != nil || len(percents) == 0 {
		return 0, err
	}
	return percents[0], nil
}
