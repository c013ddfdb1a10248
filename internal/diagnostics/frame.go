package diagnostics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// FrameMetrics Prometheus-метрики кадрового конвейера
type FrameMetrics struct {
	frameSeconds    prometheus.Histogram
	frames          prometheus.Counter
	deaths          prometheus.Counter
	spawns          prometheus.Counter
	rotations       *prometheus.CounterVec
	windowRefreshes prometheus.Counter
	windowStalls    prometheus.Counter
	collisions      prometheus.Counter
	sliceRecomputes prometheus.Counter
	bridgeClients   prometheus.Gauge
	bridgeBytesSent prometheus.Counter
}

// NewFrameMetrics создаёт метрики и регистрирует их в reg
func NewFrameMetrics(reg prometheus.Registerer) *FrameMetrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Namespace: "voxel4d", Name: name, Help: help})
	}
	m := &FrameMetrics{
		frameSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "voxel4d",
			Name:      "frame_seconds",
			Help:      "Длительность обновления кадра.",
			Buckets:   []float64{0.0005, 0.001, 0.002, 0.004, 0.008, 0.016, 0.033, 0.066, 0.1},
		}),
		frames:          counter("frames_total", "Число обработанных кадров."),
		deaths:          counter("agent_deaths_total", "Сколько раз агент погиб."),
		spawns:          counter("agent_spawns_total", "Сколько агентов создано."),
		windowRefreshes: counter("physics_window_refreshes_total", "Доставленные окна физики."),
		windowStalls:    counter("physics_window_stalls_total", "Кадры, в которых окно физики не обновилось из-за задержки копирования."),
		collisions:      counter("physics_collisions_total", "Кадры со столкновением."),
		sliceRecomputes: counter("slice_recomputes_total", "Пересчёты 3D среза."),
		bridgeBytesSent: counter("bridge_bytes_sent_total", "Байт отправлено рендерерам."),
		rotations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voxel4d",
			Name:      "rotations_total",
			Help:      "Начатые повороты 4D камеры.",
		}, []string{"generator"}),
		bridgeClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxel4d",
			Name:      "bridge_clients",
			Help:      "Подключённые рендереры.",
		}),
	}
	reg.MustRegister(
		m.frameSeconds, m.frames, m.deaths, m.spawns, m.rotations,
		m.windowRefreshes, m.windowStalls, m.collisions, m.sliceRecomputes,
		m.bridgeClients, m.bridgeBytesSent,
	)
	return m
}

// ObserveFrame учитывает кадр длительностью d
func (m *FrameMetrics) ObserveFrame(d time.Duration) {
	m.frames.Inc()
	m.frameSeconds.Observe(d.Seconds())
}

func (m *FrameMetrics) AgentDied()               { m.deaths.Inc() }
func (m *FrameMetrics) AgentSpawned()            { m.spawns.Inc() }
func (m *FrameMetrics) WindowRefreshed()         { m.windowRefreshes.Inc() }
func (m *FrameMetrics) WindowStalled()           { m.windowStalls.Inc() }
func (m *FrameMetrics) Collided()                { m.collisions.Inc() }
func (m *FrameMetrics) SliceRecomputed()         { m.sliceRecomputes.Inc() }
func (m *FrameMetrics) RotationStarted(g string) { m.rotations.WithLabelValues(g).Inc() }
func (m *FrameMetrics) BridgeClients(n int)      { m.bridgeClients.Set(float64(n)) }
func (m *FrameMetrics) BytesSent(n int)          { m.bridgeBytesSent.Add(float64(n)) }
