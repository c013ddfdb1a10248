package diagnostics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "5с", formatUptime(5*time.Second))
	assert.Equal(t, "2м 3с", formatUptime(2*time.Minute+3*time.Second))
	assert.Equal(t, "1ч 0м 0с", formatUptime(time.Hour))
	assert.Equal(t, "1д 2ч 0м 0с", formatUptime(26*time.Hour))
}

func TestFrameMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewFrameMetrics(reg)

	m.ObserveFrame(4 * time.Millisecond)
	m.ObserveFrame(6 * time.Millisecond)
	m.AgentDied()
	m.RotationStarted("XW")
	m.RotationStarted("XW")
	m.WindowStalled()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.frames))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.deaths))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.rotations.WithLabelValues("XW")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.windowStalls))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestReporter_OncePerInterval(t *testing.T) {
	start := time.Unix(1000, 0)
	r := NewReporter(NewProcessStats(), start)

	for i := 1; i < 10; i++ {
		_, ok := r.Frame(start.Add(time.Duration(i)*100*time.Millisecond), 10*time.Millisecond)
		require.False(t, ok)
	}
	rep, ok := r.Frame(start.Add(time.Second), 10*time.Millisecond)
	require.True(t, ok)
	assert.InDelta(t, 10, rep.FPS, 1e-9)
	assert.Equal(t, 10*time.Millisecond, rep.AvgFrame)

	_, ok = r.Frame(start.Add(1100*time.Millisecond), time.Millisecond)
	assert.False(t, ok, "счётчики сброшены")
}
