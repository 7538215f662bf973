package profiler

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfiler_TickLogsAfterInterval(t *testing.T) {
	var buf bytes.Buffer
	p := NewProfiler(WithLogger(zerolog.New(&buf)), WithUpdateInterval(time.Hour))

	p.ObserveUpdate(true, false, 2*time.Millisecond)
	assert.False(t, p.Tick())
	assert.Zero(t, buf.Len())

	p.lastTime = time.Now().Add(-2 * time.Hour)
	p.ObserveUpdate(false, true, 4*time.Millisecond)
	require.True(t, p.Tick())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "profiler", entry["message"])
	assert.EqualValues(t, 2, entry["tree_updates"])
	assert.EqualValues(t, 1, entry["tree_failures"])
	assert.EqualValues(t, 1, entry["physics_frames"])
	assert.InDelta(t, 3000, entry["tree_avg_us"], 1e-6)

	// counters restart after every report
	assert.Zero(t, p.treeUpdates.Load())
	assert.Equal(t, 0, p.frameCount)
}

func TestProfiler_IgnoresNonPositiveInterval(t *testing.T) {
	p := NewProfiler(WithLogger(zerolog.Nop()), WithUpdateInterval(0))
	assert.Equal(t, time.Second, p.updateInterval)
}

func TestTreeMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewTreeMetrics(reg, "blendsim")
	require.NoError(t, err)

	m.ObserveUpdate(true, false, time.Millisecond)
	m.ObserveUpdate(true, true, time.Millisecond)
	m.ObserveUpdate(false, false, time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.updates.WithLabelValues("ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.updates.WithLabelValues("failed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.physicsFrames))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))

	_, err = NewTreeMetrics(reg, "blendsim")
	assert.Error(t, err)
}

func TestObservers(t *testing.T) {
	p := NewProfiler(WithLogger(zerolog.Nop()))
	m, err := NewTreeMetrics(prometheus.NewRegistry(), "")
	require.NoError(t, err)

	Observers{p, nil, m}.ObserveUpdate(true, true, time.Microsecond)
	assert.Equal(t, int64(1), p.treeUpdates.Load())
	assert.Equal(t, float64(1), testutil.ToFloat64(m.physicsFrames))
}
