package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestTickReportsOncePerInterval(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	clock := time.Unix(0, 0)
	p := NewProfiler(time.Second)
	p.log = zap.New(core)
	p.now = func() time.Time { return clock }
	p.lastTime = clock

	for i := 0; i < 59; i++ {
		clock = clock.Add(10 * time.Millisecond)
		assert.False(t, p.Tick())
	}
	clock = clock.Add(410 * time.Millisecond)
	assert.True(t, p.Tick())

	assert.InDelta(t, 60.0, p.Last().FPS, 0.001)
	assert.Equal(t, 1, logs.FilterMessage("frame stats").Len())

	clock = clock.Add(100 * time.Millisecond)
	assert.False(t, p.Tick())
}

func TestNewProfilerDefaultsInterval(t *testing.T) {
	p := NewProfiler(0)
	assert.Equal(t, time.Second, p.updateInterval)
	assert.Equal(t, Stats{}, p.Last())
}
