package watch

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestPoller_Ticks(t *testing.T) {
	p := NewPoller(20*time.Millisecond, nil)

	var ticks atomic.Int32
	p.SetCallback(func() { ticks.Add(1) })
	p.Start()
	p.Start()

	if !waitFor(t, time.Second, func() bool { return ticks.Load() >= 2 }) {
		t.Errorf("ticks = %d, want at least 2", ticks.Load())
	}

	p.Stop()
	after := ticks.Load()
	time.Sleep(60 * time.Millisecond)
	if got := ticks.Load(); got != after {
		t.Errorf("ticks grew from %d to %d after Stop", after, got)
	}
	p.Stop()
}

func TestPoller_DefaultInterval(t *testing.T) {
	p := NewPoller(0, nil)
	if p.interval != DefaultPollInterval {
		t.Errorf("interval = %v, want %v", p.interval, DefaultPollInterval)
	}
	p.Stop()
}
