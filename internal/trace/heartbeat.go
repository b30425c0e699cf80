package trace

import (
	"sync"
	"time"
)

// Heartbeat emits a periodic liveness event. A trace that keeps beating
// while a request span never ends points at a stuck backend call.
type Heartbeat struct {
	tracer   Tracer
	interval time.Duration
	detail   func() string
	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// StartHeartbeat starts beating on t. detail, when non-nil, supplies the
// event detail (e.g. worker pool occupancy). It returns nil when tracing is
// disabled or interval is not positive.
func StartHeartbeat(t Tracer, interval time.Duration, detail func() string) *Heartbeat {
	if t == nil || !t.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{tracer: t, interval: interval, detail: detail, stopCh: make(chan struct{})}
	h.wg.Add(1)
	go h.run()
	return h
}

func (h *Heartbeat) run() {
	defer h.wg.Done()
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			ev := &Event{Time: time.Now(), Kind: KindHeartbeat, Scope: ScopeServer, Name: "heartbeat"}
			if h.detail != nil {
				ev.Detail = h.detail()
			}
			h.tracer.Emit(ev)
		case <-h.stopCh:
			return
		}
	}
}

// Stop ends the heartbeat and waits for its goroutine.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.stopOnce.Do(func() { close(h.stopCh) })
	h.wg.Wait()
}
