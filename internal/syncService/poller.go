package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// State is the externally visible state of the list read-model.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
)

// Default poll periods against the remote backend.
const (
	DefaultListInterval   = 15 * time.Second
	DefaultDetailInterval = 5 * time.Second
)

// loop is one running poll loop. Cancelling it and waiting on done
// guarantees the goroutine has exited.
type loop struct {
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
}

func (l *loop) stop() {
	if l == nil {
		return
	}
	l.cancel()
	<-l.done
}

// startLoop fetches immediately and then once per interval until ctx is done.
// A slow fetch delays the next tick rather than overlapping with it.
func startLoop(parent context.Context, clock clockwork.Clock, interval time.Duration, gen uint64, poll func(ctx context.Context, gen uint64)) *loop {
	ctx, cancel := context.WithCancel(parent)
	l := &loop{gen: gen, cancel: cancel, done: make(chan struct{})}

	ticker := clock.NewTicker(interval)
	go func() {
		defer close(l.done)
		defer ticker.Stop()

		poll(ctx, gen)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				if ctx.Err() != nil {
					return
				}
				poll(ctx, gen)
			}
		}
	}()
	return l
}

// lifecycle serializes start/stop transitions. gen is bumped on every
// teardown so results of fetches that started earlier can be recognized and
// dropped. applyMu is held while a result is applied and listeners run.
type lifecycle struct {
	transition sync.Mutex
	applyMu    sync.Mutex
	gen        uint64
	current    *loop
}

// teardown must be called with transition held.
func (lc *lifecycle) teardown() {
	lc.applyMu.Lock()
	lc.gen++
	l := lc.current
	lc.current = nil
	lc.applyMu.Unlock()

	l.stop()
}

// mounted must be called with applyMu held.
func (lc *lifecycle) mounted(gen uint64) bool {
	return lc.current != nil && lc.current.gen == gen
}
