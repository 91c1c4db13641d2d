// Package countdown turns an absolute, server-provided deadline into the
// remaining time shown to the viewer. The deadline is authoritative; nothing
// here infers a status change when it passes.
package countdown

import (
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	// UrgentThreshold marks the final window in which a lot is shown as urgent.
	UrgentThreshold = 5 * time.Minute

	// TickInterval is the re-emit period of a subscription.
	TickInterval = time.Second

	finishedLabel = "Завершён"
)

// Tick is one emitted countdown value.
type Tick struct {
	Remaining time.Duration
	Urgent    bool
	Expired   bool
}

// Millis returns the signed remaining milliseconds.
func (t Tick) Millis() int64 {
	return t.Remaining.Milliseconds()
}

// Remaining returns the signed time left until deadline. It is zero or
// negative once the deadline has passed.
func Remaining(deadline, now time.Time) time.Duration {
	return deadline.Sub(now)
}

// RemainingMillis is Remaining expressed in whole milliseconds.
func RemainingMillis(deadline, now time.Time) int64 {
	return Remaining(deadline, now).Milliseconds()
}

// IsUrgent reports 0 < remaining < UrgentThreshold.
func IsUrgent(remaining time.Duration) bool {
	return remaining > 0 && remaining < UrgentThreshold
}

// Derive computes the tick for a deadline at the given instant.
func Derive(deadline, now time.Time) Tick {
	rem := Remaining(deadline, now)
	return Tick{
		Remaining: rem,
		Urgent:    IsUrgent(rem),
		Expired:   rem <= 0,
	}
}

// Format renders a remaining duration the way lot cards show it.
func Format(remaining time.Duration) string {
	if remaining <= 0 {
		return finishedLabel
	}
	h := int(remaining / time.Hour)
	m := int(remaining % time.Hour / time.Minute)
	s := int(remaining % time.Minute / time.Second)
	switch {
	case h > 0:
		return fmt.Sprintf("%dч %dм", h, m)
	case m > 0:
		return fmt.Sprintf("%dм %dс", m, s)
	default:
		return fmt.Sprintf("%dс", s)
	}
}

// DeadlineFunc returns the current deadline. It is re-read on every tick so
// a server-side extension shows up without resubscribing.
type DeadlineFunc func() time.Time

// Subscribe emits a tick immediately and then once per TickInterval until the
// returned stop function is called. After stop returns, emit is never invoked
// again and the underlying ticker is released. stop is idempotent and must
// not be called from inside emit.
func Subscribe(clock clockwork.Clock, deadline DeadlineFunc, emit func(Tick)) (stop func()) {
	ticker := clock.NewTicker(TickInterval)
	quit := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer ticker.Stop()

		emit(Derive(deadline(), clock.Now()))
		for {
			select {
			case <-quit:
				return
			case <-ticker.Chan():
				select {
				case <-quit:
					return
				default:
				}
				emit(Derive(deadline(), clock.Now()))
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(quit)
			<-done
		})
	}
}
