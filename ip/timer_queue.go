package ip

import (
	"slices"
	"time"
)

type timerRegistration struct {
	initialDelay time.Duration
	period       time.Duration
	listener     TimerListener
}

type scheduledTimer struct {
	expiry time.Time
	timerRegistration
}

// timerQueue holds the timers of one Run, ordered by expiry. Timers with the
// same expiry keep their attach order.
type timerQueue []scheduledTimer

func newTimerQueue(now time.Time, timers []timerRegistration) timerQueue {
	q := make(timerQueue, 0, len(timers))
	for _, t := range timers {
		q = append(q, scheduledTimer{expiry: now.Add(t.initialDelay), timerRegistration: t})
	}
	q.sort()
	return q
}

func (q timerQueue) sort() {
	slices.SortStableFunc(q, func(a, b scheduledTimer) int {
		return a.expiry.Compare(b.expiry)
	})
}

// deadline returns the earliest expiry, if there are any timers.
func (q timerQueue) deadline() (time.Time, bool) {
	if len(q) == 0 {
		return time.Time{}, false
	}
	return q[0].expiry, true
}

// fireDue calls fire for every timer due at now, in expiry order, and moves
// each one period ahead of its previous expiry. A timer that is several
// periods late fires once. fire returns true to stop; the timer that asked
// to stop is not rescheduled.
func (q timerQueue) fireDue(now time.Time, fire func(TimerListener) (stop bool)) {
	fired := false
	for i := range q {
		if q[i].expiry.After(now) {
			break
		}
		if fire(q[i].listener) {
			break
		}
		q[i].expiry = q[i].expiry.Add(q[i].period)
		fired = true
	}
	if fired {
		q.sort()
	}
}
