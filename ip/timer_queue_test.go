package ip

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type namedTimer string

func (namedTimer) TimerExpired() {}

func TestTimerQueue(t *testing.T) {
	now := time.Unix(0, 0)
	q := newTimerQueue(now, []timerRegistration{
		{initialDelay: 20 * time.Millisecond, period: 20 * time.Millisecond, listener: namedTimer("b")},
		{initialDelay: 10 * time.Millisecond, period: 30 * time.Millisecond, listener: namedTimer("a")},
		{initialDelay: 20 * time.Millisecond, period: 5 * time.Millisecond, listener: namedTimer("c")},
	})

	deadline, ok := q.deadline()
	assert.True(t, ok)
	assert.Equal(t, now.Add(10*time.Millisecond), deadline)

	var fired []string
	fire := func(l TimerListener) bool {
		fired = append(fired, string(l.(namedTimer)))
		return false
	}

	q.fireDue(now.Add(5*time.Millisecond), fire)
	assert.Empty(t, fired)

	// b and c share an expiry and keep their attach order
	q.fireDue(now.Add(20*time.Millisecond), fire)
	assert.Equal(t, []string{"a", "b", "c"}, fired)

	deadline, _ = q.deadline()
	assert.Equal(t, now.Add(25*time.Millisecond), deadline)
}

func TestTimerQueue_Stop(t *testing.T) {
	now := time.Unix(0, 0)
	q := newTimerQueue(now, []timerRegistration{
		{period: time.Second, listener: namedTimer("a")},
		{period: time.Second, listener: namedTimer("b")},
	})

	var fired []string
	q.fireDue(now, func(l TimerListener) bool {
		fired = append(fired, string(l.(namedTimer)))
		return true
	})
	assert.Equal(t, []string{"a"}, fired)

	// neither timer moved
	deadline, _ := q.deadline()
	assert.Equal(t, now, deadline)
}

func TestTimerQueue_Empty(t *testing.T) {
	q := newTimerQueue(time.Now(), nil)
	_, ok := q.deadline()
	assert.False(t, ok)
	assert.NotPanics(t, func() {
		q.fireDue(time.Now(), func(TimerListener) bool { return false })
	})
}
