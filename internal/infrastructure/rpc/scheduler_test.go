package rpc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(t *testing.T) (*sequenceScheduler, *time.Time) {
	t.Helper()
	now := time.Now()
	s := &sequenceScheduler{
		byID: make(map[int64]*timerEntry),
		now:  func() time.Time { return now },
	}
	return s, &now
}

func TestStartTimerAssignsIncreasingIDs(t *testing.T) {
	s, _ := newTestScheduler(t)
	id1 := s.StartTimer(100, func() bool { return true })
	id2 := s.StartTimer(100, func() bool { return true })
	assert.NotEqual(t, id1, id2)
	assert.Equal(t, 2, s.TimerNum())
}

func TestUpdateFiresExpiredTimersInDeadlineOrder(t *testing.T) {
	s, now := newTestScheduler(t)
	var fired []int

	s.StartTimer(300, func() bool { fired = append(fired, 3); return true })
	s.StartTimer(100, func() bool { fired = append(fired, 1); return true })
	s.StartTimer(200, func() bool { fired = append(fired, 2); return true })

	*now = now.Add(250 * time.Millisecond)
	n := s.Update()

	require.Equal(t, 2, n)
	assert.Equal(t, []int{1, 2}, fired)
	assert.Equal(t, 1, s.TimerNum())
}

func TestStopTimerPreventsFiring(t *testing.T) {
	s, now := newTestScheduler(t)
	fired := false
	id := s.StartTimer(100, func() bool { fired = true; return true })

	s.StopTimer(id)
	*now = now.Add(time.Second)
	n := s.Update()

	assert.Equal(t, 0, n)
	assert.False(t, fired)
	assert.Equal(t, 0, s.TimerNum())
}

func TestStopTimerUnknownIDIsNoop(t *testing.T) {
	s, _ := newTestScheduler(t)
	assert.NotPanics(t, func() { s.StopTimer(999) })
}

func TestUpdateLeavesFutureTimersUntouched(t *testing.T) {
	s, now := newTestScheduler(t)
	fired := false
	s.StartTimer(1000, func() bool { fired = true; return true })

	*now = now.Add(10 * time.Millisecond)
	n := s.Update()

	assert.Equal(t, 0, n)
	assert.False(t, fired)
	assert.Equal(t, 1, s.TimerNum())
}
