package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type scheduled struct {
	delay time.Duration
	task  Task
}

// recordingScheduler keeps tasks until the test fires them.
type recordingScheduler struct {
	pending []scheduled
}

func (s *recordingScheduler) Schedule(delay time.Duration, task Task) {
	s.pending = append(s.pending, scheduled{delay: delay, task: task})
}

// pop removes and returns the oldest pending task.
func (s *recordingScheduler) pop(t *testing.T) scheduled {
	t.Helper()
	require.NotEmpty(t, s.pending, "expected a scheduled task")
	next := s.pending[0]
	s.pending = s.pending[1:]
	return next
}

// scriptedRoller returns faces in order, then repeats the last one.
type scriptedRoller struct {
	faces []int
	i     int
}

func (r *scriptedRoller) RollDie() int {
	if len(r.faces) == 0 {
		return 1
	}
	if r.i >= len(r.faces) {
		return r.faces[len(r.faces)-1]
	}
	f := r.faces[r.i]
	r.i++
	return f
}

type fixedPolicy struct {
	action Action
	views  []SeatView
}

func (p *fixedPolicy) Decide(view SeatView) Action {
	p.views = append(p.views, view)
	return p.action
}

func newTestRoom(t *testing.T, faces ...int) (*Room, *recordingScheduler) {
	t.Helper()
	sched := &recordingScheduler{}
	r := NewRoom("ROOM01", "alice", "Alice", &scriptedRoller{faces: faces}, sched)
	return r, sched
}

func totalChips(r *Room) int {
	total := r.pot
	for _, p := range r.players {
		total += p.Chips
	}
	return total
}
