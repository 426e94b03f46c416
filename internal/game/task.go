package game

import "time"

// TaskKind identifies deferred work a room asks its scheduler to run.
type TaskKind int

const (
	// TaskAdvancePhase moves to the next street once betting has gone round.
	TaskAdvancePhase TaskKind = iota
	// TaskBotAction lets a bot seat take its turn.
	TaskBotAction
	// TaskAutoFold folds a disconnected human whose turn it is.
	TaskAutoFold
)

func (k TaskKind) String() string {
	switch k {
	case TaskAdvancePhase:
		return "advance_phase"
	case TaskBotAction:
		return "bot_action"
	case TaskAutoFold:
		return "auto_fold"
	default:
		return "unknown"
	}
}

// Task is a snapshot token for deferred work. Room.Fire only applies it if the
// room is still in the round, phase and turn it was created for.
type Task struct {
	Kind     TaskKind
	Round    uint64
	Phase    Phase
	Seat     int
	PlayerID string
}

// Scheduler runs a task after a delay by passing it back to Room.Fire on the
// room's own goroutine.
type Scheduler interface {
	Schedule(delay time.Duration, task Task)
}

// Roller produces die faces in [1, 6].
type Roller interface {
	RollDie() int
}
