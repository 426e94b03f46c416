package server

import (
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/dicepoker/internal/game"
)

// Viewer receives room updates for one seated human.
type Viewer interface {
	ID() string
	SendMessage(msg *Message) error
}

// roomActor owns a game.Room and serialises every command, timer and
// broadcast for it on a single goroutine.
type roomActor struct {
	id      string
	room    *game.Room
	viewers map[string]Viewer
	// emptySince is when the last connected human left; zero while anyone is
	// connected.
	emptySince time.Time

	inbox    chan func()
	done     chan struct{}
	stopOnce sync.Once
	clock    quartz.Clock
	logger   *log.Logger
}

func newRoomActor(id string, clock quartz.Clock, logger *log.Logger) *roomActor {
	return &roomActor{
		id:      id,
		viewers: make(map[string]Viewer),
		inbox:   make(chan func(), 64),
		done:    make(chan struct{}),
		clock:   clock,
		logger:  logger.WithPrefix("room").With("room", id),
	}
}

func (a *roomActor) run() {
	for {
		select {
		case fn := <-a.inbox:
			fn()
		case <-a.done:
			return
		}
	}
}

func (a *roomActor) stop() {
	a.stopOnce.Do(func() { close(a.done) })
}

// post queues fn without waiting for it to run.
func (a *roomActor) post(fn func()) bool {
	select {
	case a.inbox <- fn:
		return true
	case <-a.done:
		return false
	}
}

// do runs fn on the actor goroutine and waits for its result.
func (a *roomActor) do(fn func() error) error {
	result := make(chan error, 1)
	if !a.post(func() { result <- fn() }) {
		return ErrRoomClosed
	}
	select {
	case err := <-result:
		return err
	case <-a.done:
		return ErrRoomClosed
	}
}

// mutate runs fn against the room and broadcasts if it succeeded.
func (a *roomActor) mutate(fn func(r *game.Room) error) error {
	return a.do(func() error {
		if err := fn(a.room); err != nil {
			return err
		}
		a.broadcast()
		return nil
	})
}

// Schedule implements game.Scheduler. The task is handed back to the actor
// goroutine when the timer fires.
func (a *roomActor) Schedule(delay time.Duration, task game.Task) {
	a.clock.AfterFunc(delay, func() {
		a.post(func() { a.fire(task) })
	}, "room", task.Kind.String())
}

func (a *roomActor) fire(task game.Task) {
	err := a.room.Fire(task)
	switch {
	case errors.Is(err, game.ErrStaleTask):
		a.logger.Debug("Dropped stale task", "kind", task.Kind, "round", task.Round, "phase", task.Phase)
		return
	case err != nil:
		a.logger.Error("Timer task failed", "kind", task.Kind, "error", err)
		return
	}
	a.broadcast()
}

func (a *roomActor) attach(v Viewer) {
	a.viewers[v.ID()] = v
	a.emptySince = time.Time{}
}

func (a *roomActor) detach(playerID string) {
	delete(a.viewers, playerID)
	if err := a.room.Disconnect(playerID); err != nil {
		a.logger.Debug("Disconnect for unseated player", "player", playerID)
		return
	}
	if a.room.ConnectedHumans() == 0 && a.emptySince.IsZero() {
		a.emptySince = a.clock.Now()
	}
	a.broadcast()
}

// broadcast sends each viewer its own redacted snapshot.
func (a *roomActor) broadcast() {
	state := a.room.Snapshot()
	for id, v := range a.viewers {
		msg, err := NewMessage(MessageTypeRoomState, Redact(state, id))
		if err != nil {
			a.logger.Error("Failed to encode room state", "error", err)
			return
		}
		if err := v.SendMessage(msg); err != nil {
			a.logger.Warn("Dropping viewer", "player", id, "error", err)
			delete(a.viewers, id)
		}
	}
}

func (a *roomActor) summary() RoomSummary {
	s := a.room.Snapshot()
	sum := RoomSummary{ID: a.id, Phase: s.Phase, Players: len(s.Players), Round: s.Round}
	for _, p := range s.Players {
		if p.IsHuman {
			sum.Humans++
			if p.Connected {
				sum.Connected++
			}
		}
	}
	return sum
}
