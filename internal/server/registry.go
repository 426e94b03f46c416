package server

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/dicepoker/internal/bot"
	"github.com/lox/dicepoker/internal/game"
	"github.com/lox/dicepoker/internal/roomcode"
)

const maxCodeAttempts = 32

// Registry maps room codes to running rooms and routes commands to them.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*roomActor

	codes  *roomcode.Generator
	bots   *bot.Factory
	dice   game.Roller
	clock  quartz.Clock
	opts   []game.RoomOption
	preset string
	logger *log.Logger
	botSeq atomic.Uint64
}

// RegistryDeps are the collaborators a Registry needs.
type RegistryDeps struct {
	Codes  *roomcode.Generator
	Bots   *bot.Factory
	Dice   game.Roller
	Clock  quartz.Clock
	Logger *log.Logger
}

// NewRegistry creates an empty registry using cfg for new rooms.
func NewRegistry(cfg Config, deps RegistryDeps) *Registry {
	return &Registry{
		rooms:  make(map[string]*roomActor),
		codes:  deps.Codes,
		bots:   deps.Bots,
		dice:   deps.Dice,
		clock:  deps.Clock,
		preset: cfg.DefaultBot,
		opts: []game.RoomOption{
			game.WithSeatLimits(cfg.MinPlayers, cfg.MaxSeats),
			game.WithDelays(cfg.BotDelay, cfg.PhaseDelay),
		},
		logger: deps.Logger.WithPrefix("registry"),
	}
}

// DefaultPlayerName is the name given to a player who did not supply one.
func DefaultPlayerName(playerID string) string {
	short := playerID
	if len(short) > 4 {
		short = short[:4]
	}
	return "Player " + short
}

// CreateRoom creates a room with v seated as host and returns the new code.
func (r *Registry) CreateRoom(v Viewer, playerName string) (string, error) {
	if playerName == "" {
		playerName = DefaultPlayerName(v.ID())
	}

	r.mu.Lock()
	code, err := r.allocateCode()
	if err != nil {
		r.mu.Unlock()
		return "", err
	}
	actor := newRoomActor(code, r.clock, r.logger)
	actor.room = game.NewRoom(code, v.ID(), playerName, r.dice, actor, r.opts...)
	r.rooms[code] = actor
	r.mu.Unlock()

	go actor.run()
	r.logger.Info("Room created", "room", code, "host", playerName)

	err = actor.do(func() error {
		actor.attach(v)
		host := actor.room.Player(v.ID())
		msg, err := NewMessage(MessageTypeRoomCreated, RoomCreatedData{RoomID: code, Player: *host})
		if err != nil {
			return err
		}
		if err := v.SendMessage(msg); err != nil {
			return err
		}
		actor.broadcast()
		return nil
	})
	return code, err
}

// allocateCode must be called with mu held.
func (r *Registry) allocateCode() (string, error) {
	for range maxCodeAttempts {
		code := r.codes.Generate()
		if _, taken := r.rooms[code]; !taken {
			return code, nil
		}
	}
	return "", ErrCodeSpace
}

func (r *Registry) get(roomID string) (*roomActor, error) {
	code := roomcode.Normalize(roomID)
	if err := roomcode.Validate(code); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRoomNotFound, err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	actor, ok := r.rooms[code]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRoomNotFound, roomID)
	}
	return actor, nil
}

// JoinRoom seats v in an existing room and returns the normalised code.
func (r *Registry) JoinRoom(v Viewer, roomID, playerName string) (string, error) {
	actor, err := r.get(roomID)
	if err != nil {
		return "", err
	}
	if playerName == "" {
		playerName = DefaultPlayerName(v.ID())
	}
	err = actor.mutate(func(room *game.Room) error {
		if err := room.Join(v.ID(), playerName); err != nil {
			return err
		}
		actor.attach(v)
		return nil
	})
	if err != nil {
		return "", err
	}
	return actor.id, nil
}

// AddBot seats a bot using the named preset, or the configured default.
func (r *Registry) AddBot(callerID, roomID, preset string) error {
	actor, err := r.get(roomID)
	if err != nil {
		return err
	}
	if preset == "" {
		preset = r.preset
	}
	policy, err := r.bots.Policy(preset)
	if err != nil {
		return err
	}
	botID := fmt.Sprintf("bot-%d", r.botSeq.Add(1))
	name := r.bots.Name()
	return actor.mutate(func(room *game.Room) error {
		return room.AddBot(callerID, botID, name, policy)
	})
}

// StartGame starts a round on behalf of callerID.
func (r *Registry) StartGame(callerID, roomID string) error {
	actor, err := r.get(roomID)
	if err != nil {
		return err
	}
	return actor.mutate(func(room *game.Room) error {
		return room.Start(callerID)
	})
}

// PlayerAction applies a betting action on behalf of callerID.
func (r *Registry) PlayerAction(callerID, roomID, action string) error {
	actor, err := r.get(roomID)
	if err != nil {
		return err
	}
	a, err := game.ParseAction(action)
	if err != nil {
		return err
	}
	return actor.mutate(func(room *game.Room) error {
		return room.Act(callerID, a)
	})
}

// Disconnect detaches a viewer. Its seat stays at the table.
func (r *Registry) Disconnect(playerID, roomID string) {
	actor, err := r.get(roomID)
	if err != nil {
		return
	}
	if err := actor.do(func() error {
		actor.detach(playerID)
		return nil
	}); err != nil {
		r.logger.Debug("Disconnect after room closed", "room", roomID, "player", playerID)
	}
}

// Snapshot returns the unredacted state of a room.
func (r *Registry) Snapshot(roomID string) (game.State, error) {
	actor, err := r.get(roomID)
	if err != nil {
		return game.State{}, err
	}
	var s game.State
	err = actor.do(func() error {
		s = actor.room.Snapshot()
		return nil
	})
	return s, err
}

func (r *Registry) actors() []*roomActor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*roomActor, 0, len(r.rooms))
	for _, a := range r.rooms {
		out = append(out, a)
	}
	return out
}

// Rooms lists every live room, ordered by code.
func (r *Registry) Rooms() []RoomSummary {
	var out []RoomSummary
	for _, actor := range r.actors() {
		var sum RoomSummary
		if err := actor.do(func() error {
			sum = actor.summary()
			return nil
		}); err != nil {
			continue
		}
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of live rooms.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Remove stops a room and drops it from the registry.
func (r *Registry) Remove(roomID string) bool {
	r.mu.Lock()
	actor, ok := r.rooms[roomID]
	delete(r.rooms, roomID)
	r.mu.Unlock()
	if ok {
		actor.stop()
	}
	return ok
}

// ReapIdle removes rooms that have had no connected human for at least
// timeout. It returns the removed codes.
func (r *Registry) ReapIdle(timeout time.Duration) []string {
	now := r.clock.Now()
	var reaped []string
	for _, actor := range r.actors() {
		var since time.Time
		if err := actor.do(func() error {
			since = actor.emptySince
			return nil
		}); err != nil {
			continue
		}
		if since.IsZero() || now.Sub(since) < timeout {
			continue
		}
		if r.Remove(actor.id) {
			reaped = append(reaped, actor.id)
		}
	}
	return reaped
}

// Close stops every room.
func (r *Registry) Close() {
	r.mu.Lock()
	rooms := r.rooms
	r.rooms = make(map[string]*roomActor)
	r.mu.Unlock()
	for _, actor := range rooms {
		actor.stop()
	}
}
