package game

import (
	"fmt"
	"time"
)

// Policy chooses an action for a bot seat. It sees only what that seat would
// see: its own hole dice and the public table.
type Policy interface {
	Decide(view SeatView) Action
}

// SeatView is the input to a bot Policy.
type SeatView struct {
	Seat          int
	Phase         Phase
	Chips         int
	Bet           int
	Pot           int
	CurrentBet    int
	HoleDice      []int
	CommunityDice []int
}

// RoomOption configures a Room during creation.
type RoomOption func(*roomConfig)

type roomConfig struct {
	minPlayers int
	maxSeats   int
	botDelay   time.Duration
	phaseDelay time.Duration
}

// WithSeatLimits bounds how many players must be seated to start and how many
// may be seated at all.
func WithSeatLimits(minPlayers, maxSeats int) RoomOption {
	return func(c *roomConfig) {
		c.minPlayers = minPlayers
		c.maxSeats = maxSeats
	}
}

// WithDelays sets how long a bot waits before acting and how long the table
// pauses between streets.
func WithDelays(botDelay, phaseDelay time.Duration) RoomOption {
	return func(c *roomConfig) {
		c.botDelay = botDelay
		c.phaseDelay = phaseDelay
	}
}

// Room is the authoritative state of one game instance.
type Room struct {
	id         string
	players    []*Player
	phase      Phase
	community  []int
	pot        int
	currentBet int
	activeIdx  int
	log        []string
	round      uint64

	policies map[string]Policy
	roller   Roller
	sched    Scheduler
	cfg      roomConfig
}

// NewRoom creates a room in PhaseIdle with the host seated.
func NewRoom(id, hostID, hostName string, roller Roller, sched Scheduler, opts ...RoomOption) *Room {
	if roller == nil {
		panic("roller is required for room creation")
	}
	if sched == nil {
		panic("scheduler is required for room creation")
	}

	cfg := roomConfig{
		minPlayers: DefaultMinPlayers,
		maxSeats:   DefaultMaxSeats,
		botDelay:   DefaultBotDelay,
		phaseDelay: DefaultPhaseDelay,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Room{
		id:        id,
		players:   []*Player{newPlayer(hostID, hostName, true, true)},
		phase:     PhaseIdle,
		community: []int{},
		activeIdx: -1,
		log:       []string{fmt.Sprintf("Room %s created", id)},
		policies:  make(map[string]Policy),
		roller:    roller,
		sched:     sched,
		cfg:       cfg,
	}
}

// ID returns the room code.
func (r *Room) ID() string { return r.id }

// Phase returns the current phase.
func (r *Room) Phase() Phase { return r.phase }

// Round returns how many rounds have been started in this room.
func (r *Room) Round() uint64 { return r.round }

// Player returns the seated player with id, or nil.
func (r *Room) Player(id string) *Player {
	if i := r.seatOf(id); i >= 0 {
		return r.players[i]
	}
	return nil
}

func (r *Room) seatOf(id string) int {
	for i, p := range r.players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// ConnectedHumans counts human seats whose viewer is still attached.
func (r *Room) ConnectedHumans() int {
	n := 0
	for _, p := range r.players {
		if p.IsHuman && p.Connected {
			n++
		}
	}
	return n
}

func (r *Room) logf(format string, args ...any) {
	r.log = append(r.log, fmt.Sprintf(format, args...))
}

func (r *Room) canSeat(id string) error {
	if r.phase != PhaseIdle {
		return ErrNotAcceptingSeats
	}
	if len(r.players) >= r.cfg.maxSeats {
		return ErrRoomFull
	}
	if r.seatOf(id) >= 0 {
		return ErrAlreadySeated
	}
	return nil
}

// Join seats a human player. Seats are only added while the room is idle.
func (r *Room) Join(id, name string) error {
	if err := r.canSeat(id); err != nil {
		return err
	}
	r.players = append(r.players, newPlayer(id, name, true, false))
	r.logf("%s joined the room", name)
	return nil
}

// AddBot seats a bot driven by policy. Any seated player may add bots while
// the room is idle.
func (r *Room) AddBot(callerID, botID, name string, policy Policy) error {
	if r.seatOf(callerID) < 0 {
		return ErrNotSeated
	}
	if r.phase != PhaseIdle {
		return ErrWrongPhase
	}
	if err := r.canSeat(botID); err != nil {
		return err
	}
	r.players = append(r.players, newPlayer(botID, name, false, false))
	r.policies[botID] = policy
	r.logf("Bot %s joined the table", name)
	return nil
}

// Disconnect marks a human seat as having no viewer. The seat is kept; when
// its turn comes it is folded automatically.
func (r *Room) Disconnect(id string) error {
	i := r.seatOf(id)
	if i < 0 {
		return ErrNotSeated
	}
	p := r.players[i]
	if !p.Connected {
		return nil
	}
	p.Connected = false
	r.logf("%s disconnected", p.Name)
	if r.phase.IsBetting() && r.activeIdx == i {
		r.promptActive()
	}
	return nil
}

// State is a point-in-time copy of a room, safe to read from any goroutine.
type State struct {
	ID              string   `json:"id"`
	Players         []Player `json:"players"`
	Phase           Phase    `json:"phase"`
	CommunityDice   []int    `json:"communityDice"`
	Pot             int      `json:"pot"`
	CurrentBet      int      `json:"currentBet"`
	ActivePlayerIdx int      `json:"activePlayerIdx"`
	Log             []string `json:"log"`
	Round           uint64   `json:"round"`
}

// Snapshot copies the full, unredacted room state.
func (r *Room) Snapshot() State {
	players := make([]Player, len(r.players))
	for i, p := range r.players {
		players[i] = p.clone()
	}
	return State{
		ID:              r.id,
		Players:         players,
		Phase:           r.phase,
		CommunityDice:   append([]int{}, r.community...),
		Pot:             r.pot,
		CurrentBet:      r.currentBet,
		ActivePlayerIdx: r.activeIdx,
		Log:             append([]string{}, r.log...),
		Round:           r.round,
	}
}
