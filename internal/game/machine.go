package game

import (
	"fmt"

	"github.com/lox/dicepoker/internal/hand"
)

// Start deals a new round. Only the host may start, and only from idle or
// after a showdown.
func (r *Room) Start(callerID string) error {
	if r.phase != PhaseIdle && r.phase != PhaseShowdown {
		return ErrWrongPhase
	}
	caller := r.Player(callerID)
	if caller == nil {
		return ErrNotSeated
	}
	if !caller.IsHost {
		return ErrNotHost
	}
	if len(r.players) < r.cfg.minPlayers {
		return ErrNotEnoughPlayers
	}

	r.round++
	r.phase = PhasePreFlop
	r.community = []int{}
	r.log = []string{"--- New round ---"}
	r.pot = 0

	for _, p := range r.players {
		p.HoleDice = make([]int, HoleDiceCount)
		for i := range p.HoleDice {
			p.HoleDice[i] = r.roller.RollDie()
		}
		p.HasFolded = false
		p.IsWinner = false
		p.HandResult = nil
		p.Bet = 0
		r.pot += p.charge(BlindAmount)
	}

	r.currentBet = BlindAmount
	r.logf("Blinds of %d collected", BlindAmount)
	r.activeIdx = 0
	r.promptActive()
	return nil
}

// Act applies a betting action from the player whose turn it is.
func (r *Room) Act(playerID string, action Action) error {
	if !r.phase.IsBetting() {
		return ErrWrongPhase
	}
	i := r.seatOf(playerID)
	if i < 0 || i != r.activeIdx {
		return ErrNotYourTurn
	}
	p := r.players[i]

	switch action {
	case Fold:
		p.HasFolded = true
		r.logf("%s folds", p.Name)
		if winner := r.soleSurvivor(); winner != nil {
			r.awardUncontested(winner)
			return nil
		}

	case Call:
		short := p.Chips < CallAmount
		r.pot += p.charge(CallAmount)
		if short {
			r.logf("%s is all in!", p.Name)
		} else {
			r.logf("%s bets %d", p.Name, CallAmount)
		}

	case Check:
		r.logf("%s checks", p.Name)

	default:
		return ErrUnknownAction
	}

	r.advanceTurn()
	return nil
}

// Fire applies a task previously handed to the Scheduler. Tasks from an
// earlier round, phase or turn return ErrStaleTask and change nothing.
func (r *Room) Fire(task Task) error {
	if task.Round != r.round || task.Phase != r.phase {
		return ErrStaleTask
	}

	switch task.Kind {
	case TaskAdvancePhase:
		if r.activeIdx != -1 {
			return ErrStaleTask
		}
		r.nextPhase()
		return nil

	case TaskBotAction, TaskAutoFold:
		if task.Seat != r.activeIdx || task.Seat < 0 || r.players[task.Seat].ID != task.PlayerID {
			return ErrStaleTask
		}
		p := r.players[task.Seat]
		action := Fold
		if task.Kind == TaskBotAction {
			policy, ok := r.policies[p.ID]
			if !ok {
				return fmt.Errorf("no policy for bot %s", p.ID)
			}
			action = policy.Decide(r.seatView(task.Seat))
		}
		return r.Act(p.ID, action)
	}

	return fmt.Errorf("unknown task kind %d", task.Kind)
}

// advanceTurn moves to the next seat that has not folded. Running off the end
// of the table completes the street; the next phase is dealt after a pause
// during which nobody may act.
func (r *Room) advanceTurn() {
	for next := r.activeIdx + 1; next < len(r.players); next++ {
		if !r.players[next].HasFolded {
			r.activeIdx = next
			r.promptActive()
			return
		}
	}

	r.activeIdx = -1
	r.sched.Schedule(r.cfg.phaseDelay, Task{
		Kind:  TaskAdvancePhase,
		Round: r.round,
		Phase: r.phase,
		Seat:  -1,
	})
}

// promptActive schedules the active seat's move when no human will send it.
func (r *Room) promptActive() {
	if r.activeIdx < 0 {
		return
	}
	p := r.players[r.activeIdx]
	kind := TaskBotAction
	switch {
	case !p.IsHuman:
	case !p.Connected:
		kind = TaskAutoFold
	default:
		return
	}
	r.sched.Schedule(r.cfg.botDelay, Task{
		Kind:     kind,
		Round:    r.round,
		Phase:    r.phase,
		Seat:     r.activeIdx,
		PlayerID: p.ID,
	})
}

func (r *Room) nextPhase() {
	switch r.phase {
	case PhasePreFlop:
		r.phase = PhaseFlop
		r.deal(3)
		r.logf("Flop: 3 community dice dealt")
	case PhaseFlop:
		r.phase = PhaseTurn
		r.deal(1)
		r.logf("Turn: 1 community die dealt")
	case PhaseTurn:
		r.phase = PhaseRiver
		r.deal(1)
		r.logf("River: 1 community die dealt")
	case PhaseRiver:
		r.phase = PhaseShowdown
		r.logf("Showdown!")
	default:
		return
	}

	r.currentBet = 0
	for _, p := range r.players {
		p.Bet = 0
	}

	if r.phase == PhaseShowdown {
		r.showdown()
		return
	}

	r.activeIdx = -1
	for i, p := range r.players {
		if !p.HasFolded {
			r.activeIdx = i
			break
		}
	}
	r.promptActive()
}

func (r *Room) deal(n int) {
	for i := 0; i < n; i++ {
		r.community = append(r.community, r.roller.RollDie())
	}
}

// showdown evaluates every live hand and pays the whole pot to the best one.
// Ties go to the earliest seat.
func (r *Room) showdown() {
	r.activeIdx = -1

	var winner *Player
	var best hand.Result
	for _, p := range r.players {
		if p.HasFolded {
			continue
		}
		dice := append(append([]int{}, p.HoleDice...), r.community...)
		result := hand.Evaluate(dice)
		p.HandResult = &result
		if winner == nil || result.Beats(best) {
			winner, best = p, result
		}
	}
	if winner == nil {
		return
	}

	won := r.pot
	r.payout(winner)
	r.logf("%s wins %d chips with %s", winner.Name, won, best.Description)
}

func (r *Room) soleSurvivor() *Player {
	var last *Player
	for _, p := range r.players {
		if p.HasFolded {
			continue
		}
		if last != nil {
			return nil
		}
		last = p
	}
	return last
}

// awardUncontested ends the round when everyone else has folded.
func (r *Room) awardUncontested(winner *Player) {
	won := r.pot
	r.payout(winner)
	r.phase = PhaseShowdown
	r.activeIdx = -1
	r.logf("%s wins %d chips (everyone else folded)", winner.Name, won)
}

func (r *Room) payout(winner *Player) {
	winner.Chips += r.pot
	r.pot = 0
	for _, p := range r.players {
		p.IsWinner = p == winner
	}
}

func (r *Room) seatView(seat int) SeatView {
	p := r.players[seat]
	return SeatView{
		Seat:          seat,
		Phase:         r.phase,
		Chips:         p.Chips,
		Bet:           p.Bet,
		Pot:           r.pot,
		CurrentBet:    r.currentBet,
		HoleDice:      append([]int{}, p.HoleDice...),
		CommunityDice: append([]int{}, r.community...),
	}
}
