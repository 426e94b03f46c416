// Package hand evaluates dice-poker hands.
//
// A hand is any multiset of 2 to 7 die faces (hole dice plus whatever
// community dice have been revealed). Evaluate classifies it into the highest
// Rank it satisfies and records the tie-breaker sequence used by Compare.
package hand

import (
	"cmp"
	"fmt"
	"slices"
)

// Faces on a die.
const (
	MinFace = 1
	MaxFace = 6
)

// Result is an evaluated hand. It is derived from the dice and never stored
// on its own.
type Result struct {
	Rank        Rank   `json:"rank"`
	TieBreakers []int  `json:"tieBreakers"`
	Description string `json:"description"`
}

// profile is the precomputed view of a hand shared by every rank check.
type profile struct {
	sorted []int // faces, descending
	counts [MaxFace + 1]int
}

// distinct returns the faces present, highest first.
func (p *profile) distinct() []int {
	var faces []int
	for face := MaxFace; face >= MinFace; face-- {
		if p.counts[face] > 0 {
			faces = append(faces, face)
		}
	}
	return faces
}

// highestWithCount returns the highest face with at least n copies, skipping
// except. It returns 0 when no face qualifies.
func (p *profile) highestWithCount(n, except int) int {
	for face := MaxFace; face >= MinFace; face-- {
		if face != except && p.counts[face] >= n {
			return face
		}
	}
	return 0
}

func (p *profile) hasAll(faces ...int) bool {
	for _, face := range faces {
		if p.counts[face] == 0 {
			return false
		}
	}
	return true
}

// kickers returns up to n dice, highest first, that are not one of the
// excluded faces. Duplicates count individually.
func (p *profile) kickers(n int, exclude ...int) []int {
	out := make([]int, 0, n)
	for _, d := range p.sorted {
		if len(out) == n {
			break
		}
		if slices.Contains(exclude, d) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// check reports the Result for one rank, or false if the hand does not
// qualify for it.
type check func(p *profile) (Result, bool)

// checks runs top-down and the first match wins. The order is part of the
// ranking rules: Full House is tested before Six Straight, and Six Straight
// before Five Straight.
var checks = []check{
	fiveOfAKind,
	fourOfAKind,
	fullHouse,
	sixStraight,
	fiveStraight,
	threeOfAKind,
	twoPair,
	onePair,
}

// Evaluate classifies dice into the highest rank they satisfy. Faces outside
// 1..6 are ignored.
func Evaluate(dice []int) Result {
	p := &profile{sorted: make([]int, 0, len(dice))}
	for _, d := range dice {
		if d < MinFace || d > MaxFace {
			continue
		}
		p.counts[d]++
		p.sorted = append(p.sorted, d)
	}
	slices.SortFunc(p.sorted, func(a, b int) int { return cmp.Compare(b, a) })

	for _, c := range checks {
		if r, ok := c(p); ok {
			return r
		}
	}
	return highDie(p)
}

func fiveOfAKind(p *profile) (Result, bool) {
	face := p.highestWithCount(5, 0)
	if face == 0 {
		return Result{}, false
	}
	return Result{
		Rank:        FiveOfAKind,
		TieBreakers: []int{face},
		Description: fmt.Sprintf("Five of a Kind (%ds)", face),
	}, true
}

func fourOfAKind(p *profile) (Result, bool) {
	for _, face := range p.distinct() {
		if p.counts[face] != 4 {
			continue
		}
		kicker := 0
		for _, other := range p.distinct() {
			if other != face {
				kicker = other
				break
			}
		}
		return Result{
			Rank:        FourOfAKind,
			TieBreakers: []int{face, kicker},
			Description: fmt.Sprintf("Four of a Kind (%ds)", face),
		}, true
	}
	return Result{}, false
}

func fullHouse(p *profile) (Result, bool) {
	trip := p.highestWithCount(3, 0)
	if trip == 0 {
		return Result{}, false
	}
	pair := p.highestWithCount(2, trip)
	if pair == 0 {
		return Result{}, false
	}
	return Result{
		Rank:        FullHouse,
		TieBreakers: []int{trip, pair},
		Description: fmt.Sprintf("Full House (%ds over %ds)", trip, pair),
	}, true
}

func sixStraight(p *profile) (Result, bool) {
	if !p.hasAll(1, 2, 3, 4, 5, 6) {
		return Result{}, false
	}
	return Result{
		Rank:        SixStraight,
		TieBreakers: []int{6},
		Description: "Six Straight (1-6)",
	}, true
}

func fiveStraight(p *profile) (Result, bool) {
	switch {
	case p.hasAll(2, 3, 4, 5, 6):
		return Result{
			Rank:        FiveStraight,
			TieBreakers: []int{6},
			Description: "High Straight (2-6)",
		}, true
	case p.hasAll(1, 2, 3, 4, 5):
		return Result{
			Rank:        FiveStraight,
			TieBreakers: []int{5},
			Description: "Low Straight (1-5)",
		}, true
	}
	return Result{}, false
}

func threeOfAKind(p *profile) (Result, bool) {
	trip := p.highestWithCount(3, 0)
	if trip == 0 {
		return Result{}, false
	}
	return Result{
		Rank:        ThreeOfAKind,
		TieBreakers: append([]int{trip}, p.kickers(2, trip)...),
		Description: fmt.Sprintf("Three of a Kind (%ds)", trip),
	}, true
}

func pairs(p *profile) []int {
	var out []int
	for _, face := range p.distinct() {
		if p.counts[face] >= 2 {
			out = append(out, face)
		}
	}
	return out
}

func twoPair(p *profile) (Result, bool) {
	ps := pairs(p)
	if len(ps) < 2 {
		return Result{}, false
	}
	high, low := ps[0], ps[1]
	kicker := 0
	if k := p.kickers(1, high, low); len(k) > 0 {
		kicker = k[0]
	}
	return Result{
		Rank:        TwoPair,
		TieBreakers: []int{high, low, kicker},
		Description: fmt.Sprintf("Two Pair (%ds and %ds)", high, low),
	}, true
}

func onePair(p *profile) (Result, bool) {
	ps := pairs(p)
	if len(ps) != 1 {
		return Result{}, false
	}
	pair := ps[0]
	return Result{
		Rank:        OnePair,
		TieBreakers: append([]int{pair}, p.kickers(3, pair)...),
		Description: fmt.Sprintf("One Pair (%ds)", pair),
	}, true
}

func highDie(p *profile) Result {
	top := p.kickers(5)
	desc := "High Die"
	if len(top) > 0 {
		desc = fmt.Sprintf("High Die (%d)", top[0])
	}
	return Result{
		Rank:        HighDie,
		TieBreakers: top,
		Description: desc,
	}
}

// Compare returns 1 if a beats b, -1 if b beats a and 0 on a tie. Ranks are
// compared first, then tie-breakers pairwise; when one sequence runs out
// before a difference is found the hands tie.
func Compare(a, b Result) int {
	if a.Rank != b.Rank {
		return cmp.Compare(a.Rank, b.Rank)
	}
	n := min(len(a.TieBreakers), len(b.TieBreakers))
	for i := 0; i < n; i++ {
		if a.TieBreakers[i] != b.TieBreakers[i] {
			return cmp.Compare(a.TieBreakers[i], b.TieBreakers[i])
		}
	}
	return 0
}

// Beats reports whether a is strictly stronger than b.
func (r Result) Beats(other Result) bool {
	return Compare(r, other) > 0
}
