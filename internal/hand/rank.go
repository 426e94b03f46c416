package hand

import "fmt"

// Rank is the category of a dice hand. Higher values beat lower values.
type Rank int

const (
	HighDie Rank = iota
	OnePair
	TwoPair
	ThreeOfAKind
	FiveStraight
	SixStraight
	FullHouse
	FourOfAKind
	FiveOfAKind
)

var rankNames = [...]string{
	HighDie:      "High Die",
	OnePair:      "One Pair",
	TwoPair:      "Two Pair",
	ThreeOfAKind: "Three of a Kind",
	FiveStraight: "Five Straight",
	SixStraight:  "Six Straight",
	FullHouse:    "Full House",
	FourOfAKind:  "Four of a Kind",
	FiveOfAKind:  "Five of a Kind",
}

var rankCodes = [...]string{
	HighDie:      "HIGH_DIE",
	OnePair:      "ONE_PAIR",
	TwoPair:      "TWO_PAIR",
	ThreeOfAKind: "THREE_OF_A_KIND",
	FiveStraight: "FIVE_STRAIGHT",
	SixStraight:  "SIX_STRAIGHT",
	FullHouse:    "FULL_HOUSE",
	FourOfAKind:  "FOUR_OF_A_KIND",
	FiveOfAKind:  "FIVE_OF_A_KIND",
}

// String returns the readable name of the rank
func (r Rank) String() string {
	if r < HighDie || r > FiveOfAKind {
		return "Unknown"
	}
	return rankNames[r]
}

// MarshalText encodes the rank as its wire code, e.g. FULL_HOUSE.
func (r Rank) MarshalText() ([]byte, error) {
	if r < HighDie || r > FiveOfAKind {
		return nil, fmt.Errorf("invalid rank: %d", int(r))
	}
	return []byte(rankCodes[r]), nil
}

// UnmarshalText decodes a wire code produced by MarshalText.
func (r *Rank) UnmarshalText(text []byte) error {
	for i, code := range rankCodes {
		if code == string(text) {
			*r = Rank(i)
			return nil
		}
	}
	return fmt.Errorf("unknown rank: %q", string(text))
}
