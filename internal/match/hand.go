package match

import "github.com/hiveking/koth/internal/hexboard"

// Hand is the remaining placement count per species for one player.
// Counts only ever decrease, from InitialHand down to zero.
type Hand map[hexboard.Species]uint8

// InitialHand returns a fresh hand at the start of a match.
func InitialHand() Hand {
	return Hand{
		hexboard.Queen:       1,
		hexboard.Spider:      2,
		hexboard.Beetle:      2,
		hexboard.Grasshopper: 3,
		hexboard.Ant:         3,
	}
}

// Total returns the sum of all remaining counts.
func (h Hand) Total() uint8 {
	var total uint8
	for _, c := range h {
		total += c
	}
	return total
}

// Clone returns an independent copy of the hand.
func (h Hand) Clone() Hand {
	clone := make(Hand, len(h))
	for s, c := range h {
		clone[s] = c
	}
	return clone
}
