package action

import (
	"github.com/hiveking/koth/internal/hexboard"
	"github.com/hiveking/koth/internal/match"
	"github.com/hiveking/koth/internal/rules"
)

// LegalActions enumerates every match.Action colour may commit from s right
// now: every (species, coordinate) placement the Queen-opening constraint
// allows, plus every (from, to) move for pieces colour owns once their
// Queen is on the board. It does not check whose turn it is -- callers
// that need turn-legality should use Validate instead; this is the bot's
// move generator, which explores both sides' replies regardless of
// whose real turn it is in the live match.
func LegalActions(s *match.State, colour hexboard.Colour) []match.Action {
	var out []match.Action

	hand := s.Hand(colour)
	mustPlaceQueen := queenMustBePlaced(s, colour)
	placements := rules.ValidPlacements(s.Board, colour)
	for _, species := range hexboard.AllSpecies {
		if mustPlaceQueen && species != hexboard.Queen {
			continue
		}
		if hand[species] == 0 {
			continue
		}
		for coord := range placements {
			out = append(out, match.Action{Kind: match.ActionPlace, Species: species, To: coord})
		}
	}

	if s.QueenPlaced(colour) {
		for _, from := range s.Board.OccupiedCoords() {
			top, _ := s.Board.TopAt(from)
			if top.Owner != colour {
				continue
			}
			for _, to := range rules.PieceMoves(s.Board, from) {
				out = append(out, match.Action{Kind: match.ActionMove, From: from, To: to})
			}
		}
	}

	return out
}
