// Package bot implements the fixed-depth alpha-beta minimax virtual player
// a move generator shared with the action validator, a fixed
// (non-learned) evaluation heuristic, and depth-ordered search.
package bot

import (
	"github.com/chewxy/math32"

	"github.com/hiveking/koth/internal/hexboard"
	"github.com/hiveking/koth/internal/match"
)

// materialWeights are the fixed per-species point values used by Evaluate.
var materialWeights = map[hexboard.Species]float32{
	hexboard.Queen:       1000,
	hexboard.Ant:         200,
	hexboard.Beetle:      180,
	hexboard.Spider:      150,
	hexboard.Grasshopper: 120,
}

const materialScale = 0.8

// Evaluate scores s from perspective's point of view: positive favours
// perspective, negative favours its opponent. It is intentionally a fixed
// heuristic, never a learned scorer.
func Evaluate(s *match.State, perspective hexboard.Colour) float32 {
	opponent := perspective.Opponent()

	var material, ownEmpty, oppEmpty float32
	var ownStuck, oppStuck int
	for _, c := range s.Board.OccupiedCoords() {
		top, _ := s.Board.TopAt(c)
		empty := len(s.Board.EmptyNeighbours(c))
		if top.Owner == perspective {
			material += materialWeights[top.Specie]
			ownEmpty += float32(empty)
			if empty == 0 {
				ownStuck++
			}
		} else {
			material -= materialWeights[top.Specie]
			oppEmpty += float32(empty)
			if empty == 0 {
				oppStuck++
			}
		}
	}
	score := materialScale * material

	ownQueenPos, ownQueenPlaced := queenPos(s, perspective)
	oppQueenPos, oppQueenPlaced := queenPos(s, opponent)

	switch {
	case ownQueenPlaced:
		emptyAround := len(s.Board.EmptyNeighbours(ownQueenPos))
		score += 40 * float32(emptyAround)
		if emptyAround == 0 {
			score -= 2000
		}
	default:
		score -= 150
	}
	if oppQueenPlaced {
		occupiedAround := 6 - len(s.Board.EmptyNeighbours(oppQueenPos))
		score += 70 * float32(occupiedAround)
		if occupiedAround == 6 {
			score += 2000
		}
	}

	score += 3 * (ownEmpty - oppEmpty)
	score += 40 * float32(oppStuck-ownStuck)

	if !s.Board.IsHiveConnected() {
		score -= 1000
	}

	if ownQueenPlaced && oppQueenPlaced {
		dist := hexboard.Distance(ownQueenPos, oppQueenPos)
		score += 5 * math32.Max(0, 10-float32(dist))
	}

	return score
}

func queenPos(s *match.State, colour hexboard.Colour) (hexboard.Coord, bool) {
	for _, c := range s.Board.OccupiedCoords() {
		stack, _ := s.Board.Get(c)
		for _, p := range stack {
			if p.Specie == hexboard.Queen && p.Owner == colour {
				return c, true
			}
		}
	}
	return hexboard.Coord{}, false
}
