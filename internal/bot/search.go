package bot

import (
	"math"
	"sort"
	"time"

	"github.com/hiveking/koth/internal/action"
	"github.com/hiveking/koth/internal/hexboard"
	"github.com/hiveking/koth/internal/match"
	"k8s.io/klog/v2"
)

// DefaultMaxDepth is the number of plies the searcher explores by default.
const DefaultMaxDepth = 3

// searchTimeWarning is logged if a single Search call runs longer than this
// -- the synchronous-search budget.
const searchTimeWarning = 5 * time.Second

// Searcher is a fixed-depth alpha-beta searcher over the shared move
// generator (internal/action.LegalActions) and the fixed Evaluate
// heuristic. It holds no learned weights and no per-game state.
type Searcher struct {
	MaxDepth int
}

// New returns a Searcher configured with DefaultMaxDepth.
func New() *Searcher {
	return &Searcher{MaxDepth: DefaultMaxDepth}
}

// Search returns the best action for colour to commit from s, exploring
// MaxDepth plies of alpha-beta minimax. If colour has no legal action, it
// returns an ActionPass -- the same outcome a clock timeout would produce.
func (sr *Searcher) Search(s *match.State, colour hexboard.Colour) match.Action {
	start := time.Now()
	defer func() {
		if elapsed := time.Since(start); elapsed > searchTimeWarning {
			klog.Warningf("bot search for %s took %s, exceeding the %s budget", colour, elapsed, searchTimeWarning)
		}
	}()

	actions := action.LegalActions(s, colour)
	if len(actions) == 0 {
		return match.Action{Kind: match.ActionPass}
	}
	orderActions(s.Board, colour, actions)

	alpha := float32(math.Inf(-1))
	beta := float32(math.Inf(1))
	best := actions[0]
	bestScore := float32(math.Inf(-1))

	for _, act := range actions {
		next := s.Clone()
		next.CurrentColour = colour
		next.Commit(act, time.Time{})
		score := -sr.negamax(next, colour.Opponent(), colour, sr.MaxDepth-1, -beta, -alpha)
		if score > bestScore {
			bestScore = score
			best = act
		}
		if score > alpha {
			alpha = score
		}
	}
	return best
}

// negamax scores st from toMove's perspective, negated so the caller (one
// ply up, the other side) can maximize directly. rootColour is who Evaluate
// scores leaves for; depthLeft plies remain.
func (sr *Searcher) negamax(st *match.State, toMove, rootColour hexboard.Colour, depthLeft int, alpha, beta float32) float32 {
	if st.Phase == match.Terminal {
		return terminalScore(st, toMove)
	}

	actions := action.LegalActions(st, toMove)
	if len(actions) == 0 {
		// No legal action: treat like a clock timeout, a pass that still
		// consumes a ply of search depth.
		next := st.Clone()
		next.CurrentColour = toMove
		next.CommitTimeout(time.Time{})
		return -sr.negamax(next, toMove.Opponent(), rootColour, depthLeft-1, -beta, -alpha)
	}

	if depthLeft <= 0 {
		sign := float32(1)
		if toMove != rootColour {
			sign = -1
		}
		return sign * Evaluate(st, rootColour)
	}

	orderActions(st.Board, toMove, actions)

	best := float32(math.Inf(-1))
	for _, act := range actions {
		next := st.Clone()
		next.CurrentColour = toMove
		next.Commit(act, time.Time{})
		score := -sr.negamax(next, toMove.Opponent(), rootColour, depthLeft-1, -beta, -alpha)
		if score > best {
			best = score
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			break // beta cut-off
		}
	}
	return best
}

// terminalScore converts a finished match's outcome into a signed score
// from toMove's perspective, dwarfing any heuristic evaluation.
func terminalScore(st *match.State, toMove hexboard.Colour) float32 {
	const winScore = 1_000_000
	switch st.Outcome {
	case match.Draw:
		return 0
	case match.WhiteWins:
		if toMove == hexboard.White {
			return winScore
		}
		return -winScore
	case match.BlackWins:
		if toMove == hexboard.Black {
			return winScore
		}
		return -winScore
	default:
		return 0
	}
}

// orderActions sorts candidate actions in place by the cheap move-ordering
// heuristic: Queen placements first, then placements or
// destinations close to the enemy Queen, ties broken by original
// enumeration order (sort.SliceStable).
func orderActions(b *hexboard.Board, mover hexboard.Colour, actions []match.Action) {
	enemyQueen, found := enemyQueenPos(b, mover)
	rank := func(act match.Action) int {
		isQueenPlacement := act.Kind == match.ActionPlace && act.Species == hexboard.Queen
		if isQueenPlacement {
			return 0
		}
		if !found {
			return 1
		}
		dest := act.To
		return 1 + hexboard.Distance(dest, enemyQueen)
	}
	sort.SliceStable(actions, func(i, j int) bool {
		return rank(actions[i]) < rank(actions[j])
	})
}

func enemyQueenPos(b *hexboard.Board, colour hexboard.Colour) (hexboard.Coord, bool) {
	enemy := colour.Opponent()
	for _, c := range b.OccupiedCoords() {
		stack, _ := b.Get(c)
		for _, p := range stack {
			if p.Specie == hexboard.Queen && p.Owner == enemy {
				return c, true
			}
		}
	}
	return hexboard.Coord{}, false
}
