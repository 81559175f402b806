// Package match implements the per-match state machine: turns, hands, move
// clock, victory detection, and terminal handling. It owns the board and
// hands exclusively; seating and the queue live in internal/koth.
package match

import (
	"fmt"
	"maps"
	"sort"
	"time"

	"github.com/hiveking/koth/internal/hexboard"
	"k8s.io/klog/v2"
)

// Phase is the match's coarse lifecycle state.
type Phase uint8

const (
	Waiting Phase = iota
	Active
	Terminal
)

// Outcome records who, if anyone, has won a terminal match.
type Outcome uint8

const (
	NoOutcome Outcome = iota
	WhiteWins
	BlackWins
	Draw
)

func (o Outcome) String() string {
	switch o {
	case WhiteWins:
		return "WHITE"
	case BlackWins:
		return "BLACK"
	case Draw:
		return "DRAW"
	default:
		return ""
	}
}

// MoveClockBudget is the per-turn time budget before the server commits an
// automatic pass on behalf of the player to move.
const MoveClockBudget = 30 * time.Second

// RotationDelay is how long a terminal match lingers before the queue
// controller reseats and resets it.
const RotationDelay = 5 * time.Second

// DefaultMaxMoves bounds a match's length before it is declared a draw, so
// passive play can never stall a match forever.
const DefaultMaxMoves = 400

// MaxBoardRepeats is the number of occurrences of an identical board
// position (with the same side to move) at which the match is declared a
// draw: the third occurrence ends it.
const MaxBoardRepeats = 3

// ActionKind distinguishes the three committed-action shapes.
type ActionKind uint8

const (
	ActionPlace ActionKind = iota
	ActionMove
	ActionPass
)

// Action is a single committed mutation of the match: a placement, a move,
// or a clock-driven pass. Validity is the action validator's
// responsibility (internal/action); Commit assumes it is already legal.
type Action struct {
	Kind    ActionKind
	Species hexboard.Species // ActionPlace
	From    hexboard.Coord   // ActionMove
	To      hexboard.Coord   // ActionPlace (target) and ActionMove (destination)
}

// State is the authoritative per-match state: board, hands, turn order,
// clock anchor, and the append-only log. It is process-wide, reset in
// place by NewMatch rather than reallocated on every King-of-the-Hill
// rotation.
type State struct {
	Phase         Phase
	Board         *hexboard.Board
	Hands         [2]Hand // indexed by hexboard.Colour
	TurnNumber    int     // 1-based, increments on every committed action
	CurrentColour hexboard.Colour
	Outcome       Outcome
	Log           []string
	MaxMoves      int

	clockAnchor  time.Time
	repeatCounts map[string]int
}

// NewMatch resets state in place to a fresh empty board, full hands, White
// to move at turn 1, and clears the log. now anchors the first move clock.
func (s *State) NewMatch(now time.Time) {
	s.Phase = Active
	s.Board = hexboard.NewBoard()
	s.Hands = [2]Hand{White: InitialHand(), Black: InitialHand()}
	s.TurnNumber = 1
	s.CurrentColour = hexboard.White
	s.Outcome = NoOutcome
	s.Log = nil
	if s.MaxMoves == 0 {
		s.MaxMoves = DefaultMaxMoves
	}
	s.clockAnchor = now
	s.repeatCounts = make(map[string]int)
}

// hand colour indices match hexboard.Colour's own values.
const (
	White = hexboard.White
	Black = hexboard.Black
)

// Hand returns the hand for colour.
func (s *State) Hand(colour hexboard.Colour) Hand {
	return s.Hands[colour]
}

// PersonalTurnIndex returns ⌈turnNumber/2⌉, the player's own move count.
func PersonalTurnIndex(turnNumber int) int {
	return (turnNumber + 1) / 2
}

// TimeLeft returns the seconds remaining in the current turn's clock
// budget, clamped to [0, 30], as of now.
func (s *State) TimeLeft(now time.Time) int {
	elapsed := now.Sub(s.clockAnchor)
	remaining := MoveClockBudget - elapsed
	if remaining < 0 {
		return 0
	}
	if remaining > MoveClockBudget {
		remaining = MoveClockBudget
	}
	return int(remaining / time.Second)
}

// ClockExpired reports whether the move clock budget has elapsed as of now.
func (s *State) ClockExpired(now time.Time) bool {
	return now.Sub(s.clockAnchor) >= MoveClockBudget
}

func (s *State) appendLog(format string, args ...any) {
	s.Log = append(s.Log, fmt.Sprintf(format, args...))
}

// Commit applies a single already-validated action: mutate board/hand,
// append a log entry, run victory detection, and -- if the match is not
// now terminal -- flip the current colour, advance the turn number, and
// reset the clock anchor to now.
func (s *State) Commit(action Action, now time.Time) {
	if s.Phase != Active {
		klog.Warningf("Commit called on non-Active match (phase=%d); ignoring", s.Phase)
		return
	}
	mover := s.CurrentColour

	switch action.Kind {
	case ActionPlace:
		piece := hexboard.Piece{
			ID:     fmt.Sprintf("%s-%s-%d", mover, action.Species, s.TurnNumber),
			Owner:  mover,
			Specie: action.Species,
		}
		s.Board.Push(action.To, piece)
		s.Hands[mover][action.Species]--
		s.appendLog("%s placed %s at %s", mover, action.Species, action.To)
	case ActionMove:
		piece := s.Board.PopTop(action.From)
		s.Board.Push(action.To, piece)
		s.appendLog("%s moved %s from %s to %s", mover, piece.Specie, action.From, action.To)
	case ActionPass:
		s.appendLog("%s had no legal action and passed", mover)
	}

	s.checkVictory(mover)
	if s.Phase != Terminal {
		s.checkRepeats()
	}

	if s.Phase == Terminal {
		return
	}
	s.CurrentColour = mover.Opponent()
	s.TurnNumber++
	s.clockAnchor = now
}

// CommitTimeout is invoked by the clock when no action arrived within the
// move budget: it commits a PASS on behalf of the current player without
// touching the board or hands.
func (s *State) CommitTimeout(now time.Time) {
	if s.Phase != Active {
		return
	}
	mover := s.CurrentColour
	s.appendLog("%s's turn timed out; passed", mover)
	s.CurrentColour = mover.Opponent()
	s.TurnNumber++
	s.clockAnchor = now
}

// checkVictory implements spec's victory detection: locate each Queen,
// determine surround status, and resolve a winner. mover is the colour
// that just committed the action being checked.
func (s *State) checkVictory(mover hexboard.Colour) {
	whiteSurrounded := s.isQueenSurrounded(hexboard.White)
	blackSurrounded := s.isQueenSurrounded(hexboard.Black)

	switch {
	case whiteSurrounded && blackSurrounded:
		winner := mover.Opponent()
		s.declareWinner(winner, "both Queens surrounded by the same move")
	case whiteSurrounded:
		s.declareWinner(hexboard.Black, "White's Queen is surrounded")
	case blackSurrounded:
		s.declareWinner(hexboard.White, "Black's Queen is surrounded")
	case s.TurnNumber >= s.MaxMoves:
		s.declareDraw(fmt.Sprintf("move ceiling of %d reached", s.MaxMoves))
	}
}

// isQueenSurrounded reports whether colour's Queen is on the board and all
// six of its neighbour coordinates are occupied, regardless of ownership
// of those neighbours.
func (s *State) isQueenSurrounded(colour hexboard.Colour) bool {
	pos, found := s.findQueen(colour)
	if !found {
		return false
	}
	for _, n := range hexboard.Neighbours(pos) {
		if !s.Board.IsOccupied(n) {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of s, suitable for the bot's search
// tree to mutate via Commit without touching the live match.
func (s *State) Clone() *State {
	clone := *s
	clone.Board = s.Board.Clone()
	clone.Hands = [2]Hand{s.Hands[White].Clone(), s.Hands[Black].Clone()}
	clone.Log = nil
	clone.repeatCounts = maps.Clone(s.repeatCounts)
	return &clone
}

// QueenPlaced reports whether colour's Queen is on the board.
func (s *State) QueenPlaced(colour hexboard.Colour) bool {
	_, found := s.findQueen(colour)
	return found
}

func (s *State) findQueen(colour hexboard.Colour) (hexboard.Coord, bool) {
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

// Forfeit ends an Active match immediately in favour of loser's opponent,
// the way a disconnected participant is handled (error kind 5).
func (s *State) Forfeit(loser hexboard.Colour, reason string) {
	if s.Phase != Active {
		return
	}
	s.declareWinner(loser.Opponent(), fmt.Sprintf("%s forfeits: %s", loser, reason))
}

func (s *State) declareWinner(winner hexboard.Colour, reason string) {
	s.Phase = Terminal
	if winner == hexboard.White {
		s.Outcome = WhiteWins
	} else {
		s.Outcome = BlackWins
	}
	s.appendLog("%s wins: %s", winner, reason)
}

func (s *State) declareDraw(reason string) {
	s.Phase = Terminal
	s.Outcome = Draw
	s.appendLog("match drawn: %s", reason)
}

// DeclareInvariantFailure downgrades an internal invariant violation (error
// kind 6) into a logged draw, rather than crashing the engine.
func (s *State) DeclareInvariantFailure(err error) {
	klog.Errorf("internal invariant violated, declaring draw: %+v", err)
	s.declareDraw(fmt.Sprintf("internal invariant violated: %v", err))
}

// checkRepeats hashes the current board and counts repeats, supplementing
// spec's victory rules with a three-fold-repeat draw so passive play
// cannot stall the King-of-the-Hill queue forever.
func (s *State) checkRepeats() {
	key := s.boardKey()
	s.repeatCounts[key]++
	if s.repeatCounts[key] >= MaxBoardRepeats {
		s.declareDraw(fmt.Sprintf("board position repeated %d times", MaxBoardRepeats))
	}
}

type coordStack struct {
	c     hexboard.Coord
	stack hexboard.Stack
}

// boardKey returns a canonical string key for the current board, used only
// to detect repeated positions -- not a persisted or wire format.
func (s *State) boardKey() string {
	coords := s.Board.OccupiedCoords()
	entries := make([]coordStack, 0, len(coords))
	for _, c := range coords {
		stack, _ := s.Board.Get(c)
		entries = append(entries, coordStack{c, stack})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].c.R != entries[j].c.R {
			return entries[i].c.R < entries[j].c.R
		}
		return entries[i].c.Q < entries[j].c.Q
	})
	var sb []byte
	for _, e := range entries {
		sb = fmt.Appendf(sb, "%d,%d:", e.c.Q, e.c.R)
		for _, p := range e.stack {
			sb = fmt.Appendf(sb, "%d%d|", p.Owner, p.Specie)
		}
		sb = append(sb, ';')
	}
	sb = fmt.Appendf(sb, "turn=%s", s.CurrentColour)
	return string(sb)
}
