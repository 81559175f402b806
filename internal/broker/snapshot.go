package broker

import (
	"fmt"
	"sort"

	"github.com/hiveking/koth/internal/hexboard"
	"github.com/hiveking/koth/internal/koth"
	"github.com/hiveking/koth/internal/match"
)

// PieceView is one piece as it appears in a snapshot's stack, the wire
// wire shape ({id, type, color}).
type PieceView struct {
	ID    string
	Type  hexboard.Species
	Color hexboard.Colour
}

// CellView pairs a coordinate with its stack, in snapshot board order.
type CellView struct {
	Hex   hexboard.Coord
	Stack []PieceView
}

// SeatView is one seat as broadcast: identity, hand, win count, bot flag.
type SeatView struct {
	ID       string
	Nickname string
	Hand     map[hexboard.Species]uint8
	Wins     int
	IsBot    bool
}

// Snapshot is the full broadcast state after a commit: an
// idempotent, self-contained view a reconnecting client can resume from.
type Snapshot struct {
	Board         []CellView
	White         *SeatView
	Black         *SeatView
	Queue         []string
	TurnNumber    int
	CurrentPlayer hexboard.Colour
	Winner        match.Outcome
	Log           []string
	TimeLeft      int
}

// BuildSnapshot renders c's current seating and match state into the wire
// snapshot shape. timeLeft is the seconds remaining on the current turn,
// as the caller computed it; it is copied into TimeLeft unchanged.
func BuildSnapshot(c *koth.Controller, timeLeft int) Snapshot {
	m := c.Match
	coords := m.Board.OccupiedCoords()
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].R != coords[j].R {
			return coords[i].R < coords[j].R
		}
		return coords[i].Q < coords[j].Q
	})

	cells := make([]CellView, 0, len(coords))
	for _, coord := range coords {
		stack, _ := m.Board.Get(coord)
		pieces := make([]PieceView, 0, len(stack))
		for _, p := range stack {
			pieces = append(pieces, PieceView{ID: p.ID, Type: p.Specie, Color: p.Owner})
		}
		cells = append(cells, CellView{Hex: coord, Stack: pieces})
	}

	queueNames := make([]string, 0, len(c.Queue))
	for _, e := range c.Queue {
		queueNames = append(queueNames, e.Nickname)
	}

	return Snapshot{
		Board:         cells,
		White:         seatView(c.White, m.Hands[hexboard.White]),
		Black:         seatView(c.Black, m.Hands[hexboard.Black]),
		Queue:         queueNames,
		TurnNumber:    m.TurnNumber,
		CurrentPlayer: m.CurrentColour,
		Winner:        m.Outcome,
		Log:           m.Log,
		TimeLeft:      timeLeft,
	}
}

func seatView(s *koth.Seat, hand match.Hand) *SeatView {
	if s == nil {
		return nil
	}
	return &SeatView{
		ID:       s.SessionID,
		Nickname: s.Nickname,
		Hand:     hand.Clone(),
		Wins:     s.Wins,
		IsBot:    s.IsBot,
	}
}

func (p PieceView) String() string {
	return fmt.Sprintf("%s %s(%s)", p.Color, p.Type, p.ID)
}
