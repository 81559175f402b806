package action_test

import (
	"testing"
	"time"

	"github.com/hiveking/koth/internal/action"
	"github.com/hiveking/koth/internal/hexboard"
	"github.com/hiveking/koth/internal/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func freshMatch() *match.State {
	s := &match.State{}
	s.NewMatch(t0)
	return s
}

func TestOpeningTwoMovesAccepted(t *testing.T) {
	s := freshMatch()

	act, err := action.Validate(s, hexboard.White, action.Request{
		Kind: action.Place, Species: hexboard.Queen, To: hexboard.Coord{Q: 0, R: 0},
	})
	require.NoError(t, err)
	s.Commit(act, t0)

	act, err = action.Validate(s, hexboard.Black, action.Request{
		Kind: action.Place, Species: hexboard.Queen, To: hexboard.Coord{Q: 1, R: 0},
	})
	require.NoError(t, err)
	s.Commit(act, t0)

	assert.Equal(t, 2, s.Board.Len())
	assert.Equal(t, 3, s.TurnNumber)
	assert.Equal(t, hexboard.White, s.CurrentColour)
}

func TestRejectsOutOfTurn(t *testing.T) {
	s := freshMatch()
	_, err := action.Validate(s, hexboard.Black, action.Request{
		Kind: action.Place, Species: hexboard.Queen, To: hexboard.Coord{Q: 0, R: 0},
	})
	assert.ErrorIs(t, err, action.ErrNotYourTurn)
}

func TestRejectsOnTerminalMatch(t *testing.T) {
	s := freshMatch()
	s.Phase = match.Terminal
	_, err := action.Validate(s, hexboard.White, action.Request{
		Kind: action.Place, Species: hexboard.Queen, To: hexboard.Coord{Q: 0, R: 0},
	})
	assert.ErrorIs(t, err, action.ErrTerminal)
}

func TestRejectsPlaceWithEmptyHand(t *testing.T) {
	s := freshMatch()
	s.Hands[hexboard.White][hexboard.Queen] = 0
	_, err := action.Validate(s, hexboard.White, action.Request{
		Kind: action.Place, Species: hexboard.Queen, To: hexboard.Coord{Q: 0, R: 0},
	})
	assert.ErrorIs(t, err, action.ErrIllegal)
}

func TestRejectsPlaceOutsideValidPlacements(t *testing.T) {
	s := freshMatch()
	_, err := action.Validate(s, hexboard.White, action.Request{
		Kind: action.Place, Species: hexboard.Ant, To: hexboard.Coord{Q: 9, R: 9},
	})
	assert.ErrorIs(t, err, action.ErrIllegal)
}

func TestQueenOpeningForcedOnFourthTurn(t *testing.T) {
	s := freshMatch()
	origin := hexboard.Coord{Q: 0, R: 0}
	blackAt := hexboard.Neighbour(origin, 0)
	target := hexboard.Neighbour(origin, 3) // adjacent to White's top, clear of Black's

	s.Board.Push(origin, hexboard.Piece{ID: "wa", Owner: hexboard.White, Specie: hexboard.Ant})
	s.Board.Push(blackAt, hexboard.Piece{ID: "ba", Owner: hexboard.Black, Specie: hexboard.Ant})
	require.Equal(t, 4, match.PersonalTurnIndex(7))
	s.TurnNumber = 7 // White's 4th personal turn
	s.CurrentColour = hexboard.White

	_, err := action.Validate(s, hexboard.White, action.Request{Kind: action.Place, Species: hexboard.Ant, To: target})
	assert.ErrorIs(t, err, action.ErrIllegal, "Queen unplaced on 4th personal turn: only Queen may be placed")

	_, err = action.Validate(s, hexboard.White, action.Request{Kind: action.Place, Species: hexboard.Queen, To: target})
	assert.NoError(t, err)
}

func TestMoveRejectedBeforeQueenPlaced(t *testing.T) {
	s := freshMatch()
	from := hexboard.Coord{Q: 0, R: 0}
	act, err := action.Validate(s, hexboard.White, action.Request{Kind: action.Place, Species: hexboard.Ant, To: from})
	require.NoError(t, err)
	s.Commit(act, t0)

	act, err = action.Validate(s, hexboard.Black, action.Request{Kind: action.Place, Species: hexboard.Ant, To: hexboard.Neighbour(from, 0)})
	require.NoError(t, err)
	s.Commit(act, t0)

	_, err = action.Validate(s, hexboard.White, action.Request{Kind: action.Move, From: from, To: hexboard.Neighbour(from, 1)})
	assert.ErrorIs(t, err, action.ErrIllegal)
}

func TestMoveRejectedOutsideLegalDestinations(t *testing.T) {
	s := freshMatch()
	wq := hexboard.Coord{Q: 0, R: 0}
	s.Board.Push(wq, hexboard.Piece{ID: "wq", Owner: hexboard.White, Specie: hexboard.Queen})
	bq := hexboard.Neighbour(wq, 0)
	s.Board.Push(bq, hexboard.Piece{ID: "bq", Owner: hexboard.Black, Specie: hexboard.Queen})

	farAway := hexboard.Coord{Q: 40, R: 40}
	_, err := action.Validate(s, hexboard.White, action.Request{Kind: action.Move, From: wq, To: farAway})
	assert.ErrorIs(t, err, action.ErrIllegal)
}

func TestValidationNeverMutatesState(t *testing.T) {
	s := freshMatch()
	before := s.Board.Clone()
	_, _ = action.Validate(s, hexboard.White, action.Request{Kind: action.Place, Species: hexboard.Ant, To: hexboard.Coord{Q: 99, R: 99}})
	assert.Equal(t, before.OccupiedCoords(), s.Board.OccupiedCoords())
}
