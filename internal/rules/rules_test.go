package rules_test

import (
	"testing"

	"github.com/hiveking/koth/internal/hexboard"
	"github.com/hiveking/koth/internal/hexboard/hexboardtest"
	"github.com/hiveking/koth/internal/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var origin = hexboard.Coord{Q: 0, R: 0}

func TestValidPlacementsEmptyBoard(t *testing.T) {
	b := hexboard.NewBoard()
	placements := rules.ValidPlacements(b, hexboard.White)
	require.Len(t, placements, 1)
	assert.True(t, placements.Has(origin))
}

func TestValidPlacementsSeedsSecondColour(t *testing.T) {
	b := hexboardtest.Build([]hexboardtest.PieceOnBoard{
		{At: origin, Owner: hexboard.White, Specie: hexboard.Queen},
	})
	placements := rules.ValidPlacements(b, hexboard.Black)
	assert.Equal(t, 6, len(placements))
	for _, n := range hexboard.Neighbours(origin) {
		assert.True(t, placements.Has(n))
	}
}

func TestValidPlacementsExcludesEnemyTouchingCells(t *testing.T) {
	white1 := hexboard.Neighbour(origin, 1)
	b := hexboardtest.Build([]hexboardtest.PieceOnBoard{
		{At: origin, Owner: hexboard.White, Specie: hexboard.Queen},
		{At: white1, Owner: hexboard.Black, Specie: hexboard.Queen},
	})
	placements := rules.ValidPlacements(b, hexboard.White)
	// Any empty neighbour of origin that also touches white1 (black) is excluded.
	for _, n := range hexboard.Neighbours(origin) {
		if n == white1 {
			continue
		}
		touchesBlack := hexboard.AreNeighbours(n, white1)
		assert.Equal(t, !touchesBlack, placements.Has(n), "coord %s", n)
	}
}

func TestValidPlacementsSymmetricUnderPlayerSwap(t *testing.T) {
	// PLACE legality must not depend on which identity owns which colour,
	// only on the colours themselves. ValidPlacements sees only the board
	// and a colour, never a player, so this checks that two calls with the
	// same board and colour agree.
	a := hexboardtest.Build([]hexboardtest.PieceOnBoard{
		{At: origin, Owner: hexboard.White, Specie: hexboard.Ant},
		{At: hexboard.Neighbour(origin, 0), Owner: hexboard.Black, Specie: hexboard.Ant},
	})
	p1 := rules.ValidPlacements(a, hexboard.White)
	p2 := rules.ValidPlacements(a, hexboard.White)
	assert.True(t, p1.Equal(p2))
}

func TestQueenSingleStep(t *testing.T) {
	b := hexboardtest.Build([]hexboardtest.PieceOnBoard{
		{At: origin, Owner: hexboard.White, Specie: hexboard.Ant},
		{At: hexboard.Neighbour(origin, 1), Owner: hexboard.White, Specie: hexboard.Queen},
	})
	moves := rules.PieceMoves(b, hexboard.Neighbour(origin, 1))
	for _, m := range moves {
		assert.True(t, hexboard.AreNeighbours(hexboard.Neighbour(origin, 1), m))
	}
}

func TestFreedomToMoveGate(t *testing.T) {
	// src -> tgt is a single slide step; a and b are the two hexes adjacent
	// to BOTH src and tgt (the pinching neighbours for this edge).
	src := hexboard.Coord{Q: 0, R: 1}
	tgt := hexboard.Neighbour(src, 0)
	var a, b hexboard.Coord
	found := 0
	for _, n := range hexboard.Neighbours(src) {
		if n != tgt && hexboard.AreNeighbours(n, tgt) {
			if found == 0 {
				a = n
			} else {
				b = n
			}
			found++
		}
	}
	require.Equal(t, 2, found)

	// a and b only touch each other through src and tgt, so a bridge around
	// tgt's far side keeps the hive whole once src is lifted; otherwise the
	// One-Hive rule, not the gate, would empty the move set.
	closedBoard := hexboardtest.Build([]hexboardtest.PieceOnBoard{
		{At: src, Owner: hexboard.White, Specie: hexboard.Queen},
		{At: a, Owner: hexboard.Black, Specie: hexboard.Ant},
		{At: b, Owner: hexboard.White, Specie: hexboard.Spider},
		{At: hexboard.Coord{Q: 2, R: 0}, Owner: hexboard.Black, Specie: hexboard.Ant},
		{At: hexboard.Coord{Q: 2, R: 1}, Owner: hexboard.Black, Specie: hexboard.Ant},
		{At: hexboard.Coord{Q: 1, R: 2}, Owner: hexboard.White, Specie: hexboard.Ant},
	})
	require.True(t, closedBoard.IsHiveConnected(src))
	moves := rules.PieceMoves(closedBoard, src)
	assert.NotContains(t, moves, tgt, "gate should be closed with both pinching neighbours occupied")

	openBoard := hexboardtest.Build([]hexboardtest.PieceOnBoard{
		{At: src, Owner: hexboard.White, Specie: hexboard.Queen},
		{At: a, Owner: hexboard.Black, Specie: hexboard.Ant},
	})
	moves = rules.PieceMoves(openBoard, src)
	assert.Contains(t, moves, tgt, "gate should be open with only one pinching neighbour occupied")
}

func TestGrasshopperJump(t *testing.T) {
	dir := 0
	near := hexboard.Neighbour(origin, dir)
	far := hexboard.Neighbour(near, dir)
	landing := hexboard.Neighbour(far, dir)
	b := hexboardtest.Build([]hexboardtest.PieceOnBoard{
		{At: origin, Owner: hexboard.White, Specie: hexboard.Grasshopper},
		{At: near, Owner: hexboard.Black, Specie: hexboard.Ant},
		{At: far, Owner: hexboard.White, Specie: hexboard.Spider},
	})
	moves := rules.PieceMoves(b, origin)
	assert.Contains(t, moves, landing)

	// A direction whose immediate neighbour is empty yields no move there.
	emptyDir := 3
	emptyNeighbourTarget := hexboard.Neighbour(origin, emptyDir)
	assert.NotContains(t, moves, emptyNeighbourTarget)
}

func TestAntReachesAroundPerimeter(t *testing.T) {
	b := hexboardtest.Build([]hexboardtest.PieceOnBoard{
		{At: origin, Owner: hexboard.White, Specie: hexboard.Ant},
		{At: hexboard.Neighbour(origin, 0), Owner: hexboard.Black, Specie: hexboard.Queen},
	})
	moves := rules.PieceMoves(b, origin)
	assert.NotEmpty(t, moves)
	for _, m := range moves {
		assert.False(t, b.IsOccupied(m))
	}
}

func TestSpiderExactlyThreeSteps(t *testing.T) {
	// Spider walks exactly 3 slide steps around the single-piece hive's
	// perimeter (a radius-1 ring); each reachable endpoint is 3 ring-steps
	// away from the start but only 2 hexes away as the crow flies.
	queenAt := hexboard.Neighbour(origin, 0)
	b := hexboardtest.Build([]hexboardtest.PieceOnBoard{
		{At: origin, Owner: hexboard.White, Specie: hexboard.Spider},
		{At: queenAt, Owner: hexboard.Black, Specie: hexboard.Queen},
	})
	moves := rules.PieceMoves(b, origin)
	require.NotEmpty(t, moves)
	for _, m := range moves {
		assert.Equal(t, 2, hexboard.Distance(origin, m))
		assert.False(t, b.IsOccupied(m))
	}
}

func TestBeetleClimbsAndSlides(t *testing.T) {
	b := hexboardtest.Build([]hexboardtest.PieceOnBoard{
		{At: origin, Owner: hexboard.White, Specie: hexboard.Beetle},
		{At: hexboard.Neighbour(origin, 0), Owner: hexboard.Black, Specie: hexboard.Queen},
	})
	moves := rules.PieceMoves(b, origin)
	assert.Contains(t, moves, hexboard.Neighbour(origin, 0), "beetle can climb onto an occupied neighbour")
	assert.Contains(t, moves, hexboard.Neighbour(origin, 1), "beetle can slide along the hive")
}

func TestBeetleOnTopIgnoresGate(t *testing.T) {
	base := origin
	b := hexboardtest.Build([]hexboardtest.PieceOnBoard{
		{At: base, Owner: hexboard.Black, Specie: hexboard.Queen},
		{At: base, Owner: hexboard.White, Specie: hexboard.Beetle},
	})
	moves := rules.PieceMoves(b, base)
	assert.ElementsMatch(t, hexboard.Neighbours(base)[:], moves)
}

func TestSinglePieceRemovalCannotDisconnectHive(t *testing.T) {
	a := origin
	mid := hexboard.Neighbour(a, 0)
	end := hexboard.Neighbour(mid, 0)
	b := hexboardtest.Build([]hexboardtest.PieceOnBoard{
		{At: a, Owner: hexboard.White, Specie: hexboard.Ant},
		{At: mid, Owner: hexboard.Black, Specie: hexboard.Queen},
		{At: end, Owner: hexboard.White, Specie: hexboard.Spider},
	})
	// mid is an articulation point: removing it splits a from end.
	moves := rules.PieceMoves(b, mid)
	assert.Empty(t, moves)
}

func TestMoveDestinationsKeepHiveConnected(t *testing.T) {
	b := hexboardtest.Build([]hexboardtest.PieceOnBoard{
		{At: origin, Owner: hexboard.White, Specie: hexboard.Queen},
		{At: hexboard.Neighbour(origin, 0), Owner: hexboard.Black, Specie: hexboard.Ant},
		{At: hexboard.Neighbour(origin, 1), Owner: hexboard.White, Specie: hexboard.Spider},
	})
	for _, from := range b.OccupiedCoords() {
		for _, to := range rules.PieceMoves(b, from) {
			next := b.Clone()
			piece := next.PopTop(from)
			next.Push(to, piece)
			assert.True(t, next.IsHiveConnected(), "move %s->%s should keep hive connected", from, to)
		}
	}
}
