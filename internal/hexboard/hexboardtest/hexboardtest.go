// Package hexboardtest provides helpers to build literal boards in tests.
package hexboardtest

import (
	"fmt"

	"github.com/hiveking/koth/internal/hexboard"
)

// PieceOnBoard places a single piece at a coordinate for a literal board layout.
type PieceOnBoard struct {
	At     hexboard.Coord
	Owner  hexboard.Colour
	Specie hexboard.Species
}

// Build constructs a board from a layout, assigning each piece a stable ID
// derived from its position in the slice.
func Build(layout []PieceOnBoard) *hexboard.Board {
	b := hexboard.NewBoard()
	for i, p := range layout {
		b.Push(p.At, hexboard.Piece{
			ID:     fmt.Sprintf("p%d", i),
			Owner:  p.Owner,
			Specie: p.Specie,
		})
	}
	return b
}
