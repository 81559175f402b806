// Package rules implements Hive's placement and movement legality: the
// One-Hive, Freedom-to-Move, and per-species movement generation rules.
// It operates purely on a hexboard.Board; hand counts and the Queen-opening
// turn constraint are enforced by the caller (internal/action).
package rules

import (
	"github.com/hiveking/koth/internal/generics"
	"github.com/hiveking/koth/internal/hexboard"
)

// ValidPlacements returns the coordinates where colour may place a new piece.
func ValidPlacements(b *hexboard.Board, colour hexboard.Colour) generics.Set[hexboard.Coord] {
	placements := generics.MakeSet[hexboard.Coord]()

	if b.Len() == 0 {
		// The very first piece of the game goes at the origin.
		placements.Insert(hexboard.Coord{Q: 0, R: 0})
		return placements
	}

	if !anyPieceOfColour(b, colour) {
		// Seeding the second colour: any empty coordinate touching the hive.
		for _, c := range b.OccupiedCoords() {
			for _, n := range b.EmptyNeighbours(c) {
				placements.Insert(n)
			}
		}
		return placements
	}

	// General case: empty, touches a friendly top piece, touches no enemy top piece.
	candidates := generics.MakeSet[hexboard.Coord]()
	for _, c := range b.OccupiedCoords() {
		top, _ := b.TopAt(c)
		if top.Owner != colour {
			continue
		}
		for _, n := range b.EmptyNeighbours(c) {
			candidates.Insert(n)
		}
	}
	for c := range candidates {
		hasEnemyNeighbour := false
		for _, n := range b.OccupiedNeighbours(c) {
			top, _ := b.TopAt(n)
			if top.Owner != colour {
				hasEnemyNeighbour = true
				break
			}
		}
		if !hasEnemyNeighbour {
			placements.Insert(c)
		}
	}
	return placements
}

func anyPieceOfColour(b *hexboard.Board, colour hexboard.Colour) bool {
	for _, c := range b.OccupiedCoords() {
		top, _ := b.TopAt(c)
		if top.Owner == colour {
			return true
		}
	}
	return false
}
