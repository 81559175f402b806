// Package hexboard implements the cubic-coordinate hex grid and the board of
// piece stacks built on top of it. It has no notion of game rules: callers
// above it (internal/rules) interpret adjacency and stacking into legal moves.
package hexboard

import "fmt"

// Coord is a cubic hex coordinate: Q + R + S() == 0 always holds.
// Equality only ever compares Q and R, per the hive's coordinate policy.
type Coord struct {
	Q, R int8
}

// S returns the third cubic coordinate, derived from Q and R.
func (c Coord) S() int8 {
	return -c.Q - c.R
}

// MaxCoordMagnitude bounds |Q| and |R|; anything outside is malformed.
const MaxCoordMagnitude = 50

// InBounds reports whether c is within the policy bounds enforced by the
// action validator before a coordinate ever reaches the rule engine.
func (c Coord) InBounds() bool {
	return absInt8(c.Q) <= MaxCoordMagnitude && absInt8(c.R) <= MaxCoordMagnitude
}

func absInt8(x int8) int8 {
	if x < 0 {
		return -x
	}
	return x
}

func (c Coord) String() string {
	return fmt.Sprintf("%d,%d", c.Q, c.R)
}

// neighbourOffsets are the six fixed cubic direction vectors, indexed 0..5,
// listed clockwise starting from +Q.
var neighbourOffsets = [6]Coord{
	{1, 0}, {1, -1}, {0, -1},
	{-1, 0}, {-1, 1}, {0, 1},
}

// Neighbour returns the coordinate adjacent to c in the given direction (0..5).
func Neighbour(c Coord, direction int) Coord {
	off := neighbourOffsets[direction%6]
	return Coord{c.Q + off.Q, c.R + off.R}
}

// Neighbours returns all six neighbours of c, in direction order.
func Neighbours(c Coord) [6]Coord {
	var out [6]Coord
	for d := 0; d < 6; d++ {
		out[d] = Neighbour(c, d)
	}
	return out
}

// AreNeighbours reports whether a and b are adjacent.
func AreNeighbours(a, b Coord) bool {
	for _, n := range Neighbours(a) {
		if n == b {
			return true
		}
	}
	return false
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Distance returns the hex distance between a and b: max(|Δq|, |Δr|, |Δs|).
func Distance(a, b Coord) int {
	dq := int(absInt8(a.Q - b.Q))
	dr := int(absInt8(a.R - b.R))
	ds := int(absInt8(a.S() - b.S()))
	return maxInt(dq, maxInt(dr, ds))
}
