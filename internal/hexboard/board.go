package hexboard

import (
	"maps"
	"slices"

	"github.com/hiveking/koth/internal/generics"
)

// Species identifies a piece type. The zero value, NoSpecies, is never
// stored on a board.
type Species uint8

const (
	NoSpecies Species = iota
	Queen
	Ant
	Spider
	Beetle
	Grasshopper
	lastSpecies
)

// NumSpecies excludes NoSpecies.
const NumSpecies = int(lastSpecies) - 1

// AllSpecies enumerates the five playable species.
var AllSpecies = [NumSpecies]Species{Queen, Ant, Spider, Beetle, Grasshopper}

var speciesNames = [lastSpecies]string{"None", "Queen", "Ant", "Spider", "Beetle", "Grasshopper"}

func (s Species) String() string {
	if int(s) >= len(speciesNames) {
		return "Invalid"
	}
	return speciesNames[s]
}

// Colour is a player's side, White or Black.
type Colour uint8

const (
	White Colour = iota
	Black
)

func (c Colour) String() string {
	if c == White {
		return "WHITE"
	}
	return "BLACK"
}

// Opponent returns the other colour.
func (c Colour) Opponent() Colour {
	return 1 - c
}

// Piece is a single playing piece: a stable identifier, a species, and an owner.
type Piece struct {
	ID     string
	Owner  Colour
	Specie Species
}

// Stack is the ordered pieces at one coordinate: Stack[0] is the bottom,
// Stack[len-1] is the top -- the only element visible to adjacency queries.
// A Stack stored on a Board is never empty; popping the last piece removes
// the cell entirely.
type Stack []Piece

// Top returns the top piece of the stack. Panics if the stack is empty --
// callers only invoke this on cells known to be occupied.
func (s Stack) Top() Piece {
	return s[len(s)-1]
}

// Board maps coordinates to non-empty piece stacks.
type Board struct {
	cells map[Coord]Stack
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{cells: make(map[Coord]Stack)}
}

// Clone makes a deep-enough copy for the board to be mutated independently:
// the Stack slices themselves are never written in place (Push always
// allocates a fresh backing array, PopTop only reslices), so a shallow map
// clone suffices.
func (b *Board) Clone() *Board {
	return &Board{cells: maps.Clone(b.cells)}
}

// IsOccupied reports whether c has any piece.
func (b *Board) IsOccupied(c Coord) bool {
	_, ok := b.cells[c]
	return ok
}

// Get returns the stack at c, and whether c is occupied.
func (b *Board) Get(c Coord) (Stack, bool) {
	s, ok := b.cells[c]
	return s, ok
}

// TopAt returns the top piece at c and whether c is occupied.
func (b *Board) TopAt(c Coord) (Piece, bool) {
	s, ok := b.cells[c]
	if !ok {
		return Piece{}, false
	}
	return s.Top(), true
}

// Push adds piece on top of the stack at c (creating the cell if needed).
// Only a Beetle may be pushed onto an already-occupied cell; the rule
// engine is responsible for enforcing that invariant before calling Push.
func (b *Board) Push(c Coord, piece Piece) {
	b.cells[c] = append(slices.Clip(b.cells[c]), piece)
}

// PopTop removes and returns the top piece at c. The cell is deleted from
// the board once its stack becomes empty.
func (b *Board) PopTop(c Coord) Piece {
	s := b.cells[c]
	top := s[len(s)-1]
	s = s[:len(s)-1]
	if len(s) == 0 {
		delete(b.cells, c)
	} else {
		b.cells[c] = s
	}
	return top
}

// OccupiedCoords returns every occupied coordinate, in no particular order.
func (b *Board) OccupiedCoords() []Coord {
	return generics.KeysSlice(b.cells)
}

// Len returns the number of occupied cells.
func (b *Board) Len() int {
	return len(b.cells)
}

// IsHiveConnected reports whether the occupied coordinates, minus an
// optional ignored coordinate, form a single connected component under hex
// adjacency. The empty and singleton sets are trivially connected.
//
// This is a fresh BFS every call: the hive's topology can change on any
// move, so caching this result across moves would be unsafe.
func (b *Board) IsHiveConnected(ignoring ...Coord) bool {
	var skip Coord
	hasSkip := false
	if len(ignoring) > 0 {
		skip, hasSkip = ignoring[0], true
	}

	active := make(map[Coord]bool, len(b.cells))
	for c := range b.cells {
		if hasSkip && c == skip {
			continue
		}
		active[c] = true
	}
	if len(active) <= 1 {
		return true
	}

	var start Coord
	for c := range active {
		start = c
		break
	}

	visited := map[Coord]bool{start: true}
	queue := []Coord{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range Neighbours(cur) {
			if !active[n] || visited[n] {
				continue
			}
			visited[n] = true
			queue = append(queue, n)
		}
	}
	return len(visited) == len(active)
}

// OccupiedNeighbours returns the neighbours of c that have a piece.
func (b *Board) OccupiedNeighbours(c Coord) []Coord {
	var out []Coord
	for _, n := range Neighbours(c) {
		if b.IsOccupied(n) {
			out = append(out, n)
		}
	}
	return out
}

// EmptyNeighbours returns the neighbours of c that have no piece.
func (b *Board) EmptyNeighbours(c Coord) []Coord {
	var out []Coord
	for _, n := range Neighbours(c) {
		if !b.IsOccupied(n) {
			out = append(out, n)
		}
	}
	return out
}
