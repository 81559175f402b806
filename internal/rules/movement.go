package rules

import (
	"sort"

	"github.com/hiveking/koth/internal/hexboard"
)

// PieceMoves enumerates the legal destinations for the piece sitting at from.
// It does not check whose turn it is, hand state, or the Queen-opening rule
// -- those are the action validator's job. An empty result means the piece
// cannot move at all this turn (e.g. its removal would break the hive).
func PieceMoves(b *hexboard.Board, from hexboard.Coord) []hexboard.Coord {
	stack, ok := b.Get(from)
	if !ok || len(stack) == 0 {
		return nil
	}

	if len(stack) == 1 && !b.IsHiveConnected(from) {
		// Removing the lone piece here would split the hive.
		return nil
	}

	top := stack.Top()
	switch top.Specie {
	case hexboard.Queen:
		return queenMoves(b, from)
	case hexboard.Ant:
		return antMoves(b, from)
	case hexboard.Spider:
		return spiderMoves(b, from)
	case hexboard.Beetle:
		return beetleMoves(b, from)
	case hexboard.Grasshopper:
		return grasshopperMoves(b, from)
	default:
		return nil
	}
}

// slideDestinations returns the neighbours of src that a ground-level
// sliding piece may step into from src, honouring the Freedom-to-Move gate
// and the hive-contact requirement. originalPos is the position the piece
// is considered to have already vacated (== src for the first step of a
// multi-step move); visited is excluded from the result.
//
// A beetle stack with more than one piece never actually calls this with
// originalPos == src in a way that hides occupancy, since the gate only
// ever "frees up" originalPos -- see beetleMoves for why a stacked beetle
// skips the gate entirely.
func slideDestinations(b *hexboard.Board, src, originalPos hexboard.Coord, visited map[hexboard.Coord]bool) []hexboard.Coord {
	neighbours := hexboard.Neighbours(src)
	occupied := [6]bool{}
	for i, n := range neighbours {
		occupied[i] = b.IsOccupied(n) && n != originalPos
	}

	var out []hexboard.Coord
	for i, target := range neighbours {
		if visited[target] || occupied[i] {
			continue
		}
		left := occupied[(i+1)%6]
		right := occupied[(i+5)%6]
		if left && right {
			// Pinched between two occupied neighbours: gate closed.
			continue
		}
		if !left && !right {
			// Must stay in contact with the hive while sliding.
			continue
		}
		out = append(out, target)
	}
	return out
}

func sortCoords(cs []hexboard.Coord) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].R != cs[j].R {
			return cs[i].R < cs[j].R
		}
		return cs[i].Q < cs[j].Q
	})
}

func queenMoves(b *hexboard.Board, src hexboard.Coord) []hexboard.Coord {
	return slideDestinations(b, src, src, nil)
}

func antMoves(b *hexboard.Board, src hexboard.Coord) []hexboard.Coord {
	visited := map[hexboard.Coord]bool{src: true}
	toVisit := []hexboard.Coord{src}
	for len(toVisit) > 0 {
		var next []hexboard.Coord
		for _, pos := range toVisit {
			for _, dest := range slideDestinations(b, pos, src, visited) {
				visited[dest] = true
				next = append(next, dest)
			}
		}
		toVisit = next
	}
	out := make([]hexboard.Coord, 0, len(visited)-1)
	for c := range visited {
		if c != src {
			out = append(out, c)
		}
	}
	sortCoords(out)
	return out
}

func spiderMoves(b *hexboard.Board, src hexboard.Coord) []hexboard.Coord {
	ends := map[hexboard.Coord]bool{}
	visited := map[hexboard.Coord]bool{src: true}
	spiderDFS(b, src, src, 3, ends, visited)
	out := make([]hexboard.Coord, 0, len(ends))
	for c := range ends {
		out = append(out, c)
	}
	sortCoords(out)
	return out
}

func spiderDFS(b *hexboard.Board, pos, src hexboard.Coord, stepsLeft int, ends, visited map[hexboard.Coord]bool) {
	stepsLeft--
	if stepsLeft == 0 {
		for _, dest := range slideDestinations(b, pos, src, visited) {
			ends[dest] = true
		}
		return
	}
	for _, dest := range slideDestinations(b, pos, src, visited) {
		visited[dest] = true
		spiderDFS(b, dest, src, stepsLeft, ends, visited)
		delete(visited, dest)
	}
}

func grasshopperMoves(b *hexboard.Board, src hexboard.Coord) []hexboard.Coord {
	var out []hexboard.Coord
	for dir := 0; dir < 6; dir++ {
		first := hexboard.Neighbour(src, dir)
		if !b.IsOccupied(first) {
			// Immediate neighbour empty: no jump in this direction.
			continue
		}
		pos := first
		for b.IsOccupied(pos) {
			pos = hexboard.Neighbour(pos, dir)
		}
		out = append(out, pos)
	}
	return out
}

func beetleMoves(b *hexboard.Board, src hexboard.Coord) []hexboard.Coord {
	stack, _ := b.Get(src)
	if len(stack) > 1 {
		// On top of a stack: free to step onto any of the six neighbours,
		// climbing down or staying up, the gate does not apply.
		return hexboard.Neighbours(src)[:]
	}

	var out []hexboard.Coord
	out = append(out, b.OccupiedNeighbours(src)...)
	out = append(out, slideDestinations(b, src, src, nil)...)
	return out
}
