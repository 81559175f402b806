// Package action validates external client requests against a match.State
// and, for the ones that are legal, produces the match.Action that commits
// them. Nothing here mutates state: Validate only ever reads.
package action

import (
	"github.com/hiveking/koth/internal/hexboard"
	"github.com/hiveking/koth/internal/match"
	"github.com/hiveking/koth/internal/rules"
	"github.com/pkg/errors"
)

// Kind distinguishes the three accepted request shapes.
type Kind uint8

const (
	Place Kind = iota
	Move
	Forfeit
)

// Request is an action message as it arrives from a session, translated
// from the wire schema but not yet trusted.
type Request struct {
	Kind    Kind
	Species hexboard.Species // Place
	From    hexboard.Coord   // Move
	To      hexboard.Coord   // Place (target) and Move (destination)
}

// Rejection reasons. The sender only ever learns one of these generic
// labels; the detail in the wrapped error is for the log only.
var (
	ErrNotSeated   = errors.New("sender is not seated")
	ErrNotYourTurn = errors.New("not sender's turn")
	ErrTerminal    = errors.New("match is terminal")
	ErrMalformed   = errors.New("malformed action")
	ErrIllegal     = errors.New("illegal action")
)

// Validate checks req against s on behalf of sender, who is seated as
// senderColour. On success it returns the match.Action ready for
// State.Commit. On failure it returns a zero Action and one of the
// Err* sentinels above (wrapped with detail for logging) -- the caller
// must not forward the wrapped detail to the sender.
//
// Forfeit is not validated here (a Forfeit request is rejected as
// malformed): the broker applies it directly through match.State.Forfeit
// for any seated sender, and that has an effect only while the match is
// Active.
func Validate(s *match.State, senderColour hexboard.Colour, req Request) (match.Action, error) {
	if s.Phase == match.Terminal {
		return match.Action{}, ErrTerminal
	}
	if senderColour != s.CurrentColour {
		return match.Action{}, ErrNotYourTurn
	}

	switch req.Kind {
	case Place:
		return validatePlace(s, senderColour, req)
	case Move:
		return validateMove(s, senderColour, req)
	default:
		return match.Action{}, errors.Wrapf(ErrMalformed, "unknown action kind %d", req.Kind)
	}
}

func validatePlace(s *match.State, colour hexboard.Colour, req Request) (match.Action, error) {
	if !req.To.InBounds() {
		return match.Action{}, errors.Wrapf(ErrMalformed, "coordinate %s out of bounds", req.To)
	}
	if !isPlayableSpecies(req.Species) {
		return match.Action{}, errors.Wrapf(ErrMalformed, "invalid species %d", req.Species)
	}

	hand := s.Hand(colour)
	if hand[req.Species] == 0 {
		return match.Action{}, errors.Wrapf(ErrIllegal, "%s has no %s left to place", colour, req.Species)
	}

	if queenMustBePlaced(s, colour) && req.Species != hexboard.Queen {
		return match.Action{}, errors.Wrapf(ErrIllegal, "%s must place the Queen by their 4th personal turn", colour)
	}

	if !rules.ValidPlacements(s.Board, colour).Has(req.To) {
		return match.Action{}, errors.Wrapf(ErrIllegal, "%s is not a valid placement for %s", req.To, colour)
	}

	return match.Action{Kind: match.ActionPlace, Species: req.Species, To: req.To}, nil
}

func validateMove(s *match.State, colour hexboard.Colour, req Request) (match.Action, error) {
	if !s.QueenPlaced(colour) {
		return match.Action{}, errors.Wrapf(ErrIllegal, "%s cannot move before placing their Queen", colour)
	}

	stack, ok := s.Board.Get(req.From)
	if !ok {
		return match.Action{}, errors.Wrapf(ErrMalformed, "no piece at source %s", req.From)
	}
	top := stack.Top()
	if top.Owner != colour {
		return match.Action{}, errors.Wrapf(ErrIllegal, "top piece at %s does not belong to %s", req.From, colour)
	}

	for _, dest := range rules.PieceMoves(s.Board, req.From) {
		if dest == req.To {
			return match.Action{Kind: match.ActionMove, From: req.From, To: req.To}, nil
		}
	}
	return match.Action{}, errors.Wrapf(ErrIllegal, "%s is not a legal destination from %s", req.To, req.From)
}

func isPlayableSpecies(sp hexboard.Species) bool {
	for _, s := range hexboard.AllSpecies {
		if s == sp {
			return true
		}
	}
	return false
}

// queenMustBePlaced reports whether colour is on their 4th (or later)
// personal turn with their Queen still in hand -- the only point at which
// placement choice narrows to Queen alone.
func queenMustBePlaced(s *match.State, colour hexboard.Colour) bool {
	if s.QueenPlaced(colour) {
		return false
	}
	return match.PersonalTurnIndex(s.TurnNumber) >= 4
}
