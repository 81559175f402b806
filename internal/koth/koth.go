// Package koth implements the King-of-the-Hill queue and seating
// controller: promoting challengers, rotating winners and losers,
// and handling bot-match requests and disconnects. It drives a single
// internal/match.State; it never runs its own goroutine -- every method is
// called synchronously from the broker's single serialization point.
package koth

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/hiveking/koth/internal/hexboard"
	"github.com/hiveking/koth/internal/match"
	"github.com/pkg/errors"
)

// Seat is one of the two participants bound to the match's colours.
type Seat struct {
	SessionID string
	Nickname  string
	Wins      int
	IsBot     bool
}

// QueueEntry is a waiting challenger, not yet bound to a colour.
type QueueEntry struct {
	SessionID string
	Nickname  string
}

// Controller owns seating and the waiting queue for a single match engine
// instance (spec.md's "multi-match concurrency on one engine instance" is
// an explicit non-goal, so there is exactly one Controller per server).
type Controller struct {
	Match *match.State

	White *Seat
	Black *Seat
	Queue []QueueEntry
}

// New returns a Controller over an already-constructed, Waiting match.State.
func New(m *match.State) *Controller {
	return &Controller{Match: m}
}

// Seat returns the seat bound to colour, or nil if empty.
func (c *Controller) Seat(colour hexboard.Colour) *Seat {
	if colour == hexboard.White {
		return c.White
	}
	return c.Black
}

func (c *Controller) setSeat(colour hexboard.Colour, s *Seat) {
	if colour == hexboard.White {
		c.White = s
	} else {
		c.Black = s
	}
}

// botMatchActive reports whether exactly one current seat is a bot with
// the match still active.
func (c *Controller) botMatchActive() bool {
	return c.Match.Phase == match.Active &&
		((c.White != nil && c.White.IsBot) || (c.Black != nil && c.Black.IsBot))
}

// JoinAsHuman seats a new human session: it interrupts an active
// bot match, fills an empty seat, or joins the queue.
func (c *Controller) JoinAsHuman(sessionID, nickname string, now time.Time) {
	if c.botMatchActive() {
		c.interruptBotMatch(sessionID, nickname, now)
		return
	}

	if c.White == nil {
		c.White = &Seat{SessionID: sessionID, Nickname: nickname}
	} else if c.Black == nil {
		c.Black = &Seat{SessionID: sessionID, Nickname: nickname}
	} else {
		c.Queue = append(c.Queue, QueueEntry{SessionID: sessionID, Nickname: nickname})
		return
	}

	if c.White != nil && c.Black != nil {
		c.Match.NewMatch(now)
	}
}

// interruptBotMatch replaces whichever seat holds the bot with the new
// human and restarts the match with two humans.
func (c *Controller) interruptBotMatch(sessionID, nickname string, now time.Time) {
	human := &Seat{SessionID: sessionID, Nickname: nickname}
	if c.White != nil && c.White.IsBot {
		c.White = human
	} else {
		c.Black = human
	}
	c.Match.NewMatch(now)
}

// ErrBotMatchUnavailable is returned when a bot-match request cannot be
// granted: the queue is non-empty, or a human opponent is already seated
// opposite the requester.
var ErrBotMatchUnavailable = errors.New("bot match unavailable")

// JoinVsBot seats sessionID opposite a bot, assigned to a random colour.
// It is rejected when the queue is non-empty, when a human other than the
// requester holds either seat, or when both seats are already taken.
func (c *Controller) JoinVsBot(sessionID, nickname string, now time.Time) error {
	if len(c.Queue) > 0 {
		return errors.Wrapf(ErrBotMatchUnavailable, "queue is non-empty")
	}
	for _, s := range []*Seat{c.White, c.Black} {
		if s != nil && !s.IsBot && s.SessionID != sessionID {
			return errors.Wrapf(ErrBotMatchUnavailable, "a human opponent is already seated")
		}
	}
	if c.White != nil && c.Black != nil {
		return errors.Wrapf(ErrBotMatchUnavailable, "both seats are taken")
	}

	human := &Seat{SessionID: sessionID, Nickname: nickname}
	bot := &Seat{SessionID: "bot", Nickname: "Bot", IsBot: true}

	humanColour := hexboard.White
	if rand.Intn(2) == 1 {
		humanColour = hexboard.Black
	}
	c.setSeat(humanColour, human)
	c.setSeat(humanColour.Opponent(), bot)
	c.Match.NewMatch(now)
	return nil
}

// BotToMoveFirst reports whether the bot seat is White -- the one case
// where the bot must be scheduled immediately on match start.
func (c *Controller) BotToMoveFirst() bool {
	return c.White != nil && c.White.IsBot
}

// Rotate applies the post-Terminal King-of-the-Hill reseating:
// winner retains White, loser goes to the queue tail, the queue head (if
// any) is promoted to Black. Callers are expected to wait RotationDelay
// before calling this; Rotate then starts the next match itself.
func (c *Controller) Rotate(winner hexboard.Colour, now time.Time) {
	winnerSeat := c.Seat(winner)
	loserSeat := c.Seat(winner.Opponent())
	if winnerSeat == nil {
		return
	}
	winnerSeat.Wins++

	if loserSeat != nil && !loserSeat.IsBot {
		c.Queue = append(c.Queue, QueueEntry{SessionID: loserSeat.SessionID, Nickname: loserSeat.Nickname})
	}

	c.White = winnerSeat
	if len(c.Queue) > 0 {
		next := c.Queue[0]
		c.Queue = c.Queue[1:]
		c.Black = &Seat{SessionID: next.SessionID, Nickname: next.Nickname}
	} else {
		// No challenger waiting: the same two rematch, winner as White.
		c.Black = loserSeat
	}

	c.Match.NewMatch(now)
}

// Disconnect handles a session dropping (error kind 5): a seat is vacated
// unconditionally, however the match stands at the moment. If it held a
// seat in an Active match, that colour forfeits, the opponent wins, and the
// seat is cleared so Rotate never requeues the departed session; if
// it was the human half of a bot match, the bot match is torn down (the
// match goes back to Waiting) and both seats cleared; if it was a lone seated player still waiting for an
// opponent, or a seat lingering through the post-Terminal rotation delay,
// the seat is simply cleared so nothing reseats a departed session.
func (c *Controller) Disconnect(sessionID string) {
	colour, seat := c.findSeat(sessionID)
	if seat == nil {
		c.removeFromQueue(sessionID)
		return
	}

	if c.botMatchActive() {
		c.White = nil
		c.Black = nil
		c.Match.Phase = match.Waiting
		return
	}

	switch c.Match.Phase {
	case match.Active:
		c.Match.Forfeit(colour, fmt.Sprintf("%s disconnected", seat.Nickname))
		c.setSeat(colour, nil)
	case match.Waiting, match.Terminal:
		c.setSeat(colour, nil)
	}
}

func (c *Controller) findSeat(sessionID string) (hexboard.Colour, *Seat) {
	if c.White != nil && c.White.SessionID == sessionID {
		return hexboard.White, c.White
	}
	if c.Black != nil && c.Black.SessionID == sessionID {
		return hexboard.Black, c.Black
	}
	return hexboard.White, nil
}

func (c *Controller) removeFromQueue(sessionID string) {
	out := c.Queue[:0]
	for _, e := range c.Queue {
		if e.SessionID != sessionID {
			out = append(out, e)
		}
	}
	c.Queue = out
}
