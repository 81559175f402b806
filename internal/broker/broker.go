// Package broker implements the session broker: the single
// serialization point that binds session identifiers to seats and queue
// entries, authorises actions through internal/action, mutates the match
// through internal/koth and internal/match, and broadcasts snapshots. All
// of it runs on one goroutine, processing one brokerEvent at a time --
// the concurrency model the engine requires: one mutation at a time.
package broker

import (
	"context"
	"math/rand"
	"time"

	"github.com/gomlx/exceptions"
	"github.com/hiveking/koth/internal/action"
	"github.com/hiveking/koth/internal/bot"
	"github.com/hiveking/koth/internal/hexboard"
	"github.com/hiveking/koth/internal/koth"
	"github.com/hiveking/koth/internal/match"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

// BotMoveDelayMin and BotMoveDelayMax bound the bot's scheduled thinking
// delay after a human move leaves it to act.
const (
	BotMoveDelayMin = 1500 * time.Millisecond
	BotMoveDelayMax = 3500 * time.Millisecond
)

// ClockTickInterval is how often the broker checks the move clock.
const ClockTickInterval = 1 * time.Second

type eventKind uint8

const (
	eventJoinHuman eventKind = iota
	eventJoinBot
	eventGameAction
	eventForfeit
	eventDisconnect
	eventClockTick
	eventBotMove
	eventRotate
)

// event is the single sum type draining the broker's one channel: actions,
// clock ticks, and bot-move completions all arrive through it, in arrival
// order, never interleaved mid-commit.
type event struct {
	kind      eventKind
	sessionID string
	nickname  string
	request   action.Request
	now       time.Time
	botMove   match.Action
	winner    hexboard.Colour
	botGen    int // discards a bot move or rotation scheduled for a since-superseded match
}

// Sink receives a broadcast snapshot; in the deployed system this would
// fan out over the (out-of-scope) transport layer to every session.
type Sink func(Snapshot)

// Broker is the session broker: owns the koth.Controller and therefore
// transitively the match.State and board, and drives the bot.Searcher.
type Broker struct {
	Controller *koth.Controller
	Bot        *bot.Searcher
	Sinks      []Sink

	events chan event
	botGen int // incremented on every seat change/rotation to cancel stale bot timers
}

// New returns a Broker over an already-constructed controller.
func New(c *koth.Controller, searcher *bot.Searcher) *Broker {
	return &Broker{
		Controller: c,
		Bot:        searcher,
		events:     make(chan event, 64),
	}
}

// JoinAsHuman enqueues a join_as_human message.
func (b *Broker) JoinAsHuman(sessionID, nickname string) {
	b.events <- event{kind: eventJoinHuman, sessionID: sessionID, nickname: nickname}
}

// JoinVsBot enqueues a join_vs_bot message.
func (b *Broker) JoinVsBot(sessionID, nickname string) {
	b.events <- event{kind: eventJoinBot, sessionID: sessionID, nickname: nickname}
}

// GameAction enqueues a game_action message.
func (b *Broker) GameAction(sessionID string, req action.Request) {
	b.events <- event{kind: eventGameAction, sessionID: sessionID, request: req}
}

// Forfeit enqueues a forfeit message.
func (b *Broker) Forfeit(sessionID string) {
	b.events <- event{kind: eventForfeit, sessionID: sessionID}
}

// Disconnect enqueues a session drop.
func (b *Broker) Disconnect(sessionID string) {
	b.events <- event{kind: eventDisconnect, sessionID: sessionID}
}

// Run drains events until ctx is cancelled: one unified select over the
// event channel and a 1-second clock ticker, exactly the ordering
// guarantee the engine needs (actions, ticks, and bot moves never
// interleave mid-commit).
func (b *Broker) Run(ctx context.Context) {
	ticker := time.NewTicker(ClockTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-b.events:
			b.dispatch(ev)
		case now := <-ticker.C:
			b.dispatch(event{kind: eventClockTick, now: now})
		}
	}
}

// dispatch processes a single event under panic recovery: an internal
// invariant violation (error kind 6) is downgraded to a logged draw
// instead of crashing the broker's goroutine.
func (b *Broker) dispatch(ev event) {
	err := exceptions.TryCatch[error](func() {
		b.process(ev)
	})
	if err != nil {
		if b.Controller.Match.Phase == match.Active {
			b.Controller.Match.DeclareInvariantFailure(err)
		} else {
			klog.Errorf("event processing panicked outside an active match: %+v", err)
		}
	}
	b.broadcast()
}

func (b *Broker) process(ev event) {
	now := ev.now
	if now.IsZero() {
		now = time.Now()
	}

	switch ev.kind {
	case eventJoinHuman:
		b.botGen++
		b.Controller.JoinAsHuman(ev.sessionID, ev.nickname, now)
		b.maybeScheduleBotMove(now)
	case eventJoinBot:
		b.botGen++
		if err := b.Controller.JoinVsBot(ev.sessionID, ev.nickname, now); err != nil {
			klog.V(1).Infof("join_vs_bot from %s rejected: %+v", ev.sessionID, err)
			return
		}
		b.maybeScheduleBotMove(now)
	case eventGameAction:
		b.handleGameAction(ev.sessionID, ev.request, now)
	case eventForfeit:
		b.handleForfeit(ev.sessionID)
	case eventDisconnect:
		b.botGen++
		b.Controller.Disconnect(ev.sessionID)
		b.maybeRotate(now)
	case eventClockTick:
		b.handleClockTick(now)
	case eventBotMove:
		if ev.botGen != b.botGen {
			// A seat change or rotation cancelled this scheduled move.
			return
		}
		b.Controller.Match.Commit(ev.botMove, now)
		b.maybeRotate(now)
		b.maybeScheduleBotMove(now)
	case eventRotate:
		if ev.botGen != b.botGen {
			// Match was already reseated or interrupted before the delay elapsed.
			return
		}
		b.Controller.Rotate(ev.winner, now)
		b.maybeScheduleBotMove(now)
	}
}

func (b *Broker) handleGameAction(sessionID string, req action.Request, now time.Time) {
	colour, seat := b.findSeat(sessionID)
	if seat == nil {
		return // unauthorised: not seated
	}
	act, err := action.Validate(b.Controller.Match, colour, req)
	if err != nil {
		klog.V(2).Infof("action from %s rejected: %+v", sessionID, err)
		return
	}
	b.Controller.Match.Commit(act, now)
	b.maybeRotate(now)
	b.maybeScheduleBotMove(now)
}

func (b *Broker) handleForfeit(sessionID string) {
	colour, seat := b.findSeat(sessionID)
	if seat == nil {
		return
	}
	b.Controller.Match.Forfeit(colour, "conceded")
	b.maybeRotate(time.Now())
}

func (b *Broker) handleClockTick(now time.Time) {
	m := b.Controller.Match
	if m.Phase != match.Active {
		return
	}
	if m.ClockExpired(now) {
		m.CommitTimeout(now)
		b.maybeRotate(now)
		b.maybeScheduleBotMove(now)
	}
}

// maybeRotate starts the RotationDelay timer once a match goes Terminal: the
// board lingers for spectators, then an eventRotate re-enters the loop so
// the actual reseat still serializes through dispatch like everything else.
func (b *Broker) maybeRotate(now time.Time) {
	m := b.Controller.Match
	if m.Phase != match.Terminal {
		return
	}
	b.botGen++
	gen := b.botGen

	// A draw has no winner to retain White; the incumbent White stays and
	// the loser's seat (if human) still rejoins the queue tail via Rotate.
	winner := hexboard.White
	if m.Outcome == match.BlackWins {
		winner = hexboard.Black
	}

	time.AfterFunc(match.RotationDelay, func() {
		b.events <- event{kind: eventRotate, botGen: gen, winner: winner}
	})
}

// maybeScheduleBotMove schedules the bot's move after a uniform random delay when it
// is now the bot's turn in an Active match.
func (b *Broker) maybeScheduleBotMove(now time.Time) {
	m := b.Controller.Match
	if m.Phase != match.Active {
		return
	}
	seat := b.Controller.Seat(m.CurrentColour)
	if seat == nil || !seat.IsBot {
		return
	}

	gen := b.botGen
	colour := m.CurrentColour
	delay := BotMoveDelayMin + time.Duration(rand.Int63n(int64(BotMoveDelayMax-BotMoveDelayMin)))
	searcher := b.Bot
	snapshot := m.Clone()
	time.AfterFunc(delay, func() {
		act := searcher.Search(snapshot, colour)
		b.events <- event{kind: eventBotMove, botGen: gen, botMove: act, now: time.Now()}
	})
}

func (b *Broker) findSeat(sessionID string) (hexboard.Colour, *koth.Seat) {
	if b.Controller.White != nil && b.Controller.White.SessionID == sessionID {
		return hexboard.White, b.Controller.White
	}
	if b.Controller.Black != nil && b.Controller.Black.SessionID == sessionID {
		return hexboard.Black, b.Controller.Black
	}
	return hexboard.White, nil
}

// broadcast fans the current snapshot out to every sink concurrently,
// mirroring cmd/compare's errgroup use for independent parallel work.
func (b *Broker) broadcast() {
	if len(b.Sinks) == 0 {
		return
	}
	snap := BuildSnapshot(b.Controller, b.Controller.Match.TimeLeft(time.Now()))

	var g errgroup.Group
	for _, sink := range b.Sinks {
		sink := sink
		g.Go(func() error {
			sink(snap)
			return nil
		})
	}
	_ = g.Wait() // sinks never return errors; Wait only bounds completion
}
