package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/inconshreveable/log15/v3"
	"github.com/jpillora/backoff"
)

// Result is how a bot's game ended.
type Result struct {
	Won        bool
	Eliminated bool
	Winner     string
	Guesses    int
}

// Bot plays one seat in a session: it commits its word, then polls the state
// and guesses a letter whenever it is first in the turn order.
type Bot struct {
	client   *Client
	sid      string
	pid      string
	word     string
	strategy *Strategy
	poll     *backoff.Backoff
	logger   log15.Logger
}

func NewBot(client *Client, sid, pid, word string, pollMin, pollMax time.Duration, logger log15.Logger) *Bot {
	return &Bot{
		client:   client,
		sid:      sid,
		pid:      pid,
		word:     word,
		strategy: NewStrategy(word),
		poll: &backoff.Backoff{
			Min:    pollMin,
			Max:    pollMax,
			Factor: 1.5,
			Jitter: true,
		},
		logger: logger.New("sid", sid, "pid", pid),
	}
}

// Play runs until the game concludes, the bot is knocked out, or ctx is done.
func (b *Bot) Play(ctx context.Context) (*Result, error) {
	if err := b.client.SetWord(ctx, b.sid, b.pid, b.word); err != nil {
		return nil, fmt.Errorf("set word: %w", err)
	}
	b.logger.Info("word committed", "length", len(b.word))

	result := &Result{}
	for {
		state, err := b.client.State(ctx, b.sid)
		if err != nil {
			return nil, fmt.Errorf("get state: %w", err)
		}

		me, ok := state.Players[b.pid]
		if !ok {
			return nil, errors.New("player is no longer in the session")
		}

		switch {
		case state.IsLobby:
			b.logger.Debug("waiting in lobby", "players", len(state.Players))
		case len(state.TurnOrder) <= 1:
			if len(state.TurnOrder) == 1 {
				result.Winner = state.TurnOrder[0]
			}
			result.Won = result.Winner == b.pid
			b.logger.Info("game concluded", "winner", result.Winner, "won", result.Won, "guesses", result.Guesses)
			return result, nil
		case !me.Alive:
			result.Eliminated = true
			b.logger.Info("eliminated", "guesses", result.Guesses)
			return result, nil
		case state.TurnOrder[0] == b.pid:
			letter, ok := b.strategy.NextLetter(state.Alphabet.Letters)
			if !ok {
				return nil, errors.New("no letters left to guess")
			}
			if err := b.client.GuessLetter(ctx, b.sid, letter); err != nil {
				return nil, fmt.Errorf("guess %q: %w", letter, err)
			}
			result.Guesses++
			b.logger.Debug("guessed", "letter", letter)
			b.poll.Reset()
			continue
		}

		if err := b.wait(ctx); err != nil {
			return nil, err
		}
	}
}

func (b *Bot) wait(ctx context.Context) error {
	t := time.NewTimer(b.poll.Duration())
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

