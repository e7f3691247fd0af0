// Command bot is an automated Hangmen player. It joins a session (creating one
// when no id is given), commits a word and plays its turns by polling the API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/hangmen/logging"
)

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "bot: %v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "bot",
		Usage: "Play a Hangmen seat automatically",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Value:   "http://localhost:3000",
				Usage:   "Game server URL",
				Sources: cli.EnvVars("HANGMEN_URL"),
			},
			&cli.StringFlag{
				Name:  "sid",
				Usage: "Session to join; a new one is created when empty",
			},
			&cli.StringFlag{
				Name:  "rules",
				Usage: "Rules set for a new session",
			},
			&cli.StringFlag{
				Name:  "name",
				Value: "bot",
				Usage: "Display name",
			},
			&cli.StringFlag{
				Name:     "word",
				Usage:    "Secret word to commit",
				Required: true,
			},
			&cli.DurationFlag{
				Name:  "poll-min",
				Value: 200 * time.Millisecond,
				Usage: "Shortest delay between state polls",
			},
			&cli.DurationFlag{
				Name:  "poll-max",
				Value: 2 * time.Second,
				Usage: "Longest delay between state polls",
			},
			&cli.BoolFlag{
				Name:  "exit",
				Usage: "Leave the session when the game ends",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
				Usage: "Log level (debug, info, warn, error)",
			},
		},
		Action: run,
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	logger, err := logging.New(cmd.String("log-level"), os.Stderr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := NewClient(cmd.String("url"))

	sid := cmd.String("sid")
	if sid == "" {
		if sid, err = client.NewSession(ctx, cmd.String("rules")); err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		logger.Info("session created", "sid", sid)
	}

	pid, err := client.Join(ctx, sid, cmd.String("name"))
	if err != nil {
		return fmt.Errorf("join session: %w", err)
	}
	logger.Info("joined", "sid", sid, "pid", pid, "name", cmd.String("name"))

	bot := NewBot(client, sid, pid, cmd.String("word"), cmd.Duration("poll-min"), cmd.Duration("poll-max"), logger)
	result, playErr := bot.Play(ctx)

	if cmd.Bool("exit") {
		// The game context may already be cancelled.
		exitCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Exit(exitCtx, sid, pid); err != nil {
			logger.Warn("exit failed", "err", err)
		}
	}
	if playErr != nil {
		return playErr
	}

	switch {
	case result.Won:
		fmt.Fprintf(cmd.Root().Writer, "Won session %s after %d guesses\n", sid, result.Guesses)
	case result.Eliminated:
		fmt.Fprintf(cmd.Root().Writer, "Eliminated from session %s after %d guesses\n", sid, result.Guesses)
	default:
		fmt.Fprintf(cmd.Root().Writer, "Session %s ended, winner %q\n", sid, result.Winner)
	}
	return nil
}
