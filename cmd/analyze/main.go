// Command analyze simulates Hangmen games to compare how long words survive.
// Each game joins one player per word, guesses letters in a random order
// through the game engine and records when each word is fully exposed and
// who wins.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/samber/lo"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/hangmen/game/engine"
)

// WordStats summarizes one word over all simulated games.
type WordStats struct {
	Word            string  `json:"word"`
	DistinctLetters int     `json:"distinct_letters"`
	MeanExposure    float64 `json:"mean_exposure"`
	MinExposure     int     `json:"min_exposure"`
	MaxExposure     int     `json:"max_exposure"`
	Wins            int     `json:"wins"`
	WinRate         float64 `json:"win_rate"`
}

// Report is the result of a simulation run.
type Report struct {
	Games    int         `json:"games"`
	NoWinner int         `json:"no_winner"`
	Words    []WordStats `json:"words"`
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "analyze: %v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Simulate games and report how long each word survives random guessing",
		ArgsUsage: "WORD [WORD...]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "games",
				Aliases: []string{"n"},
				Value:   1000,
				Usage:   "Number of games to simulate",
			},
			&cli.IntFlag{
				Name:  "seed",
				Usage: "Random seed, 0 picks one from the clock",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the report as JSON",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			words := cmd.Args().Slice()
			if len(words) < engine.DefaultMinPlayers {
				return fmt.Errorf("need at least %d words, got %d", engine.DefaultMinPlayers, len(words))
			}

			seed := uint64(cmd.Int("seed"))
			if seed == 0 {
				seed = uint64(time.Now().UnixNano())
			}
			r := rand.New(rand.NewPCG(seed, seed>>1))

			report, err := simulate(words, cmd.Int("games"), r)
			if err != nil {
				return err
			}

			if cmd.Bool("json") {
				enc := json.NewEncoder(cmd.Root().Writer)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printReport(cmd.Root().Writer, report, seed)
			return nil
		},
	}
}

var alphabet = []string{
	"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m",
	"n", "o", "p", "q", "r", "s", "t", "u", "v", "w", "x", "y", "z",
}

// simulate plays games rounds with one player per word.
func simulate(words []string, games int, r *rand.Rand) (*Report, error) {
	if games <= 0 {
		return nil, errors.New("games must be positive")
	}

	rules := engine.DefaultRules()
	for _, w := range words {
		if err := engine.ValidateWord(w, rules.MaxWordLength); err != nil {
			return nil, fmt.Errorf("word %q: %w", w, err)
		}
	}

	exposures := make([][]int, len(words))
	wins := make([]int, len(words))
	noWinner := 0

	for round := 0; round < games; round++ {
		order := append([]string(nil), alphabet...)
		r.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		winner, err := playGame(words, order, r)
		if err != nil {
			return nil, err
		}
		if winner < 0 {
			noWinner++
		} else {
			wins[winner]++
		}

		position := make(map[rune]int, len(order))
		for i, l := range order {
			position[rune(l[0])] = i + 1
		}
		for i, w := range words {
			exposures[i] = append(exposures[i], lo.Max(lo.Map(engine.DistinctLetters(w), func(l rune, _ int) int {
				return position[l]
			})))
		}
	}

	report := &Report{Games: games, NoWinner: noWinner}
	for i, w := range words {
		report.Words = append(report.Words, WordStats{
			Word:            w,
			DistinctLetters: len(engine.DistinctLetters(w)),
			MeanExposure:    lo.Mean(lo.Map(exposures[i], func(v int, _ int) float64 { return float64(v) })),
			MinExposure:     lo.Min(exposures[i]),
			MaxExposure:     lo.Max(exposures[i]),
			Wins:            wins[i],
			WinRate:         float64(wins[i]) / float64(games),
		})
	}

	sort.SliceStable(report.Words, func(i, j int) bool {
		return report.Words[i].MeanExposure > report.Words[j].MeanExposure
	})
	return report, nil
}

// playGame runs one game guessing letters in order and returns the index of
// the winning word, or -1 when nobody survived.
func playGame(words, order []string, r *rand.Rand) (int, error) {
	rules := engine.DefaultRules()
	rules.MaxPlayers = 0
	g := engine.NewGame(rules, engine.WithShuffler(func(ids []string) {
		r.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	}))

	index := make(map[string]int, len(words))
	for i := range words {
		pid, err := g.Join(fmt.Sprintf("player%d", i+1))
		if err != nil {
			return 0, err
		}
		index[pid] = i
	}
	for pid, i := range index {
		if _, err := g.SetWord(pid, words[i]); err != nil {
			return 0, err
		}
	}

	for _, letter := range order {
		out, err := g.GuessLetter(letter)
		if err != nil {
			return 0, err
		}
		if out.Concluded {
			if out.Winner == "" {
				return -1, nil
			}
			return index[out.Winner], nil
		}
	}
	return 0, errors.New("game did not conclude after the whole alphabet")
}

func printReport(w io.Writer, report *Report, seed uint64) {
	fmt.Fprintf(w, "Simulated %d games (seed %d)\n", report.Games, seed)
	fmt.Fprintf(w, "Games without a winner: %d\n\n", report.NoWinner)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WORD\tLETTERS\tMEAN EXPOSED AT\tRANGE\tWIN RATE")
	for _, s := range report.Words {
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%d-%d\t%.1f%%\n",
			s.Word, s.DistinctLetters, s.MeanExposure, s.MinExposure, s.MaxExposure, s.WinRate*100)
	}
	tw.Flush()
}
