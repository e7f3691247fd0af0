package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/hangmen/api"
	"github.com/wricardo/hangmen/game/config"
	"github.com/wricardo/hangmen/game/service"
	"github.com/wricardo/hangmen/game/session"
	"github.com/wricardo/hangmen/logging"
)

func newGameServer(t *testing.T) *httptest.Server {
	t.Helper()
	rules, err := config.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create rules manager: %v", err)
	}
	sessions := session.NewManager(session.WithLogger(logging.Discard()))
	server := api.NewServer(service.NewGameService(sessions, rules), nil, api.WithLogger(logging.Discard()))

	ts := httptest.NewServer(server)
	t.Cleanup(ts.Close)
	return ts
}

func TestStrategy_NextLetter(t *testing.T) {
	s := NewStrategy("eat")

	letter, ok := s.NextLetter(map[string]bool{})
	if !ok || letter != "o" {
		t.Errorf("Expected o (most common letter outside eat), got %q", letter)
	}

	guessed := map[string]bool{}
	for _, l := range frequencyOrder {
		if !strings.ContainsRune("eat", l) {
			guessed[string(l)] = true
		}
	}
	letter, ok = s.NextLetter(guessed)
	if !ok || letter != "e" {
		t.Errorf("Expected own letter e once others are used up, got %q", letter)
	}

	for _, l := range "eat" {
		guessed[string(l)] = true
	}
	if _, ok := s.NextLetter(guessed); ok {
		t.Error("Expected no letter once the alphabet is exhausted")
	}
}

func TestFrequencyOrder_CoversAlphabet(t *testing.T) {
	seen := map[rune]bool{}
	for _, l := range frequencyOrder {
		seen[l] = true
	}
	if len(frequencyOrder) != 26 || len(seen) != 26 {
		t.Errorf("frequencyOrder must hold each letter once, got %q", frequencyOrder)
	}
}

func TestClient(t *testing.T) {
	ts := newGameServer(t)
	client := NewClient(ts.URL + "/")
	ctx := context.Background()

	sid, err := client.NewSession(ctx, "")
	if err != nil || sid == "" {
		t.Fatalf("NewSession failed: %q %v", sid, err)
	}

	pid, err := client.Join(ctx, sid, "alice")
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if err := client.SetWord(ctx, sid, pid, "banana"); err != nil {
		t.Fatalf("SetWord failed: %v", err)
	}

	state, err := client.State(ctx, sid)
	if err != nil {
		t.Fatalf("State failed: %v", err)
	}
	if !state.IsLobby || !state.Players[pid].Ready {
		t.Errorf("Unexpected state %+v", state)
	}

	var apiErr *APIError
	if err := client.GuessLetter(ctx, sid, "a"); !errors.As(err, &apiErr) || apiErr.Status != http.StatusConflict {
		t.Errorf("Expected 409 guessing in the lobby, got %v", err)
	}
	if _, err := client.State(ctx, "nope00"); !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown session, got %v", err)
	}
	if _, err := client.NewSession(ctx, "missing"); !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown rules, got %v", err)
	}

	if err := client.Exit(ctx, sid, pid); err != nil {
		t.Fatalf("Exit failed: %v", err)
	}
	if state, _ := client.State(ctx, sid); len(state.Players) != 0 {
		t.Errorf("Expected empty roster after exit, got %+v", state.Players)
	}
}

func TestBot_PlayToConclusion(t *testing.T) {
	ts := newGameServer(t)
	client := NewClient(ts.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sid, _ := client.NewSession(ctx, "")
	words := []string{"eat", "quiz"}
	bots := make([]*Bot, len(words))
	pids := make([]string, len(words))
	for i, w := range words {
		pid, err := client.Join(ctx, sid, w+"-bot")
		if err != nil {
			t.Fatalf("Join failed: %v", err)
		}
		pids[i] = pid
		bots[i] = NewBot(client, sid, pid, w, time.Millisecond, 10*time.Millisecond, logging.Discard())
	}

	results := make([]*Result, len(bots))
	errs := make([]error, len(bots))
	var wg sync.WaitGroup
	for i, b := range bots {
		wg.Add(1)
		go func(i int, b *Bot) {
			defer wg.Done()
			results[i], errs[i] = b.Play(ctx)
		}(i, b)
	}
	wg.Wait()

	wins := 0
	for i, r := range results {
		if errs[i] != nil {
			t.Fatalf("Bot %d failed: %v", i, errs[i])
		}
		if r.Winner == "" || r.Winner != results[0].Winner {
			t.Errorf("Bots should agree on a winner, got %+v", results)
		}
		if r.Won {
			wins++
			if r.Winner != pids[i] {
				t.Errorf("Winning bot reports someone else as winner: %+v", r)
			}
		}
	}
	if wins != 1 {
		t.Errorf("Expected exactly one winner, got %d", wins)
	}
	if results[0].Guesses+results[1].Guesses == 0 {
		t.Error("Expected at least one guess")
	}
}

func TestBot_ContextCancelled(t *testing.T) {
	ts := newGameServer(t)
	client := NewClient(ts.URL)

	sid, _ := client.NewSession(context.Background(), "")
	pid, _ := client.Join(context.Background(), sid, "lonely")
	bot := NewBot(client, sid, pid, "alone", time.Millisecond, 5*time.Millisecond, logging.Discard())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := bot.Play(ctx); err == nil {
		t.Error("A bot waiting in the lobby should stop when its context ends")
	}
}

func TestCommand(t *testing.T) {
	ts := newGameServer(t)
	client := NewClient(ts.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sid, _ := client.NewSession(ctx, "")
	pid, _ := client.Join(ctx, sid, "opponent")
	opponent := NewBot(client, sid, pid, "quiz", time.Millisecond, 10*time.Millisecond, logging.Discard())

	done := make(chan error, 1)
	go func() {
		_, err := opponent.Play(ctx)
		done <- err
	}()

	var out bytes.Buffer
	cmd := newCommand()
	cmd.Writer = &out
	err := cmd.Run(ctx, []string{"bot",
		"--url", ts.URL, "--sid", sid, "--word", "eat", "--name", "cli",
		"--poll-min", "1ms", "--poll-max", "10ms", "--exit", "--log-level", "error",
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("Opponent failed: %v", err)
	}
	if !strings.Contains(out.String(), sid) {
		t.Errorf("Expected a summary naming the session, got %q", out.String())
	}

	state, err := client.State(ctx, sid)
	if err != nil {
		t.Fatalf("State failed: %v", err)
	}
	if len(state.Players) != 1 {
		t.Errorf("Expected the cli bot to have exited, got %+v", state.Players)
	}

	if err := newCommand().Run(ctx, []string{"bot", "--url", ts.URL}); err == nil {
		t.Error("Expected error without --word")
	}
}
