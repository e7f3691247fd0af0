package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/jpillora/backoff"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"
	"github.com/wricardo/hangmen/game/engine"
	"github.com/wricardo/hangmen/game/service"
)

// Client is a thin MCP server that proxies every tool to the HTTP API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the HTTP API at baseURL
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Hangmen",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Hangmen - MCP Interface

Reverse hangman for several players. Everyone commits a secret word; once all
players are ready the game starts and letters are guessed one per turn. A
player whose word is fully exposed is eliminated. Last word standing wins.

AVAILABLE TOOLS:
- new_session: Create a session and get its id
- join_session: Join a session and get your player id
- set_word: Commit your secret word (starts the game when everyone is ready)
- get_state: Show players, masked words, turn order and guessed letters
- guess_letter: Guess a letter for the whole session
- guess_word: Guess another player's full word
- exit_session: Leave a session
- reset_session: Return a session to the lobby
- list_sessions: List active sessions
- list_rules: List rules sets for new_session
- game_instructions: Full rules and strategy notes`),
	)

	// Register all tools
	c.registerTools()
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	sid := stringProp("Session ID")
	pid := stringProp("Player ID")

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "new_session",
		Description: "Create a new game session with an optional rules set",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"rules": stringProp("Rules set to use (optional, see list_rules)"),
			},
		},
	}, c.handleNewSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "join_session",
		Description: "Join a session as a new player. Returns your player id",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sid,
				"name":       stringProp("Display name"),
			},
			Required: []string{"session_id", "name"},
		},
	}, c.handleJoinSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_state",
		Description: "Get the current state of a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sid,
				"player_id":  stringProp("Your player ID, to mark yourself in the output (optional)"),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "set_word",
		Description: "Commit your secret word. Only possible in the lobby, and only once",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sid,
				"player_id":  pid,
				"word":       stringProp("Secret word"),
			},
			Required: []string{"session_id", "player_id", "word"},
		},
	}, c.handleSetWord)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "guess_letter",
		Description: "Guess a letter for the whole session. Repeating a guessed letter does nothing",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sid,
				"letter":     stringProp("A single letter a-z"),
			},
			Required: []string{"session_id", "letter"},
		},
	}, c.handleGuessLetter)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "guess_word",
		Description: "Guess a player's full word. A correct guess eliminates that player",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sid,
				"player_id":  stringProp("Player whose word you are guessing"),
				"word":       stringProp("The guessed word"),
			},
			Required: []string{"session_id", "player_id", "word"},
		},
	}, c.handleGuessWord)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "exit_session",
		Description: "Leave a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sid,
				"player_id":  pid,
			},
			Required: []string{"session_id", "player_id"},
		},
	}, c.handleExitSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_session",
		Description: "Return a session to the lobby, keeping its players",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sid,
			},
			Required: []string{"session_id"},
		},
	}, c.handleResetSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"phase": stringProp("Only sessions in this phase: lobby, active or concluded (optional)"),
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of sessions (optional)",
				},
			},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_rules",
		Description: "List the rules sets available to new_session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListRules)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get complete game rules and strategy notes",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// WaitReady polls /health until the API answers or ctx is done.
func (c *Client) WaitReady(ctx context.Context) error {
	b := &backoff.Backoff{
		Min:    50 * time.Millisecond,
		Max:    time.Second,
		Factor: 2,
		Jitter: true,
	}

	for {
		_, err := c.apiCall(ctx, http.MethodGet, "/health", nil)
		if err == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("API at %s not ready after %d attempts: %w", c.baseURL, int(b.Attempt()), err)
		case <-time.After(b.Duration()):
		}
	}
}

// apiCall makes an HTTP request to the API and returns the raw body
func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		if json.Unmarshal(data, &errResp) == nil && errResp["error"] != "" {
			return nil, errors.New(errResp["error"])
		}
		return nil, fmt.Errorf("API error: %d", resp.StatusCode)
	}

	return data, nil
}

// apiJSON makes an API call and decodes a JSON response into result
func (c *Client) apiJSON(ctx context.Context, method, path string, body, result interface{}) error {
	data, err := c.apiCall(ctx, method, path, body)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, result)
}

// args reads string arguments, failing when a required one is empty.
type args struct {
	raw map[string]any
	err error
}

func newArgs(request mcp.CallToolRequest) *args {
	return &args{raw: request.GetArguments()}
}

func (a *args) optional(key string) string {
	return strings.TrimSpace(cast.ToString(a.raw[key]))
}

func (a *args) required(key string) string {
	v := a.optional(key)
	if v == "" && a.err == nil {
		a.err = fmt.Errorf("missing required argument: %s", key)
	}
	return v
}

// Tool handlers

func (c *Client) handleNewSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a := newArgs(request)

	var body interface{}
	if rules := a.optional("rules"); rules != "" {
		body = map[string]string{"rules": rules}
	}

	data, err := c.apiCall(ctx, http.MethodPost, "/new-session", body)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nShare this id with the other players, then call join_session.", string(data))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleJoinSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a := newArgs(request)
	sessionID := a.required("session_id")
	name := a.required("name")
	if a.err != nil {
		return mcp.NewToolResultError(a.err.Error()), nil
	}

	data, err := c.apiCall(ctx, http.MethodPost, "/join-session", map[string]string{"sid": sessionID, "name": name})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Joined session %s as %s\nYour player id: %s\nNext: set_word with your secret word.",
		sessionID, name, string(data))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a := newArgs(request)
	sessionID := a.required("session_id")
	if a.err != nil {
		return mcp.NewToolResultError(a.err.Error()), nil
	}

	state, err := c.getState(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatState(state, a.optional("player_id"))), nil
}

func (c *Client) getState(ctx context.Context, sessionID string) (*engine.SessionState, error) {
	var state engine.SessionState
	if err := c.apiJSON(ctx, http.MethodPost, "/get-state", map[string]string{"sid": sessionID}, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// mutateAndShow performs a mutation and renders the resulting state.
func (c *Client) mutateAndShow(ctx context.Context, path, done string, body map[string]string, me string) (*mcp.CallToolResult, error) {
	if _, err := c.apiCall(ctx, http.MethodPost, path, body); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	state, err := c.getState(ctx, body["sid"])
	if err != nil {
		return mcp.NewToolResultText(done), nil
	}
	return mcp.NewToolResultText(done + "\n\n" + formatState(state, me)), nil
}

func (c *Client) handleSetWord(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a := newArgs(request)
	sessionID := a.required("session_id")
	playerID := a.required("player_id")
	word := a.required("word")
	if a.err != nil {
		return mcp.NewToolResultError(a.err.Error()), nil
	}

	return c.mutateAndShow(ctx, "/set-word", "Word set. You are ready.",
		map[string]string{"sid": sessionID, "pid": playerID, "word": word}, playerID)
}

func (c *Client) handleGuessLetter(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a := newArgs(request)
	sessionID := a.required("session_id")
	letter := a.required("letter")
	if a.err != nil {
		return mcp.NewToolResultError(a.err.Error()), nil
	}

	return c.mutateAndShow(ctx, "/guess-letter", fmt.Sprintf("Guessed %q.", letter),
		map[string]string{"sid": sessionID, "letter": letter}, "")
}

func (c *Client) handleGuessWord(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a := newArgs(request)
	sessionID := a.required("session_id")
	playerID := a.required("player_id")
	word := a.required("word")
	if a.err != nil {
		return mcp.NewToolResultError(a.err.Error()), nil
	}

	return c.mutateAndShow(ctx, "/guess-word", fmt.Sprintf("Guessed %q for player %s.", word, playerID),
		map[string]string{"sid": sessionID, "pid": playerID, "word": word}, "")
}

func (c *Client) handleExitSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a := newArgs(request)
	sessionID := a.required("session_id")
	playerID := a.required("player_id")
	if a.err != nil {
		return mcp.NewToolResultError(a.err.Error()), nil
	}

	if _, err := c.apiCall(ctx, http.MethodPost, "/exit-session", map[string]string{"sid": sessionID, "pid": playerID}); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Player %s left session %s.", playerID, sessionID)), nil
}

func (c *Client) handleResetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a := newArgs(request)
	sessionID := a.required("session_id")
	if a.err != nil {
		return mcp.NewToolResultError(a.err.Error()), nil
	}

	return c.mutateAndShow(ctx, "/reset-session", "Session reset to lobby. Every player must set a new word.",
		map[string]string{"sid": sessionID}, "")
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a := newArgs(request)

	query := url.Values{}
	if phase := a.optional("phase"); phase != "" {
		query.Set("phase", phase)
	}
	if limit := cast.ToInt(a.raw["limit"]); limit > 0 {
		query.Set("limit", cast.ToString(limit))
	}
	path := "/sessions"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var response struct {
		Count    int                   `json:"count"`
		Total    int                   `json:"total"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := c.apiJSON(ctx, http.MethodGet, path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d of %d):\n\n", response.Count, response.Total)
	for _, s := range response.Sessions {
		fmt.Fprintf(&b, "- %s [%s] rules: %s, players: %d, created: %s\n",
			s.ID, s.Phase, s.RulesName, s.Players, s.CreatedAt.Format("15:04:05"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleListRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var rules []service.RulesInfo
	if err := c.apiJSON(ctx, http.MethodGet, "/rules", nil, &rules); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Rules:\n\n")
	for _, r := range rules {
		maxPlayers := "unlimited"
		if r.MaxPlayers > 0 {
			maxPlayers = cast.ToString(r.MaxPlayers)
		}
		fmt.Fprintf(&b, "• %s\n  %s\n  Players: %d to %s\n\n", r.RulesID, r.Description, r.MinPlayers, maxPlayers)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Hangmen - Complete Instructions

GAME OBJECTIVE:
Keep your word hidden longer than everyone else's.

SETUP:
1. One player calls new_session and shares the session id.
2. Everyone calls join_session and keeps their player id.
3. Everyone calls set_word. Words must be lowercase with no spaces; only
   letters a-z need guessing, other characters are free.
4. When every player in the lobby has a word the game starts and the turn
   order is shuffled.

PLAY:
• The player at the front of the turn order guesses a single lowercase
  letter (a-z) with guess_letter. The letter is revealed in every word.
• After a new letter the turn passes to the next player.
• Guessing a letter that was already guessed changes nothing, and the
  turn does not pass.
• A player whose word has every letter revealed is eliminated and leaves
  the turn order.
• guess_word names a player and their full word. If it is right that
  player is eliminated; if it is wrong nothing happens.

END:
The game is over when one player (the winner) or nobody is left in the
turn order. reset_session returns everyone to the lobby for a new round.

NOTES:
• Players who join after the start watch but never take turns.
• Leaving with exit_session removes you from the turn order.
• Short words with common letters fall fast. Rare letters (j, q, x, z)
  and long words with many distinct letters survive longer.`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting

func formatState(state *engine.SessionState, me string) string {
	var b strings.Builder

	phase := "active"
	switch {
	case state.IsLobby:
		phase = "lobby"
	case len(state.TurnOrder) <= 1:
		phase = "concluded"
	}
	fmt.Fprintf(&b, "Session %s (%s)\n", state.ID, phase)

	guessed := guessedLetters(state)
	if len(guessed) == 0 {
		b.WriteString("Guessed letters: none\n")
	} else {
		fmt.Fprintf(&b, "Guessed letters: %s\n", strings.Join(guessed, " "))
	}

	switch phase {
	case "active":
		fmt.Fprintf(&b, "Turn: %s\n", playerLabel(state, state.TurnOrder[0], me))
		names := make([]string, 0, len(state.TurnOrder))
		for _, pid := range state.TurnOrder {
			names = append(names, playerLabel(state, pid, me))
		}
		fmt.Fprintf(&b, "Turn order: %s\n", strings.Join(names, " -> "))
	case "concluded":
		if len(state.TurnOrder) == 1 {
			fmt.Fprintf(&b, "Winner: %s\n", playerLabel(state, state.TurnOrder[0], me))
		} else {
			b.WriteString("Game over: nobody survived\n")
		}
	}

	b.WriteString("\nPlayers:\n")
	ids := make([]string, 0, len(state.Players))
	for id := range state.Players {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return state.Players[ids[i]].Name < state.Players[ids[j]].Name })

	for _, id := range ids {
		p := state.Players[id]
		status := "waiting for word"
		switch {
		case !p.Alive:
			status = "eliminated"
		case p.Ready:
			status = "ready"
		}

		word := ""
		if p.Ready {
			if id == me || !p.Alive {
				word = "  word: " + p.Word
			} else {
				word = "  word: " + maskWord(p.Word, state.Alphabet.Letters)
			}
		}
		fmt.Fprintf(&b, "- %s [%s]%s\n", playerLabel(state, id, me), status, word)
	}

	return b.String()
}

func playerLabel(state *engine.SessionState, pid, me string) string {
	name := pid
	if p, ok := state.Players[pid]; ok {
		name = p.Name
	}
	if pid == me {
		name += " (you)"
	}
	return fmt.Sprintf("%s <%s>", name, pid)
}

func guessedLetters(state *engine.SessionState) []string {
	var out []string
	for letter, guessed := range state.Alphabet.Letters {
		if guessed {
			out = append(out, letter)
		}
	}
	sort.Strings(out)
	return out
}

// maskWord hides the letters of word that have not been guessed yet.
func maskWord(word string, guessed map[string]bool) string {
	var b strings.Builder
	for _, r := range word {
		if engine.IsLetter(r) && !guessed[string(r)] {
			b.WriteRune('_')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
