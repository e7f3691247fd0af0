// Package mcp exposes Hangmen to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool calls the HTTP API and renders a
// plain-text summary, so an agent plays exactly like any other client.
//
// MCP Tools:
//   - new_session, join_session, set_word: lobby setup
//   - get_state: players, masked words, turn order and guessed letters
//   - guess_letter, guess_word: play
//   - exit_session, reset_session: leave or start over
//   - list_sessions, list_rules, game_instructions: discovery
//
// Other players' words are shown masked (unguessed letters as '_'); your own
// word and eliminated players' words are shown in full.
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer()) for local agents
//   - HTTP: the server routes POST /mcp to GetMCPServer().HandleMessage
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:3000")
//	if err := client.WaitReady(ctx); err != nil {
//		return err
//	}
//	return server.ServeStdio(client.GetMCPServer())
package mcp
