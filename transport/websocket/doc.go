// Package websocket pushes live session updates to spectators and players.
//
// The HTTP API stays the only way to play; a socket is a read-only
// subscription. Clients connect to /ws?sid=<session id>, receive the current
// state immediately and then one message per state change:
//
//	{"session_id":"k3x9qa","event":"state_update","state":{...},"events":[...]}
//
// The state has the same shape as /get-state. Events describe what caused
// the change (letter guessed, player eliminated, game over, ...).
//
// Architecture:
//
// A single Hub goroutine owns the per-session client sets. Handlers queue
// updates with BroadcastState, which never blocks the request path; a
// client whose buffer is full is disconnected and can reconnect for a fresh
// snapshot.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//
//	hub.ServeWS(w, r, sid, state)
//	hub.BroadcastState(sid, result.State, result.Events)
package websocket
