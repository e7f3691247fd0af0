// Package api exposes Hangmen over HTTP.
//
// Game calls are POST requests with a JSON body. Ids come back as bare text,
// mutations acknowledge with an empty 200 and the state comes back as JSON:
//
//	POST /new-session    {"rules": "party"}                  -> session id (text)
//	POST /join-session   {"sid": "k3x9qa", "name": "alice"}  -> player id (text)
//	POST /get-state      {"sid": "k3x9qa"}                   -> state (JSON)
//	POST /set-word       {"sid", "pid", "word"}              -> empty
//	POST /guess-letter   {"sid", "letter"}                   -> empty
//	POST /guess-word     {"sid", "pid", "word"}              -> empty
//	POST /exit-session   {"sid", "pid"}                      -> empty
//	POST /reset-session  {"sid"}                             -> empty
//
// The new-session body is optional. Housekeeping routes:
//
//	GET    /health
//	GET    /sessions?sort=created|accessed&order=asc|desc&phase=active&limit=N
//	GET    /sessions/{id}
//	DELETE /sessions/{id}
//	GET    /rules
//	GET    /ws?sid=k3x9qa
//
// Errors:
//
// Failures return {"error": "..."} with 404 for unknown sessions or players,
// 400 for malformed input and 409 for calls the game phase does not allow.
// A rejected call changes nothing.
package api
