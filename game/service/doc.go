// Package service provides the business logic layer for Hangmen.
//
// The service package implements:
//   - Multi-session game management
//   - Rules set selection
//   - Per-session serialization of every read and write
//   - Game event generation for logging and push updates
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// RulesManager loads the rules sets sessions are created with.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Each Session owns one engine.Game and one mutex; every
// operation on a session, including state reads, runs under that mutex, so
// a snapshot never observes a half-applied guess. Sessions never contend
// with each other, and the registry lock is never held while a session
// operation runs.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	rulesMgr, _ := config.NewManager("rules")
//	gameService := service.NewGameService(sessionMgr, rulesMgr)
//
//	info, err := gameService.CreateSession(ctx, "")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	joined, err := gameService.JoinSession(ctx, info.ID, "alice")
//	state, err := gameService.GetState(ctx, info.ID)
package service
