// Package service provides the business logic layer for the Boop game server.
//
// The service package implements:
//   - Multi-session match management
//   - Piece selection and placement on behalf of transports
//   - Paginated access to the match event log
//   - Configuration listing, loading and saving
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the rules engine. Each session owns one engine; the service serialises access
// to it, so transports never touch engine state concurrently.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameService.SelectPiece(ctx, info.ID, engine.PlayerOne, engine.Kitten)
//	result, err := gameService.Place(ctx, info.ID, 2, 3, "")
//
// Placement results are never errors: a rejected move comes back with
// Success false and an engine reason code. Errors are reserved for unknown
// sessions and malformed input.
package service
