// Package engine provides the rules engine for Boop, a two-player placement
// game on a rows x cols grid.
//
// The engine package implements:
//   - A fixed adjacency graph of cells, wired once when the board is built
//   - Booping: a placed piece pushes adjacent opposing pieces one cell away,
//     or off the board at the edge
//   - Promotion: three of a player's kittens in a line become a cat in the pool
//   - Victory: three of a player's cats in a line
//   - Per-match bookkeeping: piece pools, a coordinate index and the event log
//
// Core Types:
//
// Board owns the Cells and implements the rule predicates and mutators.
// GameState drives a Board (through the narrow Rules interface) and keeps
// pools, coordinates and history consistent with it. GameEngine is the turn
// orchestrator exposed to transports: select a piece type, place it, read the
// TurnResult and the Snapshot.
//
// Usage:
//
//	gameEngine, err := engine.NewEngine(engine.DefaultGameConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine.SelectPiece(engine.PlayerOne, engine.Kitten)
//	result := gameEngine.Place(2, 3)
//	snap := gameEngine.Snapshot()
//
// Turn Order:
//
// After a placement the engine checks a win at the placed cell, boops in all
// 8 directions, promotes at the placed cell, then re-checks win and promotion
// at every cell a pushed piece landed on, for that piece's owner. The first
// win found stands. The turn passes to the other player unless the match was
// won.
package engine
