// Package mcp exposes Boop to AI agents over the Model Context Protocol.
//
// The Client registers MCP tools and proxies every call to the REST API, so
// an agent plays against the same sessions that browsers and websocket
// watchers see.
//
// Tools:
//   - create_session, list_sessions, get_session
//   - game_state: board with row/col indices, player to move, pieces in hand
//   - select_piece, place_piece
//   - reset_game
//   - game_history: paginated event log, filterable by action
//   - list_configs
//   - game_rules
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
package mcp
