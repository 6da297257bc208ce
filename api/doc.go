// Package api exposes the Boop game service over HTTP.
//
// Endpoints:
//
// Sessions:
//   - POST   /api/sessions                {config_id?}  create a match
//   - GET    /api/sessions                ?sort=created|accessed&order=asc|desc&limit=N
//   - GET    /api/sessions/{id}
//   - DELETE /api/sessions/{id}
//
// Play:
//   - GET  /api/sessions/{id}/state       full snapshot
//   - GET  /api/sessions/{id}/board       plain-text board
//   - POST /api/sessions/{id}/select      {player: 1|2, piece_type: "kitten"|"cat"}
//   - POST /api/sessions/{id}/place       {row, col, piece_type?}
//   - POST /api/sessions/{id}/reset
//   - GET  /api/sessions/{id}/history     ?page&limit&order&action
//
// Configuration:
//   - GET  /api/configs
//   - GET  /api/configs/{name}
//   - POST /api/configs                   GameConfig JSON; saved under a slug of its name
//
// Other:
//   - GET /ws?session={id}                live updates, see package websocket
//   - GET /health
//
// A rejected placement is still a 200 with success false and a reason code
// such as "cell_occupied". HTTP errors are reserved for malformed requests
// (400), unknown sessions or configs (404) and server failures (500):
//
//	{"error": "session \"zz99\": session not found", "code": 404}
package api
