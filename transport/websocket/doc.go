// Package websocket pushes live match updates to browser and bot clients.
//
// A central Hub tracks connections grouped by session ID. Clients connect
// with ?session=abcd and receive a JSON Message whenever that session changes:
//
//	{"session_id": "abcd", "event": "state_update", "game_state": {...}}
//	{"session_id": "abcd", "event": "turn", "data": {...TurnResult...}}
//
// Clients are listeners only; anything they send is read and discarded to
// keep the connection alive. A client whose send buffer fills up is dropped.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	defer hub.Stop()
//
//	r.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
package websocket
