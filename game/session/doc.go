// Package session provides session management for the Boop game server.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - File persistence of match snapshots
//   - Idle session eviction
//
// Core Types:
//
// Manager is the session registry. Each session owns one rules engine along
// with its configuration and access timestamps. FilePersistence stores a
// session as a JSON file holding the engine snapshot and the rules it was
// created with, and restores it through engine.NewEngineFromSnapshot, which
// rejects files whose board and piece index disagree.
//
// Session Identifiers:
//
// Generated IDs are 4 hex characters from crypto/rand. IDs are
// case-insensitive and must not contain path separators.
//
// Usage:
//
//	persistence, _ := session.NewFilePersistence("sessions", configManager)
//	manager := session.NewManagerWithPersistence(persistence)
//	if err := manager.LoadPersistedSessions(); err != nil {
//		log.Warn(err)
//	}
//
//	sess, err := manager.Create("", config)
//	sess, err = manager.Get(sess.ID)
//
// Cleanup:
//
// CleanupExpiredSessions saves and evicts idle sessions from memory; they
// reload from disk on the next Get.
package session
