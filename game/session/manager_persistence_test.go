package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/boop-game/game/engine"
)

func TestManagerWithPersistence(t *testing.T) {
	dir := t.TempDir()
	configManager := newTestConfigManager(t)

	persistence, err := NewFilePersistence(dir, configManager)
	require.NoError(t, err)

	manager := NewManagerWithPersistence(persistence)

	t.Run("create auto-saves", func(t *testing.T) {
		session, err := manager.Create("auto1", configManager.GetDefault())
		require.NoError(t, err)
		assert.True(t, persistence.Exists(session.ID))

		loaded, err := persistence.Load(session.ID)
		require.NoError(t, err)
		assert.Equal(t, session.ID, loaded.ID)
	})

	t.Run("get loads from persistence", func(t *testing.T) {
		session, err := manager.Get("auto1")
		require.NoError(t, err)
		session.Engine.PlacePiece(0, 0, engine.Kitten)
		require.NoError(t, manager.Save("auto1"))

		manager2 := NewManagerWithPersistence(persistence)
		restored, err := manager2.Get("auto1")
		require.NoError(t, err)
		assert.Equal(t, "auto1", restored.ID)
		assert.Equal(t, engine.PlayerTwo, restored.Engine.CurrentPlayer())
		assert.NotNil(t, restored.Engine.GetState().Board().PieceAt(0, 0))

		again, err := manager2.Get("auto1")
		require.NoError(t, err)
		assert.Same(t, restored, again, "cached in memory after the first load")
	})

	t.Run("generated ids avoid persisted ones", func(t *testing.T) {
		_, err := manager.Create("AUTO1", configManager.GetDefault())
		assert.ErrorIs(t, err, ErrSessionAlreadyExists)
	})

	t.Run("expired sessions are saved before eviction", func(t *testing.T) {
		session, err := manager.Create("idle", configManager.GetDefault())
		require.NoError(t, err)
		session.Engine.PlacePiece(5, 5, engine.Kitten)
		session.LastAccessedAt = time.Now().Add(-time.Hour)

		assert.GreaterOrEqual(t, manager.CleanupExpiredSessions(time.Minute), 1)

		reloaded, err := manager.Get("idle")
		require.NoError(t, err)
		assert.NotNil(t, reloaded.Engine.GetState().Board().PieceAt(5, 5))
	})

	t.Run("load all persisted sessions", func(t *testing.T) {
		manager3 := NewManagerWithPersistence(persistence)
		require.NoError(t, manager3.LoadPersistedSessions())
		assert.Equal(t, 2, manager3.Count())
		require.NoError(t, manager3.SaveAllSessions())
	})

	t.Run("delete removes the file", func(t *testing.T) {
		require.NoError(t, manager.Delete("auto1"))
		assert.False(t, persistence.Exists("auto1"))

		_, err := manager.Get("auto1")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("delete persisted-only session", func(t *testing.T) {
		require.NoError(t, manager.DeleteFromMemory("idle"))
		require.NoError(t, manager.Delete("idle"))
		assert.False(t, persistence.Exists("idle"))
	})
}
