package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/models"
	"fintrack/internal/testutil"
)

func TestAuditLog(t *testing.T) {
	ctx := context.Background()

	t.Run("records_changes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAuditService(db)
		userID := testutil.NewUserID()

		svc.Log(ctx, userID, AuditActionUpdate, AuditResourceAccount, 42, "203.0.113.9", map[string]any{"name": "Savings"})

		var entries []models.AuditLog
		require.NoError(t, db.Find(&entries).Error)
		require.Len(t, entries, 1)

		entry := entries[0]
		assert.Equal(t, userID, entry.UserID)
		assert.Equal(t, "update", entry.Action)
		assert.Equal(t, "account", entry.ResourceType)
		assert.Equal(t, int64(42), entry.ResourceID)
		assert.Equal(t, "203.0.113.9", entry.IPAddress)

		var changes map[string]any
		require.NoError(t, json.Unmarshal([]byte(entry.Changes), &changes))
		assert.Equal(t, "Savings", changes["name"])
	})

	t.Run("nil_changes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAuditService(db)

		svc.Log(ctx, testutil.NewUserID(), AuditActionDelete, AuditResourceTransaction, 7, "", nil)

		var entry models.AuditLog
		require.NoError(t, db.First(&entry).Error)
		assert.Empty(t, entry.Changes)
	})

	t.Run("storage_failure_is_swallowed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewAuditService(db)
		testutil.TeardownTestDB(t, db)

		assert.NotPanics(t, func() {
			svc.Log(ctx, testutil.NewUserID(), AuditActionCreate, AuditResourceCategory, 1, "", map[string]any{"name": "x"})
		})
	})
}
