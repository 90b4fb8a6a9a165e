package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"stayadmin/internal/domain/audit"
	"stayadmin/internal/domain/user"
)

func seedAuditTrail(t *testing.T, db *gorm.DB) *user.User {
	t.Helper()
	u := &user.User{Name: "Root Admin", Email: "root@example.com", PasswordHash: "x", Role: user.RoleSuperAdmin, IsActive: true}
	require.NoError(t, db.Create(u).Error)

	repo := NewAuditRepository(db)
	ctx := context.Background()
	entries := []audit.Entry{
		{Entity: "booking", EntityID: 1, Action: audit.ActionCreate, UserID: u.ID, CreatedAt: time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)},
		{Entity: "booking", EntityID: 1, Action: audit.ActionUpdate, UserID: u.ID, CreatedAt: time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)},
		{Entity: "guest", EntityID: 2, Action: audit.ActionCreate, UserID: u.ID, CreatedAt: time.Date(2025, 7, 2, 9, 0, 0, 0, time.UTC)},
		{Entity: "guest", EntityID: 2, Action: audit.ActionDelete, UserID: u.ID, CreatedAt: time.Date(2025, 7, 2, 11, 0, 0, 0, time.UTC)},
	}
	for i := range entries {
		require.NoError(t, repo.Insert(ctx, &entries[i]))
	}
	return u
}

func TestAuditRecent(t *testing.T) {
	db := openTestDB(t)
	seedAuditTrail(t, db)
	repo := NewAuditRepository(db)
	ctx := context.Background()

	entries, err := repo.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	// newest first, with the acting user's name joined in
	assert.Equal(t, audit.ActionDelete, entries[0].Action)
	assert.Equal(t, "Root Admin", entries[0].UserName)

	all, err := repo.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestAuditStatistics(t *testing.T) {
	db := openTestDB(t)
	seedAuditTrail(t, db)
	repo := NewAuditRepository(db)
	ctx := context.Background()

	stats, err := repo.Statistics(ctx, nil, nil)
	require.NoError(t, err)

	require.Len(t, stats.Actions, 3)
	assert.Equal(t, audit.ActionCreate, stats.Actions[0].Action)
	assert.EqualValues(t, 2, stats.Actions[0].Count)
	assert.InDelta(t, 50.0, stats.Actions[0].Percentage, 0.01)

	require.Len(t, stats.Entities, 2)
	for _, e := range stats.Entities {
		assert.EqualValues(t, 2, e.Count)
		assert.InDelta(t, 50.0, e.Percentage, 0.01)
	}

	require.Len(t, stats.Users, 1)
	assert.Equal(t, "Root Admin", stats.Users[0].UserName)
	assert.EqualValues(t, 4, stats.Users[0].TotalActions)
	assert.EqualValues(t, 2, stats.Users[0].EntitiesModified)

	require.Len(t, stats.Daily, 2)
	assert.Equal(t, "2025-07-02", stats.Daily[0].Date)
	assert.EqualValues(t, 2, stats.Daily[0].TotalActions)
	assert.EqualValues(t, 1, stats.Daily[0].ActiveUsers)

	from := time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC)
	scoped, err := repo.Statistics(ctx, &from, nil)
	require.NoError(t, err)
	require.Len(t, scoped.Entities, 1)
	assert.Equal(t, "guest", scoped.Entities[0].Entity)
}
