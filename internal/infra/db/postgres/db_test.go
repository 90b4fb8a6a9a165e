package postgres

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB gives each test its own named in-memory sqlite database so the
// pooled connections all see the same schema.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// The booking columns migrate to timestamptz, so the exclusion constraint
// must build its range with tstzrange or the DDL fails on a live server.
func TestBookingConstraintUsesTimestamptzRange(t *testing.T) {
	ddl := strings.Join(bookingConstraintSQL, "\n")
	assert.Contains(t, ddl, "tstzrange(from_datetime, to_datetime, '[]')")
	assert.NotContains(t, ddl, " tsrange(")
	assert.Contains(t, ddl, "btree_gist")
	assert.Contains(t, ddl, "booking_status <> 'cancelled'")
}
