package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	authModel "garderie_backend/internals/features/users/auth/model"
	"garderie_backend/internals/testutil"
)

func TestBlacklistCleanupKeepsRecentEntries(t *testing.T) {
	db := testutil.NewDB(t)
	now := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, db.Create(&authModel.TokenBlacklist{Token: "old", ExpiredAt: now.Add(-10 * 24 * time.Hour)}).Error)
	require.NoError(t, db.Create(&authModel.TokenBlacklist{Token: "recent", ExpiredAt: now.Add(-24 * time.Hour)}).Error)
	require.NoError(t, db.Create(&authModel.TokenBlacklist{Token: "live", ExpiredAt: now.Add(time.Hour)}).Error)

	job := &BlacklistCleanup{
		DB:        db,
		Log:       zap.NewNop(),
		Retention: 7 * 24 * time.Hour,
		Now:       func() time.Time { return now },
	}
	job.Run()

	var left []string
	require.NoError(t, db.Model(&authModel.TokenBlacklist{}).Order("token").Pluck("token", &left).Error)
	assert.Equal(t, []string{"live", "recent"}, left)
}

func TestStartBlacklistCleanupSchedulerRejectsBadSchedule(t *testing.T) {
	db := testutil.NewDB(t)
	_, err := StartBlacklistCleanupScheduler(db, "not a schedule", time.Hour, zap.NewNop())
	assert.Error(t, err)

	c, err := StartBlacklistCleanupScheduler(db, "@every 24h", time.Hour, zap.NewNop())
	require.NoError(t, err)
	<-c.Stop().Done()
}
