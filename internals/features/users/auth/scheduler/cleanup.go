package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authRepo "garderie_backend/internals/features/users/auth/repository"
)

// BlacklistCleanup purges revoked tokens that expired more than Retention ago.
type BlacklistCleanup struct {
	DB        *gorm.DB
	Log       *zap.Logger
	Retention time.Duration
	Now       func() time.Time
}

func (j *BlacklistCleanup) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := j.Now().Add(-j.Retention)
	n, err := authRepo.CleanupExpiredBlacklist(ctx, j.DB, cutoff)
	if err != nil {
		j.Log.Error("token blacklist cleanup failed", zap.Error(err))
		return
	}
	j.Log.Info("token blacklist cleaned", zap.Int64("deleted", n), zap.Time("cutoff", cutoff))
}

// StartBlacklistCleanupScheduler runs the cleanup on spec (cron syntax or
// "@every 24h"). Stop the returned cron on shutdown.
func StartBlacklistCleanupScheduler(db *gorm.DB, spec string, retention time.Duration, log *zap.Logger) (*cron.Cron, error) {
	if log == nil {
		log = zap.NewNop()
	}
	job := &BlacklistCleanup{
		DB:        db,
		Log:       log.Named("scheduler"),
		Retention: retention,
		Now:       func() time.Time { return time.Now().UTC() },
	}
	c := cron.New(cron.WithChain(cron.Recover(cron.DiscardLogger)))
	if _, err := c.AddJob(spec, job); err != nil {
		return nil, err
	}
	c.Start()
	log.Info("token blacklist cleanup scheduled", zap.String("spec", spec))
	return c, nil
}
