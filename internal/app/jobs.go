package app

import (
	"context"
	"fmt"
	"time"

	pkgcron "github.com/Till769/zero2prod/internal/pkg/cron"
	sessionpkg "github.com/Till769/zero2prod/internal/pkg/session"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// sessionRetention is how long expired or revoked sessions stay around
// before the cleanup job removes them.
const sessionRetention = 7 * 24 * time.Hour

// registerJobs registers all scheduled background jobs.
func registerJobs(sched *pkgcron.Scheduler, db *gorm.DB, logger *zap.Logger) {
	jobLogger := logger.Named("CronService")

	sched.Register(pkgcron.Job{
		Name:        "cleanup_sessions",
		Description: "Delete expired or revoked sessions past the retention window",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			removed, err := sessionpkg.Cleanup(db, sessionRetention)
			if err != nil {
				jobLogger.Warn("session cleanup failed", zap.Error(err))
				return err
			}
			jobLogger.Info(fmt.Sprintf("session cleanup done, removed %d row(s)", removed))
			return nil
		},
	})
}
