// Package cleanup removes expired job artifacts: finished jobs older
// than the retention window lose their stored archive, source file and
// database row.
package cleanup

import (
	"context"
	"time"

	"github.com/buildlane/ifcbridge/internal/db"
	"github.com/buildlane/ifcbridge/internal/storage"
	"github.com/buildlane/ifcbridge/pkg/logger"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	sweepInterval = time.Hour
	retention     = 24 * time.Hour
)

// Run sweeps expired jobs on an hourly ticker until the context is
// canceled. Meant to run as a goroutine next to the worker loop.
func Run(ctx context.Context, s3Client *awss3.Client, conn *pgxpool.Pool) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := sweep(ctx, s3Client, conn); err != nil {
				logger.Error("[Cleanup] Sweep failed", "err", err)
			}
		}
	}
}

func sweep(ctx context.Context, s3Client *awss3.Client, conn *pgxpool.Pool) error {
	q := db.New(conn)

	expired, err := q.GetExpiredSplitJobs(ctx, retention)
	if err != nil {
		return err
	}
	if len(expired) == 0 {
		return nil
	}

	logger.Info("[Cleanup] Removing expired jobs", "count", len(expired))

	for _, job := range expired {
		if err := storage.DeleteFile(ctx, s3Client, job.FileKey); err != nil {
			logger.Warn("[Cleanup] Failed to delete source file", "job_id", job.PublicID, "err", err)
		}
		if job.ResultKey.Valid {
			if err := storage.DeleteFile(ctx, s3Client, job.ResultKey.String); err != nil {
				logger.Warn("[Cleanup] Failed to delete result file", "job_id", job.PublicID, "err", err)
			}
		}
		if err := q.DeleteSplitJob(ctx, job.PublicID); err != nil {
			logger.Error("[Cleanup] Failed to delete job row", "job_id", job.PublicID, "err", err)
			continue
		}
		logger.Debug("[Cleanup] Removed expired job", "job_id", job.PublicID)
	}
	return nil
}
