package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/buildlane/ifcbridge/internal/db"
	"github.com/buildlane/ifcbridge/internal/split"
	"github.com/buildlane/ifcbridge/internal/storage"
	"github.com/buildlane/ifcbridge/internal/util"
	"github.com/buildlane/ifcbridge/pkg/engine"
	"github.com/buildlane/ifcbridge/pkg/ifc"
	"github.com/buildlane/ifcbridge/pkg/logger"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rabbitmq/amqp091-go"
)

// QueueSplitJobMsg is the wire message for one storey-split job.
type QueueSplitJobMsg struct {
	Message  string `json:"message"`
	JobID    string `json:"job_id"`
	FileName string `json:"file_name"`
	FileKey  string `json:"file_key"`
}

// ProcessSplitMessage runs one storey-split job: download the source
// document, partition it, upload the archive, record the outcome.
// Returning an error sends the message to the retry queue; terminal
// failures (unreadable document, no storeys) mark the job failed and
// are not retried.
func ProcessSplitMessage(
	ctx context.Context,
	s3Client *awss3.Client,
	conn *pgxpool.Pool,
	msg string,
) error {
	data := new(QueueSplitJobMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return fmt.Errorf("failed to decode split message: %w", err)
	}
	if data.JobID == "" || data.FileKey == "" {
		return fmt.Errorf("split message missing job_id or file_key")
	}

	q := db.New(conn)
	if err := q.MarkSplitJobRunning(ctx, data.JobID); err != nil {
		return fmt.Errorf("failed to mark job running: %w", err)
	}

	logger.Info("[Split] Processing job", "job_id", data.JobID, "file", data.FileName)

	content, err := util.Retry(3, func() (*[]byte, error) {
		return storage.GetFile(ctx, s3Client, data.FileKey)
	})
	if err != nil {
		return fmt.Errorf("failed to download source document: %w", err)
	}

	doc, err := ifc.Open(*content)
	if err != nil {
		return failSplitJob(ctx, q, data.JobID, err)
	}

	eng := engine.New(doc)
	results, err := eng.SplitByStorey(ctx)
	if err != nil {
		if errors.Is(err, engine.ErrNoStoreys) {
			return failSplitJob(ctx, q, data.JobID, err)
		}
		return fmt.Errorf("failed to split document: %w", err)
	}

	archive, entries, err := split.Archive(results)
	if err != nil {
		return failSplitJob(ctx, q, data.JobID, err)
	}

	resultKey, err := util.Retry(3, func() (string, error) {
		return storage.PutFile(
			ctx,
			s3Client,
			fmt.Sprintf("jobs/%s", data.JobID),
			"storeys.zip",
			"result",
			bytes.NewReader(archive),
		)
	})
	if err != nil {
		return fmt.Errorf("failed to upload archive: %w", err)
	}

	err = q.CompleteSplitJob(ctx, db.CompleteSplitJobParams{
		PublicID:    data.JobID,
		ResultKey:   resultKey,
		StoreyCount: int32(len(entries)),
	})
	if err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}

	logger.Info("[Split] Job done", "job_id", data.JobID, "storeys", len(entries))
	return nil
}

// failSplitJob records a terminal failure. The message is acked, not
// retried; retrying cannot fix a broken source document.
func failSplitJob(ctx context.Context, q *db.Queries, jobID string, cause error) error {
	logger.Error("[Split] Job failed", "job_id", jobID, "err", cause)
	if err := q.FailSplitJob(ctx, db.FailSplitJobParams{
		PublicID:     jobID,
		ErrorMessage: cause.Error(),
	}); err != nil {
		return fmt.Errorf("failed to mark job as failed: %w", err)
	}
	return nil
}

// RecoverStaleJobs requeues jobs left in running state by a crashed
// worker. Called once on worker startup.
func RecoverStaleJobs(ctx context.Context, ch *amqp091.Channel, conn *pgxpool.Pool) error {
	q := db.New(conn)

	staleJobs, err := q.GetStaleSplitJobs(ctx, 30*time.Minute)
	if err != nil {
		return fmt.Errorf("failed to get stale jobs: %w", err)
	}

	if len(staleJobs) == 0 {
		logger.Debug("[Queue] No stale jobs found")
		return nil
	}

	logger.Info("[Queue] Found stale jobs", "count", len(staleJobs))

	for _, job := range staleJobs {
		if err := q.ResetSplitJobToPending(ctx, job.PublicID); err != nil {
			logger.Error("[Queue] Failed to reset job status", "job_id", job.PublicID, "err", err)
			continue
		}

		queueData := QueueSplitJobMsg{
			Message:  "Recovered stale job",
			JobID:    job.PublicID,
			FileName: job.FileName,
			FileKey:  job.FileKey,
		}
		msgBytes, err := json.Marshal(queueData)
		if err != nil {
			logger.Error("[Queue] Failed to marshal queue message", "job_id", job.PublicID, "err", err)
			continue
		}

		if err := PublishFIFO(ch, SplitQueue, msgBytes); err != nil {
			logger.Error("[Queue] Failed to republish job", "job_id", job.PublicID, "err", err)
			continue
		}

		logger.Info("[Queue] Recovered stale job", "job_id", job.PublicID)
	}

	return nil
}

// ResetJobStatusForRetry puts a job back to pending before its message
// re-enters the queue through the retry path.
func ResetJobStatusForRetry(ctx context.Context, conn *pgxpool.Pool, msgBody []byte) {
	var data QueueSplitJobMsg
	_ = json.Unmarshal(msgBody, &data)
	if data.JobID == "" {
		return
	}
	_ = db.New(conn).ResetSplitJobToPending(ctx, data.JobID)
}
