package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Job lifecycle states.
const (
	JobStatusPending = "pending"
	JobStatusRunning = "running"
	JobStatusDone    = "done"
	JobStatusFailed  = "failed"
)

const splitJobsSchema = `
CREATE TABLE IF NOT EXISTS split_jobs (
	id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	public_id TEXT NOT NULL UNIQUE,
	file_name TEXT NOT NULL,
	file_key TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	result_key TEXT,
	storey_count INT,
	error_message TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS split_jobs_status_idx ON split_jobs (status, updated_at);
`

// EnsureSchema creates the job table when it does not exist yet.
func EnsureSchema(ctx context.Context, conn *pgxpool.Pool) error {
	_, err := conn.Exec(ctx, splitJobsSchema)
	return err
}

type SplitJob struct {
	ID           int64              `json:"id"`
	PublicID     string             `json:"public_id"`
	FileName     string             `json:"file_name"`
	FileKey      string             `json:"file_key"`
	Status       string             `json:"status"`
	ResultKey    pgtype.Text        `json:"result_key"`
	StoreyCount  pgtype.Int4        `json:"storey_count"`
	ErrorMessage pgtype.Text        `json:"error_message"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
	UpdatedAt    pgtype.Timestamptz `json:"updated_at"`
}

type Queries struct {
	conn *pgxpool.Pool
}

func New(conn *pgxpool.Pool) *Queries {
	return &Queries{conn: conn}
}

const splitJobColumns = `id, public_id, file_name, file_key, status, result_key, storey_count, error_message, created_at, updated_at`

func scanSplitJob(row interface{ Scan(...any) error }) (SplitJob, error) {
	var j SplitJob
	err := row.Scan(
		&j.ID,
		&j.PublicID,
		&j.FileName,
		&j.FileKey,
		&j.Status,
		&j.ResultKey,
		&j.StoreyCount,
		&j.ErrorMessage,
		&j.CreatedAt,
		&j.UpdatedAt,
	)
	return j, err
}

type CreateSplitJobParams struct {
	PublicID string
	FileName string
	FileKey  string
}

func (q *Queries) CreateSplitJob(ctx context.Context, params CreateSplitJobParams) (SplitJob, error) {
	row := q.conn.QueryRow(ctx,
		`INSERT INTO split_jobs (public_id, file_name, file_key)
		 VALUES ($1, $2, $3)
		 RETURNING `+splitJobColumns,
		params.PublicID, params.FileName, params.FileKey,
	)
	return scanSplitJob(row)
}

func (q *Queries) GetSplitJob(ctx context.Context, publicID string) (SplitJob, error) {
	row := q.conn.QueryRow(ctx,
		`SELECT `+splitJobColumns+` FROM split_jobs WHERE public_id = $1`,
		publicID,
	)
	return scanSplitJob(row)
}

func (q *Queries) MarkSplitJobRunning(ctx context.Context, publicID string) error {
	_, err := q.conn.Exec(ctx,
		`UPDATE split_jobs SET status = $2, updated_at = now() WHERE public_id = $1`,
		publicID, JobStatusRunning,
	)
	return err
}

type CompleteSplitJobParams struct {
	PublicID    string
	ResultKey   string
	StoreyCount int32
}

func (q *Queries) CompleteSplitJob(ctx context.Context, params CompleteSplitJobParams) error {
	_, err := q.conn.Exec(ctx,
		`UPDATE split_jobs
		 SET status = $2, result_key = $3, storey_count = $4, updated_at = now()
		 WHERE public_id = $1`,
		params.PublicID, JobStatusDone, params.ResultKey, params.StoreyCount,
	)
	return err
}

type FailSplitJobParams struct {
	PublicID     string
	ErrorMessage string
}

func (q *Queries) FailSplitJob(ctx context.Context, params FailSplitJobParams) error {
	_, err := q.conn.Exec(ctx,
		`UPDATE split_jobs
		 SET status = $2, error_message = $3, updated_at = now()
		 WHERE public_id = $1`,
		params.PublicID, JobStatusFailed, params.ErrorMessage,
	)
	return err
}

func (q *Queries) ResetSplitJobToPending(ctx context.Context, publicID string) error {
	_, err := q.conn.Exec(ctx,
		`UPDATE split_jobs SET status = $2, updated_at = now() WHERE public_id = $1`,
		publicID, JobStatusPending,
	)
	return err
}

// GetStaleSplitJobs lists jobs stuck in running longer than the cutoff,
// so a restarted worker can requeue them.
func (q *Queries) GetStaleSplitJobs(ctx context.Context, olderThan time.Duration) ([]SplitJob, error) {
	rows, err := q.conn.Query(ctx,
		`SELECT `+splitJobColumns+` FROM split_jobs
		 WHERE status = $1 AND updated_at < now() - make_interval(secs => $2)`,
		JobStatusRunning, olderThan.Seconds(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []SplitJob
	for rows.Next() {
		j, err := scanSplitJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// GetExpiredSplitJobs lists finished jobs older than the cutoff. The
// cleanup sweep deletes their stored artifacts before removing the row.
func (q *Queries) GetExpiredSplitJobs(ctx context.Context, olderThan time.Duration) ([]SplitJob, error) {
	rows, err := q.conn.Query(ctx,
		`SELECT `+splitJobColumns+` FROM split_jobs
		 WHERE status = ANY($1) AND updated_at < now() - make_interval(secs => $2)`,
		[]string{JobStatusDone, JobStatusFailed}, olderThan.Seconds(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []SplitJob
	for rows.Next() {
		j, err := scanSplitJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (q *Queries) DeleteSplitJob(ctx context.Context, publicID string) error {
	_, err := q.conn.Exec(ctx, `DELETE FROM split_jobs WHERE public_id = $1`, publicID)
	return err
}
