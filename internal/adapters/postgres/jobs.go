package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/21phuctran/i4NS-LENS/internal/ports"
)

// Enqueue queues a background analysis job for a mission.
func (db *DB) Enqueue(ctx context.Context, missionID string) (string, error) {
	id := uuid.NewString()
	_, err := db.Pool.Exec(ctx, `
        INSERT INTO analysis_jobs (id, mission_id, status)
        VALUES ($1, $2, 'queued')
    `, id, missionID)
	return id, err
}

func (db *DB) Status(ctx context.Context, jobID string) (string, error) {
	var status string
	err := db.Pool.QueryRow(ctx, `SELECT status FROM analysis_jobs WHERE id = $1`, jobID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ports.ErrNotFound
	}
	return status, err
}

// ClaimNext selects the next queued job using SKIP LOCKED and marks it running.
func (db *DB) ClaimNext(ctx context.Context) (job ports.AnalysisJob, found bool, err error) {
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return job, false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	err = tx.QueryRow(ctx, `
        SELECT id, mission_id FROM analysis_jobs
        WHERE status = 'queued'
        ORDER BY queued_at
        FOR UPDATE SKIP LOCKED
        LIMIT 1
    `).Scan(&job.ID, &job.MissionID)
	if errors.Is(err, pgx.ErrNoRows) {
		err = nil
		return job, false, nil
	}
	if err != nil {
		return job, false, err
	}

	if _, err = tx.Exec(ctx, `
        UPDATE analysis_jobs SET status='running', started_at=now(), attempts=attempts+1 WHERE id=$1
    `, job.ID); err != nil {
		return job, false, err
	}
	return job, true, nil
}

func (db *DB) MarkCompleted(ctx context.Context, jobID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := db.Pool.Exec(ctx, `
        UPDATE analysis_jobs SET status='completed', finished_at=now() WHERE id=$1
    `, jobID)
	return err
}

func (db *DB) MarkFailed(ctx context.Context, jobID string, reason string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := db.Pool.Exec(ctx, `
        UPDATE analysis_jobs SET status='failed', finished_at=now(), reason=$2 WHERE id=$1
    `, jobID, reason)
	return err
}

// StartJobForMission claims the queued job for a specific mission, for the
// synchronous wait path.
func (db *DB) StartJobForMission(ctx context.Context, missionID string) (string, error) {
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	var jobID string
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	err = tx.QueryRow(ctx, `
        SELECT id FROM analysis_jobs
        WHERE mission_id = $1 AND status = 'queued'
        ORDER BY queued_at
        FOR UPDATE SKIP LOCKED
        LIMIT 1
    `, missionID).Scan(&jobID)
	if err != nil {
		return "", err
	}
	if _, err = tx.Exec(ctx, `
        UPDATE analysis_jobs SET status='running', started_at=now(), attempts=attempts+1 WHERE id=$1
    `, jobID); err != nil {
		return "", err
	}
	return jobID, nil
}
