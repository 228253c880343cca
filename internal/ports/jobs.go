package ports

import "context"

type AnalysisJob struct {
	ID        string
	MissionID string
}

// JobRepository supports queueing and claiming background analysis jobs.
type JobRepository interface {
	Enqueue(ctx context.Context, missionID string) (jobID string, err error)
	Status(ctx context.Context, jobID string) (status string, err error)
	ClaimNext(ctx context.Context) (job AnalysisJob, found bool, err error)
	MarkCompleted(ctx context.Context, jobID string) error
	MarkFailed(ctx context.Context, jobID string, reason string) error
	StartJobForMission(ctx context.Context, missionID string) (jobID string, err error)
}
