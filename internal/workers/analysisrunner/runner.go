package analysisrunner

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/21phuctran/i4NS-LENS/internal/ports"
)

// Processor performs the analysis work for a job's mission id.
type Processor interface {
	Process(ctx context.Context, missionID string) error
}

// AnalysisProcessor loads the mission, runs the analyzer, and stores the
// resulting report.
type AnalysisProcessor struct {
	Missions ports.MissionRepository
	Analyses ports.AnalysisRepository
	Analyzer ports.MissionAnalyzer
	Log      *zap.Logger
}

func (p AnalysisProcessor) Process(ctx context.Context, missionID string) error {
	mission, err := p.Missions.GetMission(ctx, missionID)
	if err != nil {
		return fmt.Errorf("load mission %s: %w", missionID, err)
	}
	analysis, err := p.Analyzer.Analyze(ctx, mission)
	if err != nil {
		return fmt.Errorf("analyze mission %s: %w", missionID, err)
	}
	id, err := p.Analyses.SaveAnalysis(ctx, analysis)
	if err != nil {
		return fmt.Errorf("store analysis for %s: %w", missionID, err)
	}
	if p.Log != nil {
		p.Log.Info("analysis stored",
			zap.String("mission_id", missionID),
			zap.String("analysis_id", id),
			zap.Float64("score", analysis.OverallComplianceScore))
	}
	return nil
}

// Run starts worker goroutines that claim queued analysis jobs and process
// them until ctx is cancelled.
func Run(ctx context.Context, repo ports.JobRepository, processor Processor, concurrency int, pollInterval time.Duration, log *zap.Logger) {
	if concurrency < 1 {
		return
	}
	if log == nil {
		log = zap.NewNop()
	}
	jobsCh := make(chan ports.AnalysisJob, concurrency)

	// dispatcher loop
	go func() {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				close(jobsCh)
				return
			case <-ticker.C:
				for {
					job, found, err := repo.ClaimNext(ctx)
					if err != nil {
						log.Warn("job claim failed", zap.Error(err))
						break
					}
					if !found {
						break
					}
					jobsCh <- job
				}
			}
		}
	}()

	// workers
	for i := 0; i < concurrency; i++ {
		go func(idx int) {
			for job := range jobsCh {
				if err := processor.Process(ctx, job.MissionID); err != nil {
					_ = repo.MarkFailed(ctx, job.ID, err.Error())
					log.Warn("analysis job failed",
						zap.Int("worker", idx), zap.String("job_id", job.ID), zap.Error(err))
					continue
				}
				if err := repo.MarkCompleted(ctx, job.ID); err != nil {
					log.Warn("job completion update failed",
						zap.Int("worker", idx), zap.String("job_id", job.ID), zap.Error(err))
				}
			}
		}(i)
	}
}

// ProcessInline claims and processes a specific mission's queued job
// synchronously, using the same processor logic as the background workers.
func ProcessInline(ctx context.Context, repo ports.JobRepository, processor Processor, missionID string) error {
	jobID, err := repo.StartJobForMission(ctx, missionID)
	if err != nil {
		return err
	}
	if err := processor.Process(ctx, missionID); err != nil {
		_ = repo.MarkFailed(ctx, jobID, err.Error())
		return err
	}
	return repo.MarkCompleted(ctx, jobID)
}
