package ports

import (
	"context"

	"github.com/21phuctran/i4NS-LENS/internal/domain"
)

// MissionRepository stores uploaded mission logs keyed by mission_id.
type MissionRepository interface {
	SaveMission(ctx context.Context, mission domain.MissionLog, raw []byte) error
	GetMission(ctx context.Context, missionID string) (domain.MissionLog, error)
	ListMissions(ctx context.Context) ([]domain.MissionSummary, error)
}

// AnalysisRepository stores mission analyses. Multiple analyses may exist per
// mission; LatestByMission returns the newest.
type AnalysisRepository interface {
	SaveAnalysis(ctx context.Context, analysis domain.MissionAnalysis) (id string, err error)
	LatestByMission(ctx context.Context, missionID string) (analysis domain.MissionAnalysis, found bool, err error)
}
