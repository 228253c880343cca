package ports

import (
	"context"

	"github.com/21phuctran/i4NS-LENS/internal/domain"
)

// MissionAnalyzer produces compliance verdicts against doctrine.
type MissionAnalyzer interface {
	Analyze(ctx context.Context, mission domain.MissionLog) (domain.MissionAnalysis, error)
	Compare(ctx context.Context, event domain.MissionEvent) (domain.ComparisonResult, error)
}

// DoctrineChat answers free-form questions grounded in the doctrine corpus.
type DoctrineChat interface {
	Answer(ctx context.Context, q domain.ChatQuery) (domain.ChatResponse, error)
}
