package chat

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/21phuctran/i4NS-LENS/internal/domain"
	"github.com/21phuctran/i4NS-LENS/internal/ports"
)

// Service answers free-form questions by quoting the most relevant doctrine
// passages. It reuses the same retrieval capability as the compliance engine.
type Service struct {
	searcher ports.DoctrineSearcher
	topK     int
	log      *zap.Logger
}

func New(searcher ports.DoctrineSearcher, topK int, log *zap.Logger) *Service {
	if topK <= 0 {
		topK = 5
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{searcher: searcher, topK: topK, log: log}
}

func (s *Service) Answer(ctx context.Context, q domain.ChatQuery) (domain.ChatResponse, error) {
	question := strings.TrimSpace(q.Question)
	if question == "" {
		return domain.ChatResponse{}, fmt.Errorf("empty question")
	}

	passages, err := s.searcher.Search(ctx, question, s.topK)
	if err != nil {
		return domain.ChatResponse{}, &domain.RetrievalError{Query: question, Err: err}
	}
	if len(passages) == 0 {
		return domain.ChatResponse{Answer: "No doctrine passages matched the question.", Sources: []string{}}, nil
	}

	var b strings.Builder
	b.WriteString("Based on the doctrine documents, the most relevant passages are:\n\n")
	limit := 3
	if len(passages) < limit {
		limit = len(passages)
	}
	for i := 0; i < limit; i++ {
		snippet := passages[i].Text
		if len(snippet) > 200 {
			snippet = snippet[:200] + "..."
		}
		fmt.Fprintf(&b, "%d. %s\n\n", i+1, snippet)
	}

	var sources []string
	seen := make(map[string]bool)
	for _, p := range passages {
		if !seen[p.Source] {
			seen[p.Source] = true
			sources = append(sources, p.Source)
		}
	}

	s.log.Debug("chat answered", zap.String("question", question), zap.Int("passages", len(passages)))
	return domain.ChatResponse{Answer: strings.TrimRight(b.String(), "\n"), Sources: sources}, nil
}
