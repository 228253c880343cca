package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/21phuctran/i4NS-LENS/internal/domain"
)

type stubSearcher struct {
	passages []domain.Passage
	err      error
}

func (s *stubSearcher) Search(ctx context.Context, query string, k int) ([]domain.Passage, error) {
	return s.passages, s.err
}

func TestAnswerEmptyQuestion(t *testing.T) {
	svc := New(&stubSearcher{}, 5, nil)
	if _, err := svc.Answer(context.Background(), domain.ChatQuery{Question: "   "}); err == nil {
		t.Fatal("want error for empty question")
	}
}

func TestAnswerSearchFailure(t *testing.T) {
	svc := New(&stubSearcher{err: errors.New("index down")}, 5, nil)
	_, err := svc.Answer(context.Background(), domain.ChatQuery{Question: "what about speed changes?"})
	var rerr *domain.RetrievalError
	if !errors.As(err, &rerr) {
		t.Fatalf("want RetrievalError, got %v", err)
	}
}

func TestAnswerQuotesPassagesAndDedupsSources(t *testing.T) {
	svc := New(&stubSearcher{passages: []domain.Passage{
		{Text: "Speed changes must be logged.", Source: "doctrine.txt#0", Score: 0.9},
		{Text: "Changes over 5 knots require notification.", Source: "doctrine.txt#1", Score: 0.7},
		{Text: "Tracking numbers are mandatory.", Source: "doctrine.txt#0", Score: 0.5},
	}}, 5, nil)

	resp, err := svc.Answer(context.Background(), domain.ChatQuery{Question: "speed change requirements"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resp.Answer, "Speed changes must be logged.") {
		t.Errorf("answer does not quote the top passage: %q", resp.Answer)
	}
	want := []string{"doctrine.txt#0", "doctrine.txt#1"}
	if len(resp.Sources) != len(want) {
		t.Fatalf("sources = %v, want %v", resp.Sources, want)
	}
	for i := range want {
		if resp.Sources[i] != want[i] {
			t.Errorf("sources[%d] = %q, want %q", i, resp.Sources[i], want[i])
		}
	}
}

func TestAnswerNoMatches(t *testing.T) {
	svc := New(&stubSearcher{}, 5, nil)
	resp, err := svc.Answer(context.Background(), domain.ChatQuery{Question: "unrelated topic"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resp.Answer, "No doctrine passages matched") {
		t.Errorf("answer = %q", resp.Answer)
	}
}
