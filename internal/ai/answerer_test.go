package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/hireview/hireview/internal/hrbackend"
)

type stubAsker struct {
	id       string
	question string
	answer   *hrbackend.AIAnswer
	err      error
}

func (s *stubAsker) AskQuestion(id, question string) (*hrbackend.AIAnswer, error) {
	s.id = id
	s.question = question
	return s.answer, s.err
}

func TestBackendRelaysQuestion(t *testing.T) {
	asker := &stubAsker{answer: &hrbackend.AIAnswer{BriefSummary: "strong in Go"}}
	backend := NewBackend(asker)

	candidate := &hrbackend.Candidate{ID: "row-id", UserID: "u1"}
	answer, err := backend.Answer(context.Background(), candidate, "does the candidate know Go?")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if asker.id != "u1" {
		t.Fatalf("expected the user id, got %q", asker.id)
	}
	if asker.question != "does the candidate know Go?" {
		t.Fatalf("unexpected question: %q", asker.question)
	}
	if answer.BriefSummary != "strong in Go" {
		t.Fatalf("unexpected answer: %+v", answer)
	}
}

func TestBackendPropagatesError(t *testing.T) {
	asker := &stubAsker{err: errors.New("backend down")}
	backend := NewBackend(asker)

	if _, err := backend.Answer(context.Background(), &hrbackend.Candidate{UserID: "u1"}, "q"); err == nil {
		t.Fatal("expected error")
	}
}
