package ai

import (
	"context"

	"github.com/hireview/hireview/internal/hrbackend"
)

// Answerer produces a structured answer to a free-form question about a
// candidate's resume.
type Answerer interface {
	Answer(ctx context.Context, candidate *hrbackend.Candidate, question string) (*hrbackend.AIAnswer, error)
}

// asker is the slice of the backend client the default answerer needs.
type asker interface {
	AskQuestion(id, question string) (*hrbackend.AIAnswer, error)
}

// Backend answers questions through the backend's ask-question route. The
// backend owns the prompt and the model; the client only relays the question.
type Backend struct {
	client asker
}

func NewBackend(client asker) *Backend {
	return &Backend{client: client}
}

func (b *Backend) Answer(_ context.Context, candidate *hrbackend.Candidate, question string) (*hrbackend.AIAnswer, error) {
	return b.client.AskQuestion(candidate.Ref(), question)
}
