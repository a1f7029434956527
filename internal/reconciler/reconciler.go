// Package reconciler owns one candidate's detail-view working state: the
// merged enrichment bundle, the ask-question cycle with its optimistic
// history, and approval-status transitions verified against the backend.
package reconciler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hireview/hireview/internal/ai"
	"github.com/hireview/hireview/internal/hrbackend"
	"go.uber.org/zap"
)

// Gateway is the slice of the backend client the reconciler depends on.
type Gateway interface {
	Enrich(id string, source hrbackend.Source) (*hrbackend.Enrichment, error)
	UpdateStatus(id string, status hrbackend.Status) (*hrbackend.Candidate, error)
}

var (
	// ErrNoResume rejects an ask when the resolved resume is missing or has
	// no extracted text.
	ErrNoResume = errors.New("candidate has no resume text to ask about")
	// ErrEmptyQuestion rejects an ask with a blank draft.
	ErrEmptyQuestion = errors.New("question is empty")
	// ErrAskInFlight suppresses a duplicate ask while one is outstanding.
	ErrAskInFlight = errors.New("a question is already in flight")
)

// Bundle is the merged outcome of the three enrichment sources. A nil field
// means the source was skipped, failed, or reported an embedded error; the
// three fields never influence each other.
type Bundle struct {
	LinkedIn  *hrbackend.LinkedInData
	Github    *hrbackend.GithubData
	Portfolio *hrbackend.PortfolioData
}

func (b *Bundle) Empty() bool {
	return b == nil || (b.LinkedIn == nil && b.Github == nil && b.Portfolio == nil)
}

// State is a point-in-time snapshot of the reconciler, safe for rendering
// while fetches are in flight.
type State struct {
	Candidate      *hrbackend.Candidate
	Bundle         *Bundle
	Enriching      bool
	Question       string
	Asking         bool
	LastAnswer     *hrbackend.AIAnswer
	LastAskError   string
	History        []*hrbackend.QuestionLog
	Status         hrbackend.Status
	UpdatingStatus bool
}

type Reconciler struct {
	mu       sync.Mutex
	gateway  Gateway
	answerer ai.Answerer
	logger   *zap.Logger

	candidate      *hrbackend.Candidate
	bundle         *Bundle
	enriching      bool
	question       string
	asking         bool
	lastAnswer     *hrbackend.AIAnswer
	lastAskError   string
	history        []*hrbackend.QuestionLog
	status         hrbackend.Status
	updatingStatus bool
}

// New builds a reconciler for one candidate. The Q&A history is seeded from
// the candidate's server-provided logs, most recent first.
func New(candidate *hrbackend.Candidate, gateway Gateway, answerer ai.Answerer, log *zap.Logger) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}

	history := make([]*hrbackend.QuestionLog, len(candidate.QuestionLogs))
	copy(history, candidate.QuestionLogs)

	return &Reconciler{
		gateway:   gateway,
		answerer:  answerer,
		logger:    log,
		candidate: candidate,
		history:   history,
		status:    candidate.Status,
	}
}

// FetchEnrichment runs the enrichment fetches concurrently and publishes the
// merged bundle once every source has settled. Sources without a profile URL
// are skipped outright; a failing source never affects the others. The
// previous bundle is fully replaced, never merged into.
func (r *Reconciler) FetchEnrichment() *Bundle {
	r.mu.Lock()
	if r.enriching {
		bundle := r.bundle
		r.mu.Unlock()
		return bundle
	}
	r.enriching = true
	candidate := r.candidate
	r.mu.Unlock()

	fresh := &Bundle{}
	var wg sync.WaitGroup
	for _, source := range hrbackend.Sources() {
		if !hasLink(candidate.Links, source) {
			r.logger.Debug("skipping enrichment source",
				zap.String("source", string(source)),
				zap.String("reason", "no profile url"),
			)
			continue
		}

		wg.Add(1)
		go func(source hrbackend.Source) {
			defer wg.Done()

			enrichment, err := r.gateway.Enrich(candidate.Ref(), source)
			if err != nil {
				r.logger.Warn("enrichment source failed",
					zap.String("source", string(source)),
					zap.Error(err),
				)
				return
			}

			if enrichment.Failed() {
				r.logger.Warn("enrichment source reported an error",
					zap.String("source", string(source)),
					zap.String("marker", enrichment.ErrorMarker()),
				)
				return
			}

			// Each goroutine writes its own field; the WaitGroup orders
			// the writes before the publish below.
			switch source {
			case hrbackend.SourceLinkedIn:
				fresh.LinkedIn = enrichment.LinkedIn
			case hrbackend.SourceGithub:
				fresh.Github = enrichment.Github
			case hrbackend.SourcePortfolio:
				fresh.Portfolio = enrichment.Portfolio
			}
		}(source)
	}
	wg.Wait()

	r.mu.Lock()
	r.bundle = fresh
	r.enriching = false
	r.mu.Unlock()

	return fresh
}

func hasLink(links *hrbackend.Links, source hrbackend.Source) bool {
	if links == nil {
		return false
	}

	switch source {
	case hrbackend.SourceLinkedIn:
		return links.LinkedInURL != ""
	case hrbackend.SourceGithub:
		return links.GithubURL != ""
	case hrbackend.SourcePortfolio:
		return links.PortfolioURL != ""
	}
	return false
}

// SetQuestion updates the question draft.
func (r *Reconciler) SetQuestion(q string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.question = q
}

// Ask submits the current question draft. Local rejections never reach the
// network and leave the history untouched. On success the answer is appended
// optimistically to the history with a locally generated id; on failure the
// draft stays intact so the operator can retry.
func (r *Reconciler) Ask(ctx context.Context) (*hrbackend.AIAnswer, error) {
	r.mu.Lock()
	if r.asking {
		r.mu.Unlock()
		return nil, ErrAskInFlight
	}
	if !r.candidate.CanAsk() {
		r.mu.Unlock()
		return nil, ErrNoResume
	}
	question := strings.TrimSpace(r.question)
	if question == "" {
		r.mu.Unlock()
		return nil, ErrEmptyQuestion
	}
	r.asking = true
	r.lastAnswer = nil
	r.lastAskError = ""
	candidate := r.candidate
	r.mu.Unlock()

	answer, err := r.answerer.Answer(ctx, candidate, question)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.asking = false
	if err != nil {
		r.lastAskError = err.Error()
		return nil, err
	}

	r.lastAnswer = answer
	entry := &hrbackend.QuestionLog{
		ID:        uuid.NewString(),
		UserID:    candidate.Ref(),
		Question:  question,
		Answer:    hrbackend.StructuredAnswer(answer),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	r.history = append([]*hrbackend.QuestionLog{entry}, r.history...)
	r.question = ""

	return answer, nil
}

// SetStatus requests an approval-status transition. Requesting the held
// status, or a transition while one is outstanding, is a no-op with no
// network call. On success the server-echoed status wins over the requested
// value; on failure the displayed status stays unchanged.
func (r *Reconciler) SetStatus(requested hrbackend.Status) error {
	r.mu.Lock()
	if r.updatingStatus || requested == r.status {
		r.mu.Unlock()
		return nil
	}
	r.updatingStatus = true
	candidate := r.candidate
	r.mu.Unlock()

	updated, err := r.gateway.UpdateStatus(candidate.Ref(), requested)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.updatingStatus = false
	if err != nil {
		return err
	}

	if updated != nil && updated.Status.Valid() {
		r.status = updated.Status
	} else {
		r.status = requested
	}

	return nil
}

// State returns a snapshot of the current working state.
func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	history := make([]*hrbackend.QuestionLog, len(r.history))
	copy(history, r.history)

	return State{
		Candidate:      r.candidate,
		Bundle:         r.bundle,
		Enriching:      r.enriching,
		Question:       r.question,
		Asking:         r.asking,
		LastAnswer:     r.lastAnswer,
		LastAskError:   r.lastAskError,
		History:        history,
		Status:         r.status,
		UpdatingStatus: r.updatingStatus,
	}
}
