// Package listview owns the candidate-list state: the debounced search
// input, the loading flag, and the loaded/empty/error result states.
package listview

import (
	"context"
	"sync"
	"time"

	"github.com/hireview/hireview/internal/hrbackend"
	"go.uber.org/zap"
)

var sleep = time.Sleep

// waitFor blocks for the debounce delay or until the context is cancelled,
// whichever comes first. Cancellation is reported so a superseded wait can be
// told apart from a completed one.
func waitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		sleep(d)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// DefaultDebounce is the delay between the last input change and the list
// request it triggers.
const DefaultDebounce = 300 * time.Millisecond

// loadFailedMessage deliberately differs from the empty state so a fetch
// failure is never mistaken for "no matches".
const loadFailedMessage = "could not load candidates"

// Lister is the slice of the backend client the view depends on.
type Lister interface {
	ListCandidates(query string, filter hrbackend.StatusFilter) ([]*hrbackend.Candidate, error)
}

// Snapshot is the renderable list state.
type Snapshot struct {
	Loading    bool
	Candidates []*hrbackend.Candidate
	// LoadError is set when the last fetch failed; Candidates is empty then.
	LoadError string
	Query     string
	Filter    hrbackend.StatusFilter
}

// Empty reports an explicit empty result, distinct from loading and from a
// failed fetch.
func (s Snapshot) Empty() bool {
	return !s.Loading && s.LoadError == "" && len(s.Candidates) == 0
}

// View debounces query and filter changes before issuing list requests.
// Starting a new debounce cancels the previous pending one, so a burst of
// changes issues exactly one request carrying the final input.
type View struct {
	mu     sync.Mutex
	cond   *sync.Cond
	lister Lister
	logger *zap.Logger
	delay  time.Duration

	ctx        context.Context
	cancel     context.CancelFunc
	pending    int
	query      string
	filter     hrbackend.StatusFilter
	candidates []*hrbackend.Candidate
	loadErr    string
	loaded     bool
}

func New(ctx context.Context, lister Lister, log *zap.Logger, delay time.Duration) *View {
	if log == nil {
		log = zap.NewNop()
	}
	if delay <= 0 {
		delay = DefaultDebounce
	}

	v := &View{
		ctx:    ctx,
		lister: lister,
		logger: log,
		delay:  delay,
		filter: hrbackend.FilterAll,
	}
	v.cond = sync.NewCond(&v.mu)

	return v
}

// SetQuery records a search-text change and schedules a debounced fetch.
func (v *View) SetQuery(query string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.query = query
	v.scheduleLocked()
}

// SetFilter records a status-filter change and schedules a debounced fetch.
func (v *View) SetFilter(filter hrbackend.StatusFilter) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if filter == "" {
		filter = hrbackend.FilterAll
	}
	v.filter = filter
	v.scheduleLocked()
}

// Refresh re-issues the list request for the current input without waiting
// out the debounce delay.
func (v *View) Refresh() {
	v.mu.Lock()
	v.cancelPendingLocked()
	v.pending++
	v.mu.Unlock()

	v.fetch()
}

func (v *View) scheduleLocked() {
	v.cancelPendingLocked()

	ctx, cancel := context.WithCancel(v.ctx)
	v.cancel = cancel
	v.pending++

	go func() {
		if err := waitFor(ctx, v.delay); err != nil {
			// Superseded by a newer change before the delay elapsed.
			v.mu.Lock()
			v.pending--
			v.cond.Broadcast()
			v.mu.Unlock()
			return
		}
		v.fetch()
	}()
}

func (v *View) cancelPendingLocked() {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
}

func (v *View) fetch() {
	v.mu.Lock()
	query, filter := v.query, v.filter
	v.mu.Unlock()

	candidates, err := v.lister.ListCandidates(query, filter)

	v.mu.Lock()
	defer v.mu.Unlock()

	v.pending--
	v.loaded = true
	if err != nil {
		v.logger.Warn("fetching candidate list failed",
			zap.String("query", query),
			zap.String("filter", string(filter)),
			zap.Error(err),
		)
		v.candidates = nil
		v.loadErr = loadFailedMessage
	} else {
		v.candidates = candidates
		v.loadErr = ""
	}
	v.cond.Broadcast()
}

// Wait blocks until no fetch is pending or running, then returns the
// resulting snapshot.
func (v *View) Wait() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	for v.pending > 0 {
		v.cond.Wait()
	}

	return v.snapshotLocked()
}

// Snapshot returns the current list state without blocking.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.snapshotLocked()
}

func (v *View) snapshotLocked() Snapshot {
	candidates := make([]*hrbackend.Candidate, len(v.candidates))
	copy(candidates, v.candidates)

	return Snapshot{
		Loading:    v.pending > 0 || !v.loaded,
		Candidates: candidates,
		LoadError:  v.loadErr,
		Query:      v.query,
		Filter:     v.filter,
	}
}
