package listview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hireview/hireview/internal/hrbackend"
)

type listCall struct {
	query  string
	filter hrbackend.StatusFilter
}

type stubLister struct {
	mu    sync.Mutex
	calls []listCall
	list  func(query string, filter hrbackend.StatusFilter) ([]*hrbackend.Candidate, error)
}

func (s *stubLister) ListCandidates(query string, filter hrbackend.StatusFilter) ([]*hrbackend.Candidate, error) {
	s.mu.Lock()
	s.calls = append(s.calls, listCall{query: query, filter: filter})
	s.mu.Unlock()

	if s.list == nil {
		return nil, nil
	}
	return s.list(query, filter)
}

func (s *stubLister) callLog() []listCall {
	s.mu.Lock()
	defer s.mu.Unlock()

	calls := make([]listCall, len(s.calls))
	copy(calls, s.calls)
	return calls
}

func TestRapidChangesCoalesceIntoOneFetch(t *testing.T) {
	lister := &stubLister{
		list: func(query string, _ hrbackend.StatusFilter) ([]*hrbackend.Candidate, error) {
			return []*hrbackend.Candidate{{UserID: "u1", FullName: "Ada"}}, nil
		},
	}

	view := New(context.Background(), lister, nil, 20*time.Millisecond)

	view.SetQuery("a")
	view.SetQuery("ad")
	view.SetQuery("ada")

	snap := view.Wait()

	calls := lister.callLog()
	if len(calls) != 1 {
		t.Fatalf("expected exactly one fetch for the burst, got %d", len(calls))
	}
	if calls[0].query != "ada" {
		t.Fatalf("expected the final query, got %q", calls[0].query)
	}
	if len(snap.Candidates) != 1 || snap.Loading {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestFilterChangeTriggersFetch(t *testing.T) {
	lister := &stubLister{}
	view := New(context.Background(), lister, nil, time.Millisecond)

	view.SetFilter(hrbackend.FilterApproved)
	snap := view.Wait()

	calls := lister.callLog()
	if len(calls) != 1 || calls[0].filter != hrbackend.FilterApproved {
		t.Fatalf("unexpected calls: %+v", calls)
	}
	if snap.Filter != hrbackend.FilterApproved {
		t.Fatalf("unexpected snapshot filter: %q", snap.Filter)
	}
}

func TestRefreshSkipsTheDebounceDelay(t *testing.T) {
	lister := &stubLister{}
	view := New(context.Background(), lister, nil, time.Hour)

	start := time.Now()
	view.Refresh()
	view.Wait()

	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("refresh waited out the debounce delay: %s", elapsed)
	}
	if len(lister.callLog()) != 1 {
		t.Fatalf("expected one fetch, got %d", len(lister.callLog()))
	}
}

func TestFetchFailureIsDistinctFromEmpty(t *testing.T) {
	lister := &stubLister{
		list: func(string, hrbackend.StatusFilter) ([]*hrbackend.Candidate, error) {
			return nil, errors.New("backend down")
		},
	}
	view := New(context.Background(), lister, nil, time.Millisecond)

	view.Refresh()
	snap := view.Wait()

	if snap.LoadError != loadFailedMessage {
		t.Fatalf("unexpected load error: %q", snap.LoadError)
	}
	if snap.Empty() {
		t.Fatal("a failed fetch must not present as an empty result")
	}
	if len(snap.Candidates) != 0 {
		t.Fatalf("expected no candidates, got %d", len(snap.Candidates))
	}
}

func TestRecoveryClearsLoadError(t *testing.T) {
	var fail bool
	var mu sync.Mutex
	lister := &stubLister{}
	lister.list = func(string, hrbackend.StatusFilter) ([]*hrbackend.Candidate, error) {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			return nil, errors.New("backend down")
		}
		return nil, nil
	}

	view := New(context.Background(), lister, nil, time.Millisecond)

	mu.Lock()
	fail = true
	mu.Unlock()
	view.Refresh()
	if snap := view.Wait(); snap.LoadError == "" {
		t.Fatal("expected load error")
	}

	mu.Lock()
	fail = false
	mu.Unlock()
	view.Refresh()
	snap := view.Wait()

	if snap.LoadError != "" {
		t.Fatalf("expected load error cleared, got %q", snap.LoadError)
	}
	if !snap.Empty() {
		t.Fatal("expected an explicit empty result after recovery")
	}
}

func TestSnapshotLoadingUntilFirstFetch(t *testing.T) {
	view := New(context.Background(), &stubLister{}, nil, time.Millisecond)

	if snap := view.Snapshot(); !snap.Loading {
		t.Fatal("expected loading before the first fetch completes")
	}
	if snap := view.Snapshot(); snap.Empty() {
		t.Fatal("loading must not present as an empty result")
	}

	view.Refresh()
	if snap := view.Wait(); snap.Loading {
		t.Fatal("expected loading cleared after the fetch")
	}
}

func TestWaitForCompletes(t *testing.T) {
	originalSleep := sleep
	sleep = func(time.Duration) {}
	defer func() { sleep = originalSleep }()

	if err := waitFor(context.Background(), time.Minute); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestWaitForReportsCancellation(t *testing.T) {
	originalSleep := sleep
	block := make(chan struct{})
	sleep = func(time.Duration) { <-block }
	defer func() {
		close(block)
		sleep = originalSleep
	}()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := waitFor(ctx, time.Minute); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWaitForZeroDurationReturnsImmediately(t *testing.T) {
	if err := waitFor(context.Background(), 0); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestSupersededWaitDoesNotFetch(t *testing.T) {
	lister := &stubLister{}
	view := New(context.Background(), lister, nil, 50*time.Millisecond)

	view.SetQuery("abandoned")
	view.Refresh() // cancels the pending debounce and fetches immediately

	view.Wait()

	calls := lister.callLog()
	if len(calls) != 1 {
		t.Fatalf("expected the cancelled debounce to issue no fetch, got %d calls", len(calls))
	}
}
