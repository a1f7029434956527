package hrbackend

import (
	"net/http"
	"testing"
)

func TestEnrichDecodesGithubPayload(t *testing.T) {
	client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/scrape/github/u1" {
			t.Errorf("unexpected path: %q", r.URL.Path)
		}
		// stars arrives as a string; the decoder is weakly typed on purpose.
		w.Write([]byte(`{"data": {
			"bio": "systems tinkerer",
			"top_repos": [{"name": "raftlib", "stars": "42", "language": "Go"}]
		}}`))
	})

	enrichment, err := client.Enrich("u1", SourceGithub)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if enrichment.Failed() {
		t.Fatalf("unexpected failure marker: %q", enrichment.ErrorMarker())
	}
	if enrichment.Github == nil || enrichment.Github.Bio != "systems tinkerer" {
		t.Fatalf("unexpected github data: %+v", enrichment.Github)
	}
	if len(enrichment.Github.TopRepos) != 1 || enrichment.Github.TopRepos[0].Stars != 42 {
		t.Fatalf("unexpected repos: %+v", enrichment.Github.TopRepos)
	}
}

func TestEnrichmentEmbeddedErrorCountsAsFailed(t *testing.T) {
	client := newTestClient(t, "tok", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"data": {"error": "profile is private"}}`))
	})

	enrichment, err := client.Enrich("u1", SourceLinkedIn)
	if err != nil {
		t.Fatalf("expected no transport error, got %v", err)
	}

	if !enrichment.Failed() {
		t.Fatal("expected embedded error to mark the enrichment failed")
	}
	if enrichment.ErrorMarker() != "profile is private" {
		t.Fatalf("unexpected marker: %q", enrichment.ErrorMarker())
	}
}

func TestDecodeEnrichmentRejectsUnknownSource(t *testing.T) {
	if _, err := decodeEnrichment(Source("twitter"), nil); err == nil {
		t.Fatal("expected error for unknown source")
	}
}

func TestEmptyEnrichmentIsFailed(t *testing.T) {
	enrichment := &Enrichment{Source: SourcePortfolio}
	if !enrichment.Failed() {
		t.Fatal("expected enrichment without a payload to count as failed")
	}
}
