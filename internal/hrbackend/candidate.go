package hrbackend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Status is the approval decision recorded for a candidate.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// StatusFilter narrows the candidate list server-side. All disables status
// filtering; the client passes the value through untouched.
type StatusFilter string

const (
	FilterAll      StatusFilter = "All"
	FilterPending  StatusFilter = StatusFilter(StatusPending)
	FilterApproved StatusFilter = StatusFilter(StatusApproved)
	FilterRejected StatusFilter = StatusFilter(StatusRejected)
)

type Links struct {
	ID           string `json:"id,omitempty"`
	UserID       string `json:"user_id,omitempty"`
	LinkedInURL  string `json:"linkedin_url,omitempty"`
	GithubURL    string `json:"github_url,omitempty"`
	PortfolioURL string `json:"portfolio_url,omitempty"`
	OtherURL     string `json:"other_url,omitempty"`
}

type Resume struct {
	ID            string `json:"id,omitempty"`
	UserID        string `json:"user_id,omitempty"`
	ResumeURL     string `json:"resume_url,omitempty"`
	ExtractedText string `json:"extracted_text,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
}

type Candidate struct {
	ID        string `json:"id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	FullName  string `json:"full_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Status    Status `json:"status,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	Links     *Links `json:"links,omitempty"`
	// LegacyResume is the older single-resume field some records still carry.
	LegacyResume *Resume        `json:"resume,omitempty"`
	Resumes      ResumeField    `json:"resumes,omitempty"`
	QuestionLogs []*QuestionLog `json:"questions_logs,omitempty"`
}

// ResumeField absorbs the backend's ambiguous resumes representation, which
// may arrive as an array of resumes or as a single bare object. The
// distinction is kept because a bare object only counts as a resume when it
// carries a file URL.
type ResumeField struct {
	items  []*Resume
	single *Resume
}

// ResumeSequence builds the array representation.
func ResumeSequence(items ...*Resume) ResumeField {
	return ResumeField{items: items}
}

// SingleResume builds the bare-object representation.
func SingleResume(r *Resume) ResumeField {
	return ResumeField{single: r}
}

func (f *ResumeField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ResumeField{}
		return nil
	}

	if data[0] == '[' {
		var items []*Resume
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*f = ResumeField{items: items}
		return nil
	}

	var single Resume
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*f = ResumeField{single: &single}
	return nil
}

func (f ResumeField) MarshalJSON() ([]byte, error) {
	if f.single != nil {
		return json.Marshal(f.single)
	}
	return json.Marshal(f.items)
}

// PrimaryResume resolves the one canonical resume for the candidate.
// Precedence, first match wins: non-empty resumes array, then a bare resumes
// object carrying a file URL, then the legacy resume field. The order prefers
// the newer multi-resume representation when a migrated record carries both.
func (c *Candidate) PrimaryResume() *Resume {
	if len(c.Resumes.items) > 0 {
		return c.Resumes.items[0]
	}

	if single := c.Resumes.single; single != nil && single.ResumeURL != "" {
		return single
	}

	if c.LegacyResume != nil {
		return c.LegacyResume
	}

	return nil
}

// CanAsk reports whether the ask-question action is available: the resolved
// resume must exist and carry extracted text.
func (c *Candidate) CanAsk() bool {
	resume := c.PrimaryResume()
	return resume != nil && strings.TrimSpace(resume.ExtractedText) != ""
}

// Ref is the identifier the per-candidate routes expect.
func (c *Candidate) Ref() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.ID
}

// ListCandidates fetches the filtered candidate list. Search text and filter
// are passed through as-is; the server does the matching.
func (c *Client) ListCandidates(query string, filter StatusFilter) ([]*Candidate, error) {
	if filter == "" {
		filter = FilterAll
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("status", string(filter))

	var envelope struct {
		Data []*Candidate `json:"data"`
	}
	if err := c.getJSON(usersPath, q, &envelope); err != nil {
		return nil, err
	}

	return envelope.Data, nil
}

func (c *Client) GetCandidate(id string) (*Candidate, error) {
	var candidate Candidate
	if err := c.getJSON(fmt.Sprintf("%s/%s", userPath, id), nil, &candidate); err != nil {
		return nil, err
	}

	return &candidate, nil
}

// UpdateStatus records an approval decision. The returned candidate carries
// the authoritative status, which callers should prefer over the requested
// value.
func (c *Client) UpdateStatus(id string, status Status) (*Candidate, error) {
	if !status.Valid() {
		return nil, &APIError{Message: fmt.Sprintf("invalid status %q", status)}
	}

	payload := map[string]string{"status": string(status)}

	var candidate Candidate
	if err := c.sendJSON(http.MethodPatch, fmt.Sprintf("%s/%s/status", userPath, id), payload, &candidate); err != nil {
		return nil, err
	}

	return &candidate, nil
}
