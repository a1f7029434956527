package hrbackend

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Source identifies one of the independent enrichment scrapers.
type Source string

const (
	SourceLinkedIn  Source = "linkedin"
	SourceGithub    Source = "github"
	SourcePortfolio Source = "portfolio"
)

// Sources lists every enrichment source in display order.
func Sources() []Source {
	return []Source{SourceLinkedIn, SourceGithub, SourcePortfolio}
}

type LinkedInData struct {
	Summary        string   `json:"summary,omitempty"`
	CurrentRole    string   `json:"current_role,omitempty"`
	Skills         []string `json:"skills,omitempty"`
	Education      []string `json:"education,omitempty"`
	Experience     []string `json:"experience,omitempty"`
	RecentActivity []string `json:"recent_activity,omitempty"`
	Error          string   `json:"error,omitempty"`
}

type GithubRepo struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Stars       int    `json:"stars,omitempty"`
	Language    string `json:"language,omitempty"`
}

type GithubData struct {
	Bio      string       `json:"bio,omitempty"`
	TopRepos []GithubRepo `json:"top_repos,omitempty"`
	Error    string       `json:"error,omitempty"`
}

type PortfolioProject struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

type PortfolioData struct {
	Projects []PortfolioProject `json:"projects,omitempty"`
	Error    string             `json:"error,omitempty"`
}

// Enrichment is the outcome of a single scrape call. Exactly one of the
// payload fields, matching Source, is populated.
type Enrichment struct {
	Source    Source
	LinkedIn  *LinkedInData
	Github    *GithubData
	Portfolio *PortfolioData
}

// Failed reports whether the payload carries an embedded error marker. Such
// payloads are treated the same as a failed fetch: no data for the source.
func (e *Enrichment) Failed() bool {
	switch {
	case e.LinkedIn != nil:
		return e.LinkedIn.Error != ""
	case e.Github != nil:
		return e.Github.Error != ""
	case e.Portfolio != nil:
		return e.Portfolio.Error != ""
	}
	return true
}

// ErrorMarker returns the embedded error message, if any.
func (e *Enrichment) ErrorMarker() string {
	switch {
	case e.LinkedIn != nil:
		return e.LinkedIn.Error
	case e.Github != nil:
		return e.Github.Error
	case e.Portfolio != nil:
		return e.Portfolio.Error
	}
	return ""
}

// Enrich triggers one enrichment source for the candidate. Each source is an
// independent call; a failure here says nothing about the other sources.
func (c *Client) Enrich(id string, source Source) (*Enrichment, error) {
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	if err := c.getJSON(fmt.Sprintf("%s/%s/%s", scrapePath, source, id), nil, &envelope); err != nil {
		return nil, err
	}

	return decodeEnrichment(source, envelope.Data)
}

func decodeEnrichment(source Source, data map[string]any) (*Enrichment, error) {
	enrichment := &Enrichment{Source: source}

	var target any
	switch source {
	case SourceLinkedIn:
		enrichment.LinkedIn = &LinkedInData{}
		target = enrichment.LinkedIn
	case SourceGithub:
		enrichment.Github = &GithubData{}
		target = enrichment.Github
	case SourcePortfolio:
		enrichment.Portfolio = &PortfolioData{}
		target = enrichment.Portfolio
	default:
		return nil, &APIError{Message: fmt.Sprintf("unknown enrichment source %q", source)}
	}

	cfg := &mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, &APIError{Message: fmt.Sprintf("building %s decoder: %s", source, err)}
	}

	if err := decoder.Decode(data); err != nil {
		return nil, &APIError{Message: fmt.Sprintf("decoding %s payload: %s", source, err)}
	}

	return enrichment, nil
}
