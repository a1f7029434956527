package hrbackend

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	defaultAPIURL = "http://localhost:5000"
	userAgent     = "hireview/hr-console"

	loginPath       = "/api/hr/login"
	usersPath       = "/api/hr/users"
	userPath        = "/api/hr/user"
	scrapePath      = "/api/scrape"
	askQuestionPath = "/api/hr/ask-question"
)

// TokenSource yields the bearer token attached to authenticated requests. An
// empty token means the request is sent unauthenticated and the backend
// decides whether to reject it.
type TokenSource interface {
	Token() string
}

type staticToken string

func (s staticToken) Token() string { return string(s) }

// StaticToken wraps a fixed token string as a TokenSource.
func StaticToken(token string) TokenSource { return staticToken(token) }

type Client struct {
	// ctx used only for http requests right now
	ctx        context.Context
	tokens     TokenSource
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(ctx context.Context, logger *zap.Logger, tokens TokenSource) *Client {
	return &Client{
		ctx:    ctx,
		tokens: tokens,
		APIURL: defaultAPIURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:    logger,
		UserAgent: userAgent,
	}
}

func (c *Client) token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}
