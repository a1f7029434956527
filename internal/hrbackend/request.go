package hrbackend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

const contentType = "application/json"

// APIError is the uniform failure shape for every backend operation. Non-2xx
// responses, transport failures and undecodable bodies all end up here; the
// client never lets a raw transport error escape to callers.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsAuthError reports whether the failure should send the operator back to
// the login view.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// getJSON makes an authenticated GET request and decodes the response into target.
func (c *Client) getJSON(path string, q url.Values, target any) error {
	req, err := http.NewRequestWithContext(c.ctx, http.MethodGet, c.APIURL+path, nil)
	if err != nil {
		return &APIError{Message: fmt.Sprintf("building request: %s", err)}
	}

	req = c.setHeaders(req)
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	return c.do(req, target)
}

// sendJSON makes an authenticated request carrying a JSON body and decodes
// the response into target.
func (c *Client) sendJSON(method, path string, payload, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &APIError{Message: fmt.Sprintf("encoding request body: %s", err)}
	}

	req, err := http.NewRequestWithContext(c.ctx, method, c.APIURL+path, bytes.NewReader(body))
	if err != nil {
		return &APIError{Message: fmt.Sprintf("building request: %s", err)}
	}

	req = c.setHeaders(req)
	req.Header.Set("Content-Type", contentType)

	return c.do(req, target)
}

func (c *Client) do(req *http.Request, target any) error {
	c.logger.Debug("make request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
	)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return &APIError{Message: fmt.Sprintf("request failed: %s", err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("reading response: %s", err)}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return decodeError(resp.StatusCode, data)
	}

	if target == nil {
		return nil
	}

	if err := json.Unmarshal(data, target); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("decoding response: %s", err)}
	}

	return nil
}

// decodeError extracts the backend's {error: message} convention, falling
// back to a generic message carrying the HTTP status.
func decodeError(status int, body []byte) *APIError {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && strings.TrimSpace(payload.Error) != "" {
		return &APIError{StatusCode: status, Message: strings.TrimSpace(payload.Error)}
	}

	return &APIError{StatusCode: status, Message: fmt.Sprintf("request failed with status %d", status)}
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}
	req.Header.Set("User-Agent", c.UserAgent)

	return req
}
