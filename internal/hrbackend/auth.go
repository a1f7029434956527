package hrbackend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Login exchanges operator credentials for an access token. It is the only
// operation sent without the bearer header.
func (c *Client) Login(email, password string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return "", &APIError{Message: fmt.Sprintf("encoding request body: %s", err)}
	}

	req, err := http.NewRequestWithContext(c.ctx, http.MethodPost, c.APIURL+loginPath, bytes.NewReader(body))
	if err != nil {
		return "", &APIError{Message: fmt.Sprintf("building request: %s", err)}
	}

	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", c.UserAgent)

	var result struct {
		AccessToken string `json:"accessToken"`
	}
	if err := c.do(req, &result); err != nil {
		return "", err
	}

	token := strings.TrimSpace(result.AccessToken)
	if token == "" {
		return "", &APIError{Message: "login response carried no access token"}
	}

	return token, nil
}
