package hrbackend

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// AIAnswer is the structured payload produced by the ask-question operation.
type AIAnswer struct {
	BriefSummary       string   `json:"brief_summary,omitempty"`
	DetailedAnswer     string   `json:"detailed_answer,omitempty"`
	BulletPoints       []string `json:"bullet_points,omitempty"`
	SuggestedFollowups []string `json:"suggested_followups,omitempty"`
}

// Answer carries a question log's answer. Historic entries deliver it as a
// JSON-encoded string, fresh entries as a structured object; the union is
// resolved on read so one undecodable record cannot break the history list.
type Answer struct {
	structured *AIAnswer
	raw        string
}

// StructuredAnswer wraps an already-decoded answer, used for the optimistic
// local history append.
func StructuredAnswer(a *AIAnswer) Answer {
	return Answer{structured: a}
}

// RawAnswer wraps the encoded-string form.
func RawAnswer(s string) Answer {
	return Answer{raw: s}
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = Answer{}
		return nil
	}

	if data[0] == '"' {
		return json.Unmarshal(data, &a.raw)
	}

	var structured AIAnswer
	if err := json.Unmarshal(data, &structured); err != nil {
		return err
	}
	a.structured = &structured
	return nil
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.structured != nil {
		return json.Marshal(a.structured)
	}
	return json.Marshal(a.raw)
}

// Resolve returns the structured answer, decoding the encoded-string form on
// demand.
func (a Answer) Resolve() (*AIAnswer, error) {
	if a.structured != nil {
		return a.structured, nil
	}

	raw := strings.TrimSpace(a.raw)
	if raw == "" {
		return nil, errors.New("answer is empty")
	}

	var structured AIAnswer
	if err := json.Unmarshal([]byte(raw), &structured); err != nil {
		return nil, fmt.Errorf("decoding stored answer: %w", err)
	}

	return &structured, nil
}

type QuestionLog struct {
	ID        string `json:"id,omitempty"`
	HRID      string `json:"hr_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	Question  string `json:"question,omitempty"`
	Answer    Answer `json:"answer,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

const answerUnavailable = "answer unavailable"

// Summary is the one-line answer summary shown in the history list. It falls
// back to a placeholder when the stored answer cannot be decoded instead of
// letting one bad entry break rendering.
func (l *QuestionLog) Summary() string {
	answer, err := l.Answer.Resolve()
	if err != nil {
		return answerUnavailable
	}

	summary := strings.TrimSpace(answer.BriefSummary)
	if summary == "" {
		return answerUnavailable
	}

	return summary
}

// AskQuestion sends a free-form question about the candidate's resume to the
// backend's AI route.
func (c *Client) AskQuestion(id, question string) (*AIAnswer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, &APIError{Message: "question must not be empty"}
	}

	payload := map[string]string{
		"user_id":  id,
		"question": question,
	}

	var answer AIAnswer
	if err := c.sendJSON(http.MethodPost, askQuestionPath, payload, &answer); err != nil {
		return nil, err
	}

	return &answer, nil
}
