package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/hireview/hireview/internal/hrbackend"
	"github.com/hireview/hireview/internal/logger"
	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

// Answerer answers resume questions directly against the Gemini API, feeding
// the resolved resume text as context. It is a drop-in alternative to the
// backend's ask-question route.
type Answerer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewAnswerer(generator contentGenerator, log *zap.Logger, maxLogLength int) *Answerer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &Answerer{
		generator: generator,
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

func (a *Answerer) Answer(ctx context.Context, candidate *hrbackend.Candidate, question string) (*hrbackend.AIAnswer, error) {
	if candidate == nil {
		return nil, fmt.Errorf("candidate is required")
	}

	resume := candidate.PrimaryResume()
	if resume == nil || strings.TrimSpace(resume.ExtractedText) == "" {
		return nil, fmt.Errorf("candidate %s has no resume text to answer from", candidate.Ref())
	}

	prompt := buildPrompt(candidate.FullName, resume.ExtractedText, question)

	a.logger.Debug("gemini ask request",
		zap.String(logger.FieldCandidate, candidate.Ref()),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("gemini ask response",
		zap.String(logger.FieldCandidate, candidate.Ref()),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, a.maxLogLen)),
	)

	return parseAnswer(raw)
}

func buildPrompt(name, resumeText, question string) string {
	prompt := strings.ReplaceAll(promptTemplate, "{{CANDIDATE_NAME}}", strings.TrimSpace(name))
	prompt = strings.ReplaceAll(prompt, "{{RESUME_TEXT}}", strings.TrimSpace(resumeText))
	prompt = strings.ReplaceAll(prompt, "{{QUESTION}}", strings.TrimSpace(question))
	return prompt
}

func parseAnswer(raw string) (*hrbackend.AIAnswer, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	return &hrbackend.AIAnswer{
		BriefSummary:       coerceString(data["brief_summary"]),
		DetailedAnswer:     coerceString(data["detailed_answer"]),
		BulletPoints:       coerceStrings(data["bullet_points"]),
		SuggestedFollowups: coerceStrings(data["suggested_followups"]),
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

func coerceStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}

	result := make([]string, 0, len(items))
	for _, item := range items {
		if s := coerceString(item); s != "" {
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}

	return result
}
