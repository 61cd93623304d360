// Package gemini generates assessment questions with the Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"rhel-assessment-service/internal/domain"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-3-pro-preview"

// contentGenerator is the slice of *genai.Models the source needs.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Source is an app.QuestionSource backed by a Gemini model.
type Source struct {
	models  contentGenerator
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// Config holds the connection settings for NewSource.
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// NewSource builds a Gemini client for the developer API.
func NewSource(ctx context.Context, cfg Config, logger *zap.Logger) (*Source, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key not configured")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return newSource(client.Models, cfg, logger), nil
}

func newSource(models contentGenerator, cfg Config, logger *zap.Logger) *Source {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{models: models, model: cfg.Model, timeout: cfg.Timeout, logger: logger}
}

// Generate asks the model for req.Count questions restricted to req.Topics.
// Transport failures wrap domain.ErrSourceUnavailable; unusable payloads wrap
// domain.ErrMalformedResponse.
func (s *Source) Generate(ctx context.Context, req domain.GenerationRequest) ([]domain.Question, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	started := time.Now()
	resp, err := s.models.GenerateContent(ctx, s.model, genai.Text(BuildPrompt(req)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   questionSchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}

	questions, err := DecodeQuestions(responseText(resp))
	if err != nil {
		s.logger.Warn("failed to parse quiz response", zap.String("model", s.model), zap.Error(err))
		return nil, err
	}
	s.logger.Info("questions generated",
		zap.String("model", s.model),
		zap.Int("count", len(questions)),
		zap.Duration("took", time.Since(started)))
	return questions, nil
}

// DecodeQuestions parses a JSON array of questions and validates the set.
func DecodeQuestions(text string) ([]domain.Question, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty response", domain.ErrMalformedResponse)
	}
	var questions []domain.Question
	if err := json.Unmarshal([]byte(text), &questions); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if err := domain.ValidateQuestionSet(questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
