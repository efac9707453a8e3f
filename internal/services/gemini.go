package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// maxResponseSize caps how much of an upstream body is read.
const maxResponseSize = 10 * 1024 * 1024

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration

	// ClientOptions are appended to the SDK client used by VerifyModel.
	ClientOptions []option.ClientOption
}

// GeminiService talks to the generateContent endpoint over plain HTTP so the
// upstream status and error payload reach the caller untouched.
type GeminiService struct {
	cfg    GeminiConfig
	client *http.Client
	logger *slog.Logger
}

func NewGeminiService(cfg GeminiConfig) *GeminiService {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &GeminiService{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: slog.Default().With("component", "gemini"),
	}
}

type generateContentRequest struct {
	Contents []contentBlock `json:"contents"`
}

type contentBlock struct {
	Parts []textPart `json:"parts"`
}

type textPart struct {
	Text string `json:"text"`
}

func (s *GeminiService) endpoint() string {
	return fmt.Sprintf("%s/%s:generateContent?key=%s",
		s.cfg.BaseURL, url.PathEscape(s.cfg.Model), url.QueryEscape(s.cfg.APIKey))
}

// GenerateContent sends text as a single user turn and returns the decoded
// JSON body of a 2xx answer. It never retries.
func (s *GeminiService) GenerateContent(ctx context.Context, text string) (interface{}, error) {
	payload, err := json.Marshal(generateContentRequest{
		Contents: []contentBlock{{Parts: []textPart{{Text: text}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return nil, &RemoteUnreachableError{Err: s.redact(err)}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("generateContent transport failure", "error", s.redact(err), "elapsed", time.Since(start))
		return nil, &RemoteUnreachableError{Err: s.redact(err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &RemoteUnreachableError{Err: s.redact(err)}
	}

	s.logger.Debug("generateContent answered", "status", resp.StatusCode, "bytes", len(body), "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RemoteError{Status: resp.StatusCode, Details: errorDetails(body)}
	}

	var decoded interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, &InvalidUpstreamJSONError{Err: err}
	}
	return decoded, nil
}

func errorDetails(body []byte) interface{} {
	var v interface{}
	if err := json.Unmarshal(body, &v); err == nil {
		return v
	}
	return string(body)
}

// redact strips the API key from an error before it is logged or returned.
func (s *GeminiService) redact(err error) error {
	return errors.New(s.redactString(err.Error()))
}

func (s *GeminiService) redactString(v string) string {
	if s.cfg.APIKey == "" {
		return v
	}
	v = strings.ReplaceAll(v, url.QueryEscape(s.cfg.APIKey), "REDACTED")
	return strings.ReplaceAll(v, s.cfg.APIKey, "REDACTED")
}

// VerifyModel asks the Gemini SDK for the configured model's metadata. It is
// an optional start-up probe; callers treat failure as a warning.
func (s *GeminiService) VerifyModel(ctx context.Context) error {
	opts := append([]option.ClientOption{option.WithAPIKey(s.cfg.APIKey)}, s.cfg.ClientOptions...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer client.Close()

	info, err := client.GenerativeModel(s.cfg.Model).Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch model info for %s: %w", s.cfg.Model, s.redact(err))
	}

	s.logger.Info("model verified",
		"model", s.cfg.Model,
		"display_name", info.DisplayName,
		"input_token_limit", info.InputTokenLimit,
		"output_token_limit", info.OutputTokenLimit,
	)
	return nil
}
