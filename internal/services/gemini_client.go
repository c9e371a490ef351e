package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/stitts-dev/match-insights/pkg/config"
)

// TextGenerator is the opaque text-generation boundary: a prompt in,
// generated text out. It may fail or time out.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (*GenerationResult, error)
}

// GenerationResult carries the generated text plus usage metadata.
type GenerationResult struct {
	RequestID      string `json:"request_id"`
	Text           string `json:"text"`
	TokensUsed     int    `json:"tokens_used"`
	ResponseTimeMs int64  `json:"response_time_ms"`
}

// GeminiClient handles interaction with the Gemini generateContent API.
type GeminiClient struct {
	httpClient     *http.Client
	logger         *logrus.Logger
	apiKey         string
	model          string
	baseURL        string
	circuitBreaker *gobreaker.CircuitBreaker
	retryAttempts  int
	requestTracker *generationRateTracker
	mu             sync.Mutex
}

// generationRateTracker tracks API usage against a per-minute request cap.
type generationRateTracker struct {
	mu             sync.Mutex
	minuteRequests int
	requestLimit   int
	lastReset      time.Time
}

// geminiRequest is the generateContent payload.
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// geminiResponse is the generateContent response envelope.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		TotalTokenCount int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

type geminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// NewGeminiClient creates a new Gemini client with rate limiting and a
// circuit breaker. The API key is the one secret credential of the service,
// read once at process start via config.
func NewGeminiClient(cfg *config.Config, logger *logrus.Logger) *GeminiClient {
	tracker := &generationRateTracker{
		requestLimit: cfg.AIRateLimit,
		lastReset:    time.Now(),
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "gemini-api",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"circuit":    name,
				"from_state": from.String(),
				"to_state":   to.String(),
			}).Info("Gemini circuit breaker state changed")
		},
	})

	timeout := time.Duration(cfg.GenerationTimeout) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &GeminiClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:         logger,
		apiKey:         cfg.GeminiAPIKey,
		model:          cfg.GeminiModel,
		baseURL:        "https://generativelanguage.googleapis.com/v1beta",
		circuitBreaker: cb,
		retryAttempts:  3,
		requestTracker: tracker,
	}
}

// Generate sends a prompt to the generation backend and returns its text.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (*GenerationResult, error) {
	if prompt == "" {
		return nil, fmt.Errorf("prompt must not be empty")
	}
	if err := c.requestTracker.track(); err != nil {
		return nil, err
	}

	start := time.Now()
	response, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		return c.makeRequest(ctx, prompt)
	})
	if err != nil {
		return nil, fmt.Errorf("generation request failed: %w", err)
	}

	parsed := response.(*geminiResponse)
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("generation backend returned no candidates")
	}

	result := &GenerationResult{
		RequestID:      uuid.New().String(),
		Text:           parsed.Candidates[0].Content.Parts[0].Text,
		TokensUsed:     parsed.UsageMetadata.TotalTokenCount,
		ResponseTimeMs: time.Since(start).Milliseconds(),
	}

	c.logger.WithFields(logrus.Fields{
		"request_id":       result.RequestID,
		"tokens_used":      result.TokensUsed,
		"response_time_ms": result.ResponseTimeMs,
	}).Debug("Generation request completed")

	return result, nil
}

// makeRequest handles the HTTP round trip with retries.
func (c *GeminiClient) makeRequest(ctx context.Context, prompt string) (*geminiResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	payload := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
	}
	requestBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	var lastErr error
	for attempt := 0; attempt < c.retryAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(requestBody))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusOK {
			var parsed geminiResponse
			err := json.NewDecoder(resp.Body).Decode(&parsed)
			resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("failed to decode response: %w", err)
			}
			return &parsed, nil
		}

		var apiErr geminiError
		decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr)
		resp.Body.Close()
		if decodeErr != nil {
			lastErr = fmt.Errorf("request failed with status %d", resp.StatusCode)
			continue
		}

		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, fmt.Errorf("invalid API credentials: %s", apiErr.Error.Message)
		case http.StatusBadRequest:
			return nil, fmt.Errorf("bad request: %s", apiErr.Error.Message)
		case http.StatusTooManyRequests:
			lastErr = fmt.Errorf("rate limit exceeded: %s", apiErr.Error.Message)
		default:
			lastErr = fmt.Errorf("unexpected error (status %d): %s", resp.StatusCode, apiErr.Error.Message)
		}
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", c.retryAttempts, lastErr)
}

// track enforces the per-minute request cap.
func (t *generationRateTracker) track() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	if now.Sub(t.lastReset) >= time.Minute {
		t.minuteRequests = 0
		t.lastReset = now
	}

	if t.requestLimit > 0 && t.minuteRequests >= t.requestLimit {
		return fmt.Errorf("generation rate limit exceeded (%d/%d per minute)",
			t.minuteRequests, t.requestLimit)
	}
	t.minuteRequests++
	return nil
}

// IsHealthy reports whether the generation circuit is closed.
func (c *GeminiClient) IsHealthy() bool {
	return c.circuitBreaker.State() == gobreaker.StateClosed
}
