package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	redisclient "github.com/nelc/HCx-sub001/internal/clients/redis"
	"github.com/nelc/HCx-sub001/internal/logger"
	"github.com/nelc/HCx-sub001/internal/pkg/httpx"
)

// LLMClient is the opaque language-model collaborator. It returns
// structured JSON only; its failure must degrade to an empty enrichment,
// never abort the scoring pipeline.
type LLMClient interface {
	ExtractSkills(ctx context.Context, courseName, description string) ([]string, error)
	GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error)
}

type llmClient struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	tokenURL   string
	clientID   string
	clientSec  string
	model      string
	httpClient *http.Client
	tokens     redisclient.TokenCache

	maxRetries int
}

// NewLLMClient configures the client from the environment. When
// LLM_TOKEN_URL is set, short-lived client-credential tokens are fetched
// and held in the injected token cache; otherwise LLM_API_KEY is used
// directly.
func NewLLMClient(log *logger.Logger, tokens redisclient.TokenCache) (LLMClient, error) {
	apiKey := os.Getenv("LLM_API_KEY")
	tokenURL := os.Getenv("LLM_TOKEN_URL")
	if apiKey == "" && tokenURL == "" {
		return nil, fmt.Errorf("missing LLM_API_KEY or LLM_TOKEN_URL")
	}
	if tokenURL != "" && tokens == nil {
		return nil, fmt.Errorf("token cache required when LLM_TOKEN_URL is set")
	}

	baseURL := os.Getenv("LLM_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	model := os.Getenv("LLM_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}

	timeoutSec := 30
	if v := os.Getenv("LLM_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}
	maxRetries := 3
	if v := os.Getenv("LLM_MAX_RETRIES"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed >= 0 {
			maxRetries = parsed
		}
	}

	return &llmClient{
		log:        log.With("service", "LLMClient"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		tokenURL:   tokenURL,
		clientID:   os.Getenv("LLM_CLIENT_ID"),
		clientSec:  os.Getenv("LLM_CLIENT_SECRET"),
		model:      model,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		tokens:     tokens,
		maxRetries: maxRetries,
	}, nil
}

type llmHTTPError struct {
	StatusCode int
	Body       string
}

func (e *llmHTTPError) Error() string {
	return fmt.Sprintf("llm http %d: %s", e.StatusCode, e.Body)
}

func (e *llmHTTPError) HTTPStatusCode() int { return e.StatusCode }

const tokenCacheKey = "llm_access_token"

func (c *llmClient) bearerToken(ctx context.Context) (string, error) {
	if c.tokenURL == "" {
		return c.apiKey, nil
	}
	if tok, ok := c.tokens.Get(ctx, tokenCacheKey); ok {
		return tok, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSec)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return "", readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &llmHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned empty access_token")
	}
	ttl := time.Duration(payload.ExpiresIn) * time.Second
	// Expire early so a cached token is never presented at its deadline.
	if ttl > 2*time.Minute {
		ttl -= time.Minute
	}
	if ttl > 0 {
		if err := c.tokens.Set(ctx, tokenCacheKey, payload.AccessToken, ttl); err != nil {
			c.log.Warn("failed to cache access token", "error", err)
		}
	}
	return payload.AccessToken, nil
}

func (c *llmClient) doOnce(ctx context.Context, path string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, nil, err
	}
	token, err := c.bearerToken(ctx)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &llmHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

func (c *llmClient) do(ctx context.Context, path string, body any, out any) error {
	backoff := 1 * time.Second
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		resp, raw, err := c.doOnce(ctx, path, body)
		if err == nil {
			if out == nil {
				return nil
			}
			return json.Unmarshal(raw, out)
		}
		lastErr = err
		if !httpx.IsRetryableError(err) || attempt == c.maxRetries {
			break
		}
		sleep := httpx.JitterSleep(httpx.RetryAfterDuration(resp, backoff, 10*time.Second))
		c.log.Warn("llm call failed, retrying", "attempt", attempt+1, "sleep", sleep, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
		if backoff < 8*time.Second {
			backoff *= 2
		}
	}
	return lastErr
}

func (c *llmClient) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	reqBody := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"response_format": map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   schemaName,
				"strict": true,
				"schema": schema,
			},
		},
	}
	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := c.do(ctx, "/v1/chat/completions", reqBody, &out); err != nil {
		return nil, err
	}
	if len(out.Choices) == 0 {
		return nil, errors.New("llm returned no choices")
	}
	var parsed map[string]any
	if err := json.Unmarshal([]byte(out.Choices[0].Message.Content), &parsed); err != nil {
		return nil, fmt.Errorf("decode llm json: %w", err)
	}
	return parsed, nil
}

const maxExtractedSkills = 12

func (c *llmClient) ExtractSkills(ctx context.Context, courseName, description string) ([]string, error) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"skills": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required":             []string{"skills"},
		"additionalProperties": false,
	}
	system := "ROLE: Course catalog skill extractor.\n" +
		"TASK: List the concrete skills this course teaches, as short noun phrases.\n" +
		"OUTPUT: Return ONLY JSON matching the schema."
	user := "COURSE_NAME: " + courseName + "\nCOURSE_DESCRIPTION: " + description
	raw, err := c.GenerateJSON(ctx, system, user, "course_skills_v1", schema)
	if err != nil {
		return nil, err
	}
	return coerceSkillList(raw), nil
}

// coerceSkillList validates the loosely-typed model payload into clean
// strings before it can reach the matcher.
func coerceSkillList(raw map[string]any) []string {
	items, _ := raw["skills"].([]any)
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
		if len(out) == maxExtractedSkills {
			break
		}
	}
	return out
}
