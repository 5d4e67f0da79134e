// Package chatapi implements the remote model transport against an
// OpenAI-compatible chat-completions endpoint, with pacing and
// rate-limit-aware retry.
package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"aido/internal/provider/model"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const maxResponseBytes = 2 << 20

// Options configures a Client. Zero values select the documented defaults.
type Options struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	MaxAttempts int
	BackoffBase time.Duration
	BackoffMax  time.Duration
	// Pacing inserts a fixed delay between attempts to reduce burst rate.
	// Zero disables pacing.
	Pacing     time.Duration
	HTTPClient *http.Client
	Logger     *log.Logger
}

// Client calls an OpenAI-compatible chat-completions endpoint.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	maxAttempts int
	backoffBase time.Duration
	backoffMax  time.Duration
	pacer       *rate.Limiter
	jitter      func(time.Duration) time.Duration
	sleep       func(context.Context, time.Duration) error
	log         *log.Logger
}

// New creates a Client.
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	maxAttempts := opts.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 5
	}
	backoffBase := opts.BackoffBase
	if backoffBase <= 0 {
		backoffBase = DefaultBackoffBase
	}
	backoffMax := opts.BackoffMax
	if backoffMax <= 0 {
		backoffMax = DefaultBackoffMax
	}
	var pacer *rate.Limiter
	if opts.Pacing > 0 {
		pacer = rate.NewLimiter(rate.Every(opts.Pacing), 1)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Client{
		httpClient:  httpClient,
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		apiKey:      opts.APIKey,
		maxAttempts: maxAttempts,
		backoffBase: backoffBase,
		backoffMax:  backoffMax,
		pacer:       pacer,
		jitter:      randomJitter,
		sleep:       sleepContext,
		log:         logger,
	}
}

// Generate performs the remote call with internal retry. Only rate-limit
// error payloads are retried; transport failures and other error payloads
// surface immediately. Exhausting the retry budget surfaces the last
// rate-limit error.
func (c *Client) Generate(ctx context.Context, req *model.GenerateRequest) (*model.GenerateResponse, error) {
	state := &RetryState{MaxAttempts: c.maxAttempts}
	for {
		state.Attempt++

		if c.pacer != nil {
			if err := c.pacer.Wait(ctx); err != nil {
				return nil, err
			}
		}

		resp, retryAfter, err := c.call(ctx, req)
		if err == nil {
			return resp, nil
		}
		if !errors.Is(err, model.ErrRateLimit) || state.Exhausted() {
			return nil, err
		}

		wait := backoffWait(state.Attempt, retryAfter, err.Error(), c.backoffBase, c.backoffMax, c.jitter)
		c.log.Debug("rate limited, backing off",
			"attempt", state.Attempt, "max_attempts", state.MaxAttempts, "wait", wait)
		if err := c.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

// call performs a single attempt and reports any Retry-After header value
// alongside the error so the retry driver can honor it.
func (c *Client) call(ctx context.Context, req *model.GenerateRequest) (*model.GenerateResponse, string, error) {
	body, err := json.Marshal(wireRequest(req))
	if err != nil {
		return nil, "", fmt.Errorf("marshal request: %w", err)
	}

	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	hreq.Header.Set("Content-Type", "application/json")
	hreq.Header.Set("Accept", "application/json")
	hreq.Header.Set("Authorization", "Bearer "+c.apiKey)

	hresp, err := c.httpClient.Do(hreq)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", model.ErrNetwork, err)
	}
	defer hresp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(hresp.Body, maxResponseBytes))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", model.ErrNetwork, err)
	}

	var out chatResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, "", fmt.Errorf("%w: %v", model.ErrInvalidResponse, err)
	}

	if out.Error != nil || hresp.StatusCode >= 400 {
		msg := strings.TrimSpace(string(respBody))
		if out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		apiErr := &model.APIError{StatusCode: hresp.StatusCode, Message: msg}
		if hresp.StatusCode == http.StatusTooManyRequests {
			apiErr.Err = model.ErrRateLimit
		}
		return nil, hresp.Header.Get("Retry-After"), apiErr
	}

	if len(out.Choices) == 0 {
		return nil, "", fmt.Errorf("%w: response had no choices", model.ErrInvalidResponse)
	}

	choice := out.Choices[0]
	msg := model.Message{
		Role:    model.RoleAssistant,
		Content: contentString(choice.Message.Content),
	}
	for _, tc := range choice.Message.ToolCalls {
		id := tc.ID
		if id == "" {
			id = uuid.NewString()
		}
		msg.ToolCalls = append(msg.ToolCalls, model.ToolCall{
			ID:        id,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return &model.GenerateResponse{Message: msg, FinishReason: choice.FinishReason}, "", nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
