// Package sentiment wraps the Baidu sentiment_classify endpoint.
package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"chat-analyzer/utils"

	"github.com/cenkalti/backoff/v4"
)

// DefaultURL is the production sentiment endpoint
const DefaultURL = "https://aip.baidubce.com/rpc/2.0/nlp/v1/sentiment_classify"

// Backoff strategies between retry attempts
const (
	BackoffNone        = "none"
	BackoffConstant    = "constant"
	BackoffExponential = "exponential"
)

// Config represents client configuration
type Config struct {
	URL             string
	Retries         int           // total attempts per message
	Timeout         time.Duration // per attempt
	Backoff         string
	BackoffInterval time.Duration
	Redactor        *utils.Redactor // optional, masks personal data before sending
	HTTPClient      *http.Client
}

// APIError is a response the endpoint answered but refused; it is not retried
type APIError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("sentiment api error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("sentiment api status %d: %s", e.StatusCode, e.Message)
}

// Client classifies one message per HTTP call
type Client struct {
	config Config
	client *http.Client
	logger *utils.Logger
}

// NewClient creates a new sentiment client
func NewClient(config Config, logger *utils.Logger) *Client {
	if config.URL == "" {
		config.URL = DefaultURL
	}
	if config.Retries < 1 {
		config.Retries = 1
	}
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}
	if config.Backoff == "" {
		config.Backoff = BackoffNone
	}
	if config.BackoffInterval == 0 {
		config.BackoffInterval = time.Second
	}

	client := config.HTTPClient
	if client == nil {
		// Timeouts are applied per attempt through the request context
		client = &http.Client{}
	}

	return &Client{
		config: config,
		client: client,
		logger: logger,
	}
}

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyItem struct {
	Sentiment    *int    `json:"sentiment"`
	Confidence   float64 `json:"confidence"`
	PositiveProb float64 `json:"positive_prob"`
	NegativeProb float64 `json:"negative_prob"`
}

type classifyResponse struct {
	LogID     int64          `json:"log_id"`
	Items     []classifyItem `json:"items"`
	ErrorCode int            `json:"error_code"`
	ErrorMsg  string         `json:"error_msg"`
}

// Classify returns the sentiment of text. Blank text yields (nil, nil)
// without a request. Refused requests and exhausted retries yield the
// neutral default; the only error returned is ctx's own.
func (c *Client) Classify(ctx context.Context, token, text string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	if c.config.Redactor != nil {
		text = c.config.Redactor.Redact(text)
	}

	body, err := json.Marshal(classifyRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var result *Result
	attempt := 0
	operation := func() error {
		attempt++
		res, err := c.send(ctx, token, body)
		if err == nil {
			result = res
			return nil
		}
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return backoff.Permanent(err)
		}
		c.logger.Warn("Request error on attempt %d/%d: %v", attempt, c.config.Retries, err)
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(c.newBackOff(), uint64(c.config.Retries-1)),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			c.logger.Warn("Sentiment request refused: %v", apiErr)
		} else {
			c.logger.Warn("Failed to analyze sentiment after %d attempts: %v", attempt, err)
		}
		return NeutralResult(), nil
	}

	return result, nil
}

// send performs a single attempt
func (c *Client) send(ctx context.Context, token string, body []byte) (*Result, error) {
	endpoint, err := url.Parse(c.config.URL)
	if err != nil {
		return nil, &APIError{Message: fmt.Sprintf("invalid sentiment URL: %v", err)}
	}
	query := endpoint.Query()
	query.Set("access_token", token)
	query.Set("charset", "UTF-8")
	endpoint.RawQuery = query.Encode()

	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(data)}
	}

	var parsed classifyResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to decode response: %v", err)}
	}
	if parsed.ErrorCode != 0 {
		return nil, &APIError{StatusCode: resp.StatusCode, Code: parsed.ErrorCode, Message: parsed.ErrorMsg}
	}
	if len(parsed.Items) == 0 {
		return NeutralResult(), nil
	}

	item := parsed.Items[0]
	class := Neutral
	if item.Sentiment != nil {
		class = Class(*item.Sentiment)
		if !class.Valid() {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("unknown sentiment code %d", *item.Sentiment)}
		}
	}
	return &Result{
		Class:        class,
		Confidence:   item.Confidence,
		PositiveProb: item.PositiveProb,
		NegativeProb: item.NegativeProb,
	}, nil
}

func (c *Client) newBackOff() backoff.BackOff {
	switch c.config.Backoff {
	case BackoffConstant:
		return backoff.NewConstantBackOff(c.config.BackoffInterval)
	case BackoffExponential:
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = c.config.BackoffInterval
		b.MaxElapsedTime = 0
		return b
	default:
		return &backoff.ZeroBackOff{}
	}
}
