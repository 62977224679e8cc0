// Package ticketing is the resilient client for the external ticketing
// system used in manual-review bookkeeping. The external API is
// rate-limited: 429 responses are retried with a bounded budget, honoring
// the Retry-After header; every other failure is permanent.
package ticketing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

const (
	searchPath      = "/rest/api/2/search"
	transitionsPath = "/rest/api/2/issue/%s/transitions"
)

// Config holds the client settings.
type Config struct {
	BaseURL  string `json:"baseUrl" yaml:"baseUrl"`
	Username string `json:"username" yaml:"username"`
	// APIToken pairs with Username for basic authentication.
	APIToken string `json:"apiToken" yaml:"apiToken"`
	// RetryDelay is the fallback wait before retrying a rate-limited call
	// when the response carries no Retry-After header.
	RetryDelay time.Duration `json:"retryDelayMs" yaml:"retryDelayMs"`
	// MaxRetries bounds how many times a rate-limited call is reissued.
	MaxRetries int `json:"maxRetries" yaml:"maxRetries"`
}

// DefaultConfig returns the standard retry settings.
func DefaultConfig() Config {
	return Config{
		RetryDelay: 500 * time.Millisecond,
		MaxRetries: 5,
	}
}

// SearchRequest is the ticket search payload.
type SearchRequest struct {
	Fields     []string `json:"fields"`
	JQL        string   `json:"jql"`
	StartAt    int      `json:"startAt"`
	MaxResults int      `json:"maxResults"`
}

// IssueFields is the subset of ticket fields the bridge reads.
type IssueFields struct {
	Summary string `json:"summary"`
	Updated string `json:"updated"`
	Created string `json:"created"`
}

// Issue is one ticket in a search result.
type Issue struct {
	ID     string      `json:"id"`
	Key    string      `json:"key"`
	Fields IssueFields `json:"fields"`
}

// SearchResponse is the decoded search result.
type SearchResponse struct {
	StartAt         int      `json:"startAt"`
	Total           int      `json:"total"`
	Issues          []Issue  `json:"issues"`
	WarningMessages []string `json:"warningMessages,omitempty"`
}

// Client issues requests against the ticketing API.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     zerolog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client, e.g. for tests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithLogger sets the client logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a ticketing client.
func New(config Config, options ...Option) *Client {
	if config.RetryDelay <= 0 {
		config.RetryDelay = DefaultConfig().RetryDelay
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = DefaultConfig().MaxRetries
	}
	ret := &Client{
		config:     config,
		httpClient: http.DefaultClient,
		logger:     zerolog.Nop(),
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Search runs one ticket search.
func (c *Client) Search(ctx context.Context, request *SearchRequest) (*SearchResponse, error) {
	var out SearchResponse
	if err := c.do(ctx, c.config.BaseURL+searchPath, request, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Transition moves a ticket through the given workflow transition.
func (c *Client) Transition(ctx context.Context, ticketKey, transitionID string) error {
	payload := map[string]any{"transition": map[string]string{"id": transitionID}}
	url := c.config.BaseURL + fmt.Sprintf(transitionsPath, ticketKey)
	return c.do(ctx, url, payload, nil)
}

// do issues one POST, retrying rate-limited responses within the configured
// budget. Every status is classified: anything that is not a success or a
// 429 is a permanent failure.
func (c *Client) do(ctx context.Context, url string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ticketing: encoding request: %w", err)
	}
	for attempt := 0; ; attempt++ {
		status, header, responseBody, err := c.post(ctx, url, body)
		if err != nil {
			return fmt.Errorf("ticketing: calling %s: %w", url, err)
		}
		switch {
		case status == http.StatusOK || status == http.StatusCreated || status == http.StatusNoContent:
			if out != nil && len(responseBody) > 0 {
				if err := json.Unmarshal(responseBody, out); err != nil {
					return fmt.Errorf("ticketing: decoding response: %w", err)
				}
			}
			return nil
		case status == http.StatusBadRequest:
			return fmt.Errorf("ticketing: invalid request (status %d)", status)
		case status == http.StatusUnauthorized:
			return fmt.Errorf("ticketing: secrets misconfiguration (status %d)", status)
		case status == http.StatusTooManyRequests:
			if attempt >= c.config.MaxRetries {
				return fmt.Errorf("ticketing: retry budget exhausted after %d calls: last status %d, headers %v",
					attempt+1, status, header)
			}
			delay := retryAfter(header, c.config.RetryDelay)
			c.logger.Debug().Int("attempt", attempt+1).Dur("delay", delay).Msg("ticketing rate limited, retrying")
			if err := sleep(ctx, delay); err != nil {
				return err
			}
		case status >= http.StatusInternalServerError:
			message := extractErrorBody(responseBody)
			if message != "" {
				return fmt.Errorf("ticketing: server error (status %d): %s", status, message)
			}
			return fmt.Errorf("ticketing: server error (status %d)", status)
		default:
			return fmt.Errorf("ticketing: unexpected status code %d", status)
		}
	}
}

func (c *Client) post(ctx context.Context, url string, body []byte) (int, http.Header, []byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, nil, err
	}
	request.Header.Set("Content-Type", "application/json")
	if c.config.Username != "" {
		request.SetBasicAuth(c.config.Username, c.config.APIToken)
	}
	response, err := c.httpClient.Do(request)
	if err != nil {
		return 0, nil, nil, err
	}
	defer response.Body.Close()
	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return response.StatusCode, response.Header, nil, err
	}
	return response.StatusCode, response.Header, responseBody, nil
}

// retryAfter reads the Retry-After header (seconds), falling back to the
// configured default delay.
func retryAfter(header http.Header, fallback time.Duration) time.Duration {
	value := header.Get("Retry-After")
	if value == "" {
		return fallback
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

// extractErrorBody pulls a printable message out of an error response body
// when there is one.
func extractErrorBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var decoded struct {
		ErrorMessages []string `json:"errorMessages"`
	}
	if err := json.Unmarshal(body, &decoded); err == nil && len(decoded.ErrorMessages) > 0 {
		return decoded.ErrorMessages[0]
	}
	const limit = 512
	if len(body) > limit {
		body = body[:limit]
	}
	return string(body)
}

func sleep(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
