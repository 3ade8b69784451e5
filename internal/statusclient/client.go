package statusclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrCheckFailed is the only error class surfaced by Fetch.
var ErrCheckFailed = errors.New("connectivity check failed")

const maxBodyBytes = 1 << 20

// Fetcher runs one connectivity check.
type Fetcher interface {
	Fetch(ctx context.Context) (*Response, error)
}

// Client fetches the status map over HTTP. It never retries.
type Client struct {
	url        string
	httpClient *http.Client
}

// New creates a client for statusURL. A zero timeout leaves deadlines to
// the transport and the caller's context.
func New(statusURL string, timeout time.Duration) *Client {
	return NewWithHTTPClient(statusURL, &http.Client{Timeout: timeout})
}

// NewWithHTTPClient creates a client that issues requests through hc.
func NewWithHTTPClient(statusURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		url:        statusURL,
		httpClient: hc,
	}
}

// URL returns the endpoint the client queries.
func (c *Client) URL() string {
	return c.url
}

// Fetch issues one GET and decodes the results map.
func (c *Client) Fetch(ctx context.Context) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrCheckFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCheckFailed, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrCheckFailed, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrCheckFailed, res.StatusCode)
	}

	return decode(body)
}

// wireResponse keeps entries as pointers so null results can be told apart
// from a record with accessible=false.
type wireResponse struct {
	IsLocal   bool               `json:"is_local"`
	Results   map[string]*Result `json:"results"`
	Timestamp float64            `json:"timestamp"`
}

func decode(body []byte) (*Response, error) {
	var wire wireResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("%w: decode body: %v", ErrCheckFailed, err)
	}

	if wire.Results == nil {
		return nil, fmt.Errorf("%w: response has no results", ErrCheckFailed)
	}

	results := make(Results, len(wire.Results))
	for name, r := range wire.Results {
		if r == nil {
			return nil, fmt.Errorf("%w: result for %q is null", ErrCheckFailed, name)
		}
		results[name] = *r
	}

	return &Response{
		IsLocal:   wire.IsLocal,
		Results:   results,
		Timestamp: wire.Timestamp,
	}, nil
}
