// Package sauce reports session outcomes to the Sauce Labs job API.
package sauce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds one API round trip.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of an error response is kept.
const maxErrorBody = 1024

// Credentials identify the account a client acts for.
type Credentials struct {
	Username   string
	AccessKey  string
	DataCenter string
}

// UpdateJobParams is the body of an update-job call. Zero fields are omitted.
type UpdateJobParams struct {
	Passed *bool    `json:"passed,omitempty"`
	Build  string   `json:"build,omitempty"`
	Name   string   `json:"name,omitempty"`
	Tags   []string `json:"tags,omitempty"`
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sauce api returned %d: %s", e.StatusCode, e.Body)
}

// Client is an authenticated Sauce Labs REST client. It is safe for
// concurrent use.
type Client struct {
	username   string
	accessKey  string
	dataCenter DataCenter
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client bound to one account and API base URL.
// A nil httpClient gets one with DefaultTimeout.
func NewClient(username, accessKey string, dc DataCenter, baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		username:   username,
		accessKey:  accessKey,
		dataCenter: dc,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Username returns the account the client is bound to.
func (c *Client) Username() string {
	return c.username
}

// DataCenter returns the region the client talks to.
func (c *Client) DataCenter() DataCenter {
	return c.dataCenter
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// UpdateJob updates the job identified by jobID in a single PUT request.
func (c *Client) UpdateJob(ctx context.Context, jobID string, params UpdateJobParams) error {
	body, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to encode update: %w", err)
	}

	endpoint := fmt.Sprintf("%s/rest/v1/%s/jobs/%s", c.baseURL, url.PathEscape(c.username), url.PathEscape(jobID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.username, c.accessKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	// Drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
