// internal/repository/appwrite/client.go
package appwrite

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

	"tusafishe-service/internal/config"
	"tusafishe-service/internal/domain/diagnostics"
	xerrors "tusafishe-service/internal/pkg/errors"
)

// Client talks to the Appwrite databases REST API with a server API key.
type Client struct {
	endpoint   string
	projectID  string
	databaseID string
	apiKey     string
	httpClient *http.Client
}

func NewClient(cfg config.AppwriteConfig, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		projectID:  cfg.ProjectID,
		databaseID: cfg.DatabaseID,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// APIError is a non-2xx answer from Appwrite.
type APIError struct {
	StatusCode int
	Message    string
	Type       string
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("appwrite returned %d (%s): %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("appwrite returned %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return xerrors.ErrNotFound
	}
	return xerrors.ErrUpstream
}

type collectionList struct {
	Total       int `json:"total"`
	Collections []struct {
		ID   string `json:"$id"`
		Name string `json:"name"`
	} `json:"collections"`
}

// ListCollections returns the collections of the configured database.
func (c *Client) ListCollections(ctx context.Context) (*diagnostics.CollectionSummary, error) {
	var list collectionList
	if err := c.do(ctx, http.MethodGet, c.databasePath("collections"), nil, &list); err != nil {
		return nil, err
	}

	summary := &diagnostics.CollectionSummary{Total: list.Total, Names: make([]string, 0, len(list.Collections))}
	for _, col := range list.Collections {
		summary.Names = append(summary.Names, col.Name)
	}
	return summary, nil
}

func (c *Client) databasePath(parts ...string) string {
	segments := append([]string{"databases", url.PathEscape(c.databaseID)}, parts...)
	return "/" + strings.Join(segments, "/")
}

// do sends a request and decodes a 2xx JSON body into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return fmt.Errorf("failed to create http request: %w", err)
	}
	c.setHeaders(req, payload != nil)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to appwrite: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.handleErrorResponse(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode appwrite response: %w", err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request, hasBody bool) {
	req.Header.Set("X-Appwrite-Project", c.projectID)
	req.Header.Set("X-Appwrite-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
}

func (c *Client) handleErrorResponse(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var apiErr struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	}
	if err := json.Unmarshal(raw, &apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(raw))
	}

	return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Message, Type: apiErr.Type}
}
