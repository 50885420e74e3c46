package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Sri-Rahul/linkanalysis/internal/domain"
)

// Client represents an HTTP client for the link service API
type Client struct {
	serverURL  string
	ownerID    string
	httpClient *http.Client
}

// NewClient creates a new link service client. ownerID may be empty
// for anonymous operations.
func NewClient(serverURL, ownerID string) *Client {
	return &Client{
		serverURL: serverURL,
		ownerID:   ownerID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewBuffer(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.serverURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.ownerID != "" {
		req.Header.Set("X-Owner-ID", c.ownerID)
	}
	return req, nil
}

// CreateLink creates a short link
func (c *Client) CreateLink(ctx context.Context, req domain.CreateLinkRequest) (*domain.LinkInfo, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, "/api/urls", jsonData)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return nil, fmt.Errorf("alias '%s' is already taken", req.CustomAlias)
	}

	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	var result domain.LinkInfo
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

// GetLink retrieves information about a short link
func (c *Client) GetLink(ctx context.Context, code string) (*domain.LinkInfo, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/urls/"+code, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("code '%s' not found", code)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	var info domain.LinkInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &info, nil
}

// DeleteLink deletes a short link
func (c *Client) DeleteLink(ctx context.Context, code string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/api/urls/"+code, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	return nil
}

// ListLinks retrieves all links for the client's owner
func (c *Client) ListLinks(ctx context.Context) ([]*domain.LinkInfo, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/urls", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	var infos []*domain.LinkInfo
	if err := json.NewDecoder(resp.Body).Decode(&infos); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return infos, nil
}

// Summary retrieves the analytics summary for the client's owner
func (c *Client) Summary(ctx context.Context) (*domain.AnalyticsSummary, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/analytics/summary", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	var summary domain.AnalyticsSummary
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &summary, nil
}

// ClicksOverTime retrieves the per-day click series for a code
func (c *Client) ClicksOverTime(ctx context.Context, code, window string) ([]domain.SeriesPoint, error) {
	path := "/api/analytics/urls/" + code + "/clicks"
	if window != "" {
		path += "?window=" + window
	}

	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("code '%s' not found", code)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	var series []domain.SeriesPoint
	if err := json.NewDecoder(resp.Body).Decode(&series); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return series, nil
}
