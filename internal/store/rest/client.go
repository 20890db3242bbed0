// Package rest implements the record stores over an HTTP record API in the
// PostgREST style: filtered selects via query parameters, inserts returning
// representations, and exact counts via Content-Range.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/adnalow/next-level/internal/config"
	"github.com/adnalow/next-level/internal/store"
)

// Client is a thin wrapper over the record API. One instance is shared by
// all table stores.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a record API client.
func NewClient(cfg *config.StoreConfig) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
	}
}

// IsConfigured returns true if the client has valid configuration.
func (c *Client) IsConfigured() bool {
	return c.baseURL != ""
}

// Stores returns the store bundle backed by this client.
func (c *Client) Stores() store.Stores {
	return store.Stores{
		Jobs:         &JobStore{client: c},
		Applications: &ApplicationStore{client: c},
		Badges:       &BadgeStore{client: c},
		UserBadges:   &UserBadgeStore{client: c},
	}
}

func (c *Client) newRequest(ctx context.Context, method, table string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + "/" + table
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return req, nil
}

// selectInto runs a filtered select and decodes the result set into out,
// which must be a pointer to a slice.
func (c *Client) selectInto(ctx context.Context, table string, query url.Values, out interface{}) error {
	req, err := c.newRequest(ctx, http.MethodGet, table, query, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return apiError(table, resp.StatusCode, respBody)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode %s rows: %w", table, err)
	}
	return nil
}

// insert posts a row. The inserted representation is decoded into out when
// out is non-nil.
func (c *Client) insert(ctx context.Context, table string, row interface{}, out interface{}) error {
	bodyBytes, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to marshal %s row: %w", table, err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, table, nil, bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("Prefer", "return=representation")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return apiError(table, resp.StatusCode, respBody)
	}
	if out != nil {
		// Representation comes back as a single-element array.
		raw := bytes.TrimSpace(respBody)
		if len(raw) > 0 && raw[0] == '[' {
			var rows []json.RawMessage
			if err := json.Unmarshal(raw, &rows); err != nil || len(rows) == 0 {
				return fmt.Errorf("failed to decode inserted %s row", table)
			}
			raw = rows[0]
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode inserted %s row: %w", table, err)
		}
	}
	return nil
}

// update patches rows matching the query.
func (c *Client) update(ctx context.Context, table string, query url.Values, patch interface{}) error {
	bodyBytes, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("failed to marshal %s patch: %w", table, err)
	}
	req, err := c.newRequest(ctx, http.MethodPatch, table, query, bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", table, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return apiError(table, resp.StatusCode, respBody)
	}
	return nil
}

// count returns the exact number of rows matching the query, read from the
// Content-Range header.
func (c *Client) count(ctx context.Context, table string, query url.Values) (int, error) {
	req, err := c.newRequest(ctx, http.MethodHead, table, query, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Prefer", "count=exact")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return 0, apiError(table, resp.StatusCode, nil)
	}
	return parseContentRangeCount(resp.Header.Get("Content-Range"))
}

// parseContentRangeCount extracts the total from a "0-24/57" style header.
func parseContentRangeCount(header string) (int, error) {
	idx := strings.LastIndex(header, "/")
	if idx < 0 {
		return 0, fmt.Errorf("missing count in Content-Range %q", header)
	}
	total := header[idx+1:]
	if total == "*" {
		return 0, fmt.Errorf("store did not return an exact count")
	}
	n, err := strconv.Atoi(total)
	if err != nil {
		return 0, fmt.Errorf("invalid count in Content-Range %q", header)
	}
	return n, nil
}

// apiError maps record API failures onto store sentinel errors where a
// domain meaning exists. 409 carries uniqueness violations.
func apiError(table string, status int, body []byte) error {
	switch status {
	case http.StatusConflict:
		return fmt.Errorf("%s: %w", table, store.ErrDuplicate)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", table, store.ErrNotFound)
	}
	return fmt.Errorf("record API error on %s (status %d): %s", table, status, string(body))
}

func eq(value string) string {
	return "eq." + value
}
