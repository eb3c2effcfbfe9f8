// Package notion is a thin client for the parts of the Notion API used to
// write book pages: database queries, page creation, and block children.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultBaseURL = "https://api.notion.com/v1"
	DefaultVersion = "2022-06-28"

	// MaxBlocksPerAppend is the most children one append call accepts.
	MaxBlocksPerAppend = 100

	defaultTimeout = 30 * time.Second
)

// Options configures a Client. Zero values fall back to the public API,
// the pinned API version, and DefaultPaceInterval.
type Options struct {
	BaseURL string
	Version string
	Timeout time.Duration
	Pacer   Pacer
	Logger  zerolog.Logger
}

// Client issues paced requests to the workspace API. Every request waits on
// the pacer first.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	version    string
	pacer      Pacer
	logger     zerolog.Logger
}

// NewClient creates a client authenticated with an integration token.
func NewClient(token string, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Version == "" {
		opts.Version = DefaultVersion
	}
	if opts.Timeout == 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Pacer == nil {
		opts.Pacer = NewPacer(DefaultPaceInterval)
	}

	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		token:      token,
		version:    opts.Version,
		pacer:      opts.Pacer,
		logger:     opts.Logger.With().Str("component", "notion").Logger(),
	}
}

// Page is a page object as returned by queries and page creation.
type Page struct {
	ID         string                     `json:"id"`
	Properties map[string]json.RawMessage `json:"properties"`
}

// QueryRequest is the body of a database query.
type QueryRequest struct {
	Filter   any    `json:"filter,omitempty"`
	Sorts    []Sort `json:"sorts,omitempty"`
	PageSize int    `json:"page_size,omitempty"`
}

// Sort orders query results by a property.
type Sort struct {
	Property  string `json:"property"`
	Direction string `json:"direction"`
}

type queryResponse struct {
	Results []Page `json:"results"`
}

type blockListResponse struct {
	Results []struct {
		ID string `json:"id"`
	} `json:"results"`
}

// QueryDatabase returns the first page of results matching the request.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, query QueryRequest) ([]Page, error) {
	var resp queryResponse
	if err := c.do(ctx, http.MethodPost, "/databases/"+databaseID+"/query", query, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// CreatePage creates a page in a database and returns its id.
func (c *Client) CreatePage(ctx context.Context, databaseID string, icon map[string]any, properties map[string]any) (string, error) {
	body := map[string]any{
		"parent":     map[string]any{"type": "database_id", "database_id": databaseID},
		"properties": properties,
	}
	if icon != nil {
		body["icon"] = icon
	}

	var page Page
	if err := c.do(ctx, http.MethodPost, "/pages", body, &page); err != nil {
		return "", err
	}
	return page.ID, nil
}

// DeleteBlock archives a block or a page.
func (c *Client) DeleteBlock(ctx context.Context, blockID string) error {
	return c.do(ctx, http.MethodDelete, "/blocks/"+blockID, nil, nil)
}

// AppendChildren appends blocks under parentID in batches of at most
// MaxBlocksPerAppend, one paced call per batch, and returns the ids of the
// created blocks in order. It fails with ErrIncompleteAppend unless every
// block was written.
func (c *Client) AppendChildren(ctx context.Context, parentID string, children []map[string]any) ([]string, error) {
	ids := make([]string, 0, len(children))
	for _, batch := range Batches(children, MaxBlocksPerAppend) {
		var resp blockListResponse
		body := map[string]any{"children": batch}
		if err := c.do(ctx, http.MethodPatch, "/blocks/"+parentID+"/children", body, &resp); err != nil {
			return nil, err
		}
		for _, r := range resp.Results {
			ids = append(ids, r.ID)
		}
	}

	if len(ids) != len(children) {
		c.logger.Warn().
			Str("parent_id", parentID).
			Int("requested", len(children)).
			Int("written", len(ids)).
			Msg("append incomplete")
		return nil, fmt.Errorf("%w: %d of %d", ErrIncompleteAppend, len(ids), len(children))
	}
	return ids, nil
}

// AppendGrandchildren writes each attachment as the only child of the block
// at the same index in ids, in ascending index order.
func (c *Client) AppendGrandchildren(ctx context.Context, ids []string, attachments map[int]map[string]any) error {
	keys := make([]int, 0, len(attachments))
	for k := range attachments {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	for _, k := range keys {
		if k < 0 || k >= len(ids) {
			return fmt.Errorf("attachment index %d out of range (%d blocks)", k, len(ids))
		}
		body := map[string]any{"children": []map[string]any{attachments[k]}}
		if err := c.do(ctx, http.MethodPatch, "/blocks/"+ids[k]+"/children", body, nil); err != nil {
			return err
		}
	}
	return nil
}

// Batches slices items into consecutive batches of at most size items.
// No batch is returned for an empty input.
func Batches[T any](items []T, size int) [][]T {
	var out [][]T
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end])
	}
	return out
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.pacer.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", c.version)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	apiErr := &APIError{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Code == "" {
		apiErr.Code = "unknown"
		apiErr.Message = string(body)
	}
	apiErr.StatusCode = resp.StatusCode

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s", ErrUnauthorized, apiErr.Message)
	}
	return apiErr
}
