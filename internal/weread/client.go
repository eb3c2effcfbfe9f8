package weread

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultBaseURL = "https://weread.qq.com"
	DefaultAPIURL  = "https://i.weread.qq.com"

	defaultTimeout = 30 * time.Second
	userAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

const (
	notebooksPath    = "/user/notebooks"
	bookmarkListPath = "/book/bookmarklist"
	chapterInfosPath = "/book/chapterInfos"
	readInfoPath     = "/book/readinfo"
	reviewListPath   = "/review/list"
	bookInfoPath     = "/book/info"
)

// Options configures a Client. Zero values fall back to the public WeRead
// hosts and a 30s timeout.
type Options struct {
	BaseURL string
	APIURL  string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// Client talks to the private WeRead API on behalf of the cookie owner.
// It is built once per run and shared read-only afterwards.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiURL     string
	logger     zerolog.Logger
}

// NewClient creates a client whose session is seeded from a raw cookie
// header string as copied from the browser.
func NewClient(cookie string, opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.APIURL == "" {
		opts.APIURL = DefaultAPIURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = defaultTimeout
	}

	jar, err := newSessionJar(cookie, opts.BaseURL, opts.APIURL)
	if err != nil {
		return nil, err
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			Jar:     jar,
		},
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiURL:  strings.TrimRight(opts.APIURL, "/"),
		logger:  opts.Logger.With().Str("component", "weread").Logger(),
	}, nil
}

// BaseURL returns the web host used for deep links.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Bootstrap visits the web home page so the platform can refresh session
// cookies before any API call.
func (c *Client) Bootstrap(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("bootstrap request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Endpoint: "/", StatusCode: resp.StatusCode}
	}
	return nil
}

// Notebooks returns every book the user has annotated, ordered by ascending
// recency.
func (c *Client) Notebooks(ctx context.Context) ([]Book, error) {
	var resp notebooksResponse
	if err := c.getJSON(ctx, notebooksPath, nil, &resp); err != nil {
		return nil, err
	}

	books := make([]Book, 0, len(resp.Books))
	for _, entry := range resp.Books {
		books = append(books, entry.toBook())
	}
	sortBooks(books)
	return books, nil
}

// Bookmarks returns the highlights of a book in platform order.
func (c *Client) Bookmarks(ctx context.Context, bookID string) ([]Highlight, error) {
	var resp bookmarkListResponse
	q := url.Values{"bookId": {bookID}}
	if err := c.getJSON(ctx, bookmarkListPath, q, &resp); err != nil {
		return nil, err
	}

	highlights := make([]Highlight, 0, len(resp.Updated))
	for _, entry := range resp.Updated {
		highlights = append(highlights, entry.toHighlight())
	}
	return highlights, nil
}

// ChapterInfos returns the chapters of a book keyed by chapter uid. A nil
// map with a nil error means the book has no chapter structure.
func (c *Client) ChapterInfos(ctx context.Context, bookID string) (map[int]Chapter, error) {
	body := chapterInfosRequest{
		BookIDs:  []string{bookID},
		SyncKeys: []int{0},
		TeenMode: 0,
	}
	var resp chapterInfosResponse
	if err := c.postJSON(ctx, chapterInfosPath, body, &resp); err != nil {
		return nil, err
	}

	if len(resp.Data) != 1 || resp.Data[0].Updated == nil {
		return nil, nil
	}

	chapters := make(map[int]Chapter, len(*resp.Data[0].Updated))
	for _, entry := range *resp.Data[0].Updated {
		chapters[entry.ChapterUID] = Chapter{
			ChapterUID: entry.ChapterUID,
			Level:      entry.Level,
			Title:      entry.Title,
		}
	}
	return chapters, nil
}

// ReadInfo returns the reading progress of a book.
func (c *Client) ReadInfo(ctx context.Context, bookID string) (*ReadInfo, error) {
	q := url.Values{
		"bookId":           {bookID},
		"readingDetail":    {"1"},
		"readingBookIndex": {"1"},
		"finishedDate":     {"1"},
	}
	var resp readInfoResponse
	if err := c.getJSON(ctx, readInfoPath, q, &resp); err != nil {
		return nil, err
	}

	return &ReadInfo{
		MarkedStatus:    resp.MarkedStatus,
		ReadingTime:     resp.ReadingTime,
		ReadingProgress: resp.ReadingProgress,
		FinishedDate:    resp.FinishedDate,
	}, nil
}

// Reviews returns the user's whole-book summaries and positional notes.
func (c *Client) Reviews(ctx context.Context, bookID string) ([]Summary, []ReviewNote, error) {
	q := url.Values{
		"bookId":   {bookID},
		"listType": {"11"},
		"mine":     {"1"},
		"syncKey":  {"0"},
	}
	var resp reviewListResponse
	if err := c.getJSON(ctx, reviewListPath, q, &resp); err != nil {
		return nil, nil, err
	}

	summaries, notes := splitReviews(resp.Reviews)
	return summaries, notes, nil
}

// BookInfo returns the ISBN and the rating of a book. The rating is
// reported by the platform in thousandths.
func (c *Client) BookInfo(ctx context.Context, bookID string) (BookInfo, error) {
	var resp bookInfoResponse
	q := url.Values{"bookId": {bookID}}
	if err := c.getJSON(ctx, bookInfoPath, q, &resp); err != nil {
		return BookInfo{}, err
	}

	return BookInfo{
		ISBN:   resp.ISBN,
		Rating: float64(resp.NewRating) / 1000,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := c.apiURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, path, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, path, out)
}

func (c *Client) do(req *http.Request, endpoint string, out any) error {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", endpoint, err)
	}

	if resp.StatusCode != http.StatusOK {
		return c.statusError(endpoint, resp.StatusCode, body)
	}

	// Some endpoints answer 200 with an errcode body once the login lapses.
	var apiErr errorResponse
	if json.Unmarshal(body, &apiErr) == nil && isSessionErrCode(apiErr.ErrCode) {
		return fmt.Errorf("%s: %w", endpoint, ErrSessionExpired)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}

func (c *Client) statusError(endpoint string, status int, body []byte) error {
	var apiErr errorResponse
	_ = json.Unmarshal(body, &apiErr)

	if status == http.StatusUnauthorized || isSessionErrCode(apiErr.ErrCode) {
		return fmt.Errorf("%s: %w", endpoint, ErrSessionExpired)
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Int("status", status).
		Bytes("body", body).
		Msg("non-OK response")

	return &StatusError{
		Endpoint:   endpoint,
		StatusCode: status,
		ErrCode:    apiErr.ErrCode,
		ErrMsg:     apiErr.ErrMsg,
	}
}

func isSessionErrCode(code int) bool {
	return code == errCodeLoginTimeout || code == errCodeNotLoggedIn
}

// newSessionJar seeds a cookie jar with the cookies of a raw header string
// for both the web and the API host.
func newSessionJar(cookie string, origins ...string) (*cookiejar.Jar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	cookies := ParseCookies(cookie)
	for _, origin := range origins {
		u, err := url.Parse(origin)
		if err != nil {
			return nil, fmt.Errorf("invalid origin %q: %w", origin, err)
		}
		jar.SetCookies(u, cookies)
	}
	return jar, nil
}

// ParseCookies parses a "k1=v1; k2=v2" header string. Malformed pairs are
// skipped.
func ParseCookies(raw string) []*http.Cookie {
	header := http.Header{}
	header.Add("Cookie", raw)
	req := http.Request{Header: header}
	return req.Cookies()
}
