// Package spacedevs is a client for the Space Devs Launch Library 2 API.
//
// Results are paginated server side. The fetch methods follow the `next` link of every page
// and hand each page to a callback, so callers can merge records while the rest is still
// being downloaded.
package spacedevs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/gzip"
	"github.com/remix-astronautics/shockwave/domain"
	"github.com/tidwall/gjson"
)

const (
	// DefaultBaseURL is the production endpoint of Launch Library 2.2.0.
	DefaultBaseURL = "https://ll.thespacedevs.com/2.2.0"
	// DefaultUserAgent identifies the client to the API.
	DefaultUserAgent = "SHOCKWAVE PLANNER/2.0"
	// DefaultTimeout bounds a single HTTP request.
	DefaultTimeout = 30 * time.Second
	// MaxPageSize is the largest page the API serves.
	MaxPageSize = 100
)

var (
	// ErrTransport is returned when the API cannot be reached or answers with a non-2xx status.
	ErrTransport = errors.New("space devs transport error")
	// ErrMalformedResponse is returned when a response body is not the expected JSON document.
	ErrMalformedResponse = errors.New("malformed space devs response")
	// ErrMalformedRecord is returned for a single launch record that cannot be parsed.
	ErrMalformedRecord = errors.New("malformed launch record")
)

// Client talks to the Launch Library API.
type Client struct {
	baseURL    string
	userAgent  string
	token      string
	pageSize   int
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client) error

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) error {
		if _, err := url.ParseRequestURI(baseURL); err != nil {
			return fmt.Errorf("parsing base url %q: %w", baseURL, err)
		}
		c.baseURL = strings.TrimRight(baseURL, "/")
		return nil
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) error {
		if userAgent != "" {
			c.userAgent = userAgent
		}
		return nil
	}
}

// WithToken sets the API token. Requests are anonymous without one.
func WithToken(token string) Option {
	return func(c *Client) error {
		c.token = token
		return nil
	}
}

// WithTimeout sets the timeout of a single HTTP request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) error {
		if timeout <= 0 {
			return fmt.Errorf("timeout must be positive, got %s", timeout)
		}
		c.httpClient.Timeout = timeout
		return nil
	}
}

// WithPageSize sets the number of records requested per page, capped at MaxPageSize.
func WithPageSize(size int) Option {
	return func(c *Client) error {
		if size <= 0 {
			return fmt.Errorf("page size must be positive, got %d", size)
		}
		c.pageSize = min(size, MaxPageSize)
		return nil
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) error {
		if httpClient == nil {
			return errors.New("http client is nil")
		}
		c.httpClient = httpClient
		return nil
	}
}

// NewClient creates a client for the public API.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:    DefaultBaseURL,
		userAgent:  DefaultUserAgent,
		pageSize:   MaxPageSize,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("applying option: %w", err)
		}
	}
	return c, nil
}

// Page is one page of launch records.
type Page struct {
	Offset   int                    // position of the first record in the whole result
	Total    int                    // total number of records the API reports for the query
	Launches []*domain.SyncedLaunch // records that parsed
	Errors   []error                // one entry per record that did not parse
}

// Len returns the number of records on the page, parsed or not.
func (p *Page) Len() int {
	return len(p.Launches) + len(p.Errors)
}

// PageFunc receives each page as it arrives. Returning an error stops the pagination.
type PageFunc func(page *Page) error

// FetchUpcoming fetches up to limit upcoming launches.
func (c *Client) FetchUpcoming(ctx context.Context, limit int, fn PageFunc) error {
	return c.paginate(ctx, "/launch/upcoming/", url.Values{}, limit, fn)
}

// FetchPrevious fetches up to limit past launches, newest first.
func (c *Client) FetchPrevious(ctx context.Context, limit int, fn PageFunc) error {
	return c.paginate(ctx, "/launch/previous/", url.Values{}, limit, fn)
}

// FetchRange fetches launches whose NET lies between start and end (YYYY-MM-DD, inclusive,
// UTC days), stopping after maxRecords records. A maxRecords of 0 follows the pagination to
// the end.
func (c *Client) FetchRange(ctx context.Context, start, end string, maxRecords int, fn PageFunc) error {
	params := url.Values{}
	params.Set("net__gte", start+"T00:00:00Z")
	params.Set("net__lte", end+"T23:59:59Z")
	params.Set("ordering", "net")
	return c.paginate(ctx, "/launch/", params, maxRecords, fn)
}

// Search returns up to limit launches matching a free-text query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]*domain.SyncedLaunch, error) {
	params := url.Values{}
	params.Set("search", query)

	var launches []*domain.SyncedLaunch
	err := c.paginate(ctx, "/launch/", params, limit, func(page *Page) error {
		launches = append(launches, page.Launches...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return launches, nil
}

// FetchLauncher fetches the details of a launcher configuration.
func (c *Client) FetchLauncher(ctx context.Context, id string) (*domain.Rocket, error) {
	if id == "" {
		return nil, errors.New("fetching launcher: empty id")
	}

	body, err := c.get(ctx, c.baseURL+"/config/launcher/"+url.PathEscape(id)+"/")
	if err != nil {
		return nil, err
	}
	return parseLauncher(gjson.ParseBytes(body), id), nil
}

// paginate requests pages of path until limit records were delivered or the API has no next page.
func (c *Client) paginate(ctx context.Context, path string, params url.Values, limit int, fn PageFunc) error {
	params.Set("mode", "detailed")
	params.Set("limit", strconv.Itoa(c.pageLimit(limit, 0)))
	params.Set("offset", "0")
	next := c.baseURL + path + "?" + params.Encode()

	fetched := 0
	for next != "" {
		body, err := c.get(ctx, next)
		if err != nil {
			return err
		}

		doc := gjson.ParseBytes(body)
		results := doc.Get("results")
		if !results.IsArray() {
			return fmt.Errorf("%w: %s has no results array", ErrMalformedResponse, next)
		}

		records := results.Array()
		if limit > 0 && fetched+len(records) > limit {
			records = records[:limit-fetched]
		}

		page := &Page{Offset: fetched, Total: int(doc.Get("count").Int())}
		for _, record := range records {
			launch, err := ParseLaunch(record)
			if err != nil {
				page.Errors = append(page.Errors, err)
				continue
			}
			page.Launches = append(page.Launches, launch)
		}
		fetched += len(records)

		if err := fn(page); err != nil {
			return err
		}

		if len(records) == 0 || (limit > 0 && fetched >= limit) {
			return nil
		}

		next, err = c.nextURL(doc.Get("next").String(), limit, fetched)
		if err != nil {
			return err
		}
	}
	return nil
}

// pageLimit returns the page size to request when fetched of limit records are already in.
func (c *Client) pageLimit(limit, fetched int) int {
	if limit <= 0 {
		return c.pageSize
	}
	return min(c.pageSize, limit-fetched)
}

// nextURL rewrites the limit of the API's next link so the last page stops at limit.
func (c *Client) nextURL(next string, limit, fetched int) (string, error) {
	if next == "" {
		return "", nil
	}

	u, err := url.Parse(next)
	if err != nil {
		return "", fmt.Errorf("%w: next link %q: %v", ErrMalformedResponse, next, err)
	}
	query := u.Query()
	query.Set("limit", strconv.Itoa(c.pageLimit(limit, fetched)))
	u.RawQuery = query.Encode()
	return u.String(), nil
}

// get performs a GET request and returns the decoded JSON body.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "br, gzip")
	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: getting %s: %v", ErrTransport, rawURL, err)
	}
	defer res.Body.Close()

	body, err := decodeBody(res)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrTransport, rawURL, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %s", ErrTransport, rawURL, res.Status)
	}

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: %s returned %s instead of JSON", ErrMalformedResponse, rawURL, mimetype.Detect(body).String())
	}
	return body, nil
}

// decodeBody reads the response body, undoing gzip and brotli content encoding.
func decodeBody(res *http.Response) ([]byte, error) {
	var reader io.Reader = res.Body

	switch strings.ToLower(res.Header.Get("Content-Encoding")) {
	case "", "identity":
	case "gzip":
		gzipReader, err := gzip.NewReader(res.Body)
		if err != nil {
			return nil, fmt.Errorf("creating gzip reader: %w", err)
		}
		defer gzipReader.Close()
		reader = gzipReader
	case "br":
		reader = brotli.NewReader(res.Body)
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", res.Header.Get("Content-Encoding"))
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	return body, nil
}
