package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rosshadden/emcee/internal/domain/addon"
)

const (
	// DefaultGameID is the catalog identifier of the host application.
	DefaultGameID = 432

	// DefaultCallTimeout bounds a single metadata call.
	DefaultCallTimeout = 30 * time.Second

	// anyCategory disables category filtering.
	anyCategory = 0
	// pageSize is the number of search results requested.
	pageSize = 25
	// relevanceSort orders search results by catalog relevance.
	relevanceSort = 0
)

var (
	// errBaseURLRequired is returned when the base URL is empty.
	errBaseURLRequired = errors.New("catalog base URL must be provided")
	// errBaseURLNotAbsolute is returned for relative base URLs.
	errBaseURLNotAbsolute = errors.New("catalog base URL must be absolute")
)

// HTTPClient is the subset of *http.Client the catalog needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client queries the catalog.
type Client struct {
	// baseURL is the API root every path is joined to.
	baseURL *url.URL
	// gameID selects the host application.
	gameID int
	// httpClient performs the requests.
	httpClient HTTPClient
	// callTimeout bounds search and file metadata calls.
	callTimeout time.Duration
	// userAgent is sent with every request when set.
	userAgent string
}

// Option configures client behaviour.
type Option func(*Client)

// WithGameID overrides the host application identifier.
func WithGameID(id int) Option {
	return func(c *Client) {
		if id > 0 {
			c.gameID = id
		}
	}
}

// WithHTTPClient sets the HTTP client used for every call.
func WithHTTPClient(h HTTPClient) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithCallTimeout sets a timeout for metadata calls. Downloads are not affected.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// New creates a catalog client rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errBaseURLRequired
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse catalog base URL: %w", err)
	}

	if !parsed.IsAbs() {
		return nil, fmt.Errorf("%w: %s", errBaseURLNotAbsolute, baseURL)
	}

	c := &Client{
		baseURL:     parsed,
		gameID:      DefaultGameID,
		httpClient:  http.DefaultClient,
		callTimeout: DefaultCallTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Search queries the catalog for name among files built for gameVersion.
// Results keep the catalog's relevance order.
func (c *Client) Search(ctx context.Context, name, gameVersion string) ([]addon.CatalogEntry, error) {
	query := url.Values{}
	query.Set("categoryId", strconv.Itoa(anyCategory))
	query.Set("gameId", strconv.Itoa(c.gameID))
	query.Set("gameVersion", gameVersion)
	query.Set("index", "0")
	query.Set("pageSize", strconv.Itoa(pageSize))
	query.Set("searchFilter", name)
	query.Set("sort", strconv.Itoa(relevanceSort))

	endpoint := c.endpoint(query, "addon", "search")

	var items []searchItem
	if err := c.getJSON(ctx, endpoint, &items); err != nil {
		if errors.Is(err, addon.ErrNotFound) {
			// A missing search endpoint is an outage, not a missing item.
			return nil, fmt.Errorf("search %q: %w: %s", name, addon.ErrCatalogUnavailable, endpoint)
		}

		return nil, fmt.Errorf("search %q: %w", name, err)
	}

	entries := make([]addon.CatalogEntry, 0, len(items))
	for i := range items {
		entries = append(entries, items[i].toEntry())
	}

	return entries, nil
}

// ResolveDownloadURL returns the direct download location of one file of an entry.
func (c *Client) ResolveDownloadURL(ctx context.Context, entryID, fileID int64) (string, error) {
	endpoint := c.endpoint(nil,
		"addon", strconv.FormatInt(entryID, 10),
		"file", strconv.FormatInt(fileID, 10))

	var file fileInfo
	if err := c.getJSON(ctx, endpoint, &file); err != nil {
		return "", fmt.Errorf("resolve file %d of entry %d: %w", fileID, entryID, err)
	}

	if file.DownloadURL == "" {
		return "", fmt.Errorf("file %d of entry %d has no download URL: %w", fileID, entryID, addon.ErrNotFound)
	}

	return file.DownloadURL, nil
}

// Download opens the body of a resolved download location. The caller closes it.
// The returned size is -1 when the server does not announce one.
func (c *Client) Download(ctx context.Context, downloadURL string) (io.ReadCloser, int64, error) {
	req, err := c.newRequest(ctx, downloadURL)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", addon.ErrDownloadFailure, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: get %s: %w", addon.ErrDownloadFailure, downloadURL, err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()

		return nil, 0, fmt.Errorf("%w: get %s: %s", addon.ErrDownloadFailure, downloadURL, resp.Status)
	}

	return resp.Body, resp.ContentLength, nil
}

// getJSON performs a bounded GET and decodes the JSON body into target.
func (c *Client) getJSON(ctx context.Context, endpoint string, target any) error {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	req, err := c.newRequest(callCtx, endpoint)
	if err != nil {
		return fmt.Errorf("%w: %w", addon.ErrCatalogUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", addon.ErrCatalogUnavailable, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", addon.ErrNotFound, resp.Status)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: %s", addon.ErrCatalogUnavailable, resp.Status)
	}

	if err = json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("%w: decode response: %w", addon.ErrCatalogUnavailable, err)
	}

	return nil
}

func (c *Client) newRequest(ctx context.Context, endpoint string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	return req, nil
}

// endpoint joins path segments to the base URL and attaches query.
func (c *Client) endpoint(query url.Values, segments ...string) string {
	u := c.baseURL.JoinPath(segments...)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	return u.String()
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
