package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/five82/roster/internal/query"
)

// Client talks to a JSON users API that paginates with _start/_limit query
// parameters (jsonplaceholder style).
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	DefaultBaseURL   = "https://jsonplaceholder.typicode.com"
	defaultUserAgent = "roster/0.1"
	requestTimeout   = 10 * time.Second
)

// NewClient builds a Client for baseURL. An empty value uses DefaultBaseURL.
func NewClient(baseURL string) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// FetchUsers retrieves up to limit users starting at offset start.
func (c *Client) FetchUsers(ctx context.Context, start, limit int) ([]User, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if start < 0 {
		return nil, fmt.Errorf("start must not be negative")
	}
	values := url.Values{}
	values.Set("_start", strconv.Itoa(start))
	if limit > 0 {
		values.Set("_limit", strconv.Itoa(limit))
	}
	rel := &url.URL{Path: "users", RawQuery: values.Encode()}

	var users []User
	if err := c.doURL(ctx, http.MethodGet, rel, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Fetcher adapts the client to a query. Params "start" and "limit" are read
// with pageSize as the default limit.
func (c *Client) Fetcher(pageSize int) query.Fetcher[UserPage] {
	return func(ctx context.Context, p query.Params) (UserPage, error) {
		limit := p.Int("limit", pageSize)
		users, err := c.FetchUsers(ctx, p.Int("start", 0), limit)
		if err != nil {
			return UserPage{}, err
		}
		return UserPage{Users: users, HasMore: limit > 0 && len(users) >= limit}, nil
	}
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("api %s returned status %d", rel.String(), resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// parseBaseURL keeps any path prefix (so relative endpoints resolve beneath
// it) and drops query and fragment.
func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
