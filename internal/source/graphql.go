package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/shurcooL/graphql"

	"github.com/five82/roster/internal/query"
)

// GraphQLClient reads users from a GraphQL endpoint exposing a Relay-style
// connection: users(first: Int!, after: String) { pageInfo nodes }.
type GraphQLClient struct {
	client *graphql.Client
}

// NewGraphQLClient builds a client for endpoint.
func NewGraphQLClient(endpoint string) (*GraphQLClient, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("graphql endpoint is required")
	}
	httpClient := &http.Client{
		Timeout:   requestTimeout,
		Transport: &userAgentTransport{base: http.DefaultTransport, userAgent: defaultUserAgent},
	}
	return &GraphQLClient{client: graphql.NewClient(endpoint, httpClient)}, nil
}

// FetchUsers retrieves one page of up to first users after cursor. An empty
// cursor starts from the beginning.
func (c *GraphQLClient) FetchUsers(ctx context.Context, first int, after string) (UserPage, error) {
	var q struct {
		Users struct {
			PageInfo struct {
				HasNextPage bool
				EndCursor   string
			}
			Nodes []struct {
				ID       int
				Name     string
				Username string
				Email    string
				Company  struct {
					Name string
				}
			}
		} `graphql:"users(first: $first, after: $after)"`
	}

	var cursor *graphql.String
	if after != "" {
		cursor = graphql.NewString(graphql.String(after))
	}
	variables := map[string]any{
		"first": graphql.Int(first),
		"after": cursor,
	}
	if err := c.client.Query(ctx, &q, variables); err != nil {
		return UserPage{}, fmt.Errorf("graphql users query: %w", err)
	}

	page := UserPage{
		Users:      make([]User, 0, len(q.Users.Nodes)),
		HasMore:    q.Users.PageInfo.HasNextPage,
		NextCursor: q.Users.PageInfo.EndCursor,
	}
	for _, n := range q.Users.Nodes {
		page.Users = append(page.Users, User{
			ID:       n.ID,
			Name:     n.Name,
			Username: n.Username,
			Email:    n.Email,
			Company:  Company{Name: n.Company.Name},
		})
	}
	return page, nil
}

// Fetcher adapts the client to a query. Params "first" (default pageSize) and
// "after" are read. When "exhausted" is set the fetcher returns an empty page
// holding the same cursor without calling the server.
func (c *GraphQLClient) Fetcher(pageSize int) query.Fetcher[UserPage] {
	return func(ctx context.Context, p query.Params) (UserPage, error) {
		after := p.String("after", "")
		if done, _ := p[exhaustedParam].(bool); done {
			return UserPage{NextCursor: after}, nil
		}
		return c.FetchUsers(ctx, p.Int("first", pageSize), after)
	}
}

const exhaustedParam = "exhausted"

// CursorParams is the fetch-more ParamsFunc for cursor pagination: the next
// page starts after the accumulated result's cursor. Once the server reports
// no further pages the params mark the connection exhausted, so fetching more
// past the end appends nothing instead of restarting from the first page.
func CursorParams(s query.State[UserPage]) query.Params {
	if !s.HasResult {
		return query.Params{}
	}
	params := query.Params{}.With("after", s.Result.NextCursor)
	if !s.Result.HasMore || s.Result.NextCursor == "" {
		return params.With(exhaustedParam, true)
	}
	return params
}

type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(clone)
}
