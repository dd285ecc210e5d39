// Package source provides the data sources roster queries read from.
//
// Two transports are supported:
//
//   - Client speaks to a JSON REST users endpoint that paginates with
//     _start/_limit query parameters. Its fetcher pairs with the query
//     package's default fetch-more behaviour: the next page starts at the
//     number of users already accumulated and pages are concatenated.
//   - GraphQLClient speaks to a Relay-style users connection. Its fetcher
//     needs CursorParams as the query's UpdateParams so fetch-more requests
//     continue after the last page's end cursor.
//
// Both produce UserPage values, which implement query.Lengther and
// query.Appender so merged results never alias an earlier page's slice.
package source
