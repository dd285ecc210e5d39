package source

import "github.com/five82/roster/internal/query"

// User mirrors a record from the users endpoint.
type User struct {
	ID       int     `json:"id" yaml:"id"`
	Name     string  `json:"name" yaml:"name"`
	Username string  `json:"username" yaml:"username"`
	Email    string  `json:"email" yaml:"email"`
	Company  Company `json:"company" yaml:"company"`
}

// Company is the nested employer record.
type Company struct {
	Name string `json:"name" yaml:"name"`
}

// UserPage is the accumulated user list of a query. It is sequence-shaped, so
// the default fetch-more params ({"start": n}) and merge (concatenation) apply
// to offset-paginated sources without overrides.
type UserPage struct {
	Users []User `json:"users" yaml:"users"`
	// HasMore is false once a source returns a short or final page.
	HasMore bool `json:"has_more" yaml:"has_more"`
	// NextCursor is set by cursor-paginated sources.
	NextCursor string `json:"next_cursor,omitempty" yaml:"next_cursor,omitempty"`
}

var (
	_ query.Lengther           = UserPage{}
	_ query.Appender[UserPage] = UserPage{}
)

// Len reports the number of accumulated users.
func (p UserPage) Len() int { return len(p.Users) }

// Append returns a new page with next's users after p's. Paging metadata is
// taken from next.
func (p UserPage) Append(next UserPage) UserPage {
	users := make([]User, 0, len(p.Users)+len(next.Users))
	users = append(users, p.Users...)
	users = append(users, next.Users...)
	return UserPage{Users: users, HasMore: next.HasMore, NextCursor: next.NextCursor}
}
