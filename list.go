package upag

// ListParams selects a page of a list endpoint. Nil fields are omitted from
// the query string and the server defaults apply.
type ListParams struct {
	Limit *int
	Page  *int
}

func (p *ListParams) apply(q *query) *query {
	if p == nil {
		return q
	}
	return q.setInt("limit", p.Limit).setInt("page", p.Page)
}

// ListResponse is one page of a list endpoint, in server order.
type ListResponse[T any] struct {
	Data    []T  `json:"data"`
	HasMore bool `json:"hasMore"`
	Total   *int `json:"total,omitempty"`
}

// Int returns a pointer to v, for optional integer parameters.
func Int(v int) *int {
	return &v
}

// String returns a pointer to v, for optional string parameters.
func String(v string) *string {
	return &v
}
