package upag

import (
	"net/url"
	"strconv"
)

// query collects list filters. Only values that were explicitly set are
// encoded, so a nil pointer never produces an empty key.
type query struct {
	values url.Values
}

func newQuery() *query {
	return &query{values: url.Values{}}
}

func (q *query) setInt(key string, v *int) *query {
	if v != nil {
		q.values.Set(key, strconv.Itoa(*v))
	}
	return q
}

func (q *query) setString(key string, v *string) *query {
	if v != nil {
		q.values.Set(key, *v)
	}
	return q
}

// encode returns "?k=v&..." with keys sorted, or "" when nothing was set.
func (q *query) encode() string {
	if len(q.values) == 0 {
		return ""
	}
	return "?" + q.values.Encode()
}

// resourcePath joins a base path with escaped id segments. Empty ids are
// skipped, so resourcePath("/customers", "") is "/customers".
func resourcePath(base string, ids ...string) string {
	path := base
	for _, id := range ids {
		if id == "" {
			continue
		}
		path += "/" + url.PathEscape(id)
	}
	return path
}
