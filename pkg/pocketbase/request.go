package pocketbase

import (
	"net/http"
	"net/url"
	"strings"
)

// QueryParam is a single query string entry.
type QueryParam struct {
	Key   string
	Value string
}

// Query is an ordered list of query parameters. Keys may repeat.
type Query []QueryParam

// NewQuery builds a query from alternating key, value pairs.
func NewQuery(pairs ...string) Query {
	query := make(Query, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		query = append(query, QueryParam{Key: pairs[i], Value: pairs[i+1]})
	}

	return query
}

// Add appends a value for key.
func (q *Query) Add(key, value string) {
	*q = append(*q, QueryParam{Key: key, Value: value})
}

// Set replaces the first value for key in place and drops later duplicates.
// The pair is appended when key is absent.
func (q *Query) Set(key, value string) {
	out := (*q)[:0:0]
	found := false

	for _, param := range *q {
		if param.Key != key {
			out = append(out, param)

			continue
		}

		if !found {
			out = append(out, QueryParam{Key: key, Value: value})
			found = true
		}
	}

	if !found {
		out = append(out, QueryParam{Key: key, Value: value})
	}

	*q = out
}

// Get returns the first value for key.
func (q Query) Get(key string) string {
	for _, param := range q {
		if param.Key == key {
			return param.Value
		}
	}

	return ""
}

// Values returns every value for key in order.
func (q Query) Values(key string) []string {
	var values []string

	for _, param := range q {
		if param.Key == key {
			values = append(values, param.Value)
		}
	}

	return values
}

// Has reports whether key is present.
func (q Query) Has(key string) bool {
	for _, param := range q {
		if param.Key == key {
			return true
		}
	}

	return false
}

// Del removes every value for key.
func (q *Query) Del(key string) {
	out := (*q)[:0:0]

	for _, param := range *q {
		if param.Key != key {
			out = append(out, param)
		}
	}

	*q = out
}

// Merge overlays other onto q. Keys already present are replaced at the
// position of their first occurrence by all of other's values for that key;
// new keys are appended in the order other lists them.
func (q *Query) Merge(other Query) {
	if len(other) == 0 {
		return
	}

	overrides := make(map[string][]string)
	order := make([]string, 0, len(other))

	for _, param := range other {
		if _, seen := overrides[param.Key]; !seen {
			order = append(order, param.Key)
		}

		overrides[param.Key] = append(overrides[param.Key], param.Value)
	}

	out := make(Query, 0, len(*q)+len(other))
	emitted := make(map[string]bool, len(order))

	for _, param := range *q {
		values, overridden := overrides[param.Key]
		if !overridden {
			out = append(out, param)

			continue
		}

		if emitted[param.Key] {
			continue
		}

		for _, value := range values {
			out = append(out, QueryParam{Key: param.Key, Value: value})
		}

		emitted[param.Key] = true
	}

	for _, key := range order {
		if emitted[key] {
			continue
		}

		for _, value := range overrides[key] {
			out = append(out, QueryParam{Key: key, Value: value})
		}
	}

	*q = out
}

// Clone returns an independent copy.
func (q Query) Clone() Query {
	if q == nil {
		return nil
	}

	out := make(Query, len(q))
	copy(out, q)

	return out
}

// Encode renders the query in insertion order.
func (q Query) Encode() string {
	var builder strings.Builder

	for i, param := range q {
		if i > 0 {
			builder.WriteByte('&')
		}

		builder.WriteString(url.QueryEscape(param.Key))
		builder.WriteByte('=')
		builder.WriteString(url.QueryEscape(param.Value))
	}

	return builder.String()
}

// Request describes a single outbound exchange. Middlewares operate on a
// clone, so a descriptor handed to the chain is never modified.
type Request struct {
	Method string
	// Path is relative to the client base URL, for example "/api/health".
	Path string
	// URL is the absolute URL, filled in by the base URL resolver.
	URL          string
	Query        Query
	Headers      http.Header
	Body         []byte
	ContentType  string
	RequiresAuth bool
	Metadata     map[string]interface{}
}

// NewRequest creates a request descriptor.
func NewRequest(method, path string) *Request {
	return &Request{
		Method:   method,
		Path:     path,
		Headers:  make(http.Header),
		Metadata: make(map[string]interface{}),
	}
}

// Clone returns a deep copy of the descriptor.
func (r *Request) Clone() *Request {
	clone := *r
	clone.Query = r.Query.Clone()
	clone.Headers = r.Headers.Clone()

	if clone.Headers == nil {
		clone.Headers = make(http.Header)
	}

	if r.Body != nil {
		clone.Body = append([]byte(nil), r.Body...)
	}

	clone.Metadata = make(map[string]interface{}, len(r.Metadata))
	for key, value := range r.Metadata {
		clone.Metadata[key] = value
	}

	return &clone
}

// FullURL returns URL with the encoded query appended.
func (r *Request) FullURL() string {
	if len(r.Query) == 0 {
		return r.URL
	}

	return r.URL + "?" + r.Query.Encode()
}

// Response is the raw result of an exchange.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// IsSuccess reports whether the status is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}
