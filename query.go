package restclient

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/KarpelesLab/typutil"
	"github.com/KarpelesLab/webutil"
)

// QueryParams is an ordered set of query string parameters. Keys are unique:
// adding a key twice fails rather than overwriting the first value.
type QueryParams struct {
	keys   []string
	values map[string]string
}

// NewQueryParams returns an empty parameter set.
func NewQueryParams() *QueryParams {
	return &QueryParams{values: make(map[string]string)}
}

// ParseQueryParams builds a parameter set from a php-style query string such
// as "a=1&b[c]=2". Nested values are flattened to their string form and keys
// are added in sorted order since the parsed form does not keep the original
// ordering.
func ParseQueryParams(query string) (*QueryParams, error) {
	return QueryParamsFromMap(webutil.ParsePhpQuery(query))
}

// QueryParamsFromMap builds a parameter set from m, adding keys in sorted order.
// Values are converted to strings.
func QueryParamsFromMap(m map[string]any) (*QueryParams, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	q := NewQueryParams()
	for _, k := range keys {
		v, ok := typutil.AsString(m[k])
		if !ok {
			v = fmt.Sprintf("%v", m[k])
		}
		if err := q.Add(k, v); err != nil {
			return nil, err
		}
	}
	return q, nil
}

// Add appends a parameter. It returns ErrDuplicateParam if key is already set.
func (q *QueryParams) Add(key, value string) error {
	if q.values == nil {
		q.values = make(map[string]string)
	}
	if _, found := q.values[key]; found {
		return fmt.Errorf("%w: %s", ErrDuplicateParam, key)
	}
	q.keys = append(q.keys, key)
	q.values[key] = value
	return nil
}

// Get returns the value stored for key.
func (q *QueryParams) Get(key string) (string, bool) {
	if q == nil {
		return "", false
	}
	v, ok := q.values[key]
	return v, ok
}

// Len returns the number of parameters.
func (q *QueryParams) Len() int {
	if q == nil {
		return 0
	}
	return len(q.keys)
}

// Keys returns parameter names in insertion order.
func (q *QueryParams) Keys() []string {
	if q == nil {
		return nil
	}
	return append([]string(nil), q.keys...)
}

// String renders the set as "?k1=v1&k2=v2". An empty set renders as "".
func (q *QueryParams) String() string {
	if q.Len() == 0 {
		return ""
	}
	var sb strings.Builder
	for n, k := range q.keys {
		if n == 0 {
			sb.WriteByte('?')
		} else {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(k))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(q.values[k]))
	}
	return sb.String()
}

func (q *QueryParams) clone() *QueryParams {
	if q == nil {
		return nil
	}
	res := &QueryParams{
		keys:   append([]string(nil), q.keys...),
		values: make(map[string]string, len(q.values)),
	}
	for k, v := range q.values {
		res.values[k] = v
	}
	return res
}

// Values converts the set to url.Values, losing ordering.
func (q *QueryParams) Values() url.Values {
	res := make(url.Values, q.Len())
	if q == nil {
		return res
	}
	for _, k := range q.keys {
		res.Set(k, q.values[k])
	}
	return res
}
