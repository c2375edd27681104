package restclient

// NestedFields names the members of a paginated envelope such as
// {"results": [...], "count": 42}.
type NestedFields struct {
	Array string
	Count string
}

// DefaultNestedFields matches table queries issued with $inlinecount=allpages.
var DefaultNestedFields = NestedFields{Array: "results", Count: "count"}

func (f NestedFields) withDefaults() NestedFields {
	if f.Array == "" {
		f.Array = DefaultNestedFields.Array
	}
	if f.Count == "" {
		f.Count = DefaultNestedFields.Count
	}
	return f
}

// NestedResults holds a page of results along with the total count reported
// by the server.
type NestedResults[T any] struct {
	Results []T    `json:"results"`
	Count   uint64 `json:"count"`
}
