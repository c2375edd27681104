package restclient

import "strings"

// BuildURL returns base followed by each path segment and the rendered query
// string. Exactly one "/" separates base and segments regardless of leading or
// trailing slashes supplied by the caller. A trailing slash on the last
// segment is kept. Empty segments are skipped, and the path of base is used
// as given when no segment remains.
//
// A query already present on base is kept ahead of the segments' query and
// query is appended to it with "&".
//
//	BuildURL("http://api.test/", q, "/users/", "42") // http://api.test/users/42?...
func BuildURL(base string, query *QueryParams, paths ...string) string {
	base, rawQuery, _ := strings.Cut(base, "?")

	var sb strings.Builder
	sb.WriteString(strings.TrimRight(base, "/"))

	written, trailing := false, false
	for _, p := range paths {
		seg := strings.Trim(p, "/")
		if seg == "" {
			continue
		}
		sb.WriteByte('/')
		sb.WriteString(seg)
		written = true
		trailing = strings.HasSuffix(p, "/")
	}
	if !written {
		sb.Reset()
		sb.WriteString(base)
	} else if trailing {
		sb.WriteByte('/')
	}

	qs := query.String()
	switch {
	case rawQuery == "":
		sb.WriteString(qs)
	case qs == "":
		sb.WriteByte('?')
		sb.WriteString(rawQuery)
	default:
		sb.WriteByte('?')
		sb.WriteString(rawQuery)
		sb.WriteByte('&')
		sb.WriteString(qs[1:])
	}
	return sb.String()
}
