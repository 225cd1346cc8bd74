package endpoints

import (
	"net/http"
	"strconv"
	"strings"
)

// IDFromPath returns the second non-empty segment of the request path, the
// identifier in /{resource}/{id}. It returns "" when there is none.
func IDFromPath(r *http.Request) string {
	segments := make([]string, 0, 3)
	for _, s := range strings.Split(r.URL.Path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) < 2 {
		return ""
	}
	return segments[1]
}

// numericID parses an identifier used by mutations. Non-numeric and zero
// identifiers count as missing.
func numericID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
