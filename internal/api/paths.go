package api

import (
	"errors"
	"net/http"
	"strings"
)

var errPathShape = errors.New("path must have exactly three segments")

// pathSegments splits the decoded request path on "/" and requires exactly
// three segments, the first being empty. Trailing empty segments are
// dropped, so "/items/Alice/" is accepted. An encoded slash splits like a
// literal one, so "/items/A%2FB" has four segments.
func pathSegments(r *http.Request) ([]string, error) {
	parts := strings.Split(r.URL.Path, "/")
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	if len(parts) != 3 {
		return nil, errPathShape
	}
	return parts, nil
}
