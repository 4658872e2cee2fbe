package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Key identifies a cached fetch result. Equality is structural over the
// full argument tuple, including every query parameter.
type Key struct {
	// Method is the HTTP method (usually GET).
	Method string

	// Path is the endpoint path (e.g. "/r/golang/new.json").
	Path string

	// Query holds the request's query parameters.
	Query url.Values
}

// String generates a deterministic cache key string.
// Format: mynx:METHOD:path:query1=val1:query2=val2
//
// Example:
//
//	mynx:GET:r/golang/new.json:limit=1000:sort=new
func (k Key) String() string {
	parts := []string{"mynx", k.Method}

	path := strings.Trim(k.Path, "/")
	if path != "" {
		parts = append(parts, path)
	}

	// Query params sorted for determinism.
	if len(k.Query) > 0 {
		queryKeys := make([]string, 0, len(k.Query))
		for key := range k.Query {
			queryKeys = append(queryKeys, key)
		}
		sort.Strings(queryKeys)

		for _, key := range queryKeys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.Query.Get(key)))
		}
	}

	return strings.Join(parts, ":")
}
