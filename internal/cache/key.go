// Package cache implements the TTL-based provider response cache.
// It has pluggable backends: in-memory for tests, SQLite for durable
// single-node deployments, and Redis when the cache is shared.
package cache

import (
	"fmt"
	"sort"
	"strings"
)

// Key builds a deterministic cache key from provider identity, operation
// name, ticker and a canonicalized parameter set. Identical logical
// requests always collide to the same key regardless of call-site
// parameter ordering.
//
// Format: {provider}:{operation}:{ticker}:{param}={value}:...
func Key(provider, operation, ticker string, params map[string]string) string {
	parts := []string{provider, operation, ticker}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%s", name, params[name]))
	}

	return strings.Join(parts, ":")
}
