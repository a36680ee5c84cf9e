// Package endpoint attributes request points to logical endpoint labels.
// The resolution order is load-bearing: installations that tag points with
// an explicit route rely on it overriding config-based matching, so the
// chain below must not be reordered.
package endpoint

import (
	"strings"

	"github.com/loadscope/loadreport/config"
)

// UnknownLabel is returned when a point carries nothing to name it by.
const UnknownLabel = "unknown"

// Resolver maps request tags to an endpoint label. It is a pure policy
// value: identical tags and configuration always yield identical labels.
type Resolver struct {
	routes []config.Endpoint
}

// NewResolver builds a Resolver over the configured endpoints, preserving
// declaration order for the config-match stage.
func NewResolver(routes []config.Endpoint) *Resolver {
	return &Resolver{routes: routes}
}

// Resolve returns the endpoint label for one request point's tags.
// Order, first match wins:
//  1. explicit route tag
//  2. configured endpoint whose path is a substring of the URL tag with a
//     case-insensitive method match
//  3. generic name tag
//  4. "METHOD lastPathSegment" derived from the URL tag
//  5. UnknownLabel
func (r *Resolver) Resolve(tags map[string]string) string {
	if route := tags["route"]; route != "" {
		return route
	}

	url := tags["url"]
	method := tags["method"]
	if method == "" {
		method = "GET"
	}

	for _, ep := range r.routes {
		// An unnamed entry cannot label anything; later stages apply.
		if ep.Name == "" {
			continue
		}
		path := strings.TrimPrefix(ep.URL, "/")
		if strings.Contains(url, path) && strings.EqualFold(ep.Method, method) {
			return ep.Name
		}
	}

	if name := tags["name"]; name != "" {
		return name
	}

	if url != "" {
		parts := strings.Split(url, "/")
		return method + " " + parts[len(parts)-1]
	}

	return UnknownLabel
}
