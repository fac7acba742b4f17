package devserver

import (
	"strings"

	"github.com/abdul-hamid-achik/hookshot/packages/integrations"
)

// Router maps webhook paths to the integrations that receive them
type Router struct {
	routes map[string]integrations.Integration
}

// NewRouter creates a router for the given integrations
func NewRouter(list []integrations.Integration) *Router {
	r := &Router{routes: make(map[string]integrations.Integration, len(list))}
	for _, i := range list {
		r.routes[normalizePath(i.URL)] = i
	}
	return r
}

// Match finds the integration served at path
func (r *Router) Match(path string) (integrations.Integration, bool) {
	i, ok := r.routes[normalizePath(path)]
	return i, ok
}

// Len returns the number of routes
func (r *Router) Len() int {
	return len(r.routes)
}

func normalizePath(path string) string {
	// Ensure path starts with /
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	// Remove trailing slash (except for root)
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}
	return path
}
