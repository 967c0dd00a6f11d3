package transport

import (
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"fnrelay/gateway/internal/domain"
)

// ListRoutes flattens a chi tree into method + full path pairs. Mounted
// subrouters are walked recursively with their mount pattern, regex
// parameters included, prefixed to every child route.
func ListRoutes(routes chi.Routes) []domain.RouteInfo {
	out := make([]domain.RouteInfo, 0)
	if routes == nil {
		return out
	}
	out = appendRoutes(out, "", routes)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

func appendRoutes(out []domain.RouteInfo, prefix string, routes chi.Routes) []domain.RouteInfo {
	for _, route := range routes.Routes() {
		pattern := joinPattern(prefix, route.Pattern)
		if route.SubRoutes != nil {
			out = appendRoutes(out, strings.TrimSuffix(pattern, "/*"), route.SubRoutes)
			continue
		}
		for method := range route.Handlers {
			out = append(out, domain.RouteInfo{Method: method, Path: pattern})
		}
	}
	return out
}

func joinPattern(prefix, pattern string) string {
	joined := prefix + pattern
	for strings.Contains(joined, "//") {
		joined = strings.ReplaceAll(joined, "//", "/")
	}
	if len(joined) > 1 {
		joined = strings.TrimSuffix(joined, "/")
	}
	if joined == "" {
		return "/"
	}
	return joined
}
