// Package routes declares route groups once and uses them both to register
// ServeMux patterns and to describe paths in the OpenAPI document.
package routes

import (
	"net/http"
	"strings"

	"github.com/JaimeStill/folio/pkg/openapi"
)

// Group organizes routes under a common prefix. Tags apply to every
// documented route in the group that does not set its own.
type Group struct {
	Prefix   string
	Tags     []string
	Routes   []Route
	Children []Group
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, group := range groups {
		walk("", group, func(path string, route Route, _ []string) {
			mux.HandleFunc(route.Method+" "+path, route.Handler)
		})
	}
}

// Describe adds every documented route to spec under basePath.
func Describe(spec *openapi.Spec, basePath string, groups ...Group) {
	for _, group := range groups {
		walk(basePath, group, func(path string, route Route, tags []string) {
			if route.OpenAPI == nil {
				return
			}

			op := *route.OpenAPI
			if len(op.Tags) == 0 {
				op.Tags = tags
			}

			spec.AddOperation(openAPIPath(path), route.Method, &op)
		})
	}
}

func walk(parent string, group Group, fn func(path string, route Route, tags []string)) {
	prefix := parent + group.Prefix
	for _, route := range group.Routes {
		fn(prefix+route.Pattern, route, group.Tags)
	}
	for _, child := range group.Children {
		if len(child.Tags) == 0 {
			child.Tags = group.Tags
		}
		walk(prefix, child, fn)
	}
}

// openAPIPath strips ServeMux wildcard suffixes ({name...}, {$}).
func openAPIPath(pattern string) string {
	pattern = strings.ReplaceAll(pattern, "...}", "}")
	pattern = strings.ReplaceAll(pattern, "/{$}", "/")
	if pattern == "" {
		return "/"
	}
	return pattern
}
