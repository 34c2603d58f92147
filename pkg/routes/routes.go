// Package routes declares handlers as data so each domain can hand its
// routes to the API module for registration on a ServeMux.
package routes

import "net/http"

// Route binds a method and path pattern to a handler. Pattern is relative
// to the enclosing groups.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Group nests routes and child groups under a shared prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register adds every route of groups to mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, g := range groups {
		g.walk("", func(pattern string, h http.HandlerFunc) {
			mux.HandleFunc(pattern, h)
		})
	}
}

// Patterns lists the full ServeMux patterns of g in registration order.
func (g Group) Patterns() []string {
	var out []string
	g.walk("", func(pattern string, _ http.HandlerFunc) {
		out = append(out, pattern)
	})
	return out
}

func (g Group) walk(parent string, fn func(pattern string, h http.HandlerFunc)) {
	prefix := parent + g.Prefix
	for _, r := range g.Routes {
		fn(r.Method+" "+prefix+r.Pattern, r.Handler)
	}
	for _, child := range g.Children {
		child.walk(prefix, fn)
	}
}
