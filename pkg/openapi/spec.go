// Package openapi builds an OpenAPI 3.1 document in code and serves it as
// pre-rendered JSON.
package openapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"
)

// Spec represents an OpenAPI 3.1 specification document.
type Spec struct {
	OpenAPI    string               `json:"openapi"`
	Info       *Info                `json:"info"`
	Servers    []*Server            `json:"servers,omitempty"`
	Paths      map[string]*PathItem `json:"paths"`
	Components *Components          `json:"components,omitempty"`
}

func NewSpec(title, version string) *Spec {
	return &Spec{
		OpenAPI: "3.1.0",
		Info: &Info{
			Title:   title,
			Version: version,
		},
		Components: NewComponents(),
		Paths:      make(map[string]*PathItem),
	}
}

func (s *Spec) AddServer(url string) {
	s.Servers = append(s.Servers, &Server{URL: url})
}

func (s *Spec) SetDescription(desc string) {
	s.Info.Description = desc
}

// Validate reports every $ref that does not resolve to a component, in
// path order.
func (s *Spec) Validate() error {
	var broken []string

	checkSchema := func(where string, sc *Schema) {
		sc.walk(func(ref string) {
			name, ok := strings.CutPrefix(ref, schemaPrefix)
			if _, found := s.Components.Schemas[name]; !ok || !found {
				broken = append(broken, where+": "+ref)
			}
		})
	}

	for _, name := range sortedKeys(s.Components.Schemas) {
		checkSchema("schema "+name, s.Components.Schemas[name])
	}
	for _, name := range sortedKeys(s.Components.Responses) {
		s.Components.Responses[name].eachSchema(func(sc *Schema) {
			checkSchema("response "+name, sc)
		})
	}

	for _, path := range sortedKeys(s.Paths) {
		for method, op := range s.Paths[path].Operations() {
			where := method + " " + path
			for _, p := range op.Parameters {
				checkSchema(where, p.Schema)
			}
			if op.RequestBody != nil {
				for _, mt := range op.RequestBody.Content {
					checkSchema(where, mt.Schema)
				}
			}
			for _, r := range op.Responses {
				if r.Ref != "" {
					name, ok := strings.CutPrefix(r.Ref, responsePrefix)
					if _, found := s.Components.Responses[name]; !ok || !found {
						broken = append(broken, where+": "+r.Ref)
					}
					continue
				}
				r.eachSchema(func(sc *Schema) { checkSchema(where, sc) })
			}
		}
	}

	if len(broken) > 0 {
		return fmt.Errorf("unresolved references: %s", strings.Join(broken, "; "))
	}
	return nil
}

// MarshalJSON serializes the spec to indented JSON bytes.
func MarshalJSON(spec *Spec) ([]byte, error) {
	return json.MarshalIndent(spec, "", "  ")
}

// ServeSpec returns a handler that serves pre-serialized JSON spec bytes.
func ServeSpec(specBytes []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(specBytes)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
