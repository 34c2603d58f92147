package openapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/accredit/pkg/openapi"
)

func sample() *openapi.Spec {
	spec := openapi.NewSpec("Accredit API", "1.0.0")
	spec.AddServer("/api")
	spec.Components.AddSchemas(map[string]*openapi.Schema{
		"Submission": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"sufficiency": openapi.Bounded("number", 0, 1),
			},
		},
	})
	spec.Paths["/submissions/{id}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Submission ID")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Submission", "Submission"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
		Head: &openapi.Operation{
			Responses: map[int]*openapi.Response{200: {Description: "Exists"}},
		},
	}
	return spec
}

func TestNewSpecDefaults(t *testing.T) {
	spec := openapi.NewSpec("Accredit API", "1.0.0")

	if spec.OpenAPI != "3.1.0" {
		t.Errorf("openapi = %s", spec.OpenAPI)
	}
	for _, name := range []string{"BadRequest", "NotFound", "Conflict"} {
		if _, ok := spec.Components.Responses[name]; !ok {
			t.Errorf("missing shared response %s", name)
		}
	}
	if _, ok := spec.Components.Schemas["PageRequest"]; !ok {
		t.Error("missing PageRequest schema")
	}
	if err := spec.Validate(); err != nil {
		t.Errorf("fresh spec should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	if err := sample().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	spec := sample()
	spec.Paths["/analytics/trend"] = &openapi.PathItem{
		Post: &openapi.Operation{
			RequestBody: openapi.RequestBodyJSON("TrendRequest", true),
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Trend", "TrendResult"),
				422: openapi.ResponseRef("Fault"),
			},
		},
	}

	err := spec.Validate()
	if err == nil {
		t.Fatal("expected unresolved references")
	}
	for _, ref := range []string{"TrendRequest", "TrendResult", "responses/Fault"} {
		if !strings.Contains(err.Error(), ref) {
			t.Errorf("error %q does not name %s", err, ref)
		}
	}
}

func TestValidateNestedSchemaRef(t *testing.T) {
	spec := sample()
	spec.Components.AddSchemas(map[string]*openapi.Schema{
		"Lineage": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"versions": {Type: "array", Items: openapi.SchemaRef("Version")},
			},
		},
	})

	err := spec.Validate()
	if err == nil || !strings.Contains(err.Error(), "schema Lineage") {
		t.Errorf("err = %v, want unresolved ref inside Lineage", err)
	}
}

func TestOperationsOrder(t *testing.T) {
	item := &openapi.PathItem{
		Delete: &openapi.Operation{},
		Get:    &openapi.Operation{},
		Head:   &openapi.Operation{},
	}

	var methods []string
	for m := range item.Operations() {
		methods = append(methods, m)
	}

	if got := strings.Join(methods, ","); got != "GET,HEAD,DELETE" {
		t.Errorf("methods = %s", got)
	}
}

func TestMarshalAndServe(t *testing.T) {
	data, err := openapi.MarshalJSON(sample())
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	paths := doc["paths"].(map[string]any)
	item := paths["/submissions/{id}"].(map[string]any)
	if _, ok := item["head"]; !ok {
		t.Error("head operation not serialized")
	}
	if _, ok := item["post"]; ok {
		t.Error("nil operations should be omitted")
	}

	rec := httptest.NewRecorder()
	openapi.ServeSpec(data)(rec, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("content type = %s", ct)
	}
	if rec.Body.String() != string(data) {
		t.Error("served body differs from marshaled spec")
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Setenv("TEST_OPENAPI_TITLE", "Scoring API")

	var cfg openapi.Config
	if err := cfg.Finalize(&openapi.ConfigEnv{Title: "TEST_OPENAPI_TITLE"}); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if cfg.Title != "Scoring API" {
		t.Errorf("title = %s", cfg.Title)
	}
	if cfg.Description == "" {
		t.Error("description default not applied")
	}
}
