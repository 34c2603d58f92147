package module_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/accredit/pkg/module"
)

func echoPath(w http.ResponseWriter, r *http.Request) {
	io.WriteString(w, r.URL.Path)
}

func newRouter(t *testing.T) *module.Router {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", echoPath)

	api := module.New("/api", mux)
	api.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Module", "api")
			next.ServeHTTP(w, r)
		})
	})

	router := module.NewRouter()
	router.Mount(api)
	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok")
	})
	return router
}

func TestRouterDispatch(t *testing.T) {
	router := newRouter(t)

	tests := []struct {
		path, body, module string
	}{
		{"/api/submissions/1", "/submissions/1", "api"},
		{"/api/submissions/", "/submissions", "api"},
		{"/api", "/", "api"},
		{"/healthz", "ok", ""},
		{"/apis/x", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if got := rec.Header().Get("X-Module"); got != tt.module {
				t.Errorf("X-Module = %q, want %q", got, tt.module)
			}
			if tt.body == "" {
				if rec.Code != http.StatusNotFound {
					t.Errorf("status = %d, want 404", rec.Code)
				}
				return
			}
			if rec.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.body)
			}
		})
	}
}

func TestNewRejectsBadPrefix(t *testing.T) {
	for _, prefix := range []string{"", "api", "/", "/api/v1"} {
		t.Run(prefix, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("New(%q) should panic", prefix)
				}
			}()
			module.New(prefix, http.NotFoundHandler())
		})
	}
}

func TestMountDuplicatePanics(t *testing.T) {
	router := module.NewRouter()
	router.Mount(module.New("/api", http.NotFoundHandler()))

	defer func() {
		if recover() == nil {
			t.Error("second mount of /api should panic")
		}
	}()
	router.Mount(module.New("/api", http.NotFoundHandler()))
}

func TestMiddlewareOrder(t *testing.T) {
	var order []string
	tag := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	m := module.New("/api", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))
	m.Use(tag("cors"))
	m.Use(tag("logger"))

	m.Handler().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	want := []string{"cors", "logger", "handler"}
	if len(order) != len(want) {
		t.Fatalf("order = %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order = %v, want %v", order, want)
			break
		}
	}
}
