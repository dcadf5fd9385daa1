package httpserver

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"grunnlag/pkg/testutil"
)

func TestHealth(t *testing.T) {
	t.Run("all checks pass", func(t *testing.T) {
		r := NewRouter(map[string]HealthCheck{
			"store": func(context.Context) error { return nil },
		}, nil)
		rr := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/health"))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "status", "ok")
	})

	t.Run("failing check", func(t *testing.T) {
		r := NewRouter(map[string]HealthCheck{
			"store": func(context.Context) error { return nil },
			"redis": func(context.Context) error { return errors.New("down") },
		}, nil)
		rr := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/health"))
		testutil.AssertStatusAndError(t, rr, http.StatusServiceUnavailable, "service_unavailable")
	})

	t.Run("cors preflight for configured origin", func(t *testing.T) {
		r := NewRouter(nil, []string{"https://saksbehandling.example"})
		req := testutil.NewRequest(t, http.MethodOptions, "/health")
		req.Header.Set("Origin", "https://saksbehandling.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		rr := testutil.DoRequest(r, req)
		testutil.AssertStatusOK(t, rr)
		if rr.Header().Get("Access-Control-Allow-Origin") != "https://saksbehandling.example" {
			t.Fatalf("missing allow-origin header, got %q", rr.Header().Get("Access-Control-Allow-Origin"))
		}
	})

	t.Run("metrics endpoint", func(t *testing.T) {
		rr := testutil.DoRequest(NewRouter(nil, nil), testutil.NewRequest(t, http.MethodGet, "/metrics"))
		testutil.AssertStatusOK(t, rr)
	})
}
