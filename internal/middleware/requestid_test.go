package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestID_GeneratesID(t *testing.T) {
	var captured string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if captured == "" {
		t.Error("expected a generated request ID in context")
	}
	if got := rr.Header().Get(RequestIDHeader); got != captured {
		t.Errorf("response header %q does not match context value %q", got, captured)
	}
}

func TestRequestID_PreservesIncomingID(t *testing.T) {
	var captured string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "client-supplied-id")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if captured != "client-supplied-id" {
		t.Errorf("expected client-supplied-id, got %q", captured)
	}
}

func TestGetRequestID_Missing(t *testing.T) {
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("expected empty request ID for bare context, got %q", got)
	}
}
