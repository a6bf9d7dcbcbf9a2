package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/marcdejesus/graph-market/internal/domain"
)

func cartKeyEchoHandler(t *testing.T) (http.HandlerFunc, *string) {
	t.Helper()
	var captured string
	return func(w http.ResponseWriter, r *http.Request) {
		captured = CartKeyFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}, &captured
}

func TestCartSession_AuthenticatedUser(t *testing.T) {
	handler, captured := cartKeyEchoHandler(t)
	wrapped := CartSession(handler)

	user := &domain.User{ID: 7, Email: "jane@example.com", Role: domain.UserRoleUser}
	req := httptest.NewRequest("GET", "/cart", nil)
	req = req.WithContext(context.WithValue(req.Context(), contextKeyUser, user))

	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)

	if *captured != "user:7" {
		t.Errorf("cart key = %q, want user:7", *captured)
	}
	if rr.Header().Get(HeaderCartSession) != "" {
		t.Error("authenticated request should not receive a session header")
	}
}

func TestCartSession_AnonymousWithHeader(t *testing.T) {
	handler, captured := cartKeyEchoHandler(t)
	wrapped := CartSession(handler)

	req := httptest.NewRequest("GET", "/cart", nil)
	req.Header.Set(HeaderCartSession, "abc-123")

	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)

	if *captured != "session:abc-123" {
		t.Errorf("cart key = %q, want session:abc-123", *captured)
	}
	if rr.Header().Get(HeaderCartSession) != "abc-123" {
		t.Errorf("session header = %q, want abc-123", rr.Header().Get(HeaderCartSession))
	}
}

func TestCartSession_AnonymousGeneratesKey(t *testing.T) {
	handler, captured := cartKeyEchoHandler(t)
	wrapped := CartSession(handler)

	req := httptest.NewRequest("GET", "/cart", nil)
	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)

	if *captured == "" {
		t.Fatal("expected generated cart key, got empty")
	}
	echoed := rr.Header().Get(HeaderCartSession)
	if echoed == "" {
		t.Fatal("expected generated session to be echoed back")
	}
	if *captured != "session:"+echoed {
		t.Errorf("context key %q does not match echoed session %q", *captured, echoed)
	}
}
