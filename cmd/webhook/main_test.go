package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

type handlerStub struct {
	bodies [][]byte
	err    error
}

func (h *handlerStub) HandleWebhook(ctx context.Context, body []byte) error {
	h.bodies = append(h.bodies, body)
	return h.err
}

func serve(t *testing.T, h *handlerStub, secret string, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	r := newRouter(h, secret, slog.New(slog.NewTextHandler(io.Discard, nil)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	w := serve(t, &handlerStub{}, "", httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestWebhookPassesBody(t *testing.T) {
	h := &handlerStub{}
	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", bytes.NewBufferString(`{"update_id":1}`))

	w := serve(t, h, "", req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(h.bodies) != 1 || string(h.bodies[0]) != `{"update_id":1}` {
		t.Errorf("unexpected bodies %q", h.bodies)
	}
}

func TestWebhookSecret(t *testing.T) {
	h := &handlerStub{}

	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", bytes.NewBufferString(`{}`))
	req.Header.Set(secretHeader, "wrong")
	if w := serve(t, h, "s3cret", req); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if len(h.bodies) != 0 {
		t.Error("handler must not run without a valid secret")
	}

	req = httptest.NewRequest(http.MethodPost, "/telegram/webhook", bytes.NewBufferString(`{}`))
	req.Header.Set(secretHeader, "s3cret")
	if w := serve(t, h, "s3cret", req); w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestWebhookRejectsInvalidUpdate(t *testing.T) {
	h := &handlerStub{err: errors.New("bad json")}
	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", bytes.NewBufferString(`{`))

	if w := serve(t, h, "", req); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}
