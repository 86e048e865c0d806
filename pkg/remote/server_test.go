package remote

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHealthz(t *testing.T) {
	srv := NewServer(func(r *http.Request, a *Adapter) (func(), error) {
		return nil, nil
	}, WithLogger(quietLogger()))
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "ok" {
		t.Fatalf("body = %q", body)
	}
}

func TestLiveRejectsPlainHTTP(t *testing.T) {
	srv := NewServer(func(r *http.Request, a *Adapter) (func(), error) {
		return nil, nil
	}, WithLogger(quietLogger()))
	ts := httptest.NewServer(srv)
	defer ts.Close()

	// No websocket handshake headers; the upgrade must fail.
	resp, err := http.Get(ts.URL + "/live")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		t.Fatalf("expected upgrade failure, got %d", resp.StatusCode)
	}
}
