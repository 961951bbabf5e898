package transport_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/spotbox/internal/shared"
	"github.com/desertthunder/spotbox/internal/transport"
	tu "github.com/desertthunder/spotbox/internal/testing"
)

func hostOf(server *httptest.Server) string {
	return strings.TrimPrefix(strings.TrimPrefix(server.URL, "http://"), "https://")
}

func readAll(t *testing.T, h transport.Handle) string {
	t.Helper()
	var sb strings.Builder
	buf := make([]byte, 4)
	for {
		n, err := h.ReadBody(buf)
		sb.Write(buf[:n])
		if errors.Is(err, io.EOF) {
			return sb.String()
		}
		if err != nil {
			t.Fatalf("ReadBody: %v", err)
		}
	}
}

func TestHTTPTransport(t *testing.T) {
	t.Run("performs request with headers and body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPut {
				t.Errorf("expected PUT, got %s", r.Method)
			}
			if r.URL.Path != "/v1/me/player/play" || r.URL.Query().Get("device_id") != "dev" {
				t.Errorf("unexpected url %s", r.URL)
			}
			if r.Header.Get("Authorization") != "Bearer tok" {
				t.Errorf("missing auth header")
			}
			body, _ := io.ReadAll(r.Body)
			if string(body) != `{"a":1}` {
				t.Errorf("unexpected body %s", body)
			}
			w.WriteHeader(http.StatusAccepted)
			w.Write([]byte("accepted"))
		}))
		defer server.Close()

		tr := transport.NewHTTPTransport(server.Client(), time.Second)
		h, err := tr.Open(context.Background(), hostOf(server), "/v1/me/player/play?device_id=dev", false)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		defer h.Close()

		h.SetMethod(transport.MethodPut)
		h.SetHeader("Authorization", "Bearer tok")
		h.SetBody([]byte(`{"a":1}`))

		status, err := h.Perform()
		if err != nil {
			t.Fatalf("Perform: %v", err)
		}
		if status != http.StatusAccepted {
			t.Errorf("expected 202, got %d", status)
		}
		if got := readAll(t, h); got != "accepted" {
			t.Errorf("unexpected body %q", got)
		}
	})

	t.Run("uses TLS", func(t *testing.T) {
		server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("secure"))
		}))
		defer server.Close()

		tr := transport.NewHTTPTransport(server.Client(), time.Second)
		h, err := tr.Open(context.Background(), hostOf(server), "/", true)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		defer h.Close()

		if _, err := h.Perform(); err != nil {
			t.Fatalf("Perform: %v", err)
		}
		if got := readAll(t, h); got != "secure" {
			t.Errorf("unexpected body %q", got)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)

		tr := transport.NewHTTPTransport(server.Client(), 20*time.Millisecond)
		h, _ := tr.Open(context.Background(), hostOf(server), "/slow", false)
		defer h.Close()

		_, err := h.Perform()
		if !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
		if !errors.Is(err, shared.ErrTransport) {
			t.Errorf("timeout should be a transport error, got %v", err)
		}
	})

	t.Run("round trip failure", func(t *testing.T) {
		client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection reset"))}
		tr := transport.NewHTTPTransport(client, time.Second)
		h, _ := tr.Open(context.Background(), "api.example.com", "/", true)
		defer h.Close()

		_, err := h.Perform()
		if !errors.Is(err, shared.ErrTransport) || errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected plain transport error, got %v", err)
		}
	})

	t.Run("body read failure", func(t *testing.T) {
		resp := &http.Response{StatusCode: 200, Body: &tu.FCloser{}, Header: make(http.Header)}
		client := &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)}
		tr := transport.NewHTTPTransport(client, time.Second)
		h, _ := tr.Open(context.Background(), "api.example.com", "/", true)
		defer h.Close()

		if _, err := h.Perform(); err != nil {
			t.Fatalf("Perform: %v", err)
		}
		if _, err := h.ReadBody(make([]byte, 8)); !errors.Is(err, shared.ErrTransport) {
			t.Errorf("expected transport error, got %v", err)
		}
	})

	t.Run("empty host", func(t *testing.T) {
		tr := transport.NewHTTPTransport(nil, time.Second)
		if _, err := tr.Open(context.Background(), "", "/", true); !errors.Is(err, shared.ErrTransport) {
			t.Errorf("expected transport error, got %v", err)
		}
	})

	t.Run("read before perform", func(t *testing.T) {
		tr := transport.NewHTTPTransport(nil, time.Second)
		h, _ := tr.Open(context.Background(), "api.example.com", "/", true)
		defer h.Close()
		if _, err := h.ReadBody(make([]byte, 1)); err == nil {
			t.Error("expected error")
		}
	})
}
