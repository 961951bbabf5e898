// Package transport is the HTTP collaborator the request executor drives.
//
// A [Handle] is one request/response exchange: configure it, Perform it, drain the body
// with ReadBody into a caller-owned buffer, then Close it. The executor never sees
// net/http types, so tests can substitute a scripted transport.
package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/desertthunder/spotbox/internal/shared"
)

// HTTP methods used by the client.
const (
	MethodGet  = http.MethodGet
	MethodPost = http.MethodPost
	MethodPut  = http.MethodPut
)

// Transport opens request handles.
type Transport interface {
	Open(ctx context.Context, host, path string, useTLS bool) (Handle, error)
}

// Handle is a single request. It is not reusable after Close.
type Handle interface {
	SetHeader(key, value string)
	SetMethod(method string)
	SetBody(body []byte)
	// Perform sends the request and returns the response status.
	Perform() (int, error)
	// ReadBody reads into buf, returning [io.EOF] once the body is exhausted.
	ReadBody(buf []byte) (int, error)
	Close() error
}

// HTTPTransport implements [Transport] over an [http.Client].
type HTTPTransport struct {
	client  *http.Client
	timeout time.Duration
}

// NewHTTPTransport creates a transport whose calls are bounded by timeout.
// A nil client uses a fresh [http.Client].
func NewHTTPTransport(client *http.Client, timeout time.Duration) *HTTPTransport {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPTransport{client: client, timeout: timeout}
}

// Open prepares a request for scheme://host/path. The path may carry a query string.
func (t *HTTPTransport) Open(ctx context.Context, host, path string, useTLS bool) (Handle, error) {
	if host == "" {
		return nil, fmt.Errorf("%w: empty host", shared.ErrTransport)
	}

	scheme := "http"
	if useTLS {
		scheme = "https"
	}

	cancel := context.CancelFunc(func() {})
	if t.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
	}

	return &httpHandle{
		client: t.client,
		ctx:    ctx,
		cancel: cancel,
		url:    scheme + "://" + host + path,
		method: MethodGet,
		header: make(http.Header),
	}, nil
}

type httpHandle struct {
	client *http.Client
	ctx    context.Context
	cancel context.CancelFunc

	url    string
	method string
	header http.Header
	body   []byte

	resp *http.Response
}

func (h *httpHandle) SetHeader(key, value string) { h.header.Set(key, value) }
func (h *httpHandle) SetMethod(method string)     { h.method = method }
func (h *httpHandle) SetBody(body []byte)         { h.body = body }

func (h *httpHandle) Perform() (int, error) {
	if h.resp != nil {
		return 0, fmt.Errorf("%w: request already performed", shared.ErrTransport)
	}

	var body io.Reader
	if h.body != nil {
		body = bytes.NewReader(h.body)
	}

	req, err := http.NewRequestWithContext(h.ctx, h.method, h.url, body)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to build request: %v", shared.ErrTransport, err)
	}
	req.Header = h.header.Clone()
	if h.body != nil {
		req.ContentLength = int64(len(h.body))
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return 0, classify(err)
	}
	h.resp = resp
	return resp.StatusCode, nil
}

func (h *httpHandle) ReadBody(buf []byte) (int, error) {
	if h.resp == nil {
		return 0, fmt.Errorf("%w: read before perform", shared.ErrTransport)
	}
	n, err := h.resp.Body.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, classify(err)
	}
	return n, err
}

func (h *httpHandle) Close() error {
	defer h.cancel()
	if h.resp == nil {
		return nil
	}
	err := h.resp.Body.Close()
	h.resp = nil
	return err
}

// classify maps net/http failures onto the transport error taxonomy.
func classify(err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, os.ErrDeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("%w: %v", shared.ErrTimeout, err)
	default:
		return fmt.Errorf("%w: %v", shared.ErrTransport, err)
	}
}
