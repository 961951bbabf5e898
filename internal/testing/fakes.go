package testing

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/desertthunder/spotbox/internal/transport"
)

// FakeResponse scripts one exchange on a [FakeTransport].
type FakeResponse struct {
	Status     int
	Body       string
	OpenErr    error // returned by Open
	PerformErr error // returned by Perform
	ReadErr    error // returned by ReadBody after the first chunk
}

// FakeRequest is what a handle was configured with when Perform ran.
type FakeRequest struct {
	Host    string
	Path    string
	TLS     bool
	Method  string
	Headers map[string]string
	Body    string
}

// FakeTransport is a scripted [transport.Transport]. Responses are consumed in order.
type FakeTransport struct {
	mu        sync.Mutex
	responses []FakeResponse
	requests  []FakeRequest
	opened    int
	closed    int

	// ChunkSize bounds each ReadBody call so callers have to loop.
	ChunkSize int
}

func NewFakeTransport(responses ...FakeResponse) *FakeTransport {
	return &FakeTransport{responses: responses, ChunkSize: 7}
}

// OK is shorthand for a 200 response with body.
func OK(body string) FakeResponse {
	return FakeResponse{Status: 200, Body: body}
}

// Enqueue appends scripted responses.
func (f *FakeTransport) Enqueue(responses ...FakeResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, responses...)
}

func (f *FakeTransport) Open(ctx context.Context, host, path string, useTLS bool) (transport.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.responses) == 0 {
		return nil, errors.New("fake transport: no scripted response")
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	if resp.OpenErr != nil {
		return nil, resp.OpenErr
	}

	f.opened++
	return &fakeHandle{
		owner:   f,
		resp:    resp,
		request: FakeRequest{Host: host, Path: path, TLS: useTLS, Method: "GET", Headers: map[string]string{}},
	}, nil
}

// Requests returns the performed requests in order.
func (f *FakeTransport) Requests() []FakeRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FakeRequest(nil), f.requests...)
}

// Last returns the most recently performed request.
func (f *FakeTransport) Last() FakeRequest {
	reqs := f.Requests()
	if len(reqs) == 0 {
		return FakeRequest{}
	}
	return reqs[len(reqs)-1]
}

// OpenHandles is the number of handles opened but not closed.
func (f *FakeTransport) OpenHandles() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opened - f.closed
}

// Pending is the number of scripted responses not yet consumed.
func (f *FakeTransport) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.responses)
}

type fakeHandle struct {
	owner     *FakeTransport
	resp      FakeResponse
	request   FakeRequest
	offset    int
	performed bool
	closed    bool
}

func (h *fakeHandle) SetHeader(key, value string) { h.request.Headers[key] = value }
func (h *fakeHandle) SetMethod(method string)     { h.request.Method = method }
func (h *fakeHandle) SetBody(body []byte)         { h.request.Body = string(body) }

func (h *fakeHandle) Perform() (int, error) {
	h.owner.mu.Lock()
	h.owner.requests = append(h.owner.requests, h.request)
	h.owner.mu.Unlock()

	if h.resp.PerformErr != nil {
		return 0, h.resp.PerformErr
	}
	h.performed = true
	return h.resp.Status, nil
}

func (h *fakeHandle) ReadBody(buf []byte) (int, error) {
	if !h.performed {
		return 0, errors.New("fake transport: read before perform")
	}
	if h.offset >= len(h.resp.Body) {
		return 0, io.EOF
	}
	if h.offset > 0 && h.resp.ReadErr != nil {
		return 0, h.resp.ReadErr
	}

	size := len(buf)
	if h.owner.ChunkSize > 0 {
		size = min(size, h.owner.ChunkSize)
	}
	n := copy(buf[:size], h.resp.Body[h.offset:])
	h.offset += n
	return n, nil
}

func (h *fakeHandle) Close() error {
	if h.closed {
		return errors.New("fake transport: handle closed twice")
	}
	h.closed = true
	h.owner.mu.Lock()
	h.owner.closed++
	h.owner.mu.Unlock()
	return nil
}

// FakeClock is an advanceable clock.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
