package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotbox/internal/credentials"
	"github.com/desertthunder/spotbox/internal/shared"
	"github.com/desertthunder/spotbox/internal/transport"
)

// Default buffer capacities, in bytes.
const (
	DefaultResponseBufferSize = 12288
	DefaultHeaderBufferSize   = 1024
)

// maxEmptyReads bounds consecutive zero-byte reads before the body is treated as stalled.
const maxEmptyReads = 64

// Request describes one call to a Spotify host.
type Request struct {
	Method string
	Host   string
	Path   string
	Query  url.Values
	Body   []byte
	// ContentType defaults to application/json.
	ContentType string
	// Bearer attaches the stored access token.
	Bearer bool
	// Basic attaches the client id and secret as basic auth. Ignored when Bearer is set.
	Basic bool
}

func (r Request) target() string {
	if len(r.Query) == 0 {
		return r.Path
	}
	return r.Path + "?" + r.Query.Encode()
}

// RawResponse is a buffered response. Body aliases the executor's buffer and is only valid inside the callback passed to [Executor.Do].
type RawResponse struct {
	Status int
	Body   []byte
}

// ExecutorOpts configures an [Executor]. Zero sizes use the defaults.
type ExecutorOpts struct {
	Transport          transport.Transport
	Store              *credentials.Store
	ResponseBufferSize int
	HeaderBufferSize   int
	// Insecure opens plain HTTP handles, for local test servers.
	Insecure bool
	Logger   *log.Logger
}

// Executor performs requests through a transport into one reusable response buffer.
//
// An Executor is not safe for concurrent use: the response and header buffers are shared by every call.
type Executor struct {
	transport transport.Transport
	store     *credentials.Store
	response  []byte
	header    []byte
	insecure  bool
	logger    *log.Logger
}

func NewExecutor(opts ExecutorOpts) *Executor {
	respSize := opts.ResponseBufferSize
	if respSize <= 0 {
		respSize = DefaultResponseBufferSize
	}
	headerSize := opts.HeaderBufferSize
	if headerSize <= 0 {
		headerSize = DefaultHeaderBufferSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}

	return &Executor{
		transport: opts.Transport,
		store:     opts.Store,
		response:  make([]byte, 0, respSize),
		header:    make([]byte, 0, headerSize),
		insecure:  opts.Insecure,
		logger:    logger,
	}
}

// BufferSize returns the response buffer capacity.
func (e *Executor) BufferSize() int { return cap(e.response) }

// Do executes req and hands the buffered response to fn.
//
// The transport handle is closed and both buffers are zeroed before Do returns, on every path.
// Transport failures are returned without calling fn.
func (e *Executor) Do(ctx context.Context, req Request, fn func(RawResponse) error) error {
	defer e.reset()

	h, err := e.transport.Open(ctx, req.Host, req.target(), !e.insecure)
	if err != nil {
		return transportError(err)
	}
	defer h.Close()

	method := req.Method
	if method == "" {
		method = transport.MethodGet
	}
	h.SetMethod(method)
	h.SetHeader("Accept", "application/json")

	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	h.SetHeader("Content-Type", contentType)

	if req.Bearer || req.Basic {
		authorize := e.authorization
		if !req.Bearer {
			authorize = e.basicAuthorization
		}
		auth, err := authorize()
		if err != nil {
			return err
		}
		h.SetHeader("Authorization", auth)
	}
	if req.Body != nil {
		h.SetBody(req.Body)
	}

	status, err := h.Perform()
	if err != nil {
		return transportError(err)
	}

	if err := e.drain(h); err != nil {
		return err
	}

	e.logger.Debug("spotify request", "method", method, "host", req.Host, "path", req.Path, "status", status, "bytes", len(e.response))
	return fn(RawResponse{Status: status, Body: e.response})
}

// authorization writes "Bearer <token>" into the header scratch buffer.
func (e *Executor) authorization() (string, error) {
	token := e.store.AccessToken()
	const prefix = "Bearer "
	if len(prefix)+len(token) > cap(e.header) {
		return "", fmt.Errorf("%w: authorization header exceeds %d bytes", shared.ErrTransport, cap(e.header))
	}
	e.header = append(e.header[:0], prefix...)
	e.header = append(e.header, token...)
	return string(e.header), nil
}

// basicAuthorization writes "Basic base64(id:secret)" into the header scratch buffer.
// Both parts are form-escaped first, as the token endpoint expects.
func (e *Executor) basicAuthorization() (string, error) {
	creds := url.QueryEscape(e.store.ClientID()) + ":" + url.QueryEscape(e.store.ClientSecret())
	const prefix = "Basic "
	if len(prefix)+base64.StdEncoding.EncodedLen(len(creds)) > cap(e.header) {
		return "", fmt.Errorf("%w: authorization header exceeds %d bytes", shared.ErrTransport, cap(e.header))
	}
	e.header = append(e.header[:0], prefix...)
	e.header = base64.StdEncoding.AppendEncode(e.header, []byte(creds))
	return string(e.header), nil
}

// drain reads the body into the response buffer, failing when it does not fit.
func (e *Executor) drain(h transport.Handle) error {
	buf := e.response[:cap(e.response)]
	n, empty := 0, 0

	for n < len(buf) {
		read, err := h.ReadBody(buf[n:])
		n += read
		if errors.Is(err, io.EOF) {
			e.response = buf[:n]
			return nil
		}
		if err != nil {
			return transportError(err)
		}
		if read == 0 {
			if empty++; empty > maxEmptyReads {
				return fmt.Errorf("%w: body read stalled", shared.ErrTransport)
			}
			continue
		}
		empty = 0
	}
	e.response = buf[:n]

	// Buffer full: any further byte means the body did not fit.
	var extra [1]byte
	for range maxEmptyReads {
		read, err := h.ReadBody(extra[:])
		if read > 0 {
			return fmt.Errorf("%w: body larger than %d bytes", shared.ErrResponseTooLarge, cap(e.response))
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return transportError(err)
		}
	}
	return fmt.Errorf("%w: body read stalled", shared.ErrTransport)
}

func (e *Executor) reset() {
	clear(e.response[:cap(e.response)])
	e.response = e.response[:0]
	clear(e.header[:cap(e.header)])
	e.header = e.header[:0]
}

func transportError(err error) error {
	if errors.Is(err, shared.ErrTransport) {
		return err
	}
	return fmt.Errorf("%w: %v", shared.ErrTransport, err)
}
