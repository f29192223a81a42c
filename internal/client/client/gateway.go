package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/yamaphone/internal/logging"
	"github.com/google/uuid"
)

const (
	RequestIDHeaderName = "X-Request-ID"

	// DefaultTimeout bounds every request that does not carry an earlier deadline.
	DefaultTimeout = 15 * time.Second

	maxErrorBody = 4 << 10
)

// SessionBinding is what the Gateway needs from the session owner: the
// current credential, and a way to report that the backend rejected one.
// Invalidate receives the credential the rejected request carried, which
// may no longer be the current one.
type SessionBinding interface {
	Token() string
	Invalidate(ctx context.Context, token string)
}

// Doer is the request surface used by the resource services.
type Doer interface {
	Do(ctx context.Context, req Request, out any) error
}

// Request describes one backend call. Body is any JSON-encodable value;
// nil means no body.
type Request struct {
	Method string
	Path   string
	Body   any
	Header http.Header
}

// Gateway is the single funnel for backend calls. It injects the bearer
// credential, encodes and decodes JSON, and turns every failure into an
// *APIError. It never retries and never refreshes credentials.
type Gateway struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     logging.Logger
	newID      func() string

	mu      sync.RWMutex
	session SessionBinding
}

type GatewayOption func(*Gateway)

func WithHTTPClient(c *http.Client) GatewayOption {
	return func(g *Gateway) {
		if c != nil {
			g.httpClient = c
		}
	}
}

// WithTimeout sets the per-request deadline; zero or negative disables it.
func WithTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) { g.timeout = d }
}

func WithLogger(l logging.Logger) GatewayOption {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

func WithRequestIDs(fn func() string) GatewayOption {
	return func(g *Gateway) {
		if fn != nil {
			g.newID = fn
		}
	}
}

func NewGateway(baseURL string, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		timeout:    DefaultTimeout,
		logger:     logging.Discard(),
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Bind attaches the session whose credential is injected into requests.
// Until Bind is called requests go out without a credential.
func (g *Gateway) Bind(s SessionBinding) {
	g.mu.Lock()
	g.session = s
	g.mu.Unlock()
}

func (g *Gateway) binding() SessionBinding {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.session
}

// Do sends req and decodes a 2xx JSON body into out (when out is non-nil).
//
// An Authorization header already present in req.Header is kept as is;
// otherwise the bound session's credential is attached when there is one.
// A 401 on a request that carried a credential is reported as
// ErrSessionInvalid and the bound session is invalidated.
func (g *Gateway) Do(ctx context.Context, req Request, out any) error {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	op := method + " " + req.Path

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	httpReq, err := g.newRequest(ctx, method, req)
	if err != nil {
		return &APIError{Op: op, Kind: ErrRequestFailed, Err: err}
	}
	authorization := httpReq.Header.Get("Authorization")
	withCredential := authorization != ""
	requestID := httpReq.Header.Get(RequestIDHeaderName)

	start := time.Now()
	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		g.logger.Warn(ctx, "backend request failed", "method", method, "path", req.Path, "request_id", requestID, "error", err)
		return &APIError{Op: op, Kind: ErrTransport, Err: err}
	}
	defer resp.Body.Close()

	g.logger.Debug(ctx, "backend request", "method", method, "path", req.Path,
		"status", resp.StatusCode, "request_id", requestID, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			Op:      op,
			Status:  resp.StatusCode,
			Message: errorMessage(resp),
			Kind:    kindForStatus(resp.StatusCode, withCredential),
		}
		if errors.Is(apiErr.Kind, ErrSessionInvalid) {
			if s := g.binding(); s != nil {
				s.Invalidate(ctx, bearerToken(authorization))
			}
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return &APIError{Op: op, Status: resp.StatusCode, Kind: ErrTransport, Err: fmt.Errorf("malformed response: %w", err)}
	}
	return nil
}

func (g *Gateway) newRequest(ctx context.Context, method string, req Request) (*http.Request, error) {
	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, g.baseURL+"/"+strings.TrimLeft(req.Path, "/"), body)
	if err != nil {
		return nil, err
	}

	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if httpReq.Header.Get(RequestIDHeaderName) == "" {
		httpReq.Header.Set(RequestIDHeaderName, g.newID())
	}
	if httpReq.Header.Get("Authorization") == "" {
		if s := g.binding(); s != nil {
			if token := s.Token(); token != "" {
				httpReq.Header.Set("Authorization", BearerHeader(token))
			}
		}
	}
	return httpReq, nil
}

// BearerHeader formats an Authorization header value.
func BearerHeader(token string) string {
	return "Bearer " + token
}

// bearerToken is the inverse of BearerHeader; other schemes yield "".
func bearerToken(header string) string {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// errorMessage pulls a human-readable message out of an error response:
// the "error" or "message" field of a JSON body, else the trimmed text,
// else the status text.
func errorMessage(resp *http.Response) string {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(b, &payload) == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	if text := strings.TrimSpace(string(b)); text != "" && !strings.HasPrefix(text, "{") {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

// Call is a typed shorthand for Doer.Do.
func Call[T any](ctx context.Context, d Doer, method, path string, body any) (T, error) {
	var out T
	err := d.Do(ctx, Request{Method: method, Path: path, Body: body}, &out)
	return out, err
}
