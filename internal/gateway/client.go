package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/sapientheights/mobile-core/pkg/errors"
)

// TokenSource supplies the bearer token attached to authenticated
// requests. An empty token means the request goes out unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Envelope is the common response wrapper. Absence of a transport
// failure does not imply success; Error must always be checked.
type Envelope struct {
	Error   bool   `json:"error"`
	Message string `json:"message,omitempty"`
}

// Client is a thin wrapper over the JSON gateway. Every operation is a
// single request/response round trip; there is no batching, streaming
// or automatic retry.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
	metrics *Metrics
	tokens  TokenSource
}

// Option configures optional client collaborators.
type Option func(*Client)

// WithMetrics attaches request instrumentation.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTokenSource attaches the bearer token supplier.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// SetTokenSource attaches the token supplier after construction. The
// session manager both needs the client (login) and feeds it (tokens),
// so wiring happens in two steps.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

// New constructs a gateway client for the given base URL.
func New(baseURL string, timeout time.Duration, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// call runs one round trip against endpoint and decodes the body into
// out, which must embed Envelope. A server-reported error becomes an
// application error carrying the server message.
func (c *Client) call(ctx context.Context, method, endpoint string, body interface{}, out interface{ envelope() Envelope }) error {
	start := time.Now()
	requestID := uuid.NewString()

	err := c.roundTrip(ctx, method, endpoint, requestID, body, out)

	outcome := OutcomeOK
	if err != nil {
		if appErrors.IsKind(err, appErrors.KindApplication) {
			outcome = OutcomeApplication
		} else {
			outcome = OutcomeTransport
		}
	}
	c.metrics.Observe(endpoint, outcome, time.Since(start))

	fields := []zap.Field{
		zap.String("endpoint", endpoint),
		zap.String("request_id", requestID),
		zap.Duration("latency", time.Since(start)),
		zap.String("outcome", outcome),
	}
	if err != nil {
		c.logger.Warn("gateway_request", append(fields, zap.Error(err))...)
		return err
	}
	c.logger.Debug("gateway_request", fields...)
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, endpoint, requestID string, body interface{}, out interface{ envelope() Envelope }) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.KindTransport, "encode request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+endpoint, reader)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.KindTransport, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err == nil && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	res, err := c.http.Do(req)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.KindTransport, "request failed")
	}
	defer res.Body.Close() //nolint:errcheck

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.KindTransport, "malformed response")
	}

	if env := out.envelope(); env.Error {
		message := env.Message
		if message == "" {
			message = fmt.Sprintf("%s reported an error", endpoint)
		}
		return appErrors.Clone(appErrors.ErrApplication, message)
	}
	return nil
}

func (e Envelope) envelope() Envelope { return e }
