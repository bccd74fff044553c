package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"penalty-console/internal/adapters/metrics"
	"penalty-console/internal/domain"
	"penalty-console/internal/ports"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the shape every API response shares.
type Envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Multipart is a request body that carries files next to plain form fields.
type Multipart struct {
	Fields map[string]string
	Files  []domain.Attachment
}

// UnauthorizedFunc is invoked once per 401 response with the session that made the call.
type UnauthorizedFunc func(ctx context.Context, sessionID string)

type Client struct {
	baseURL        string
	http           *http.Client
	onUnauthorized UnauthorizedFunc
	logger         ports.Logger
	metrics        *metrics.Metrics
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTracing records every outbound request as an X-Ray subsegment.
func WithTracing() Option {
	return func(c *Client) { c.http = xray.Client(c.http) }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithUnauthorizedHandler(fn UnauthorizedFunc) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func New(baseURL string, logger ports.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		logger:  logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// SetUnauthorizedHandler installs the session-wipe hook after construction, for wiring
// orders where the handler depends on services built on top of the client.
func (c *Client) SetUnauthorizedHandler(fn UnauthorizedFunc) {
	c.onUnauthorized = fn
}

func (c *Client) Get(ctx context.Context, path string, query map[string]string) (Envelope, error) {
	if len(query) > 0 {
		values := url.Values{}
		for k, v := range query {
			values.Set(k, v)
		}
		path += "?" + values.Encode()
	}
	return c.Do(ctx, http.MethodGet, path, nil)
}

func (c *Client) Post(ctx context.Context, path string, body any) (Envelope, error) {
	return c.Do(ctx, http.MethodPost, path, body)
}

func (c *Client) Do(ctx context.Context, method, path string, body any) (Envelope, error) {
	resource, operation := splitPath(path)
	started := time.Now()

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return Envelope{}, err
	}
	sessionID, token := SessionFrom(ctx)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.ObserveAPI(resource, operation, "transport_error", started)
		c.logger.Error(ctx, "api request failed", "method", method, "path", path, "error", err)
		return Envelope{}, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.metrics.ObserveAPI(resource, operation, "unauthorized", started)
		c.logger.Warn(ctx, "api rejected session", "method", method, "path", path)
		if c.onUnauthorized != nil {
			c.onUnauthorized(ctx, sessionID)
		}
		return Envelope{}, domain.ErrUnauthorized
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.ObserveAPI(resource, operation, "transport_error", started)
		return Envelope{}, fmt.Errorf("%w: read body: %v", domain.ErrTransport, err)
	}
	var env Envelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 400 {
			c.metrics.ObserveAPI(resource, operation, "transport_error", started)
			return Envelope{}, fmt.Errorf("%w: decode %s: %v", domain.ErrTransport, path, err)
		}
	}
	if env.Status == StatusError || resp.StatusCode >= 400 {
		c.metrics.ObserveAPI(resource, operation, "remote_error", started)
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		c.logger.Info(ctx, "api returned error envelope", "path", path, "status", resp.StatusCode, "message", msg)
		return env, &domain.RemoteError{Message: msg}
	}
	c.metrics.ObserveAPI(resource, operation, "success", started)
	return env, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	var (
		reader      io.Reader
		contentType string
	)
	switch b := body.(type) {
	case nil:
	case *Multipart:
		buf, ct, err := encodeMultipart(b)
		if err != nil {
			return nil, fmt.Errorf("encode multipart: %w", err)
		}
		reader, contentType = buf, ct
	default:
		payload, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		reader, contentType = bytes.NewReader(payload), "application/json"
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

func encodeMultipart(m *Multipart) (*bytes.Buffer, string, error) {
	buf := new(bytes.Buffer)
	w := multipart.NewWriter(buf)
	for k, v := range m.Fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	for _, f := range m.Files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.FileName))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

// Decode unmarshals the envelope payload. An empty payload yields the zero value.
func Decode[T any](env Envelope) (T, error) {
	var out T
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, fmt.Errorf("%w: decode payload: %v", domain.ErrTransport, err)
	}
	return out, nil
}

// IsSessionLoss reports whether err ended the operator's session.
func IsSessionLoss(err error) bool {
	return errors.Is(err, domain.ErrUnauthorized)
}

func splitPath(path string) (string, string) {
	path = strings.Trim(path, "/")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	resource, operation, found := strings.Cut(path, "/")
	if !found {
		return resource, ""
	}
	return resource, operation
}
