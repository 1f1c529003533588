package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/gosocial-cli/internal/ports"
	"github.com/bnema/gosocial-cli/internal/version"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL   = "/v1"
	DefaultOrigin    = "http://localhost:8080"
	DefaultTimeout   = 10 * time.Second
	maxResponseBytes = 4 << 20

	headerRequestID = "X-Request-ID"
)

type Options struct {
	// BaseURL is either absolute or a path resolved against Origin.
	BaseURL    string
	Origin     string
	Timeout    time.Duration
	Tokens     ports.TokenProvider
	HTTPClient *http.Client
	Logger     *zap.Logger
	UserAgent  string
}

// Client is the process-wide request pipeline. It re-reads the token provider
// on every request and never caches the Authorization header.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	tokens    ports.TokenProvider
	userAgent string
	logger    *zap.Logger
}

func NewClient(opts Options) (*Client, error) {
	base, err := ResolveBaseURL(opts.BaseURL, opts.Origin)
	if err != nil {
		return nil, err
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	} else {
		clone := *httpClient
		httpClient = &clone
	}
	httpClient.Timeout = timeout
	httpClient.Jar = nil

	tokens := opts.Tokens
	if tokens == nil {
		tokens = ports.TokenProviderFunc(func() string { return "" })
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "gs/" + version.Version
	}

	return &Client{
		baseURL:   base,
		http:      httpClient,
		tokens:    tokens,
		userAgent: userAgent,
		logger:    logger.Named("http"),
	}, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// ResolveBaseURL applies the explicit override when set and otherwise falls
// back to the relative DefaultBaseURL. Relative values resolve against origin.
func ResolveBaseURL(baseURL, origin string) (*url.URL, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api base url %q: %w", baseURL, err)
	}

	if !u.IsAbs() {
		rawOrigin := strings.TrimSpace(origin)
		if rawOrigin == "" {
			rawOrigin = DefaultOrigin
		}
		originURL, err := url.Parse(rawOrigin)
		if err != nil {
			return nil, fmt.Errorf("parse api origin %q: %w", origin, err)
		}
		if !strings.HasPrefix(u.Path, "/") {
			u.Path = "/" + u.Path
		}
		u = originURL.ResolveReference(u)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.New("api base url must use http or https")
	}
	if u.Host == "" {
		return nil, errors.New("api base url host is required")
	}

	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// Request describes one API call. Path is appended to the base URL and must
// already have its dynamic segments escaped.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Body is JSON-encoded unless it is already a json.RawMessage.
	Body any
}

// Do runs the request and returns the raw success body. Failures are always
// returned as *Error.
func (c *Client) Do(ctx context.Context, r Request) ([]byte, error) {
	if c == nil {
		return nil, &Error{Kind: KindTransport, Message: "client is nil"}
	}

	endpoint := c.baseURL.String() + r.Path
	if len(r.Query) > 0 {
		endpoint += "?" + r.Query.Encode()
	}

	var body io.Reader
	if r.Body != nil {
		payload, err := encodeBody(r.Body)
		if err != nil {
			return nil, &Error{Kind: KindTransport, Message: err.Error(), Err: err}
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, endpoint, body)
	if err != nil {
		return nil, transportError(fmt.Errorf("create request: %w", err))
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(headerRequestID, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.Path),
			zap.String("request_id", requestID),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err),
		)
		return nil, transportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, transportError(fmt.Errorf("read response: %w", err))
	}

	c.logger.Debug("request completed",
		zap.String("method", r.Method),
		zap.String("path", r.Path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("elapsed", time.Since(started)),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, responseError(resp.StatusCode, payload)
	}
	return payload, nil
}

// JSON runs the request and parses the success body.
func (c *Client) JSON(ctx context.Context, r Request) (gjson.Result, error) {
	payload, err := c.Do(ctx, r)
	if err != nil {
		return gjson.Result{}, err
	}
	return gjson.ParseBytes(payload), nil
}

func encodeBody(body any) ([]byte, error) {
	if raw, ok := body.(json.RawMessage); ok {
		return raw, nil
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return payload, nil
}
