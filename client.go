package koala

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/heiyeluren/koala/internal/query"
)

// Operation names used in logs and metrics.
const (
	OpCheck         = "check"
	OpCheckComplete = "check_complete"
	OpMultiCheck    = "multi_check"
	OpWrite         = "write"
	OpMonitorAlive  = "monitor_alive"
)

const (
	pathBrowse         = "/rule/browse"
	pathBrowseComplete = "/rule/browse_complete"
	pathMultiBrowse    = "/multi/browse"
	pathUpdate         = "/rule/update"
	pathMonitorAlive   = "/monitor/alive"
)

// Client talks to one koala engine. Every method sends exactly one GET
// request and blocks until it completes or the timeout elapses. It is
// safe for concurrent use.
type Client struct {
	host       string
	server     string
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	middleware []Middleware
	metrics    *MetricsCollector
	debug      *DebugConfig
	logger     Logger
}

// New builds a Client for the engine at cfg. It fails with a
// configuration error when cfg.Host or cfg.Port is missing or an option
// is invalid.
func New(cfg Config, options ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := &Client{
		host:   cfg.Host,
		server: "http://" + cfg.Address(),
		httpClient: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: newTransport(),
		},
		timeout:    DefaultTimeout,
		middleware: []Middleware{},
		debug:      DefaultDebugConfig(),
		logger:     NopLogger,
	}

	for _, option := range options {
		option(client)
	}

	if err := client.ValidateConfiguration(); err != nil {
		return nil, err
	}
	if client.logger == nil {
		client.logger = NopLogger
	}

	return client, nil
}

// newTransport returns a transport that opens a fresh connection for
// every request.
func newTransport() *http.Transport {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DisableKeepAlives = true
	return transport
}

// Server returns the base address requests are sent to.
func (c *Client) Server() string {
	return c.server
}

// Check asks the engine whether params exceed any rule. The returned
// Result is never nil; on failure its fields are all nil and err says why.
func (c *Client) Check(ctx context.Context, params Params, opts ...CallOption) (*Result, error) {
	var resp checkResponse
	if _, err := c.send(ctx, OpCheck, pathBrowse, checkValues(params, opts), &resp); err != nil {
		return &Result{}, err
	}

	result := resp.result()
	c.metrics.RecordResult(OpCheck, result)
	return &result, nil
}

// CheckComplete is like Check but reports every matching rule, in the
// engine's order. It returns ErrNoResult when the engine's answer is empty.
// A failed exchange is reported as a *ClientError instead, so callers
// treating "no answer" alike must test both errors.Is(err, ErrNoResult)
// and IsTransport(err).
func (c *Client) CheckComplete(ctx context.Context, params Params, opts ...CallOption) ([]Result, error) {
	var list resultList
	found, err := c.send(ctx, OpCheckComplete, pathBrowseComplete, checkValues(params, opts), &list)
	if err != nil {
		return nil, err
	}
	if !found || len(list) == 0 {
		return nil, ErrNoResult
	}

	for _, r := range list {
		c.metrics.RecordResult(OpCheckComplete, r)
	}
	return list, nil
}

// MultiCheck sends all jobs in a single request. Job i is identified by
// i; the returned map is keyed by the ids the engine answered with.
func (c *Client) MultiCheck(ctx context.Context, jobs []Params) (map[int]Result, error) {
	maps := make([]map[string]any, 0, len(jobs))
	for _, job := range jobs {
		maps = append(maps, job)
	}
	argsJSON, err := query.EncodeJobs(maps)
	if err != nil {
		return map[int]Result{}, &ClientError{
			Type:      ErrorTypeValidation,
			Message:   "encode jobs",
			Cause:     err,
			Endpoint:  pathMultiBrowse,
			Timestamp: time.Now(),
		}
	}
	c.metrics.RecordMultiJobs(len(jobs))

	var resp []multiResponse
	values := url.Values{"argsJson": []string{argsJSON}}
	if _, err := c.send(ctx, OpMultiCheck, pathMultiBrowse, values, &resp); err != nil {
		return map[int]Result{}, err
	}

	results := make(map[int]Result, len(resp))
	for _, item := range resp {
		id, err := item.id()
		if err != nil {
			c.logger.Warn("Skipping multi-check entry", "id", string(item.ID), "error", err.Error())
			continue
		}
		r := item.Result.result()
		results[id] = r
		c.metrics.RecordResult(OpMultiCheck, r)
	}
	return results, nil
}

// Write applies the update step for params, which must equal the params
// of an earlier Check.
func (c *Client) Write(ctx context.Context, params Params) (*WriteResult, error) {
	var resp updateResponse
	if _, err := c.send(ctx, OpWrite, pathUpdate, query.Values(params), &resp); err != nil {
		return &WriteResult{}, err
	}

	result := resp.result()
	return &result, nil
}

// MonitorAlive probes the engine and its storage backend. The decoded
// answer is returned as is, with numbers as json.Number. params may be nil.
func (c *Client) MonitorAlive(ctx context.Context, params Params) (any, error) {
	var status any
	if _, err := c.send(ctx, OpMonitorAlive, pathMonitorAlive, query.Values(params), &status); err != nil {
		return nil, err
	}
	return status, nil
}

func checkValues(params Params, opts []CallOption) url.Values {
	var co callOptions
	for _, opt := range opts {
		opt(&co)
	}

	values := query.Values(params)
	if co.writeThrough {
		values.Set("_writeThrough", "yes")
	}
	return values
}

// send issues GET path?values and decodes the JSON answer into out. It
// reports false when the engine answered with an empty body. The HTTP
// status does not matter: the engine describes failures in the body.
func (c *Client) send(ctx context.Context, operation, path string, values url.Values, out any) (bool, error) {
	start := time.Now()
	reqURL := c.server + path
	if encoded := values.Encode(); encoded != "" {
		reqURL += "?" + encoded
	}

	var requestID string
	if c.debugEnabled() && c.debug.RequestIDGen != nil {
		requestID = c.debug.RequestIDGen()
	}
	failure := &ClientError{
		RequestID: requestID,
		Method:    http.MethodGet,
		URL:       reqURL,
		Endpoint:  path,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return false, c.fail(operation, failure, ErrorTypeNetwork, "invalid request", err, start)
	}
	req.Host = c.hostHeader()
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	if c.debugEnabled() && c.debug.LogRequests {
		c.logger.Debug("Starting request", "requestID", requestID, "operation", operation, "url", reqURL)
	}

	statusCode := 0
	c.metrics.RecordRequestStart(operation)
	defer func() {
		c.metrics.RecordRequestEnd(operation)
		c.metrics.RecordRequest(operation, statusCode, time.Since(start))
	}()

	resp, err := c.executeMiddleware(req)
	if err != nil {
		return false, c.fail(operation, failure, transportErrorType(err, ErrorTypeNetwork), "request failed", err, start)
	}
	defer resp.Body.Close()
	statusCode = resp.StatusCode
	failure.StatusCode = statusCode

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, c.fail(operation, failure, transportErrorType(err, ErrorTypeRead), "read response body", err, start)
	}

	if c.debugEnabled() && c.debug.LogResponses {
		c.logger.Debug("Response received", "requestID", requestID, "operation", operation,
			"statusCode", statusCode, "bytes", len(body), "duration", time.Since(start))
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return false, nil
	}
	if !json.Valid(body) {
		return false, c.fail(operation, failure, ErrorTypeDecode, "response is not JSON", errors.New("invalid JSON: "+snippet(body)), start)
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(out); err != nil {
		return false, c.fail(operation, failure, ErrorTypeDecode, "unexpected response shape", err, start)
	}
	return true, nil
}

func (c *Client) fail(operation string, e *ClientError, errorType, message string, cause error, start time.Time) *ClientError {
	e.Type = errorType
	e.Message = message
	e.Cause = cause
	e.Timestamp = time.Now()
	e.Duration = time.Since(start)

	c.metrics.RecordError(errorType, operation)
	c.logger.Warn("Engine call failed", "requestID", e.RequestID, "operation", operation,
		"type", errorType, "error", cause.Error())
	return e
}

func (c *Client) executeMiddleware(req *http.Request) (*http.Response, error) {
	if len(c.middleware) == 0 {
		return c.httpClient.Do(req)
	}

	current := RoundTripperFunc(c.httpClient.Do)

	for i := len(c.middleware) - 1; i >= 0; i-- {
		middleware := c.middleware[i]
		next := current
		current = RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			return middleware(r, next)
		})
	}

	return current.RoundTrip(req)
}

func (c *Client) debugEnabled() bool {
	return c.debug != nil && c.debug.Enabled
}

// hostHeader is the configured host, bracketed when it is an IPv6 literal.
func (c *Client) hostHeader() string {
	if strings.Contains(c.host, ":") && !strings.HasPrefix(c.host, "[") {
		return "[" + c.host + "]"
	}
	return c.host
}

func transportErrorType(err error, fallback string) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTypeTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrorTypeTimeout
	}
	return fallback
}

func snippet(body []byte) string {
	const limit = 64
	if len(body) > limit {
		return fmt.Sprintf("%q...", body[:limit])
	}
	return fmt.Sprintf("%q", body)
}

// multiResponse is one entry of the /multi/browse answer. The engine
// sends Id as a string; a bare number is accepted too.
type multiResponse struct {
	ID     json.RawMessage `json:"Id"`
	Result checkResponse   `json:"Result"`
}

func (m multiResponse) id() (int, error) {
	raw := strings.TrimSpace(string(m.ID))
	if raw == "" || raw == "null" {
		return 0, errors.New("missing Id")
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(m.ID, &s); err != nil {
			return 0, err
		}
		raw = strings.TrimSpace(s)
	}
	return strconv.Atoi(raw)
}

// resultList is the engine's list answer, either a JSON array or an
// object keyed by index.
type resultList []Result

func (l *resultList) UnmarshalJSON(data []byte) error {
	results, err := decodeResultList(data)
	if err != nil {
		return err
	}
	*l = results
	return nil
}

func decodeResultList(raw []byte) ([]Result, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}

	switch raw[0] {
	case 'n':
		return nil, nil
	case '[':
		var list []checkResponse
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, err
		}
		results := make([]Result, 0, len(list))
		for _, item := range list {
			results = append(results, item.result())
		}
		return results, nil
	case '{':
		var indexed map[string]checkResponse
		if err := json.Unmarshal(raw, &indexed); err != nil {
			return nil, err
		}
		keys := make([]string, 0, len(indexed))
		for k := range indexed {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			a, errA := strconv.Atoi(keys[i])
			b, errB := strconv.Atoi(keys[j])
			switch {
			case errA == nil && errB == nil:
				return a < b
			case errA == nil:
				return true
			case errB == nil:
				return false
			default:
				return keys[i] < keys[j]
			}
		})
		results := make([]Result, 0, len(keys))
		for _, k := range keys {
			results = append(results, indexed[k].result())
		}
		return results, nil
	default:
		return nil, fmt.Errorf("expected a list, got %s", snippet(raw))
	}
}
