package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sendgrid/rest"

	"github.com/trezcool/mahudhurio/core"
)

// RequestIDHeader is forwarded on every backend call.
const RequestIDHeader = "X-Request-ID"

// maxBodyLog bounds how much of a failed response is kept on a RemoteError.
const maxBodyLog = 512

var (
	callsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mahudhurio",
		Subsystem: "backend",
		Name:      "calls_total",
		Help:      "Backend calls by operation and outcome.",
	}, []string{"operation", "outcome"})

	callDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mahudhurio",
		Subsystem: "backend",
		Name:      "call_duration_seconds",
		Help:      "Backend call latency by operation.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
)

// Client talks JSON to the attendance backend. It never retries.
type Client struct {
	baseURL string
	rest    *rest.Client
}

func NewClient(conf core.BackendConfig) *Client {
	return NewClientWithHTTP(conf.BaseURL, &http.Client{Timeout: conf.Timeout})
}

// NewClientWithHTTP lets tests point the client at a local server.
func NewClientWithHTTP(baseURL string, hc *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		rest:    &rest.Client{HTTPClient: hc},
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

type call struct {
	op     string
	method rest.Method
	path   string
	query  map[string]string
	in     interface{}
	out    interface{}
}

func (c *Client) do(ctx context.Context, cl call) (err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		if rErr, ok := errors.Cause(err).(*core.RemoteError); ok && !rErr.Unreachable() {
			outcome = "rejected"
		} else if err != nil {
			outcome = "failed"
		}
		callsTotal.WithLabelValues(cl.op, outcome).Inc()
		callDuration.WithLabelValues(cl.op).Observe(time.Since(start).Seconds())
	}()

	req := rest.Request{
		Method:      cl.method,
		BaseURL:     c.baseURL + cl.path,
		Headers:     map[string]string{"Accept": "application/json"},
		QueryParams: cl.query,
	}
	if id := core.RequestIDFromContext(ctx); id != "" {
		req.Headers[RequestIDHeader] = string(id)
	}
	if cl.in != nil {
		body, err := json.Marshal(cl.in)
		if err != nil {
			return errors.Wrap(err, "encoding "+cl.op)
		}
		req.Body = body
		req.Headers["Content-Type"] = "application/json"
	}

	res, err := c.rest.SendWithContext(ctx, req)
	if err != nil {
		return &core.RemoteError{Operation: cl.op, Err: err}
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		body := res.Body
		if len(body) > maxBodyLog {
			body = body[:maxBodyLog]
		}
		return &core.RemoteError{Operation: cl.op, StatusCode: res.StatusCode, Body: body}
	}
	if cl.out != nil && strings.TrimSpace(res.Body) != "" {
		if err := json.Unmarshal([]byte(res.Body), cl.out); err != nil {
			return errors.Wrap(err, "decoding "+cl.op)
		}
	}
	return nil
}

// Ping checks that the backend answers on its root route.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, call{op: "pinging backend", method: rest.Get, path: "/"})
}

func isNotFound(err error) bool {
	rErr, ok := errors.Cause(err).(*core.RemoteError)
	return ok && rErr.StatusCode == http.StatusNotFound
}
