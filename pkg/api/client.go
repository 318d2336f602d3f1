package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"

	"jobboard/pkg/logger"
)

const maxErrorBody = 256

// ClientConfig configures the scrape service client.
type ClientConfig struct {
	BaseURL string
	Path    string
	Timeout time.Duration

	// RateLimit spaces calls out to at most RateLimit per second; zero disables it.
	RateLimit float64
	Burst     int

	// Dial overrides the connection dialer, mostly for in-memory tests.
	Dial fasthttp.DialFunc
}

// DefaultClientConfig returns the settings used when the config file is silent.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL: "https://wellfoundscrap.vercel.app",
		Path:    "/scrape",
		Timeout: 30 * time.Second,
	}
}

// Stats is a snapshot of client counters.
type Stats struct {
	TotalRequests  uint64 `json:"total_requests"`
	FailedRequests uint64 `json:"failed_requests"`
	AvgLatencyMs   uint64 `json:"avg_latency_ms"`
	LastError      string `json:"last_error,omitempty"`
}

// Client talks to the remote scrape service. One FetchJobs call is exactly
// one GET request; there are no retries.
type Client struct {
	endpoint string
	timeout  time.Duration
	http     *fasthttp.Client
	limiter  *rate.Limiter
	log      *logger.Logger

	totalRequests  uint64
	failedRequests uint64
	totalLatency   uint64
	lastError      atomic.Value
}

var _ JobsClient = (*Client)(nil)

func NewClient(config ClientConfig) *Client {
	defaults := DefaultClientConfig()
	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	if config.Path == "" {
		config.Path = defaults.Path
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}

	var limiter *rate.Limiter
	if config.RateLimit > 0 {
		burst := config.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit), burst)
	}

	return &Client{
		endpoint: strings.TrimRight(config.BaseURL, "/") + "/" + strings.TrimLeft(config.Path, "/"),
		timeout:  config.Timeout,
		http: &fasthttp.Client{
			ReadTimeout:  config.Timeout,
			WriteTimeout: config.Timeout,
			Dial:         config.Dial,
		},
		limiter: limiter,
		log:     logger.GetLogger().WithField("component", "scrape_client"),
	}
}

// Endpoint is the full URL requests are sent to, without query parameters.
func (c *Client) Endpoint() string {
	return c.endpoint
}

func (c *Client) FetchJobs(ctx context.Context, keyword string, page int) (*ScrapeResponse, error) {
	atomic.AddUint64(&c.totalRequests, 1)
	start := time.Now()
	defer func() {
		atomic.AddUint64(&c.totalLatency, uint64(time.Since(start).Milliseconds()))
	}()

	result, err := c.doFetch(ctx, keyword, page)
	if err != nil {
		atomic.AddUint64(&c.failedRequests, 1)
		c.lastError.Store(err.Error())
		c.log.WithError(err).WithFields(map[string]interface{}{
			"keyword": keyword,
			"page":    page,
		}).Warn("Scrape request failed")
		return nil, err
	}

	c.log.WithFields(map[string]interface{}{
		"keyword":     keyword,
		"page":        page,
		"jobs":        len(result.Jobs),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("Scrape request completed")
	return result, nil
}

func (c *Client) doFetch(ctx context.Context, keyword string, page int) (*ScrapeResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.endpoint)
	req.Header.SetMethod(fasthttp.MethodGet)
	args := req.URI().QueryArgs()
	args.Add("keyword", keyword)
	args.Add("page", strconv.Itoa(page))

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	status := resp.StatusCode()
	if status < fasthttp.StatusOK || status >= fasthttp.StatusMultipleChoices {
		body := string(resp.Body())
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, &StatusError{Code: status, Body: body}
	}

	return decodeScrapeResponse(resp.Body())
}

func decodeScrapeResponse(body []byte) (*ScrapeResponse, error) {
	var payload struct {
		Jobs       *[]JobPosting `json:"jobs"`
		TotalPages *int          `json:"total_pages"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if payload.Jobs == nil {
		return nil, fmt.Errorf("%w: missing jobs field", ErrMalformedPayload)
	}

	return &ScrapeResponse{Jobs: *payload.Jobs, TotalPages: payload.TotalPages}, nil
}

// Stats returns current request counters.
func (c *Client) Stats() Stats {
	total := atomic.LoadUint64(&c.totalRequests)
	stats := Stats{
		TotalRequests:  total,
		FailedRequests: atomic.LoadUint64(&c.failedRequests),
	}
	if total > 0 {
		stats.AvgLatencyMs = atomic.LoadUint64(&c.totalLatency) / total
	}
	if v, ok := c.lastError.Load().(string); ok {
		stats.LastError = v
	}
	return stats
}
