package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/jonwraymond/ltdstatus/resilience"
)

// DefaultMaxBodyBytes caps how much of a response body is read.
const DefaultMaxBodyBytes int64 = 4 << 20

// Accept headers. Published pages are probed like a browser would fetch
// them, so content negotiation cannot change their status.
const (
	acceptAny  = "*/*"
	acceptJSON = "application/json"
)

// Config configures a Client.
type Config struct {
	// HTTPClient performs the requests.
	// Default: a client with http.DefaultTransport and no client timeout
	HTTPClient *http.Client

	// UserAgent is sent with every request when non-empty.
	UserAgent string

	// MaxBodyBytes caps how much of a body is read; the rest is discarded.
	// Default: DefaultMaxBodyBytes
	MaxBodyBytes int64

	// InFlight bounds concurrent requests across every user of the client.
	// Nil means unbounded.
	InFlight *resilience.Bulkhead

	// Timeout applies a per-request deadline. Nil or a zero timeout means none.
	Timeout *resilience.Timeout
}

// Response is the outcome of a single GET.
type Response struct {
	// URL is the effective URL after redirects.
	URL string

	StatusCode int
	Reason     string
	Body       []byte

	// Truncated is set when the body exceeded MaxBodyBytes.
	Truncated bool
}

// OK reports whether the status is in [200,299].
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode <= 299
}

// Text returns the body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// Client performs upstream probes. It never retries.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Context: requests honor cancellation and deadlines.
// - Errors: every failure is a *Failure.
type Client struct {
	http      *http.Client
	userAgent string
	maxBody   int64
	guard     *resilience.Executor
}

// NewClient creates a Client.
func NewClient(config Config) *Client {
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{}
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = DefaultMaxBodyBytes
	}

	return &Client{
		http:      config.HTTPClient,
		userAgent: config.UserAgent,
		maxBody:   config.MaxBodyBytes,
		guard: resilience.NewExecutor(
			resilience.WithBulkhead(config.InFlight),
			resilience.WithTimeout(config.Timeout),
		),
	}
}

// Get performs one GET against rawURL with "Accept: */*". A status outside [200,299] returns the
// response together with a *Failure carrying the same metadata. A request
// that gets no response returns a nil response and a transport *Failure.
func (c *Client) Get(ctx context.Context, rawURL string) (*Response, error) {
	return c.get(ctx, rawURL, acceptAny)
}

func (c *Client) get(ctx context.Context, rawURL, accept string) (*Response, error) {
	var resp *Response
	err := c.guard.Execute(ctx, func(ctx context.Context) error {
		r, err := c.do(ctx, rawURL, accept)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, TransportFailure(rawURL, err)
	}

	if !resp.OK() {
		return resp, statusFailure(resp)
	}
	return resp, nil
}

// GetJSON performs Get with "Accept: application/json" and decodes a 2xx body into v. A body that does not
// decode is reported as a *Failure with status 500 and reason
// "JSON Decode Error".
func (c *Client) GetJSON(ctx context.Context, rawURL string, v any) (*Response, error) {
	resp, err := c.get(ctx, rawURL, acceptJSON)
	if err != nil {
		return resp, err
	}

	if resp.Truncated {
		return resp, DecodeFailure(resp, ErrBodyTooLarge{Limit: c.maxBody})
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return resp, DecodeFailure(resp, err)
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, rawURL, accept string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", accept)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	body, truncated, err := readBody(httpResp.Body, c.maxBody)
	if err != nil {
		return nil, err
	}

	effective := rawURL
	if httpResp.Request != nil && httpResp.Request.URL != nil {
		effective = httpResp.Request.URL.String()
	}

	return &Response{
		URL:        effective,
		StatusCode: httpResp.StatusCode,
		Reason:     reasonPhrase(httpResp),
		Body:       body,
		Truncated:  truncated,
	}, nil
}

// readBody reads up to limit bytes and drains the remainder so the
// connection can be reused.
func readBody(r io.Reader, limit int64) ([]byte, bool, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, limit+1))
	if err != nil {
		return nil, false, err
	}
	if n <= limit {
		return buf.Bytes(), false, nil
	}
	_, _ = io.Copy(io.Discard, r)
	return buf.Bytes()[:limit], true, nil
}

// reasonPhrase extracts the reason phrase from the status line, falling back
// to the standard text for the code.
func reasonPhrase(resp *http.Response) string {
	prefix := strconv.Itoa(resp.StatusCode) + " "
	if reason, ok := strings.CutPrefix(resp.Status, prefix); ok && reason != "" {
		return reason
	}
	return http.StatusText(resp.StatusCode)
}
