// Package ingest fetches the ECDC case-distribution feed and maps it into
// records.
package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/keilerkonzept/covid-dashboard-tui/internal/record"
)

// DefaultURL is the ECDC case-distribution JSON endpoint.
const DefaultURL = "https://opendata.ecdc.europa.eu/covid19/casedistribution/json/"

// DefaultTimeout bounds a single fetch. The feed is large, so this is generous.
const DefaultTimeout = 30 * time.Second

// Client fetches records from either a URL or a local JSON snapshot.
type Client struct {
	url    string
	path   string
	http   *http.Client
	logger *zap.Logger

	timeout    time.Duration
	hasTimeout bool
}

// Option configures a Client.
type Option func(*Client)

// WithURL sets the endpoint to GET.
func WithURL(url string) Option {
	return func(c *Client) { c.url = url }
}

// WithFile reads the document from a local file instead of the network.
func WithFile(path string) Option {
	return func(c *Client) { c.path = path }
}

// WithTimeout bounds each request. Zero disables the bound. It applies to a
// copy of the HTTP client, whatever the option order.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout, c.hasTimeout = d, true }
}

// WithHTTPClient replaces the underlying HTTP client. The client is not
// modified.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for per-fetch and per-entry diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient builds a Client. Without options it GETs DefaultURL with DefaultTimeout.
func NewClient(opts ...Option) *Client {
	c := &Client{
		url:    DefaultURL,
		http:   &http.Client{Timeout: DefaultTimeout},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.hasTimeout {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c
}

// Source names where the client reads from.
func (c *Client) Source() string {
	if c.path != "" {
		return c.path
	}
	return c.url
}

// Fetch performs one all-or-nothing read of the source. Entries that cannot be
// mapped are skipped and listed in the Report; any other failure returns a
// *FetchError and no records.
func (c *Client) Fetch(ctx context.Context) ([]record.Record, Report, error) {
	start := time.Now()
	source := c.Source()
	c.logger.Info("fetching records", zap.String("source", source))

	body, err := c.open(ctx)
	if err != nil {
		c.logger.Warn("fetch failed",
			zap.String("source", source),
			zap.String("kind", KindName(err)),
			zap.Error(err))
		return nil, Report{Source: source}, err
	}
	defer func() { _ = body.Close() }()

	tr := &trackingReader{r: body}
	records, report, err := Decode(tr, source)
	if tr.err != nil {
		err = newFetchError("read", source, ErrNetwork, tr.err)
	}
	if err != nil {
		c.logger.Warn("fetch failed",
			zap.String("source", source),
			zap.String("kind", KindName(err)),
			zap.Error(err))
		return nil, report, err
	}
	for _, s := range report.Skipped {
		c.logger.Debug("skipped entry", zap.Int("index", s.Index), zap.String("reason", s.Reason))
	}
	if len(report.Skipped) > 0 {
		c.logger.Warn("skipped malformed entries", zap.Int("skipped", len(report.Skipped)))
	}
	c.logger.Info("fetched records",
		zap.String("source", source),
		zap.Int("entries", report.Entries),
		zap.Int("kept", report.Kept),
		zap.Duration("took", time.Since(start)))
	return records, report, nil
}

func (c *Client) open(ctx context.Context) (io.ReadCloser, error) {
	if c.path != "" {
		f, err := os.Open(c.path)
		if err != nil {
			return nil, newFetchError("open", c.path, ErrNetwork, err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, newFetchError("get", c.url, ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, newFetchError("get", c.url, ErrNetwork, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, newFetchError("get", c.url, ErrNetwork, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	return resp.Body, nil
}

// trackingReader remembers the first read failure so a connection dropped
// mid-body is reported as a network error rather than a parse error.
type trackingReader struct {
	r   io.Reader
	err error
}

func (t *trackingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF && t.err == nil {
		t.err = err
	}
	return n, err
}
