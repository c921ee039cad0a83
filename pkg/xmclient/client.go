// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package xmclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/NVIDIA/xm-capture/pkg/defaults"
	cnserrors "github.com/NVIDIA/xm-capture/pkg/errors"
	"github.com/NVIDIA/xm-capture/pkg/record"
)

// Option configures a Client.
type Option func(*Client)

// Client issues authenticated GET requests against one xMatters instance.
// It never retries: every failure is reported to the caller as is.
// A Client is safe for concurrent use.
type Client struct {
	BaseURL   string
	APIPath   string
	PageSize  int
	UserAgent string

	username string
	password string

	insecureSkipVerify bool
	timeout            time.Duration
	limiter            *rate.Limiter
	httpClient         *http.Client
}

// WithAPIPath overrides the REST API root (default /api/xm/1).
func WithAPIPath(p string) Option {
	return func(c *Client) {
		c.APIPath = p
	}
}

// WithPageSize sets the limit used for the first request of every collection.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.PageSize = n
		}
	}
}

// WithBasicAuth sets the credentials sent with every request.
func WithBasicAuth(username, password string) Option {
	return func(c *Client) {
		c.username = username
		c.password = password
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.UserAgent = userAgent
	}
}

// WithTimeout sets the total per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithRateLimit paces requests to rps per second with the given burst.
// A non-positive rps disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithInsecureSkipVerify disables TLS certificate verification.
func WithInsecureSkipVerify(skip bool) Option {
	return func(c *Client) {
		c.insecureSkipVerify = skip
	}
}

// WithHTTPClient replaces the underlying client. Transport related options are
// ignored when a custom client is supplied.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// New creates a Client for the instance at baseURL, e.g. https://acme.xmatters.com.
func New(baseURL string, options ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
			"instance url must be absolute", map[string]any{"url": baseURL})
	}

	c := &Client{
		BaseURL:   strings.TrimSuffix(u.String(), "/"),
		APIPath:   defaults.APIPath,
		PageSize:  defaults.PageSize,
		UserAgent: defaults.UserAgent,
		timeout:   defaults.HTTPClientTimeout,
	}
	for _, opt := range options {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout:   c.timeout,
			Transport: newDefaultHTTPTransport(c.insecureSkipVerify),
		}
	}
	c.APIPath = "/" + strings.Trim(c.APIPath, "/")
	return c, nil
}

func newDefaultHTTPTransport(insecureSkipVerify bool) *http.Transport {
	return &http.Transport{
		// One request is in flight per traversal; a small pool is plenty.
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,

		DialContext: (&net.Dialer{
			Timeout:   defaults.HTTPConnectTimeout,
			KeepAlive: defaults.HTTPKeepAlive,
		}).DialContext,
		TLSHandshakeTimeout:   defaults.HTTPTLSHandshakeTimeout,
		ResponseHeaderTimeout: defaults.HTTPResponseHeaderTimeout,
		ExpectContinueTimeout: defaults.HTTPExpectContinueTimeout,
		IdleConnTimeout:       defaults.HTTPIdleConnTimeout,
		ForceAttemptHTTP2:     true,

		//nolint:gosec // opt-in for lab instances with self-signed certificates
		TLSClientConfig: &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: insecureSkipVerify,
		},
	}
}

// APIURL builds an absolute URL for a path below the API root.
func (c *Client) APIURL(path string, query url.Values) string {
	u := c.BaseURL + c.APIPath + "/" + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// NextURL resolves a links.next value, which is a path relative to the service root.
func (c *Client) NextURL(next string) string {
	if strings.HasPrefix(next, "http://") || strings.HasPrefix(next, "https://") {
		return next
	}
	return c.BaseURL + "/" + strings.TrimPrefix(next, "/")
}

// PageQuery returns the query of the first page of a collection, merged with extra.
func (c *Client) PageQuery(extra url.Values) url.Values {
	q := url.Values{}
	for k, v := range extra {
		q[k] = append([]string(nil), v...)
	}
	q.Set("offset", "0")
	q.Set("limit", strconv.Itoa(c.PageSize))
	return q
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	URL        string
	Body       []byte
}

// Get performs one GET against rawURL. Any status other than 200 is returned
// as an error: NOT_FOUND for 404, UNEXPECTED_STATUS otherwise, both wrapping
// a *StatusError. Connection level failures are TRANSPORT_FAILURE.
func (c *Client) Get(ctx context.Context, rawURL string) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, transportFailure(rawURL, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeInvalidRequest,
			"failed to create request", err, map[string]any{"url": rawURL})
	}
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if c.username != "" || c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	slog.Debug("api request", "url", rawURL)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		requestsTotal.WithLabelValues("error").Inc()
		return nil, transportFailure(rawURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	requestDuration.Observe(time.Since(start).Seconds())
	requestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()
	if err != nil {
		return nil, transportFailure(rawURL, fmt.Errorf("failed to read body: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, statusFailure(rawURL, resp.StatusCode, body)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		URL:        rawURL,
		Body:       body,
	}, nil
}

// GetRecord fetches a single entity below the API root.
func (c *Client) GetRecord(ctx context.Context, path string, query url.Values) (*record.Record, error) {
	u := c.APIURL(path, query)
	resp, err := c.Get(ctx, u)
	if err != nil {
		return nil, err
	}
	r, err := record.Parse(resp.Body)
	if err != nil {
		return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeUnexpectedStatus,
			"malformed entity response", err, map[string]any{"url": u})
	}
	return r, nil
}

// Collect traverses every page of a sub-collection and returns its records.
// On failure the records gathered before the failing page are returned along
// with the error.
func (c *Client) Collect(ctx context.Context, path string, query url.Values) ([]*record.Record, error) {
	var out []*record.Record
	p := c.Pages(path, query)
	for p.Next(ctx) {
		out = append(out, p.Page().Data...)
	}
	return out, p.Err()
}
