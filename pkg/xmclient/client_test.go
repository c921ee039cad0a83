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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cnserrors "github.com/NVIDIA/xm-capture/pkg/errors"
)

// fakeAPI serves pages of sites two at a time and records every request.
type fakeAPI struct {
	mu       sync.Mutex
	requests []*http.Request
}

func (f *fakeAPI) seen() []*http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*http.Request(nil), f.requests...)
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/xm/1/sites", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, r)
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("offset") {
		case "0":
			fmt.Fprint(w, `{"count":2,"total":3,"data":[{"id":"A","name":"Alpha"},{"id":"B","name":"Beta"}],`+
				`"links":{"self":"/api/xm/1/sites?offset=0&limit=2","next":"/api/xm/1/sites?offset=2&limit=2"}}`)
		case "2":
			fmt.Fprint(w, `{"count":1,"total":3,"data":[{"id":"C","name":"Gamma"}],`+
				`"links":{"self":"/api/xm/1/sites?offset=2&limit=2"}}`)
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})
	mux.HandleFunc("/api/xm/1/people/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"code":404,"reason":"Not Found","message":"Could not find a person with id missing"}`)
	})
	mux.HandleFunc("/api/xm/1/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `oops`)
	})
	mux.HandleFunc("/api/xm/1/loop", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"count":1,"total":9,"data":[{"id":"L"}],"links":{"next":"/api/xm/1/loop?limit=2&offset=0"}}`)
	})
	mux.HandleFunc("/api/xm/1/cycle", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, r)
		f.mu.Unlock()

		// offset 0 links to offset 2, which links back to offset 0
		switch r.URL.Query().Get("offset") {
		case "0":
			fmt.Fprint(w, `{"count":2,"total":4,"data":[{"id":"A"},{"id":"B"}],"links":{"next":"/api/xm/1/cycle?limit=2&offset=2"}}`)
		default:
			fmt.Fprint(w, `{"count":2,"total":4,"data":[{"id":"C"},{"id":"D"}],"links":{"next":"/api/xm/1/cycle?limit=2&offset=0"}}`)
		}
	})
	return mux
}

func newTestClient(t *testing.T, opts ...Option) (*Client, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{}
	server := httptest.NewServer(api.handler(t))
	t.Cleanup(server.Close)

	opts = append([]Option{WithBasicAuth("admin", "secret"), WithPageSize(2)}, opts...)
	c, err := New(server.URL, opts...)
	require.NoError(t, err)
	return c, api
}

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c, err := New("https://acme.xmatters.com/")
		require.NoError(t, err)
		assert.Equal(t, "https://acme.xmatters.com", c.BaseURL)
		assert.Equal(t, "/api/xm/1", c.APIPath)
		assert.Equal(t, 100, c.PageSize)
		assert.NotNil(t, c.httpClient)
	})

	t.Run("options", func(t *testing.T) {
		hc := &http.Client{}
		c, err := New("https://acme.xmatters.com",
			WithAPIPath("api/xm/2/"),
			WithPageSize(500),
			WithUserAgent("test"),
			WithTimeout(time.Second),
			WithRateLimit(10, 0),
			WithHTTPClient(hc),
		)
		require.NoError(t, err)
		assert.Equal(t, "/api/xm/2", c.APIPath)
		assert.Equal(t, 500, c.PageSize)
		assert.Equal(t, "test", c.UserAgent)
		assert.Same(t, hc, c.httpClient)
		require.NotNil(t, c.limiter)
		assert.Equal(t, 1, c.limiter.Burst())
	})

	t.Run("insecure skip verify", func(t *testing.T) {
		c, err := New("https://lab.example.com", WithInsecureSkipVerify(true))
		require.NoError(t, err)
		tr, ok := c.httpClient.Transport.(*http.Transport)
		require.True(t, ok)
		assert.True(t, tr.TLSClientConfig.InsecureSkipVerify)
	})

	for _, bad := range []string{"", "acme.xmatters.com", "://nope"} {
		t.Run("invalid "+bad, func(t *testing.T) {
			_, err := New(bad)
			require.Error(t, err)
			assert.True(t, cnserrors.IsCode(err, cnserrors.ErrCodeInvalidRequest))
		})
	}
}

func TestAPIURL(t *testing.T) {
	c, err := New("https://acme.xmatters.com", WithPageSize(50))
	require.NoError(t, err)

	assert.Equal(t, "https://acme.xmatters.com/api/xm/1/sites?limit=50&offset=0",
		c.APIURL("sites", c.PageQuery(nil)))
	assert.Equal(t, "https://acme.xmatters.com/api/xm/1/people/a%20b",
		c.APIURL("/people/a%20b", nil))
	assert.Equal(t, "https://acme.xmatters.com/api/xm/1/sites?offset=100&limit=50",
		c.NextURL("/api/xm/1/sites?offset=100&limit=50"))
	assert.Equal(t, "https://other.example.com/x", c.NextURL("https://other.example.com/x"))
}

func TestPager_FollowsNextLinks(t *testing.T) {
	c, api := newTestClient(t)
	ctx := context.Background()

	var ids []string
	p := c.Pages("sites", nil)
	for p.Next(ctx) {
		for _, r := range p.Page().Data {
			ids = append(ids, r.ID())
		}
	}
	require.NoError(t, p.Err())
	assert.Equal(t, []string{"A", "B", "C"}, ids)
	assert.Equal(t, 2, p.Pages())
	assert.False(t, p.Next(ctx), "exhausted pager must stay exhausted")

	reqs := api.seen()
	require.Len(t, reqs, 2)
	assert.Equal(t, "0", reqs[0].URL.Query().Get("offset"))
	assert.Equal(t, "2", reqs[0].URL.Query().Get("limit"))
	assert.Equal(t, "2", reqs[1].URL.Query().Get("offset"))
	for _, r := range reqs {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "admin", user)
		assert.Equal(t, "secret", pass)
		assert.Equal(t, "xmcapture/1.0", r.Header.Get("User-Agent"))
	}
}

func TestPager_StopsOnNonAdvancingCursor(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	p := c.Pages("loop", nil)
	require.True(t, p.Next(ctx))
	assert.Len(t, p.Page().Data, 1)
	assert.False(t, p.Next(ctx))
	require.Error(t, p.Err())
	assert.True(t, cnserrors.IsCode(p.Err(), cnserrors.ErrCodeUnexpectedStatus))
}

func TestPager_StopsOnCursorCycle(t *testing.T) {
	c, api := newTestClient(t)
	ctx := context.Background()

	p := c.Pages("cycle", nil)
	var ids []string
	for p.Next(ctx) {
		for _, r := range p.Page().Data {
			ids = append(ids, r.ID())
		}
	}

	require.Error(t, p.Err())
	assert.True(t, cnserrors.IsCode(p.Err(), cnserrors.ErrCodeUnexpectedStatus))
	assert.Contains(t, p.Err().Error(), "revisited")
	assert.Equal(t, []string{"A", "B", "C", "D"}, ids)
	assert.Equal(t, 2, p.Pages())
	assert.Len(t, api.seen(), 2)
}

func TestGet_NotFound(t *testing.T) {
	c, _ := newTestClient(t)

	_, err := c.GetRecord(context.Background(), "people/missing", nil)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Contains(t, se.URL, "/api/xm/1/people/missing")
	assert.Equal(t, "404", se.Body.CodeString())
	assert.Equal(t, "Not Found", se.Body.ReasonString())
	assert.Equal(t, "Could not find a person with id missing", se.Body.MessageString())

	ctx := cnserrors.ContextOf(err)
	assert.Equal(t, http.StatusNotFound, ctx["status"])
}

func TestGet_UnexpectedStatus(t *testing.T) {
	c, _ := newTestClient(t)

	_, err := c.GetRecord(context.Background(), "broken", nil)
	require.Error(t, err)
	assert.False(t, IsNotFound(err))
	assert.Equal(t, cnserrors.ErrCodeUnexpectedStatus, cnserrors.CodeOf(err))

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.Equal(t, "none", se.Body.CodeString())
}

func TestGet_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	base := server.URL
	server.Close()

	c, err := New(base, WithTimeout(time.Second))
	require.NoError(t, err)

	p := c.Pages("sites", nil)
	assert.False(t, p.Next(context.Background()))
	require.Error(t, p.Err())
	assert.Equal(t, cnserrors.ErrCodeTransportFailure, cnserrors.CodeOf(p.Err()))
	assert.Equal(t, p.URL(), cnserrors.ContextOf(p.Err())["url"])
}

func TestGet_Canceled(t *testing.T) {
	c, _ := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Get(ctx, c.APIURL("sites", c.PageQuery(nil)))
	require.Error(t, err)
	assert.Equal(t, cnserrors.ErrCodeTransportFailure, cnserrors.CodeOf(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCollect_ReturnsPartialOnFailure(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls > 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"count":1,"data":[{"id":"d1"}],"links":{"next":"/api/xm/1/people/u/devices?offset=1&limit=1"}}`)
	}))
	defer server.Close()

	c, err := New(server.URL, WithPageSize(1))
	require.NoError(t, err)

	items, err := c.Collect(context.Background(), "people/u/devices", nil)
	require.Error(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "d1", items[0].ID())
}

func TestLogError(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, notFound := c.GetRecord(ctx, "people/missing", nil)
	LogError(ctx, logger, "lookup failed", notFound, "id", "missing")
	_, broken := c.GetRecord(ctx, "broken", nil)
	LogError(ctx, logger, "lookup failed", broken)
	LogError(ctx, logger, "ignored", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))

	assert.Equal(t, "WARN", first["level"])
	assert.Equal(t, "missing", first["id"])
	assert.Equal(t, "Not Found", first["reason"])
	assert.Contains(t, first["url"], "/people/missing")

	assert.Equal(t, "ERROR", second["level"])
	assert.EqualValues(t, 500, second["status"])
	assert.Equal(t, "none", second["message"])
}
