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
	"net/url"

	cnserrors "github.com/NVIDIA/xm-capture/pkg/errors"
	"github.com/NVIDIA/xm-capture/pkg/record"
)

// Pager walks an offset/limit collection by following the links.next cursor
// returned with every page. It issues one request per call to Next and stops
// at the first page without a next link or at the first failure.
//
//	p := client.Pages("sites", nil)
//	for p.Next(ctx) {
//	    for _, r := range p.Page().Data { ... }
//	}
//	if err := p.Err(); err != nil { ... }
type Pager struct {
	client  *Client
	next    string
	current string
	page    *record.Page
	pages   int
	err     error
	done    bool

	// requested holds every URL fetched so far
	requested map[string]struct{}
}

// Pages returns a Pager over the collection at path. The first request carries
// offset=0 and the client's page size merged into query.
func (c *Client) Pages(path string, query url.Values) *Pager {
	return &Pager{
		client:    c,
		next:      c.APIURL(path, c.PageQuery(query)),
		requested: make(map[string]struct{}),
	}
}

// Next fetches the following page. It returns false once the collection is
// exhausted or a request failed; check Err to tell the two apart.
func (p *Pager) Next(ctx context.Context) bool {
	if p.done || p.err != nil {
		return false
	}

	p.current = p.next
	p.requested[p.current] = struct{}{}
	resp, err := p.client.Get(ctx, p.current)
	if err != nil {
		p.err = err
		p.done = true
		return false
	}

	page, err := record.ParsePage(resp.Body)
	if err != nil {
		p.err = cnserrors.WrapWithContext(cnserrors.ErrCodeUnexpectedStatus,
			"malformed collection response", err, map[string]any{"url": p.current})
		p.done = true
		return false
	}

	p.page = page
	p.pages++
	pagesTotal.Inc()

	if !page.HasNext() {
		p.done = true
		return true
	}

	p.next = p.client.NextURL(page.Links.Next)
	switch _, seen := p.requested[p.next]; {
	case p.next == p.current:
		p.err = cnserrors.NewWithContext(cnserrors.ErrCodeUnexpectedStatus,
			"pagination cursor did not advance", map[string]any{"url": p.current})
		p.done = true
	case seen:
		// following it again would emit the same records twice
		p.err = cnserrors.NewWithContext(cnserrors.ErrCodeUnexpectedStatus,
			"pagination cursor revisited", map[string]any{"url": p.current, "next": p.next})
		p.done = true
	}
	return true
}

// Page returns the page fetched by the last successful Next.
func (p *Pager) Page() *record.Page {
	return p.page
}

// URL returns the URL of the last request.
func (p *Pager) URL() string {
	return p.current
}

// Pages returns the number of pages fetched so far.
func (p *Pager) Pages() int {
	return p.pages
}

// Err returns the failure that ended the traversal, if any.
func (p *Pager) Err() error {
	return p.err
}
