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

package record

import (
	"encoding/json"
	"fmt"
)

// Page is one response of an offset/limit collection endpoint.
type Page struct {
	// Total is the server's cardinality of the collection at request time.
	Total int `json:"total"`
	// Count is the number of records in Data.
	Count int `json:"count"`
	// Data holds the records of this page in server order.
	Data []*Record `json:"data"`
	// Links carries the continuation cursor.
	Links Links `json:"links"`
}

// Links holds pagination links relative to the service root.
type Links struct {
	Self string `json:"self,omitempty"`
	Next string `json:"next,omitempty"`
}

// HasNext reports whether another page follows.
func (p *Page) HasNext() bool {
	return p != nil && p.Links.Next != ""
}

// ParsePage decodes a collection response.
func ParsePage(data []byte) (*Page, error) {
	var p Page
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode page: %w", err)
	}
	return &p, nil
}

// ErrorBody is the structured error payload returned by the API.
// Any field may be missing.
type ErrorBody struct {
	Code    any    `json:"code,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

// ParseErrorBody decodes an error payload. Malformed bodies yield an empty ErrorBody.
func ParseErrorBody(data []byte) ErrorBody {
	var b ErrorBody
	if len(data) == 0 {
		return b
	}
	if err := json.Unmarshal(data, &b); err != nil {
		return ErrorBody{}
	}
	return b
}

// CodeString renders the code, "none" when absent.
func (b ErrorBody) CodeString() string {
	if b.Code == nil {
		return "none"
	}
	if f, ok := b.Code.(float64); ok && f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprint(b.Code)
}

// ReasonString renders the reason, "none" when absent.
func (b ErrorBody) ReasonString() string {
	if b.Reason == "" {
		return "none"
	}
	return b.Reason
}

// MessageString renders the message, "none" when absent.
func (b ErrorBody) MessageString() string {
	if b.Message == "" {
		return "none"
	}
	return b.Message
}
