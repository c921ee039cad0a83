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
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind identifies the JSON type of a field value.
type Kind int

const (
	// KindInvalid marks an absent or malformed value.
	KindInvalid Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindObject
	KindArray
)

// String returns the JSON type name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "invalid"
	}
}

// KindOf classifies a raw JSON value by its first significant byte.
func KindOf(raw json.RawMessage) Kind {
	b := bytes.TrimLeft(raw, " \t\r\n")
	if len(b) == 0 {
		return KindInvalid
	}
	switch b[0] {
	case 'n':
		return KindNull
	case 't', 'f':
		return KindBool
	case '"':
		return KindString
	case '{':
		return KindObject
	case '[':
		return KindArray
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return KindNumber
	default:
		return KindInvalid
	}
}

// Record is a schema-less JSON object as returned by the API for one entity.
// Field order is preserved and values are kept as raw JSON so that fields
// the engine does not touch are written back byte-for-byte.
//
// The zero value is an empty record ready to use.
type Record struct {
	keys   []string
	fields map[string]json.RawMessage
}

// New returns an empty record.
func New() *Record {
	return &Record{fields: make(map[string]json.RawMessage)}
}

// Parse decodes a JSON object into a Record.
func Parse(data []byte) (*Record, error) {
	r := New()
	if err := r.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return r, nil
}

// Len returns the number of fields.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Keys returns the field names in order.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Has reports whether the field is present.
func (r *Record) Has(key string) bool {
	if r == nil {
		return false
	}
	_, ok := r.fields[key]
	return ok
}

// Raw returns the raw JSON value of a field.
func (r *Record) Raw(key string) (json.RawMessage, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.fields[key]
	return v, ok
}

// Kind returns the JSON type of a field, KindInvalid when absent.
func (r *Record) Kind(key string) Kind {
	v, ok := r.Raw(key)
	if !ok {
		return KindInvalid
	}
	return KindOf(v)
}

// String returns a string field. Non-string values report false.
func (r *Record) String(key string) (string, bool) {
	v, ok := r.Raw(key)
	if !ok || KindOf(v) != KindString {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", false
	}
	return s, true
}

// Object returns a nested object field.
func (r *Record) Object(key string) (*Record, bool) {
	v, ok := r.Raw(key)
	if !ok || KindOf(v) != KindObject {
		return nil, false
	}
	obj, err := Parse(v)
	if err != nil {
		return nil, false
	}
	return obj, true
}

// Path follows nested objects and returns the string at the end of the path,
// e.g. Path("provider", "id").
func (r *Record) Path(keys ...string) (string, bool) {
	if len(keys) == 0 {
		return "", false
	}
	cur := r
	for _, k := range keys[:len(keys)-1] {
		next, ok := cur.Object(k)
		if !ok {
			return "", false
		}
		cur = next
	}
	return cur.String(keys[len(keys)-1])
}

// Items returns the objects held by a field. Both a plain array of objects and
// an embedded collection ({"count":..,"total":..,"data":[...]}) are accepted.
// Non-object elements are ignored.
func (r *Record) Items(key string) []*Record {
	v, ok := r.Raw(key)
	if !ok {
		return nil
	}
	switch KindOf(v) {
	case KindArray:
		return parseObjects(v)
	case KindObject:
		obj, err := Parse(v)
		if err != nil {
			return nil
		}
		data, ok := obj.Raw("data")
		if !ok || KindOf(data) != KindArray {
			return nil
		}
		return parseObjects(data)
	default:
		return nil
	}
}

func parseObjects(raw json.RawMessage) []*Record {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil
	}
	out := make([]*Record, 0, len(elems))
	for _, e := range elems {
		if KindOf(e) != KindObject {
			continue
		}
		obj, err := Parse(e)
		if err != nil {
			continue
		}
		out = append(out, obj)
	}
	return out
}

// ID returns the "id" field.
func (r *Record) ID() string {
	s, _ := r.String("id")
	return s
}

// TargetName returns the "targetName" field (users, groups).
func (r *Record) TargetName() string {
	s, _ := r.String("targetName")
	return s
}

// Name returns the "name" field (sites, devices).
func (r *Record) Name() string {
	s, _ := r.String("name")
	return s
}

// Set marshals v and stores it under key. An existing key keeps its position;
// a new key is appended.
func (r *Record) Set(key string, v any) error {
	raw, err := Encode(v)
	if err != nil {
		return fmt.Errorf("failed to encode field %q: %w", key, err)
	}
	r.SetRaw(key, raw)
	return nil
}

// Encode marshals v like json.Marshal but leaves <, > and & unescaped, so
// string values survive a round trip byte for byte.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// SetRaw stores an already encoded JSON value under key.
func (r *Record) SetRaw(key string, raw json.RawMessage) {
	if r.fields == nil {
		r.fields = make(map[string]json.RawMessage)
	}
	if _, ok := r.fields[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.fields[key] = raw
}

// MarshalJSON encodes the record with its original field order.
func (r *Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(r.fields[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping field order. A repeated key
// keeps its first position and its last value.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to decode record: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("failed to decode record: expected object, got %v", tok)
	}

	r.keys = r.keys[:0]
	r.fields = make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to decode record key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("failed to decode record: unexpected key %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("failed to decode field %q: %w", key, err)
		}
		r.SetRaw(key, raw)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("failed to decode record: %w", err)
	}
	return nil
}
