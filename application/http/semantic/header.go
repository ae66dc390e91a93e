package semantic

import (
	"strings"

	"http-client/application/http"
	"http-client/application/util/rule"
)

type Field struct{ Name, Value string }

// Headers is an ordered list of fields.
// Names are matched case-insensitively and may repeat.
// The original casing and order are kept as received.
type Headers struct{ fields []Field }

func NewHeaders(fields ...Field) Headers {
	clone := make([]Field, len(fields))
	copy(clone, fields)
	return Headers{fields: clone}
}

// HeadersFrom creates semantic header from raw fields.
func HeadersFrom(fields []http.Field) Headers {
	h := Headers{fields: make([]Field, 0, len(fields))}
	for _, field := range fields {
		h.fields = append(h.fields, Field{Name: string(field.Name), Value: string(field.Value)})
	}
	return h
}

func (h *Headers) Len() int { return len(h.fields) }

// Fields returns a copy of every field in order.
func (h *Headers) Fields() []Field {
	clone := make([]Field, len(h.fields))
	copy(clone, h.fields)
	return clone
}

func (h *Headers) ToRawFields() []http.Field {
	fields := make([]http.Field, 0, len(h.fields))
	for _, f := range h.fields {
		fields = append(fields, http.Field{Name: []byte(f.Name), Value: []byte(f.Value)})
	}
	return fields
}

// Get assumes the field is a singleton field.
// If key has multiple lines, the first one is returned.
// For list-based field, use [Headers.Values].
func (h *Headers) Get(key string) (value string, ok bool) {
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, key) {
			return f.Value, true
		}
	}
	return "", false
}

// Values returns the value of every line named key, in order.
func (h *Headers) Values(key string) (values []string, ok bool) {
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, key) {
			values = append(values, f.Value)
		}
	}
	return values, len(values) > 0
}

func (h *Headers) Has(key string) bool {
	_, ok := h.Get(key)
	return ok
}

// ContainsToken reports whether token appears, case-insensitively, as an
// element of the comma-separated lists in any line named key.
func (h *Headers) ContainsToken(key, token string) bool {
	values, _ := h.Values(key)
	return rule.ListContainsToken(values, token)
}

// Set assumes the field is a singleton field.
// It drops every existing line of key and appends a single one.
func (h *Headers) Set(key, value string) {
	h.Del(key)
	h.Add(key, value)
}

func (h *Headers) Add(key, value string) {
	if rule.IsValidToken(key) {
		key = toCanonicalFieldName(key)
	}
	h.fields = append(h.fields, Field{Name: key, Value: value})
}

func (h *Headers) Del(key string) {
	kept := make([]Field, 0, len(h.fields))
	for _, f := range h.fields {
		if !strings.EqualFold(f.Name, key) {
			kept = append(kept, f)
		}
	}
	h.fields = kept
}

func (h Headers) Clone() Headers { return NewHeaders(h.fields...) }

// This only works for valid token.
func toCanonicalFieldName(s string) string {
	const capitalDiff = 'a' - 'A'
	b := []byte(s)
	upper := true
	for i, c := range b {
		if upper && 'a' <= c && c <= 'z' {
			c -= capitalDiff
		} else if !upper && 'A' <= c && c <= 'Z' {
			c += capitalDiff
		}
		b[i] = c
		upper = c == '-'
	}
	return string(b)
}
