// Package extract pulls best-effort fields out of source payloads.
// Extractors never fail: a field that cannot be found comes back empty.
package extract

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Record is a decoded JSON object whose shape varies between endpoints.
// Its accessors try typed lookups and report whether they succeeded.
type Record map[string]any

// ParseRecord decodes a JSON object. Non-object payloads yield false.
func ParseRecord(b []byte) (Record, bool) {
	var r map[string]any
	if err := json.Unmarshal(b, &r); err != nil || r == nil {
		return nil, false
	}
	return Record(r), true
}

// String returns the first key holding a non-empty scalar, rendered as text.
func (r Record) String(keys ...string) (string, bool) {
	for _, k := range keys {
		if s, ok := scalar(r[k]); ok {
			return s, true
		}
	}
	return "", false
}

// First returns the first element of a list-valued key, or the value
// itself when it is not a list.
func (r Record) First(key string) (any, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, false
	}
	if list, isList := v.([]any); isList {
		if len(list) == 0 {
			return nil, false
		}
		return list[0], list[0] != nil
	}
	return v, true
}

// FirstString is First rendered as text, skipping empty values.
func (r Record) FirstString(keys ...string) (string, bool) {
	for _, k := range keys {
		v, ok := r.First(k)
		if !ok {
			continue
		}
		if s, ok := scalar(v); ok {
			return s, true
		}
	}
	return "", false
}

// Object returns a nested object.
func (r Record) Object(key string) (Record, bool) {
	m, ok := r[key].(map[string]any)
	if !ok {
		return nil, false
	}
	return Record(m), true
}

// FirstObject returns the first element of key when it is an object.
func (r Record) FirstObject(key string) (Record, bool) {
	v, ok := r.First(key)
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	return Record(m), true
}

// Objects returns every object element of a list-valued key.
func (r Record) Objects(key string) []Record {
	list, _ := r[key].([]any)
	out := make([]Record, 0, len(list))
	for _, v := range list {
		if m, ok := v.(map[string]any); ok {
			out = append(out, Record(m))
		}
	}
	return out
}

// Strings returns the non-empty scalar elements of a list-valued key.
func (r Record) Strings(key string) []string {
	list, _ := r[key].([]any)
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := scalar(v); ok {
			out = append(out, s)
		}
	}
	return out
}

func scalar(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		t = strings.TrimSpace(t)
		return t, t != ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}
