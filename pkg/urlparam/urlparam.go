// Package urlparam encodes and decodes the scalar parameter maps carried by
// views: query parameters and opaque props.
//
// Values are scalars: string, bool, any integer kind, or any float kind.
// When a query string is parsed back, values are coerced only when the
// conversion is lossless:
//
//	"true" / "false"  → bool
//	"42", "-7"        → int
//	"19.99"           → float64
//	"01234", "+1", "1.50", "1e3", "" → string (unchanged)
//
// Example:
//
//	q := urlparam.Params{"page": 2, "sort": "name", "desc": true}
//	raw := urlparam.Encode(q)          // "desc=true&page=2&sort=name"
//	back := urlparam.ParseQuery(raw)   // Params{"desc": true, "page": 2, "sort": "name"}
package urlparam

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Params is a string-keyed map of scalar values. Key order is irrelevant.
type Params map[string]any

// Clone returns a shallow copy. A nil map clones to nil.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Keys returns the keys in lexical order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// UnmarshalJSON decodes numbers as int when they are integral and as
// float64 otherwise, so params survive a round-trip through a persisted
// state record with the same types they were parsed with.
func (p *Params) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	if raw == nil {
		*p = nil
		return nil
	}

	out := make(Params, len(raw))
	for k, v := range raw {
		if n, ok := v.(json.Number); ok {
			if i, err := strconv.Atoi(n.String()); err == nil {
				out[k] = i
				continue
			}
			f, err := n.Float64()
			if err != nil {
				return fmt.Errorf("param %q: %w", k, err)
			}
			out[k] = f
			continue
		}
		out[k] = v
	}
	*p = out
	return nil
}

// Format converts a scalar value to its query-string form.
func Format(v any) string {
	if v == nil {
		return ""
	}
	return formatValue(reflect.ValueOf(v))
}

func formatValue(v reflect.Value) string {
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'f', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}

// ParseValue applies the lossless coercion rules to a single raw value.
func ParseValue(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}

	if i, err := strconv.Atoi(s); err == nil && strconv.Itoa(i) == s {
		return i
	}
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil && strconv.FormatFloat(f, 'f', -1, 64) == s {
			return f
		}
	}
	return s
}

// ParseQuery parses a raw query string, with or without the leading "?".
// Keys without a value parse to the empty string. For repeated keys the
// last value wins.
func ParseQuery(raw string) Params {
	raw = strings.TrimPrefix(raw, "?")
	params := Params{}
	if raw == "" {
		return params
	}

	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		k, err := url.QueryUnescape(key)
		if err != nil {
			k = key
		}
		v, err := url.QueryUnescape(value)
		if err != nil {
			v = value
		}
		params[k] = ParseValue(v)
	}
	return params
}

// Encode serializes params into a query string with keys sorted. Nil values
// are skipped.
func Encode(p Params) string {
	if len(p) == 0 {
		return ""
	}
	values := make(url.Values, len(p))
	for k, v := range p {
		if v == nil {
			continue
		}
		values.Set(k, Format(v))
	}
	return values.Encode()
}

// Equal reports whether two param maps hold the same keys with equal values.
// Nil and empty maps are equal. Numbers compare by value across int and
// float kinds; strings never equal numbers or booleans.
func Equal(a, b Params) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !ValueEqual(av, bv) {
			return false
		}
	}
	return true
}

// ValueEqual compares two scalar values using the rules of Equal.
func ValueEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	switch {
	case isInt(av) && isInt(bv):
		return toInt(av) == toInt(bv)
	case isNumber(av) && isNumber(bv):
		return toFloat(av) == toFloat(bv)
	case av.Kind() == reflect.String && bv.Kind() == reflect.String:
		return av.String() == bv.String()
	case av.Kind() == reflect.Bool && bv.Kind() == reflect.Bool:
		return av.Bool() == bv.Bool()
	}
	return false
}

// Merge applies partial on top of base. A nil value in partial deletes the
// key. With replaceAll the base is ignored entirely.
func Merge(base, partial Params, replaceAll bool) Params {
	var out Params
	if replaceAll {
		out = Params{}
	} else {
		out = base.Clone()
		if out == nil {
			out = Params{}
		}
	}
	for k, v := range partial {
		if v == nil {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}

func isInt(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func isNumber(v reflect.Value) bool {
	return isInt(v) || v.Kind() == reflect.Float32 || v.Kind() == reflect.Float64
}

func toInt(v reflect.Value) int64 {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(v.Uint())
	}
	return v.Int()
}

func toFloat(v reflect.Value) float64 {
	switch {
	case v.Kind() == reflect.Float32 || v.Kind() == reflect.Float64:
		return v.Float()
	case v.Kind() >= reflect.Uint && v.Kind() <= reflect.Uint64:
		return float64(v.Uint())
	}
	return float64(v.Int())
}
