package api

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"
)

// Param is a single query parameter. A nil Value (or a nil pointer) means
// "not set" and is left out of the query string.
type Param struct {
	Key   string
	Value any
}

// Params is an ordered list of query parameters.
type Params []Param

// P builds Params from alternating key/value arguments.
func P(kv ...any) Params {
	p := make(Params, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		p = append(p, Param{Key: key, Value: kv[i+1]})
	}
	return p
}

// Add appends a parameter and returns the extended list.
func (p Params) Add(key string, value any) Params {
	return append(p, Param{Key: key, Value: value})
}

// Get returns the formatted value of the first parameter named key.
func (p Params) Get(key string) (string, bool) {
	for _, kv := range p {
		if kv.Key != key {
			continue
		}
		return formatValue(kv.Value)
	}
	return "", false
}

// Encode renders the query string in insertion order, skipping unset values.
func (p Params) Encode() string {
	var sb strings.Builder
	for _, kv := range p {
		v, ok := formatValue(kv.Value)
		if !ok {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(kv.Key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(v))
	}
	return sb.String()
}

func formatValue(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}
	switch val := rv.Interface().(type) {
	case string:
		return val, true
	case fmt.Stringer:
		return val.String(), true
	default:
		return fmt.Sprint(val), true
	}
}
