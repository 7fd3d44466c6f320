// Package reproject locates coordinate pairs inside decoded JSON payloads and
// rewrites them through a pluggable transform.
//
// Payloads are the values produced by decoding JSON into an `any` with
// UseNumber enabled: nil, bool, json.Number, string, []any and map[string]any.
package reproject

import (
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Kind is the JSON type of a decoded value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

var kindNames = [...]string{"invalid", "null", "bool", "number", "string", "array", "object"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// KindOf classifies v. Native Go numbers are accepted alongside json.Number so
// programmatic callers can build payloads without going through a decoder.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case json.Number, float64, float32, int, int32, int64, uint, uint32, uint64:
		return KindNumber
	case string:
		return KindString
	case []any:
		return KindArray
	case map[string]any:
		return KindObject
	default:
		return KindInvalid
	}
}

// Float returns the numeric value of v, or false when v is not a finite number.
func Float(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case json.Number:
		parsed, err := strconv.ParseFloat(string(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// segment is one step of a location inside the payload: an object key or an
// array index.
type segment struct {
	key   string
	index int
}

type path []segment

func (p path) key(k string) path {
	next := make(path, len(p), len(p)+1)
	copy(next, p)
	return append(next, segment{key: k, index: -1})
}

func (p path) index(i int) path {
	next := make(path, len(p), len(p)+1)
	copy(next, p)
	return append(next, segment{index: i})
}

func (p path) String() string {
	var b strings.Builder
	b.WriteByte('$')
	for _, s := range p {
		if s.index < 0 {
			b.WriteByte('.')
			b.WriteString(s.key)
			continue
		}
		b.WriteByte('[')
		b.WriteString(strconv.Itoa(s.index))
		b.WriteByte(']')
	}
	return b.String()
}
