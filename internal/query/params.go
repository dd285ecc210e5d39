package query

import (
	"maps"
	"math"
	"strconv"
)

// Params is the argument map handed to a Fetcher. Values are never mutated in
// place by the query; every derived map is a fresh copy.
type Params map[string]any

// Clone returns a shallow copy. A nil Params clones to an empty map.
func (p Params) Clone() Params {
	if p == nil {
		return Params{}
	}
	return maps.Clone(p)
}

// With returns a copy of p with key set to v.
func (p Params) With(key string, v any) Params {
	out := p.Clone()
	out[key] = v
	return out
}

// Merge returns a copy of p overlaid with other; keys in other win.
func (p Params) Merge(other Params) Params {
	out := p.Clone()
	maps.Copy(out, other)
	return out
}

// Int reads key as an int, accepting the numeric types JSON and TOML decoders
// produce as well as decimal strings. def is returned when the key is missing
// or not numeric.
func (p Params) Int(key string, def int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case uint:
		return int(v)
	case uint32:
		return int(v)
	case uint64:
		if v > math.MaxInt {
			return def
		}
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// String reads key as a string, returning def when missing or not a string.
func (p Params) String(key, def string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return def
}
