package query

import "reflect"

// ParamsFunc derives the params for a fetch-more attempt from the current
// state.
type ParamsFunc[R any] func(s State[R]) Params

// CombineFunc merges a newly fetched page into the accumulated result. It must
// not mutate old: readers may still hold the previous snapshot.
type CombineFunc[R any] func(old, next R) R

// Lengther is implemented by sequence-shaped results. The default ParamsFunc
// uses it to compute the next "start" offset.
type Lengther interface {
	Len() int
}

// Appender is implemented by results that know how to concatenate a following
// page. The default CombineFunc prefers it over reflection.
type Appender[R any] interface {
	Append(next R) R
}

// Page is the stock sequence-shaped result, {"data": [...]}.
type Page[T any] struct {
	Data []T `json:"data" yaml:"data"`
}

// Len reports the number of accumulated items.
func (p Page[T]) Len() int { return len(p.Data) }

// Append returns a new page holding p's items followed by next's.
func (p Page[T]) Append(next Page[T]) Page[T] {
	data := make([]T, 0, len(p.Data)+len(next.Data))
	data = append(data, p.Data...)
	data = append(data, next.Data...)
	return Page[T]{Data: data}
}

var lengtherType = reflect.TypeFor[Lengther]()

// DefaultParams returns {"start": n} where n is the length of the current
// result. The length comes from Len, from a slice result, or from the list
// field of a struct result (see DefaultCombine). Any other shape produces
// empty params; cursor-based sources must supply their own ParamsFunc.
func DefaultParams[R any](s State[R]) Params {
	if !s.HasResult {
		if isSequence(reflect.TypeFor[R]()) {
			return Params{"start": 0}
		}
		return Params{}
	}
	if n, ok := sequenceLen(any(s.Result)); ok {
		return Params{"start": n}
	}
	return Params{}
}

// DefaultCombine concatenates sequence-shaped results and otherwise replaces
// old with next. A result is sequence-shaped when it implements Appender, is
// a slice, or is a struct whose list field is an exported slice named Data or
// its only exported slice field. For structs the merged value is a copy of
// next whose list holds old's items followed by next's.
func DefaultCombine[R any](old, next R) R {
	if a, ok := any(old).(Appender[R]); ok {
		return a.Append(next)
	}
	ov := reflect.ValueOf(old)
	nv := reflect.ValueOf(next)
	if !ov.IsValid() || !nv.IsValid() || ov.Type() != nv.Type() {
		return next
	}
	if ov.Kind() == reflect.Slice {
		if merged, ok := concat(ov, nv).Interface().(R); ok {
			return merged
		}
		return next
	}
	if i, ok := listField(ov.Type()); ok {
		out := reflect.New(nv.Type()).Elem()
		out.Set(nv)
		out.Field(i).Set(concat(ov.Field(i), nv.Field(i)))
		if merged, ok := out.Interface().(R); ok {
			return merged
		}
	}
	return next
}

// concat returns a fresh slice so neither input's backing array is shared.
func concat(a, b reflect.Value) reflect.Value {
	out := reflect.MakeSlice(a.Type(), 0, a.Len()+b.Len())
	out = reflect.AppendSlice(out, a)
	return reflect.AppendSlice(out, b)
}

// listField reports the index of a struct's list field: the exported slice
// field named Data, or else its only exported slice field.
func listField(t reflect.Type) (int, bool) {
	if t == nil || t.Kind() != reflect.Struct {
		return 0, false
	}
	if f, ok := t.FieldByName("Data"); ok && len(f.Index) == 1 && f.IsExported() && f.Type.Kind() == reflect.Slice {
		return f.Index[0], true
	}
	idx := -1
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() || f.Type.Kind() != reflect.Slice {
			continue
		}
		if idx >= 0 {
			return 0, false
		}
		idx = i
	}
	return idx, idx >= 0
}

func isSequence(t reflect.Type) bool {
	if t == nil {
		return false
	}
	if t.Implements(lengtherType) {
		return true
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		return true
	}
	_, ok := listField(t)
	return ok
}

func sequenceLen(v any) (int, bool) {
	if l, ok := v.(Lengther); ok {
		return l.Len(), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv.Len(), true
	case reflect.Struct:
		if i, ok := listField(rv.Type()); ok {
			return rv.Field(i).Len(), true
		}
	}
	return 0, false
}

// merger resolves the fetch-more functions with precedence call site >
// construction > defaults.
type merger[R any] struct {
	params  ParamsFunc[R]
	combine CombineFunc[R]
}

func newMerger[R any](params ParamsFunc[R], combine CombineFunc[R]) merger[R] {
	m := merger[R]{params: params, combine: combine}
	if m.params == nil {
		m.params = DefaultParams[R]
	}
	if m.combine == nil {
		m.combine = DefaultCombine[R]
	}
	return m
}

func (m merger[R]) resolve(opts MoreOptions[R]) (ParamsFunc[R], CombineFunc[R]) {
	params, combine := m.params, m.combine
	if opts.UpdateParams != nil {
		params = opts.UpdateParams
	}
	if opts.UpdateResult != nil {
		combine = opts.UpdateResult
	}
	return params, combine
}
