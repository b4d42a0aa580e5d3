// Typed field values.
//
// Documents map field names to a small closed set of value kinds: string,
// number, or a homogeneous array of either. Keeping the set closed lets
// the query operators pattern-match on kind instead of probing dynamic
// types, and makes "numeric comparison on a string field" an explicit
// non-match rather than an accident. Anything outside the set (booleans,
// nulls, nested objects, mixed arrays) is rejected at the codec boundary.
package shelf

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Kind identifies the concrete type stored in a Value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindString
	KindNumber
	KindStrings
	KindNumbers
)

// Value is one document field: a scalar or a homogeneous array. The zero
// Value is invalid and matches nothing.
type Value struct {
	kind Kind
	str  string
	num  float64
	strs []string
	nums []float64
}

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number returns a numeric value. All numbers are float64, matching the
// JSON number model.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Strings returns a string-array value.
func Strings(ss ...string) Value { return Value{kind: KindStrings, strs: ss} }

// Numbers returns a number-array value.
func Numbers(ns ...float64) Value { return Value{kind: KindNumbers, nums: ns} }

// Kind reports the value's kind.
func (v Value) Kind() Kind { return v.kind }

// Str returns the string content, or "" for other kinds.
func (v Value) Str() string {
	if v.kind == KindString {
		return v.str
	}
	return ""
}

// Num returns the numeric content, or 0 for other kinds.
func (v Value) Num() float64 {
	if v.kind == KindNumber {
		return v.num
	}
	return 0
}

// StrSlice returns a copy of the string-array content, or nil.
func (v Value) StrSlice() []string {
	if v.kind != KindStrings {
		return nil
	}
	out := make([]string, len(v.strs))
	copy(out, v.strs)
	return out
}

// NumSlice returns a copy of the number-array content, or nil.
func (v Value) NumSlice() []float64 {
	if v.kind != KindNumbers {
		return nil
	}
	out := make([]float64, len(v.nums))
	copy(out, v.nums)
	return out
}

// scalar reports whether the value is a single string or number.
func (v Value) scalar() bool {
	return v.kind == KindString || v.kind == KindNumber
}

// equal compares two values. Scalars compare by content; arrays compare
// element-wise. Values of different kinds are never equal.
func (v Value) equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindStrings:
		if len(v.strs) != len(o.strs) {
			return false
		}
		for i := range v.strs {
			if v.strs[i] != o.strs[i] {
				return false
			}
		}
		return true
	case KindNumbers:
		if len(v.nums) != len(o.nums) {
			return false
		}
		for i := range v.nums {
			if v.nums[i] != o.nums[i] {
				return false
			}
		}
		return true
	}
	return false
}

// MarshalJSON emits the plain self-describing form: "x", 3, ["a"], [1].
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindStrings:
		if v.strs == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.strs)
	case KindNumbers:
		if v.nums == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.nums)
	}
	return nil, ErrInvalidValue
}

// UnmarshalJSON accepts the plain form and assigns the matching kind.
// Empty arrays decode as KindStrings. Anything outside the closed set
// fails with ErrInvalidValue.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	got, err := fromAny(raw)
	if err != nil {
		return err
	}
	*v = got
	return nil
}

// fromAny converts a decoded JSON value into a Value, enforcing the
// closed kind set.
func fromAny(raw any) (Value, error) {
	switch x := raw.(type) {
	case string:
		return String(x), nil
	case float64:
		return Number(x), nil
	case []any:
		if len(x) == 0 {
			return Strings(), nil
		}
		switch x[0].(type) {
		case string:
			ss := make([]string, len(x))
			for i, e := range x {
				s, ok := e.(string)
				if !ok {
					return Value{}, fmt.Errorf("%w: mixed array", ErrInvalidValue)
				}
				ss[i] = s
			}
			return Strings(ss...), nil
		case float64:
			ns := make([]float64, len(x))
			for i, e := range x {
				n, ok := e.(float64)
				if !ok {
					return Value{}, fmt.Errorf("%w: mixed array", ErrInvalidValue)
				}
				ns[i] = n
			}
			return Numbers(ns...), nil
		}
		return Value{}, fmt.Errorf("%w: array element type", ErrInvalidValue)
	}
	return Value{}, fmt.Errorf("%w: %T", ErrInvalidValue, raw)
}
