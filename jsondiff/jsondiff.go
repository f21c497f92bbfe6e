// Package jsondiff compares two JSON objects key by key and describes the first difference.
package jsondiff

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Options controls a comparison.
type Options struct {
	// LeftName and RightName are used in mismatch descriptions. They default to "left" and
	// "right".
	LeftName  string
	RightName string

	// IgnoreKeys are top-level keys removed from both sides before comparing.
	IgnoreKeys []string
}

// KeySetMismatch means the two objects do not have the same top-level keys.
type KeySetMismatch struct {
	LeftName, RightName string
	LeftKeys, RightKeys []string
}

func (e KeySetMismatch) Error() string {
	return fmt.Sprintf("key sets differ: %s has [%s], %s has [%s]",
		e.LeftName, strings.Join(e.LeftKeys, ", "), e.RightName, strings.Join(e.RightKeys, ", "))
}

// ValueMismatch identifies the first key, in sorted order, whose values differ.
type ValueMismatch struct {
	Key                 string
	LeftName, RightName string
	Left, Right         ldvalue.Value
}

func (e ValueMismatch) Error() string {
	return fmt.Sprintf("values differ for key %q: %s has %s, %s has %s",
		e.Key, e.LeftName, e.Left.JSONString(), e.RightName, e.Right.JSONString())
}

// ComparisonError means one side could not be treated as a JSON object at all.
type ComparisonError struct {
	Side string
	Err  error
}

func (e ComparisonError) Error() string {
	return fmt.Sprintf("cannot compare %s: %s", e.Side, e.Err)
}

func (e ComparisonError) Unwrap() error { return e.Err }

// Compare returns nil if a and b are equal JSON objects once IgnoreKeys are removed. Otherwise
// it returns a KeySetMismatch, ValueMismatch, or ComparisonError. It does not panic on
// arbitrary input.
func Compare(a, b interface{}, opts Options) error {
	leftName, rightName := opts.LeftName, opts.RightName
	if leftName == "" {
		leftName = "left"
	}
	if rightName == "" {
		rightName = "right"
	}

	left, err := Normalize(a)
	if err != nil {
		return ComparisonError{Side: leftName, Err: err}
	}
	right, err := Normalize(b)
	if err != nil {
		return ComparisonError{Side: rightName, Err: err}
	}

	ignored := make(map[string]bool, len(opts.IgnoreKeys))
	for _, k := range opts.IgnoreKeys {
		ignored[k] = true
	}
	leftKeys := keysWithout(left, ignored)
	rightKeys := keysWithout(right, ignored)

	if !sameStrings(leftKeys, rightKeys) {
		return KeySetMismatch{LeftName: leftName, RightName: rightName, LeftKeys: leftKeys, RightKeys: rightKeys}
	}
	for _, k := range leftKeys {
		lv, rv := left.GetByKey(k), right.GetByKey(k)
		if !lv.Equal(rv) {
			return ValueMismatch{Key: k, LeftName: leftName, RightName: rightName, Left: lv, Right: rv}
		}
	}
	return nil
}

// Normalize converts a value to an ldvalue object. It accepts an ldvalue.Value, JSON text as
// string or []byte, or anything that encoding/json can marshal.
func Normalize(v interface{}) (ldvalue.Value, error) {
	var value ldvalue.Value
	switch x := v.(type) {
	case ldvalue.Value:
		value = x
	case []byte:
		if err := json.Unmarshal(x, &value); err != nil {
			return ldvalue.Null(), err
		}
	case string:
		if err := json.Unmarshal([]byte(x), &value); err != nil {
			return ldvalue.Null(), err
		}
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return ldvalue.Null(), err
		}
		if err := json.Unmarshal(data, &value); err != nil {
			return ldvalue.Null(), err
		}
	}
	if value.Type() != ldvalue.ObjectType {
		return ldvalue.Null(), fmt.Errorf("expected a JSON object, got %s", value.Type())
	}
	return value, nil
}

func keysWithout(value ldvalue.Value, ignored map[string]bool) []string {
	var ret []string
	for _, k := range value.Keys() {
		if !ignored[k] {
			ret = append(ret, k)
		}
	}
	sort.Strings(ret)
	return ret
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
