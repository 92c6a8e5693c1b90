package ast

import "reflect"

// Equal reports whether two trees have the same shape and scalar values.
// Location fields are excluded, so identical constructs at different
// offsets compare equal.  Used by tests and by decode verification.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	va, vb := reflect.ValueOf(a).Elem(), reflect.ValueOf(b).Elem()
	for i := 0; i < va.NumField(); i++ {
		fa, fb := va.Field(i), vb.Field(i)
		if fa.Type() == locType {
			continue
		}
		switch fa.Kind() {
		case reflect.String:
			if fa.String() != fb.String() {
				return false
			}
		case reflect.Bool:
			if fa.Bool() != fb.Bool() {
				return false
			}
		case reflect.Int:
			if fa.Int() != fb.Int() {
				return false
			}
		case reflect.Slice:
			if fa.Len() != fb.Len() {
				return false
			}
			for j := 0; j < fa.Len(); j++ {
				if !equalField(fa.Index(j), fb.Index(j)) {
					return false
				}
			}
		default:
			if !equalField(fa, fb) {
				return false
			}
		}
	}
	return true
}

func equalField(a, b reflect.Value) bool {
	if a.IsNil() || b.IsNil() {
		return a.IsNil() == b.IsNil()
	}
	return Equal(a.Interface().(Node), b.Interface().(Node))
}
