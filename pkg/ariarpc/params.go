package ariarpc

import "reflect"

// buildParams assembles a positional parameter list. A non-empty token is
// placed first, absent arguments are skipped rather than sent as null, and
// an empty result is returned as nil so the params member is left out of
// the request entirely.
func buildParams(token string, args ...any) []any {
	var params []any
	if token != "" {
		params = append(params, token)
	}
	for _, arg := range args {
		if isAbsent(arg) {
			continue
		}
		params = append(params, arg)
	}
	if len(params) == 0 {
		return nil
	}
	return params
}

// isAbsent reports whether arg carries no value: untyped nil, or a nil
// pointer, slice, map or interface.
func isAbsent(arg any) bool {
	if arg == nil {
		return true
	}
	v := reflect.ValueOf(arg)
	switch v.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		return v.IsNil()
	}
	return false
}
