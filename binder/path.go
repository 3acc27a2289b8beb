package binder

import (
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
)

// Path binds URL path parameters into struct fields tagged `path:"name"`.
// The extractor looks a parameter up by name, chi.URLParam fits directly:
//
//	r.Delete("/{id}", handler.Wrap(h.delete,
//		handler.WithBinders[idRequest](binder.Path(chi.URLParam)),
//	))
//
// Fields tagged `path:"name,required"` fail with ErrMissingParam when the
// parameter is empty. Supported kinds: string, signed and unsigned integers,
// bool.
func Path(extractor func(r *http.Request, name string) string) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if extractor == nil {
			return ErrNilExtractor
		}
		return bindTagged(v, "path", func(name string) string { return extractor(r, name) })
	}
}

// Query binds query string values into fields tagged `query:"name"`.
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		q := r.URL.Query()
		return bindTagged(v, "query", q.Get)
	}
}

func bindTagged(v any, tag string, lookup func(string) string) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return ErrInvalidTarget
	}
	rv = rv.Elem()
	rt := rv.Type()

	for i := range rt.NumField() {
		sf := rt.Field(i)
		raw, ok := sf.Tag.Lookup(tag)
		if !ok || raw == "-" || !sf.IsExported() {
			continue
		}
		name, flags, _ := strings.Cut(raw, ",")
		if name == "" {
			name = strings.ToLower(sf.Name)
		}

		value := lookup(name)
		if value == "" {
			if flags == "required" {
				return fmt.Errorf("%w: %s", ErrMissingParam, name)
			}
			continue
		}
		if err := setField(rv.Field(i), value); err != nil {
			return fmt.Errorf("%w: %s", err, name)
		}
	}
	return nil
}

func setField(f reflect.Value, value string) error {
	switch f.Kind() {
	case reflect.String:
		f.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, f.Type().Bits())
		if err != nil {
			return ErrInvalidValue
		}
		f.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, f.Type().Bits())
		if err != nil {
			return ErrInvalidValue
		}
		f.SetUint(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return ErrInvalidValue
		}
		f.SetBool(b)
	default:
		return ErrUnsupported
	}
	return nil
}
