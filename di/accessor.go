package di

import (
	"context"
	"fmt"
	"reflect"

	apperrors "github.com/kbukum/beankit/errors"
)

// Accessor is a typed deferred reference to a bean. It re-resolves the
// current registration on every Get, so replacing the bean is visible
// without another Lookup.
type Accessor[R any] struct {
	h *Handle
}

// Lookup returns an accessor for the bean registered under name. The bean's
// declared type must be assignable to R.
//
//	hello, err := di.Lookup[TextSeq](ctx, m, di.Key("hello"))
//	seq, err := hello.Get(ctx)
func Lookup[R any](ctx context.Context, m *Manager, name Name) (Accessor[R], error) {
	h, err := m.Lookup(ctx, name, reflect.TypeFor[R]())
	if err != nil {
		return Accessor[R]{}, err
	}
	return Accessor[R]{h: h}, nil
}

// Name returns the bean name.
func (a Accessor[R]) Name() Name {
	if a.h == nil {
		return Name{}
	}
	return a.h.name
}

// Get returns the current instance, constructing it if needed.
func (a Accessor[R]) Get(ctx context.Context) (R, error) {
	var zero R
	if a.h == nil {
		return zero, apperrors.InvalidInput("accessor", "accessor was not obtained from Lookup")
	}
	v, err := a.h.Get(ctx)
	if err != nil {
		return zero, err
	}
	r, ok := as[R](v)
	if !ok {
		bean := a.h.name.String()
		return zero, apperrors.IncompatibleType(bean,
			fmt.Sprintf("incompatible type for bean %s, instance is %T but requested %s", bean, v, reflect.TypeFor[R]()),
			map[string]string{"produced": fmt.Sprintf("%T", v), "requested": reflect.TypeFor[R]().String()})
	}
	return r, nil
}

// MustGet is Get that panics on error.
func (a Accessor[R]) MustGet(ctx context.Context) R {
	r, err := a.Get(ctx)
	if err != nil {
		panic(fmt.Sprintf("di: failed to get %s: %v", a.Name(), err))
	}
	return r
}

// as converts v to R. Assignability is wider than a type assertion for
// unnamed types, e.g. a []int instance requested as a named slice type.
func as[R any](v any) (R, bool) {
	if r, ok := v.(R); ok {
		return r, true
	}
	var zero R
	rt := reflect.TypeFor[R]()
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || !rv.Type().AssignableTo(rt) {
		return zero, false
	}
	out := reflect.New(rt).Elem()
	out.Set(rv)
	return out.Interface().(R), true
}
