package memo

import (
	"fmt"

	"github.com/IvanBrykalov/memocache/cache"
)

// Func1 memoizes a one-argument function and returns a function with the
// same signature. The key identity defaults to fn's symbol name.
//
//	square := memo.Func1(c, func(n int) (int, error) { return n * n, nil })
//	v, err := square(12)
func Func1[A, V any](c cache.Cache[string, V], fn func(A) (V, error), opts ...Option) func(A) (V, error) {
	m := wrap(c, func(args Args) (V, error) {
		a, err := argAs[A](args, 0)
		if err != nil {
			var zero V
			return zero, err
		}
		return fn(a)
	}, funcName(fn), opts)

	return func(a A) (V, error) { return m.Call(a) }
}

// Func2 is Func1 for two-argument functions.
func Func2[A, B, V any](c cache.Cache[string, V], fn func(A, B) (V, error), opts ...Option) func(A, B) (V, error) {
	m := wrap(c, func(args Args) (V, error) {
		a, err := argAs[A](args, 0)
		if err != nil {
			var zero V
			return zero, err
		}
		b, err := argAs[B](args, 1)
		if err != nil {
			var zero V
			return zero, err
		}
		return fn(a, b)
	}, funcName(fn), opts)

	return func(a A, b B) (V, error) { return m.Call(a, b) }
}

// argAs reads positional argument i as T. A nil interface argument becomes
// T's zero value.
func argAs[T any](args Args, i int) (T, error) {
	var zero T
	if i >= len(args.Positional) {
		return zero, fmt.Errorf("memo: missing argument %d", i)
	}
	raw := args.Positional[i]
	if raw == nil {
		return zero, nil
	}
	v, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("memo: argument %d is %T, want %T", i, raw, zero)
	}
	return v, nil
}
