package schemable

// Memoize wraps f so that it runs at most once per distinct argument.
//
// The cache lives as long as the returned function and is never evicted. It is not
// synchronized: callers sharing the function across goroutines must lock around it.
func Memoize[A comparable, B any](f func(A) B) func(A) B {
	cache := make(map[A]B)
	return func(a A) B {
		if b, ok := cache[a]; ok {
			return b
		}
		b := f(a)
		cache[a] = b
		return b
	}
}
