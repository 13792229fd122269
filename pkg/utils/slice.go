package utils

// FilterSlice maps every element through fn and keeps those it accepts.
func FilterSlice[S any, D any](src []S, fn func(S) (D, bool)) []D {
	out := make([]D, 0, len(src))
	for _, s := range src {
		if d, ok := fn(s); ok {
			out = append(out, d)
		}
	}
	return out
}

// Distinct returns the unique values of src in first-seen order.
func Distinct[T comparable](src []T) []T {
	seen := make(map[T]struct{}, len(src))
	out := make([]T, 0, len(src))
	for _, v := range src {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
