// Package reconcile computes the edits that turn a stored set of
// relationship edges into a desired one.
package reconcile

import "slices"

// Diff returns the elements of desired missing from current (add) and the
// elements of current absent from desired (remove). Duplicates are
// ignored. Both results keep the order of first appearance in their
// input, so callers get deterministic statements.
func Diff[T comparable](current, desired []T) (add, remove []T) {
	cur := make(map[T]struct{}, len(current))
	for _, v := range current {
		cur[v] = struct{}{}
	}
	want := make(map[T]struct{}, len(desired))
	for _, v := range desired {
		if _, ok := want[v]; ok {
			continue
		}
		want[v] = struct{}{}
		if _, ok := cur[v]; !ok {
			add = append(add, v)
		}
	}

	seen := make(map[T]struct{}, len(current))
	for _, v := range current {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		if _, ok := want[v]; !ok {
			remove = append(remove, v)
		}
	}
	return add, remove
}

// Unique returns vals without duplicates, keeping first appearances.
func Unique[T comparable](vals []T) []T {
	seen := make(map[T]struct{}, len(vals))
	res := make([]T, 0, len(vals))
	for _, v := range vals {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		res = append(res, v)
	}
	return slices.Clip(res)
}
