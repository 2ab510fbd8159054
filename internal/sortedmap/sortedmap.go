// Copyright (c) 2021-2026 Rustam Gilyazov and Contributors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package sortedmap provides a string-keyed map that exports its values in
// the order defined by a comparison function.
package sortedmap

import "slices"

// Map is a map of values keyed by string.  The values are exported in the
// order defined by the compare function.  Sorting is lazy: it happens on the
// first read after a modification.  Map is not safe for concurrent use.
type Map[V any] struct {
	m       map[string]V
	keys    []string
	sorted  bool
	compare func(a, b V) int
}

// New creates a new Map with the compare function cmp.  If cmp is nil, the
// insertion order is preserved.
func New[V any](cmp func(a, b V) int) *Map[V] {
	return &Map[V]{
		m:       make(map[string]V),
		compare: cmp,
		sorted:  true,
	}
}

// Get returns the value stored under the key.
func (m *Map[V]) Get(key string) (V, bool) {
	v, ok := m.m[key]
	return v, ok
}

// Has returns true if the key is present.
func (m *Map[V]) Has(key string) bool {
	_, ok := m.m[key]
	return ok
}

// Set inserts or replaces the value stored under the key.
func (m *Map[V]) Set(key string, v V) {
	if _, ok := m.m[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.m[key] = v
	m.sorted = false
}

// Delete removes the key.  It returns true if the key was present.
func (m *Map[V]) Delete(key string) bool {
	if _, ok := m.m[key]; !ok {
		return false
	}
	delete(m.m, key)
	if i := slices.Index(m.keys, key); i >= 0 {
		m.keys = slices.Delete(m.keys, i, i+1)
	}
	return true
}

// Len returns the number of values in the map.
func (m *Map[V]) Len() int {
	return len(m.m)
}

// Clear removes all values.
func (m *Map[V]) Clear() {
	clear(m.m)
	m.keys = m.keys[:0]
	m.sorted = true
}

// Values returns the values in sorted order.
func (m *Map[V]) Values() []V {
	m.sort()
	vv := make([]V, 0, len(m.keys))
	for _, k := range m.keys {
		vv = append(vv, m.m[k])
	}
	return vv
}

// Keys returns the keys in the sorted order of their values.
func (m *Map[V]) Keys() []string {
	m.sort()
	return slices.Clone(m.keys)
}

func (m *Map[V]) sort() {
	if m.sorted || m.compare == nil {
		m.sorted = true
		return
	}
	slices.SortStableFunc(m.keys, func(a, b string) int {
		return m.compare(m.m[a], m.m[b])
	})
	m.sorted = true
}

// MapValues calls fn for each value of m in sorted order and returns the results.
func MapValues[V, R any](m *Map[V], fn func(V) R) []R {
	vv := m.Values()
	rr := make([]R, 0, len(vv))
	for _, v := range vv {
		rr = append(rr, fn(v))
	}
	return rr
}
