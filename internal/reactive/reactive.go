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

// Package reactive provides an observable record.
package reactive

import "sync"

// Observer is called with the previous and the current value of the record after
// each update.
type Observer[T any] func(prev, cur T)

// Record holds a value of type T and notifies the observers when it is
// updated.  It is safe for concurrent use.  Observers are called
// synchronously, outside of the record lock, in the order of registration.
type Record[T any] struct {
	mu   sync.RWMutex
	v    T
	obs  map[int]Observer[T]
	next int
}

// NewRecord returns a new Record initialised with v.
func NewRecord[T any](v T) *Record[T] {
	return &Record[T]{v: v}
}

// Get returns the current value.
func (r *Record[T]) Get() T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.v
}

// Update calls fn with the pointer to the value, so that fn can modify it,
// and notifies the observers.  It returns the previous and the current
// values.
func (r *Record[T]) Update(fn func(v *T)) (prev, cur T) {
	prev, cur = r.Swap(fn)
	r.Notify(prev, cur)
	return prev, cur
}

// Swap is like Update, but it does not notify the observers.  The caller is
// expected to call Notify at a later point.
func (r *Record[T]) Swap(fn func(v *T)) (prev, cur T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev = r.v
	fn(&r.v)
	return prev, r.v
}

// Notify calls the observers with prev and cur.
func (r *Record[T]) Notify(prev, cur T) {
	r.mu.RLock()
	observers := r.observers()
	r.mu.RUnlock()

	for _, o := range observers {
		o(prev, cur)
	}
}

// Observe registers the observer.  It returns the function that removes the
// observer.
func (r *Record[T]) Observe(o Observer[T]) (cancel func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.obs == nil {
		r.obs = make(map[int]Observer[T])
	}
	id := r.next
	r.next++
	r.obs[id] = o
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.obs, id)
	}
}

// observers returns the registered observers in the order of registration.
// Caller must hold the lock.
func (r *Record[T]) observers() []Observer[T] {
	oo := make([]Observer[T], 0, len(r.obs))
	for id := 0; id < r.next; id++ {
		if o, ok := r.obs[id]; ok {
			oo = append(oo, o)
		}
	}
	return oo
}
