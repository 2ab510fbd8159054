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

package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type state struct {
	Name   string
	Unread int
}

func TestRecord_Update(t *testing.T) {
	r := NewRecord(state{Name: "x"})
	var got [][2]state
	r.Observe(func(prev, cur state) {
		got = append(got, [2]state{prev, cur})
	})

	prev, cur := r.Update(func(v *state) { v.Unread++ })
	assert.Equal(t, state{Name: "x"}, prev)
	assert.Equal(t, state{Name: "x", Unread: 1}, cur)
	assert.Equal(t, state{Name: "x", Unread: 1}, r.Get())
	assert.Equal(t, [][2]state{{{Name: "x"}, {Name: "x", Unread: 1}}}, got)
}

func TestRecord_Observe(t *testing.T) {
	r := NewRecord(0)
	var calls []string
	cancelA := r.Observe(func(_, _ int) { calls = append(calls, "a") })
	r.Observe(func(_, _ int) { calls = append(calls, "b") })

	r.Update(func(v *int) { *v = 1 })
	assert.Equal(t, []string{"a", "b"}, calls)

	cancelA()
	calls = nil
	r.Update(func(v *int) { *v = 2 })
	assert.Equal(t, []string{"b"}, calls)
}

func TestRecord_observerCanRead(t *testing.T) {
	r := NewRecord(0)
	var seen int
	r.Observe(func(_, _ int) { seen = r.Get() })
	r.Update(func(v *int) { *v = 42 })
	assert.Equal(t, 42, seen)
}

func TestRecord_Swap(t *testing.T) {
	r := NewRecord(0)
	var calls int
	r.Observe(func(_, _ int) { calls++ })

	prev, cur := r.Swap(func(v *int) { *v = 5 })
	assert.Equal(t, 0, prev)
	assert.Equal(t, 5, cur)
	assert.Equal(t, 0, calls, "swap must not notify")

	r.Notify(prev, cur)
	assert.Equal(t, 1, calls)
}
