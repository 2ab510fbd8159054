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

// Package primitive contains some primitives and helper functions.
package primitive

// IfTrue returns second argument if the condition is true, otherwise, returns the third one.
// Same as C's ternary condition operator:
//
//	cond ? t : f;
func IfTrue[T any](cond bool, t T, f T) T {
	if cond {
		return t
	}
	return f
}

// Ptr returns a pointer to a copy of v.  Handy for building partial updates.
func Ptr[T any](v T) *T {
	return &v
}

// NVL returns the first non-zero value, or the zero value if all of them are
// zero.
func NVL[T comparable](v T, vv ...T) T {
	var zero T
	if v != zero {
		return v
	}
	for _, alt := range vv {
		if alt != zero {
			return alt
		}
	}
	return zero
}
