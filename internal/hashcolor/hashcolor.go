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

// Package hashcolor derives a stable display colour from an identifier.
package hashcolor

import (
	"hash/fnv"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	saturation = 0.55
	lightness  = 0.45
)

// Func returns the colour for an identifier.
type Func func(id string) string

// For returns the colour of id as a "#rrggbb" string.  The same id always
// yields the same colour.
func For(id string) string {
	h := fnv.New32a()
	h.Write([]byte(id))
	hue := float64(h.Sum32() % 360)
	return colorful.Hsl(hue, saturation, lightness).Hex()
}
