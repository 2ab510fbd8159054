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

package markup

import (
	"html/template"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGoldmark_Render(t *testing.T) {
	tests := []struct {
		name string
		s    string
		want template.HTML
	}{
		{
			"plain",
			"hello world",
			"hello world",
		},
		{
			"emphasis",
			"hello *world*",
			"hello <em>world</em>",
		},
		{
			"raw html is omitted",
			"a <b>b</b>",
			"a <!-- raw HTML omitted -->b<!-- raw HTML omitted -->",
		},
		{
			"empty",
			"",
			"",
		},
	}
	g := NewGoldmark()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Render(tt.s))
		})
	}
}

func Test_unwrapParagraph(t *testing.T) {
	tests := []struct {
		name string
		s    string
		want string
	}{
		{"single", "<p>x</p>", "x"},
		{"two paragraphs", "<p>x</p>\n<p>y</p>", "<p>x</p>\n<p>y</p>"},
		{"no paragraph", "<ul><li>x</li></ul>", "<ul><li>x</li></ul>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, unwrapParagraph(tt.s))
		})
	}
}
