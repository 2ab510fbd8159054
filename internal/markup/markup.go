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

// Package markup converts chat message text to HTML.
package markup

import (
	"html/template"
	"log/slog"
	"strings"

	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/extension"
	ghtml "github.com/yuin/goldmark/renderer/html"
)

// Renderer is the interface for converting message text to markup.
type Renderer interface {
	Render(s string) template.HTML
}

// Goldmark is the markdown renderer.  Raw HTML in the message text is
// omitted.  It is safe for concurrent use.
type Goldmark struct {
	r goldmark.Markdown
}

func NewGoldmark() *Goldmark {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM, emoji.Emoji),
		goldmark.WithRendererOptions(
			ghtml.WithHardWraps(),
			ghtml.WithXHTML(),
		),
	)
	return &Goldmark{r: md}
}

// Render converts the message text s to HTML.  Chat messages are single
// paragraphs, so the enclosing <p> element is removed.  On conversion error
// the escaped source text is returned.
func (g *Goldmark) Render(s string) template.HTML {
	var buf strings.Builder
	if err := g.r.Convert([]byte(s), &buf); err != nil {
		slog.Debug("markup conversion error", "error", err)
		return template.HTML(template.HTMLEscapeString(s))
	}
	return template.HTML(unwrapParagraph(strings.TrimSpace(buf.String())))
}

// unwrapParagraph removes the <p>...</p> if it is the only top level element.
func unwrapParagraph(s string) string {
	const (
		open  = "<p>"
		close = "</p>"
	)
	if !strings.HasPrefix(s, open) || !strings.HasSuffix(s, close) {
		return s
	}
	inner := s[len(open) : len(s)-len(close)]
	if strings.Contains(inner, open) {
		return s
	}
	return inner
}
