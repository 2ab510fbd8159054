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

package message

import (
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/rusq/chatdialog/chattime"
	"github.com/rusq/chatdialog/internal/hashcolor"
	"github.com/rusq/chatdialog/internal/i18n"
	"github.com/rusq/chatdialog/internal/markup"
)

// SystemSender is the sender of messages that have no sender and do not
// belong to a connection.
const SystemSender = "Convos"

var (
	urlRE      = regexp.MustCompile(`https?://\S+`)
	trailingRE = regexp.MustCompile(`\W$`)
)

// Processor fills in the defaults and derived fields of messages.  It is not
// safe for concurrent use.
type Processor struct {
	sender string
	tr     i18n.Translator
	color  hashcolor.Func
	md     markup.Renderer
	now    func() time.Time
	loc    *time.Location
	lg     *slog.Logger
}

// Option configures the Processor.
type Option func(*Processor)

// WithTranslator sets the translator used to expand message templates.
func WithTranslator(tr i18n.Translator) Option {
	return func(p *Processor) {
		if tr != nil {
			p.tr = tr
		}
	}
}

// WithColorFunc sets the function that returns the sender colour.
func WithColorFunc(fn hashcolor.Func) Option {
	return func(p *Processor) {
		if fn != nil {
			p.color = fn
		}
	}
}

// WithRenderer sets the markup renderer.
func WithRenderer(r markup.Renderer) Option {
	return func(p *Processor) {
		if r != nil {
			p.md = r
		}
	}
}

// WithClock sets the function that returns the current time, used for
// messages without a timestamp.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLocation sets the location in which the day boundaries are detected.
func WithLocation(loc *time.Location) Option {
	return func(p *Processor) {
		if loc != nil {
			p.loc = loc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(lg *slog.Logger) Option {
	return func(p *Processor) {
		if lg != nil {
			p.lg = lg
		}
	}
}

// NewProcessor returns a new Processor.  Messages without a sender are
// attributed to defaultSender, or to SystemSender, if it is empty.
func NewProcessor(defaultSender string, opts ...Option) *Processor {
	p := &Processor{
		sender: defaultSender,
		tr:     i18n.Plain,
		color:  hashcolor.For,
		now:    time.Now,
		loc:    time.Local,
		lg:     slog.Default(),
	}
	if p.sender == "" {
		p.sender = SystemSender
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.md == nil {
		p.md = markup.NewGoldmark()
	}
	return p
}

// Process processes messages list[start:stop].  The predecessor of each
// message is looked up in list, so list must be the complete list of the
// dialog messages.  Messages that were already processed are left intact.
func (p *Processor) Process(list []*Message, start, stop int) {
	start = max(start, 0)
	stop = min(stop, len(list))
	for i := start; i < stop; i++ {
		var prev *Message
		if i > 0 {
			prev = list[i-1]
		}
		p.process(list[i], prev)
	}
}

func (p *Processor) process(m *Message, prev *Message) {
	if m.processed {
		return
	}
	if m.From == "" {
		m.From = p.sender
	}
	if m.Type == "" {
		m.Type = TypeNotice
	}
	if len(m.Vars) > 0 {
		m.Message = p.tr.Translate(m.Message, m.Vars...)
		m.Vars = nil
	}

	m.FromID = strings.ToLower(m.From)
	m.Color = p.color(m.FromID)
	m.TS = m.Timestamp.T()
	if m.TS.IsZero() {
		m.TS = p.now()
		m.Timestamp = chattime.Time(m.TS)
	}
	if prev != nil {
		pts := prev.TS
		if pts.IsZero() {
			pts = prev.Timestamp.T()
		}
		m.DayChanged = !chattime.SameDay(m.TS, pts, p.loc)
		m.IsSameSender = m.From == prev.From
	} else {
		m.DayChanged = false
		m.IsSameSender = false
	}
	m.Embeds = Embeds(m.Message)
	m.Markdown = p.md.Render(m.Message)
	m.processed = true
}

// Embeds returns the URLs found in the text.  A trailing non-word character
// is stripped from each URL, so that the punctuation is not included.
func Embeds(text string) []string {
	urls := urlRE.FindAllString(text, -1)
	if len(urls) == 0 {
		return nil
	}
	for i, u := range urls {
		urls[i] = trailingRE.ReplaceAllString(u, "")
	}
	return urls
}
