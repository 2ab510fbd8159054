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

package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/rusq/chatdialog/dialog"
	"github.com/rusq/chatdialog/message"
)

var (
	styleHeader = lipgloss.NewStyle().Bold(true).Underline(true)
	styleFaint  = lipgloss.NewStyle().Faint(true)
	styleNotice = lipgloss.NewStyle().Italic(true).Faint(true)
	styleBold   = lipgloss.NewStyle().Bold(true)
)

const (
	timeFormat = "15:04"
	dayFormat  = "Monday, 2 January 2006"
)

// printer prints the dialog messages to the terminal.  It is safe for
// concurrent use.
type printer struct {
	mu  sync.Mutex
	w   io.Writer
	loc *time.Location
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w, loc: time.Local}
}

// Header prints the dialog name, topic and counters.
func (p *printer) Header(d *dialog.Dialog) {
	st := d.State()
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintln(p.w, styleHeader.Render(st.Name))
	if st.Topic != "" {
		fmt.Fprintln(p.w, st.Topic)
	}
	var info []string
	if st.Unread > 0 {
		info = append(info, humanize.Comma(int64(st.Unread))+" unread")
	}
	if !st.LastActive.IsZero() {
		info = append(info, "active "+humanize.Time(st.LastActive))
	}
	if fr := d.Frozen(); fr != "" {
		info = append(info, fr)
	}
	if len(info) > 0 {
		fmt.Fprintln(p.w, styleFaint.Render(strings.Join(info, " · ")))
	}
	fmt.Fprintln(p.w)
}

// Messages prints the messages.
func (p *printer) Messages(mm []*message.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range mm {
		p.message(m)
	}
}

// Update prints the changes of the dialog state.  It is a dialog observer.
func (p *printer) Update(prev, cur dialog.State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n := len(cur.Messages) - len(prev.Messages); n > 0 {
		if len(prev.Messages) == 0 || cur.Messages[0] == prev.Messages[0] {
			for _, m := range cur.Messages[len(prev.Messages):] {
				p.message(m)
			}
		} else {
			fmt.Fprintln(p.w, styleFaint.Render(fmt.Sprintf("(%s older messages loaded)", humanize.Comma(int64(n)))))
		}
	}
	if cur.Topic != prev.Topic {
		fmt.Fprintln(p.w, styleNotice.Render("Topic: "+cur.Topic))
	}
	if cur.Participants != prev.Participants {
		fmt.Fprintln(p.w, styleFaint.Render(fmt.Sprintf("%s participants", humanize.Comma(int64(cur.Participants)))))
	}
}

// message prints a single message.  Caller must hold the lock.
func (p *printer) message(m *message.Message) {
	ts := m.TS.In(p.loc)
	if m.DayChanged {
		fmt.Fprintln(p.w, styleFaint.Render(fmt.Sprintf("-- %s (%s) --", ts.Format(dayFormat), humanize.Time(ts))))
	}
	from := lipgloss.NewStyle().Foreground(lipgloss.Color(m.Color)).Render(m.From)
	var text string
	switch {
	case m.Highlight:
		text = styleBold.Render(m.Message)
	case m.Type == message.TypeNotice:
		text = styleNotice.Render(m.Message)
	case m.Type == message.TypeAction:
		text = "* " + m.Message
	default:
		text = m.Message
	}
	fmt.Fprintf(p.w, "%s %s %s\n", styleFaint.Render(ts.Format(timeFormat)), from, text)
	for _, e := range m.Embeds {
		fmt.Fprintln(p.w, styleFaint.Render("  ↳ "+e))
	}
}
