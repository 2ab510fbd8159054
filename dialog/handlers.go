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

package dialog

import (
	"strings"

	"github.com/rusq/chatdialog/event"
	"github.com/rusq/chatdialog/message"
	"github.com/rusq/chatdialog/roster"
)

// Notice templates.
const (
	tmplMode          = "%1 got mode %2 from %3."
	tmplNickChangeMe  = "You (%1) changed nick to %2."
	tmplNickChange    = "%1 changed nick to %2."
	tmplPart          = "%1 parted."
	tmplKick          = "%1 was kicked by %2"
	tmplReason        = ": %3"
	tmplPartReason    = " Reason: %2"
	// %1 is the total number of participants, the last one included.
	tmplParticipants  = "Participants (%1): %2"
	tmplParticipantsN = " and %3."
)

// Handle applies the real-time event to the dialog.  Events that reference
// unknown participants are ignored.
func (d *Dialog) Handle(ev event.Event) {
	d.mu.Lock()
	defer d.unlock()

	switch e := ev.(type) {
	case *event.Message:
		m := e.Msg
		d.addMessage(&m)
	case *event.Mode:
		d.onMode(e)
	case *event.NickChange:
		d.onNickChange(e)
	case *event.Part:
		d.onPart(e)
	case *event.RosterSnapshot:
		d.onRosterSnapshot(e)
	default:
		d.lg.Debug("event ignored", "kind", ev.Kind())
	}
}

func (d *Dialog) notice(tmpl string, vars ...any) {
	d.addMessage(&message.Message{Message: tmpl, Vars: vars})
}

func (d *Dialog) onMode(e *event.Mode) {
	if e.Nick == "" {
		mode := e.Mode
		d.update(func(st *State) {
			st.Mode = mode
		})
		return
	}
	mode := e.Mode
	d.participants([]roster.Member{{Nick: e.Nick, Mode: &mode}})
	d.notice(tmplMode, e.Nick, e.Mode, e.From)
}

func (d *Dialog) onNickChange(e *event.NickChange) {
	if !d.roster.Has(e.OldNick) || e.OldNick == e.NewNick {
		d.lg.Debug("nick change ignored", "old_nick", e.OldNick, "new_nick", e.NewNick)
		return
	}
	// the new nick is added by the roster refresh that follows.
	d.roster.Delete(e.OldNick)
	tmpl := tmplNickChange
	if e.IsMe() {
		tmpl = tmplNickChangeMe
	}
	d.notice(tmpl, e.OldNick, e.NewNick)
}

func (d *Dialog) onPart(e *event.Part) {
	p, ok := d.roster.Get(e.Nick)
	if !ok || p.Me {
		d.lg.Debug("part ignored", "nick", e.Nick)
		return
	}
	d.roster.Delete(e.Nick)
	d.publishSize()
	tmpl, vars := partNotice(e)
	d.notice(tmpl, vars...)
}

// partNotice returns the notice template and its arguments for the part
// event.
func partNotice(e *event.Part) (string, []any) {
	switch {
	case e.Kicker != "" && e.Message != "":
		return tmplKick + tmplReason, []any{e.Nick, e.Kicker, e.Message}
	case e.Kicker != "":
		return tmplKick, []any{e.Nick, e.Kicker}
	case e.Message != "":
		return tmplPart + tmplPartReason, []any{e.Nick, e.Message}
	default:
		return tmplPart, []any{e.Nick}
	}
}

func (d *Dialog) onRosterSnapshot(e *event.RosterSnapshot) {
	d.replaceRoster(e)
	tmpl, vars := participantsNotice(d.roster.Names())
	d.notice(tmpl, vars...)
}

// participantsNotice returns the notice template and its arguments for the
// list of names: "Participants (3): a, b and c."
func participantsNotice(names []string) (string, []any) {
	n := len(names)
	if n <= 1 {
		return tmplParticipants, []any{n, strings.Join(names, ", ")}
	}
	return tmplParticipants + tmplParticipantsN, []any{n, strings.Join(names[:n-1], ", "), names[n-1]}
}
