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
	"github.com/rusq/chatdialog/event"
	"github.com/rusq/chatdialog/roster"
)

// Commands sent to load the participants.
const (
	cmdIsOn  = "/ison"
	cmdNames = "/names"
)

// Participants merges the members into the roster and returns the
// participants in the sorted order.  Called without arguments, it just
// returns the roster.
func (d *Dialog) Participants(members ...roster.Member) []roster.Participant {
	d.mu.Lock()
	defer d.unlock()
	d.participants(members)
	return d.roster.List()
}

func (d *Dialog) participants(members []roster.Member) {
	for _, m := range members {
		d.roster.Merge(m)
	}
	if len(members) > 0 {
		d.publishSize()
	}
}

// publishSize updates the participant count in the state.
func (d *Dialog) publishSize() {
	n := d.roster.Len()
	d.update(func(st *State) {
		st.Participants = n
	})
}

// Participant returns the participant with the nickname.
func (d *Dialog) Participant(nick string) (roster.Participant, bool) {
	d.mu.Lock()
	defer d.unlock()
	return d.roster.Get(nick)
}

// Send sends the message to the dialog on the event bus.  fn, if not nil, is
// called with the response event.
func (d *Dialog) Send(message string, fn func(event.Event)) {
	if d.bus == nil {
		d.lg.Debug("no bus, message not sent", "message", message)
		return
	}
	d.bus.Send(d.command(message), fn)
}

func (d *Dialog) command(message string) Command {
	return Command{
		ConnectionID: d.connectionID,
		DialogID:     d.dialogID,
		Message:      message,
	}
}

// loadParticipants requests the participant list from the server, once the
// dialog is ready for it.  It fires at most once.  Caller must hold the
// lock.
func (d *Dialog) loadParticipants() {
	if d.participantsLoaded || d.dialogID == "" || d.bus == nil || d.history == nil {
		return
	}
	if d.lastFetch != StatusSuccess || d.Frozen() != "" || !d.bus.Ready() {
		return
	}
	d.participantsLoaded = true

	var (
		cmd = d.command(cmdNames)
		fn  = d.refreshParticipants
	)
	if d.IsPrivate() {
		cmd, fn = d.command(cmdIsOn), nil
	}
	d.lg.Debug("loading participants", "command", cmd.Message)
	d.after(func() { d.bus.Send(cmd, fn) })
}

// refreshParticipants is the callback for the names command.  It replaces
// the roster with the received snapshot.
func (d *Dialog) refreshParticipants(ev event.Event) {
	snap, ok := ev.(*event.RosterSnapshot)
	if !ok {
		d.lg.Debug("unexpected response to names", "kind", ev.Kind())
		return
	}
	d.mu.Lock()
	defer d.unlock()
	d.replaceRoster(snap)
}

// replaceRoster clears the roster and populates it from the snapshot.
func (d *Dialog) replaceRoster(snap *event.RosterSnapshot) {
	d.roster.Clear()
	d.participants(snap.Participants)
	snap.StopPropagation()
}
