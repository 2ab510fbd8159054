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
	"github.com/rusq/chatdialog/message"
)

// Placement is the position in the message list where the new messages are
// added.
type Placement uint8

const (
	// Push appends the messages to the end of the list.
	Push Placement = iota
	// Unshift prepends the messages to the beginning of the list.
	Unshift
)

// AddMessage adds a single live message to the end of the list.  Highlighted
// messages are passed to the notifier.  Unread counter is incremented for the
// messages that require attention.
func (d *Dialog) AddMessage(m *message.Message) *Dialog {
	d.mu.Lock()
	defer d.unlock()
	d.addMessage(m)
	return d
}

func (d *Dialog) addMessage(m *message.Message) {
	d.addMessages(Push, []*message.Message{m})
	if m.Highlight && d.notifier != nil {
		from, text := m.From, m.Message
		d.after(func() { d.notifier.NotifyUser(from, text) })
	}
	if m.NeedsAttention() {
		d.update(func(st *State) {
			st.Unread++
		})
	}
}

// AddMessages adds the batch of messages to the list and processes them.
// For Push, only the new messages are processed, for Unshift, the whole
// list is processed, as the predecessors of the old messages have changed.
// The status is set to StatusSuccess.
func (d *Dialog) AddMessages(p Placement, batch []*message.Message) *Dialog {
	d.mu.Lock()
	defer d.unlock()
	d.addMessages(p, batch)
	return d
}

func (d *Dialog) addMessages(p Placement, batch []*message.Message) {
	old := d.state.Get().Messages
	list := make([]*message.Message, 0, len(old)+len(batch))

	start, stop := 0, len(batch)
	switch p {
	case Push:
		list = append(append(list, old...), batch...)
		start, stop = len(old), len(list)
	case Unshift:
		list = append(append(list, batch...), old...)
		stop = len(list)
	}
	d.proc.Process(list, start, stop)

	d.update(func(st *State) {
		st.Messages = list
		st.Status = StatusSuccess
	})
}
