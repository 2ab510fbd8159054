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

// Package message contains the chat message type and the processor that
// prepares messages for display.
package message

import (
	"html/template"
	"slices"
	"time"

	"github.com/rusq/chatdialog/chattime"
)

// Message types.
const (
	TypeAction  = "action"
	TypeError   = "error"
	TypeNotice  = "notice"
	TypePrivate = "private"
)

// attention lists the message types that require user's attention.
var attention = []string{TypeAction, TypeError, TypePrivate}

// Message is a chat message.  The fields below the Wire fields are derived
// by the Processor when the message is added to a dialog.
type Message struct {
	// Wire fields.
	From      string        `json:"from,omitempty"`
	Type      string        `json:"type,omitempty"`
	Message   string        `json:"message"`
	Vars      []any         `json:"vars,omitempty"`
	Highlight bool          `json:"highlight,omitempty"`
	Timestamp chattime.Time `json:"ts"`

	// Derived fields.
	FromID       string        `json:"-"`
	Color        string        `json:"-"`
	TS           time.Time     `json:"-"`
	DayChanged   bool          `json:"-"`
	IsSameSender bool          `json:"-"`
	Embeds       []string      `json:"-"`
	Markdown     template.HTML `json:"-"`

	// EndOfHistory is set on the first message of the dialog when the
	// server reports that there's no older history.
	EndOfHistory bool `json:"-"`

	processed bool
}

// Processed returns true if the message was processed.
func (m *Message) Processed() bool {
	return m.processed
}

// NeedsAttention returns true if the message type is one of the types that
// count as unread.
func (m *Message) NeedsAttention() bool {
	return slices.Contains(attention, m.Type)
}
