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

// Package event defines the real-time events delivered to a dialog.
//
// Event is a closed set: the types in this package are the only
// implementations, which allows the consumers to dispatch on the event type
// with a type switch.
package event

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rusq/chatdialog/message"
	"github.com/rusq/chatdialog/roster"
)

// Kind is the kind of the event.
//
//go:generate stringer -type=Kind -trimprefix=K
type Kind uint8

const (
	KUnknown Kind = iota
	KMessage
	KMode
	KNickChange
	KPart
	KRosterSnapshot
	KSent
)

// Event names on the wire.
const (
	nameMessage    = "message"
	nameMode       = "mode"
	nameNickChange = "nick_change"
	namePart       = "part"
	nameSent       = "sent"
)

// ErrUnknownEvent is returned by Decode for events that are not handled by
// the client.
var ErrUnknownEvent = errors.New("unknown event")

// Event is the real-time event.
type Event interface {
	Kind() Kind
	// Head returns the event header.
	Head() Header
	sealed()
}

// Header is the common part of all events.
type Header struct {
	Event        string `json:"event"`
	ID           string `json:"id,omitempty"`
	ConnectionID string `json:"connection_id"`
	DialogID     string `json:"dialog_id"`
}

func (h Header) Head() Header { return h }
func (Header) sealed()        {}

// Message is a chat message delivered to the dialog.
type Message struct {
	Header
	Msg message.Message
}

func (*Message) Kind() Kind { return KMessage }

// Mode is sent when the channel mode or a participant mode changes.  For the
// channel mode, Nick is empty.
type Mode struct {
	Header
	Nick string `json:"nick"`
	Mode string `json:"mode"`
	From string `json:"from"`
}

func (*Mode) Kind() Kind { return KMode }

// NickChange is sent when the participant changes the nickname.  Type is
// "me" if it was the local user.
type NickChange struct {
	Header
	OldNick string `json:"old_nick"`
	NewNick string `json:"new_nick"`
	Type    string `json:"type"`
}

func (*NickChange) Kind() Kind { return KNickChange }

// IsMe returns true if the local user changed the nickname.
func (e *NickChange) IsMe() bool { return e.Type == "me" }

// Part is sent when the participant leaves the dialog or is kicked out.
type Part struct {
	Header
	Nick    string `json:"nick"`
	Kicker  string `json:"kicker,omitempty"`
	Message string `json:"message,omitempty"`
}

func (*Part) Kind() Kind { return KPart }

// RosterSnapshot is the complete list of the dialog participants, sent in
// response to the names command.
type RosterSnapshot struct {
	Header
	Message      string          `json:"message,omitempty"`
	Participants []roster.Member `json:"participants"`

	stopped bool
}

func (*RosterSnapshot) Kind() Kind { return KRosterSnapshot }

// StopPropagation prevents the event from being delivered to any further
// handlers.
func (e *RosterSnapshot) StopPropagation() { e.stopped = true }

// Stopped returns true if StopPropagation was called.
func (e *RosterSnapshot) Stopped() bool { return e.stopped }

// Sent is a generic response to the command sent by the client.
type Sent struct {
	Header
	Message string `json:"message"`
}

func (*Sent) Kind() Kind { return KSent }

// Stopper is implemented by the events that support stopping the
// propagation.
type Stopper interface {
	StopPropagation()
	Stopped() bool
}

// Decode decodes the event from JSON data.  It returns ErrUnknownEvent
// for events of other kinds.
func Decode(data []byte) (Event, error) {
	var h Header
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("event header: %w", err)
	}
	var ev Event
	switch h.Event {
	case nameMessage:
		m := &Message{Header: h}
		if err := json.Unmarshal(data, &m.Msg); err != nil {
			return nil, fmt.Errorf("%s: %w", h.Event, err)
		}
		return m, nil
	case nameMode:
		ev = &Mode{}
	case nameNickChange:
		ev = &NickChange{}
	case namePart:
		ev = &Part{}
	case nameSent:
		if hasKey(data, "participants") {
			ev = &RosterSnapshot{}
		} else {
			ev = &Sent{}
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, h.Event)
	}
	if err := json.Unmarshal(data, ev); err != nil {
		return nil, fmt.Errorf("%s: %w", h.Event, err)
	}
	return ev, nil
}

func hasKey(data []byte, key string) bool {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return false
	}
	v, ok := m[key]
	return ok && !bytes.Equal(v, []byte("null"))
}
