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
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rusq/chatdialog/dialog"
	"github.com/rusq/chatdialog/message"
)

func testPrinter() (*printer, *bytes.Buffer) {
	var buf bytes.Buffer
	p := newPrinter(&buf)
	p.loc = time.UTC
	return p, &buf
}

func processed(from, text string, ts time.Time) *message.Message {
	return &message.Message{From: from, Message: text, TS: ts, Color: "#6b4a8f"}
}

func Test_printer_Messages(t *testing.T) {
	day := time.Date(2020, 5, 17, 12, 30, 0, 0, time.UTC)
	notice := processed("irc-localhost", "Topic changed", day)
	notice.Type = message.TypeNotice
	hl := processed("bob", "superman: hi", day.Add(time.Minute))
	hl.Highlight = true
	next := processed("alice", "good morning", day.Add(24*time.Hour))
	next.DayChanged = true
	next.Embeds = []string{"https://example.com/cat.png"}

	p, buf := testPrinter()
	p.Messages([]*message.Message{notice, hl, next})

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if assert.Len(t, lines, 5) {
		assert.Contains(t, lines[0], "12:30")
		assert.Contains(t, lines[0], "Topic changed")
		assert.Contains(t, lines[1], "bob")
		assert.Contains(t, lines[1], "superman: hi")
		assert.Contains(t, lines[2], "Monday, 18 May 2020")
		assert.Contains(t, lines[3], "alice")
		assert.Contains(t, lines[3], "good morning")
		assert.Contains(t, lines[4], "https://example.com/cat.png")
	}
}

func Test_printer_Update(t *testing.T) {
	ts := time.Date(2020, 5, 17, 12, 30, 0, 0, time.UTC)
	a := processed("alice", "first", ts)
	b := processed("bob", "second", ts.Add(time.Minute))
	c := processed("carol", "third", ts.Add(2*time.Minute))

	tests := []struct {
		name      string
		prev, cur dialog.State
		want      []string
		notWant   []string
	}{
		{
			name:    "new messages",
			prev:    dialog.State{Messages: []*message.Message{a}},
			cur:     dialog.State{Messages: []*message.Message{a, b, c}},
			want:    []string{"second", "third"},
			notWant: []string{"first"},
		},
		{
			name:    "older messages",
			prev:    dialog.State{Messages: []*message.Message{c}},
			cur:     dialog.State{Messages: []*message.Message{a, b, c}},
			want:    []string{"2 older messages loaded"},
			notWant: []string{"first", "second", "third"},
		},
		{
			name: "topic",
			prev: dialog.State{Topic: "old"},
			cur:  dialog.State{Topic: "Convos rocks"},
			want: []string{"Topic: Convos rocks"},
		},
		{
			name: "participants",
			prev: dialog.State{Participants: 2},
			cur:  dialog.State{Participants: 1234},
			want: []string{"1,234 participants"},
		},
		{
			name: "no change",
			prev: dialog.State{Topic: "same", Messages: []*message.Message{a}},
			cur:  dialog.State{Topic: "same", Messages: []*message.Message{a}, Unread: 3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, buf := testPrinter()
			p.Update(tt.prev, tt.cur)
			out := buf.String()
			if len(tt.want) == 0 && len(tt.notWant) == 0 {
				assert.Empty(t, out)
			}
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
			for _, nw := range tt.notWant {
				assert.NotContains(t, out, nw)
			}
		})
	}
}

func Test_printer_Header(t *testing.T) {
	topic := "Convos rocks"
	d := dialog.New(dialog.Info{ConnectionID: "irc-localhost", Name: "localhost", Topic: topic, Unread: 1500})
	p, buf := testPrinter()
	p.Header(d)
	out := buf.String()
	assert.Contains(t, out, "localhost")
	assert.Contains(t, out, topic)
	assert.Contains(t, out, "1,500 unread")
}
