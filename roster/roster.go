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

// Package roster maintains the list of the dialog participants.
package roster

import (
	"cmp"
	"encoding/json"
	"maps"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/rusq/chatdialog/internal/hashcolor"
	"github.com/rusq/chatdialog/internal/sortedmap"
)

// Participant modes.
const (
	ModeOperator = "o"
	ModeVoice    = "v"
)

var (
	// rank is the privilege rank of the mode, participants with the higher
	// rank are listed first.
	rank = map[string]int{ModeOperator: 10, ModeVoice: 9}
	// symbol is the prefix of the participant name in the listings.
	symbol = map[string]string{ModeOperator: "@", ModeVoice: "+"}
)

// Participant is a member of the dialog.
type Participant struct {
	ID    string // lower-cased nickname
	Name  string
	Nick  string
	Mode  string
	Color string
	TS    time.Time
	Me    bool
	// Extra contains the fields received from the server that have no
	// dedicated field.
	Extra map[string]any
}

// Symbol returns the mode symbol, i.e. "@" for operators.
func (p Participant) Symbol() string {
	return symbol[p.Mode]
}

// Member is a participant record as received from the server.  Nil fields
// leave the respective fields of the existing participant untouched.
type Member struct {
	Nick  string
	Name  string
	Mode  *string
	Me    *bool
	Extra map[string]any
}

func (m *Member) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = Member{}
	for k, v := range raw {
		switch k {
		case "nick":
			m.Nick, _ = v.(string)
		case "name":
			m.Name, _ = v.(string)
		case "mode":
			if s, ok := v.(string); ok {
				m.Mode = &s
			}
		case "me":
			if b, ok := v.(bool); ok {
				m.Me = &b
			}
		default:
			if m.Extra == nil {
				m.Extra = make(map[string]any)
			}
			m.Extra[k] = v
		}
	}
	return nil
}

func (m Member) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Extra)+4)
	maps.Copy(out, m.Extra)
	if m.Nick != "" {
		out["nick"] = m.Nick
	}
	if m.Name != "" {
		out["name"] = m.Name
	}
	if m.Mode != nil {
		out["mode"] = *m.Mode
	}
	if m.Me != nil {
		out["me"] = *m.Me
	}
	return json.Marshal(out)
}

// ID returns the lower-cased nickname used as the roster key.
func ID(nick string) string {
	return strings.ToLower(nick)
}

// Roster is the sorted set of participants keyed by the lower-cased
// nickname.  Participants with higher privileges are listed first, then
// by name.  Roster is not safe for concurrent use.
type Roster struct {
	m     *sortedmap.Map[Participant]
	col   *collate.Collator
	color hashcolor.Func
	now   func() time.Time
}

// Option configures the Roster.
type Option func(*Roster)

// WithColorFunc sets the function that returns the participant colour.
func WithColorFunc(fn hashcolor.Func) Option {
	return func(r *Roster) {
		if fn != nil {
			r.color = fn
		}
	}
}

// WithClock sets the function that returns the current time.
func WithClock(now func() time.Time) Option {
	return func(r *Roster) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLanguage sets the collation language for the participant names.
func WithLanguage(tag language.Tag) Option {
	return func(r *Roster) {
		r.col = collate.New(tag, collate.IgnoreCase)
	}
}

// New creates an empty Roster.
func New(opts ...Option) *Roster {
	r := &Roster{
		col:   collate.New(language.Und, collate.IgnoreCase),
		color: hashcolor.For,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.m = sortedmap.New(r.compare)
	return r
}

// compare orders the participants by the privilege rank descending, then by
// name.
func (r *Roster) compare(a, b Participant) int {
	if c := cmp.Compare(rank[b.Mode], rank[a.Mode]); c != 0 {
		return c
	}
	return r.col.CompareString(a.Name, b.Name)
}

// Get returns the participant with the nickname.
func (r *Roster) Get(nick string) (Participant, bool) {
	return r.m.Get(ID(nick))
}

// Has returns true if the participant with the nickname is present.
func (r *Roster) Has(nick string) bool {
	return r.m.Has(ID(nick))
}

// Delete removes the participant with the nickname.
func (r *Roster) Delete(nick string) bool {
	return r.m.Delete(ID(nick))
}

// Len returns the number of participants.
func (r *Roster) Len() int {
	return r.m.Len()
}

// Clear removes all participants.
func (r *Roster) Clear() {
	r.m.Clear()
}

// List returns the participants in the sorted order.
func (r *Roster) List() []Participant {
	return r.m.Values()
}

// Names returns the participant names prefixed with the mode symbols, in
// the sorted order.
func (r *Roster) Names() []string {
	return sortedmap.MapValues(r.m, func(p Participant) string {
		return p.Symbol() + p.Name
	})
}

// Merge inserts the member or merges its fields onto the existing
// participant with the same key.  It returns the resulting participant.
func (r *Roster) Merge(m Member) Participant {
	if m.Nick == "" {
		m.Nick = m.Name
	}
	id := ID(m.Nick)

	p, ok := r.m.Get(id)
	if !ok {
		p = Participant{Name: m.Nick}
	}
	p.Nick = m.Nick
	if m.Name != "" {
		p.Name = m.Name
	}
	if m.Mode != nil {
		p.Mode = *m.Mode
	}
	if m.Me != nil {
		p.Me = *m.Me
	}
	if len(m.Extra) > 0 {
		extra := make(map[string]any, len(p.Extra)+len(m.Extra))
		maps.Copy(extra, p.Extra)
		maps.Copy(extra, m.Extra)
		p.Extra = extra
	}
	p.ID = id
	p.Color = r.color(id)
	p.TS = r.now()

	r.m.Set(id, p)
	return p
}
