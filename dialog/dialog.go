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

// Package dialog implements the client side model of a chat dialog: a
// channel or a private conversation.  The Dialog maintains the message
// history, the participant roster and the read state, and reconciles them
// with the real-time events and the history pages loaded from the server.
package dialog

import (
	"encoding/json"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rusq/chatdialog/chattime"
	"github.com/rusq/chatdialog/internal/hashcolor"
	"github.com/rusq/chatdialog/internal/i18n"
	"github.com/rusq/chatdialog/internal/primitive"
	"github.com/rusq/chatdialog/internal/reactive"
	"github.com/rusq/chatdialog/message"
	"github.com/rusq/chatdialog/roster"
)

// Status is the dialog status.
type Status string

const (
	StatusPending Status = "pending"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Computed statuses, see [Dialog.Is].
const (
	StatusFrozen  Status = "frozen"
	StatusPrivate Status = "private"
	StatusUnread  Status = "unread"
)

const defaultName = "Unknown"

var channelRE = regexp.MustCompile(`^[#&]`)

// State is the mutable state of the dialog.
type State struct {
	Name   string
	Topic  string
	Mode   string
	Status Status
	// Errors is the number of consecutive failures.
	Errors     int
	Unread     int
	LastActive time.Time
	LastRead   time.Time
	Frozen     string
	// Participants is the number of participants, as of the last roster
	// change.
	Participants int
	// Messages is ordered from the oldest to the newest.  The slice and the
	// messages must not be modified by the caller.
	Messages []*message.Message
}

// Update is the partial update of the dialog state.  Nil fields are not
// changed.
type Update struct {
	Name       *string
	Topic      *string
	Mode       *string
	Status     *Status
	Errors     *int
	Unread     *int
	LastActive *time.Time
	LastRead   *time.Time
	// Frozen is ignored for dialogs that were not confirmed by the server.
	Frozen *string
}

// Info is the dialog information, as received from the server.
type Info struct {
	ConnectionID string
	// DialogID is nil for the dialogs that were not confirmed by the
	// server yet.
	DialogID   *string
	Name       string
	Topic      string
	Frozen     string
	Unread     int
	LastActive time.Time
	LastRead   time.Time
}

func (i *Info) UnmarshalJSON(data []byte) error {
	var raw struct {
		ConnectionID string        `json:"connection_id"`
		DialogID     *string       `json:"dialog_id"`
		Name         string        `json:"name"`
		Topic        string        `json:"topic"`
		Frozen       string        `json:"frozen"`
		Unread       int           `json:"unread"`
		LastActive   chattime.Time `json:"last_active"`
		LastRead     chattime.Time `json:"last_read"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*i = Info{
		ConnectionID: raw.ConnectionID,
		DialogID:     raw.DialogID,
		Name:         raw.Name,
		Topic:        raw.Topic,
		Frozen:       raw.Frozen,
		Unread:       raw.Unread,
		LastActive:   raw.LastActive.T(),
		LastRead:     raw.LastRead.T(),
	}
	return nil
}

// Dialog is the chat dialog.  It is safe for concurrent use.  Observers,
// outbound commands and user notifications are invoked after the internal
// lock is released, in the order they were triggered.
type Dialog struct {
	connectionID string
	dialogID     string
	hasDialogID  bool
	color        string
	path         string

	history  HistoryFetcher
	marker   ReadMarker
	bus      Bus
	notifier Notifier
	tr       i18n.Translator
	lg       *slog.Logger

	procOpts   []message.Option
	rosterOpts []roster.Option
	colorFn    hashcolor.Func

	mu      sync.Mutex // guards everything below and the state updates
	state   *reactive.Record[State]
	roster  *roster.Roster
	proc    *message.Processor
	pending []func()
	// lastFetch is the outcome of the last history fetch.
	lastFetch          Status
	participantsLoaded bool
}

// Option configures the Dialog.
type Option func(*Dialog)

// WithHistory sets the history fetcher.  Without it, LoadHistory is a no-op.
func WithHistory(h HistoryFetcher) Option {
	return func(d *Dialog) {
		d.history = h
	}
}

// WithReadMarker sets the read marker.  Without it, SetLastRead is a no-op.
func WithReadMarker(m ReadMarker) Option {
	return func(d *Dialog) {
		d.marker = m
	}
}

// API is the server API used by the dialog.
type API interface {
	HistoryFetcher
	ReadMarker
}

// WithAPI sets both the history fetcher and the read marker.
func WithAPI(api API) Option {
	return func(d *Dialog) {
		d.history = api
		d.marker = api
	}
}

// WithBus sets the event bus used to send commands.
func WithBus(b Bus) Option {
	return func(d *Dialog) {
		d.bus = b
	}
}

// WithNotifier sets the notifier for highlighted messages.
func WithNotifier(n Notifier) Option {
	return func(d *Dialog) {
		d.notifier = n
	}
}

// WithTranslator sets the translator for the generated notices.
func WithTranslator(tr i18n.Translator) Option {
	return func(d *Dialog) {
		if tr != nil {
			d.tr = tr
		}
	}
}

// WithColorFunc sets the function that derives colours from identifiers.
func WithColorFunc(fn hashcolor.Func) Option {
	return func(d *Dialog) {
		if fn != nil {
			d.colorFn = fn
		}
	}
}

// WithLogger sets the logger.
func WithLogger(lg *slog.Logger) Option {
	return func(d *Dialog) {
		if lg != nil {
			d.lg = lg
		}
	}
}

// WithProcessorOptions sets the options of the message processor.
func WithProcessorOptions(opts ...message.Option) Option {
	return func(d *Dialog) {
		d.procOpts = append(d.procOpts, opts...)
	}
}

// WithRosterOptions sets the options of the participant roster.
func WithRosterOptions(opts ...roster.Option) Option {
	return func(d *Dialog) {
		d.rosterOpts = append(d.rosterOpts, opts...)
	}
}

// New creates a new Dialog from the dialog information.
func New(info Info, opts ...Option) *Dialog {
	d := &Dialog{
		connectionID: info.ConnectionID,
		tr:           i18n.Plain,
		lg:           slog.Default(),
		colorFn:      hashcolor.For,
	}
	if info.DialogID != nil {
		d.dialogID = *info.DialogID
		d.hasDialogID = true
	}
	for _, opt := range opts {
		opt(d)
	}
	d.lg = d.lg.With("connection_id", d.connectionID, "dialog_id", d.dialogID)
	d.color = d.colorFn(primitive.NVL(d.dialogID, d.connectionID))
	d.path = chatPath(d.connectionID, d.dialogID)

	d.roster = roster.New(append([]roster.Option{roster.WithColorFunc(d.colorFn)}, d.rosterOpts...)...)
	d.proc = message.NewProcessor(d.connectionID, append([]message.Option{
		message.WithTranslator(d.tr),
		message.WithColorFunc(d.colorFn),
		message.WithLogger(d.lg),
	}, d.procOpts...)...)

	st := State{
		Name:       primitive.NVL(info.Name, defaultName),
		Topic:      info.Topic,
		Status:     StatusPending,
		Unread:     info.Unread,
		LastActive: info.LastActive,
		LastRead:   info.LastRead,
	}
	if d.hasDialogID {
		st.Frozen = info.Frozen
	}
	d.state = reactive.NewRecord(st)
	return d
}

// chatPath returns the path of the dialog in the web client.
func chatPath(connectionID, dialogID string) string {
	parts := []string{"", "chat"}
	for _, p := range []string{connectionID, dialogID} {
		if p != "" {
			parts = append(parts, url.PathEscape(p))
		}
	}
	return strings.Join(parts, "/")
}

// ConnectionID returns the connection ID, it may be empty.
func (d *Dialog) ConnectionID() string { return d.connectionID }

// DialogID returns the dialog ID and true, if the dialog was confirmed by the
// server.
func (d *Dialog) DialogID() (string, bool) { return d.dialogID, d.hasDialogID }

// Color returns the dialog colour.
func (d *Dialog) Color() string { return d.color }

// Path returns the path of the dialog, i.e. "/chat/irc-localhost/%23convos".
func (d *Dialog) Path() string { return d.path }

// State returns the current dialog state.
func (d *Dialog) State() State {
	return d.state.Get()
}

// Messages returns the dialog messages.  The returned messages must not be
// modified.
func (d *Dialog) Messages() []*message.Message {
	return d.state.Get().Messages
}

// IsPrivate returns true if the dialog is a private conversation, not a
// channel.
func (d *Dialog) IsPrivate() bool {
	return !channelRE.MatchString(d.state.Get().Name)
}

// Frozen returns the reason the dialog is inactive, or an empty string.
func (d *Dialog) Frozen() string {
	if d.hasDialogID {
		return d.state.Get().Frozen
	}
	return d.calculateFrozen()
}

// calculateFrozen is the frozen state of the dialogs that were not confirmed
// by the server.
func (d *Dialog) calculateFrozen() string {
	return ""
}

// Is returns true if the dialog is in the status s.  In addition to the
// stored statuses, it supports the computed ones: StatusFrozen,
// StatusPrivate and StatusUnread.
func (d *Dialog) Is(s Status) bool {
	switch s {
	case StatusFrozen:
		return d.Frozen() != ""
	case StatusPrivate:
		return d.IsPrivate()
	case StatusUnread:
		return d.state.Get().Unread > 0
	default:
		return d.state.Get().Status == s
	}
}

// Observe registers the function that is called with the previous and the
// current state after each change.  The observer must not modify the
// dialog.  It returns the function that removes the observer.
func (d *Dialog) Observe(fn func(prev, cur State)) (cancel func()) {
	return d.state.Observe(fn)
}

// Update applies the partial update to the dialog state.
func (d *Dialog) Update(u Update) *Dialog {
	d.mu.Lock()
	defer d.unlock()
	d.update(func(st *State) {
		u.apply(st, d.hasDialogID)
	})
	return d
}

func (u Update) apply(st *State, hasDialogID bool) {
	set(&st.Name, u.Name)
	set(&st.Topic, u.Topic)
	set(&st.Mode, u.Mode)
	set(&st.Status, u.Status)
	set(&st.Errors, u.Errors)
	set(&st.Unread, u.Unread)
	set(&st.LastActive, u.LastActive)
	set(&st.LastRead, u.LastRead)
	if hasDialogID {
		set(&st.Frozen, u.Frozen)
	}
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// update modifies the state, schedules the observer notification and
// checks if the participants should be loaded.  Caller must hold the lock.
func (d *Dialog) update(fn func(st *State)) {
	prev, cur := d.state.Swap(fn)
	d.after(func() { d.state.Notify(prev, cur) })
	d.loadParticipants()
}

// after schedules fn to be called after the lock is released.  Caller must
// hold the lock.
func (d *Dialog) after(fn func()) {
	d.pending = append(d.pending, fn)
}

// unlock releases the lock and runs the scheduled functions.
func (d *Dialog) unlock() {
	pending := d.pending
	d.pending = nil
	d.mu.Unlock()
	for _, fn := range pending {
		fn()
	}
}
