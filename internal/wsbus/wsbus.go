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

// Package wsbus is the client of the server event stream over websocket.
// It sends the dialog commands and dispatches the received events to the
// subscribed dialogs.
package wsbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/rusq/chatdialog/dialog"
	"github.com/rusq/chatdialog/event"
)

// ErrClosed is returned when sending on the closed bus.
var ErrClosed = errors.New("bus is closed")

const (
	defPingInterval = 20 * time.Second
	writeTimeout    = 10 * time.Second
)

// Handler receives the events of the subscribed dialog.
type Handler func(event.Event)

// frame is the outbound message.
type frame struct {
	Method       string `json:"method"`
	ID           string `json:"id,omitempty"`
	ConnectionID string `json:"connection_id,omitempty"`
	DialogID     string `json:"dialog_id,omitempty"`
	Message      string `json:"message,omitempty"`
}

type subKey struct {
	connectionID string
	dialogID     string
}

// Bus is the websocket event bus.  It is safe for concurrent use.
type Bus struct {
	conn  *websocket.Conn
	wmu   sync.Mutex // guards writes to conn
	ready atomic.Bool

	mu      sync.Mutex
	pending map[string]func(event.Event)
	subs    map[subKey]map[int]Handler
	nextSub int

	pingInterval time.Duration
	newID        func() string
	lg           *slog.Logger
}

var _ dialog.Bus = (*Bus)(nil)

type options struct {
	dialer       *websocket.Dialer
	header       http.Header
	pingInterval time.Duration
	newID        func() string
	lg           *slog.Logger
}

// Option configures the Bus.
type Option func(*options)

// WithJar sets the cookie jar with the session cookie.
func WithJar(jar http.CookieJar) Option {
	return func(o *options) {
		o.dialer.Jar = jar
	}
}

// WithHeader sets the handshake request headers.
func WithHeader(h http.Header) Option {
	return func(o *options) {
		o.header = h
	}
}

// WithPingInterval sets the keepalive interval.  Zero disables the pings.
func WithPingInterval(d time.Duration) Option {
	return func(o *options) {
		o.pingInterval = d
	}
}

// WithIDFunc sets the function that generates the command IDs.
func WithIDFunc(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.newID = fn
		}
	}
}

// WithLogger sets the logger.
func WithLogger(lg *slog.Logger) Option {
	return func(o *options) {
		if lg != nil {
			o.lg = lg
		}
	}
}

// Dial connects to the event stream at url.  Call Run to start receiving
// the events.
func Dial(ctx context.Context, url string, opts ...Option) (*Bus, error) {
	o := options{
		dialer:       &websocket.Dialer{Proxy: http.ProxyFromEnvironment, HandshakeTimeout: 45 * time.Second},
		pingInterval: defPingInterval,
		newID:        uuid.NewString,
		lg:           slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	conn, resp, err := o.dialer.DialContext(ctx, url, o.header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status: %s)", url, err, resp.Status)
		}
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	b := &Bus{
		conn:         conn,
		pending:      make(map[string]func(event.Event)),
		subs:         make(map[subKey]map[int]Handler),
		pingInterval: o.pingInterval,
		newID:        o.newID,
		lg:           o.lg,
	}
	b.ready.Store(true)
	return b, nil
}

// Ready returns true while the connection is open.
func (b *Bus) Ready() bool {
	return b.ready.Load()
}

// Send sends the command to the server.  If fn is not nil, it is called with
// the response event, instead of the subscribers.  Errors are logged.
func (b *Bus) Send(cmd dialog.Command, fn func(event.Event)) {
	if _, err := b.SendCommand(cmd, fn); err != nil {
		b.lg.Warn("send failed", "message", cmd.Message, "error", err)
	}
}

// SendCommand is like Send, but it returns the command ID and the error.
func (b *Bus) SendCommand(cmd dialog.Command, fn func(event.Event)) (string, error) {
	if !b.Ready() {
		return "", ErrClosed
	}
	id := b.newID()
	if fn != nil {
		b.mu.Lock()
		b.pending[id] = fn
		b.mu.Unlock()
	}
	f := frame{
		Method:       "send",
		ID:           id,
		ConnectionID: cmd.ConnectionID,
		DialogID:     cmd.DialogID,
		Message:      cmd.Message,
	}
	if err := b.write(f); err != nil {
		b.mu.Lock()
		delete(b.pending, id)
		b.mu.Unlock()
		return "", err
	}
	b.lg.Debug("sent", "id", id, "message", cmd.Message)
	return id, nil
}

func (b *Bus) write(f frame) error {
	b.wmu.Lock()
	defer b.wmu.Unlock()
	if err := b.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return b.conn.WriteJSON(f)
}

// Subscribe registers the handler for the events of the dialog.  It returns
// the function that removes the subscription.
func (b *Bus) Subscribe(connectionID, dialogID string, h Handler) (cancel func()) {
	k := subKey{connectionID, dialogID}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[k] == nil {
		b.subs[k] = make(map[int]Handler)
	}
	id := b.nextSub
	b.nextSub++
	b.subs[k][id] = h
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[k], id)
		if len(b.subs[k]) == 0 {
			delete(b.subs, k)
		}
	}
}

// Run reads the events until the context is cancelled or the connection is
// closed.  It returns nil if the context was cancelled.
func (b *Bus) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		<-ctx.Done()
		b.ready.Store(false)
		_ = b.conn.Close()
		return nil
	})
	eg.Go(func() error {
		defer cancel()
		return b.readLoop(ctx)
	})
	if b.pingInterval > 0 {
		eg.Go(func() error {
			return b.pingLoop(ctx)
		})
	}
	return eg.Wait()
}

func (b *Bus) readLoop(ctx context.Context) error {
	for {
		_, data, err := b.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || !b.Ready() || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		ev, err := event.Decode(data)
		if err != nil {
			b.lg.DebugContext(ctx, "event skipped", "error", err)
			continue
		}
		b.dispatch(ev)
	}
}

func (b *Bus) pingLoop(ctx context.Context) error {
	t := time.NewTicker(b.pingInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if err := b.write(frame{Method: "ping"}); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("ping: %w", err)
			}
		}
	}
}

// dispatch delivers the event to the command callback, if the event is a
// response to the command sent with a callback, and then to the
// subscribers, unless the callback stopped the propagation.
func (b *Bus) dispatch(ev event.Event) {
	h := ev.Head()
	b.mu.Lock()
	fn, ok := b.pending[h.ID]
	if ok {
		delete(b.pending, h.ID)
	}
	b.mu.Unlock()

	if ok {
		fn(ev)
		if s, ok := ev.(event.Stopper); ok && s.Stopped() {
			return
		}
	}
	for _, sub := range b.subscribers(subKey{h.ConnectionID, h.DialogID}) {
		sub(ev)
	}
}

func (b *Bus) subscribers(k subKey) []Handler {
	b.mu.Lock()
	defer b.mu.Unlock()
	hh := make([]Handler, 0, len(b.subs[k]))
	for id := 0; id < b.nextSub; id++ {
		if h, ok := b.subs[k][id]; ok {
			hh = append(hh, h)
		}
	}
	return hh
}

// Close closes the connection.
func (b *Bus) Close() error {
	b.ready.Store(false)
	b.wmu.Lock()
	defer b.wmu.Unlock()
	_ = b.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return b.conn.Close()
}
