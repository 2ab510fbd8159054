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

package wsbus

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rusq/chatdialog/dialog"
	"github.com/rusq/chatdialog/event"
)

const testTimeout = 2 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// fakeEvents is the event stream server.  It answers "/names" with the
// roster snapshot, and "/ison" with the plain response followed by a live
// message and an unknown event.
func fakeEvents(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		for {
			var f frame
			if err := conn.ReadJSON(&f); err != nil {
				return
			}
			if f.Method != "send" {
				continue
			}
			head := map[string]any{
				"event":         "sent",
				"id":            f.ID,
				"connection_id": f.ConnectionID,
				"dialog_id":     f.DialogID,
				"message":       f.Message,
			}
			switch f.Message {
			case "/names":
				head["participants"] = []map[string]any{{"nick": "bob", "mode": "o"}}
				_ = conn.WriteJSON(head)
			case "/ison":
				_ = conn.WriteJSON(head)
				_ = conn.WriteJSON(map[string]any{
					"event": "message", "connection_id": f.ConnectionID, "dialog_id": f.DialogID,
					"from": "bob", "message": "hi", "type": "private",
				})
				_ = conn.WriteJSON(map[string]any{"event": "state", "connection_id": f.ConnectionID})
			}
		}
	}
}

func seqID() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("cmd-%d", n)
	}
}

func recv[T any](t *testing.T, c <-chan T) T {
	t.Helper()
	select {
	case v := <-c:
		return v
	case <-time.After(testTimeout):
		t.Fatal("timeout")
	}
	var zero T
	return zero
}

func TestBus(t *testing.T) {
	srv := httptest.NewServer(fakeEvents(t))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b, err := Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), WithPingInterval(10*time.Millisecond), WithIDFunc(seqID()))
	require.NoError(t, err)
	assert.True(t, b.Ready())

	subC := make(chan event.Event, 10)
	b.Subscribe("irc-localhost", "#convos", func(ev event.Event) { subC <- ev })
	otherC := make(chan event.Event, 10)
	b.Subscribe("irc-localhost", "#other", func(ev event.Event) { otherC <- ev })

	runC := make(chan error, 1)
	go func() {
		runC <- b.Run(ctx)
	}()

	cmd := dialog.Command{ConnectionID: "irc-localhost", DialogID: "#convos", Message: "/names"}
	cbC := make(chan event.Event, 1)
	b.Send(cmd, func(ev event.Event) {
		if s, ok := ev.(event.Stopper); ok {
			s.StopPropagation()
		}
		cbC <- ev
	})
	ev := recv(t, cbC)
	snap, ok := ev.(*event.RosterSnapshot)
	require.True(t, ok, "got %T", ev)
	assert.Equal(t, "cmd-1", snap.ID)
	require.Len(t, snap.Participants, 1)
	assert.Equal(t, "bob", snap.Participants[0].Nick)

	cmd.Message = "/ison"
	b.Send(cmd, nil)
	ev = recv(t, subC)
	assert.IsType(t, &event.Sent{}, ev, "stopped snapshot must not reach the subscribers")
	ev = recv(t, subC)
	msg, ok := ev.(*event.Message)
	require.True(t, ok, "got %T", ev)
	assert.Equal(t, "hi", msg.Msg.Message)

	cancel()
	assert.NoError(t, recv(t, runC))
	assert.False(t, b.Ready())
	assert.Empty(t, otherC)

	_, err = b.SendCommand(cmd, nil)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestDial_error(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := Dial(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http"))
	assert.Error(t, err)
}

func testBus() *Bus {
	return &Bus{
		pending: make(map[string]func(event.Event)),
		subs:    make(map[subKey]map[int]Handler),
	}
}

func TestBus_dispatch(t *testing.T) {
	head := event.Header{ID: "1", ConnectionID: "irc-localhost", DialogID: "#convos"}
	tests := []struct {
		name     string
		ev       event.Event
		callback func(event.Event)
		wantCB   int
		wantSub  int
	}{
		{
			"no callback",
			&event.Sent{Header: head},
			nil,
			0,
			1,
		},
		{
			"callback without stop",
			&event.RosterSnapshot{Header: head},
			func(event.Event) {},
			1,
			1,
		},
		{
			"callback stops propagation",
			&event.RosterSnapshot{Header: head},
			func(ev event.Event) { ev.(event.Stopper).StopPropagation() },
			1,
			0,
		},
		{
			"other dialog",
			&event.Part{Header: event.Header{ConnectionID: "irc-localhost", DialogID: "#other"}},
			nil,
			0,
			0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := testBus()
			var gotCB, gotSub int
			if tt.callback != nil {
				b.pending["1"] = func(ev event.Event) {
					gotCB++
					tt.callback(ev)
				}
			}
			b.Subscribe("irc-localhost", "#convos", func(event.Event) { gotSub++ })

			b.dispatch(tt.ev)
			assert.Equal(t, tt.wantCB, gotCB)
			assert.Equal(t, tt.wantSub, gotSub)
			assert.Empty(t, b.pending, "callback is called once")
		})
	}
}

func TestBus_Subscribe_cancel(t *testing.T) {
	b := testBus()
	var calls []string
	cancelA := b.Subscribe("c", "d", func(event.Event) { calls = append(calls, "a") })
	b.Subscribe("c", "d", func(event.Event) { calls = append(calls, "b") })

	ev := &event.Sent{Header: event.Header{ConnectionID: "c", DialogID: "d"}}
	b.dispatch(ev)
	cancelA()
	b.dispatch(ev)
	assert.Equal(t, []string{"a", "b", "b"}, calls)
}
