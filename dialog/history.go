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
	"context"
	"fmt"
	"log/slog"
	"runtime/trace"
	"slices"

	"github.com/rusq/chatdialog/chattime"
	"github.com/rusq/chatdialog/message"
)

// LoadHistory loads the page of messages older than before and prepends them
// to the list.  If before is nil, the latest page is loaded.  It does
// nothing if there's no history fetcher, if the history is already being
// loaded, or if before is marked as the end of history.
//
// On error, the status is left as is, and the error is returned to the
// caller.
func (d *Dialog) LoadHistory(ctx context.Context, before *message.Message) error {
	ctx, task := trace.NewTask(ctx, "LoadHistory")
	defer task.End()

	if d.history == nil {
		return nil
	}
	if before != nil && before.EndOfHistory {
		d.lg.DebugContext(ctx, "end of history reached")
		return nil
	}

	d.mu.Lock()
	if d.state.Get().Status == StatusLoading {
		d.unlock()
		d.lg.DebugContext(ctx, "history is already loading")
		return nil
	}
	req := HistoryRequest{
		ConnectionID: d.connectionID,
		DialogID:     d.dialogID,
		Before:       beforeTS(before),
	}
	d.update(func(st *State) {
		st.Status = StatusLoading
	})
	d.unlock()

	lg := d.lg.With("before", req.Before)
	lg.DebugContext(ctx, "loading history")
	trace.Logf(ctx, "before", "%s", req.Before)
	resp, err := d.history.FetchHistory(ctx, req)

	d.mu.Lock()
	defer d.unlock()
	if err != nil {
		d.lastFetch = StatusError
		lg.WarnContext(ctx, "history fetch failed", "error", err)
		return fmt.Errorf("load history: %w", err)
	}
	d.lastFetch = StatusSuccess
	if resp == nil {
		resp = &HistoryResponse{}
	}
	if resp.End && len(resp.Messages) > 0 {
		resp.Messages[0].EndOfHistory = true
	}
	d.addMessages(Unshift, resp.Messages)
	if resp.End && len(resp.Messages) == 0 {
		d.markEndOfHistory()
	}
	lg.DebugContext(ctx, "history loaded", slog.Int("n", len(resp.Messages)), slog.Bool("end", resp.End))
	return nil
}

// markEndOfHistory flags the oldest message as the end of history.  The
// published message is replaced by a copy.  Caller must hold the lock.
func (d *Dialog) markEndOfHistory() {
	msgs := d.state.Get().Messages
	if len(msgs) == 0 || msgs[0].EndOfHistory {
		return
	}
	head := *msgs[0]
	head.EndOfHistory = true
	list := slices.Clone(msgs)
	list[0] = &head
	d.update(func(st *State) {
		st.Messages = list
	})
}

// beforeTS returns the timestamp of the message in ISO 8601 format, or an
// empty string.
func beforeTS(m *message.Message) string {
	if m == nil {
		return ""
	}
	ts := m.TS
	if ts.IsZero() {
		ts = m.Timestamp.T()
	}
	return chattime.Format(ts)
}

// SetLastRead marks the dialog as read on the server.  On success, the
// errors and unread counters are reset, and the last read time is updated
// from the server response.
func (d *Dialog) SetLastRead(ctx context.Context) error {
	if d.marker == nil {
		return nil
	}
	ctx, task := trace.NewTask(ctx, "SetLastRead")
	defer task.End()

	resp, err := d.marker.MarkRead(ctx, d.connectionID, d.dialogID)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.unlock()
	d.update(func(st *State) {
		st.Errors = 0
		st.Unread = 0
		if resp != nil && !resp.LastRead.IsZero() {
			st.LastRead = resp.LastRead
		}
	})
	return nil
}
