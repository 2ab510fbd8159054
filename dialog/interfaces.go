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
	"time"

	"github.com/rusq/chatdialog/event"
	"github.com/rusq/chatdialog/message"
)

//go:generate mockgen -source interfaces.go -destination mock_dialog_test.go -package dialog

// HistoryFetcher fetches the dialog messages from the server.
type HistoryFetcher interface {
	// FetchHistory returns the page of messages older than req.Before, or
	// the latest messages, if req.Before is empty.
	FetchHistory(ctx context.Context, req HistoryRequest) (*HistoryResponse, error)
}

// ReadMarker updates the read marker of the dialog on the server.
type ReadMarker interface {
	MarkRead(ctx context.Context, connectionID, dialogID string) (*ReadResponse, error)
}

// Notifier notifies the user about the messages that mention them.
type Notifier interface {
	NotifyUser(from, text string)
}

// Bus is the connection to the server event stream.
type Bus interface {
	// Ready returns true if the bus is connected and can send commands.
	Ready() bool
	// Send sends the command.  If fn is not nil, it is called with the
	// response event.
	Send(cmd Command, fn func(event.Event))
}

// HistoryRequest is the request for a page of the dialog history.
type HistoryRequest struct {
	ConnectionID string
	DialogID     string
	// Before is the ISO 8601 timestamp, only messages older than that are
	// returned.
	Before string
}

// HistoryResponse is the page of the dialog history.
type HistoryResponse struct {
	Messages []*message.Message `json:"messages"`
	// End is true if there are no older messages.
	End bool `json:"end"`
}

// ReadResponse is the response to the read marker update.
type ReadResponse struct {
	LastRead time.Time
}

// Command is the outbound command, i.e. "/names".
type Command struct {
	ConnectionID string `json:"connection_id"`
	DialogID     string `json:"dialog_id"`
	Message      string `json:"message"`
}
