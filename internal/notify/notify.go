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

// Package notify delivers the mention notifications to the desktop.
package notify

import (
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/gen2brain/beeep"
)

const defMaxLen = 100

// Desktop shows the desktop notifications.  If the notification can't be
// shown, it is logged instead.
type Desktop struct {
	title  string
	icon   any
	maxLen int
	notify func(title, message string, icon any) error
	lg     *slog.Logger
}

// Option configures the Desktop.
type Option func(*Desktop)

// WithIcon sets the notification icon: the file path or the image data.
func WithIcon(icon any) Option {
	return func(d *Desktop) {
		d.icon = icon
	}
}

// WithMaxLen sets the maximum length of the notification text in runes.
func WithMaxLen(n int) Option {
	return func(d *Desktop) {
		if n > 3 {
			d.maxLen = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(lg *slog.Logger) Option {
	return func(d *Desktop) {
		if lg != nil {
			d.lg = lg
		}
	}
}

// New creates the Desktop notifier, title is the notification title, i.e.
// the dialog name.
func New(title string, opts ...Option) *Desktop {
	d := &Desktop{
		title:  title,
		icon:   "",
		maxLen: defMaxLen,
		notify: beeep.Notify,
		lg:     slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NotifyUser shows the notification about the message from the user.
func (d *Desktop) NotifyUser(from, text string) {
	body := fmt.Sprintf("%s: %s", from, truncate(text, d.maxLen))
	if err := d.notify(d.title, body, d.icon); err != nil {
		d.lg.Warn("desktop notification failed", "error", err, "from", from)
		d.lg.Info(body, "title", d.title)
	}
}

// truncate truncates the string to n runes, ending it with an ellipsis.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}
