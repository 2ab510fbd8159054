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

// Package chattime parses and formats the timestamps exchanged with the chat
// server.
package chattime

// in this file: timestamp parsing functions

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

// ISO8601 is the layout of timestamps sent to the server.  It matches the
// output of the JavaScript Date.toISOString.
const ISO8601 = "2006-01-02T15:04:05.000Z07:00"

var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var errEmpty = errors.New("empty timestamp")

// Parse parses the timestamp.  It understands RFC 3339 timestamps, the same
// without a zone (assumed UTC) and epoch seconds with an optional fractional
// part, i.e. 1577694990.000400.
func Parse(ts string) (time.Time, error) {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return time.Time{}, errEmpty
	}
	if isEpoch(ts) {
		return parseEpoch(ts)
	}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, ts)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func isEpoch(ts string) bool {
	for _, r := range ts {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return true
}

func parseEpoch(ts string) (time.Time, error) {
	const (
		base = 10
		bit  = 64
	)
	sSec, sFrac, found := strings.Cut(ts, ".")
	if sSec == "" {
		return time.Time{}, errEmpty
	}
	sec, err := strconv.ParseInt(sSec, base, bit)
	if err != nil {
		return time.Time{}, err
	}
	if !found || sFrac == "" {
		return time.Unix(sec, 0).UTC(), nil
	}
	// pad or trim the fraction to nanoseconds.
	if len(sFrac) > 9 {
		sFrac = sFrac[:9]
	}
	sFrac += strings.Repeat("0", 9-len(sFrac))
	nsec, err := strconv.ParseInt(sFrac, base, bit)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(sec, nsec).UTC(), nil
}

// Format formats t as an ISO 8601 timestamp in UTC with millisecond
// precision.  Zero time is formatted as an empty string.
func Format(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(ISO8601)
}

// SameDay returns true if a and b fall on the same calendar date in the
// location loc.  If loc is nil, time.Local is used.
func SameDay(a, b time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.Local
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// Time is a time.Time that decodes from any of the formats understood by
// Parse, both JSON strings and numbers.  JSON null and an empty string decode
// to the zero time.
type Time time.Time

func (t *Time) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = Time{}
		return nil
	}
	var s string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*t = Time{}
			return nil
		}
	} else {
		s = string(data)
	}
	ts, err := Parse(s)
	if err != nil {
		return err
	}
	*t = Time(ts)
	return nil
}

func (t Time) MarshalJSON() ([]byte, error) {
	if time.Time(t).IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + Format(time.Time(t)) + `"`), nil
}

// T returns t as time.Time.
func (t Time) T() time.Time {
	return time.Time(t)
}

// IsZero reports whether t is the zero time.
func (t Time) IsZero() bool {
	return time.Time(t).IsZero()
}
