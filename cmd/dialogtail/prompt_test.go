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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_requestPassword(t *testing.T) {
	tests := []struct {
		name        string
		interactive bool
		read        func() ([]byte, error)
		want        string
		wantPrompt  bool
		wantErr     error
	}{
		{
			name:        "not a terminal",
			interactive: false,
			wantErr:     errNoPassword,
		},
		{
			name:        "terminal",
			interactive: true,
			read:        func() ([]byte, error) { return []byte("s3cr3t"), nil },
			want:        "s3cr3t",
			wantPrompt:  true,
		},
		{
			name:        "empty input",
			interactive: true,
			read:        func() ([]byte, error) { return nil, nil },
			wantPrompt:  true,
			wantErr:     errNoPassword,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubTerminal(t, tt.interactive, tt.read)
			var buf bytes.Buffer
			got, err := requestPassword(&buf, "superman@example.com")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
			if tt.wantPrompt {
				assert.Contains(t, buf.String(), "superman@example.com")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
	t.Run("read error", func(t *testing.T) {
		errTTY := errors.New("inappropriate ioctl for device")
		stubTerminal(t, true, func() ([]byte, error) { return nil, errTTY })
		_, err := requestPassword(&bytes.Buffer{}, "superman@example.com")
		assert.ErrorIs(t, err, errTTY)
	})
}

func stubTerminal(t *testing.T, interactive bool, read func() ([]byte, error)) {
	t.Helper()
	oldInteractive, oldRead := isInteractive, readPassword
	t.Cleanup(func() { isInteractive, readPassword = oldInteractive, oldRead })
	isInteractive = func() bool { return interactive }
	readPassword = read
}
