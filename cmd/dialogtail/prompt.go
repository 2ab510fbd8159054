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
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

var errNoPassword = errors.New("password is not set, use -password or " + envPassword)

var (
	// isInteractive returns true if the password can be read from the
	// terminal.
	isInteractive = func() bool {
		return term.IsTerminal(int(os.Stdin.Fd())) && os.Getenv("TERM") != "dumb"
	}
	// readPassword reads the password from the terminal without echo.
	readPassword = func() ([]byte, error) {
		return term.ReadPassword(int(os.Stdin.Fd()))
	}
)

// requestPassword prompts for the password of the account.
func requestPassword(w io.Writer, account string) (string, error) {
	if !isInteractive() {
		return "", errNoPassword
	}
	fmt.Fprintf(w, "Enter Password for %s (won't be visible): ", account)
	password, err := readPassword()
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if len(password) == 0 {
		return "", errNoPassword
	}
	return string(password), nil
}
