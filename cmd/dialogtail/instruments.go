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
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/rusq/tracer"

	"github.com/rusq/chatdialog/internal/primitive"
)

// initLog initialises the default logger.  It returns the function that
// closes the log file.
func initLog(filename string, jsonHandler bool, verbose bool) (*slog.Logger, func(), error) {
	nop := func() {}
	opts := &slog.HandlerOptions{
		Level: primitive.IfTrue(verbose, slog.LevelDebug, slog.LevelInfo),
	}
	if jsonHandler {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, opts)))
	} else {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)))
	}
	if filename == "" {
		return slog.Default(), nop, nil
	}

	slog.Debug("log messages will be written to file", "filename", filename)
	lf, err := os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o666)
	if err != nil {
		return slog.Default(), nop, fmt.Errorf("failed to create the log file: %w", err)
	}
	log.SetOutput(lf) // redirect the standard log to the file just in case, panics will be logged there.

	var h slog.Handler = slog.NewTextHandler(lf, opts)
	if jsonHandler {
		h = slog.NewJSONHandler(lf, opts)
	}
	slog.SetDefault(slog.New(h))

	return slog.Default(), func() {
		if err := lf.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close the log file: %s\n", err)
		}
	}, nil
}

func initTrace(filename string) (stop func()) {
	stop = func() {}
	if filename == "" {
		return
	}

	slog.Info("trace will be written to", "filename", filename)

	trc := tracer.New(filename)
	if err := trc.Start(); err != nil {
		slog.Warn("failed to start the trace", "filename", filename, "error", err)
		return
	}

	stop = func() {
		if err := trc.End(); err != nil {
			slog.Warn("failed to write the trace file", "filename", filename, "error", err)
		}
	}
	return
}
