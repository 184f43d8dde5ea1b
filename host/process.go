// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package host dispatches load, uncaught error and unhandled rejection
// events for a Go process.
package host

import (
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"slices"
	"strings"
	"sync"

	"github.com/dpeckett/mentortrack"
)

var _ mentortrack.Host = (*Process)(nil)

// Process is a mentortrack.Host for the current process.
type Process struct {
	logger *slog.Logger

	mu           sync.Mutex
	loaded       bool
	loadFns      []func()
	errorFns     []func(mentortrack.UncaughtError) bool
	rejectionFns []func(reason any)

	tasks sync.WaitGroup
}

// New creates a new process host. Uncaught errors and unhandled rejections
// that no callback suppresses are logged to logger.
func New(logger *slog.Logger) *Process {
	return &Process{logger: logger}
}

// OnLoad registers fn to be called when Loaded is first called. Callbacks
// registered after that are never called.
func (p *Process) OnLoad(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.loadFns = append(p.loadFns, fn)
}

func (p *Process) OnError(fn func(mentortrack.UncaughtError) bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.errorFns = append(p.errorFns, fn)
}

func (p *Process) OnUnhandledRejection(fn func(reason any)) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.rejectionFns = append(p.rejectionFns, fn)
}

// Loaded signals that the process finished starting up. Only the first call
// has any effect.
func (p *Process) Loaded() {
	p.mu.Lock()
	if p.loaded {
		p.mu.Unlock()
		return
	}
	p.loaded = true
	fns := p.loadFns
	p.loadFns = nil
	p.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Error dispatches an uncaught error. It reports whether a callback
// suppressed the default handling, which is logging the error.
func (p *Process) Error(uncaught mentortrack.UncaughtError) bool {
	p.mu.Lock()
	fns := slices.Clone(p.errorFns)
	p.mu.Unlock()

	var suppressed bool
	for _, fn := range fns {
		if fn(uncaught) {
			suppressed = true
		}
	}

	if !suppressed {
		p.logger.Error("Uncaught error",
			slog.String("message", uncaught.Message),
			slog.String("source", uncaught.Source),
			slog.Int("line", uncaught.Line))
	}

	return suppressed
}

// Reject dispatches an unhandled rejection and logs it.
func (p *Process) Reject(reason any) {
	p.mu.Lock()
	fns := slices.Clone(p.rejectionFns)
	p.mu.Unlock()

	for _, fn := range fns {
		fn(reason)
	}

	p.logger.Error("Unhandled rejection", slog.Any("reason", reason))
}

// Recover must be deferred directly. It dispatches a panic as an uncaught
// error and then re-panics unless a callback suppressed it.
func (p *Process) Recover() {
	v := recover()
	if v == nil {
		return
	}

	uncaught := mentortrack.UncaughtError{
		Stack: string(debug.Stack()),
	}
	if err, ok := v.(error); ok {
		uncaught.Err = err
		uncaught.Message = err.Error()
	} else {
		uncaught.Message = fmt.Sprint(v)
	}
	uncaught.Source, uncaught.Line = panicSite()

	if !p.Error(uncaught) {
		panic(v)
	}
}

// Go runs fn on a new goroutine. An error returned by fn is dispatched as an
// unhandled rejection, a panic as an uncaught error.
func (p *Process) Go(fn func() error) {
	p.tasks.Add(1)
	go func() {
		defer p.tasks.Done()
		defer p.Recover()

		if err := fn(); err != nil {
			p.Reject(err)
		}
	}()
}

// Wait waits for every goroutine started with Go to return.
func (p *Process) Wait() {
	p.tasks.Wait()
}

// panicSite returns the location of the innermost panic on the stack.
func panicSite() (string, int) {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(1, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var panicking bool
	for {
		frame, more := frames.Next()
		if panicking && !strings.HasPrefix(frame.Function, "runtime.") {
			return frame.File, frame.Line
		}
		if frame.Function == "runtime.gopanic" {
			panicking = true
		}
		if !more {
			return "", 0
		}
	}
}
