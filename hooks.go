// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package mentortrack

// UncaughtError describes an error nothing else handled.
type UncaughtError struct {
	// Message is the error message.
	Message string
	// Source is the file the error was raised in.
	Source string
	// Line and Column locate the error in Source, zero if unknown.
	Line   int
	Column int
	// Err is the underlying error, if any.
	Err error
	// Stack overrides the stack trace derived from Err.
	Stack string
}

// Host is the environment that dispatches load, error and unhandled
// rejection events.
type Host interface {
	// OnLoad registers fn to be called once loading has completed.
	OnLoad(fn func())
	// OnError registers fn to be called for every uncaught error. Returning
	// true suppresses the host's default error handling.
	OnError(fn func(UncaughtError) bool)
	// OnUnhandledRejection registers fn to be called for every asynchronous
	// failure nobody waited for.
	OnUnhandledRejection(fn func(reason any))
}

// Install subscribes the reporter to the host's events. Errors are observed
// but never suppressed.
func Install(host Host, r *Reporter) {
	host.OnLoad(func() {
		r.ReportLoadComplete()
	})

	host.OnError(func(uncaught UncaughtError) bool {
		r.ReportUncaughtError(uncaught)
		return false
	})

	host.OnUnhandledRejection(func(reason any) {
		r.ReportUnhandledRejection(reason)
	})
}
