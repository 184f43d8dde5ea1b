// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */
package mentortrack_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"

	"github.com/dpeckett/mentortrack"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHost struct {
	load      func()
	err       func(mentortrack.UncaughtError) bool
	rejection func(reason any)
}

func (h *fakeHost) OnLoad(fn func())                                { h.load = fn }
func (h *fakeHost) OnError(fn func(mentortrack.UncaughtError) bool) { h.err = fn }
func (h *fakeHost) OnUnhandledRejection(fn func(reason any))        { h.rejection = fn }

func TestInstall(t *testing.T) {
	collector := newMockCollector(t, http.StatusOK)

	ctx := context.Background()
	reporter := mentortrack.NewReporter(ctx, slog.Default(), mentortrack.Configuration{
		APIURL:       testAPIURL,
		CollectorURL: collector.server.URL,
	})

	var host fakeHost
	mentortrack.Install(&host, reporter)

	require.NotNil(t, host.load)
	require.NotNil(t, host.err)
	require.NotNil(t, host.rejection)

	host.load()
	assert.Equal(t, "FRONTEND_SUCCESS", collector.next(t)["type"])

	assert.False(t, host.err(mentortrack.UncaughtError{Message: "boom"}), "Errors must never be suppressed")
	assert.Equal(t, "FRONTEND_RUNTIME", collector.next(t)["type"])

	host.rejection(errors.New("boom"))
	assert.Equal(t, "FRONTEND_PROMISE_REJECTION", collector.next(t)["type"])

	require.NoError(t, reporter.Shutdown(ctx))
	assert.Equal(t, int32(3), collector.requests.Load())
}

func TestInstall_NoBoardID(t *testing.T) {
	collector := newMockCollector(t, http.StatusOK)

	ctx := context.Background()
	reporter := mentortrack.NewReporter(ctx, slog.Default(), mentortrack.Configuration{
		CollectorURL: collector.server.URL,
	})

	var host fakeHost
	mentortrack.Install(&host, reporter)

	host.load()
	assert.False(t, host.err(mentortrack.UncaughtError{Message: "boom"}))
	host.rejection("boom")

	require.NoError(t, reporter.Shutdown(ctx))
	assert.Equal(t, int32(0), collector.requests.Load())
}
