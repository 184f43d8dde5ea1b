// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 The Noisy Sockets Authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package mentortrack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"sync"
	"time"

	"github.com/dpeckett/mentortrack/mentorapi"
	pkgerrors "github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// The environment variable name to disable reporting.
const doNotTrackEnvName = "DO_NOT_TRACK"

const (
	defaultErrorMessage     = "Unknown error"
	defaultErrorFile        = "Unknown"
	defaultRejectionMessage = "Unhandled promise rejection"
)

var (
	// ErrBoardIDNotFound means the API URL carries no board id and the
	// report was skipped.
	ErrBoardIDNotFound = errors.New("board id not found")
	// ErrShuttingDown means the reporter no longer accepts reports.
	ErrShuttingDown = errors.New("reporter is shutting down")
	// ErrDoNotTrack means reporting is disabled by the environment.
	ErrDoNotTrack = errors.New("reporting is disabled")
)

// Reporter reports frontend diagnostic events to the collector.
type Reporter struct {
	logger     *slog.Logger
	client     *mentorapi.EventClient
	boardID    string
	reportsCtx context.Context
	reports    *errgroup.Group

	// Guards shuttingDown so that no report is started once the reporter
	// is shutting down.
	mu           sync.RWMutex
	shuttingDown bool
}

// NewReporter creates a new diagnostics reporter.
func NewReporter(ctx context.Context, logger *slog.Logger, conf Configuration) *Reporter {
	reports, reportsCtx := errgroup.WithContext(ctx)

	// A missing board id is expected, every report is skipped in that case.
	boardID, _ := BoardID(conf.APIURL)

	return &Reporter{
		logger:     logger,
		client:     mentorapi.NewEventClient(conf.httpClient(), conf.collectorURL()),
		boardID:    boardID,
		reportsCtx: reportsCtx,
		reports:    reports,
	}
}

// BoardID returns the board id reports are attributed to, if any.
func (r *Reporter) BoardID() (string, bool) {
	return r.boardID, r.boardID != ""
}

// Close aborts any ongoing reports.
func (r *Reporter) Close() error {
	r.stopAccepting()

	r.reports.Go(func() error {
		return context.Canceled
	})

	if err := r.reports.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

// Shutdown gracefully shuts down the reporter.
func (r *Reporter) Shutdown(ctx context.Context) error {
	r.stopAccepting()

	reportsDone := make(chan error, 1)
	go func() {
		defer close(reportsDone)

		reportsDone <- r.reports.Wait()
	}()

	select {
	case <-ctx.Done():
		// Abort any ongoing reports.
		return r.Close()
	case err := <-reportsDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}

		return nil
	}
}

// ReportLoadComplete reports that the frontend finished loading.
func (r *Reporter) ReportLoadComplete() *Delivery {
	return r.report("success", func(boardID, timestamp string) mentorapi.Event {
		return &mentorapi.SuccessEvent{
			BoardID:   boardID,
			Type:      mentorapi.EventTypeSuccess,
			Timestamp: timestamp,
			Message:   mentorapi.SuccessMessage,
		}
	})
}

// ReportUncaughtError reports an uncaught runtime error.
func (r *Reporter) ReportUncaughtError(uncaught UncaughtError) *Delivery {
	return r.report("error", func(boardID, timestamp string) mentorapi.Event {
		message := uncaught.Message
		if message == "" && !isNil(uncaught.Err) {
			message = uncaught.Err.Error()
		}
		if message == "" {
			message = defaultErrorMessage
		}

		file := uncaught.Source
		if file == "" {
			file = defaultErrorFile
		}

		stack := uncaught.Stack
		if stack == "" {
			stack = stackOf(uncaught.Err)
		}

		return &mentorapi.RuntimeErrorEvent{
			BoardID:   boardID,
			Type:      mentorapi.EventTypeRuntime,
			Message:   message,
			File:      file,
			Line:      position(uncaught.Line),
			Column:    position(uncaught.Column),
			Stack:     stack,
			Timestamp: timestamp,
		}
	})
}

// ReportUnhandledRejection reports an asynchronous failure that nobody
// handled. The reason is usually an error but may be any value.
func (r *Reporter) ReportUnhandledRejection(reason any) *Delivery {
	return r.report("promise rejection", func(boardID, timestamp string) mentorapi.Event {
		var stack string
		if err, ok := reason.(error); ok {
			stack = stackOf(err)
		} else {
			stack = mentorapi.NoStack
		}

		return &mentorapi.PromiseRejectionEvent{
			BoardID:   boardID,
			Type:      mentorapi.EventTypePromiseRejection,
			Message:   rejectionMessage(reason),
			Stack:     stack,
			Timestamp: timestamp,
		}
	})
}

func (r *Reporter) report(kind string, newEvent func(boardID, timestamp string) mentorapi.Event) *Delivery {
	if os.Getenv(doNotTrackEnvName) != "" {
		r.logger.Debug("Reporting is disabled, dropping event", slog.String("kind", kind))
		return resolvedDelivery(ErrDoNotTrack)
	}

	if r.boardID == "" {
		r.logger.Warn(fmt.Sprintf("Board id not found, skipping %s log", kind))
		return resolvedDelivery(ErrBoardIDNotFound)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.shuttingDown {
		r.logger.Debug("Shutting down, dropping event", slog.String("kind", kind))
		return resolvedDelivery(ErrShuttingDown)
	}

	event := newEvent(r.boardID, mentorapi.FormatTimestamp(time.Now()))

	delivery := newDelivery()
	r.reports.Go(func() error {
		err := r.client.ReportEvent(r.reportsCtx, event)
		if err != nil {
			r.logger.Warn(fmt.Sprintf("Failed to report %s", kind), slog.Any("error", err))
		}

		delivery.resolve(err)

		// Failed reports must not cancel the others.
		return nil
	})

	return delivery
}

func (r *Reporter) stopAccepting() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.shuttingDown = true
}

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// stackOf returns the stack trace recorded by err, if any.
func stackOf(err error) string {
	var tracer stackTracer
	if isNil(err) || !errors.As(err, &tracer) {
		return mentorapi.NoStack
	}

	return fmt.Sprintf("%+v", tracer)
}

func rejectionMessage(reason any) string {
	var message string
	if !isNil(reason) {
		switch v := reason.(type) {
		case error:
			message = v.Error()
		case interface{ Message() string }:
			message = v.Message()
		}
	}

	// fmt prints "<nil>" for nil pointers whose methods panic.
	if message == "" && reason != nil {
		message = fmt.Sprint(reason)
	}

	if message == "" {
		return defaultRejectionMessage
	}

	return message
}

// isNil also reports true for nil pointers boxed in an interface, whose
// methods may panic.
func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

func position(n int) *int {
	if n == 0 {
		return nil
	}

	return &n
}
