// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package mentorapi

import "time"

// EventType represents the type of frontend event.
type EventType string

const (
	// The frontend page finished loading.
	EventTypeSuccess EventType = "FRONTEND_SUCCESS"
	// An uncaught script error.
	EventTypeRuntime EventType = "FRONTEND_RUNTIME"
	// A promise rejection with no handler attached.
	EventTypePromiseRejection EventType = "FRONTEND_PROMISE_REJECTION"
)

// TimestampLayout is the ISO-8601 layout used for event timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

const (
	// SuccessMessage is the message attached to every success event.
	SuccessMessage = "Frontend page loaded successfully"
	// Placeholder used when no stack trace is available.
	NoStack = "N/A"
)

// FormatTimestamp formats t the way the collector expects it.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Event is one of SuccessEvent, RuntimeErrorEvent or PromiseRejectionEvent.
type Event interface {
	EventType() EventType
}

type SuccessEvent struct {
	// The board the event belongs to.
	BoardID string `json:"boardId"`
	// Always EventTypeSuccess.
	Type      EventType `json:"type"`
	Timestamp string    `json:"timestamp"`
	Message   string    `json:"message"`
}

func (e *SuccessEvent) EventType() EventType { return EventTypeSuccess }

type RuntimeErrorEvent struct {
	BoardID string    `json:"boardId"`
	Type    EventType `json:"type"`
	Message string    `json:"message"`
	// The script file where the error occurred.
	File string `json:"file"`
	// Line and column are null when unknown.
	Line      *int   `json:"line"`
	Column    *int   `json:"column"`
	Stack     string `json:"stack"`
	Timestamp string `json:"timestamp"`
}

func (e *RuntimeErrorEvent) EventType() EventType { return EventTypeRuntime }

type PromiseRejectionEvent struct {
	BoardID   string    `json:"boardId"`
	Type      EventType `json:"type"`
	Message   string    `json:"message"`
	Stack     string    `json:"stack"`
	Timestamp string    `json:"timestamp"`
}

func (e *PromiseRejectionEvent) EventType() EventType { return EventTypePromiseRejection }
