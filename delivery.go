// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package mentortrack

import "context"

// Delivery is the outcome of a single report. Callers are free to ignore it,
// a failed delivery has already been logged by the reporter.
type Delivery struct {
	done chan struct{}
	err  error
}

func newDelivery() *Delivery {
	return &Delivery{done: make(chan struct{})}
}

func resolvedDelivery(err error) *Delivery {
	d := newDelivery()
	d.resolve(err)
	return d
}

func (d *Delivery) resolve(err error) {
	d.err = err
	close(d.done)
}

// Done is closed once the report has been delivered, failed or skipped.
func (d *Delivery) Done() <-chan struct{} {
	return d.done
}

// Err returns the outcome of the report, or nil if it is still in flight.
func (d *Delivery) Err() error {
	select {
	case <-d.done:
		return d.err
	default:
		return nil
	}
}

// Wait blocks until the report completes or ctx is done.
func (d *Delivery) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-d.done:
		return d.err
	}
}
