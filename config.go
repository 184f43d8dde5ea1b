// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package mentortrack

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// DefaultCollectorURL is the collector frontend events are reported to
// when no other collector is configured.
const DefaultCollectorURL = "https://dev.skill-in.com"

var validate = validator.New()

// Configuration is the diagnostics reporter configuration.
type Configuration struct {
	// APIURL is the backend API base URL. The board id is derived from it.
	// It is not validated.
	APIURL string
	// CollectorURL is the optional collector base URL, DefaultCollectorURL
	// if empty.
	CollectorURL string `validate:"omitempty,url"`
	// HTTPClient is the optional HTTP client to use for reporting.
	HTTPClient *http.Client `validate:"-"`
}

// Validate checks the configuration. Only the collector URL is checked.
func (c Configuration) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return nil
}

func (c Configuration) collectorURL() string {
	if c.CollectorURL == "" {
		return DefaultCollectorURL
	}

	return c.CollectorURL
}

func (c Configuration) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}

	return c.HTTPClient
}
