// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package mentortrack

import "regexp"

// Deployments are served from https://webapi{boardId}-{env}.up.railway.app.
var boardIDPattern = regexp.MustCompile(`(?i)webapi([a-f0-9]{24})`)

// BoardID extracts the 24 hex character board id from an API URL. The first
// match wins. It reports false if the URL carries no board id.
func BoardID(apiURL string) (string, bool) {
	m := boardIDPattern.FindStringSubmatch(apiURL)
	if m == nil {
		return "", false
	}

	return m[1], true
}
