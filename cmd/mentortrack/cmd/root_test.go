// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/dpeckett/mentortrack/mentorapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIURL = "https://webapi1234567890abcdef12345678-production.up.railway.app"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func TestBoardIDCmd(t *testing.T) {
	out, err := execute(t, "board-id", "--api-url", testAPIURL)
	require.NoError(t, err)
	assert.Equal(t, "1234567890abcdef12345678\n", out)

	_, err = execute(t, "board-id", "--api-url", "https://example.com")
	assert.Error(t, err)
}

func TestBoardIDCmd_Env(t *testing.T) {
	t.Setenv("MENTORTRACK_API_URL", testAPIURL)

	out, err := execute(t, "board-id")
	require.NoError(t, err)
	assert.Equal(t, "1234567890abcdef12345678\n", out)
}

func TestBoardIDCmd_ConfigFile(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("api_url: "+testAPIURL+"\n"), 0o644))

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"--config", cfgFile, "board-id"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "1234567890abcdef12345678\n", out.String())
}

func TestReportCmd(t *testing.T) {
	eventCh := make(chan map[string]any, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		assert.Equal(t, mentorapi.EventsPath, r.URL.Path)

		var event map[string]any
		if assert.NoError(t, json.NewDecoder(r.Body).Decode(&event)) {
			eventCh <- event
		}

		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	t.Run("Error", func(t *testing.T) {
		out, err := execute(t, "report", "error",
			"--api-url", testAPIURL,
			"--collector-url", server.URL,
			"--message", "boom",
			"--file", "app.js",
			"--line", "12")
		require.NoError(t, err)
		assert.Contains(t, out, "Reported error event for board 1234567890abcdef12345678")

		event := <-eventCh
		assert.Equal(t, "FRONTEND_RUNTIME", event["type"])
		assert.Equal(t, "boom", event["message"])
		assert.Equal(t, "app.js", event["file"])
		assert.Equal(t, float64(12), event["line"])
	})

	t.Run("Rejection", func(t *testing.T) {
		_, err := execute(t, "report", "rejection", "timed out",
			"--api-url", testAPIURL,
			"--collector-url", server.URL)
		require.NoError(t, err)

		event := <-eventCh
		assert.Equal(t, "FRONTEND_PROMISE_REJECTION", event["type"])
		assert.Equal(t, "timed out", event["message"])
	})

	t.Run("NoBoardID", func(t *testing.T) {
		_, err := execute(t, "report", "success",
			"--api-url", "https://example.com",
			"--collector-url", server.URL)
		assert.Error(t, err)
		assert.Empty(t, eventCh)
	})

	t.Run("InvalidCollectorURL", func(t *testing.T) {
		_, err := execute(t, "report", "success",
			"--api-url", testAPIURL,
			"--collector-url", "collector")
		assert.Error(t, err)
	})
}
