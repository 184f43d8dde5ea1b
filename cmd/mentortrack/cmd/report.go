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
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dpeckett/mentortrack"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newReportCmd(v *viper.Viper) *cobra.Command {
	var timeout time.Duration

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Send a single diagnostic event to the collector",
	}

	reportCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "how long to wait for the collector")

	reportCmd.AddCommand(&cobra.Command{
		Use:   "success",
		Short: "Report that the frontend loaded successfully",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, v, timeout, func(r *mentortrack.Reporter) *mentortrack.Delivery {
				return r.ReportLoadComplete()
			})
		},
	})

	var uncaught mentortrack.UncaughtError
	errorCmd := &cobra.Command{
		Use:   "error",
		Short: "Report an uncaught runtime error",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, v, timeout, func(r *mentortrack.Reporter) *mentortrack.Delivery {
				return r.ReportUncaughtError(uncaught)
			})
		},
	}
	errorCmd.Flags().StringVar(&uncaught.Message, "message", "", "error message")
	errorCmd.Flags().StringVar(&uncaught.Source, "file", "", "file the error was raised in")
	errorCmd.Flags().IntVar(&uncaught.Line, "line", 0, "line number")
	errorCmd.Flags().IntVar(&uncaught.Column, "column", 0, "column number")
	errorCmd.Flags().StringVar(&uncaught.Stack, "stack", "", "stack trace")
	reportCmd.AddCommand(errorCmd)

	reportCmd.AddCommand(&cobra.Command{
		Use:   "rejection [reason]",
		Short: "Report an unhandled promise rejection",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var reason any
			if len(args) > 0 {
				reason = args[0]
			}

			return runReport(cmd, v, timeout, func(r *mentortrack.Reporter) *mentortrack.Delivery {
				return r.ReportUnhandledRejection(reason)
			})
		},
	})

	return reportCmd
}

func runReport(cmd *cobra.Command, v *viper.Viper, timeout time.Duration, report func(*mentortrack.Reporter) *mentortrack.Delivery) error {
	conf, err := loadConfiguration(v)
	if err != nil {
		return err
	}

	logger, err := newLogger(v, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	reporter := mentortrack.NewReporter(ctx, logger, conf)
	defer func() {
		if err := reporter.Shutdown(ctx); err != nil {
			logger.Warn("Failed to shut down reporter", "error", err)
		}
	}()

	if err := report(reporter).Wait(ctx); err != nil {
		if errors.Is(err, mentortrack.ErrBoardIDNotFound) {
			return errors.New("no board id in API URL, nothing reported")
		}

		return fmt.Errorf("failed to report event: %w", err)
	}

	boardID, _ := reporter.BoardID()
	fmt.Fprintf(cmd.OutOrStdout(), "Reported %s event for board %s\n", cmd.Name(), boardID)

	return nil
}
