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
	"errors"
	"fmt"

	"github.com/dpeckett/mentortrack"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newBoardIDCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "board-id",
		Short: "Print the board id derived from the API URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			boardID, ok := mentortrack.BoardID(v.GetString("api_url"))
			if !ok {
				return errors.New("no board id in API URL")
			}

			fmt.Fprintln(cmd.OutOrStdout(), boardID)
			return nil
		},
	}
}
