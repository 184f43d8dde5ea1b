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
	"io"
	"log/slog"
	"strings"

	"github.com/dpeckett/mentortrack"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var appVersion = "dev"

func SetVersion(version string) {
	appVersion = version
}

func Execute() error {
	root := NewRootCmd()

	err := root.Execute()
	if err != nil {
		root.PrintErrln("Error:", err)
	}

	return err
}

// NewRootCmd builds the command tree. Each tree carries its own viper
// instance.
func NewRootCmd() *cobra.Command {
	v := viper.New()

	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "mentortrack",
		Short: "Report frontend diagnostic events to the mentor collector",
		Long: `mentortrack derives the board id from a deployment's API URL and reports
load, runtime error and promise rejection events for it to the collector.`,
		Version:       appVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return initConfig(v, cfgFile)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/mentortrack/config.yaml)")
	flags.String("api-url", "", "backend API URL the board id is derived from")
	flags.String("collector-url", mentortrack.DefaultCollectorURL, "collector base URL")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")

	// Errors are nil when the flag exists.
	_ = v.BindPFlag("api_url", flags.Lookup("api-url"))
	_ = v.BindPFlag("collector_url", flags.Lookup("collector-url"))
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("log.format", flags.Lookup("log-format"))

	rootCmd.AddCommand(newBoardIDCmd(v))
	rootCmd.AddCommand(newReportCmd(v))

	return rootCmd
}

func initConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".mentortrack")
		v.AddConfigPath("$HOME/.config/mentortrack")
	}

	v.SetEnvPrefix("MENTORTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	return nil
}

func loadConfiguration(v *viper.Viper) (mentortrack.Configuration, error) {
	conf := mentortrack.Configuration{
		APIURL:       v.GetString("api_url"),
		CollectorURL: v.GetString("collector_url"),
	}

	if err := conf.Validate(); err != nil {
		return conf, err
	}

	return conf, nil
}

func newLogger(v *viper.Viper, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString("log.level"))); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	opts := &slog.HandlerOptions{Level: level}

	switch format := v.GetString("log.format"); format {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format: %q", format)
	}
}
