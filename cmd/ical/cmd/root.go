/*
 * Copyright 2021 National Library of Norway.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *       http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package cmd

import (
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/nlnwa/goical"
	"github.com/nlnwa/goical/cmd/ical/cmd/cat"
	"github.com/nlnwa/goical/cmd/ical/cmd/format"
	"github.com/nlnwa/goical/cmd/ical/cmd/index"
	"github.com/nlnwa/goical/cmd/ical/cmd/ls"
	"github.com/nlnwa/goical/cmd/ical/cmd/serve"
	"github.com/nlnwa/goical/cmd/ical/cmd/validate"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type conf struct {
	cfgFile string
}

// NewCommand returns a new cobra.Command implementing the root command for ical
func NewCommand() *cobra.Command {
	c := &conf{}
	cmd := &cobra.Command{
		Use:   "ical",
		Short: "Tool for inspecting, validating and serving iCalendar files",
		Long: `ical reads iCalendar (RFC 5545) files. It can print and reformat them,
check that calendars and events have the required properties, and keep an index
of events in a set of directories which can be served over HTTP.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(viper.GetString("log-level"))
			if err != nil {
				return err
			}
			log.SetLevel(level)
			return nil
		},
	}

	cobra.OnInitialize(func() { c.initConfig() })

	// Flags
	cmd.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default is $HOME/.ical.yaml)")
	cmd.PersistentFlags().String("log-level", "info", "log level: trace, debug, info, warn, error")
	cmd.PersistentFlags().Int("fold-width", goical.DefaultFoldWidth, "maximum line width in octets when writing, 0 disables folding")
	cmd.PersistentFlags().String("db-dir", ".", "directory for the event index")
	if err := viper.BindPFlags(cmd.PersistentFlags()); err != nil {
		log.Fatalf("Failed to bind root flags: %v", err)
	}

	// Subcommands
	cmd.AddCommand(cat.NewCommand())
	cmd.AddCommand(ls.NewCommand())
	cmd.AddCommand(validate.NewCommand())
	cmd.AddCommand(format.NewCommand())
	cmd.AddCommand(index.NewCommand())
	cmd.AddCommand(serve.NewCommand())

	return cmd
}

// initConfig reads in config file and ENV variables if set.
func (c *conf) initConfig() {
	if c.cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(c.cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			log.Fatal(err)
		}

		// Search config in home directory with name ".ical" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".ical")
	}

	viper.SetEnvPrefix("ICAL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Debugf("Using config file: %s", viper.ConfigFileUsed())
	}
}
