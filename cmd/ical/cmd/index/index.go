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

package index

import (
	"errors"
	"fmt"
	"io"

	"github.com/nlnwa/goical/pkg/index"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type conf struct {
	fileNames []string
}

func NewCommand() *cobra.Command {
	c := &conf{}
	var cmd = &cobra.Command{
		Use:   "index FILE...",
		Short: "Add iCalendar files to the event index",
		Long: `Parse iCalendar files and record the location of every event in the index
stored in --db-dir. Events without a UID are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("missing file name")
			}
			c.fileNames = args
			return runE(c, cmd.ErrOrStderr())
		},
	}

	return cmd
}

func runE(c *conf, errOut io.Writer) (err error) {
	db, err := index.Open(index.WithDir(viper.GetString("db-dir")))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); err == nil {
			err = cerr
		}
	}()

	count := 0
	for _, fileName := range c.fileNames {
		n, err := db.IndexFile(fileName)
		if err != nil {
			return err
		}
		count += n
	}
	_, _ = fmt.Fprintln(errOut, "Count: ", count)
	return nil
}
