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

package validate

import (
	"errors"
	"fmt"
	"io"

	"github.com/nlnwa/goical"
	"github.com/nlnwa/goical/cmd/ical/internal"
	"github.com/spf13/cobra"
)

// ErrInvalid is returned when at least one file did not validate.
var ErrInvalid = errors.New("validation failed")

type conf struct {
	quiet     bool
	fileNames []string
}

func NewCommand() *cobra.Command {
	c := &conf{}
	var cmd = &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check that iCalendar files are well formed",
		Long: `Parse iCalendar files and check every calendar and event for missing or
repeated properties. All problems are reported, and the command exits with a
non-zero status if any file is invalid.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("missing file name")
			}
			c.fileNames = args
			return runE(c, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVarP(&c.quiet, "quiet", "q", false, "only print invalid files")

	return cmd
}

func runE(c *conf, out io.Writer) error {
	failed := 0
	for _, fileName := range c.fileNames {
		problems := validateFile(fileName)
		if len(problems) == 0 {
			if !c.quiet {
				_, _ = fmt.Fprintf(out, "%s: ok\n", fileName)
			}
			continue
		}
		failed++
		for _, p := range problems {
			_, _ = fmt.Fprintf(out, "%s: %v\n", fileName, p)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d files", ErrInvalid, failed, len(c.fileNames))
	}
	return nil
}

func validateFile(fileName string) []error {
	containers, err := internal.ReadFile(fileName)
	if err != nil {
		return []error{err}
	}
	if len(containers) == 0 {
		return []error{errors.New("no calendars found")}
	}

	var problems []error
	for _, c := range containers {
		err := goical.CheckCalendar(c)
		if err == nil {
			continue
		}
		if me, ok := err.(interface{ Errors() []error }); ok {
			problems = append(problems, me.Errors()...)
		} else {
			problems = append(problems, err)
		}
	}
	return problems
}
