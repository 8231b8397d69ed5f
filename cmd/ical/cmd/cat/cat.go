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

package cat

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nlnwa/goical"
	"github.com/nlnwa/goical/cmd/ical/internal"
	"github.com/spf13/cobra"
)

type conf struct {
	count     int
	names     []string
	fileNames []string
}

func NewCommand() *cobra.Command {
	c := &conf{}
	var cmd = &cobra.Command{
		Use:   "cat FILE...",
		Short: "Print iCalendar files with normalized folding and line endings",
		Long: `Parse one or more iCalendar files and write them back to stdout.

With --name only components with a matching name are written, wherever they are
nested. For example 'ical cat --name VEVENT work.ics' prints every event.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("missing file name")
			}
			c.fileNames = args
			for i, n := range c.names {
				c.names[i] = strings.ToUpper(n)
			}
			return runE(c, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().IntVarP(&c.count, "count", "c", 0, "The maximum number of components to show")
	cmd.Flags().StringArrayVarP(&c.names, "name", "n", []string{}, "only show components with this name")

	return cmd
}

func runE(c *conf, out, errOut io.Writer) error {
	m := internal.Marshaler()
	count := 0
	for _, fileName := range c.fileNames {
		containers, err := internal.ReadFile(fileName)
		if err != nil {
			return fmt.Errorf("%s: %w", fileName, err)
		}

		for _, top := range containers {
			var werr error
			complete := internal.Walk(top, 0, func(cc *goical.Container, depth int) bool {
				if !c.matches(cc, depth) {
					return true
				}
				if _, werr = m.Marshal(out, cc); werr != nil {
					return false
				}
				count++
				return c.count <= 0 || count < c.count
			})
			if werr != nil {
				return werr
			}
			if !complete {
				_, _ = fmt.Fprintln(errOut, "Count: ", count)
				return nil
			}
		}
	}
	_, _ = fmt.Fprintln(errOut, "Count: ", count)
	return nil
}

// matches reports whether a component should be printed. Without names only top-level components match.
func (c *conf) matches(cc *goical.Container, depth int) bool {
	if len(c.names) == 0 {
		return depth == 0
	}
	for _, n := range c.names {
		if strings.EqualFold(n, cc.Name) {
			return true
		}
	}
	return false
}
