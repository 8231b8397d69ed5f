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

package format

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nlnwa/goical/cmd/ical/internal"
	"github.com/prometheus/tsdb/fileutil"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type conf struct {
	write     bool
	fileNames []string
}

func NewCommand() *cobra.Command {
	c := &conf{}
	var cmd = &cobra.Command{
		Use:     "fmt FILE...",
		Aliases: []string{"format"},
		Short:   "Reformat iCalendar files",
		Long: `Parse iCalendar files and write them back folded at --fold-width with CRLF
line endings. Without --write the result is printed to stdout. With --write each
file is replaced, but only if its content changed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("missing file name")
			}
			c.fileNames = args
			return runE(c, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVarP(&c.write, "write", "w", false, "write result to the source file instead of stdout")

	return cmd
}

func runE(c *conf, out io.Writer) error {
	for _, fileName := range c.fileNames {
		formatted, err := formatFile(fileName)
		if err != nil {
			return fmt.Errorf("%s: %w", fileName, err)
		}
		if !c.write {
			if _, err := out.Write(formatted); err != nil {
				return err
			}
			continue
		}
		if err := replaceFile(fileName, formatted); err != nil {
			return fmt.Errorf("%s: %w", fileName, err)
		}
	}
	return nil
}

func formatFile(fileName string) ([]byte, error) {
	containers, err := internal.ReadFile(fileName)
	if err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	if _, err := internal.Marshaler().Marshal(buf, containers...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// replaceFile writes content to a temporary file next to fileName and renames it into place.
func replaceFile(fileName string, content []byte) error {
	orig, err := os.ReadFile(fileName)
	if err != nil {
		return err
	}
	if bytes.Equal(orig, content) {
		log.Debugf("%s is unchanged", fileName)
		return nil
	}

	info, err := os.Stat(fileName)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(fileName), "."+filepath.Base(fileName)+".*~")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(info.Mode()); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := fileutil.Rename(tmp.Name(), fileName); err != nil {
		return err
	}
	log.Infof("formatted %s", fileName)
	return nil
}
