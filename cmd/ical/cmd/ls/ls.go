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

package ls

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/nlnwa/goical"
	"github.com/nlnwa/goical/cmd/ical/internal"
	namedformat "github.com/nlnwa/goical/internal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const defaultEventFormat = "%{begin}s %{summary}s"

type conf struct {
	output    string
	format    string
	maxWidth  int
	fileNames []string
}

var (
	containerColor = color.New(color.FgCyan, color.Bold)
	nameColor      = color.New(color.FgGreen)
	paramColor     = color.New(color.FgYellow)
)

func NewCommand() *cobra.Command {
	c := &conf{}
	var cmd = &cobra.Command{
		Use:   "ls FILE...",
		Short: "List the contents of iCalendar files",
		Long: `List the component tree of iCalendar files.

Output formats:
  tree    indented components and properties (default)
  yaml    the component tree as a YAML document
  events  one line per event, formatted with --format

The event format takes the named fields uid, summary, description, location,
url, begin, end and file. For example: --format '%{begin}s %{uid}s %{summary}s'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("missing file name")
			}
			c.fileNames = args
			return runE(c, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&c.output, "output", "o", "tree", "output format: tree, yaml or events")
	cmd.Flags().StringVarP(&c.format, "format", "f", defaultEventFormat, "format for events output")
	cmd.Flags().IntVarP(&c.maxWidth, "max-width", "w", 100, "crop property values longer than this in tree output")

	return cmd
}

func runE(c *conf, out io.Writer) error {
	for _, fileName := range c.fileNames {
		containers, err := internal.ReadFile(fileName)
		if err != nil {
			return fmt.Errorf("%s: %w", fileName, err)
		}

		switch c.output {
		case "tree":
			for _, top := range containers {
				printTree(out, top, 0, c.maxWidth)
			}
		case "yaml":
			if err := printYaml(out, containers); err != nil {
				return err
			}
		case "events":
			if err := printEvents(out, fileName, containers, c.format); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown output format: %s", c.output)
		}
	}
	return nil
}

func printTree(out io.Writer, c *goical.Container, depth, maxWidth int) {
	indent := strings.Repeat("  ", depth)
	_, _ = fmt.Fprintf(out, "%s%s\n", indent, containerColor.Sprint(c.Name))
	for _, it := range c.Items {
		switch v := it.(type) {
		case *goical.Container:
			printTree(out, v, depth+1, maxWidth)
		case *goical.ContentLine:
			var params strings.Builder
			for _, p := range v.Params {
				params.WriteString(paramColor.Sprintf(";%s=%s", p.Name, strings.Join(p.Values, ",")))
			}
			_, _ = fmt.Fprintf(out, "%s  %s%s: %s\n", indent, nameColor.Sprint(v.Name), params.String(), internal.CropString(v.Value, maxWidth))
		}
	}
}

func printYaml(out io.Writer, containers []*goical.Container) error {
	doc := make([]any, 0, len(containers))
	for _, c := range containers {
		doc = append(doc, toYaml(c))
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func toYaml(c *goical.Container) map[string]any {
	items := make([]any, 0, len(c.Items))
	for _, it := range c.Items {
		switch v := it.(type) {
		case *goical.Container:
			items = append(items, toYaml(v))
		case *goical.ContentLine:
			if len(v.Params) == 0 {
				items = append(items, map[string]any{v.Name: v.Value})
				continue
			}
			params := make(map[string][]string, len(v.Params))
			for _, p := range v.Params {
				params[p.Name] = p.Values
			}
			items = append(items, map[string]any{v.Name: map[string]any{"params": params, "value": v.Value}})
		}
	}
	return map[string]any{c.Name: items}
}

func printEvents(out io.Writer, fileName string, containers []*goical.Container, format string) error {
	if !strings.HasSuffix(format, "\n") {
		format += "\n"
	}
	for _, c := range containers {
		cal, err := goical.FromContainer(c)
		if err != nil {
			return fmt.Errorf("%s: %w", fileName, err)
		}
		events := append(goical.Events{}, cal.Events...)
		events.Sort()
		for _, e := range events {
			_, _ = fmt.Fprint(out, namedformat.Sprintt(format, eventParams(fileName, e)))
		}
	}
	return nil
}

func eventParams(fileName string, e *goical.Event) map[string]any {
	layout := time.RFC3339
	if e.AllDay {
		layout = "2006-01-02"
	}
	timeString := func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format(layout)
	}
	return map[string]any{
		"uid":         e.UID,
		"summary":     e.Name,
		"description": e.Description,
		"location":    e.Location,
		"url":         e.URL,
		"begin":       timeString(e.Begin),
		"end":         timeString(e.EndTime()),
		"file":        fileName,
	}
}
