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

package internal

import (
	"os"

	"github.com/nlnwa/goical"
	"github.com/spf13/viper"
)

// ReadFile parses all top-level containers in fileName.
func ReadFile(fileName string) ([]*goical.Container, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return goical.NewUnmarshaler().Unmarshal(f)
}

// Marshaler returns a marshaler configured from the fold-width setting.
func Marshaler() goical.Marshaler {
	return goical.NewMarshaler(goical.WithFoldWidth(viper.GetInt("fold-width")))
}

// Walk calls fn for c and every container nested in it, depth first.
// Walking stops when fn returns false.
func Walk(c *goical.Container, depth int, fn func(c *goical.Container, depth int) bool) bool {
	if !fn(c, depth) {
		return false
	}
	for _, it := range c.Items {
		if child, ok := it.(*goical.Container); ok {
			if !Walk(child, depth+1, fn) {
				return false
			}
		}
	}
	return true
}

// CropString shortens s to at most n runes, marking the cut with '…'.
func CropString(s string, n int) string {
	r := []rune(s)
	if len(r) <= n || n < 1 {
		return s
	}
	return string(r[:n-1]) + "…"
}
