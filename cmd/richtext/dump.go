// Copyright 2023 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
	"zombiezen.com/go/richtext/markdown"
)

func newDumpCommand() *cobra.Command {
	var color, noLinkify bool
	cmd := &cobra.Command{
		Use:   "dump [FILE]",
		Short: "Print the document tree parsed from a Markdown file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			doc := markdown.NewParser(markdown.WithLinkify(!noLinkify)).Parse(source)
			pp.ColoringEnabled = color
			_, err = pp.Fprintln(cmd.OutOrStdout(), doc)
			return err
		},
	}
	cmd.Flags().BoolVar(&color, "color", false, "colorize output")
	cmd.Flags().BoolVar(&noLinkify, "no-linkify", false, "don't turn bare URLs into links")
	return cmd
}
