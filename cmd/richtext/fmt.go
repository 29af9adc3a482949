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
	"github.com/spf13/cobra"
	"zombiezen.com/go/richtext/format"
	"zombiezen.com/go/richtext/markdown"
)

func newFmtCommand() *cobra.Command {
	var noLinkify bool
	cmd := &cobra.Command{
		Use:   "fmt [FILE]",
		Short: "Reformat a Markdown file",
		Long: "Reformat a Markdown file to normalized Markdown\n" +
			"containing only the constructs that render as rich text.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			doc := markdown.NewParser(markdown.WithLinkify(!noLinkify)).Parse(source)
			return format.Format(cmd.OutOrStdout(), doc)
		},
	}
	cmd.Flags().BoolVar(&noLinkify, "no-linkify", false, "don't turn bare URLs into links")
	return cmd
}
