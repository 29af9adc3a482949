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
	"fmt"

	"github.com/spf13/cobra"
)

func newStylesCommand() *cobra.Command {
	var style string
	var names bool
	cmd := &cobra.Command{
		Use:   "styles",
		Short: "Print the effective style sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadStyleSheet(style)
			if err != nil {
				return err
			}
			if names {
				for _, name := range config.StyleSheet().Names() {
					if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
						return err
					}
				}
				return nil
			}
			return config.Encode(cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&style, "style", "s", "", "TOML style sheet `file` (default built-in)")
	cmd.Flags().BoolVar(&names, "names", false, "only list the style names")
	return cmd
}
