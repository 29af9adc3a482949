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

// richtext converts Markdown into rich text markup.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"zombiezen.com/go/richtext/stylesheet"
)

var logLevels = []string{"trace", "debug", "info", "warn", "error", "fatal", "panic"}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	logLevel := "warn"
	rootCmd := &cobra.Command{
		Use:           "richtext",
		Short:         "Convert Markdown into rich text markup",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("--log-level: %w", err)
			}
			logrus.SetOutput(cmd.ErrOrStderr())
			logrus.SetLevel(level)
			logrus.Debugf("Called %s.PersistentPreRunE(%s)", cmd.Name(), strings.Join(args, " "))
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", logLevel,
		fmt.Sprintf("Log messages above specified level (%s)", strings.Join(logLevels, ", ")))
	rootCmd.AddCommand(
		newRenderCommand(),
		newDumpCommand(),
		newFmtCommand(),
		newStylesCommand(),
	)
	return rootCmd
}

// readInput reads the Markdown named by args,
// or standard input if args is empty or "-".
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		source, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return source, nil
	}
	source, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return source, nil
}

// loadStyleSheet returns the style sheet configuration at path,
// or the built-in configuration if path is empty.
func loadStyleSheet(path string) (*stylesheet.Config, error) {
	if path == "" {
		logrus.Debugf("Using built-in style sheet")
		return stylesheet.Default(), nil
	}
	logrus.Debugf("Loading style sheet from %s", path)
	return stylesheet.Load(path)
}
