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
	"os"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"zombiezen.com/go/richtext"
	"zombiezen.com/go/richtext/internal/tagcheck"
	"zombiezen.com/go/richtext/markdown"
)

type renderOptions struct {
	style      string
	output     string
	hardBreak  string
	softEscape bool
	noLinkify  bool
	check      bool
	plain      bool
}

func newRenderCommand() *cobra.Command {
	opts := new(renderOptions)
	cmd := &cobra.Command{
		Use:   "render [FILE]",
		Short: "Render a Markdown file as rich text",
		Long: "Render a Markdown file as rich text markup.\n" +
			"If FILE is omitted or \"-\", Markdown is read from standard input.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, opts, args)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.style, "style", "s", "", "TOML style sheet `file` (default built-in)")
	flags.StringVarP(&opts.output, "output", "o", "", "write markup to `file` instead of standard output")
	flags.StringVar(&opts.hardBreak, "hard-break", "", "`markup` written for hard line breaks")
	flags.BoolVar(&opts.softEscape, "soft-escape", false, "only escape '<' and '&' in text")
	flags.BoolVar(&opts.noLinkify, "no-linkify", false, "don't turn bare URLs into links")
	flags.BoolVar(&opts.check, "check", false, "fail if the output has unbalanced tags")
	flags.BoolVar(&opts.plain, "plain", false, "write the text without markup")
	return cmd
}

func runRender(cmd *cobra.Command, opts *renderOptions, args []string) error {
	source, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	config, err := loadStyleSheet(opts.style)
	if err != nil {
		return err
	}
	sheet := config.StyleSheet()

	p := markdown.NewParser(markdown.WithLinkify(!opts.noLinkify))
	doc := p.Parse(source)
	for _, name := range richtext.StyleNames(doc) {
		if _, ok := sheet.LookupStyle(name); !ok {
			logrus.Debugf("Style %q is not defined; rendering without markup", name)
		}
	}

	r := &richtext.Renderer{
		StyleSheet: sheet,
		Lists:      config.ListSettings(),
		HardBreak:  opts.hardBreak,
		SoftEscape: opts.softEscape,
	}
	out, err := r.AppendDocument(nil, doc)
	if err != nil {
		return err
	}
	if err := tagcheck.Check(out); err != nil {
		if opts.check {
			return fmt.Errorf("check output: %w", err)
		}
		logrus.Warnf("Output has unbalanced markup: %v", err)
	}
	logrus.Infof("Rendered %s of Markdown into %s of markup",
		humanize.Bytes(uint64(len(source))), humanize.Bytes(uint64(len(out))))
	if opts.plain {
		out = []byte(tagcheck.PlainText(out))
	}

	if opts.output == "" || opts.output == "-" {
		_, err := cmd.OutOrStdout().Write(out)
		return err
	}
	if err := os.WriteFile(opts.output, out, 0o666); err != nil {
		return err
	}
	logrus.Debugf("Wrote %s", opts.output)
	return nil
}
