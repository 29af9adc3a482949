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

// Package tagcheck inspects rich text markup.
// Rich text tags look like HTML tags, except that a tag's value
// may directly follow its name, as in <size=24> or <color=#ff0000>.
package tagcheck

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"go4.org/bytereplacer"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// voidTags are tags that never have a closing tag.
var voidTags = map[string]struct{}{
	atom.Br.String(): {},
	"sprite":         {},
	"space":          {},
	"page":           {},
	"pos":            {},
}

// tagName returns the tag name without its value.
func tagName(tok *html.Tokenizer) string {
	name, _ := tok.TagName()
	tag, _, _ := strings.Cut(string(name), "=")
	return tag
}

// Check verifies that every tag opened in markup is closed
// and that tags are closed in the reverse order they were opened.
func Check(markup []byte) error {
	tok := html.NewTokenizerFragment(bytes.NewReader(markup), atom.Div.String())
	var stack []string
	for {
		switch tok.Next() {
		case html.ErrorToken:
			if err := tok.Err(); err != io.EOF {
				return err
			}
			if len(stack) > 0 {
				return fmt.Errorf("unclosed <%s>", stack[len(stack)-1])
			}
			return nil
		case html.StartTagToken:
			tag := tagName(tok)
			if _, void := voidTags[tag]; !void {
				stack = append(stack, tag)
			}
		case html.EndTagToken:
			tag := tagName(tok)
			if len(stack) == 0 {
				return fmt.Errorf("</%s> without matching open tag", tag)
			}
			if open := stack[len(stack)-1]; open != tag {
				return fmt.Errorf("</%s> closes <%s>", tag, open)
			}
			stack = stack[:len(stack)-1]
		}
	}
}

var backslashUnescaper = bytereplacer.New(
	`\\`, `\`,
	`\/`, `/`,
	`\"`, `"`,
)

// PlainText returns the text of markup with all tags removed
// and escape sequences resolved.
func PlainText(markup []byte) string {
	tok := html.NewTokenizerFragment(bytes.NewReader(markup), atom.Div.String())
	var text []byte
	for {
		tt := tok.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			text = append(text, tok.Text()...)
		}
	}
	return string(backslashUnescaper.Replace(text))
}
