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

// Package format provides a function to write a document tree
// as Markdown that parses back into an equivalent tree.
package format

import (
	"io"
	"strconv"
	"strings"

	"go4.org/bytereplacer"
	"zombiezen.com/go/richtext"
)

// Format writes doc to w as Markdown.
// Blocks are separated by single blank lines
// regardless of how many blank lines preceded them in the source.
func Format(w io.Writer, doc *richtext.Document) error {
	f := &formatter{
		w:           w,
		atLineStart: true,
	}
	richtext.Walk(doc, &richtext.WalkOptions{
		Pre:  f.pre,
		Post: f.post,
	})
	return f.err
}

type formatter struct {
	w          io.Writer
	err        error
	hasWritten bool

	// atLineStart is true if the next byte written starts a line.
	// The current indent is written lazily before the line's first byte,
	// so that blank lines stay empty.
	atLineStart bool
	// blockStart is true if nothing has been written
	// since the start of the current paragraph.
	blockStart bool
	// itemStart is true if nothing has been written
	// since the current list item's marker.
	itemStart bool

	lists   []*richtext.List
	indents []string
}

func (f *formatter) pre(c *richtext.Cursor) bool {
	switch n := c.Node().(type) {
	case *richtext.Heading:
		f.startBlock(c)
		f.writeString(strings.Repeat("#", n.Level) + " ")
	case *richtext.Paragraph:
		f.startBlock(c)
		f.blockStart = true
	case *richtext.List:
		f.startBlock(c)
		f.lists = append(f.lists, n)
	case *richtext.ListItem:
		list := c.Parent().(*richtext.List)
		if c.Index() > 0 && list.Loose {
			f.writeString("\n")
		}
		marker := listMarker(list, c.Index())
		f.writeString(marker + " ")
		f.indents = append(f.indents, f.indent()+strings.Repeat(" ", len(marker)+1))
		f.itemStart = true
	case *richtext.ThematicBreak:
		switch {
		case len(f.lists) > 0:
			// "- ---" would itself be a thematic break.
			f.startBlock(c)
			f.writeString("___\n")
		case f.hasWritten:
			f.startBlock(c)
			f.writeString("---\n")
		default:
			// Disambiguate from front matter.
			f.writeString("***\n")
		}
	case *richtext.Emphasis:
		f.writeString(strings.Repeat(string(n.Char), n.Count))
	case *richtext.Link:
		f.writeString("[")
	case *richtext.Literal:
		f.writeText(n.Text)
	case *richtext.LineBreak:
		if c.Index() == richtext.ChildCount(c.Parent())-1 {
			return false
		}
		switch {
		case c.Parent().Kind() == richtext.HeadingKind:
			f.writeString(" ")
		case n.Hard:
			f.writeString("\\\n")
		default:
			f.writeString("\n")
		}
	}
	return true
}

func (f *formatter) post(c *richtext.Cursor) bool {
	switch n := c.Node().(type) {
	case *richtext.Heading, *richtext.Paragraph:
		f.ensureLine()
	case *richtext.List:
		f.lists = f.lists[:len(f.lists)-1]
	case *richtext.ListItem:
		f.ensureLine()
		f.indents = f.indents[:len(f.indents)-1]
		f.itemStart = false
	case *richtext.Emphasis:
		f.writeString(strings.Repeat(string(n.Char), n.Count))
	case *richtext.Link:
		f.writeString("](")
		f.writeString(linkDestination(n.URL))
		if n.Title != "" {
			f.writeString(` "`)
			f.writeString(string(titleEscaper.Replace([]byte(n.Title))))
			f.writeString(`"`)
		}
		f.writeString(")")
	}
	return f.err == nil
}

// startBlock writes the blank line that separates a block from its previous sibling.
func (f *formatter) startBlock(c *richtext.Cursor) {
	if f.itemStart {
		// The first block of a list item goes on the marker's line.
		f.itemStart = false
		return
	}
	if _, inItem := c.Parent().(*richtext.ListItem); inItem && !f.lists[len(f.lists)-1].Loose {
		return
	}
	if f.hasWritten {
		f.ensureLine()
		f.writeString("\n")
	}
}

func listMarker(list *richtext.List, i int) string {
	if !list.Ordered {
		if list.Bullet == '*' || list.Bullet == '+' {
			return string(list.Bullet)
		}
		return "-"
	}
	n := i + 1
	if list.Bullet == 0 || ('0' <= list.Bullet && list.Bullet <= '9') {
		n = list.Start + i
	}
	return strconv.Itoa(n) + "."
}

func linkDestination(url string) string {
	dst := richtext.NormalizeURI(url)
	if dst == "" || strings.ContainsAny(dst, "()") {
		return "<" + dst + ">"
	}
	return dst
}

var (
	textEscaper = bytereplacer.New(
		`\`, `\\`,
		"`", "\\`",
		"*", `\*`,
		"_", `\_`,
		"~", `\~`,
		"^", `\^`,
		"+", `\+`,
		"=", `\=`,
		"[", `\[`,
		"]", `\]`,
		"<", `\<`,
		">", `\>`,
		"#", `\#`,
		"&", `\&`,
	)
	titleEscaper = bytereplacer.New(
		`\`, `\\`,
		`"`, `\"`,
	)
)

func (f *formatter) writeText(s string) {
	escaped := string(textEscaper.Replace([]byte(s)))
	if f.blockStart || f.atLineStart {
		escaped = escapeLineStart(escaped)
	}
	f.writeString(escaped)
}

// escapeLineStart escapes the characters at the start of s
// that would otherwise begin a new block.
func escapeLineStart(s string) string {
	sb := new(strings.Builder)
	i := 0
	for ; i < len(s) && (s[i] == ' ' || s[i] == '\t'); i++ {
		sb.WriteString("&#" + strconv.Itoa(int(s[i])) + ";")
	}
	rest := s[i:]
	if strings.HasPrefix(rest, "-") {
		sb.WriteString(`\`)
	} else {
		j := 0
		for j < len(rest) && j < 9 && '0' <= rest[j] && rest[j] <= '9' {
			j++
		}
		if j > 0 && j < len(rest) && (rest[j] == '.' || rest[j] == ')') {
			sb.WriteString(rest[:j])
			sb.WriteString(`\`)
			rest = rest[j:]
		}
	}
	sb.WriteString(rest)
	return sb.String()
}

func (f *formatter) indent() string {
	if len(f.indents) == 0 {
		return ""
	}
	return f.indents[len(f.indents)-1]
}

func (f *formatter) ensureLine() {
	if !f.atLineStart {
		f.writeString("\n")
	}
}

// writeString writes s, indenting each non-empty line.
func (f *formatter) writeString(s string) {
	f.blockStart = false
	for len(s) > 0 {
		if f.atLineStart && s[0] != '\n' {
			f.write(f.indent())
		}
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			f.write(s)
			f.atLineStart = false
			return
		}
		f.write(s[:i+1])
		f.atLineStart = true
		s = s[i+1:]
	}
}

func (f *formatter) write(s string) {
	if f.err != nil || s == "" {
		return
	}
	var n int
	n, f.err = io.WriteString(f.w, s)
	f.hasWritten = f.hasWritten || n > 0
}
