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

// Package markdown parses Markdown into [richtext] document trees.
//
// Parsing is done by goldmark with CommonMark block rules.
// Emphasis is handled by an inline extension that keeps track of the
// delimiter character, so that *, _, ~, ^, + and = spans
// can be styled differently.
package markdown

import (
	"bytes"

	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"zombiezen.com/go/richtext"
)

// A Parser converts Markdown source into document trees.
// A Parser is safe to use from multiple goroutines.
type Parser struct {
	p parser.Parser
}

// An Option configures a [Parser].
type Option func(*options)

type options struct {
	linkify bool
}

// WithLinkify sets whether bare URLs like "www.example.com"
// are turned into links. It is enabled by default.
func WithLinkify(enabled bool) Option {
	return func(o *options) {
		o.linkify = enabled
	}
}

// NewParser returns a new parser with the given options.
func NewParser(opts ...Option) *Parser {
	o := options{linkify: true}
	for _, opt := range opts {
		opt(&o)
	}
	inlines := []util.PrioritizedValue{
		util.Prioritized(parser.NewCodeSpanParser(), 100),
		util.Prioritized(parser.NewLinkParser(), 200),
		util.Prioritized(parser.NewAutoLinkParser(), 300),
		util.Prioritized(parser.NewRawHTMLParser(), 400),
		util.Prioritized(spanParser{}, 500),
	}
	if o.linkify {
		inlines = append(inlines, util.Prioritized(extension.NewLinkifyParser(), 999))
	}
	return &Parser{
		p: parser.NewParser(
			parser.WithBlockParsers(parser.DefaultBlockParsers()...),
			parser.WithInlineParsers(inlines...),
			parser.WithParagraphTransformers(parser.DefaultParagraphTransformers()...),
		),
	}
}

var defaultParser = NewParser()

// Parse parses source with the default options.
func Parse(source []byte) *richtext.Document {
	return defaultParser.Parse(source)
}

// Parse parses source into a document tree.
func (p *Parser) Parse(source []byte) *richtext.Document {
	root := p.p.Parse(text.NewReader(source))
	c := &converter{source: source}
	return &richtext.Document{Blocks: c.blocks(root, true)}
}

type converter struct {
	source []byte
	// end is the offset just past the last top-level block converted.
	end int
}

// blocks converts the children of parent.
// top is true for the document's direct children,
// the only blocks that record preceding blank lines.
func (c *converter) blocks(parent gast.Node, top bool) []richtext.Node {
	var out []richtext.Node
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		out = append(out, c.block(n, top)...)
	}
	return out
}

func (c *converter) block(n gast.Node, top bool) []richtext.Node {
	linesBefore := 0
	if top {
		from := c.end
		linesBefore = c.linesBefore(n, from)
		defer func() { c.end = c.blockEnd(n, from) }()
	}
	switch n := n.(type) {
	case *gast.Heading:
		return []richtext.Node{&richtext.Heading{
			Level:       n.Level,
			LinesBefore: linesBefore,
			Inlines:     c.inlines(n),
		}}
	case *gast.Paragraph, *gast.TextBlock:
		return []richtext.Node{&richtext.Paragraph{
			LinesBefore: linesBefore,
			Inlines:     c.inlines(n),
		}}
	case *gast.List:
		list := &richtext.List{
			Ordered:     n.IsOrdered(),
			Start:       n.Start,
			Loose:       !n.IsTight,
			Bullet:      rune(n.Marker),
			LinesBefore: linesBefore,
		}
		if list.Ordered {
			list.Bullet = '1'
		}
		for item := n.FirstChild(); item != nil; item = item.NextSibling() {
			list.Items = append(list.Items, &richtext.ListItem{
				Blocks: c.blocks(item, false),
			})
		}
		return []richtext.Node{list}
	case *gast.ThematicBreak:
		return []richtext.Node{&richtext.ThematicBreak{LinesBefore: linesBefore}}
	case *gast.CodeBlock, *gast.FencedCodeBlock:
		return []richtext.Node{&richtext.Paragraph{
			LinesBefore: linesBefore,
			Inlines:     c.codeLines(n),
		}}
	case *gast.Blockquote:
		// Rich text has no quote construct: keep the contents.
		return c.blocks(n, top)
	default:
		// HTML blocks have no rich text equivalent.
		return nil
	}
}

// codeLines returns one literal per line of a code block,
// separated by hard line breaks.
func (c *converter) codeLines(n gast.Node) []richtext.Node {
	lines := n.Lines()
	var out []richtext.Node
	for i := 0; i < lines.Len(); i++ {
		if i > 0 {
			out = append(out, &richtext.LineBreak{Hard: true})
		}
		seg := lines.At(i)
		line := bytes.TrimRight(seg.Value(c.source), "\r\n")
		out = appendLiteral(out, string(line))
	}
	return out
}

func (c *converter) inlines(parent gast.Node) []richtext.Node {
	var out []richtext.Node
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		out = c.appendInline(out, n)
	}
	return out
}

func (c *converter) appendInline(out []richtext.Node, n gast.Node) []richtext.Node {
	switch n := n.(type) {
	case *gast.Text:
		value := n.Segment.Value(c.source)
		if !n.IsRaw() {
			value = unescape(value)
		}
		out = appendLiteral(out, string(value))
		switch {
		case n.HardLineBreak():
			out = append(out, &richtext.LineBreak{Hard: true})
		case n.SoftLineBreak():
			out = append(out, &richtext.LineBreak{})
		}
		return out
	case *gast.String:
		return appendLiteral(out, string(n.Value))
	case *gast.CodeSpan:
		return appendLiteral(out, c.codeSpanText(n))
	case *spanNode:
		return append(out, c.span(n))
	case *gast.Link:
		return append(out, &richtext.Link{
			URL:     string(unescape(n.Destination)),
			Title:   string(unescape(n.Title)),
			Inlines: c.inlines(n),
		})
	case *gast.AutoLink:
		return append(out, &richtext.Link{
			URL:     string(n.URL(c.source)),
			Inlines: []richtext.Node{&richtext.Literal{Text: string(n.Label(c.source))}},
		})
	case *gast.Image:
		// Images can't be shown inline, so the alt text takes their place.
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			out = c.appendInline(out, child)
		}
		return out
	case *gast.RawHTML:
		return out
	case *parser.Delimiter:
		return appendLiteral(out, string(n.Segment.Value(c.source)))
	default:
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			out = c.appendInline(out, child)
		}
		return out
	}
}

// span converts an emphasis span.
// goldmark nests a triple run like ***x*** as a single span wrapping a double span,
// which is collapsed into one span of count 3.
func (c *converter) span(n *spanNode) *richtext.Emphasis {
	e := &richtext.Emphasis{Char: n.Char, Count: n.Count}
	body := gast.Node(n)
	if n.Char == '*' || n.Char == '_' {
		child, ok := n.FirstChild().(*spanNode)
		if ok && child.NextSibling() == nil && child.Char == n.Char && n.Count+child.Count <= 3 {
			e.Count += child.Count
			body = child
		}
	}
	e.Inlines = c.inlines(body)
	return e
}

func (c *converter) codeSpanText(n *gast.CodeSpan) string {
	var sb bytes.Buffer
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		var value []byte
		switch child := child.(type) {
		case *gast.Text:
			value = child.Segment.Value(c.source)
		case *gast.String:
			value = child.Value
		default:
			continue
		}
		if v, ok := bytes.CutSuffix(value, []byte("\n")); ok {
			sb.Write(v)
			sb.WriteByte(' ')
		} else {
			sb.Write(value)
		}
	}
	return sb.String()
}

// linesBefore returns the number of blank lines in the source
// immediately above the top-level block n.
// from is the offset just past the previous top-level block.
func (c *converter) linesBefore(n gast.Node, from int) int {
	start, ok := c.blockStart(n)
	if !ok {
		count := 0
		for pos := from; pos < len(c.source) && c.isBlankLine(pos); pos = c.lineEnd(pos) {
			count++
		}
		return count
	}
	pos := c.lineStart(start)
	count := 0
	for pos > 0 {
		prev := c.lineStart(pos - 1)
		if !c.isBlankLine(prev) {
			break
		}
		count++
		pos = prev
	}
	return count
}

// blockStart returns a source offset on the first line
// of n or its first descendant block.
// Thematic breaks and empty fenced blocks without an info string
// have no recorded position.
func (c *converter) blockStart(n gast.Node) (int, bool) {
	if n.Type() != gast.TypeBlock {
		return 0, false
	}
	if fenced, ok := n.(*gast.FencedCodeBlock); ok {
		if fenced.Info != nil {
			return fenced.Info.Segment.Start, true
		}
		// The opening fence is the line above the first line of code.
		if lines := fenced.Lines(); lines != nil && lines.Len() > 0 {
			if first := c.lineStart(lines.At(0).Start); first > 0 {
				return c.lineStart(first - 1), true
			}
		}
		return 0, false
	}
	if lines := n.Lines(); lines != nil && lines.Len() > 0 {
		return lines.At(0).Start, true
	}
	if child := n.FirstChild(); child != nil {
		return c.blockStart(child)
	}
	return 0, false
}

// blockEnd returns the offset just past the last source line of n.
// from is a line start at or before the start of n.
func (c *converter) blockEnd(n gast.Node, from int) int {
	switch n := n.(type) {
	case *gast.ThematicBreak:
		return c.lineEnd(c.skipBlankLines(from))
	case *gast.FencedCodeBlock:
		return c.fenceEnd(n, from)
	case *gast.HTMLBlock:
		if n.HasClosure() {
			return c.lineEnd(n.ClosureLine.Start)
		}
	case *gast.Heading:
		if lines := n.Lines(); lines != nil && lines.Len() > 0 {
			end := c.lineEnd(lines.At(lines.Len() - 1).Start)
			first := lines.At(0).Start
			if bytes.IndexByte(c.source[c.lineStart(first):first], '#') < 0 {
				// Setext underline.
				end = c.lineEnd(end)
			}
			return end
		}
	}
	if lines := n.Lines(); lines != nil && lines.Len() > 0 {
		return c.lineEnd(lines.At(lines.Len() - 1).Start)
	}
	if n.FirstChild() == nil {
		return c.lineEnd(c.skipBlankLines(from))
	}
	end := from
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		end = c.blockEnd(child, end)
	}
	return end
}

// fenceEnd returns the offset just past the closing fence of n,
// or past its last line of code if the block is never closed.
func (c *converter) fenceEnd(n *gast.FencedCodeBlock, from int) int {
	open, ok := c.blockStart(n)
	if !ok {
		open = c.skipBlankLines(from)
	}
	open = c.lineStart(open)
	openLine := c.source[open:c.lineEnd(open)]
	i := bytes.IndexAny(openLine, "`~")
	if i < 0 {
		return c.lineEnd(open)
	}
	fenceChar := openLine[i]
	fenceLen := 0
	for i+fenceLen < len(openLine) && openLine[i+fenceLen] == fenceChar {
		fenceLen++
	}

	pos := c.lineEnd(open)
	if lines := n.Lines(); lines != nil && lines.Len() > 0 {
		pos = c.lineEnd(lines.At(lines.Len() - 1).Start)
	}
	if pos < len(c.source) && closesFence(c.source[pos:c.lineEnd(pos)], fenceChar, fenceLen) {
		pos = c.lineEnd(pos)
	}
	return pos
}

// closesFence reports whether line is a closing code fence
// for an opening fence of n fenceChar characters.
// The line may carry container prefixes like "> ".
func closesFence(line []byte, fenceChar byte, n int) bool {
	i := bytes.IndexByte(line, fenceChar)
	if i < 0 || len(bytes.Trim(line[:i], " \t>")) > 0 {
		return false
	}
	run := 0
	for i+run < len(line) && line[i+run] == fenceChar {
		run++
	}
	return run >= n && isBlank(line[i+run:])
}

// lineStart returns the offset of the start of the line containing pos.
func (c *converter) lineStart(pos int) int {
	return bytes.LastIndexByte(c.source[:pos], '\n') + 1
}

// lineEnd returns the offset just past the line ending of the line containing pos.
func (c *converter) lineEnd(pos int) int {
	i := bytes.IndexByte(c.source[pos:], '\n')
	if i < 0 {
		return len(c.source)
	}
	return pos + i + 1
}

func (c *converter) isBlankLine(pos int) bool {
	return isBlank(c.source[pos:c.lineEnd(pos)])
}

func (c *converter) skipBlankLines(pos int) int {
	for pos < len(c.source) && c.isBlankLine(pos) {
		pos = c.lineEnd(pos)
	}
	return pos
}

func isBlank(line []byte) bool {
	for _, b := range line {
		if b != ' ' && b != '\t' && b != '\r' && b != '\n' {
			return false
		}
	}
	return true
}

// unescape resolves backslash escapes and character references.
func unescape(b []byte) []byte {
	b = util.UnescapePunctuations(b)
	b = util.ResolveNumericReferences(b)
	return util.ResolveEntityNames(b)
}

// appendLiteral appends s to out,
// merging it into the last node if that is also a literal.
func appendLiteral(out []richtext.Node, s string) []richtext.Node {
	if s == "" {
		return out
	}
	if len(out) > 0 {
		if lit, ok := out[len(out)-1].(*richtext.Literal); ok {
			lit.Text += s
			return out
		}
	}
	return append(out, &richtext.Literal{Text: s})
}
