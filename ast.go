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

package richtext

import "strconv"

// Document is the root of a parsed Markdown document.
type Document struct {
	Blocks []Node
}

// Heading is an ATX or setext heading.
// Level is always in the range [1,6].
type Heading struct {
	Level       int
	LinesBefore int
	Inlines     []Node
}

// Paragraph is a run of inline content.
// Tight list items hold their text in paragraphs as well;
// the enclosing [List] decides whether the paragraph is wrapped.
type Paragraph struct {
	LinesBefore int
	Inlines     []Node
}

// List is an ordered or unordered list.
type List struct {
	Ordered bool
	// Start is the number of the first item in an ordered list.
	Start int
	// Loose reports whether any of the list's items
	// are separated by blank lines.
	Loose bool
	// Bullet is the marker character of an unordered list,
	// or the first marker of an ordered list:
	// '1' for numbered lists, or a letter like 'a' or 'A'.
	Bullet      rune
	LinesBefore int
	Items       []*ListItem
}

// ListItem is a single item of a [List].
type ListItem struct {
	Blocks []Node
}

// ThematicBreak is a horizontal rule.
type ThematicBreak struct {
	LinesBefore int
}

// Emphasis is a span of inline content surrounded by delimiter runs,
// like *this*, ~~this~~ or ==this==.
// Char is one of '*', '_', '~', '^', '+' or '='
// and Count is the number of delimiter characters on each side.
type Emphasis struct {
	Char    byte
	Count   int
	Inlines []Node
}

// LineBreak is a soft or hard line break between inline nodes.
type LineBreak struct {
	Hard bool
}

// Literal is plain document text.
type Literal struct {
	Text string
}

// Link is a hyperlink around inline content.
type Link struct {
	URL   string
	Title string
	// If DynamicURL is not nil,
	// it is called during rendering
	// and its result is used instead of URL
	// unless it returns the empty string.
	DynamicURL func() string
	Inlines    []Node
}

// Kind is an enumeration of values returned by [Node.Kind].
type Kind uint8

const (
	DocumentKind Kind = 1 + iota
	HeadingKind
	ParagraphKind
	ListKind
	ListItemKind
	ThematicBreakKind
	EmphasisKind
	LineBreakKind
	LiteralKind
	LinkKind
)

var kindNames = [...]string{
	DocumentKind:      "Document",
	HeadingKind:       "Heading",
	ParagraphKind:     "Paragraph",
	ListKind:          "List",
	ListItemKind:      "ListItem",
	ThematicBreakKind: "ThematicBreak",
	EmphasisKind:      "Emphasis",
	LineBreakKind:     "LineBreak",
	LiteralKind:       "Literal",
	LinkKind:          "Link",
}

// String returns the name of the kind, like "Paragraph".
func (kind Kind) String() string {
	if int(kind) < len(kindNames) && kindNames[kind] != "" {
		return kindNames[kind]
	}
	return "Kind(" + strconv.Itoa(int(kind)) + ")"
}

func (*Document) Kind() Kind { return DocumentKind }
func (*Heading) Kind() Kind { return HeadingKind }
func (*Paragraph) Kind() Kind { return ParagraphKind }
func (*List) Kind() Kind { return ListKind }
func (*ListItem) Kind() Kind { return ListItemKind }
func (*ThematicBreak) Kind() Kind { return ThematicBreakKind }
func (*Emphasis) Kind() Kind { return EmphasisKind }
func (*LineBreak) Kind() Kind { return LineBreakKind }
func (*Literal) Kind() Kind { return LiteralKind }
func (*Link) Kind() Kind { return LinkKind }

func (doc *Document) Children() []Node { return doc.Blocks }
func (h *Heading) Children() []Node { return h.Inlines }
func (p *Paragraph) Children() []Node { return p.Inlines }
func (item *ListItem) Children() []Node { return item.Blocks }
func (*ThematicBreak) Children() []Node { return nil }
func (e *Emphasis) Children() []Node { return e.Inlines }
func (*LineBreak) Children() []Node { return nil }
func (*Literal) Children() []Node { return nil }
func (link *Link) Children() []Node { return link.Inlines }

// Children returns the list's items.
func (list *List) Children() []Node {
	if len(list.Items) == 0 {
		return nil
	}
	nodes := make([]Node, len(list.Items))
	for i, item := range list.Items {
		nodes[i] = item
	}
	return nodes
}

func (h *Heading) LeadingBlankLines() int { return h.LinesBefore }
func (p *Paragraph) LeadingBlankLines() int { return p.LinesBefore }
func (list *List) LeadingBlankLines() int { return list.LinesBefore }
func (tb *ThematicBreak) LeadingBlankLines() int { return tb.LinesBefore }

// ResolveURL returns the link's destination,
// preferring the result of DynamicURL when it is set.
func (link *Link) ResolveURL() string {
	if link.DynamicURL != nil {
		if u := link.DynamicURL(); u != "" {
			return u
		}
	}
	return link.URL
}
