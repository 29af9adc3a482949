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

import (
	"strconv"

	"golang.org/x/net/html/atom"
)

// A NodeRenderer writes the markup for one kind of [Node].
type NodeRenderer interface {
	// RenderNode writes n and its children to w.
	// ctx holds the flags of n's position in the tree.
	RenderNode(w *Writer, ctx Context, n Node)
}

// NodeRendererFunc is a function that implements [NodeRenderer].
type NodeRendererFunc func(w *Writer, ctx Context, n Node)

// RenderNode calls f(w, ctx, n).
func (f NodeRendererFunc) RenderNode(w *Writer, ctx Context, n Node) {
	f(w, ctx, n)
}

// A Registry maps node kinds to node renderers.
// Registries must not be modified while a render that uses them is in progress.
type Registry struct {
	renderers map[Kind]NodeRenderer
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{renderers: make(map[Kind]NodeRenderer)}
}

// DefaultRegistry returns a new registry
// holding the node renderers for every kind of inline and block node.
// The caller may register replacements for individual kinds.
func DefaultRegistry() *Registry {
	reg := NewRegistry()
	reg.Register(HeadingKind, NodeRendererFunc(renderHeading))
	reg.Register(ParagraphKind, NodeRendererFunc(renderParagraph))
	reg.Register(ListKind, NodeRendererFunc(renderList))
	reg.Register(ThematicBreakKind, NodeRendererFunc(renderThematicBreak))
	reg.Register(EmphasisKind, NodeRendererFunc(renderEmphasis))
	reg.Register(LineBreakKind, NodeRendererFunc(renderLineBreak))
	reg.Register(LiteralKind, NodeRendererFunc(renderLiteral))
	reg.Register(LinkKind, NodeRendererFunc(renderLink))
	return reg
}

// defaultRegistry is shared by renderers that don't set a Registry.
// It is never modified after initialization.
var defaultRegistry = DefaultRegistry()

// Register sets the renderer for nodes of the given kind.
// Registering a kind a second time replaces the earlier renderer.
// Registering a nil renderer removes the kind from the registry.
func (reg *Registry) Register(kind Kind, nr NodeRenderer) {
	if nr == nil {
		delete(reg.renderers, kind)
		return
	}
	reg.renderers[kind] = nr
}

// Lookup returns the renderer for the given kind
// or nil if none has been registered.
func (reg *Registry) Lookup(kind Kind) NodeRenderer {
	if reg == nil {
		return nil
	}
	return reg.renderers[kind]
}

func renderHeading(w *Writer, ctx Context, n Node) {
	h := n.(*Heading)
	style := w.Style(HeadingStyle(h.Level))
	w.WriteLinesBefore(h)
	w.WriteRaw(style.Open)
	w.WriteChildren(ctx, h)
	w.WriteRaw(style.Close)
	w.EnsureLine()
}

func renderParagraph(w *Writer, ctx Context, n Node) {
	p := n.(*Paragraph)
	if ctx.ImplicitParagraph() {
		style := w.Style(StyleImplicitText)
		w.WriteRaw(style.Open)
		w.WriteChildren(ctx, p)
		w.WriteRaw(style.Close)
		return
	}
	style := w.Style(StyleParagraph)
	w.WriteLinesBefore(p)
	w.WriteRaw(style.Open)
	w.WriteChildren(ctx, p)
	w.WriteRaw(style.Close)
	w.WriteBlankLine()
}

func renderList(w *Writer, ctx Context, n Node) {
	list := n.(*List)
	markerStyle := w.Style(StyleUnorderedList)
	if list.Ordered {
		markerStyle = w.Style(StyleOrderedList)
	}
	itemStyle := w.Style(StyleListItem)
	settings := w.ListSettings()

	w.EnsureLine()
	w.WriteLinesBefore(list)
	itemCtx := ctx.WithImplicitParagraph(!list.Loose)
	for i, item := range list.Items {
		w.WriteRaw(markerStyle.Open)
		if list.Ordered {
			w.WriteRaw(orderedMarker(list, i))
			w.WriteRaw(settings.OrderedDelimiter)
		} else {
			w.WriteRaw(settings.UnorderedDelimiter)
		}
		w.WriteRaw(markerStyle.Close)

		w.WriteRaw(itemStyle.Open)
		w.WriteChildren(itemCtx, item)
		w.WriteRaw(itemStyle.Close)
		w.EnsureLine()
	}
	w.WriteBlankLine()
}

// orderedMarker returns the marker of the i'th item (zero-based)
// of an ordered list, without its delimiter.
func orderedMarker(list *List, i int) string {
	if list.Bullet == 0 || ('0' <= list.Bullet && list.Bullet <= '9') {
		return strconv.Itoa(list.Start + i)
	}
	// Lettered lists count up from the bullet character.
	return string(list.Bullet + rune(i))
}

func renderThematicBreak(w *Writer, ctx Context, n Node) {
	style := w.Style(StyleThematicBreak)
	w.WriteLinesBefore(n)
	w.WriteRaw(style.Open)
	w.WriteRaw(style.Close)
	w.WriteBlankLine()
}

func renderEmphasis(w *Writer, ctx Context, n Node) {
	e := n.(*Emphasis)
	names := emphasisStyles(e.Char, e.Count)
	styles := make([]Style, len(names))
	for i, name := range names {
		styles[i] = w.Style(name)
		w.WriteRaw(styles[i].Open)
	}
	w.WriteChildren(ctx, e)
	for i := len(styles) - 1; i >= 0; i-- {
		w.WriteRaw(styles[i].Close)
	}
}

func renderLineBreak(w *Writer, ctx Context, n Node) {
	if ctx.IsLast() {
		return
	}
	if n.(*LineBreak).Hard && w.HardBreak != "" {
		w.WriteRaw(w.HardBreak)
	}
	w.EnsureLine()
}

func renderLiteral(w *Writer, ctx Context, n Node) {
	w.WriteEscaped(n.(*Literal).Text, w.SoftEscape)
}

func renderLink(w *Writer, ctx Context, n Node) {
	link := n.(*Link)
	style := w.Style(StyleLink)
	tag := atom.A.String()
	w.WriteRaw(style.Open)
	w.WriteRaw("<" + tag + ` href="`)
	w.WriteRaw(NormalizeURI(link.ResolveURL()))
	w.WriteRaw(`">`)
	w.WriteChildren(ctx, link)
	w.WriteRaw("</" + tag + ">")
	w.WriteRaw(style.Close)
}
