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

// Package richtext renders Markdown document trees
// into rich text markup, such as the tag syntax
// understood by Unity's TextCore and UI Toolkit text elements.
//
// The markup written around each construct
// comes entirely from a [StyleSheet],
// so the renderer is agnostic to the exact tag dialect.
// Parsing is left to other packages;
// see [zombiezen.com/go/richtext/markdown].
package richtext

import (
	"errors"
	"fmt"
	"io"

	"go4.org/bytereplacer"
)

// ErrNoStyleSheet is returned when rendering with a [Renderer]
// that has no style sheet.
var ErrNoStyleSheet = errors.New("richtext: no style sheet")

// ListSettings holds the list marker strings.
type ListSettings struct {
	// OrderedDelimiter is written after each ordered list item's number.
	OrderedDelimiter string
	// UnorderedDelimiter is written as each unordered list item's marker.
	UnorderedDelimiter string
}

// DefaultListSettings returns the list settings
// used when a [Renderer]'s Lists field is the zero value.
func DefaultListSettings() ListSettings {
	return ListSettings{
		OrderedDelimiter:   ". ",
		UnorderedDelimiter: "- ",
	}
}

// A Renderer converts document trees into rich text markup.
// A Renderer may be used by multiple goroutines simultaneously
// as long as its fields are not modified.
//
// # Security considerations
//
// Literal document text is always escaped,
// so text like "<color=red>" in a document
// cannot be interpreted as markup.
// Style sheet markup and list delimiters are written verbatim
// and must come from a trusted source.
type Renderer struct {
	// StyleSheet supplies the markup around each construct.
	// Rendering fails with [ErrNoStyleSheet] if StyleSheet is nil.
	StyleSheet StyleSheet
	// Lists holds the list marker strings.
	// The zero value uses [DefaultListSettings].
	Lists ListSettings
	// HardBreak is written before the line ending of a hard line break.
	// If HardBreak is empty, hard line breaks render like soft line breaks.
	HardBreak string
	// If SoftEscape is true, literal text only has '<' and '&' escaped.
	SoftEscape bool
	// Registry holds the node renderers.
	// If Registry is nil, the renderers from [DefaultRegistry] are used.
	Registry *Registry
}

// Render renders doc using the given style sheet
// and the default options for [Renderer].
func Render(doc *Document, sheet StyleSheet) (string, error) {
	return (&Renderer{StyleSheet: sheet}).Render(doc)
}

// Render renders doc to a string.
// Each call uses a fresh buffer,
// so rendering the same document twice produces identical output.
func (r *Renderer) Render(doc *Document) (string, error) {
	buf, err := r.AppendDocument(nil, doc)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// RenderTo renders doc to w.
// It will return the first error encountered, if any.
func (r *Renderer) RenderTo(w io.Writer, doc *Document) error {
	buf, err := r.AppendDocument(nil, doc)
	if err != nil {
		return err
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("render rich text: %w", err)
	}
	return nil
}

// AppendDocument appends the rendered markup of doc to dst
// and returns the resulting byte slice.
// Callers that reuse a buffer between documents
// must pass dst[:0] to start each document from an empty buffer.
func (r *Renderer) AppendDocument(dst []byte, doc *Document) ([]byte, error) {
	if r.StyleSheet == nil {
		return dst, ErrNoStyleSheet
	}
	w := r.newWriter(dst)
	if doc != nil {
		w.WriteChildren(Context{}, doc)
	}
	return w.dst, nil
}

func (r *Renderer) newWriter(dst []byte) *Writer {
	w := &Writer{
		Renderer: r,
		dst:      dst,
		start:    len(dst),
		lists:    r.Lists,
		registry: r.Registry,
	}
	if w.lists == (ListSettings{}) {
		w.lists = DefaultListSettings()
	}
	if w.registry == nil {
		w.registry = defaultRegistry
	}
	return w
}

// A Context carries the render flags of the current position in the tree.
// Contexts are values: node renderers pass modified copies
// to their children instead of changing shared state,
// so sibling subtrees never observe each other's flags.
type Context struct {
	implicitParagraph bool
	last              bool
}

// ImplicitParagraph reports whether paragraphs
// should be written without their paragraph wrapper,
// as they are inside the items of a tight list.
func (ctx Context) ImplicitParagraph() bool {
	return ctx.implicitParagraph
}

// IsLast reports whether the node is the last child of its container.
func (ctx Context) IsLast() bool {
	return ctx.last
}

// WithImplicitParagraph returns a copy of ctx
// with the implicit paragraph flag set to v.
func (ctx Context) WithImplicitParagraph(v bool) Context {
	ctx.implicitParagraph = v
	return ctx
}

// A Writer accumulates the output of a single render pass.
// Node renderers use its methods to write markup.
// A Writer must not be retained after the node renderer returns.
type Writer struct {
	*Renderer
	dst      []byte
	start    int // length of dst owned by the caller
	lists    ListSettings
	registry *Registry
}

// ListSettings returns the list settings in effect for the render pass.
func (w *Writer) ListSettings() ListSettings {
	return w.lists
}

// Style returns the named style from the style sheet,
// or a Style with empty markup if the sheet has no such style.
func (w *Writer) Style(name string) Style {
	s, ok := w.StyleSheet.LookupStyle(name)
	if !ok {
		return Style{Name: name}
	}
	return s
}

// WriteRaw appends markup verbatim.
// It must only be used for trusted markup like style delimiters:
// document text goes through [*Writer.WriteEscaped].
func (w *Writer) WriteRaw(s string) {
	w.dst = append(w.dst, s...)
}

var (
	fullEscaper = bytereplacer.New(
		"<", "&lt;",
		">", "&gt;",
		"&", "&amp;",
		"/", `\/`,
		`\`, `\\`,
		`"`, `\"`,
	)
	softEscaper = bytereplacer.New(
		"<", "&lt;",
		"&", "&amp;",
	)
)

// WriteEscaped appends document text,
// escaping any characters that could be interpreted as markup.
// If soft is true, only '<' and '&' are escaped.
func (w *Writer) WriteEscaped(s string, soft bool) {
	w.dst = appendEscaped(w.dst, s, soft)
}

func appendEscaped(dst []byte, s string, soft bool) []byte {
	escaper := fullEscaper
	if soft {
		escaper = softEscaper
	}
	// Replace works in place, so it must be given a copy.
	return append(dst, escaper.Replace([]byte(s))...)
}

// WriteNode renders n with the node renderer registered for its kind.
// Nodes without a registered renderer are skipped.
func (w *Writer) WriteNode(ctx Context, n Node) {
	if nr := w.registry.Lookup(n.Kind()); nr != nil {
		nr.RenderNode(w, ctx, n)
	}
}

// WriteChildren renders each of n's children in document order.
// Every child receives a copy of ctx
// whose IsLast flag reports whether it is the final child.
func (w *Writer) WriteChildren(ctx Context, n Node) {
	children := n.Children()
	for i, c := range children {
		childCtx := ctx
		childCtx.last = i == len(children)-1
		w.WriteNode(childCtx, c)
	}
}

// atLineStart reports whether the render pass output is empty
// or ends with a line ending.
func (w *Writer) atLineStart() bool {
	return len(w.dst) == w.start || w.dst[len(w.dst)-1] == '\n'
}

// EnsureLine writes a line ending
// unless the output is empty or already ends with one.
func (w *Writer) EnsureLine() {
	if !w.atLineStart() {
		w.dst = append(w.dst, '\n')
	}
}

// WriteLine writes a line ending unconditionally.
func (w *Writer) WriteLine() {
	w.dst = append(w.dst, '\n')
}

// WriteBlankLine ensures that the output ends with exactly one blank line.
// Calling WriteBlankLine repeatedly does not add more blank lines,
// and calling it on empty output does nothing.
func (w *Writer) WriteBlankLine() {
	w.EnsureLine()
	out := w.dst[w.start:]
	if len(out) == 0 {
		return
	}
	if len(out) < 2 || out[len(out)-2] != '\n' {
		w.dst = append(w.dst, '\n')
	}
}

// WriteLinesBefore writes one line ending
// for each blank line that preceded n in the source document.
// Nodes that are not a [Block] have no preceding lines.
func (w *Writer) WriteLinesBefore(n Node) {
	b, ok := n.(Block)
	if !ok {
		return
	}
	for i := b.LeadingBlankLines(); i > 0; i-- {
		w.WriteLine()
	}
}
