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
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"zombiezen.com/go/richtext/internal/tagcheck"
)

var testStyles = NewStyleMap(
	Style{Name: StyleBold, Open: "<b>", Close: "</b>"},
	Style{Name: StyleItalics, Open: "<i>", Close: "</i>"},
	Style{Name: StyleStrikethrough, Open: "<s>", Close: "</s>"},
	Style{Name: StyleSubscript, Open: "<sub>", Close: "</sub>"},
	Style{Name: StyleSuperscript, Open: "<sup>", Close: "</sup>"},
	Style{Name: StyleInserted, Open: "<u>", Close: "</u>"},
	Style{Name: StyleMarked, Open: "<mark=#ffff00>", Close: "</mark>"},
	Style{Name: StyleLink, Open: "<color=blue>", Close: "</color>"},
	Style{Name: StyleParagraph, Open: "<p>", Close: "</p>"},
	Style{Name: StyleHeading1, Open: "<size=24><b>", Close: "</b></size>"},
	Style{Name: StyleHeading2, Open: "<size=20>", Close: "</size>"},
	Style{Name: StyleThematicBreak, Open: "<hr>", Close: "</hr>"},
)

func para(inlines ...Node) *Paragraph {
	return &Paragraph{Inlines: inlines}
}

func text(s string) *Literal {
	return &Literal{Text: s}
}

func item(blocks ...Node) *ListItem {
	return &ListItem{Blocks: blocks}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name   string
		doc    *Document
		styles StyleMap
		want   string
	}{
		{
			name:   "Empty",
			doc:    &Document{},
			styles: testStyles,
			want:   "",
		},
		{
			name: "Heading",
			doc: &Document{Blocks: []Node{
				&Heading{Level: 1, Inlines: []Node{text("Hi")}},
			}},
			styles: NewStyleMap(Style{Name: "heading1", Open: "<size=24><b>", Close: "</b></size>"}),
			want:   "<size=24><b>Hi</b></size>\n",
		},
		{
			name: "HeadingLinesBefore",
			doc: &Document{Blocks: []Node{
				&Heading{Level: 2, LinesBefore: 2, Inlines: []Node{text("Hi")}},
			}},
			styles: testStyles,
			want:   "\n\n<size=20>Hi</size>\n",
		},
		{
			name: "HeadingMissingStyle",
			doc: &Document{Blocks: []Node{
				&Heading{Level: 6, Inlines: []Node{text("Hi")}},
			}},
			styles: testStyles,
			want:   "Hi\n",
		},
		{
			name:   "Paragraph",
			doc:    &Document{Blocks: []Node{para(text("Hello"))}},
			styles: testStyles,
			want:   "<p>Hello</p>\n\n",
		},
		{
			name: "ParagraphsWithBlankLine",
			doc: &Document{Blocks: []Node{
				para(text("A")),
				&Paragraph{LinesBefore: 1, Inlines: []Node{text("B")}},
			}},
			styles: testStyles,
			want:   "<p>A</p>\n\n\n<p>B</p>\n\n",
		},
		{
			name: "HeadingThenParagraph",
			doc: &Document{Blocks: []Node{
				&Heading{Level: 1, Inlines: []Node{text("Title")}},
				para(text("Body")),
			}},
			styles: testStyles,
			want:   "<size=24><b>Title</b></size>\n<p>Body</p>\n\n",
		},
		{
			name: "ThematicBreak",
			doc: &Document{Blocks: []Node{
				para(text("a")),
				&ThematicBreak{},
				para(text("b")),
			}},
			styles: NewStyleMap(Style{Name: StyleThematicBreak, Open: "<hr>", Close: "</hr>"}),
			want:   "a\n\n<hr></hr>\n\nb\n\n",
		},
		{
			name: "LinkStatic",
			doc: &Document{Blocks: []Node{
				para(&Link{URL: "https://example.com/a b", Inlines: []Node{text("x")}}),
			}},
			styles: testStyles,
			want:   `<p><color=blue><a href="https://example.com/a%20b">x</a></color></p>` + "\n\n",
		},
		{
			name: "LinkQuoteInURL",
			doc: &Document{Blocks: []Node{
				para(&Link{URL: `https://example.com/"><b>`, Inlines: []Node{text("x")}}),
			}},
			styles: NewStyleMap(),
			want:   `<a href="https://example.com/%22%3E%3Cb%3E">x</a>` + "\n\n",
		},
		{
			name: "LinkDynamic",
			doc: &Document{Blocks: []Node{
				para(&Link{
					URL:        "https://example.com/static",
					DynamicURL: func() string { return "https://example.com/dynamic" },
					Inlines:    []Node{text("x")},
				}),
			}},
			styles: NewStyleMap(),
			want:   `<a href="https://example.com/dynamic">x</a>` + "\n\n",
		},
		{
			name: "LinkDynamicEmpty",
			doc: &Document{Blocks: []Node{
				para(&Link{
					URL:        "https://example.com/static",
					DynamicURL: func() string { return "" },
					Inlines:    []Node{text("x")},
				}),
			}},
			styles: NewStyleMap(),
			want:   `<a href="https://example.com/static">x</a>` + "\n\n",
		},
		{
			name: "SoftBreak",
			doc: &Document{Blocks: []Node{
				para(text("a"), &LineBreak{}, text("b")),
			}},
			styles: testStyles,
			want:   "<p>a\nb</p>\n\n",
		},
		{
			name: "HardBreakWithoutToken",
			doc: &Document{Blocks: []Node{
				para(text("a"), &LineBreak{Hard: true}, text("b")),
			}},
			styles: testStyles,
			want:   "<p>a\nb</p>\n\n",
		},
		{
			name: "TrailingBreak",
			doc: &Document{Blocks: []Node{
				para(text("a"), &LineBreak{}),
			}},
			styles: testStyles,
			want:   "<p>a</p>\n\n",
		},
		{
			name: "UnknownEmphasis",
			doc: &Document{Blocks: []Node{
				para(&Emphasis{Char: '?', Count: 1, Inlines: []Node{text("x")}}),
			}},
			styles: testStyles,
			want:   "<p>x</p>\n\n",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := &Renderer{StyleSheet: test.styles}
			got, err := r.Render(test.doc)
			if err != nil {
				t.Fatal("Render:", err)
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("output (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderEmphasis(t *testing.T) {
	tests := []struct {
		char  byte
		count int
		want  string
	}{
		{'*', 1, "<b>x</b>"},
		{'*', 2, "<i>x</i>"},
		{'*', 3, "<b><i>x</i></b>"},
		{'_', 1, "<b>x</b>"},
		{'_', 2, "<i>x</i>"},
		{'_', 3, "<b><i>x</i></b>"},
		{'~', 1, "<sub>x</sub>"},
		{'~', 2, "<s>x</s>"},
		{'^', 1, "<sup>x</sup>"},
		{'+', 2, "<u>x</u>"},
		{'=', 2, "<mark=#ffff00>x</mark>"},
	}
	for _, test := range tests {
		name := strings.Repeat(string(test.char), test.count)
		t.Run(name, func(t *testing.T) {
			doc := &Document{Blocks: []Node{
				para(&Emphasis{Char: test.char, Count: test.count, Inlines: []Node{text("x")}}),
			}}
			got, err := Render(doc, testStyles)
			if err != nil {
				t.Fatal("Render:", err)
			}
			want := "<p>" + test.want + "</p>\n\n"
			if got != want {
				t.Errorf("output = %q; want %q", got, want)
			}
			if err := tagcheck.Check([]byte(got)); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestRenderMissingStyles(t *testing.T) {
	doc := &Document{Blocks: []Node{
		&Heading{Level: 3, Inlines: []Node{text("H")}},
		para(
			&Emphasis{Char: '*', Count: 3, Inlines: []Node{text("e")}},
			&Link{URL: "u", Inlines: []Node{text("l")}},
		),
		&ThematicBreak{},
	}}
	got, err := Render(doc, NewStyleMap())
	if err != nil {
		t.Fatal("Render:", err)
	}
	const want = "H\ne<a href=\"u\">l</a>\n\n"
	if got != want {
		t.Errorf("output = %q; want %q", got, want)
	}
}

func TestRenderLists(t *testing.T) {
	tests := []struct {
		name  string
		list  *List
		lists ListSettings
		want  string
	}{
		{
			name: "Tight",
			list: &List{Bullet: '-', Items: []*ListItem{
				item(para(text("a"))),
				item(para(text("b"))),
			}},
			want: "- a\n- b\n\n",
		},
		{
			name: "Loose",
			list: &List{Bullet: '-', Loose: true, Items: []*ListItem{
				item(para(text("a"))),
				item(para(text("b"))),
			}},
			want: "- <p>a</p>\n\n- <p>b</p>\n\n",
		},
		{
			name: "OrderedStart",
			list: &List{Ordered: true, Start: 3, Bullet: '1', Items: []*ListItem{
				item(para(text("a"))),
				item(para(text("b"))),
				item(para(text("c"))),
			}},
			lists: ListSettings{OrderedDelimiter: ".", UnorderedDelimiter: "- "},
			want:  "3.a\n4.b\n5.c\n\n",
		},
		{
			name: "Lettered",
			list: &List{Ordered: true, Bullet: 'a', Items: []*ListItem{
				item(para(text("x"))),
				item(para(text("y"))),
			}},
			lists: ListSettings{OrderedDelimiter: ") "},
			want:  "a) x\nb) y\n\n",
		},
		{
			name: "CustomBullet",
			list: &List{Bullet: '*', Items: []*ListItem{
				item(para(text("a"))),
			}},
			lists: ListSettings{UnorderedDelimiter: "• "},
			want:  "• a\n\n",
		},
		{
			name: "LooseInsideTight",
			list: &List{Bullet: '-', Items: []*ListItem{
				item(
					para(text("a")),
					&List{Bullet: '-', Loose: true, Items: []*ListItem{
						item(para(text("b"))),
					}},
				),
				item(para(text("c"))),
			}},
			want: "- a\n- <p>b</p>\n\n- c\n\n",
		},
		{
			name: "EmptyItem",
			list: &List{Bullet: '-', Items: []*ListItem{
				item(),
				item(para(text("b"))),
			}},
			want: "- \n- b\n\n",
		},
	}
	styles := NewStyleMap(Style{Name: StyleParagraph, Open: "<p>", Close: "</p>"})
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := &Renderer{
				StyleSheet: styles,
				Lists:      test.lists,
			}
			got, err := r.Render(&Document{Blocks: []Node{test.list}})
			if err != nil {
				t.Fatal("Render:", err)
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("output (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderListStyles(t *testing.T) {
	styles := NewStyleMap(
		Style{Name: StyleOrderedList, Open: "<indent=0>", Close: "</indent>"},
		Style{Name: StyleUnorderedList, Open: "<indent=1>", Close: "</indent>"},
		Style{Name: StyleListItem, Open: "<indent=2em>", Close: "</indent>"},
		Style{Name: StyleImplicitText, Open: "<t>", Close: "</t>"},
	)
	doc := &Document{Blocks: []Node{
		&List{Ordered: true, Start: 1, Bullet: '1', Items: []*ListItem{
			item(para(text("one"))),
		}},
		&List{Bullet: '+', Items: []*ListItem{
			item(para(text("two"))),
		}},
	}}
	got, err := Render(doc, styles)
	if err != nil {
		t.Fatal("Render:", err)
	}
	const want = "<indent=0>1. </indent><indent=2em><t>one</t></indent>\n\n" +
		"<indent=1>- </indent><indent=2em><t>two</t></indent>\n\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("output (-want +got):\n%s", diff)
	}
	if err := tagcheck.Check([]byte(got)); err != nil {
		t.Error(err)
	}
}

func TestRenderHardBreak(t *testing.T) {
	doc := &Document{Blocks: []Node{
		para(text("a"), &LineBreak{Hard: true}, text("b"), &LineBreak{}, text("c"), &LineBreak{Hard: true}),
	}}
	r := &Renderer{
		StyleSheet: NewStyleMap(),
		HardBreak:  "<br>",
	}
	got, err := r.Render(doc)
	if err != nil {
		t.Fatal("Render:", err)
	}
	const want = "a<br>\nb\nc\n\n"
	if got != want {
		t.Errorf("output = %q; want %q", got, want)
	}
}

func TestRenderEscaping(t *testing.T) {
	tests := []struct {
		name string
		soft bool
		want string
	}{
		{name: "Full", soft: false, want: `a&lt;b&gt;&amp;\"\/\\`},
		{name: "Soft", soft: true, want: `a&lt;b>&amp;"/\`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := &Renderer{
				StyleSheet: NewStyleMap(),
				SoftEscape: test.soft,
			}
			doc := &Document{Blocks: []Node{para(text(`a<b>&"/\`))}}
			got, err := r.Render(doc)
			if err != nil {
				t.Fatal("Render:", err)
			}
			if want := test.want + "\n\n"; got != want {
				t.Errorf("output = %q; want %q", got, want)
			}
		})
	}
}

func FuzzLiteralEscaping(f *testing.F) {
	f.Add("plain")
	f.Add("<b>bold</b>")
	f.Add("a & b")
	f.Add("&lt;already escaped&gt;")
	f.Add("<color=red><size=100>")
	f.Add("</noparse>")

	f.Fuzz(func(t *testing.T, s string) {
		doc := &Document{Blocks: []Node{&Heading{Level: 1, Inlines: []Node{text(s)}}}}
		got, err := Render(doc, NewStyleMap())
		if err != nil {
			t.Fatal("Render:", err)
		}
		if strings.ContainsAny(got, "<>") {
			t.Errorf("Render(%q) = %q; contains unescaped markup", s, got)
		}
		for i := strings.IndexByte(got, '&'); i >= 0; i = nextByte(got, '&', i+1) {
			rest := got[i:]
			if !strings.HasPrefix(rest, "&amp;") && !strings.HasPrefix(rest, "&lt;") && !strings.HasPrefix(rest, "&gt;") {
				t.Errorf("Render(%q) = %q; bare '&' at %d", s, got, i)
				break
			}
		}
	})
}

func nextByte(s string, c byte, start int) int {
	i := strings.IndexByte(s[start:], c)
	if i < 0 {
		return -1
	}
	return start + i
}

func TestRenderNoStyleSheet(t *testing.T) {
	doc := &Document{Blocks: []Node{para(text("x"))}}
	r := new(Renderer)
	if _, err := r.Render(doc); !errors.Is(err, ErrNoStyleSheet) {
		t.Errorf("Render(...) error = %v; want %v", err, ErrNoStyleSheet)
	}
	buf := new(bytes.Buffer)
	if err := r.RenderTo(buf, doc); !errors.Is(err, ErrNoStyleSheet) {
		t.Errorf("RenderTo(...) error = %v; want %v", err, ErrNoStyleSheet)
	}
	if buf.Len() > 0 {
		t.Errorf("RenderTo(...) wrote %q", buf)
	}
	dst := []byte("prefix")
	got, err := r.AppendDocument(dst, doc)
	if !errors.Is(err, ErrNoStyleSheet) {
		t.Errorf("AppendDocument(...) error = %v; want %v", err, ErrNoStyleSheet)
	}
	if string(got) != "prefix" {
		t.Errorf("AppendDocument(...) = %q; want %q", got, "prefix")
	}
}

func TestRenderIdempotent(t *testing.T) {
	doc := &Document{Blocks: []Node{
		&Heading{Level: 1, Inlines: []Node{text("Title")}},
		para(text("Some "), &Emphasis{Char: '*', Count: 1, Inlines: []Node{text("text")}}),
		&List{Bullet: '-', Items: []*ListItem{item(para(text("a"))), item(para(text("b")))}},
	}}
	r := &Renderer{StyleSheet: testStyles}
	first, err := r.Render(doc)
	if err != nil {
		t.Fatal("Render #1:", err)
	}
	second, err := r.Render(doc)
	if err != nil {
		t.Fatal("Render #2:", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second render (-first +second):\n%s", diff)
	}
}

func TestRenderConcurrent(t *testing.T) {
	doc := &Document{Blocks: []Node{
		&List{Bullet: '-', Items: []*ListItem{
			item(para(text("a"), &LineBreak{}, text("b"))),
			item(para(&Emphasis{Char: '_', Count: 2, Inlines: []Node{text("c")}})),
		}},
	}}
	r := &Renderer{StyleSheet: testStyles}
	want, err := r.Render(doc)
	if err != nil {
		t.Fatal("Render:", err)
	}

	const n = 8
	results := make([]string, n)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = r.Render(doc)
		}(i)
	}
	wg.Wait()
	for i, got := range results {
		if got != want {
			t.Errorf("results[%d] = %q; want %q", i, got, want)
		}
	}
}

func TestAppendDocument(t *testing.T) {
	doc := &Document{Blocks: []Node{
		para(text("a")),
	}}
	r := &Renderer{StyleSheet: NewStyleMap()}
	got, err := r.AppendDocument([]byte("prefix:"), doc)
	if err != nil {
		t.Fatal("AppendDocument:", err)
	}
	if want := "prefix:a\n\n"; string(got) != want {
		t.Errorf("AppendDocument(...) = %q; want %q", got, want)
	}

	// A pass that writes nothing but blank lines
	// must not see the caller's bytes as its own output.
	got, err = r.AppendDocument([]byte("x"), &Document{Blocks: []Node{&ThematicBreak{}}})
	if err != nil {
		t.Fatal("AppendDocument:", err)
	}
	if want := "x"; string(got) != want {
		t.Errorf("AppendDocument(...) = %q; want %q", got, want)
	}
}

type errWriter struct{}

func (errWriter) Write(p []byte) (int, error) {
	return 0, errors.New("bork")
}

func TestRenderTo(t *testing.T) {
	doc := &Document{Blocks: []Node{para(text("x"))}}
	r := &Renderer{StyleSheet: NewStyleMap()}
	buf := new(bytes.Buffer)
	if err := r.RenderTo(buf, doc); err != nil {
		t.Error("RenderTo:", err)
	}
	if got, want := buf.String(), "x\n\n"; got != want {
		t.Errorf("RenderTo(...) wrote %q; want %q", got, want)
	}
	if err := r.RenderTo(errWriter{}, doc); err == nil {
		t.Error("RenderTo(errWriter{}, ...) did not return an error")
	}
}

func TestWriterBlankLines(t *testing.T) {
	w := (&Renderer{StyleSheet: NewStyleMap()}).newWriter(nil)
	w.WriteBlankLine()
	w.EnsureLine()
	if len(w.dst) != 0 {
		t.Fatalf("after blank line on empty output: %q", w.dst)
	}
	w.WriteRaw("a")
	w.EnsureLine()
	w.EnsureLine()
	if got, want := string(w.dst), "a\n"; got != want {
		t.Errorf("after EnsureLine x2: %q; want %q", got, want)
	}
	w.WriteBlankLine()
	w.WriteBlankLine()
	w.WriteBlankLine()
	if got, want := string(w.dst), "a\n\n"; got != want {
		t.Errorf("after WriteBlankLine x3: %q; want %q", got, want)
	}
	w.WriteLinesBefore(&Paragraph{LinesBefore: 2})
	w.WriteLinesBefore(text("not a block"))
	if got, want := string(w.dst), "a\n\n\n\n"; got != want {
		t.Errorf("after WriteLinesBefore: %q; want %q", got, want)
	}
}

func TestRegistry(t *testing.T) {
	shout := NodeRendererFunc(func(w *Writer, ctx Context, n Node) {
		w.WriteEscaped(strings.ToUpper(n.(*Literal).Text), false)
	})
	reg := DefaultRegistry()
	reg.Register(LiteralKind, shout)
	reg.Register(ThematicBreakKind, nil)

	doc := &Document{Blocks: []Node{
		para(text("hello")),
		&ThematicBreak{},
	}}
	r := &Renderer{
		StyleSheet: testStyles,
		Registry:   reg,
	}
	got, err := r.Render(doc)
	if err != nil {
		t.Fatal("Render:", err)
	}
	if want := "<p>HELLO</p>\n\n"; got != want {
		t.Errorf("output = %q; want %q", got, want)
	}

	// The shared defaults are unaffected.
	got, err = Render(doc, testStyles)
	if err != nil {
		t.Fatal("Render:", err)
	}
	if want := "<p>hello</p>\n\n<hr></hr>\n\n"; got != want {
		t.Errorf("default output = %q; want %q", got, want)
	}
}

func TestContextFlags(t *testing.T) {
	var seen []bool
	reg := DefaultRegistry()
	reg.Register(LiteralKind, NodeRendererFunc(func(w *Writer, ctx Context, n Node) {
		seen = append(seen, ctx.IsLast())
		w.WriteEscaped(n.(*Literal).Text, false)
	}))
	doc := &Document{Blocks: []Node{
		para(text("a"), &Emphasis{Char: '*', Count: 1, Inlines: []Node{text("b"), text("c")}}, text("d")),
	}}
	if _, err := (&Renderer{StyleSheet: NewStyleMap(), Registry: reg}).Render(doc); err != nil {
		t.Fatal("Render:", err)
	}
	want := []bool{false, false, true, true}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Errorf("IsLast flags (-want +got):\n%s", diff)
	}
}
