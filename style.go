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
	"sort"

	"golang.org/x/text/cases"
)

// Style names looked up by the default node renderers.
const (
	StyleBold          = "bold"
	StyleItalics       = "italics"
	StyleStrikethrough = "strikethrough"
	StyleSubscript     = "subscript"
	StyleSuperscript   = "superscript"
	StyleInserted      = "inserted"
	StyleMarked        = "marked"
	StyleLink          = "link"
	StyleParagraph     = "paragraph"
	StyleImplicitText  = "implicitText"
	StyleHeading1      = "heading1"
	StyleHeading2      = "heading2"
	StyleHeading3      = "heading3"
	StyleHeading4      = "heading4"
	StyleHeading5      = "heading5"
	StyleHeading6      = "heading6"
	StyleUnorderedList = "unorderedList"
	StyleOrderedList   = "orderedList"
	StyleListItem      = "listItem"
	StyleThematicBreak = "thematicBreak"
)

// headingStyles is indexed by heading level minus one.
var headingStyles = [6]string{
	StyleHeading1,
	StyleHeading2,
	StyleHeading3,
	StyleHeading4,
	StyleHeading5,
	StyleHeading6,
}

// HeadingStyle returns the style name for a heading level.
// It panics if level is outside the range [1,6].
func HeadingStyle(level int) string {
	return headingStyles[level-1]
}

// Style is a named pair of markup strings
// written before and after a construct's content.
type Style struct {
	Name  string
	Open  string
	Close string
}

// A StyleSheet maps style names to markup.
// Implementations must be safe to call from concurrent render passes.
type StyleSheet interface {
	// LookupStyle returns the style with the given name.
	// A missing style is not an error:
	// the construct is rendered without surrounding markup.
	LookupStyle(name string) (Style, bool)
}

// StyleMap is a [StyleSheet] backed by a map.
// Keys are case-folded style names;
// use [StyleMap.Add] to insert entries.
type StyleMap map[string]Style

// NewStyleMap returns a map containing the given styles.
func NewStyleMap(styles ...Style) StyleMap {
	m := make(StyleMap, len(styles))
	for _, s := range styles {
		m.Add(s)
	}
	return m
}

// Add inserts or replaces the style with s.Name.
func (m StyleMap) Add(s Style) {
	m[foldName(s.Name)] = s
}

// LookupStyle returns the style whose name matches name case-insensitively.
func (m StyleMap) LookupStyle(name string) (Style, bool) {
	s, ok := m[foldName(name)]
	return s, ok
}

// Names returns the names of the styles in the map in sorted order.
func (m StyleMap) Names() []string {
	names := make([]string, 0, len(m))
	for _, s := range m {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}

// foldName folds a style name for caseless matching.
// A Caser is stateful, so one is created per call.
func foldName(name string) string {
	return cases.Fold().String(name)
}

// emphasisStyles returns the names of the styles that wrap an emphasis span,
// in opening order.
func emphasisStyles(char byte, count int) []string {
	switch char {
	case '*', '_':
		switch {
		case count <= 1:
			return []string{StyleBold}
		case count == 2:
			return []string{StyleItalics}
		default:
			return []string{StyleBold, StyleItalics}
		}
	case '~':
		if count <= 1 {
			return []string{StyleSubscript}
		}
		return []string{StyleStrikethrough}
	case '^':
		return []string{StyleSuperscript}
	case '+':
		return []string{StyleInserted}
	case '=':
		return []string{StyleMarked}
	default:
		return nil
	}
}

// StyleNames returns the names of the styles
// that rendering root with the default node renderers would look up,
// in the order they are first used.
func StyleNames(root Node) []string {
	var names []string
	seen := make(map[string]struct{})
	add := func(styles ...string) {
		for _, name := range styles {
			if _, dup := seen[name]; !dup {
				seen[name] = struct{}{}
				names = append(names, name)
			}
		}
	}
	// implicit tracks whether paragraphs inside each enclosing list are unwrapped.
	var implicit []bool
	Walk(root, &WalkOptions{
		Pre: func(c *Cursor) bool {
			switch n := c.Node().(type) {
			case *Heading:
				add(HeadingStyle(n.Level))
			case *Paragraph:
				if len(implicit) > 0 && implicit[len(implicit)-1] {
					add(StyleImplicitText)
				} else {
					add(StyleParagraph)
				}
			case *List:
				if n.Ordered {
					add(StyleOrderedList)
				} else {
					add(StyleUnorderedList)
				}
				add(StyleListItem)
				implicit = append(implicit, !n.Loose)
			case *ThematicBreak:
				add(StyleThematicBreak)
			case *Emphasis:
				add(emphasisStyles(n.Char, n.Count)...)
			case *Link:
				add(StyleLink)
			}
			return true
		},
		Post: func(c *Cursor) bool {
			if _, ok := c.Node().(*List); ok {
				implicit = implicit[:len(implicit)-1]
			}
			return true
		},
	})
	return names
}
