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

// Package stylesheet loads rich text style sheets from TOML files.
//
// A style sheet file looks like:
//
//	[headings.h1]
//	size = "2em"
//	weight = 700
//
//	[paragraph]
//	indent = "1em"
//
//	[lists]
//	ordered_delimiter = ". "
//	unordered_delimiter = "- "
//
//	[styles.bold]
//	open = "<b>"
//	close = "</b>"
//
// Heading and paragraph styles are generated from their settings.
// Any style can also be given explicitly under [styles],
// which takes precedence over the generated markup.
// Style names are matched case-insensitively,
// and an entry that sets only one of open or close
// keeps the other from the built-in style of the same name.
package stylesheet

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/cases"
	"zombiezen.com/go/richtext"
)

// Config is the contents of a style sheet file.
type Config struct {
	Headings  Headings               `toml:"headings"`
	Paragraph Paragraph              `toml:"paragraph"`
	Lists     Lists                  `toml:"lists"`
	Styles    map[string]StyleConfig `toml:"styles,omitempty"`
}

// Headings holds the settings for each heading level.
type Headings struct {
	H1 Heading `toml:"h1"`
	H2 Heading `toml:"h2"`
	H3 Heading `toml:"h3"`
	H4 Heading `toml:"h4"`
	H5 Heading `toml:"h5"`
	H6 Heading `toml:"h6"`
}

// Level returns a pointer to the settings for the given heading level.
// It panics if level is outside the range [1,6].
func (h *Headings) Level(level int) *Heading {
	return [...]*Heading{&h.H1, &h.H2, &h.H3, &h.H4, &h.H5, &h.H6}[level-1]
}

// Heading is the text size and weight of one heading level.
type Heading struct {
	// Size is the value of the <size> tag, like "2em" or "24".
	// An empty size omits the tag.
	Size string `toml:"size"`
	// Weight is a font weight between 100 and 900 in steps of 100.
	// Any other weight renders the heading with <b> instead.
	Weight int `toml:"weight"`
}

// Paragraph holds paragraph settings.
type Paragraph struct {
	// Indent is the first line indent of a paragraph.
	Indent string `toml:"indent"`
}

// Lists holds the list marker strings.
type Lists struct {
	OrderedDelimiter   string `toml:"ordered_delimiter"`
	UnorderedDelimiter string `toml:"unordered_delimiter"`
}

// StyleConfig is an explicit style entry.
type StyleConfig struct {
	Open  string `toml:"open"`
	Close string `toml:"close"`
}

// Default returns the built-in style sheet settings.
func Default() *Config {
	return &Config{
		Headings: Headings{
			H1: Heading{Size: "2em", Weight: 700},
			H2: Heading{Size: "1.5em", Weight: 700},
			H3: Heading{Size: "1.25em", Weight: 600},
			H4: Heading{Size: "1.1em", Weight: 600},
			H5: Heading{Size: "1em", Weight: 600},
			H6: Heading{Size: "1em"},
		},
		Paragraph: Paragraph{Indent: "1em"},
		Lists: Lists{
			OrderedDelimiter:   ". ",
			UnorderedDelimiter: "- ",
		},
		Styles: map[string]StyleConfig{
			richtext.StyleBold:          {Open: "<b>", Close: "</b>"},
			richtext.StyleItalics:       {Open: "<i>", Close: "</i>"},
			richtext.StyleStrikethrough: {Open: "<s>", Close: "</s>"},
			richtext.StyleSubscript:     {Open: "<sub>", Close: "</sub>"},
			richtext.StyleSuperscript:   {Open: "<sup>", Close: "</sup>"},
			richtext.StyleInserted:      {Open: "<u>", Close: "</u>"},
			richtext.StyleMarked:        {Open: "<mark=#ffff0060>", Close: "</mark>"},
			richtext.StyleLink:          {Open: "<color=#4C7EFF><u>", Close: "</u></color>"},
			richtext.StyleThematicBreak: {Open: "<align=center>────────", Close: "</align>"},
		},
	}
}

// Decode reads a style sheet from r.
// Settings missing from the file keep their values from [Default].
// Keys that don't correspond to any setting are an error,
// as are two [styles] entries whose names differ only in case.
func Decode(r io.Reader) (*Config, error) {
	c := Default()
	defaults := c.Styles
	c.Styles = nil
	md, err := toml.NewDecoder(r).Decode(c)
	if err != nil {
		return nil, fmt.Errorf("decode style sheet: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("decode style sheet: unknown keys %s", strings.Join(keys, ", "))
	}
	c.Styles, err = mergeStyles(defaults, c.Styles, md)
	if err != nil {
		return nil, fmt.Errorf("decode style sheet: %w", err)
	}
	return c, nil
}

// mergeStyles overlays the decoded [styles] entries onto the built-in ones.
// Each entry replaces the built-in style whose name folds to the same key,
// and only the fields present in the file are changed.
func mergeStyles(defaults, decoded map[string]StyleConfig, md toml.MetaData) (map[string]StyleConfig, error) {
	merged := make(map[string]StyleConfig, len(defaults)+len(decoded))
	byKey := make(map[string]string, len(defaults))
	for name, s := range defaults {
		merged[name] = s
		byKey[foldName(name)] = name
	}
	seen := make(map[string]string, len(decoded))
	for _, name := range sortedNames(decoded) {
		key := foldName(name)
		if prev, dup := seen[key]; dup {
			return nil, fmt.Errorf("styles %q and %q name the same style", prev, name)
		}
		seen[key] = name

		s := StyleConfig{}
		if old, ok := byKey[key]; ok {
			s = merged[old]
			delete(merged, old)
		}
		if md.IsDefined("styles", name, "open") {
			s.Open = decoded[name].Open
		}
		if md.IsDefined("styles", name, "close") {
			s.Close = decoded[name].Close
		}
		merged[name] = s
	}
	return merged, nil
}

func foldName(name string) string {
	return cases.Fold().String(name)
}

func sortedNames(styles map[string]StyleConfig) []string {
	names := make([]string, 0, len(styles))
	for name := range styles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load reads the style sheet file at the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load style sheet: %w", err)
	}
	defer f.Close()
	c, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return c, nil
}

// Encode writes c to w in TOML format.
func (c *Config) Encode(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("encode style sheet: %w", err)
	}
	return nil
}

// StyleSheet returns the styles described by c.
// If two entries in c.Styles differ only in case,
// the one that sorts last wins.
func (c *Config) StyleSheet() richtext.StyleMap {
	m := richtext.NewStyleMap()
	for level := 1; level <= 6; level++ {
		m.Add(headingStyle(level, c.Headings.Level(level)))
	}
	if c.Paragraph.Indent != "" {
		m.Add(richtext.Style{
			Name:  richtext.StyleParagraph,
			Open:  "<line-indent=" + c.Paragraph.Indent + ">",
			Close: "</line-indent>",
		})
	}
	for _, name := range sortedNames(c.Styles) {
		s := c.Styles[name]
		m.Add(richtext.Style{Name: name, Open: s.Open, Close: s.Close})
	}
	return m
}

func headingStyle(level int, h *Heading) richtext.Style {
	s := richtext.Style{Name: richtext.HeadingStyle(level)}
	if h.Size != "" {
		s.Open = "<size=" + h.Size + ">"
		s.Close = "</size>"
	}
	if 0 < h.Weight && h.Weight <= 900 && h.Weight%100 == 0 {
		s.Open += "<font-weight=" + strconv.Itoa(h.Weight) + ">"
		s.Close = "</font-weight>" + s.Close
	} else {
		s.Open += "<b>"
		s.Close = "</b>" + s.Close
	}
	return s
}

// ListSettings returns the list marker strings.
// Empty delimiters fall back to [richtext.DefaultListSettings].
func (c *Config) ListSettings() richtext.ListSettings {
	settings := richtext.DefaultListSettings()
	if c.Lists.OrderedDelimiter != "" {
		settings.OrderedDelimiter = c.Lists.OrderedDelimiter
	}
	if c.Lists.UnorderedDelimiter != "" {
		settings.UnorderedDelimiter = c.Lists.UnorderedDelimiter
	}
	return settings
}
