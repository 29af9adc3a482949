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

package markdown

import (
	"strconv"

	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// kindSpan is the goldmark node kind of [*spanNode].
var kindSpan = gast.NewNodeKind("Span")

// spanNode is an inline span delimited by a run of one punctuation character.
// Unlike goldmark's own emphasis node, it records which character was used.
type spanNode struct {
	gast.BaseInline
	Char  byte
	Count int
}

func (n *spanNode) Kind() gast.NodeKind {
	return kindSpan
}

func (n *spanNode) Dump(source []byte, level int) {
	gast.DumpHelper(n, source, level, map[string]string{
		"Char":  string(n.Char),
		"Count": strconv.Itoa(n.Count),
	}, nil)
}

// spanDelimiter is a delimiter processor for a single character.
type spanDelimiter struct {
	char byte
}

func (d spanDelimiter) IsDelimiter(b byte) bool {
	return b == d.char
}

func (d spanDelimiter) CanOpenCloser(opener, closer *parser.Delimiter) bool {
	return opener.Char == closer.Char
}

func (d spanDelimiter) OnMatch(consumes int) gast.Node {
	return &spanNode{Char: d.char, Count: consumes}
}

// spanRule describes the run lengths accepted for a delimiter character.
type spanRule struct {
	processor spanDelimiter
	min       int
	max       int // 0 for unbounded
}

var spanRules = map[byte]spanRule{
	'*': {processor: spanDelimiter{'*'}, min: 1},
	'_': {processor: spanDelimiter{'_'}, min: 1},
	'~': {processor: spanDelimiter{'~'}, min: 1, max: 2},
	'^': {processor: spanDelimiter{'^'}, min: 1, max: 2},
	'+': {processor: spanDelimiter{'+'}, min: 2, max: 2},
	'=': {processor: spanDelimiter{'='}, min: 2, max: 2},
}

// spanParser is a goldmark inline parser that replaces the standard emphasis parser.
type spanParser struct{}

func (spanParser) Trigger() []byte {
	return []byte{'*', '_', '~', '^', '+', '='}
}

func (spanParser) Parse(parent gast.Node, block text.Reader, pc parser.Context) gast.Node {
	before := block.PrecendingCharacter()
	line, segment := block.PeekLine()
	if len(line) == 0 {
		return nil
	}
	rule, ok := spanRules[line[0]]
	if !ok {
		return nil
	}
	node := parser.ScanDelimiter(line, before, rule.min, rule.processor)
	if node == nil {
		return nil
	}
	if rule.max > 0 && (node.OriginalLength > rule.max || before == rune(line[0])) {
		return nil
	}
	node.Segment = segment.WithStop(segment.Start + node.OriginalLength)
	block.Advance(node.OriginalLength)
	pc.PushDelimiter(node)
	return node
}
