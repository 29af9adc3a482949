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

// Node is an element of a document tree.
// The concrete type of a Node is one of
// [*Document], [*Heading], [*Paragraph], [*List], [*ListItem],
// [*ThematicBreak], [*Emphasis], [*LineBreak], [*Literal] or [*Link],
// as identified by its Kind.
//
// Trees are built once (usually by a parser)
// and are not modified by rendering.
type Node interface {
	Kind() Kind
	// Children returns the node's children in document order.
	Children() []Node
}

// A Block is a [Node] that remembers how many blank lines
// preceded it in the source document.
type Block interface {
	Node
	LeadingBlankLines() int
}

// ChildCount returns the number of children the node has.
// Calling ChildCount on a nil Node returns 0.
func ChildCount(n Node) int {
	if n == nil {
		return 0
	}
	if list, ok := n.(*List); ok {
		return len(list.Items)
	}
	return len(n.Children())
}

// Child returns the i'th child of the node.
func Child(n Node, i int) Node {
	if list, ok := n.(*List); ok {
		return list.Items[i]
	}
	return n.Children()[i]
}
