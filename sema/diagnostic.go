/*
 * Pyrite - A static type checker for Python
 *
 * Copyright The Pyrite Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package sema

import (
	"strings"
)

// DiagnosticMessage is a single structured diagnostic message
type DiagnosticMessage interface {
	Message() string
}

// DiagnosticAddendum

// DiagnosticAddendum is a tree of diagnostic messages, accumulated
// while checking an assignment, explaining why the assignment failed.
//
// All methods are safe to call on a nil receiver: a nil addendum
// records nothing, which allows callers that do not need diagnostics
// to simply pass nil.
type DiagnosticAddendum struct {
	messages []DiagnosticMessage
	children []*DiagnosticAddendum
}

func NewDiagnosticAddendum() *DiagnosticAddendum {
	return &DiagnosticAddendum{}
}

// CreateAddendum appends a new child addendum and returns it.
// Returns nil if the receiver is nil.
func (d *DiagnosticAddendum) CreateAddendum() *DiagnosticAddendum {
	if d == nil {
		return nil
	}
	child := &DiagnosticAddendum{}
	d.children = append(d.children, child)
	return child
}

// AddMessage appends the given message to this addendum
func (d *DiagnosticAddendum) AddMessage(message DiagnosticMessage) {
	if d == nil {
		return
	}
	d.messages = append(d.messages, message)
}

// Messages returns the messages of this addendum,
// not including those of child addenda
func (d *DiagnosticAddendum) Messages() []DiagnosticMessage {
	if d == nil {
		return nil
	}
	return d.messages
}

// Children returns the child addenda
func (d *DiagnosticAddendum) Children() []*DiagnosticAddendum {
	if d == nil {
		return nil
	}
	return d.children
}

// IsEmpty returns true if neither this addendum nor any of its
// children carry a message
func (d *DiagnosticAddendum) IsEmpty() bool {
	if d == nil {
		return true
	}
	if len(d.messages) > 0 {
		return false
	}
	for _, child := range d.children {
		if !child.IsEmpty() {
			return false
		}
	}
	return true
}

// FlattenedMessages returns all messages of this addendum
// and its children, depth-first
func (d *DiagnosticAddendum) FlattenedMessages() []DiagnosticMessage {
	if d == nil {
		return nil
	}
	var messages []DiagnosticMessage
	messages = append(messages, d.messages...)
	for _, child := range d.children {
		messages = append(messages, child.FlattenedMessages()...)
	}
	return messages
}

func (d *DiagnosticAddendum) String() string {
	var sb strings.Builder
	d.write(&sb, 0)
	return sb.String()
}

func (d *DiagnosticAddendum) write(sb *strings.Builder, depth int) {
	if d == nil {
		return
	}
	for _, message := range d.messages {
		for i := 0; i < depth; i++ {
			sb.WriteString("  ")
		}
		sb.WriteString(message.Message())
		sb.WriteByte('\n')
	}
	for _, child := range d.children {
		if child.IsEmpty() {
			continue
		}
		childDepth := depth
		if len(d.messages) > 0 {
			childDepth++
		}
		child.write(sb, childDepth)
	}
}
