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
	"fmt"
	"strings"

	"github.com/pyrite-checker/pyrite/errors"
)

// SemanticError

type SemanticError interface {
	errors.UserError
	isSemanticError()
}

// ProtocolConformanceError

// ProtocolConformanceError is reported when a type is assigned to
// a protocol it does not structurally satisfy.
// The diagnostic addendum explains which members do not match and why.
type ProtocolConformanceError struct {
	ProtocolType  *ClassType
	CandidateType Type
	Diagnostic    *DiagnosticAddendum
}

var _ SemanticError = &ProtocolConformanceError{}
var _ errors.UserError = &ProtocolConformanceError{}
var _ errors.SecondaryError = &ProtocolConformanceError{}
var _ errors.ErrorNotes = &ProtocolConformanceError{}

func (*ProtocolConformanceError) isSemanticError() {}

func (*ProtocolConformanceError) IsUserError() {}

func (e *ProtocolConformanceError) Error() string {
	return fmt.Sprintf(
		"type `%s` does not conform to protocol `%s`",
		e.CandidateType.String(),
		e.ProtocolType.QualifiedString(),
	)
}

func (e *ProtocolConformanceError) SecondaryError() string {
	var missingNames []string
	for _, message := range e.Diagnostic.FlattenedMessages() {
		if missing, ok := message.(ProtocolMemberMissingMessage); ok {
			missingNames = append(missingNames, missing.Name)
		}
	}
	if len(missingNames) == 0 {
		return ""
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf(
		"`%s` is missing definitions for members: ",
		e.CandidateType.String(),
	))
	for i, name := range missingNames {
		builder.WriteString(fmt.Sprintf("`%s`", name))
		if i != len(missingNames)-1 {
			builder.WriteString(", ")
		}
	}
	return builder.String()
}

func (e *ProtocolConformanceError) ErrorNotes() []errors.ErrorNote {
	messages := e.Diagnostic.FlattenedMessages()
	notes := make([]errors.ErrorNote, 0, len(messages))
	for _, message := range messages {
		notes = append(notes, message)
	}
	return notes
}
