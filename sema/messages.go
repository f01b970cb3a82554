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
	"sort"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// ProtocolMemberMissingMessage is reported when a protocol member
// has no counterpart in the candidate type
type ProtocolMemberMissingMessage struct {
	Name string

	// ClosestName is the candidate member name with the smallest
	// edit distance to Name, if a sufficiently close one exists
	ClosestName string
}

var _ DiagnosticMessage = ProtocolMemberMissingMessage{}

func (m ProtocolMemberMissingMessage) Message() string {
	if m.ClosestName != "" {
		return fmt.Sprintf(
			"`%s` is not present, did you mean `%s`?",
			m.Name,
			m.ClosestName,
		)
	}
	return fmt.Sprintf("`%s` is not present", m.Name)
}

// ProtocolMemberTypeMismatchMessage is reported when a candidate member
// exists but its type is not assignable to the protocol member's type
type ProtocolMemberTypeMismatchMessage struct {
	Name string
}

var _ DiagnosticMessage = ProtocolMemberTypeMismatchMessage{}

func (m ProtocolMemberTypeMismatchMessage) Message() string {
	return fmt.Sprintf("`%s` is an incompatible type", m.Name)
}

// MemberIsFinalInProtocolMessage is reported when a protocol member
// is declared Final but the candidate member is not
type MemberIsFinalInProtocolMessage struct {
	Name string
}

var _ DiagnosticMessage = MemberIsFinalInProtocolMessage{}

func (m MemberIsFinalInProtocolMessage) Message() string {
	return fmt.Sprintf(
		"`%s` is declared Final in the protocol, but not in the assigned type",
		m.Name,
	)
}

// MemberIsNotFinalInProtocolMessage is reported when a candidate member
// is declared Final but the protocol member is not
type MemberIsNotFinalInProtocolMessage struct {
	Name string
}

var _ DiagnosticMessage = MemberIsNotFinalInProtocolMessage{}

func (m MemberIsNotFinalInProtocolMessage) Message() string {
	return fmt.Sprintf(
		"`%s` is declared Final in the assigned type, but not in the protocol",
		m.Name,
	)
}

// ProtocolMemberClassVarMessage is reported when a protocol member
// is declared as a pure class variable but the candidate member
// is not class-level
type ProtocolMemberClassVarMessage struct {
	Name string
}

var _ DiagnosticMessage = ProtocolMemberClassVarMessage{}

func (m ProtocolMemberClassVarMessage) Message() string {
	return fmt.Sprintf("`%s` is not a class variable", m.Name)
}

// closestMemberName searches the given member names and returns the one
// with the smallest edit distance from the given name.
// In cases of typos, this should provide a helpful hint.
// Returns the empty string if no member name is sufficiently close.
func closestMemberName(name string, memberNames []string) (closestName string) {
	nameRunes := []rune(name)

	closestDistance := len(name)

	sortedMemberNames := make([]string, len(memberNames))
	copy(sortedMemberNames, memberNames)
	sort.Strings(sortedMemberNames)

	for _, memberName := range sortedMemberNames {
		distance := levenshtein.DistanceForStrings(
			nameRunes,
			[]rune(memberName),
			levenshtein.DefaultOptions,
		)

		// Don't update the closest member if the distance is greater than one already found,
		// or if the edits required would involve a complete replacement of the member's text
		if distance < closestDistance && distance < len(memberName) {
			closestName = memberName
			closestDistance = distance
		}
	}

	return
}
