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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiagnosticMessages(t *testing.T) {

	t.Parallel()

	t.Run("missing member", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t,
			"`read` is not present",
			ProtocolMemberMissingMessage{Name: "read"}.Message(),
		)
	})

	t.Run("missing member with a close name", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t,
			"`read` is not present, did you mean `real`?",
			ProtocolMemberMissingMessage{
				Name:        "read",
				ClosestName: "real",
			}.Message(),
		)
	})

	t.Run("type mismatch", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t,
			"`read` is an incompatible type",
			ProtocolMemberTypeMismatchMessage{Name: "read"}.Message(),
		)
	})

	t.Run("final in protocol", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t,
			"`count` is declared Final in the protocol, but not in the assigned type",
			MemberIsFinalInProtocolMessage{Name: "count"}.Message(),
		)
	})

	t.Run("final in assigned type", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t,
			"`count` is declared Final in the assigned type, but not in the protocol",
			MemberIsNotFinalInProtocolMessage{Name: "count"}.Message(),
		)
	})

	t.Run("class variable", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t,
			"`kind` is not a class variable",
			ProtocolMemberClassVarMessage{Name: "kind"}.Message(),
		)
	})
}

func TestClosestMemberName(t *testing.T) {

	t.Parallel()

	t.Run("typo", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t,
			"name",
			closestMemberName("nmae", []string{"name", "value"}),
		)
	})

	t.Run("no close name", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t,
			"",
			closestMemberName("read", []string{"write"}),
		)
	})

	t.Run("no member names", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "", closestMemberName("read", nil))
	})

	t.Run("complete replacement is rejected", func(t *testing.T) {
		t.Parallel()

		// The distance is smaller than the length of `abcd`,
		// but reaching `ax` rewrites more characters than it has
		assert.Equal(t,
			"",
			closestMemberName("abcd", []string{"ax"}),
		)
	})

	t.Run("first name in sort order wins a tie", func(t *testing.T) {
		t.Parallel()

		// All three names are a single edit away
		assert.Equal(t,
			"read",
			closestMemberName("reed", []string{"reel", "red", "read"}),
		)
	})

	t.Run("a closer later name wins", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t,
			"flush!",
			closestMemberName("flush", []string{"flu", "flush!"}),
		)
	})
}
