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

package pretty

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pyrite-checker/pyrite/sema"
)

type testError struct{}

func (testError) Error() string {
	return "test error"
}

func TestPrintError(t *testing.T) {

	t.Parallel()

	var sb strings.Builder
	printer := NewErrorPrettyPrinter(&sb, false)

	err := printer.PrettyPrintError(testError{})
	require.NoError(t, err)
	require.Equal(t,
		"error: test error\n",
		sb.String(),
	)
}

func TestPrintConformanceError(t *testing.T) {

	t.Parallel()

	diag := sema.NewDiagnosticAddendum()
	diag.AddMessage(sema.ProtocolMemberMissingMessage{Name: "read"})
	diag.CreateAddendum().
		AddMessage(sema.ProtocolMemberTypeMismatchMessage{Name: "seek"})

	conformanceErr := &sema.ProtocolConformanceError{
		ProtocolType:  sema.NewProtocol("collections", "Sized"),
		CandidateType: sema.NewClass("builtins", "int").CloneAsInstance(),
		Diagnostic:    diag,
	}

	var sb strings.Builder
	printer := NewErrorPrettyPrinter(&sb, false)

	err := printer.PrettyPrintError(conformanceErr)
	require.NoError(t, err)
	require.Equal(t,
		"error: type `int` does not conform to protocol `collections.Sized`\n"+
			"note: `int` is missing definitions for members: `read`\n"+
			"note: `read` is not present\n"+
			"note: `seek` is an incompatible type\n",
		sb.String(),
	)
}

func TestPrintDiagnostic(t *testing.T) {

	t.Parallel()

	diag := sema.NewDiagnosticAddendum()
	diag.AddMessage(sema.ProtocolMemberTypeMismatchMessage{Name: "read"})

	child := diag.CreateAddendum()
	child.AddMessage(sema.ProtocolMemberMissingMessage{Name: "write"})

	grandchild := child.CreateAddendum()
	grandchild.AddMessage(sema.ProtocolMemberClassVarMessage{Name: "kind"})

	var sb strings.Builder
	printer := NewErrorPrettyPrinter(&sb, false)

	err := printer.PrettyPrintDiagnostic(diag)
	require.NoError(t, err)
	require.Equal(t,
		"`read` is an incompatible type\n"+
			"  `write` is not present\n"+
			"    `kind` is not a class variable\n",
		sb.String(),
	)
}

func TestPrintErrorColored(t *testing.T) {

	t.Parallel()

	var sb strings.Builder
	printer := NewErrorPrettyPrinter(&sb, true)

	err := printer.PrettyPrintError(testError{})
	require.NoError(t, err)

	output := sb.String()
	require.Contains(t, output, "error")
	require.Contains(t, output, "test error")
	require.Contains(t, output, "\x1b[")
}
