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

package main

import (
	"fmt"
	"os"

	"github.com/pyrite-checker/pyrite/pretty"
	"github.com/pyrite-checker/pyrite/sema"
)

// Execute loads each given universe file and runs its checks.
// A line is printed per check. Checks whose outcome differs
// from the expectation fail the run, and the diagnostics
// of unexpected conformance failures are printed.
func Execute(args []string) {
	useColor := stdoutIsTerminal()
	errorPrettyPrinter := pretty.NewErrorPrettyPrinter(os.Stderr, useColor)

	failed := false

	for _, path := range args {
		source, err := os.ReadFile(path)
		if err != nil {
			exitWithError(err)
		}

		u, err := newUniverse(source)
		if err != nil {
			exitWithError(fmt.Errorf("%s: %w", path, err))
		}

		for _, spec := range u.checks {
			label := fmt.Sprintf("%s -> %s", spec.Candidate, spec.Protocol)
			if spec.AsClassObject {
				label = fmt.Sprintf("%s => %s", spec.Candidate, spec.Protocol)
			}

			outcome, err := u.runCheck(spec)
			if err != nil {
				exitWithError(fmt.Errorf("%s: %w", path, err))
			}

			if outcome.result == spec.Expect {
				fmt.Printf("ok   %s\n", label)
				continue
			}

			failed = true
			fmt.Printf("FAIL %s\n", label)

			if spec.Expect {
				printErr := errorPrettyPrinter.PrettyPrintError(
					&sema.ProtocolConformanceError{
						ProtocolType:  outcome.protocolType,
						CandidateType: outcome.candidateType,
						Diagnostic:    outcome.diag,
					},
				)
				if printErr != nil {
					panic(printErr)
				}
			} else {
				fmt.Fprintf(
					os.Stderr,
					"expected `%s` to not conform to `%s`\n",
					spec.Candidate,
					spec.Protocol,
				)
			}
		}

		for _, spec := range u.varianceChecks {
			label := fmt.Sprintf("%s ~> %s", spec.Source, spec.Dest)

			result, err := u.runVarianceCheck(spec)
			if err != nil {
				exitWithError(fmt.Errorf("%s: %w", path, err))
			}

			if result == spec.Expect {
				fmt.Printf("ok   %s\n", label)
				continue
			}

			failed = true
			fmt.Printf("FAIL %s\n", label)
		}
	}

	if failed {
		os.Exit(1)
	}
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, colorizeError(err.Error()))
	os.Exit(1)
}
