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
	"strings"

	"github.com/c-bata/go-prompt"

	"github.com/pyrite-checker/pyrite/pretty"
	"github.com/pyrite-checker/pyrite/sema"
)

func RunREPL() {
	printReplWelcome()

	u, err := newUniverse(defaultUniverseYAML)
	if err != nil {
		panic(err)
	}

	errorPrettyPrinter := pretty.NewErrorPrettyPrinter(os.Stderr, true)

	executor := func(line string) {
		line = strings.TrimSpace(line)
		if line == "" {
			return
		}

		if strings.HasPrefix(line, ".") {
			u = handleCommand(u, line)
			return
		}

		runQuery(u, line, errorPrettyPrinter)
	}

	suggest := func(d prompt.Document) []prompt.Suggest {
		if len(d.GetWordBeforeCursor()) == 0 {
			return nil
		}

		suggests := []prompt.Suggest{}

		for _, name := range u.classNames {
			description := "class"
			if u.classes[name].IsProtocolClass() {
				description = "protocol"
			}
			suggests = append(suggests, prompt.Suggest{
				Text:        name,
				Description: description,
			})
		}
		for _, name := range u.moduleNames {
			suggests = append(suggests, prompt.Suggest{
				Text:        name,
				Description: "module",
			})
		}

		return prompt.FilterHasPrefix(suggests, d.GetWordBeforeCursor(), false)
	}

	options := []prompt.Option{
		prompt.OptionPrefix("> "),
	}
	prompt.New(executor, suggest, options...).Run()
}

// runQuery parses and runs a single conformance query:
// `Candidate -> Protocol` checks the candidate's instances,
// `Candidate => Protocol` checks the candidate's class object,
// and `Protocol[A] ~> Protocol[B]` checks two specializations
// of the same protocol against each other
func runQuery(u *universe, line string, errorPrettyPrinter pretty.ErrorPrettyPrinter) {
	if left, right, ok := splitArrow(line, "~>"); ok {
		result, err := u.runVarianceCheck(varianceCheckSpec{
			Source: left,
			Dest:   right,
		})
		if err != nil {
			fmt.Println(colorizeError(err.Error()))
			return
		}
		if result {
			fmt.Println(colorizeResult("assignable"))
		} else {
			fmt.Println(colorizeResult("not assignable"))
		}
		return
	}

	spec := checkSpec{}
	switch {
	case strings.Contains(line, "=>"):
		spec.Candidate, spec.Protocol, _ = splitArrow(line, "=>")
		spec.AsClassObject = true
	case strings.Contains(line, "->"):
		spec.Candidate, spec.Protocol, _ = splitArrow(line, "->")
	default:
		fmt.Println(colorizeError(fmt.Sprintf("Invalid query. %s", replAssistanceMessage)))
		return
	}

	outcome, err := u.runCheck(spec)
	if err != nil {
		fmt.Println(colorizeError(err.Error()))
		return
	}

	if outcome.result {
		fmt.Println(colorizeResult("conforms"))
		return
	}

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
	printErr = errorPrettyPrinter.PrettyPrintDiagnostic(outcome.diag)
	if printErr != nil {
		panic(printErr)
	}
}

func splitArrow(line string, arrow string) (left, right string, ok bool) {
	left, right, ok = strings.Cut(line, arrow)
	return strings.TrimSpace(left), strings.TrimSpace(right), ok
}

const replHelpMessage = `
Enter a query to check conformance. Valid queries are:

Candidate -> Protocol      Check that instances of Candidate conform
Candidate => Protocol      Check that the class object of Candidate conforms
Proto[A] ~> Proto[B]       Check that Proto[A] is usable as Proto[B]

Commands are prefixed with a dot. Valid commands are:

.list             List the declared classes, protocols, and modules
.members <name>   Print the members of the given class or protocol
.load <path>      Load a universe file, replacing the current universe
.exit             Exit the checker
.help             Print this help message

Press ^C to abort the current query, ^D to exit`

const replAssistanceMessage = `Type '.help' for assistance.`

func handleCommand(u *universe, command string) *universe {
	parts := strings.Fields(command)

	switch parts[0] {
	case ".exit":
		os.Exit(0)

	case ".help":
		fmt.Println(replHelpMessage)

	case ".list":
		for _, name := range u.classNames {
			kind := "class"
			if u.classes[name].IsProtocolClass() {
				kind = "protocol"
			}
			fmt.Printf("%-9s %s\n", kind, name)
		}
		for _, name := range u.moduleNames {
			fmt.Printf("%-9s %s\n", "module", name)
		}

	case ".members":
		if len(parts) != 2 {
			fmt.Println(colorizeError("Usage: .members <name>"))
			return u
		}
		printMembers(u, parts[1])

	case ".load":
		if len(parts) != 2 {
			fmt.Println(colorizeError("Usage: .load <path>"))
			return u
		}
		source, err := os.ReadFile(parts[1])
		if err != nil {
			fmt.Println(colorizeError(err.Error()))
			return u
		}
		loaded, err := newUniverse(source)
		if err != nil {
			fmt.Println(colorizeError(err.Error()))
			return u
		}
		fmt.Printf(
			"Loaded %d class(es) and %d module(s)\n",
			len(loaded.classNames),
			len(loaded.moduleNames),
		)
		return loaded

	default:
		fmt.Println(colorizeError(fmt.Sprintf("Unknown command. %s", replAssistanceMessage)))
	}

	return u
}

// printMembers prints the structural members of a protocol,
// or the directly declared members of a class or module
func printMembers(u *universe, ref string) {
	if module, ok := u.modules[ref]; ok {
		for pair := module.Members.Oldest(); pair != nil; pair = pair.Next() {
			printMember(pair.Value, "")
		}
		return
	}

	class, err := u.resolveClassObject(ref, nil)
	if err != nil {
		fmt.Println(colorizeError(err.Error()))
		return
	}

	if class.IsProtocolClass() {
		sema.ForEachProtocolMember(
			class,
			func(name string, symbol *sema.Symbol, owner *sema.ClassType) bool {
				origin := ""
				if owner.Definition != class.Definition {
					origin = fmt.Sprintf("  (from %s)", owner.Definition.Name)
				}
				printMember(symbol, origin)
				return true
			},
		)
		return
	}

	for pair := class.Definition.Members.Oldest(); pair != nil; pair = pair.Next() {
		printMember(pair.Value, "")
	}
}

func printMember(symbol *sema.Symbol, origin string) {
	description := "untyped"
	if declaredType := symbol.DeclaredType(); declaredType != nil {
		description = declaredType.String()
	}
	fmt.Printf("%s: %s%s\n", symbol.Name, description, origin)
}

func printReplWelcome() {
	fmt.Printf("Welcome to the Pyrite protocol checker!\n%s\n\n", replAssistanceMessage)
}
