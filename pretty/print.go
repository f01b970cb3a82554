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
	"io"
	"strings"

	"github.com/logrusorgru/aurora/v4"

	"github.com/pyrite-checker/pyrite/errors"
	"github.com/pyrite-checker/pyrite/sema"
)

const errorPrefix = "error"
const notePrefix = "note"

func colorizeError(message string) string {
	return aurora.Colorize(message, aurora.RedFg|aurora.BrightFg|aurora.BoldFm).String()
}

func colorizeNote(message string) string {
	return aurora.Colorize(message, aurora.CyanFg|aurora.BoldFm).String()
}

func colorizeMessage(message string) string {
	return aurora.Bold(message).String()
}

// ErrorPrettyPrinter renders checker errors and their diagnostic
// addenda for terminal output
type ErrorPrettyPrinter struct {
	writer   io.Writer
	useColor bool
}

func NewErrorPrettyPrinter(writer io.Writer, useColor bool) ErrorPrettyPrinter {
	return ErrorPrettyPrinter{
		writer:   writer,
		useColor: useColor,
	}
}

func (p ErrorPrettyPrinter) writeString(str string) error {
	_, err := p.writer.Write([]byte(str))
	return err
}

func (p ErrorPrettyPrinter) printMessage(
	prefix string,
	colorizePrefix func(string) string,
	message string,
) error {
	if p.useColor {
		prefix = colorizePrefix(prefix)
		message = colorizeMessage(message)
	}
	return p.writeString(prefix + ": " + message + "\n")
}

// PrettyPrintError writes the error's message, followed by its
// secondary message, if any, and its error notes, if any
func (p ErrorPrettyPrinter) PrettyPrintError(err error) error {
	printErr := p.printMessage(errorPrefix, colorizeError, err.Error())
	if printErr != nil {
		return printErr
	}

	if hasSecondaryError, ok := err.(errors.SecondaryError); ok {
		secondary := hasSecondaryError.SecondaryError()
		if secondary != "" {
			printErr = p.printMessage(notePrefix, colorizeNote, secondary)
			if printErr != nil {
				return printErr
			}
		}
	}

	if hasErrorNotes, ok := err.(errors.ErrorNotes); ok {
		for _, note := range hasErrorNotes.ErrorNotes() {
			printErr = p.printMessage(notePrefix, colorizeNote, note.Message())
			if printErr != nil {
				return printErr
			}
		}
	}

	return nil
}

// PrettyPrintDiagnostic writes the messages of the given diagnostic
// addendum tree, indenting each nesting level by two spaces
func (p ErrorPrettyPrinter) PrettyPrintDiagnostic(diag *sema.DiagnosticAddendum) error {
	return p.prettyPrintDiagnostic(diag, 0)
}

func (p ErrorPrettyPrinter) prettyPrintDiagnostic(
	diag *sema.DiagnosticAddendum,
	depth int,
) error {
	messages := diag.Messages()
	for _, message := range messages {
		line := message.Message()
		if p.useColor {
			line = colorizeMessage(line)
		}
		err := p.writeString(strings.Repeat("  ", depth) + line + "\n")
		if err != nil {
			return err
		}
	}

	childDepth := depth
	if len(messages) > 0 {
		childDepth++
	}
	for _, child := range diag.Children() {
		if child.IsEmpty() {
			continue
		}
		err := p.prettyPrintDiagnostic(child, childDepth)
		if err != nil {
			return err
		}
	}

	return nil
}
