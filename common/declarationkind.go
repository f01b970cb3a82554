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

package common

import (
	"github.com/pyrite-checker/pyrite/errors"
)

//go:generate go run golang.org/x/tools/cmd/stringer -type=DeclarationKind -trimprefix=DeclarationKind

// DeclarationKind is the kind of a declaration,
// e.g. a variable assignment, a function definition, or a class definition
type DeclarationKind uint

const (
	DeclarationKindUnknown DeclarationKind = iota
	DeclarationKindVariable
	DeclarationKindParameter
	DeclarationKindFunction
	DeclarationKindProperty
	DeclarationKindClass
	DeclarationKindTypeAlias
)

func (k DeclarationKind) Name() string {
	switch k {
	case DeclarationKindVariable:
		return "variable"
	case DeclarationKindParameter:
		return "parameter"
	case DeclarationKindFunction:
		return "function"
	case DeclarationKindProperty:
		return "property"
	case DeclarationKindClass:
		return "class"
	case DeclarationKindTypeAlias:
		return "type alias"
	case DeclarationKindUnknown:
		return "unknown"
	}

	panic(errors.NewUnreachableError())
}
