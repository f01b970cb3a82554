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
	"github.com/pyrite-checker/pyrite/common"
	"github.com/pyrite-checker/pyrite/common/orderedmap"
)

// StringSymbolOrderedMap is an insertion-ordered map from member names to symbols
type StringSymbolOrderedMap = orderedmap.OrderedMap[string, *Symbol]

// Declaration

// Declaration is a single declaration of a symbol,
// e.g. an assignment, a function definition, or a class definition.
//
// A nil Type means the declaration carries no type annotation.
type Declaration struct {
	Kind    common.DeclarationKind
	Type    Type
	IsFinal bool
}

// Symbol

// Symbol is a named member of a class or module,
// together with all of its declarations, in source order
type Symbol struct {
	Name string

	// IsClassMember indicates the symbol is declared in the class body,
	// as opposed to being an instance-only attribute
	// assigned in a method body
	IsClassMember bool

	// IsClassVar indicates the symbol is declared as a pure
	// class variable (`ClassVar`)
	IsClassVar bool

	// IsIgnoredForProtocolMatch indicates the symbol never participates
	// in structural matching, e.g. names declared in `Protocol` itself
	IsIgnoredForProtocolMatch bool

	Declarations []Declaration
}

// NewSymbol returns a class-level symbol with a single typed declaration
func NewSymbol(name string, kind common.DeclarationKind, ty Type) *Symbol {
	return &Symbol{
		Name:          name,
		IsClassMember: true,
		Declarations: []Declaration{
			{
				Kind: kind,
				Type: ty,
			},
		},
	}
}

// PrimaryDeclaration returns the symbol's first declaration, if any
func (s *Symbol) PrimaryDeclaration() (Declaration, bool) {
	if len(s.Declarations) == 0 {
		return Declaration{}, false
	}
	return s.Declarations[0], true
}

// DeclaredType returns the type of the first typed declaration,
// and nil if the symbol has no typed declaration
func (s *Symbol) DeclaredType() Type {
	for _, declaration := range s.Declarations {
		if declaration.Type != nil {
			return declaration.Type
		}
	}
	return nil
}

// EffectiveType returns the declared type, if any,
// and Unknown otherwise
func (s *Symbol) EffectiveType() Type {
	declaredType := s.DeclaredType()
	if declaredType == nil {
		return &UnknownType{}
	}
	return declaredType
}

// IsFinal returns true if any typed variable declaration
// of the symbol is marked `Final`
func (s *Symbol) IsFinal() bool {
	for _, declaration := range s.Declarations {
		if declaration.Kind == common.DeclarationKindVariable &&
			declaration.Type != nil &&
			declaration.IsFinal {

			return true
		}
	}
	return false
}

// MemberLookup

// MemberLookup is the result of looking up a member
// in a class and its ancestors
type MemberLookup struct {
	Symbol *Symbol

	// Owner is the ancestor whose own member table provided the symbol.
	// It may be specialized, e.g. `Box[int]`
	Owner *ClassType
}

// LookUpClassMember looks up the member with the given name
// in the class's linearized ancestor chain,
// returning the first (most specific) match
func LookUpClassMember(class *ClassType, name string) (MemberLookup, bool) {
	for _, ancestor := range class.Definition.Ancestors {
		symbol, ok := ancestor.Definition.Members.Get(name)
		if !ok {
			continue
		}
		owner := ancestor
		if ancestor.Definition == class.Definition {
			// The ancestor chain starts with the unspecialized class;
			// keep the specialization of the queried class
			owner = class
		}
		return MemberLookup{
			Symbol: symbol,
			Owner:  owner,
		}, true
	}
	return MemberLookup{}, false
}
