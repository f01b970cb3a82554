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
	"github.com/stretchr/testify/require"

	"github.com/pyrite-checker/pyrite/common"
)

func TestSymbol(t *testing.T) {

	t.Parallel()

	t.Run("primary declaration", func(t *testing.T) {
		t.Parallel()

		symbol := &Symbol{
			Name: "value",
			Declarations: []Declaration{
				{
					Kind: common.DeclarationKindVariable,
					Type: intInstance,
				},
				{
					Kind: common.DeclarationKindVariable,
					Type: strInstance,
				},
			},
		}

		declaration, ok := symbol.PrimaryDeclaration()
		require.True(t, ok)
		assert.Equal(t, Type(intInstance), declaration.Type)

		_, ok = (&Symbol{Name: "value"}).PrimaryDeclaration()
		assert.False(t, ok)
	})

	t.Run("declared type", func(t *testing.T) {
		t.Parallel()

		symbol := &Symbol{
			Name: "value",
			Declarations: []Declaration{
				{
					Kind: common.DeclarationKindVariable,
				},
				{
					Kind: common.DeclarationKindVariable,
					Type: strInstance,
				},
			},
		}

		// The first untyped declaration is skipped
		assert.Equal(t, Type(strInstance), symbol.DeclaredType())

		assert.Nil(t, (&Symbol{Name: "value"}).DeclaredType())
	})

	t.Run("effective type", func(t *testing.T) {
		t.Parallel()

		symbol := newVariableSymbol("value", intInstance)
		assert.Equal(t, Type(intInstance), symbol.EffectiveType())

		untyped := &Symbol{
			Name: "value",
			Declarations: []Declaration{
				{
					Kind: common.DeclarationKindVariable,
				},
			},
		}
		assert.Equal(t, Type(&UnknownType{}), untyped.EffectiveType())
	})

	t.Run("is final", func(t *testing.T) {
		t.Parallel()

		assert.True(t, newFinalVariableSymbol("value", intInstance).IsFinal())
		assert.False(t, newVariableSymbol("value", intInstance).IsFinal())

		// Final only applies to typed variable declarations
		functionSymbol := newMethodSymbol("value", intInstance)
		functionSymbol.Declarations[0].IsFinal = true
		assert.False(t, functionSymbol.IsFinal())

		untypedFinal := &Symbol{
			Name: "value",
			Declarations: []Declaration{
				{
					Kind:    common.DeclarationKindVariable,
					IsFinal: true,
				},
			},
		}
		assert.False(t, untypedFinal.IsFinal())
	})
}

func TestLookUpClassMember(t *testing.T) {

	t.Parallel()

	t.Run("own member", func(t *testing.T) {
		t.Parallel()

		class := NewClass("test", "Node")
		symbol := newVariableSymbol("value", intInstance)
		class.Definition.AddMember(symbol)

		lookup, ok := LookUpClassMember(class, "value")
		require.True(t, ok)
		assert.Same(t, symbol, lookup.Symbol)
		assert.Same(t, class, lookup.Owner)
	})

	t.Run("missing member", func(t *testing.T) {
		t.Parallel()

		class := NewClass("test", "Node")

		_, ok := LookUpClassMember(class, "value")
		assert.False(t, ok)
	})

	t.Run("inherited member", func(t *testing.T) {
		t.Parallel()

		base := NewClass("test", "Base")
		symbol := newVariableSymbol("value", intInstance)
		base.Definition.AddMember(symbol)

		derived := NewClass("test", "Derived")
		derived.AddBaseClass(base)

		lookup, ok := LookUpClassMember(derived, "value")
		require.True(t, ok)
		assert.Same(t, symbol, lookup.Symbol)
		assert.Same(t, base, lookup.Owner)
	})

	t.Run("shadowed member", func(t *testing.T) {
		t.Parallel()

		base := NewClass("test", "Base")
		base.Definition.AddMember(newVariableSymbol("value", intInstance))

		derived := NewClass("test", "Derived")
		derived.AddBaseClass(base)
		shadowing := newVariableSymbol("value", strInstance)
		derived.Definition.AddMember(shadowing)

		lookup, ok := LookUpClassMember(derived, "value")
		require.True(t, ok)
		assert.Same(t, shadowing, lookup.Symbol)
	})

	t.Run("owner keeps the queried specialization", func(t *testing.T) {
		t.Parallel()

		box, typeVarE := newGenericClass("Box", "E")
		box.Definition.AddMember(newMethodSymbol("get", typeVarE))

		boxInt := box.CloneForSpecialization([]Type{intInstance})

		lookup, ok := LookUpClassMember(boxInt, "get")
		require.True(t, ok)
		assert.Same(t, boxInt, lookup.Owner)
	})

	t.Run("owner keeps the specialized base", func(t *testing.T) {
		t.Parallel()

		reader, typeVarT := newGenericClass("Reader", "T")
		reader.Definition.AddMember(newMethodSymbol("read", typeVarT))
		readerInt := reader.CloneForSpecialization([]Type{intInstance})

		impl := NewClass("test", "Impl")
		impl.AddBaseClass(readerInt)

		lookup, ok := LookUpClassMember(impl, "read")
		require.True(t, ok)
		assert.Same(t, readerInt, lookup.Owner)
	})
}
