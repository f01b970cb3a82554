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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyrite-checker/pyrite/sema"
)

func TestNewUniverse(t *testing.T) {

	t.Parallel()

	t.Run("declares classes, protocols, and modules", func(t *testing.T) {
		t.Parallel()

		u, err := newUniverse([]byte(`
classes:
  - name: HasName
    protocol: true
    bases: [Protocol]
    members:
      - name: name
        method:
          returns: str

  - name: Person
    module: app
    members:
      - name: name
        method:
          returns: str

modules:
  - name: person_mod
    members:
      - name: name
        method:
          returns: str
`))
		require.NoError(t, err)

		protocol := u.classes["HasName"]
		require.NotNil(t, protocol)
		assert.True(t, protocol.IsProtocolClass())
		assert.Equal(t, "main", protocol.Definition.ModuleName)

		person := u.classes["Person"]
		require.NotNil(t, person)
		assert.False(t, person.IsProtocolClass())
		assert.Equal(t, "app", person.Definition.ModuleName)

		require.NotNil(t, u.modules["person_mod"])

		// Built-in classes are always available
		for _, name := range []string{"object", "Protocol", "int", "float", "str", "bytes", "bool"} {
			require.NotNil(t, u.classes[name], name)
		}
		assert.True(t, u.classes["Protocol"].IsProtocolClass())
	})

	t.Run("bool is assignable to int", func(t *testing.T) {
		t.Parallel()

		u, err := newUniverse([]byte("classes: []"))
		require.NoError(t, err)

		boolClass := u.classes["bool"]
		intClass := u.classes["int"]

		assert.True(
			t,
			u.evaluator.AssignType(
				intClass.CloneAsInstance(),
				boolClass.CloneAsInstance(),
				nil,
				nil,
				sema.AssignFlagsDefault,
				0,
			),
		)
	})

	t.Run("type parameters are scoped to their class", func(t *testing.T) {
		t.Parallel()

		u, err := newUniverse([]byte(`
classes:
  - name: Box
    typeParameters: [T]
    members:
      - name: get
        method:
          returns: T
`))
		require.NoError(t, err)

		box := u.classes["Box"]
		require.Len(t, box.Definition.TypeParameters, 1)

		typeParameter := box.Definition.TypeParameters[0]
		assert.Equal(t, "T", typeParameter.Name)
		assert.Equal(t, box.Definition.ScopeID, typeParameter.ScopeID)

		getter, ok := box.Definition.Members.Get("get")
		require.True(t, ok)
		functionType := getter.DeclaredType().(*sema.FunctionType)
		assert.Same(t, typeParameter, functionType.ReturnType())
	})

	t.Run("record placeholder", func(t *testing.T) {
		t.Parallel()

		u, err := newUniverse([]byte(`
recordPlaceholder: RecordBase

classes:
  - name: RecordBase
`))
		require.NoError(t, err)

		placeholder, ok := u.evaluator.SynthesizedRecordBaseClass()
		require.True(t, ok)
		assert.Same(t, u.classes["RecordBase"], placeholder)
	})

	t.Run("no record placeholder", func(t *testing.T) {
		t.Parallel()

		u, err := newUniverse([]byte("classes: []"))
		require.NoError(t, err)

		_, ok := u.evaluator.SynthesizedRecordBaseClass()
		assert.False(t, ok)
	})

	t.Run("metaclass", func(t *testing.T) {
		t.Parallel()

		u, err := newUniverse([]byte(`
classes:
  - name: Meta
    members:
      - name: version
        method:
          returns: int

  - name: Tool
    metaclass: Meta
`))
		require.NoError(t, err)

		tool := u.classes["Tool"]
		require.NotNil(t, tool.Definition.Metaclass)
		assert.Same(t, u.classes["Meta"], tool.Definition.Metaclass)
	})

	t.Run("duplicate class", func(t *testing.T) {
		t.Parallel()

		_, err := newUniverse([]byte(`
classes:
  - name: Dup
  - name: Dup
`))
		require.ErrorContains(t, err, "`Dup` is declared twice")
	})

	t.Run("duplicate module", func(t *testing.T) {
		t.Parallel()

		_, err := newUniverse([]byte(`
modules:
  - name: dup
  - name: dup
`))
		require.ErrorContains(t, err, "`dup` is declared twice")
	})

	t.Run("unknown base class", func(t *testing.T) {
		t.Parallel()

		_, err := newUniverse([]byte(`
classes:
  - name: Sub
    bases: [Missing]
`))
		require.ErrorContains(t, err, "unknown class `Missing`")
	})

	t.Run("member without a kind", func(t *testing.T) {
		t.Parallel()

		_, err := newUniverse([]byte(`
classes:
  - name: Bad
    members:
      - name: x
`))
		require.ErrorContains(t, err, "exactly one of")
	})

	t.Run("member with two kinds", func(t *testing.T) {
		t.Parallel()

		_, err := newUniverse([]byte(`
classes:
  - name: Bad
    members:
      - name: x
        variable: int
        classVar: int
`))
		require.ErrorContains(t, err, "exactly one of")
	})

	t.Run("writable requires a property", func(t *testing.T) {
		t.Parallel()

		_, err := newUniverse([]byte(`
classes:
  - name: Bad
    members:
      - name: x
        variable: int
        writable: true
`))
		require.ErrorContains(t, err, "writable requires a property")
	})

	t.Run("invalid YAML", func(t *testing.T) {
		t.Parallel()

		_, err := newUniverse([]byte(`classes: "nope"`))
		require.ErrorContains(t, err, "failed to parse universe")
	})
}

func TestResolveType(t *testing.T) {

	t.Parallel()

	newTestUniverse := func(t *testing.T) *universe {
		u, err := newUniverse([]byte(`
classes:
  - name: Box
    typeParameters: [T]

  - name: Pair
    typeParameters: [A, B]
`))
		require.NoError(t, err)
		return u
	}

	t.Run("plain class", func(t *testing.T) {
		t.Parallel()

		u := newTestUniverse(t)

		ty, err := u.resolveType("int", nil)
		require.NoError(t, err)

		class := ty.(*sema.ClassType)
		assert.True(t, class.IsInstance())
		assert.Same(t, u.classes["int"].Definition, class.Definition)
	})

	t.Run("type parameter in scope", func(t *testing.T) {
		t.Parallel()

		u := newTestUniverse(t)
		box := u.classes["Box"]

		ty, err := u.resolveType("T", box)
		require.NoError(t, err)
		assert.Same(t, box.Definition.TypeParameters[0], ty)
	})

	t.Run("type parameter out of scope", func(t *testing.T) {
		t.Parallel()

		u := newTestUniverse(t)

		_, err := u.resolveType("T", nil)
		require.ErrorContains(t, err, "unknown type `T`")
	})

	t.Run("specialization", func(t *testing.T) {
		t.Parallel()

		u := newTestUniverse(t)

		ty, err := u.resolveType("Box[int]", nil)
		require.NoError(t, err)

		class := ty.(*sema.ClassType)
		assert.True(t, class.IsInstance())
		assert.Equal(t, "Box[int]", class.String())
	})

	t.Run("nested specialization", func(t *testing.T) {
		t.Parallel()

		u := newTestUniverse(t)

		ty, err := u.resolveType("Pair[Box[int], str]", nil)
		require.NoError(t, err)
		assert.Equal(t, "Pair[Box[int], str]", ty.String())
	})

	t.Run("wrong number of type arguments", func(t *testing.T) {
		t.Parallel()

		u := newTestUniverse(t)

		_, err := u.resolveType("Box[int, str]", nil)
		require.ErrorContains(t, err, "expects 1 type argument(s), got 2")
	})

	t.Run("class object", func(t *testing.T) {
		t.Parallel()

		u := newTestUniverse(t)

		ty, err := u.resolveType("type[int]", nil)
		require.NoError(t, err)

		class := ty.(*sema.ClassType)
		assert.False(t, class.IsInstance())
		assert.Equal(t, "type[int]", class.String())
	})

	t.Run("int literal", func(t *testing.T) {
		t.Parallel()

		u := newTestUniverse(t)

		ty, err := u.resolveType("Literal[3]", nil)
		require.NoError(t, err)

		class := ty.(*sema.ClassType)
		assert.Equal(t, 3, class.LiteralValue)
		assert.Same(t, u.classes["int"].Definition, class.Definition)
	})

	t.Run("string literal", func(t *testing.T) {
		t.Parallel()

		u := newTestUniverse(t)

		ty, err := u.resolveType(`Literal["on"]`, nil)
		require.NoError(t, err)

		class := ty.(*sema.ClassType)
		assert.Equal(t, "on", class.LiteralValue)
		assert.Same(t, u.classes["str"].Definition, class.Definition)
	})

	t.Run("bool literals", func(t *testing.T) {
		t.Parallel()

		u := newTestUniverse(t)

		trueType, err := u.resolveType("Literal[True]", nil)
		require.NoError(t, err)
		assert.Equal(t, true, trueType.(*sema.ClassType).LiteralValue)

		falseType, err := u.resolveType("Literal[False]", nil)
		require.NoError(t, err)
		assert.Equal(t, false, falseType.(*sema.ClassType).LiteralValue)
	})

	t.Run("invalid literal", func(t *testing.T) {
		t.Parallel()

		u := newTestUniverse(t)

		_, err := u.resolveType("Literal[maybe]", nil)
		require.ErrorContains(t, err, "invalid literal `maybe`")
	})

	t.Run("unknown type", func(t *testing.T) {
		t.Parallel()

		u := newTestUniverse(t)

		_, err := u.resolveType("Missing", nil)
		require.ErrorContains(t, err, "unknown type `Missing`")
	})

	t.Run("unbalanced brackets", func(t *testing.T) {
		t.Parallel()

		u := newTestUniverse(t)

		_, err := u.resolveType("Box[int", nil)
		require.ErrorContains(t, err, "unbalanced brackets")

		_, err = u.resolveType("Box[Pair[int, str]", nil)
		require.ErrorContains(t, err, "invalid type reference")
	})

	t.Run("missing type argument", func(t *testing.T) {
		t.Parallel()

		u := newTestUniverse(t)

		_, err := u.resolveType("Box[]", nil)
		require.ErrorContains(t, err, "missing type argument")
	})
}

func TestRunCheck(t *testing.T) {

	t.Parallel()

	newTestUniverse := func(t *testing.T) *universe {
		u, err := newUniverse([]byte(`
classes:
  - name: HasName
    protocol: true
    bases: [Protocol]
    members:
      - name: name
        method:
          returns: str

  - name: Person
    members:
      - name: name
        method:
          returns: str

  - name: Robot
    members:
      - name: name
        method:
          returns: int

modules:
  - name: person_mod
    members:
      - name: name
        method:
          returns: str
`))
		require.NoError(t, err)
		return u
	}

	t.Run("conforming class", func(t *testing.T) {
		t.Parallel()

		u := newTestUniverse(t)

		outcome, err := u.runCheck(checkSpec{
			Protocol:  "HasName",
			Candidate: "Person",
		})
		require.NoError(t, err)
		assert.True(t, outcome.result)
		assert.True(t, outcome.diag.IsEmpty())
		assert.Equal(t, "Person", outcome.candidateType.String())
	})

	t.Run("non-conforming class has diagnostics", func(t *testing.T) {
		t.Parallel()

		u := newTestUniverse(t)

		outcome, err := u.runCheck(checkSpec{
			Protocol:  "HasName",
			Candidate: "Robot",
		})
		require.NoError(t, err)
		assert.False(t, outcome.result)
		require.False(t, outcome.diag.IsEmpty())
		assert.Contains(t, outcome.diag.String(), "`name`")
	})

	t.Run("module candidate", func(t *testing.T) {
		t.Parallel()

		u := newTestUniverse(t)

		outcome, err := u.runCheck(checkSpec{
			Protocol:  "HasName",
			Candidate: "person_mod",
		})
		require.NoError(t, err)
		assert.True(t, outcome.result)
		assert.Equal(t, `module "person_mod"`, outcome.candidateType.String())
	})

	t.Run("class object candidate", func(t *testing.T) {
		t.Parallel()

		u := newTestUniverse(t)

		outcome, err := u.runCheck(checkSpec{
			Protocol:      "HasName",
			Candidate:     "Person",
			AsClassObject: true,
		})
		require.NoError(t, err)
		assert.Equal(t, "type[Person]", outcome.candidateType.String())
	})

	t.Run("not a protocol", func(t *testing.T) {
		t.Parallel()

		u := newTestUniverse(t)

		_, err := u.runCheck(checkSpec{
			Protocol:  "Person",
			Candidate: "Robot",
		})
		require.ErrorContains(t, err, "`Person` is not a protocol")
	})

	t.Run("unknown candidate", func(t *testing.T) {
		t.Parallel()

		u := newTestUniverse(t)

		_, err := u.runCheck(checkSpec{
			Protocol:  "HasName",
			Candidate: "Missing",
		})
		require.ErrorContains(t, err, "unknown class `Missing`")
	})
}

func TestRunVarianceCheck(t *testing.T) {

	t.Parallel()

	newTestUniverse := func(t *testing.T) *universe {
		u, err := newUniverse([]byte(`
classes:
  - name: Producer
    protocol: true
    typeParameters: [T]
    bases: [Protocol]
    members:
      - name: produce
        method:
          returns: T

  - name: Plain
`))
		require.NoError(t, err)
		return u
	}

	t.Run("narrower result is accepted", func(t *testing.T) {
		t.Parallel()

		u := newTestUniverse(t)

		result, err := u.runVarianceCheck(varianceCheckSpec{
			Source: "Producer[bool]",
			Dest:   "Producer[int]",
		})
		require.NoError(t, err)
		assert.True(t, result)
	})

	t.Run("wider result is rejected", func(t *testing.T) {
		t.Parallel()

		u := newTestUniverse(t)

		result, err := u.runVarianceCheck(varianceCheckSpec{
			Source: "Producer[int]",
			Dest:   "Producer[bool]",
		})
		require.NoError(t, err)
		assert.False(t, result)
	})

	t.Run("not a protocol", func(t *testing.T) {
		t.Parallel()

		u := newTestUniverse(t)

		_, err := u.runVarianceCheck(varianceCheckSpec{
			Source: "Plain",
			Dest:   "Plain",
		})
		require.ErrorContains(t, err, "`Plain` is not a protocol")
	})

	t.Run("different protocols", func(t *testing.T) {
		t.Parallel()

		u := newTestUniverse(t)

		_, err := u.runVarianceCheck(varianceCheckSpec{
			Source: "Plain",
			Dest:   "Producer[int]",
		})
		require.ErrorContains(t, err, "not the same protocol")
	})
}

func TestDefaultUniverse(t *testing.T) {

	t.Parallel()

	u, err := newUniverse(defaultUniverseYAML)
	require.NoError(t, err)

	for _, spec := range u.checks {
		outcome, err := u.runCheck(spec)
		require.NoError(t, err)
		assert.Equal(
			t,
			spec.Expect,
			outcome.result,
			"%s -> %s",
			spec.Candidate,
			spec.Protocol,
		)
	}

	for _, spec := range u.varianceChecks {
		result, err := u.runVarianceCheck(spec)
		require.NoError(t, err)
		assert.Equal(
			t,
			spec.Expect,
			result,
			"%s ~> %s",
			spec.Source,
			spec.Dest,
		)
	}
}
