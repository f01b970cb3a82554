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
	"github.com/pyrite-checker/pyrite/common/orderedmap"
	"github.com/pyrite-checker/pyrite/errors"
)

// typeVarKey identifies a type variable by name and owning scope
type typeVarKey struct {
	name    string
	scopeID TypeVarScopeID
}

type typeVarSolutionsOrderedMap = orderedmap.OrderedMap[typeVarKey, Type]

// TypeVarContext

// TypeVarContext accumulates solutions for type variables
// during an assignability check.
//
// A context only solves type variables belonging to its solve-for scopes;
// type variables of other scopes are left untouched by ApplySolvedTypeVars.
type TypeVarContext struct {
	solveForScopeIDs []TypeVarScopeID
	solutions        typeVarSolutionsOrderedMap
}

// NewTypeVarContext returns a new context solving for the given scopes
func NewTypeVarContext(scopeIDs ...TypeVarScopeID) *TypeVarContext {
	return &TypeVarContext{
		solveForScopeIDs: scopeIDs,
	}
}

// AddSolveForScope adds the given scope to the scopes
// this context solves type variables for
func (c *TypeVarContext) AddSolveForScope(scopeID TypeVarScopeID) {
	if c.HasSolveForScope(scopeID) {
		return
	}
	c.solveForScopeIDs = append(c.solveForScopeIDs, scopeID)
}

// HasSolveForScope returns true if the context solves
// type variables of the given scope
func (c *TypeVarContext) HasSolveForScope(scopeID TypeVarScopeID) bool {
	if c == nil {
		return false
	}
	for _, solveForScopeID := range c.solveForScopeIDs {
		if solveForScopeID == scopeID {
			return true
		}
	}
	return false
}

// SetTypeVarType records the solution for the given type variable
func (c *TypeVarContext) SetTypeVarType(typeVar *TypeVarType, ty Type) {
	key := typeVarKey{
		name:    typeVar.Name,
		scopeID: typeVar.ScopeID,
	}
	c.solutions.Set(key, ty)
}

// TypeVarType returns the recorded solution for the given type variable
func (c *TypeVarContext) TypeVarType(typeVar *TypeVarType) (Type, bool) {
	if c == nil {
		return nil, false
	}
	key := typeVarKey{
		name:    typeVar.Name,
		scopeID: typeVar.ScopeID,
	}
	return c.solutions.Get(key)
}

// SolvedTypeVarCount returns the number of type variables
// a solution was recorded for
func (c *TypeVarContext) SolvedTypeVarCount() int {
	if c == nil {
		return 0
	}
	return c.solutions.Len()
}

// ApplySolvedTypeVars substitutes all type variables in the given type
// that are solved in the given context.
// Type variables outside the context's solve-for scopes,
// and unsolved type variables, are left as-is.
// If nothing is substituted, the given type is returned unchanged.
func ApplySolvedTypeVars(ty Type, typeVarContext *TypeVarContext) Type {
	if ty == nil || typeVarContext == nil {
		return ty
	}

	switch ty := ty.(type) {
	case *TypeVarType:
		if !typeVarContext.HasSolveForScope(ty.ScopeID) {
			return ty
		}
		solved, ok := typeVarContext.TypeVarType(ty)
		if !ok {
			return ty
		}
		return solved

	case *ClassType:
		typeArguments := ty.TypeArguments
		if typeArguments == nil {
			typeParameters := ty.Definition.TypeParameters
			if len(typeParameters) == 0 {
				return ty
			}
			// An unspecialized generic class is treated as if it were
			// specialized with its own type parameters,
			// so solving them specializes the class
			typeArguments = make([]Type, len(typeParameters))
			for i, typeParameter := range typeParameters {
				typeArguments[i] = typeParameter
			}
		}
		newTypeArguments := make([]Type, len(typeArguments))
		changed := false
		for i, typeArgument := range typeArguments {
			newTypeArguments[i] = ApplySolvedTypeVars(typeArgument, typeVarContext)
			if newTypeArguments[i] != typeArgument {
				changed = true
			}
		}
		if !changed {
			return ty
		}
		return ty.CloneForSpecialization(newTypeArguments)

	case *FunctionType:
		return applySolvedTypeVarsToFunction(ty, typeVarContext)

	case *OverloadedFunctionType:
		overloads := make([]*FunctionType, len(ty.Overloads))
		changed := false
		for i, overload := range ty.Overloads {
			overloads[i] = applySolvedTypeVarsToFunction(overload, typeVarContext)
			if overloads[i] != overload {
				changed = true
			}
		}
		if !changed {
			return ty
		}
		return &OverloadedFunctionType{
			Overloads: overloads,
		}

	case *PropertyType:
		getter := applySolvedTypeVarsToFunction(ty.Getter, typeVarContext)
		setter := applySolvedTypeVarsToFunction(ty.Setter, typeVarContext)
		if getter == ty.Getter && setter == ty.Setter {
			return ty
		}
		return &PropertyType{
			Getter: getter,
			Setter: setter,
		}

	case *ModuleType, *UnknownType:
		return ty
	}

	panic(errors.NewUnreachableError())
}

func applySolvedTypeVarsToFunction(
	functionType *FunctionType,
	typeVarContext *TypeVarContext,
) *FunctionType {
	if functionType == nil {
		return nil
	}

	changed := false

	var parameters []Parameter
	for i, parameter := range functionType.Parameters {
		parameterType := ApplySolvedTypeVars(parameter.Type, typeVarContext)
		if parameterType == parameter.Type {
			continue
		}
		if parameters == nil {
			parameters = make([]Parameter, len(functionType.Parameters))
			copy(parameters, functionType.Parameters)
		}
		parameters[i] = Parameter{
			Kind: parameter.Kind,
			Name: parameter.Name,
			Type: parameterType,
		}
		changed = true
	}

	declaredReturnType := ApplySolvedTypeVars(functionType.DeclaredReturnType, typeVarContext)
	if declaredReturnType != functionType.DeclaredReturnType {
		changed = true
	}
	inferredReturnType := ApplySolvedTypeVars(functionType.inferredReturnType, typeVarContext)
	if inferredReturnType != functionType.inferredReturnType {
		changed = true
	}

	if !changed {
		return functionType
	}

	result := *functionType
	if parameters != nil {
		result.Parameters = parameters
	}
	result.DeclaredReturnType = declaredReturnType
	result.inferredReturnType = inferredReturnType
	return &result
}

// BuildTypeVarContextFromSpecializedClass returns a context
// scoped to the given class, with each of the class's type parameters
// solved to the corresponding type argument.
// If the class is unspecialized, no solutions are recorded.
func BuildTypeVarContextFromSpecializedClass(class *ClassType) *TypeVarContext {
	typeVarContext := NewTypeVarContext(class.Definition.ScopeID)
	if class.TypeArguments != nil {
		for i, typeParameter := range class.Definition.TypeParameters {
			if i >= len(class.TypeArguments) {
				break
			}
			typeVarContext.SetTypeVarType(typeParameter, class.TypeArguments[i])
		}
	}
	return typeVarContext
}

// PopulateSelfTypeVarContext solves the synthesized `Self` type variable
// of the given context class to an instance of the given candidate
func PopulateSelfTypeVarContext(
	typeVarContext *TypeVarContext,
	contextClass *ClassType,
	candidate *ClassType,
) {
	typeVarContext.SetTypeVarType(
		SynthesizedSelfTypeVar(contextClass),
		candidate.CloneAsInstance(),
	)
}

// PartiallySpecializeType substitutes the type variables
// of the given context class in the given type.
// If the context class is unspecialized there is nothing to substitute,
// and the type is returned unchanged.
func PartiallySpecializeType(ty Type, contextClass *ClassType) Type {
	if contextClass.TypeArguments == nil {
		return ty
	}
	return ApplySolvedTypeVars(
		ty,
		BuildTypeVarContextFromSpecializedClass(contextClass),
	)
}

// specializeForBaseClass returns the given base class
// with its type arguments specialized using the type arguments
// of the given class, e.g. the base `Reader[T]` of `Buffer[T]`
// becomes `Reader[int]` for `Buffer[int]`.
func specializeForBaseClass(class *ClassType, base *ClassType) *ClassType {
	if len(base.Definition.TypeParameters) == 0 {
		return base
	}
	specialized := ApplySolvedTypeVars(
		base,
		BuildTypeVarContextFromSpecializedClass(class),
	)
	return specialized.(*ClassType)
}

// containsLiteralType returns true if the given type is a literal,
// or, if includeTypeArguments is true, has a type argument
// that contains a literal
func containsLiteralType(ty Type, includeTypeArguments bool) bool {
	class, ok := ty.(*ClassType)
	if !ok {
		return false
	}
	if class.LiteralValue != nil {
		return true
	}
	if includeTypeArguments {
		for _, typeArgument := range class.TypeArguments {
			if containsLiteralType(typeArgument, includeTypeArguments) {
				return true
			}
		}
	}
	return false
}
