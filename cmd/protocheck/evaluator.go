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
	"github.com/pyrite-checker/pyrite/sema"
)

// basicEvaluator is a structural evaluator over declared types only:
// nominal assignability through ancestor chains, protocol re-entry,
// function and property compatibility, and type variable solving.
// It performs no inference, so unannotated declarations stay untyped
type basicEvaluator struct {
	checker           *sema.ProtocolChecker
	recordPlaceholder *sema.ClassType
}

var _ sema.Evaluator = &basicEvaluator{}

func (e *basicEvaluator) AssignType(
	destType sema.Type,
	srcType sema.Type,
	diag *sema.DiagnosticAddendum,
	typeVarContext *sema.TypeVarContext,
	flags sema.AssignFlags,
	recursionDepth int,
) bool {
	if _, ok := destType.(*sema.UnknownType); ok {
		return true
	}
	if _, ok := srcType.(*sema.UnknownType); ok {
		return true
	}

	if destTypeVar, ok := destType.(*sema.TypeVarType); ok {
		return e.solveTypeVar(destTypeVar, srcType, typeVarContext, flags)
	}

	if flags&sema.AssignFlagEnforceInvariance != 0 {
		return sema.IsTypeSame(destType, srcType)
	}

	switch destType := destType.(type) {
	case *sema.ClassType:
		srcClass, ok := srcType.(*sema.ClassType)
		if !ok {
			return false
		}
		if destType.IsProtocolClass() {
			return e.checker.CanAssignClassToProtocol(
				destType.CloneAsClassObject(),
				srcClass.CloneAsClassObject(),
				diag,
				typeVarContext,
				flags,
				false,
				recursionDepth,
			)
		}
		return e.assignClass(destType, srcClass, typeVarContext, flags, recursionDepth)

	case *sema.FunctionType:
		if srcOverloaded, ok := srcType.(*sema.OverloadedFunctionType); ok {
			for _, overload := range srcOverloaded.Overloads {
				if e.AssignType(destType, overload, diag, typeVarContext, flags, recursionDepth) {
					return true
				}
			}
			return false
		}
		srcFunction, ok := srcType.(*sema.FunctionType)
		if !ok {
			return false
		}
		return e.assignFunction(destType, srcFunction, diag, typeVarContext, flags, recursionDepth)

	case *sema.OverloadedFunctionType:
		for _, overload := range destType.Overloads {
			if !e.AssignType(overload, srcType, diag, typeVarContext, flags, recursionDepth) {
				return false
			}
		}
		return true

	default:
		return sema.IsTypeSame(destType, srcType)
	}
}

func (e *basicEvaluator) solveTypeVar(
	destTypeVar *sema.TypeVarType,
	srcType sema.Type,
	typeVarContext *sema.TypeVarContext,
	flags sema.AssignFlags,
) bool {
	if !typeVarContext.HasSolveForScope(destTypeVar.ScopeID) {
		return sema.IsTypeSame(destTypeVar, srcType)
	}

	solution := srcType
	if srcClass, ok := srcType.(*sema.ClassType); ok &&
		srcClass.LiteralValue != nil &&
		flags&sema.AssignFlagRetainLiterals == 0 {

		solution = srcClass.CloneWithLiteral(nil)
	}

	if existing, ok := typeVarContext.TypeVarType(destTypeVar); ok {
		return sema.IsTypeSame(existing, solution)
	}
	typeVarContext.SetTypeVarType(destTypeVar, solution)
	return true
}

func (e *basicEvaluator) assignClass(
	destClass *sema.ClassType,
	srcClass *sema.ClassType,
	typeVarContext *sema.TypeVarContext,
	flags sema.AssignFlags,
	recursionDepth int,
) bool {
	if destClass.IsInstance() != srcClass.IsInstance() {
		return false
	}

	if destClass.LiteralValue != nil &&
		destClass.LiteralValue != srcClass.LiteralValue {

		return false
	}

	for _, ancestor := range srcClass.Definition.Ancestors {
		if ancestor.Definition != destClass.Definition {
			continue
		}

		srcAsDest := ancestor
		if ancestor.Definition == srcClass.Definition {
			srcAsDest = srcClass
		} else if len(ancestor.Definition.TypeParameters) > 0 {
			specialized := sema.ApplySolvedTypeVars(
				ancestor,
				sema.BuildTypeVarContextFromSpecializedClass(srcClass),
			)
			srcAsDest = specialized.(*sema.ClassType)
		}

		destArguments := destClass.TypeArguments
		srcArguments := srcAsDest.TypeArguments
		if destArguments == nil || srcArguments == nil {
			return true
		}
		if len(destArguments) != len(srcArguments) {
			return false
		}
		for i, destArgument := range destArguments {
			if !e.AssignType(
				destArgument,
				srcArguments[i],
				nil,
				typeVarContext,
				flags,
				recursionDepth,
			) {
				return false
			}
		}
		return true
	}

	return false
}

func (e *basicEvaluator) assignFunction(
	destFunction *sema.FunctionType,
	srcFunction *sema.FunctionType,
	diag *sema.DiagnosticAddendum,
	typeVarContext *sema.TypeVarContext,
	flags sema.AssignFlags,
	recursionDepth int,
) bool {
	if len(destFunction.Parameters) != len(srcFunction.Parameters) {
		return false
	}
	for i, destParameter := range destFunction.Parameters {
		srcParameter := srcFunction.Parameters[i]
		if destParameter.Kind != srcParameter.Kind {
			return false
		}
		if !e.AssignType(
			destParameter.Type,
			srcParameter.Type,
			nil,
			typeVarContext,
			flags|sema.AssignFlagEnforceInvariance,
			recursionDepth,
		) {
			return false
		}
	}

	destReturnType := destFunction.ReturnType()
	srcReturnType := srcFunction.ReturnType()
	if destReturnType == nil || srcReturnType == nil {
		return true
	}
	return e.AssignType(
		destReturnType,
		srcReturnType,
		diag,
		typeVarContext,
		flags,
		recursionDepth,
	)
}

func (e *basicEvaluator) BindFunctionToClassOrObject(
	receiver sema.Type,
	callable sema.Type,
	owner *sema.ClassType,
	selfType sema.Type,
	recursionDepth int,
) (sema.Type, bool) {
	switch callable := callable.(type) {
	case *sema.FunctionType:
		return bindMethod(callable)

	case *sema.OverloadedFunctionType:
		overloads := make([]*sema.FunctionType, 0, len(callable.Overloads))
		for _, overload := range callable.Overloads {
			bound, ok := bindMethod(overload)
			if !ok {
				return nil, false
			}
			overloads = append(overloads, bound.(*sema.FunctionType))
		}
		return &sema.OverloadedFunctionType{
			Overloads: overloads,
		}, true
	}

	return nil, false
}

// bindMethod drops the receiver parameter,
// like accessing a method on an instance does
func bindMethod(functionType *sema.FunctionType) (sema.Type, bool) {
	if functionType.IsStaticMethod {
		return functionType, true
	}
	if len(functionType.Parameters) == 0 {
		return nil, false
	}
	bound := *functionType
	bound.Parameters = functionType.Parameters[1:]
	return &bound, true
}

// InferReturnTypeIfNecessary is a no-op:
// the universe declares all types explicitly
func (e *basicEvaluator) InferReturnTypeIfNecessary(callable sema.Type) {
}

func (e *basicEvaluator) AssignProperty(
	destProperty *sema.PropertyType,
	srcProperty *sema.PropertyType,
	destClass *sema.ClassType,
	srcClass *sema.ClassType,
	diag *sema.DiagnosticAddendum,
	typeVarContext *sema.TypeVarContext,
	selfTypeVarContext *sema.TypeVarContext,
	recursionDepth int,
) bool {
	destGetterType, ok := e.GetterTypeFromProperty(destProperty, true)
	if !ok {
		return false
	}
	srcGetterType, ok := e.GetterTypeFromProperty(srcProperty, true)
	if !ok {
		return false
	}

	destGetterType = sema.ApplySolvedTypeVars(destGetterType, selfTypeVarContext)

	if !e.AssignType(
		destGetterType,
		srcGetterType,
		diag,
		typeVarContext,
		sema.AssignFlagsDefault,
		recursionDepth,
	) {
		return false
	}

	// A writable destination property requires a writable source property
	if destProperty.Setter != nil && srcProperty.Setter == nil {
		return false
	}
	return true
}

func (e *basicEvaluator) GetterTypeFromProperty(
	property *sema.PropertyType,
	inferTypeIfNeeded bool,
) (sema.Type, bool) {
	getter := property.Getter
	if getter == nil {
		return nil, false
	}
	returnType := getter.ReturnType()
	if returnType == nil {
		return nil, false
	}
	return returnType, true
}

func (e *basicEvaluator) VerifyTypeArgumentsAssignable(
	destType *sema.ClassType,
	srcType *sema.ClassType,
	diag *sema.DiagnosticAddendum,
	typeVarContext *sema.TypeVarContext,
	flags sema.AssignFlags,
	recursionDepth int,
) bool {
	destArguments := destType.TypeArguments
	srcArguments := srcType.TypeArguments
	if srcArguments == nil {
		typeParameters := srcType.Definition.TypeParameters
		srcArguments = make([]sema.Type, len(typeParameters))
		for i, typeParameter := range typeParameters {
			srcArguments[i] = typeParameter
		}
	}

	if len(destArguments) != len(srcArguments) {
		return false
	}
	for i, destArgument := range destArguments {
		srcArgument := srcArguments[i]
		if _, ok := srcArgument.(*sema.TypeVarType); ok {
			// An unsolved type parameter imposes no constraint
			continue
		}
		if !e.AssignType(
			destArgument,
			srcArgument,
			diag,
			typeVarContext,
			flags,
			recursionDepth,
		) {
			return false
		}
	}
	return true
}

func (e *basicEvaluator) SynthesizedRecordBaseClass() (*sema.ClassType, bool) {
	if e.recordPlaceholder == nil {
		return nil, false
	}
	return e.recordPlaceholder, true
}
