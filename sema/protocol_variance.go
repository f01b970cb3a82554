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
)

// CanAssignProtocolClassToSelf returns true if the first specialization
// of a protocol accepts the second specialization of the same protocol,
// member by member. It is used to validate the declared variance
// of a protocol's type parameters.
//
// Both arguments must share the same protocol-marked class definition.
//
// Members are compared without diagnostics: mutable members
// (plain non-final variables) must match invariantly,
// property members through property assignability,
// and everything else covariantly.
// The same check is repeated for every generic protocol base class,
// specialized for each side.
func (c *ProtocolChecker) CanAssignProtocolClassToSelf(
	protocolA *ClassType,
	protocolB *ClassType,
	recursionDepth int,
) bool {
	if recursionDepth > maxProtocolRecursionDepth {
		return true
	}
	recursionDepth++

	typeVarContext := NewTypeVarContext(protocolA.Definition.ScopeID)

	isAssignable := true

	protocolA.Definition.Members.Foreach(func(name string, symbol *Symbol) {
		if !isAssignable ||
			!symbol.IsClassMember ||
			symbol.IsIgnoredForProtocolMatch {

			return
		}

		declaredType := symbol.DeclaredType()
		if declaredType == nil {
			return
		}

		// The same definition has the same member tables,
		// so the lookup cannot fail
		lookup, ok := LookUpClassMember(protocolB, name)
		if !ok {
			isAssignable = false
			return
		}

		destMemberType := PartiallySpecializeType(declaredType, protocolA)
		srcMemberType := PartiallySpecializeType(
			lookup.Symbol.EffectiveType(),
			lookup.Owner,
		)

		destProperty, destIsProperty := destMemberType.(*PropertyType)
		srcProperty, srcIsProperty := srcMemberType.(*PropertyType)

		if destIsProperty && srcIsProperty {
			if !c.evaluator.AssignProperty(
				destProperty,
				srcProperty,
				protocolA,
				protocolB,
				nil,
				nil,
				nil,
				recursionDepth,
			) {
				isAssignable = false
			}
			return
		}

		assignFlags := AssignFlagsDefault
		primaryDeclaration, ok := symbol.PrimaryDeclaration()
		if ok &&
			primaryDeclaration.Kind == common.DeclarationKindVariable &&
			!primaryDeclaration.IsFinal {

			assignFlags |= AssignFlagEnforceInvariance
		}

		if !c.evaluator.AssignType(
			destMemberType,
			srcMemberType,
			nil,
			typeVarContext,
			assignFlags,
			recursionDepth,
		) {
			isAssignable = false
		}
	})

	if isAssignable {
		// Repeat the check for every generic protocol base class,
		// specialized for each side, excluding the universal roots
		for _, base := range protocolA.Definition.BaseClasses {
			if !base.IsProtocolClass() ||
				len(base.Definition.TypeParameters) == 0 ||
				base.IsBuiltIn("object") ||
				base.IsBuiltIn("Protocol") ||
				base.IsBuiltIn("Generic") {

				continue
			}

			specializedBaseA := specializeForBaseClass(protocolA, base)
			specializedBaseB := specializeForBaseClass(protocolB, base)

			if !c.CanAssignProtocolClassToSelf(
				specializedBaseA,
				specializedBaseB,
				recursionDepth,
			) {
				isAssignable = false
			}
		}
	}

	return isAssignable
}
