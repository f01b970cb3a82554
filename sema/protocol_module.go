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

// CanAssignModuleToProtocol returns true if the given module
// structurally satisfies the given protocol: every protocol member
// must have an assignable counterpart in the module's symbol table.
//
// Compared to a class candidate, a module has no metaclass,
// no Self type, no class variables, and no mutable-member variance
// distinction: all members are compared with default flags.
//
// Mismatch details are reported to the given diagnostic addendum,
// which may be nil.
func (c *ProtocolChecker) CanAssignModuleToProtocol(
	protocol *ClassType,
	module *ModuleType,
	diag *DiagnosticAddendum,
	typeVarContext *TypeVarContext,
	flags AssignFlags,
	recursionDepth int,
) bool {
	if recursionDepth > maxProtocolRecursionDepth {
		return true
	}
	recursionDepth++

	if c.isPendingMatch(module, protocol) {
		return true
	}

	c.pushPendingMatch(module, protocol)
	defer c.popPendingMatch()

	return c.canAssignModuleToProtocolInternal(
		protocol,
		module,
		diag,
		typeVarContext,
		flags,
		recursionDepth,
	)
}

func (c *ProtocolChecker) canAssignModuleToProtocolInternal(
	protocol *ClassType,
	module *ModuleType,
	diag *DiagnosticAddendum,
	typeVarContext *TypeVarContext,
	flags AssignFlags,
	recursionDepth int,
) bool {

	genericProtocol := protocol.CloneForSpecialization(nil)
	protocolTypeVarContext := NewTypeVarContext(protocol.Definition.ScopeID)

	typesAreConsistent := true

	ForEachProtocolMember(
		protocol,
		func(name string, symbol *Symbol, owner *ClassType) bool {

			if name == slotsMemberName || name == classGetItemMemberName {
				return true
			}

			moduleSymbol, found := module.Members.Get(name)
			if !found {
				if diag != nil {
					diag.AddMessage(ProtocolMemberMissingMessage{
						Name: name,
						ClosestName: closestMemberName(
							name,
							moduleMemberNames(module),
						),
					})
				}
				typesAreConsistent = false
				return true
			}

			protocolMemberType := symbol.DeclaredType()
			if protocolMemberType == nil {
				return true
			}

			if !owner.IsSameGenericClass(protocol) {
				protocolMemberType = PartiallySpecializeType(protocolMemberType, owner)
			}

			moduleMemberType := moduleSymbol.EffectiveType()

			if isCallableAwaitingInference(moduleMemberType) {
				c.evaluator.InferReturnTypeIfNecessary(moduleMemberType)
			}

			// Module-level functions have no receiver. Only the protocol
			// member is bound, to an instance of the protocol itself.
			if isCallableType(moduleMemberType) && isCallableType(protocolMemberType) {
				bound, ok := c.evaluator.BindFunctionToClassOrObject(
					protocol.CloneAsInstance(),
					protocolMemberType,
					protocol,
					nil,
					recursionDepth,
				)
				if ok {
					protocolMemberType = bound
				}
			}

			subDiag := diag.CreateAddendum()

			if !c.evaluator.AssignType(
				protocolMemberType,
				moduleMemberType,
				subDiag.CreateAddendum(),
				protocolTypeVarContext,
				AssignFlagsDefault,
				recursionDepth,
			) {
				subDiag.AddMessage(ProtocolMemberTypeMismatchMessage{Name: name})
				typesAreConsistent = false
			}

			return true
		},
	)

	if typesAreConsistent &&
		len(protocol.Definition.TypeParameters) > 0 &&
		protocol.TypeArguments != nil {

		specializedProtocol := ApplySolvedTypeVars(
			genericProtocol,
			protocolTypeVarContext,
		).(*ClassType)

		if !c.evaluator.VerifyTypeArgumentsAssignable(
			protocol,
			specializedProtocol,
			diag,
			typeVarContext,
			flags,
			recursionDepth,
		) {
			typesAreConsistent = false
		}
	}

	return typesAreConsistent
}

// moduleMemberNames returns the names in the module's symbol table,
// for suggesting the closest member name when a protocol member
// is missing
func moduleMemberNames(module *ModuleType) []string {
	names := make([]string, 0, module.Members.Len())
	module.Members.Foreach(func(name string, _ *Symbol) {
		names = append(names, name)
	})
	return names
}
