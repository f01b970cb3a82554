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

// maxProtocolRecursionDepth is the maximum depth of nested protocol
// comparisons. Deeper comparisons optimistically succeed.
const maxProtocolRecursionDepth = 16

const (
	// slotsMemberName is the synthesized member holding
	// a class's slot declarations. It never participates
	// in structural matching.
	slotsMemberName = "__slots__"

	// classGetItemMemberName is the member making a class subscriptable.
	// It only participates in structural matching when the candidate
	// is compared as a class object.
	classGetItemMemberName = "__class_getitem__"
)

// pendingMatch is a (candidate, protocol) pair
// whose comparison is in progress
type pendingMatch struct {
	candidate Type
	protocol  Type
}

// ProtocolChecker checks the structural assignability of types
// to protocol classes.
//
// A ProtocolChecker is not safe for concurrent use:
// it owns the stack of in-progress comparisons
// used to detect self-referential protocols.
type ProtocolChecker struct {
	evaluator      Evaluator
	pendingMatches []pendingMatch
}

func NewProtocolChecker(evaluator Evaluator) *ProtocolChecker {
	return &ProtocolChecker{
		evaluator: evaluator,
	}
}

// PendingMatchCount returns the number of comparisons in progress
func (c *ProtocolChecker) PendingMatchCount() int {
	return len(c.pendingMatches)
}

func (c *ProtocolChecker) isPendingMatch(candidate, protocol Type) bool {
	for _, match := range c.pendingMatches {
		if IsTypeSame(match.candidate, candidate) &&
			IsTypeSame(match.protocol, protocol) {

			return true
		}
	}
	return false
}

func (c *ProtocolChecker) pushPendingMatch(candidate, protocol Type) {
	c.pendingMatches = append(
		c.pendingMatches,
		pendingMatch{
			candidate: candidate,
			protocol:  protocol,
		},
	)
}

func (c *ProtocolChecker) popPendingMatch() {
	c.pendingMatches = c.pendingMatches[:len(c.pendingMatches)-1]
}

// CanAssignClassToProtocol returns true if the given candidate class
// structurally satisfies the given protocol: every protocol member
// must have an assignable counterpart in the candidate.
//
// Mismatch details are reported to the given diagnostic addendum,
// which may be nil.
//
// A comparison nested more than maxProtocolRecursionDepth levels deep,
// or reaching a (candidate, protocol) pair whose comparison
// is already in progress, optimistically succeeds.
func (c *ProtocolChecker) CanAssignClassToProtocol(
	protocol *ClassType,
	candidate *ClassType,
	diag *DiagnosticAddendum,
	typeVarContext *TypeVarContext,
	flags AssignFlags,
	treatCandidateAsClassObject bool,
	recursionDepth int,
) bool {
	if recursionDepth > maxProtocolRecursionDepth {
		return true
	}
	recursionDepth++

	// A protocol may refer to itself through its member types.
	// A pair that is already being compared succeeds optimistically.
	if c.isPendingMatch(candidate, protocol) {
		return true
	}

	c.pushPendingMatch(candidate, protocol)
	// The pop must also happen when a collaborator panics
	defer c.popPendingMatch()

	return c.canAssignClassToProtocolInternal(
		protocol,
		candidate,
		diag,
		typeVarContext,
		flags,
		treatCandidateAsClassObject,
		recursionDepth,
	)
}

func (c *ProtocolChecker) canAssignClassToProtocolInternal(
	protocol *ClassType,
	candidate *ClassType,
	diag *DiagnosticAddendum,
	typeVarContext *TypeVarContext,
	flags AssignFlags,
	treatCandidateAsClassObject bool,
	recursionDepth int,
) bool {

	if flags&AssignFlagEnforceInvariance != 0 {
		// Under invariance the protocol is matched by identity,
		// not structurally
		return IsTypeSame(protocol, candidate)
	}

	// Member comparisons accumulate solutions for the protocol's
	// type parameters against the generic view of the protocol.
	// The solutions are verified against the declared type arguments
	// after the walk.
	genericProtocol := protocol.CloneForSpecialization(nil)
	protocolTypeVarContext := NewTypeVarContext(protocol.Definition.ScopeID)

	selfTypeVarContext := NewTypeVarContext(protocol.Definition.ScopeID)
	PopulateSelfTypeVarContext(selfTypeVarContext, protocol, candidate)

	// Structural record types match through a placeholder class
	// carrying their synthesized fields
	if candidate.IsRecordClass() {
		if placeholder, ok := c.evaluator.SynthesizedRecordBaseClass(); ok {
			candidate = placeholder
		}
	}

	memberAssignFlags := AssignFlagsDefault
	if containsLiteralType(candidate, true) {
		memberAssignFlags = AssignFlagRetainLiterals
	}

	candidateTypeVarContext := BuildTypeVarContextFromSpecializedClass(candidate)

	typesAreConsistent := true

	ForEachProtocolMember(
		protocol,
		func(name string, symbol *Symbol, owner *ClassType) bool {

			if name == slotsMemberName {
				return true
			}
			if name == classGetItemMemberName && !treatCandidateAsClassObject {
				return true
			}

			// Resolve the matching member on the candidate.
			// For a class-object comparison, the metaclass is
			// consulted first.
			isMemberFromMetaclass := false
			var candidateLookup MemberLookup
			var found bool

			metaclass := candidate.Definition.Metaclass
			if treatCandidateAsClassObject && metaclass != nil {
				candidateLookup, found = LookUpClassMember(metaclass, name)
				if found {
					candidateTypeVarContext.AddSolveForScope(metaclass.Definition.ScopeID)
					isMemberFromMetaclass = true
				}
			}

			if !found {
				candidateLookup, found = LookUpClassMember(candidate, name)
			}

			if !found {
				if diag != nil {
					diag.AddMessage(ProtocolMemberMissingMessage{
						Name: name,
						ClosestName: closestMemberName(
							name,
							candidateMemberNames(candidate, treatCandidateAsClassObject),
						),
					})
				}
				typesAreConsistent = false
				return true
			}

			candidateSymbol := candidateLookup.Symbol

			protocolMemberType := symbol.DeclaredType()
			if protocolMemberType != nil {

				// Partially specialize the protocol member's type against
				// its owning ancestor. The protocol's own members are
				// left generic, so member comparisons can solve
				// the protocol's type parameters.
				if !owner.IsSameGenericClass(protocol) {
					protocolMemberType = PartiallySpecializeType(protocolMemberType, owner)
				}

				// Substitute the protocol's Self type variable
				// with the candidate
				protocolMemberType = ApplySolvedTypeVars(protocolMemberType, selfTypeVarContext)

				candidateMemberType := candidateSymbol.EffectiveType()

				// A callable member still awaiting return type inference
				// must be inferred before it can be compared
				if isCallableAwaitingInference(candidateMemberType) {
					c.evaluator.InferReturnTypeIfNecessary(candidateMemberType)
				}

				candidateMemberType = PartiallySpecializeType(
					candidateMemberType,
					candidateLookup.Owner,
				)
				candidateMemberType = ApplySolvedTypeVars(
					candidateMemberType,
					candidateTypeVarContext,
				)

				// Bind callables to the receiver they would be accessed on
				if isCallableType(candidateMemberType) {
					var receiver *ClassType
					var owningClass *ClassType
					var selfType Type

					if isMemberFromMetaclass {
						receiver = candidate
						selfType = candidate
					} else {
						if treatCandidateAsClassObject {
							receiver = candidate
						} else {
							receiver = candidate.CloneAsInstance()
						}
						owningClass = candidateLookup.Owner
					}

					bound, ok := c.evaluator.BindFunctionToClassOrObject(
						receiver,
						candidateMemberType,
						owningClass,
						selfType,
						recursionDepth,
					)
					if ok {
						candidateMemberType = StripParamSpecVariadics(bound)
					}

					if isCallableType(protocolMemberType) {
						if isMemberFromMetaclass {
							owningClass = nil
						} else {
							owningClass = owner
						}
						bound, ok = c.evaluator.BindFunctionToClassOrObject(
							receiver,
							protocolMemberType,
							owningClass,
							selfType,
							recursionDepth,
						)
						if ok {
							protocolMemberType = StripParamSpecVariadics(bound)
						}
					}
				}

				subDiag := diag.CreateAddendum()

				if protocolProperty, ok := protocolMemberType.(*PropertyType); ok {

					candidateProperty, candidateIsProperty := candidateMemberType.(*PropertyType)
					if candidateIsProperty && !treatCandidateAsClassObject {
						if !c.evaluator.AssignProperty(
							protocolProperty,
							candidateProperty,
							owner,
							candidate,
							subDiag.CreateAddendum(),
							protocolTypeVarContext,
							selfTypeVarContext,
							recursionDepth,
						) {
							subDiag.AddMessage(ProtocolMemberTypeMismatchMessage{Name: name})
							typesAreConsistent = false
						}
					} else {
						// Compare the getter's return type directly,
						// i.e. read-only and covariantly
						getterType, ok := c.evaluator.GetterTypeFromProperty(protocolProperty, true)
						if !ok || !c.evaluator.AssignType(
							getterType,
							candidateMemberType,
							subDiag.CreateAddendum(),
							protocolTypeVarContext,
							AssignFlagsDefault,
							recursionDepth,
						) {
							subDiag.AddMessage(ProtocolMemberTypeMismatchMessage{Name: name})
							typesAreConsistent = false
						}
					}
				} else {
					// A member whose primary declaration is a plain,
					// non-final variable is mutable,
					// so it must match invariantly
					memberFlags := memberAssignFlags
					primaryDeclaration, ok := symbol.PrimaryDeclaration()
					if ok &&
						primaryDeclaration.Kind == common.DeclarationKindVariable &&
						!primaryDeclaration.IsFinal {

						memberFlags |= AssignFlagEnforceInvariance
					}

					if !c.evaluator.AssignType(
						protocolMemberType,
						candidateMemberType,
						subDiag.CreateAddendum(),
						protocolTypeVarContext,
						memberFlags,
						recursionDepth,
					) {
						subDiag.AddMessage(ProtocolMemberTypeMismatchMessage{Name: name})
						typesAreConsistent = false
					}
				}

				// Both sides must agree on whether the member is Final
				isProtocolMemberFinal := symbol.IsFinal()
				isCandidateMemberFinal := candidateSymbol.IsFinal()
				if isProtocolMemberFinal != isCandidateMemberFinal {
					if isProtocolMemberFinal {
						subDiag.AddMessage(MemberIsFinalInProtocolMessage{Name: name})
					} else {
						subDiag.AddMessage(MemberIsNotFinalInProtocolMessage{Name: name})
					}
					typesAreConsistent = false
				}
			}

			// A pure class variable of the protocol can only be satisfied
			// by a class-level member of the candidate
			if symbol.IsClassVar && !candidateSymbol.IsClassMember {
				diag.AddMessage(ProtocolMemberClassVarMessage{Name: name})
				typesAreConsistent = false
			}

			return true
		},
	)

	// If the protocol is specialized, the solutions accumulated from
	// the member comparisons must be consistent with the declared
	// type arguments
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

// ForEachProtocolMember iterates the protocol members of the given class:
// for each protocol-marked ancestor, the members of that ancestor's
// own member table, most specific first.
// Each member name is visited at most once; members that are ignored
// for protocol matching are skipped without consuming their name.
// Iteration stops when the given function returns false.
func ForEachProtocolMember(
	protocol *ClassType,
	f func(name string, symbol *Symbol, owner *ClassType) bool,
) {
	checkedNames := map[string]struct{}{}

	for _, ancestor := range protocol.Definition.Ancestors {
		if !ancestor.IsProtocolClass() {
			continue
		}

		for pair := ancestor.Definition.Members.Oldest(); pair != nil; pair = pair.Next() {
			name := pair.Key
			symbol := pair.Value

			if symbol.IsIgnoredForProtocolMatch {
				continue
			}
			if _, ok := checkedNames[name]; ok {
				continue
			}
			// The name counts as checked even if the visit fails,
			// so it is not re-checked through a deeper ancestor
			checkedNames[name] = struct{}{}

			if !f(name, symbol, ancestor) {
				return
			}
		}
	}
}

// ProtocolMemberNames returns the names of all members
// that participate in structurally matching the given protocol
func ProtocolMemberNames(protocol *ClassType) []string {
	var names []string
	ForEachProtocolMember(
		protocol,
		func(name string, _ *Symbol, _ *ClassType) bool {
			names = append(names, name)
			return true
		},
	)
	return names
}

// candidateMemberNames returns the names of all members reachable
// on the given candidate, for suggesting the closest member name
// when a protocol member is missing
func candidateMemberNames(candidate *ClassType, includeMetaclass bool) []string {
	var names []string
	seenNames := map[string]struct{}{}

	collect := func(class *ClassType) {
		for _, ancestor := range class.Definition.Ancestors {
			ancestor.Definition.Members.Foreach(func(name string, _ *Symbol) {
				if _, ok := seenNames[name]; ok {
					return
				}
				seenNames[name] = struct{}{}
				names = append(names, name)
			})
		}
	}

	collect(candidate)
	if includeMetaclass && candidate.Definition.Metaclass != nil {
		collect(candidate.Definition.Metaclass)
	}

	return names
}

func isCallableType(ty Type) bool {
	switch ty.(type) {
	case *FunctionType, *OverloadedFunctionType:
		return true
	}
	return false
}

func isCallableAwaitingInference(ty Type) bool {
	switch ty := ty.(type) {
	case *FunctionType:
		return ty.ReturnType() == nil

	case *OverloadedFunctionType:
		for _, overload := range ty.Overloads {
			if overload.ReturnType() == nil {
				return true
			}
		}
	}
	return false
}
