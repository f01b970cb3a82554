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

// AssignFlags modify how an assignability comparison is performed
type AssignFlags uint

const (
	// AssignFlagsDefault compares with the declared variance
	AssignFlagsDefault AssignFlags = 0

	// AssignFlagEnforceInvariance requires the types to be identical,
	// not merely assignable
	AssignFlagEnforceInvariance AssignFlags = 1 << 0

	// AssignFlagRetainLiterals keeps literal types when solving
	// type variables, instead of widening them to their class
	AssignFlagRetainLiterals AssignFlags = 1 << 1
)

// Evaluator provides the general type operations the protocol checker
// builds on. It is implemented by the type evaluator of the checker;
// tests provide a reduced implementation.
//
// Calls may re-enter the protocol checker, e.g. AssignType on a member
// whose type refers to the protocol currently being checked.
type Evaluator interface {

	// AssignType returns true if the source type is assignable
	// to the destination type.
	// Mismatch details are reported to the given diagnostic addendum,
	// which may be nil.
	// Solutions for in-scope type variables are recorded
	// in the given context, which may be nil.
	AssignType(
		destType Type,
		srcType Type,
		diag *DiagnosticAddendum,
		typeVarContext *TypeVarContext,
		flags AssignFlags,
		recursionDepth int,
	) bool

	// BindFunctionToClassOrObject binds the given callable
	// to the given receiver, e.g. dropping the `self` parameter
	// of a method accessed on an instance.
	// The second return value is false if the callable
	// cannot be bound to the receiver.
	BindFunctionToClassOrObject(
		receiver Type,
		callable Type,
		owner *ClassType,
		selfType Type,
		recursionDepth int,
	) (Type, bool)

	// InferReturnTypeIfNecessary infers the return type
	// of the given callable from its body, if it is not declared
	// and has not been inferred yet
	InferReturnTypeIfNecessary(callable Type)

	// AssignProperty returns true if the source property
	// is assignable to the destination property,
	// i.e. their accessors are compatible
	AssignProperty(
		destProperty *PropertyType,
		srcProperty *PropertyType,
		destClass *ClassType,
		srcClass *ClassType,
		diag *DiagnosticAddendum,
		typeVarContext *TypeVarContext,
		selfTypeVarContext *TypeVarContext,
		recursionDepth int,
	) bool

	// GetterTypeFromProperty returns the return type
	// of the given property's getter.
	// The second return value is false if the property has no getter
	// or the getter's return type cannot be determined.
	GetterTypeFromProperty(
		property *PropertyType,
		inferTypeIfNeeded bool,
	) (Type, bool)

	// VerifyTypeArgumentsAssignable returns true if the type arguments
	// of the source class are assignable to the corresponding
	// type arguments of the destination class,
	// respecting the declared variance of each type parameter
	VerifyTypeArgumentsAssignable(
		destType *ClassType,
		srcType *ClassType,
		diag *DiagnosticAddendum,
		typeVarContext *TypeVarContext,
		flags AssignFlags,
		recursionDepth int,
	) bool

	// SynthesizedRecordBaseClass returns the placeholder class
	// structural record types (TypedDicts) match protocols through.
	// The second return value is false if the placeholder
	// is not available
	SynthesizedRecordBaseClass() (*ClassType, bool)
}
