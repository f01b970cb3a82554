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
	"fmt"
	"strings"

	"github.com/pyrite-checker/pyrite/common"
	"github.com/pyrite-checker/pyrite/errors"
)

// Type is the closed sum of all types the checker reasons about.
// All implementations live in this file; code switching over a Type
// is expected to handle every variant and treat any other value
// as unreachable.
type Type interface {
	isType()
	String() string
	Equal(other Type) bool
}

// IsTypeSame returns true if the two types are identical,
// i.e. the exact same type, not merely mutually assignable.
//
// For classes, identity includes the view (class object vs. instance),
// the literal value, and the type arguments.
func IsTypeSame(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

// TypeVarScopeID identifies the entity (class, function, or module)
// that owns a set of type variables
type TypeVarScopeID string

// ClassDefinition

// ClassDefinition is the declaration-side information of a class,
// shared by all views and specializations of it.
//
// Two ClassType values denote the same class exactly when they point
// to the same ClassDefinition.
type ClassDefinition struct {
	Name       string
	ModuleName string
	ScopeID    TypeVarScopeID

	// IsProtocol indicates the class was declared with a Protocol base,
	// i.e. it is matched structurally instead of nominally
	IsProtocol bool

	// IsRecord indicates the class is a structural record
	// whose fields are synthesized from its declaration (a TypedDict)
	IsRecord bool

	// IsBuiltIn indicates the class is provided by the type stubs
	// of the standard library, e.g. `object` or `Protocol`
	IsBuiltIn bool

	// Members is the class's own (non-inherited) member table,
	// in declaration order
	Members *StringSymbolOrderedMap

	TypeParameters []*TypeVarType

	// BaseClasses are the direct base classes, in declaration order,
	// possibly specialized, e.g. `Sized[int]`
	BaseClasses []*ClassType

	// Ancestors is the linearized ancestor chain (the MRO),
	// starting with the class itself. Entries may be specialized.
	//
	// The linearization is normally computed by the binder.
	// AddBaseClass maintains a simple merge that is sufficient for
	// flat hierarchies; callers with an exact linearization may
	// assign Ancestors directly.
	Ancestors []*ClassType

	// Metaclass is the effective metaclass, if any
	Metaclass *ClassType
}

// AddMember adds the given symbol to the class's own member table
func (d *ClassDefinition) AddMember(symbol *Symbol) {
	d.Members.Set(symbol.Name, symbol)
}

// ClassType

// ClassType is a view of a class: either the class object itself,
// or an instance of the class, optionally specialized with type
// arguments, and optionally narrowed to a literal value.
type ClassType struct {
	Definition *ClassDefinition

	// TypeArguments specialize the definition's type parameters.
	// nil means the class is unspecialized (generic)
	TypeArguments []Type

	// LiteralValue is the literal the instance is narrowed to, if any.
	// Values must be comparable
	LiteralValue any

	isInstance bool
}

var _ Type = &ClassType{}

// NewClass returns the class-object view of a new, unspecialized class
func NewClass(moduleName string, name string, typeParameters ...*TypeVarType) *ClassType {
	definition := &ClassDefinition{
		Name:           name,
		ModuleName:     moduleName,
		ScopeID:        TypeVarScopeID(moduleName + "." + name),
		Members:        &StringSymbolOrderedMap{},
		TypeParameters: typeParameters,
	}
	class := &ClassType{
		Definition: definition,
	}
	definition.Ancestors = []*ClassType{class}
	return class
}

// NewProtocol returns the class-object view of a new protocol class
func NewProtocol(moduleName string, name string, typeParameters ...*TypeVarType) *ClassType {
	class := NewClass(moduleName, name, typeParameters...)
	class.Definition.IsProtocol = true
	return class
}

// AddBaseClass appends the given (possibly specialized) class
// to the direct base classes, and merges its ancestors into the
// linearized ancestor chain
func (t *ClassType) AddBaseClass(base *ClassType) {
	definition := t.Definition
	definition.BaseClasses = append(definition.BaseClasses, base)

	for _, ancestor := range base.Definition.Ancestors {
		if ancestor.Definition == base.Definition {
			// Use the base as passed, so its type arguments are kept
			ancestor = base
		}
		alreadyPresent := false
		for _, existing := range definition.Ancestors {
			if existing.Definition == ancestor.Definition {
				alreadyPresent = true
				break
			}
		}
		if !alreadyPresent {
			definition.Ancestors = append(definition.Ancestors, ancestor)
		}
	}
}

func (*ClassType) isType() {}

func (t *ClassType) String() string {
	return t.string(t.Definition.Name)
}

// QualifiedString returns the representation of the type
// with the class name qualified by its module name
func (t *ClassType) QualifiedString() string {
	name := t.Definition.Name
	if t.Definition.ModuleName != "" {
		name = t.Definition.ModuleName + "." + name
	}
	return t.string(name)
}

func (t *ClassType) string(name string) string {
	var sb strings.Builder
	sb.WriteString(name)
	if t.TypeArguments != nil {
		sb.WriteByte('[')
		for i, typeArgument := range t.TypeArguments {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(typeArgument.String())
		}
		sb.WriteByte(']')
	}
	result := sb.String()
	if t.LiteralValue != nil {
		result = fmt.Sprintf("Literal[%s]", literalValueString(t.LiteralValue))
	}
	if !t.isInstance {
		result = fmt.Sprintf("type[%s]", result)
	}
	return result
}

func literalValueString(value any) string {
	switch value := value.(type) {
	case string:
		return fmt.Sprintf("%q", value)
	case bool:
		if value {
			return "True"
		}
		return "False"
	default:
		return fmt.Sprint(value)
	}
}

func (t *ClassType) Equal(other Type) bool {
	otherClass, ok := other.(*ClassType)
	if !ok {
		return false
	}

	if otherClass.Definition != t.Definition ||
		otherClass.isInstance != t.isInstance ||
		otherClass.LiteralValue != t.LiteralValue {

		return false
	}

	if len(otherClass.TypeArguments) != len(t.TypeArguments) {
		return false
	}
	for i, typeArgument := range t.TypeArguments {
		if !IsTypeSame(typeArgument, otherClass.TypeArguments[i]) {
			return false
		}
	}

	return true
}

// IsInstance returns true if this is the instance view of the class,
// and false if it is the class-object view
func (t *ClassType) IsInstance() bool {
	return t.isInstance
}

// IsProtocolClass returns true if the class is matched structurally
func (t *ClassType) IsProtocolClass() bool {
	return t.Definition.IsProtocol
}

// IsRecordClass returns true if the class is a structural record
// with synthesized fields
func (t *ClassType) IsRecordClass() bool {
	return t.Definition.IsRecord
}

// IsBuiltIn returns true if the class is the built-in class
// with the given name
func (t *ClassType) IsBuiltIn(name string) bool {
	return t.Definition.IsBuiltIn &&
		t.Definition.Name == name
}

// IsSameGenericClass returns true if the two class types share
// the same definition, ignoring views, specialization, and literals
func (t *ClassType) IsSameGenericClass(other *ClassType) bool {
	return t.Definition == other.Definition
}

// IsUnspecialized returns true if the class has type parameters
// but carries no type arguments
func (t *ClassType) IsUnspecialized() bool {
	return len(t.Definition.TypeParameters) > 0 &&
		t.TypeArguments == nil
}

// CloneAsInstance returns the instance view of this class type
func (t *ClassType) CloneAsInstance() *ClassType {
	if t.isInstance {
		return t
	}
	clone := *t
	clone.isInstance = true
	return &clone
}

// CloneAsClassObject returns the class-object view of this class type
func (t *ClassType) CloneAsClassObject() *ClassType {
	if !t.isInstance {
		return t
	}
	clone := *t
	clone.isInstance = false
	clone.LiteralValue = nil
	return &clone
}

// CloneForSpecialization returns a copy of this class type
// with the given type arguments.
// Passing nil strips the type arguments, i.e. produces the generic view
func (t *ClassType) CloneForSpecialization(typeArguments []Type) *ClassType {
	clone := *t
	clone.TypeArguments = typeArguments
	return &clone
}

// CloneWithLiteral returns a copy of this class type
// narrowed to the given literal value
func (t *ClassType) CloneWithLiteral(value any) *ClassType {
	clone := *t
	clone.LiteralValue = value
	return &clone
}

// ModuleType

// ModuleType is the type of a module object
type ModuleType struct {
	Name string

	// Members is the module's symbol table, in declaration order
	Members *StringSymbolOrderedMap
}

var _ Type = &ModuleType{}

func NewModule(name string) *ModuleType {
	return &ModuleType{
		Name:    name,
		Members: &StringSymbolOrderedMap{},
	}
}

// AddMember adds the given symbol to the module's symbol table
func (t *ModuleType) AddMember(symbol *Symbol) {
	t.Members.Set(symbol.Name, symbol)
}

func (*ModuleType) isType() {}

func (t *ModuleType) String() string {
	return fmt.Sprintf("module %q", t.Name)
}

func (t *ModuleType) Equal(other Type) bool {
	otherModule, ok := other.(*ModuleType)
	if !ok {
		return false
	}
	return otherModule.Name == t.Name
}

// ParameterKind

// ParameterKind is the kind of a function parameter
type ParameterKind uint

const (
	// ParameterKindPositional is a plain parameter
	ParameterKindPositional ParameterKind = iota
	// ParameterKindVariadicArgs is an `*args` parameter
	ParameterKindVariadicArgs
	// ParameterKindVariadicKwargs is a `**kwargs` parameter
	ParameterKindVariadicKwargs
	// ParameterKindParamSpecArgs is an `*args: P.args` parameter,
	// where P is a parameter specification
	ParameterKindParamSpecArgs
	// ParameterKindParamSpecKwargs is a `**kwargs: P.kwargs` parameter,
	// where P is a parameter specification
	ParameterKindParamSpecKwargs
)

func (k ParameterKind) String() string {
	switch k {
	case ParameterKindPositional:
		return "positional"
	case ParameterKindVariadicArgs:
		return "*args"
	case ParameterKindVariadicKwargs:
		return "**kwargs"
	case ParameterKindParamSpecArgs:
		return "*args: P.args"
	case ParameterKindParamSpecKwargs:
		return "**kwargs: P.kwargs"
	}

	panic(errors.NewUnreachableError())
}

// IsParamSpec returns true if the parameter kind originates
// from a parameter specification
func (k ParameterKind) IsParamSpec() bool {
	switch k {
	case ParameterKindParamSpecArgs,
		ParameterKindParamSpecKwargs:

		return true
	}
	return false
}

// Parameter

type Parameter struct {
	Kind ParameterKind
	Name string
	Type Type
}

// FunctionType

// FunctionType is the type of a function or method.
//
// A nil DeclaredReturnType means the return type is unannotated
// and still awaiting inference; see ReturnType and SetInferredReturnType.
type FunctionType struct {
	Name               string
	Parameters         []Parameter
	DeclaredReturnType Type

	IsStaticMethod bool
	IsClassMethod  bool

	inferredReturnType Type
}

var _ Type = &FunctionType{}

func (*FunctionType) isType() {}

func (t *FunctionType) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, parameter := range t.Parameters {
		if i > 0 {
			sb.WriteString(", ")
		}
		switch parameter.Kind {
		case ParameterKindVariadicArgs, ParameterKindParamSpecArgs:
			sb.WriteByte('*')
		case ParameterKindVariadicKwargs, ParameterKindParamSpecKwargs:
			sb.WriteString("**")
		}
		sb.WriteString(parameter.Name)
		if parameter.Type != nil {
			sb.WriteString(": ")
			sb.WriteString(parameter.Type.String())
		}
	}
	sb.WriteString(") -> ")
	returnType := t.ReturnType()
	if returnType != nil {
		sb.WriteString(returnType.String())
	} else {
		sb.WriteString("Unknown")
	}
	return sb.String()
}

func (t *FunctionType) Equal(other Type) bool {
	otherFunction, ok := other.(*FunctionType)
	if !ok {
		return false
	}

	if len(otherFunction.Parameters) != len(t.Parameters) {
		return false
	}
	for i, parameter := range t.Parameters {
		otherParameter := otherFunction.Parameters[i]
		if parameter.Kind != otherParameter.Kind ||
			!IsTypeSame(parameter.Type, otherParameter.Type) {

			return false
		}
	}

	return IsTypeSame(t.ReturnType(), otherFunction.ReturnType())
}

// ReturnType returns the declared return type, if any,
// the inferred return type otherwise,
// and nil if the return type is still awaiting inference
func (t *FunctionType) ReturnType() Type {
	if t.DeclaredReturnType != nil {
		return t.DeclaredReturnType
	}
	return t.inferredReturnType
}

// InferredReturnType returns the return type
// set by SetInferredReturnType, if any
func (t *FunctionType) InferredReturnType() Type {
	return t.inferredReturnType
}

// SetInferredReturnType records the return type inferred
// from the function's body
func (t *FunctionType) SetInferredReturnType(returnType Type) {
	t.inferredReturnType = returnType
}

// OverloadedFunctionType

// OverloadedFunctionType is the type of a function
// with multiple `@overload` signatures
type OverloadedFunctionType struct {
	Overloads []*FunctionType
}

var _ Type = &OverloadedFunctionType{}

func (*OverloadedFunctionType) isType() {}

func (t *OverloadedFunctionType) String() string {
	var sb strings.Builder
	sb.WriteString("Overload[")
	for i, overload := range t.Overloads {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(overload.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

func (t *OverloadedFunctionType) Equal(other Type) bool {
	otherOverloaded, ok := other.(*OverloadedFunctionType)
	if !ok {
		return false
	}

	if len(otherOverloaded.Overloads) != len(t.Overloads) {
		return false
	}
	for i, overload := range t.Overloads {
		if !overload.Equal(otherOverloaded.Overloads[i]) {
			return false
		}
	}

	return true
}

// PropertyType

// PropertyType is the type of a `@property` member.
// A nil Setter means the property is read-only
type PropertyType struct {
	Getter *FunctionType
	Setter *FunctionType
}

var _ Type = &PropertyType{}

func (*PropertyType) isType() {}

func (t *PropertyType) String() string {
	return "property"
}

func (t *PropertyType) Equal(other Type) bool {
	otherProperty, ok := other.(*PropertyType)
	if !ok {
		return false
	}
	return accessorsEqual(t.Getter, otherProperty.Getter) &&
		accessorsEqual(t.Setter, otherProperty.Setter)
}

func accessorsEqual(a, b *FunctionType) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

// TypeVarType

// TypeVarType is a type variable.
// Identity is the pair of name and owning scope
type TypeVarType struct {
	common.Incomparable
	Name    string
	ScopeID TypeVarScopeID

	// IsSynthesizedSelf indicates the type variable was synthesized
	// by the checker to stand for `Self`, rather than declared
	IsSynthesizedSelf bool
}

var _ Type = &TypeVarType{}

// SelfTypeName is the name of the synthesized `Self` type variable
const SelfTypeName = "Self"

// SynthesizedSelfTypeVar returns the type variable standing for `Self`
// within the body of the given class.
//
// All calls for the same class return identical type variables,
// as identity is determined by name and scope.
func SynthesizedSelfTypeVar(class *ClassType) *TypeVarType {
	return &TypeVarType{
		Name:              SelfTypeName,
		ScopeID:           class.Definition.ScopeID,
		IsSynthesizedSelf: true,
	}
}

func (*TypeVarType) isType() {}

func (t *TypeVarType) String() string {
	return t.Name
}

func (t *TypeVarType) Equal(other Type) bool {
	otherTypeVar, ok := other.(*TypeVarType)
	if !ok {
		return false
	}
	return otherTypeVar.Name == t.Name &&
		otherTypeVar.ScopeID == t.ScopeID
}

// UnknownType

// UnknownType is the type of an expression the checker
// could not determine a type for
type UnknownType struct{}

var _ Type = &UnknownType{}

func (*UnknownType) isType() {}

func (t *UnknownType) String() string {
	return "Unknown"
}

func (t *UnknownType) Equal(other Type) bool {
	_, ok := other.(*UnknownType)
	return ok
}

// StripParamSpecVariadics returns a copy of the given callable type
// with all parameters originating from a parameter specification removed.
// Non-callable types and callables without such parameters
// are returned unchanged.
func StripParamSpecVariadics(ty Type) Type {
	switch ty := ty.(type) {
	case *FunctionType:
		return stripFunctionParamSpecVariadics(ty)

	case *OverloadedFunctionType:
		overloads := make([]*FunctionType, len(ty.Overloads))
		stripped := false
		for i, overload := range ty.Overloads {
			overloads[i] = stripFunctionParamSpecVariadics(overload)
			if overloads[i] != overload {
				stripped = true
			}
		}
		if !stripped {
			return ty
		}
		return &OverloadedFunctionType{
			Overloads: overloads,
		}

	default:
		return ty
	}
}

func stripFunctionParamSpecVariadics(functionType *FunctionType) *FunctionType {
	hasParamSpecVariadics := false
	for _, parameter := range functionType.Parameters {
		if parameter.Kind.IsParamSpec() {
			hasParamSpecVariadics = true
			break
		}
	}
	if !hasParamSpecVariadics {
		return functionType
	}

	parameters := make([]Parameter, 0, len(functionType.Parameters))
	for _, parameter := range functionType.Parameters {
		if parameter.Kind.IsParamSpec() {
			continue
		}
		parameters = append(parameters, parameter)
	}

	stripped := *functionType
	stripped.Parameters = parameters
	return &stripped
}
