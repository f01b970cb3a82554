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
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/pyrite-checker/pyrite/common"
	"github.com/pyrite-checker/pyrite/sema"
)

//go:embed universe.yaml
var defaultUniverseYAML []byte

// universeFile is the YAML description of a type universe:
// the classes, protocols, and modules to declare,
// and the conformance checks to run against them
type universeFile struct {
	Classes           []classSpec         `yaml:"classes"`
	Modules           []moduleSpec        `yaml:"modules"`
	RecordPlaceholder string              `yaml:"recordPlaceholder"`
	Checks            []checkSpec         `yaml:"checks"`
	VarianceChecks    []varianceCheckSpec `yaml:"varianceChecks"`
}

type classSpec struct {
	Name           string       `yaml:"name"`
	Module         string       `yaml:"module"`
	Protocol       bool         `yaml:"protocol"`
	Record         bool         `yaml:"record"`
	TypeParameters []string     `yaml:"typeParameters"`
	Bases          []string     `yaml:"bases"`
	Metaclass      string       `yaml:"metaclass"`
	Members        []memberSpec `yaml:"members"`
}

type moduleSpec struct {
	Name    string       `yaml:"name"`
	Members []memberSpec `yaml:"members"`
}

// memberSpec declares a single member.
// Exactly one of method, variable, classVar, and property must be set
type memberSpec struct {
	Name         string      `yaml:"name"`
	Method       *methodSpec `yaml:"method"`
	Variable     *string     `yaml:"variable"`
	ClassVar     *string     `yaml:"classVar"`
	Property     *string     `yaml:"property"`
	Writable     bool        `yaml:"writable"`
	Final        bool        `yaml:"final"`
	Ignored      bool        `yaml:"ignored"`
	InstanceOnly bool        `yaml:"instanceOnly"`
}

type methodSpec struct {
	Parameters []string `yaml:"parameters"`
	Returns    string   `yaml:"returns"`
	Static     bool     `yaml:"static"`
}

type checkSpec struct {
	Protocol      string `yaml:"protocol"`
	Candidate     string `yaml:"candidate"`
	AsClassObject bool   `yaml:"asClassObject"`
	Expect        bool   `yaml:"expect"`
}

// varianceCheckSpec checks one specialization of a generic protocol
// against another specialization of the same protocol
type varianceCheckSpec struct {
	Source string `yaml:"source"`
	Dest   string `yaml:"dest"`
	Expect bool   `yaml:"expect"`
}

// universe is a resolved type universe a checker runs against
type universe struct {
	checker   *sema.ProtocolChecker
	evaluator *basicEvaluator

	classNames  []string
	classes     map[string]*sema.ClassType
	moduleNames []string
	modules     map[string]*sema.ModuleType

	checks         []checkSpec
	varianceChecks []varianceCheckSpec
}

func newUniverse(source []byte) (*universe, error) {
	var file universeFile
	if err := yaml.Unmarshal(source, &file); err != nil {
		return nil, fmt.Errorf("failed to parse universe: %w", err)
	}

	u := &universe{
		classes: map[string]*sema.ClassType{},
		modules: map[string]*sema.ModuleType{},
	}
	u.evaluator = &basicEvaluator{}
	u.checker = sema.NewProtocolChecker(u.evaluator)
	u.evaluator.checker = u.checker

	u.registerBuiltIns()

	// Declare all classes first, so bases, metaclasses,
	// and member types can refer to classes in any order
	for _, spec := range file.Classes {
		if err := u.declareClass(spec); err != nil {
			return nil, err
		}
	}

	for _, spec := range file.Classes {
		if err := u.populateClass(spec); err != nil {
			return nil, err
		}
	}

	for _, spec := range file.Modules {
		if err := u.declareModule(spec); err != nil {
			return nil, err
		}
	}

	if file.RecordPlaceholder != "" {
		placeholder, err := u.resolveClassObject(file.RecordPlaceholder, nil)
		if err != nil {
			return nil, err
		}
		u.evaluator.recordPlaceholder = placeholder
	}

	u.checks = file.Checks
	u.varianceChecks = file.VarianceChecks

	return u, nil
}

func (u *universe) addClass(class *sema.ClassType) error {
	name := class.Definition.Name
	if _, exists := u.classes[name]; exists {
		return fmt.Errorf("class `%s` is declared twice", name)
	}
	u.classes[name] = class
	u.classNames = append(u.classNames, name)
	return nil
}

func (u *universe) registerBuiltIn(name string) *sema.ClassType {
	class := sema.NewClass("builtins", name)
	class.Definition.IsBuiltIn = true
	// Built-in names are registered first and cannot collide
	_ = u.addClass(class)
	return class
}

func (u *universe) registerBuiltIns() {
	u.registerBuiltIn("object")

	protocolClass := sema.NewProtocol("builtins", "Protocol")
	protocolClass.Definition.IsBuiltIn = true
	_ = u.addClass(protocolClass)

	intClass := u.registerBuiltIn("int")
	u.registerBuiltIn("float")
	u.registerBuiltIn("str")
	u.registerBuiltIn("bytes")

	boolClass := u.registerBuiltIn("bool")
	boolClass.AddBaseClass(intClass)
}

func (u *universe) declareClass(spec classSpec) error {
	if spec.Name == "" {
		return fmt.Errorf("class without a name")
	}

	moduleName := spec.Module
	if moduleName == "" {
		moduleName = "main"
	}

	var class *sema.ClassType
	if spec.Protocol {
		class = sema.NewProtocol(moduleName, spec.Name)
	} else {
		class = sema.NewClass(moduleName, spec.Name)
	}
	if spec.Record {
		class.Definition.IsRecord = true
	}

	for _, typeParameterName := range spec.TypeParameters {
		class.Definition.TypeParameters = append(
			class.Definition.TypeParameters,
			&sema.TypeVarType{
				Name:    typeParameterName,
				ScopeID: class.Definition.ScopeID,
			},
		)
	}

	return u.addClass(class)
}

func (u *universe) populateClass(spec classSpec) error {
	class := u.classes[spec.Name]

	for _, baseRef := range spec.Bases {
		base, err := u.resolveClassObject(baseRef, class)
		if err != nil {
			return fmt.Errorf("class `%s`: %w", spec.Name, err)
		}
		class.AddBaseClass(base)
	}

	if spec.Metaclass != "" {
		metaclass, err := u.resolveClassObject(spec.Metaclass, class)
		if err != nil {
			return fmt.Errorf("class `%s`: %w", spec.Name, err)
		}
		class.Definition.Metaclass = metaclass
	}

	for _, member := range spec.Members {
		symbol, err := u.buildSymbol(member, class, false)
		if err != nil {
			return fmt.Errorf("class `%s`: %w", spec.Name, err)
		}
		class.Definition.AddMember(symbol)
	}

	return nil
}

func (u *universe) declareModule(spec moduleSpec) error {
	if spec.Name == "" {
		return fmt.Errorf("module without a name")
	}
	if _, exists := u.modules[spec.Name]; exists {
		return fmt.Errorf("module `%s` is declared twice", spec.Name)
	}

	module := sema.NewModule(spec.Name)
	for _, member := range spec.Members {
		symbol, err := u.buildSymbol(member, nil, true)
		if err != nil {
			return fmt.Errorf("module `%s`: %w", spec.Name, err)
		}
		module.AddMember(symbol)
	}

	u.modules[spec.Name] = module
	u.moduleNames = append(u.moduleNames, spec.Name)
	return nil
}

func (u *universe) buildSymbol(
	spec memberSpec,
	scope *sema.ClassType,
	inModule bool,
) (*sema.Symbol, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("member without a name")
	}

	kindCount := 0
	for _, set := range []bool{
		spec.Method != nil,
		spec.Variable != nil,
		spec.ClassVar != nil,
		spec.Property != nil,
	} {
		if set {
			kindCount++
		}
	}
	if kindCount != 1 {
		return nil, fmt.Errorf(
			"member `%s` must declare exactly one of method, variable, classVar, and property",
			spec.Name,
		)
	}
	if spec.Writable && spec.Property == nil {
		return nil, fmt.Errorf("member `%s`: writable requires a property", spec.Name)
	}

	var symbol *sema.Symbol
	switch {
	case spec.Method != nil:
		functionType, err := u.buildMethod(spec.Name, *spec.Method, scope, inModule)
		if err != nil {
			return nil, fmt.Errorf("member `%s`: %w", spec.Name, err)
		}
		symbol = sema.NewSymbol(spec.Name, common.DeclarationKindFunction, functionType)

	case spec.Variable != nil:
		ty, err := u.resolveOptionalType(*spec.Variable, scope)
		if err != nil {
			return nil, fmt.Errorf("member `%s`: %w", spec.Name, err)
		}
		symbol = sema.NewSymbol(spec.Name, common.DeclarationKindVariable, ty)

	case spec.ClassVar != nil:
		ty, err := u.resolveOptionalType(*spec.ClassVar, scope)
		if err != nil {
			return nil, fmt.Errorf("member `%s`: %w", spec.Name, err)
		}
		symbol = sema.NewSymbol(spec.Name, common.DeclarationKindVariable, ty)
		symbol.IsClassVar = true

	case spec.Property != nil:
		returnType, err := u.resolveOptionalType(*spec.Property, scope)
		if err != nil {
			return nil, fmt.Errorf("member `%s`: %w", spec.Name, err)
		}
		property := &sema.PropertyType{
			Getter: &sema.FunctionType{
				Name: spec.Name,
				Parameters: []sema.Parameter{
					{
						Kind: sema.ParameterKindPositional,
						Name: "self",
					},
				},
				DeclaredReturnType: returnType,
			},
		}
		if spec.Writable {
			property.Setter = &sema.FunctionType{
				Name: spec.Name,
				Parameters: []sema.Parameter{
					{
						Kind: sema.ParameterKindPositional,
						Name: "self",
					},
					{
						Kind: sema.ParameterKindPositional,
						Name: "value",
						Type: returnType,
					},
				},
			}
		}
		symbol = sema.NewSymbol(spec.Name, common.DeclarationKindProperty, property)
	}

	if spec.Final {
		symbol.Declarations[0].IsFinal = true
	}
	if spec.InstanceOnly {
		symbol.IsClassMember = false
	}
	if spec.Ignored {
		symbol.IsIgnoredForProtocolMatch = true
	}

	return symbol, nil
}

func (u *universe) buildMethod(
	name string,
	spec methodSpec,
	scope *sema.ClassType,
	inModule bool,
) (*sema.FunctionType, error) {
	var parameters []sema.Parameter
	if !inModule && !spec.Static {
		parameters = append(parameters, sema.Parameter{
			Kind: sema.ParameterKindPositional,
			Name: "self",
		})
	}

	for i, parameterRef := range spec.Parameters {
		ty, err := u.resolveType(parameterRef, scope)
		if err != nil {
			return nil, err
		}
		parameters = append(parameters, sema.Parameter{
			Kind: sema.ParameterKindPositional,
			Name: fmt.Sprintf("p%d", i),
			Type: ty,
		})
	}

	var returnType sema.Type
	if spec.Returns != "" {
		var err error
		returnType, err = u.resolveType(spec.Returns, scope)
		if err != nil {
			return nil, err
		}
	}

	return &sema.FunctionType{
		Name:               name,
		Parameters:         parameters,
		DeclaredReturnType: returnType,
		IsStaticMethod:     spec.Static,
	}, nil
}

// resolveOptionalType resolves the given type reference,
// returning nil for the empty reference (an unannotated declaration)
func (u *universe) resolveOptionalType(ref string, scope *sema.ClassType) (sema.Type, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, nil
	}
	return u.resolveType(ref, scope)
}

// resolveType resolves a type reference to the instance view.
// Supported forms: `Name`, `Name[Ref, ...]`, `type[Ref]`,
// `Literal[...]`, and the names of the scope's type parameters
func (u *universe) resolveType(ref string, scope *sema.ClassType) (sema.Type, error) {
	ref = strings.TrimSpace(ref)

	name, args, generic, err := parseGenericRef(ref)
	if err != nil {
		return nil, err
	}
	if generic {
		switch name {
		case "type":
			if len(args) != 1 {
				return nil, fmt.Errorf("`type[...]` requires exactly one argument")
			}
			return u.resolveClassObject(args[0], scope)

		case "Literal":
			if len(args) != 1 {
				return nil, fmt.Errorf("`Literal[...]` requires exactly one argument")
			}
			return u.resolveLiteral(args[0])

		default:
			class, err := u.resolveClassObject(ref, scope)
			if err != nil {
				return nil, err
			}
			return class.CloneAsInstance(), nil
		}
	}

	if scope != nil {
		for _, typeParameter := range scope.Definition.TypeParameters {
			if typeParameter.Name == ref {
				return typeParameter, nil
			}
		}
	}

	if class, ok := u.classes[ref]; ok {
		return class.CloneAsInstance(), nil
	}

	return nil, fmt.Errorf("unknown type `%s`", ref)
}

// resolveClassObject resolves a class reference (`Name` or `Name[Ref, ...]`)
// to the class-object view, specialized when type arguments are given
func (u *universe) resolveClassObject(ref string, scope *sema.ClassType) (*sema.ClassType, error) {
	ref = strings.TrimSpace(ref)

	name, args, generic, err := parseGenericRef(ref)
	if err != nil {
		return nil, err
	}
	if !generic {
		class, ok := u.classes[ref]
		if !ok {
			return nil, fmt.Errorf("unknown class `%s`", ref)
		}
		return class, nil
	}

	class, ok := u.classes[name]
	if !ok {
		return nil, fmt.Errorf("unknown class `%s`", name)
	}
	if len(args) != len(class.Definition.TypeParameters) {
		return nil, fmt.Errorf(
			"class `%s` expects %d type argument(s), got %d",
			name,
			len(class.Definition.TypeParameters),
			len(args),
		)
	}

	typeArguments := make([]sema.Type, len(args))
	for i, arg := range args {
		typeArguments[i], err = u.resolveType(arg, scope)
		if err != nil {
			return nil, err
		}
	}

	return class.CloneForSpecialization(typeArguments), nil
}

func (u *universe) resolveLiteral(token string) (sema.Type, error) {
	token = strings.TrimSpace(token)

	if strings.HasPrefix(token, `"`) {
		value, err := strconv.Unquote(token)
		if err != nil {
			return nil, fmt.Errorf("invalid string literal %s", token)
		}
		return u.classes["str"].CloneAsInstance().CloneWithLiteral(value), nil
	}

	switch token {
	case "True":
		return u.classes["bool"].CloneAsInstance().CloneWithLiteral(true), nil
	case "False":
		return u.classes["bool"].CloneAsInstance().CloneWithLiteral(false), nil
	}

	if value, err := strconv.Atoi(token); err == nil {
		return u.classes["int"].CloneAsInstance().CloneWithLiteral(value), nil
	}

	return nil, fmt.Errorf("invalid literal `%s`", token)
}

// parseGenericRef splits `Name[a, b]` into the name and the raw
// argument references. The third return value is false
// when the reference carries no type arguments
func parseGenericRef(ref string) (name string, args []string, generic bool, err error) {
	if !strings.HasSuffix(ref, "]") {
		if strings.ContainsAny(ref, "[]") {
			return "", nil, false, fmt.Errorf("unbalanced brackets in `%s`", ref)
		}
		return ref, nil, false, nil
	}

	open := strings.Index(ref, "[")
	if open <= 0 {
		return "", nil, false, fmt.Errorf("invalid type reference `%s`", ref)
	}

	name = ref[:open]
	inner := ref[open+1 : len(ref)-1]

	args, err = splitTopLevel(inner)
	if err != nil {
		return "", nil, false, fmt.Errorf("invalid type reference `%s`: %w", ref, err)
	}
	return name, args, true, nil
}

// splitTopLevel splits the given string on commas
// that are not nested inside brackets
func splitTopLevel(s string) ([]string, error) {
	var parts []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced brackets")
			}
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced brackets")
	}
	last := strings.TrimSpace(s[start:])
	if last == "" && len(parts) == 0 {
		return nil, fmt.Errorf("missing type argument")
	}
	parts = append(parts, last)
	return parts, nil
}

// checkOutcome is the result of one conformance check
type checkOutcome struct {
	protocolType  *sema.ClassType
	candidateType sema.Type
	result        bool
	diag          *sema.DiagnosticAddendum
}

func (u *universe) runCheck(spec checkSpec) (checkOutcome, error) {
	protocolType, err := u.resolveClassObject(spec.Protocol, nil)
	if err != nil {
		return checkOutcome{}, err
	}
	if !protocolType.IsProtocolClass() {
		return checkOutcome{}, fmt.Errorf("`%s` is not a protocol", spec.Protocol)
	}

	diag := sema.NewDiagnosticAddendum()

	if module, ok := u.modules[spec.Candidate]; ok {
		result := u.checker.CanAssignModuleToProtocol(
			protocolType,
			module,
			diag,
			nil,
			sema.AssignFlagsDefault,
			0,
		)
		return checkOutcome{
			protocolType:  protocolType,
			candidateType: module,
			result:        result,
			diag:          diag,
		}, nil
	}

	candidate, err := u.resolveClassObject(spec.Candidate, nil)
	if err != nil {
		return checkOutcome{}, err
	}

	result := u.checker.CanAssignClassToProtocol(
		protocolType,
		candidate,
		diag,
		nil,
		sema.AssignFlagsDefault,
		spec.AsClassObject,
		0,
	)
	candidateType := sema.Type(candidate.CloneAsInstance())
	if spec.AsClassObject {
		candidateType = candidate
	}
	return checkOutcome{
		protocolType:  protocolType,
		candidateType: candidateType,
		result:        result,
		diag:          diag,
	}, nil
}

func (u *universe) runVarianceCheck(spec varianceCheckSpec) (bool, error) {
	source, err := u.resolveClassObject(spec.Source, nil)
	if err != nil {
		return false, err
	}
	dest, err := u.resolveClassObject(spec.Dest, nil)
	if err != nil {
		return false, err
	}
	if !dest.IsProtocolClass() {
		return false, fmt.Errorf("`%s` is not a protocol", spec.Dest)
	}
	if !dest.IsSameGenericClass(source) {
		return false, fmt.Errorf(
			"`%s` and `%s` are not the same protocol",
			spec.Source,
			spec.Dest,
		)
	}

	return u.checker.CanAssignProtocolClassToSelf(dest, source, 0), nil
}
