package gen

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-openapi/inflect"

	"github.com/syssam/buildgen/compiler/load"
)

// RuntimePkg is the import path of the runtime package the generated
// code depends on for storage cells and build errors.
const RuntimePkg = "github.com/syssam/buildgen"

// reservedMethods are builder method names owned by the finalizers; a
// field whose fluent setter would collide with one is rejected.
var reservedMethods = map[string]bool{
	"Build":             true,
	"BuildWithDefaults": true,
	"BuildValidated":    true,
}

type (
	// Graph holds all types selected for generation in one run.
	Graph struct {
		Config *Config
		// Nodes are the target types, in load order.
		Nodes []*Type
	}

	// Type is the synthesizer-side view of one annotated declaration.
	Type struct {
		*Config
		schema *load.Schema
		// Name is the target type name.
		Name string
		// Fields holds the type's fields in declaration order.
		Fields []*Field
	}

	// Field wraps a loaded field descriptor with naming helpers.
	Field struct {
		def *load.Field
		typ *Type
		// Name is the field name as declared.
		Name string
	}
)

// NewGraph creates a generation graph from loaded schemas, validating
// that each schema produces a coherent method surface.
func NewGraph(c *Config, schemas ...*load.Schema) (*Graph, error) {
	if c == nil {
		return nil, NewConfigError("Config", nil, "configuration is required")
	}
	g := &Graph{Config: c}
	for _, schema := range schemas {
		t, err := NewType(c, schema)
		if err != nil {
			return nil, err
		}
		g.Nodes = append(g.Nodes, t)
	}
	return g, nil
}

// NewType creates a generation type from a loaded schema.
func NewType(c *Config, schema *load.Schema) (*Type, error) {
	if schema == nil || schema.Name == "" {
		return nil, NewSchemaError("", "", "schema has no type name", nil)
	}
	t := &Type{
		Config: c,
		schema: schema,
		Name:   schema.Name,
	}
	methods := make(map[string]string, len(schema.Fields))
	for _, fd := range schema.Fields {
		f := &Field{def: fd, typ: t, Name: fd.Name}
		if !fd.Skip {
			m := f.MethodName()
			if reservedMethods[m] {
				return nil, NewSchemaError(t.Name, f.Name, "setter name "+m+" collides with a finalizer method", nil)
			}
			if prev, ok := methods[m]; ok {
				return nil, NewSchemaError(t.Name, f.Name, "setter name "+m+" collides with field "+prev, nil)
			}
			methods[m] = f.Name
		}
		t.Fields = append(t.Fields, f)
	}
	return t, nil
}

// BuilderName returns the name of the generated builder type.
func (t *Type) BuilderName() string {
	return t.Name + "Builder"
}

// FactoryName returns the name of the generated factory function.
func (t *Type) FactoryName() string {
	return "New" + t.BuilderName()
}

// Receiver returns the receiver name used by builder methods.
func (t *Type) Receiver() string {
	return "b"
}

// ValueReceiver returns the receiver name used by accessor methods on
// the constructed type.
func (t *Type) ValueReceiver() string {
	r, _ := utf8.DecodeRuneInString(t.Name)
	return string(unicode.ToLower(r))
}

// Package returns the name of the package the target is declared in.
func (t *Type) Package() string {
	return t.schema.Pkg
}

// Dir returns the directory generated output is written to: the
// configured target, or the source directory of the declaration.
func (t *Type) Dir() string {
	if t.Config != nil && t.Config.Target != "" {
		return t.Config.Target
	}
	return t.schema.Dir
}

// FileName returns the generated output file name.
func (t *Type) FileName() string {
	suffix := DefaultSuffix
	if t.Config != nil && t.Config.Suffix != "" {
		suffix = t.Config.Suffix
	}
	return strings.ToLower(t.Name) + suffix
}

// File returns the source file the target is declared in.
func (t *Type) File() string {
	return t.schema.File
}

// Imports maps local import names of the declaring file to their paths.
func (t *Type) Imports() map[string]string {
	return t.schema.Imports
}

// TypeParams returns the declaration's type parameters, in order.
func (t *Type) TypeParams() []*load.TypeParam {
	return t.schema.TypeParams
}

// Generic reports whether the target declaration has type parameters.
func (t *Type) Generic() bool {
	return len(t.schema.TypeParams) > 0
}

// HasValidator reports whether the target declares a Validate hook the
// validated finalizer should invoke.
func (t *Type) HasValidator() bool {
	return t.schema.HasValidator
}

// BuilderFields returns the fields that own a storage cell on the
// builder, excluding skipped fields.
func (t *Type) BuilderFields() []*Field {
	fields := make([]*Field, 0, len(t.Fields))
	for _, f := range t.Fields {
		if !f.Skip() {
			fields = append(fields, f)
		}
	}
	return fields
}

// RequiredFields returns the fields the strict finalizers must see set,
// in declaration order. The first unset one fixes the reported error.
func (t *Type) RequiredFields() []*Field {
	fields := make([]*Field, 0, len(t.Fields))
	for _, f := range t.Fields {
		if f.Required() {
			fields = append(fields, f)
		}
	}
	return fields
}

// pascal converts a declared field name to an exported method name
// component.
func pascal(name string) string {
	return inflect.Camelize(name)
}

// MethodName returns the name of the field's fluent builder setter.
func (f *Field) MethodName() string {
	return pascal(f.Name)
}

// GetterName returns the name of the field's value accessor on the
// constructed type.
func (f *Field) GetterName() string {
	return "Get" + pascal(f.Name)
}

// SetterName returns the name of the field's mutating accessor on the
// constructed type.
func (f *Field) SetterName() string {
	return "Set" + pascal(f.Name)
}

// CellName returns the name of the field's storage cell on the builder.
func (f *Field) CellName() string {
	return f.Name
}

// Required reports whether the strict finalizers fail when the field
// was never set.
func (f *Field) Required() bool {
	return f.def.Required()
}

// Skip reports whether the field is excluded from the builder.
func (f *Field) Skip() bool {
	return f.def.Skip
}

// Getter reports whether a value accessor is generated on the
// constructed type.
func (f *Field) Getter() bool {
	return f.def.Getter
}

// Setter reports whether a mutating accessor is generated on the
// constructed type.
func (f *Field) Setter() bool {
	return f.def.Setter
}

// Default returns the field's fallback policy.
func (f *Field) Default() load.DefaultKind {
	return f.def.Default
}

// DefaultExpr returns the verbatim default expression text, when the
// policy is an expression default.
func (f *Field) DefaultExpr() string {
	return f.def.DefaultExpr
}

// TypeText returns the field's type as written in the source.
func (f *Field) TypeText() string {
	return f.def.TypeText
}
