// Package load extracts builder schemas from Go source packages. It is
// the front half of the generator: it scans struct declarations marked
// with the //buildgen:builder directive, interprets the per-field
// directives attached to them, and produces the normalized descriptors
// the compiler/gen package consumes. It performs no code emission.
package load

import (
	"fmt"
	"go/ast"
	"reflect"
	"strconv"
	"strings"
)

// Marker is the declaration-level directive that opts a struct type
// into builder generation. It takes no arguments.
const Marker = "//buildgen:builder"

// fieldDirective is the comment-form prefix for per-field directives.
// The comment form is equivalent to the build struct tag and exists for
// default expressions that do not fit tag syntax.
const fieldDirective = "//buildgen:field"

// TagKey is the struct-tag namespace recognized by the interpreter.
// Tags in any other namespace are ignored.
const TagKey = "build"

// DefaultKind describes the fallback policy of a field whose value was
// never supplied to the builder.
type DefaultKind int

const (
	// DefaultNone means the field has no fallback; it is required by
	// the strict finalizers.
	DefaultNone DefaultKind = iota
	// DefaultZero substitutes the type's zero value (the "default"
	// directive with no argument).
	DefaultZero
	// DefaultExpr substitutes a caller-supplied expression, spliced
	// into the generated code verbatim.
	DefaultExpr
	// DefaultNil substitutes the nil value of a nillable type (the
	// "optional" directive).
	DefaultNil
)

// String returns the directive spelling of the kind.
func (k DefaultKind) String() string {
	switch k {
	case DefaultZero:
		return "default"
	case DefaultExpr:
		return "default=<expr>"
	case DefaultNil:
		return "optional"
	default:
		return "none"
	}
}

// Field is the normalized descriptor of one struct field. It is built
// once during interpretation and is immutable afterwards.
type Field struct {
	// Name is the field name as declared.
	Name string
	// Type is the field's type expression as written in the source.
	Type ast.Expr
	// TypeText is the source text of Type.
	TypeText string
	// Nillable reports whether the declared type is syntactically
	// nillable (pointer, slice, map, chan, func, interface or any).
	Nillable bool
	// Default is the fallback policy selected by the directives.
	Default DefaultKind
	// DefaultExpr holds the verbatim expression text when Default is
	// DefaultExpr. It is never evaluated or type-checked here.
	DefaultExpr string
	// Getter requests a value accessor on the constructed type.
	Getter bool
	// Setter requests a mutating accessor on the constructed type.
	Setter bool
	// Skip excludes the field from the builder entirely; finalizers
	// fill it with the zero value.
	Skip bool
	// Position is the field's index in declaration order.
	Position int
}

// Required reports whether the strict finalizers must fail when the
// field was never set.
func (f *Field) Required() bool {
	return !f.Skip && f.Default == DefaultNone
}

// TypeParam is one type parameter of a generic target declaration.
type TypeParam struct {
	// Name is the parameter identifier.
	Name string
	// Constraint is the constraint expression as declared.
	Constraint ast.Expr
	// ConstraintText is the source text of Constraint.
	ConstraintText string
}

// Schema describes one annotated struct declaration. Field order is
// declaration order, which fixes the identity of the first-missing
// field reported by the strict finalizers.
type Schema struct {
	// Name is the target type name.
	Name string
	// Pkg is the name of the package the declaration lives in.
	Pkg string
	// PkgPath is the package import path, when known.
	PkgPath string
	// Dir is the directory holding the source file.
	Dir string
	// File is the path of the file holding the declaration.
	File string
	// Imports maps local import names of the declaring file to import
	// paths, used to qualify types and default expressions at emission.
	Imports map[string]string
	// TypeParams holds the declaration's type parameters, in order.
	TypeParams []*TypeParam
	// Fields holds the interpreted field descriptors, in declaration order.
	Fields []*Field
	// HasValidator reports whether the package declares a
	// Validate() error method on the target (value or pointer receiver).
	HasValidator bool
}

// directives is the raw result of scanning one field's annotations
// before validation against the declared type.
type directives struct {
	getter   bool
	setter   bool
	optional bool
	skip     bool
	def      bool
	defExpr  string
	defSet   bool
}

// newField interprets the directives of a single struct field and
// validates them against the declared type. It returns an error
// naming the field for any malformed or contradictory combination.
func newField(name string, typ ast.Expr, typeText string, tag *ast.BasicLit, doc, comment *ast.CommentGroup, pos int) (*Field, error) {
	d := directives{}
	if tag != nil {
		value, err := tagValue(tag)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		if value != "" {
			if err := d.parse(value); err != nil {
				return nil, fmt.Errorf("field %q: %w", name, err)
			}
		}
	}
	for _, group := range []*ast.CommentGroup{doc, comment} {
		text, ok := directiveComment(group)
		if !ok {
			continue
		}
		if err := d.parse(text); err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
	}

	f := &Field{
		Name:     name,
		Type:     typ,
		TypeText: typeText,
		Nillable: nillable(typ),
		Getter:   d.getter,
		Setter:   d.setter,
		Skip:     d.skip,
		Position: pos,
	}
	switch {
	case d.optional && (d.def || d.defSet):
		return nil, fmt.Errorf("field %q: directives %q and %q are mutually exclusive", name, "optional", "default")
	case d.optional && !f.Nillable:
		return nil, fmt.Errorf("field %q: directive %q requires a nillable type (pointer, slice, map, chan, func or interface), got %s", name, "optional", typeText)
	case d.optional:
		f.Default = DefaultNil
	case d.defSet:
		f.Default = DefaultExpr
		f.DefaultExpr = d.defExpr
	case d.def:
		f.Default = DefaultZero
	}
	if f.Skip && (f.Default != DefaultNone || f.Getter || f.Setter) {
		return nil, fmt.Errorf("field %q: directive %q cannot be combined with other directives", name, "-")
	}
	return f, nil
}

// parse merges one comma-separated directive list into d. The tag form
// and the comment form share this grammar.
func (d *directives) parse(list string) error {
	for _, raw := range splitDirectives(list) {
		item := strings.TrimSpace(raw)
		if item == "" {
			continue
		}
		key, value, assigned := cutDirective(item)
		switch key {
		case "-":
			d.skip = true
		case "getter":
			if assigned {
				return fmt.Errorf("directive %q takes no argument", key)
			}
			d.getter = true
		case "setter":
			if assigned {
				return fmt.Errorf("directive %q takes no argument", key)
			}
			d.setter = true
		case "optional":
			if assigned {
				return fmt.Errorf("directive %q takes no argument", key)
			}
			d.optional = true
		case "default":
			if !assigned {
				d.def = true
				continue
			}
			expr := strings.TrimSpace(value)
			if expr == "" {
				return fmt.Errorf("directive %q has an empty expression", key)
			}
			if d.defSet && d.defExpr != expr {
				return fmt.Errorf("conflicting default expressions %q and %q", d.defExpr, expr)
			}
			d.defExpr = expr
			d.defSet = true
		default:
			return fmt.Errorf("unknown directive %q", key)
		}
	}
	return nil
}

// splitDirectives splits a directive list on top-level commas only, so
// default expressions containing calls, literals or strings stay intact.
func splitDirectives(s string) []string {
	var (
		parts   []string
		depth   int
		quote   rune
		escaped bool
		start   int
	)
	for i, r := range s {
		switch {
		case escaped:
			escaped = false
		case quote != 0:
			switch r {
			case '\\':
				// Raw strings have no escapes.
				if quote != '`' {
					escaped = true
				}
			case quote:
				quote = 0
			}
		case r == '"' || r == '\'' || r == '`':
			quote = r
		case r == '(' || r == '[' || r == '{':
			depth++
		case r == ')' || r == ']' || r == '}':
			depth--
		case r == ',' && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

// cutDirective splits "key=value" at the first top-level '='.
func cutDirective(item string) (key, value string, assigned bool) {
	if i := strings.IndexByte(item, '='); i >= 0 {
		return strings.TrimSpace(item[:i]), item[i+1:], true
	}
	return item, "", false
}

// tagValue extracts the build-namespace value of a raw struct tag.
// Tags in other namespaces are ignored; a malformed tag literal is an
// error only when the build key cannot be read from it.
func tagValue(tag *ast.BasicLit) (string, error) {
	raw, err := strconv.Unquote(tag.Value)
	if err != nil {
		return "", fmt.Errorf("malformed struct tag %s", tag.Value)
	}
	value, ok := reflect.StructTag(raw).Lookup(TagKey)
	if !ok {
		return "", nil
	}
	return value, nil
}

// directiveComment returns the directive payload of a field comment
// group, if the group carries the buildgen:field form.
func directiveComment(group *ast.CommentGroup) (string, bool) {
	if group == nil {
		return "", false
	}
	for _, c := range group.List {
		if rest, ok := strings.CutPrefix(c.Text, fieldDirective); ok {
			return strings.TrimSpace(rest), true
		}
	}
	return "", false
}

// nillable reports whether the type expression is nillable as written.
// Parenthesized types are unwrapped first.
func nillable(expr ast.Expr) bool {
	switch t := expr.(type) {
	case *ast.ParenExpr:
		return nillable(t.X)
	case *ast.StarExpr, *ast.MapType, *ast.ChanType, *ast.FuncType, *ast.InterfaceType:
		return true
	case *ast.ArrayType:
		return t.Len == nil // slice, not array
	case *ast.Ident:
		return t.Name == "any" || t.Name == "error"
	default:
		return false
	}
}

// hasMarker reports whether a declaration doc comment carries the
// builder marker directive.
func hasMarker(groups ...*ast.CommentGroup) bool {
	for _, group := range groups {
		if group == nil {
			continue
		}
		for _, c := range group.List {
			text := strings.TrimSpace(c.Text)
			if text == Marker || strings.HasPrefix(text, Marker+" ") {
				return true
			}
		}
	}
	return false
}
