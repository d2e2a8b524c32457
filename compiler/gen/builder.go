package gen

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/buildgen/compiler/load"
)

// builderFile emits the complete companion file for one target type:
// the builder struct, its factory, one fluent setter per field, the
// three finalizers, and the requested accessors on the target itself.
func builderFile(t *Type) *jen.File {
	f := t.newFile()
	genBuilderType(f, t)
	genFactory(f, t)
	for _, field := range t.BuilderFields() {
		genFieldSetter(f, t, field)
	}
	genBuild(f, t)
	genBuildWithDefaults(f, t)
	genBuildValidated(f, t)
	for _, field := range t.Fields {
		if field.Getter() {
			genGetter(f, t, field)
		}
		if field.Setter() {
			genSetter(f, t, field)
		}
	}
	return f
}

// newFile creates a jennifer file for the target's package with the
// configured header comment. Import names are registered so paths whose
// package name matches their base render without an alias; imports the
// declaring file aliased keep jennifer's aliasing.
func (t *Type) newFile() *jen.File {
	f := jen.NewFile(t.Package())
	header := DefaultHeader
	if t.Config != nil && t.Config.Header != "" {
		header = t.Config.Header
	}
	f.HeaderComment(header)
	f.ImportName(RuntimePkg, "buildgen")
	for name, path := range t.Imports() {
		if load.ImportBase(path) == name {
			f.ImportName(path, name)
		}
	}
	return f
}

// typeParamsDecl returns the declaration form of the target's type
// parameters ("T any, K comparable"), or nil for non-generic targets.
func (t *Type) typeParamsDecl() []jen.Code {
	params := t.TypeParams()
	if len(params) == 0 {
		return nil
	}
	codes := make([]jen.Code, 0, len(params))
	for _, p := range params {
		codes = append(codes, jen.Id(p.Name).Add(t.constraintCode(p.Constraint, p.ConstraintText)))
	}
	return codes
}

// typeParamsUse returns the instantiation form of the target's type
// parameters ("T, K"), or nil for non-generic targets.
func (t *Type) typeParamsUse() []jen.Code {
	params := t.TypeParams()
	if len(params) == 0 {
		return nil
	}
	codes := make([]jen.Code, 0, len(params))
	for _, p := range params {
		codes = append(codes, jen.Id(p.Name))
	}
	return codes
}

// targetRef returns a reference to the (instantiated) target type.
// Index takes a single element; multi-parameter lists are joined with
// List so they render comma-separated instead of as a slice expression.
func (t *Type) targetRef() *jen.Statement {
	s := jen.Id(t.Name)
	if use := t.typeParamsUse(); use != nil {
		s = s.Index(jen.List(use...))
	}
	return s
}

// builderRef returns a reference to the (instantiated) builder type.
func (t *Type) builderRef() *jen.Statement {
	s := jen.Id(t.BuilderName())
	if use := t.typeParamsUse(); use != nil {
		s = s.Index(jen.List(use...))
	}
	return s
}

// genBuilderType emits the builder struct: one storage cell per
// non-skipped field, in declaration order.
func genBuilderType(f *jen.File, t *Type) {
	f.Commentf("%s collects the fields of %s before construction.", t.BuilderName(), t.Name)
	s := f.Type().Id(t.BuilderName())
	if decl := t.typeParamsDecl(); decl != nil {
		s = s.Index(jen.List(decl...))
	}
	s.StructFunc(func(grp *jen.Group) {
		for _, field := range t.BuilderFields() {
			grp.Id(field.CellName()).Qual(RuntimePkg, "Value").Index(t.typeCode(field))
		}
	})
}

// genFactory emits the factory producing an empty builder.
func genFactory(f *jen.File, t *Type) {
	f.Commentf("%s returns an empty builder for %s.", t.FactoryName(), t.Name)
	s := f.Func().Id(t.FactoryName())
	if decl := t.typeParamsDecl(); decl != nil {
		s = s.Index(jen.List(decl...))
	}
	s.Params().Op("*").Add(t.builderRef()).Block(
		jen.Return(jen.Op("&").Add(t.builderRef()).Values()),
	)
}

// genFieldSetter emits the fluent setter of one field.
func genFieldSetter(f *jen.File, t *Type, field *Field) {
	f.Commentf("%s sets the %s field. Calling it again overwrites the previous value.", field.MethodName(), field.Name)
	f.Func().Params(jen.Id(t.Receiver()).Op("*").Add(t.builderRef())).Id(field.MethodName()).
		Params(jen.Id("value").Add(t.typeCode(field))).
		Op("*").Add(t.builderRef()).
		Block(
			jen.Id(t.Receiver()).Dot(field.CellName()).Dot("Set").Call(jen.Id("value")),
			jen.Return(jen.Id(t.Receiver())),
		)
}

// fieldValue returns the expression a finalizer stores into one field
// of the constructed value.
func fieldValue(t *Type, field *Field) jen.Code {
	cell := jen.Id(t.Receiver()).Dot(field.CellName())
	if field.DefaultExpr() != "" {
		return cell.Dot("OrFunc").Call(
			jen.Func().Params().Add(t.typeCode(field)).Block(jen.Return(t.defaultCode(field))),
		)
	}
	// Required fields reach this point only after the IsSet check;
	// zero-default, optional and unchecked fields fall back to zero.
	return cell.Dot("OrZero").Call()
}

// targetLiteral returns the composite literal assembling the target
// from the builder cells. Skipped fields are left at their zero value.
func targetLiteral(t *Type) jen.Code {
	return jen.Op("&").Add(t.targetRef()).Values(jen.DictFunc(func(d jen.Dict) {
		for _, field := range t.BuilderFields() {
			d[jen.Id(field.Name)] = fieldValue(t, field)
		}
	}))
}

// genRequiredChecks emits the unset-required-field checks in
// declaration order, so the first missing field fixes the error.
func genRequiredChecks(grp *jen.Group, t *Type) {
	for _, field := range t.RequiredFields() {
		grp.If(jen.Op("!").Id(t.Receiver()).Dot(field.CellName()).Dot("IsSet").Call()).Block(
			jen.Return(jen.Nil(), jen.Qual(RuntimePkg, "NewMissingDependencyError").Call(jen.Lit(t.Name), jen.Lit(field.Name))),
		)
	}
}

// genBuild emits the strict finalizer.
func genBuild(f *jen.File, t *Type) {
	f.Commentf("Build assembles the %s. It fails with a missing-dependency error naming the first required field that was never set; unset fields with a default or optional policy are substituted silently.", t.Name)
	f.Func().Params(jen.Id(t.Receiver()).Op("*").Add(t.builderRef())).Id("Build").Params().
		Params(jen.Op("*").Add(t.targetRef()), jen.Error()).
		BlockFunc(func(grp *jen.Group) {
			genRequiredChecks(grp, t)
			grp.Return(targetLiteral(t), jen.Nil())
		})
}

// genBuildWithDefaults emits the permissive finalizer.
func genBuildWithDefaults(f *jen.File, t *Type) {
	f.Commentf("BuildWithDefaults assembles the %s without failing: unset fields use their declared default or optional policy, and fields with no policy fall back to their zero value.", t.Name)
	f.Func().Params(jen.Id(t.Receiver()).Op("*").Add(t.builderRef())).Id("BuildWithDefaults").Params().
		Op("*").Add(t.targetRef()).
		Block(jen.Return(targetLiteral(t)))
}

// genBuildValidated emits the validated finalizer. Without a Validate
// hook on the target it is exactly the strict finalizer; with one, the
// assembled value is additionally passed through the hook.
func genBuildValidated(f *jen.File, t *Type) {
	if !t.HasValidator() {
		f.Commentf("BuildValidated is equivalent to Build; %s declares no Validate hook.", t.Name)
		f.Func().Params(jen.Id(t.Receiver()).Op("*").Add(t.builderRef())).Id("BuildValidated").Params().
			Params(jen.Op("*").Add(t.targetRef()), jen.Error()).
			Block(jen.Return(jen.Id(t.Receiver()).Dot("Build").Call()))
		return
	}
	f.Commentf("BuildValidated assembles the %s like Build and then runs its Validate hook, wrapping a rejection in a build-failed error.", t.Name)
	f.Func().Params(jen.Id(t.Receiver()).Op("*").Add(t.builderRef())).Id("BuildValidated").Params().
		Params(jen.Op("*").Add(t.targetRef()), jen.Error()).
		BlockFunc(func(grp *jen.Group) {
			genRequiredChecks(grp, t)
			grp.Id("v").Op(":=").Add(targetLiteral(t))
			grp.If(
				jen.Id("err").Op(":=").Id("v").Dot("Validate").Call(),
				jen.Id("err").Op("!=").Nil(),
			).Block(
				jen.Return(jen.Nil(), jen.Qual(RuntimePkg, "NewBuildFailedError").Call(jen.Lit("validating "+t.Name), jen.Id("err"))),
			)
			grp.Return(jen.Id("v"), jen.Nil())
		})
}

// genGetter emits the value accessor of one field on the target type.
func genGetter(f *jen.File, t *Type, field *Field) {
	f.Commentf("%s returns the %s field.", field.GetterName(), field.Name)
	f.Func().Params(jen.Id(t.ValueReceiver()).Op("*").Add(t.targetRef())).Id(field.GetterName()).Params().
		Add(t.typeCode(field)).
		Block(jen.Return(jen.Id(t.ValueReceiver()).Dot(field.Name)))
}

// genSetter emits the mutating accessor of one field on the target type.
func genSetter(f *jen.File, t *Type, field *Field) {
	f.Commentf("%s overwrites the %s field in place.", field.SetterName(), field.Name)
	f.Func().Params(jen.Id(t.ValueReceiver()).Op("*").Add(t.targetRef())).Id(field.SetterName()).
		Params(jen.Id("value").Add(t.typeCode(field))).
		Block(jen.Id(t.ValueReceiver()).Dot(field.Name).Op("=").Id("value"))
}
