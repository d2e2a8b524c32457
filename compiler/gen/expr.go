package gen

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"

	"github.com/dave/jennifer/jen"
)

// typeCode renders a field's declared type. Types the converter cannot
// express are spliced as raw source text; the host compiler attributes
// any resulting error to the generated file.
func (t *Type) typeCode(f *Field) jen.Code {
	code, err := exprCode(f.def.Type, t.Imports())
	if err != nil {
		return jen.Id(f.TypeText())
	}
	return code
}

// defaultCode renders a field's custom default expression. The text was
// captured verbatim by the interpreter; it is parsed here only so that
// package selectors can be qualified against the declaring file's
// imports, never to validate it. Unparseable or unconvertible
// expressions are spliced raw and surface, if broken, as a render or
// host-compile error on the generated file.
func (t *Type) defaultCode(f *Field) jen.Code {
	expr, err := parser.ParseExpr(f.DefaultExpr())
	if err != nil {
		return jen.Id(f.DefaultExpr())
	}
	code, err := exprCode(expr, t.Imports())
	if err != nil {
		return jen.Id(f.DefaultExpr())
	}
	return code
}

// constraintCode renders a type-parameter constraint.
func (t *Type) constraintCode(expr ast.Expr, text string) jen.Code {
	code, err := exprCode(expr, t.Imports())
	if err != nil {
		return jen.Id(text)
	}
	return code
}

// exprCode converts a source expression to jennifer code, rewriting
// package selectors into qualified references so jennifer tracks their
// imports in the generated file.
func exprCode(expr ast.Expr, imports map[string]string) (jen.Code, error) {
	switch e := expr.(type) {
	case *ast.Ident:
		return jen.Id(e.Name), nil
	case *ast.BasicLit:
		return jen.Id(e.Value), nil
	case *ast.SelectorExpr:
		if x, ok := e.X.(*ast.Ident); ok {
			if path, ok := imports[x.Name]; ok {
				return jen.Qual(path, e.Sel.Name), nil
			}
		}
		x, err := exprCode(e.X, imports)
		if err != nil {
			return nil, err
		}
		return jen.Add(x).Dot(e.Sel.Name), nil
	case *ast.StarExpr:
		x, err := exprCode(e.X, imports)
		if err != nil {
			return nil, err
		}
		return jen.Op("*").Add(x), nil
	case *ast.ParenExpr:
		x, err := exprCode(e.X, imports)
		if err != nil {
			return nil, err
		}
		return jen.Parens(x), nil
	case *ast.ArrayType:
		elt, err := exprCode(e.Elt, imports)
		if err != nil {
			return nil, err
		}
		if e.Len == nil {
			return jen.Index().Add(elt), nil
		}
		length, err := exprCode(e.Len, imports)
		if err != nil {
			return nil, err
		}
		return jen.Index(length).Add(elt), nil
	case *ast.MapType:
		key, err := exprCode(e.Key, imports)
		if err != nil {
			return nil, err
		}
		value, err := exprCode(e.Value, imports)
		if err != nil {
			return nil, err
		}
		return jen.Map(key).Add(value), nil
	case *ast.ChanType:
		value, err := exprCode(e.Value, imports)
		if err != nil {
			return nil, err
		}
		switch e.Dir {
		case ast.RECV:
			return jen.Op("<-").Chan().Add(value), nil
		case ast.SEND:
			return jen.Chan().Op("<-").Add(value), nil
		default:
			return jen.Chan().Add(value), nil
		}
	case *ast.FuncType:
		return funcTypeCode(e, imports)
	case *ast.InterfaceType:
		if e.Methods == nil || len(e.Methods.List) == 0 {
			return jen.Interface(), nil
		}
		return nil, fmt.Errorf("unsupported inline interface type")
	case *ast.StructType:
		if e.Fields == nil || len(e.Fields.List) == 0 {
			return jen.Struct(), nil
		}
		return nil, fmt.Errorf("unsupported inline struct type")
	case *ast.Ellipsis:
		elt, err := exprCode(e.Elt, imports)
		if err != nil {
			return nil, err
		}
		return jen.Op("...").Add(elt), nil
	case *ast.IndexExpr:
		x, err := exprCode(e.X, imports)
		if err != nil {
			return nil, err
		}
		index, err := exprCode(e.Index, imports)
		if err != nil {
			return nil, err
		}
		return jen.Add(x).Index(index), nil
	case *ast.IndexListExpr:
		x, err := exprCode(e.X, imports)
		if err != nil {
			return nil, err
		}
		indices, err := exprCodes(e.Indices, imports)
		if err != nil {
			return nil, err
		}
		return jen.Add(x).Index(jen.List(indices...)), nil
	case *ast.UnaryExpr:
		x, err := exprCode(e.X, imports)
		if err != nil {
			return nil, err
		}
		return jen.Op(e.Op.String()).Add(x), nil
	case *ast.BinaryExpr:
		x, err := exprCode(e.X, imports)
		if err != nil {
			return nil, err
		}
		y, err := exprCode(e.Y, imports)
		if err != nil {
			return nil, err
		}
		return jen.Add(x).Op(e.Op.String()).Add(y), nil
	case *ast.CallExpr:
		fun, err := exprCode(e.Fun, imports)
		if err != nil {
			return nil, err
		}
		args, err := exprCodes(e.Args, imports)
		if err != nil {
			return nil, err
		}
		if e.Ellipsis != token.NoPos && len(args) > 0 {
			args[len(args)-1] = jen.Add(args[len(args)-1]).Op("...")
		}
		return jen.Add(fun).Call(args...), nil
	case *ast.CompositeLit:
		elts, err := exprCodes(e.Elts, imports)
		if err != nil {
			return nil, err
		}
		if e.Type == nil {
			return jen.Values(elts...), nil
		}
		typ, err := exprCode(e.Type, imports)
		if err != nil {
			return nil, err
		}
		return jen.Add(typ).Values(elts...), nil
	case *ast.KeyValueExpr:
		key, err := exprCode(e.Key, imports)
		if err != nil {
			return nil, err
		}
		value, err := exprCode(e.Value, imports)
		if err != nil {
			return nil, err
		}
		return jen.Add(key).Op(":").Add(value), nil
	default:
		return nil, fmt.Errorf("unsupported expression %T", expr)
	}
}

// exprCodes converts a list of expressions.
func exprCodes(exprs []ast.Expr, imports map[string]string) ([]jen.Code, error) {
	codes := make([]jen.Code, 0, len(exprs))
	for _, expr := range exprs {
		code, err := exprCode(expr, imports)
		if err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, nil
}

// funcTypeCode converts an inline function type.
func funcTypeCode(ft *ast.FuncType, imports map[string]string) (jen.Code, error) {
	params, err := fieldListCodes(ft.Params, imports)
	if err != nil {
		return nil, err
	}
	code := jen.Func().Params(params...)
	if ft.Results != nil && len(ft.Results.List) > 0 {
		results, err := fieldListCodes(ft.Results, imports)
		if err != nil {
			return nil, err
		}
		code = code.Params(results...)
	}
	return code, nil
}

// fieldListCodes converts a parameter or result list, expanding shared
// type declarations like "a, b int" into one entry per name.
func fieldListCodes(list *ast.FieldList, imports map[string]string) ([]jen.Code, error) {
	if list == nil {
		return nil, nil
	}
	var codes []jen.Code
	for _, field := range list.List {
		typ, err := exprCode(field.Type, imports)
		if err != nil {
			return nil, err
		}
		if len(field.Names) == 0 {
			codes = append(codes, typ)
			continue
		}
		for _, name := range field.Names {
			codes = append(codes, jen.Id(name.Name).Add(typ))
		}
	}
	return codes, nil
}
