package load

import (
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"
)

// Config controls how source packages are scanned for annotated
// declarations.
type Config struct {
	// Dir is the directory Load resolves patterns relative to.
	// Empty means the current directory.
	Dir string
	// Patterns are go/packages load patterns (e.g. "./...").
	// Empty defaults to the package in Dir.
	Patterns []string
	// Types optionally restricts loading to the named target types.
	// Load fails if a requested type is not found.
	Types []string
	// BuildFlags are extra flags forwarded to the build system.
	BuildFlags []string
}

// Load scans the configured packages and returns the schemas of all
// marked struct declarations, in package and declaration order.
func Load(cfg *Config) ([]*Schema, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	patterns := cfg.Patterns
	if len(patterns) == 0 {
		patterns = []string{"."}
	}
	pkgs, err := packages.Load(&packages.Config{
		Mode:       packages.NeedName | packages.NeedFiles | packages.NeedSyntax,
		Dir:        cfg.Dir,
		BuildFlags: cfg.BuildFlags,
	}, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}

	var schemas []*Schema
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			errs := make([]error, 0, len(pkg.Errors))
			for _, perr := range pkg.Errors {
				errs = append(errs, perr)
			}
			return nil, fmt.Errorf("package %s: %w", pkg.PkgPath, errors.Join(errs...))
		}
		loaded, err := schemasFromPackage(pkg.Fset, pkg.Name, pkg.PkgPath, pkg.Syntax)
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, loaded...)
	}

	if len(cfg.Types) > 0 {
		schemas, err = filterTypes(schemas, cfg.Types)
		if err != nil {
			return nil, err
		}
	}
	return schemas, nil
}

// schemasFromPackage extracts the schemas of all marked declarations in
// one package and resolves their Validate hooks against the whole
// package's method set.
func schemasFromPackage(fset *token.FileSet, pkgName, pkgPath string, files []*ast.File) ([]*Schema, error) {
	var schemas []*Schema
	for _, file := range files {
		filename := fset.Position(file.Pos()).Filename
		loaded, err := schemasFromFile(file, filename, pkgName, pkgPath)
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, loaded...)
	}
	validators := validateHooks(files)
	for _, s := range schemas {
		s.HasValidator = validators[s.Name]
	}
	return schemas, nil
}

// schemasFromFile extracts the schemas of all marked declarations in a
// single parsed file.
func schemasFromFile(file *ast.File, filename, pkgName, pkgPath string) ([]*Schema, error) {
	imports := fileImports(file)
	var schemas []*Schema
	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok || !hasMarker(gd.Doc, ts.Doc) {
				continue
			}
			s, err := newSchema(ts, filename, pkgName, pkgPath, imports)
			if err != nil {
				return nil, err
			}
			schemas = append(schemas, s)
		}
	}
	return schemas, nil
}

// newSchema builds the schema of one marked type declaration.
func newSchema(ts *ast.TypeSpec, filename, pkgName, pkgPath string, imports map[string]string) (*Schema, error) {
	st, ok := ts.Type.(*ast.StructType)
	if !ok {
		return nil, fmt.Errorf("type %q: the builder marker supports struct types only", ts.Name.Name)
	}
	s := &Schema{
		Name:    ts.Name.Name,
		Pkg:     pkgName,
		PkgPath: pkgPath,
		Dir:     filepath.Dir(filename),
		File:    filename,
		Imports: imports,
	}
	if ts.TypeParams != nil {
		for _, param := range ts.TypeParams.List {
			for _, name := range param.Names {
				s.TypeParams = append(s.TypeParams, &TypeParam{
					Name:           name.Name,
					Constraint:     param.Type,
					ConstraintText: types.ExprString(param.Type),
				})
			}
		}
	}
	pos := 0
	for _, field := range st.Fields.List {
		if len(field.Names) == 0 {
			return nil, fmt.Errorf("type %q: embedded fields are not supported", s.Name)
		}
		for _, name := range field.Names {
			f, err := newField(name.Name, field.Type, types.ExprString(field.Type), field.Tag, field.Doc, field.Comment, pos)
			if err != nil {
				return nil, fmt.Errorf("type %q: %w", s.Name, err)
			}
			s.Fields = append(s.Fields, f)
			pos++
		}
	}
	return s, nil
}

// fileImports maps the local names of a file's imports to their paths.
// Unnamed imports fall back to the path base, which matches the package
// name for all conventional layouts.
func fileImports(file *ast.File) map[string]string {
	imports := make(map[string]string, len(file.Imports))
	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		name := ImportBase(path)
		if spec.Name != nil {
			name = spec.Name.Name
		}
		if name == "_" || name == "." {
			continue
		}
		imports[name] = path
	}
	return imports
}

// ImportBase guesses the local package name of an import path,
// handling major-version elements ("pkg/v2") and gopkg-style suffixes
// ("yaml.v3"). Aliased imports bypass this entirely.
func ImportBase(path string) string {
	base := filepath.Base(path)
	if len(base) > 1 && base[0] == 'v' && strings.TrimLeft(base[1:], "0123456789") == "" {
		base = filepath.Base(filepath.Dir(path))
	}
	if i := strings.IndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return base
}

// validateHooks returns the set of type names declaring a
// "Validate() error" method with a value or pointer receiver.
func validateHooks(files []*ast.File) map[string]bool {
	hooks := make(map[string]bool)
	for _, file := range files {
		for _, decl := range file.Decls {
			fd, ok := decl.(*ast.FuncDecl)
			if !ok || fd.Recv == nil || fd.Name.Name != "Validate" {
				continue
			}
			if fd.Type.Params.NumFields() != 0 || fd.Type.Results.NumFields() != 1 {
				continue
			}
			res, ok := fd.Type.Results.List[0].Type.(*ast.Ident)
			if !ok || res.Name != "error" {
				continue
			}
			if name, ok := receiverType(fd.Recv); ok {
				hooks[name] = true
			}
		}
	}
	return hooks
}

// receiverType returns the base type name of a method receiver,
// unwrapping pointers and type-parameter instantiations.
func receiverType(recv *ast.FieldList) (string, bool) {
	if len(recv.List) != 1 {
		return "", false
	}
	expr := recv.List[0].Type
	for {
		switch t := expr.(type) {
		case *ast.StarExpr:
			expr = t.X
		case *ast.IndexExpr:
			expr = t.X
		case *ast.IndexListExpr:
			expr = t.X
		case *ast.Ident:
			return t.Name, true
		default:
			return "", false
		}
	}
}

// filterTypes keeps only the requested type names, failing when one of
// them was not found in the loaded packages.
func filterTypes(schemas []*Schema, names []string) ([]*Schema, error) {
	want := make(map[string]bool, len(names))
	for _, name := range names {
		want[name] = true
	}
	var kept []*Schema
	for _, s := range schemas {
		if want[s.Name] {
			kept = append(kept, s)
			delete(want, s.Name)
		}
	}
	if len(want) > 0 {
		missing := make([]string, 0, len(want))
		for name := range want {
			missing = append(missing, name)
		}
		sort.Strings(missing)
		return nil, fmt.Errorf("types not found: %s", strings.Join(missing, ", "))
	}
	return kept, nil
}
