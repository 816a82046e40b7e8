package load

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/tesseradb/tessera/schema/coltype"
)

// Package holds all annotated schemas found in a single directory.
type Package struct {
	// Name is the package name from the package clause.
	Name string
	// Dir is the directory the package was loaded from.
	Dir string
	// Schemas holds the annotated structs in file, then declaration order.
	Schemas []*Schema
}

// ParseDir loads every annotated struct from the Go package in dir.
// Generated files (carrying a "Code generated" header) and test files
// are skipped. The directory must hold exactly one non-test package.
func ParseDir(dir string) (*Package, error) {
	fset := token.NewFileSet()
	pkgs, err := parser.ParseDir(fset, dir, func(fi os.FileInfo) bool {
		return !strings.HasSuffix(fi.Name(), "_test.go")
	}, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("load: parse %s: %w", dir, err)
	}
	p := &Package{Dir: dir}
	var (
		files []*ast.File
		names []string
	)
	for _, pkg := range pkgs {
		if strings.HasSuffix(pkg.Name, "_test") {
			continue
		}
		names = append(names, pkg.Name)
		p.Name = pkg.Name
		for _, name := range sortedKeys(pkg.Files) {
			f := pkg.Files[name]
			if isGenerated(f) {
				continue
			}
			files = append(files, f)
		}
	}
	if len(names) > 1 {
		sort.Strings(names)
		return nil, fmt.Errorf("load: multiple packages (%s) in %s", strings.Join(names, ", "), dir)
	}
	decls := packageTypeDecls(files)
	var errs []error
	for _, f := range files {
		schemas, err := parseFile(fset, f, decls)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		p.Schemas = append(p.Schemas, schemas...)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return p, nil
}

// ParseFile loads the annotated structs of a single source file.
func ParseFile(name string) (*Package, error) {
	src, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	return ParseSource(name, src)
}

// ParseSource loads the annotated structs of a single source buffer.
func ParseSource(name string, src []byte) (*Package, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, name, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("load: parse %s: %w", name, err)
	}
	schemas, err := parseFile(fset, f, packageTypeDecls([]*ast.File{f}))
	if err != nil {
		return nil, err
	}
	return &Package{
		Name:    f.Name.Name,
		Dir:     filepath.Dir(name),
		Schemas: schemas,
	}, nil
}

// parseFile extracts the annotated schemas of one file. Attribute errors
// accumulate across declarations and are surfaced together.
func parseFile(fset *token.FileSet, f *ast.File, decls map[string]ast.Expr) ([]*Schema, error) {
	imports := fileImports(f)
	var (
		schemas []*Schema
		errs    []error
	)
	for _, decl := range f.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			ts := spec.(*ast.TypeSpec)
			args, ok := directive(ts, gd)
			if !ok {
				continue
			}
			s, err := parseSchema(fset, ts, args, imports, decls)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			schemas = append(schemas, s)
		}
	}
	return schemas, errors.Join(errs...)
}

func parseSchema(fset *token.FileSet, ts *ast.TypeSpec, args string, imports map[string]string, decls map[string]ast.Expr) (*Schema, error) {
	pos := fset.Position(ts.Name.Pos())
	s := &Schema{
		Name: ts.Name.Name,
		Pos:  pos,
	}
	if err := s.parseDirective(args); err != nil {
		return nil, fmt.Errorf("%s: %s: %w", pos, s.Name, err)
	}
	st, ok := ts.Type.(*ast.StructType)
	if !ok {
		return nil, fmt.Errorf("%s: unsupported shape: %s is not a struct with named fields", pos, s.Name)
	}
	if ts.TypeParams != nil {
		for _, p := range ts.TypeParams.List {
			for _, name := range p.Names {
				s.TypeParams = append(s.TypeParams, name.Name)
			}
		}
	}
	resolve := func(expr string) (Ref, error) {
		return resolveRef(expr, imports)
	}
	var errs []error
	for _, fd := range st.Fields.List {
		if len(fd.Names) == 0 {
			errs = append(errs, fmt.Errorf("%s: unsupported shape: %s has embedded fields", fset.Position(fd.Pos()), s.Name))
			continue
		}
		tag := fieldTag(fd)
		if tag == "-" {
			continue
		}
		info := exprInfo(fd.Type, imports, decls)
		for _, name := range fd.Names {
			lf := &Field{
				Name:     name.Name,
				Pos:      fset.Position(name.Pos()),
				Info:     info,
				Nullable: info.Nillable,
			}
			if err := lf.parseTag(tag, resolve); err != nil {
				errs = append(errs, fmt.Errorf("%s: %s: %w", lf.Pos, s.Name, err))
				continue
			}
			s.Fields = append(s.Fields, lf)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	s.resolveNames()
	return s, nil
}

// directive returns the arguments following the tessera:table marker in
// the type's doc comment, preferring the spec doc over the decl doc.
func directive(ts *ast.TypeSpec, gd *ast.GenDecl) (string, bool) {
	for _, doc := range []*ast.CommentGroup{ts.Doc, gd.Doc} {
		if doc == nil {
			continue
		}
		for _, c := range doc.List {
			line := strings.TrimPrefix(c.Text, "//")
			if rest, ok := strings.CutPrefix(line, Directive); ok {
				if rest == "" || rest[0] == ' ' || rest[0] == '\t' {
					return strings.TrimSpace(rest), true
				}
			}
		}
	}
	return "", false
}

func fieldTag(fd *ast.Field) string {
	if fd.Tag == nil {
		return ""
	}
	raw, err := strconv.Unquote(fd.Tag.Value)
	if err != nil {
		return ""
	}
	return reflect.StructTag(raw).Get(TagKey)
}

// exprInfo builds the type info of a field type expression. Pointer
// types are recorded as nillable; named package-local types resolve
// their storage class through the package's type declarations.
func exprInfo(expr ast.Expr, imports map[string]string, decls map[string]ast.Expr) *coltype.TypeInfo {
	info := &coltype.TypeInfo{}
	if star, ok := expr.(*ast.StarExpr); ok {
		info.Nillable = true
		expr = star.X
	}
	info.Ident = types.ExprString(expr)
	if sel, ok := expr.(*ast.SelectorExpr); ok {
		if x, ok := sel.X.(*ast.Ident); ok {
			info.PkgPath = imports[x.Name]
		}
	}
	info.Type = coltype.FromGoType(underlying(info.Ident, decls))
	return info
}

// underlying chases package-local named types to a builtin literal, so
// `type ShardID string` maps to the string storage class.
func underlying(ident string, decls map[string]ast.Expr) string {
	seen := map[string]bool{}
	for !seen[ident] {
		seen[ident] = true
		expr, ok := decls[ident]
		if !ok {
			return ident
		}
		ident = types.ExprString(expr)
	}
	return ident
}

// packageTypeDecls collects the package-level type declarations, keyed
// by name, for underlying-type resolution.
func packageTypeDecls(files []*ast.File) map[string]ast.Expr {
	decls := make(map[string]ast.Expr)
	for _, f := range files {
		for _, decl := range f.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			for _, spec := range gd.Specs {
				ts := spec.(*ast.TypeSpec)
				decls[ts.Name.Name] = ts.Type
			}
		}
	}
	return decls
}

// fileImports maps local package names to import paths for one file.
func fileImports(f *ast.File) map[string]string {
	imports := make(map[string]string, len(f.Imports))
	for _, imp := range f.Imports {
		p, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}
		name := path.Base(p)
		if imp.Name != nil {
			name = imp.Name.Name
		}
		imports[name] = p
	}
	return imports
}

// resolveRef resolves a with/serde type expression against the file's
// imports. The expression is either an identifier or pkg.Ident.
func resolveRef(expr string, imports map[string]string) (Ref, error) {
	pkg, ident, qualified := strings.Cut(expr, ".")
	if !qualified {
		if !validIdent(expr) {
			return Ref{}, fmt.Errorf("type %q is not a valid identifier", expr)
		}
		return Ref{Ident: expr}, nil
	}
	if !validIdent(pkg) || !validIdent(ident) {
		return Ref{}, fmt.Errorf("type %q is not a valid identifier", expr)
	}
	p, ok := imports[pkg]
	if !ok {
		return Ref{}, fmt.Errorf("type %q references unknown package %q", expr, pkg)
	}
	return Ref{Ident: ident, PkgPath: p}, nil
}

func isGenerated(f *ast.File) bool {
	for _, cg := range f.Comments {
		if cg.Pos() > f.Package {
			break
		}
		for _, c := range cg.List {
			if strings.HasPrefix(c.Text, "// Code generated") && strings.HasSuffix(c.Text, "DO NOT EDIT.") {
				return true
			}
		}
	}
	return false
}

func sortedKeys(m map[string]*ast.File) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
