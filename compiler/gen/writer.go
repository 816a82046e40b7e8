package gen

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dave/jennifer/jen"
	"golang.org/x/tools/imports"
)

// asset pairs a generated file with its target path on disk.
type asset struct {
	path string
	file *jen.File
}

// schemaFile creates an empty generated file belonging to the loaded
// package. Qualified references to the package itself render
// unqualified.
func (g *Generator) schemaFile() *jen.File {
	f := jen.NewFilePathName(g.Package, g.pkg.Name)
	f.HeaderComment(g.Header)
	return f
}

// columnFile creates the empty column subpackage file of a table.
func (g *Generator) columnFile(t *Table) *jen.File {
	f := jen.NewFilePathName(t.columnPkgPath(), t.ColumnModule)
	f.HeaderComment(g.Header)
	f.PackageComment(fmt.Sprintf("Package %s holds the generated column bindings of the %s table.", t.ColumnModule, t.DisplayName()))
	return f
}

// writeFile renders a generated file, runs the import grouping and
// formatting pass over it, and writes the result to disk.
func (g *Generator) writeFile(t *Table, a asset) error {
	var buf bytes.Buffer
	if err := a.file.Render(&buf); err != nil {
		return NewGenerationError(t.Name, a.path, "render", err)
	}
	src, err := imports.Process(a.path, buf.Bytes(), nil)
	if err != nil {
		return NewGenerationError(t.Name, a.path, "format", err)
	}
	if err := os.MkdirAll(filepath.Dir(a.path), 0o755); err != nil {
		return NewGenerationError(t.Name, a.path, "create directory", err)
	}
	if err := os.WriteFile(a.path, src, 0o644); err != nil {
		return NewGenerationError(t.Name, a.path, "write", err)
	}
	return nil
}
