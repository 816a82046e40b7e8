package gen

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"

	"github.com/go-openapi/inflect"
	"golang.org/x/sync/errgroup"

	"github.com/tesseradb/tessera/compiler/load"
)

// Generator holds the validated tables of one loaded package and emits
// their generated files.
type Generator struct {
	*Config
	pkg    *load.Package
	Tables []*Table
}

// NewGenerator validates every schema of the loaded package and creates
// a generator for it. Validation failures across tables are joined, so
// a single run reports all invalid tables instead of the first.
func NewGenerator(pkg *load.Package, opts ...Option) (*Generator, error) {
	c, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	if c.Package == "" {
		return nil, NewConfigError("Package", nil, "import path is required")
	}
	if c.Target == "" {
		c.Target = pkg.Dir
	}
	g := &Generator{Config: c, pkg: pkg}
	var errs []error
	for _, schema := range pkg.Schemas {
		t, err := NewTable(c, schema)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		g.Tables = append(g.Tables, t)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return g, nil
}

// Generate emits and writes the files of every table: the key builder
// and table bindings next to the package sources, and the column
// subpackage below them. Files are written in parallel, bounded by the
// configured worker count.
func (g *Generator) Generate(ctx context.Context) error {
	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(g.workers())
	for _, t := range g.Tables {
		for _, a := range g.assets(t) {
			t, a := t, a
			grp.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				return g.writeFile(t, a)
			})
		}
	}
	return grp.Wait()
}

// assets emits the three generated files of a table.
func (g *Generator) assets(t *Table) []asset {
	snake := inflect.Underscore(t.Name)
	return []asset{
		{path: filepath.Join(g.Target, snake+"_pk.go"), file: g.genPk(t)},
		{path: filepath.Join(g.Target, snake+"_table.go"), file: g.genTable(t)},
		{path: filepath.Join(g.Target, t.ColumnModule, t.ColumnModule+".go"), file: g.genColumns(t)},
	}
}

func (g *Generator) workers() int {
	if g.Workers > 0 {
		return g.Workers
	}
	return runtime.GOMAXPROCS(0)
}
