// tessera generates primary-key builders and table bindings for
// annotated Go structs.
//
// Usage:
//
//	tessera [flags] [schema dir]
//
// The schema directory defaults to the current directory, or to the
// "schema" entry of tessera.yaml when one is present. The import path
// of the schema package is derived from the enclosing go.mod unless
// set explicitly.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/mod/modfile"
	"gopkg.in/yaml.v3"

	"github.com/tesseradb/tessera/compiler/gen"
	"github.com/tesseradb/tessera/compiler/load"
)

// fileConfig mirrors the tessera.yaml layout. Flags override file
// entries.
type fileConfig struct {
	Schema  string `yaml:"schema"`
	Package string `yaml:"package"`
	Target  string `yaml:"target"`
	Header  string `yaml:"header"`
	Workers int    `yaml:"workers"`
}

func main() {
	var (
		configPath = flag.String("config", "", "path to tessera.yaml")
		pkgPath    = flag.String("pkg", "", "import path of the schema package (default: derived from go.mod)")
		target     = flag.String("target", "", "output directory (default: the schema directory)")
		workers    = flag.Int("workers", 0, "number of parallel file writers")
		watch      = flag.Bool("watch", false, "regenerate when schema files change")
	)
	flag.Parse()

	cfg := fileConfig{Schema: "."}
	switch {
	case *configPath != "":
		if err := readConfig(*configPath, &cfg); err != nil {
			fatal(err)
		}
	default:
		if err := readConfig("tessera.yaml", &cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			fatal(err)
		}
	}
	if flag.NArg() > 0 {
		cfg.Schema = flag.Arg(0)
	}
	if *pkgPath != "" {
		cfg.Package = *pkgPath
	}
	if *target != "" {
		cfg.Target = *target
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}

	dir, err := filepath.Abs(cfg.Schema)
	if err != nil {
		fatal(err)
	}
	if cfg.Package == "" {
		cfg.Package, err = resolvePackage(dir)
		if err != nil {
			fatal(err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := generate(ctx, cfg, dir); err != nil {
		fatal(err)
	}
	if *watch {
		if err := watchLoop(ctx, cfg, dir); err != nil {
			fatal(err)
		}
	}
}

// generate runs one load and emit pass over the schema directory.
func generate(ctx context.Context, cfg fileConfig, dir string) error {
	pkg, err := load.ParseDir(dir)
	if err != nil {
		return err
	}
	if len(pkg.Schemas) == 0 {
		fmt.Fprintf(os.Stderr, "tessera: no table types found in %s\n", dir)
		return nil
	}
	opts := []gen.Option{gen.WithPackage(cfg.Package)}
	if cfg.Target != "" {
		opts = append(opts, gen.WithTarget(cfg.Target))
	}
	if cfg.Header != "" {
		opts = append(opts, gen.WithHeader(cfg.Header))
	}
	if cfg.Workers > 0 {
		opts = append(opts, gen.WithWorkers(cfg.Workers))
	}
	g, err := gen.NewGenerator(pkg, opts...)
	if err != nil {
		return err
	}
	if err := g.Generate(ctx); err != nil {
		return err
	}
	for _, t := range g.Tables {
		fmt.Printf("tessera: generated %s (table %q, %d columns)\n", t.Name, t.TableName(), len(t.Fields))
	}
	return nil
}

// watchLoop regenerates on changes to schema sources until the context
// is canceled. Events are debounced so editors that write in multiple
// steps trigger a single pass.
func watchLoop(ctx context.Context, cfg fileConfig, dir string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}
	fmt.Printf("tessera: watching %s\n", dir)

	var debounce *time.Timer
	runs := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "tessera: watch error: %v\n", err)
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !schemaSource(ev.Name) || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(250*time.Millisecond, func() {
				select {
				case runs <- struct{}{}:
				default:
				}
			})
		case <-runs:
			if err := generate(ctx, cfg, dir); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		}
	}
}

// schemaSource reports if a changed path is a schema source rather
// than a test file or one of our own outputs.
func schemaSource(path string) bool {
	name := filepath.Base(path)
	switch {
	case !strings.HasSuffix(name, ".go"):
		return false
	case strings.HasSuffix(name, "_test.go"):
		return false
	case strings.HasSuffix(name, "_pk.go"), strings.HasSuffix(name, "_table.go"):
		return false
	}
	return true
}

// readConfig loads a tessera.yaml file.
func readConfig(path string, cfg *fileConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("tessera: parse %s: %w", path, err)
	}
	return nil
}

// resolvePackage derives the import path of the schema directory from
// the enclosing module's go.mod.
func resolvePackage(dir string) (string, error) {
	root := dir
	for {
		data, err := os.ReadFile(filepath.Join(root, "go.mod"))
		if err == nil {
			mod := modfile.ModulePath(data)
			if mod == "" {
				return "", fmt.Errorf("tessera: no module path in %s", filepath.Join(root, "go.mod"))
			}
			rel, err := filepath.Rel(root, dir)
			if err != nil {
				return "", err
			}
			if rel == "." {
				return mod, nil
			}
			return mod + "/" + filepath.ToSlash(rel), nil
		}
		parent := filepath.Dir(root)
		if parent == root {
			return "", fmt.Errorf("tessera: no go.mod above %s, set the package import path explicitly", dir)
		}
		root = parent
	}
}

// fatal prints the error and exits. Compiler errors carry their own
// "tessera:" prefix already.
func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
