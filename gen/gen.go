// Package gen emits per-model column constants so query builders get a
// typed column set instead of bare strings.
package gen

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/go-openapi/inflect"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/tools/imports"
)

// Column describes one generated column: its database name and the Go
// type tag used for the constant.
type Column struct {
	Name     string
	TypeName string
}

// Model describes one entity to generate constants for.
type Model struct {
	Name    string // exported Go name, e.g. "User"
	Table   string // backing table; pluralized from Name when empty
	Columns []Column
}

// TableName returns the configured table, or the pluralized snake-case
// form of the model name.
func (m *Model) TableName() string {
	if m.Table != "" {
		return m.Table
	}
	return inflect.Pluralize(inflect.Underscore(m.Name))
}

// A Generator writes one source file per model into a target package.
type Generator struct {
	pkg     string
	outDir  string
	workers int
}

// New returns a generator targeting the package at outDir.
func New(pkg, outDir string) *Generator {
	return &Generator{pkg: pkg, outDir: outDir, workers: 4}
}

// Generate writes every model's file, running the renders in parallel.
func (g *Generator) Generate(ctx context.Context, models []*Model) error {
	if err := os.MkdirAll(g.outDir, 0o755); err != nil {
		return fmt.Errorf("gen: create %s: %w", g.outDir, err)
	}
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for _, m := range models {
		m := m
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			src, err := g.Source(m)
			if err != nil {
				return err
			}
			path := filepath.Join(g.outDir, inflect.Underscore(m.Name)+"_columns.go")
			if err := os.WriteFile(path, src, 0o644); err != nil {
				return fmt.Errorf("gen: write %s: %w", path, err)
			}
			return nil
		})
	}
	return eg.Wait()
}

// Source renders one model's file, formatted through goimports.
func (g *Generator) Source(m *Model) ([]byte, error) {
	if m.Name == "" {
		return nil, fmt.Errorf("gen: model without a name")
	}
	if len(m.Columns) == 0 {
		return nil, fmt.Errorf("gen: model %s has no columns", m.Name)
	}
	columnType := m.Name + "Column"
	f := jen.NewFile(g.pkg)
	f.HeaderComment("Code generated by veldt gen. DO NOT EDIT.")

	f.Comment(columnType + " names a column of the " + m.TableName() + " table.")
	f.Type().Id(columnType).String()

	f.Comment(m.Name + "Table is the table backing the " + m.Name + " model.")
	f.Const().Id(m.Name + "Table").Op("=").Lit(m.TableName())

	f.Const().DefsFunc(func(group *jen.Group) {
		for _, c := range m.Columns {
			group.Id(m.Name + exportedName(c.Name)).Id(columnType).Op("=").Lit(c.Name)
		}
	})

	f.Comment(m.Name + "Columns lists the columns in declaration order.")
	f.Func().Id(m.Name + "Columns").Params().Index().String().Block(
		jen.Return(jen.Index().String().ValuesFunc(func(group *jen.Group) {
			for _, c := range m.Columns {
				group.Lit(c.Name)
			}
		})),
	)

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("gen: render %s: %w", m.Name, err)
	}
	formatted, err := imports.Process(inflect.Underscore(m.Name)+"_columns.go", buf.Bytes(), nil)
	if err != nil {
		return nil, fmt.Errorf("gen: format %s: %w", m.Name, err)
	}
	return formatted, nil
}

// initialisms keeps conventional Go casing for common short names.
var initialisms = map[string]bool{
	"id": true, "uuid": true, "url": true, "ip": true,
	"sql": true, "json": true, "api": true, "html": true,
}

var titleCaser = cases.Title(language.English)

// exportedName turns a snake_case column name into an exported Go
// identifier.
func exportedName(name string) string {
	parts := strings.Split(name, "_")
	for i, part := range parts {
		if initialisms[part] {
			parts[i] = strings.ToUpper(part)
		} else {
			parts[i] = titleCaser.String(part)
		}
	}
	return strings.Join(parts, "")
}
