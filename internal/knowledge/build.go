// Package knowledge converts between a knowledge graph and a relational
// schema: it builds the expected tables of database-backed classes and
// renders knowledge documents for existing tables.
package knowledge

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tordrt/kgschema/internal/rdf"
	"github.com/tordrt/kgschema/internal/schema"
	"github.com/tordrt/kgschema/internal/typemap"
)

var (
	ErrNoNodeShape      = errors.New("class has no NodeShape")
	ErrMissingClassName = errors.New("class has no dwm:className")
)

// Builder derives the expected schema from a knowledge graph
type Builder struct {
	logger *zap.Logger
}

// NewBuilder creates a new Builder
func NewBuilder(logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{logger: logger}
}

// Build returns one table per class with dwm:isStoredInDatabase "true", in
// graph order
func (b *Builder) Build(g *rdf.Graph) (*schema.Schema, error) {
	s := &schema.Schema{}

	for _, class := range g.EntriesWithPropertyValue("dwm:isStoredInDatabase", "true").Entries() {
		table, err := b.buildTable(g, class)
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", class.ID(), err)
		}
		if err := s.AddTable(table); err != nil {
			return nil, err
		}
		b.logger.Debug("built expected table",
			zap.String("table", table.Name),
			zap.Int("columns", len(table.Columns())),
			zap.Int("indexes", len(table.Indexes())))
	}

	return s, nil
}

func (b *Builder) buildTable(g *rdf.Graph, class *rdf.Entry) (*schema.Table, error) {
	if !class.HasProperty("dwm:className") {
		return nil, ErrMissingClassName
	}
	className, err := class.Value("dwm:className")
	if err != nil {
		return nil, err
	}

	info, err := g.PropertyInfoForNodeShape(class.ID())
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, ErrNoNodeShape
	}

	table := schema.NewTable(className.IDOrValue())
	for _, d := range info.All() {
		if d.IsList() {
			b.logger.Debug("skipping list property",
				zap.String("table", table.Name),
				zap.String("property", d.PropertyName))
			continue
		}

		col, err := Column(d)
		if err != nil {
			return nil, err
		}
		if err := table.AddColumn(col); err != nil {
			return nil, err
		}

		if d.Index != nil {
			if err := table.AddIndex(&schema.Index{
				Name:       d.Index.Name,
				ColumnName: col.Name,
				IsUnique:   d.Index.IsUnique,
				IndexType:  d.Index.Type,
			}); err != nil {
				return nil, err
			}
		}
	}

	return table, nil
}

// Column maps a property descriptor to the column it is stored in
func Column(d *rdf.PropertyDescriptor) (*schema.Column, error) {
	columnType, err := typemap.ColumnType(d)
	if err != nil {
		return nil, err
	}
	typ, length := schema.SplitColumnType(columnType)

	col := &schema.Column{
		Name:            d.PropertyName,
		Type:            typ,
		Length:          length,
		CanBeNull:       !d.IsRequired(),
		IsPrimaryKey:    d.IsPrimaryKey != nil && *d.IsPrimaryKey,
		IsAutoIncrement: d.IsAutoIncrement != nil && *d.IsAutoIncrement,
		DefaultValue:    d.DefaultValue,
	}

	if k := d.Constraint; k != nil {
		col.Constraint = &schema.Constraint{
			Name:             k.Name,
			ColumnName:       k.ColumnName,
			ReferencedTable:  k.ReferencedTable,
			ReferencedColumn: k.ReferencedColumnName,
			OnUpdate:         k.UpdateRule,
			OnDelete:         k.DeleteRule,
		}
	}

	return col, nil
}
