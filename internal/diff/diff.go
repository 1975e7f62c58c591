// Package diff computes the DDL statements that turn a current schema into an
// expected one.
package diff

import (
	"github.com/tordrt/kgschema/internal/schema"
)

// Result holds the statements of one diff run, grouped in the order they
// have to be executed
type Result struct {
	DropKeys        []string
	DropForeignKeys []string
	DropPrimaryKeys []string
	CreateTables    []string
	AlterTables     []string
	AddForeignKeys  []string
	AddPrimaryKeys  []string
	AddKeys         []string
	DropTables      []string
}

// Bucket is a named group of statements
type Bucket struct {
	Name       string
	Statements []string
}

// Buckets returns all groups in execution order, including empty ones
func (r *Result) Buckets() []Bucket {
	return []Bucket{
		{"dropKeys", r.DropKeys},
		{"dropForeignKeys", r.DropForeignKeys},
		{"dropPrimaryKeys", r.DropPrimaryKeys},
		{"createTables", r.CreateTables},
		{"alterTables", r.AlterTables},
		{"addForeignKeys", r.AddForeignKeys},
		{"addPrimaryKeys", r.AddPrimaryKeys},
		{"addKeys", r.AddKeys},
		{"dropTables", r.DropTables},
	}
}

// Statements returns all statements in execution order
func (r *Result) Statements() []string {
	var out []string
	for _, b := range r.Buckets() {
		out = append(out, b.Statements...)
	}
	return out
}

// Len returns the total number of statements
func (r *Result) Len() int {
	n := 0
	for _, b := range r.Buckets() {
		n += len(b.Statements)
	}
	return n
}

// IsEmpty reports whether no statement was produced
func (r *Result) IsEmpty() bool {
	return r.Len() == 0
}

// Compute compares expected against current. Tables are visited in the
// order of expected, dropped tables in the order of current
func Compute(expected, current *schema.Schema) *Result {
	r := &Result{}

	if expected != nil {
		for _, table := range expected.Tables {
			existing, ok := current.Table(table.Name)
			if !ok {
				r.createTable(table)
				continue
			}
			r.alterTable(table, existing)
		}
	}

	if current != nil {
		for _, table := range current.Tables {
			if _, ok := expected.Table(table.Name); !ok {
				r.DropTables = append(r.DropTables, table.DropStatement())
			}
		}
	}

	return r
}

func (r *Result) createTable(table *schema.Table) {
	r.CreateTables = append(r.CreateTables, table.CreateStatement())
	r.AddForeignKeys = append(r.AddForeignKeys, table.AddConstraintStatements()...)
	if pk := table.PrimaryKey(); len(pk) > 0 {
		r.AddPrimaryKeys = append(r.AddPrimaryKeys, schema.AddPrimaryKeyStatement(table.Name, pk...))
	}
	r.AddKeys = append(r.AddKeys, table.AddIndexStatements()...)
}

func (r *Result) alterTable(expected, current *schema.Table) {
	// MODIFY ... AUTO_INCREMENT needs the column to be a key already, so
	// these go after all key statements of the table
	var autoIncrement []string
	// primary key changes are collected so the table gets at most one
	// drop and one add
	var addPrimaryKey []string
	dropPrimaryKey := false

	for _, col := range expected.Columns() {
		old, ok := current.Column(col.Name)
		if !ok {
			r.AlterTables = append(r.AlterTables, col.AddStatement(expected.Name))
			if col.IsAutoIncrement {
				autoIncrement = append(autoIncrement, col.AutoIncrementStatement(expected.Name))
			}
			if col.IsPrimaryKey {
				addPrimaryKey = append(addPrimaryKey, col.Name)
			}
			if col.Constraint != nil {
				r.AddForeignKeys = append(r.AddForeignKeys, col.Constraint.AddStatement(expected.Name))
			}
			continue
		}

		if col.DefinitionDiffers(old) {
			keepAutoIncrement := col.IsAutoIncrement && old.IsAutoIncrement
			r.AlterTables = append(r.AlterTables, col.ChangeStatement(expected.Name, keepAutoIncrement))
			if col.IsAutoIncrement && !old.IsAutoIncrement {
				autoIncrement = append(autoIncrement, col.AutoIncrementStatement(expected.Name))
			}
		}

		switch {
		case col.IsPrimaryKey && !old.IsPrimaryKey:
			addPrimaryKey = append(addPrimaryKey, col.Name)
		case !col.IsPrimaryKey && old.IsPrimaryKey:
			dropPrimaryKey = true
		}

		r.diffConstraint(expected.Name, col.Constraint, old.Constraint)
	}

	if dropPrimaryKey {
		r.DropPrimaryKeys = append(r.DropPrimaryKeys, schema.DropPrimaryKeyStatement(expected.Name))
	}
	if len(addPrimaryKey) > 0 {
		r.AddPrimaryKeys = append(r.AddPrimaryKeys, schema.AddPrimaryKeyStatement(expected.Name, addPrimaryKey...))
	}

	for _, idx := range expected.Indexes() {
		old, ok := current.Index(idx.Name)
		if !ok {
			r.AddKeys = append(r.AddKeys, idx.AddStatement(expected.Name))
			continue
		}
		if idx.Differs(old) {
			r.DropKeys = append(r.DropKeys, old.DropStatement(expected.Name))
			r.AddKeys = append(r.AddKeys, idx.AddStatement(expected.Name))
		}
	}

	r.AddKeys = append(r.AddKeys, autoIncrement...)
}

func (r *Result) diffConstraint(table string, expected, current *schema.Constraint) {
	switch {
	case expected == nil && current == nil:
		return
	case expected == nil:
		r.DropForeignKeys = append(r.DropForeignKeys, current.DropStatement(table))
	case expected.Differs(current):
		r.AddForeignKeys = append(r.AddForeignKeys, expected.AddStatement(table))
		if current != nil {
			r.DropForeignKeys = append(r.DropForeignKeys, current.DropStatement(table))
		}
	}
}
