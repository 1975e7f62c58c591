package schema

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateTable  = errors.New("schema already has a table with this name")
	ErrDuplicateColumn = errors.New("table already has a column with this name")
	ErrDuplicateIndex  = errors.New("table already has an index with this name")
)

// Table options used for every CREATE TABLE statement
const (
	Engine  = "InnoDB"
	Charset = "utf8mb4"
	Collate = "utf8mb4_unicode_520_ci"
)

// Schema represents a set of tables in insertion order
type Schema struct {
	Tables []*Table
}

// NewSchema creates a schema from tables, rejecting duplicate names
func NewSchema(tables ...*Table) (*Schema, error) {
	s := &Schema{}
	for _, t := range tables {
		if err := s.AddTable(t); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// AddTable appends a table
func (s *Schema) AddTable(t *Table) error {
	if _, ok := s.Table(t.Name); ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTable, t.Name)
	}
	s.Tables = append(s.Tables, t)
	return nil
}

// Table returns the table with the given name
func (s *Schema) Table(name string) (*Table, bool) {
	if s == nil {
		return nil, false
	}
	for _, t := range s.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// TableNames returns the table names in order
func (s *Schema) TableNames() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.Tables))
	for _, t := range s.Tables {
		names = append(names, t.Name)
	}
	return names
}

// Without returns a schema sharing the tables of s except the excluded ones
func (s *Schema) Without(excluded ...string) *Schema {
	skip := make(map[string]bool, len(excluded))
	for _, name := range excluded {
		skip[name] = true
	}

	out := &Schema{}
	if s == nil {
		return out
	}
	for _, t := range s.Tables {
		if !skip[t.Name] {
			out.Tables = append(out.Tables, t)
		}
	}
	return out
}

// Table represents a database table. Columns and indexes keep the order in
// which they were added; DDL is emitted in that order
type Table struct {
	Name    string
	columns []*Column
	indexes []*Index
}

// NewTable creates an empty table
func NewTable(name string) *Table {
	return &Table{Name: name}
}

// AddColumn appends a column
func (t *Table) AddColumn(c *Column) error {
	if _, ok := t.Column(c.Name); ok {
		return fmt.Errorf("%w: %s.%s", ErrDuplicateColumn, t.Name, c.Name)
	}
	t.columns = append(t.columns, c)
	return nil
}

// Column returns the column with the given name
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Columns returns the columns in order
func (t *Table) Columns() []*Column {
	out := make([]*Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// AddIndex appends an index
func (t *Table) AddIndex(i *Index) error {
	if _, ok := t.Index(i.Name); ok {
		return fmt.Errorf("%w: %s.%s", ErrDuplicateIndex, t.Name, i.Name)
	}
	t.indexes = append(t.indexes, i)
	return nil
}

// Index returns the index with the given name
func (t *Table) Index(name string) (*Index, bool) {
	for _, i := range t.indexes {
		if i.Name == name {
			return i, true
		}
	}
	return nil, false
}

// Indexes returns the indexes in order
func (t *Table) Indexes() []*Index {
	out := make([]*Index, len(t.indexes))
	copy(out, t.indexes)
	return out
}

// PrimaryKey returns the names of the primary key columns
func (t *Table) PrimaryKey() []string {
	var pk []string
	for _, c := range t.columns {
		if c.IsPrimaryKey {
			pk = append(pk, c.Name)
		}
	}
	return pk
}

// Column represents a table column
type Column struct {
	Name            string
	Type            string
	Length          *string
	CanBeNull       bool
	IsPrimaryKey    bool
	IsAutoIncrement bool
	DefaultValue    *string
	Constraint      *Constraint
}

// Constraint represents a foreign key on a single column
type Constraint struct {
	Name             string
	ColumnName       string
	ReferencedTable  string
	ReferencedColumn string
	OnUpdate         string
	OnDelete         string
}

// Index represents a single-column index
type Index struct {
	Name       string
	ColumnName string
	IsUnique   bool
	IndexType  string // BTREE, FULLTEXT, HASH, ...
}
