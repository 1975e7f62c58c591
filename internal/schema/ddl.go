package schema

import (
	"regexp"
	"strings"
)

var lengthSuffix = regexp.MustCompile(`\(([0-9]+)\)`)

// SplitColumnType separates a MySQL type like "varchar(255)" into its lower
// cased base type and length. Types with other parameters, e.g. "decimal(4,2)",
// are returned whole
func SplitColumnType(columnType string) (string, *string) {
	columnType = strings.ToLower(strings.TrimSpace(columnType))
	m := lengthSuffix.FindStringSubmatch(columnType)
	if m == nil {
		return columnType, nil
	}
	length := m[1]
	return strings.TrimSpace(lengthSuffix.ReplaceAllString(columnType, "")), &length
}

func quote(identifier string) string {
	return "`" + identifier + "`"
}

// FullType returns the type with its length suffix
func (c *Column) FullType() string {
	if c.Length != nil && *c.Length != "" {
		return c.Type + "(" + *c.Length + ")"
	}
	return c.Type
}

// Line renders the column definition used in CREATE and ALTER statements
func (c *Column) Line() string {
	return c.line(c.IsAutoIncrement)
}

func (c *Column) line(autoIncrement bool) string {
	var b strings.Builder
	b.WriteString(quote(c.Name))
	b.WriteString(" ")
	b.WriteString(c.FullType())

	if autoIncrement {
		b.WriteString(" AUTO_INCREMENT")
	}

	if c.DefaultValue != nil && *c.DefaultValue != "" {
		b.WriteString(` DEFAULT "` + *c.DefaultValue + `"`)
	}

	if c.CanBeNull {
		b.WriteString(" NULL")
	} else {
		b.WriteString(" NOT NULL")
	}

	return b.String()
}

// AddStatement adds the column without AUTO_INCREMENT; see
// AutoIncrementStatement
func (c *Column) AddStatement(table string) string {
	return "ALTER TABLE " + quote(table) + " ADD " + c.line(false) + ";"
}

// ChangeStatement redefines the column in place. autoIncrement controls
// whether AUTO_INCREMENT is part of the new definition
func (c *Column) ChangeStatement(table string, autoIncrement bool) string {
	return "ALTER TABLE " + quote(table) + " CHANGE " + quote(c.Name) + " " + c.line(autoIncrement) + ";"
}

// AutoIncrementStatement declares the column AUTO_INCREMENT. MySQL accepts it
// only once the column is part of a key
func (c *Column) AutoIncrementStatement(table string) string {
	return "ALTER TABLE " + quote(table) + " MODIFY " + c.line(true) + ";"
}

// DefinitionDiffers reports whether type, length, default, nullability or
// auto increment differ. Primary key and constraint are compared separately
func (c *Column) DefinitionDiffers(other *Column) bool {
	return c.Type != other.Type ||
		!equalOptional(c.Length, other.Length) ||
		defaultOf(c) != defaultOf(other) ||
		c.CanBeNull != other.CanBeNull ||
		c.IsAutoIncrement != other.IsAutoIncrement
}

// defaultOf treats an empty default like none, matching what Line renders
func defaultOf(c *Column) string {
	if c.DefaultValue == nil {
		return ""
	}
	return *c.DefaultValue
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Differs reports whether any field differs from other. A nil other always
// differs
func (k *Constraint) Differs(other *Constraint) bool {
	return other == nil || *k != *other
}

// AddStatement adds the foreign key to table
func (k *Constraint) AddStatement(table string) string {
	var b strings.Builder
	b.WriteString("ALTER TABLE " + quote(table))
	b.WriteString(" ADD CONSTRAINT " + quote(k.Name))
	b.WriteString(" FOREIGN KEY (" + quote(k.ColumnName) + ")")
	b.WriteString(" REFERENCES " + quote(k.ReferencedTable) + " (" + quote(k.ReferencedColumn) + ")")
	if k.OnUpdate != "" {
		b.WriteString(" ON UPDATE " + k.OnUpdate)
	}
	if k.OnDelete != "" {
		b.WriteString(" ON DELETE " + k.OnDelete)
	}
	b.WriteString(";")
	return b.String()
}

// DropStatement drops the foreign key from table
func (k *Constraint) DropStatement(table string) string {
	return "ALTER TABLE " + quote(table) + " DROP FOREIGN KEY " + quote(k.Name) + ";"
}

// Differs reports whether any field differs from other. A nil other always
// differs
func (i *Index) Differs(other *Index) bool {
	return other == nil || *i != *other
}

// AddStatement creates the index on table
func (i *Index) AddStatement(table string) string {
	if i.IsUnique {
		return "CREATE UNIQUE INDEX " + quote(i.Name) + " ON " + quote(table) + " (" + quote(i.ColumnName) + ");"
	}

	kind := "KEY"
	if strings.EqualFold(i.IndexType, "FULLTEXT") {
		kind = "FULLTEXT KEY"
	}
	return "ALTER TABLE " + quote(table) + " ADD " + kind + " " + quote(i.Name) + " (" + quote(i.ColumnName) + ");"
}

// DropStatement drops the index from table
func (i *Index) DropStatement(table string) string {
	return "ALTER TABLE " + quote(table) + " DROP INDEX " + quote(i.Name) + ";"
}

// CreateStatement renders CREATE TABLE with all columns in order. Keys and
// foreign keys are added by separate statements
func (t *Table) CreateStatement() string {
	lines := make([]string, 0, len(t.columns))
	for _, c := range t.columns {
		lines = append(lines, "    "+c.Line())
	}

	return "CREATE TABLE " + quote(t.Name) + " (\n" +
		strings.Join(lines, ",\n") +
		"\n) ENGINE=" + Engine + " CHARSET=" + Charset + " COLLATE=" + Collate + ";"
}

// AddPrimaryKeyStatement adds a primary key over columns
func AddPrimaryKeyStatement(table string, columns ...string) string {
	return "ALTER TABLE " + table + " ADD PRIMARY KEY(" + strings.Join(columns, ",") + ");"
}

// DropPrimaryKeyStatement drops the primary key of table
func DropPrimaryKeyStatement(table string) string {
	return "ALTER TABLE " + table + " DROP PRIMARY KEY;"
}

// DropStatement drops the table
func (t *Table) DropStatement() string {
	return "DROP TABLE " + quote(t.Name) + ";"
}

// AddConstraintStatements adds every column foreign key
func (t *Table) AddConstraintStatements() []string {
	var stmts []string
	for _, c := range t.columns {
		if c.Constraint != nil {
			stmts = append(stmts, c.Constraint.AddStatement(t.Name))
		}
	}
	return stmts
}

// AddIndexStatements creates every index
func (t *Table) AddIndexStatements() []string {
	stmts := make([]string, 0, len(t.indexes))
	for _, i := range t.indexes {
		stmts = append(stmts, i.AddStatement(t.Name))
	}
	return stmts
}
