package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/tordrt/kgschema/internal/schema"
)

// ErrColumnNotLoaded is returned when a foreign key or index refers to a
// column DESCRIBE did not report
var ErrColumnNotLoaded = errors.New("column not loaded")

// MySQLExtractor handles schema extraction from MySQL
type MySQLExtractor struct {
	client     *MySQLClient
	schemaName string
	logger     *zap.Logger
}

// NewMySQLExtractor creates a new MySQL schema extractor
func NewMySQLExtractor(client *MySQLClient, schemaName string, logger *zap.Logger) *MySQLExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MySQLExtractor{
		client:     client,
		schemaName: schemaName,
		logger:     logger,
	}
}

// ExtractSchema extracts the complete schema for specified tables
// If tables is empty, extracts all tables in the schema
func (e *MySQLExtractor) ExtractSchema(ctx context.Context, tables []string) (*schema.Schema, error) {
	tableNames, err := e.getTableNames(ctx, tables)
	if err != nil {
		return nil, fmt.Errorf("failed to get table names: %w", err)
	}

	s := &schema.Schema{}
	for _, tableName := range tableNames {
		table, err := e.ExtractTable(ctx, tableName)
		if err != nil {
			return nil, fmt.Errorf("failed to extract table %s: %w", tableName, err)
		}
		if err := s.AddTable(table); err != nil {
			return nil, err
		}
	}

	e.logger.Debug("extracted schema", zap.String("database", e.schemaName), zap.Int("tables", len(s.Tables)))
	return s, nil
}

// getTableNames returns the list of tables to extract
func (e *MySQLExtractor) getTableNames(ctx context.Context, requestedTables []string) ([]string, error) {
	if len(requestedTables) > 0 {
		return requestedTables, nil
	}

	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, e.schemaName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tables = append(tables, tableName)
	}

	return tables, rows.Err()
}

// ExtractTable loads columns, then foreign keys, then indexes of one table.
// Foreign keys and indexes are attached to the columns loaded first
func (e *MySQLExtractor) ExtractTable(ctx context.Context, tableName string) (*schema.Table, error) {
	table := schema.NewTable(tableName)

	if err := e.extractColumns(ctx, table); err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}

	if err := e.extractConstraints(ctx, table); err != nil {
		return nil, fmt.Errorf("failed to extract foreign keys: %w", err)
	}

	if err := e.extractIndexes(ctx, table); err != nil {
		return nil, fmt.Errorf("failed to extract indexes: %w", err)
	}

	return table, nil
}

func quoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// extractColumns reads DESCRIBE output
func (e *MySQLExtractor) extractColumns(ctx context.Context, table *schema.Table) error {
	rows, err := e.client.GetDB().QueryContext(ctx, "DESCRIBE "+quoteIdentifier(table.Name))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var field, columnType, null, key, defaultVal, extra sql.NullString
		if err := rows.Scan(&field, &columnType, &null, &key, &defaultVal, &extra); err != nil {
			return err
		}

		typ, length := schema.SplitColumnType(columnType.String)
		col := &schema.Column{
			Name:            field.String,
			Type:            typ,
			Length:          length,
			CanBeNull:       null.String == "YES",
			IsPrimaryKey:    key.String == "PRI",
			IsAutoIncrement: strings.Contains(strings.ToLower(extra.String), "auto_increment"),
		}
		if defaultVal.Valid {
			col.DefaultValue = &defaultVal.String
		}

		if err := table.AddColumn(col); err != nil {
			return err
		}
	}

	return rows.Err()
}

// extractConstraints reads foreign keys with their update and delete rules
func (e *MySQLExtractor) extractConstraints(ctx context.Context, table *schema.Table) error {
	query := `
		SELECT
			kcu.constraint_name,
			kcu.column_name,
			kcu.referenced_table_name,
			kcu.referenced_column_name,
			rc.update_rule,
			rc.delete_rule
		FROM information_schema.key_column_usage kcu
		JOIN information_schema.referential_constraints rc
			ON rc.constraint_schema = kcu.constraint_schema
			AND rc.constraint_name = kcu.constraint_name
			AND rc.table_name = kcu.table_name
		WHERE kcu.table_schema = ?
			AND kcu.table_name = ?
			AND kcu.referenced_table_name IS NOT NULL
		ORDER BY kcu.constraint_name, kcu.ordinal_position
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, e.schemaName, table.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var k schema.Constraint
		if err := rows.Scan(&k.Name, &k.ColumnName, &k.ReferencedTable, &k.ReferencedColumn, &k.OnUpdate, &k.OnDelete); err != nil {
			return err
		}

		col, ok := table.Column(k.ColumnName)
		if !ok {
			return fmt.Errorf("%w: foreign key %s refers to %s.%s", ErrColumnNotLoaded, k.Name, table.Name, k.ColumnName)
		}
		col.Constraint = &k
	}

	return rows.Err()
}

// extractIndexes reads SHOW INDEXES. The primary key is modelled on the
// columns; for multi-column indexes only the first column is kept
func (e *MySQLExtractor) extractIndexes(ctx context.Context, table *schema.Table) error {
	rows, err := e.client.GetDB().QueryContext(ctx, "SHOW INDEXES FROM "+quoteIdentifier(table.Name))
	if err != nil {
		return err
	}
	defer rows.Close()

	// the column set of SHOW INDEXES differs between server versions
	names, err := rows.Columns()
	if err != nil {
		return err
	}

	for rows.Next() {
		values := make([]sql.NullString, len(names))
		dest := make([]any, len(names))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return err
		}

		row := make(map[string]string, len(names))
		for i, name := range names {
			row[strings.ToLower(name)] = values[i].String
		}

		keyName := row["key_name"]
		if keyName == "PRIMARY" {
			continue
		}
		if _, ok := table.Index(keyName); ok {
			e.logger.Debug("skipping additional index column",
				zap.String("table", table.Name),
				zap.String("index", keyName),
				zap.String("column", row["column_name"]))
			continue
		}

		columnName := row["column_name"]
		if _, ok := table.Column(columnName); !ok {
			return fmt.Errorf("%w: index %s refers to %s.%s", ErrColumnNotLoaded, keyName, table.Name, columnName)
		}

		if err := table.AddIndex(&schema.Index{
			Name:       keyName,
			ColumnName: columnName,
			IsUnique:   row["non_unique"] == "0",
			IndexType:  strings.ToUpper(row["index_type"]),
		}); err != nil {
			return err
		}
	}

	return rows.Err()
}
