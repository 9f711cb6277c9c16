package indexer

import (
	"fmt"
	"strings"
)

// ColumnDef is one column of a table. The same list drives the DDL in
// pkg/db/postgres/lava and the multi-row INSERTs in pkg/db/postgres, so the
// order must match the model's Values().
type ColumnDef struct {
	Name string
	// Type includes constraints, e.g. "BIGINT NOT NULL".
	Type string
}

func (c ColumnDef) SQL() string {
	return c.Name + " " + c.Type
}

// Validate rejects columns that cannot be interpolated unquoted.
func (c ColumnDef) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("column name cannot be empty")
	}
	for _, r := range c.Name {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return fmt.Errorf("column %q: only lowercase identifiers are allowed", c.Name)
		}
	}
	if strings.TrimSpace(c.Type) == "" {
		return fmt.Errorf("column %s: type cannot be empty", c.Name)
	}
	return nil
}

// ColumnsToSchemaSQL renders the body of a CREATE TABLE statement.
func ColumnsToSchemaSQL(columns []ColumnDef) string {
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = col.SQL()
	}
	return strings.Join(parts, ",\n\t")
}

func ColumnsToNameList(columns []ColumnDef) []string {
	names := make([]string, len(columns))
	for i, col := range columns {
		names[i] = col.Name
	}
	return names
}

// ValidateColumns returns the first invalid column, or a duplicate name.
func ValidateColumns(columns []ColumnDef) error {
	seen := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		if err := col.Validate(); err != nil {
			return err
		}
		if _, dup := seen[col.Name]; dup {
			return fmt.Errorf("column %s declared twice", col.Name)
		}
		seen[col.Name] = struct{}{}
	}
	return nil
}

// Row is a model written through the chunked insert path. Values returns one
// value per column, in column order.
type Row interface {
	Values() []any
}
