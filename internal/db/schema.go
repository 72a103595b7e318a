package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
)

//go:embed schema.sql
var schemaSQL string

// Statements splits the embedded DDL into single statements; the driver
// runs without multiStatements.
func Statements() []string {
	out := []string{}
	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

// EnsureSchema creates the tables that are missing.
func EnsureSchema(ctx context.Context, conn *sql.DB) error {
	for _, stmt := range Statements() {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
