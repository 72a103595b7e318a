package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	intdb "locacar/internal/db"
	"locacar/internal/domain"
)

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func dateFromNull(t sql.NullTime) *domain.Date {
	if !t.Valid {
		return nil
	}
	d := domain.NewDate(t.Time)
	return &d
}

func intFromNull(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func nullDate(d *domain.Date) any {
	if d == nil || d.IsZero() {
		return nil
	}
	return d.Time
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

// whereClause joins conditions with AND; no conditions yields "".
func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func countRows(ctx context.Context, q intdb.DBTX, table, where string, args ...any) (int, error) {
	var total int
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table+where, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return total, nil
}
