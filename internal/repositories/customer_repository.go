package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	intdb "locacar/internal/db"
	"locacar/internal/domain"
	"locacar/internal/domain/models"
	"locacar/internal/utils"
)

const customerColumns = `id, name, email, phone, tax_id, password_hash, birth_date, address,
	city, state, zip_code, active, created_at, updated_at`

type CustomerRepository struct{}

func scanCustomer(s rowScanner) (models.Customer, error) {
	var (
		c                                models.Customer
		phone, address, city, state, zip sql.NullString
		birth                            sql.NullTime
	)
	err := s.Scan(
		&c.ID, &c.Name, &c.Email, &phone, &c.TaxID, &c.PasswordHash, &birth, &address,
		&city, &state, &zip, &c.Active, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return models.Customer{}, err
	}
	c.Phone = phone.String
	c.BirthDate = dateFromNull(birth)
	c.Address = address.String
	c.City = city.String
	c.State = state.String
	c.ZipCode = zip.String
	return c, nil
}

func (CustomerRepository) get(ctx context.Context, q intdb.DBTX, where string, arg any) (models.Customer, error) {
	c, err := scanCustomer(q.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE `+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Customer{}, domain.NotFoundError{Resource: "customer", Err: err}
	}
	if err != nil {
		return models.Customer{}, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

func (r CustomerRepository) GetByID(ctx context.Context, q intdb.DBTX, id int64) (models.Customer, error) {
	return r.get(ctx, q, "id = ?", id)
}

// GetByTaxID expects the digits-only form.
func (r CustomerRepository) GetByTaxID(ctx context.Context, q intdb.DBTX, taxID string) (models.Customer, error) {
	return r.get(ctx, q, "tax_id = ?", taxID)
}

func (r CustomerRepository) GetByEmail(ctx context.Context, q intdb.DBTX, email string) (models.Customer, error) {
	return r.get(ctx, q, "email = ?", email)
}

// Exists reports whether column=value is taken by a customer other than exceptID.
func (CustomerRepository) Exists(ctx context.Context, q intdb.DBTX, column, value string, exceptID int64) (bool, error) {
	switch column {
	case "email", "tax_id":
	default:
		return false, fmt.Errorf("unsupported uniqueness column %q", column)
	}
	var id int64
	err := q.QueryRowContext(ctx, `SELECT id FROM customers WHERE `+column+` = ? AND id <> ? LIMIT 1`, value, exceptID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check customer %s: %w", column, err)
	}
	return true, nil
}

func (CustomerRepository) Insert(ctx context.Context, q intdb.DBTX, c models.Customer) (int64, error) {
	res, err := q.ExecContext(ctx, `
		INSERT INTO customers (name, email, phone, tax_id, password_hash, birth_date, address, city, state, zip_code, active)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		c.Name, c.Email, intdb.NullIfEmpty(c.Phone), c.TaxID, c.PasswordHash, nullDate(c.BirthDate),
		intdb.NullIfEmpty(c.Address), intdb.NullIfEmpty(c.City), intdb.NullIfEmpty(c.State), intdb.NullIfEmpty(c.ZipCode), c.Active,
	)
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return 0, domain.ConflictError{Resource: "customer", Msg: "email or tax id already registered", Err: err}
		}
		return 0, fmt.Errorf("insert customer: %w", err)
	}
	return res.LastInsertId()
}

func (CustomerRepository) Update(ctx context.Context, q intdb.DBTX, c models.Customer) error {
	_, err := q.ExecContext(ctx, `
		UPDATE customers SET
			name = ?, email = ?, phone = ?, address = ?, city = ?, state = ?, zip_code = ?, active = ?, updated_at = ?
		WHERE id = ?`,
		c.Name, c.Email, intdb.NullIfEmpty(c.Phone), intdb.NullIfEmpty(c.Address), intdb.NullIfEmpty(c.City),
		intdb.NullIfEmpty(c.State), intdb.NullIfEmpty(c.ZipCode), c.Active, time.Now(), c.ID,
	)
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return domain.ConflictError{Resource: "customer", Msg: "email already registered", Err: err}
		}
		return fmt.Errorf("update customer %d: %w", c.ID, err)
	}
	return nil
}

func (CustomerRepository) Delete(ctx context.Context, q intdb.DBTX, id int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id); err != nil {
		if intdb.IsForeignKeyViolation(err) {
			return domain.ConflictError{Resource: "customer", Msg: "customer still referenced by rentals", Err: err}
		}
		return fmt.Errorf("delete customer %d: %w", id, err)
	}
	return nil
}

// List pages customers ordered by name. Query matches name or email substrings.
func (CustomerRepository) List(ctx context.Context, q intdb.DBTX, f models.CustomerFilter, p domain.Pagination) ([]models.Customer, int, error) {
	conds := []string{}
	args := []any{}
	if f.Active != nil {
		conds = append(conds, "active = ?")
		args = append(args, *f.Active)
	}
	if f.Query != "" {
		like := "%" + utils.EscapeLike(f.Query) + "%"
		conds = append(conds, "(name LIKE ? OR email LIKE ?)")
		args = append(args, like, like)
	}
	where := whereClause(conds)
	total, err := countRows(ctx, q, "customers", where, args...)
	if err != nil {
		return nil, 0, err
	}
	rows, err := q.QueryContext(ctx,
		`SELECT `+customerColumns+` FROM customers`+where+` ORDER BY name ASC, id ASC LIMIT ? OFFSET ?`,
		append(args, p.Limit, p.Offset())...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()
	out := []models.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan customer: %w", err)
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}
