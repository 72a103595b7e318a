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
)

const rentalColumns = `id, customer_id, vehicle_id, start_date, end_date, actual_end_date,
	total_days, daily_rate, total_amount, additional_fees, late_fee, fuel_level,
	mileage_start, mileage_end, notes, return_notes, status, payment_status,
	payment_method, license_image_path, created_at, updated_at`

// RentalRepository holds no connection; callers pass the *sql.Tx (or *sql.DB)
// of their unit of work.
type RentalRepository struct{}

func scanRental(s rowScanner) (models.Rental, error) {
	var (
		r                          models.Rental
		start, end                 time.Time
		actualEnd                  sql.NullTime
		fuel, mileageEnd           sql.NullInt64
		notes, returnNotes, licImg sql.NullString
		status, payStatus, payMeth string
	)
	err := s.Scan(
		&r.ID, &r.CustomerID, &r.VehicleID, &start, &end, &actualEnd,
		&r.TotalDays, &r.DailyRate, &r.TotalAmount, &r.AdditionalFees, &r.LateFee, &fuel,
		&r.MileageStart, &mileageEnd, &notes, &returnNotes, &status, &payStatus,
		&payMeth, &licImg, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return models.Rental{}, err
	}
	r.StartDate = domain.NewDate(start)
	r.EndDate = domain.NewDate(end)
	r.ActualEndDate = dateFromNull(actualEnd)
	r.FuelLevel = intFromNull(fuel)
	r.MileageEnd = intFromNull(mileageEnd)
	r.Notes = notes.String
	r.ReturnNotes = returnNotes.String
	r.LicenseImagePath = licImg.String
	r.Status = models.RentalStatus(status)
	r.PaymentStatus = models.PaymentStatus(payStatus)
	r.PaymentMethod = models.PaymentMethod(payMeth)
	return r, nil
}

func scanRentals(rows *sql.Rows) ([]models.Rental, error) {
	defer rows.Close()
	out := []models.Rental{}
	for rows.Next() {
		r, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (RentalRepository) get(ctx context.Context, q intdb.DBTX, id int64, lock bool) (models.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = ?`
	if lock {
		query += ` FOR UPDATE`
	}
	r, err := scanRental(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Rental{}, domain.NotFoundError{Resource: "rental", Err: err}
	}
	if err != nil {
		return models.Rental{}, fmt.Errorf("get rental %d: %w", id, err)
	}
	return r, nil
}

// GetByID returns NotFoundError when the row is missing.
func (r RentalRepository) GetByID(ctx context.Context, q intdb.DBTX, id int64) (models.Rental, error) {
	return r.get(ctx, q, id, false)
}

// GetForUpdate locks the rental row until the surrounding transaction ends.
func (r RentalRepository) GetForUpdate(ctx context.Context, q intdb.DBTX, id int64) (models.Rental, error) {
	return r.get(ctx, q, id, true)
}

// FindOverlappingActive returns the id of an ACTIVE rental of the vehicle whose
// period intersects [start, end] with inclusive bounds, or 0.
func (RentalRepository) FindOverlappingActive(ctx context.Context, q intdb.DBTX, vehicleID string, start, end domain.Date) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `
		SELECT id FROM rentals
		WHERE vehicle_id = ? AND status = ? AND start_date <= ? AND end_date >= ?
		LIMIT 1`,
		vehicleID, string(models.RentalActive), end.Time, start.Time,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("overlap check: %w", err)
	}
	return id, nil
}

func (RentalRepository) Insert(ctx context.Context, q intdb.DBTX, r models.Rental) (int64, error) {
	res, err := q.ExecContext(ctx, `
		INSERT INTO rentals (
			customer_id, vehicle_id, start_date, end_date, total_days, daily_rate,
			total_amount, additional_fees, late_fee, mileage_start, notes, status,
			payment_status, payment_method, license_image_path
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		r.CustomerID, r.VehicleID, r.StartDate.Time, r.EndDate.Time, r.TotalDays, r.DailyRate,
		r.TotalAmount, r.AdditionalFees, r.LateFee, r.MileageStart, intdb.NullIfEmpty(r.Notes), string(r.Status),
		string(r.PaymentStatus), string(r.PaymentMethod), intdb.NullIfEmpty(r.LicenseImagePath),
	)
	if err != nil {
		return 0, fmt.Errorf("insert rental: %w", err)
	}
	return res.LastInsertId()
}

// Update writes every mutable column of r.
func (RentalRepository) Update(ctx context.Context, q intdb.DBTX, r models.Rental) error {
	_, err := q.ExecContext(ctx, `
		UPDATE rentals SET
			start_date = ?, end_date = ?, actual_end_date = ?, additional_fees = ?, late_fee = ?,
			fuel_level = ?, mileage_end = ?, notes = ?, return_notes = ?, status = ?,
			payment_status = ?, payment_method = ?, license_image_path = ?, updated_at = ?
		WHERE id = ?`,
		r.StartDate.Time, r.EndDate.Time, nullDate(r.ActualEndDate), r.AdditionalFees, r.LateFee,
		nullInt(r.FuelLevel), nullInt(r.MileageEnd), intdb.NullIfEmpty(r.Notes), intdb.NullIfEmpty(r.ReturnNotes), string(r.Status),
		string(r.PaymentStatus), string(r.PaymentMethod), intdb.NullIfEmpty(r.LicenseImagePath), time.Now(),
		r.ID,
	)
	if err != nil {
		return fmt.Errorf("update rental %d: %w", r.ID, err)
	}
	return nil
}

// MarkFinished records the return of the vehicle.
func (RentalRepository) MarkFinished(ctx context.Context, q intdb.DBTX, id int64, in models.FinishRental) error {
	_, err := q.ExecContext(ctx, `
		UPDATE rentals SET
			status = ?, actual_end_date = ?, mileage_end = ?, fuel_level = ?, late_fee = ?,
			return_notes = ?, updated_at = ?
		WHERE id = ?`,
		string(models.RentalFinished), in.ActualEndDate.Time, in.MileageEnd, in.FuelLevel, in.LateFee,
		intdb.NullIfEmpty(in.ReturnNotes), time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("finish rental %d: %w", id, err)
	}
	return nil
}

func (RentalRepository) SetStatus(ctx context.Context, q intdb.DBTX, id int64, status models.RentalStatus) error {
	_, err := q.ExecContext(ctx, `UPDATE rentals SET status = ?, updated_at = ? WHERE id = ?`, string(status), time.Now(), id)
	if err != nil {
		return fmt.Errorf("set rental %d status: %w", id, err)
	}
	return nil
}

func (RentalRepository) Delete(ctx context.Context, q intdb.DBTX, id int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM rentals WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete rental %d: %w", id, err)
	}
	return nil
}

func rentalConds(f models.RentalFilter) ([]string, []any) {
	conds := []string{}
	args := []any{}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.CustomerID > 0 {
		conds = append(conds, "customer_id = ?")
		args = append(args, f.CustomerID)
	}
	if f.VehicleID != "" {
		conds = append(conds, "vehicle_id = ?")
		args = append(args, f.VehicleID)
	}
	return conds, args
}

// List returns one page of rentals, newest first, plus the unpaged total.
func (RentalRepository) List(ctx context.Context, q intdb.DBTX, f models.RentalFilter, p domain.Pagination) ([]models.Rental, int, error) {
	conds, args := rentalConds(f)
	where := whereClause(conds)
	total, err := countRows(ctx, q, "rentals", where, args...)
	if err != nil {
		return nil, 0, err
	}
	rows, err := q.QueryContext(ctx,
		`SELECT `+rentalColumns+` FROM rentals`+where+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		append(args, p.Limit, p.Offset())...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list rentals: %w", err)
	}
	out, err := scanRentals(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("scan rentals: %w", err)
	}
	return out, total, nil
}

// ListAll returns every rental matching f without paging.
func (RentalRepository) ListAll(ctx context.Context, q intdb.DBTX, f models.RentalFilter) ([]models.Rental, error) {
	conds, args := rentalConds(f)
	rows, err := q.QueryContext(ctx, `SELECT `+rentalColumns+` FROM rentals`+whereClause(conds)+` ORDER BY start_date DESC, id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list rentals: %w", err)
	}
	return scanRentals(rows)
}

// ListOverdue returns ACTIVE rentals whose end_date is before today.
func (RentalRepository) ListOverdue(ctx context.Context, q intdb.DBTX, today domain.Date) ([]models.Rental, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+rentalColumns+` FROM rentals WHERE status = ? AND end_date < ? ORDER BY end_date ASC, id ASC`,
		string(models.RentalActive), today.Time,
	)
	if err != nil {
		return nil, fmt.Errorf("list overdue rentals: %w", err)
	}
	return scanRentals(rows)
}

// MarkOverduePaymentsLate flags PENDING payments of overdue ACTIVE rentals.
func (RentalRepository) MarkOverduePaymentsLate(ctx context.Context, q intdb.DBTX, today domain.Date) (int64, error) {
	res, err := q.ExecContext(ctx, `
		UPDATE rentals SET payment_status = ?, updated_at = ?
		WHERE status = ? AND payment_status = ? AND end_date < ?`,
		string(models.PaymentLate), time.Now(), string(models.RentalActive), string(models.PaymentPending), today.Time,
	)
	if err != nil {
		return 0, fmt.Errorf("mark overdue payments: %w", err)
	}
	return res.RowsAffected()
}

// CountActiveByVehicle reports how many ACTIVE rentals reference the vehicle.
func (RentalRepository) CountActiveByVehicle(ctx context.Context, q intdb.DBTX, vehicleID string) (int, error) {
	return countRows(ctx, q, "rentals", " WHERE vehicle_id = ? AND status = ?", vehicleID, string(models.RentalActive))
}
