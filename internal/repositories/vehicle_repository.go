package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	intdb "locacar/internal/db"
	"locacar/internal/domain"
	"locacar/internal/domain/models"
)

const vehicleColumns = `id, brand, model, year, color, license_plate, category, daily_rate,
	mileage, status, fuel_type, transmission, passengers, features, images, created_at, updated_at`

type VehicleRepository struct{}

func scanVehicle(s rowScanner) (models.Vehicle, error) {
	var (
		v                            models.Vehicle
		category, status, fuel, gear string
		features, images             []byte
	)
	err := s.Scan(
		&v.ID, &v.Brand, &v.Model, &v.Year, &v.Color, &v.LicensePlate, &category, &v.DailyRate,
		&v.Mileage, &status, &fuel, &gear, &v.Passengers, &features, &images, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return models.Vehicle{}, err
	}
	v.Category = models.Category(category)
	v.Status = models.VehicleStatus(status)
	v.FuelType = models.FuelType(fuel)
	v.Transmission = models.Transmission(gear)
	v.Features = decodeList(features)
	v.Images = decodeList(images)
	return v, nil
}

// decodeList reads a JSON array column; NULL or junk becomes an empty list.
func decodeList(raw []byte) []string {
	out := []string{}
	if len(raw) == 0 {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

func encodeList(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	b, err := json.Marshal(list)
	return string(b), err
}

func (VehicleRepository) get(ctx context.Context, q intdb.DBTX, where string, arg any, lock bool) (models.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE ` + where
	if lock {
		query += ` FOR UPDATE`
	}
	v, err := scanVehicle(q.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Vehicle{}, domain.NotFoundError{Resource: "vehicle", Err: err}
	}
	if err != nil {
		return models.Vehicle{}, fmt.Errorf("get vehicle: %w", err)
	}
	return v, nil
}

func (r VehicleRepository) GetByID(ctx context.Context, q intdb.DBTX, id string) (models.Vehicle, error) {
	return r.get(ctx, q, "id = ?", id, false)
}

// GetForUpdate locks the vehicle row. Every write path that changes a
// vehicle's availability takes this lock first, so concurrent bookings of the
// same vehicle run one after another.
func (r VehicleRepository) GetForUpdate(ctx context.Context, q intdb.DBTX, id string) (models.Vehicle, error) {
	return r.get(ctx, q, "id = ?", id, true)
}

func (r VehicleRepository) GetByPlate(ctx context.Context, q intdb.DBTX, plate string) (models.Vehicle, error) {
	return r.get(ctx, q, "license_plate = ?", plate, false)
}

// ExistsPlate reports whether another vehicle already uses the plate.
func (VehicleRepository) ExistsPlate(ctx context.Context, q intdb.DBTX, plate, exceptID string) (bool, error) {
	var id string
	err := q.QueryRowContext(ctx, `SELECT id FROM vehicles WHERE license_plate = ? AND id <> ? LIMIT 1`, plate, exceptID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check plate: %w", err)
	}
	return true, nil
}

func (VehicleRepository) Insert(ctx context.Context, q intdb.DBTX, v models.Vehicle) error {
	features, err := encodeList(v.Features)
	if err != nil {
		return err
	}
	images, err := encodeList(v.Images)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO vehicles (`+vehicleColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		v.ID, v.Brand, v.Model, v.Year, v.Color, v.LicensePlate, string(v.Category), v.DailyRate,
		v.Mileage, string(v.Status), string(v.FuelType), string(v.Transmission), v.Passengers, features, images, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return domain.ConflictError{Resource: "vehicle", Msg: "license plate already registered", Err: err}
		}
		return fmt.Errorf("insert vehicle: %w", err)
	}
	return nil
}

// Update rewrites every mutable column.
func (VehicleRepository) Update(ctx context.Context, q intdb.DBTX, v models.Vehicle) error {
	features, err := encodeList(v.Features)
	if err != nil {
		return err
	}
	images, err := encodeList(v.Images)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
		UPDATE vehicles SET
			brand = ?, model = ?, year = ?, color = ?, license_plate = ?, category = ?, daily_rate = ?,
			mileage = ?, status = ?, fuel_type = ?, transmission = ?, passengers = ?, features = ?, images = ?,
			updated_at = ?
		WHERE id = ?`,
		v.Brand, v.Model, v.Year, v.Color, v.LicensePlate, string(v.Category), v.DailyRate,
		v.Mileage, string(v.Status), string(v.FuelType), string(v.Transmission), v.Passengers, features, images,
		time.Now(), v.ID,
	)
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return domain.ConflictError{Resource: "vehicle", Msg: "license plate already registered", Err: err}
		}
		return fmt.Errorf("update vehicle %s: %w", v.ID, err)
	}
	return nil
}

func (VehicleRepository) SetStatus(ctx context.Context, q intdb.DBTX, id string, status models.VehicleStatus) error {
	_, err := q.ExecContext(ctx, `UPDATE vehicles SET status = ?, updated_at = ? WHERE id = ?`, string(status), time.Now(), id)
	if err != nil {
		return fmt.Errorf("set vehicle %s status: %w", id, err)
	}
	return nil
}

// Release writes the returned odometer and makes the vehicle available again.
func (VehicleRepository) Release(ctx context.Context, q intdb.DBTX, id string, mileage int) error {
	_, err := q.ExecContext(ctx, `UPDATE vehicles SET mileage = ?, status = ?, updated_at = ? WHERE id = ?`,
		mileage, string(models.VehicleAvailable), time.Now(), id)
	if err != nil {
		return fmt.Errorf("release vehicle %s: %w", id, err)
	}
	return nil
}

func (VehicleRepository) Delete(ctx context.Context, q intdb.DBTX, id string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM vehicles WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete vehicle %s: %w", id, err)
	}
	return nil
}

func (VehicleRepository) List(ctx context.Context, q intdb.DBTX, f models.VehicleFilter, p domain.Pagination) ([]models.Vehicle, int, error) {
	conds := []string{}
	args := []any{}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, string(f.Category))
	}
	where := whereClause(conds)
	total, err := countRows(ctx, q, "vehicles", where, args...)
	if err != nil {
		return nil, 0, err
	}
	rows, err := q.QueryContext(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles`+where+` ORDER BY brand ASC, model ASC, id ASC LIMIT ? OFFSET ?`,
		append(args, p.Limit, p.Offset())...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()
	out := []models.Vehicle{}
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan vehicle: %w", err)
		}
		out = append(out, v)
	}
	return out, total, rows.Err()
}
