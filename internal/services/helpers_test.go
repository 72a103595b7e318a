package services

import (
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"locacar/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
)

var (
	rentalCols = []string{
		"id", "customer_id", "vehicle_id", "start_date", "end_date", "actual_end_date",
		"total_days", "daily_rate", "total_amount", "additional_fees", "late_fee", "fuel_level",
		"mileage_start", "mileage_end", "notes", "return_notes", "status", "payment_status",
		"payment_method", "license_image_path", "created_at", "updated_at",
	}
	vehicleCols = []string{
		"id", "brand", "model", "year", "color", "license_plate", "category", "daily_rate",
		"mileage", "status", "fuel_type", "transmission", "passengers", "features", "images", "created_at", "updated_at",
	}
	customerCols = []string{
		"id", "name", "email", "phone", "tax_id", "password_hash", "birth_date", "address",
		"city", "state", "zip_code", "active", "created_at", "updated_at",
	}
	fixedNow = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func date(t *testing.T, s string) domain.Date {
	t.Helper()
	d, err := domain.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %s: %v", s, err)
	}
	return d
}

func vehicleRows(id, status, rate string, mileage int) *sqlmock.Rows {
	return sqlmock.NewRows(vehicleCols).AddRow(
		id, "Fiat", "Argo", 2022, "white", "ABC1D23", "ECONOMY", rate,
		mileage, status, "FLEX", "MANUAL", 5, `[]`, `[]`, fixedNow, fixedNow,
	)
}

func customerRows(id int64, active bool, hash string) *sqlmock.Rows {
	return sqlmock.NewRows(customerCols).AddRow(
		id, "Maria Souza", "maria@example.com", "11987654321", "12345678909", hash, nil, nil,
		"Sao Paulo", "SP", "01310100", active, fixedNow, fixedNow,
	)
}

type rentalFixture struct {
	id           int64
	vehicleID    string
	status       string
	start, end   time.Time
	mileageStart int
}

func rentalRows(r rentalFixture) *sqlmock.Rows {
	if r.vehicleID == "" {
		r.vehicleID = "veh-1"
	}
	if r.start.IsZero() {
		r.start = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		r.end = time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC)
	}
	return sqlmock.NewRows(rentalCols).AddRow(
		r.id, 3, r.vehicleID, r.start, r.end, nil,
		3, "100.00", "300.00", "0.00", "0.00", nil,
		r.mileageStart, nil, nil, nil, r.status, "PENDING",
		"PIX", nil, fixedNow, fixedNow,
	)
}

// decimalArg matches a driver value that represents the same amount.
type decimalArg string

func (d decimalArg) Match(v driver.Value) bool {
	var got decimal.Decimal
	if err := got.Scan(v); err != nil {
		return false
	}
	return got.Equal(decimal.RequireFromString(string(d)))
}
