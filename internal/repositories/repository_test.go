package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"locacar/internal/domain"
	"locacar/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

var rentalCols = []string{
	"id", "customer_id", "vehicle_id", "start_date", "end_date", "actual_end_date",
	"total_days", "daily_rate", "total_amount", "additional_fees", "late_fee", "fuel_level",
	"mileage_start", "mileage_end", "notes", "return_notes", "status", "payment_status",
	"payment_method", "license_image_path", "created_at", "updated_at",
}

var vehicleCols = []string{
	"id", "brand", "model", "year", "color", "license_plate", "category", "daily_rate",
	"mileage", "status", "fuel_type", "transmission", "passengers", "features", "images", "created_at", "updated_at",
}

func day(t *testing.T, s string) domain.Date {
	t.Helper()
	d, err := domain.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	return d
}

func TestRentalGetForUpdateScansNullables(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM rentals WHERE id = \\? FOR UPDATE").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(rentalCols).AddRow(
			7, 3, "veh-1", day(t, "2024-03-10").Time, day(t, "2024-03-15").Time, nil,
			5, "100.00", "500.00", "0.00", "0.00", nil,
			1000, nil, nil, nil, "ACTIVE", "PENDING",
			"PIX", nil, now, now,
		))

	r, err := RentalRepository{}.GetForUpdate(context.Background(), db, 7)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if r.ActualEndDate != nil || r.MileageEnd != nil || r.FuelLevel != nil {
		t.Fatalf("nullable columns must stay nil: %+v", r)
	}
	if r.Status != models.RentalActive || r.StartDate.String() != "2024-03-10" || r.TotalDays != 5 {
		t.Fatalf("unexpected rental %+v", r)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRentalGetByIDMissingIsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM rentals WHERE id = \\?").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(rentalCols))

	_, err = RentalRepository{}.GetByID(context.Background(), db, 99)
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestFindOverlappingActiveUsesInclusiveBounds(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	start, end := day(t, "2024-03-12"), day(t, "2024-03-18")
	// overlap when existing.start <= new.end AND existing.end >= new.start
	mock.ExpectQuery(regexp.QuoteMeta("start_date <= ? AND end_date >= ?")).
		WithArgs("veh-1", "ACTIVE", end.Time, start.Time).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectQuery(regexp.QuoteMeta("start_date <= ? AND end_date >= ?")).
		WithArgs("veh-2", "ACTIVE", end.Time, start.Time).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := RentalRepository{}
	id, err := repo.FindOverlappingActive(context.Background(), db, "veh-1", start, end)
	if err != nil || id != 4 {
		t.Fatalf("expected overlap id 4, got %d %v", id, err)
	}
	id, err = repo.FindOverlappingActive(context.Background(), db, "veh-2", start, end)
	if err != nil || id != 0 {
		t.Fatalf("expected no overlap, got %d %v", id, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRentalListAppliesFilterAndPaging(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM rentals WHERE status = ?")).
		WithArgs("FINISHED").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
	mock.ExpectQuery("SELECT (.+) FROM rentals WHERE status = \\? ORDER BY (.+) LIMIT \\? OFFSET \\?").
		WithArgs("FINISHED", 5, 10).
		WillReturnRows(sqlmock.NewRows(rentalCols).AddRow(
			1, 3, "veh-1", now, now.AddDate(0, 0, 2), now.AddDate(0, 0, 2),
			2, "80", "160", "0", "10", 50,
			100, 300, "n", "ok", "FINISHED", "PAID",
			"CASH", "/license-images/a.png", now, now,
		))

	list, total, err := RentalRepository{}.List(context.Background(), db,
		models.RentalFilter{Status: models.RentalFinished}, domain.NewPagination(3, 5))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 11 || len(list) != 1 {
		t.Fatalf("unexpected total=%d len=%d", total, len(list))
	}
	if list[0].MileageEnd == nil || *list[0].MileageEnd != 300 || *list[0].FuelLevel != 50 {
		t.Fatalf("return data not scanned: %+v", list[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMarkOverduePaymentsLate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	today := day(t, "2024-04-01")
	mock.ExpectExec("UPDATE rentals SET payment_status = \\?").
		WithArgs("LATE", sqlmock.AnyArg(), "ACTIVE", "PENDING", today.Time).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := RentalRepository{}.MarkOverduePaymentsLate(context.Background(), db, today)
	if err != nil || n != 3 {
		t.Fatalf("expected 3 rows, got %d %v", n, err)
	}
}

func TestVehicleInsertDuplicatePlateIsConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO vehicles").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err = VehicleRepository{}.Insert(context.Background(), db, models.Vehicle{ID: "v", LicensePlate: "ABC1D23"})
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestVehicleScanDecodesJSONLists(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM vehicles WHERE license_plate = \\?").
		WithArgs("ABC1D23").
		WillReturnRows(sqlmock.NewRows(vehicleCols).AddRow(
			"veh-1", "Fiat", "Argo", 2022, "white", "ABC1D23", "ECONOMY", "120.50",
			30000, "AVAILABLE", "FLEX", "MANUAL", 5, `["ac","abs"]`, nil, now, now,
		))

	v, err := VehicleRepository{}.GetByPlate(context.Background(), db, "ABC1D23")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(v.Features) != 2 || v.Features[1] != "abs" {
		t.Fatalf("features not decoded: %v", v.Features)
	}
	if v.Images == nil || len(v.Images) != 0 {
		t.Fatalf("NULL images must decode to empty list")
	}
	if v.DailyRate.StringFixed(2) != "120.50" {
		t.Fatalf("unexpected rate %s", v.DailyRate)
	}
}

func TestCustomerListSearchEscapesLike(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM customers WHERE (name LIKE ? OR email LIKE ?)")).
		WithArgs(`%50\%%`, `%50\%%`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT (.+) FROM customers WHERE").
		WithArgs(`%50\%%`, `%50\%%`, 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	list, total, err := CustomerRepository{}.List(context.Background(), db,
		models.CustomerFilter{Query: "50%"}, domain.NewPagination(1, 10))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 0 || len(list) != 0 {
		t.Fatalf("expected empty page")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCustomerExistsRejectsUnknownColumn(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	if _, err := (CustomerRepository{}).Exists(context.Background(), db, "name; DROP", "x", 0); err == nil {
		t.Fatalf("expected error for unsupported column")
	}
}
