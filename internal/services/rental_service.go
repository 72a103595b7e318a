package services

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	intdb "locacar/internal/db"
	"locacar/internal/domain"
	"locacar/internal/domain/models"
	"locacar/internal/events"
	"locacar/internal/repositories"
	"locacar/internal/utils"
)

// RentalService owns the rental lifecycle. Every write runs in one
// transaction and touches the vehicle row only after locking it.
type RentalService struct {
	DB        *sql.DB
	Rentals   repositories.RentalRepository
	Vehicles  repositories.VehicleRepository
	Customers repositories.CustomerRepository
	Publisher events.Publisher
	RequestID string
	Now       func() time.Time
}

func NewRentalService(db *sql.DB, pub events.Publisher) RentalService {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return RentalService{DB: db, Publisher: pub, Now: time.Now}
}

// WithRequestID returns a copy that tags logs and events with id.
func (s RentalService) WithRequestID(id string) RentalService {
	s.RequestID = id
	return s
}

func (s RentalService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create books a vehicle. Checks run in a fixed order so the caller always
// sees the first failing rule.
func (s RentalService) Create(ctx context.Context, in models.NewRental) (models.Rental, error) {
	if in.StartDate.IsZero() {
		return models.Rental{}, domain.ValidationError{Field: "start_date", Msg: "is required"}
	}
	if in.EndDate.IsZero() {
		return models.Rental{}, domain.ValidationError{Field: "end_date", Msg: "is required"}
	}
	if !in.EndDate.After(in.StartDate.Time) {
		return models.Rental{}, domain.ValidationError{Field: "end_date", Msg: "must be after start_date"}
	}
	if !in.PaymentMethod.Valid() {
		return models.Rental{}, domain.ValidationError{Field: "payment_method", Msg: "unknown payment method " + string(in.PaymentMethod)}
	}
	if in.AdditionalFees.IsNegative() {
		return models.Rental{}, domain.ValidationError{Field: "additional_fees", Msg: "must not be negative"}
	}
	if in.MileageStart < 0 {
		return models.Rental{}, domain.ValidationError{Field: "mileage_start", Msg: "must not be negative"}
	}

	var created models.Rental
	err := intdb.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		if _, err := s.Customers.GetByID(ctx, tx, in.CustomerID); err != nil {
			return err
		}
		vehicle, err := s.Vehicles.GetForUpdate(ctx, tx, in.VehicleID)
		if err != nil {
			return err
		}
		if vehicle.Status != models.VehicleAvailable {
			return domain.ConflictError{Resource: "vehicle", Msg: "vehicle is not available"}
		}
		clash, err := s.Rentals.FindOverlappingActive(ctx, tx, vehicle.ID, in.StartDate, in.EndDate)
		if err != nil {
			return err
		}
		if clash != 0 {
			return domain.ConflictError{Resource: "rental", Msg: "vehicle already booked for this period"}
		}

		days, amount := models.Quote(in.StartDate, in.EndDate, vehicle.DailyRate)
		now := s.now()
		created = models.Rental{
			CustomerID:       in.CustomerID,
			VehicleID:        vehicle.ID,
			StartDate:        in.StartDate,
			EndDate:          in.EndDate,
			TotalDays:        days,
			DailyRate:        vehicle.DailyRate,
			TotalAmount:      amount,
			AdditionalFees:   in.AdditionalFees,
			MileageStart:     in.MileageStart,
			Notes:            strings.TrimSpace(in.Notes),
			Status:           models.RentalActive,
			PaymentStatus:    models.PaymentPending,
			PaymentMethod:    in.PaymentMethod,
			LicenseImagePath: strings.TrimSpace(in.LicenseImagePath),
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		id, err := s.Rentals.Insert(ctx, tx, created)
		if err != nil {
			return err
		}
		created.ID = id
		return s.Vehicles.SetStatus(ctx, tx, vehicle.ID, models.VehicleRented)
	})
	if err != nil {
		utils.LogEvent(s.RequestID, "rental", "create_error", err.Error())
		return models.Rental{}, err
	}
	utils.LogEvent(s.RequestID, "rental", "create", fmt.Sprintf("id=%d vehicle=%s days=%d", created.ID, created.VehicleID, created.TotalDays))
	s.publish(ctx, events.RentalCreated, created)
	return created, nil
}

func (s RentalService) Get(ctx context.Context, id int64) (models.Rental, error) {
	return s.Rentals.GetByID(ctx, s.DB, id)
}

func (s RentalService) List(ctx context.Context, f models.RentalFilter, p domain.Pagination) (domain.Page[models.Rental], error) {
	if f.Status != "" && !f.Status.Valid() {
		return domain.Page[models.Rental]{}, domain.ValidationError{Field: "status", Msg: "unknown rental status " + string(f.Status)}
	}
	list, total, err := s.Rentals.List(ctx, s.DB, f, p)
	if err != nil {
		return domain.Page[models.Rental]{}, err
	}
	return domain.Page[models.Rental]{Data: list, Pagination: p.WithTotal(total)}, nil
}

func (s RentalService) ListByCustomer(ctx context.Context, customerID int64) ([]models.Rental, error) {
	if _, err := s.Customers.GetByID(ctx, s.DB, customerID); err != nil {
		return nil, err
	}
	return s.Rentals.ListAll(ctx, s.DB, models.RentalFilter{CustomerID: customerID})
}

func (s RentalService) ListByVehicle(ctx context.Context, vehicleID string) ([]models.Rental, error) {
	if _, err := s.Vehicles.GetByID(ctx, s.DB, vehicleID); err != nil {
		return nil, err
	}
	return s.Rentals.ListAll(ctx, s.DB, models.RentalFilter{VehicleID: vehicleID})
}

func (s RentalService) ListActive(ctx context.Context) ([]models.Rental, error) {
	return s.Rentals.ListAll(ctx, s.DB, models.RentalFilter{Status: models.RentalActive})
}

// ListOverdue returns ACTIVE rentals whose end date already passed.
func (s RentalService) ListOverdue(ctx context.Context, today domain.Date) ([]models.Rental, error) {
	return s.Rentals.ListOverdue(ctx, s.DB, today)
}

// Update applies a partial patch. Only present fields change and the merged
// record must pass field validation. Availability is not re-checked, and the
// status can only move through Finish or Cancel so the vehicle follows it.
func (s RentalService) Update(ctx context.Context, id int64, patch models.RentalPatch) (models.Rental, error) {
	var updated models.Rental
	err := intdb.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		current, err := s.Rentals.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if patch.Status.Set && patch.Status.Value != current.Status {
			return domain.ConflictError{
				Resource: "rental",
				Msg:      "status cannot be patched from " + string(current.Status) + " to " + string(patch.Status.Value) + ", use /finish or /cancel",
			}
		}
		updated = current
		patch.Apply(&updated)
		if err := updated.Validate(); err != nil {
			return err
		}
		updated.UpdatedAt = s.now()
		return s.Rentals.Update(ctx, tx, updated)
	})
	if err != nil {
		utils.LogEvent(s.RequestID, "rental", "update_error", err.Error())
		return models.Rental{}, err
	}
	utils.LogEvent(s.RequestID, "rental", "update", "id="+strconv.FormatInt(id, 10))
	return updated, nil
}

// Finish closes an ACTIVE rental and hands the vehicle back with its new
// odometer reading. Both rows change together or not at all.
func (s RentalService) Finish(ctx context.Context, id int64, in models.FinishRental) (models.Rental, error) {
	var finished models.Rental
	err := intdb.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		rental, err := s.Rentals.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if rental.Status != models.RentalActive {
			return domain.ConflictError{Resource: "rental", Msg: "rental is " + string(rental.Status) + ", only ACTIVE rentals can be finished"}
		}
		if err := checkReturn(rental, in); err != nil {
			return err
		}
		if err := s.lockRentedVehicle(ctx, tx, rental); err != nil {
			return err
		}
		if err := s.Rentals.MarkFinished(ctx, tx, rental.ID, in); err != nil {
			return err
		}
		if err := s.Vehicles.Release(ctx, tx, rental.VehicleID, in.MileageEnd); err != nil {
			return err
		}

		finished = rental
		actual := in.ActualEndDate
		mileage, fuel := in.MileageEnd, in.FuelLevel
		finished.Status = models.RentalFinished
		finished.ActualEndDate = &actual
		finished.MileageEnd = &mileage
		finished.FuelLevel = &fuel
		finished.LateFee = in.LateFee
		finished.ReturnNotes = strings.TrimSpace(in.ReturnNotes)
		finished.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		utils.LogEvent(s.RequestID, "rental", "finish_error", err.Error())
		return models.Rental{}, err
	}
	utils.LogEvent(s.RequestID, "rental", "finish", fmt.Sprintf("id=%d vehicle=%s mileage=%d", id, finished.VehicleID, in.MileageEnd))
	s.publish(ctx, events.RentalFinished, finished)
	return finished, nil
}

// checkReturn validates the return payload against the locked rental. It
// runs after the existence and status checks so those errors come first.
func checkReturn(rental models.Rental, in models.FinishRental) error {
	switch {
	case in.ActualEndDate.IsZero():
		return domain.ValidationError{Field: "actual_end_date", Msg: "is required"}
	case in.FuelLevel < 0 || in.FuelLevel > 100:
		return domain.ValidationError{Field: "fuel_level", Msg: "must be between 0 and 100"}
	case in.LateFee.IsNegative():
		return domain.ValidationError{Field: "late_fee", Msg: "must not be negative"}
	case in.MileageEnd < rental.MileageStart:
		return domain.ValidationError{Field: "mileage_end", Msg: fmt.Sprintf("must be at least mileage_start (%d)", rental.MileageStart)}
	}
	return nil
}

// Cancel moves an ACTIVE rental to CANCELLED and frees its vehicle.
func (s RentalService) Cancel(ctx context.Context, id int64) (models.Rental, error) {
	var cancelled models.Rental
	err := intdb.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		rental, err := s.Rentals.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if rental.Status != models.RentalActive {
			return domain.ConflictError{Resource: "rental", Msg: "rental is " + string(rental.Status) + ", only ACTIVE rentals can be cancelled"}
		}
		if err := s.lockRentedVehicle(ctx, tx, rental); err != nil {
			return err
		}
		if err := s.Rentals.SetStatus(ctx, tx, rental.ID, models.RentalCancelled); err != nil {
			return err
		}
		if err := s.Vehicles.SetStatus(ctx, tx, rental.VehicleID, models.VehicleAvailable); err != nil {
			return err
		}
		cancelled = rental
		cancelled.Status = models.RentalCancelled
		cancelled.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		utils.LogEvent(s.RequestID, "rental", "cancel_error", err.Error())
		return models.Rental{}, err
	}
	utils.LogEvent(s.RequestID, "rental", "cancel", "id="+strconv.FormatInt(id, 10))
	s.publish(ctx, events.RentalCancelled, cancelled)
	return cancelled, nil
}

// Delete removes a rental. An ACTIVE one releases its vehicle first, in the
// same transaction.
func (s RentalService) Delete(ctx context.Context, id int64) error {
	var deleted models.Rental
	err := intdb.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		rental, err := s.Rentals.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if rental.Status == models.RentalActive {
			if err := s.lockRentedVehicle(ctx, tx, rental); err != nil {
				return err
			}
			if err := s.Vehicles.SetStatus(ctx, tx, rental.VehicleID, models.VehicleAvailable); err != nil {
				return err
			}
		}
		deleted = rental
		return s.Rentals.Delete(ctx, tx, id)
	})
	if err != nil {
		utils.LogEvent(s.RequestID, "rental", "delete_error", err.Error())
		return err
	}
	utils.LogEvent(s.RequestID, "rental", "delete", "id="+strconv.FormatInt(id, 10))
	s.publish(ctx, events.RentalDeleted, deleted)
	return nil
}

// lockRentedVehicle takes the vehicle row lock. A rental pointing at a
// missing vehicle is a broken reference, not a client error.
func (s RentalService) lockRentedVehicle(ctx context.Context, tx *sql.Tx, rental models.Rental) error {
	_, err := s.Vehicles.GetForUpdate(ctx, tx, rental.VehicleID)
	if domain.IsNotFound(err) {
		return domain.IntegrityError{Msg: fmt.Sprintf("rental %d references missing vehicle %s", rental.ID, rental.VehicleID), Err: err}
	}
	return err
}

// publish runs after commit, so a broker failure is logged and swallowed.
func (s RentalService) publish(ctx context.Context, kind string, r models.Rental) {
	if s.Publisher == nil {
		return
	}
	ev := events.RentalEvent{
		Type:       kind,
		RentalID:   r.ID,
		CustomerID: r.CustomerID,
		VehicleID:  r.VehicleID,
		Status:     string(r.Status),
		RequestID:  s.RequestID,
		OccurredAt: s.now().UTC(),
	}
	if err := s.Publisher.Publish(context.WithoutCancel(ctx), ev); err != nil {
		utils.LogEvent(s.RequestID, "rental", "publish_error", kind+": "+err.Error())
	}
}
