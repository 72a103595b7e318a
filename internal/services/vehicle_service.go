package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	intdb "locacar/internal/db"
	"locacar/internal/domain"
	"locacar/internal/domain/models"
	"locacar/internal/repositories"
	"locacar/internal/utils"

	"github.com/google/uuid"
)

type VehicleService struct {
	DB        *sql.DB
	Vehicles  repositories.VehicleRepository
	Rentals   repositories.RentalRepository
	RequestID string
}

func (s VehicleService) WithRequestID(id string) VehicleService {
	s.RequestID = id
	return s
}

// validateVehicle normalizes v in place and applies defaults for empty enums.
func validateVehicle(v *models.Vehicle) error {
	v.Brand = utils.NormalizeSpace(v.Brand)
	v.Model = utils.NormalizeSpace(v.Model)
	v.Color = utils.NormalizeSpace(v.Color)
	v.LicensePlate = utils.NormalizePlate(v.LicensePlate)
	if v.Category == "" {
		v.Category = models.CategoryEconomy
	}
	if v.Status == "" {
		v.Status = models.VehicleAvailable
	}
	if v.FuelType == "" {
		v.FuelType = models.FuelFlex
	}
	if v.Transmission == "" {
		v.Transmission = models.TransmissionManual
	}
	if v.Passengers == 0 {
		v.Passengers = 5
	}
	if v.Features == nil {
		v.Features = []string{}
	}
	if v.Images == nil {
		v.Images = []string{}
	}

	switch {
	case v.Brand == "" || len(v.Brand) > 50:
		return domain.ValidationError{Field: "brand", Msg: "is required (max 50 characters)"}
	case v.Model == "" || len(v.Model) > 50:
		return domain.ValidationError{Field: "model", Msg: "is required (max 50 characters)"}
	case v.Color == "" || len(v.Color) > 30:
		return domain.ValidationError{Field: "color", Msg: "is required (max 30 characters)"}
	case v.Year < 1900 || v.Year > 2100:
		return domain.ValidationError{Field: "year", Msg: "must be between 1900 and 2100"}
	case len(v.LicensePlate) < 7 || len(v.LicensePlate) > 10:
		return domain.ValidationError{Field: "license_plate", Msg: "must have between 7 and 10 characters"}
	case !v.Category.Valid():
		return domain.ValidationError{Field: "category", Msg: "unknown category " + string(v.Category)}
	case !v.Status.Valid():
		return domain.ValidationError{Field: "status", Msg: "unknown vehicle status " + string(v.Status)}
	case !v.FuelType.Valid():
		return domain.ValidationError{Field: "fuel_type", Msg: "unknown fuel type " + string(v.FuelType)}
	case !v.Transmission.Valid():
		return domain.ValidationError{Field: "transmission", Msg: "unknown transmission " + string(v.Transmission)}
	case !v.DailyRate.IsPositive():
		return domain.ValidationError{Field: "daily_rate", Msg: "must be greater than zero"}
	case v.Mileage < 0:
		return domain.ValidationError{Field: "mileage", Msg: "must not be negative"}
	case v.Passengers < 1 || v.Passengers > 10:
		return domain.ValidationError{Field: "passengers", Msg: "must be between 1 and 10"}
	}
	return nil
}

func fromInput(in models.VehicleInput) models.Vehicle {
	return models.Vehicle{
		Brand:        in.Brand,
		Model:        in.Model,
		Year:         in.Year,
		Color:        in.Color,
		LicensePlate: in.LicensePlate,
		Category:     in.Category,
		DailyRate:    in.DailyRate,
		Mileage:      in.Mileage,
		Status:       in.Status,
		FuelType:     in.FuelType,
		Transmission: in.Transmission,
		Passengers:   in.Passengers,
		Features:     in.Features,
		Images:       in.Images,
	}
}

func (s VehicleService) Create(ctx context.Context, in models.VehicleInput) (models.Vehicle, error) {
	v := fromInput(in)
	if err := validateVehicle(&v); err != nil {
		return models.Vehicle{}, err
	}
	if v.Status == models.VehicleRented {
		return models.Vehicle{}, domain.ValidationError{Field: "status", Msg: "a new vehicle cannot start as RENTED, create a rental instead"}
	}
	v.ID = uuid.NewString()
	v.CreatedAt = time.Now()
	v.UpdatedAt = v.CreatedAt

	err := intdb.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		taken, err := s.Vehicles.ExistsPlate(ctx, tx, v.LicensePlate, "")
		if err != nil {
			return err
		}
		if taken {
			return domain.ConflictError{Resource: "vehicle", Msg: "license plate already registered"}
		}
		if err := s.Vehicles.Insert(ctx, tx, v); err != nil {
			return err
		}
		v, err = s.Vehicles.GetByID(ctx, tx, v.ID)
		return err
	})
	if err != nil {
		utils.LogEvent(s.RequestID, "vehicle", "create_error", err.Error())
		return models.Vehicle{}, err
	}
	utils.LogEvent(s.RequestID, "vehicle", "create", "id="+v.ID+" plate="+v.LicensePlate)
	return v, nil
}

func (s VehicleService) Get(ctx context.Context, id string) (models.Vehicle, error) {
	return s.Vehicles.GetByID(ctx, s.DB, id)
}

func (s VehicleService) GetByPlate(ctx context.Context, plate string) (models.Vehicle, error) {
	return s.Vehicles.GetByPlate(ctx, s.DB, utils.NormalizePlate(plate))
}

// Replace overwrites every field of the vehicle.
func (s VehicleService) Replace(ctx context.Context, id string, in models.VehicleInput) (models.Vehicle, error) {
	return s.save(ctx, id, "replace", func(v *models.Vehicle) {
		next := fromInput(in)
		next.ID, next.CreatedAt = v.ID, v.CreatedAt
		if next.Status == "" {
			next.Status = v.Status
		}
		*v = next
	})
}

// Patch changes only the fields present in p.
func (s VehicleService) Patch(ctx context.Context, id string, p models.VehiclePatch) (models.Vehicle, error) {
	return s.save(ctx, id, "patch", p.Apply)
}

// SetStatus is the explicit status switch, e.g. sending a car to MAINTENANCE.
// A vehicle held by an ACTIVE rental cannot leave RENTED this way.
func (s VehicleService) SetStatus(ctx context.Context, id string, status models.VehicleStatus) (models.Vehicle, error) {
	if !status.Valid() {
		return models.Vehicle{}, domain.ValidationError{Field: "status", Msg: "unknown vehicle status " + string(status)}
	}
	return s.save(ctx, id, "set_status", func(v *models.Vehicle) { v.Status = status })
}

func (s VehicleService) save(ctx context.Context, id, action string, mutate func(*models.Vehicle)) (models.Vehicle, error) {
	var out models.Vehicle
	err := intdb.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		current, err := s.Vehicles.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		next := current
		mutate(&next)
		if err := validateVehicle(&next); err != nil {
			return err
		}
		if next.Status != current.Status {
			if err := s.checkStatusChange(ctx, tx, current.ID, next.Status); err != nil {
				return err
			}
		}
		if next.LicensePlate != current.LicensePlate {
			taken, err := s.Vehicles.ExistsPlate(ctx, tx, next.LicensePlate, current.ID)
			if err != nil {
				return err
			}
			if taken {
				return domain.ConflictError{Resource: "vehicle", Msg: "license plate already registered"}
			}
		}
		if err := s.Vehicles.Update(ctx, tx, next); err != nil {
			return err
		}
		out, err = s.Vehicles.GetByID(ctx, tx, id)
		return err
	})
	if err != nil {
		utils.LogEvent(s.RequestID, "vehicle", action+"_error", err.Error())
		return models.Vehicle{}, err
	}
	utils.LogEvent(s.RequestID, "vehicle", action, "id="+id+" status="+string(out.Status))
	return out, nil
}

// checkStatusChange keeps vehicle status consistent with the rental ledger.
func (s VehicleService) checkStatusChange(ctx context.Context, tx *sql.Tx, id string, next models.VehicleStatus) error {
	active, err := s.Rentals.CountActiveByVehicle(ctx, tx, id)
	if err != nil {
		return err
	}
	if active > 0 && next != models.VehicleRented {
		return domain.ConflictError{Resource: "vehicle", Msg: "vehicle has an active rental"}
	}
	if active == 0 && next == models.VehicleRented {
		return domain.ConflictError{Resource: "vehicle", Msg: "vehicle can only become RENTED through a rental"}
	}
	return nil
}

// Delete refuses while any rental references the vehicle.
func (s VehicleService) Delete(ctx context.Context, id string) error {
	err := intdb.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		if _, err := s.Vehicles.GetForUpdate(ctx, tx, id); err != nil {
			return err
		}
		rentals, err := s.Rentals.ListAll(ctx, tx, models.RentalFilter{VehicleID: id})
		if err != nil {
			return err
		}
		if len(rentals) > 0 {
			return domain.ConflictError{Resource: "vehicle", Msg: "vehicle has rental history"}
		}
		return s.Vehicles.Delete(ctx, tx, id)
	})
	if err != nil {
		utils.LogEvent(s.RequestID, "vehicle", "delete_error", err.Error())
		return err
	}
	utils.LogEvent(s.RequestID, "vehicle", "delete", "id="+id)
	return nil
}

func (s VehicleService) List(ctx context.Context, f models.VehicleFilter, p domain.Pagination) (domain.Page[models.Vehicle], error) {
	f.Status = models.VehicleStatus(strings.ToUpper(string(f.Status)))
	f.Category = models.Category(strings.ToUpper(string(f.Category)))
	if f.Status != "" && !f.Status.Valid() {
		return domain.Page[models.Vehicle]{}, domain.ValidationError{Field: "status", Msg: "unknown vehicle status " + string(f.Status)}
	}
	if f.Category != "" && !f.Category.Valid() {
		return domain.Page[models.Vehicle]{}, domain.ValidationError{Field: "category", Msg: "unknown category " + string(f.Category)}
	}
	list, total, err := s.Vehicles.List(ctx, s.DB, f, p)
	if err != nil {
		return domain.Page[models.Vehicle]{}, err
	}
	return domain.Page[models.Vehicle]{Data: list, Pagination: p.WithTotal(total)}, nil
}

// ListAvailable is List restricted to AVAILABLE vehicles.
func (s VehicleService) ListAvailable(ctx context.Context, category models.Category, p domain.Pagination) (domain.Page[models.Vehicle], error) {
	return s.List(ctx, models.VehicleFilter{Status: models.VehicleAvailable, Category: category}, p)
}
