package models

import (
	"time"

	"locacar/internal/domain"

	"github.com/shopspring/decimal"
)

type RentalStatus string

const (
	RentalActive    RentalStatus = "ACTIVE"
	RentalFinished  RentalStatus = "FINISHED"
	RentalCancelled RentalStatus = "CANCELLED"
)

func (s RentalStatus) Valid() bool {
	switch s {
	case RentalActive, RentalFinished, RentalCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentLate    PaymentStatus = "LATE"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentLate:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "CASH"
	PaymentCreditCard   PaymentMethod = "CREDIT_CARD"
	PaymentDebitCard    PaymentMethod = "DEBIT_CARD"
	PaymentPix          PaymentMethod = "PIX"
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCreditCard, PaymentDebitCard, PaymentPix, PaymentBankTransfer:
		return true
	}
	return false
}

// Rental is one agreement between a customer and a vehicle. DailyRate is a
// snapshot of the vehicle rate at creation time.
type Rental struct {
	ID               int64           `json:"id"`
	CustomerID       int64           `json:"customer_id"`
	VehicleID        string          `json:"vehicle_id"`
	StartDate        domain.Date     `json:"start_date"`
	EndDate          domain.Date     `json:"end_date"`
	ActualEndDate    *domain.Date    `json:"actual_end_date,omitempty"`
	TotalDays        int             `json:"total_days"`
	DailyRate        decimal.Decimal `json:"daily_rate"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	AdditionalFees   decimal.Decimal `json:"additional_fees"`
	LateFee          decimal.Decimal `json:"late_fee"`
	FuelLevel        *int            `json:"fuel_level,omitempty"`
	MileageStart     int             `json:"mileage_start"`
	MileageEnd       *int            `json:"mileage_end,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	ReturnNotes      string          `json:"return_notes,omitempty"`
	Status           RentalStatus    `json:"status"`
	PaymentStatus    PaymentStatus   `json:"payment_status"`
	PaymentMethod    PaymentMethod   `json:"payment_method"`
	LicenseImagePath string          `json:"license_image_path,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// AmountDue is what the customer owes on return. Fees are kept apart from
// TotalAmount and only summed here.
func (r Rental) AmountDue() decimal.Decimal {
	return r.TotalAmount.Add(r.AdditionalFees).Add(r.LateFee)
}

type NewRental struct {
	CustomerID       int64           `json:"customer_id" binding:"required,gt=0"`
	VehicleID        string          `json:"vehicle_id" binding:"required"`
	StartDate        domain.Date     `json:"start_date"`
	EndDate          domain.Date     `json:"end_date"`
	MileageStart     int             `json:"mileage_start" binding:"min=0"`
	PaymentMethod    PaymentMethod   `json:"payment_method" binding:"required"`
	Notes            string          `json:"notes"`
	AdditionalFees   decimal.Decimal `json:"additional_fees"`
	LicenseImagePath string          `json:"license_image_path"`
}

// RentalPatch carries presence flags; absent keys leave the stored value alone.
type RentalPatch struct {
	StartDate        domain.Field[domain.Date]     `json:"start_date"`
	EndDate          domain.Field[domain.Date]     `json:"end_date"`
	MileageEnd       domain.Field[*int]            `json:"mileage_end"`
	FuelLevel        domain.Field[*int]            `json:"fuel_level"`
	Notes            domain.Field[string]          `json:"notes"`
	ReturnNotes      domain.Field[string]          `json:"return_notes"`
	AdditionalFees   domain.Field[decimal.Decimal] `json:"additional_fees"`
	LateFee          domain.Field[decimal.Decimal] `json:"late_fee"`
	Status           domain.Field[RentalStatus]    `json:"status"`
	PaymentStatus    domain.Field[PaymentStatus]   `json:"payment_status"`
	PaymentMethod    domain.Field[PaymentMethod]   `json:"payment_method"`
	LicenseImagePath domain.Field[string]          `json:"license_image_path"`
}

func (p RentalPatch) Apply(r *Rental) {
	p.StartDate.Apply(&r.StartDate)
	p.EndDate.Apply(&r.EndDate)
	p.MileageEnd.Apply(&r.MileageEnd)
	p.FuelLevel.Apply(&r.FuelLevel)
	p.Notes.Apply(&r.Notes)
	p.ReturnNotes.Apply(&r.ReturnNotes)
	p.AdditionalFees.Apply(&r.AdditionalFees)
	p.LateFee.Apply(&r.LateFee)
	p.Status.Apply(&r.Status)
	p.PaymentStatus.Apply(&r.PaymentStatus)
	p.PaymentMethod.Apply(&r.PaymentMethod)
	p.LicenseImagePath.Apply(&r.LicenseImagePath)
}

// Validate checks the field-level rules of a merged rental. It does not look
// at other rentals.
func (r Rental) Validate() error {
	if !r.EndDate.After(r.StartDate.Time) {
		return domain.ValidationError{Field: "end_date", Msg: "must be after start_date"}
	}
	if !r.Status.Valid() {
		return domain.ValidationError{Field: "status", Msg: "unknown rental status " + string(r.Status)}
	}
	if !r.PaymentStatus.Valid() {
		return domain.ValidationError{Field: "payment_status", Msg: "unknown payment status " + string(r.PaymentStatus)}
	}
	if !r.PaymentMethod.Valid() {
		return domain.ValidationError{Field: "payment_method", Msg: "unknown payment method " + string(r.PaymentMethod)}
	}
	if r.MileageEnd != nil && *r.MileageEnd < r.MileageStart {
		return domain.ValidationError{Field: "mileage_end", Msg: "must not be lower than mileage_start"}
	}
	if r.FuelLevel != nil && (*r.FuelLevel < 0 || *r.FuelLevel > 100) {
		return domain.ValidationError{Field: "fuel_level", Msg: "must be between 0 and 100"}
	}
	if r.AdditionalFees.IsNegative() {
		return domain.ValidationError{Field: "additional_fees", Msg: "must not be negative"}
	}
	if r.LateFee.IsNegative() {
		return domain.ValidationError{Field: "late_fee", Msg: "must not be negative"}
	}
	return nil
}

// FinishRental is the return-of-vehicle payload.
type FinishRental struct {
	ActualEndDate domain.Date     `json:"actual_end_date"`
	MileageEnd    int             `json:"mileage_end" binding:"min=0"`
	FuelLevel     int             `json:"fuel_level" binding:"min=0,max=100"`
	LateFee       decimal.Decimal `json:"late_fee"`
	ReturnNotes   string          `json:"return_notes"`
}

type RentalFilter struct {
	Status     RentalStatus
	CustomerID int64
	VehicleID  string
}

// TotalDays is the billable length of a rental, never less than one day.
func TotalDays(start, end domain.Date) int {
	days := start.DaysUntil(end)
	if days < 1 {
		return 1
	}
	return days
}

// Quote prices a rental at creation: days times the current daily rate.
func Quote(start, end domain.Date, dailyRate decimal.Decimal) (int, decimal.Decimal) {
	days := TotalDays(start, end)
	return days, dailyRate.Mul(decimal.NewFromInt(int64(days)))
}
