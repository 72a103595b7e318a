package services

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"locacar/internal/domain/models"
	"locacar/internal/repositories"
	"locacar/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// ReceiptService renders the rental receipt PDF.
type ReceiptService struct {
	DB        *sql.DB
	Rentals   repositories.RentalRepository
	Vehicles  repositories.VehicleRepository
	Customers repositories.CustomerRepository
	RequestID string
	Loader    func(ctx context.Context, rentalID int64) (receiptData, error)
}

type receiptData struct {
	Rental   models.Rental
	Customer models.Customer
	Vehicle  models.Vehicle
}

func (s ReceiptService) WithRequestID(id string) ReceiptService {
	s.RequestID = id
	return s
}

// Generate returns the PDF bytes and a download filename.
func (s ReceiptService) Generate(ctx context.Context, rentalID int64) ([]byte, string, error) {
	data, err := s.load(ctx, rentalID)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "receipt", "generate", fmt.Sprintf("rental_id=%d", rentalID))
	return buildReceiptPDF(data, time.Now())
}

func (s ReceiptService) load(ctx context.Context, rentalID int64) (receiptData, error) {
	if s.Loader != nil {
		return s.Loader(ctx, rentalID)
	}
	var out receiptData
	r, err := s.Rentals.GetByID(ctx, s.DB, rentalID)
	if err != nil {
		return out, err
	}
	out.Rental = r
	if out.Customer, err = s.Customers.GetByID(ctx, s.DB, r.CustomerID); err != nil {
		return out, err
	}
	if out.Vehicle, err = s.Vehicles.GetByID(ctx, s.DB, r.VehicleID); err != nil {
		return out, err
	}
	return out, nil
}

func buildReceiptPDF(d receiptData, issuedAt time.Time) ([]byte, string, error) {
	r := d.Rental
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Rental receipt", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "RENTAL RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Receipt No : RCP-%06d", r.ID))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Issued     : "+utils.FormatDateTime(issuedAt))
	pdf.Ln(10)

	section := func(title string, lines []string) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 7, title)
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		for _, l := range lines {
			pdf.Cell(0, 6, l)
			pdf.Ln(6)
		}
		pdf.Ln(4)
	}

	section("Customer", []string{
		"Name    : " + safe(d.Customer.Name, "-"),
		"Tax ID  : " + safe(d.Customer.TaxID, "-"),
		"Email   : " + safe(d.Customer.Email, "-"),
		"Phone   : " + safe(d.Customer.Phone, "-"),
	})
	section("Vehicle", []string{
		fmt.Sprintf("Model   : %s %s (%d)", safe(d.Vehicle.Brand, "-"), safe(d.Vehicle.Model, ""), d.Vehicle.Year),
		"Plate   : " + safe(d.Vehicle.LicensePlate, "-"),
		"Category: " + string(d.Vehicle.Category),
	})

	period := []string{
		"Start   : " + utils.FormatDateBR(r.StartDate),
		"End     : " + utils.FormatDateBR(r.EndDate),
	}
	if r.ActualEndDate != nil {
		period = append(period, "Returned: "+utils.FormatDateBR(*r.ActualEndDate))
	}
	period = append(period, fmt.Sprintf("Days    : %d", r.TotalDays))
	section("Period", period)

	section("Charges", []string{
		"Daily rate      : " + utils.FormatBRL(r.DailyRate),
		"Rental amount   : " + utils.FormatBRL(r.TotalAmount),
		"Additional fees : " + utils.FormatBRL(r.AdditionalFees),
		"Late fee        : " + utils.FormatBRL(r.LateFee),
	})

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Total due: "+utils.FormatBRL(r.AmountDue()))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, fmt.Sprintf("Status: %s  Payment: %s (%s)", r.Status, r.PaymentStatus, r.PaymentMethod), "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("RECEIPT_%d_%s.pdf", r.ID, safeFilenamePart(d.Customer.Name))
	return buf.Bytes(), filename, nil
}

func safe(s, def string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	s = strings.ReplaceAll(s, " ", "_")
	return utils.SanitizeFileName(s)
}
