package models

import (
	"time"

	"locacar/internal/domain"
)

// Customer is a registered renter. PasswordHash never leaves the service layer.
type Customer struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	Phone        string       `json:"phone,omitempty"`
	TaxID        string       `json:"tax_id"`
	PasswordHash string       `json:"-"`
	BirthDate    *domain.Date `json:"birth_date,omitempty"`
	Address      string       `json:"address,omitempty"`
	City         string       `json:"city,omitempty"`
	State        string       `json:"state,omitempty"`
	ZipCode      string       `json:"zip_code,omitempty"`
	Active       bool         `json:"active"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

type NewCustomer struct {
	Name      string       `json:"name" binding:"required,min=2,max=100"`
	Email     string       `json:"email" binding:"required,email,max=100"`
	Phone     string       `json:"phone"`
	TaxID     string       `json:"tax_id" binding:"required,taxid"`
	Password  string       `json:"password" binding:"required,min=6"`
	BirthDate *domain.Date `json:"birth_date"`
	Address   string       `json:"address"`
	City      string       `json:"city"`
	State     string       `json:"state"`
	ZipCode   string       `json:"zip_code"`
}

// CustomerPatch only touches the keys present in the payload.
type CustomerPatch struct {
	Name    domain.Field[string] `json:"name"`
	Email   domain.Field[string] `json:"email"`
	Phone   domain.Field[string] `json:"phone"`
	Address domain.Field[string] `json:"address"`
	City    domain.Field[string] `json:"city"`
	State   domain.Field[string] `json:"state"`
	ZipCode domain.Field[string] `json:"zip_code"`
	Active  domain.Field[bool]   `json:"active"`
}

func (p CustomerPatch) Empty() bool {
	return !p.Name.Set && !p.Email.Set && !p.Phone.Set && !p.Address.Set &&
		!p.City.Set && !p.State.Set && !p.ZipCode.Set && !p.Active.Set
}

// CustomerFilter drives the paginated customer listing.
type CustomerFilter struct {
	Active *bool
	Query  string
}

// CustomerWithRentals is the customer detail view with its rental history.
type CustomerWithRentals struct {
	Customer
	Rentals []Rental `json:"rentals"`
}
