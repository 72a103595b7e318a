package services

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	intdb "locacar/internal/db"
	"locacar/internal/domain"
	"locacar/internal/domain/models"
	"locacar/internal/repositories"
	"locacar/internal/utils"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for any failed login, whatever the cause.
var ErrInvalidCredentials = errors.New("invalid tax id or password")

type CustomerService struct {
	DB        *sql.DB
	Customers repositories.CustomerRepository
	Rentals   repositories.RentalRepository
	RequestID string
	// HashCost defaults to bcrypt.DefaultCost.
	HashCost int
}

func (s CustomerService) WithRequestID(id string) CustomerService {
	s.RequestID = id
	return s
}

// NormalizeTaxID keeps digits only and accepts an 11 digit CPF or a 14 digit CNPJ.
func NormalizeTaxID(raw string) (string, error) {
	digits := utils.DigitsOnly(raw)
	if len(digits) != 11 && len(digits) != 14 {
		return "", domain.ValidationError{Field: "tax_id", Msg: "must have 11 (CPF) or 14 (CNPJ) digits"}
	}
	return digits, nil
}

func normalizeZip(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	digits := utils.DigitsOnly(raw)
	if len(digits) != 8 {
		return "", domain.ValidationError{Field: "zip_code", Msg: "must have 8 digits"}
	}
	return digits, nil
}

func normalizeState(raw string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return "", nil
	}
	if len(s) != 2 || s[0] < 'A' || s[0] > 'Z' || s[1] < 'A' || s[1] > 'Z' {
		return "", domain.ValidationError{Field: "state", Msg: "must be a 2 letter code"}
	}
	return s, nil
}

func normalizePhone(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	digits := utils.DigitsOnly(raw)
	if len(digits) < 10 || len(digits) > 11 {
		return "", domain.ValidationError{Field: "phone", Msg: "must have 10 or 11 digits"}
	}
	return digits, nil
}

var fieldValidator = validator.New()

func normalizeEmail(raw string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(raw))
	if err := fieldValidator.Var(e, "required,email,max=100"); err != nil {
		return "", domain.ValidationError{Field: "email", Msg: "is not a valid address", Err: err}
	}
	return e, nil
}

func normalizeName(raw string) (string, error) {
	n := utils.NormalizeSpace(raw)
	if len(n) < 2 || len(n) > 100 {
		return "", domain.ValidationError{Field: "name", Msg: "must have between 2 and 100 characters"}
	}
	return n, nil
}

// Create registers a customer with a bcrypt password hash.
func (s CustomerService) Create(ctx context.Context, in models.NewCustomer) (models.Customer, error) {
	c := models.Customer{Active: true, BirthDate: in.BirthDate, Address: utils.NormalizeSpace(in.Address), City: utils.NormalizeSpace(in.City)}
	var err error
	if c.Name, err = normalizeName(in.Name); err != nil {
		return models.Customer{}, err
	}
	if c.Email, err = normalizeEmail(in.Email); err != nil {
		return models.Customer{}, err
	}
	if c.TaxID, err = NormalizeTaxID(in.TaxID); err != nil {
		return models.Customer{}, err
	}
	if c.Phone, err = normalizePhone(in.Phone); err != nil {
		return models.Customer{}, err
	}
	if c.State, err = normalizeState(in.State); err != nil {
		return models.Customer{}, err
	}
	if c.ZipCode, err = normalizeZip(in.ZipCode); err != nil {
		return models.Customer{}, err
	}
	if len(in.Password) < 6 {
		return models.Customer{}, domain.ValidationError{Field: "password", Msg: "must have at least 6 characters"}
	}
	cost := s.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), cost)
	if err != nil {
		return models.Customer{}, domain.InternalError{Msg: "hash password", Err: err}
	}
	c.PasswordHash = string(hash)

	err = intdb.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		if taken, err := s.Customers.Exists(ctx, tx, "email", c.Email, 0); err != nil {
			return err
		} else if taken {
			return domain.ConflictError{Resource: "customer", Msg: "email already registered"}
		}
		if taken, err := s.Customers.Exists(ctx, tx, "tax_id", c.TaxID, 0); err != nil {
			return err
		} else if taken {
			return domain.ConflictError{Resource: "customer", Msg: "tax id already registered"}
		}
		id, err := s.Customers.Insert(ctx, tx, c)
		if err != nil {
			return err
		}
		c, err = s.Customers.GetByID(ctx, tx, id)
		return err
	})
	if err != nil {
		utils.LogEvent(s.RequestID, "customer", "create_error", err.Error())
		return models.Customer{}, err
	}
	utils.LogEvent(s.RequestID, "customer", "create", "id="+strconv.FormatInt(c.ID, 10))
	return c, nil
}

func (s CustomerService) Get(ctx context.Context, id int64) (models.Customer, error) {
	return s.Customers.GetByID(ctx, s.DB, id)
}

func (s CustomerService) GetByTaxID(ctx context.Context, raw string) (models.Customer, error) {
	taxID, err := NormalizeTaxID(raw)
	if err != nil {
		return models.Customer{}, err
	}
	return s.Customers.GetByTaxID(ctx, s.DB, taxID)
}

func (s CustomerService) GetByEmail(ctx context.Context, raw string) (models.Customer, error) {
	email, err := normalizeEmail(raw)
	if err != nil {
		return models.Customer{}, err
	}
	return s.Customers.GetByEmail(ctx, s.DB, email)
}

// Authenticate checks tax id and password. Unknown customers, wrong
// passwords and inactive accounts all yield ErrInvalidCredentials.
func (s CustomerService) Authenticate(ctx context.Context, rawTaxID, password string) (models.Customer, error) {
	taxID := utils.DigitsOnly(rawTaxID)
	c, err := s.Customers.GetByTaxID(ctx, s.DB, taxID)
	if domain.IsNotFound(err) {
		return models.Customer{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.Customer{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) != nil {
		return models.Customer{}, ErrInvalidCredentials
	}
	if !c.Active {
		utils.LogEvent(s.RequestID, "auth", "login_inactive", "customer_id="+strconv.FormatInt(c.ID, 10))
		return models.Customer{}, ErrInvalidCredentials
	}
	return c, nil
}

// Update patches the present fields after normalizing them.
func (s CustomerService) Update(ctx context.Context, id int64, p models.CustomerPatch) (models.Customer, error) {
	if p.Empty() {
		return models.Customer{}, domain.ValidationError{Msg: "no fields to update"}
	}
	var out models.Customer
	err := intdb.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		c, err := s.Customers.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if p.Name.Set {
			if c.Name, err = normalizeName(p.Name.Value); err != nil {
				return err
			}
		}
		if p.Email.Set {
			if c.Email, err = normalizeEmail(p.Email.Value); err != nil {
				return err
			}
			taken, err := s.Customers.Exists(ctx, tx, "email", c.Email, c.ID)
			if err != nil {
				return err
			}
			if taken {
				return domain.ConflictError{Resource: "customer", Msg: "email already registered"}
			}
		}
		if p.Phone.Set {
			if c.Phone, err = normalizePhone(p.Phone.Value); err != nil {
				return err
			}
		}
		if p.State.Set {
			if c.State, err = normalizeState(p.State.Value); err != nil {
				return err
			}
		}
		if p.ZipCode.Set {
			if c.ZipCode, err = normalizeZip(p.ZipCode.Value); err != nil {
				return err
			}
		}
		if p.Address.Set {
			c.Address = utils.NormalizeSpace(p.Address.Value)
		}
		if p.City.Set {
			c.City = utils.NormalizeSpace(p.City.Value)
		}
		p.Active.Apply(&c.Active)
		if err := s.Customers.Update(ctx, tx, c); err != nil {
			return err
		}
		out, err = s.Customers.GetByID(ctx, tx, id)
		return err
	})
	if err != nil {
		utils.LogEvent(s.RequestID, "customer", "update_error", err.Error())
		return models.Customer{}, err
	}
	utils.LogEvent(s.RequestID, "customer", "update", "id="+strconv.FormatInt(id, 10))
	return out, nil
}

// Delete removes the customer row for good. Nothing is checked here; the
// rentals foreign key refuses the delete while history references the row.
func (s CustomerService) Delete(ctx context.Context, id int64) error {
	err := intdb.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		if _, err := s.Customers.GetByID(ctx, tx, id); err != nil {
			return err
		}
		return s.Customers.Delete(ctx, tx, id)
	})
	if err != nil {
		utils.LogEvent(s.RequestID, "customer", "delete_error", err.Error())
		return err
	}
	utils.LogEvent(s.RequestID, "customer", "delete", "id="+strconv.FormatInt(id, 10))
	return nil
}

func (s CustomerService) List(ctx context.Context, f models.CustomerFilter, p domain.Pagination) (domain.Page[models.Customer], error) {
	f.Query = strings.TrimSpace(f.Query)
	list, total, err := s.Customers.List(ctx, s.DB, f, p)
	if err != nil {
		return domain.Page[models.Customer]{}, err
	}
	return domain.Page[models.Customer]{Data: list, Pagination: p.WithTotal(total)}, nil
}

// Search matches name or email substrings.
func (s CustomerService) Search(ctx context.Context, term string, p domain.Pagination) (domain.Page[models.Customer], error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return domain.Page[models.Customer]{}, domain.ValidationError{Field: "q", Msg: "search term is required"}
	}
	return s.List(ctx, models.CustomerFilter{Query: term}, p)
}

// WithRentals loads a customer and its full rental history.
func (s CustomerService) WithRentals(ctx context.Context, id int64) (models.CustomerWithRentals, error) {
	c, err := s.Customers.GetByID(ctx, s.DB, id)
	if err != nil {
		return models.CustomerWithRentals{}, err
	}
	rentals, err := s.Rentals.ListAll(ctx, s.DB, models.RentalFilter{CustomerID: id})
	if err != nil {
		return models.CustomerWithRentals{}, err
	}
	return models.CustomerWithRentals{Customer: c, Rentals: rentals}, nil
}
