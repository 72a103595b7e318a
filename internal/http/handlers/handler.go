package handlers

import (
	"context"
	"database/sql"
	"io"
	"sync"
	"time"

	"locacar/internal/services"

	"github.com/gin-gonic/gin"
)

// LicenseStore persists uploaded license images and returns their URL.
type LicenseStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// Handler carries the services every route needs.
type Handler struct {
	DB        *sql.DB
	Customers services.CustomerService
	Vehicles  services.VehicleService
	Rentals   services.RentalService
	Receipts  services.ReceiptService
	Overdue   services.OverdueService
	Auth      services.AuthService
	Licenses  LicenseStore

	CookieSecure bool
	// Today is overridable in tests.
	Today func() time.Time

	routerMu sync.RWMutex
	router   *gin.Engine
}

// SetRouter stores the active gin engine for /api/routes.
func (h *Handler) SetRouter(r *gin.Engine) {
	h.routerMu.Lock()
	defer h.routerMu.Unlock()
	h.router = r
}

func (h *Handler) today() time.Time {
	if h.Today != nil {
		return h.Today()
	}
	return time.Now()
}
