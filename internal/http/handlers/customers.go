package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"locacar/internal/domain/models"
	"locacar/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

// POST /api/customers
func (h *Handler) CreateCustomer(c *gin.Context) {
	var req models.NewCustomer
	if !BindJSONOrError(c, &req) {
		return
	}
	customer, err := h.Customers.WithRequestID(middleware.GetRequestID(c)).Create(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// GET /api/customers?active=&page=&limit=
func (h *Handler) ListCustomers(c *gin.Context) {
	var f models.CustomerFilter
	if raw := strings.TrimSpace(c.Query("active")); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "validation_error", "active must be true or false", nil)
			return
		}
		f.Active = &active
	}
	page, err := h.Customers.List(c.Request.Context(), f, pagination(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /api/customers/search?q=
func (h *Handler) SearchCustomers(c *gin.Context) {
	page, err := h.Customers.Search(c.Request.Context(), c.Query("q"), pagination(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /api/customers/tax-id/:taxId
func (h *Handler) GetCustomerByTaxID(c *gin.Context) {
	customer, err := h.Customers.GetByTaxID(c.Request.Context(), c.Param("taxId"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// GET /api/customers/:id
func (h *Handler) GetCustomer(c *gin.Context) {
	id, ok := parseInt64Param(c, "id")
	if !ok {
		return
	}
	customer, err := h.Customers.Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// GET /api/customers/:id/rentals
func (h *Handler) GetCustomerRentals(c *gin.Context) {
	id, ok := parseInt64Param(c, "id")
	if !ok {
		return
	}
	out, err := h.Customers.WithRentals(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// PATCH /api/customers/:id
func (h *Handler) PatchCustomer(c *gin.Context) {
	id, ok := parseInt64Param(c, "id")
	if !ok {
		return
	}
	var patch models.CustomerPatch
	if !BindJSONOrError(c, &patch) {
		return
	}
	customer, err := h.Customers.WithRequestID(middleware.GetRequestID(c)).Update(c.Request.Context(), id, patch)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// DELETE /api/customers/:id
func (h *Handler) DeleteCustomer(c *gin.Context) {
	id, ok := parseInt64Param(c, "id")
	if !ok {
		return
	}
	if err := h.Customers.WithRequestID(middleware.GetRequestID(c)).Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
