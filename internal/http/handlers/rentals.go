package handlers

import (
	"fmt"
	"net/http"

	"locacar/internal/domain"
	"locacar/internal/domain/models"
	"locacar/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// POST /api/rentals
func (h *Handler) CreateRental(c *gin.Context) {
	var req models.NewRental
	if !BindJSONOrError(c, &req) {
		return
	}
	r, err := h.Rentals.WithRequestID(middleware.GetRequestID(c)).Create(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// GET /api/rentals?status=&page=&limit=
func (h *Handler) ListRentals(c *gin.Context) {
	f := models.RentalFilter{Status: models.RentalStatus(upperQuery(c, "status"))}
	page, err := h.Rentals.List(c.Request.Context(), f, pagination(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /api/rentals/active
func (h *Handler) ListActiveRentals(c *gin.Context) {
	list, err := h.Rentals.ListActive(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

// GET /api/rentals/overdue
func (h *Handler) ListOverdueRentals(c *gin.Context) {
	list, err := h.Rentals.ListOverdue(c.Request.Context(), domain.NewDate(h.today()))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

// POST /api/rentals/overdue/mark-late
func (h *Handler) MarkOverdueLate(c *gin.Context) {
	n, err := h.Overdue.WithRequestID(middleware.GetRequestID(c)).MarkLate(c.Request.Context(), domain.NewDate(h.today()))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

// GET /api/rentals/:id
func (h *Handler) GetRental(c *gin.Context) {
	id, ok := parseInt64Param(c, "id")
	if !ok {
		return
	}
	r, err := h.Rentals.Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// PATCH /api/rentals/:id
func (h *Handler) PatchRental(c *gin.Context) {
	id, ok := parseInt64Param(c, "id")
	if !ok {
		return
	}
	var patch models.RentalPatch
	if !BindJSONOrError(c, &patch) {
		return
	}
	r, err := h.Rentals.WithRequestID(middleware.GetRequestID(c)).Update(c.Request.Context(), id, patch)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// POST /api/rentals/:id/finish
func (h *Handler) FinishRental(c *gin.Context) {
	id, ok := parseInt64Param(c, "id")
	if !ok {
		return
	}
	var req models.FinishRental
	if !BindJSONOrError(c, &req) {
		return
	}
	r, err := h.Rentals.WithRequestID(middleware.GetRequestID(c)).Finish(c.Request.Context(), id, req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// POST /api/rentals/:id/cancel
func (h *Handler) CancelRental(c *gin.Context) {
	id, ok := parseInt64Param(c, "id")
	if !ok {
		return
	}
	r, err := h.Rentals.WithRequestID(middleware.GetRequestID(c)).Cancel(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// DELETE /api/rentals/:id
func (h *Handler) DeleteRental(c *gin.Context) {
	id, ok := parseInt64Param(c, "id")
	if !ok {
		return
	}
	if err := h.Rentals.WithRequestID(middleware.GetRequestID(c)).Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/rentals/:id/receipt
func (h *Handler) GetRentalReceipt(c *gin.Context) {
	id, ok := parseInt64Param(c, "id")
	if !ok {
		return
	}
	pdf, filename, err := h.Receipts.WithRequestID(middleware.GetRequestID(c)).Generate(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
