package handlers

import (
	"net/http"

	"locacar/internal/domain/models"
	"locacar/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// GET /api/vehicles?status=&category=&page=&limit=
func (h *Handler) ListVehicles(c *gin.Context) {
	f := models.VehicleFilter{
		Status:   models.VehicleStatus(upperQuery(c, "status")),
		Category: models.Category(upperQuery(c, "category")),
	}
	page, err := h.Vehicles.List(c.Request.Context(), f, pagination(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /api/vehicles/available?category=
func (h *Handler) ListAvailableVehicles(c *gin.Context) {
	page, err := h.Vehicles.ListAvailable(c.Request.Context(), models.Category(upperQuery(c, "category")), pagination(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// POST /api/vehicles
func (h *Handler) CreateVehicle(c *gin.Context) {
	var req models.VehicleInput
	if !BindJSONOrError(c, &req) {
		return
	}
	v, err := h.Vehicles.WithRequestID(middleware.GetRequestID(c)).Create(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

// GET /api/vehicles/:id
func (h *Handler) GetVehicle(c *gin.Context) {
	v, err := h.Vehicles.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// GET /api/vehicles/plate/:plate
func (h *Handler) GetVehicleByPlate(c *gin.Context) {
	v, err := h.Vehicles.GetByPlate(c.Request.Context(), c.Param("plate"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// PUT /api/vehicles/:id
func (h *Handler) ReplaceVehicle(c *gin.Context) {
	var req models.VehicleInput
	if !BindJSONOrError(c, &req) {
		return
	}
	v, err := h.Vehicles.WithRequestID(middleware.GetRequestID(c)).Replace(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// PATCH /api/vehicles/:id
func (h *Handler) PatchVehicle(c *gin.Context) {
	var patch models.VehiclePatch
	if !BindJSONOrError(c, &patch) {
		return
	}
	v, err := h.Vehicles.WithRequestID(middleware.GetRequestID(c)).Patch(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

type vehicleStatusRequest struct {
	Status models.VehicleStatus `json:"status" binding:"required"`
}

// PATCH /api/vehicles/:id/status
func (h *Handler) SetVehicleStatus(c *gin.Context) {
	var req vehicleStatusRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	v, err := h.Vehicles.WithRequestID(middleware.GetRequestID(c)).SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// DELETE /api/vehicles/:id
func (h *Handler) DeleteVehicle(c *gin.Context) {
	if err := h.Vehicles.WithRequestID(middleware.GetRequestID(c)).Delete(c.Request.Context(), c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/vehicles/:id/rentals
func (h *Handler) GetVehicleRentals(c *gin.Context) {
	list, err := h.Rentals.ListByVehicle(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}
