package handlers

import (
	"errors"
	"net/http"
	"time"

	"locacar/internal/http/middleware"
	"locacar/internal/services"
	"locacar/internal/utils"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	TaxID    string `json:"tax_id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	reqID := middleware.GetRequestID(c)
	customer, err := h.Customers.WithRequestID(reqID).Authenticate(c.Request.Context(), req.TaxID, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		utils.LogEvent(reqID, "auth", "login_failed", "tax_id=***"+lastDigits(req.TaxID))
		respondError(c, http.StatusUnauthorized, "unauthorized", err.Error(), nil)
		return
	}
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	token, exp, err := h.Auth.Issue(customer.ID, customer.TaxID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	h.setSessionCookie(c, token, int(time.Until(exp).Seconds()))
	utils.LogEvent(reqID, "auth", "login", "customer_id="+itoa(customer.ID))
	c.JSON(http.StatusOK, gin.H{"customer": customer, "expires_at": exp})
}

// POST /api/auth/logout
func (h *Handler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// GET /api/auth/me
func (h *Handler) Me(c *gin.Context) {
	customer, err := h.Customers.Get(c.Request.Context(), middleware.CustomerID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *Handler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, value, maxAge, "/", "", h.CookieSecure, true)
}

func lastDigits(s string) string {
	d := utils.DigitsOnly(s)
	if len(d) <= 3 {
		return ""
	}
	return d[len(d)-3:]
}
