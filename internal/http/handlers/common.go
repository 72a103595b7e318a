package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"locacar/internal/domain"

	"github.com/gin-gonic/gin"
)

// RespondError sends a plain error payload with request_id included.
func RespondError(c *gin.Context, status int, message string, err error) {
	var details any
	if err != nil {
		details = err.Error()
	}
	respondError(c, status, "", message, details)
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		respondError(c, http.StatusBadRequest, "validation_error", "request body is empty", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "invalid payload", err.Error())
		return false
	}
	return true
}

func parseInt64Param(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "validation_error", "invalid "+name, nil)
		return 0, false
	}
	return id, true
}

func pagination(c *gin.Context) domain.Pagination {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(domain.DefaultPageSize)))
	return domain.NewPagination(page, limit)
}

func upperQuery(c *gin.Context, key string) string {
	return strings.ToUpper(strings.TrimSpace(c.Query(key)))
}
