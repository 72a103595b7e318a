package handlers

import (
	"bufio"
	"errors"
	"net/http"

	"locacar/internal/http/middleware"
	"locacar/internal/storage"
	"locacar/internal/utils"

	"github.com/gin-gonic/gin"
)

const licenseField = "license_file"

var allowedLicenseTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// POST /api/rentals/license-images (multipart, field license_file)
func (h *Handler) UploadLicenseImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, storage.MaxLicenseSize+1<<20)
	fh, err := c.FormFile(licenseField)
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "license_file is required", err.Error())
		return
	}
	if fh.Size > storage.MaxLicenseSize {
		respondError(c, http.StatusRequestEntityTooLarge, "file_too_large", "file exceeds 5 MiB", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "cannot read upload", err)
		return
	}
	defer f.Close()

	br := bufio.NewReaderSize(f, 512)
	head, _ := br.Peek(512)
	contentType := http.DetectContentType(head)
	if !allowedLicenseTypes[contentType] {
		respondError(c, http.StatusUnsupportedMediaType, "unsupported_media_type", "only jpeg, png or webp images are accepted", contentType)
		return
	}

	url, err := h.Licenses.Save(c.Request.Context(), fh.Filename, br)
	if errors.Is(err, storage.ErrTooLarge) {
		respondError(c, http.StatusRequestEntityTooLarge, "file_too_large", err.Error(), nil)
		return
	}
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	utils.LogEvent(middleware.GetRequestID(c), "upload", "license_image", "url="+url)
	c.JSON(http.StatusCreated, gin.H{"license_url": url})
}
