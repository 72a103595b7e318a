package utils

import (
	"time"

	"locacar/internal/domain"
)

const layoutDateTime = "2006-01-02 15:04:05"

// Today is the current calendar day in local time.
func Today() domain.Date {
	return domain.NewDate(time.Now())
}

// FormatDateTime formats time to "YYYY-MM-DD HH:MM:SS" in local timezone.
func FormatDateTime(t time.Time) string {
	return t.In(time.Local).Format(layoutDateTime)
}

// FormatDateBR renders a day as DD/MM/YYYY for printed documents.
func FormatDateBR(d domain.Date) string {
	if d.IsZero() {
		return "-"
	}
	return d.Format("02/01/2006")
}
