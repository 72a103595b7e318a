package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestPaginationPages(t *testing.T) {
	cases := []struct {
		total, limit, pages int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 5, 5},
	}
	for _, tc := range cases {
		p := NewPagination(1, tc.limit).WithTotal(tc.total)
		if p.Pages != tc.pages {
			t.Fatalf("total=%d limit=%d: got %d pages want %d", tc.total, tc.limit, p.Pages, tc.pages)
		}
	}
}

func TestNewPaginationClamps(t *testing.T) {
	p := NewPagination(0, 1000)
	if p.Page != 1 || p.Limit != MaxPageSize {
		t.Fatalf("unexpected clamp %+v", p)
	}
	if NewPagination(3, 0).Limit != DefaultPageSize {
		t.Fatalf("zero limit should use default")
	}
	if NewPagination(3, 20).Offset() != 40 {
		t.Fatalf("offset for page 3 limit 20 must be 40")
	}
}

func TestFieldPresence(t *testing.T) {
	var payload struct {
		Notes   Field[string] `json:"notes"`
		Mileage Field[int]    `json:"mileage_end"`
		Status  Field[string] `json:"status"`
	}
	if err := json.Unmarshal([]byte(`{"notes":"","mileage_end":0}`), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !payload.Notes.Set || payload.Notes.Value != "" {
		t.Fatalf("explicit empty notes must be present")
	}
	if !payload.Mileage.Set || payload.Mileage.Value != 0 {
		t.Fatalf("explicit zero mileage must be present")
	}
	if payload.Status.Set {
		t.Fatalf("omitted status must not be present")
	}

	status := "ACTIVE"
	payload.Status.Apply(&status)
	if status != "ACTIVE" {
		t.Fatalf("absent field must not overwrite")
	}
	Some("FINISHED").Apply(&status)
	if status != "FINISHED" {
		t.Fatalf("present field must overwrite")
	}
}

func TestErrorKinds(t *testing.T) {
	wrapped := fmt.Errorf("create rental: %w", ConflictError{Resource: "rental", Msg: "vehicle already booked"})
	if !IsConflict(wrapped) || IsValidation(wrapped) {
		t.Fatalf("conflict must survive wrapping")
	}
	if !IsNotFound(NotFoundError{Resource: "vehicle"}) {
		t.Fatalf("not found kind")
	}
	if got := (NotFoundError{Resource: "vehicle"}).Error(); got != "vehicle not found" {
		t.Fatalf("unexpected message %q", got)
	}
	cause := errors.New("no rows")
	ie := IntegrityError{Msg: "vehicle missing", Err: cause}
	if !IsIntegrity(ie) || !errors.Is(ie, cause) {
		t.Fatalf("integrity error must unwrap")
	}
	if got := (ValidationError{Field: "end_date", Msg: "must be after start_date"}).Error(); got != "end_date: must be after start_date" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestDateJSON(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"2024-03-10"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.String() != "2024-03-10" {
		t.Fatalf("got %s", d.String())
	}
	out, err := json.Marshal(d)
	if err != nil || string(out) != `"2024-03-10"` {
		t.Fatalf("marshal: %s %v", out, err)
	}
	if err := json.Unmarshal([]byte(`"10/03/2024"`), &d); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	end, _ := ParseDate("2024-03-15")
	start, _ := ParseDate("2024-03-10")
	if start.DaysUntil(end) != 5 {
		t.Fatalf("expected 5 days, got %d", start.DaysUntil(end))
	}
}

func TestDateDaysUntilIgnoresTimeOfDay(t *testing.T) {
	start := NewDate(time.Date(2025, 1, 1, 23, 30, 0, 0, time.UTC))
	end := NewDate(time.Date(2025, 1, 4, 0, 15, 0, 0, time.UTC))
	if got := start.DaysUntil(end); got != 3 {
		t.Fatalf("expected 3 days, got %d", got)
	}
	if got := end.DaysUntil(start); got != -3 {
		t.Fatalf("expected -3 days, got %d", got)
	}
	if got := start.DaysUntil(start); got != 0 {
		t.Fatalf("same day must be 0, got %d", got)
	}
}
