package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Date is a calendar day without a time component. It travels as "YYYY-MM-DD".
type Date struct {
	time.Time
}

// NewDate truncates t to midnight UTC of its calendar day.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ValidationError{Msg: fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", s), Err: err}
	}
	return Date{t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// DaysUntil returns whole days from d to other.
func (d Date) DaysUntil(other Date) int {
	return int(NewDate(other.Time).Sub(NewDate(d.Time).Time).Hours() / 24)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		*d = Date{}
		return nil
	}
	// Accept full timestamps too; only the day part is kept.
	if len(s) > len(DateLayout) {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			*d = NewDate(t)
			return nil
		}
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
