package services

import (
	"context"
	"database/sql"
	"fmt"

	intdb "locacar/internal/db"
	"locacar/internal/domain"
	"locacar/internal/repositories"
	"locacar/internal/utils"
)

// OverdueService flags unpaid rentals that ran past their end date.
type OverdueService struct {
	DB        *sql.DB
	Rentals   repositories.RentalRepository
	RequestID string
}

func (s OverdueService) WithRequestID(id string) OverdueService {
	s.RequestID = id
	return s
}

// MarkLate sets payment_status LATE on ACTIVE rentals with end_date before
// today whose payment is still PENDING. It returns the number of rows changed.
func (s OverdueService) MarkLate(ctx context.Context, today domain.Date) (int64, error) {
	var n int64
	err := intdb.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		var err error
		n, err = s.Rentals.MarkOverduePaymentsLate(ctx, tx, today)
		return err
	})
	if err != nil {
		utils.LogEvent(s.RequestID, "overdue", "mark_late_error", err.Error())
		return 0, err
	}
	utils.LogEvent(s.RequestID, "overdue", "mark_late", fmt.Sprintf("today=%s updated=%d", today, n))
	return n, nil
}
