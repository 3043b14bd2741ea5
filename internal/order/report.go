package order

import (
	"context"
	"time"

	"zidoyvelg-be/internal/auth"
	"zidoyvelg-be/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Summary aggregates orders created in [from, to). Revenue and completed
// transactions count every order that was not cancelled.
func (s *service) Summary(ctx context.Context, caller auth.Identity, from, to time.Time) (*Summary, error) {
	if caller.UserID == 0 {
		return nil, auth.ErrUnauthenticated
	}
	if !caller.IsStaff() {
		return nil, ErrForbidden
	}
	if !from.Before(to) {
		return nil, &ValidationError{Field: "from", Reason: "from must be before to"}
	}

	rows, err := s.repo.CountByStatus(ctx, from, to)
	if err != nil {
		logger.ForLayer(ctx, "service", "Summary").Error("count orders failed", zap.Error(err))
		return nil, err
	}

	return summarize(from, to, rows), nil
}

func summarize(from, to time.Time, rows []StatusSummary) *Summary {
	byStatus := make(map[Status]StatusSummary, len(rows))
	for _, r := range rows {
		byStatus[r.Status] = r
	}

	sum := &Summary{
		From:       from,
		To:         to,
		ByStatus:   make([]StatusSummary, 0, len(allStatuses)),
		NetRevenue: decimal.Zero,
	}
	for _, st := range allStatuses {
		r, ok := byStatus[st]
		if !ok {
			r = StatusSummary{Status: st, Total: decimal.Zero}
		}
		sum.ByStatus = append(sum.ByStatus, r)
		sum.TotalOrders += r.Count

		if st != StatusCancelled {
			sum.NetRevenue = sum.NetRevenue.Add(r.Total)
			sum.CompletedTransactions += r.Count
		}
		if st == StatusPending {
			sum.PendingOrders = r.Count
		}
	}
	return sum
}
