package services

import (
	"context"
	"time"

	"coursehub/errors"
	"coursehub/models"
	"coursehub/repository"
)

// Statistics periods accepted by the API.
const (
	PeriodAll    = "all"
	PeriodToday  = "today"
	Period7Days  = "7d"
	Period30Days = "30d"
	Period365    = "365d"
	PeriodCustom = "custom"
)

// StatisticsService computes read-only rollups over the payment store.
// Nothing is cached; every request recomputes from the authoritative
// records.
type StatisticsService struct {
	payments repository.PaymentStore
	now      func() time.Time
}

// NewStatisticsService creates a new StatisticsService instance
func NewStatisticsService(payments repository.PaymentStore) *StatisticsService {
	return &StatisticsService{payments: payments, now: time.Now}
}

// GetPaymentStatistics aggregates counts, amount sums and the daily trend
// series for the requested window. Empty windows yield all-zero
// structures, never an error.
func (s *StatisticsService) GetPaymentStatistics(ctx context.Context, period string, from, to *time.Time) (*models.PaymentStatistics, error) {
	windowFrom, windowTo, normalized, err := s.resolveWindow(period, from, to)
	if err != nil {
		return nil, err
	}

	pending, accepted, rejected, err := s.payments.Aggregate(ctx, windowFrom, windowTo)
	if err != nil {
		return nil, errors.Classify(err)
	}

	daily, err := s.payments.DailySeries(ctx, windowFrom, windowTo)
	if err != nil {
		return nil, errors.Classify(err)
	}
	if daily == nil {
		daily = []models.DailyPoint{}
	}

	return &models.PaymentStatistics{
		Period:      normalized,
		TotalCount:  pending.Count + accepted.Count + rejected.Count,
		TotalAmount: pending.Amount + accepted.Amount + rejected.Amount,
		Pending:     pending,
		Accepted:    accepted,
		Rejected:    rejected,
		Daily:       daily,
	}, nil
}

// resolveWindow turns a named period into absolute bounds. A custom
// period requires an explicit from and to.
func (s *StatisticsService) resolveWindow(period string, from, to *time.Time) (*time.Time, *time.Time, string, error) {
	now := s.now().UTC()

	switch period {
	case "", PeriodAll:
		return nil, nil, PeriodAll, nil
	case PeriodToday:
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		return &start, nil, PeriodToday, nil
	case Period7Days:
		start := now.AddDate(0, 0, -7)
		return &start, nil, Period7Days, nil
	case Period30Days:
		start := now.AddDate(0, 0, -30)
		return &start, nil, Period30Days, nil
	case Period365:
		start := now.AddDate(0, 0, -365)
		return &start, nil, Period365, nil
	case PeriodCustom:
		if from == nil || to == nil {
			return nil, nil, "", errors.NewValidationError(map[string]string{
				"from": "required for a custom period",
				"to":   "required for a custom period",
			})
		}
		if to.Before(*from) {
			return nil, nil, "", errors.NewValidationError(map[string]string{
				"to": "must not precede from",
			})
		}
		return from, to, PeriodCustom, nil
	default:
		return nil, nil, "", errors.NewValidationError(map[string]string{
			"period": "must be one of all, today, 7d, 30d, 365d, custom",
		})
	}
}
