package services_test

import (
	"context"
	"testing"
	"time"

	"coursehub/errors"
	"coursehub/models"
	"coursehub/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPayment(store *mockPaymentStore, status models.PaymentStatus, amount float64, createdAt time.Time) {
	id := uuid.New()
	store.payments[id] = &models.Payment{
		ID:        id,
		StudentID: uuid.New(),
		CourseID:  uuid.New(),
		Amount:    amount,
		Currency:  "USD",
		Status:    status,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestPaymentStatisticsAllPeriod(t *testing.T) {
	store := newMockPaymentStore()
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	seedPayment(store, models.PaymentPending, 100, now.AddDate(0, 0, -1))
	seedPayment(store, models.PaymentAccepted, 250, now.AddDate(0, 0, -1))
	seedPayment(store, models.PaymentAccepted, 250, now.AddDate(0, 0, -2))
	seedPayment(store, models.PaymentRejected, 75, now.AddDate(0, 0, -40))

	svc := services.NewStatisticsService(store)

	stats, err := svc.GetPaymentStatistics(context.Background(), "", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "all", stats.Period)
	assert.Equal(t, 4, stats.TotalCount)
	assert.Equal(t, 675.0, stats.TotalAmount)
	assert.Equal(t, 1, stats.Pending.Count)
	assert.Equal(t, 100.0, stats.Pending.Amount)
	assert.Equal(t, 2, stats.Accepted.Count)
	assert.Equal(t, 500.0, stats.Accepted.Amount)
	assert.Equal(t, 1, stats.Rejected.Count)

	// One trend point per distinct day, oldest first
	require.Len(t, stats.Daily, 3)
	assert.Equal(t, "2026-07-19", stats.Daily[0].Date)
	assert.Equal(t, "2026-08-27", stats.Daily[2].Date)
	assert.Equal(t, 350.0, stats.Daily[2].Amount)
	assert.Equal(t, 250.0, stats.Daily[2].ApprovedAmount)
}

func TestPaymentStatisticsCustomWindow(t *testing.T) {
	store := newMockPaymentStore()
	seedPayment(store, models.PaymentAccepted, 300, time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC))
	seedPayment(store, models.PaymentAccepted, 300, time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC))

	svc := services.NewStatisticsService(store)

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	stats, err := svc.GetPaymentStatistics(context.Background(), "custom", &from, &to)
	require.NoError(t, err)
	assert.Equal(t, "custom", stats.Period)
	assert.Equal(t, 1, stats.TotalCount)
	assert.Equal(t, 300.0, stats.TotalAmount)
}

func TestPaymentStatisticsEmptyWindow(t *testing.T) {
	store := newMockPaymentStore()
	svc := services.NewStatisticsService(store)

	stats, err := svc.GetPaymentStatistics(context.Background(), "7d", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalCount)
	assert.Equal(t, 0.0, stats.TotalAmount)
	assert.Equal(t, 0, stats.Pending.Count)
	require.NotNil(t, stats.Daily)
	assert.Empty(t, stats.Daily)
}

func TestPaymentStatisticsWindowValidation(t *testing.T) {
	store := newMockPaymentStore()
	svc := services.NewStatisticsService(store)

	// Custom without bounds
	_, err := svc.GetPaymentStatistics(context.Background(), "custom", nil, nil)
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidation, errors.CodeOf(err))

	// Inverted bounds
	from := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	_, err = svc.GetPaymentStatistics(context.Background(), "custom", &from, &to)
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidation, errors.CodeOf(err))

	// Unknown period
	_, err = svc.GetPaymentStatistics(context.Background(), "fortnight", nil, nil)
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidation, errors.CodeOf(err))
}
