package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edvin/mailings/internal/model"
)

func TestDashboardService_Stats_Success(t *testing.T) {
	db := &mockDB{}
	svc := NewDashboardService(db)
	ctx := context.Background()

	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(&mockRow{scanFunc: func(dest ...any) error {
		counts := []int{10, 4, 3, 1, 1, 1, 25, 20, 5}
		for i, c := range counts {
			*(dest[i].(*int)) = c
		}
		return nil
	}})
	db.On("Query", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(newMockRows(func(dest ...any) error {
			*(dest[0].(*string)) = model.MailingFinished
			*(dest[1].(*int)) = 1
			return nil
		}), nil).Once()
	db.On("Query", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(newMockRows(func(dest ...any) error {
			*(dest[0].(*string)) = "2026-08-27"
			*(dest[1].(*int)) = 25
			return nil
		}), nil).Once()

	stats, err := svc.Stats(ctx, ownerScope)
	require.NoError(t, err)
	assert.Equal(t, 10, stats.Recipients)
	assert.Equal(t, 3, stats.Mailings)
	assert.Equal(t, 20, stats.AttemptsSuccess)
	assert.Equal(t, 5, stats.AttemptsFailed)
	require.Len(t, stats.MailingsByStatus, 1)
	assert.Equal(t, model.MailingFinished, stats.MailingsByStatus[0].Status)
	require.Len(t, stats.AttemptsByDay, 1)
	assert.Equal(t, 25, stats.AttemptsByDay[0].Count)
	db.AssertExpectations(t)
}

func TestDashboardService_Stats_CountsError(t *testing.T) {
	db := &mockDB{}
	svc := NewDashboardService(db)
	ctx := context.Background()

	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(&mockRow{scanFunc: func(dest ...any) error {
		return errors.New("connection lost")
	}})

	stats, err := svc.Stats(ctx, ownerScope)
	require.Error(t, err)
	assert.Nil(t, stats)
	assert.Contains(t, err.Error(), "dashboard counts")
	db.AssertExpectations(t)
}
