package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edvin/mailings/internal/model"
)

func messageOwnerRow(ownerID string) *mockRow {
	return &mockRow{scanFunc: func(dest ...any) error {
		*(dest[0].(*string)) = ownerID
		return nil
	}}
}

func recipientCountRow(count int) *mockRow {
	return &mockRow{scanFunc: func(dest ...any) error {
		*(dest[0].(*int)) = count
		return nil
	}}
}

// ---------- Create ----------

func TestMailingService_Create_Success(t *testing.T) {
	db := &mockDB{}
	svc := NewMailingService(db)
	ctx := context.Background()

	m := &model.Mailing{
		StartAt:      time.Now(),
		EndAt:        time.Now().Add(24 * time.Hour),
		MessageID:    "msg-1",
		RecipientIDs: []string{"rec-1", "rec-2", "rec-1"},
	}

	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(messageOwnerRow("user-1")).Once()
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(recipientCountRow(2)).Once()
	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).Return(pgconn.CommandTag{}, nil)

	err := svc.Create(ctx, ownerScope, m)
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, model.MailingCreated, m.Status)
	assert.Equal(t, "user-1", m.OwnerID)
	// duplicate recipient id collapsed
	assert.Equal(t, []string{"rec-1", "rec-2"}, m.RecipientIDs)
	// 1 mailing insert + 2 recipient attachments
	db.AssertNumberOfCalls(t, "Exec", 3)
	db.AssertExpectations(t)
}

func TestMailingService_Create_MessageNotVisible(t *testing.T) {
	db := &mockDB{}
	svc := NewMailingService(db)
	ctx := context.Background()

	row := &mockRow{scanFunc: func(dest ...any) error { return pgx.ErrNoRows }}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(row).Once()

	err := svc.Create(ctx, ownerScope, &model.Mailing{
		MessageID:    "msg-other",
		RecipientIDs: []string{"rec-1"},
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "msg-other")
	db.AssertExpectations(t)
}

func TestMailingService_Create_NoRecipients(t *testing.T) {
	db := &mockDB{}
	svc := NewMailingService(db)
	ctx := context.Background()

	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(messageOwnerRow("user-1")).Once()

	err := svc.Create(ctx, ownerScope, &model.Mailing{MessageID: "msg-1"})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "at least one recipient")
	db.AssertExpectations(t)
}

func TestMailingService_Create_ForeignRecipient(t *testing.T) {
	db := &mockDB{}
	svc := NewMailingService(db)
	ctx := context.Background()

	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(messageOwnerRow("user-1")).Once()
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(recipientCountRow(1)).Once()

	err := svc.Create(ctx, ownerScope, &model.Mailing{
		MessageID:    "msg-1",
		RecipientIDs: []string{"rec-1", "rec-foreign"},
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	db.AssertExpectations(t)
}

// ---------- GetByID ----------

func TestMailingService_GetByID_NotFound(t *testing.T) {
	db := &mockDB{}
	svc := NewMailingService(db)
	ctx := context.Background()

	row := &mockRow{scanFunc: func(dest ...any) error { return pgx.ErrNoRows }}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(row)

	result, err := svc.GetByID(ctx, ownerScope, "nonexistent")
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrNotFound)
	db.AssertExpectations(t)
}

func TestMailingService_GetByID_Success(t *testing.T) {
	db := &mockDB{}
	svc := NewMailingService(db)
	ctx := context.Background()

	now := time.Now().Truncate(time.Microsecond)
	row := &mockRow{scanFunc: func(dest ...any) error {
		*(dest[0].(*string)) = "mlg-1"
		*(dest[1].(*time.Time)) = now
		*(dest[2].(*time.Time)) = now.Add(time.Hour)
		*(dest[3].(*string)) = model.MailingCreated
		*(dest[4].(*string)) = "msg-1"
		*(dest[5].(*[]string)) = []string{"rec-1", "rec-2"}
		*(dest[6].(*string)) = "user-1"
		*(dest[7].(*time.Time)) = now
		*(dest[8].(*time.Time)) = now
		return nil
	}}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(row)

	result, err := svc.GetByID(ctx, ownerScope, "mlg-1")
	require.NoError(t, err)
	assert.Equal(t, model.MailingCreated, result.Status)
	assert.Equal(t, []string{"rec-1", "rec-2"}, result.RecipientIDs)
	db.AssertExpectations(t)
}

// ---------- Update ----------

func TestMailingService_Update_Invisible(t *testing.T) {
	db := &mockDB{}
	svc := NewMailingService(db)
	ctx := context.Background()

	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(messageOwnerRow("user-1")).Once()
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(recipientCountRow(1)).Once()
	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("UPDATE 0"), nil)

	err := svc.Update(ctx, ownerScope, &model.Mailing{
		ID:           "mlg-1",
		MessageID:    "msg-1",
		RecipientIDs: []string{"rec-1"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	db.AssertExpectations(t)
}

func TestMailingService_Update_ReplacesRecipients(t *testing.T) {
	db := &mockDB{}
	svc := NewMailingService(db)
	ctx := context.Background()

	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(messageOwnerRow("user-1")).Once()
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(recipientCountRow(2)).Once()
	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("UPDATE 1"), nil)

	err := svc.Update(ctx, ownerScope, &model.Mailing{
		ID:           "mlg-1",
		MessageID:    "msg-1",
		RecipientIDs: []string{"rec-1", "rec-2"},
	})
	require.NoError(t, err)
	// update + detach + 2 attachments
	db.AssertNumberOfCalls(t, "Exec", 4)
	db.AssertExpectations(t)
}

// ---------- Delete ----------

func TestMailingService_Delete_DBError(t *testing.T) {
	db := &mockDB{}
	svc := NewMailingService(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.CommandTag{}, errors.New("db error"))

	err := svc.Delete(ctx, ownerScope, "mlg-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete mailing")
	db.AssertExpectations(t)
}
