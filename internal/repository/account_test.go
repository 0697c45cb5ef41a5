package repository

import (
	"context"
	"regexp"
	"testing"

	"engage/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository_GetByUserID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "token_accounts" WHERE user_id = $1 ORDER BY "token_accounts"."id" LIMIT $2`)).
			WithArgs(1, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "tokens_remaining", "tokens_limit", "plan_id"}).
				AddRow(1, 1, 42, 50, "free"))

		account, err := repo.GetByUserID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 42, account.TokensRemaining)
		assert.Equal(t, 50, account.TokensLimit)
		assert.Equal(t, "free", account.PlanID)
	})

	t.Run("missing row maps to ErrAccountNotFound", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "token_accounts"`)).
			WithArgs(99, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetByUserID(ctx, 99)
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})
}

func TestAccountRepository_Consume(t *testing.T) {
	ctx := context.Background()

	t.Run("decrements and reports the remainder in one statement", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewAccountRepository(db)

		// Check, decrement and balance read are one conditional UPDATE
		// with RETURNING; no follow-up SELECT is allowed.
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`UPDATE "token_accounts" SET "tokens_remaining"=tokens_remaining - 1 WHERE user_id = $1 AND tokens_remaining > 0 RETURNING "tokens_remaining"`)).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"tokens_remaining"}).AddRow(41))
		mock.ExpectCommit()

		remaining, err := repo.Consume(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 41, remaining)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero balance is rejected without decrement", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewAccountRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`UPDATE "token_accounts"`)).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"tokens_remaining"}))
		mock.ExpectCommit()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "token_accounts"`)).
			WithArgs(1, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "tokens_remaining", "tokens_limit"}).
				AddRow(1, 1, 0, 50))

		_, err := repo.Consume(ctx, 1)
		assert.ErrorIs(t, err, ErrInsufficientTokens)
	})

	t.Run("missing account surfaces ErrAccountNotFound", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewAccountRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`UPDATE "token_accounts"`)).
			WithArgs(99).
			WillReturnRows(sqlmock.NewRows([]string{"tokens_remaining"}))
		mock.ExpectCommit()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "token_accounts"`)).
			WithArgs(99, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.Consume(ctx, 99)
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})
}

func TestAccountRepository_SetBalance(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "token_accounts"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.SetBalance(context.Background(), 1, 500, 500, models.PlanPro)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
