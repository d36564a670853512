package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/havenwelfare/haven-backend/internal/apperr"
	"github.com/havenwelfare/haven-backend/internal/models"
)

func newMockRepos(t *testing.T) (*Repositories, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return NewGorm(db), mock
}

func TestGormUsers_GetByIDNotFound(t *testing.T) {
	repos, mock := newMockRepos(t)

	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}))

	_, err := repos.Users.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormUsers_GetByEmail(t *testing.T) {
	repos, mock := newMockRepos(t)
	id := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "role", "status"}).
			AddRow(id.String(), "ana@example.com", "Ana", "patient", "approved"))

	user, err := repos.Users.GetByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, models.RolePatient, user.Role)
	assert.Equal(t, models.UserApproved, user.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormUsers_UpdateStatusMissingRow(t *testing.T) {
	repos, mock := newMockRepos(t)

	mock.ExpectExec(`UPDATE "users" SET "status"=\$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repos.Users.UpdateStatus(context.Background(), uuid.New(), models.UserSuspended)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormResetTokens_RedeemRejectsUnknownToken(t *testing.T) {
	repos, mock := newMockRepos(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "password_reset_tokens" WHERE token_hash = \$1 AND used = \$2 AND expires_at > \$3 .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := repos.ResetTokens.Redeem(context.Background(), "hash", "new-hash", time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormResetTokens_RedeemUpdatesTokenAndPassword(t *testing.T) {
	repos, mock := newMockRepos(t)
	tokenID, userID := uuid.New(), uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM "password_reset_tokens" .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token_hash", "expires_at", "used"}).
			AddRow(tokenID.String(), userID.String(), "hash", now.Add(time.Hour), false))
	mock.ExpectExec(`UPDATE "password_reset_tokens" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "users" SET "password"=\$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	token, err := repos.ResetTokens.Redeem(context.Background(), "hash", "new-hash", now)
	require.NoError(t, err)
	assert.Equal(t, userID, token.UserID)
	assert.True(t, token.Used)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormDonations_SumApproved(t *testing.T) {
	repos, mock := newMockRepos(t)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM "donations" WHERE status = \$1`).
		WithArgs("approved").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(150.5))

	total, err := repos.Donations.SumApproved(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 150.5, total, 0.0001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormTreatments_RespondRequiresPending(t *testing.T) {
	repos, mock := newMockRepos(t)

	mock.ExpectExec(`UPDATE "treatment_requests" SET .* WHERE id = \$\d+ AND doctor_id = \$\d+ AND status = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repos.Treatments.RespondIfPending(context.Background(), uuid.New(), uuid.New(), models.TreatmentAccepted, time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormPing(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectPing()
	assert.NoError(t, NewGorm(db).Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormUsers_ConnectionFailureIsUnavailable(t *testing.T) {
	repos, mock := newMockRepos(t)
	dial := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}

	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnError(dial)

	_, err := repos.Users.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, dial)
	assert.Equal(t, apperr.KindUnavailable, apperr.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"bad conn", driver.ErrBadConn, ErrUnavailable},
		{"wrapped bad conn", fmt.Errorf("query: %w", driver.ErrBadConn), ErrUnavailable},
		{"conn done", sql.ErrConnDone, ErrUnavailable},
		{"deadline", context.DeadlineExceeded, ErrUnavailable},
		{"not found", gorm.ErrRecordNotFound, ErrNotFound},
		{"duplicate", gorm.ErrDuplicatedKey, ErrDuplicate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, translate(tt.err), tt.want)
		})
	}

	once := translate(driver.ErrBadConn)
	assert.Same(t, once, translate(once))

	plain := errors.New("syntax error")
	assert.Same(t, plain, translate(plain))
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(translate(plain)))
	assert.NoError(t, translate(nil))
}
