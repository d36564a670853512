package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// NewGorm wires every repository to a gorm connection.
func NewGorm(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:          &gormUsers{db: db},
		ResetTokens:    &gormResetTokens{db: db},
		Donations:      &gormDonations{db: db},
		Treatments:     &gormTreatments{db: db},
		RehabCenters:   &gormRehabCenters{db: db},
		AddictionTypes: &gormAddictionTypes{db: db},
		AuditLogs:      &gormAuditLogs{db: db},
		Settings:       &gormSettings{db: db},
		SystemLogs:     &gormSystemLogs{db: db},
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
}

// translate maps gorm sentinel errors onto the repository ones and
// connection failures onto ErrUnavailable, keeping the cause in the chain.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrUnavailable):
		return err
	case unreachable(err):
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

// affected turns a zero-row write into ErrNotFound.
func affected(result *gorm.DB) error {
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// unreachable reports whether err means the database could not be reached,
// as opposed to the query itself failing.
func unreachable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return pgconn.Timeout(err)
}
