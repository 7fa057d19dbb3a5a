package services

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
)

// constraintErrors names the domain errors a write maps constraint
// violations to. A nil entry leaves that violation as a storage error.
type constraintErrors struct {
	unique     *apperrors.AppError
	foreignKey *apperrors.AppError
}

// mapStorageError converts a gorm error into an AppError. Errors that are
// already AppErrors pass through unchanged.
func mapStorageError(ctx context.Context, op string, err error, ce constraintErrors) error {
	if err == nil {
		return nil
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	switch {
	case ce.unique != nil && isUniqueViolation(err):
		return apperrors.Wrap(ce.unique, err)
	case ce.foreignKey != nil && isForeignKeyViolation(err):
		return apperrors.Wrap(ce.foreignKey, err)
	}

	logger.From(ctx).Warnw("storage error", "op", op, "error", err)
	return apperrors.Wrap(apperrors.ErrStorage, err)
}

// storageError wraps a failure of a read or a write without constraint mapping.
func storageError(ctx context.Context, op string, err error) error {
	return mapStorageError(ctx, op, err, constraintErrors{})
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}
