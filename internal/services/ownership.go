package services

import (
	"context"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// referenceCheck verifies that one foreign reference is usable by the acting
// user. failure is returned when the referenced row is missing, inactive or
// owned by someone else.
type referenceCheck struct {
	op      string
	exists  func(ctx context.Context, db *gorm.DB) (bool, error)
	failure *apperrors.AppError
}

func activeAccountCheck(userID string, accountID int64) referenceCheck {
	return referenceCheck{
		op: "check account",
		exists: func(ctx context.Context, db *gorm.DB) (bool, error) {
			return rowExists(ctx, db, &models.Account{}, "id = ? AND user_id = ? AND active = ?", accountID, userID, true)
		},
		failure: apperrors.ErrAccountReferenceNotFound,
	}
}

func activeCategoryCheck(userID string, categoryID int64) referenceCheck {
	return referenceCheck{
		op: "check category",
		exists: func(ctx context.Context, db *gorm.DB) (bool, error) {
			return rowExists(ctx, db, &models.Category{}, "id = ? AND user_id = ? AND active = ?", categoryID, userID, true)
		},
		failure: apperrors.ErrCategoryReferenceNotFound,
	}
}

func activeCurrencyCheck(currencyID int64) referenceCheck {
	return referenceCheck{
		op: "check currency",
		exists: func(ctx context.Context, db *gorm.DB) (bool, error) {
			return rowExists(ctx, db, &models.Currency{}, "id = ? AND active = ?", currencyID, true)
		},
		failure: apperrors.ErrCurrencyNotFound,
	}
}

// verifyReferences runs all checks concurrently and waits for every one of
// them. A storage failure wins; otherwise the first failing check in slice
// order is reported, so the result does not depend on scheduling.
func verifyReferences(ctx context.Context, db *gorm.DB, checks ...referenceCheck) error {
	if len(checks) == 0 {
		return nil
	}

	found := make([]bool, len(checks))
	g, gctx := errgroup.WithContext(ctx)
	for i, check := range checks {
		g.Go(func() error {
			ok, err := check.exists(gctx, db)
			if err != nil {
				return storageError(ctx, check.op, err)
			}
			found[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, check := range checks {
		if !found[i] {
			return check.failure
		}
	}
	return nil
}

func rowExists(ctx context.Context, db *gorm.DB, model any, query string, args ...any) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(model).Where(query, args...).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
