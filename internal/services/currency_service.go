package services

import (
	"context"

	"gorm.io/gorm"

	"fintrack/internal/dto"
	"fintrack/internal/models"
)

// currencyService lists reference currencies.
type currencyService struct {
	db *gorm.DB
}

// NewCurrencyService creates a new CurrencyServicer.
func NewCurrencyService(db *gorm.DB) CurrencyServicer {
	return &currencyService{db: db}
}

// ListActiveCurrencies returns the active currencies ordered by code.
func (s *currencyService) ListActiveCurrencies(ctx context.Context) ([]dto.CurrencyDTO, error) {
	var currencies []models.Currency
	if err := s.db.WithContext(ctx).
		Where("active = ?", true).
		Order("code ASC").
		Find(&currencies).Error; err != nil {
		return nil, storageError(ctx, "list currencies", err)
	}

	result := make([]dto.CurrencyDTO, 0, len(currencies))
	for _, c := range currencies {
		result = append(result, dto.CurrencyDTO{
			ID:          c.ID,
			Code:        c.Code,
			Description: c.Description,
			Active:      c.Active,
		})
	}
	return result, nil
}
