package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"fintrack/internal/dto"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/validator"
)

// accountService handles account-related business logic.
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

var accountConstraints = constraintErrors{
	unique:     apperrors.ErrDuplicateAccount,
	foreignKey: apperrors.ErrCurrencyNotFound,
}

// accountRow is an account joined with its currency.
type accountRow struct {
	models.Account
	CurrencyCode        string
	CurrencyDescription string
}

// CreateAccount creates a new account for a user. A new account has no
// transactions, so its balance is zero.
func (s *accountService) CreateAccount(ctx context.Context, userID string, cmd dto.CreateAccountCommand) (*dto.AccountDTO, error) {
	name, err := validator.ValidateName("account name", cmd.Name)
	if err != nil {
		return nil, err
	}
	tag, err := validator.ValidateTag(cmd.Tag)
	if err != nil {
		return nil, err
	}
	if err := validator.ValidateID("currency_id", cmd.CurrencyID); err != nil {
		return nil, err
	}

	if err := verifyReferences(ctx, s.db, activeCurrencyCheck(cmd.CurrencyID)); err != nil {
		return nil, err
	}

	account := &models.Account{
		UserID:     userID,
		Name:       name,
		CurrencyID: cmd.CurrencyID,
		Tag:        tag,
		Active:     true,
	}
	if err := s.db.WithContext(ctx).Create(account).Error; err != nil {
		return nil, mapStorageError(ctx, "create account", err, accountConstraints)
	}

	row, err := s.findAccountRow(ctx, userID, account.ID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apperrors.ErrAccountNotFound
	}
	result := toAccountDTO(row, 0)
	return &result, nil
}

// GetAccountByID returns the account, active or not, with its computed
// balance. It returns nil when the account does not exist or belongs to
// another user.
func (s *accountService) GetAccountByID(ctx context.Context, userID string, accountID int64) (*dto.AccountDTO, error) {
	if err := validator.ValidateID("account_id", accountID); err != nil {
		return nil, err
	}

	row, err := s.findAccountRow(ctx, userID, accountID)
	if err != nil || row == nil {
		return nil, err
	}

	balances, err := s.balances(ctx, userID, []int64{row.ID})
	if err != nil {
		return nil, err
	}
	result := toAccountDTO(row, balances[row.ID])
	return &result, nil
}

// GetUserAccounts returns the user's accounts ordered by name, each with its
// computed balance.
func (s *accountService) GetUserAccounts(ctx context.Context, userID string, includeInactive bool) ([]dto.AccountDTO, error) {
	query := s.accountRows(ctx).Where("accounts.user_id = ?", userID)
	if !includeInactive {
		query = query.Where("accounts.active = ?", true)
	}

	var rows []accountRow
	if err := query.Order("accounts.name ASC").Order("accounts.id ASC").Scan(&rows).Error; err != nil {
		return nil, storageError(ctx, "list accounts", err)
	}

	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	balances, err := s.balances(ctx, userID, ids)
	if err != nil {
		return nil, err
	}

	result := make([]dto.AccountDTO, 0, len(rows))
	for i := range rows {
		result = append(result, toAccountDTO(&rows[i], balances[rows[i].ID]))
	}
	return result, nil
}

// UpdateAccount applies the provided fields to an active account.
func (s *accountService) UpdateAccount(ctx context.Context, userID string, accountID int64, cmd dto.UpdateAccountCommand) (*dto.AccountDTO, error) {
	if err := validator.ValidateID("account_id", accountID); err != nil {
		return nil, err
	}

	account, err := s.findActiveAccount(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if cmd.Name != nil {
		name, err := validator.ValidateName("account name", *cmd.Name)
		if err != nil {
			return nil, err
		}
		updates["name"] = name
	}
	if cmd.Tag != nil {
		tag, err := validator.ValidateTag(cmd.Tag)
		if err != nil {
			return nil, err
		}
		updates["tag"] = tag
	}
	if cmd.CurrencyID != nil && *cmd.CurrencyID != account.CurrencyID {
		if err := validator.ValidateID("currency_id", *cmd.CurrencyID); err != nil {
			return nil, err
		}
		if err := verifyReferences(ctx, s.db, activeCurrencyCheck(*cmd.CurrencyID)); err != nil {
			return nil, err
		}
		updates["currency_id"] = *cmd.CurrencyID
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(account).Updates(updates).Error; err != nil {
			return nil, mapStorageError(ctx, "update account", err, accountConstraints)
		}
	}

	return s.GetAccountByID(ctx, userID, accountID)
}

// DeleteAccount soft-deletes an active account. Its transactions are kept
// and still count toward the account balance.
func (s *accountService) DeleteAccount(ctx context.Context, userID string, accountID int64) error {
	if err := validator.ValidateID("account_id", accountID); err != nil {
		return err
	}

	account, err := s.findActiveAccount(ctx, userID, accountID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Model(account).Update("active", false).Error; err != nil {
		return storageError(ctx, "delete account", err)
	}

	logger.From(ctx).Infow("account deactivated", "account_id", accountID, "user_id", userID)
	return nil
}

func (s *accountService) findActiveAccount(ctx context.Context, userID string, accountID int64) (*models.Account, error) {
	var account models.Account
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND active = ?", accountID, userID, true).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, storageError(ctx, "find account", err)
	}
	return &account, nil
}

func (s *accountService) accountRows(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("accounts").
		Select("accounts.*, currencies.code AS currency_code, currencies.description AS currency_description").
		Joins("LEFT JOIN currencies ON currencies.id = accounts.currency_id")
}

func (s *accountService) findAccountRow(ctx context.Context, userID string, accountID int64) (*accountRow, error) {
	var rows []accountRow
	err := s.accountRows(ctx).
		Where("accounts.id = ? AND accounts.user_id = ?", accountID, userID).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, storageError(ctx, "find account", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// balances sums the active transactions of each account, in cents. Accounts
// without transactions are absent from the map.
func (s *accountService) balances(ctx context.Context, userID string, accountIDs []int64) (map[int64]int64, error) {
	result := make(map[int64]int64, len(accountIDs))
	if len(accountIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		AccountID int64
		Balance   int64
	}
	err := s.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select("account_id, COALESCE(SUM(amount), 0) AS balance").
		Where("user_id = ? AND active = ? AND account_id IN ?", userID, true, accountIDs).
		Group("account_id").
		Scan(&rows).Error
	if err != nil {
		return nil, storageError(ctx, "sum balances", err)
	}

	for _, r := range rows {
		result[r.AccountID] = r.Balance
	}
	return result, nil
}

func toAccountDTO(row *accountRow, balance int64) dto.AccountDTO {
	return dto.AccountDTO{
		ID:                  row.ID,
		UserID:              row.UserID,
		Name:                row.Name,
		CurrencyID:          row.CurrencyID,
		CurrencyCode:        row.CurrencyCode,
		CurrencyDescription: row.CurrencyDescription,
		Tag:                 row.Tag,
		Balance:             validator.FromCents(balance),
		Active:              row.Active,
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	}
}
