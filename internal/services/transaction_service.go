package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fintrack/internal/dto"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/validator"
)

// Names reported when a joined reference row is missing.
const (
	unknownAccountName  = "Unknown Account"
	unknownCategoryName = "Unknown Category"
	unknownCurrencyCode = "Unknown"
)

const maxSearchLength = 100

// transactionService handles transaction-related business logic.
type transactionService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db, now: time.Now}
}

var transactionConstraints = constraintErrors{
	unique:     apperrors.ErrDuplicateTransaction,
	foreignKey: apperrors.ErrStaleReference,
}

// transactionRow is a transaction joined with the names of its references.
// Join columns are nullable because the joins are outer joins.
type transactionRow struct {
	ID              int64
	UserID          string
	TransactionDate time.Time
	AccountID       int64
	AccountName     *string
	CategoryID      int64
	CategoryName    *string
	CategoryType    *string
	Amount          int64
	CurrencyID      int64
	CurrencyCode    *string
	Comment         *string
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CreateTransaction validates and records a transaction. The account, category
// and currency are verified together before the insert.
func (s *transactionService) CreateTransaction(ctx context.Context, userID string, cmd dto.CreateTransactionCommand) (*dto.TransactionDTO, error) {
	if err := validator.ValidateID("account_id", cmd.AccountID); err != nil {
		return nil, err
	}
	if err := validator.ValidateID("category_id", cmd.CategoryID); err != nil {
		return nil, err
	}
	if err := validator.ValidateID("currency_id", cmd.CurrencyID); err != nil {
		return nil, err
	}
	if err := validator.ValidateAmount(cmd.Amount); err != nil {
		return nil, err
	}
	date, err := validator.ParseTransactionDate(cmd.TransactionDate, s.now())
	if err != nil {
		return nil, err
	}
	comment := validator.SanitizeOptional(cmd.Comment, validator.MaxCommentLength)

	if err := verifyReferences(ctx, s.db,
		activeAccountCheck(userID, cmd.AccountID),
		activeCategoryCheck(userID, cmd.CategoryID),
		activeCurrencyCheck(cmd.CurrencyID),
	); err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		UserID:          userID,
		TransactionDate: date,
		AccountID:       cmd.AccountID,
		CategoryID:      cmd.CategoryID,
		Amount:          validator.ToCents(cmd.Amount),
		CurrencyID:      cmd.CurrencyID,
		Comment:         comment,
		Active:          true,
	}
	if err := s.db.WithContext(ctx).Create(transaction).Error; err != nil {
		return nil, mapStorageError(ctx, "create transaction", err, transactionConstraints)
	}

	return s.reload(ctx, userID, transaction.ID)
}

// GetTransactionByID returns the active transaction, or nil when it does not
// exist, is inactive or belongs to another user.
func (s *transactionService) GetTransactionByID(ctx context.Context, userID string, transactionID int64) (*dto.TransactionDTO, error) {
	if err := validator.ValidateID("transaction_id", transactionID); err != nil {
		return nil, err
	}

	var rows []transactionRow
	err := s.enriched(ctx).
		Where("t.id = ? AND t.user_id = ? AND t.active = ?", transactionID, userID, true).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, storageError(ctx, "find transaction", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	result := toTransactionDTO(&rows[0])
	return &result, nil
}

// GetUserTransactions returns one page of the user's transactions.
func (s *transactionService) GetUserTransactions(ctx context.Context, userID string, query dto.GetTransactionsQuery) (*pagination.PageResponse[dto.TransactionDTO], error) {
	filter, err := s.buildFilter(query)
	if err != nil {
		return nil, err
	}

	page := pagination.PageRequest{Page: query.Page, Limit: query.Limit}
	page.Normalize()
	sort := dto.ParseTransactionSort(query.Sort)

	var total int64
	if err := s.db.WithContext(ctx).
		Table("transactions AS t").
		Scopes(filter.apply(userID)).
		Count(&total).Error; err != nil {
		return nil, storageError(ctx, "count transactions", err)
	}

	var rows []transactionRow
	if err := s.enriched(ctx).
		Scopes(filter.apply(userID), pagination.Paginate(page)).
		Order(clause.OrderByColumn{Column: clause.Column{Table: "t", Name: sort.Column()}, Desc: sort.Descending()}).
		Order(clause.OrderByColumn{Column: clause.Column{Table: "t", Name: "id"}}).
		Scan(&rows).Error; err != nil {
		return nil, storageError(ctx, "list transactions", err)
	}

	items := make([]dto.TransactionDTO, 0, len(rows))
	for i := range rows {
		items = append(items, toTransactionDTO(&rows[i]))
	}

	resp := pagination.NewPageResponse(items, page.Page, page.Limit, total)
	return &resp, nil
}

// UpdateTransaction applies the provided fields to an active transaction.
// Only references that change are verified.
func (s *transactionService) UpdateTransaction(ctx context.Context, userID string, transactionID int64, cmd dto.UpdateTransactionCommand) (*dto.TransactionDTO, error) {
	if err := validator.ValidateID("transaction_id", transactionID); err != nil {
		return nil, err
	}

	existing, err := s.findActive(ctx, userID, transactionID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	var checks []referenceCheck

	if cmd.TransactionDate != nil {
		date, err := validator.ParseTransactionDate(*cmd.TransactionDate, s.now())
		if err != nil {
			return nil, err
		}
		updates["transaction_date"] = date
	}
	if cmd.AccountID != nil {
		if err := validator.ValidateID("account_id", *cmd.AccountID); err != nil {
			return nil, err
		}
		if *cmd.AccountID != existing.AccountID {
			checks = append(checks, activeAccountCheck(userID, *cmd.AccountID))
			updates["account_id"] = *cmd.AccountID
		}
	}
	if cmd.CategoryID != nil {
		if err := validator.ValidateID("category_id", *cmd.CategoryID); err != nil {
			return nil, err
		}
		if *cmd.CategoryID != existing.CategoryID {
			checks = append(checks, activeCategoryCheck(userID, *cmd.CategoryID))
			updates["category_id"] = *cmd.CategoryID
		}
	}
	if cmd.CurrencyID != nil {
		if err := validator.ValidateID("currency_id", *cmd.CurrencyID); err != nil {
			return nil, err
		}
		if *cmd.CurrencyID != existing.CurrencyID {
			checks = append(checks, activeCurrencyCheck(*cmd.CurrencyID))
			updates["currency_id"] = *cmd.CurrencyID
		}
	}
	if cmd.Amount != nil {
		if err := validator.ValidateAmount(*cmd.Amount); err != nil {
			return nil, err
		}
		updates["amount"] = validator.ToCents(*cmd.Amount)
	}
	if cmd.Comment != nil {
		updates["comment"] = validator.SanitizeOptional(cmd.Comment, validator.MaxCommentLength)
	}

	if err := verifyReferences(ctx, s.db, checks...); err != nil {
		return nil, err
	}

	updates["updated_at"] = s.now().UTC()
	if err := s.db.WithContext(ctx).Model(existing).Updates(updates).Error; err != nil {
		return nil, mapStorageError(ctx, "update transaction", err, transactionConstraints)
	}

	return s.reload(ctx, userID, transactionID)
}

// DeleteTransaction soft-deletes an active transaction.
func (s *transactionService) DeleteTransaction(ctx context.Context, userID string, transactionID int64) error {
	if err := validator.ValidateID("transaction_id", transactionID); err != nil {
		return err
	}

	existing, err := s.findActive(ctx, userID, transactionID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Model(existing).Updates(map[string]any{
		"active":     false,
		"updated_at": s.now().UTC(),
	}).Error; err != nil {
		return storageError(ctx, "delete transaction", err)
	}

	logger.From(ctx).Infow("transaction deactivated", "transaction_id", transactionID, "user_id", userID)
	return nil
}

func (s *transactionService) findActive(ctx context.Context, userID string, transactionID int64) (*models.Transaction, error) {
	var transaction models.Transaction
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND active = ?", transactionID, userID, true).
		First(&transaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, storageError(ctx, "find transaction", err)
	}
	return &transaction, nil
}

// reload reads back a row just written. It is only missing if a concurrent
// request deactivated it in between.
func (s *transactionService) reload(ctx context.Context, userID string, transactionID int64) (*dto.TransactionDTO, error) {
	result, err := s.GetTransactionByID(ctx, userID, transactionID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, apperrors.ErrTransactionNotFound
	}
	return result, nil
}

func (s *transactionService) enriched(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("transactions AS t").
		Select(`t.id, t.user_id, t.transaction_date, t.account_id, a.name AS account_name,
			t.category_id, c.name AS category_name, c.category_type AS category_type,
			t.amount, t.currency_id, cur.code AS currency_code, t.comment, t.active,
			t.created_at, t.updated_at`).
		Joins("LEFT JOIN accounts AS a ON a.id = t.account_id").
		Joins("LEFT JOIN categories AS c ON c.id = t.category_id").
		Joins("LEFT JOIN currencies AS cur ON cur.id = t.currency_id")
}

// transactionFilter is a validated GetTransactionsQuery.
type transactionFilter struct {
	includeInactive bool
	accountID       *int64
	categoryID      *int64
	dateFrom        *time.Time
	dateTo          *time.Time
	search          string
}

func (s *transactionService) buildFilter(query dto.GetTransactionsQuery) (*transactionFilter, error) {
	f := &transactionFilter{
		includeInactive: query.IncludeInactive,
		accountID:       query.AccountID,
		categoryID:      query.CategoryID,
	}

	if f.accountID != nil {
		if err := validator.ValidateID("account_id", *f.accountID); err != nil {
			return nil, err
		}
	}
	if f.categoryID != nil {
		if err := validator.ValidateID("category_id", *f.categoryID); err != nil {
			return nil, err
		}
	}

	var err error
	if f.dateFrom, err = validator.ParseDateBoundary("date_from", query.DateFrom, false); err != nil {
		return nil, err
	}
	if f.dateTo, err = validator.ParseDateBoundary("date_to", query.DateTo, true); err != nil {
		return nil, err
	}
	if f.dateFrom != nil && f.dateTo != nil && f.dateFrom.After(*f.dateTo) {
		return nil, apperrors.ErrInvalidDateRange
	}

	search := validator.SanitizeText(query.Search, maxSearchLength)
	if utf8.RuneCountInString(search) >= validator.MinSearchLength {
		f.search = search
	}
	return f, nil
}

// apply adds the filter conditions, most selective first.
func (f *transactionFilter) apply(userID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("t.user_id = ?", userID)
		if !f.includeInactive {
			db = db.Where("t.active = ?", true)
		}
		if f.accountID != nil {
			db = db.Where("t.account_id = ?", *f.accountID)
		}
		if f.categoryID != nil {
			db = db.Where("t.category_id = ?", *f.categoryID)
		}
		if f.dateFrom != nil {
			db = db.Where("t.transaction_date >= ?", *f.dateFrom)
		}
		if f.dateTo != nil {
			db = db.Where("t.transaction_date <= ?", *f.dateTo)
		}
		if f.search != "" {
			db = db.Where(`LOWER(t.comment) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(f.search))+"%")
		}
		return db
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func toTransactionDTO(row *transactionRow) dto.TransactionDTO {
	result := dto.TransactionDTO{
		ID:              row.ID,
		UserID:          row.UserID,
		TransactionDate: row.TransactionDate.UTC(),
		AccountID:       row.AccountID,
		AccountName:     unknownAccountName,
		CategoryID:      row.CategoryID,
		CategoryName:    unknownCategoryName,
		Amount:          validator.FromCents(row.Amount),
		CurrencyID:      row.CurrencyID,
		CurrencyCode:    unknownCurrencyCode,
		Comment:         row.Comment,
		Active:          row.Active,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
	if row.AccountName != nil {
		result.AccountName = *row.AccountName
	}
	if row.CategoryName != nil {
		result.CategoryName = *row.CategoryName
	}
	if row.CategoryType != nil {
		result.CategoryType = models.CategoryType(*row.CategoryType)
	}
	if row.CurrencyCode != nil {
		result.CurrencyCode = *row.CurrencyCode
	}
	return result
}
