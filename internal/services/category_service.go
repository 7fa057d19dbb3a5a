package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"fintrack/internal/dto"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/validator"
)

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

var categoryConstraints = constraintErrors{
	unique:     apperrors.ErrDuplicateCategoryName,
	foreignKey: apperrors.ErrInvalidParent,
}

// CreateCategory creates a root category or, when ParentID is set, a
// subcategory of an active root category of the same type.
func (s *categoryService) CreateCategory(ctx context.Context, userID string, cmd dto.CreateCategoryCommand) (*dto.CategoryDTO, error) {
	name, err := validator.ValidateName("category name", cmd.Name)
	if err != nil {
		return nil, err
	}
	tag, err := validator.ValidateTag(cmd.Tag)
	if err != nil {
		return nil, err
	}
	if !cmd.CategoryType.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category_type must be income or expense")
	}
	if err := validateParentID(cmd.ParentID); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	if cmd.ParentID > models.RootParentID {
		if err := validateParentCategory(ctx, db, userID, cmd.ParentID, cmd.CategoryType); err != nil {
			return nil, err
		}
	}
	if err := validateNameUniqueness(ctx, db, userID, name, cmd.ParentID, 0); err != nil {
		return nil, err
	}

	category := &models.Category{
		UserID:       userID,
		Name:         name,
		CategoryType: cmd.CategoryType,
		ParentID:     cmd.ParentID,
		Tag:          tag,
		Active:       true,
	}
	if err := db.Create(category).Error; err != nil {
		return nil, mapStorageError(ctx, "create category", err, categoryConstraints)
	}

	result, err := toCategoryDTO(category)
	if err != nil {
		return nil, storageError(ctx, "map category", err)
	}
	return &result, nil
}

// GetCategoryByID returns the category, active or not, or nil when it does not
// exist or belongs to another user.
func (s *categoryService) GetCategoryByID(ctx context.Context, userID string, categoryID int64) (*dto.CategoryDTO, error) {
	if err := validator.ValidateID("category_id", categoryID); err != nil {
		return nil, err
	}

	var category models.Category
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", categoryID, userID).
		First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storageError(ctx, "find category", err)
	}

	result, err := toCategoryDTO(&category)
	if err != nil {
		return nil, storageError(ctx, "map category", err)
	}
	return &result, nil
}

// GetUserCategories lists the user's categories with roots first, then by name.
// A row that cannot be mapped fails the whole call.
func (s *categoryService) GetUserCategories(ctx context.Context, userID string, query dto.CategoryQuery) ([]dto.CategoryDTO, error) {
	db := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if !query.IncludeInactive {
		db = db.Where("active = ?", true)
	}
	if query.CategoryType != nil {
		if !query.CategoryType.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category_type must be income or expense")
		}
		db = db.Where("category_type = ?", *query.CategoryType)
	}
	if query.ParentID != nil {
		if err := validateParentID(*query.ParentID); err != nil {
			return nil, err
		}
		db = db.Where("parent_id = ?", *query.ParentID)
	}

	var categories []models.Category
	if err := db.Order("parent_id ASC").Order("name ASC").Order("id ASC").Find(&categories).Error; err != nil {
		return nil, storageError(ctx, "list categories", err)
	}

	result := make([]dto.CategoryDTO, 0, len(categories))
	for i := range categories {
		item, err := toCategoryDTO(&categories[i])
		if err != nil {
			err = fmt.Errorf("category at index %d: %w", i, err)
			logger.From(ctx).Warnw("storage error", "op", "map categories", "error", err)
			mapped := apperrors.Wrap(apperrors.ErrStorage, err)
			mapped.Message = fmt.Sprintf("Category at index %d could not be read", i)
			return nil, mapped
		}
		result = append(result, item)
	}
	return result, nil
}

// UpdateCategory applies the provided fields to an active category. Moving or
// retyping re-checks the hierarchy; renaming or moving re-checks name
// uniqueness among the new siblings.
func (s *categoryService) UpdateCategory(ctx context.Context, userID string, categoryID int64, cmd dto.UpdateCategoryCommand) (*dto.CategoryDTO, error) {
	if err := validator.ValidateID("category_id", categoryID); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	category, err := findActiveCategory(ctx, db, userID, categoryID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}

	name := category.Name
	if cmd.Name != nil {
		if name, err = validator.ValidateName("category name", *cmd.Name); err != nil {
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

	categoryType := category.CategoryType
	if cmd.CategoryType != nil {
		if !cmd.CategoryType.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category_type must be income or expense")
		}
		categoryType = *cmd.CategoryType
		updates["category_type"] = categoryType
	}

	parentID := category.ParentID
	if cmd.ParentID != nil {
		if *cmd.ParentID == categoryID {
			return nil, apperrors.ErrSelfParentCategory
		}
		if err := validateParentID(*cmd.ParentID); err != nil {
			return nil, err
		}
		parentID = *cmd.ParentID
		updates["parent_id"] = parentID
	}

	parentChanged := parentID != category.ParentID
	typeChanged := categoryType != category.CategoryType

	if parentChanged || typeChanged {
		children, err := countActiveChildren(ctx, db, userID, categoryID)
		if err != nil {
			return nil, err
		}
		if children > 0 && parentID > models.RootParentID {
			return nil, apperrors.WithMessage(apperrors.ErrMaxDepthExceeded, "a category with subcategories cannot become a subcategory")
		}
		if children > 0 && typeChanged {
			return nil, apperrors.WithMessage(apperrors.ErrCategoryTypeMismatch, "a category with subcategories cannot change type")
		}
		if parentID > models.RootParentID {
			if err := validateParentCategory(ctx, db, userID, parentID, categoryType); err != nil {
				return nil, err
			}
		}
	}

	if (cmd.Name != nil && name != category.Name) || parentChanged {
		if err := validateNameUniqueness(ctx, db, userID, name, parentID, categoryID); err != nil {
			return nil, err
		}
	}

	if len(updates) > 0 {
		if err := db.Model(category).Updates(updates).Error; err != nil {
			return nil, mapStorageError(ctx, "update category", err, categoryConstraints)
		}
	}

	return s.GetCategoryByID(ctx, userID, categoryID)
}

// DeleteCategory soft-deletes an active category that no active transaction
// references and, for a root, that has no active subcategories. The checks
// and the write share one store transaction.
func (s *categoryService) DeleteCategory(ctx context.Context, userID string, categoryID int64) error {
	if err := validator.ValidateID("category_id", categoryID); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		category, err := findActiveCategory(ctx, tx, userID, categoryID)
		if err != nil {
			return err
		}

		var used int64
		if err := tx.Model(&models.Transaction{}).
			Where("category_id = ? AND user_id = ? AND active = ?", categoryID, userID, true).
			Count(&used).Error; err != nil {
			return storageError(ctx, "count category transactions", err)
		}
		if used > 0 {
			return apperrors.WithMessagef(apperrors.ErrCategoryInUse,
				"Category is used by %d active transaction(s)", used)
		}

		if category.IsRoot() {
			children, err := countActiveChildren(ctx, tx, userID, categoryID)
			if err != nil {
				return err
			}
			if children > 0 {
				return apperrors.WithMessagef(apperrors.ErrCategoryHasChildren,
					"Category has %d active subcategories", children)
			}
		}

		if err := tx.Model(category).Update("active", false).Error; err != nil {
			return storageError(ctx, "delete category", err)
		}
		return nil
	})
	if err != nil {
		return mapStorageError(ctx, "delete category", err, constraintErrors{})
	}

	logger.From(ctx).Infow("category deactivated", "category_id", categoryID, "user_id", userID)
	return nil
}

// validateParentCategory checks that parentID names an active root category
// of the user with the expected type.
func validateParentCategory(ctx context.Context, db *gorm.DB, userID string, parentID int64, expectedType models.CategoryType) error {
	var parent models.Category
	err := db.Where("id = ? AND user_id = ? AND active = ?", parentID, userID, true).First(&parent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrParentNotFound
		}
		return storageError(ctx, "find parent category", err)
	}

	if !parent.IsRoot() {
		return apperrors.ErrMaxDepthExceeded
	}
	if parent.CategoryType != expectedType {
		return apperrors.ErrCategoryTypeMismatch
	}
	return nil
}

// validateNameUniqueness rejects a name already used, ignoring case, by an
// active sibling. excludeID skips the category being renamed; 0 skips nothing.
func validateNameUniqueness(ctx context.Context, db *gorm.DB, userID, name string, parentID, excludeID int64) error {
	query := db.Model(&models.Category{}).
		Where("user_id = ? AND parent_id = ? AND active = ?", userID, parentID, true).
		Where("LOWER(name) = LOWER(?)", name)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return storageError(ctx, "check category name", err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateCategoryName
	}
	return nil
}

func findActiveCategory(ctx context.Context, db *gorm.DB, userID string, categoryID int64) (*models.Category, error) {
	var category models.Category
	err := db.Where("id = ? AND user_id = ? AND active = ?", categoryID, userID, true).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, storageError(ctx, "find category", err)
	}
	return &category, nil
}

func countActiveChildren(ctx context.Context, db *gorm.DB, userID string, categoryID int64) (int64, error) {
	var count int64
	if err := db.Model(&models.Category{}).
		Where("parent_id = ? AND user_id = ? AND active = ?", categoryID, userID, true).
		Count(&count).Error; err != nil {
		return 0, storageError(ctx, "count subcategories", err)
	}
	return count, nil
}

func validateParentID(parentID int64) error {
	if parentID < models.RootParentID || parentID > validator.MaxSafeID {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "parent_id must be 0 or a positive integer")
	}
	return nil
}

func toCategoryDTO(c *models.Category) (dto.CategoryDTO, error) {
	if !c.CategoryType.Valid() {
		return dto.CategoryDTO{}, fmt.Errorf("category %d has unknown type %q", c.ID, c.CategoryType)
	}
	return dto.CategoryDTO{
		ID:           c.ID,
		UserID:       c.UserID,
		Name:         c.Name,
		CategoryType: c.CategoryType,
		ParentID:     c.ParentID,
		Tag:          c.Tag,
		Active:       c.Active,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}, nil
}
