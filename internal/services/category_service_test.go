package services

import (
	"context"
	"strings"
	"testing"

	"gorm.io/gorm"

	"fintrack/internal/dto"
	"fintrack/internal/models"
	"fintrack/internal/testutil"
)

func categoryTypePtr(t models.CategoryType) *models.CategoryType { return &t }

func TestCreateCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("concurrent_sibling_hits_unique_index", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		userID := testutil.NewUserID()

		// Another request inserts a case variant after the name check has passed.
		racing := true
		err := db.Callback().Create().Before("gorm:create").Register("test:racing_sibling", func(tx *gorm.DB) {
			if !racing {
				return
			}
			racing = false
			sibling := &models.Category{UserID: userID, Name: "FOOD", CategoryType: models.CategoryTypeExpense, Active: true}
			if err := tx.Session(&gorm.Session{NewDB: true}).Create(sibling).Error; err != nil {
				t.Errorf("failed to insert racing sibling: %v", err)
			}
		})
		testutil.AssertNoError(t, err)

		_, err = svc.CreateCategory(ctx, userID, dto.CreateCategoryCommand{Name: "Food", CategoryType: models.CategoryTypeExpense})
		testutil.AssertAppError(t, err, "DUPLICATE_NAME")
	})

	t.Run("root", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		userID := testutil.NewUserID()

		category, err := svc.CreateCategory(ctx, userID, dto.CreateCategoryCommand{
			Name:         " Salary ",
			CategoryType: models.CategoryTypeIncome,
		})
		testutil.AssertNoError(t, err)

		if category.ID == 0 {
			t.Fatal("expected non-zero category ID")
		}
		if category.Name != "Salary" {
			t.Errorf("expected trimmed name, got %q", category.Name)
		}
		if category.ParentID != 0 || !category.Active {
			t.Errorf("unexpected category %+v", category)
		}
	})

	// Food -> Groceries succeeds; a third level under Groceries does not.
	t.Run("two_levels_max", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		userID := testutil.NewUserID()

		food, err := svc.CreateCategory(ctx, userID, dto.CreateCategoryCommand{Name: "Food", CategoryType: models.CategoryTypeExpense})
		testutil.AssertNoError(t, err)

		groceries, err := svc.CreateCategory(ctx, userID, dto.CreateCategoryCommand{
			Name:         "Groceries",
			CategoryType: models.CategoryTypeExpense,
			ParentID:     food.ID,
		})
		testutil.AssertNoError(t, err)
		if groceries.CategoryType != models.CategoryTypeExpense {
			t.Errorf("expected expense, got %s", groceries.CategoryType)
		}
		if groceries.ParentID != food.ID {
			t.Errorf("expected parent %d, got %d", food.ID, groceries.ParentID)
		}

		_, err = svc.CreateCategory(ctx, userID, dto.CreateCategoryCommand{
			Name:         "Subsub",
			CategoryType: models.CategoryTypeExpense,
			ParentID:     groceries.ID,
		})
		testutil.AssertAppError(t, err, "MAX_DEPTH_EXCEEDED")
	})

	t.Run("duplicate_name_case_insensitive", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		userID := testutil.NewUserID()

		_, err := svc.CreateCategory(ctx, userID, dto.CreateCategoryCommand{Name: "Food", CategoryType: models.CategoryTypeExpense})
		testutil.AssertNoError(t, err)

		_, err = svc.CreateCategory(ctx, userID, dto.CreateCategoryCommand{Name: "food", CategoryType: models.CategoryTypeExpense})
		testutil.AssertAppError(t, err, "DUPLICATE_NAME")
	})

	t.Run("same_name_different_parent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		userID := testutil.NewUserID()
		home := testutil.CreateTestCategory(t, db, userID, models.CategoryTypeExpense)
		car := testutil.CreateTestCategory(t, db, userID, models.CategoryTypeExpense)

		_, err := svc.CreateCategory(ctx, userID, dto.CreateCategoryCommand{Name: "Insurance", CategoryType: models.CategoryTypeExpense, ParentID: home.ID})
		testutil.AssertNoError(t, err)
		_, err = svc.CreateCategory(ctx, userID, dto.CreateCategoryCommand{Name: "Insurance", CategoryType: models.CategoryTypeExpense, ParentID: car.ID})
		testutil.AssertNoError(t, err)
	})

	t.Run("name_reusable_after_delete", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		userID := testutil.NewUserID()

		old, err := svc.CreateCategory(ctx, userID, dto.CreateCategoryCommand{Name: "Gym", CategoryType: models.CategoryTypeExpense})
		testutil.AssertNoError(t, err)
		testutil.AssertNoError(t, svc.DeleteCategory(ctx, userID, old.ID))

		_, err = svc.CreateCategory(ctx, userID, dto.CreateCategoryCommand{Name: "Gym", CategoryType: models.CategoryTypeExpense})
		testutil.AssertNoError(t, err)
	})

	t.Run("type_mismatch", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		userID := testutil.NewUserID()
		parent := testutil.CreateTestCategory(t, db, userID, models.CategoryTypeIncome)

		_, err := svc.CreateCategory(ctx, userID, dto.CreateCategoryCommand{Name: "Bonus", CategoryType: models.CategoryTypeExpense, ParentID: parent.ID})
		testutil.AssertAppError(t, err, "CATEGORY_TYPE_MISMATCH")
	})

	t.Run("parent_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		_, err := svc.CreateCategory(ctx, testutil.NewUserID(), dto.CreateCategoryCommand{Name: "Orphan", CategoryType: models.CategoryTypeExpense, ParentID: 99999})
		testutil.AssertAppError(t, err, "PARENT_NOT_FOUND")
	})

	t.Run("parent_of_other_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		parent := testutil.CreateTestCategory(t, db, testutil.NewUserID(), models.CategoryTypeExpense)

		_, err := svc.CreateCategory(ctx, testutil.NewUserID(), dto.CreateCategoryCommand{Name: "Sneaky", CategoryType: models.CategoryTypeExpense, ParentID: parent.ID})
		testutil.AssertAppError(t, err, "PARENT_NOT_FOUND")
	})

	t.Run("inactive_parent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		userID := testutil.NewUserID()
		parent := testutil.CreateTestCategory(t, db, userID, models.CategoryTypeExpense)
		testutil.Deactivate(t, db, parent)

		_, err := svc.CreateCategory(ctx, userID, dto.CreateCategoryCommand{Name: "Late", CategoryType: models.CategoryTypeExpense, ParentID: parent.ID})
		testutil.AssertAppError(t, err, "PARENT_NOT_FOUND")
	})

	t.Run("invalid_input", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		userID := testutil.NewUserID()

		cases := map[string]dto.CreateCategoryCommand{
			"blank_name":      {Name: "  ", CategoryType: models.CategoryTypeExpense},
			"long_name":       {Name: strings.Repeat("n", 101), CategoryType: models.CategoryTypeExpense},
			"unknown_type":    {Name: "Transfer", CategoryType: "transfer"},
			"negative_parent": {Name: "Neg", CategoryType: models.CategoryTypeExpense, ParentID: -1},
			"long_tag":        {Name: "Tagged", CategoryType: models.CategoryTypeExpense, Tag: strPtr("eleven-char")},
		}
		for name, cmd := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := svc.CreateCategory(ctx, userID, cmd)
				testutil.AssertAppError(t, err, "VALIDATION_ERROR")
			})
		}
	})
}

func TestGetCategoryByID(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(db)
	userID := testutil.NewUserID()
	category := testutil.CreateTestCategory(t, db, userID, models.CategoryTypeExpense)

	t.Run("found", func(t *testing.T) {
		found, err := svc.GetCategoryByID(ctx, userID, category.ID)
		testutil.AssertNoError(t, err)
		if found == nil || found.ID != category.ID {
			t.Fatalf("expected category %d, got %+v", category.ID, found)
		}
	})

	t.Run("other_user", func(t *testing.T) {
		found, err := svc.GetCategoryByID(ctx, testutil.NewUserID(), category.ID)
		testutil.AssertNoError(t, err)
		if found != nil {
			t.Error("expected nil for another user's category")
		}
	})

	t.Run("missing", func(t *testing.T) {
		found, err := svc.GetCategoryByID(ctx, userID, 99999)
		testutil.AssertNoError(t, err)
		if found != nil {
			t.Error("expected nil for missing category")
		}
	})
}

func TestGetUserCategories(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(db)
	userID := testutil.NewUserID()

	food, _ := svc.CreateCategory(ctx, userID, dto.CreateCategoryCommand{Name: "Food", CategoryType: models.CategoryTypeExpense})
	_, _ = svc.CreateCategory(ctx, userID, dto.CreateCategoryCommand{Name: "Bills", CategoryType: models.CategoryTypeExpense})
	_, _ = svc.CreateCategory(ctx, userID, dto.CreateCategoryCommand{Name: "Salary", CategoryType: models.CategoryTypeIncome})
	_, _ = svc.CreateCategory(ctx, userID, dto.CreateCategoryCommand{Name: "Groceries", CategoryType: models.CategoryTypeExpense, ParentID: food.ID})
	oldSub, _ := svc.CreateCategory(ctx, userID, dto.CreateCategoryCommand{Name: "Dining", CategoryType: models.CategoryTypeExpense, ParentID: food.ID})
	testutil.AssertNoError(t, svc.DeleteCategory(ctx, userID, oldSub.ID))
	testutil.CreateTestCategory(t, db, testutil.NewUserID(), models.CategoryTypeExpense)

	t.Run("roots_first_then_name", func(t *testing.T) {
		categories, err := svc.GetUserCategories(ctx, userID, dto.CategoryQuery{})
		testutil.AssertNoError(t, err)

		var names []string
		for _, c := range categories {
			names = append(names, c.Name)
		}
		want := "Bills,Food,Salary,Groceries"
		if strings.Join(names, ",") != want {
			t.Errorf("expected %s, got %s", want, strings.Join(names, ","))
		}
	})

	t.Run("include_inactive", func(t *testing.T) {
		categories, err := svc.GetUserCategories(ctx, userID, dto.CategoryQuery{IncludeInactive: true})
		testutil.AssertNoError(t, err)
		if len(categories) != 5 {
			t.Errorf("expected 5 categories, got %d", len(categories))
		}
	})

	t.Run("by_type", func(t *testing.T) {
		categories, err := svc.GetUserCategories(ctx, userID, dto.CategoryQuery{CategoryType: categoryTypePtr(models.CategoryTypeIncome)})
		testutil.AssertNoError(t, err)
		if len(categories) != 1 || categories[0].Name != "Salary" {
			t.Errorf("expected only Salary, got %+v", categories)
		}
	})

	t.Run("by_parent", func(t *testing.T) {
		categories, err := svc.GetUserCategories(ctx, userID, dto.CategoryQuery{ParentID: int64Ptr(food.ID)})
		testutil.AssertNoError(t, err)
		if len(categories) != 1 || categories[0].Name != "Groceries" {
			t.Errorf("expected only Groceries, got %+v", categories)
		}
	})

	t.Run("unmappable_row_fails_whole_list", func(t *testing.T) {
		broken := testutil.CreateTestCategory(t, db, userID, models.CategoryTypeExpense)
		db.Model(broken).Update("category_type", "savings")
		defer db.Model(broken).Update("active", false)

		_, err := svc.GetUserCategories(ctx, userID, dto.CategoryQuery{})
		testutil.AssertAppError(t, err, "STORAGE_ERROR")
		// Active roots sort as Bills, Food, Salary, then the broken row.
		if !strings.Contains(err.Error(), "index 3") {
			t.Errorf("expected the failing index in the message, got %q", err.Error())
		}
	})
}

func TestUpdateCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("rename", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		userID := testutil.NewUserID()
		category := testutil.CreateTestCategory(t, db, userID, models.CategoryTypeExpense)

		updated, err := svc.UpdateCategory(ctx, userID, category.ID, dto.UpdateCategoryCommand{Name: strPtr("Travel")})
		testutil.AssertNoError(t, err)
		if updated.Name != "Travel" {
			t.Errorf("expected Travel, got %s", updated.Name)
		}
	})

	t.Run("rename_case_only", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		userID := testutil.NewUserID()
		created, err := svc.CreateCategory(ctx, userID, dto.CreateCategoryCommand{Name: "travel", CategoryType: models.CategoryTypeExpense})
		testutil.AssertNoError(t, err)

		updated, err := svc.UpdateCategory(ctx, userID, created.ID, dto.UpdateCategoryCommand{Name: strPtr("Travel")})
		testutil.AssertNoError(t, err)
		if updated.Name != "Travel" {
			t.Errorf("expected Travel, got %s", updated.Name)
		}
	})

	t.Run("rename_to_sibling_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		userID := testutil.NewUserID()
		_, _ = svc.CreateCategory(ctx, userID, dto.CreateCategoryCommand{Name: "Rent", CategoryType: models.CategoryTypeExpense})
		other, _ := svc.CreateCategory(ctx, userID, dto.CreateCategoryCommand{Name: "Utilities", CategoryType: models.CategoryTypeExpense})

		_, err := svc.UpdateCategory(ctx, userID, other.ID, dto.UpdateCategoryCommand{Name: strPtr("RENT")})
		testutil.AssertAppError(t, err, "DUPLICATE_NAME")
	})

	t.Run("self_parent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		userID := testutil.NewUserID()
		category := testutil.CreateTestCategory(t, db, userID, models.CategoryTypeExpense)

		_, err := svc.UpdateCategory(ctx, userID, category.ID, dto.UpdateCategoryCommand{ParentID: int64Ptr(category.ID)})
		testutil.AssertAppError(t, err, "SELF_PARENT_CATEGORY")
	})

	t.Run("move_under_root", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		userID := testutil.NewUserID()
		parent := testutil.CreateTestCategory(t, db, userID, models.CategoryTypeExpense)
		category := testutil.CreateTestCategory(t, db, userID, models.CategoryTypeExpense)

		updated, err := svc.UpdateCategory(ctx, userID, category.ID, dto.UpdateCategoryCommand{ParentID: int64Ptr(parent.ID)})
		testutil.AssertNoError(t, err)
		if updated.ParentID != parent.ID {
			t.Errorf("expected parent %d, got %d", parent.ID, updated.ParentID)
		}
	})

	t.Run("move_under_subcategory", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		userID := testutil.NewUserID()
		root := testutil.CreateTestCategory(t, db, userID, models.CategoryTypeExpense)
		sub := testutil.CreateTestSubcategory(t, db, userID, models.CategoryTypeExpense, root.ID)
		category := testutil.CreateTestCategory(t, db, userID, models.CategoryTypeExpense)

		_, err := svc.UpdateCategory(ctx, userID, category.ID, dto.UpdateCategoryCommand{ParentID: int64Ptr(sub.ID)})
		testutil.AssertAppError(t, err, "MAX_DEPTH_EXCEEDED")
	})

	t.Run("move_root_with_children", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		userID := testutil.NewUserID()
		target := testutil.CreateTestCategory(t, db, userID, models.CategoryTypeExpense)
		root := testutil.CreateTestCategory(t, db, userID, models.CategoryTypeExpense)
		testutil.CreateTestSubcategory(t, db, userID, models.CategoryTypeExpense, root.ID)

		_, err := svc.UpdateCategory(ctx, userID, root.ID, dto.UpdateCategoryCommand{ParentID: int64Ptr(target.ID)})
		testutil.AssertAppError(t, err, "MAX_DEPTH_EXCEEDED")
	})

	t.Run("retype_root_with_children", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		userID := testutil.NewUserID()
		root := testutil.CreateTestCategory(t, db, userID, models.CategoryTypeExpense)
		testutil.CreateTestSubcategory(t, db, userID, models.CategoryTypeExpense, root.ID)

		_, err := svc.UpdateCategory(ctx, userID, root.ID, dto.UpdateCategoryCommand{CategoryType: categoryTypePtr(models.CategoryTypeIncome)})
		testutil.AssertAppError(t, err, "CATEGORY_TYPE_MISMATCH")
	})

	t.Run("retype_subcategory", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		userID := testutil.NewUserID()
		root := testutil.CreateTestCategory(t, db, userID, models.CategoryTypeExpense)
		sub := testutil.CreateTestSubcategory(t, db, userID, models.CategoryTypeExpense, root.ID)

		_, err := svc.UpdateCategory(ctx, userID, sub.ID, dto.UpdateCategoryCommand{CategoryType: categoryTypePtr(models.CategoryTypeIncome)})
		testutil.AssertAppError(t, err, "CATEGORY_TYPE_MISMATCH")
	})

	t.Run("promote_to_root", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		userID := testutil.NewUserID()
		root := testutil.CreateTestCategory(t, db, userID, models.CategoryTypeExpense)
		sub := testutil.CreateTestSubcategory(t, db, userID, models.CategoryTypeExpense, root.ID)

		updated, err := svc.UpdateCategory(ctx, userID, sub.ID, dto.UpdateCategoryCommand{
			ParentID:     int64Ptr(0),
			CategoryType: categoryTypePtr(models.CategoryTypeIncome),
		})
		testutil.AssertNoError(t, err)
		if updated.ParentID != 0 || updated.CategoryType != models.CategoryTypeIncome {
			t.Errorf("unexpected category %+v", updated)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		_, err := svc.UpdateCategory(ctx, testutil.NewUserID(), 99999, dto.UpdateCategoryCommand{Name: strPtr("X")})
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestDeleteCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("in_use", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		userID := testutil.NewUserID()
		usd := testutil.GetCurrency(t, db, "USD")
		account := testutil.CreateTestAccount(t, db, userID, usd.ID)
		category := testutil.CreateTestCategory(t, db, userID, models.CategoryTypeExpense)
		testutil.CreateTestTransaction(t, db, userID, account, category.ID, 500)

		err := svc.DeleteCategory(ctx, userID, category.ID)
		testutil.AssertAppError(t, err, "CATEGORY_IN_USE")
		if !strings.Contains(err.Error(), "1 active transaction") {
			t.Errorf("expected count in message, got %q", err.Error())
		}

		var stored models.Category
		db.First(&stored, category.ID)
		if !stored.Active {
			t.Error("category should remain active")
		}
	})

	t.Run("inactive_transactions_do_not_block", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		userID := testutil.NewUserID()
		usd := testutil.GetCurrency(t, db, "USD")
		account := testutil.CreateTestAccount(t, db, userID, usd.ID)
		category := testutil.CreateTestCategory(t, db, userID, models.CategoryTypeExpense)
		tx := testutil.CreateTestTransaction(t, db, userID, account, category.ID, 500)
		testutil.Deactivate(t, db, tx)

		testutil.AssertNoError(t, svc.DeleteCategory(ctx, userID, category.ID))
	})

	t.Run("root_with_children", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		userID := testutil.NewUserID()
		root := testutil.CreateTestCategory(t, db, userID, models.CategoryTypeExpense)
		testutil.CreateTestSubcategory(t, db, userID, models.CategoryTypeExpense, root.ID)

		err := svc.DeleteCategory(ctx, userID, root.ID)
		testutil.AssertAppError(t, err, "CATEGORY_HAS_CHILDREN")
	})

	t.Run("soft_deletes_once", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		userID := testutil.NewUserID()
		category := testutil.CreateTestCategory(t, db, userID, models.CategoryTypeExpense)

		testutil.AssertNoError(t, svc.DeleteCategory(ctx, userID, category.ID))

		found, err := svc.GetCategoryByID(ctx, userID, category.ID)
		testutil.AssertNoError(t, err)
		if found == nil || found.Active {
			t.Errorf("expected inactive category, got %+v", found)
		}

		err = svc.DeleteCategory(ctx, userID, category.ID)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("other_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		category := testutil.CreateTestCategory(t, db, testutil.NewUserID(), models.CategoryTypeExpense)

		err := svc.DeleteCategory(ctx, testutil.NewUserID(), category.ID)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}
