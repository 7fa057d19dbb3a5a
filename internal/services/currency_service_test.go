package services

import (
	"context"
	"testing"

	"fintrack/internal/testutil"
)

func TestListActiveCurrencies(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCurrencyService(db)
	retired := testutil.CreateInactiveCurrency(t, db)

	currencies, err := svc.ListActiveCurrencies(context.Background())
	testutil.AssertNoError(t, err)

	if len(currencies) == 0 {
		t.Fatal("expected seeded currencies")
	}
	for i, c := range currencies {
		if !c.Active {
			t.Errorf("currency %s should be active", c.Code)
		}
		if c.ID == retired.ID {
			t.Errorf("inactive currency %s should not be listed", c.Code)
		}
		if i > 0 && currencies[i-1].Code > c.Code {
			t.Errorf("currencies not ordered by code: %s before %s", currencies[i-1].Code, c.Code)
		}
	}
}
