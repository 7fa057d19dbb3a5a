package dto

import "testing"

func TestParseTransactionSort(t *testing.T) {
	cases := map[string]TransactionSort{
		"":                      SortDateDesc,
		"transaction_date:desc": SortDateDesc,
		"transaction_date:asc":  SortDateAsc,
		"amount:asc":            SortAmountAsc,
		"AMOUNT:DESC":           SortAmountDesc,
		"amount":                SortAmountDesc,
		"comment:asc":           SortDateDesc,
		"amount:sideways":       SortDateDesc,
		"amount;drop table":     SortDateDesc,
	}

	for raw, want := range cases {
		if got := ParseTransactionSort(raw); got != want {
			t.Errorf("ParseTransactionSort(%q) = %s, want %s", raw, got, want)
		}
	}
}

func TestTransactionSortColumn(t *testing.T) {
	if SortAmountAsc.Column() != "amount" {
		t.Errorf("expected amount, got %s", SortAmountAsc.Column())
	}
	if SortDateAsc.Descending() {
		t.Error("transaction_date:asc should be ascending")
	}
	if SortDateDesc.String() != "transaction_date:desc" {
		t.Errorf("unexpected string %s", SortDateDesc.String())
	}
}
