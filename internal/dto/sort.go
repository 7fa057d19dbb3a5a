package dto

import "strings"

// TransactionSort is one of the allowed orderings of a transaction listing.
// Every ordering is followed by id ascending so pages are stable.
type TransactionSort int

const (
	SortDateDesc TransactionSort = iota
	SortDateAsc
	SortAmountDesc
	SortAmountAsc
)

// DefaultTransactionSort applies when the requested sort is missing or unknown.
const DefaultTransactionSort = SortDateDesc

var transactionSorts = map[string]TransactionSort{
	"transaction_date:desc": SortDateDesc,
	"transaction_date:asc":  SortDateAsc,
	"amount:desc":           SortAmountDesc,
	"amount:asc":            SortAmountAsc,
}

// ParseTransactionSort maps a "field:direction" string to a TransactionSort.
// A bare field name sorts descending. Anything else yields the default.
func ParseTransactionSort(raw string) TransactionSort {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return DefaultTransactionSort
	}
	if !strings.Contains(key, ":") {
		key += ":desc"
	}
	if s, ok := transactionSorts[key]; ok {
		return s
	}
	return DefaultTransactionSort
}

// Column returns the sorted column.
func (s TransactionSort) Column() string {
	switch s {
	case SortAmountAsc, SortAmountDesc:
		return "amount"
	default:
		return "transaction_date"
	}
}

// Descending reports the sort direction.
func (s TransactionSort) Descending() bool {
	return s == SortDateDesc || s == SortAmountDesc
}

func (s TransactionSort) String() string {
	dir := "asc"
	if s.Descending() {
		dir = "desc"
	}
	return s.Column() + ":" + dir
}
