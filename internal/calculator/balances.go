package calculator

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/models"
)

// ErrInvalidExpense is returned when an expense is missing a field the
// aggregation cannot do without (payer, participants, participant names).
var ErrInvalidExpense = errors.New("invalid expense")

// centPlaces is the number of decimal places balances and settlements are reported with.
const centPlaces = 2

// CalculateBalances folds the expense history into a net balance per person.
//
// Algorithm:
// - For each expense: payer is credited the full amount
// - Each participant is debited their share (payer included, if listed)
// - Sums are kept at full precision and rounded to cents only at the end
//
// The input is not modified. An empty list yields an empty map.
func CalculateBalances(expenses []models.Expense) (map[string]decimal.Decimal, error) {
	totals := make(map[string]decimal.Decimal)

	for i := range expenses {
		expense := &expenses[i]
		if err := checkRequired(expense); err != nil {
			return nil, err
		}

		totals[expense.PaidBy] = totals[expense.PaidBy].Add(expense.Amount)

		for _, p := range expense.Participants {
			totals[p.Name] = totals[p.Name].Sub(p.Share)
		}
	}

	balances := make(map[string]decimal.Decimal, len(totals))
	for name, net := range totals {
		balances[name] = net.Round(centPlaces)
	}
	return balances, nil
}

// SortedBalances returns the balance map as a slice ordered by person name.
func SortedBalances(balances map[string]decimal.Decimal) []models.Balance {
	out := make([]models.Balance, 0, len(balances))
	for name, net := range balances {
		out = append(out, models.Balance{Name: name, Net: net})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// checkRequired rejects expenses that cannot be attributed to anyone.
// Amounts and share totals are trusted; validation happens before storage.
func checkRequired(expense *models.Expense) error {
	if expense.PaidBy == "" {
		return fmt.Errorf("%w: expense %q has no payer", ErrInvalidExpense, expense.ID)
	}
	if len(expense.Participants) == 0 {
		return fmt.Errorf("%w: expense %q has no participants", ErrInvalidExpense, expense.ID)
	}
	for i, p := range expense.Participants {
		if p.Name == "" {
			return fmt.Errorf("%w: expense %q participant %d has no name", ErrInvalidExpense, expense.ID, i)
		}
	}
	return nil
}
