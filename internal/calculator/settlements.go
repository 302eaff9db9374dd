package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/models"
)

// settledThreshold is the magnitude below which a balance counts as cleared.
var settledThreshold = decimal.New(1, -centPlaces)

// position is a mutable copy of one person's balance used while matching.
type position struct {
	name string
	net  decimal.Decimal
}

// PlanSettlements produces the transfers that bring every balance to zero.
//
// Greedy matching: debtors sorted by largest debt first, creditors by largest
// credit first, ties broken by name. The current debtor pays the current
// creditor the smaller of the two outstanding amounts; whichever side drops
// below one cent moves on. Drift under a cent left at the end is dropped.
//
// This does not always find the fewest possible transfers, but the output is
// deterministic and has at most one transfer per person.
func PlanSettlements(balances map[string]decimal.Decimal) []models.Settlement {
	var debtors, creditors []*position
	for name, net := range balances {
		switch net.Sign() {
		case -1:
			debtors = append(debtors, &position{name: name, net: net})
		case 1:
			creditors = append(creditors, &position{name: name, net: net})
		}
	}

	sort.Slice(debtors, func(i, j int) bool {
		if c := debtors[i].net.Cmp(debtors[j].net); c != 0 {
			return c < 0
		}
		return debtors[i].name < debtors[j].name
	})
	sort.Slice(creditors, func(i, j int) bool {
		if c := creditors[i].net.Cmp(creditors[j].net); c != 0 {
			return c > 0
		}
		return creditors[i].name < creditors[j].name
	})

	settlements := []models.Settlement{}
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := debtors[i]
		creditor := creditors[j]

		amount := decimal.Min(debtor.net.Abs(), creditor.net).Round(centPlaces)
		if amount.IsPositive() {
			settlements = append(settlements, models.Settlement{
				From:   debtor.name,
				To:     creditor.name,
				Amount: amount,
			})
			debtor.net = debtor.net.Add(amount)
			creditor.net = creditor.net.Sub(amount)
		}

		if debtor.net.Abs().LessThan(settledThreshold) {
			i++
		}
		if creditor.net.LessThan(settledThreshold) {
			j++
		}
	}

	return settlements
}

// CalculateSettlements aggregates balances from the expenses and plans the
// transfers that settle them.
func CalculateSettlements(expenses []models.Expense) ([]models.Settlement, error) {
	balances, err := CalculateBalances(expenses)
	if err != nil {
		return nil, err
	}
	return PlanSettlements(balances), nil
}
