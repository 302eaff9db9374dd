package calculator

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/models"
)

var (
	ErrNoParticipants     = errors.New("must have at least one participant")
	ErrInvalidPercentages = errors.New("percentages must be non-negative and sum to 100")
	ErrShareMismatch      = errors.New("participant shares must sum to the expense amount")
)

var hundred = decimal.NewFromInt(100)

// PercentShare assigns a percentage of an expense to one person.
type PercentShare struct {
	Name    string
	Percent decimal.Decimal
}

// EqualSplit divides amount equally among names. The payer is added to the
// list if missing and repeated names count once.
//
// Shares are whole cents: each person gets amount/n rounded down, and the
// leftover cents go one each to the first people in list order, so shares
// always sum to amount. 10.00 over three people is 3.34, 3.33, 3.33.
func EqualSplit(amount decimal.Decimal, payer string, names []string) ([]models.Participant, error) {
	people := lo.Uniq(lo.Compact(names))
	if payer != "" && !lo.Contains(people, payer) {
		people = append(people, payer)
	}
	if len(people) == 0 {
		return nil, ErrNoParticipants
	}

	weights := lo.Map(people, func(string, int) decimal.Decimal { return decimal.NewFromInt(1) })
	shares := distributeCents(amount, weights)

	return lo.Map(people, func(name string, i int) models.Participant {
		return models.Participant{Name: name, Share: shares[i]}
	}), nil
}

// PercentageSplit divides amount according to each person's percentage.
// Percentages must be non-negative and sum to exactly 100. Leftover cents
// are handed out in list order, as in EqualSplit.
func PercentageSplit(amount decimal.Decimal, percents []PercentShare) ([]models.Participant, error) {
	if len(percents) == 0 {
		return nil, ErrNoParticipants
	}

	total := decimal.Zero
	for _, p := range percents {
		if p.Percent.IsNegative() {
			return nil, fmt.Errorf("%w: %s has %s%%", ErrInvalidPercentages, p.Name, p.Percent)
		}
		total = total.Add(p.Percent)
	}
	if !total.Equal(hundred) {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidPercentages, total)
	}

	weights := lo.Map(percents, func(p PercentShare, _ int) decimal.Decimal { return p.Percent })
	shares := distributeCents(amount, weights)

	return lo.Map(percents, func(p PercentShare, i int) models.Participant {
		return models.Participant{Name: p.Name, Share: shares[i]}
	}), nil
}

// ExactSplit takes the shares as given and checks they add up to amount.
func ExactSplit(amount decimal.Decimal, participants []models.Participant) ([]models.Participant, error) {
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}
	if err := CheckShares(amount, participants); err != nil {
		return nil, err
	}
	return append([]models.Participant(nil), participants...), nil
}

// CheckShares reports ErrShareMismatch when the shares are more than half a
// cent away from amount.
func CheckShares(amount decimal.Decimal, participants []models.Participant) error {
	total := decimal.Zero
	for _, p := range participants {
		total = total.Add(p.Share)
	}
	if total.Sub(amount).Abs().GreaterThanOrEqual(decimal.New(5, -3)) {
		return fmt.Errorf("%w: shares total %s, amount %s", ErrShareMismatch, total.StringFixed(centPlaces), amount.StringFixed(centPlaces))
	}
	return nil
}

// distributeCents splits amount into whole-cent parts proportional to
// weights. Each part is rounded down first; the remaining cents are added one
// at a time from the front of the list.
func distributeCents(amount decimal.Decimal, weights []decimal.Decimal) []decimal.Decimal {
	cents := amount.Shift(centPlaces).Round(0)
	weightTotal := decimal.Sum(decimal.Zero, weights...)

	parts := make([]decimal.Decimal, len(weights))
	assigned := decimal.Zero
	if weightTotal.IsZero() {
		for i := range parts {
			parts[i] = decimal.Zero
		}
		return parts
	}
	for i, w := range weights {
		parts[i] = cents.Mul(w).Div(weightTotal).Floor()
		assigned = assigned.Add(parts[i])
	}

	// Fewer cents remain than there are positive weights, so one pass is enough.
	one := decimal.NewFromInt(1)
	for i := range parts {
		if !cents.GreaterThan(assigned) {
			break
		}
		if weights[i].IsPositive() {
			parts[i] = parts[i].Add(one)
			assigned = assigned.Add(one)
		}
	}

	for i := range parts {
		parts[i] = parts[i].Shift(-centPlaces)
	}
	return parts
}
