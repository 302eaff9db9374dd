package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SplitType names the rule used to divide an expense among its participants.
type SplitType string

const (
	SplitEqual      SplitType = "equal"
	SplitPercentage SplitType = "percentage"
	SplitExact      SplitType = "exact"
)

// Valid reports whether t is one of the known split rules.
func (t SplitType) Valid() bool {
	switch t {
	case SplitEqual, SplitPercentage, SplitExact:
		return true
	}
	return false
}

// Expense represents a payment made by one person on behalf of a group.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// Amount is the total paid. Always positive for stored expenses.
	Amount decimal.Decimal

	// Description is what the money was spent on (e.g., "Groceries").
	Description string

	// PaidBy is the name of the person who paid.
	PaidBy string

	// Date is when the expense happened. Defaults to creation time.
	Date time.Time

	// SplitType records how the participant shares were derived.
	SplitType SplitType

	// Category is an optional free-form label.
	Category string

	// Participants hold each person's share, in the order they were given.
	// Shares are expected to sum to Amount.
	Participants []Participant
}

// Participant is one person's share of an expense.
type Participant struct {
	Name  string
	Share decimal.Decimal
}

// ShareTotal returns the sum of all participant shares.
func (e *Expense) ShareTotal() decimal.Decimal {
	total := decimal.Zero
	for _, p := range e.Participants {
		total = total.Add(p.Share)
	}
	return total
}
