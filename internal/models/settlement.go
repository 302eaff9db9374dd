package models

import "github.com/shopspring/decimal"

// Balance is one person's net position across all expenses.
type Balance struct {
	// Name is the person this balance belongs to.
	Name string

	// Net is total paid minus total owed, rounded to cents.
	// Positive = owed money, negative = owes money.
	Net decimal.Decimal
}

// Settlement represents a payment that clears (part of) a debt.
type Settlement struct {
	// From is the debtor who pays.
	From string

	// To is the creditor who receives the payment.
	To string

	// Amount is the payment amount. Always positive.
	Amount decimal.Decimal
}
