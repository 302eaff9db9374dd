// Package models defines the core domain models for settleup.
//
// # Stored Models
//
//   - Expense: something one person paid that several people share
//   - Participant: one person's share of an expense
//
// # Derived Models
//
// Balance and Settlement are computed from the expense history on every
// query and are never persisted:
//   - Balance: a person's net position (positive = owed money)
//   - Settlement: one transfer from a debtor to a creditor
//
// People are identified by name strings. There is no person table; the set of
// people is whatever names appear as payers or participants.
//
// Money fields use decimal.Decimal so that sums of many cent amounts do not
// pick up binary floating point error.
package models
