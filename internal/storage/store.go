// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/settleup/internal/models"
)

// ErrNotFound is returned (wrapped) when a record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for expense storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateExpense persists a new expense with its participants.
	// The expense.ID and expense.Date fields are populated by the store when empty.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense by its ID.
	// Returns an error wrapping ErrNotFound if the expense does not exist.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpenses returns every expense, newest first. The result is read in a
	// single transaction so balances computed from it are consistent.
	ListExpenses(ctx context.Context) ([]models.Expense, error)

	// UpdateExpense overwrites an existing expense and replaces its participants.
	// Returns an error wrapping ErrNotFound if the expense does not exist.
	UpdateExpense(ctx context.Context, expense *models.Expense) error

	// DeleteExpense removes an expense and its participants.
	// Returns an error wrapping ErrNotFound if the expense does not exist.
	DeleteExpense(ctx context.Context, expenseID string) error

	// ListPeople returns every distinct payer and participant name, sorted.
	ListPeople(ctx context.Context) ([]string, error)

	// Close releases any resources held by the store.
	Close() error
}
