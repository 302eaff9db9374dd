package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

const expenseColumns = "id, amount, description, paid_by, date, split_type, category"

// CreateExpense persists a new expense and its participants in one transaction.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	// Generate IDs if not set
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.Date.IsZero() {
		expense.Date = time.Now().UTC()
	}
	expense.Date = expense.Date.Truncate(time.Millisecond)
	if expense.SplitType == "" {
		expense.SplitType = models.SplitEqual
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO expenses ("+expenseColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		expense.ID, expense.Amount, expense.Description, expense.PaidBy,
		expense.Date.UnixMilli(), string(expense.SplitType), nullable(expense.Category),
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	if err := insertParticipants(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense by ID, including its participants.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ?",
		expenseID,
	)
	expense, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	byExpense, err := loadParticipants(ctx, s.db,
		"SELECT expense_id, name, share FROM participants WHERE expense_id = ? ORDER BY position",
		expenseID,
	)
	if err != nil {
		return nil, err
	}
	expense.Participants = byExpense[expenseID]

	return expense, nil
}

// ListExpenses returns all expenses, newest first, read inside one transaction.
func (s *SQLiteStore) ListExpenses(ctx context.Context) ([]models.Expense, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses ORDER BY date DESC, rowid DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []models.Expense{}
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, *expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	byExpense, err := loadParticipants(ctx, tx,
		"SELECT expense_id, name, share FROM participants ORDER BY expense_id, position",
	)
	if err != nil {
		return nil, err
	}
	for i := range expenses {
		expenses[i].Participants = byExpense[expenses[i].ID]
	}

	return expenses, nil
}

// UpdateExpense overwrites the expense row and replaces all of its participants.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	expense.Date = expense.Date.Truncate(time.Millisecond)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE expenses SET amount = ?, description = ?, paid_by = ?, date = ?, split_type = ?, category = ?
		 WHERE id = ?`,
		expense.Amount, expense.Description, expense.PaidBy, expense.Date.UnixMilli(),
		string(expense.SplitType), nullable(expense.Category), expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	} else if n == 0 {
		return fmt.Errorf("expense %s: %w", expense.ID, storage.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM participants WHERE expense_id = ?", expense.ID); err != nil {
		return fmt.Errorf("failed to clear participants: %w", err)
	}
	if err := insertParticipants(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteExpense removes an expense by ID. Participants go with it via ON DELETE CASCADE.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	return nil
}

// ListPeople returns every distinct payer and participant name, sorted.
func (s *SQLiteStore) ListPeople(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT paid_by FROM expenses UNION SELECT name FROM participants ORDER BY 1",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	defer rows.Close()

	people := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		people = append(people, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate people: %w", err)
	}
	return people, nil
}

func insertParticipants(ctx context.Context, tx *sql.Tx, expense *models.Expense) error {
	for i, p := range expense.Participants {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO participants (expense_id, position, name, share) VALUES (?, ?, ?, ?)",
			expense.ID, i, p.Name, p.Share,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}
	return nil
}

// loadParticipants runs query and groups the resulting participants by expense ID.
func loadParticipants(ctx context.Context, q queryer, query string, args ...any) (map[string][]models.Participant, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	byExpense := make(map[string][]models.Participant)
	for rows.Next() {
		var expenseID string
		var p models.Participant
		if err := rows.Scan(&expenseID, &p.Name, &p.Share); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		byExpense[expenseID] = append(byExpense[expenseID], p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return byExpense, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(row scanner) (*models.Expense, error) {
	expense := &models.Expense{}
	var (
		dateMillis int64
		splitType  string
		category   sql.NullString
	)
	if err := row.Scan(&expense.ID, &expense.Amount, &expense.Description, &expense.PaidBy,
		&dateMillis, &splitType, &category); err != nil {
		return nil, err
	}
	expense.Date = time.UnixMilli(dateMillis).UTC()
	expense.SplitType = models.SplitType(splitType)
	if category.Valid {
		expense.Category = category.String
	}
	return expense, nil
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
