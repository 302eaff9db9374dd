package api

import "time"

// Participant is one person's share of an expense.
type Participant struct {
	Name  string  `json:"name" validate:"required,max=100"`
	Share float64 `json:"share" validate:"gte=0"`
}

// PercentShare assigns a percentage of an expense to one person.
type PercentShare struct {
	Name    string  `json:"name" validate:"required,max=100"`
	Percent float64 `json:"percent" validate:"gte=0,lte=100"`
}

// Expense is the wire form of a stored expense.
type Expense struct {
	ID           string        `json:"id"`
	Amount       float64       `json:"amount"`
	Description  string        `json:"description"`
	PaidBy       string        `json:"paid_by"`
	Date         time.Time     `json:"date"`
	SplitType    string        `json:"split_type"`
	Category     string        `json:"category,omitempty"`
	Participants []Participant `json:"participants"`
}

// CreateExpenseRequest records a new expense.
//
// Shares come from, in order of precedence: Participants (taken as given),
// Percentages (when SplitType is "percentage"), or an equal split over
// ParticipantNames. The payer always joins an equal split; with no names at
// all the payer carries the whole amount.
type CreateExpenseRequest struct {
	Amount           float64        `json:"amount" validate:"gt=0"`
	Description      string         `json:"description" validate:"required,max=255"`
	PaidBy           string         `json:"paid_by" validate:"required,max=100"`
	Date             *time.Time     `json:"date,omitempty"`
	SplitType        string         `json:"split_type,omitempty" validate:"omitempty,oneof=equal percentage exact"`
	Category         string         `json:"category,omitempty" validate:"max=100"`
	Participants     []Participant  `json:"participants,omitempty" validate:"dive"`
	ParticipantNames []string       `json:"participant_names,omitempty" validate:"dive,max=100"`
	Percentages      []PercentShare `json:"percentages,omitempty" validate:"dive"`
}

type CreateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type GetExpenseRequest struct {
	ExpenseID string `json:"expense_id" validate:"required"`
}

type GetExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type ListExpensesRequest struct{}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

// UpdateExpenseRequest changes the fields that are set and leaves the rest.
//
// Participants, ParticipantNames and Percentages replace the shares the same
// way they do on create. When none is given and the expense is an equal split,
// changing the amount or payer re-splits it over the existing participants.
type UpdateExpenseRequest struct {
	ExpenseID        string         `json:"expense_id" validate:"required"`
	Amount           *float64       `json:"amount,omitempty" validate:"omitempty,gt=0"`
	Description      *string        `json:"description,omitempty" validate:"omitempty,min=1,max=255"`
	PaidBy           *string        `json:"paid_by,omitempty" validate:"omitempty,min=1,max=100"`
	Date             *time.Time     `json:"date,omitempty"`
	SplitType        *string        `json:"split_type,omitempty" validate:"omitempty,oneof=equal percentage exact"`
	Category         *string        `json:"category,omitempty" validate:"omitempty,max=100"`
	Participants     []Participant  `json:"participants,omitempty" validate:"dive"`
	ParticipantNames []string       `json:"participant_names,omitempty" validate:"dive,max=100"`
	Percentages      []PercentShare `json:"percentages,omitempty" validate:"dive"`
}

type UpdateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expense_id" validate:"required"`
}

type DeleteExpenseResponse struct{}

// GetExpenseID returns the targeted expense ID. Safe on a nil receiver.
func (r *GetExpenseRequest) GetExpenseID() string {
	if r == nil {
		return ""
	}
	return r.ExpenseID
}

func (r *UpdateExpenseRequest) GetExpenseID() string {
	if r == nil {
		return ""
	}
	return r.ExpenseID
}

func (r *DeleteExpenseRequest) GetExpenseID() string {
	if r == nil {
		return ""
	}
	return r.ExpenseID
}

// GetExpenseID returns the ID of the created expense.
func (r *CreateExpenseResponse) GetExpenseID() string {
	if r == nil || r.Expense == nil {
		return ""
	}
	return r.Expense.ID
}
