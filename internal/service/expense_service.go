package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

// Ensure ExpenseService implements the Connect handler interface.
var _ apiconnect.ExpenseServiceHandler = (*ExpenseService)(nil)

// ExpenseService implements the Connect ExpenseService.
type ExpenseService struct {
	store storage.Store
}

// NewExpenseService creates a new ExpenseService with the given storage backend.
func NewExpenseService(store storage.Store) *ExpenseService {
	return &ExpenseService{store: store}
}

// CreateExpense validates, splits and persists a new expense.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	msg := req.Msg
	if err := validateRequest(msg); err != nil {
		return nil, toConnectError("CreateExpense", err)
	}

	expense := &models.Expense{
		Amount:      decimal.NewFromFloat(msg.Amount),
		Description: msg.Description,
		PaidBy:      msg.PaidBy,
		SplitType:   models.SplitType(msg.SplitType),
		Category:    msg.Category,
	}
	if expense.SplitType == "" {
		expense.SplitType = models.SplitEqual
	}
	if msg.Date != nil {
		expense.Date = msg.Date.UTC()
	}

	participants, err := resolveShares(expense, msg.Participants, msg.Percentages, msg.ParticipantNames, true)
	if err != nil {
		return nil, toConnectError("CreateExpense", err)
	}
	expense.Participants = participants

	if err := validateExpense(expense); err != nil {
		return nil, toConnectError("CreateExpense", err)
	}

	// Save to storage (generates ID and Date)
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, toConnectError("CreateExpense", err)
	}

	slog.Info("Expense created",
		"expense_id", expense.ID,
		"amount", expense.Amount.String(),
		"paid_by", expense.PaidBy,
		"participants", len(expense.Participants),
	)
	return connect.NewResponse(&api.CreateExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// GetExpense retrieves an expense by ID from storage.
func (s *ExpenseService) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError("GetExpense", err)
	}

	expense, err := s.store.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, toConnectError("GetExpense", err, "expense_id", req.Msg.ExpenseID)
	}
	return connect.NewResponse(&api.GetExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// ListExpenses returns every expense, newest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	expenses, err := s.store.ListExpenses(ctx)
	if err != nil {
		return nil, toConnectError("ListExpenses", err)
	}

	out := make([]*api.Expense, len(expenses))
	for i := range expenses {
		out[i] = toAPIExpense(&expenses[i])
	}
	return connect.NewResponse(&api.ListExpensesResponse{Expenses: out}), nil
}

// UpdateExpense applies the fields set in the request to an existing expense.
func (s *ExpenseService) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	msg := req.Msg
	if err := validateRequest(msg); err != nil {
		return nil, toConnectError("UpdateExpense", err)
	}

	expense, err := s.store.GetExpense(ctx, msg.ExpenseID)
	if err != nil {
		return nil, toConnectError("UpdateExpense", err, "expense_id", msg.ExpenseID)
	}

	resplit := false
	if msg.Amount != nil {
		amount := decimal.NewFromFloat(*msg.Amount)
		resplit = resplit || !amount.Equal(expense.Amount)
		expense.Amount = amount
	}
	if msg.PaidBy != nil {
		resplit = resplit || *msg.PaidBy != expense.PaidBy
		expense.PaidBy = *msg.PaidBy
	}
	if msg.Description != nil {
		expense.Description = *msg.Description
	}
	if msg.Category != nil {
		expense.Category = *msg.Category
	}
	if msg.Date != nil {
		expense.Date = msg.Date.UTC()
	}
	sharesGiven := msg.Participants != nil || msg.Percentages != nil || msg.ParticipantNames != nil
	if msg.SplitType != nil {
		splitType := models.SplitType(*msg.SplitType)
		if splitType != expense.SplitType && !sharesGiven {
			// Existing shares were derived under the old rule, so only an
			// equal split can be recomputed from them.
			if splitType != models.SplitEqual {
				err := fmt.Errorf("%w: changing split_type to %s requires participants or percentages", ErrValidation, splitType)
				return nil, toConnectError("UpdateExpense", err, "expense_id", msg.ExpenseID)
			}
			resplit = true
		}
		expense.SplitType = splitType
	} else if msg.ParticipantNames != nil {
		expense.SplitType = models.SplitEqual
	}

	switch {
	case sharesGiven:
		participants, err := resolveShares(expense, msg.Participants, msg.Percentages, msg.ParticipantNames, false)
		if err != nil {
			return nil, toConnectError("UpdateExpense", err, "expense_id", msg.ExpenseID)
		}
		expense.Participants = participants
	case resplit && expense.SplitType == models.SplitEqual:
		// Keep the same people, recompute their equal shares.
		names := make([]string, len(expense.Participants))
		for i, p := range expense.Participants {
			names[i] = p.Name
		}
		participants, err := calculator.EqualSplit(expense.Amount, expense.PaidBy, names)
		if err != nil {
			return nil, toConnectError("UpdateExpense", err, "expense_id", msg.ExpenseID)
		}
		expense.Participants = participants
	}

	if err := validateExpense(expense); err != nil {
		return nil, toConnectError("UpdateExpense", err, "expense_id", msg.ExpenseID)
	}

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		return nil, toConnectError("UpdateExpense", err, "expense_id", msg.ExpenseID)
	}

	slog.Info("Expense updated", "expense_id", expense.ID)
	return connect.NewResponse(&api.UpdateExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// DeleteExpense removes an expense.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError("DeleteExpense", err)
	}

	if err := s.store.DeleteExpense(ctx, req.Msg.ExpenseID); err != nil {
		return nil, toConnectError("DeleteExpense", err, "expense_id", req.Msg.ExpenseID)
	}

	slog.Info("Expense deleted", "expense_id", req.Msg.ExpenseID)
	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// ListPeople returns every name that appears on an expense.
func (s *ExpenseService) ListPeople(ctx context.Context, req *connect.Request[api.ListPeopleRequest]) (*connect.Response[api.ListPeopleResponse], error) {
	people, err := s.store.ListPeople(ctx)
	if err != nil {
		return nil, toConnectError("ListPeople", err)
	}
	return connect.NewResponse(&api.ListPeopleResponse{People: people}), nil
}

// GetBalances computes each person's net balance from the current expenses.
func (s *ExpenseService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	expenses, err := s.store.ListExpenses(ctx)
	if err != nil {
		return nil, toConnectError("GetBalances", err)
	}

	balances, err := calculator.CalculateBalances(expenses)
	if err != nil {
		return nil, toConnectError("GetBalances", err)
	}

	slog.Debug("Balances calculated", "expenses", len(expenses), "people", len(balances))
	return connect.NewResponse(&api.GetBalancesResponse{
		Balances: toAPIBalances(calculator.SortedBalances(balances)),
	}), nil
}

// GetSettlements plans the transfers that settle all current balances.
func (s *ExpenseService) GetSettlements(ctx context.Context, req *connect.Request[api.GetSettlementsRequest]) (*connect.Response[api.GetSettlementsResponse], error) {
	expenses, err := s.store.ListExpenses(ctx)
	if err != nil {
		return nil, toConnectError("GetSettlements", err)
	}

	settlements, err := calculator.CalculateSettlements(expenses)
	if err != nil {
		return nil, toConnectError("GetSettlements", err)
	}

	slog.Debug("Settlements calculated", "expenses", len(expenses), "transfers", len(settlements))
	return connect.NewResponse(&api.GetSettlementsResponse{
		Settlements: toAPISettlements(settlements),
	}), nil
}

// resolveShares works out the participant shares for expense from whichever
// of the share inputs was given. Percentages switch the expense to a
// percentage split. On create, an equal split with no names leaves the payer
// carrying the whole amount.
func resolveShares(expense *models.Expense, explicit []api.Participant, percents []api.PercentShare, names []string, creating bool) ([]models.Participant, error) {
	switch {
	case len(explicit) > 0:
		return fromAPIParticipants(explicit), nil
	case len(percents) > 0:
		expense.SplitType = models.SplitPercentage
		return calculator.PercentageSplit(expense.Amount, fromAPIPercentages(percents))
	case expense.SplitType == models.SplitPercentage:
		return nil, fmt.Errorf("%w: percentage split requires percentages", ErrValidation)
	case expense.SplitType == models.SplitExact:
		return nil, fmt.Errorf("%w: exact split requires participants with shares", ErrValidation)
	case len(names) > 0 || creating:
		return calculator.EqualSplit(expense.Amount, expense.PaidBy, names)
	default:
		return nil, fmt.Errorf("%w: %v", ErrValidation, calculator.ErrNoParticipants)
	}
}

// toConnectError maps domain and storage errors to Connect codes and logs them.
func toConnectError(op string, err error, attrs ...any) error {
	attrs = append([]any{"error", err}, attrs...)

	switch {
	case errors.Is(err, storage.ErrNotFound):
		slog.Warn(op+" not found", attrs...)
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, ErrValidation),
		errors.Is(err, calculator.ErrNoParticipants),
		errors.Is(err, calculator.ErrInvalidPercentages),
		errors.Is(err, calculator.ErrShareMismatch):
		slog.Warn(op+" rejected", attrs...)
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, calculator.ErrInvalidExpense):
		// Stored data the aggregation cannot use; nothing the caller can fix.
		slog.Error(op+" found incomplete expense", attrs...)
		return connect.NewError(connect.CodeFailedPrecondition, err)
	default:
		slog.Error(op+" failed", attrs...)
		return connect.NewError(connect.CodeInternal, err)
	}
}
