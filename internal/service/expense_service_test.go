package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/settleup/internal/storage/sqlite"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

// setupTestServer serves an ExpenseService backed by a temp SQLite database.
func setupTestServer(t *testing.T) apiconnect.ExpenseServiceClient {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	path, handler := apiconnect.NewExpenseServiceHandler(NewExpenseService(store))
	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)

	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return apiconnect.NewExpenseServiceClient(http.DefaultClient, server.URL)
}

func createExpense(t *testing.T, client apiconnect.ExpenseServiceClient, msg *api.CreateExpenseRequest) *api.Expense {
	t.Helper()
	resp, err := client.CreateExpense(context.Background(), connect.NewRequest(msg))
	require.NoError(t, err)
	require.NotNil(t, resp.Msg.Expense)
	return resp.Msg.Expense
}

func requireCode(t *testing.T, err error, code connect.Code) {
	t.Helper()
	require.Error(t, err)
	var connectErr *connect.Error
	require.True(t, errors.As(err, &connectErr), "expected connect.Error, got %T", err)
	require.Equal(t, code, connectErr.Code(), connectErr.Message())
}

func balanceMap(balances []api.Balance) map[string]float64 {
	m := make(map[string]float64, len(balances))
	for _, b := range balances {
		m[b.Name] = b.Net
	}
	return m
}

func TestCreateExpense_EqualSplitAddsPayer(t *testing.T) {
	req := require.New(t)
	client := setupTestServer(t)

	expense := createExpense(t, client, &api.CreateExpenseRequest{
		Amount:           30,
		Description:      "Dinner",
		PaidBy:           "Alice",
		ParticipantNames: []string{"Bob", "Carol"},
	})

	req.NotEmpty(expense.ID)
	req.Equal("equal", expense.SplitType)
	req.False(expense.Date.IsZero())
	req.Equal([]api.Participant{
		{Name: "Bob", Share: 10},
		{Name: "Carol", Share: 10},
		{Name: "Alice", Share: 10},
	}, expense.Participants)

	resp, err := client.GetBalances(context.Background(), connect.NewRequest(&api.GetBalancesRequest{}))
	req.NoError(err)
	req.Equal([]api.Balance{
		{Name: "Alice", Net: 20},
		{Name: "Bob", Net: -10},
		{Name: "Carol", Net: -10},
	}, resp.Msg.Balances)
}

func TestCreateExpense_PayerOnly(t *testing.T) {
	client := setupTestServer(t)

	expense := createExpense(t, client, &api.CreateExpenseRequest{
		Amount:      12.5,
		Description: "Snacks",
		PaidBy:      "Alice",
	})

	require.Equal(t, []api.Participant{{Name: "Alice", Share: 12.5}}, expense.Participants)

	resp, err := client.GetSettlements(context.Background(), connect.NewRequest(&api.GetSettlementsRequest{}))
	require.NoError(t, err)
	require.Empty(t, resp.Msg.Settlements)
}

func TestCreateExpense_PercentageSplit(t *testing.T) {
	client := setupTestServer(t)

	expense := createExpense(t, client, &api.CreateExpenseRequest{
		Amount:      200,
		Description: "Rent share",
		PaidBy:      "Alice",
		Percentages: []api.PercentShare{
			{Name: "Alice", Percent: 60},
			{Name: "Bob", Percent: 40},
		},
	})

	require.Equal(t, "percentage", expense.SplitType)
	require.Equal(t, []api.Participant{{Name: "Alice", Share: 120}, {Name: "Bob", Share: 80}}, expense.Participants)
}

func TestCreateExpense_Validation(t *testing.T) {
	client := setupTestServer(t)

	tests := []struct {
		name string
		msg  *api.CreateExpenseRequest
	}{
		{name: "zero amount", msg: &api.CreateExpenseRequest{Amount: 0, Description: "x", PaidBy: "Alice"}},
		{name: "negative amount", msg: &api.CreateExpenseRequest{Amount: -5, Description: "x", PaidBy: "Alice"}},
		{name: "missing description", msg: &api.CreateExpenseRequest{Amount: 5, PaidBy: "Alice"}},
		{name: "missing payer", msg: &api.CreateExpenseRequest{Amount: 5, Description: "x"}},
		{name: "unknown split type", msg: &api.CreateExpenseRequest{Amount: 5, Description: "x", PaidBy: "Alice", SplitType: "random"}},
		{
			name: "shares do not sum to amount",
			msg: &api.CreateExpenseRequest{Amount: 30, Description: "x", PaidBy: "Alice", SplitType: "exact",
				Participants: []api.Participant{{Name: "Alice", Share: 10}, {Name: "Bob", Share: 10}}},
		},
		{
			name: "participant without name",
			msg: &api.CreateExpenseRequest{Amount: 10, Description: "x", PaidBy: "Alice",
				Participants: []api.Participant{{Name: "", Share: 10}}},
		},
		{
			name: "negative share",
			msg: &api.CreateExpenseRequest{Amount: 10, Description: "x", PaidBy: "Alice",
				Participants: []api.Participant{{Name: "Alice", Share: 20}, {Name: "Bob", Share: -10}}},
		},
		{
			name: "percentages do not sum to 100",
			msg: &api.CreateExpenseRequest{Amount: 10, Description: "x", PaidBy: "Alice",
				Percentages: []api.PercentShare{{Name: "Alice", Percent: 50}}},
		},
		{name: "exact split without shares", msg: &api.CreateExpenseRequest{Amount: 10, Description: "x", PaidBy: "Alice", SplitType: "exact"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.CreateExpense(context.Background(), connect.NewRequest(tt.msg))
			requireCode(t, err, connect.CodeInvalidArgument)
		})
	}
}

func TestCreateExpense_ValidationMessageUsesJSONNames(t *testing.T) {
	client := setupTestServer(t)

	_, err := client.CreateExpense(context.Background(), connect.NewRequest(&api.CreateExpenseRequest{Amount: 5, Description: "x"}))
	requireCode(t, err, connect.CodeInvalidArgument)
	require.ErrorContains(t, err, "paid_by is required")
}

func TestCreateExpense_RejectsSubCentAmounts(t *testing.T) {
	client := setupTestServer(t)
	ctx := context.Background()

	for _, amount := range []float64{10.005, 10.004} {
		_, err := client.CreateExpense(ctx, connect.NewRequest(&api.CreateExpenseRequest{
			Amount: amount, Description: "Parking", PaidBy: "Alice", ParticipantNames: []string{"Bob"},
		}))
		requireCode(t, err, connect.CodeInvalidArgument)
		require.ErrorContains(t, err, "more than 2 decimal places")
	}

	_, err := client.CreateExpense(ctx, connect.NewRequest(&api.CreateExpenseRequest{
		Amount: 10, Description: "Parking", PaidBy: "Alice", SplitType: "exact",
		Participants: []api.Participant{{Name: "Alice", Share: 4.995}, {Name: "Bob", Share: 5.005}},
	}))
	requireCode(t, err, connect.CodeInvalidArgument)
	require.ErrorContains(t, err, "share for Alice has more than 2 decimal places")

	// Nothing was stored
	resp, err := client.ListExpenses(ctx, connect.NewRequest(&api.ListExpensesRequest{}))
	require.NoError(t, err)
	require.Empty(t, resp.Msg.Expenses)
}

func TestGetExpense(t *testing.T) {
	req := require.New(t)
	client := setupTestServer(t)

	date := time.Date(2024, 5, 4, 12, 0, 0, 0, time.UTC)
	created := createExpense(t, client, &api.CreateExpenseRequest{
		Amount:      45.5,
		Description: "Groceries",
		PaidBy:      "Bob",
		Date:        &date,
		Category:    "food",
		SplitType:   "exact",
		Participants: []api.Participant{
			{Name: "Alice", Share: 20},
			{Name: "Bob", Share: 25.5},
		},
	})

	resp, err := client.GetExpense(context.Background(), connect.NewRequest(&api.GetExpenseRequest{ExpenseID: created.ID}))
	req.NoError(err)

	got := resp.Msg.Expense
	req.Equal(created.ID, got.ID)
	req.Equal(45.5, got.Amount)
	req.Equal("Groceries", got.Description)
	req.Equal("Bob", got.PaidBy)
	req.Equal("food", got.Category)
	req.Equal("exact", got.SplitType)
	req.True(date.Equal(got.Date))
	req.Equal(created.Participants, got.Participants)
}

func TestGetExpense_NotFound(t *testing.T) {
	client := setupTestServer(t)

	_, err := client.GetExpense(context.Background(), connect.NewRequest(&api.GetExpenseRequest{ExpenseID: "nonexistent-id"}))
	requireCode(t, err, connect.CodeNotFound)

	_, err = client.GetExpense(context.Background(), connect.NewRequest(&api.GetExpenseRequest{}))
	requireCode(t, err, connect.CodeInvalidArgument)
}

func TestListExpenses(t *testing.T) {
	req := require.New(t)
	client := setupTestServer(t)

	// Given an empty ledger
	resp, err := client.ListExpenses(context.Background(), connect.NewRequest(&api.ListExpensesRequest{}))
	req.NoError(err)
	req.Empty(resp.Msg.Expenses)

	// When two expenses are added
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(24 * time.Hour)
	first := createExpense(t, client, &api.CreateExpenseRequest{Amount: 10, Description: "Coffee", PaidBy: "Alice", Date: &older})
	second := createExpense(t, client, &api.CreateExpenseRequest{Amount: 20, Description: "Lunch", PaidBy: "Bob", Date: &newer})

	// Then the newest comes first
	resp, err = client.ListExpenses(context.Background(), connect.NewRequest(&api.ListExpensesRequest{}))
	req.NoError(err)
	req.Len(resp.Msg.Expenses, 2)
	req.Equal(second.ID, resp.Msg.Expenses[0].ID)
	req.Equal(first.ID, resp.Msg.Expenses[1].ID)
}

func TestUpdateExpense(t *testing.T) {
	client := setupTestServer(t)
	ctx := context.Background()

	t.Run("changing amount re-splits an equal expense", func(t *testing.T) {
		req := require.New(t)
		expense := createExpense(t, client, &api.CreateExpenseRequest{
			Amount: 30, Description: "Dinner", PaidBy: "Alice", ParticipantNames: []string{"Bob", "Carol"},
		})

		amount := 60.0
		resp, err := client.UpdateExpense(ctx, connect.NewRequest(&api.UpdateExpenseRequest{ExpenseID: expense.ID, Amount: &amount}))
		req.NoError(err)

		req.Equal(60.0, resp.Msg.Expense.Amount)
		req.Equal([]api.Participant{
			{Name: "Bob", Share: 20},
			{Name: "Carol", Share: 20},
			{Name: "Alice", Share: 20},
		}, resp.Msg.Expense.Participants)
	})

	t.Run("description only keeps shares", func(t *testing.T) {
		req := require.New(t)
		expense := createExpense(t, client, &api.CreateExpenseRequest{Amount: 9, Description: "Taxi", PaidBy: "Dave", ParticipantNames: []string{"Eve"}})

		desc := "Airport taxi"
		resp, err := client.UpdateExpense(ctx, connect.NewRequest(&api.UpdateExpenseRequest{ExpenseID: expense.ID, Description: &desc}))
		req.NoError(err)
		req.Equal("Airport taxi", resp.Msg.Expense.Description)
		req.Equal(expense.Participants, resp.Msg.Expense.Participants)
	})

	t.Run("explicit participants replace shares", func(t *testing.T) {
		req := require.New(t)
		expense := createExpense(t, client, &api.CreateExpenseRequest{Amount: 10, Description: "Tickets", PaidBy: "Alice", ParticipantNames: []string{"Bob"}})

		splitType := "exact"
		resp, err := client.UpdateExpense(ctx, connect.NewRequest(&api.UpdateExpenseRequest{
			ExpenseID:    expense.ID,
			SplitType:    &splitType,
			Participants: []api.Participant{{Name: "Alice", Share: 2}, {Name: "Bob", Share: 8}},
		}))
		req.NoError(err)
		req.Equal("exact", resp.Msg.Expense.SplitType)
		req.Equal([]api.Participant{{Name: "Alice", Share: 2}, {Name: "Bob", Share: 8}}, resp.Msg.Expense.Participants)

		got, err := client.GetExpense(ctx, connect.NewRequest(&api.GetExpenseRequest{ExpenseID: expense.ID}))
		req.NoError(err)
		req.Equal(resp.Msg.Expense.Participants, got.Msg.Expense.Participants)
	})

	t.Run("amount change on exact split must match shares", func(t *testing.T) {
		expense := createExpense(t, client, &api.CreateExpenseRequest{
			Amount: 10, Description: "Fixed", PaidBy: "Alice", SplitType: "exact",
			Participants: []api.Participant{{Name: "Alice", Share: 4}, {Name: "Bob", Share: 6}},
		})

		amount := 12.0
		_, err := client.UpdateExpense(ctx, connect.NewRequest(&api.UpdateExpenseRequest{ExpenseID: expense.ID, Amount: &amount}))
		requireCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("split type change needs new shares", func(t *testing.T) {
		req := require.New(t)
		expense := createExpense(t, client, &api.CreateExpenseRequest{Amount: 30, Description: "Hotel", PaidBy: "Alice", ParticipantNames: []string{"Bob", "Carol"}})

		for _, splitType := range []string{"percentage", "exact"} {
			_, err := client.UpdateExpense(ctx, connect.NewRequest(&api.UpdateExpenseRequest{ExpenseID: expense.ID, SplitType: &splitType}))
			requireCode(t, err, connect.CodeInvalidArgument)
		}

		got, err := client.GetExpense(ctx, connect.NewRequest(&api.GetExpenseRequest{ExpenseID: expense.ID}))
		req.NoError(err)
		req.Equal("equal", got.Msg.Expense.SplitType)
		req.Equal(expense.Participants, got.Msg.Expense.Participants)
	})

	t.Run("switching back to equal re-splits", func(t *testing.T) {
		req := require.New(t)
		expense := createExpense(t, client, &api.CreateExpenseRequest{
			Amount: 10, Description: "Fuel", PaidBy: "Alice", SplitType: "exact",
			Participants: []api.Participant{{Name: "Alice", Share: 2}, {Name: "Bob", Share: 8}},
		})

		splitType := "equal"
		resp, err := client.UpdateExpense(ctx, connect.NewRequest(&api.UpdateExpenseRequest{ExpenseID: expense.ID, SplitType: &splitType}))
		req.NoError(err)
		req.Equal("equal", resp.Msg.Expense.SplitType)
		req.Equal([]api.Participant{{Name: "Alice", Share: 5}, {Name: "Bob", Share: 5}}, resp.Msg.Expense.Participants)
	})

	t.Run("not found", func(t *testing.T) {
		desc := "x"
		_, err := client.UpdateExpense(ctx, connect.NewRequest(&api.UpdateExpenseRequest{ExpenseID: "nonexistent-id", Description: &desc}))
		requireCode(t, err, connect.CodeNotFound)
	})
}

func TestDeleteExpense(t *testing.T) {
	req := require.New(t)
	client := setupTestServer(t)
	ctx := context.Background()

	expense := createExpense(t, client, &api.CreateExpenseRequest{Amount: 30, Description: "Dinner", PaidBy: "Alice", ParticipantNames: []string{"Bob"}})

	_, err := client.DeleteExpense(ctx, connect.NewRequest(&api.DeleteExpenseRequest{ExpenseID: expense.ID}))
	req.NoError(err)

	_, err = client.GetExpense(ctx, connect.NewRequest(&api.GetExpenseRequest{ExpenseID: expense.ID}))
	requireCode(t, err, connect.CodeNotFound)

	_, err = client.DeleteExpense(ctx, connect.NewRequest(&api.DeleteExpenseRequest{ExpenseID: expense.ID}))
	requireCode(t, err, connect.CodeNotFound)

	// Balances no longer include the deleted expense
	balances, err := client.GetBalances(ctx, connect.NewRequest(&api.GetBalancesRequest{}))
	req.NoError(err)
	req.Empty(balances.Msg.Balances)
}

func TestListPeople(t *testing.T) {
	client := setupTestServer(t)

	createExpense(t, client, &api.CreateExpenseRequest{Amount: 30, Description: "Dinner", PaidBy: "Carol", ParticipantNames: []string{"Bob", "Alice"}})
	createExpense(t, client, &api.CreateExpenseRequest{Amount: 5, Description: "Gum", PaidBy: "Dave"})

	resp, err := client.ListPeople(context.Background(), connect.NewRequest(&api.ListPeopleRequest{}))
	require.NoError(t, err)
	require.Equal(t, []string{"Alice", "Bob", "Carol", "Dave"}, resp.Msg.People)
}

func TestGetSettlements(t *testing.T) {
	ctx := context.Background()

	t.Run("two expenses leave one transfer", func(t *testing.T) {
		req := require.New(t)
		client := setupTestServer(t)

		createExpense(t, client, &api.CreateExpenseRequest{Amount: 30, Description: "Dinner", PaidBy: "Alice", ParticipantNames: []string{"Alice", "Bob", "Carol"}})
		createExpense(t, client, &api.CreateExpenseRequest{Amount: 15, Description: "Drinks", PaidBy: "Bob", ParticipantNames: []string{"Alice", "Bob", "Carol"}})

		balances, err := client.GetBalances(ctx, connect.NewRequest(&api.GetBalancesRequest{}))
		req.NoError(err)
		req.Equal(map[string]float64{"Alice": 15, "Bob": 0, "Carol": -15}, balanceMap(balances.Msg.Balances))

		resp, err := client.GetSettlements(ctx, connect.NewRequest(&api.GetSettlementsRequest{}))
		req.NoError(err)
		req.Equal([]api.Settlement{{From: "Carol", To: "Alice", Amount: 15}}, resp.Msg.Settlements)
	})

	t.Run("cycle of debts settles to nothing", func(t *testing.T) {
		req := require.New(t)
		client := setupTestServer(t)

		for _, pair := range [][2]string{{"B", "A"}, {"C", "B"}, {"A", "C"}} {
			createExpense(t, client, &api.CreateExpenseRequest{
				Amount: 10, Description: "loan", PaidBy: pair[0], SplitType: "exact",
				Participants: []api.Participant{{Name: pair[1], Share: 10}},
			})
		}

		resp, err := client.GetSettlements(ctx, connect.NewRequest(&api.GetSettlementsRequest{}))
		req.NoError(err)
		req.Empty(resp.Msg.Settlements)
	})

	t.Run("empty ledger", func(t *testing.T) {
		req := require.New(t)
		client := setupTestServer(t)

		balances, err := client.GetBalances(ctx, connect.NewRequest(&api.GetBalancesRequest{}))
		req.NoError(err)
		req.Empty(balances.Msg.Balances)

		resp, err := client.GetSettlements(ctx, connect.NewRequest(&api.GetSettlementsRequest{}))
		req.NoError(err)
		req.Empty(resp.Msg.Settlements)
	})

	t.Run("uneven split settles to the cent", func(t *testing.T) {
		req := require.New(t)
		client := setupTestServer(t)

		createExpense(t, client, &api.CreateExpenseRequest{Amount: 10, Description: "Cab", PaidBy: "Alice", ParticipantNames: []string{"Bob", "Carol"}})

		resp, err := client.GetSettlements(ctx, connect.NewRequest(&api.GetSettlementsRequest{}))
		req.NoError(err)
		// Bob carries the extra cent: 3.34, Carol 3.33, Alice 3.33.
		req.Equal([]api.Settlement{
			{From: "Bob", To: "Alice", Amount: 3.34},
			{From: "Carol", To: "Alice", Amount: 3.33},
		}, resp.Msg.Settlements)
	})
}
