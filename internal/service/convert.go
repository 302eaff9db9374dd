package service

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/pkg/api"
)

func toAPIExpense(e *models.Expense) *api.Expense {
	return &api.Expense{
		ID:          e.ID,
		Amount:      e.Amount.InexactFloat64(),
		Description: e.Description,
		PaidBy:      e.PaidBy,
		Date:        e.Date,
		SplitType:   string(e.SplitType),
		Category:    e.Category,
		Participants: lo.Map(e.Participants, func(p models.Participant, _ int) api.Participant {
			return api.Participant{Name: p.Name, Share: p.Share.InexactFloat64()}
		}),
	}
}

func fromAPIParticipants(in []api.Participant) []models.Participant {
	return lo.Map(in, func(p api.Participant, _ int) models.Participant {
		return models.Participant{Name: p.Name, Share: decimal.NewFromFloat(p.Share)}
	})
}

func fromAPIPercentages(in []api.PercentShare) []calculator.PercentShare {
	return lo.Map(in, func(p api.PercentShare, _ int) calculator.PercentShare {
		return calculator.PercentShare{Name: p.Name, Percent: decimal.NewFromFloat(p.Percent)}
	})
}

func toAPIBalances(in []models.Balance) []api.Balance {
	return lo.Map(in, func(b models.Balance, _ int) api.Balance {
		return api.Balance{Name: b.Name, Net: b.Net.InexactFloat64()}
	})
}

func toAPISettlements(in []models.Settlement) []api.Settlement {
	return lo.Map(in, func(s models.Settlement, _ int) api.Settlement {
		return api.Settlement{From: s.From, To: s.To, Amount: s.Amount.InexactFloat64()}
	})
}
