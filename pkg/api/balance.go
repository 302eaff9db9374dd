package api

// Balance is a person's net position: positive means they are owed money.
type Balance struct {
	Name string  `json:"name"`
	Net  float64 `json:"net"`
}

// Settlement is a single transfer from a debtor to a creditor.
type Settlement struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

type ListPeopleRequest struct{}

type ListPeopleResponse struct {
	People []string `json:"people"`
}

type GetBalancesRequest struct{}

type GetBalancesResponse struct {
	Balances []Balance `json:"balances"`
}

type GetSettlementsRequest struct{}

type GetSettlementsResponse struct {
	Settlements []Settlement `json:"settlements"`
}
