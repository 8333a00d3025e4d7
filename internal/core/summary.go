package core

// Summary holds income and expense totals. Balance is derived, never stored.
type Summary struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

func (s Summary) Balance() float64 {
	return RoundAmount(s.Income - s.Expense)
}

// Overview is the all-time view of the ledger.
type Overview struct {
	Count   int     `json:"count"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Balance float64 `json:"balance"`
}
