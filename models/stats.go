package models

// StatusAggregate holds count and amount sums for one payment status.
type StatusAggregate struct {
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}

// DailyPoint is one day of the payment trend series.
type DailyPoint struct {
	Date           string  `json:"date"` // YYYY-MM-DD
	Count          int     `json:"count"`
	Amount         float64 `json:"amount"`
	ApprovedAmount float64 `json:"approved_amount"`
}

// PaymentStatistics is the read-side rollup over the payment store for a
// time window. An empty window yields the zero value, never an error.
type PaymentStatistics struct {
	Period      string          `json:"period"`
	TotalCount  int             `json:"total_count"`
	TotalAmount float64         `json:"total_amount"`
	Pending     StatusAggregate `json:"pending"`
	Accepted    StatusAggregate `json:"accepted"`
	Rejected    StatusAggregate `json:"rejected"`
	Daily       []DailyPoint    `json:"daily"`
}

// PaymentCounters are the aggregate counters returned alongside a payment
// listing page.
type PaymentCounters struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}
