package model

// Plan описывает тарифный план подписки
type Plan struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	PriceUSD float64 `json:"price_usd"`
}

// DefaultPlans возвращает тарифы в порядке отображения в меню
func DefaultPlans() []Plan {
	return []Plan{
		{ID: "1_month", Name: "1 Month", PriceUSD: 100},
		{ID: "3_months", Name: "3 Months", PriceUSD: 250},
		{ID: "6_months", Name: "6 Months", PriceUSD: 350},
		{ID: "1_year", Name: "1 Year", PriceUSD: 400},
	}
}
