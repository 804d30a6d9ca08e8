package service

import "math"

const (
	DefaultUSDPerStar = 0.0251
	DefaultMaxStars   = 9999
)

// Pricing переводит цену в долларах в Telegram Stars
type Pricing struct {
	USDPerStar float64
	MaxStars   int
}

// Stars возвращает round(usd / USDPerStar), ограниченное сверху MaxStars.
// Превышение потолка не ошибка: сумма молча становится равной потолку.
func (p Pricing) Stars(usd float64) int {
	if usd <= 0 || math.IsNaN(usd) || p.USDPerStar <= 0 {
		return 0
	}
	stars := math.Round(usd / p.USDPerStar)
	if stars > float64(p.MaxStars) {
		return p.MaxStars
	}
	return int(stars)
}
