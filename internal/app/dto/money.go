package dto

import (
	"github.com/shopspring/decimal"

	"stayhub/internal/domain/shared/money"
)

// MoneyDTO renders an amount both as integer cents and as a fixed two-digit string.
type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Display  string `json:"display"`
	Currency string `json:"currency"`
}

func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{
		Amount:   value.Amount,
		Display:  value.String(),
		Currency: value.Currency,
	}
}

// MapDecimal rounds an exact amount for display.
func MapDecimal(amount decimal.Decimal, currency string) MoneyDTO {
	m, err := money.FromDecimal(amount, currency)
	if err != nil {
		m = money.Money{Amount: amount.Round(2).Shift(2).IntPart(), Currency: currency}
	}
	return MapMoney(m)
}
