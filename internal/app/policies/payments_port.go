package policies

import (
	"context"

	"stayhub/internal/domain/shared/money"
)

//go:generate mockgen -source=payments_port.go -destination=mocks/payments_port_mock.go -package=mocks

// PaymentsPort places and releases authorization holds for booking totals.
type PaymentsPort interface {
	PlaceHold(ctx context.Context, bookingID string, amount money.Money) (string, error)
	Release(ctx context.Context, holdID string) error
}
