package payments

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"stayhub/internal/app/policies"
	"stayhub/internal/domain/shared/money"
)

var ErrHoldNotFound = errors.New("payments: hold not found")

// DemoGateway approves every hold and keeps them in memory.
type DemoGateway struct {
	mu     sync.Mutex
	holds  map[string]money.Money
	logger *slog.Logger
}

func NewDemoGateway(logger *slog.Logger) *DemoGateway {
	return &DemoGateway{holds: make(map[string]money.Money), logger: logger}
}

func (g *DemoGateway) PlaceHold(ctx context.Context, bookingID string, amount money.Money) (string, error) {
	if amount.IsNegative() {
		return "", errors.New("payments: negative amount")
	}
	id := "demo-" + uuid.NewString()
	g.mu.Lock()
	g.holds[id] = amount
	g.mu.Unlock()
	if g.logger != nil {
		g.logger.InfoContext(ctx, "demo hold placed", "booking_id", bookingID, "hold_id", id, "amount", amount.String(), "currency", amount.Currency)
	}
	return id, nil
}

func (g *DemoGateway) Release(ctx context.Context, holdID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.holds[holdID]; !ok {
		return ErrHoldNotFound
	}
	delete(g.holds, holdID)
	if g.logger != nil {
		g.logger.InfoContext(ctx, "demo hold released", "hold_id", holdID)
	}
	return nil
}

// Active reports whether holdID is currently held.
func (g *DemoGateway) Active(holdID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.holds[holdID]
	return ok
}

var _ policies.PaymentsPort = (*DemoGateway)(nil)
