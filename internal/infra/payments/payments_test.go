package payments

import (
	"context"
	"errors"
	"testing"

	"stayhub/internal/domain/shared/money"
)

func TestDemoGatewayHoldLifecycle(t *testing.T) {
	g := NewDemoGateway(nil)
	ctx := context.Background()

	id, err := g.PlaceHold(ctx, "bk-1", money.Must(66600, "USD"))
	if err != nil {
		t.Fatalf("PlaceHold: %v", err)
	}
	if !g.Active(id) {
		t.Fatal("hold must be active after placing")
	}
	if err := g.Release(ctx, id); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if g.Active(id) {
		t.Fatal("hold must be gone after release")
	}
	if err := g.Release(ctx, id); !errors.Is(err, ErrHoldNotFound) {
		t.Fatalf("expected ErrHoldNotFound, got %v", err)
	}
}

func TestNewMercadoPagoGatewayRequiresToken(t *testing.T) {
	if _, err := NewMercadoPagoGateway(MercadoPagoConfig{}, nil); !errors.Is(err, ErrMissingAccessToken) {
		t.Fatalf("expected ErrMissingAccessToken, got %v", err)
	}
}
