package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"

	"stayhub/internal/app/policies"
	"stayhub/internal/domain/shared/money"
)

var (
	ErrMissingAccessToken = errors.New("payments: missing MERCADOPAGO_ACCESS_TOKEN")
	ErrHoldRejected       = errors.New("payments: hold rejected by provider")
)

type MercadoPagoConfig struct {
	AccessToken     string
	PaymentMethodID string
	PayerEmail      string
}

// MercadoPagoGateway places holds as uncaptured payments and releases them
// by cancelling the payment.
type MercadoPagoGateway struct {
	client payment.Client
	cfg    MercadoPagoConfig
	logger *slog.Logger
}

func NewMercadoPagoGateway(cfg MercadoPagoConfig, logger *slog.Logger) (*MercadoPagoGateway, error) {
	if cfg.AccessToken == "" {
		return nil, ErrMissingAccessToken
	}
	sdkCfg, err := config.New(cfg.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("payments: mercadopago config: %w", err)
	}
	return newMercadoPagoGateway(payment.NewClient(sdkCfg), cfg, logger), nil
}

func newMercadoPagoGateway(client payment.Client, cfg MercadoPagoConfig, logger *slog.Logger) *MercadoPagoGateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &MercadoPagoGateway{client: client, cfg: cfg, logger: logger}
}

func (g *MercadoPagoGateway) PlaceHold(ctx context.Context, bookingID string, amount money.Money) (string, error) {
	value, _ := amount.Decimal().Float64()
	req := payment.Request{
		TransactionAmount: value,
		Capture:           false,
		Description:       "booking " + bookingID,
		ExternalReference: bookingID,
		PaymentMethodID:   g.cfg.PaymentMethodID,
	}
	if g.cfg.PayerEmail != "" {
		req.Payer = &payment.PayerRequest{Email: g.cfg.PayerEmail}
	}
	resp, err := g.client.Create(ctx, req)
	if err != nil {
		g.logger.ErrorContext(ctx, "mercadopago hold failed", "booking_id", bookingID, "error", err)
		return "", err
	}
	if resp.Status == "rejected" || resp.Status == "cancelled" {
		return "", fmt.Errorf("%w: %s", ErrHoldRejected, resp.StatusDetail)
	}
	holdID := strconv.Itoa(resp.ID)
	g.logger.InfoContext(ctx, "mercadopago hold placed", "booking_id", bookingID, "hold_id", holdID, "status", resp.Status)
	return holdID, nil
}

func (g *MercadoPagoGateway) Release(ctx context.Context, holdID string) error {
	id, err := strconv.Atoi(holdID)
	if err != nil {
		return fmt.Errorf("payments: invalid hold id %q: %w", holdID, err)
	}
	resp, err := g.client.Cancel(ctx, id)
	if err != nil {
		g.logger.ErrorContext(ctx, "mercadopago release failed", "hold_id", holdID, "error", err)
		return err
	}
	g.logger.InfoContext(ctx, "mercadopago hold released", "hold_id", holdID, "status", resp.Status)
	return nil
}

var _ policies.PaymentsPort = (*MercadoPagoGateway)(nil)
