package main

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"stayhub/internal/app/dto"
	listingapp "stayhub/internal/app/handlers/listings"
	quoteapp "stayhub/internal/app/handlers/quotes"
	"stayhub/internal/app/queries"
	"stayhub/internal/domain/quote"
	"stayhub/internal/infra/config"
)

func newMemoryApplication(t *testing.T) (*application, context.Context) {
	t.Helper()
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("IDEMPOTENCY_BACKEND", "")
	t.Setenv("PAYMENTS_MODE", "demo")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("S3_FIXTURES_BUCKET", "")
	t.Setenv("LISTINGS_FIXTURES", filepath.Join("..", "..", "data", "listings.json"))
	cfg, err := config.FromEnv()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(func() { app.close(ctx) })
	if err := app.loadFixtures(ctx, cfg); err != nil {
		t.Fatalf("fixtures: %v", err)
	}
	return app, ctx
}

func TestMemoryApplicationQuotesFixtureListing(t *testing.T) {
	app, ctx := newMemoryApplication(t)
	if app.relay != nil || app.consumer != nil {
		t.Fatal("no background workers expected without kafka")
	}

	catalog, err := queries.Ask[listingapp.SearchCatalogQuery, dto.ListingCatalog](ctx, app.queries, listingapp.SearchCatalogQuery{City: "Lisbon"})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if len(catalog.Items) != 1 {
		t.Fatalf("expected the Lisbon fixture, got %+v", catalog)
	}

	checkIn := time.Date(2099, 3, 1, 0, 0, 0, 0, time.UTC)
	q, err := queries.Ask[quoteapp.GetQuoteQuery, dto.Quote](ctx, app.queries, quoteapp.GetQuoteQuery{
		ListingID: "lst-lisbon-loft",
		CheckIn:   checkIn,
		CheckOut:  checkIn.AddDate(0, 0, 5),
		Adults:    2,
		Children:  1,
		Infants:   1,
	})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if !q.IsValid || !q.Available {
		t.Fatalf("expected a valid, available quote: %+v", q)
	}
	if q.Total.Display != "666.00" || q.Total.Currency != "EUR" {
		t.Fatalf("total: %+v", q.Total)
	}
}

func TestMemoryApplicationQuotesHistoricalStay(t *testing.T) {
	app, ctx := newMemoryApplication(t)
	checkIn := time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)
	query := quoteapp.GetQuoteQuery{
		ListingID: "lst-lisbon-loft",
		CheckIn:   checkIn,
		CheckOut:  checkIn.AddDate(0, 0, 5),
		Adults:    2,
	}

	q, err := queries.Ask[quoteapp.GetQuoteQuery, dto.Quote](ctx, app.queries, query)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if q.IsValid || len(q.ValidationErrors) != 1 || q.ValidationErrors[0] != quote.MsgCheckInInPast {
		t.Fatalf("expected a past check-in error, got %+v", q.ValidationErrors)
	}

	query.AllowPast = true
	q, err = queries.Ask[quoteapp.GetQuoteQuery, dto.Quote](ctx, app.queries, query)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if !q.IsValid || len(q.ValidationErrors) != 0 {
		t.Fatalf("expected a valid historical quote, got %+v", q.ValidationErrors)
	}
	if q.Total.Display != "666.00" {
		t.Fatalf("total: %+v", q.Total)
	}
}
