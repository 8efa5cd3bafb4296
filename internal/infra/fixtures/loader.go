package fixtures

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"stayhub/internal/app/commands"
	listinghandlers "stayhub/internal/app/handlers/listings"
)

// Opener opens a fixtures document by name.
type Opener interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// Files opens fixtures from the local filesystem.
type Files struct{}

func (Files) Open(_ context.Context, name string) (io.ReadCloser, error) {
	return os.Open(name)
}

// Loader seeds listings by sending every snapshot of a fixtures document
// through the listing sync command, the same path Kafka snapshots take.
type Loader struct {
	Bus    commands.Bus
	Logger *slog.Logger
}

type Summary struct {
	Imported int
	Failed   int
}

// LoadFrom reads name from opener. A missing file is not an error.
func (l Loader) LoadFrom(ctx context.Context, opener Opener, name string) (Summary, error) {
	rc, err := opener.Open(ctx, name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			l.logger().Info("listing fixtures not found, skipping", "path", name)
			return Summary{}, nil
		}
		return Summary{}, fmt.Errorf("open fixtures: %w", err)
	}
	defer rc.Close()
	return l.Load(ctx, rc)
}

// Load applies a JSON array of listing snapshots. Invalid entries are logged
// and skipped.
func (l Loader) Load(ctx context.Context, r io.Reader) (Summary, error) {
	var snapshots []listinghandlers.ListingSnapshot
	if err := json.NewDecoder(r).Decode(&snapshots); err != nil {
		if errors.Is(err, io.EOF) {
			return Summary{}, nil
		}
		return Summary{}, fmt.Errorf("decode fixtures: %w", err)
	}
	var sum Summary
	for _, snap := range snapshots {
		res, err := commands.Dispatch[listinghandlers.SyncListingCommand, listinghandlers.SyncListingResult](ctx, l.Bus, listinghandlers.SyncListingCommand{Snapshot: snap})
		if err != nil {
			sum.Failed++
			l.logger().Error("fixture invalid", "listing_id", snap.ID, "error", err)
			continue
		}
		sum.Imported++
		l.logger().Debug("listing fixture imported", "listing_id", res.ListingID, "created", res.Created)
	}
	l.logger().Info("listing fixtures loaded", "imported", sum.Imported, "failed", sum.Failed)
	return sum, nil
}

// DefaultPath returns the first existing candidate fixtures file.
func DefaultPath() string {
	candidates := []string{
		filepath.Join("data", "listings.json"),
		filepath.Join("..", "..", "data", "listings.json"),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return candidates[0]
}

func (l Loader) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}
