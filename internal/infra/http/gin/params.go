package ginserver

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"stayhub/internal/domain/shared/daterange"
)

func requireTime(field, raw string) (time.Time, error) {
	t, err := daterange.Parse(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be a date (YYYY-MM-DD) or RFC3339 timestamp", errBadRequest, field)
	}
	return t, nil
}

func optionalTime(field, raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, nil
	}
	return requireTime(field, raw)
}

// parseCount reads a guest count. Missing values are zero; negative values
// are passed through so the capacity check can report them.
func parseCount(field, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", errBadRequest, field)
	}
	return v, nil
}

func parseInt(raw string) int {
	value, _ := strconv.Atoi(strings.TrimSpace(raw))
	if value < 0 {
		return 0
	}
	return value
}

func parseIntWithDefault(raw string, fallback int) int {
	value := parseInt(raw)
	if value == 0 {
		return fallback
	}
	return value
}

func parseBool(raw string) bool {
	v, _ := strconv.ParseBool(strings.TrimSpace(raw))
	return v
}

func requireDecimal(field string, d *decimal.Decimal) (decimal.Decimal, error) {
	if d == nil {
		return decimal.Zero, fmt.Errorf("%w: %s is required", errBadRequest, field)
	}
	return *d, nil
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
