package quote

import "time"

// Clock returns the caller's current local time.
type Clock func() time.Time

// Assembler builds booking quotes. The zero value uses time.Now.
type Assembler struct {
	Clock Clock
}

func NewAssembler(clock Clock) Assembler {
	return Assembler{Clock: clock}
}

// Assemble validates and prices a stay in a single pass. Date errors come
// before capacity errors and every problem is reported. Pricing is filled
// whenever the range has at least one night, even if the quote is invalid.
func (a Assembler) Assemble(req StayRequest, profile PricingProfile) BookingQuote {
	dates := ValidateDates(req.CheckIn, req.CheckOut, DateOptions{
		Now:       a.now(),
		AllowPast: req.AllowPast,
	})

	q := BookingQuote{
		PropertyID: req.PropertyID,
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
		Guests:     req.Guests,
		Currency:   profile.Currency,
		Nights:     dates.Nights,
	}
	if dates.Nights > 0 {
		q.Price = Compose(dates.Nights, profile)
	}

	capacity := CheckCapacity(req.Guests, profile.MaxGuests)
	errs := make([]string, 0, len(dates.Errors)+len(capacity))
	errs = append(errs, dates.Errors...)
	errs = append(errs, capacity...)
	q.ValidationErrors = errs
	q.IsValid = len(errs) == 0
	return q
}

func (a Assembler) now() time.Time {
	if a.Clock == nil {
		return time.Now()
	}
	return a.Clock()
}
