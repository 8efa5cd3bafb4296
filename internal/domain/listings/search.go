package listings

import "strings"

const (
	defaultSearchLimit = 24
	maxSearchLimit     = 60
)

// SearchParams describe catalog filters and paging options.
type SearchParams struct {
	Host       HostID
	City       string
	MinGuests  int
	OnlyActive bool
	Limit      int
	Offset     int
}

// Normalized returns a sanitized copy of params.
func (p SearchParams) Normalized() SearchParams {
	normalized := p
	normalized.City = strings.TrimSpace(strings.ToLower(normalized.City))
	if normalized.MinGuests < 0 {
		normalized.MinGuests = 0
	}
	if normalized.Limit <= 0 {
		normalized.Limit = defaultSearchLimit
	}
	if normalized.Limit > maxSearchLimit {
		normalized.Limit = maxSearchLimit
	}
	if normalized.Offset < 0 {
		normalized.Offset = 0
	}
	return normalized
}

// Matches reports whether l passes the filters of normalized params.
func (p SearchParams) Matches(l *Listing) bool {
	if l == nil {
		return false
	}
	if p.Host != "" && l.Host != p.Host {
		return false
	}
	if p.OnlyActive && l.State != ListingActive {
		return false
	}
	if p.City != "" && strings.ToLower(strings.TrimSpace(l.Address.City)) != p.City {
		return false
	}
	if p.MinGuests > 0 && l.GuestsLimit < p.MinGuests {
		return false
	}
	return true
}

// SearchResult wraps search hits with meta.
type SearchResult struct {
	Items []*Listing
	Total int
}
