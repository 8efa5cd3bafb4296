package dto

import "time"

type ListingStats struct {
	ListingID       string   `json:"listing_id"`
	Title           string   `json:"title"`
	BookedNights    int      `json:"booked_nights"`
	AvailableNights int      `json:"available_nights"`
	OccupancyRate   float64  `json:"occupancy_rate"`
	Revenue         MoneyDTO `json:"revenue"`
	PendingCount    int      `json:"pending_count"`
}

type HostStats struct {
	HostID   string         `json:"host_id"`
	From     time.Time      `json:"from"`
	To       time.Time      `json:"to"`
	Listings []ListingStats `json:"listings"`
}
