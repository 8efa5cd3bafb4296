package daterange

import (
	"errors"
	"testing"
	"time"
)

func TestNightsBetweenRoundsPartialDaysUp(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name     string
		checkOut time.Time
		want     int
	}{
		{name: "same instant", checkOut: base, want: 0},
		{name: "before", checkOut: base.Add(-time.Hour), want: 0},
		{name: "one millisecond", checkOut: base.Add(time.Millisecond), want: 1},
		{name: "exactly one day", checkOut: base.Add(24 * time.Hour), want: 1},
		{name: "late night", checkOut: base.Add(24*time.Hour + 23*time.Hour), want: 2},
		{name: "five days", checkOut: base.AddDate(0, 0, 5), want: 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NightsBetween(base, tc.checkOut); got != tc.want {
				t.Fatalf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestNewRejectsEmptyRange(t *testing.T) {
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	if _, err := New(day, day); err != ErrInvalidRange {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
	if _, err := New(day, day.AddDate(0, 0, 1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIntersect(t *testing.T) {
	a := DateRange{CheckIn: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), CheckOut: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)}
	b := DateRange{CheckIn: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), CheckOut: time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)}
	got, ok := a.Intersect(b)
	if !ok {
		t.Fatal("expected overlap")
	}
	if got.Nights() != 5 {
		t.Fatalf("nights: got %d, want 5", got.Nights())
	}
	adjacent := DateRange{CheckIn: a.CheckOut, CheckOut: a.CheckOut.AddDate(0, 0, 1)}
	if _, ok := a.Intersect(adjacent); ok {
		t.Fatal("adjacent ranges must not intersect")
	}
}

func TestParse(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Time
		err  bool
	}{
		{raw: "2024-06-01", want: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		{raw: " 2024-06-01T10:30:00Z ", want: time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)},
		{raw: "", err: true},
		{raw: "June 1", err: true},
	}
	for _, tc := range cases {
		got, err := Parse(tc.raw)
		if tc.err {
			if !errors.Is(err, ErrInvalidDate) {
				t.Fatalf("%q: expected ErrInvalidDate, got %v", tc.raw, err)
			}
			continue
		}
		if err != nil || !got.Equal(tc.want) {
			t.Fatalf("%q: got %v (%v), want %v", tc.raw, got, err, tc.want)
		}
	}
}
