package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "stayhub/internal/domain/booking"
	"stayhub/internal/domain/listings"
	domainpricing "stayhub/internal/domain/pricing"
	"stayhub/internal/domain/quote"
	"stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/shared/money"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection(bookingsCollection)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrBookingNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save upserts the booking guarded by its version. A stale version matches
// nothing and the upsert collides on _id, which surfaces as ErrConcurrentUpdate.
func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{"guest_id": guestID})
}

func (r *BookingRepository) ListByListing(ctx context.Context, listingID listings.ListingID) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{"listing_id": string(listingID)})
}

func (r *BookingRepository) find(ctx context.Context, filter bson.M) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []bookingDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainbooking.Booking, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toAggregate())
	}
	return out, nil
}

type bookingDocument struct {
	ID          string         `bson:"_id"`
	ListingID   string         `bson:"listing_id"`
	HostID      string         `bson:"host_id"`
	GuestID     string         `bson:"guest_id"`
	Range       rangeDocument  `bson:"range"`
	Guests      guestsDocument `bson:"guests"`
	Price       priceDocument  `bson:"price"`
	State       string         `bson:"state"`
	PaymentHold string         `bson:"payment_hold,omitempty"`
	CreatedAt   int64          `bson:"created_at"`
	UpdatedAt   int64          `bson:"updated_at"`
	Version     int64          `bson:"version"`
}

type guestsDocument struct {
	Adults   int `bson:"adults"`
	Children int `bson:"children"`
	Infants  int `bson:"infants"`
}

// priceDocument stores the snapshot in cents so a later pricing change never
// touches an existing booking.
type priceDocument struct {
	Currency    string `bson:"currency"`
	Nights      int    `bson:"nights"`
	Nightly     int64  `bson:"nightly"`
	Base        int64  `bson:"base"`
	CleaningFee int64  `bson:"cleaning_fee"`
	ServiceFee  int64  `bson:"service_fee"`
	Tax         int64  `bson:"tax"`
	Total       int64  `bson:"total"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:        string(b.ID),
		ListingID: string(b.ListingID),
		HostID:    string(b.HostID),
		GuestID:   b.GuestID,
		Range:     rangeDocument{CheckIn: b.Range.CheckIn.UnixMilli(), CheckOut: b.Range.CheckOut.UnixMilli()},
		Guests: guestsDocument{
			Adults:   b.Guests.Adults,
			Children: b.Guests.Children,
			Infants:  b.Guests.Infants,
		},
		Price: priceDocument{
			Currency:    b.Price.Total.Currency,
			Nights:      b.Price.Nights,
			Nightly:     b.Price.Nightly.Amount,
			Base:        b.Price.Base.Amount,
			CleaningFee: b.Price.CleaningFee.Amount,
			ServiceFee:  b.Price.ServiceFee.Amount,
			Tax:         b.Price.Tax.Amount,
			Total:       b.Price.Total.Amount,
		},
		State:       string(b.State),
		PaymentHold: b.PaymentHold,
		CreatedAt:   b.CreatedAt.UnixMilli(),
		UpdatedAt:   b.UpdatedAt.UnixMilli(),
		Version:     b.Version,
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	cur := d.Price.Currency
	return &domainbooking.Booking{
		ID:        domainbooking.BookingID(d.ID),
		ListingID: listings.ListingID(d.ListingID),
		HostID:    listings.HostID(d.HostID),
		GuestID:   d.GuestID,
		Range:     daterange.DateRange{CheckIn: timestampToTime(d.Range.CheckIn), CheckOut: timestampToTime(d.Range.CheckOut)},
		Guests: quote.GuestCount{
			Adults:   d.Guests.Adults,
			Children: d.Guests.Children,
			Infants:  d.Guests.Infants,
		},
		Price: domainpricing.PriceBreakdown{
			Nights:      d.Price.Nights,
			Nightly:     money.Money{Amount: d.Price.Nightly, Currency: cur},
			Base:        money.Money{Amount: d.Price.Base, Currency: cur},
			CleaningFee: money.Money{Amount: d.Price.CleaningFee, Currency: cur},
			ServiceFee:  money.Money{Amount: d.Price.ServiceFee, Currency: cur},
			Tax:         money.Money{Amount: d.Price.Tax, Currency: cur},
			Total:       money.Money{Amount: d.Price.Total, Currency: cur},
		},
		State:       domainbooking.BookingState(d.State),
		PaymentHold: d.PaymentHold,
		CreatedAt:   timestampToTime(d.CreatedAt),
		UpdatedAt:   timestampToTime(d.UpdatedAt),
		Version:     d.Version,
	}
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
