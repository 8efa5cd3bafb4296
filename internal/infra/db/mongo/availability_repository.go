package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainavailability "stayhub/internal/domain/availability"
	"stayhub/internal/domain/listings"
	"stayhub/internal/domain/shared/daterange"
)

type AvailabilityRepository struct {
	col *mongo.Collection
}

func NewAvailabilityRepository(db *mongo.Database) *AvailabilityRepository {
	return &AvailabilityRepository{col: db.Collection(availabilityCollection)}
}

// Calendar returns an empty calendar for listings that have none yet.
func (r *AvailabilityRepository) Calendar(ctx context.Context, id listings.ListingID) (*domainavailability.Calendar, error) {
	var doc calendarDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domainavailability.NewCalendar(id), nil
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save relies on the version filter: two commands reserving the same listing
// concurrently cannot both commit.
func (r *AvailabilityRepository) Save(ctx context.Context, c *domainavailability.Calendar) error {
	doc := newCalendarDocument(c)
	filter := bson.M{"_id": doc.ID, "version": c.Version}
	doc.Version = c.Version + 1
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	c.Version = doc.Version
	return nil
}

type calendarDocument struct {
	ID      string          `bson:"_id"`
	Blocks  []blockDocument `bson:"blocks"`
	Version int64           `bson:"version"`
}

type blockDocument struct {
	Range     rangeDocument `bson:"range"`
	Reason    string        `bson:"reason"`
	Reference string        `bson:"reference,omitempty"`
	CreatedAt int64         `bson:"created_at"`
}

func newCalendarDocument(c *domainavailability.Calendar) calendarDocument {
	blocks := make([]blockDocument, 0, len(c.Blocks))
	for _, b := range c.Blocks {
		blocks = append(blocks, blockDocument{
			Range:     rangeDocument{CheckIn: b.Range.CheckIn.UnixMilli(), CheckOut: b.Range.CheckOut.UnixMilli()},
			Reason:    string(b.Reason),
			Reference: b.Reference,
			CreatedAt: b.CreatedAt.UnixMilli(),
		})
	}
	return calendarDocument{ID: string(c.ListingID), Blocks: blocks, Version: c.Version}
}

func (d calendarDocument) toAggregate() *domainavailability.Calendar {
	c := domainavailability.NewCalendar(listings.ListingID(d.ID))
	c.Version = d.Version
	for _, b := range d.Blocks {
		c.Blocks = append(c.Blocks, domainavailability.Block{
			Range:     daterange.DateRange{CheckIn: timestampToTime(b.Range.CheckIn), CheckOut: timestampToTime(b.Range.CheckOut)},
			Reason:    domainavailability.BlockReason(b.Reason),
			Reference: b.Reference,
			CreatedAt: timestampToTime(b.CreatedAt),
		})
	}
	return c
}

var _ domainavailability.Repository = (*AvailabilityRepository)(nil)
