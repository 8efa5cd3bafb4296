package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectTimeout = 10 * time.Second

type Client struct {
	DB *mongo.Database
}

func New(uri, database string) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	opts := options.Client().ApplyURI(uri).SetRetryWrites(true)
	m, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Client{DB: m.Database(database)}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.DB.Client().Ping(ctx, nil)
}

func (c *Client) Close(ctx context.Context) error {
	return c.DB.Client().Disconnect(ctx)
}

// Factory builds a unit of work factory backed by this database.
func (c *Client) Factory() Factory {
	return Factory{
		DB:               c.DB,
		ListingsRepo:     NewListingRepository(c.DB),
		AvailabilityRepo: NewAvailabilityRepository(c.DB),
		BookingRepo:      NewBookingRepository(c.DB),
	}
}

// EnsureIndexes creates the secondary indexes the repositories query by.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		listingsCollection: {
			{Keys: bsonKeys("host_id")},
			{Keys: bsonKeys("address.city_lower", "state")},
		},
		bookingsCollection: {
			{Keys: bsonKeys("guest_id", "created_at")},
			{Keys: bsonKeys("listing_id", "created_at")},
		},
	}
	for name, models := range indexes {
		if _, err := c.DB.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}
