package mongo

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlistings "stayhub/internal/domain/listings"
)

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection(listingsCollection)}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainlistings.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ListingRepository) Save(ctx context.Context, l *domainlistings.Listing) error {
	doc := newListingDocument(l)
	filter := bson.M{"_id": doc.ID, "version": l.Version}
	doc.Version = l.Version + 1
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
	l.Version = doc.Version
	return nil
}

// Search orders by nightly rate, then id, so pages are stable.
func (r *ListingRepository) Search(ctx context.Context, params domainlistings.SearchParams) (domainlistings.SearchResult, error) {
	params = params.Normalized()
	filter := searchFilter(params)
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return domainlistings.SearchResult{}, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "pricing.nightly_rate_cents", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(params.Offset)).
		SetLimit(int64(params.Limit))
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return domainlistings.SearchResult{}, err
	}
	var docs []listingDocument
	if err := cur.All(ctx, &docs); err != nil {
		return domainlistings.SearchResult{}, err
	}
	items := make([]*domainlistings.Listing, 0, len(docs))
	for _, doc := range docs {
		items = append(items, doc.toAggregate())
	}
	return domainlistings.SearchResult{Items: items, Total: int(total)}, nil
}

func searchFilter(params domainlistings.SearchParams) bson.M {
	filter := bson.M{}
	if params.Host != "" {
		filter["host_id"] = string(params.Host)
	}
	if params.OnlyActive {
		filter["state"] = string(domainlistings.ListingActive)
	}
	if params.City != "" {
		filter["address.city_lower"] = params.City
	}
	if params.MinGuests > 0 {
		filter["pricing.guests_limit"] = bson.M{"$gte": params.MinGuests}
	}
	return filter
}

type listingDocument struct {
	ID                   string          `bson:"_id"`
	HostID               string          `bson:"host_id"`
	Title                string          `bson:"title"`
	Description          string          `bson:"description,omitempty"`
	PropertyType         string          `bson:"property_type,omitempty"`
	Address              addressDocument `bson:"address"`
	Amenities            stringList      `bson:"amenities,omitempty"`
	Photos               stringList      `bson:"photos,omitempty"`
	CancellationPolicyID string          `bson:"cancellation_policy_id,omitempty"`
	State                string          `bson:"state"`
	ThumbnailURL         string          `bson:"thumbnail_url,omitempty"`
	Rating               float64         `bson:"rating"`
	Pricing              pricingDocument `bson:"pricing"`
	CreatedAt            int64           `bson:"created_at"`
	UpdatedAt            int64           `bson:"updated_at"`
	Version              int64           `bson:"version"`
}

type addressDocument struct {
	Line1     string  `bson:"line1"`
	Line2     string  `bson:"line2,omitempty"`
	City      string  `bson:"city"`
	CityLower string  `bson:"city_lower"`
	Country   string  `bson:"country"`
	Lat       float64 `bson:"lat"`
	Lon       float64 `bson:"lon"`
}

type pricingDocument struct {
	Currency         string               `bson:"currency"`
	NightlyRateCents int64                `bson:"nightly_rate_cents"`
	CleaningFeeCents int64                `bson:"cleaning_fee_cents"`
	ServiceFeeRate   primitive.Decimal128 `bson:"service_fee_rate"`
	TaxRate          primitive.Decimal128 `bson:"tax_rate"`
	GuestsLimit      int                  `bson:"guests_limit"`
}

// stringList decodes list fields written by older importers, which stored
// them as arrays, JSON encoded strings or comma separated strings.
type stringList []string

func (s *stringList) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Array:
		var list []string
		if err := raw.Unmarshal(&list); err != nil {
			return err
		}
		*s = domainlistings.NormalizeStrings(list)
	case bsontype.String:
		*s = domainlistings.ParseStringList(raw.StringValue())
	default:
		*s = nil
	}
	return nil
}

func newListingDocument(l *domainlistings.Listing) listingDocument {
	return listingDocument{
		ID:           string(l.ID),
		HostID:       string(l.Host),
		Title:        l.Title,
		Description:  l.Description,
		PropertyType: l.PropertyType,
		Address: addressDocument{
			Line1:     l.Address.Line1,
			Line2:     l.Address.Line2,
			City:      l.Address.City,
			CityLower: strings.ToLower(strings.TrimSpace(l.Address.City)),
			Country:   l.Address.Country,
			Lat:       l.Address.Lat,
			Lon:       l.Address.Lon,
		},
		Amenities:            stringList(l.Amenities),
		Photos:               stringList(l.Photos),
		CancellationPolicyID: l.CancellationPolicyID,
		State:                string(l.State),
		ThumbnailURL:         l.ThumbnailURL,
		Rating:               l.Rating,
		Pricing: pricingDocument{
			Currency:         l.Currency,
			NightlyRateCents: l.NightlyRateCents,
			CleaningFeeCents: l.CleaningFeeCents,
			ServiceFeeRate:   decimalToBSON(l.ServiceFeeRate),
			TaxRate:          decimalToBSON(l.TaxRate),
			GuestsLimit:      l.GuestsLimit,
		},
		CreatedAt: l.CreatedAt.UnixMilli(),
		UpdatedAt: l.UpdatedAt.UnixMilli(),
		Version:   l.Version,
	}
}

func (d listingDocument) toAggregate() *domainlistings.Listing {
	return &domainlistings.Listing{
		ID:           domainlistings.ListingID(d.ID),
		Host:         domainlistings.HostID(d.HostID),
		Title:        d.Title,
		Description:  d.Description,
		PropertyType: d.PropertyType,
		Address: domainlistings.Address{
			Line1:   d.Address.Line1,
			Line2:   d.Address.Line2,
			City:    d.Address.City,
			Country: d.Address.Country,
			Lat:     d.Address.Lat,
			Lon:     d.Address.Lon,
		},
		Amenities:            []string(d.Amenities),
		Photos:               []string(d.Photos),
		CancellationPolicyID: d.CancellationPolicyID,
		State:                domainlistings.ListingState(d.State),
		ThumbnailURL:         d.ThumbnailURL,
		Rating:               d.Rating,
		Pricing: domainlistings.Pricing{
			Currency:         d.Pricing.Currency,
			NightlyRateCents: d.Pricing.NightlyRateCents,
			CleaningFeeCents: d.Pricing.CleaningFeeCents,
			ServiceFeeRate:   decimalFromBSON(d.Pricing.ServiceFeeRate),
			TaxRate:          decimalFromBSON(d.Pricing.TaxRate),
			GuestsLimit:      d.Pricing.GuestsLimit,
		},
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
		Version:   d.Version,
	}
}

var _ domainlistings.ListingRepository = (*ListingRepository)(nil)
