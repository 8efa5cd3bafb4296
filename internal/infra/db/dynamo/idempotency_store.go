package dynamo

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"stayhub/internal/app/middleware"
)

// API is the subset of the DynamoDB client the store uses.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// IdempotencyStore keeps command results in a table keyed by "key". The
// table should enable TTL on "expires_at"; until DynamoDB sweeps an item the
// store treats it as missing once it has expired.
type IdempotencyStore struct {
	ddb   API
	table string
	ttl   time.Duration
	now   func() time.Time
}

func NewIdempotencyStore(ddb API, table string, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{ddb: ddb, table: table, ttl: ttl, now: time.Now}
}

type idempotencyItem struct {
	Key        string `dynamodbav:"key"`
	Command    string `dynamodbav:"command"`
	Payload    []byte `dynamodbav:"payload"`
	OccurredAt string `dynamodbav:"occurred_at"`
	ExpiresAt  int64  `dynamodbav:"expires_at"`
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	out, err := s.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"key": &types.AttributeValueMemberS{Value: key},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return middleware.IdempotencyRecord{}, false, err
	}
	if len(out.Item) == 0 {
		return middleware.IdempotencyRecord{}, false, nil
	}
	var it idempotencyItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return middleware.IdempotencyRecord{}, false, err
	}
	if it.ExpiresAt > 0 && s.now().Unix() >= it.ExpiresAt {
		return middleware.IdempotencyRecord{}, false, nil
	}
	occurred, err := time.Parse(time.RFC3339Nano, it.OccurredAt)
	if err != nil {
		return middleware.IdempotencyRecord{}, false, err
	}
	return middleware.IdempotencyRecord{
		Key:        it.Key,
		Command:    it.Command,
		Payload:    it.Payload,
		OccurredAt: occurred,
	}, true, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, rec middleware.IdempotencyRecord) error {
	it := idempotencyItem{
		Key:        rec.Key,
		Command:    rec.Command,
		Payload:    rec.Payload,
		OccurredAt: rec.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
	if s.ttl > 0 {
		it.ExpiresAt = s.now().Add(s.ttl).Unix()
	}
	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return err
	}
	_, err = s.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	})
	return err
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
