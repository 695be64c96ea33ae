package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// maxUpdateAttempts bounds optimistic retries in Dynamo.Update.
const maxUpdateAttempts = 8

// DynamoClient is the subset of the DynamoDB API the store uses.
type DynamoClient interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Dynamo is a KV backed by a DynamoDB table with string partition key "pk"
// and string sort key "sk". The first key segment is the partition key and
// the remainder the sort key. Items carry a version used for optimistic
// concurrency in Update.
type Dynamo struct {
	client DynamoClient
	table  string
}

type dynamoItem struct {
	PK      string `dynamodbav:"pk"`
	SK      string `dynamodbav:"sk"`
	Value   []byte `dynamodbav:"value"`
	Version int64  `dynamodbav:"version"`
}

// NewDynamo wraps an existing client.
func NewDynamo(client DynamoClient, table string) *Dynamo {
	if table == "" {
		table = DefaultTable
	}
	return &Dynamo{client: client, table: table}
}

// OpenDynamo loads the default AWS configuration for region.
func OpenDynamo(ctx context.Context, region, table string) (*Dynamo, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	return NewDynamo(dynamodb.NewFromConfig(cfg), table), nil
}

func splitKey(key string) (pk, sk string, err error) {
	pk, sk, ok := strings.Cut(key, "/")
	if !ok || pk == "" || sk == "" {
		return "", "", fmt.Errorf("invalid key %q: want <partition>/<rest>", key)
	}
	return pk, sk, nil
}

func itemKey(pk, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: pk},
		"sk": &types.AttributeValueMemberS{Value: sk},
	}
}

func (d *Dynamo) get(ctx context.Context, key string) (*dynamoItem, error) {
	pk, sk, err := splitKey(key)
	if err != nil {
		return nil, err
	}
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(d.table),
		Key:            itemKey(pk, sk),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	var it dynamoItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", key, err)
	}
	return &it, nil
}

func (d *Dynamo) Get(ctx context.Context, key string) ([]byte, error) {
	it, err := d.get(ctx, key)
	if err != nil {
		return nil, err
	}
	return it.Value, nil
}

// write stores value and bumps the version. A nil cond writes unconditionally.
func (d *Dynamo) write(ctx context.Context, key string, value []byte, cond *expression.ConditionBuilder) error {
	pk, sk, err := splitKey(key)
	if err != nil {
		return err
	}
	update := expression.Set(expression.Name("value"), expression.Value(value)).
		Add(expression.Name("version"), expression.Value(1))
	b := expression.NewBuilder().WithUpdate(update)
	if cond != nil {
		b = b.WithCondition(*cond)
	}
	expr, err := b.Build()
	if err != nil {
		return fmt.Errorf("building update for %s: %w", key, err)
	}
	_, err = d.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(d.table),
		Key:                       itemKey(pk, sk),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	return err
}

func (d *Dynamo) Put(ctx context.Context, key string, value []byte) error {
	if err := d.write(ctx, key, value, nil); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Update reads the item and writes it back conditioned on the version it
// read, retrying when another writer got there first.
func (d *Dynamo) Update(ctx context.Context, key string, fn UpdateFunc) error {
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		it, err := d.get(ctx, key)
		exists := true
		if errors.Is(err, ErrNotFound) {
			exists = false
			it = &dynamoItem{}
		} else if err != nil {
			return err
		}
		v, err := fn(it.Value, exists)
		if err != nil {
			return err
		}
		cond := expression.AttributeNotExists(expression.Name("pk"))
		if exists {
			cond = expression.Name("version").Equal(expression.Value(it.Version))
		}
		err = d.write(ctx, key, v, &cond)
		var conflict *types.ConditionalCheckFailedException
		if errors.As(err, &conflict) {
			continue
		}
		if err != nil {
			return fmt.Errorf("writing %s: %w", key, err)
		}
		return nil
	}
	return fmt.Errorf("updating %s: too many concurrent writers", key)
}

func (d *Dynamo) List(ctx context.Context, prefix string) ([]Entry, error) {
	var items []map[string]types.AttributeValue
	if pk, rest, ok := strings.Cut(prefix, "/"); ok && pk != "" {
		kc := expression.Key("pk").Equal(expression.Value(pk))
		if rest != "" {
			kc = kc.And(expression.Key("sk").BeginsWith(rest))
		}
		expr, err := expression.NewBuilder().WithKeyCondition(kc).Build()
		if err != nil {
			return nil, fmt.Errorf("building query for %q: %w", prefix, err)
		}
		pages := dynamodb.NewQueryPaginator(d.client, &dynamodb.QueryInput{
			TableName:                 aws.String(d.table),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ConsistentRead:            aws.Bool(true),
		})
		for pages.HasMorePages() {
			out, err := pages.NextPage(ctx)
			if err != nil {
				return nil, fmt.Errorf("listing %q: %w", prefix, err)
			}
			items = append(items, out.Items...)
		}
	} else {
		scan := &dynamodb.ScanInput{TableName: aws.String(d.table), ConsistentRead: aws.Bool(true)}
		if prefix != "" {
			expr, err := expression.NewBuilder().
				WithFilter(expression.Name("pk").BeginsWith(prefix)).
				Build()
			if err != nil {
				return nil, fmt.Errorf("building scan for %q: %w", prefix, err)
			}
			scan.FilterExpression = expr.Filter()
			scan.ExpressionAttributeNames = expr.Names()
			scan.ExpressionAttributeValues = expr.Values()
		}
		pages := dynamodb.NewScanPaginator(d.client, scan)
		for pages.HasMorePages() {
			out, err := pages.NextPage(ctx)
			if err != nil {
				return nil, fmt.Errorf("listing %q: %w", prefix, err)
			}
			items = append(items, out.Items...)
		}
	}

	var decoded []dynamoItem
	if err := attributevalue.UnmarshalListOfMaps(items, &decoded); err != nil {
		return nil, fmt.Errorf("decoding %q: %w", prefix, err)
	}
	out := make([]Entry, 0, len(decoded))
	for _, it := range decoded {
		out = append(out, Entry{Key: it.PK + "/" + it.SK, Value: it.Value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (d *Dynamo) Delete(ctx context.Context, key string) error {
	pk, sk, err := splitKey(key)
	if err != nil {
		return err
	}
	_, err = d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(d.table),
		Key:       itemKey(pk, sk),
	})
	if err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

func (d *Dynamo) Close() error { return nil }
