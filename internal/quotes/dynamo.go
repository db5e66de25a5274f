package quotes

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	json "github.com/goccy/go-json"
)

// DynamoAPI is the subset of *dynamodb.Client the repository uses.
type DynamoAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// DynamoConfig selects the DynamoDB endpoint. An empty Endpoint uses AWS;
// a set one (DynamoDB Local) gets static credentials.
type DynamoConfig struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// NewDynamoClient builds a DynamoDB client from cfg and the default AWS
// credential chain.
func NewDynamoClient(ctx context.Context, cfg DynamoConfig) (*dynamodb.Client, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}

	if cfg.Endpoint != "" {
		key, secret := cfg.AccessKeyID, cfg.SecretAccessKey
		if key == "" {
			key = "local"
		}
		if secret == "" {
			secret = "local"
		}
		// DynamoDB Local ignores credentials but the SDK requires some.
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(key, secret, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

type quoteItem struct {
	ID              string  `dynamodbav:"id"`
	CreatedAt       string  `dynamodbav:"created_at"`
	Title           string  `dynamodbav:"title,omitempty"`
	Notes           string  `dynamodbav:"notes,omitempty"`
	RateCardVersion string  `dynamodbav:"ratecard_version"`
	Total           float64 `dynamodbav:"total"`
	InputJSON       string  `dynamodbav:"input_json"`
	BreakdownJSON   string  `dynamodbav:"breakdown_json"`
}

// DynamoRepository persists quotes in a DynamoDB table keyed by id.
type DynamoRepository struct {
	ddb       DynamoAPI
	tableName string
}

var _ Repository = (*DynamoRepository)(nil)

func NewDynamoRepository(ddb DynamoAPI, tableName string) *DynamoRepository {
	return &DynamoRepository{ddb: ddb, tableName: tableName}
}

// EnsureTable creates the table with an on-demand billing mode when it does
// not exist yet. Intended for DynamoDB Local.
func (r *DynamoRepository) EnsureTable(ctx context.Context) error {
	_, err := r.ddb.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(r.tableName)})
	if err == nil {
		return nil
	}
	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return fmt.Errorf("describe table %s: %w", r.tableName, err)
	}

	_, err = r.ddb.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(r.tableName),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("id"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		var inUse *types.ResourceInUseException
		if errors.As(err, &inUse) {
			return nil
		}
		return fmt.Errorf("create table %s: %w", r.tableName, err)
	}
	return nil
}

func (r *DynamoRepository) Create(ctx context.Context, q Quote) (Quote, error) {
	it, err := toQuoteItem(q)
	if err != nil {
		return Quote{}, err
	}
	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return Quote{}, fmt.Errorf("marshal quote item: %w", err)
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return Quote{}, ErrDuplicate
		}
		return Quote{}, fmt.Errorf("put quote: %w", err)
	}
	return q, nil
}

func (r *DynamoRepository) Get(ctx context.Context, id string) (Quote, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return Quote{}, fmt.Errorf("get quote %s: %w", id, err)
	}
	if len(out.Item) == 0 {
		return Quote{}, ErrNotFound
	}

	var it quoteItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return Quote{}, fmt.Errorf("unmarshal quote item: %w", err)
	}
	return fromQuoteItem(it)
}

// List scans the whole table; quote volumes are small enough that sorting
// and filtering happen client side.
func (r *DynamoRepository) List(ctx context.Context, query string) ([]ListItem, error) {
	items := make([]ListItem, 0)
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.ddb.Scan(ctx, &dynamodb.ScanInput{
			TableName:            aws.String(r.tableName),
			ExclusiveStartKey:    startKey,
			ProjectionExpression: aws.String("#id, created_at, title, notes, ratecard_version, #total"),
			ExpressionAttributeNames: map[string]string{
				"#id":    "id",
				"#total": "total",
			},
		})
		if err != nil {
			return nil, fmt.Errorf("scan quotes: %w", err)
		}

		var page []quoteItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal quote items: %w", err)
		}
		for _, it := range page {
			if !matches(it.Title, it.Notes, query) {
				continue
			}
			createdAt, err := parseTime(it.CreatedAt)
			if err != nil {
				return nil, fmt.Errorf("parse quote created_at %q: %w", it.CreatedAt, err)
			}
			items = append(items, ListItem{
				ID:              it.ID,
				CreatedAt:       createdAt,
				Title:           it.Title,
				RateCardVersion: it.RateCardVersion,
				Total:           it.Total,
			})
		}

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID > items[j].ID
	})
	return items, nil
}

func toQuoteItem(q Quote) (quoteItem, error) {
	inputJSON, err := json.Marshal(q.Input)
	if err != nil {
		return quoteItem{}, fmt.Errorf("encode quote input: %w", err)
	}
	breakdownJSON, err := json.Marshal(q.Breakdown)
	if err != nil {
		return quoteItem{}, fmt.Errorf("encode quote breakdown: %w", err)
	}
	return quoteItem{
		ID:              q.ID,
		CreatedAt:       formatTime(q.CreatedAt),
		Title:           q.Title,
		Notes:           q.Notes,
		RateCardVersion: q.Breakdown.RateCardVersion,
		Total:           q.Breakdown.Total,
		InputJSON:       string(inputJSON),
		BreakdownJSON:   string(breakdownJSON),
	}, nil
}

func fromQuoteItem(it quoteItem) (Quote, error) {
	createdAt, err := parseTime(it.CreatedAt)
	if err != nil {
		return Quote{}, fmt.Errorf("parse quote created_at %q: %w", it.CreatedAt, err)
	}
	q := Quote{
		ID:        it.ID,
		CreatedAt: createdAt,
		Title:     it.Title,
		Notes:     it.Notes,
	}
	if err := json.Unmarshal([]byte(it.InputJSON), &q.Input); err != nil {
		return Quote{}, fmt.Errorf("decode quote input: %w", err)
	}
	if err := json.Unmarshal([]byte(it.BreakdownJSON), &q.Breakdown); err != nil {
		return Quote{}, fmt.Errorf("decode quote breakdown: %w", err)
	}
	return q, nil
}
