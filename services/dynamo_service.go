package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// BatchGetItem accepts at most 100 keys per call
const maxBatchGetKeys = 100

// maxUnprocessedRetries bounds re-submission of throttled batch keys
const maxUnprocessedRetries = 5

var (
	ErrItemNotFound    = errors.New("item not found")
	ErrConditionFailed = errors.New("conditional check failed")
)

// DynamoAPI is the subset of *dynamodb.Client used by DynamoService
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	BatchGetItem(ctx context.Context, params *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error)
}

type DynamoService struct {
	Client DynamoAPI
	Logger *zap.Logger
}

// NewDynamoService creates a DynamoService from an AWS config
func NewDynamoService(cfg aws.Config, logger *zap.Logger) *DynamoService {
	return &DynamoService{Client: dynamodb.NewFromConfig(cfg), Logger: logger}
}

// GetItem retrieves an item and unmarshals it into out
func (ds *DynamoService) GetItem(ctx context.Context, tableName string, key map[string]types.AttributeValue, out interface{}) error {
	output, err := ds.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(tableName),
		Key:       key,
	})
	if err != nil {
		return fmt.Errorf("failed to get item from table '%s': %w", tableName, err)
	}
	if output.Item == nil {
		return ErrItemNotFound
	}
	if err := attributevalue.UnmarshalMap(output.Item, out); err != nil {
		return fmt.Errorf("failed to unmarshal item from table '%s': %w", tableName, err)
	}
	return nil
}

// PutItem marshals and writes an item. A non-empty condition is attached as
// a ConditionExpression and its failure is reported as ErrConditionFailed.
func (ds *DynamoService) PutItem(ctx context.Context, tableName string, item interface{}, condition *expression.Expression) error {
	marshaledItem, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(tableName),
		Item:      marshaledItem,
	}
	if condition != nil {
		input.ConditionExpression = condition.Condition()
		input.ExpressionAttributeNames = condition.Names()
		input.ExpressionAttributeValues = condition.Values()
	}

	if _, err = ds.Client.PutItem(ctx, input); err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrConditionFailed
		}
		return fmt.Errorf("failed to put item in table '%s': %w", tableName, err)
	}
	return nil
}

// UpdateItem applies an update expression and unmarshals the new item into out
func (ds *DynamoService) UpdateItem(ctx context.Context, tableName string, key map[string]types.AttributeValue, expr expression.Expression, out interface{}) error {
	if len(key) == 0 {
		return errors.New("update failed: key cannot be empty")
	}

	input := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(tableName),
		Key:                       key,
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	}

	output, err := ds.Client.UpdateItem(ctx, input)
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrConditionFailed
		}
		return fmt.Errorf("failed to update item in table '%s': %w", tableName, err)
	}
	if out == nil || output.Attributes == nil {
		return nil
	}
	if err := attributevalue.UnmarshalMap(output.Attributes, out); err != nil {
		return fmt.Errorf("failed to unmarshal updated item: %w", err)
	}
	return nil
}

// QueryItemsWithQueryInput runs a single Query page
func (ds *DynamoService) QueryItemsWithQueryInput(ctx context.Context, input *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
	output, err := ds.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query DynamoDB: %w", err)
	}
	return output, nil
}

// BatchGetItems fetches all keys from one table, 100 keys per round trip,
// re-submitting unprocessed keys a bounded number of times.
func (ds *DynamoService) BatchGetItems(ctx context.Context, tableName string, keys []map[string]types.AttributeValue) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue

	for start := 0; start < len(keys); start += maxBatchGetKeys {
		end := min(start+maxBatchGetKeys, len(keys))

		pending := map[string]types.KeysAndAttributes{
			tableName: {Keys: keys[start:end]},
		}
		for attempt := 0; len(pending) > 0; attempt++ {
			if attempt > maxUnprocessedRetries {
				return nil, fmt.Errorf("batch get on table '%s': unprocessed keys remain after %d attempts", tableName, attempt)
			}
			output, err := ds.Client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{RequestItems: pending})
			if err != nil {
				return nil, fmt.Errorf("failed to batch get items from table '%s': %w", tableName, err)
			}
			items = append(items, output.Responses[tableName]...)
			pending = output.UnprocessedKeys
			if len(pending) > 0 && ds.Logger != nil {
				ds.Logger.Warn("⚠️ Batch get returned unprocessed keys",
					zap.String("table", tableName),
					zap.Int("attempt", attempt+1))
			}
		}
	}

	return items, nil
}
