package services

import (
	"context"
	"errors"
	"fmt"

	"matchfeed_server/models"
	"matchfeed_server/utils"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAccessStore keeps photo-access and connection requests in two tables
// keyed by (requesterId, targetId).
type DynamoAccessStore struct {
	Dynamo          *DynamoService
	PhotoTable      string
	ConnectionTable string
}

var _ AccessStore = (*DynamoAccessStore)(nil)

func (s *DynamoAccessStore) table(kind models.RequestKind) string {
	if kind == models.RequestKindConnection {
		return s.ConnectionTable
	}
	return s.PhotoTable
}

// BatchGetRequests fetches all existing requests among keys
func (s *DynamoAccessStore) BatchGetRequests(ctx context.Context, kind models.RequestKind, keys []RequestKey) ([]models.AccessRequest, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	seen := make(map[RequestKey]struct{}, len(keys))
	dynamoKeys := make([]map[string]types.AttributeValue, 0, len(keys))
	for _, k := range keys {
		// BatchGetItem rejects duplicate keys
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		dynamoKeys = append(dynamoKeys, utils.PairKey(k.RequesterID, k.TargetID))
	}

	items, err := s.Dynamo.BatchGetItems(ctx, s.table(kind), dynamoKeys)
	if err != nil {
		return nil, err
	}

	var requests []models.AccessRequest
	if err := attributevalue.UnmarshalListOfMaps(items, &requests); err != nil {
		return nil, fmt.Errorf("failed to unmarshal access requests: %w", err)
	}
	return requests, nil
}

// GetRequest retrieves one request
func (s *DynamoAccessStore) GetRequest(ctx context.Context, kind models.RequestKind, key RequestKey) (*models.AccessRequest, error) {
	var req models.AccessRequest
	if err := s.Dynamo.GetItem(ctx, s.table(kind), utils.PairKey(key.RequesterID, key.TargetID), &req); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

// CreateRequest writes a new request unless the ordered pair already has one
func (s *DynamoAccessStore) CreateRequest(ctx context.Context, kind models.RequestKind, req *models.AccessRequest) error {
	cond, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name("requesterId"))).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build request condition: %w", err)
	}

	if err := s.Dynamo.PutItem(ctx, s.table(kind), req, &cond); err != nil {
		if errors.Is(err, ErrConditionFailed) {
			return ErrRequestExists
		}
		return err
	}
	return nil
}

// UpdateRequestStatus sets the status of an existing request
func (s *DynamoAccessStore) UpdateRequestStatus(ctx context.Context, kind models.RequestKind, key RequestKey, status, updatedAt string) (*models.AccessRequest, error) {
	update := expression.Set(expression.Name("status"), expression.Value(status)).
		Set(expression.Name("lastUpdated"), expression.Value(updatedAt))
	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.AttributeExists(expression.Name("requesterId"))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build status update: %w", err)
	}

	var updated models.AccessRequest
	if err := s.Dynamo.UpdateItem(ctx, s.table(kind), utils.PairKey(key.RequesterID, key.TargetID), expr, &updated); err != nil {
		if errors.Is(err, ErrConditionFailed) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return &updated, nil
}
