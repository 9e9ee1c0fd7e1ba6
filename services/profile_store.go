package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"matchfeed_server/models"
	"matchfeed_server/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"
)

// candidateQueryPageSize is the DynamoDB page size used while filling a batch.
// Filters run after Limit, so pages are larger than the fetch size.
const candidateQueryPageSize = 50

// DynamoProfileStore keeps profiles in DynamoDB. Candidate queries run on a
// GSI partitioned by status and sorted by id, projected with ALL attributes.
type DynamoProfileStore struct {
	Dynamo      *DynamoService
	Table       string
	StatusIndex string
}

var _ ProfileStore = (*DynamoProfileStore)(nil)

// GetProfile retrieves a profile by ID
func (s *DynamoProfileStore) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	if err := s.Dynamo.GetItem(ctx, s.Table, utils.IDKey(id), &profile); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// PutProfile creates or replaces a profile, assigning a time-ordered ID to new ones
func (s *DynamoProfileStore) PutProfile(ctx context.Context, profile *models.Profile) error {
	if err := prepareProfile(profile); err != nil {
		return err
	}
	return s.Dynamo.PutItem(ctx, s.Table, profile, nil)
}

// UpdatePhotos replaces the photo list of an existing profile
func (s *DynamoProfileStore) UpdatePhotos(ctx context.Context, id string, photos []models.Photo) error {
	update := expression.Set(expression.Name("photos"), expression.Value(photos)).
		Set(expression.Name("hasPhotos"), expression.Value(len(photos) > 0))
	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.AttributeExists(expression.Name("id"))).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build photo update: %w", err)
	}

	if err := s.Dynamo.UpdateItem(ctx, s.Table, utils.IDKey(id), expr, nil); err != nil {
		if errors.Is(err, ErrConditionFailed) {
			return ErrProfileNotFound
		}
		return err
	}
	return nil
}

// QueryCandidates walks the status index newest-first until q.Limit eligible
// profiles are collected or the index is exhausted.
func (s *DynamoProfileStore) QueryCandidates(ctx context.Context, q CandidateQuery) ([]models.Profile, error) {
	if q.Limit <= 0 {
		return nil, nil
	}

	expr, err := buildCandidateExpression(q)
	if err != nil {
		return nil, fmt.Errorf("failed to build candidate query: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.Table),
		IndexName:                 aws.String(s.StatusIndex),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
		Limit:                     aws.Int32(candidateQueryPageSize),
	}

	candidates := make([]models.Profile, 0, q.Limit)
	for {
		output, err := s.Dynamo.QueryItemsWithQueryInput(ctx, input)
		if err != nil {
			return nil, err
		}

		for _, item := range output.Items {
			// Key attributes of the index cannot appear in a filter expression
			if q.Excludes(utils.ExtractString(item, "id")) {
				continue
			}
			var profile models.Profile
			if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
				return nil, fmt.Errorf("failed to unmarshal candidate: %w", err)
			}
			candidates = append(candidates, profile)
			if len(candidates) == q.Limit {
				return candidates, nil
			}
		}

		if len(output.LastEvaluatedKey) == 0 {
			return candidates, nil
		}
		input.ExclusiveStartKey = output.LastEvaluatedKey
	}
}

func buildCandidateExpression(q CandidateQuery) (expression.Expression, error) {
	keyCond := expression.Key("status").Equal(expression.Value(models.ProfileStatusActive))
	if q.Cursor != "" {
		keyCond = keyCond.And(expression.Key("id").LessThan(expression.Value(q.Cursor)))
	}

	return expression.NewBuilder().
		WithKeyCondition(keyCond).
		WithFilter(buildCandidateFilter(q)).
		Build()
}

// buildCandidateFilter translates base eligibility and compiled preferences
// into one conjunctive filter.
func buildCandidateFilter(q CandidateQuery) expression.ConditionBuilder {
	filter := expression.Name("isComplete").Equal(expression.Value(true)).And(
		expression.Name("hasPhotos").Equal(expression.Value(true)),
		expression.Or(
			expression.AttributeNotExists(expression.Name("role")),
			expression.Name("role").NotEqual(expression.Value(models.RoleFranchise)),
		),
		expression.Not(expression.Name("blocked").Contains(q.ViewerID)),
	)

	prefs := q.Preferences
	switch {
	case prefs.DOBFrom != "" && prefs.DOBTo != "":
		filter = filter.And(expression.Name("dob").Between(expression.Value(prefs.DOBFrom), expression.Value(prefs.DOBTo)))
	case prefs.DOBFrom != "":
		filter = filter.And(expression.Name("dob").GreaterThanEqual(expression.Value(prefs.DOBFrom)))
	case prefs.DOBTo != "":
		filter = filter.And(expression.Name("dob").LessThanEqual(expression.Value(prefs.DOBTo)))
	}

	for _, e := range prefs.Exact {
		filter = filter.And(expression.Name(e.Field).Equal(expression.Value(e.Value)))
	}

	for _, c := range prefs.Contains {
		filter = filter.And(anyContains(c))
	}
	return filter
}

// anyContains ORs a substring check over every field of the constraint
func anyContains(c ContainsConstraint) expression.ConditionBuilder {
	first := expression.Name(c.Fields[0]).Contains(c.Value)
	if len(c.Fields) == 1 {
		return first
	}
	rest := make([]expression.ConditionBuilder, 0, len(c.Fields)-2)
	for _, f := range c.Fields[2:] {
		rest = append(rest, expression.Name(f).Contains(c.Value))
	}
	return expression.Or(first, expression.Name(c.Fields[1]).Contains(c.Value), rest...)
}

// prepareProfile fills server-owned fields before a write
func prepareProfile(profile *models.Profile) error {
	if profile.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate profile id: %w", err)
		}
		profile.ID = id.String()
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now().UTC()
	}
	if profile.Status == "" {
		profile.Status = models.ProfileStatusActive
	}
	profile.RefreshSearchFields()
	return nil
}
