package records

import (
	"context"
	"fmt"
	"strconv"

	apperrors "dining-concierge/internal/common/errors"
	"dining-concierge/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDBAPI is the subset of the DynamoDB client used here.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// DynamoDBStore reads items keyed by BusinessID.
type DynamoDBStore struct {
	api   DynamoDBAPI
	table string
}

func NewDynamoDBStore(api DynamoDBAPI, table string) *DynamoDBStore {
	return &DynamoDBStore{api: api, table: table}
}

func (s *DynamoDBStore) GetByID(ctx context.Context, id string) (*models.Restaurant, error) {
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"BusinessID": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, apperrors.NewRecordStoreUnavailableError("get_item", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}

	r := &models.Restaurant{
		ID:      id,
		Name:    attrString(out.Item["Name"]),
		Address: attrString(out.Item["Address"]),
	}
	if r.Rating, err = attrFloat(out.Item["Rating"]); err != nil {
		return nil, apperrors.NewRecordStoreUnavailableError("decode", fmt.Errorf("Rating: %w", err))
	}
	reviews, err := attrFloat(out.Item["NumberOfReviews"])
	if err != nil {
		return nil, apperrors.NewRecordStoreUnavailableError("decode", fmt.Errorf("NumberOfReviews: %w", err))
	}
	r.ReviewCount = int(reviews)
	return r, nil
}

func attrString(av types.AttributeValue) string {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return v.Value
	case *types.AttributeValueMemberN:
		return v.Value
	default:
		return ""
	}
}

// attrFloat accepts numbers stored as N or as S; the ingestion scripts were
// not consistent about which.
func attrFloat(av types.AttributeValue) (float64, error) {
	raw := attrString(av)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}
