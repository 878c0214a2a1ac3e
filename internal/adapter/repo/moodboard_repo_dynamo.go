package repo

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsmiddleware "github.com/aws/aws-sdk-go-v2/aws/middleware"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"adstudio/internal/domain"
)

// DefaultMoodboardIndex is the GSI keyed on moodboard_id.
const DefaultMoodboardIndex = "moodboard_id-index"

// DynamoAPI is the subset of the DynamoDB client the repository uses.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// MoodboardRepositoryDynamo keeps moodboard history in a DynamoDB table.
type MoodboardRepositoryDynamo struct {
	client DynamoAPI
	table  string
	index  string
}

func NewMoodboardRepositoryDynamo(client DynamoAPI, table, index string) *MoodboardRepositoryDynamo {
	if index == "" {
		index = DefaultMoodboardIndex
	}
	return &MoodboardRepositoryDynamo{client: client, table: table, index: index}
}

func (r *MoodboardRepositoryDynamo) Put(ctx context.Context, asset domain.GeneratedAsset) error {
	item, err := attributevalue.MarshalMap(asset)
	if err != nil {
		return fmt.Errorf("repo: marshal moodboard image: %w: %w", domain.ErrPersistence, err)
	}
	out, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("repo: put moodboard image: %w: %w", domain.ErrPersistence, err)
	}
	if raw, ok := awsmiddleware.GetRawResponse(out.ResultMetadata).(*smithyhttp.Response); ok && raw.StatusCode != http.StatusOK {
		return fmt.Errorf("repo: put moodboard image returned status %d: %w", raw.StatusCode, domain.ErrPersistence)
	}
	return nil
}

func (r *MoodboardRepositoryDynamo) ListByMoodboard(ctx context.Context, moodboardID string) ([]domain.GeneratedAsset, error) {
	paginator := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		IndexName:              aws.String(r.index),
		KeyConditionExpression: aws.String("moodboard_id = :m"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":m": &types.AttributeValueMemberS{Value: moodboardID},
		},
	})

	assets := []domain.GeneratedAsset{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("repo: query moodboard %s: %w", moodboardID, err)
		}
		var batch []domain.GeneratedAsset
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("repo: decode moodboard %s: %w", moodboardID, err)
		}
		assets = append(assets, batch...)
	}
	return assets, nil
}

var _ domain.MoodboardRepository = (*MoodboardRepositoryDynamo)(nil)
