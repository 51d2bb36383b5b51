package dynamo

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/phonefeed-api/internal/domain"
)

// PostRepo provides typed DynamoDB operations for the posts collection.
// Mutations are conditional on the owner, so the ownership check and the
// write cannot be split by a concurrent delete.
type PostRepo struct {
	client    API
	tableName string
}

func NewPostRepo(client API, tableName string) *PostRepo {
	return &PostRepo{client: client, tableName: tableName}
}

func (r *PostRepo) Put(ctx context.Context, p *domain.Post) error {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal post: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *PostRepo) Get(ctx context.Context, postID string) (*domain.Post, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldPostID, postID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("post not found: %w", domain.ErrNotFound)
	}
	var p domain.Post
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// List scans every page; post ids are ULIDs so sorting by id gives creation order.
func (r *PostRepo) List(ctx context.Context) ([]domain.Post, error) {
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{TableName: aws.String(r.tableName)})
	var posts []domain.Post
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var page []domain.Post
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		posts = append(posts, page...)
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].PostID < posts[j].PostID })
	return posts, nil
}

// ListByPhone queries the phone_number-created_at GSI, oldest first.
func (r *PostRepo) ListByPhone(ctx context.Context, phoneNumber string) ([]domain.Post, error) {
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                aws.String(r.tableName),
		IndexName:                aws.String(indexPostsByPhone),
		KeyConditionExpression:   aws.String("#p = :p"),
		ExpressionAttributeNames: map[string]string{"#p": fieldPhoneNumber},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":p": &types.AttributeValueMemberS{Value: phoneNumber},
		},
		ScanIndexForward: aws.Bool(true),
	})
	var posts []domain.Post
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var page []domain.Post
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		posts = append(posts, page...)
	}
	return posts, nil
}

// UpdateContent overwrites caption and image_url when the post still exists and
// is owned by owner. Returns domain.ErrConflict otherwise.
func (r *PostRepo) UpdateContent(ctx context.Context, postID, owner, caption, imageURL string) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldCaption:  caption,
		fieldImageURL: imageURL,
	})
	if err != nil {
		return err
	}
	ue.condition(
		map[string]string{"#c0": fieldPostID, "#c1": fieldPhoneNumber},
		map[string]types.AttributeValue{":c1": &types.AttributeValueMemberS{Value: owner}},
	)
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldPostID, postID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#c0) AND #c1 = :c1"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("post changed: %w", domain.ErrConflict)
	}
	return err
}

// Delete removes the post when it still exists and is owned by owner.
// Returns domain.ErrConflict otherwise.
func (r *PostRepo) Delete(ctx context.Context, postID, owner string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      strKey(fieldPostID, postID),
		ConditionExpression:      aws.String("attribute_exists(#c0) AND #c1 = :c1"),
		ExpressionAttributeNames: map[string]string{"#c0": fieldPostID, "#c1": fieldPhoneNumber},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c1": &types.AttributeValueMemberS{Value: owner},
		},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("post changed: %w", domain.ErrConflict)
	}
	return err
}
