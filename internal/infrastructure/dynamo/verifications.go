package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/phonefeed-api/internal/domain"
)

// PhoneVerificationRepo manages the phoneNumbers collection.
// PK: phone_number. Every write is conditional so the find-or-create and
// verify paths stay correct under concurrent requests for the same phone.
type PhoneVerificationRepo struct {
	client    API
	tableName string
}

func NewPhoneVerificationRepo(client API, tableName string) *PhoneVerificationRepo {
	return &PhoneVerificationRepo{client: client, tableName: tableName}
}

// Get performs a strongly consistent read so a following conditional write sees fresh state.
func (r *PhoneVerificationRepo) Get(ctx context.Context, phoneNumber string) (*domain.PhoneVerification, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldPhoneNumber, phoneNumber),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("phone verification not found: %w", domain.ErrNotFound)
	}
	var v domain.PhoneVerification
	if err := attributevalue.UnmarshalMap(out.Item, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Create inserts v unless a record for the phone number already exists,
// in which case it returns domain.ErrConflict.
func (r *PhoneVerificationRepo) Create(ctx context.Context, v *domain.PhoneVerification) error {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return fmt.Errorf("marshal phone verification: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#c0)"),
		ExpressionAttributeNames: map[string]string{"#c0": fieldPhoneNumber},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("phone verification exists: %w", domain.ErrConflict)
	}
	return err
}

// UpdateChallenge overwrites the OTP and device fields of an unregistered record.
// Returns domain.ErrConflict when the record is missing or already registered.
func (r *PhoneVerificationRepo) UpdateChallenge(ctx context.Context, phoneNumber, otp, deviceID, fcmToken string) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldOTP:       otp,
		fieldDeviceID:  deviceID,
		fieldFCMToken:  fcmToken,
		fieldUpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	ue.condition(
		map[string]string{"#c0": fieldPhoneNumber, "#c1": fieldRegister},
		map[string]types.AttributeValue{":c1": &types.AttributeValueMemberS{Value: domain.RegisteredNo}},
	)
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldPhoneNumber, phoneNumber),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#c0) AND #c1 = :c1"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("phone verification changed: %w", domain.ErrConflict)
	}
	return err
}

// MarkRegistered flips register to "y" only while the stored OTP still equals otp.
// Returns domain.ErrConflict when the OTP was replaced in the meantime.
func (r *PhoneVerificationRepo) MarkRegistered(ctx context.Context, phoneNumber, otp string) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldRegister:  domain.RegisteredYes,
		fieldUpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	ue.condition(
		map[string]string{"#c0": fieldPhoneNumber, "#c1": fieldOTP},
		map[string]types.AttributeValue{":c1": &types.AttributeValueMemberS{Value: otp}},
	)
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldPhoneNumber, phoneNumber),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#c0) AND #c1 = :c1"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("otp changed: %w", domain.ErrConflict)
	}
	return err
}
