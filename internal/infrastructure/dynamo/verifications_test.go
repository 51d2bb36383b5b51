package dynamo

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/phonefeed-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func s(v string) types.AttributeValue { return &types.AttributeValueMemberS{Value: v} }

func TestPhoneVerificationRepo_Get_NotFound(t *testing.T) {
	api := &mockAPI{}
	api.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

	_, err := NewPhoneVerificationRepo(api, "phoneNumbers").Get(context.Background(), "+1555")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestPhoneVerificationRepo_Get_ConsistentReadByPhone(t *testing.T) {
	api := &mockAPI{}
	api.On("GetItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.GetItemInput) bool {
		key, _ := in.Key["phone_number"].(*types.AttributeValueMemberS)
		return *in.TableName == "phoneNumbers" && key != nil && key.Value == "+1555" && *in.ConsistentRead
	})).Return(&dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{
		"phone_number": s("+1555"),
		"key":          s("01HZX"),
		"device_id":    s("dev1"),
		"fcm_token":    s("tok1"),
		"otp":          s("4821"),
		"register":     s("n"),
	}}, nil)

	v, err := NewPhoneVerificationRepo(api, "phoneNumbers").Get(context.Background(), "+1555")
	require.NoError(t, err)
	assert.Equal(t, "4821", v.OTP)
	assert.Equal(t, "dev1", v.DeviceID)
	assert.False(t, v.IsRegistered())
	api.AssertExpectations(t)
}

func TestPhoneVerificationRepo_Create_ConditionFailed(t *testing.T) {
	api := &mockAPI{}
	api.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
		return *in.ConditionExpression == "attribute_not_exists(#c0)"
	})).Return(nil, &types.ConditionalCheckFailedException{})

	err := NewPhoneVerificationRepo(api, "phoneNumbers").Create(context.Background(), &domain.PhoneVerification{
		PhoneNumber: "+1555", Register: domain.RegisteredNo,
	})
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestPhoneVerificationRepo_Create_InfrastructureErrorPassesThrough(t *testing.T) {
	api := &mockAPI{}
	boom := errors.New("throttled")
	api.On("PutItem", mock.Anything, mock.Anything).Return(nil, boom)

	err := NewPhoneVerificationRepo(api, "phoneNumbers").Create(context.Background(), &domain.PhoneVerification{PhoneNumber: "+1555"})
	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, domain.ErrConflict))
}

func TestPhoneVerificationRepo_UpdateChallenge_RequiresUnregistered(t *testing.T) {
	api := &mockAPI{}
	api.On("UpdateItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.UpdateItemInput) bool {
		reg, _ := in.ExpressionAttributeValues[":c1"].(*types.AttributeValueMemberS)
		return *in.ConditionExpression == "attribute_exists(#c0) AND #c1 = :c1" &&
			in.ExpressionAttributeNames["#c1"] == "register" && reg != nil && reg.Value == "n"
	})).Return(&dynamodb.UpdateItemOutput{}, nil)

	err := NewPhoneVerificationRepo(api, "phoneNumbers").UpdateChallenge(context.Background(), "+1555", "1111", "dev2", "tok2")
	require.NoError(t, err)
	api.AssertExpectations(t)
}

func TestPhoneVerificationRepo_MarkRegistered_ConditionOnOTP(t *testing.T) {
	api := &mockAPI{}
	api.On("UpdateItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.UpdateItemInput) bool {
		otp, _ := in.ExpressionAttributeValues[":c1"].(*types.AttributeValueMemberS)
		return in.ExpressionAttributeNames["#c1"] == "otp" && otp != nil && otp.Value == "4821"
	})).Return(nil, &types.ConditionalCheckFailedException{})

	err := NewPhoneVerificationRepo(api, "phoneNumbers").MarkRegistered(context.Background(), "+1555", "4821")
	assert.True(t, errors.Is(err, domain.ErrConflict))
	api.AssertExpectations(t)
}
