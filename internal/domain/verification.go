package domain

import "time"

// Registration flag values stored on a PhoneVerification.
const (
	RegisteredYes = "y"
	RegisteredNo  = "n"
)

// PhoneVerification tracks the OTP handshake for one phone number.
// PK: phone_number, so at most one record exists per phone.
type PhoneVerification struct {
	PhoneNumber string    `json:"phoneNumber" dynamodbav:"phone_number"`
	Key         string    `json:"key" dynamodbav:"key"`
	DeviceID    string    `json:"deviceId" dynamodbav:"device_id"`
	FCMToken    string    `json:"fcmToken" dynamodbav:"fcm_token"`
	OTP         string    `json:"-" dynamodbav:"otp"`
	Register    string    `json:"register" dynamodbav:"register"` // "y" | "n"
	CreatedAt   time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" dynamodbav:"updated_at"`
}

// IsRegistered reports whether the phone number completed verification.
func (v *PhoneVerification) IsRegistered() bool { return v.Register == RegisteredYes }
