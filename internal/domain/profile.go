package domain

import "time"

// UserProfile is a write-once profile blob keyed by a generated id.
type UserProfile struct {
	ProfileID   string    `json:"id" dynamodbav:"profile_id"`
	Name        string    `json:"name" dynamodbav:"name"`
	PhoneNumber string    `json:"phoneNumber" dynamodbav:"phone_number"`
	Email       string    `json:"email" dynamodbav:"email"`
	ProfilePic  string    `json:"profilePic" dynamodbav:"profile_pic"`
	CreatedAt   time.Time `json:"-" dynamodbav:"created_at"`
}

type CreateProfileRequest struct {
	Name        string `json:"name" validate:"required"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	Email       string `json:"email" validate:"required"`
	ProfilePic  string `json:"profilePic" validate:"required"`
}
