package domain

// TimestampLayout renders createdAt as ISO-8601 UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Post is a feed entry owned by the phone number that created it.
// CreatedAt is kept as its ISO-8601 string so it sorts lexicographically in the GSI.
type Post struct {
	PostID      string `json:"id" dynamodbav:"post_id"`
	PhoneNumber string `json:"phoneNumber" dynamodbav:"phone_number"`
	Caption     string `json:"caption" dynamodbav:"caption"`
	ImageURL    string `json:"imageUrl" dynamodbav:"image_url"`
	CreatedAt   string `json:"createdAt" dynamodbav:"created_at"`
}

type CreatePostRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	Caption     string `json:"caption" validate:"required"`
	ImageURL    string `json:"imageUrl" validate:"required"`
}

type EditPostRequest struct {
	UserID   string `json:"userId" validate:"required"`
	ImageURL string `json:"imageUrl" validate:"required"`
	Caption  string `json:"caption" validate:"required"`
}

type DeletePostRequest struct {
	UserID string `json:"userId"`
}
