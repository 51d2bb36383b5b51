package dynamo

// DynamoDB attribute and index names shared by the repos and Bootstrap.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldPhoneNumber = "phone_number"
	fieldProfileID   = "profile_id"
	fieldPostID      = "post_id"
	fieldDeviceID    = "device_id"
	fieldFCMToken    = "fcm_token"
	fieldOTP         = "otp"
	fieldRegister    = "register"
	fieldCaption     = "caption"
	fieldImageURL    = "image_url"
	fieldCreatedAt   = "created_at"
	fieldUpdatedAt   = "updated_at"

	indexProfilesByPhone = "phone_number-index"
	indexPostsByPhone    = "phone_number-created_at-index"
)
