package domain

// PushNotification is a single device-targeted message.
type PushNotification struct {
	Token string `json:"token"`
	Title string `json:"title"`
	Body  string `json:"body"`
}
