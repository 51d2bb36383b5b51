package handler

import (
	"encoding/json"
	"net/http"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// PhoneEnvelope answers POST /api/phone. The otp is only present when one was issued;
// the stored device fields are only echoed for an already registered phone.
type PhoneEnvelope struct {
	Message     string `json:"message"`
	Register    string `json:"register"`
	OTP         string `json:"otp,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	DeviceID    string `json:"deviceId,omitempty"`
	FCMToken    string `json:"fcmToken,omitempty"`
}

type VerifyEnvelope struct {
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

type CreatedEnvelope struct {
	Message  string `json:"message"`
	ID       string `json:"id"`
	ImageURL string `json:"imageUrl,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}
