package handler

import (
	"net/http"

	"github.com/phonefeed-api/internal/application/verification"
	"github.com/rs/zerolog/hlog"
)

var (
	requestOTPErrors = routeErrors{
		validation: "Phone number, FCM token, and device ID are required",
		internal:   "Failed to save phone number and send OTP",
	}
	verifyOTPErrors = routeErrors{
		validation:     "Phone number and OTP are required",
		notFound:       "Phone number not found",
		notFoundStatus: http.StatusBadRequest,
		internal:       "Failed to verify OTP",
	}
)

// PhoneHandler handles the OTP request and verification endpoints.
type PhoneHandler struct {
	svc verification.Service
}

func NewPhoneHandler(svc verification.Service) *PhoneHandler { return &PhoneHandler{svc: svc} }

// RequestOTP handles POST /api/phone.
func (h *PhoneHandler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req verification.RequestOTPRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, requestOTPErrors.validation)
		return
	}
	res, err := h.svc.RequestOTP(r.Context(), req)
	if err != nil {
		httpError(w, r, err, requestOTPErrors)
		return
	}

	env := PhoneEnvelope{Register: res.Register}
	switch res.Outcome {
	case verification.OutcomeAlreadyRegistered:
		env.Message = "User is already registered."
		env.PhoneNumber, env.DeviceID, env.FCMToken = res.PhoneNumber, res.DeviceID, res.FCMToken
	case verification.OutcomeResent:
		env.Message = "Phone number already exists but not verified, OTP resent."
		env.OTP = res.OTP
	default:
		env.Message = "Phone number saved, OTP sent."
		env.OTP = res.OTP
	}
	hlog.FromRequest(r).Info().Str("register", res.Register).Msg(env.Message)
	writeJSON(w, http.StatusOK, env)
}

// VerifyOTP handles POST /api/verify-otp.
func (h *PhoneHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verification.VerifyOTPRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, verifyOTPErrors.validation)
		return
	}
	res, err := h.svc.VerifyOTP(r.Context(), req)
	if err != nil {
		httpError(w, r, err, verifyOTPErrors)
		return
	}
	writeJSON(w, http.StatusOK, VerifyEnvelope{Message: "OTP verified, registration successful", Token: res.Token})
}
