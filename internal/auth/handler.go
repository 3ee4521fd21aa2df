package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	internalErrors "github.com/ptec-dev/audit-management/internal"
	"github.com/ptec-dev/audit-management/internal/transport"
	"github.com/ptec-dev/audit-management/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// Login proxies the password check to the portal and reshapes the outcome.
// The MFA branch intentionally issues no session: the client only gets one
// after verify-otp succeeds.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.Service.VerifyPassword(r.Context(), dto.LoginName, dto.Password)
	if err != nil {
		h.writeAuthError(w, err, "Login failed")
		return
	}

	if result.MfaRequired {
		h.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"success":     true,
			"request_Mfa": true,
			"userCode":    result.UserCode,
			"message":     result.Message,
			"expiresAt":   result.ExpiresAt,
		})
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"access_token":  result.AccessToken,
		"session_token": result.SessionToken,
		"user":          result.User,
		"message":       result.Message,
	})
}

func (h *Handler) VerifyOtp(w http.ResponseWriter, r *http.Request) {
	var dto VerifyOtpDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.Service.VerifyOtp(r.Context(), dto.UserCode, dto.OtpCode, dto.TrustDevice)
	if err != nil {
		h.writeAuthError(w, err, "OTP verification failed")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"access_token":  result.AccessToken,
		"session_token": result.SessionToken,
		"user":          result.User,
		"message":       result.Message,
	})
}

func (h *Handler) ResendOtp(w http.ResponseWriter, r *http.Request) {
	var dto ResendOtpDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.Service.ResendOtp(r.Context(), dto.UserCode)
	if err != nil {
		h.writeAuthError(w, err, "Failed to resend OTP")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"message":   result.Message,
		"expiresAt": result.ExpiresAt,
	})
}

func (h *Handler) SendOtp(w http.ResponseWriter, r *http.Request) {
	var dto SendOtpDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.Service.SendOtp(r.Context(), dto.Email)
	if err != nil {
		h.writeAuthError(w, err, "Failed to send OTP")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"ok":        true,
		"message":   result.Message,
		"expiresAt": result.ExpiresAt,
	})
}

// RefreshSession runs the refresh coordinator against the presented session
// credential. A dead session comes back 401 SESSION_EXPIRED so the client
// redirects to login with the reason preserved.
func (h *Handler) RefreshSession(w http.ResponseWriter, r *http.Request) {
	var dto RefreshSessionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	encoded, session, err := h.Service.RefreshSession(r.Context(), dto.SessionToken)
	if err != nil {
		h.writeAuthError(w, err, "Session refresh failed")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"session_token": encoded,
		"user":          session.Claims,
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := h.ExtractTokenFromHeader(r)
	if token == "" {
		var dto RefreshSessionDTO
		_ = json.NewDecoder(r.Body).Decode(&dto)
		token = dto.SessionToken
	}

	if err := h.Service.Logout(r.Context(), token); err != nil {
		h.Logger.Warn("logout cleanup failed", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeAuthError maps service errors onto the response contract: AppError
// carries its own status and code; anything else is a 500.
func (h *Handler) writeAuthError(w http.ResponseWriter, err error, logMsg string) {
	h.Logger.Error(logMsg, "error", err)

	if appErr, ok := internalErrors.IsAppError(err); ok {
		h.WriteJSON(w, appErr.StatusCode, map[string]interface{}{
			"success": false,
			"error":   appErr.Code,
			"message": appErr.Message,
		})
		return
	}
	if _, ok := err.(ValidationError); ok {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.WriteError(w, http.StatusInternalServerError, "internal server error")
}
