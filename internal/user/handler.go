package user

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ptec-dev/audit-management/internal"
	"github.com/ptec-dev/audit-management/internal/transport"
	"github.com/ptec-dev/audit-management/pkg/logger"
)

type ServiceAPI interface {
	GetByUserCode(userCode string) (*Profile, error)
	ValidateResetToken(token string) error
	ResetPassword(token, newPassword string) error
}

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

// GetCurrentUser handles GET /users/me
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := internal.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	profile, err := h.Service.GetByUserCode(identity.UserCode)
	if err != nil {
		if appErr, isApp := internal.IsAppError(err); isApp {
			h.WriteError(w, appErr.StatusCode, appErr.Message)
			return
		}
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    profile,
	})
}

func (h *Handler) ValidateResetToken(w http.ResponseWriter, r *http.Request) {
	var dto ValidateResetTokenDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Service.ValidateResetToken(dto.Token); err != nil {
		h.writeResetError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"valid":   true,
	})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var dto ResetPasswordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Service.ResetPassword(dto.Token, dto.NewPassword); err != nil {
		h.writeResetError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Password reset successfully",
	})
}

func (h *Handler) writeResetError(w http.ResponseWriter, err error) {
	h.Logger.Warn("reset flow error", "error", err)

	if appErr, ok := internal.IsAppError(err); ok {
		h.WriteJSON(w, appErr.StatusCode, map[string]interface{}{
			"success": false,
			"error":   appErr.Code,
			"message": appErr.Message,
		})
		return
	}
	h.WriteError(w, http.StatusInternalServerError, "internal server error")
}
