package menu

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/ptec-dev/audit-management/internal"
	"github.com/ptec-dev/audit-management/internal/transport"
	"github.com/ptec-dev/audit-management/pkg/logger"
)

type ServiceAPI interface {
	GetAllMenus() ([]MenuResponse, error)
	GetMenusForRole(roleID int64) ([]MenuResponse, error)
	GetMenuTreeForRole(roleID int64) ([]MenuResponse, error)
	CheckPermission(roleID int64, path string) (*CheckPermissionResponse, error)
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

func (h *Handler) GetAllMenus(w http.ResponseWriter, r *http.Request) {
	menus, err := h.Service.GetAllMenus()
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "failed to load menus")
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    menus,
	})
}

func (h *Handler) GetMenusByRole(w http.ResponseWriter, r *http.Request) {
	roleID, err := strconv.ParseInt(chi.URLParam(r, "roleId"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid role id")
		return
	}

	menus, err := h.Service.GetMenusForRole(roleID)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "failed to load menus")
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    menus,
	})
}

func (h *Handler) GetMenuTreeByRole(w http.ResponseWriter, r *http.Request) {
	roleID, err := strconv.ParseInt(chi.URLParam(r, "roleId"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid role id")
		return
	}

	tree, err := h.Service.GetMenuTreeForRole(roleID)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "failed to load menu tree")
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    tree,
	})
}

// GetMyMenus resolves the tree for the caller's own role, taken from the
// identity the authorization gate attached.
func (h *Handler) GetMyMenus(w http.ResponseWriter, r *http.Request) {
	identity, ok := internal.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "no identity in request")
		return
	}

	tree, err := h.Service.GetMenuTreeForRole(identity.RoleID)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "failed to load menu tree")
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    tree,
	})
}

func (h *Handler) CheckPermission(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		h.WriteError(w, http.StatusBadRequest, "path query parameter is required")
		return
	}

	identity, ok := internal.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "no identity in request")
		return
	}

	result, err := h.Service.CheckPermission(identity.RoleID, path)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "failed to check permission")
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    result,
	})
}
