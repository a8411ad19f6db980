package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"careline/pkg/auth"
	"careline/pkg/directory"
	"careline/pkg/logger"
	"careline/pkg/models"
	"careline/pkg/utils"
)

// PrincipalHandlers keeps the store-backed participant directory in sync
// with the platform's identity service. Only backend/admin callers may
// write.
type PrincipalHandlers struct{}

func (h *PrincipalHandlers) Register(r *mux.Router) {
	r.HandleFunc("/principals", h.upsertPrincipal).Methods(http.MethodPost)
}

func (h *PrincipalHandlers) upsertPrincipal(w http.ResponseWriter, r *http.Request) {
	role := auth.RoleFromContext(r.Context())
	if role != "backend" && role != "admin" {
		utils.JSONError(w, http.StatusForbidden, "backend role required")
		return
	}
	var id models.Identity
	if err := json.NewDecoder(r.Body).Decode(&id); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if id.ID == "" || id.Name == "" {
		utils.JSONError(w, http.StatusBadRequest, "id and name are required")
		return
	}
	if err := directory.Seed([]models.Identity{id}); err != nil {
		logger.Error("principal_upsert_failed", "principal", id.ID, "error", err)
		utils.JSONError(w, http.StatusInternalServerError, "server error")
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, id)
}
