package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"careline/pkg/auth"
	"careline/pkg/errs"
	"careline/pkg/threads"
	"careline/pkg/utils"
)

// ThreadHandlers exposes the thread-level HTTP endpoints.
type ThreadHandlers struct {
	Svc *threads.Service
}

// Register registers all thread-related HTTP routes to the provided router.
func (h *ThreadHandlers) Register(r *mux.Router) {
	r.HandleFunc("/threads", h.listThreads).Methods(http.MethodGet)
	r.HandleFunc("/threads", h.findOrCreateThread).Methods(http.MethodPost)
}

// listThreads handles GET /threads: every thread the caller participates
// in, most recently active first, with the other participant resolved and
// the caller's unread count per thread.
func (h *ThreadHandlers) listThreads(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	if principal == "" {
		utils.JSONError(w, http.StatusUnauthorized, "principal required")
		return
	}
	sums, err := h.Svc.List(principal)
	if err != nil {
		writeDomainError(w, err, "thread not found")
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, sums)
}

// findOrCreateThread handles POST /threads. The body names the other
// participant; an existing thread for the pair answers 200 with its id,
// a fresh one answers 201. An unresolvable participant is a 404.
func (h *ThreadHandlers) findOrCreateThread(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	if principal == "" {
		utils.JSONError(w, http.StatusUnauthorized, "principal required")
		return
	}
	var req struct {
		ParticipantID string `json:"participantId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	id, created, err := h.Svc.FindOrCreate(principal, req.ParticipantID)
	if err != nil {
		// the client contract maps a bad participant to 404, not 400
		if errors.Is(err, errs.ErrInvalidArgument) {
			utils.JSONError(w, http.StatusNotFound, "participant not found")
			return
		}
		writeDomainError(w, err, "participant not found")
		return
	}
	if !created {
		_ = utils.JSONWrite(w, http.StatusOK, map[string]string{
			"message":  "thread already exists",
			"threadId": id,
		})
		return
	}
	_ = utils.JSONWrite(w, http.StatusCreated, map[string]string{
		"message":  "thread created",
		"threadId": id,
	})
}
