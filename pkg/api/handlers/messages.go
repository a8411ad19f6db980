package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"careline/pkg/auth"
	"careline/pkg/messages"
	"careline/pkg/models"
	"careline/pkg/utils"
)

// MessageHandlers exposes the thread-scoped message endpoints.
type MessageHandlers struct {
	Svc *messages.Service
}

// Register registers message routes on the provided router.
func (h *MessageHandlers) Register(r *mux.Router) {
	r.HandleFunc("/threads/{threadID}/messages", h.getMessages).Methods(http.MethodGet)
	r.HandleFunc("/threads/{threadID}/messages", h.sendMessage).Methods(http.MethodPost)
	r.HandleFunc("/threads/{threadID}/messages/{id}", h.editMessage).Methods(http.MethodPut)
	r.HandleFunc("/threads/{threadID}/messages/{id}", h.deleteMessage).Methods(http.MethodDelete)
}

// sendRequest is the POST body. AttachmentData is a URL string for image
// and document kinds, or a {latitude, longitude} object for location.
type sendRequest struct {
	Content        string          `json:"content"`
	AttachmentType string          `json:"attachmentType,omitempty"`
	AttachmentData json.RawMessage `json:"attachmentData,omitempty"`
}

// attachmentFrom builds the attachment variant from the request fields.
// Nothing to attach (or a payload that doesn't decode) yields nil; kind
// checking happens in the message service.
func attachmentFrom(req sendRequest) *models.Attachment {
	if req.AttachmentType == "" || len(req.AttachmentData) == 0 {
		return nil
	}
	a := &models.Attachment{Kind: req.AttachmentType}
	switch req.AttachmentType {
	case models.AttachmentLocation:
		var loc models.GeoPoint
		if err := json.Unmarshal(req.AttachmentData, &loc); err != nil {
			return a
		}
		a.Location = &loc
	default:
		var url string
		if err := json.Unmarshal(req.AttachmentData, &url); err != nil {
			return a
		}
		if req.AttachmentType == models.AttachmentImage {
			a.ImageURL = url
		} else {
			a.DocumentURL = url
		}
	}
	return a
}

// getMessages handles GET /threads/{threadID}/messages. Fetching marks
// the other participant's messages read. 404 covers both a missing
// thread and a caller who isn't in it.
func (h *MessageHandlers) getMessages(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	if principal == "" {
		utils.JSONError(w, http.StatusUnauthorized, "principal required")
		return
	}
	threadID := mux.Vars(r)["threadID"]
	views, err := h.Svc.Get(threadID, principal)
	if err != nil {
		writeDomainError(w, err, "thread not found")
		return
	}
	if views == nil {
		views = []models.MessageView{}
	}
	_ = utils.JSONWrite(w, http.StatusOK, views)
}

// sendMessage handles POST /threads/{threadID}/messages.
func (h *MessageHandlers) sendMessage(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	if principal == "" {
		utils.JSONError(w, http.StatusUnauthorized, "principal required")
		return
	}
	threadID := mux.Vars(r)["threadID"]
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	view, err := h.Svc.Send(threadID, principal, req.Content, attachmentFrom(req))
	if err != nil {
		writeDomainError(w, err, "thread not found")
		return
	}
	_ = utils.JSONWrite(w, http.StatusCreated, view)
}

// editMessage handles PUT /threads/{threadID}/messages/{id}. A message
// that doesn't exist and a message the caller didn't send produce the
// same 404.
func (h *MessageHandlers) editMessage(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	if principal == "" {
		utils.JSONError(w, http.StatusUnauthorized, "principal required")
		return
	}
	vars := mux.Vars(r)
	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.Svc.Edit(vars["threadID"], vars["id"], principal, req.Content); err != nil {
		writeDomainError(w, err, "message not found")
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"message": "message updated"})
}

// deleteMessage handles DELETE /threads/{threadID}/messages/{id}.
func (h *MessageHandlers) deleteMessage(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	if principal == "" {
		utils.JSONError(w, http.StatusUnauthorized, "principal required")
		return
	}
	vars := mux.Vars(r)
	if err := h.Svc.Delete(vars["threadID"], vars["id"], principal); err != nil {
		writeDomainError(w, err, "message not found")
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"message": "message deleted"})
}
