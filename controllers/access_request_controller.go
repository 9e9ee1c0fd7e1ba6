package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"matchfeed_server/models"
	"matchfeed_server/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// AccessRequestController handles photo-access and connection requests.
// Kind selects which table the routes operate on.
type AccessRequestController struct {
	Requests *services.AccessRequestService
	Kind     models.RequestKind
	Logger   *zap.Logger
}

// CreateRequest opens a pending request from the viewer to targetId
func (c *AccessRequestController) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		TargetID string `json:"targetId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if payload.TargetID == "" {
		writeError(w, http.StatusBadRequest, "Missing targetId")
		return
	}

	req, err := c.Requests.Create(r.Context(), c.Kind, ViewerID(r.Context()), payload.TargetID)
	if err != nil {
		c.writeRequestError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "data": req})
}

// RespondToRequest lets the viewer answer a request they received
func (c *AccessRequestController) RespondToRequest(w http.ResponseWriter, r *http.Request) {
	requesterID := mux.Vars(r)["requesterId"]
	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	req, err := c.Requests.Respond(r.Context(), c.Kind, ViewerID(r.Context()), requesterID, payload.Status)
	if err != nil {
		c.writeRequestError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": req})
}

func (c *AccessRequestController) writeRequestError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrSelfRequest), errors.Is(err, services.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrProfileNotFound):
		writeError(w, http.StatusNotFound, "Target profile not found")
	case errors.Is(err, services.ErrRequestNotFound):
		writeError(w, http.StatusNotFound, "Request not found")
	case errors.Is(err, services.ErrRequestExists):
		writeError(w, http.StatusConflict, "Request already exists")
	default:
		c.Logger.Error("❌ Failed to process access request",
			zap.String("kind", string(c.Kind)),
			zap.String("viewer", ViewerID(r.Context())),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to process request")
	}
}
