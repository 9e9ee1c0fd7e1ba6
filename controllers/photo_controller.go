package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"matchfeed_server/services"

	"go.uber.org/zap"
)

// PhotoController handles the viewer's own photo list
type PhotoController struct {
	Photos *services.PhotoService
	Logger *zap.Logger
}

type photoPayload struct {
	StorageKey string `json:"storageKey"`
	IsProfile  bool   `json:"isProfile"`
}

func decodePhotoPayload(w http.ResponseWriter, r *http.Request) (photoPayload, bool) {
	var payload photoPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return payload, false
	}
	if payload.StorageKey == "" {
		writeError(w, http.StatusBadRequest, "Missing storageKey")
		return payload, false
	}
	return payload, true
}

// AddPhoto registers an uploaded photo
func (c *PhotoController) AddPhoto(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodePhotoPayload(w, r)
	if !ok {
		return
	}
	photos, err := c.Photos.AddPhoto(r.Context(), ViewerID(r.Context()), payload.StorageKey, payload.IsProfile)
	if err != nil {
		c.writePhotoError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "data": photos})
}

// SetProfilePhoto makes an existing photo the profile photo
func (c *PhotoController) SetProfilePhoto(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodePhotoPayload(w, r)
	if !ok {
		return
	}
	photos, err := c.Photos.SetProfilePhoto(r.Context(), ViewerID(r.Context()), payload.StorageKey)
	if err != nil {
		c.writePhotoError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": photos})
}

// DeletePhoto removes the photo named by the key query parameter
func (c *PhotoController) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "Missing key parameter")
		return
	}
	photos, err := c.Photos.DeletePhoto(r.Context(), ViewerID(r.Context()), key)
	if err != nil {
		c.writePhotoError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": photos})
}

func (c *PhotoController) writePhotoError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrPhotoLimit):
		writeError(w, http.StatusUnprocessableEntity, "Photo limit reached")
	case errors.Is(err, services.ErrPhotoExists):
		writeError(w, http.StatusConflict, "Photo already registered")
	case errors.Is(err, services.ErrPhotoNotFound):
		writeError(w, http.StatusNotFound, "Photo not found")
	case errors.Is(err, services.ErrProfileNotFound):
		writeError(w, http.StatusNotFound, "Profile not found")
	default:
		c.Logger.Error("❌ Failed to update photos", zap.String("viewer", ViewerID(r.Context())), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to update photos")
	}
}
