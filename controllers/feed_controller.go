package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"matchfeed_server/models"
	"matchfeed_server/services"

	"go.uber.org/zap"
)

// FeedGenerator produces feed pages
type FeedGenerator interface {
	GetFeed(ctx context.Context, req services.FeedRequest) (*models.FeedPage, error)
}

// FeedController handles GET /api/feed
type FeedController struct {
	Feed    FeedGenerator
	Timeout time.Duration
	Logger  *zap.Logger
}

// GetFeed returns one page of candidates for the authenticated viewer
func (c *FeedController) GetFeed(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	sortMode := query.Get("sort")
	if sortMode == "" {
		sortMode = models.SortDefault
	}
	if sortMode != models.SortNewest && sortMode != models.SortDefault {
		writeError(w, http.StatusBadRequest, "Invalid sort mode")
		return
	}

	ctx := r.Context()
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	page, err := c.Feed.GetFeed(ctx, services.FeedRequest{
		ViewerID: ViewerID(r.Context()),
		ViewAs:   query.Get("viewAs"),
		Cursor:   query.Get("cursor"),
		Sort:     sortMode,
	})
	if err != nil {
		c.writeFeedError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (c *FeedController) writeFeedError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrDelegateForbidden):
		writeError(w, http.StatusForbidden, "Not permitted to view as this profile")
	case errors.Is(err, services.ErrDelegateNotFound):
		writeError(w, http.StatusNotFound, "Delegate profile not found")
	case errors.Is(err, services.ErrProfileNotFound):
		writeError(w, http.StatusNotFound, "Viewer profile not found")
	case isClientGone(err):
		c.Logger.Debug("Feed request aborted by client", zap.String("request_id", RequestID(r.Context())))
	default:
		c.Logger.Error("❌ Failed to build feed",
			zap.String("viewer", ViewerID(r.Context())),
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to load feed")
	}
}
