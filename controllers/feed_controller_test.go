package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"matchfeed_server/models"
	"matchfeed_server/services"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubFeed struct {
	got  services.FeedRequest
	page *models.FeedPage
	err  error
}

func (s *stubFeed) GetFeed(_ context.Context, req services.FeedRequest) (*models.FeedPage, error) {
	s.got = req
	return s.page, s.err
}

func serveFeed(t *testing.T, feed FeedGenerator, target string) *httptest.ResponseRecorder {
	t.Helper()
	controller := &FeedController{Feed: feed, Logger: zap.NewNop()}
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req = req.WithContext(WithViewerID(req.Context(), "viewer-1"))
	rec := httptest.NewRecorder()
	controller.GetFeed(rec, req)
	return rec
}

func TestGetFeedPassesQuery(t *testing.T) {
	next := "c9"
	feed := &stubFeed{page: &models.FeedPage{Success: true, Data: []models.FeedCandidate{{ID: "c1"}}, NextCursor: &next}}

	rec := serveFeed(t, feed, "/api/feed?cursor=c10&viewAs=m1&sort=newest")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, services.FeedRequest{ViewerID: "viewer-1", ViewAs: "m1", Cursor: "c10", Sort: models.SortNewest}, feed.got)

	var body struct {
		Success    bool                   `json:"success"`
		Data       []models.FeedCandidate `json:"data"`
		NextCursor *string                `json:"nextCursor"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.Equal(t, "c1", body.Data[0].ID)
	require.Equal(t, "c9", *body.NextCursor)
}

func TestGetFeedNullCursorOnLastPage(t *testing.T) {
	feed := &stubFeed{page: &models.FeedPage{Success: true, Data: []models.FeedCandidate{}}}

	rec := serveFeed(t, feed, "/api/feed")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, models.SortDefault, feed.got.Sort)
	require.JSONEq(t, `{"success":true,"data":[],"nextCursor":null}`, rec.Body.String())
}

func TestGetFeedErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"forbidden delegate", services.ErrDelegateForbidden, http.StatusForbidden},
		{"missing delegate", services.ErrDelegateNotFound, http.StatusNotFound},
		{"missing viewer", fmt.Errorf("failed to load viewer: %w", services.ErrProfileNotFound), http.StatusNotFound},
		{"store failure", fmt.Errorf("failed to select candidates: boom"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := serveFeed(t, &stubFeed{err: tc.err}, "/api/feed")
			require.Equal(t, tc.status, rec.Code)

			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.False(t, body.Success)
			require.NotEmpty(t, body.Message)
			require.NotContains(t, body.Message, "boom", "internal errors are not leaked")
		})
	}
}

func TestGetFeedRejectsUnknownSort(t *testing.T) {
	feed := &stubFeed{}
	rec := serveFeed(t, feed, "/api/feed?sort=oldest")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, feed.got.ViewerID, "feed must not be generated")
}
