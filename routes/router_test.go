package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"matchfeed_server/models"
	"matchfeed_server/services"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var routerSecret = []byte("router-secret")

type staticSigner struct{}

func (staticSigner) Sign(_ context.Context, key string) (string, time.Duration, error) {
	return "https://cdn.test/" + key, time.Hour, nil
}

type routerFixture struct {
	handler http.Handler
	store   *services.MemoryStore
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	logger := zap.NewNop()
	store := services.NewMemoryStore()
	cache, err := services.NewSignedURLCache(staticSigner{}, 100)
	require.NoError(t, err)
	t.Cleanup(cache.Close)

	feed := &services.FeedService{
		Profiles:   store,
		Delegates:  &services.DelegateAuthorizer{Profiles: store},
		Selector:   &services.CandidateSelector{Store: store, Logger: logger},
		Randomizer: &services.Randomizer{},
		Access:     &services.AccessResolver{Store: store},
		Disclosure: &services.DisclosureEngine{URLs: cache, Logger: logger},
		Logger:     logger,
	}
	handler := NewRouter(Dependencies{
		Feed:     feed,
		Requests: &services.AccessRequestService{Store: store, Profiles: store, Logger: logger},
		Photos:   &services.PhotoService{Profiles: store, Logger: logger},
		Verifier: &services.TokenVerifier{Secret: routerSecret},
		Logger:   logger,
	})
	return &routerFixture{handler: handler, store: store}
}

func (f *routerFixture) addProfile(t *testing.T, id string, photos int) {
	t.Helper()
	p := &models.Profile{ID: id, Username: id, Status: models.ProfileStatusActive, IsComplete: true}
	for i := 0; i < photos; i++ {
		p.Photos = append(p.Photos, models.Photo{StorageKey: id + "/" + string(rune('a'+i)) + ".jpg", IsProfile: i == 0, DisplayOrder: i})
	}
	require.NoError(t, f.store.PutProfile(context.Background(), p))
}

func bearer(t *testing.T, subject string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, services.ViewerClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(routerSecret)
	require.NoError(t, err)
	return "Bearer " + token
}

func (f *routerFixture) do(t *testing.T, method, target, viewer string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if viewer != "" {
		req.Header.Set("Authorization", bearer(t, viewer))
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodePage(t *testing.T, rec *httptest.ResponseRecorder) models.FeedPage {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var page models.FeedPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	return page
}

func TestHealthAndMetrics(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = f.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestFeedRequiresAuthentication(t *testing.T) {
	f := newRouterFixture(t)
	rec := f.do(t, http.MethodGet, "/api/feed", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPhotoRequestUnlocksPhotos(t *testing.T) {
	f := newRouterFixture(t)
	f.addProfile(t, "viewer", 1)
	f.addProfile(t, "target", 3)

	page := decodePage(t, f.do(t, http.MethodGet, "/api/feed?sort=newest", "viewer", nil))
	require.Len(t, page.Data, 1)
	require.Nil(t, page.NextCursor)
	entry := page.Data[0]
	require.Equal(t, "target", entry.ID)
	require.Equal(t, "https://cdn.test/target/a.jpg", entry.ProfilePhoto)
	require.True(t, entry.Photos[1].Restricted)
	require.Equal(t, "https://cdn.test/target/b_blurred.jpg", entry.Photos[1].URL)

	rec := f.do(t, http.MethodPost, "/api/photo-requests", "viewer", map[string]string{"targetId": "target"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/api/photo-requests", "viewer", map[string]string{"targetId": "target"})
	require.Equal(t, http.StatusConflict, rec.Code)

	page = decodePage(t, f.do(t, http.MethodGet, "/api/feed?sort=newest", "viewer", nil))
	require.Equal(t, models.StatusPending, page.Data[0].PhotoRequestStatus)
	require.True(t, page.Data[0].Photos[1].Restricted)

	rec = f.do(t, http.MethodPatch, "/api/photo-requests/viewer", "target", map[string]string{"status": models.StatusGranted})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	page = decodePage(t, f.do(t, http.MethodGet, "/api/feed?sort=newest", "viewer", nil))
	require.Equal(t, models.StatusGranted, page.Data[0].PhotoRequestStatus)
	for _, p := range page.Data[0].Photos {
		require.False(t, p.Restricted)
		require.NotContains(t, p.URL, "_blurred")
	}
}

func TestConnectionRoutes(t *testing.T) {
	f := newRouterFixture(t)
	f.addProfile(t, "viewer", 1)
	f.addProfile(t, "target", 2)

	rec := f.do(t, http.MethodPost, "/api/connections", "target", map[string]string{"targetId": "viewer"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPatch, "/api/connections/target", "viewer", map[string]string{"status": models.StatusGranted})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPatch, "/api/connections/target", "viewer", map[string]string{"status": models.StatusAccepted})
	require.Equal(t, http.StatusOK, rec.Code)

	page := decodePage(t, f.do(t, http.MethodGet, "/api/feed", "viewer", nil))
	require.Equal(t, models.StatusAccepted, page.Data[0].ConnectionStatus)
	require.False(t, page.Data[0].Photos[1].Restricted)
}

func TestFeedViewAsForbidden(t *testing.T) {
	f := newRouterFixture(t)
	f.addProfile(t, "operator", 1)
	f.addProfile(t, "managed", 1)

	rec := f.do(t, http.MethodGet, "/api/feed?viewAs=managed", "operator", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.JSONEq(t, `{"success":false,"message":"Not permitted to view as this profile"}`, rec.Body.String())
}

func TestPhotoRoutes(t *testing.T) {
	f := newRouterFixture(t)
	f.addProfile(t, "me", 1)

	rec := f.do(t, http.MethodPost, "/api/profile/photos", "me", map[string]interface{}{"storageKey": "me/new.jpg", "isProfile": true})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPut, "/api/profile/photos/primary", "me", map[string]string{"storageKey": "me/a.jpg"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodDelete, "/api/profile/photos?key=me/new.jpg", "me", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodDelete, "/api/profile/photos?key=me/new.jpg", "me", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	profile, err := f.store.GetProfile(context.Background(), "me")
	require.NoError(t, err)
	require.Len(t, profile.Photos, 1)
	require.True(t, profile.Photos[0].IsProfile)
	require.Equal(t, "me/a.jpg", profile.Photos[0].StorageKey)
}

func TestSocketHandlerCanHijack(t *testing.T) {
	hijackable := make(chan bool, 1)
	socket := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := w.(http.Hijacker)
		hijackable <- ok
	})
	server := httptest.NewServer(NewRouter(Dependencies{Socket: socket, Logger: zap.NewNop()}))
	defer server.Close()

	resp, err := http.Get(server.URL + "/socket.io/?EIO=3&transport=websocket")
	require.NoError(t, err)
	resp.Body.Close()
	require.True(t, <-hijackable)
}
