package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"matchfeed_server/models"

	"github.com/stretchr/testify/require"
)

var testToday = time.Date(2024, time.June, 15, 9, 30, 0, 0, time.UTC)

// fakeSigner signs keys as "https://signed/<key>?v=<n>" and counts calls per key
type fakeSigner struct {
	mu       sync.Mutex
	calls    map[string]int
	failKeys map[string]bool
	validity time.Duration
	delay    time.Duration
}

func newFakeSigner() *fakeSigner {
	return &fakeSigner{
		calls:    make(map[string]int),
		failKeys: make(map[string]bool),
		validity: time.Hour,
	}
}

func (s *fakeSigner) Sign(ctx context.Context, key string) (string, time.Duration, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[key]++
	if s.failKeys[key] {
		return "", 0, errors.New("signing unavailable")
	}
	return fmt.Sprintf("https://signed/%s?v=%d", key, s.calls[key]), s.validity, nil
}

func (s *fakeSigner) Calls(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[key]
}

func (s *fakeSigner) Fail(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failKeys[key] = true
}

func (s *fakeSigner) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

// eligibleProfile returns an active, complete profile with n photos
func eligibleProfile(id string, photos int) *models.Profile {
	p := &models.Profile{
		ID:          id,
		Username:    "user-" + id,
		DisplayName: "User " + id,
		Role:        models.RoleUser,
		Status:      models.ProfileStatusActive,
		IsComplete:  true,
		DOB:         "1995-03-10",
		Gender:      "female",
		CreatedAt:   testToday,
	}
	for i := 0; i < photos; i++ {
		p.Photos = append(p.Photos, models.Photo{
			StorageKey:   fmt.Sprintf("photos/%s/%d.jpg", id, i),
			IsProfile:    i == 0,
			DisplayOrder: i,
		})
	}
	return p
}

func putProfiles(t *testing.T, store ProfileStore, profiles ...*models.Profile) {
	t.Helper()
	for _, p := range profiles {
		require.NoError(t, store.PutProfile(context.Background(), p))
	}
}

func putRequest(t *testing.T, store AccessStore, kind models.RequestKind, requester, target, status string) {
	t.Helper()
	require.NoError(t, store.CreateRequest(context.Background(), kind, &models.AccessRequest{
		RequesterID: requester,
		TargetID:    target,
		RequestID:   requester + "-" + target,
		Status:      status,
	}))
}

func profileIDs(profiles []models.Profile) []string {
	ids := make([]string, len(profiles))
	for i, p := range profiles {
		ids[i] = p.ID
	}
	return ids
}
