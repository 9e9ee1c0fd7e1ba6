package services

import (
	"context"
	"sort"
	"sync"

	"matchfeed_server/models"
)

// MemoryStore is an in-process ProfileStore and AccessStore used for local
// runs (STORE_DRIVER=memory) and tests. It applies the same eligibility and
// ordering rules as the DynamoDB stores.
type MemoryStore struct {
	mu          sync.RWMutex
	profiles    map[string]models.Profile
	photoReqs   map[RequestKey]models.AccessRequest
	connections map[RequestKey]models.AccessRequest

	// Counts round trips so callers can verify bulk access patterns
	BatchCalls int
}

var (
	_ ProfileStore = (*MemoryStore)(nil)
	_ AccessStore  = (*MemoryStore)(nil)
)

// NewMemoryStore returns an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles:    make(map[string]models.Profile),
		photoReqs:   make(map[RequestKey]models.AccessRequest),
		connections: make(map[RequestKey]models.AccessRequest),
	}
}

func (m *MemoryStore) GetProfile(_ context.Context, id string) (*models.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return cloneProfile(p), nil
}

func (m *MemoryStore) PutProfile(_ context.Context, profile *models.Profile) error {
	if err := prepareProfile(profile); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[profile.ID] = *cloneProfile(*profile)
	return nil
}

func (m *MemoryStore) UpdatePhotos(_ context.Context, id string, photos []models.Photo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return ErrProfileNotFound
	}
	p.Photos = append([]models.Photo(nil), photos...)
	p.HasPhotos = len(photos) > 0
	m.profiles[id] = p
	return nil
}

func (m *MemoryStore) QueryCandidates(_ context.Context, q CandidateQuery) ([]models.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.profiles))
	for id := range m.profiles {
		ids = append(ids, id)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))

	var out []models.Profile
	for _, id := range ids {
		if len(out) >= q.Limit {
			break
		}
		p := m.profiles[id]
		if q.Eligible(&p) {
			out = append(out, *cloneProfile(p))
		}
	}
	return out, nil
}

func (m *MemoryStore) requests(kind models.RequestKind) map[RequestKey]models.AccessRequest {
	if kind == models.RequestKindConnection {
		return m.connections
	}
	return m.photoReqs
}

func (m *MemoryStore) BatchGetRequests(_ context.Context, kind models.RequestKind, keys []RequestKey) ([]models.AccessRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BatchCalls++

	table := m.requests(kind)
	seen := make(map[RequestKey]struct{}, len(keys))
	var out []models.AccessRequest
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if req, ok := table[k]; ok {
			out = append(out, req)
		}
	}
	return out, nil
}

func (m *MemoryStore) GetRequest(_ context.Context, kind models.RequestKind, key RequestKey) (*models.AccessRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	req, ok := m.requests(kind)[key]
	if !ok {
		return nil, ErrRequestNotFound
	}
	return &req, nil
}

func (m *MemoryStore) CreateRequest(_ context.Context, kind models.RequestKind, req *models.AccessRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := m.requests(kind)
	key := RequestKey{RequesterID: req.RequesterID, TargetID: req.TargetID}
	if _, exists := table[key]; exists {
		return ErrRequestExists
	}
	table[key] = *req
	return nil
}

func (m *MemoryStore) UpdateRequestStatus(_ context.Context, kind models.RequestKind, key RequestKey, status, updatedAt string) (*models.AccessRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := m.requests(kind)
	req, ok := table[key]
	if !ok {
		return nil, ErrRequestNotFound
	}
	req.Status = status
	req.LastUpdated = updatedAt
	table[key] = req
	return &req, nil
}

func cloneProfile(p models.Profile) *models.Profile {
	p.Photos = append([]models.Photo(nil), p.Photos...)
	p.Blocked = append([]string(nil), p.Blocked...)
	if p.Preferences != nil {
		prefs := make(map[string]string, len(p.Preferences))
		for k, v := range p.Preferences {
			prefs[k] = v
		}
		p.Preferences = prefs
	}
	return &p
}
