package services

import (
	"context"
	"fmt"

	"matchfeed_server/models"

	"go.uber.org/zap"
)

// Feed sizes
const (
	DefaultFetchSize   = 15
	DefaultDisplaySize = 9
	NewestDisplaySize  = 15
)

// CandidateQuery describes one cursor-bounded fetch of eligible candidates
type CandidateQuery struct {
	ViewerID    string
	Blocked     []string
	Preferences CompiledPreferences
	Cursor      string // Only ids strictly lower than Cursor are returned
	Limit       int
}

// Excludes reports whether id is the viewer or in the viewer's blocked set
func (q CandidateQuery) Excludes(id string) bool {
	if id == q.ViewerID {
		return true
	}
	for _, b := range q.Blocked {
		if b == id {
			return true
		}
	}
	return false
}

// Eligible applies the base eligibility and compiled preferences to a profile
func (q CandidateQuery) Eligible(p *models.Profile) bool {
	if p.Status != models.ProfileStatusActive || !p.IsComplete || len(p.Photos) == 0 {
		return false
	}
	if p.Role == models.RoleFranchise || q.Excludes(p.ID) || p.HasBlocked(q.ViewerID) {
		return false
	}
	if q.Cursor != "" && p.ID >= q.Cursor {
		return false
	}
	return q.Preferences.Matches(p)
}

// ProfileStore is the document-store contract for profiles
type ProfileStore interface {
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	PutProfile(ctx context.Context, profile *models.Profile) error
	UpdatePhotos(ctx context.Context, id string, photos []models.Photo) error
	// QueryCandidates returns up to q.Limit eligible profiles ordered by id descending
	QueryCandidates(ctx context.Context, q CandidateQuery) ([]models.Profile, error)
}

// CandidateBatch is one fetched page plus the cursor for the next one
type CandidateBatch struct {
	Candidates []models.Profile
	NextCursor string // Empty once the candidate set is exhausted
}

// CandidateSelector fetches cursor-paginated feed candidates
type CandidateSelector struct {
	Store     ProfileStore
	FetchSize int
	Logger    *zap.Logger
}

// Select fetches the next batch of candidates for the viewer
func (s *CandidateSelector) Select(ctx context.Context, viewer *models.Profile, prefs CompiledPreferences, cursor string) (*CandidateBatch, error) {
	fetch := s.FetchSize
	if fetch <= 0 {
		fetch = DefaultFetchSize
	}

	candidates, err := s.Store.QueryCandidates(ctx, CandidateQuery{
		ViewerID:    viewer.ID,
		Blocked:     viewer.Blocked,
		Preferences: prefs,
		Cursor:      cursor,
		Limit:       fetch,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to select candidates: %w", err)
	}

	batch := &CandidateBatch{Candidates: candidates}
	if len(candidates) >= fetch {
		batch.NextCursor = candidates[len(candidates)-1].ID
	}

	if s.Logger != nil {
		s.Logger.Debug("🔍 Selected candidates",
			zap.String("viewer", viewer.ID),
			zap.String("cursor", cursor),
			zap.Int("count", len(candidates)),
			zap.Bool("exhausted", batch.NextCursor == ""))
	}
	return batch, nil
}
