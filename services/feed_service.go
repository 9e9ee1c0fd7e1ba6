package services

import (
	"context"
	"fmt"
	"time"

	"matchfeed_server/metrics"
	"matchfeed_server/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// FeedRequest is one inbound feed call
type FeedRequest struct {
	ViewerID string
	ViewAs   string
	Cursor   string
	Sort     string
}

// FeedService assembles feed pages from the selector, resolver and
// disclosure engine.
type FeedService struct {
	Profiles   ProfileStore
	Delegates  *DelegateAuthorizer
	Selector   *CandidateSelector
	Randomizer *Randomizer
	Access     *AccessResolver
	Disclosure *DisclosureEngine
	Now        func() time.Time
	Logger     *zap.Logger
}

// GetFeed returns a full page or an error, never a partial page
func (s *FeedService) GetFeed(ctx context.Context, req FeedRequest) (page *models.FeedPage, err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		metrics.FeedRequests.WithLabelValues(outcome).Inc()
		metrics.FeedLatency.Observe(time.Since(start).Seconds())
	}()

	principal, err := s.Profiles.GetProfile(ctx, req.ViewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load viewer: %w", err)
	}
	acting, err := s.Delegates.Authorize(ctx, principal, req.ViewAs)
	if err != nil {
		return nil, err
	}
	return s.BuildPage(ctx, acting, req.Cursor, req.Sort)
}

// BuildPage generates one page for an already authorised acting context
func (s *FeedService) BuildPage(ctx context.Context, acting ActingContext, cursor, sortMode string) (*models.FeedPage, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	today := now().UTC()
	subject := acting.Subject

	prefs := CompilePreferences(subject.Preferences, today)
	batch, err := s.Selector.Select(ctx, subject, prefs, cursor)
	if err != nil {
		return nil, err
	}

	shown := s.Randomizer.Present(batch.Candidates, sortMode)
	ids := make([]string, len(shown))
	for i, c := range shown {
		ids[i] = c.ID
	}

	// Headline photos never depend on access, so they are signed while the
	// relationship lookups are in flight.
	var access map[string]AccessState
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		access, err = s.Access.Resolve(gctx, subject.ID, acting.Principal.IsAdmin(), ids)
		return err
	})
	g.Go(func() error {
		s.Disclosure.WarmHeadlines(gctx, shown)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries, err := s.Disclosure.Disclose(ctx, shown, access, today)
	if err != nil {
		return nil, err
	}

	page := &models.FeedPage{Success: true, Data: entries}
	if batch.NextCursor != "" {
		next := batch.NextCursor
		page.NextCursor = &next
	}

	if s.Logger != nil {
		s.Logger.Info("✅ Feed page built",
			zap.String("principal", acting.Principal.ID),
			zap.String("subject", subject.ID),
			zap.Bool("delegated", acting.Delegated()),
			zap.String("sort", sortMode),
			zap.Int("fetched", len(batch.Candidates)),
			zap.Int("shown", len(entries)))
	}
	return page, nil
}
