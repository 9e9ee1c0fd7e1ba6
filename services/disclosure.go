package services

import (
	"context"
	"time"

	"matchfeed_server/metrics"
	"matchfeed_server/models"
	"matchfeed_server/utils"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// photoFanOutPerCandidate bounds concurrent signing calls at D x 10
const photoFanOutPerCandidate = 10

// URLResolver resolves a storage key to an access URL
type URLResolver interface {
	Get(ctx context.Context, key string) (string, error)
}

// DisclosureEngine decides, per candidate and photo, which variant a viewer
// sees and resolves it to a URL.
type DisclosureEngine struct {
	URLs   URLResolver
	Logger *zap.Logger
}

// IsRestricted reports whether the photo at position i of n is blurred for
// a viewer without access. The first photo and singleton photos never are.
func IsRestricted(hasAccess bool, i, n int) bool {
	return !hasAccess && i != 0 && n > 1
}

type photoJob struct {
	candidate int
	photo     int
	key       string
	fallback  string
}

// Disclose builds the feed entries for candidates. Signing runs detached
// from ctx so that in-flight calls still populate the cache, but the
// result is discarded if ctx is done when signing completes.
func (e *DisclosureEngine) Disclose(ctx context.Context, candidates []models.Profile, access map[string]AccessState, today time.Time) ([]models.FeedCandidate, error) {
	entries := make([]models.FeedCandidate, len(candidates))
	var jobs []photoJob

	for ci, c := range candidates {
		state, ok := access[c.ID]
		if !ok {
			state = AccessState{PhotoRequestStatus: models.StatusNone, ConnectionStatus: models.StatusNone}
		}
		// Vendor photos are always fully disclosed
		hasAccess := state.HasAccess || c.Role == models.RoleVendor

		photos := utils.SortPhotos(c.Photos)
		entry := newFeedCandidate(&c, state, today)
		entry.Photos = make([]models.FeedPhoto, len(photos))

		for pi, p := range photos {
			restricted := IsRestricted(hasAccess, pi, len(photos))
			job := photoJob{candidate: ci, photo: pi, key: p.StorageKey, fallback: p.URL}
			if restricted {
				job.key = utils.BlurredKeyOf(p)
				job.fallback = p.BlurredURL
			}
			entry.Photos[pi] = models.FeedPhoto{
				Restricted: restricted,
				IsProfile:  p.IsProfile,
				Order:      pi,
			}
			jobs = append(jobs, job)
		}
		entries[ci] = entry
	}

	signCtx := context.WithoutCancel(ctx)
	p := pool.New().WithMaxGoroutines(max(1, len(candidates)*photoFanOutPerCandidate))
	for _, job := range jobs {
		p.Go(func() {
			entries[job.candidate].Photos[job.photo].URL = e.resolve(signCtx, job)
		})
	}
	p.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for i := range entries {
		if len(entries[i].Photos) > 0 {
			entries[i].ProfilePhoto = entries[i].Photos[0].URL
		}
	}
	return entries, nil
}

// WarmHeadlines signs the first photo of every candidate. The first photo is
// never restricted, so this can run before access is resolved.
func (e *DisclosureEngine) WarmHeadlines(ctx context.Context, candidates []models.Profile) {
	signCtx := context.WithoutCancel(ctx)
	p := pool.New().WithMaxGoroutines(max(1, len(candidates)))
	for _, c := range candidates {
		photos := utils.SortPhotos(c.Photos)
		if len(photos) == 0 {
			continue
		}
		key := photos[0].StorageKey
		p.Go(func() {
			// Failures are retried by Disclose and fall back there
			_, _ = e.URLs.Get(signCtx, key)
		})
	}
	p.Wait()
}

func (e *DisclosureEngine) resolve(ctx context.Context, job photoJob) string {
	url, err := e.URLs.Get(ctx, job.key)
	if err == nil {
		return url
	}
	metrics.PhotoFallbacks.Inc()
	if e.Logger != nil {
		e.Logger.Warn("⚠️ Falling back to stored photo url",
			zap.String("key", job.key),
			zap.Bool("hasFallback", job.fallback != ""),
			zap.Error(err))
	}
	return job.fallback
}

func newFeedCandidate(c *models.Profile, state AccessState, today time.Time) models.FeedCandidate {
	return models.FeedCandidate{
		ID:                 c.ID,
		Username:           c.Username,
		DisplayName:        c.DisplayName,
		Age:                utils.AgeOn(c.DOB, today),
		Gender:             c.Gender,
		Religion:           c.Religion,
		MaritalStatus:      c.MaritalStatus,
		Community:          c.Community,
		Education:          c.Education,
		Occupation:         c.Occupation,
		Diet:               c.Diet,
		Smoking:            c.Smoking,
		Drinking:           c.Drinking,
		IncomeBracket:      c.IncomeBracket,
		City:               c.City,
		State:              c.State,
		Country:            c.Country,
		ConnectionStatus:   state.ConnectionStatus,
		PhotoRequestStatus: state.PhotoRequestStatus,
	}
}
