package services

import (
	"context"
	"fmt"

	"matchfeed_server/models"

	"golang.org/x/sync/errgroup"
)

// RequestKey identifies a directed access request
type RequestKey struct {
	RequesterID string
	TargetID    string
}

// AccessStore is the document-store contract for the two request tables
type AccessStore interface {
	// BatchGetRequests returns the existing requests among keys in one round trip
	BatchGetRequests(ctx context.Context, kind models.RequestKind, keys []RequestKey) ([]models.AccessRequest, error)
	GetRequest(ctx context.Context, kind models.RequestKind, key RequestKey) (*models.AccessRequest, error)
	// CreateRequest fails with ErrRequestExists when the ordered pair already has a request
	CreateRequest(ctx context.Context, kind models.RequestKind, req *models.AccessRequest) error
	UpdateRequestStatus(ctx context.Context, kind models.RequestKind, key RequestKey, status, updatedAt string) (*models.AccessRequest, error)
}

// AccessState is the viewer's relationship with one candidate
type AccessState struct {
	HasAccess          bool
	PhotoRequestStatus string // none|pending|granted|rejected
	ConnectionStatus   string // none|pending|accepted|rejected
}

// AccessResolver bulk-resolves photo visibility between a viewer and candidates
type AccessResolver struct {
	Store AccessStore
}

// Resolve returns the access state of every candidate. It issues one bulk
// read per request table regardless of how many candidates are given.
func (r *AccessResolver) Resolve(ctx context.Context, viewerID string, isAdmin bool, candidateIDs []string) (map[string]AccessState, error) {
	states := make(map[string]AccessState, len(candidateIDs))
	for _, id := range candidateIDs {
		states[id] = AccessState{
			HasAccess:          isAdmin,
			PhotoRequestStatus: models.StatusNone,
			ConnectionStatus:   models.StatusNone,
		}
	}
	if len(candidateIDs) == 0 {
		return states, nil
	}

	photoKeys := make([]RequestKey, 0, len(candidateIDs))
	connectionKeys := make([]RequestKey, 0, 2*len(candidateIDs))
	for _, id := range candidateIDs {
		photoKeys = append(photoKeys, RequestKey{RequesterID: viewerID, TargetID: id})
		connectionKeys = append(connectionKeys,
			RequestKey{RequesterID: viewerID, TargetID: id},
			RequestKey{RequesterID: id, TargetID: viewerID})
	}

	var photoRequests, connectionRequests []models.AccessRequest
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		photoRequests, err = r.Store.BatchGetRequests(gctx, models.RequestKindPhoto, photoKeys)
		if err != nil {
			return fmt.Errorf("failed to load photo requests: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		connectionRequests, err = r.Store.BatchGetRequests(gctx, models.RequestKindConnection, connectionKeys)
		if err != nil {
			return fmt.Errorf("failed to load connection requests: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, req := range photoRequests {
		// Photo access is one-directional: only viewer -> candidate counts
		if req.RequesterID != viewerID {
			continue
		}
		state, ok := states[req.TargetID]
		if !ok {
			continue
		}
		state.PhotoRequestStatus = req.Status
		if req.Status == models.StatusGranted {
			state.HasAccess = true
		}
		states[req.TargetID] = state
	}

	for _, req := range connectionRequests {
		other := req.TargetID
		if req.TargetID == viewerID {
			other = req.RequesterID
		} else if req.RequesterID != viewerID {
			continue
		}
		state, ok := states[other]
		if !ok {
			continue
		}
		state.ConnectionStatus = strongerConnectionStatus(state.ConnectionStatus, req.Status)
		if state.ConnectionStatus == models.StatusAccepted {
			state.HasAccess = true
		}
		states[other] = state
	}

	return states, nil
}

// strongerConnectionStatus picks the status to surface when requests exist in
// both directions: accepted, then pending, then rejected.
func strongerConnectionStatus(current, next string) string {
	rank := func(s string) int {
		switch s {
		case models.StatusAccepted:
			return 3
		case models.StatusPending:
			return 2
		case models.StatusRejected:
			return 1
		}
		return 0
	}
	if rank(next) > rank(current) {
		return next
	}
	return current
}
