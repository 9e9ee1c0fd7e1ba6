package services

import (
	"context"
	"fmt"
	"time"

	"matchfeed_server/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AccessRequestEvent is pushed to the counterpart of a request change
type AccessRequestEvent struct {
	Kind        models.RequestKind `json:"kind"`
	RequesterID string             `json:"requesterId"`
	TargetID    string             `json:"targetId"`
	Status      string             `json:"status"`
}

// Notifier delivers best-effort events to a user. Delivery is at most once.
type Notifier interface {
	NotifyAccessRequest(userID string, event AccessRequestEvent)
}

// AccessRequestService creates and answers photo-access and connection requests
type AccessRequestService struct {
	Store    AccessStore
	Profiles ProfileStore
	Notifier Notifier
	Logger   *zap.Logger
}

// Create opens a pending request from requesterID to targetID
func (s *AccessRequestService) Create(ctx context.Context, kind models.RequestKind, requesterID, targetID string) (*models.AccessRequest, error) {
	if requesterID == targetID {
		return nil, ErrSelfRequest
	}
	if _, err := s.Profiles.GetProfile(ctx, targetID); err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	req := &models.AccessRequest{
		RequesterID: requesterID,
		TargetID:    targetID,
		RequestID:   uuid.NewString(),
		Status:      models.StatusPending,
		CreatedAt:   now,
		LastUpdated: now,
	}
	if err := s.Store.CreateRequest(ctx, kind, req); err != nil {
		return nil, err
	}

	s.Logger.Info("🆕 Access request created",
		zap.String("kind", string(kind)),
		zap.String("requester", requesterID),
		zap.String("target", targetID))
	s.notify(targetID, kind, req)
	return req, nil
}

// Respond lets the target of a request grant/accept or reject it
func (s *AccessRequestService) Respond(ctx context.Context, kind models.RequestKind, targetID, requesterID, status string) (*models.AccessRequest, error) {
	if status != kind.GrantStatus() && status != models.StatusRejected {
		return nil, fmt.Errorf("%w: %q for %s request", ErrInvalidStatus, status, kind)
	}

	updated, err := s.Store.UpdateRequestStatus(ctx, kind,
		RequestKey{RequesterID: requesterID, TargetID: targetID},
		status, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}

	s.Logger.Info("🔄 Access request answered",
		zap.String("kind", string(kind)),
		zap.String("requester", requesterID),
		zap.String("target", targetID),
		zap.String("status", status))
	s.notify(requesterID, kind, updated)
	return updated, nil
}

func (s *AccessRequestService) notify(userID string, kind models.RequestKind, req *models.AccessRequest) {
	if s.Notifier == nil {
		return
	}
	s.Notifier.NotifyAccessRequest(userID, AccessRequestEvent{
		Kind:        kind,
		RequesterID: req.RequesterID,
		TargetID:    req.TargetID,
		Status:      req.Status,
	})
}
