package services

import (
	"context"
	"sync"
	"testing"

	"matchfeed_server/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sentEvent struct {
	userID string
	event  AccessRequestEvent
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []sentEvent
}

func (n *recordingNotifier) NotifyAccessRequest(userID string, event AccessRequestEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, sentEvent{userID: userID, event: event})
}

func newRequestFixture(t *testing.T) (*AccessRequestService, *MemoryStore, *recordingNotifier) {
	t.Helper()
	store := NewMemoryStore()
	putProfiles(t, store, eligibleProfile("alice", 2), eligibleProfile("bob", 2))
	notifier := &recordingNotifier{}
	return &AccessRequestService{Store: store, Profiles: store, Notifier: notifier, Logger: zap.NewNop()}, store, notifier
}

func TestCreateRequest(t *testing.T) {
	svc, store, notifier := newRequestFixture(t)

	req, err := svc.Create(context.Background(), models.RequestKindPhoto, "alice", "bob")
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, req.Status)
	require.NotEmpty(t, req.RequestID)
	require.NotEmpty(t, req.CreatedAt)

	stored, err := store.GetRequest(context.Background(), models.RequestKindPhoto, RequestKey{RequesterID: "alice", TargetID: "bob"})
	require.NoError(t, err)
	require.Equal(t, req.RequestID, stored.RequestID)

	require.Equal(t, []sentEvent{{userID: "bob", event: AccessRequestEvent{
		Kind: models.RequestKindPhoto, RequesterID: "alice", TargetID: "bob", Status: models.StatusPending,
	}}}, notifier.events)
}

func TestCreateRequestErrors(t *testing.T) {
	svc, _, _ := newRequestFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, models.RequestKindConnection, "alice", "alice")
	require.ErrorIs(t, err, ErrSelfRequest)

	_, err = svc.Create(ctx, models.RequestKindConnection, "alice", "nobody")
	require.ErrorIs(t, err, ErrProfileNotFound)

	_, err = svc.Create(ctx, models.RequestKindConnection, "alice", "bob")
	require.NoError(t, err)
	_, err = svc.Create(ctx, models.RequestKindConnection, "alice", "bob")
	require.ErrorIs(t, err, ErrRequestExists)

	// The reverse direction is a separate request
	_, err = svc.Create(ctx, models.RequestKindConnection, "bob", "alice")
	require.NoError(t, err)
}

func TestRespondGrantsAccess(t *testing.T) {
	svc, store, notifier := newRequestFixture(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, models.RequestKindPhoto, "alice", "bob")
	require.NoError(t, err)

	updated, err := svc.Respond(ctx, models.RequestKindPhoto, "bob", "alice", models.StatusGranted)
	require.NoError(t, err)
	require.Equal(t, models.StatusGranted, updated.Status)
	require.Equal(t, "alice", notifier.events[len(notifier.events)-1].userID)

	states, err := (&AccessResolver{Store: store}).Resolve(ctx, "alice", false, []string{"bob"})
	require.NoError(t, err)
	require.True(t, states["bob"].HasAccess)
}

func TestRespondValidatesStatus(t *testing.T) {
	svc, _, _ := newRequestFixture(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, models.RequestKindConnection, "alice", "bob")
	require.NoError(t, err)

	_, err = svc.Respond(ctx, models.RequestKindConnection, "bob", "alice", models.StatusGranted)
	require.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.Respond(ctx, models.RequestKindConnection, "bob", "alice", models.StatusPending)
	require.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.Respond(ctx, models.RequestKindConnection, "alice", "bob", models.StatusAccepted)
	require.ErrorIs(t, err, ErrRequestNotFound)

	updated, err := svc.Respond(ctx, models.RequestKindConnection, "bob", "alice", models.StatusRejected)
	require.NoError(t, err)
	require.Equal(t, models.StatusRejected, updated.Status)
}
