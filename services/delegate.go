package services

import (
	"context"
	"errors"
	"fmt"

	"matchfeed_server/models"
)

// ActingContext is the identity a single request runs under. Principal is the
// authenticated account; Subject is whose feed is generated. They differ
// only when an operator views the feed of a managed profile it owns.
type ActingContext struct {
	Principal *models.Profile
	Subject   *models.Profile
}

// Delegated reports whether the request acts on behalf of another profile
func (a ActingContext) Delegated() bool {
	return a.Principal.ID != a.Subject.ID
}

// DelegateAuthorizer resolves the acting context of a request once, at the boundary
type DelegateAuthorizer struct {
	Profiles ProfileStore
}

// Authorize returns the acting context for principal, optionally acting as
// delegateID. The principal must own the delegate profile.
func (d *DelegateAuthorizer) Authorize(ctx context.Context, principal *models.Profile, delegateID string) (ActingContext, error) {
	if delegateID == "" || delegateID == principal.ID {
		return ActingContext{Principal: principal, Subject: principal}, nil
	}

	delegate, err := d.Profiles.GetProfile(ctx, delegateID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return ActingContext{}, ErrDelegateNotFound
		}
		return ActingContext{}, fmt.Errorf("failed to load delegate profile: %w", err)
	}
	if delegate.ManagedBy == "" || delegate.ManagedBy != principal.ID {
		return ActingContext{}, ErrDelegateForbidden
	}
	return ActingContext{Principal: principal, Subject: delegate}, nil
}
