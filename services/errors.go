package services

import "errors"

var (
	ErrProfileNotFound   = errors.New("profile not found")
	ErrDelegateNotFound  = errors.New("delegate profile not found")
	ErrDelegateForbidden = errors.New("not permitted to act as this profile")
	ErrRequestExists     = errors.New("request already exists")
	ErrRequestNotFound   = errors.New("request not found")
	ErrInvalidStatus     = errors.New("invalid request status")
	ErrSelfRequest       = errors.New("cannot send a request to yourself")
	ErrPhotoLimit        = errors.New("photo limit reached")
	ErrPhotoNotFound     = errors.New("photo not found")
	ErrPhotoExists       = errors.New("photo already registered")
)
