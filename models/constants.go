package models

// Profile roles
const (
	RoleUser      = "user"
	RoleAdmin     = "admin"
	RoleVendor    = "vendor"
	RoleFranchise = "franchise" // Managed-account operator, never shown in feeds
)

// Profile lifecycle statuses
const (
	ProfileStatusActive    = "active"
	ProfileStatusBanned    = "banned"
	ProfileStatusSuspended = "suspended"
)

// Access request statuses
const (
	StatusNone     = "none"
	StatusPending  = "pending"
	StatusGranted  = "granted"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// Feed sort modes
const (
	SortNewest  = "newest"
	SortDefault = "default"
)

// MaxPhotos is the per-profile photo limit
const MaxPhotos = 10
