package models

import (
	"strings"
	"time"
)

// Photo is one entry of a profile's ordered photo list
type Photo struct {
	StorageKey        string `dynamodbav:"storageKey" json:"storageKey"`
	BlurredStorageKey string `dynamodbav:"blurredStorageKey,omitempty" json:"blurredStorageKey,omitempty"`
	IsProfile         bool   `dynamodbav:"isProfile" json:"isProfile"`
	DisplayOrder      int    `dynamodbav:"displayOrder" json:"displayOrder"`
	URL               string `dynamodbav:"url,omitempty" json:"url,omitempty"`               // Last issued URL of the original
	BlurredURL        string `dynamodbav:"blurredUrl,omitempty" json:"blurredUrl,omitempty"` // Last issued URL of the blurred variant
}

// Profile defines the structure stored in the Profiles table
type Profile struct {
	ID          string `dynamodbav:"id" json:"id"` // Partition Key, UUIDv7
	Username    string `dynamodbav:"username,omitempty" json:"username,omitempty"`
	DisplayName string `dynamodbav:"displayName,omitempty" json:"displayName,omitempty"`
	Role        string `dynamodbav:"role,omitempty" json:"role,omitempty"`
	ManagedBy   string `dynamodbav:"managedBy,omitempty" json:"managedBy,omitempty"` // Operator owning a managed profile
	Status      string `dynamodbav:"status" json:"status"`                           // GSI partition key
	IsComplete  bool   `dynamodbav:"isComplete" json:"isComplete"`
	HasPhotos   bool   `dynamodbav:"hasPhotos" json:"hasPhotos"`

	DOB           string `dynamodbav:"dob,omitempty" json:"dob,omitempty"` // YYYY-MM-DD
	Gender        string `dynamodbav:"gender,omitempty" json:"gender,omitempty"`
	Religion      string `dynamodbav:"religion,omitempty" json:"religion,omitempty"`
	MaritalStatus string `dynamodbav:"maritalStatus,omitempty" json:"maritalStatus,omitempty"`
	Community     string `dynamodbav:"community,omitempty" json:"community,omitempty"`
	Education     string `dynamodbav:"education,omitempty" json:"education,omitempty"`
	Occupation    string `dynamodbav:"occupation,omitempty" json:"occupation,omitempty"`
	Diet          string `dynamodbav:"diet,omitempty" json:"diet,omitempty"`
	Smoking       string `dynamodbav:"smoking,omitempty" json:"smoking,omitempty"`
	Drinking      string `dynamodbav:"drinking,omitempty" json:"drinking,omitempty"`
	IncomeBracket string `dynamodbav:"incomeBracket,omitempty" json:"incomeBracket,omitempty"`
	City          string `dynamodbav:"city,omitempty" json:"city,omitempty"`
	State         string `dynamodbav:"state,omitempty" json:"state,omitempty"`
	Country       string `dynamodbav:"country,omitempty" json:"country,omitempty"`

	// Lowercase shadows used for case-insensitive substring filters
	CommunityLower  string `dynamodbav:"communityLower,omitempty" json:"-"`
	EducationLower  string `dynamodbav:"educationLower,omitempty" json:"-"`
	OccupationLower string `dynamodbav:"occupationLower,omitempty" json:"-"`
	CityLower       string `dynamodbav:"cityLower,omitempty" json:"-"`
	StateLower      string `dynamodbav:"stateLower,omitempty" json:"-"`
	CountryLower    string `dynamodbav:"countryLower,omitempty" json:"-"`

	Photos      []Photo           `dynamodbav:"photos,omitempty" json:"photos,omitempty"`
	Blocked     []string          `dynamodbav:"blocked,stringset,omitempty" json:"blocked,omitempty"`
	Preferences map[string]string `dynamodbav:"preferences,omitempty" json:"preferences,omitempty"`
	CreatedAt   time.Time         `dynamodbav:"createdAt" json:"createdAt"`
}

// IsAdmin reports whether the profile belongs to an administrator
func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// HasBlocked reports whether id is in the profile's blocked set
func (p *Profile) HasBlocked(id string) bool {
	for _, b := range p.Blocked {
		if b == id {
			return true
		}
	}
	return false
}

// RefreshSearchFields recomputes the lowercase shadows from the display fields
func (p *Profile) RefreshSearchFields() {
	p.CommunityLower = strings.ToLower(p.Community)
	p.EducationLower = strings.ToLower(p.Education)
	p.OccupationLower = strings.ToLower(p.Occupation)
	p.CityLower = strings.ToLower(p.City)
	p.StateLower = strings.ToLower(p.State)
	p.CountryLower = strings.ToLower(p.Country)
	p.HasPhotos = len(p.Photos) > 0
}
