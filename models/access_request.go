package models

// AccessRequest is a directed request from RequesterID to TargetID.
// Used for both photo-access and connection requests.
type AccessRequest struct {
	RequesterID string `dynamodbav:"requesterId" json:"requesterId"` // Partition Key
	TargetID    string `dynamodbav:"targetId" json:"targetId"`       // Sort Key
	RequestID   string `dynamodbav:"requestId" json:"requestId"`
	Status      string `dynamodbav:"status" json:"status"`
	CreatedAt   string `dynamodbav:"createdAt" json:"createdAt"`
	LastUpdated string `dynamodbav:"lastUpdated" json:"lastUpdated"`
}

// RequestKind selects which of the two request tables an operation targets
type RequestKind string

const (
	RequestKindPhoto      RequestKind = "photo"
	RequestKindConnection RequestKind = "connection"
)

// GrantStatus is the status that unlocks photos for this kind of request
func (k RequestKind) GrantStatus() string {
	if k == RequestKindConnection {
		return StatusAccepted
	}
	return StatusGranted
}
