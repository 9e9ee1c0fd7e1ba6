package models

// FeedPhoto is a photo as disclosed to a particular viewer
type FeedPhoto struct {
	URL        string `json:"url"`
	Restricted bool   `json:"restricted"`
	IsProfile  bool   `json:"isProfile"`
	Order      int    `json:"order"`
}

// FeedCandidate is one entry of a feed page
type FeedCandidate struct {
	ID            string      `json:"id"`
	Username      string      `json:"username"`
	DisplayName   string      `json:"displayName"`
	Photos        []FeedPhoto `json:"photos"`
	ProfilePhoto  string      `json:"profilePhoto"`
	Age           int         `json:"age,omitempty"`
	Gender        string      `json:"gender,omitempty"`
	Religion      string      `json:"religion,omitempty"`
	MaritalStatus string      `json:"maritalStatus,omitempty"`
	Community     string      `json:"community,omitempty"`
	Education     string      `json:"education,omitempty"`
	Occupation    string      `json:"occupation,omitempty"`
	Diet          string      `json:"diet,omitempty"`
	Smoking       string      `json:"smoking,omitempty"`
	Drinking      string      `json:"drinking,omitempty"`
	IncomeBracket string      `json:"incomeBracket,omitempty"`
	City          string      `json:"city,omitempty"`
	State         string      `json:"state,omitempty"`
	Country       string      `json:"country,omitempty"`

	ConnectionStatus   string `json:"connectionStatus"`
	PhotoRequestStatus string `json:"photoRequestStatus"`
}

// FeedPage is the payload of GET /api/feed
type FeedPage struct {
	Success    bool            `json:"success"`
	Data       []FeedCandidate `json:"data"`
	NextCursor *string         `json:"nextCursor"`
}
