package internal

import "time"

const (
	RoleAdmin   = "ADMIN"
	RoleStudent = "STUDENT"
)

const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

const (
	ElectionPending = "PENDING"
	ElectionLive    = "LIVE"
	ElectionClosed  = "CLOSED"
)

type User struct {
	ID           string `json:"id"`
	MatricNumber string `json:"matricNumber"`
	FullName     string `json:"fullName"`
	Status       string `json:"status"` // PENDING|APPROVED|REJECTED
	Role         string `json:"role"`   // STUDENT|ADMIN
	HasVoted     bool   `json:"hasVoted"`
}

// Session is the portal's view of "who is logged in": the upstream bearer
// token plus the user it was issued for. Token set implies User set.
type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type Election struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Status         string     `json:"status"` // PENDING|LIVE|CLOSED
	StartTime      time.Time  `json:"startTime"`
	EndTime        time.Time  `json:"endTime"`
	TotalVotes     int        `json:"totalVotes"`
	ApprovedVoters int        `json:"approvedVoters"`
	Positions      []Position `json:"positions,omitempty"`
}

type Position struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Order         int    `json:"order"`
	MaxSelections int    `json:"maxSelections"`
}

type Candidate struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PositionID string `json:"positionId"`
	Position   string `json:"position"` // position name, denormalized upstream
	Party      string `json:"party,omitempty"`
	Manifesto  string `json:"manifesto,omitempty"`
	Department string `json:"department,omitempty"`
	Level      string `json:"level,omitempty"`
	ImageURL   string `json:"imageUrl,omitempty"`
	VoteCount  int    `json:"voteCount,omitempty"`
}

type AccreditationRequest struct {
	ID           string    `json:"id"`
	FullName     string    `json:"fullName"`
	MatricNumber string    `json:"matricNumber"`
	Department   string    `json:"department"`
	IDCardURL    string    `json:"idCardUrl"`
	CreatedAt    time.Time `json:"createdAt"`
}

type DashboardStats struct {
	TotalRegistered int            `json:"totalRegistered"`
	ApprovedVoters  int            `json:"approvedVoters"`
	VotesCast       int            `json:"votesCast"`
	PendingRequests int            `json:"pendingRequests"`
	Demographics    map[string]int `json:"demographics,omitempty"`
}

// Results is the decrypted tally for one election: candidates carry their
// vote counts, turnout comes from totalVotes/approvedVoters.
type Results struct {
	ElectionID     string      `json:"electionId,omitempty"`
	Title          string      `json:"title,omitempty"`
	Status         string      `json:"status,omitempty"`
	TotalVotes     int         `json:"totalVotes"`
	ApprovedVoters int         `json:"approvedVoters"`
	Candidates     []Candidate `json:"candidates"`
}

type ElectionDetails struct {
	Election   Election    `json:"election"`
	Candidates []Candidate `json:"candidates"`
}

type Activity struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuthResponse is what /auth/login and /auth/admin/login return upstream.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
