package models

import "time"

// TokenPair is the credential pair issued by the platform identity endpoint.
// The access token is an opaque bearer credential from the frontend's point
// of view; ExpiresAt is advisory and may be zero when the backend omits it.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
}

// SessionRecord is the server-side session row backing a browser cookie.
type SessionRecord struct {
	ID           string
	UserID       string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// JobStatus is the server-defined status string of an asynchronous job.
type JobStatus string

const (
	JobPending     JobStatus = "pending"
	JobVerifying   JobStatus = "verifying"
	JobVerified    JobStatus = "verified"
	JobApproved    JobStatus = "approved"
	JobNeedsReview JobStatus = "needs_review"
	JobFailed      JobStatus = "failed"
	JobRejected    JobStatus = "rejected"
	JobCompleted   JobStatus = "completed"
)

// AsyncJob represents a server-side long-running task (EPUB verification,
// GDPR export). Owned by exactly one submitting user; mutated only by the
// server.
type AsyncJob struct {
	ID        int64     `json:"id"`
	Status    JobStatus `json:"status"`
	Score     *float64  `json:"score,omitempty"`
	ResultURL string    `json:"resultUrl,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// GroupMembership ties a user to a group with a role.
type GroupMembership struct {
	GroupID   string `json:"group_id"`
	GroupName string `json:"group_name"`
	Role      string `json:"role"` // "admin" or "member"
}

// UserAccount is the authenticated user object fetched once per page load.
// Role information (is_staff, groups) feeds the role gate.
type UserAccount struct {
	ID       string            `json:"id"`
	Username string            `json:"username"`
	Email    string            `json:"email"`
	IsStaff  bool              `json:"is_staff"`
	Groups   []GroupMembership `json:"groups"`
}

// AdministeredGroupCount counts memberships where the user is a group admin.
func (u *UserAccount) AdministeredGroupCount() int {
	n := 0
	for _, g := range u.Groups {
		if g.Role == "admin" {
			n++
		}
	}
	return n
}

// Document is a piece of writing on the platform.
type Document struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	AuthorID  string    `json:"author_id"`
	Excerpt   string    `json:"excerpt,omitempty"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
}

// ShelfEntry is a document pinned to a user's bookshelf.
type ShelfEntry struct {
	DocumentID string    `json:"document_id"`
	Title      string    `json:"title"`
	AddedAt    time.Time `json:"added_at"`
}

// InvitationState follows the invitation through its lifecycle.
type InvitationState string

const (
	InvitationPending  InvitationState = "pending"
	InvitationAccepted InvitationState = "accepted"
	InvitationDeclined InvitationState = "declined"
	InvitationRevoked  InvitationState = "revoked"
)

// Invitation is a pending or resolved group invitation.
type Invitation struct {
	ID        string          `json:"id"`
	GroupID   string          `json:"group_id"`
	GroupName string          `json:"group_name"`
	Invitee   string          `json:"invitee"`
	State     InvitationState `json:"state"`
	CreatedAt time.Time       `json:"created_at"`
}

// PendingUser is an account awaiting staff approval.
type PendingUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// PayoutAccount describes a creator's Stripe Connect account state.
// PayoutPercent is the creator's share of each sale; the platform keeps
// the rest as its application fee.
type PayoutAccount struct {
	AccountID      string  `json:"account_id"`
	ChargesEnabled bool    `json:"charges_enabled"`
	PayoutsEnabled bool    `json:"payouts_enabled"`
	PayoutPercent  float64 `json:"payout_percent"`
	OnboardingURL  string  `json:"onboarding_url,omitempty"`
}
