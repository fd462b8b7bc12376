package domain

// ID is used across domain entities.
type ID int64

// Status represents a lightweight state value.
type Status string

const (
	StatusConfirmed   Status = "Confirmed"
	StatusPendingSync Status = "Pending Sync"
	StatusCancelled   Status = "Cancelled"
)

// Mode tells whether a request was served against the authority or the
// offline log.
type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

// ModeFor maps a probe result to a Mode.
func ModeFor(online bool) Mode {
	if online {
		return ModeOnline
	}
	return ModeOffline
}

// RequestContext carries authenticated user info when available.
type RequestContext struct {
	UserID   ID     `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// IsAdmin reports whether the caller carries the admin role.
func (r RequestContext) IsAdmin() bool {
	return r.Role == "admin"
}
