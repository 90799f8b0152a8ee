package domain

// Status is the lifecycle position of the session state machine.
type Status string

const (
	StatusUninitialized Status = "uninitialized"
	StatusChecking      Status = "checking"
	StatusAuthenticated Status = "authenticated"
	StatusAnonymous     Status = "anonymous"
)

// State is a read-only snapshot of the session.
//
// IsAuthenticated implies User is non-nil with a valid role. IsLoading is
// true from startup until the first check completes and while a login or
// registration is in flight.
type State struct {
	Status          Status `json:"status"`
	User            *User  `json:"user"`
	IsAuthenticated bool   `json:"is_authenticated"`
	IsLoading       bool   `json:"is_loading"`
	Error           string `json:"error,omitempty"`
}

// Role returns the role of the current user, or "" when logged out.
func (s State) Role() Role {
	if s.User == nil {
		return ""
	}
	return s.User.Rol
}
