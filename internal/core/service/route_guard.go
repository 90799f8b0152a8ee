package service

import (
	"strings"

	"github.com/ecoruta/portal/internal/core/domain"
)

// Outcome is the verdict of the route guard.
type Outcome string

const (
	OutcomePending          Outcome = "pending"
	OutcomeAllow            Outcome = "allow"
	OutcomeRedirectLogin    Outcome = "redirect_login"
	OutcomeRedirectRoleHome Outcome = "redirect_role_home"
)

// Decision is what to do with a navigation. Path is the redirect target and
// From the originally requested path, carried to the login page.
type Decision struct {
	Outcome Outcome
	Path    string
	From    string
}

// IsRedirect reports whether the decision moves the user elsewhere.
func (d Decision) IsRedirect() bool {
	return d.Outcome == OutcomeRedirectLogin || d.Outcome == OutcomeRedirectRoleHome
}

// Decide gates requested behind requiredRole. An empty requiredRole only
// requires authentication.
func Decide(state domain.State, requiredRole domain.Role, requested string) Decision {
	switch {
	case state.IsLoading:
		return Decision{Outcome: OutcomePending}
	case !state.IsAuthenticated || state.User == nil:
		return Decision{Outcome: OutcomeRedirectLogin, Path: domain.PathLogin, From: requested}
	case requiredRole != "" && requiredRole != state.User.Rol:
		return Decision{Outcome: OutcomeRedirectRoleHome, Path: domain.RoleHome(state.User.Rol)}
	default:
		return Decision{Outcome: OutcomeAllow}
	}
}

// AfterLogin returns where a freshly authenticated user goes: back to from
// when the user may open it, else to the role home.
func AfterLogin(state domain.State, from string) Decision {
	if d := Landing(state); d.Outcome != OutcomeRedirectRoleHome {
		return d
	}
	if isLocalPath(from) && from != domain.PathLogin {
		required, _ := domain.RoleForPath(from)
		if Decide(state, required, from).Outcome == OutcomeAllow {
			return Decision{Outcome: OutcomeRedirectRoleHome, Path: from}
		}
	}
	return Landing(state)
}

// Landing is the decision for the root path: the role home once the session
// is known.
func Landing(state domain.State) Decision {
	d := Decide(state, "", "")
	if d.Outcome != OutcomeAllow {
		return d
	}
	return Decision{Outcome: OutcomeRedirectRoleHome, Path: domain.RoleHome(state.User.Rol)}
}

func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.Contains(p, "\\")
}
